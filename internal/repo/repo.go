package repo

import (
	"PortfolioCMS/internal/model"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// ErrDuplicate — нарушение уникального индекса (например, имя папки среди сиблингов).
var ErrDuplicate = errors.New("duplicate key")

const sqlitePrefix = "sqlite:"

// InitDB открывает подключение к БД и применяет миграции.
// DSN вида "sqlite:<path>" открывает SQLite (modernc), иначе — PostgreSQL.
func InitDB(dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	if strings.HasPrefix(dsn, sqlitePrefix) {
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: strings.TrimPrefix(dsn, sqlitePrefix)}
	} else {
		dial = postgres.Open(dsn)
	}
	db, err := gorm.Open(dial, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate создаёт/обновляет схему для всех моделей.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Admin{}, &model.Folder{}, &model.Media{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// isUniqueViolation распознаёт нарушение уникальности для postgres (через TranslateError) и sqlite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

// parentCond добавляет условие на родителя с учётом NULL.
func parentCond(db *gorm.DB, column string, parentID *string) *gorm.DB {
	if parentID == nil {
		return db.Where(column + " IS NULL")
	}
	return db.Where(column+" = ?", *parentID)
}
