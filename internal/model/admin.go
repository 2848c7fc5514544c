package model

import "time"

// Admin — учётная запись администратора панели.
type Admin struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Login     string    `gorm:"not null;uniqueIndex" json:"login"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt hash
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
