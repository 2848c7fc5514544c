package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Значения по умолчанию для отображения папки.
const (
	DefaultFolderColor = "#6366f1"
	DefaultFolderIcon  = "folder"
)

// Folder — узел дерева медиатеки.
type Folder struct {
	ID string `gorm:"primaryKey;type:varchar(36)" json:"id"`

	Name     string  `gorm:"not null;uniqueIndex:idx_folder_sibling_name,priority:2" json:"name"`
	ParentID *string `gorm:"type:varchar(36);index" json:"parent"`
	// ParentKey дублирует ParentID ("" для корня): уникальный индекс по NULL не работает.
	ParentKey string `gorm:"not null;default:'';uniqueIndex:idx_folder_sibling_name,priority:1" json:"-"`

	Description string `json:"description"`
	Color       string `gorm:"not null;default:'#6366f1'" json:"color"`
	Icon        string `gorm:"not null;default:'folder'" json:"icon"`
	IsPublic    bool   `gorm:"not null;default:false" json:"is_public"`

	MediaCount int64 `gorm:"not null;default:0" json:"media_count"`
	TotalSize  int64 `gorm:"not null;default:0" json:"total_size"`

	CreatedBy *int64    `json:"created_by,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName имя таблицы папок.
func (Folder) TableName() string { return "media_folders" }

// BeforeCreate выдаёт id и синхронизирует ParentKey.
func (f *Folder) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.ParentKey = ParentKey(f.ParentID)
	if f.Color == "" {
		f.Color = DefaultFolderColor
	}
	if f.Icon == "" {
		f.Icon = DefaultFolderIcon
	}
	return nil
}

// ParentKey приводит ссылку на родителя к строке для группировки сиблингов.
func ParentKey(parentID *string) string {
	if parentID == nil {
		return ""
	}
	return *parentID
}
