package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Типы медиа.
const (
	MediaImage    = "image"
	MediaVideo    = "video"
	MediaAudio    = "audio"
	MediaDocument = "document"
	MediaResume   = "resume"
	MediaOther    = "other"
)

// Статусы медиа.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
	StatusDeleted  = "deleted"
)

// ValidMediaType проверяет допустимость типа.
func ValidMediaType(t string) bool {
	switch t {
	case MediaImage, MediaVideo, MediaAudio, MediaDocument, MediaResume, MediaOther:
		return true
	}
	return false
}

// ValidStatus проверяет допустимость статуса.
func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusArchived || s == StatusDeleted
}

// Media — метаданные загруженного файла и ключ его блоба.
type Media struct {
	ID string `gorm:"primaryKey;type:varchar(36)" json:"id"`

	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	Tags        Tags   `gorm:"type:text" json:"tags"`
	Type        string `gorm:"not null;index" json:"type"`

	FolderID *string `gorm:"type:varchar(36);index" json:"folder"`

	BlobKey      string `gorm:"not null" json:"-"`
	ThumbnailKey string `json:"-"`
	URL          string `gorm:"not null" json:"url"`
	MimeType     string `json:"mime_type"`
	FileSize     int64  `gorm:"not null;default:0" json:"file_size"`
	OriginalName string `json:"original_name"`

	Status string `gorm:"not null;default:'active';index" json:"status"`

	DownloadCount int64      `gorm:"not null;default:0" json:"download_count"`
	LastAccessed  *time.Time `json:"last_accessed,omitempty"`

	UploadedBy *int64    `json:"uploaded_by,omitempty"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName имя таблицы медиа.
func (Media) TableName() string { return "media" }

// BeforeCreate выдаёт id и статус по умолчанию.
func (m *Media) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = StatusActive
	}
	if m.Tags == nil {
		m.Tags = Tags{}
	}
	return nil
}

// Tags — множество тегов, хранится как JSON-массив в текстовой колонке.
type Tags []string

// NewTags нормализует теги: trim, без пустых и дублей, отсортированы.
func NewTags(in ...string) Tags {
	seen := make(map[string]struct{}, len(in))
	out := make(Tags, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// ParseTags разбирает строку вида "a, b,c".
func ParseTags(s string) Tags {
	return NewTags(strings.Split(s, ",")...)
}

// With возвращает новое множество с добавленными и удалёнными тегами.
func (t Tags) With(add, remove []string) Tags {
	drop := make(map[string]struct{}, len(remove))
	for _, r := range remove {
		drop[strings.TrimSpace(r)] = struct{}{}
	}
	merged := make([]string, 0, len(t)+len(add))
	for _, x := range append(append([]string{}, t...), add...) {
		if _, ok := drop[strings.TrimSpace(x)]; !ok {
			merged = append(merged, x)
		}
	}
	return NewTags(merged...)
}

// Value implements driver.Valuer
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := encodeJSON([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// TagLiteral — тег в том виде, в каком он лежит внутри сохранённого массива (с кавычками).
func TagLiteral(tag string) string {
	b, err := encodeJSON(strings.TrimSpace(tag))
	if err != nil {
		return ""
	}
	return string(b)
}

// encodeJSON кодирует без HTML-экранирования: "R&D" хранится как есть.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Scan implements sql.Scanner
func (t *Tags) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*t = Tags{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("failed to scan tags")
	}
	if len(raw) == 0 {
		*t = Tags{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*t = Tags(out)
	return nil
}
