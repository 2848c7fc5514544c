// Package blob хранит бинарное содержимое медиа по сгенерированному ключу.
package blob

import (
	"PortfolioCMS/internal/config"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ErrNotFound — блоба с таким ключом нет.
var ErrNotFound = errors.New("blob not found")

// Store минимальный контракт хранилища блобов.
type Store interface {
	// Put сохраняет данные и возвращает URL для отдачи клиенту.
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	// Open возвращает поток содержимого. ErrNotFound, если ключа нет.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	// Delete удаляет блоб. Удаление отсутствующего ключа не ошибка.
	Delete(ctx context.Context, key string) error
}

// New создаёт хранилище по настройкам провайдера.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageProvider {
	case config.StorageMinio:
		return NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.Bucket, cfg.MinioUseSSL, cfg.PublicURLPrefix)
	case config.StorageS3:
		return NewS3Store(ctx, cfg.S3Region, cfg.Bucket, cfg.S3Endpoint, cfg.PublicURLPrefix)
	case config.StorageLocal, "":
		return NewLocalStore(cfg.StoragePath, cfg.PublicURLPrefix)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.StorageProvider)
	}
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// NewKey строит ключ "<unix-millis>-<очищенное имя>".
func NewKey(now time.Time, originalName string) string {
	name := filepath.Base(strings.ReplaceAll(originalName, `\`, "/"))
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeKeyChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, ".")
	if name == "" {
		name = "file"
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), name)
}

// ThumbnailKey ключ превью для исходного ключа.
func ThumbnailKey(key string) string {
	return "thumb-" + key
}

func publicURL(prefix, key string) string {
	return strings.TrimRight(prefix, "/") + "/" + key
}
