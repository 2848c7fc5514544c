package service

import (
	"PortfolioCMS/internal/repo"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound — папка или медиа с указанным id не существует.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateName — у родителя уже есть папка с таким именем.
	ErrDuplicateName = errors.New("folder name already exists in this location")
	// ErrCycle — папку нельзя переместить в саму себя или в своего потомка.
	ErrCycle = errors.New("folder cannot be moved into itself or its descendant")
	// ErrIntegrity — цепочка родителей не заканчивается корнем: граф папок повреждён.
	ErrIntegrity = errors.New("folder hierarchy is corrupted")
	// ErrInvalidName — пустое имя после trim.
	ErrInvalidName = errors.New("folder name is required")
	// ErrInvalidInput — прочие ошибки валидации входа.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedType — тип файла не входит в разрешённый список.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// notFound переводит gorm.ErrRecordNotFound в ErrNotFound с указанием сущности.
func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %q: %w", what, id, ErrNotFound)
	}
	return err
}

// duplicate переводит нарушение уникальности в ErrDuplicateName.
func duplicate(err error, name string) error {
	if errors.Is(err, repo.ErrDuplicate) {
		return fmt.Errorf("%q: %w", name, ErrDuplicateName)
	}
	return err
}
