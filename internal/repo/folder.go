package repo

import (
	"PortfolioCMS/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// FolderRepository — контракт доступа к папкам медиатеки.
type FolderRepository interface {
	// Create вставляет папку. ErrDuplicate при совпадении имени среди сиблингов.
	Create(ctx context.Context, f *model.Folder) error
	// GetByID возвращает gorm.ErrRecordNotFound, если папки нет.
	GetByID(ctx context.Context, id string) (*model.Folder, error)
	// SiblingExists проверяет, занято ли имя под parentID (кроме excludeID).
	SiblingExists(ctx context.Context, parentID *string, name, excludeID string) (bool, error)
	// ListChildren возвращает прямых потомков, отсортированных по имени.
	ListChildren(ctx context.Context, parentID *string) ([]model.Folder, error)
	// ListAll возвращает все папки.
	ListAll(ctx context.Context) ([]model.Folder, error)
	Count(ctx context.Context) (int64, error)
	// Update применяет частичные изменения и обновляет updated_at.
	Update(ctx context.Context, id string, updates map[string]any) error
	// SetParent переносит папку под другого родителя.
	SetParent(ctx context.Context, id string, parentID *string) error
	// ReparentChildren переносит всех прямых потомков fromID под parentID.
	ReparentChildren(ctx context.Context, fromID string, parentID *string) (int64, error)
	SetStats(ctx context.Context, id string, mediaCount, totalSize int64) error
	Delete(ctx context.Context, id string) error
	// Dissolve в одной транзакции переносит медиа и подпапки id под parentID и удаляет саму папку.
	Dissolve(ctx context.Context, id string, parentID *string) (movedMedia, movedFolders int64, err error)
}

type folderRepo struct {
	db *gorm.DB
}

// NewFolderRepository создаёт реализацию репозитория для Folder.
func NewFolderRepository(db *gorm.DB) FolderRepository {
	return &folderRepo{db: db}
}

func (r *folderRepo) Create(ctx context.Context, f *model.Folder) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *folderRepo) GetByID(ctx context.Context, id string) (*model.Folder, error) {
	var f model.Folder
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *folderRepo) SiblingExists(ctx context.Context, parentID *string, name, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Folder{}).Where("name = ?", name)
	q = parentCond(q, "parent_id", parentID)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *folderRepo) ListChildren(ctx context.Context, parentID *string) ([]model.Folder, error) {
	var out []model.Folder
	q := parentCond(r.db.WithContext(ctx), "parent_id", parentID)
	if err := q.Order("LOWER(name) ASC, name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *folderRepo) ListAll(ctx context.Context) ([]model.Folder, error) {
	var out []model.Folder
	if err := r.db.WithContext(ctx).Order("LOWER(name) ASC, name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *folderRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Folder{}).Count(&n).Error
	return n, err
}

func (r *folderRepo) Update(ctx context.Context, id string, updates map[string]any) error {
	if updates == nil {
		updates = map[string]any{}
	}
	if p, ok := updates["parent_id"]; ok {
		// parent_key всегда меняется вместе с parent_id
		switch v := p.(type) {
		case *string:
			updates["parent_key"] = model.ParentKey(v)
		case string:
			updates["parent_key"] = v
		case nil:
			updates["parent_key"] = ""
		}
	}
	updates["updated_at"] = time.Now().UTC()
	tx := r.db.WithContext(ctx).Model(&model.Folder{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		if isUniqueViolation(tx.Error) {
			return ErrDuplicate
		}
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *folderRepo) SetParent(ctx context.Context, id string, parentID *string) error {
	return r.Update(ctx, id, map[string]any{"parent_id": parentID})
}

func (r *folderRepo) ReparentChildren(ctx context.Context, fromID string, parentID *string) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Folder{}).
		Where("parent_id = ?", fromID).
		Updates(map[string]any{
			"parent_id":  parentID,
			"parent_key": model.ParentKey(parentID),
			"updated_at": time.Now().UTC(),
		})
	if tx.Error != nil {
		if isUniqueViolation(tx.Error) {
			return 0, ErrDuplicate
		}
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}

func (r *folderRepo) SetStats(ctx context.Context, id string, mediaCount, totalSize int64) error {
	return r.Update(ctx, id, map[string]any{"media_count": mediaCount, "total_size": totalSize})
}

func (r *folderRepo) Delete(ctx context.Context, id string) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Folder{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *folderRepo) Dissolve(ctx context.Context, id string, parentID *string) (int64, int64, error) {
	var movedMedia, movedFolders int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if movedMedia, err = NewMediaRepository(tx).MoveAll(ctx, id, parentID); err != nil {
			return err
		}
		folders := &folderRepo{db: tx}
		// папку удаляем до переноса детей: её имя может совпадать с именем подпапки
		if err := folders.Delete(ctx, id); err != nil {
			return err
		}
		movedFolders, err = folders.ReparentChildren(ctx, id, parentID)
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	return movedMedia, movedFolders, nil
}
