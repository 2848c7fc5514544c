package repo

import (
	"PortfolioCMS/internal/model"
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
)

// MediaFilter условия выборки медиа. Пустые поля не фильтруют.
type MediaFilter struct {
	FolderID *string
	Root     bool // только элементы без папки
	Type     string
	Tag      string
	Status   string
	Search   string
}

// MediaRepository — контракт доступа к метаданным медиа.
type MediaRepository interface {
	Create(ctx context.Context, m *model.Media) error
	// GetByID возвращает gorm.ErrRecordNotFound, если записи нет.
	GetByID(ctx context.Context, id string) (*model.Media, error)
	List(ctx context.Context, f MediaFilter) ([]model.Media, error)
	// ListByFolders возвращает медиа, лежащие непосредственно в указанных папках.
	ListByFolders(ctx context.Context, folderIDs []string) ([]model.Media, error)
	Update(ctx context.Context, id string, updates map[string]any) error
	// MoveAll переносит всё медиа из папки fromID в папку to.
	MoveAll(ctx context.Context, fromID string, to *string) (int64, error)
	// FolderStats считает активные элементы непосредственно в папке и их суммарный размер.
	FolderStats(ctx context.Context, folderID string) (count int64, size int64, err error)
	// TouchAccess увеличивает счётчик скачиваний и обновляет last_accessed.
	TouchAccess(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type mediaRepo struct {
	db *gorm.DB
}

// NewMediaRepository создаёт реализацию репозитория для Media.
func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepo{db: db}
}

func (r *mediaRepo) Create(ctx context.Context, m *model.Media) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *mediaRepo) GetByID(ctx context.Context, id string) (*model.Media, error) {
	var m model.Media
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mediaRepo) List(ctx context.Context, f MediaFilter) ([]model.Media, error) {
	q := r.db.WithContext(ctx).Model(&model.Media{})
	switch {
	case f.Root:
		q = q.Where("folder_id IS NULL")
	case f.FolderID != nil:
		q = q.Where("folder_id = ?", *f.FolderID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Tag != "" {
		// теги хранятся JSON-массивом строк
		q = q.Where(`tags LIKE ? ESCAPE '\'`, "%"+escapeLike(model.TagLiteral(f.Tag))+"%")
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + escapeLike(strings.ToLower(s)) + "%"
		q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, like, like)
	}
	var out []model.Media
	if err := q.Order("uploaded_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike экранирует спецсимволы LIKE, чтобы шаблон совпадал буквально.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *mediaRepo) ListByFolders(ctx context.Context, folderIDs []string) ([]model.Media, error) {
	if len(folderIDs) == 0 {
		return []model.Media{}, nil
	}
	var out []model.Media
	if err := r.db.WithContext(ctx).Where("folder_id IN ?", folderIDs).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mediaRepo) Update(ctx context.Context, id string, updates map[string]any) error {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["updated_at"] = time.Now().UTC()
	tx := r.db.WithContext(ctx).Model(&model.Media{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *mediaRepo) MoveAll(ctx context.Context, fromID string, to *string) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Media{}).
		Where("folder_id = ?", fromID).
		Updates(map[string]any{"folder_id": to, "updated_at": time.Now().UTC()})
	return tx.RowsAffected, tx.Error
}

func (r *mediaRepo) FolderStats(ctx context.Context, folderID string) (int64, int64, error) {
	var row struct {
		Cnt  int64
		Size int64
	}
	err := r.db.WithContext(ctx).Model(&model.Media{}).
		Select("COUNT(*) AS cnt, COALESCE(SUM(file_size), 0) AS size").
		Where("folder_id = ? AND status = ?", folderID, model.StatusActive).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Cnt, row.Size, nil
}

func (r *mediaRepo) TouchAccess(ctx context.Context, id string, at time.Time) error {
	tx := r.db.WithContext(ctx).Model(&model.Media{}).Where("id = ?", id).
		UpdateColumns(map[string]any{
			"download_count": gorm.Expr("download_count + 1"),
			"last_accessed":  at.UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *mediaRepo) Delete(ctx context.Context, id string) error {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Media{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
