package service

import (
	"PortfolioCMS/internal/blob"
	"PortfolioCMS/internal/model"
	"PortfolioCMS/internal/repo"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
)

// UploadInput данные загружаемого файла.
type UploadInput struct {
	Title        string
	Description  string
	Tags         []string
	Type         string // необязательно: переопределяет тип, определённый по MIME (например, resume)
	FolderID     *string
	OriginalName string
	Content      []byte
	UploadedBy   *int64
}

// MediaPatch изменяемые поля медиа. nil — не менять.
type MediaPatch struct {
	Title       *string
	Description *string
	Tags        *[]string
	Type        *string
	Status      *string
	// MoveFolder включает перенос в FolderID (nil FolderID — в корень).
	MoveFolder bool
	FolderID   *string
}

// BulkResult итог пакетной операции: обработанные и отказавшие элементы.
type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []ItemFailure `json:"failed"`
}

func newBulkResult() *BulkResult {
	return &BulkResult{Succeeded: []string{}, Failed: []ItemFailure{}}
}

func (r *BulkResult) fail(id string, err error) {
	r.Failed = append(r.Failed, ItemFailure{ID: id, Reason: err.Error()})
}

// MediaService управляет медиа-элементами и их блобами.
type MediaService struct {
	media  repo.MediaRepository
	tree   *FolderTree
	blobs  blob.Store
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewMediaService(media repo.MediaRepository, tree *FolderTree, blobs blob.Store, logger *zap.SugaredLogger) *MediaService {
	return &MediaService{media: media, tree: tree, blobs: blobs, logger: logger, now: time.Now}
}

// removeBlobs удаляет файл и превью. Ошибки логируются и возвращаются вызывающему для отчёта.
func removeBlobs(ctx context.Context, store blob.Store, logger *zap.SugaredLogger, m *model.Media) []error {
	var errs []error
	for _, key := range []string{m.BlobKey, m.ThumbnailKey} {
		if key == "" {
			continue
		}
		if err := store.Delete(ctx, key); err != nil {
			logger.Warnw("delete blob failed", "media", m.ID, "key", key, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	return errs
}

func (s *MediaService) checkFolder(ctx context.Context, id *string) error {
	if id == nil {
		return nil
	}
	if _, err := s.tree.getFolder(ctx, *id); err != nil {
		return err
	}
	return nil
}

// Upload сохраняет блоб (и превью для изображений), затем метаданные.
func (s *MediaService) Upload(ctx context.Context, in UploadInput) (*model.Media, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", ErrInvalidInput)
	}
	if len(in.Content) == 0 {
		return nil, fmt.Errorf("empty file: %w", ErrInvalidInput)
	}
	if in.Type != "" && !model.ValidMediaType(in.Type) {
		return nil, fmt.Errorf("type %q: %w", in.Type, ErrInvalidInput)
	}
	folderID := normalizeID(in.FolderID)
	if err := s.checkFolder(ctx, folderID); err != nil {
		return nil, fmt.Errorf("folder: %w", err)
	}

	mime := detectMIME(in.Content)
	if !allowedMIME(mime) {
		return nil, fmt.Errorf("%s: %w", mime, ErrUnsupportedType)
	}
	mediaType := classifyMIME(mime)
	if in.Type != "" {
		mediaType = in.Type
	}

	key := blob.NewKey(s.now(), in.OriginalName)
	url, err := s.blobs.Put(ctx, key, mime, in.Content)
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	m := &model.Media{
		Title:        title,
		Description:  strings.TrimSpace(in.Description),
		Tags:         model.NewTags(in.Tags...),
		Type:         mediaType,
		FolderID:     folderID,
		BlobKey:      key,
		URL:          url,
		MimeType:     mime,
		FileSize:     int64(len(in.Content)),
		OriginalName: in.OriginalName,
		Status:       model.StatusActive,
		UploadedBy:   in.UploadedBy,
	}

	if mediaType == model.MediaImage && thumbnailable(mime) {
		if thumb, err := makeThumbnail(in.Content); err != nil {
			s.logger.Warnw("thumbnail generation failed", "key", key, "error", err)
		} else if _, err := s.blobs.Put(ctx, blob.ThumbnailKey(key), "image/jpeg", thumb); err != nil {
			s.logger.Warnw("store thumbnail failed", "key", key, "error", err)
		} else {
			m.ThumbnailKey = blob.ThumbnailKey(key)
		}
	}

	if err := s.media.Create(ctx, m); err != nil {
		// метаданные не записались: блоб больше никому не нужен
		removeBlobs(ctx, s.blobs, s.logger, m)
		return nil, fmt.Errorf("save media: %w", err)
	}
	s.tree.refreshStats(ctx, folderID)

	s.logger.Infow("media uploaded", "id", m.ID, "key", key, "type", mediaType, "size", m.FileSize, "folder", model.ParentKey(folderID))
	return m, nil
}

// Get возвращает медиа без учёта обращения.
func (s *MediaService) Get(ctx context.Context, id string) (*model.Media, error) {
	m, err := s.media.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "media", id)
	}
	return m, nil
}

// Access возвращает медиа и засчитывает обращение.
func (s *MediaService) Access(ctx context.Context, id string) (*model.Media, error) {
	if err := s.media.TouchAccess(ctx, id, s.now()); err != nil {
		return nil, notFound(err, "media", id)
	}
	return s.Get(ctx, id)
}

// Open открывает содержимое файла для отдачи клиенту и засчитывает обращение.
func (s *MediaService) Open(ctx context.Context, id string) (*model.Media, io.ReadCloser, error) {
	m, err := s.Access(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Open(ctx, m.BlobKey)
	if err != nil {
		return nil, nil, fmt.Errorf("open blob %q: %w", m.BlobKey, err)
	}
	return m, rc, nil
}

func (s *MediaService) List(ctx context.Context, f repo.MediaFilter) ([]model.Media, error) {
	if f.Type != "" && !model.ValidMediaType(f.Type) {
		return nil, fmt.Errorf("type %q: %w", f.Type, ErrInvalidInput)
	}
	if f.Status != "" && !model.ValidStatus(f.Status) {
		return nil, fmt.Errorf("status %q: %w", f.Status, ErrInvalidInput)
	}
	f.FolderID = normalizeID(f.FolderID)
	items, err := s.media.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Media{}
	}
	return items, nil
}

// Update применяет patch. Смена папки или статуса пересчитывает агрегаты затронутых папок.
func (s *MediaService) Update(ctx context.Context, id string, p MediaPatch) (*model.Media, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if t == "" {
			return nil, fmt.Errorf("title is required: %w", ErrInvalidInput)
		}
		updates["title"] = t
	}
	if p.Description != nil {
		updates["description"] = strings.TrimSpace(*p.Description)
	}
	if p.Tags != nil {
		updates["tags"] = model.NewTags(*p.Tags...)
	}
	if p.Type != nil {
		if !model.ValidMediaType(*p.Type) {
			return nil, fmt.Errorf("type %q: %w", *p.Type, ErrInvalidInput)
		}
		updates["type"] = *p.Type
	}
	if p.Status != nil {
		if !model.ValidStatus(*p.Status) {
			return nil, fmt.Errorf("status %q: %w", *p.Status, ErrInvalidInput)
		}
		updates["status"] = *p.Status
	}
	var target *string
	if p.MoveFolder {
		target = normalizeID(p.FolderID)
		if err := s.checkFolder(ctx, target); err != nil {
			return nil, fmt.Errorf("target: %w", err)
		}
		updates["folder_id"] = target
	}
	if len(updates) == 0 {
		return m, nil
	}

	if err := s.media.Update(ctx, id, updates); err != nil {
		return nil, notFound(err, "media", id)
	}
	if p.MoveFolder || p.Status != nil {
		s.tree.refreshStats(ctx, m.FolderID, target)
	}
	return s.Get(ctx, id)
}

// Delete удаляет метаданные, затем блобы. Сбой удаления блоба только логируется.
func (s *MediaService) Delete(ctx context.Context, id string) error {
	m, err := s.deleteOne(ctx, id)
	if err != nil {
		return err
	}
	s.tree.refreshStats(ctx, m.FolderID)
	return nil
}

func (s *MediaService) deleteOne(ctx context.Context, id string) (*model.Media, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.media.Delete(ctx, id); err != nil {
		return nil, notFound(err, "media", id)
	}
	removeBlobs(ctx, s.blobs, s.logger, m)
	s.logger.Infow("media deleted", "id", id, "key", m.BlobKey)
	return m, nil
}

// uniqueIDs убирает пустые и повторные id, сохраняя порядок.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// BulkDelete удаляет элементы по одному; отказ одного не прерывает остальные.
func (s *MediaService) BulkDelete(ctx context.Context, ids []string) (*BulkResult, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, fmt.Errorf("no media ids: %w", ErrInvalidInput)
	}
	res := newBulkResult()
	var touched []*string
	for _, id := range ids {
		m, err := s.deleteOne(ctx, id)
		if err != nil {
			res.fail(id, err)
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
		touched = append(touched, m.FolderID)
	}
	s.tree.refreshStats(ctx, touched...)
	s.logger.Infow("bulk delete", "requested", len(ids), "succeeded", len(res.Succeeded), "failed", len(res.Failed))
	return res, nil
}

// BulkMove переносит элементы в target (nil — в корень). Несуществующая target — ошибка всей операции.
func (s *MediaService) BulkMove(ctx context.Context, ids []string, target *string) (*BulkResult, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, fmt.Errorf("no media ids: %w", ErrInvalidInput)
	}
	target = normalizeID(target)
	if err := s.checkFolder(ctx, target); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	res := newBulkResult()
	touched := []*string{target}
	for _, id := range ids {
		m, err := s.Get(ctx, id)
		if err != nil {
			res.fail(id, err)
			continue
		}
		if err := s.media.Update(ctx, id, map[string]any{"folder_id": target}); err != nil {
			res.fail(id, notFound(err, "media", id))
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
		touched = append(touched, m.FolderID)
	}
	s.tree.refreshStats(ctx, touched...)
	s.logger.Infow("bulk move", "target", model.ParentKey(target), "succeeded", len(res.Succeeded), "failed", len(res.Failed))
	return res, nil
}

// BulkTag добавляет и снимает теги у набора элементов.
func (s *MediaService) BulkTag(ctx context.Context, ids, add, remove []string) (*BulkResult, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, fmt.Errorf("no media ids: %w", ErrInvalidInput)
	}
	if len(model.NewTags(add...)) == 0 && len(model.NewTags(remove...)) == 0 {
		return nil, fmt.Errorf("no tags to add or remove: %w", ErrInvalidInput)
	}

	res := newBulkResult()
	for _, id := range ids {
		m, err := s.Get(ctx, id)
		if err != nil {
			res.fail(id, err)
			continue
		}
		if err := s.media.Update(ctx, id, map[string]any{"tags": m.Tags.With(add, remove)}); err != nil {
			res.fail(id, notFound(err, "media", id))
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	return res, nil
}
