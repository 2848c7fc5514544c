package service

import (
	"PortfolioCMS/internal/blob"
	"PortfolioCMS/internal/model"
	"PortfolioCMS/internal/repo"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Disposition — что делать с содержимым удаляемой папки.
type Disposition string

const (
	// MoveContentsUp переносит медиа и подпапки к родителю удаляемой папки.
	MoveContentsUp Disposition = "move"
	// DeleteContents удаляет всё поддерево вместе с медиа и блобами.
	DeleteContents Disposition = "delete"
)

// ParseDisposition разбирает значение из запроса. Пустое значение — перенос вверх.
func ParseDisposition(s string) (Disposition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "move", "false":
		return MoveContentsUp, nil
	case "delete", "true":
		return DeleteContents, nil
	}
	return "", fmt.Errorf("disposition %q: %w", s, ErrInvalidInput)
}

// FolderMeta отображаемые поля папки. nil — не менять.
type FolderMeta struct {
	Description *string
	Color       *string
	Icon        *string
	IsPublic    *bool
}

func (m FolderMeta) updates() map[string]any {
	u := map[string]any{}
	if m.Description != nil {
		u["description"] = *m.Description
	}
	if m.Color != nil && *m.Color != "" {
		u["color"] = *m.Color
	}
	if m.Icon != nil && *m.Icon != "" {
		u["icon"] = *m.Icon
	}
	if m.IsPublic != nil {
		u["is_public"] = *m.IsPublic
	}
	return u
}

// Stats агрегаты папки по прямому активному содержимому.
type Stats struct {
	MediaCount int64 `json:"media_count"`
	TotalSize  int64 `json:"total_size"`
}

// ItemFailure ошибка обработки одного элемента в пакетной операции.
type ItemFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// DeleteReport итог удаления папки.
type DeleteReport struct {
	FolderID       string        `json:"folder_id"`
	Disposition    Disposition   `json:"disposition"`
	MovedMedia     int64         `json:"moved_media"`
	MovedFolders   int64         `json:"moved_folders"`
	RemovedFolders []string      `json:"removed_folders"`
	RemovedMedia   []string      `json:"removed_media"`
	Failures       []ItemFailure `json:"failures"`
}

// FolderTree управляет иерархией папок и размещением медиа в ней.
type FolderTree struct {
	folders repo.FolderRepository
	media   repo.MediaRepository
	blobs   blob.Store
	logger  *zap.SugaredLogger
}

func NewFolderTree(folders repo.FolderRepository, media repo.MediaRepository, blobs blob.Store, logger *zap.SugaredLogger) *FolderTree {
	return &FolderTree{folders: folders, media: media, blobs: blobs, logger: logger}
}

// normalizeID: пустая строка означает корень.
func normalizeID(id *string) *string {
	if id == nil {
		return nil
	}
	s := strings.TrimSpace(*id)
	if s == "" {
		return nil
	}
	return &s
}

func (t *FolderTree) getFolder(ctx context.Context, id string) (*model.Folder, error) {
	f, err := t.folders.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "folder", id)
	}
	return f, nil
}

// Get возвращает папку по id.
func (t *FolderTree) Get(ctx context.Context, id string) (*model.Folder, error) {
	return t.getFolder(ctx, id)
}

// CreateFolder создаёт пустую папку под parentID (nil — в корне).
func (t *FolderTree) CreateFolder(ctx context.Context, name string, parentID *string, meta FolderMeta, createdBy *int64) (*model.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	parentID = normalizeID(parentID)
	if parentID != nil {
		if _, err := t.getFolder(ctx, *parentID); err != nil {
			return nil, fmt.Errorf("parent: %w", err)
		}
	}

	taken, err := t.folders.SiblingExists(ctx, parentID, name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%q: %w", name, ErrDuplicateName)
	}

	f := &model.Folder{Name: name, ParentID: parentID, CreatedBy: createdBy}
	if meta.Description != nil {
		f.Description = *meta.Description
	}
	if meta.Color != nil {
		f.Color = *meta.Color
	}
	if meta.Icon != nil {
		f.Icon = *meta.Icon
	}
	if meta.IsPublic != nil {
		f.IsPublic = *meta.IsPublic
	}
	// уникальный индекс закрывает гонку между проверкой и вставкой
	if err := t.folders.Create(ctx, f); err != nil {
		return nil, duplicate(err, name)
	}
	t.logger.Infow("folder created", "id", f.ID, "name", f.Name, "parent", model.ParentKey(parentID))
	return f, nil
}

// RenameFolder меняет имя и отображаемые поля, родитель не меняется.
func (t *FolderTree) RenameFolder(ctx context.Context, id, newName string, meta FolderMeta) error {
	f, err := t.getFolder(ctx, id)
	if err != nil {
		return err
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrInvalidName
	}
	if newName != f.Name {
		taken, err := t.folders.SiblingExists(ctx, f.ParentID, newName, f.ID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%q: %w", newName, ErrDuplicateName)
		}
	}

	updates := meta.updates()
	updates["name"] = newName
	if err := t.folders.Update(ctx, f.ID, updates); err != nil {
		return duplicate(notFound(err, "folder", id), newName)
	}
	return nil
}

// MoveFolder переносит папку под targetParent (nil — в корень).
// Потомки переезжают вместе с ней: связи хранятся по id, а не по пути.
func (t *FolderTree) MoveFolder(ctx context.Context, id string, targetParent *string) error {
	f, err := t.getFolder(ctx, id)
	if err != nil {
		return err
	}
	targetParent = normalizeID(targetParent)

	if targetParent != nil {
		if *targetParent == f.ID {
			return ErrCycle
		}
		if _, err := t.getFolder(ctx, *targetParent); err != nil {
			return fmt.Errorf("target: %w", err)
		}
		inside, err := t.IsDescendant(ctx, *targetParent, f.ID)
		if err != nil {
			return err
		}
		if inside {
			return ErrCycle
		}
	}
	if model.ParentKey(targetParent) == model.ParentKey(f.ParentID) {
		return nil
	}

	taken, err := t.folders.SiblingExists(ctx, targetParent, f.Name, f.ID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%q: %w", f.Name, ErrDuplicateName)
	}
	if err := t.folders.SetParent(ctx, f.ID, targetParent); err != nil {
		return duplicate(notFound(err, "folder", id), f.Name)
	}
	t.logger.Infow("folder moved", "id", f.ID, "from", model.ParentKey(f.ParentID), "to", model.ParentKey(targetParent))
	return nil
}

// DeleteFolder удаляет папку, распоряжаясь содержимым согласно d.
func (t *FolderTree) DeleteFolder(ctx context.Context, id string, d Disposition) (*DeleteReport, error) {
	f, err := t.getFolder(ctx, id)
	if err != nil {
		return nil, err
	}
	report := &DeleteReport{
		FolderID:       f.ID,
		Disposition:    d,
		RemovedFolders: []string{},
		RemovedMedia:   []string{},
		Failures:       []ItemFailure{},
	}

	switch d {
	case MoveContentsUp:
		err = t.deleteMovingUp(ctx, f, report)
	case DeleteContents:
		err = t.deleteSubtree(ctx, f, report)
	default:
		return nil, fmt.Errorf("disposition %q: %w", d, ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}

	if f.ParentID != nil {
		if _, err := t.FolderStats(ctx, *f.ParentID); err != nil {
			t.logger.Warnw("recompute parent stats failed", "folder", *f.ParentID, "error", err)
		}
	}
	t.logger.Infow("folder deleted",
		"id", f.ID,
		"disposition", d,
		"removed_folders", len(report.RemovedFolders),
		"removed_media", len(report.RemovedMedia),
		"moved_media", report.MovedMedia,
		"failures", len(report.Failures),
	)
	return report, nil
}

func (t *FolderTree) deleteMovingUp(ctx context.Context, f *model.Folder, report *DeleteReport) error {
	children, err := t.folders.ListChildren(ctx, &f.ID)
	if err != nil {
		return err
	}
	// все конфликты имён выявляем до первой записи
	for _, c := range children {
		taken, err := t.folders.SiblingExists(ctx, f.ParentID, c.Name, f.ID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("subfolder %q: %w", c.Name, ErrDuplicateName)
		}
	}

	media, folders, err := t.folders.Dissolve(ctx, f.ID, f.ParentID)
	if err != nil {
		return fmt.Errorf("move contents up: %w", duplicate(notFound(err, "folder", f.ID), f.Name))
	}
	report.MovedMedia = media
	report.MovedFolders = folders
	report.RemovedFolders = append(report.RemovedFolders, f.ID)
	return nil
}

// deleteSubtree обходит поддерево явным стеком и удаляет снизу вверх.
// Папка, в которой осталось медиа или уцелевшая подпапка, не удаляется вместе со всеми предками.
func (t *FolderTree) deleteSubtree(ctx context.Context, root *model.Folder, report *DeleteReport) error {
	order, err := t.collectSubtree(ctx, root.ID)
	if err != nil {
		return err
	}

	kept := map[string]struct{}{}
	keep := func(n subtreeNode, reason string) {
		kept[n.id] = struct{}{}
		if n.parent != "" {
			kept[n.parent] = struct{}{}
		}
		report.Failures = append(report.Failures, ItemFailure{ID: n.id, Reason: reason})
	}

	// в pre-order предок всегда раньше потомков, значит обратный порядок — дети перед родителями
	for i := len(order) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := order[i]
		items, err := t.media.ListByFolders(ctx, []string{n.id})
		if err != nil {
			return fmt.Errorf("list media of %q: %w", n.id, err)
		}
		mediaLeft := 0
		for j := range items {
			m := &items[j]
			if err := t.media.Delete(ctx, m.ID); err != nil {
				mediaLeft++
				report.Failures = append(report.Failures, ItemFailure{ID: m.ID, Reason: err.Error()})
				t.logger.Warnw("delete media record failed", "media", m.ID, "folder", n.id, "error", err)
				continue
			}
			report.RemovedMedia = append(report.RemovedMedia, m.ID)
			for _, berr := range removeBlobs(ctx, t.blobs, t.logger, m) {
				report.Failures = append(report.Failures, ItemFailure{ID: m.ID, Reason: "blob: " + berr.Error()})
			}
		}

		if mediaLeft > 0 {
			keep(n, fmt.Sprintf("folder kept: %d media could not be deleted", mediaLeft))
			continue
		}
		if _, ok := kept[n.id]; ok {
			keep(n, "folder kept: subfolder could not be deleted")
			continue
		}
		if err := t.folders.Delete(ctx, n.id); err != nil {
			keep(n, err.Error())
			t.logger.Warnw("delete folder record failed", "folder", n.id, "error", err)
			continue
		}
		report.RemovedFolders = append(report.RemovedFolders, n.id)
	}

	if len(kept) > 0 {
		ids := make([]*string, 0, len(kept))
		for id := range kept {
			ids = append(ids, &id)
		}
		t.refreshStats(ctx, ids...)
	}
	return nil
}

type subtreeNode struct {
	id     string
	parent string // "" для корня обхода
}

// collectSubtree возвращает узлы поддерева в pre-order. Повторно встреченный id (цикл) пропускается.
func (t *FolderTree) collectSubtree(ctx context.Context, rootID string) ([]subtreeNode, error) {
	stack := []subtreeNode{{id: rootID}}
	seen := map[string]struct{}{}
	var order []subtreeNode
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[n.id]; ok {
			t.logger.Warnw("folder visited twice during subtree walk", "folder", n.id)
			continue
		}
		seen[n.id] = struct{}{}
		order = append(order, n)

		children, err := t.folders.ListChildren(ctx, &n.id)
		if err != nil {
			return nil, fmt.Errorf("list children of %q: %w", n.id, err)
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, subtreeNode{id: children[i].ID, parent: n.id})
		}
	}
	return order, nil
}

// FolderStats пересчитывает и сохраняет агрегаты папки.
func (t *FolderTree) FolderStats(ctx context.Context, id string) (Stats, error) {
	cnt, size, err := t.media.FolderStats(ctx, id)
	if err != nil {
		return Stats{}, err
	}
	if err := t.folders.SetStats(ctx, id, cnt, size); err != nil {
		return Stats{}, notFound(err, "folder", id)
	}
	return Stats{MediaCount: cnt, TotalSize: size}, nil
}

// refreshStats пересчитывает агрегаты набора папок, ошибки только логируются.
func (t *FolderTree) refreshStats(ctx context.Context, ids ...*string) {
	done := map[string]struct{}{}
	for _, id := range ids {
		if id == nil {
			continue
		}
		if _, ok := done[*id]; ok {
			continue
		}
		done[*id] = struct{}{}
		if _, err := t.FolderStats(ctx, *id); err != nil && !errors.Is(err, ErrNotFound) {
			t.logger.Warnw("recompute folder stats failed", "folder", *id, "error", err)
		}
	}
}
