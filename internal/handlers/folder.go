package handlers

import (
	"PortfolioCMS/internal/middleware"
	"PortfolioCMS/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FolderHandler обслуживает дерево папок медиатеки.
type FolderHandler struct {
	FolderTree *service.FolderTree
	Logger     *zap.SugaredLogger
}

func NewFolderHandler(tree *service.FolderTree, logger *zap.SugaredLogger) *FolderHandler {
	return &FolderHandler{FolderTree: tree, Logger: logger}
}

type folderRequest struct {
	Name        *string `json:"name"`
	Parent      *string `json:"parent"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
	IsPublic    *bool   `json:"is_public"`
}

func (f folderRequest) meta() service.FolderMeta {
	return service.FolderMeta{Description: f.Description, Color: f.Color, Icon: f.Icon, IsPublic: f.IsPublic}
}

// Tree отдаёт всё дерево папок.
func (h *FolderHandler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.FolderTree.BuildTree(r.Context())
	if err != nil {
		writeError(w, h.Logger, "Tree", err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// List отдаёт содержимое корня или папки из ?parent=.
func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	var parent *string
	if p := r.URL.Query().Get("parent"); p != "" && p != "root" {
		parent = &p
	}
	h.contents(w, r, parent)
}

// Get отдаёт папку с путём, подпапками и медиа.
func (h *FolderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.contents(w, r, &id)
}

func (h *FolderHandler) contents(w http.ResponseWriter, r *http.Request, id *string) {
	c, err := h.FolderTree.Contents(r.Context(), id)
	if err != nil {
		writeError(w, h.Logger, "Contents", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if !decodeJSON(w, r, h.Logger, "CreateFolder", &req) {
		return
	}
	name := ""
	if req.Name != nil {
		name = *req.Name
	}
	var createdBy *int64
	if uid, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		createdBy = &uid
	}

	f, err := h.FolderTree.CreateFolder(r.Context(), name, req.Parent, req.meta(), createdBy)
	if err != nil {
		writeError(w, h.Logger, "CreateFolder", err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// Update переименовывает папку и меняет отображаемые поля. Без name имя остаётся прежним.
func (h *FolderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req folderRequest
	if !decodeJSON(w, r, h.Logger, "UpdateFolder", &req) {
		return
	}

	ctx := r.Context()
	current, err := h.FolderTree.Get(ctx, id)
	if err != nil {
		writeError(w, h.Logger, "UpdateFolder", err)
		return
	}
	name := current.Name
	if req.Name != nil {
		name = *req.Name
	}
	if err := h.FolderTree.RenameFolder(ctx, id, name, req.meta()); err != nil {
		writeError(w, h.Logger, "UpdateFolder", err)
		return
	}
	updated, err := h.FolderTree.Get(ctx, id)
	if err != nil {
		writeError(w, h.Logger, "UpdateFolder", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Move переносит папку под parent (null или "" — в корень).
func (h *FolderHandler) Move(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Parent *string `json:"parent"`
	}
	if !decodeJSON(w, r, h.Logger, "MoveFolder", &req) {
		return
	}
	ctx := r.Context()
	if err := h.FolderTree.MoveFolder(ctx, id, req.Parent); err != nil {
		writeError(w, h.Logger, "MoveFolder", err)
		return
	}
	f, err := h.FolderTree.Get(ctx, id)
	if err != nil {
		writeError(w, h.Logger, "MoveFolder", err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// Delete удаляет папку. ?contents=move|delete; deleteContents=true|false тоже принимается.
func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	raw := r.URL.Query().Get("contents")
	if raw == "" {
		raw = r.URL.Query().Get("deleteContents")
	}
	if raw == "" && r.Body != nil && r.ContentLength != 0 {
		raw = r.FormValue("deleteContents")
	}
	d, err := service.ParseDisposition(raw)
	if err != nil {
		writeError(w, h.Logger, "DeleteFolder", err)
		return
	}

	report, err := h.FolderTree.DeleteFolder(r.Context(), id, d)
	if err != nil {
		writeError(w, h.Logger, "DeleteFolder", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *FolderHandler) Breadcrumbs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	crumbs, err := h.FolderTree.Breadcrumbs(r.Context(), &id)
	if err != nil {
		writeError(w, h.Logger, "Breadcrumbs", err)
		return
	}
	writeJSON(w, http.StatusOK, crumbs)
}

// Stats пересчитывает агрегаты папки.
func (h *FolderHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stats, err := h.FolderTree.FolderStats(r.Context(), id)
	if err != nil {
		writeError(w, h.Logger, "FolderStats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
