package handlers

import (
	"PortfolioCMS/internal/config"
	"PortfolioCMS/internal/middleware"
	"PortfolioCMS/internal/model"
	"PortfolioCMS/internal/repo"
	"PortfolioCMS/internal/service"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MediaHandler загрузка, просмотр и пакетные операции над медиа.
type MediaHandler struct {
	MediaService *service.MediaService
	Logger       *zap.SugaredLogger
	Config       *config.Config
}

func NewMediaHandler(mediaService *service.MediaService, logger *zap.SugaredLogger, cfg *config.Config) *MediaHandler {
	return &MediaHandler{MediaService: mediaService, Logger: logger, Config: cfg}
}

// List отдаёт медиа по фильтрам ?folder=<id|root>&type=&tag=&status=&search=.
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repo.MediaFilter{
		Type:   q.Get("type"),
		Tag:    q.Get("tag"),
		Status: q.Get("status"),
		Search: q.Get("search"),
	}
	switch folder := q.Get("folder"); folder {
	case "":
	case "root":
		f.Root = true
	default:
		f.FolderID = &folder
	}

	items, err := h.MediaService.List(r.Context(), f)
	if err != nil {
		writeError(w, h.Logger, "ListMedia", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Upload принимает multipart/form-data: file, title, description, tags, folder, type.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	maxFile := h.Config.UploadMaxBytes()
	// Лимит общего тела запроса
	r.Body = http.MaxBytesReader(w, r.Body, maxFile+1*1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.Logger.Warnw("Upload: invalid multipart form", "error", err)
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.Logger.Warnw("Upload: missing file", "error", err)
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()
	content, err := io.ReadAll(io.LimitReader(file, maxFile+1))
	if err != nil {
		h.Logger.Warnw("Upload: failed to read file", "error", err)
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}
	if int64(len(content)) > maxFile {
		h.Logger.Warnw("Upload: payload too large", "name", header.Filename, "limit", maxFile)
		http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		return
	}

	in := service.UploadInput{
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		Tags:         model.ParseTags(r.FormValue("tags")),
		Type:         r.FormValue("type"),
		OriginalName: header.Filename,
		Content:      content,
	}
	if folder := r.FormValue("folder"); folder != "" && folder != "root" {
		in.FolderID = &folder
	}
	if uid, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		in.UploadedBy = &uid
	}

	m, err := h.MediaService.Upload(r.Context(), in)
	if err != nil {
		writeError(w, h.Logger, "Upload", err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// Get отдаёт метаданные и засчитывает обращение.
func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.MediaService.Access(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, "GetMedia", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type mediaUpdateRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
	Type        *string   `json:"type"`
	Status      *string   `json:"status"`
	// Folder: отсутствует — не менять, null или "" — в корень.
	Folder json.RawMessage `json:"folder"`
}

func (h *MediaHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req mediaUpdateRequest
	if !decodeJSON(w, r, h.Logger, "UpdateMedia", &req) {
		return
	}
	patch := service.MediaPatch{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Type:        req.Type,
		Status:      req.Status,
	}
	if len(req.Folder) > 0 {
		patch.MoveFolder = true
		if !bytes.Equal(bytes.TrimSpace(req.Folder), []byte("null")) {
			var folder string
			if err := json.Unmarshal(req.Folder, &folder); err != nil {
				http.Error(w, "folder must be a string or null", http.StatusBadRequest)
				return
			}
			patch.FolderID = &folder
		}
	}

	m, err := h.MediaService.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, h.Logger, "UpdateMedia", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.MediaService.Delete(r.Context(), id); err != nil {
		writeError(w, h.Logger, "DeleteMedia", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "result": "deleted"})
}

// File отдаёт содержимое файла.
func (h *MediaHandler) File(w http.ResponseWriter, r *http.Request) {
	m, rc, err := h.MediaService.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, "File", err)
		return
	}
	defer rc.Close()

	if m.MimeType != "" {
		w.Header().Set("Content-Type", m.MimeType)
	}
	name := m.OriginalName
	if name == "" {
		name = m.BlobKey
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", strings.ReplaceAll(name, `"`, "")))
	if _, err := io.Copy(w, rc); err != nil {
		h.Logger.Warnw("File: stream interrupted", "id", m.ID, "error", err)
	}
}

type bulkRequest struct {
	MediaIDs     []string `json:"media_ids"`
	TargetFolder *string  `json:"target_folder"`
	Add          []string `json:"add"`
	Remove       []string `json:"remove"`
}

func (h *MediaHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !decodeJSON(w, r, h.Logger, "BulkDelete", &req) {
		return
	}
	res, err := h.MediaService.BulkDelete(r.Context(), req.MediaIDs)
	if err != nil {
		writeError(w, h.Logger, "BulkDelete", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// BulkMove переносит элементы в target_folder (null — в корень).
func (h *MediaHandler) BulkMove(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !decodeJSON(w, r, h.Logger, "BulkMove", &req) {
		return
	}
	res, err := h.MediaService.BulkMove(r.Context(), req.MediaIDs, req.TargetFolder)
	if err != nil {
		writeError(w, h.Logger, "BulkMove", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *MediaHandler) BulkTag(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !decodeJSON(w, r, h.Logger, "BulkTag", &req) {
		return
	}
	res, err := h.MediaService.BulkTag(r.Context(), req.MediaIDs, req.Add, req.Remove)
	if err != nil {
		writeError(w, h.Logger, "BulkTag", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
