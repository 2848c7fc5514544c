package handlers

import (
	"PortfolioCMS/internal/config"
	"PortfolioCMS/internal/middleware"
	"PortfolioCMS/internal/service"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	adminService *service.AdminService,
	tree *service.FolderTree,
	mediaService *service.MediaService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	adminHandler := NewAdminHandler(adminService, logger, config)
	folderHandler := NewFolderHandler(tree, logger)
	mediaHandler := NewMediaHandler(mediaService, logger, config)

	// Admin routes
	r.Post("/api/admin/login", adminHandler.Login)
	r.Post("/api/admin/logout", adminHandler.Logout)
	r.Get("/api/admin/status", adminHandler.Status)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		// Folder routes
		r.Route("/api/media/folders", func(r chi.Router) {
			r.Get("/tree", folderHandler.Tree)
			r.Get("/", folderHandler.List)
			r.Post("/", folderHandler.Create)
			r.Get("/{id}", folderHandler.Get)
			r.Put("/{id}", folderHandler.Update)
			r.Post("/{id}/move", folderHandler.Move)
			r.Delete("/{id}", folderHandler.Delete)
			r.Get("/{id}/breadcrumbs", folderHandler.Breadcrumbs)
			r.Post("/{id}/stats", folderHandler.Stats)
		})

		// Media routes
		r.Post("/api/media/bulk-delete", mediaHandler.BulkDelete)
		r.Post("/api/media/bulk-move", mediaHandler.BulkMove)
		r.Post("/api/media/bulk-tag", mediaHandler.BulkTag)
		r.Get("/api/media", mediaHandler.List)
		r.Post("/api/media", mediaHandler.Upload)
		r.Get("/api/media/{id}", mediaHandler.Get)
		r.Put("/api/media/{id}", mediaHandler.Update)
		r.Delete("/api/media/{id}", mediaHandler.Delete)
		r.Get("/api/media/{id}/file", mediaHandler.File)
	})

	// Локальное хранилище отдаёт файлы по публичному префиксу
	if config.StorageProvider == "" || config.StorageProvider == "local" {
		prefix := "/" + strings.Trim(config.PublicURLPrefix, "/")
		if prefix != "/" && config.StoragePath != "" {
			fs := http.StripPrefix(prefix+"/", http.FileServer(http.Dir(config.StoragePath)))
			r.Get(prefix+"/*", fs.ServeHTTP)
		}
	}

	return &Handler{Router: r}
}
