package main

import (
	"PortfolioCMS/internal/blob"
	"PortfolioCMS/internal/config"
	"PortfolioCMS/internal/handlers"
	"PortfolioCMS/internal/middleware"
	"PortfolioCMS/internal/repo"
	"PortfolioCMS/internal/service"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	cfg := config.NewConfig()
	if cfg.Version {
		fmt.Printf("PortfolioCMS server\nVersion: %s\nBuild date: %s\n", version, buildDate)
		return
	}

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	store, err := blob.New(ctx, cfg)
	if err != nil {
		sugar.Fatalw("failed to initialize blob storage", "provider", cfg.StorageProvider, "error", err)
	}

	folderRepo := repo.NewFolderRepository(gormDB)
	mediaRepo := repo.NewMediaRepository(gormDB)
	adminService := service.NewAdminService(repo.NewAdminRepository(gormDB))
	tree := service.NewFolderTree(folderRepo, mediaRepo, store, sugar)
	mediaService := service.NewMediaService(mediaRepo, tree, store, sugar)

	h := handlers.NewHandler(adminService, tree, mediaService, sugar, cfg)

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"DatabaseDSN", cfg.DatabaseDSN,
		"StorageProvider", cfg.StorageProvider,
		"UploadMaxMB", cfg.UploadMaxMB,
	)

	srv := &http.Server{Addr: addr, Handler: h.Router}
	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("Server shutdown failed", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
	sugar.Infow("Server stopped")
}
