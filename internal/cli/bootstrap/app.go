// Package bootstrap собирает сервисы медиатеки для админской утилиты.
package bootstrap

import (
	"PortfolioCMS/internal/blob"
	"PortfolioCMS/internal/config"
	"PortfolioCMS/internal/repo"
	"PortfolioCMS/internal/service"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// App сервисы поверх той же БД и того же хранилища, что и у сервера.
type App struct {
	Admins *service.AdminService
	Tree   *service.FolderTree
	Media  *service.MediaService
}

// Open подключается к БД (с миграциями) и хранилищу блобов.
// cleanup необходимо вызвать после окончания работы, чтобы закрыть соединение с БД.
func Open(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*App, func() error, error) {
	db, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	cleanup := func() error { return sqlDB.Close() }

	store, err := blob.New(ctx, cfg)
	if err != nil {
		_ = cleanup()
		return nil, nil, fmt.Errorf("open blob store: %w", err)
	}

	folders := repo.NewFolderRepository(db)
	media := repo.NewMediaRepository(db)
	tree := service.NewFolderTree(folders, media, store, logger)
	return &App{
		Admins: service.NewAdminService(repo.NewAdminRepository(db)),
		Tree:   tree,
		Media:  service.NewMediaService(media, tree, store, logger),
	}, cleanup, nil
}
