package commands

import (
	"PortfolioCMS/internal/cli/bootstrap"
	"PortfolioCMS/internal/config"
	"context"

	"go.uber.org/zap"
)

// Logger логгер сервисов, запускаемых командами. main подставляет настоящий.
var Logger = zap.NewNop().Sugar()

// openApp подключается к БД и хранилищу; в тестах подменяется.
var openApp = func(ctx context.Context, cfg *config.Config) (*bootstrap.App, func() error, error) {
	return bootstrap.Open(ctx, cfg, Logger)
}

// withApp открывает сервисы на время fn.
func withApp(ctx context.Context, cfg *config.Config, fn func(app *bootstrap.App) error) error {
	app, done, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := done(); cerr != nil {
			Logger.Warnw("close database", "error", cerr)
		}
	}()
	return fn(app)
}
