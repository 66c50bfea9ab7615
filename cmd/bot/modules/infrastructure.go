package modules

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.uber.org/fx"

	"github.com/ticketline/ticketline/internal/config"
	"github.com/ticketline/ticketline/internal/logger"
	"github.com/ticketline/ticketline/internal/store"
	"github.com/ticketline/ticketline/internal/version"
)

var InfraModule = fx.Module(
	"infra",
	fx.Provide(
		provideConfig,
		provideLogger,
		provideStore,
	),
)

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	logger.Info("starting", slog.String("version", version.String()))
	return logger.L
}

func provideStore(lc fx.Lifecycle, log *slog.Logger, cfg config.Config) *store.Store {
	s := store.New(log, cfg.Storage, cfg.Admin)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Init(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return s.Close()
		},
	})
	return s
}
