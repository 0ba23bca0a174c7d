package cmd

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/fanchat/messaging-service/config"
	"github.com/fanchat/messaging-service/internal/adapter/pubsub"
	"github.com/fanchat/messaging-service/internal/domain/registry"
	"github.com/fanchat/messaging-service/internal/handler/eventbus"
	httpapi "github.com/fanchat/messaging-service/internal/handler/http"
	"github.com/fanchat/messaging-service/internal/handler/ws"
	"github.com/fanchat/messaging-service/internal/logging"
	"github.com/fanchat/messaging-service/internal/service"
	"github.com/fanchat/messaging-service/internal/storage/sqlite"
)

func NewApp(cfg *config.Config) *fx.App {
	return fx.New(
		fx.Provide(
			func() *config.Config { return cfg },
			ProvideLogger,
		),
		pubsub.Module,
		sqlite.Module,
		registry.Module,
		service.Module,
		eventbus.Module,
		ws.Module,
		httpapi.Module,
	)
}

// ProvideLogger builds the process logger and hooks the config watcher so the
// level can be changed without a restart.
func ProvideLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, level, err := logging.New(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	cfg.Watch(func(fresh *config.Config) {
		if err := logging.SetLevel(level, fresh.Log.Level); err != nil {
			logger.Warn("log level change rejected", "level", fresh.Log.Level, "err", err)
			return
		}
		logger.Info("log level updated", "level", fresh.Log.Level)
	})

	return logger, nil
}
