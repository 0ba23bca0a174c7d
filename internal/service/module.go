package service

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/fanchat/messaging-service/config"
	"github.com/fanchat/messaging-service/internal/adapter/pubsub"
	"github.com/fanchat/messaging-service/internal/domain/registry"
)

var Module = fx.Module(
	"service",

	fx.Provide(
		func(cfg *config.Config) *JWTAuth {
			return NewJWTAuth(cfg.Auth.Secret, cfg.Auth.TokenTTL)
		},
		fx.Annotate(
			func(a *JWTAuth) Auther { return a },
			fx.As(new(Auther)),
		),

		fx.Annotate(
			NewUserResolver,
			fx.As(new(Resolver)),
		),
		fx.Annotate(
			func(hub registry.Hubber, directory Directory, events pubsub.Dispatcher, logger *slog.Logger, cfg *config.Config) *LifecycleCoordinator {
				return NewLifecycleCoordinator(hub, directory, events, logger, cfg.Hub.SessionBuffer)
			},
			fx.As(new(Coordinator)),
		),
		fx.Annotate(
			NewMessageDispatcher,
			fx.As(new(Dispatcher)),
		),
		fx.Annotate(
			NewHistoryService,
			fx.As(new(HistoryReader)),
		),
		fx.Annotate(
			NewAccountService,
			fx.As(new(Accounter)),
		),
	),

	// Intercept the directory to add the circuit breaker and call logging.
	fx.Decorate(func(orig Directory, logger *slog.Logger) Directory {
		return NewDirectoryMiddleware(orig, logger)
	}),
)
