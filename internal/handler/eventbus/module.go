package eventbus

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/fx"
)

var Module = fx.Module("eventbus",
	fx.Provide(
		NewEventHandler,
		NewRouter,
	),
	fx.Invoke(func(lc fx.Lifecycle, router *message.Router, sub message.Subscriber, h *EventHandler, logger *slog.Logger) {
		RegisterHandlers(router, sub, h)

		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go func() {
					if err := router.Run(context.Background()); err != nil {
						logger.Error("event router stopped", "err", err)
					}
				}()
				select {
				case <-router.Running():
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			},
			OnStop: func(ctx context.Context) error {
				return router.Close()
			},
		})
	}),
)
