package registry

import (
	"context"

	"go.uber.org/fx"

	"github.com/fanchat/messaging-service/config"
)

var Module = fx.Module("registry",
	fx.Provide(
		func(cfg *config.Config) *Hub {
			return NewHub(
				WithMailboxSize(cfg.Hub.MailboxSize),
				WithSendTimeout(cfg.Hub.SendTimeout),
			)
		},
		fx.Annotate(
			func(h *Hub) Hubber { return h },
			fx.As(new(Hubber)),
		),
	),
	fx.Invoke(func(lc fx.Lifecycle, h Hubber) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				h.Shutdown()
				return nil
			},
		})
	}),
)
