package pubsub

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/fx"
)

// NewGoChannel builds the in-process Pub/Sub backing the event bus.
func NewGoChannel(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, logger)
}

// NewWatermillLogger bridges watermill's logging onto the service logger.
func NewWatermillLogger(logger *slog.Logger) watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logger.With("component", "watermill"))
}

var Module = fx.Module("pubsub",
	fx.Provide(
		NewWatermillLogger,
		NewGoChannel,
		fx.Annotate(
			func(ch *gochannel.GoChannel) message.Publisher { return ch },
			fx.As(new(message.Publisher)),
		),
		fx.Annotate(
			func(ch *gochannel.GoChannel) message.Subscriber { return ch },
			fx.As(new(message.Subscriber)),
		),
		NewEventDispatcher,
	),
	fx.Invoke(func(lc fx.Lifecycle, ch *gochannel.GoChannel) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return ch.Close()
			},
		})
	}),
)
