package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"go.uber.org/fx"

	"github.com/fanchat/messaging-service/config"
)

var Module = fx.Module(
	"handler_http",

	fx.Provide(NewAPI),

	fx.Invoke(registerServer),
)

func registerServer(lc fx.Lifecycle, cfg *config.Config, api *API, logger *slog.Logger) {
	srv := &http.Server{
		Addr:        cfg.HTTP.Addr,
		Handler:     api.Routes(),
		ReadTimeout: cfg.HTTP.ReadTimeout,
		// WriteTimeout stays unset: it would cut long-lived ws sessions.
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("http server listening", "addr", srv.Addr)

			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server stopped", "err", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
