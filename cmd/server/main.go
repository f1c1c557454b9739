package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"gameshelf/internal/config"
	"gameshelf/internal/constants"
	fxmodules "gameshelf/internal/fx"
	"gameshelf/internal/middleware"
	"gameshelf/internal/server"
	"gameshelf/internal/service"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	bridge *server.Server,
	session *service.Session,
	collection *service.Collection,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := middleware.RequestID(logger)(c.Handler(bridge.Routes()))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: handler,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				// Resolve the initial Loading state before the shell's
				// first snapshot is meaningful.
				session.Restore(context.Background())
				collection.Configure(session.CurrentUser())
			}()
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("bridge server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("bridge server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down bridge server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing local store")
			}

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("bridge server shutdown failed")
				return err
			}
			logger.Info().Msg("bridge server stopped gracefully")
			return nil
		},
	})
}
