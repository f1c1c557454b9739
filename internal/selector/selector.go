// Package selector picks the backend variant for each capability at
// process start. The choice is a build-configuration check, not a
// reachability probe: the remote variant is used iff the cloud integration
// is configured into this build. Decided once, never re-selected.
package selector

import (
	"database/sql"

	"gameshelf/internal/auth"
	"gameshelf/internal/cloud"
	"gameshelf/internal/config"
	"gameshelf/internal/games"
	"gameshelf/internal/images"

	"github.com/rs/zerolog"
)

// Backends holds the chosen implementation for each capability. Each
// concern is selected independently.
type Backends struct {
	Auth   auth.Service
	Games  games.Repository
	Images images.Store
}

func New(cfg *config.Config, db *sql.DB, client *cloud.Client, logger zerolog.Logger) *Backends {
	b := &Backends{}

	if cfg.CloudConfigured() {
		logger.Info().Str("concern", "auth").Str("backend", "remote").Msg("backend selected")
		b.Auth = auth.NewRemoteService(cfg, client, logger)
	} else {
		logger.Info().Str("concern", "auth").Str("backend", "local").Msg("backend selected (cloud not configured)")
		b.Auth = auth.NewLocalService(db, logger)
	}

	if cfg.CloudConfigured() {
		logger.Info().Str("concern", "games").Str("backend", "remote").Msg("backend selected")
		b.Games = games.NewRemoteRepository(client, logger)
	} else {
		logger.Info().Str("concern", "games").Str("backend", "local").Msg("backend selected (cloud not configured)")
		b.Games = games.NewLocalRepository(db, logger)
	}

	if cfg.CloudConfigured() {
		logger.Info().Str("concern", "images").Str("backend", "remote").Msg("backend selected")
		b.Images = images.NewRemoteStore(client, logger)
	} else {
		logger.Info().Str("concern", "images").Str("backend", "local").Msg("backend selected (cloud not configured)")
		b.Images = images.NewLocalStore(cfg, logger)
	}

	return b
}
