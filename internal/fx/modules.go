package fx

import (
	"gameshelf/internal/auth"
	"gameshelf/internal/cloud"
	"gameshelf/internal/config"
	"gameshelf/internal/database"
	"gameshelf/internal/games"
	"gameshelf/internal/images"
	"gameshelf/internal/logger"
	"gameshelf/internal/selector"
	"gameshelf/internal/server"
	"gameshelf/internal/service"
	"gameshelf/internal/signal"

	"go.uber.org/fx"
)

func provideAuth(b *selector.Backends) auth.Service      { return b.Auth }
func provideGames(b *selector.Backends) games.Repository { return b.Games }
func provideImages(b *selector.Backends) images.Store    { return b.Images }

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(cloud.NewClient),
	fx.Provide(signal.NewHub),
	// backend selection
	fx.Provide(selector.New),
	fx.Provide(provideAuth),
	fx.Provide(provideGames),
	fx.Provide(provideImages),
	// controllers
	fx.Provide(service.NewSession),
	fx.Provide(service.NewCollection),
	// bridge server
	fx.Provide(server.New),
)
