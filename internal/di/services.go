package di

import (
	"github.com/rs/zerolog"

	"github.com/finmetrix/finmetrix/internal/clients/nasdaq"
	"github.com/finmetrix/finmetrix/internal/clients/yahoo"
	"github.com/finmetrix/finmetrix/internal/clients/zippopotam"
	"github.com/finmetrix/finmetrix/internal/config"
	"github.com/finmetrix/finmetrix/internal/dispatch"
	dispatchhandlers "github.com/finmetrix/finmetrix/internal/dispatch/handlers"
	"github.com/finmetrix/finmetrix/internal/modules/charts"
	"github.com/finmetrix/finmetrix/internal/modules/directory"
	directoryhandlers "github.com/finmetrix/finmetrix/internal/modules/directory/handlers"
	"github.com/finmetrix/finmetrix/internal/modules/fundamentals"
	fundamentalshandlers "github.com/finmetrix/finmetrix/internal/modules/fundamentals/handlers"
	"github.com/finmetrix/finmetrix/internal/modules/prices"
	priceshandlers "github.com/finmetrix/finmetrix/internal/modules/prices/handlers"
	"github.com/finmetrix/finmetrix/internal/modules/profile"
	profilehandlers "github.com/finmetrix/finmetrix/internal/modules/profile/handlers"
)

// InitializeServices wires clients, services, the dispatcher, and HTTP handlers
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	// Clients share the cache repository for response caching
	container.YahooClient = yahoo.NewClient(container.ClientDataRepo, log)
	container.NasdaqClient = nasdaq.NewClient(container.ClientDataRepo, log)
	container.GeocodeClient = zippopotam.NewClient(container.ClientDataRepo, log)

	// Services
	container.PricesService = prices.NewService(container.YahooClient, log)
	container.FundamentalsService = fundamentals.NewService(container.YahooClient, log)
	container.ProfileService = profile.NewService(container.YahooClient, container.GeocodeClient, log)
	container.DirectoryService = directory.NewService(container.NasdaqClient, log)
	container.ChartsService = charts.NewService(log)

	// Dispatcher turns dashboard selections into render payloads
	container.Dispatcher = dispatch.NewDispatcher(
		container.PricesService,
		container.FundamentalsService,
		container.ProfileService,
		container.ChartsService,
		cfg.Watchlist.Tickers,
		log,
	)

	// HTTP handlers
	container.PricesHandler = priceshandlers.NewHandler(container.PricesService, container.ChartsService, log)
	container.FundamentalsHandler = fundamentalshandlers.NewHandler(container.FundamentalsService, container.ChartsService, log)
	container.ProfileHandler = profilehandlers.NewHandler(container.ProfileService, log)
	container.DirectoryHandler = directoryhandlers.NewHandler(container.DirectoryService, log)
	container.DispatchHandler = dispatchhandlers.NewHandler(container.Dispatcher, cfg.DevMode, log)

	log.Info().Msg("Services initialized")
	return nil
}
