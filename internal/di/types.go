/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * passed to the server for route registration.
 */
package di

import (
	"github.com/finmetrix/finmetrix/internal/clientdata"
	"github.com/finmetrix/finmetrix/internal/clients/nasdaq"
	"github.com/finmetrix/finmetrix/internal/clients/yahoo"
	"github.com/finmetrix/finmetrix/internal/clients/zippopotam"
	"github.com/finmetrix/finmetrix/internal/database"
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
	"github.com/finmetrix/finmetrix/internal/reliability"
)

/**
 * Container holds all dependencies for the application.
 *
 * Architecture:
 * - CacheDB: single SQLite database holding upstream response caches
 * - Clients: external data providers (Yahoo Finance, Nasdaq directory, geocoding)
 * - Services: business logic layer (price series, fundamentals, profiles, charts)
 * - Dispatcher: selection fan-out that turns a dashboard selection into render payloads
 * - Handlers: HTTP route handlers registered by the server
 *
 * All dependencies are injected via constructor injection.
 */
type Container struct {
	// Cache database (upstream responses, msgpack blobs with TTLs)
	CacheDB        *database.DB
	ClientDataRepo *clientdata.Repository

	// Clients - external API integrations
	YahooClient   *yahoo.Client
	NasdaqClient  *nasdaq.Client
	GeocodeClient *zippopotam.Client

	// Services - business logic layer
	PricesService       *prices.Service
	FundamentalsService *fundamentals.Service
	ProfileService      *profile.Service
	DirectoryService    *directory.Service
	ChartsService       *charts.Service

	// Dispatcher - selection rendering
	Dispatcher *dispatch.Dispatcher

	// Handlers - HTTP layer
	PricesHandler       *priceshandlers.Handler
	FundamentalsHandler *fundamentalshandlers.Handler
	ProfileHandler      *profilehandlers.Handler
	DirectoryHandler    *directoryhandlers.Handler
	DispatchHandler     *dispatchhandlers.Handler
}

// JobInstances holds scheduled background jobs created during wiring.
// The snapshot job is nil when snapshots are not configured.
type JobInstances struct {
	CleanupJob  *clientdata.CleanupJob
	SnapshotJob *reliability.SnapshotJob
}
