package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/pricewatch/internal/common"
	"github.com/ternarybob/pricewatch/internal/handlers"
	"github.com/ternarybob/pricewatch/internal/interfaces"
	"github.com/ternarybob/pricewatch/internal/services/llm"
	"github.com/ternarybob/pricewatch/internal/services/monitor"
	"github.com/ternarybob/pricewatch/internal/services/scraper"
	"github.com/ternarybob/pricewatch/internal/services/simulator"
	"github.com/ternarybob/pricewatch/internal/services/tracker"
	"github.com/ternarybob/pricewatch/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Core services
	SimulatorService *simulator.Service
	ScraperService   *scraper.Service
	TrackerService   *tracker.Service
	MonitorService   *monitor.Service

	// Explainer is nil when no API key is configured; the explain
	// endpoint reports that as an error frame instead of failing startup.
	Explainer interfaces.Explainer

	// HTTP handlers
	APIHandler     *handlers.APIHandler
	ProductHandler *handlers.ProductHandler
	ExplainHandler *handlers.ExplainHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize database
	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize services
	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Initialize handlers
	app.initHandlers()

	// Start the background polling cycle after everything is wired
	if err := app.MonitorService.Start(); err != nil {
		return nil, fmt.Errorf("failed to start price monitor: %w", err)
	}

	logger.Info().
		Bool("monitor_enabled", cfg.Monitor.Enabled).
		Bool("explainer_enabled", app.Explainer != nil).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := badger.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initServices initializes all business services in dependency order
func (a *App) initServices() error {
	a.SimulatorService = simulator.NewService(a.Logger)

	a.ScraperService = scraper.NewService(&a.Config.Scraper, a.Logger)
	a.Logger.Debug().
		Bool("headless", a.Config.Scraper.Headless).
		Msg("Scraper service initialized")

	trackerService, err := tracker.NewService(a.StorageManager.AlertStorage(), a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize alert tracker: %w", err)
	}
	a.TrackerService = trackerService

	a.MonitorService = monitor.NewService(
		a.StorageManager.ProductStorage(),
		a.ScraperService,
		a.TrackerService,
		a.SimulatorService,
		&a.Config.Monitor,
		a.Config.Simulation.HorizonDays,
		a.Logger,
	)
	a.Logger.Debug().
		Str("schedule", a.Config.Monitor.Schedule).
		Msg("Monitor service initialized")

	explainer, err := llm.NewClaudeExplainer(&a.Config.Claude, a.StorageManager.KeyValueStorage(), a.Logger)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to initialize Claude explainer - explanations will be unavailable")
		a.Logger.Info().Msg("To enable explanations, set ANTHROPIC_API_KEY or claude.api_key in config")
	} else {
		a.Explainer = explainer
	}

	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.Logger)
	a.ProductHandler = handlers.NewProductHandler(a.MonitorService, a.TrackerService, a.Logger)
	a.ExplainHandler = handlers.NewExplainHandler(a.MonitorService, a.Explainer, a.Logger)
}

// Close closes all application resources
func (a *App) Close() error {
	if a.MonitorService != nil {
		a.MonitorService.Stop()
		a.Logger.Info().Msg("Price monitor stopped")
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
