// Package app wires configuration, storage, clients, and services into the
// shared application core used by cmd/scripwatch-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ksiddharth/scripwatch/internal/clients/bse"
	"github.com/ksiddharth/scripwatch/internal/clients/gemini"
	"github.com/ksiddharth/scripwatch/internal/clients/nse"
	"github.com/ksiddharth/scripwatch/internal/common"
	"github.com/ksiddharth/scripwatch/internal/interfaces"
	"github.com/ksiddharth/scripwatch/internal/scrape"
	"github.com/ksiddharth/scripwatch/internal/services/announce"
	"github.com/ksiddharth/scripwatch/internal/services/bhav"
	"github.com/ksiddharth/scripwatch/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Storage         interfaces.StorageManager
	BSEClient       *bse.Client
	NSEClient       *nse.Client
	GeminiClient    interfaces.GeminiClient
	AnnounceService interfaces.AnnounceService
	BhavService     interfaces.BhavService
	StartupTime     time.Time

	schedulerCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Load configuration: provided path, SCRIPWATCH_CONFIG, binary dir, then
	// the development fallback.
	if configPath == "" {
		configPath = os.Getenv("SCRIPWATCH_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "scripwatch.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/scripwatch.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage and log paths to the binary directory.
	if config.Storage.Internal.Path != "" && !filepath.IsAbs(config.Storage.Internal.Path) {
		config.Storage.Internal.Path = filepath.Join(binDir, config.Storage.Internal.Path)
	}
	if config.Storage.RefData.Path != "" && !filepath.IsAbs(config.Storage.RefData.Path) {
		config.Storage.RefData.Path = filepath.Join(binDir, config.Storage.RefData.Path)
	}
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	bseClient := bse.NewClient(
		bse.WithBaseURL(config.Clients.BSE.BaseURL),
		bse.WithSiteURL(config.Clients.BSE.SiteURL),
		bse.WithLogger(logger),
		bse.WithRateLimit(config.Clients.BSE.RateLimit),
		bse.WithTimeout(config.Clients.BSE.GetTimeout()),
	)

	nseClient := nse.NewClient(
		nse.WithBaseURL(config.Clients.NSE.BaseURL),
		nse.WithSiteURL(config.Clients.NSE.SiteURL),
		nse.WithLogger(logger),
		nse.WithRateLimit(config.Clients.NSE.RateLimit),
		nse.WithTimeout(config.Clients.NSE.GetTimeout()),
	)

	var geminiClient interfaces.GeminiClient
	if config.Clients.Gemini.APIKey != "" {
		client, err := gemini.NewClient(context.Background(), config.Clients.Gemini.APIKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			geminiClient = client
		}
	} else {
		logger.Warn().Msg("Gemini API key not configured - announcement digests will be unavailable")
	}

	scrapeOpts := scrape.Options{
		MaxDepth:  config.Scraper.MaxDepth,
		PageDelay: config.Scraper.GetPageDelay(),
	}

	announceService := announce.NewService(
		storageManager,
		[]interfaces.AnnouncementSource{bseClient, nseClient},
		geminiClient,
		logger,
		scrapeOpts,
	)
	bhavService := bhav.NewService(logger)

	logger.Info().
		Str("version", common.GetVersion()).
		Str("environment", config.Environment).
		Dur("startup", time.Since(startupStart)).
		Msg("Application initialized")

	return &App{
		Config:          config,
		Logger:          logger,
		Storage:         storageManager,
		BSEClient:       bseClient,
		NSEClient:       nseClient,
		GeminiClient:    geminiClient,
		AnnounceService: announceService,
		BhavService:     bhavService,
		StartupTime:     time.Now(),
	}, nil
}

// StartScheduler launches the background announcement refresh loop.
func (a *App) StartScheduler() {
	if a.Config.Scraper.RefreshInterval == "" {
		a.Logger.Info().Msg("Scheduler disabled (refresh interval not set)")
		return
	}
	interval := a.Config.Scraper.GetRefreshInterval()

	ctx, cancel := context.WithCancel(context.Background())
	a.schedulerCancel = cancel

	go startAnnouncementScheduler(ctx, a.AnnounceService, a.Logger, interval)
	a.Logger.Info().Dur("interval", interval).Msg("Announcement scheduler started")
}

// Close stops background work and releases resources.
func (a *App) Close() error {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
	}
	if a.GeminiClient != nil {
		a.GeminiClient.Close()
	}
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
