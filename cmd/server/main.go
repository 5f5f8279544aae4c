package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/prescription-analysis-server/internal/api"
	"github.com/prescription-analysis-server/internal/catalog"
	"github.com/prescription-analysis-server/internal/config"
	"github.com/prescription-analysis-server/internal/domain"
	"github.com/prescription-analysis-server/internal/service"
	"github.com/prescription-analysis-server/pkg/external"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := setupLogger(cfg.Logging)

	// Build the medicine reference index. A catalog failure is fatal: no
	// extraction or interaction logic may run against an invalid index.
	provider, err := catalogProvider(cfg.Catalog)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create catalog provider")
	}
	records, err := provider.LoadCatalog(context.Background())
	if err != nil {
		logger.WithError(err).Fatal("Failed to load medicine catalog")
	}
	index, err := catalog.Build(records, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build medicine reference index")
	}

	var redisClient *redis.Client
	if cfg.Cache.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			logger.WithError(err).Fatal("Invalid Redis URL")
		}
		opts.PoolSize = cfg.Cache.PoolSize
		opts.PoolTimeout = cfg.Cache.PoolTimeout
		opts.MaxRetries = cfg.Cache.MaxRetries
		redisClient = redis.NewClient(opts)
	}

	// Interaction sources: the curated table first, then both external
	// authorities with their own caches.
	openFDACache, err := external.NewQueryCache("openfda", cfg.ExternalAPI.OpenFDA.CacheTTL, cfg.Cache.MaxEntries, redisClient, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create OpenFDA cache")
	}
	rxNormCache, err := external.NewQueryCache("rxnorm", cfg.ExternalAPI.RxNorm.CacheTTL, cfg.Cache.MaxEntries, redisClient, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create RxNorm cache")
	}

	sources := []domain.InteractionSource{
		service.NewLocalInteractionSource(),
		external.NewOpenFDAClient(cfg.ExternalAPI.OpenFDA, openFDACache, logger),
		external.NewRxNormClient(cfg.ExternalAPI.RxNorm, rxNormCache, logger),
	}
	aggregator := service.NewInteractionAggregator(sources, logger)

	// Extraction chain: the model path leads when the inference service is
	// configured, the deterministic path always backs it.
	var modelExtractor domain.EntityExtractor
	if cfg.ExternalAPI.Model.Enabled {
		modelClient := external.NewModelClient(cfg.ExternalAPI.Model, logger)
		modelExtractor = service.NewModelBackedExtractor(modelClient, index, logger)
	}
	ruleExtractor := service.NewRuleBasedExtractor(index, logger)
	extractor := service.NewHybridExtractor(modelExtractor, ruleExtractor, logger)

	analyzer := service.NewPrescriptionAnalyzer(extractor, aggregator, logger)
	alternatives := service.NewAlternativeResolverService(index, logger)

	logger.WithFields(logrus.Fields{
		"host":          cfg.Server.Host,
		"port":          cfg.Server.Port,
		"catalog":       index.Len(),
		"model_enabled": cfg.ExternalAPI.Model.Enabled,
	}).Info("Starting prescription analysis server")

	// Create server
	server := api.NewServer(configManager, analyzer, aggregator, alternatives, logger)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Start server
	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

// setupLogger configures the process logger from config.
func setupLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

// catalogProvider selects the configured catalog source.
func catalogProvider(cfg domain.CatalogConfig) (domain.CatalogProvider, error) {
	switch cfg.Source {
	case "json":
		return catalog.NewJSONFileProvider(cfg.Path), nil
	case "sqlite":
		return catalog.NewSQLiteProvider(cfg.Path)
	default:
		return catalog.NewSeedProvider(), nil
	}
}
