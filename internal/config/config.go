package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/prescription-analysis-server/internal/domain"
)

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	// Set configuration file name and paths
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/prescription-analysis-server/")

	// Set environment variable prefix and enable automatic env binding
	viper.SetEnvPrefix("RX_ANALYSIS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	m.setDefaults()

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using defaults and environment variables
	}

	// Unmarshal configuration into struct
	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// Catalog defaults
	viper.SetDefault("catalog.source", "seed")
	viper.SetDefault("catalog.path", "")

	// External API defaults. Cache TTLs follow how often each corpus
	// changes: FDA labels weekly, RxNorm monthly.
	viper.SetDefault("external_api.openfda.base_url", "https://api.fda.gov/drug/label.json")
	viper.SetDefault("external_api.openfda.timeout", "10s")
	viper.SetDefault("external_api.openfda.rate_limit", 4)
	viper.SetDefault("external_api.openfda.cache_ttl", "168h")

	viper.SetDefault("external_api.rxnorm.base_url", "https://rxnav.nlm.nih.gov/REST")
	viper.SetDefault("external_api.rxnorm.timeout", "10s")
	viper.SetDefault("external_api.rxnorm.rate_limit", 10)
	viper.SetDefault("external_api.rxnorm.cache_ttl", "720h")

	viper.SetDefault("external_api.model.base_url", "")
	viper.SetDefault("external_api.model.timeout", "15s")
	viper.SetDefault("external_api.model.enabled", false)

	// Cache defaults. Redis is off unless a URL is configured.
	viper.SetDefault("cache.redis_url", "")
	viper.SetDefault("cache.max_entries", 1024)
	viper.SetDefault("cache.pool_size", 10)
	viper.SetDefault("cache.pool_timeout", "4s")
	viper.SetDefault("cache.max_retries", 3)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetCatalogConfig returns catalog configuration
func (m *Manager) GetCatalogConfig() *domain.CatalogConfig {
	return &m.config.Catalog
}

// GetExternalAPIConfig returns external API configuration
func (m *Manager) GetExternalAPIConfig() *domain.ExternalAPIConfig {
	return &m.config.ExternalAPI
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	// Validate server configuration
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	// Validate catalog configuration
	switch config.Catalog.Source {
	case "seed":
	case "json", "sqlite":
		if config.Catalog.Path == "" {
			return fmt.Errorf("catalog path is required for source %q", config.Catalog.Source)
		}
	default:
		return fmt.Errorf("invalid catalog source: %s", config.Catalog.Source)
	}

	// Validate external API URLs
	if config.ExternalAPI.OpenFDA.BaseURL == "" {
		return fmt.Errorf("OpenFDA base URL is required")
	}
	if config.ExternalAPI.RxNorm.BaseURL == "" {
		return fmt.Errorf("RxNorm base URL is required")
	}
	if config.ExternalAPI.Model.Enabled && config.ExternalAPI.Model.BaseURL == "" {
		return fmt.Errorf("model base URL is required when the model path is enabled")
	}

	// Validate cache TTLs
	if config.ExternalAPI.OpenFDA.CacheTTL <= 0 {
		return fmt.Errorf("OpenFDA cache TTL must be positive")
	}
	if config.ExternalAPI.RxNorm.CacheTTL <= 0 {
		return fmt.Errorf("RxNorm cache TTL must be positive")
	}

	// Validate logging configuration
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// GetRedisConnectionString returns the Redis connection string
func (m *Manager) GetRedisConnectionString() string {
	return m.config.Cache.RedisURL
}
