package domain

import "time"

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Catalog     CatalogConfig     `mapstructure:"catalog"`
	ExternalAPI ExternalAPIConfig `mapstructure:"external_api"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// CatalogConfig controls where the medicine catalog is loaded from at
// startup. Source is one of "seed", "json", or "sqlite"; Path applies to the
// file-backed sources.
type CatalogConfig struct {
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
}

// ExternalAPIConfig groups per-provider configuration
type ExternalAPIConfig struct {
	OpenFDA ProviderConfig `mapstructure:"openfda"`
	RxNorm  ProviderConfig `mapstructure:"rxnorm"`
	Model   ModelConfig    `mapstructure:"model"`
}

// ProviderConfig represents configuration for one external lookup service
type ProviderConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit int           `mapstructure:"rate_limit"` // requests per second
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

// ModelConfig represents configuration for the biomedical language model
// inference service used by the primary extraction path.
type ModelConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Enabled bool          `mapstructure:"enabled"`
}

// CacheConfig represents provider-cache configuration. The memory tier is
// always on; the Redis tier is enabled only when RedisURL is set.
type CacheConfig struct {
	RedisURL    string        `mapstructure:"redis_url"`
	MaxEntries  int           `mapstructure:"max_entries"`
	PoolSize    int           `mapstructure:"pool_size"`
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
