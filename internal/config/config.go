package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	cache "github.com/davidbz/tarifa/internal/cache/redis"
	"github.com/davidbz/tarifa/internal/observability"
	"github.com/davidbz/tarifa/internal/source/file"
	"github.com/davidbz/tarifa/internal/source/remote"
)

// Config represents the pricing service configuration.
type Config struct {
	Server  ServerConfig
	CORS    CORSConfig
	Metrics MetricsConfig
	Format  FormatConfig
	Log     observability.LogConfig
	Data    file.DataConfig
	Remote  remote.Config
	Redis   cache.Config
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  int `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int `env:"SERVER_WRITE_TIMEOUT" envDefault:"30"`
	// CacheMaxAge is the Cache-Control max-age in seconds for served documents.
	CacheMaxAge int `env:"SERVER_CACHE_MAX_AGE" envDefault:"300"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,HEAD,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,If-None-Match"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"false"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Namespace string `env:"METRICS_NAMESPACE" envDefault:"tarifa"`
}

// FormatConfig contains presentation settings.
type FormatConfig struct {
	Locale string `env:"QUOTE_LOCALE" envDefault:"es-CO"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	*ServerConfig
	*CORSConfig
	*MetricsConfig
	*FormatConfig
	*observability.LogConfig
	*file.DataConfig
	Remote *remote.Config
	Redis  *cache.Config
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, envFile := range []string{".env"} {
		_ = godotenv.Load(envFile)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Server,
		&cfg.CORS,
		&cfg.Metrics,
		&cfg.Format,
		&cfg.Log,
		&cfg.Data,
		&cfg.Remote,
		&cfg.Redis,
	}
}
