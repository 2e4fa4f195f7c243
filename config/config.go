package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Providers ProvidersConfig
	Matching  MatchingConfig
	Watch     WatchConfig
	SMTP      SMTPConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds catalog store configuration
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// CacheConfig holds aggregation result cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// ProviderEndpoint describes one marketplace search API
type ProviderEndpoint struct {
	Name    string `mapstructure:"name"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// ProvidersConfig holds marketplace provider configuration
type ProvidersConfig struct {
	Timeout     time.Duration      `mapstructure:"timeout"`
	MockEnabled bool               `mapstructure:"mock_enabled"`
	Endpoints   []ProviderEndpoint `mapstructure:"endpoints"`
}

// MatchingConfig holds similarity scoring configuration
type MatchingConfig struct {
	Threshold          float64       `mapstructure:"threshold"`
	Weights            WeightsConfig `mapstructure:"weights"`
	EnableDebugLogging bool          `mapstructure:"enable_debug_logging"`
}

// WeightsConfig holds the four similarity signal weights
type WeightsConfig struct {
	Brand          float64 `mapstructure:"brand"`
	ModelCode      float64 `mapstructure:"model_code"`
	SpecOverlap    float64 `mapstructure:"spec_overlap"`
	PriceProximity float64 `mapstructure:"price_proximity"`
}

// WatchConfig holds watch scanning configuration
type WatchConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	ScanInterval time.Duration `mapstructure:"scan_interval"`
}

// SMTPConfig holds price alert mail configuration
type SMTPConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
	To   string `mapstructure:"to"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/marketwatch/")

	v.SetEnvPrefix("MARKETWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("cache.ttl", "5m")

	v.SetDefault("providers.timeout", "10s")
	v.SetDefault("providers.mock_enabled", true)

	v.SetDefault("matching.threshold", 0.75)
	v.SetDefault("matching.weights.brand", 0.3)
	v.SetDefault("matching.weights.model_code", 0.4)
	v.SetDefault("matching.weights.spec_overlap", 0.2)
	v.SetDefault("matching.weights.price_proximity", 0.1)
	v.SetDefault("matching.enable_debug_logging", false)

	v.SetDefault("watch.enabled", true)
	v.SetDefault("watch.scan_interval", "30m")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Database.DSN == "" {
		return fmt.Errorf("database DSN is required (set MARKETWATCH_DATABASE_DSN)")
	}

	if config.Matching.Threshold <= 0 || config.Matching.Threshold > 1 {
		return fmt.Errorf("matching threshold must be in (0,1], got: %v", config.Matching.Threshold)
	}

	w := config.Matching.Weights
	if w.Brand < 0 || w.ModelCode < 0 || w.SpecOverlap < 0 || w.PriceProximity < 0 {
		return fmt.Errorf("similarity weights must be non-negative")
	}

	if !config.Providers.MockEnabled && len(config.Providers.Endpoints) == 0 {
		return fmt.Errorf("at least one provider is required (enable the mock provider or configure endpoints)")
	}

	return nil
}
