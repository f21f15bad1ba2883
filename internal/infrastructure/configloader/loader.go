package configloader

import (
	"fmt"
	"os"
	"time"

	"wallet_core/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the REST API and metrics listeners.
type ServerConfig struct {
	Listen        string `yaml:"listen"`
	MetricsListen string `yaml:"metricsListen"`
	// AllowedOrigins feeds the CORS middleware. Empty allows any origin.
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// NetworkSection selects the active network and declares custom ones.
type NetworkSection struct {
	Active string                 `yaml:"active"`
	Custom []entity.NetworkConfig `yaml:"custom"`
}

// TransportConfig tunes backend HTTP access.
type TransportConfig struct {
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	RequestsPerSecond    float64 `yaml:"requestsPerSecond"`
	Burst                int     `yaml:"burst"`
	MaxConnsPerHost      int     `yaml:"maxConnsPerHost"`
	UserAgent            string  `yaml:"userAgent"`
	IndexerPageSize      int     `yaml:"indexerPageSize"`
	MetadataBatchSize    int     `yaml:"metadataBatchSize"`
}

// RequestTimeout returns RequestTimeoutMillis as a duration.
func (c TransportConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMillis) * time.Millisecond
}

// MetadataCacheConfig sets how long contract metadata stays cached.
type MetadataCacheConfig struct {
	TTLMinutes int `yaml:"ttlMinutes"`
}

// CoinGeckoConfig holds CoinGecko API specific configurations.
type CoinGeckoConfig struct {
	APIKey               string `yaml:"apiKey"`
	BaseURL              string `yaml:"baseURL"`
	ClientTimeoutSeconds int    `yaml:"clientTimeoutSeconds"`
	NativeCoinID         string `yaml:"nativeCoinId"`
}

// RatesConfig configures local-currency pricing.
type RatesConfig struct {
	Currencies             []string        `yaml:"currencies"`
	CacheTTLMinutes        int             `yaml:"cacheTTLMinutes"`
	RefreshIntervalSeconds int             `yaml:"refreshIntervalSeconds"`
	CoinGecko              CoinGeckoConfig `yaml:"coingecko"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Logging       LoggingConfig       `yaml:"logging"`
	Network       NetworkSection      `yaml:"network"`
	Transport     TransportConfig     `yaml:"transport"`
	MetadataCache MetadataCacheConfig `yaml:"metadataCache"`
	Rates         RatesConfig         `yaml:"rates"`
}

// Load reads the YAML configuration file from the given path and unmarshals it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied, for running
// without a config file.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.MetricsListen == "" {
		cfg.Server.MetricsListen = ":2112"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Network.Active == "" {
		cfg.Network.Active = string(entity.NetworkMainnet)
	}

	if cfg.Transport.RequestTimeoutMillis <= 0 {
		cfg.Transport.RequestTimeoutMillis = 10000
	}
	if cfg.Transport.Burst <= 0 {
		cfg.Transport.Burst = 10
	}
	if cfg.Transport.MaxConnsPerHost <= 0 {
		cfg.Transport.MaxConnsPerHost = 64
	}
	if cfg.Transport.IndexerPageSize <= 0 {
		cfg.Transport.IndexerPageSize = 100
	}
	if cfg.Transport.MetadataBatchSize <= 0 {
		cfg.Transport.MetadataBatchSize = 8
	}
	// RequestsPerSecond stays 0 (unlimited) unless set

	if cfg.MetadataCache.TTLMinutes <= 0 {
		cfg.MetadataCache.TTLMinutes = 30
	}

	if len(cfg.Rates.Currencies) == 0 {
		cfg.Rates.Currencies = []string{"usd"}
	}
	if cfg.Rates.CacheTTLMinutes <= 0 {
		cfg.Rates.CacheTTLMinutes = 10
	}
	if cfg.Rates.RefreshIntervalSeconds <= 0 {
		cfg.Rates.RefreshIntervalSeconds = 300
	}
	if cfg.Rates.CoinGecko.BaseURL == "" {
		cfg.Rates.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.Rates.CoinGecko.ClientTimeoutSeconds <= 0 {
		cfg.Rates.CoinGecko.ClientTimeoutSeconds = 10
	}
	if cfg.Rates.CoinGecko.NativeCoinID == "" {
		cfg.Rates.CoinGecko.NativeCoinID = "tezos"
	}
	// No default for APIKey, it should be set by the user if required by the API (Pro)
}
