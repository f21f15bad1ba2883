package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"wallet_core/internal/infrastructure/configloader"
	"wallet_core/internal/pkg/logger"
)

// Env holds process-level overrides applied on top of the YAML config.
type Env struct {
	ConfigPath      string `env:"WALLET_CORE_CONFIG" envDefault:"configs/config.yaml"`
	LogLevel        string `env:"LOG_LEVEL"`
	Network         string `env:"WALLET_CORE_NETWORK"`
	APIListen       string `env:"API_LISTEN"`
	MetricsListen   string `env:"PROMETHEUS_LISTEN"`
	CoinGeckoAPIKey string `env:"COINGECKO_API_KEY"`
}

// loadEnvironment loads .env files from the working directory and from the
// directory of the executable. Missing files are not an error.
func loadEnvironment() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file in current directory", "error", err)
	} else {
		logger.Info("Loaded .env file from current directory")
	}

	execPath, err := os.Executable()
	if err != nil {
		return
	}
	envPath := filepath.Join(filepath.Dir(execPath), ".env")
	if err := godotenv.Load(envPath); err == nil {
		logger.Info("Loaded .env file from app directory", "path", envPath)
	}
}

func parseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse environment: %w", err)
	}
	return e, nil
}

// loadConfig reads the YAML config at path, falling back to defaults when the
// file does not exist, then applies the environment overrides.
func loadConfig(path string, e Env) (*configloader.Config, error) {
	var cfg *configloader.Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info("Config file not found, using defaults", "path", path)
		cfg = configloader.Default()
	} else {
		cfg, err = configloader.Load(path)
		if err != nil {
			return nil, err
		}
	}

	if e.LogLevel != "" {
		cfg.Logging.Level = e.LogLevel
	}
	if e.Network != "" {
		cfg.Network.Active = e.Network
	}
	if e.APIListen != "" {
		cfg.Server.Listen = e.APIListen
	}
	if e.MetricsListen != "" {
		cfg.Server.MetricsListen = e.MetricsListen
	}
	if e.CoinGeckoAPIKey != "" {
		cfg.Rates.CoinGecko.APIKey = e.CoinGeckoAPIKey
	}
	return cfg, nil
}
