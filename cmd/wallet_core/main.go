package main

import (
	"context"
	"fmt"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"wallet_core/internal/infrastructure/restapi"
	"wallet_core/internal/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	loadEnvironment()

	e, err := parseEnv()
	if err != nil {
		logger.Fatal("Failed to read environment", "error", err)
	}

	var (
		configPath string
		network    string
		currency   string
		timeout    time.Duration
	)

	// setup loads config, initializes logging and wires the application.
	setup := func() *Application {
		cfg, err := loadConfig(configPath, e)
		if err != nil {
			logger.Fatal("Failed to load configuration", "error", err)
		}
		if network != "" {
			cfg.Network.Active = network
		}

		zl, err := logger.Init(cfg.Logging.Level)
		if err != nil {
			logger.Fatal("Failed to initialize logger", "error", err)
		}

		app, err := NewApplication(cfg, zl)
		if err != nil {
			logger.Fatal("Failed to initialize application", "error", err)
		}
		return app
	}

	rootCmd := &cobra.Command{
		Use:   "wallet_core",
		Short: "Wallet backend for account balances and network switching",
		Long: `wallet_core serves native and token balances of accounts on a
selectable network, with local-currency rates and identity redirects.`,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", e.ConfigPath, "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVarP(&network, "network", "n", "", "Network name or identifier (overrides config)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API and metrics servers",
		Run: func(cmd *cobra.Command, args []string) {
			app := setup()
			app.Serve()
		},
	}

	tokensCmd := &cobra.Command{
		Use:   "tokens <address>",
		Short: "Print the tokens held by an account as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := setup()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if currency != "" {
				if err := app.rates.Refresh(ctx); err != nil {
					logger.Warn("Rates unavailable, printing unpriced balances", "error", err)
				}
			}
			result, err := app.balances.AccountTokens(ctx, args[0], currency)
			if err != nil {
				return err
			}

			views := make([]restapi.TokenView, 0, len(result.Tokens))
			for _, t := range result.Tokens {
				views = append(views, restapi.NewTokenView(t, currency != ""))
			}
			return writeJSON(views)
		},
	}
	tokensCmd.Flags().StringVar(&currency, "currency", "", "Local currency for native token value, e.g. usd")
	tokensCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall request timeout")

	networksCmd := &cobra.Command{
		Use:   "networks",
		Short: "List the known network definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := setup()
			return writeJSON(app.networks.All())
		},
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(networksCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func writeJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
