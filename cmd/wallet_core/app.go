package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/s-larionov/process-manager"
	"go.uber.org/zap"

	"wallet_core/internal/app/port"
	"wallet_core/internal/app/service"
	"wallet_core/internal/infrastructure/configloader"
	"wallet_core/internal/infrastructure/httpclient"
	"wallet_core/internal/infrastructure/network/client"
	networkdefinition "wallet_core/internal/infrastructure/network/definition"
	"wallet_core/internal/infrastructure/restapi"
	"wallet_core/internal/pkg/logger"
)

// Application wires the services of one wallet_core process.
type Application struct {
	cfg     *configloader.Config
	logger  *zap.Logger
	manager *process.Manager

	networks *networkdefinition.NetworkDefinitionProvider
	registry *client.ClientRegistry
	rates    *service.NativeRateService
	balances port.BalanceService
}

// NewApplication builds every dependency but starts nothing.
func NewApplication(cfg *configloader.Config, zl *zap.Logger) (*Application, error) {
	a := &Application{
		cfg:     cfg,
		logger:  zl,
		manager: process.NewManager(),
	}

	initializers := []func() error{
		a.initRegistry,
		a.initServices,
	}
	for _, initializer := range initializers {
		if err := initializer(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Application) initRegistry() error {
	a.networks = networkdefinition.NewNetworkDefinitionProvider(logger.NewAdapter(), a.cfg.Network.Custom)

	active, ok := a.networks.Lookup(a.cfg.Network.Active)
	if !ok {
		return fmt.Errorf("unknown network %q", a.cfg.Network.Active)
	}

	opts := client.Options{
		Transport: client.TransportOptions{
			Timeout:           a.cfg.Transport.RequestTimeout(),
			RequestsPerSecond: a.cfg.Transport.RequestsPerSecond,
			Burst:             a.cfg.Transport.Burst,
			MaxConnsPerHost:   a.cfg.Transport.MaxConnsPerHost,
			UserAgent:         a.cfg.Transport.UserAgent,
		},
		MetadataCacheTTL:  time.Duration(a.cfg.MetadataCache.TTLMinutes) * time.Minute,
		IndexerPageSize:   a.cfg.Transport.IndexerPageSize,
		MetadataBatchSize: a.cfg.Transport.MetadataBatchSize,
	}

	registry, err := client.NewClientRegistry(active, opts, a.logger)
	if err != nil {
		return err
	}
	a.registry = registry
	return nil
}

func (a *Application) initServices() error {
	gecko := a.cfg.Rates.CoinGecko
	prices := httpclient.NewCoinGeckoClient(
		gecko.BaseURL,
		gecko.APIKey,
		gecko.NativeCoinID,
		time.Duration(gecko.ClientTimeoutSeconds)*time.Second,
		a.logger,
	)

	a.rates = service.NewRateService(
		prices,
		a.cfg.Rates.Currencies,
		time.Duration(a.cfg.Rates.CacheTTLMinutes)*time.Minute,
		logger.NewAdapter(),
	)
	a.balances = service.NewBalanceService(a.registry, a.rates, logger.NewAdapter())
	return nil
}

// Serve starts the API and metrics servers plus the rate refresher and blocks
// until SIGINT or SIGTERM.
func (a *Application) Serve() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go a.rates.Run(ctx, time.Duration(a.cfg.Rates.RefreshIntervalSeconds)*time.Second)

	handler := restapi.NewHandler(a.balances, a.registry, a.networks, logger.NewAdapter())
	api := &http.Server{
		Addr:              a.cfg.Server.Listen,
		Handler:           restapi.SetupRouter(handler, a.cfg.Server.AllowedOrigins, a.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.manager.AddWorker(process.NewServerWorker("api", api))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:              a.cfg.Server.MetricsListen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.manager.AddWorker(process.NewServerWorker("prometheus", metricsSrv))

	a.logger.Info("Starting wallet_core",
		zap.String("network", a.registry.Current().Network().DisplayName()),
		zap.String("listen", a.cfg.Server.Listen),
		zap.String("metricsListen", a.cfg.Server.MetricsListen))
	a.manager.StartAll()

	go func(manager *process.Manager) {
		<-sigChan
		a.logger.Info("Shutting down")
		cancel()
		manager.StopAll()
	}(a.manager)

	a.manager.AwaitAll()
}
