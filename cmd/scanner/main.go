package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gemscan/gemscan-backend/internal/scanner/api"
	"github.com/gemscan/gemscan-backend/internal/scanner/config"
	"github.com/gemscan/gemscan-backend/internal/scanner/feeds"
	"github.com/gemscan/gemscan-backend/internal/scanner/telemetry"
	"github.com/gemscan/gemscan-backend/pkg/logging"
	"github.com/gemscan/gemscan-backend/pkg/metrics"
	"github.com/gemscan/gemscan-backend/pkg/reliability"
	"github.com/gemscan/gemscan-backend/pkg/retry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Initialize configuration
	if err := config.Init(); err != nil {
		panic(fmt.Sprintf("Failed to initialize config: %v", err))
	}

	// Initialize logger
	logConfig := logging.LoggerConfig{
		ProcessName:   logging.ScannerProcess,
		IsDevelopment: config.IsDevMode(),
	}

	logger, err := logging.NewZapLogger(logConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	logger.Info("Starting Scanner service ...")

	// Load per-source reliability policies
	policies, err := config.LoadSourcePolicies(config.GetSourcesConfigPath())
	if err != nil {
		logger.Warn("Failed to load source policies, using defaults for all sources", "error", err)
		policies = map[string]reliability.SourcePolicy{}
	}
	logger.Info("[1/5] Source policies loaded", "sources", len(policies))

	// Reliability layer shared by every feed client
	registry := reliability.NewRegistry(logger)
	invoker := reliability.NewInvoker(registry, logger)

	// Metrics collector and per-source gauges
	collector := metrics.NewCollector("scanner")
	sourceMetrics := metrics.NewSourceMetrics("gemscan", collector.Registry())
	collector.Start()
	logger.Info("[2/5] Metrics collector started")

	// Market data feed clients
	httpConfig := retry.DefaultHTTPRetryConfig()
	httpConfig.Timeout = config.GetHTTPTimeout()
	httpConfig.RetryConfig.MaxRetries = config.GetHTTPMaxRetries()
	httpConfig.RetryConfig.InitialDelay = config.GetHTTPInitialWait()

	coingecko, err := feeds.NewCoinGeckoClient(invoker, logger, config.GetCoinGeckoBaseURL(), httpConfig, policyFor(policies, feeds.CoinGeckoSource))
	if err != nil {
		logger.Fatal("Failed to create CoinGecko client", "error", err)
	}

	binance, err := feeds.NewBinanceClient(invoker, logger, config.GetBinanceBaseURL(), httpConfig, policyFor(policies, feeds.BinanceSource))
	if err != nil {
		logger.Fatal("Failed to create Binance client", "error", err)
	}
	logger.Info("[3/5] Feed clients created")

	// Snapshot publisher
	publisher := telemetry.NewPublisher(invoker, sourceMetrics, logger, config.GetSnapshotPublishInterval())
	if err := publisher.Start(); err != nil {
		logger.Fatal("Failed to start snapshot publisher", "error", err)
	}
	logger.Info("[4/5] Snapshot publisher started")

	// HTTP API server
	server := api.NewServer(invoker, logger, collector.Handler())
	go func() {
		if err := server.Start(config.GetScannerAPIPort()); err != nil {
			logger.Fatal("Scanner API server failed", "error", err)
		}
	}()
	logger.Info("[5/5] Scanner API server started", "port", config.GetScannerAPIPort())

	logger.Info("Scanner service is running")

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	<-shutdown

	performGracefulShutdown(server, publisher, collector, coingecko, binance, logger)
}

func policyFor(policies map[string]reliability.SourcePolicy, source string) reliability.SourcePolicy {
	if policy, ok := policies[source]; ok {
		return policy
	}
	return reliability.DefaultSourcePolicy()
}

func performGracefulShutdown(
	server *api.Server,
	publisher *telemetry.Publisher,
	collector *metrics.Collector,
	coingecko *feeds.CoinGeckoClient,
	binance *feeds.BinanceClient,
	logger *logging.ZapLogger,
) {
	logger.Info("Initiating graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("Error during API server shutdown", "error", err)
	}

	publisher.Stop()
	collector.Stop()
	coingecko.Close()
	binance.Close()

	logger.Info("Scanner service shutdown complete")
	_ = logger.Sync()
}
