package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/gemscan/gemscan-backend/pkg/env"
)

type Config struct {
	devMode bool

	// Scanner API port
	scannerAPIPort string

	// Path to the per-source reliability policy file
	sourcesConfigPath string

	// How often health snapshots are published to metrics
	snapshotPublishInterval time.Duration

	// Market data feed base URLs
	coinGeckoBaseURL string
	binanceBaseURL   string

	// Outbound HTTP settings
	httpTimeout     time.Duration
	httpMaxRetries  int
	httpInitialWait time.Duration
}

var cfg Config

func Init() error {
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	cfg = Config{
		devMode:                 env.GetEnvBool("DEV_MODE", false),
		scannerAPIPort:          env.GetEnvString("SCANNER_API_PORT", "9010"),
		sourcesConfigPath:       env.GetEnvString("SOURCES_CONFIG_PATH", "config/sources.yaml"),
		snapshotPublishInterval: env.GetEnvDuration("SNAPSHOT_PUBLISH_INTERVAL", 15*time.Second),
		coinGeckoBaseURL:        env.GetEnvString("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3"),
		binanceBaseURL:          env.GetEnvString("BINANCE_BASE_URL", "https://api.binance.com"),
		httpTimeout:             env.GetEnvDuration("FEED_HTTP_TIMEOUT", 10*time.Second),
		httpMaxRetries:          env.GetEnvInt("FEED_HTTP_MAX_RETRIES", 3),
		httpInitialWait:         env.GetEnvDuration("FEED_HTTP_INITIAL_WAIT", 500*time.Millisecond),
	}

	if cfg.snapshotPublishInterval < time.Second {
		return fmt.Errorf("SNAPSHOT_PUBLISH_INTERVAL must be at least 1s, got %s", cfg.snapshotPublishInterval)
	}

	return nil
}

func IsDevMode() bool {
	return cfg.devMode
}

func GetScannerAPIPort() string {
	return cfg.scannerAPIPort
}

func GetSourcesConfigPath() string {
	return cfg.sourcesConfigPath
}

func GetSnapshotPublishInterval() time.Duration {
	return cfg.snapshotPublishInterval
}

func GetCoinGeckoBaseURL() string {
	return cfg.coinGeckoBaseURL
}

func GetBinanceBaseURL() string {
	return cfg.binanceBaseURL
}

func GetHTTPTimeout() time.Duration {
	return cfg.httpTimeout
}

func GetHTTPMaxRetries() int {
	return cfg.httpMaxRetries
}

func GetHTTPInitialWait() time.Duration {
	return cfg.httpInitialWait
}
