package feeds

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gemscan/gemscan-backend/pkg/logging"
	"github.com/gemscan/gemscan-backend/pkg/reliability"
	"github.com/gemscan/gemscan-backend/pkg/retry"
)

// BinanceClient fetches spot market data from the Binance REST API through
// the reliability layer.
type BinanceClient struct {
	baseURL    string
	httpClient *retry.HTTPClient
	invoker    *reliability.Invoker
	policy     reliability.SourcePolicy
	logger     logging.Logger
}

func NewBinanceClient(invoker *reliability.Invoker, logger logging.Logger, baseURL string, httpConfig *retry.HTTPRetryConfig, policy reliability.SourcePolicy) (*BinanceClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("Binance base URL is required")
	}

	httpClient, err := retry.NewHTTPClient(httpConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &BinanceClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		invoker:    invoker,
		policy:     policy,
		logger:     logger,
	}, nil
}

// binanceTicker mirrors the Binance 24h ticker payload. Numeric fields come
// back as strings on the wire.
type binanceTicker struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	QuoteVolume        string `json:"quoteVolume"`
}

// GetTicker24h returns the 24h rolling ticker for a symbol.
func (c *BinanceClient) GetTicker24h(ctx context.Context, symbol string) (Ticker, error) {
	cacheKey := fmt.Sprintf("ticker_24h:%s", symbol)
	url := fmt.Sprintf("%s/api/v3/ticker/24hr?symbol=%s", c.baseURL, symbol)

	value, err := c.invoker.Call(BinanceSource).
		WithPolicy(c.policy).
		Do(ctx, cacheKey, func() (any, error) {
			var payload binanceTicker
			if err := fetchJSON(ctx, c.httpClient, url, &payload); err != nil {
				return nil, err
			}
			return parseTicker(payload)
		})
	if err != nil {
		return Ticker{}, err
	}

	ticker, ok := value.(Ticker)
	if !ok {
		return Ticker{}, fmt.Errorf("unexpected cached value type %T for %s", value, cacheKey)
	}
	return ticker, nil
}

func parseTicker(raw binanceTicker) (Ticker, error) {
	lastPrice, err := strconv.ParseFloat(raw.LastPrice, 64)
	if err != nil {
		return Ticker{}, fmt.Errorf("invalid lastPrice %q: %w", raw.LastPrice, err)
	}
	changePercent, err := strconv.ParseFloat(raw.PriceChangePercent, 64)
	if err != nil {
		return Ticker{}, fmt.Errorf("invalid priceChangePercent %q: %w", raw.PriceChangePercent, err)
	}
	quoteVolume, err := strconv.ParseFloat(raw.QuoteVolume, 64)
	if err != nil {
		return Ticker{}, fmt.Errorf("invalid quoteVolume %q: %w", raw.QuoteVolume, err)
	}

	return Ticker{
		Symbol:             raw.Symbol,
		LastPrice:          lastPrice,
		PriceChangePercent: changePercent,
		QuoteVolume:        quoteVolume,
	}, nil
}

// Close releases idle HTTP connections.
func (c *BinanceClient) Close() {
	c.httpClient.Close()
	c.logger.Debug("Binance client closed")
}
