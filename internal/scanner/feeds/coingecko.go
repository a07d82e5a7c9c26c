package feeds

import (
	"context"
	"fmt"

	"github.com/gemscan/gemscan-backend/pkg/logging"
	"github.com/gemscan/gemscan-backend/pkg/reliability"
	"github.com/gemscan/gemscan-backend/pkg/retry"
)

// CoinGeckoClient fetches market data from the CoinGecko REST API. Every call
// goes through the reliability layer, so breaker trips and stale cache
// fallback apply uniformly.
type CoinGeckoClient struct {
	baseURL    string
	httpClient *retry.HTTPClient
	invoker    *reliability.Invoker
	policy     reliability.SourcePolicy
	logger     logging.Logger
}

func NewCoinGeckoClient(invoker *reliability.Invoker, logger logging.Logger, baseURL string, httpConfig *retry.HTTPRetryConfig, policy reliability.SourcePolicy) (*CoinGeckoClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("CoinGecko base URL is required")
	}

	httpClient, err := retry.NewHTTPClient(httpConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &CoinGeckoClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		invoker:    invoker,
		policy:     policy,
		logger:     logger,
	}, nil
}

// GetSimplePrice returns the price of a coin in the given fiat currency.
func (c *CoinGeckoClient) GetSimplePrice(ctx context.Context, coinID, vsCurrency string) (float64, error) {
	cacheKey := fmt.Sprintf("simple_price:%s:%s", coinID, vsCurrency)
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s", c.baseURL, coinID, vsCurrency)

	value, err := c.invoker.Call(CoinGeckoSource).
		WithPolicy(c.policy).
		Do(ctx, cacheKey, func() (any, error) {
			var payload map[string]map[string]float64
			if err := fetchJSON(ctx, c.httpClient, url, &payload); err != nil {
				return nil, err
			}

			price, ok := payload[coinID][vsCurrency]
			if !ok {
				return nil, fmt.Errorf("no %s price for coin %s in response", vsCurrency, coinID)
			}
			return price, nil
		})
	if err != nil {
		return 0, err
	}

	price, ok := value.(float64)
	if !ok {
		return 0, fmt.Errorf("unexpected cached value type %T for %s", value, cacheKey)
	}
	return price, nil
}

// GetTrending returns the coins currently trending on CoinGecko.
func (c *CoinGeckoClient) GetTrending(ctx context.Context) ([]TrendingCoin, error) {
	url := fmt.Sprintf("%s/search/trending", c.baseURL)

	value, err := c.invoker.Call(CoinGeckoSource).
		WithPolicy(c.policy).
		Do(ctx, "trending", func() (any, error) {
			var payload struct {
				Coins []struct {
					Item TrendingCoin `json:"item"`
				} `json:"coins"`
			}
			if err := fetchJSON(ctx, c.httpClient, url, &payload); err != nil {
				return nil, err
			}

			coins := make([]TrendingCoin, 0, len(payload.Coins))
			for _, entry := range payload.Coins {
				coins = append(coins, entry.Item)
			}
			return coins, nil
		})
	if err != nil {
		return nil, err
	}

	coins, ok := value.([]TrendingCoin)
	if !ok {
		return nil, fmt.Errorf("unexpected cached value type %T for trending", value)
	}
	return coins, nil
}

// Close releases idle HTTP connections.
func (c *CoinGeckoClient) Close() {
	c.httpClient.Close()
	c.logger.Debug("CoinGecko client closed")
}
