package feeds

// Source names used for registry lookups and health reporting.
const (
	CoinGeckoSource = "coingecko"
	BinanceSource   = "binance"
)

// TrendingCoin is a coin surfaced by the CoinGecko trending endpoint.
type TrendingCoin struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	MarketCapRank int    `json:"market_cap_rank"`
}

// Ticker is a 24h rolling ticker for a Binance symbol.
type Ticker struct {
	Symbol             string
	LastPrice          float64
	PriceChangePercent float64
	QuoteVolume        float64
}
