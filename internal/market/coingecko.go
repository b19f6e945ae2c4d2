package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"GridPilot/internal/model"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoFetcher implements Fetcher using the CoinGecko public API.
type CoinGeckoFetcher struct {
	BaseURL          string
	FallbackCurrency string
	Client           *http.Client
	log              zerolog.Logger
}

// NewCoinGeckoFetcher creates a fetcher with an explicit request timeout.
func NewCoinGeckoFetcher(baseURL, fallbackCurrency string, timeout time.Duration, logger zerolog.Logger) *CoinGeckoFetcher {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if fallbackCurrency == "" {
		fallbackCurrency = "usd"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CoinGeckoFetcher{
		BaseURL:          baseURL,
		FallbackCurrency: fallbackCurrency,
		Client:           &http.Client{Timeout: timeout},
		log:              logger.With().Str("component", "coingecko").Logger(),
	}
}

func (f *CoinGeckoFetcher) Name() string { return "coingecko" }

// Fetch retrieves the current price in the requested currency, falling
// back to the canonical unit on any failure, then loads a 1-day price
// series in the resolved currency. A series failure is not separately
// recovered; the whole fetch fails.
func (f *CoinGeckoFetcher) Fetch(ctx context.Context, symbol, vsCurrency string) (*model.MarketSnapshot, error) {
	snap, err := f.fetchPrice(ctx, symbol, vsCurrency, true)
	if err != nil {
		f.log.Warn().Err(err).Str("symbol", symbol).Str("vs_currency", vsCurrency).
			Str("fallback", f.FallbackCurrency).Msg("price fetch failed, retrying with fallback currency")
		snap, err = f.fetchPrice(ctx, symbol, f.FallbackCurrency, false)
		if err != nil {
			f.log.Error().Err(err).Str("symbol", symbol).Msg("price fetch failed on fallback currency")
			return nil, fmt.Errorf("%w: %v", ErrNoData, err)
		}
	}

	series, err := f.fetchSeries(ctx, symbol, snap.VsCurrency)
	if err != nil {
		f.log.Error().Err(err).Str("symbol", symbol).Msg("market chart fetch failed")
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	snap.Series = series
	snap.FetchedAt = time.Now()
	return snap, nil
}

func (f *CoinGeckoFetcher) fetchPrice(ctx context.Context, symbol, vsCurrency string, includeExtras bool) (*model.MarketSnapshot, error) {
	q := url.Values{}
	q.Set("ids", symbol)
	q.Set("vs_currencies", vsCurrency)
	if includeExtras {
		q.Set("include_market_cap", "true")
		q.Set("include_24hr_vol", "true")
	}
	endpoint := fmt.Sprintf("%s/simple/price?%s", f.BaseURL, q.Encode())

	var data map[string]map[string]float64
	if err := f.getJSON(ctx, endpoint, &data); err != nil {
		return nil, err
	}
	quotes, ok := data[symbol]
	if !ok {
		return nil, fmt.Errorf("symbol %q not in response", symbol)
	}
	price, ok := quotes[vsCurrency]
	if !ok {
		return nil, fmt.Errorf("currency %q not in response for %q", vsCurrency, symbol)
	}
	return &model.MarketSnapshot{
		Symbol:       symbol,
		VsCurrency:   vsCurrency,
		CurrentPrice: price,
		MarketCap:    quotes[vsCurrency+"_market_cap"],
		Volume24h:    quotes[vsCurrency+"_24h_vol"],
	}, nil
}

// chart is the market_chart response shape: value pairs keyed by
// millisecond timestamp, oldest first.
type chart struct {
	Prices [][2]float64 `json:"prices"`
}

func (f *CoinGeckoFetcher) fetchSeries(ctx context.Context, symbol, vsCurrency string) ([]model.PricePoint, error) {
	endpoint := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=%s&days=1",
		f.BaseURL, url.PathEscape(symbol), url.QueryEscape(vsCurrency))

	var c chart
	if err := f.getJSON(ctx, endpoint, &c); err != nil {
		return nil, err
	}
	if len(c.Prices) == 0 {
		return nil, fmt.Errorf("empty price series for %q", symbol)
	}
	series := make([]model.PricePoint, len(c.Prices))
	for i, p := range c.Prices {
		series[i] = model.PricePoint{
			Time:  time.UnixMilli(int64(p[0])),
			Price: p[1],
		}
	}
	// Ensure chronological order
	sort.Slice(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })
	return series, nil
}

func (f *CoinGeckoFetcher) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("coingecko fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("coingecko: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("coingecko decode: %w", err)
	}
	return nil
}
