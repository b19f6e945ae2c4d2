package market

import (
	"context"
	"errors"

	"GridPilot/internal/model"
)

// ErrNoData marks a market-data failure. Callers render a "no data"
// state instead of crashing.
var ErrNoData = errors.New("market data unavailable")

// Fetcher defines the interface for fetching a market snapshot.
type Fetcher interface {
	Fetch(ctx context.Context, symbol, vsCurrency string) (*model.MarketSnapshot, error)
	Name() string
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price    float64
	Currency string
	Series   []model.PricePoint
	Err      error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(_ context.Context, symbol, vsCurrency string) (*model.MarketSnapshot, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	currency := m.Currency
	if currency == "" {
		currency = vsCurrency
	}
	series := m.Series
	if series == nil {
		series = []model.PricePoint{{Price: m.Price * 0.99}, {Price: m.Price}}
	}
	return &model.MarketSnapshot{
		Symbol:       symbol,
		VsCurrency:   currency,
		CurrentPrice: m.Price,
		Series:       series,
	}, nil
}
