package model

import "time"

// PricePoint is a single observation in a price series.
type PricePoint struct {
	Time  time.Time
	Price float64
}

// MarketSnapshot holds the market state resolved for one analysis run.
// VsCurrency is the quote unit that was actually resolved; after a
// fallback it may differ from the unit the caller asked for.
type MarketSnapshot struct {
	Symbol       string
	VsCurrency   string
	CurrentPrice float64
	MarketCap    float64
	Volume24h    float64
	Series       []PricePoint // oldest first
	FetchedAt    time.Time
}
