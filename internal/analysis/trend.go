package analysis

import "GridPilot/internal/model"

// Trend is the discrete classification of a price series' net change.
type Trend int

const (
	TrendInsufficientData Trend = iota
	TrendUp
	TrendDown
	TrendFlat
)

// DefaultTrendThreshold is the percent-change band treated as flat.
const DefaultTrendThreshold = 1.0

func (t Trend) String() string {
	switch t {
	case TrendUp:
		return "up"
	case TrendDown:
		return "down"
	case TrendFlat:
		return "flat"
	default:
		return "insufficient_data"
	}
}

// Label returns the display form embedded into the advisor prompt.
func (t Trend) Label() string {
	switch t {
	case TrendUp:
		return "tăng"
	case TrendDown:
		return "giảm"
	case TrendFlat:
		return "đi ngang"
	default:
		return "không đủ dữ liệu"
	}
}

// ClassifyTrend derives a trend from the net percent change between the
// first and last points of the series. Fewer than two points, or a first
// price of zero, classify as insufficient data rather than faulting.
func ClassifyTrend(series []model.PricePoint, threshold float64) Trend {
	if len(series) < 2 {
		return TrendInsufficientData
	}
	first := series[0].Price
	if first == 0 {
		return TrendInsufficientData
	}
	percentChange := (series[len(series)-1].Price - first) / first * 100
	switch {
	case percentChange > threshold:
		return TrendUp
	case percentChange < -threshold:
		return TrendDown
	default:
		return TrendFlat
	}
}
