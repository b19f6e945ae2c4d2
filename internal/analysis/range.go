package analysis

import "fmt"

// RangeStatus classifies a live price against a configured operating band.
type RangeStatus int

const (
	RangeIn RangeStatus = iota
	RangeBelow
	RangeAbove
)

func (s RangeStatus) String() string {
	switch s {
	case RangeBelow:
		return "below_range"
	case RangeAbove:
		return "above_range"
	default:
		return "in_range"
	}
}

// CheckPriceRange compares the current price against the bot's operating
// band. Boundary values count as in range. The returned message carries
// the numeric bounds for direct display.
func CheckPriceRange(current, low, high float64) (RangeStatus, string) {
	if current < low {
		return RangeBelow, fmt.Sprintf("⚠️ Giá %s thấp hơn vùng hoạt động (%s - %s)", fmtPrice(current), fmtPrice(low), fmtPrice(high))
	}
	if current > high {
		return RangeAbove, fmt.Sprintf("⚠️ Giá %s cao hơn vùng hoạt động (%s - %s)", fmtPrice(current), fmtPrice(low), fmtPrice(high))
	}
	return RangeIn, "✅ Giá nằm trong vùng bot hoạt động."
}

func fmtPrice(v float64) string {
	return fmt.Sprintf("%g", v)
}
