package model

// RecommendedParameters are the grid-bot settings suggested by the
// advisor. Numeric fields are pointers because the generation service is
// free to omit any of them; absence is displayable, not an error.
type RecommendedParameters struct {
	CoinSymbol           string   `json:"coin_symbol"`
	CapitalAllocationUSD *float64 `json:"capital_allocation_usd"`
	VsCurrency           string   `json:"vs_currency"`
	RangeLow             *float64 `json:"range_low"`
	RangeHigh            *float64 `json:"range_high"`
	NumberOfGrids        *int     `json:"number_of_grids"`
	StrategyType         string   `json:"strategy_type"`
	TakeProfitPercent    *float64 `json:"take_profit_target_percent"`
	StopLossPercent      *float64 `json:"stop_loss_percent"`
	Notes                string   `json:"notes"`
}

// RecommendationRecord is the canonical structured advisor output.
type RecommendationRecord struct {
	Action     string                `json:"action"`
	Reasoning  string                `json:"reasoning"`
	Parameters RecommendedParameters `json:"recommended_parameters"`
}
