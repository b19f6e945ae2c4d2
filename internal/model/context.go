package model

import "strings"

// BotMode distinguishes the two analysis flows.
type BotMode string

const (
	ModeNewBot      BotMode = "new_bot"
	ModeExistingBot BotMode = "existing_bot"
)

// BotContext carries the user-supplied bot state for one analysis run.
// The JSON shape is embedded verbatim into the advisor prompt, so field
// names are part of the wire contract. Fields that only apply to one
// mode are omitted from the other mode's serialization.
type BotContext struct {
	Mode           BotMode `json:"mode" validate:"required,oneof=new_bot existing_bot"`
	CoinSymbol     string  `json:"coin_symbol" validate:"required"`
	VsCurrency     string  `json:"vs_currency" validate:"required"`
	InitialCapital float64 `json:"initial_capital,omitempty" validate:"omitempty,gt=0"`
	Capital        float64 `json:"capital,omitempty" validate:"omitempty,gt=0"`
	RangeLow       float64 `json:"range_low,omitempty"`
	RangeHigh      float64 `json:"range_high,omitempty" validate:"omitempty,gtfield=RangeLow"`
	PNL            float64 `json:"pnl,omitempty"`
	ProfitPercent  float64 `json:"profit_percent,omitempty"`
	OpenOrders     int     `json:"open_orders,omitempty" validate:"omitempty,gte=0"`
	CurrentPrice   float64 `json:"current_price,omitempty"`
}

// NewBotContext builds the context for a bot that does not exist yet.
func NewBotContext(coinSymbol, vsCurrency string, initialCapital float64) BotContext {
	return BotContext{
		Mode:           ModeNewBot,
		CoinSymbol:     NormalizeSymbol(coinSymbol),
		VsCurrency:     strings.ToLower(strings.TrimSpace(vsCurrency)),
		InitialCapital: initialCapital,
	}
}

// ExistingBotContext builds the context for a running bot.
func ExistingBotContext(coinSymbol, vsCurrency string, capital, rangeLow, rangeHigh, pnl, profitPercent float64, openOrders int) BotContext {
	return BotContext{
		Mode:          ModeExistingBot,
		CoinSymbol:    NormalizeSymbol(coinSymbol),
		VsCurrency:    strings.ToLower(strings.TrimSpace(vsCurrency)),
		Capital:       capital,
		RangeLow:      rangeLow,
		RangeHigh:     rangeHigh,
		PNL:           pnl,
		ProfitPercent: profitPercent,
		OpenOrders:    openOrders,
	}
}

// MergeMarket folds the resolved market fields into the context. This is
// the only mutation a BotContext sees after construction.
func (b *BotContext) MergeMarket(currentPrice float64, resolvedCurrency string) {
	b.CurrentPrice = currentPrice
	b.VsCurrency = resolvedCurrency
}

// NormalizeSymbol lowercases, trims, and strips pair separators so
// "BTC/USDT " and "btcusdt" refer to the same coin id.
func NormalizeSymbol(symbol string) string {
	return strings.ReplaceAll(strings.TrimSpace(strings.ToLower(symbol)), "/", "")
}
