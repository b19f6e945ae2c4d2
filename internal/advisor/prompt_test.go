package advisor

import (
	"strings"
	"testing"

	"GridPilot/internal/analysis"
	"GridPilot/internal/model"
)

func TestBuildPromptEmbedsContextAndSchema(t *testing.T) {
	bc := model.NewBotContext("bitcoin", "usdt", 250)
	bc.MergeMarket(65000, "usdt")
	req := &RecommendationRequest{
		Context: bc,
		Snapshot: &model.MarketSnapshot{
			Symbol:       "bitcoin",
			VsCurrency:   "usdt",
			CurrentPrice: 65000,
		},
		Trend: analysis.TrendUp,
	}

	prompt, err := BuildPrompt(req)
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}

	// Embedded user context, serialized.
	for _, want := range []string{`"mode":"new_bot"`, `"coin_symbol":"bitcoin"`, `"initial_capital":250`, `"current_price":65000`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing context fragment %q", want)
		}
	}

	// Market facts: price, uppercased currency, trend label.
	for _, want := range []string{"65000 USDT", "xu hướng tăng"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing market fact %q", want)
		}
	}

	// Every schema field name the formatter depends on.
	for _, want := range []string{
		"optimization_recommendation",
		"recommended_parameters",
		`"action"`,
		`"reasoning"`,
		"coin_symbol",
		"capital_allocation_usd",
		"vs_currency",
		"range_low",
		"range_high",
		"number_of_grids",
		"strategy_type",
		"take_profit_target_percent",
		"stop_loss_percent",
		`"notes"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt schema missing %q", want)
		}
	}
}

func TestBuildPromptExistingBotFields(t *testing.T) {
	bc := model.ExistingBotContext("ethereum", "usdt", 500, 1800, 2200, 12.5, 2.5, 7)
	bc.MergeMarket(2000, "usdt")
	prompt, err := BuildPrompt(&RecommendationRequest{
		Context:  bc,
		Snapshot: &model.MarketSnapshot{VsCurrency: "usdt", CurrentPrice: 2000},
		Trend:    analysis.TrendFlat,
	})
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}
	for _, want := range []string{`"mode":"existing_bot"`, `"range_low":1800`, `"range_high":2200`, `"pnl":12.5`, `"open_orders":7`, "đi ngang"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "initial_capital") {
		t.Error("existing-bot prompt should omit initial_capital")
	}
}
