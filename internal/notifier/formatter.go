package notifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"GridPilot/internal/model"
)

// ErrUnrecognizedShape means none of the known top-level keys held a
// recommendation object. The raw payload is still displayable.
var ErrUnrecognizedShape = errors.New("no recommendation field in response")

// The generation service does not always honor the requested schema.
// Extraction strategies are tried in order; first match wins.
var recommendationKeys = []string{
	"optimization_recommendation",
	"recommendation",
	"suggestions",
	"analysis",
}

// Parameters may live under either key.
var parameterKeys = []string{"recommended_parameters", "parameters"}

// Normalize locates the recommendation object inside a raw generation
// response and converts it to the canonical record. Every leaf is
// optional; missing fields stay zero/nil and render as placeholders.
func Normalize(raw map[string]any) (*model.RecommendationRecord, error) {
	var rec map[string]any
	for _, key := range recommendationKeys {
		if obj, ok := raw[key].(map[string]any); ok {
			rec = obj
			break
		}
	}
	if rec == nil {
		return nil, ErrUnrecognizedShape
	}

	record := &model.RecommendationRecord{
		Action:    asString(rec["action"]),
		Reasoning: asString(rec["reasoning"]),
	}

	var params map[string]any
	for _, key := range parameterKeys {
		if obj, ok := rec[key].(map[string]any); ok {
			params = obj
			break
		}
	}
	if params != nil {
		record.Parameters = model.RecommendedParameters{
			CoinSymbol:           asString(params["coin_symbol"]),
			CapitalAllocationUSD: asFloat(params["capital_allocation_usd"]),
			VsCurrency:           asString(params["vs_currency"]),
			RangeLow:             asFloat(params["range_low"]),
			RangeHigh:            asFloat(params["range_high"]),
			NumberOfGrids:        asInt(params["number_of_grids"]),
			StrategyType:         asString(params["strategy_type"]),
			TakeProfitPercent:    asFloat(params["take_profit_target_percent"]),
			StopLossPercent:      asFloat(params["stop_loss_percent"]),
			Notes:                asString(params["notes"]),
		}
	}
	return record, nil
}

// Render produces the fixed Telegram Markdown message for a record.
// Absent fields become explicit placeholders, never a crash.
func Render(rec *model.RecommendationRecord) string {
	p := rec.Parameters

	action := rec.Action
	if action == "" {
		action = "Không rõ"
	}
	reasoning := rec.Reasoning
	if reasoning == "" {
		reasoning = "Không có giải thích nào được cung cấp."
	}
	coin := p.CoinSymbol
	if coin == "" {
		coin = "Không rõ"
	}
	currency := p.VsCurrency
	if currency == "" {
		currency = "USD"
	}
	strategy := p.StrategyType
	if strategy == "" {
		strategy = "N/A"
	}
	notes := p.Notes
	if notes == "" {
		notes = "Không có ghi chú."
	}

	var b strings.Builder
	b.WriteString("📈 *Gợi ý tối ưu hóa bot* 📊\n\n")
	b.WriteString(fmt.Sprintf("*🎯 Hành động*: `%s`\n", action))
	b.WriteString(fmt.Sprintf("*🧠 Lý do*:\n_%s_\n\n", reasoning))
	b.WriteString("*⚙️ Tham số đề xuất:*\n")
	b.WriteString(fmt.Sprintf("- Coin: `%s`\n", coin))
	b.WriteString(fmt.Sprintf("- Vốn: `%s %s`\n", fmtNumber(p.CapitalAllocationUSD, "Không rõ"), strings.ToUpper(currency)))
	b.WriteString(fmt.Sprintf("- Range: `%s - %s`\n", fmtNumber(p.RangeLow, "N/A"), fmtNumber(p.RangeHigh, "N/A")))
	b.WriteString(fmt.Sprintf("- Grid: `%s ô | %s`\n", fmtCount(p.NumberOfGrids), strategy))
	b.WriteString(fmt.Sprintf("- Lợi nhuận mục tiêu: `%s%%`\n", fmtNumber(p.TakeProfitPercent, "N/A")))
	b.WriteString(fmt.Sprintf("- Cắt lỗ: `%s%%`\n", fmtNumber(p.StopLossPercent, "N/A")))
	b.WriteString(fmt.Sprintf("- Ghi chú: _%s_", notes))
	return b.String()
}

// RenderRaw pretty-prints an unrecognized payload for direct display.
func RenderRaw(raw map[string]any) (string, error) {
	body, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal raw response: %w", err)
	}
	return fmt.Sprintf("🤖 *Phản hồi từ AI:*\n```json\n%s\n```", body), nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return &f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return &f
		}
	}
	return nil
}

func asInt(v any) *int {
	f := asFloat(v)
	if f == nil {
		return nil
	}
	i := int(math.Round(*f))
	return &i
}

func fmtNumber(v *float64, placeholder string) string {
	if v == nil {
		return placeholder
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func fmtCount(v *int) string {
	if v == nil {
		return "N/A"
	}
	return strconv.Itoa(*v)
}
