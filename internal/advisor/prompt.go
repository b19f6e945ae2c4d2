package advisor

import (
	"encoding/json"
	"fmt"
	"strings"

	"GridPilot/internal/analysis"
	"GridPilot/internal/model"
)

// RecommendationRequest is the immutable input to one generation call.
type RecommendationRequest struct {
	Context  model.BotContext
	Snapshot *model.MarketSnapshot
	Trend    analysis.Trend
}

// outputSchema names every field of RecommendationRecord. The generation
// service is asked to honor this structure verbatim; downstream parsing
// depends on these exact key names.
const outputSchema = `{
    "optimization_recommendation": {
        "action": "mô tả hành động cần thực hiện",
        "reasoning": "giải thích chi tiết lý do",
        "recommended_parameters": {
            "coin_symbol": "tên coin",
            "capital_allocation_usd": số vốn đề xuất,
            "vs_currency": "tiền tệ",
            "range_low": giá thấp nhất,
            "range_high": giá cao nhất,
            "number_of_grids": số ô lưới,
            "strategy_type": "loại chiến lược",
            "take_profit_target_percent": % lợi nhuận mục tiêu,
            "stop_loss_percent": % cắt lỗ,
            "notes": "ghi chú thêm"
        }
    }
}`

// BuildPrompt assembles the natural-language instruction for the
// generation service: role framing, JSON-serialized user context, market
// facts, and the required output schema.
func BuildPrompt(req *RecommendationRequest) (string, error) {
	userData, err := json.Marshal(req.Context)
	if err != nil {
		return "", fmt.Errorf("marshal bot context: %w", err)
	}

	var b strings.Builder
	b.WriteString("Bạn là chuyên gia phân tích tài chính tiền điện tử cho người Việt Nam. Dựa trên dữ liệu sau, tối ưu hóa bot spot lưới:\n")
	b.WriteString(fmt.Sprintf("- Dữ liệu người dùng: %s\n", userData))
	b.WriteString(fmt.Sprintf("- Dữ liệu thị trường: Giá hiện tại %g %s, xu hướng %s.\n\n",
		req.Snapshot.CurrentPrice, strings.ToUpper(req.Snapshot.VsCurrency), req.Trend.Label()))
	b.WriteString("Trả lời dưới dạng JSON với cấu trúc chính xác sau:\n")
	b.WriteString(outputSchema)
	return b.String(), nil
}
