package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"GridPilot/internal/analysis"
	"GridPilot/internal/market"
	"GridPilot/internal/model"
	"GridPilot/internal/recorder"
)

type fakeGenerator struct {
	payload map[string]any
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (map[string]any, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return nil, g.err
	}
	return g.payload, nil
}

type fakeDispatcher struct {
	sent       []string
	recommends []map[string]any
	configured bool
}

func (d *fakeDispatcher) Send(_ context.Context, text string) { d.sent = append(d.sent, text) }
func (d *fakeDispatcher) SendRecommendation(_ context.Context, raw map[string]any) {
	d.recommends = append(d.recommends, raw)
}
func (d *fakeDispatcher) Configured() bool { return d.configured }

func wellFormedPayload() map[string]any {
	return map[string]any{
		"optimization_recommendation": map[string]any{
			"action":    "giảm số lưới",
			"reasoning": "thanh khoản thấp",
			"recommended_parameters": map[string]any{
				"coin_symbol":     "bitcoin",
				"number_of_grids": 15.0,
				"range_low":       60000.0,
				"range_high":      70000.0,
			},
		},
	}
}

func newTestService(fetcher market.Fetcher, gen Generator, disp Dispatcher) *Service {
	return NewService(fetcher, gen, disp, recorder.NewNoopRecorder(), 0, zerolog.Nop())
}

func TestAnalyzeNewBot(t *testing.T) {
	gen := &fakeGenerator{payload: wellFormedPayload()}
	disp := &fakeDispatcher{configured: true}
	fetcher := &market.MockFetcher{Price: 65000, Currency: "usdt", Series: []model.PricePoint{
		{Price: 63000}, {Price: 65000},
	}}

	res, err := newTestService(fetcher, gen, disp).AnalyzeNewBot(context.Background(), "BTC/ ", "usdt", 250)
	if err != nil {
		t.Fatalf("AnalyzeNewBot: %v", err)
	}
	if res.Record == nil {
		t.Fatal("expected normalized record")
	}
	if res.Record.Action != "giảm số lưới" {
		t.Errorf("Action = %q", res.Record.Action)
	}
	if res.Trend != analysis.TrendUp {
		t.Errorf("Trend = %v, want up", res.Trend)
	}
	if len(disp.recommends) != 1 {
		t.Fatalf("dispatches = %d, want 1", len(disp.recommends))
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], `"coin_symbol":"btc"`) {
		t.Errorf("prompt should carry the normalized symbol: %v", gen.prompts)
	}
	if res.RunID == "" {
		t.Error("expected a run id")
	}
}

func TestAnalyzeExistingBotRangeCheck(t *testing.T) {
	gen := &fakeGenerator{payload: wellFormedPayload()}
	disp := &fakeDispatcher{}
	fetcher := &market.MockFetcher{Price: 95, Currency: "usdt"}

	bc := model.ExistingBotContext("bitcoin", "usdt", 100, 100, 110, 1, 1, 5)
	res, err := newTestService(fetcher, gen, disp).AnalyzeExistingBot(context.Background(), bc)
	if err != nil {
		t.Fatalf("AnalyzeExistingBot: %v", err)
	}
	if res.RangeStatus != analysis.RangeBelow {
		t.Errorf("RangeStatus = %v, want below", res.RangeStatus)
	}
	if res.RangeMessage == "" {
		t.Error("expected a range message")
	}
	// Resolved market fields must be merged into the prompt context.
	if !strings.Contains(gen.prompts[0], `"current_price":95`) {
		t.Errorf("prompt missing merged current price:\n%s", gen.prompts[0])
	}
}

func TestFetchFailureAbortsBeforeGeneration(t *testing.T) {
	gen := &fakeGenerator{payload: wellFormedPayload()}
	disp := &fakeDispatcher{}
	fetcher := &market.MockFetcher{Err: market.ErrNoData}

	_, err := newTestService(fetcher, gen, disp).AnalyzeNewBot(context.Background(), "bitcoin", "usdt", 100)
	if !errors.Is(err, market.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if len(gen.prompts) != 0 {
		t.Error("generation must not run after a fetch failure")
	}
	if len(disp.recommends) != 0 {
		t.Error("no dispatch after a fetch failure")
	}
}

func TestGenerationFailureIssuesNoNotification(t *testing.T) {
	gen := &fakeGenerator{err: ErrGeneration}
	disp := &fakeDispatcher{}
	fetcher := &market.MockFetcher{Price: 65000}

	_, err := newTestService(fetcher, gen, disp).AnalyzeNewBot(context.Background(), "bitcoin", "usdt", 100)
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	if len(disp.recommends) != 0 || len(disp.sent) != 0 {
		t.Error("no notification may be sent after a generation failure")
	}
}

func TestUnrecognizedShapeStillDispatches(t *testing.T) {
	gen := &fakeGenerator{payload: map[string]any{"note": "tôi không chắc"}}
	disp := &fakeDispatcher{}
	fetcher := &market.MockFetcher{Price: 65000}

	res, err := newTestService(fetcher, gen, disp).AnalyzeNewBot(context.Background(), "bitcoin", "usdt", 100)
	if err != nil {
		t.Fatalf("shape degradation must not be an error: %v", err)
	}
	if res.Record != nil {
		t.Error("record should be nil for unrecognized shape")
	}
	if res.Raw == nil {
		t.Error("raw payload should be returned for display")
	}
	if len(disp.recommends) != 1 {
		t.Error("raw payload should still be dispatched")
	}
}

func TestValidateContext(t *testing.T) {
	gen := &fakeGenerator{payload: wellFormedPayload()}
	fetcher := &market.MockFetcher{Price: 1}
	svc := newTestService(fetcher, gen, &fakeDispatcher{})
	ctx := context.Background()

	if _, err := svc.AnalyzeNewBot(ctx, "bitcoin", "usdt", 0); err == nil {
		t.Error("zero initial capital must be rejected")
	}
	if _, err := svc.AnalyzeNewBot(ctx, "", "usdt", 100); err == nil {
		t.Error("empty symbol must be rejected")
	}

	bad := model.ExistingBotContext("bitcoin", "usdt", 100, 110, 100, 0, 0, 0)
	if _, err := svc.AnalyzeExistingBot(ctx, bad); err == nil {
		t.Error("inverted range must be rejected")
	}
	if len(gen.prompts) != 0 {
		t.Error("invalid contexts must not reach generation")
	}
}

func TestTestNotification(t *testing.T) {
	disp := &fakeDispatcher{}
	svc := newTestService(&market.MockFetcher{}, &fakeGenerator{}, disp)
	svc.TestNotification(context.Background())
	if len(disp.sent) != 1 || !strings.Contains(disp.sent[0], "Telegram") {
		t.Errorf("sent = %v", disp.sent)
	}
}
