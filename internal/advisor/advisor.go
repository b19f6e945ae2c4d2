package advisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"GridPilot/internal/analysis"
	"GridPilot/internal/market"
	"GridPilot/internal/model"
	"GridPilot/internal/notifier"
	"GridPilot/internal/recorder"
)

// testMessage is sent by TestNotification to verify Telegram wiring.
const testMessage = "✅ Bot Telegram đã kết nối thành công!"

// Dispatcher delivers advisor output to the notification channel.
// Implementations never propagate delivery failures.
type Dispatcher interface {
	Send(ctx context.Context, text string)
	SendRecommendation(ctx context.Context, raw map[string]any)
	Configured() bool
}

// Result is what one pipeline run hands back to the caller. Record is
// nil when the response shape was unrecognized; Raw is then the display
// fallback.
type Result struct {
	RunID        string
	Snapshot     *model.MarketSnapshot
	Trend        analysis.Trend
	RangeStatus  analysis.RangeStatus
	RangeMessage string
	Raw          map[string]any
	Record       *model.RecommendationRecord
}

// Service runs the advisor pipeline: fetch, classify, build, generate,
// normalize, dispatch. Each invocation is independent; no state survives
// a run.
type Service struct {
	fetcher    market.Fetcher
	gen        Generator
	dispatcher Dispatcher
	recorder   recorder.Recorder
	validate   *validator.Validate
	threshold  float64
	log        zerolog.Logger
}

// NewService wires the pipeline components. A non-positive threshold
// falls back to the default trend threshold.
func NewService(fetcher market.Fetcher, gen Generator, dispatcher Dispatcher, rec recorder.Recorder, trendThreshold float64, logger zerolog.Logger) *Service {
	if trendThreshold <= 0 {
		trendThreshold = analysis.DefaultTrendThreshold
	}
	return &Service{
		fetcher:    fetcher,
		gen:        gen,
		dispatcher: dispatcher,
		recorder:   rec,
		validate:   validator.New(),
		threshold:  trendThreshold,
		log:        logger.With().Str("component", "advisor").Logger(),
	}
}

// AnalyzeNewBot produces a parameter recommendation for a bot that does
// not exist yet.
func (s *Service) AnalyzeNewBot(ctx context.Context, symbol, vsCurrency string, initialCapital float64) (*Result, error) {
	bc := model.NewBotContext(symbol, vsCurrency, initialCapital)
	return s.run(ctx, bc)
}

// AnalyzeExistingBot produces a tuning recommendation for a running bot,
// including a check of the live price against its operating band.
func (s *Service) AnalyzeExistingBot(ctx context.Context, bc model.BotContext) (*Result, error) {
	bc.Mode = model.ModeExistingBot
	bc.CoinSymbol = model.NormalizeSymbol(bc.CoinSymbol)
	return s.run(ctx, bc)
}

// TestNotification sends a connectivity check message. Best-effort.
func (s *Service) TestNotification(ctx context.Context) {
	s.dispatcher.Send(ctx, testMessage)
}

func (s *Service) run(ctx context.Context, bc model.BotContext) (*Result, error) {
	runID := uuid.NewString()
	log := s.log.With().Str("run_id", runID).Str("symbol", bc.CoinSymbol).Str("mode", string(bc.Mode)).Logger()

	if err := s.validateContext(bc); err != nil {
		return nil, err
	}

	snap, err := s.fetcher.Fetch(ctx, bc.CoinSymbol, bc.VsCurrency)
	if err != nil {
		log.Error().Err(err).Msg("market data fetch failed")
		return nil, err
	}

	res := &Result{
		RunID:    runID,
		Snapshot: snap,
		Trend:    analysis.ClassifyTrend(snap.Series, s.threshold),
	}

	if bc.Mode == model.ModeExistingBot {
		res.RangeStatus, res.RangeMessage = analysis.CheckPriceRange(snap.CurrentPrice, bc.RangeLow, bc.RangeHigh)
		log.Info().Str("range_status", res.RangeStatus.String()).Msg(res.RangeMessage)
	}

	bc.MergeMarket(snap.CurrentPrice, snap.VsCurrency)

	prompt, err := BuildPrompt(&RecommendationRequest{Context: bc, Snapshot: snap, Trend: res.Trend})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	raw, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Msg("generation failed")
		return nil, err
	}
	res.Raw = raw

	// Shape degradation is not an error: the raw payload remains
	// displayable and the dispatcher has its own fallback ladder.
	rec, normErr := notifier.Normalize(raw)
	if normErr != nil {
		log.Warn().Err(normErr).Msg("recommendation shape unrecognized")
	} else {
		res.Record = rec
	}

	s.dispatcher.SendRecommendation(ctx, raw)
	s.recordRun(res, bc, log)

	log.Info().Str("trend", res.Trend.String()).Msg("analysis complete")
	return res, nil
}

func (s *Service) validateContext(bc model.BotContext) error {
	if err := s.validate.Struct(bc); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid bot context: field %s failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid bot context: %w", err)
	}
	switch bc.Mode {
	case model.ModeNewBot:
		if bc.InitialCapital <= 0 {
			return errors.New("invalid bot context: initial_capital must be positive")
		}
	case model.ModeExistingBot:
		if bc.Capital <= 0 {
			return errors.New("invalid bot context: capital must be positive")
		}
		if bc.RangeHigh <= bc.RangeLow {
			return errors.New("invalid bot context: range_high must be above range_low")
		}
	}
	return nil
}

func (s *Service) recordRun(res *Result, bc model.BotContext, log zerolog.Logger) {
	run := &recorder.AnalysisRun{
		RunID:        res.RunID,
		Mode:         string(bc.Mode),
		Symbol:       bc.CoinSymbol,
		VsCurrency:   res.Snapshot.VsCurrency,
		CurrentPrice: res.Snapshot.CurrentPrice,
		Trend:        res.Trend.String(),
		Delivered:    s.dispatcher.Configured(),
		CreatedAt:    time.Now(),
	}
	if bc.Mode == model.ModeExistingBot {
		run.RangeStatus = res.RangeStatus.String()
	}
	if res.Record != nil {
		run.Action = res.Record.Action
		run.StrategyType = res.Record.Parameters.StrategyType
		run.RangeLow = res.Record.Parameters.RangeLow
		run.RangeHigh = res.Record.Parameters.RangeHigh
		run.GridCount = res.Record.Parameters.NumberOfGrids
		run.Capital = res.Record.Parameters.CapitalAllocationUSD
	}
	if err := s.recorder.RecordRun(run); err != nil {
		log.Error().Err(err).Msg("record analysis run")
	}
}
