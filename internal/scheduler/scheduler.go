package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"GridPilot/internal/advisor"
	"GridPilot/internal/market"
	"GridPilot/internal/model"
)

// Scheduler drives unattended analysis runs and routes Telegram commands
// into the advisor pipeline.
type Scheduler struct {
	cron    *cron.Cron
	advisor *advisor.Service
	ctx     context.Context
	log     zerolog.Logger

	defaultBot *model.BotContext
}

// New creates a Scheduler bound to the advisor service.
func New(ctx context.Context, svc *advisor.Service, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		advisor: svc,
		ctx:     ctx,
		log:     logger.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterPeriodic schedules a recurring analysis of the given bot.
// An empty cron spec disables scheduling.
func (s *Scheduler) RegisterPeriodic(cronSpec string, bot model.BotContext) error {
	if cronSpec == "" {
		s.log.Info().Msg("no cron schedule configured, periodic analysis disabled")
		return nil
	}
	s.defaultBot = &bot
	if _, err := s.cron.AddFunc(cronSpec, s.periodicTask); err != nil {
		return fmt.Errorf("register periodic analysis: %w", err)
	}
	s.log.Info().Str("cron", cronSpec).Str("symbol", bot.CoinSymbol).Msg("periodic analysis registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow executes the periodic analysis immediately (manual trigger).
func (s *Scheduler) RunNow() {
	s.periodicTask()
}

func (s *Scheduler) periodicTask() {
	if s.defaultBot == nil {
		return
	}
	s.log.Info().Str("symbol", s.defaultBot.CoinSymbol).Msg("running scheduled analysis")
	if _, err := s.analyze(*s.defaultBot); err != nil {
		s.log.Error().Err(err).Msg("scheduled analysis failed")
	}
}

func (s *Scheduler) analyze(bot model.BotContext) (*advisor.Result, error) {
	if bot.Mode == model.ModeExistingBot {
		return s.advisor.AnalyzeExistingBot(s.ctx, bot)
	}
	return s.advisor.AnalyzeNewBot(s.ctx, bot.CoinSymbol, bot.VsCurrency, bot.InitialCapital)
}

// HandleCommand processes a user command and returns the reply text.
// Successful analyses reply through the dispatcher itself, so they
// return an empty string here.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	switch fields[0] {
	case "/ping":
		s.advisor.TestNotification(s.ctx)
		return ""
	case "/analyze":
		return s.handleAnalyze(fields[1:])
	case "/status":
		if s.defaultBot == nil {
			return "Chưa cấu hình bot mặc định."
		}
		s.log.Info().Msg("manual run of scheduled analysis")
		go s.RunNow()
		return ""
	default:
		return "Các lệnh khả dụng:\n• /analyze <coin> <tiền tệ> <vốn>\n• /status\n• /ping"
	}
}

func (s *Scheduler) handleAnalyze(args []string) string {
	if len(args) < 3 {
		return "Cú pháp: /analyze <coin> <tiền tệ> <vốn>"
	}
	capital, err := strconv.ParseFloat(args[2], 64)
	if err != nil || capital <= 0 {
		return "Vốn không hợp lệ."
	}
	if _, err := s.advisor.AnalyzeNewBot(s.ctx, args[0], args[1], capital); err != nil {
		switch {
		case errors.Is(err, market.ErrNoData):
			return "❌ Không lấy được dữ liệu thị trường."
		case errors.Is(err, advisor.ErrGeneration):
			return "❌ Không nhận được phản hồi AI."
		default:
			return fmt.Sprintf("❌ Lỗi: %v", err)
		}
	}
	return ""
}
