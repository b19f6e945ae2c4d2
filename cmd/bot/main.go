package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"GridPilot/internal/advisor"
	"GridPilot/internal/config"
	"GridPilot/internal/market"
	"GridPilot/internal/model"
	"GridPilot/internal/notifier"
	"GridPilot/internal/recorder"
	"GridPilot/internal/scheduler"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		errLogger := zerolog.New(os.Stderr)
		errLogger.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		errLogger := zerolog.New(os.Stderr)
		errLogger.Fatal().Err(err).Msg("config validation")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	logger.Info().Msg("GridPilot starting...")

	// Init market data fetcher
	fetcher := market.NewCoinGeckoFetcher(
		cfg.Market.BaseURL,
		cfg.Market.FallbackCurrency,
		time.Duration(cfg.Market.TimeoutSeconds)*time.Second,
		logger,
	)
	logger.Info().Str("source", fetcher.Name()).Msg("market data source ready")

	// Init generation client
	gemini := advisor.NewGeminiClient(
		cfg.Gemini.APIKey,
		cfg.Gemini.Model,
		time.Duration(cfg.Gemini.TimeoutSeconds)*time.Second,
		logger,
	)
	if cfg.Gemini.APIKey == "" {
		logger.Warn().Msg("GEMINI_API_KEY not set, analyses will fail at the generation step")
	}

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger)
	if !tn.Configured() {
		logger.Warn().Msg("telegram credentials not set, notifications will be skipped")
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init advisor pipeline
	svc := advisor.NewService(fetcher, gemini, tn, rec, cfg.Advisor.TrendThreshold, logger)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.New(ctx, svc, logger)
	if cfg.Schedule.Cron != "" {
		bot := model.NewBotContext(cfg.Schedule.CoinSymbol, cfg.Schedule.VsCurrency, cfg.Schedule.Capital)
		if err := sched.RegisterPeriodic(cfg.Schedule.Cron, bot); err != nil {
			logger.Fatal().Err(err).Msg("register periodic analysis")
		}
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram command polling
	go tn.StartPolling(ctx, sched.HandleCommand)

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" && cfg.Schedule.Cron != "" {
		logger.Info().Msg("RUN_ON_START enabled, executing analysis now")
		go sched.RunNow()
	}

	logger.Info().Msg("GridPilot is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutdown signal received, stopping...")
	cancel()
	logger.Info().Msg("GridPilot stopped")
}
