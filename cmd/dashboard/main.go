package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"IndexRange/internal/analyzer"
	"IndexRange/internal/collector"
	"IndexRange/internal/config"
	"IndexRange/internal/logging"
	"IndexRange/internal/notifier"
	"IndexRange/internal/recorder"
	"IndexRange/internal/scheduler"
	"IndexRange/internal/server"
)

func main() {
	logging.Setup("info")

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("load .env")
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	logging.Setup(cfg.Log.Level)
	log.Info().Str("config", cfgPath).Int("indices", len(cfg.Indices)).Msg("IndexRange starting")

	// Init fetcher
	client := collector.NewHTTPClient(collector.ClientOptions{
		ProxyURL:       cfg.Proxy,
		Timeout:        time.Duration(cfg.DataSource.TimeoutSec) * time.Second,
		RequestsPerSec: cfg.DataSource.RequestsPerSec,
	})
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "rest":
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, client)
	case "mock":
		fetcher = &collector.MockFetcher{}
	default:
		yf := collector.NewYahooFetcher(client, cfg.DataSource.EquitySuffix)
		if cfg.DataSource.BaseURL != "" {
			yf.BaseURL = cfg.DataSource.BaseURL
		}
		fetcher = yf
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source ready")

	// Init recorder
	var rec recorder.Recorder
	sr, err := recorder.NewSQLiteRecorder()
	if err != nil {
		log.Warn().Err(err).Msg("init session recorder failed, using noop")
		rec = recorder.NewNoopRecorder()
	} else {
		rec = sr
		defer sr.Close()
	}

	an := analyzer.New(collector.NewCollector(fetcher), cfg.IndexDefinitions(), cfg.Analysis.Workers, rec)
	cache := analyzer.NewCache(an)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, cache, cfg.ResolvePeriod, tn, cfg.Dashboard.Title)
	if err := sched.Register(cfg.Schedule.RefreshCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	// Optional: compute the batch before the first page view
	if os.Getenv("RUN_ON_START") == "true" {
		go func() {
			if _, err := sched.Refresh(ctx); err != nil {
				log.Error().Err(err).Msg("initial refresh")
			}
		}()
	}

	ds := server.NewDashboardServer(cache, cfg.ResolvePeriod, rec, server.Options{
		Title:        cfg.Dashboard.Title,
		ReportPrefix: cfg.Dashboard.ReportPrefix,
	})
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           ds.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("dashboard listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("IndexRange stopped")
}
