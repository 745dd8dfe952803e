package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"IndexRange/internal/analyzer"
	"IndexRange/internal/logging"
	"IndexRange/internal/model"
	"IndexRange/internal/notifier"
)

// Scheduler refreshes the batch on a cron schedule and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Cache    *analyzer.Cache
	Period   model.PeriodFunc
	Notifier *notifier.TelegramNotifier // nil disables reports
	Title    string
	Now      func() time.Time
	Ctx      context.Context

	logger zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, cache *analyzer.Cache, period model.PeriodFunc, tn *notifier.TelegramNotifier, title string) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Cache:    cache,
		Period:   period,
		Notifier: tn,
		Title:    title,
		Now:      time.Now,
		Ctx:      ctx,
		logger:   logging.Component("scheduler"),
	}
}

// Register adds the refresh task.
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// Refresh drops the memoized batch and recomputes it for the current period.
func (s *Scheduler) Refresh(ctx context.Context) (*model.Batch, error) {
	p, err := s.Period(s.Now())
	if err != nil {
		return nil, fmt.Errorf("resolve period: %w", err)
	}
	s.Cache.Invalidate()
	return s.Cache.Get(ctx, p), nil
}

func (s *Scheduler) current(ctx context.Context) (*model.Batch, error) {
	p, err := s.Period(s.Now())
	if err != nil {
		return nil, fmt.Errorf("resolve period: %w", err)
	}
	return s.Cache.Get(ctx, p), nil
}

func (s *Scheduler) refreshTask() {
	s.logger.Info().Msg("running scheduled refresh")
	b, err := s.Refresh(s.Ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("scheduled refresh")
		s.trySend(fmt.Sprintf("❌ refresh failed: %v", err))
		return
	}
	s.trySend(notifier.FormatRangeReport(s.Title, b))
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	var cmd string
	if fields := strings.Fields(command); len(fields) > 0 {
		cmd = strings.ToLower(fields[0])
	}
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/ranges":
		b, err := s.current(ctx)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatRangeReport(s.Title, b)
	case "/touched":
		b, err := s.current(ctx)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatTriggers(b)
	case "/refresh":
		b, err := s.Refresh(ctx)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatRangeReport(s.Title, b)
	default:
		return "Available commands:\n• /ranges prior range and next open per index\n• /touched indices that touched the prior high or low\n• /refresh recompute from fresh data"
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.logger.Error().Err(err).Msg("send notification")
	}
}
