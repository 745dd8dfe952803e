// Package analyzer runs the range evaluation over every tracked index and
// memoizes the resulting batch.
package analyzer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"IndexRange/internal/collector"
	"IndexRange/internal/logging"
	"IndexRange/internal/model"
	"IndexRange/internal/recorder"
	"IndexRange/internal/strategy"
)

// Analyzer evaluates every configured index for a period.
type Analyzer struct {
	Collector *collector.Collector
	Indices   []model.IndexDefinition
	Workers   int
	Recorder  recorder.Recorder
	Now       func() time.Time

	logger zerolog.Logger
}

// New creates an Analyzer. A nil recorder disables run recording.
func New(col *collector.Collector, indices []model.IndexDefinition, workers int, rec recorder.Recorder) *Analyzer {
	if workers < 1 {
		workers = 1
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Analyzer{
		Collector: col,
		Indices:   indices,
		Workers:   workers,
		Recorder:  rec,
		Now:       time.Now,
		logger:    logging.Component("analyzer"),
	}
}

type slot struct {
	summary model.RangeSummary
	keep    bool
}

// Run evaluates all indices. It never fails as a whole: a fetch failure
// becomes that index's error summary and an empty prior window drops the index.
// Summaries keep the configured index order.
func (a *Analyzer) Run(ctx context.Context, p model.Period) *model.Batch {
	start := a.Now()
	slots := make([]slot, len(a.Indices))

	if a.Workers == 1 {
		for i, def := range a.Indices {
			slots[i] = a.evaluate(ctx, def, p)
		}
	} else {
		sem := make(chan struct{}, a.Workers)
		var wg sync.WaitGroup
		for i, def := range a.Indices {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, def model.IndexDefinition) {
				defer wg.Done()
				defer func() { <-sem }()
				slots[i] = a.evaluate(ctx, def, p)
			}(i, def)
		}
		wg.Wait()
	}

	batch := &model.Batch{
		Key:        Key(a.Indices, p),
		Period:     p,
		ComputedAt: a.Now(),
		Summaries:  make([]model.RangeSummary, 0, len(slots)),
	}
	failed := 0
	for _, s := range slots {
		if !s.keep {
			continue
		}
		if s.summary.Failed() {
			failed++
		}
		batch.Summaries = append(batch.Summaries, s.summary)
	}

	a.logger.Info().
		Str("period", p.Key()).
		Int("indices", len(a.Indices)).
		Int("summaries", len(batch.Summaries)).
		Int("failed", failed).
		Dur("took", batch.ComputedAt.Sub(start)).
		Msg("batch computed")

	if err := a.Recorder.RecordBatch(batch); err != nil {
		a.logger.Error().Err(err).Msg("record batch")
	}
	return batch
}

func (a *Analyzer) evaluate(ctx context.Context, def model.IndexDefinition, p model.Period) slot {
	w, err := a.Collector.CollectWindows(ctx, def, p)
	if errors.Is(err, collector.ErrEmptyPrior) {
		a.logger.Warn().Str("index", def.ID).Msg("no prior window data, skipping")
		return slot{}
	}
	if err != nil {
		a.logger.Error().Err(err).Str("index", def.ID).Msg("fetch failed")
		return slot{summary: strategy.Failed(def.ID, err), keep: true}
	}
	summary, ok := strategy.Evaluate(def.ID, w.Prior, w.FirstDay, w.ToDate)
	return slot{summary: summary, keep: ok}
}
