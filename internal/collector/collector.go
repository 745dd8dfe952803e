package collector

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"IndexRange/internal/model"
)

// ErrEmptyPrior signals that the prior window had no trading data.
var ErrEmptyPrior = errors.New("prior window has no trading data")

// MockFetcher returns controllable fixed data for development and testing.
// Symbols without Bars get a generated weekday series around BasePrice.
type MockFetcher struct {
	BasePrice float64
	Bars      map[string][]model.OHLCV
	Errors    map[string]error

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, req HistoryRequest) ([]model.OHLCV, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[req.Symbol]++
	m.mu.Unlock()

	if err, ok := m.Errors[req.Symbol]; ok {
		return nil, err
	}
	src, ok := m.Bars[req.Symbol]
	if !ok {
		src = generateMockBars(req.Symbol, m.BasePrice, req.Start, req.End)
	}
	bars := make([]model.OHLCV, 0, len(src))
	for _, b := range src {
		if model.InRange(b.Time, req.Start, req.End) {
			bars = append(bars, b)
		}
	}
	return bars, nil
}

// Calls returns how many requests were made for symbol.
func (m *MockFetcher) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

func generateMockBars(symbol string, basePrice float64, start, end time.Time) []model.OHLCV {
	if basePrice == 0 {
		basePrice = 20000
	}
	h := fnv.New32a()
	h.Write([]byte(symbol))
	base := basePrice * (0.5 + float64(h.Sum32()%1000)/1000)

	var bars []model.OHLCV
	for d := model.Day(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p := base * (1 + float64(d.YearDay()%17-8)*0.002)
		bars = append(bars, model.OHLCV{
			Time:   d,
			Open:   decimal.NewFromFloat(p * 0.999).Round(2),
			High:   decimal.NewFromFloat(p * 1.005).Round(2),
			Low:    decimal.NewFromFloat(p * 0.995).Round(2),
			Close:  decimal.NewFromFloat(p).Round(2),
			Volume: 1000000,
		})
	}
	return bars
}

// Collector pulls the three history windows of one index.
type Collector struct {
	Fetcher Fetcher
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher}
}

// CollectWindows fetches the prior window, the first day of the next window and
// the next window to date. An empty prior window stops early with ErrEmptyPrior.
func (c *Collector) CollectWindows(ctx context.Context, def model.IndexDefinition, p model.Period) (*model.IndexWindows, error) {
	fetch := func(start, end time.Time) ([]model.OHLCV, error) {
		return c.Fetcher.FetchHistory(ctx, HistoryRequest{
			Symbol: def.Symbol,
			Index:  def.Index,
			Start:  start,
			End:    end,
		})
	}

	prior, err := fetch(p.PriorStart, p.PriorEnd)
	if err != nil {
		return nil, fmt.Errorf("fetch prior window: %w", err)
	}
	if len(prior) == 0 {
		return nil, ErrEmptyPrior
	}
	firstDay, err := fetch(p.NextStart, p.NextStart)
	if err != nil {
		return nil, fmt.Errorf("fetch next open: %w", err)
	}
	var toDate []model.OHLCV
	if !p.AsOf.Before(p.NextStart) {
		toDate, err = fetch(p.NextStart, p.AsOf)
		if err != nil {
			return nil, fmt.Errorf("fetch next window to date: %w", err)
		}
	}
	return &model.IndexWindows{Prior: prior, FirstDay: firstDay, ToDate: toDate}, nil
}
