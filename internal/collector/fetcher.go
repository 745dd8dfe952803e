package collector

import (
	"context"
	"time"

	"IndexRange/internal/model"
)

// HistoryRequest selects a closed date interval of daily bars for one symbol.
type HistoryRequest struct {
	Symbol string
	Index  bool // market index rather than an equity
	Start  time.Time
	End    time.Time // inclusive
}

// Fetcher defines the interface for fetching daily price history.
// A window without trading days yields an empty slice and a nil error.
type Fetcher interface {
	FetchHistory(ctx context.Context, req HistoryRequest) ([]model.OHLCV, error)
	Name() string
}
