package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OHLCV represents a single daily bar.
type OHLCV struct {
	Time   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume int64
}

// IndexDefinition is one tracked instrument.
type IndexDefinition struct {
	ID     string // display identifier, e.g. "NIFTY BANK"
	Symbol string // provider lookup symbol, e.g. "^NSEBANK"
	Index  bool   // market index rather than an equity
}

// IndexWindows holds the three history windows fetched for one index.
type IndexWindows struct {
	Prior    []OHLCV // prior window, full range
	FirstDay []OHLCV // first day of the next window
	ToDate   []OHLCV // next window start through as-of
}
