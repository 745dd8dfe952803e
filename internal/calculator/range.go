package calculator

import (
	"errors"

	"github.com/shopspring/decimal"

	"IndexRange/internal/model"
)

// ErrNoBars is returned when a range is requested over an empty window.
var ErrNoBars = errors.New("no bars provided")

// WindowRange scans every bar of the window and returns the highest High and lowest Low.
func WindowRange(bars []model.OHLCV) (high, low decimal.Decimal, err error) {
	if len(bars) == 0 {
		return decimal.Zero, decimal.Zero, ErrNoBars
	}
	high = bars[0].High
	low = bars[0].Low
	for i := 1; i < len(bars); i++ {
		if bars[i].High.GreaterThan(high) {
			high = bars[i].High
		}
		if bars[i].Low.LessThan(low) {
			low = bars[i].Low
		}
	}
	return high, low, nil
}

// FirstOpen returns the Open of the earliest bar. Valid is false for an empty window.
func FirstOpen(bars []model.OHLCV) decimal.NullDecimal {
	if len(bars) == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: bars[0].Open, Valid: true}
}

// TouchedHigh reports whether any bar's High reached level.
func TouchedHigh(bars []model.OHLCV, level decimal.Decimal) bool {
	for _, b := range bars {
		if b.High.GreaterThanOrEqual(level) {
			return true
		}
	}
	return false
}

// TouchedLow reports whether any bar's Low reached level.
func TouchedLow(bars []model.OHLCV, level decimal.Decimal) bool {
	for _, b := range bars {
		if b.Low.LessThanOrEqual(level) {
			return true
		}
	}
	return false
}
