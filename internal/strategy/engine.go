package strategy

import (
	"github.com/shopspring/decimal"

	"IndexRange/internal/calculator"
	"IndexRange/internal/model"
)

// ClassifyOpen places the next window's opening price relative to the prior range.
// Leaving the range requires a strict inequality.
func ClassifyOpen(open decimal.NullDecimal, high, low decimal.Decimal) model.OpenStatus {
	switch {
	case !open.Valid:
		return model.DataMissing
	case open.Decimal.GreaterThan(high):
		return model.AboveRange
	case open.Decimal.LessThan(low):
		return model.BelowRange
	default:
		return model.WithinRange
	}
}

// Evaluate computes the range summary of one index from its three windows.
// ok is false when the prior window is empty; such an index is left out of the batch.
func Evaluate(indexID string, prior, firstDay, toDate []model.OHLCV) (summary model.RangeSummary, ok bool) {
	high, low, err := calculator.WindowRange(prior)
	if err != nil {
		return model.RangeSummary{}, false
	}
	open := calculator.FirstOpen(firstDay)
	return model.RangeSummary{
		IndexID:     indexID,
		PriorHigh:   high,
		PriorLow:    low,
		NextOpen:    open,
		OpenStatus:  ClassifyOpen(open, high, low),
		TouchedHigh: calculator.TouchedHigh(toDate, high),
		TouchedLow:  calculator.TouchedLow(toDate, low),
	}, true
}

// Failed builds the error-only summary for an index whose fetch failed.
func Failed(indexID string, err error) model.RangeSummary {
	return model.RangeSummary{IndexID: indexID, Error: err.Error()}
}
