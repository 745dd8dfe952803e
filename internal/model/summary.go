package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenStatus classifies the next window's opening price against the prior range.
type OpenStatus string

const (
	AboveRange  OpenStatus = "ABOVE_RANGE"
	BelowRange  OpenStatus = "BELOW_RANGE"
	WithinRange OpenStatus = "WITHIN_RANGE"
	DataMissing OpenStatus = "DATA_MISSING"
)

// Label renders the status the way the dashboard shows it.
func (s OpenStatus) Label(p Period) string {
	switch s {
	case AboveRange:
		return "Above " + p.PriorLabel() + " High"
	case BelowRange:
		return "Below " + p.PriorLabel() + " Low"
	case WithinRange:
		return "Within Range"
	case DataMissing:
		return "Data Missing"
	default:
		return ""
	}
}

// RangeSummary is the evaluation result for one index. Either Error is set
// and every computed field is zero, or Error is empty.
type RangeSummary struct {
	IndexID     string
	PriorHigh   decimal.Decimal
	PriorLow    decimal.Decimal
	NextOpen    decimal.NullDecimal
	OpenStatus  OpenStatus
	TouchedHigh bool
	TouchedLow  bool
	Error       string
}

// Failed reports whether the summary carries a fetch failure.
func (s RangeSummary) Failed() bool { return s.Error != "" }

// Batch is one computed set of summaries, in configured index order.
type Batch struct {
	Key        string
	Period     Period
	ComputedAt time.Time
	Summaries  []RangeSummary
}

// HasErrors reports whether any summary in the batch failed.
func (b *Batch) HasErrors() bool {
	for i := range b.Summaries {
		if b.Summaries[i].Failed() {
			return true
		}
	}
	return false
}

// TouchedHigh returns the IDs of indices whose to-date highs reached the prior high.
func (b *Batch) TouchedHigh() []string {
	var ids []string
	for _, s := range b.Summaries {
		if s.TouchedHigh {
			ids = append(ids, s.IndexID)
		}
	}
	return ids
}

// TouchedLow returns the IDs of indices whose to-date lows reached the prior low.
func (b *Batch) TouchedLow() []string {
	var ids []string
	for _, s := range b.Summaries {
		if s.TouchedLow {
			ids = append(ids, s.IndexID)
		}
	}
	return ids
}
