package model

import (
	"fmt"
	"time"
)

// DateLayout is the day-granularity layout used in config and cache keys.
const DateLayout = "2006-01-02"

// Period holds the date boundaries of one evaluation. All dates are
// midnight in the market time zone and are inclusive.
type Period struct {
	PriorStart time.Time
	PriorEnd   time.Time
	NextStart  time.Time
	AsOf       time.Time
}

// Key renders the boundaries as a stable string.
func (p Period) Key() string {
	return fmt.Sprintf("%s..%s|%s..%s",
		p.PriorStart.Format(DateLayout), p.PriorEnd.Format(DateLayout),
		p.NextStart.Format(DateLayout), p.AsOf.Format(DateLayout))
}

// PriorLabel is the month name of the prior window ("June").
func (p Period) PriorLabel() string { return p.PriorStart.Month().String() }

// NextLabel is the month name of the next window ("July").
func (p Period) NextLabel() string { return p.NextStart.Month().String() }

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// InRange reports whether t falls on a day within [start, end].
func InRange(t, start, end time.Time) bool {
	d := Day(t.In(start.Location()))
	return !d.Before(Day(start)) && !d.After(Day(end))
}

// PeriodFunc resolves the evaluation period at the given instant.
type PeriodFunc func(now time.Time) (Period, error)
