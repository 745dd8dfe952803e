// Package export renders a batch as downloadable CSV and Parquet reports.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"IndexRange/internal/model"
)

// FileName builds the report file name for the period, e.g.
// "nifty_june_july_analysis.csv".
func FileName(prefix string, p model.Period, ext string) string {
	return fmt.Sprintf("%s_%s_%s_analysis.%s",
		strings.ToLower(prefix), strings.ToLower(p.PriorLabel()), strings.ToLower(p.NextLabel()), ext)
}

// Header returns the report columns in their fixed order. The Error column is
// present only when withError is set.
func Header(p model.Period, withError bool) []string {
	prior, next := p.PriorLabel(), p.NextLabel()
	cols := []string{
		"Index",
		prior + " High",
		prior + " Low",
		next + " Open",
		"Open Status",
		"Touched " + prior + " High",
		"Touched " + prior + " Low",
	}
	if withError {
		cols = append(cols, "Error")
	}
	return cols
}

// Record renders one summary as report cells. Failed summaries carry only
// the index and, when withError is set, the error text.
func Record(s model.RangeSummary, p model.Period, withError bool) []string {
	rec := make([]string, 7, 8)
	rec[0] = s.IndexID
	if !s.Failed() {
		rec[1] = s.PriorHigh.String()
		rec[2] = s.PriorLow.String()
		if s.NextOpen.Valid {
			rec[3] = s.NextOpen.Decimal.String()
		}
		rec[4] = s.OpenStatus.Label(p)
		rec[5] = yesNo(s.TouchedHigh)
		rec[6] = yesNo(s.TouchedLow)
	}
	if withError {
		rec = append(rec, s.Error)
	}
	return rec
}

// WriteCSV writes the batch in configured index order.
func WriteCSV(w io.Writer, b *model.Batch) error {
	withError := b.HasErrors()
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(b.Period, withError)); err != nil {
		return err
	}
	for _, s := range b.Summaries {
		if err := cw.Write(Record(s, b.Period, withError)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
