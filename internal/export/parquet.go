package export

import (
	"io"

	"github.com/parquet-go/parquet-go"

	"IndexRange/internal/model"
)

// SummaryRecord is the Parquet schema of one report row. Price columns are
// null for failed indices and a missing next open.
type SummaryRecord struct {
	Index       string   `parquet:"index"`
	PriorHigh   *float64 `parquet:"prior_high,optional"`
	PriorLow    *float64 `parquet:"prior_low,optional"`
	NextOpen    *float64 `parquet:"next_open,optional"`
	OpenStatus  string   `parquet:"open_status"`
	TouchedHigh bool     `parquet:"touched_high"`
	TouchedLow  bool     `parquet:"touched_low"`
	Error       string   `parquet:"error"`
	AsOf        int64    `parquet:"as_of,timestamp(millisecond)"`
}

// Records converts the batch into Parquet rows.
func Records(b *model.Batch) []SummaryRecord {
	asOf := b.Period.AsOf.UnixMilli()
	out := make([]SummaryRecord, 0, len(b.Summaries))
	for _, s := range b.Summaries {
		rec := SummaryRecord{Index: s.IndexID, Error: s.Error, AsOf: asOf}
		if !s.Failed() {
			high, _ := s.PriorHigh.Float64()
			low, _ := s.PriorLow.Float64()
			rec.PriorHigh = &high
			rec.PriorLow = &low
			if s.NextOpen.Valid {
				open, _ := s.NextOpen.Decimal.Float64()
				rec.NextOpen = &open
			}
			rec.OpenStatus = s.OpenStatus.Label(b.Period)
			rec.TouchedHigh = s.TouchedHigh
			rec.TouchedLow = s.TouchedLow
		}
		out = append(out, rec)
	}
	return out
}

// WriteParquet writes the batch as a single Parquet file.
func WriteParquet(w io.Writer, b *model.Batch) error {
	return parquet.Write(w, Records(b))
}
