package server

import (
	_ "embed"
	"html/template"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"IndexRange/internal/export"
	"IndexRange/internal/model"
)

//go:embed web/index.html
var indexHTML string

var pageFuncs = template.FuncMap{
	"price": func(d decimal.Decimal) string {
		f, _ := d.Float64()
		return humanize.CommafWithDigits(f, 2)
	},
}

type pageRow struct {
	model.RangeSummary
	StatusLabel string
	StatusClass string
}

type pageData struct {
	Title       string
	Period      model.Period
	PriorLabel  string
	NextLabel   string
	Headers     []string
	HasErrors   bool
	Rows        []pageRow
	TouchedHigh []string
	TouchedLow  []string
	CSVName     string
	ComputedAt  string
}

func newPageData(opts Options, b *model.Batch) pageData {
	p := b.Period
	d := pageData{
		Title:       opts.Title,
		Period:      p,
		PriorLabel:  p.PriorLabel(),
		NextLabel:   p.NextLabel(),
		Headers:     export.Header(p, b.HasErrors()),
		HasErrors:   b.HasErrors(),
		Rows:        make([]pageRow, 0, len(b.Summaries)),
		TouchedHigh: b.TouchedHigh(),
		TouchedLow:  b.TouchedLow(),
		CSVName:     export.FileName(opts.ReportPrefix, p, "csv"),
		ComputedAt:  b.ComputedAt.Format("2006-01-02 15:04:05"),
	}
	for _, s := range b.Summaries {
		row := pageRow{RangeSummary: s}
		if !s.Failed() {
			row.StatusLabel = s.OpenStatus.Label(p)
			row.StatusClass = statusClass(s.OpenStatus)
		}
		d.Rows = append(d.Rows, row)
	}
	return d
}

func statusClass(s model.OpenStatus) string {
	switch s {
	case model.AboveRange:
		return "above"
	case model.BelowRange:
		return "below"
	case model.WithinRange:
		return "within"
	default:
		return "missing"
	}
}
