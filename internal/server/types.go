package server

import (
	"time"

	"github.com/shopspring/decimal"

	"IndexRange/internal/model"
)

type periodResponse struct {
	PriorStart string `json:"priorStart"`
	PriorEnd   string `json:"priorEnd"`
	NextStart  string `json:"nextStart"`
	AsOf       string `json:"asOf"`
}

type summaryResponse struct {
	Index       string           `json:"index"`
	PriorHigh   *decimal.Decimal `json:"priorHigh,omitempty"`
	PriorLow    *decimal.Decimal `json:"priorLow,omitempty"`
	NextOpen    *decimal.Decimal `json:"nextOpen,omitempty"`
	OpenStatus  string           `json:"openStatus,omitempty"`
	StatusLabel string           `json:"statusLabel,omitempty"`
	TouchedHigh bool             `json:"touchedHigh"`
	TouchedLow  bool             `json:"touchedLow"`
	Error       string           `json:"error,omitempty"`
}

type batchResponse struct {
	Key         string            `json:"key"`
	Period      periodResponse    `json:"period"`
	ComputedAt  time.Time         `json:"computedAt"`
	HasErrors   bool              `json:"hasErrors"`
	Summaries   []summaryResponse `json:"summaries"`
	TouchedHigh []string          `json:"touchedHigh"`
	TouchedLow  []string          `json:"touchedLow"`
}

func newBatchResponse(b *model.Batch) batchResponse {
	p := b.Period
	resp := batchResponse{
		Key: b.Key,
		Period: periodResponse{
			PriorStart: p.PriorStart.Format(model.DateLayout),
			PriorEnd:   p.PriorEnd.Format(model.DateLayout),
			NextStart:  p.NextStart.Format(model.DateLayout),
			AsOf:       p.AsOf.Format(model.DateLayout),
		},
		ComputedAt:  b.ComputedAt,
		HasErrors:   b.HasErrors(),
		Summaries:   make([]summaryResponse, 0, len(b.Summaries)),
		TouchedHigh: nonNil(b.TouchedHigh()),
		TouchedLow:  nonNil(b.TouchedLow()),
	}
	for _, s := range b.Summaries {
		if s.Failed() {
			resp.Summaries = append(resp.Summaries, summaryResponse{Index: s.IndexID, Error: s.Error})
			continue
		}
		high, low := s.PriorHigh, s.PriorLow
		sr := summaryResponse{
			Index:       s.IndexID,
			PriorHigh:   &high,
			PriorLow:    &low,
			OpenStatus:  string(s.OpenStatus),
			StatusLabel: s.OpenStatus.Label(p),
			TouchedHigh: s.TouchedHigh,
			TouchedLow:  s.TouchedLow,
		}
		if s.NextOpen.Valid {
			open := s.NextOpen.Decimal
			sr.NextOpen = &open
		}
		resp.Summaries = append(resp.Summaries, sr)
	}
	return resp
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
