package recorder

import (
	"time"

	"IndexRange/internal/model"
)

// RunInfo describes one recorded batch computation.
type RunInfo struct {
	ID         string    `json:"id"`
	Key        string    `json:"key"`
	ComputedAt time.Time `json:"computedAt"`
	Indices    int       `json:"indices"`
	Failed     int       `json:"failed"`
	AboveRange int       `json:"aboveRange"`
	BelowRange int       `json:"belowRange"`
}

// RunRow is one recorded index summary of a run.
type RunRow struct {
	IndexID     string `json:"index"`
	PriorHigh   string `json:"priorHigh,omitempty"`
	PriorLow    string `json:"priorLow,omitempty"`
	NextOpen    string `json:"nextOpen,omitempty"`
	OpenStatus  string `json:"openStatus,omitempty"`
	TouchedHigh bool   `json:"touchedHigh"`
	TouchedLow  bool   `json:"touchedLow"`
	Error       string `json:"error,omitempty"`
}

// Recorder keeps the evaluation runs of the current session.
type Recorder interface {
	RecordBatch(b *model.Batch) error
	ListRuns(limit int) ([]RunInfo, error)
	RunRows(runID string) ([]RunRow, error)
	Close() error
}
