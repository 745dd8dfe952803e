package recorder

import "IndexRange/internal/model"

// NoopRecorder is a no-op implementation used when run recording is disabled.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordBatch(_ *model.Batch) error { return nil }

func (n *NoopRecorder) ListRuns(_ int) ([]RunInfo, error) { return nil, nil }

func (n *NoopRecorder) RunRows(_ string) ([]RunRow, error) { return nil, nil }

func (n *NoopRecorder) Close() error { return nil }
