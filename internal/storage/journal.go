package storage

import (
	"context"
	"time"
)

// RunRecord is the journal's view of one simulation run.
type RunRecord struct {
	ID        string
	Brain     string
	Body      string
	StartedAt time.Time
	Fitness   float64
}

// MutationRecord is one runtime edit delivered to a running controller.
// Error is empty when the mutation was accepted.
type MutationRecord struct {
	RunID   string
	Time    float64
	Op      string
	Subject string
	Error   string
	Payload []byte
}

// Journal records runs and the mutations applied during them.
type Journal interface {
	Init(ctx context.Context) error
	RecordRun(ctx context.Context, run RunRecord) error
	RecordMutation(ctx context.Context, m MutationRecord) error
	Runs(ctx context.Context) ([]RunRecord, error)
	Mutations(ctx context.Context, runID string) ([]MutationRecord, error)
}
