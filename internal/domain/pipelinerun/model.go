package pipelinerun

import (
	"context"
	"time"
)

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is the audit record of one finished pipeline stage.
type Run struct {
	ID         string
	Stage      string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     Status
	// Summary is the stage report encoded as JSON.
	Summary string
	Error   string
}

func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

type Repository interface {
	Create(ctx context.Context, run Run) error
	// ListByStage returns the most recent runs first. An empty stage lists
	// every stage.
	ListByStage(ctx context.Context, stage string, limit int) ([]Run, error)
}
