package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/cfb-predictor/internal/domain/pipelinerun"
)

type PipelineRunRepository struct {
	mu   sync.RWMutex
	runs []pipelinerun.Run
}

func NewPipelineRunRepository() *PipelineRunRepository {
	return &PipelineRunRepository{}
}

func (r *PipelineRunRepository) Create(_ context.Context, run pipelinerun.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs = append(r.runs, run)
	return nil
}

func (r *PipelineRunRepository) ListByStage(_ context.Context, stage string, limit int) ([]pipelinerun.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pipelinerun.Run, 0, len(r.runs))
	for _, run := range r.runs {
		if stage == "" || run.Stage == stage {
			out = append(out, run)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
