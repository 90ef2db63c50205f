package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/cfb-predictor/internal/domain/pipelinerun"
	qb "github.com/riskibarqy/cfb-predictor/internal/platform/querybuilder"
)

const pipelineRunsTable = "pipeline_runs"

type PipelineRunRepository struct {
	db *sqlx.DB
}

func NewPipelineRunRepository(db *sqlx.DB) *PipelineRunRepository {
	return &PipelineRunRepository{db: db}
}

func (r *PipelineRunRepository) Create(ctx context.Context, run pipelinerun.Run) error {
	summary := run.Summary
	if summary == "" {
		summary = "{}"
	}
	query, args, err := qb.InsertModels(pipelineRunsTable, []pipelineRunModel{{
		ID:           run.ID,
		Stage:        run.Stage,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
		Status:       string(run.Status),
		Summary:      summary,
		ErrorMessage: run.Error,
	}}, "")
	if err != nil {
		return fmt.Errorf("build insert pipeline run query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert pipeline run id=%s stage=%s: %w", run.ID, run.Stage, err)
	}
	return nil
}

func (r *PipelineRunRepository) ListByStage(ctx context.Context, stage string, limit int) ([]pipelinerun.Run, error) {
	builder := qb.Select("id", "stage", "started_at", "finished_at", "status", "summary", "error_message").
		From(pipelineRunsTable).
		OrderBy("started_at DESC", "id DESC")
	if stage != "" {
		builder = builder.Where(qb.Eq("stage", stage))
	}
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pipeline runs query: %w", err)
	}

	var rows []pipelineRunModel
	err = retryStatement(func() error {
		rows = rows[:0]
		return r.db.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("list pipeline runs stage=%s: %w", stage, err)
	}

	out := make([]pipelinerun.Run, 0, len(rows))
	for _, row := range rows {
		out = append(out, pipelinerun.Run{
			ID:         row.ID,
			Stage:      row.Stage,
			StartedAt:  row.StartedAt,
			FinishedAt: row.FinishedAt,
			Status:     pipelinerun.Status(row.Status),
			Summary:    row.Summary,
			Error:      row.ErrorMessage,
		})
	}
	return out, nil
}

type pipelineRunModel struct {
	ID           string    `db:"id"`
	Stage        string    `db:"stage"`
	StartedAt    time.Time `db:"started_at"`
	FinishedAt   time.Time `db:"finished_at"`
	Status       string    `db:"status"`
	Summary      string    `db:"summary"`
	ErrorMessage string    `db:"error_message"`
}
