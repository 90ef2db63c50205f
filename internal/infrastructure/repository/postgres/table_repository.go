package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/cfb-predictor/internal/domain/rawdata"
	qb "github.com/riskibarqy/cfb-predictor/internal/platform/querybuilder"
)

const (
	tableRowsTable  = "table_rows"
	insertChunkSize = 500
)

// TableRepository stores every logical table in one payload table.
type TableRepository struct {
	db *sqlx.DB
}

func NewTableRepository(db *sqlx.DB) *TableRepository {
	return &TableRepository{db: db}
}

func (r *TableRepository) Write(ctx context.Context, writes ...rawdata.Write) error {
	if len(writes) == 0 {
		return nil
	}
	for _, w := range writes {
		if err := w.Validate(); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx write tables: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, w := range writes {
		if err := clearScope(ctx, tx, w); err != nil {
			return err
		}
		for start := 0; start < len(w.Records); start += insertChunkSize {
			end := min(start+insertChunkSize, len(w.Records))
			models := make([]tableRowInsertModel, 0, end-start)
			for _, record := range w.Records[start:end] {
				models = append(models, tableRowInsertModel{
					TableName:   w.Table,
					Year:        record.Year,
					RecordKey:   record.Key,
					Payload:     record.PayloadJSON,
					PayloadHash: record.PayloadHash,
				})
			}
			query, args, err := qb.InsertModels(tableRowsTable, models, "")
			if err != nil {
				return fmt.Errorf("build insert rows query table=%s: %w", w.Table, err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert rows table=%s year=%d: %w", w.Table, w.Year, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit write tables tx: %w", err)
	}
	return nil
}

func clearScope(ctx context.Context, tx *sqlx.Tx, w rawdata.Write) error {
	var del *qb.DeleteBuilder
	switch w.Mode {
	case rawdata.ModeReplaceAll:
		del = qb.DeleteFrom(tableRowsTable).Where(qb.Eq("table_name", w.Table))
	case rawdata.ModeReplaceYear:
		del = qb.DeleteFrom(tableRowsTable).Where(qb.Eq("table_name", w.Table), qb.Eq("year", w.Year))
	default:
		return nil
	}

	query, args, err := del.ToSQL()
	if err != nil {
		return fmt.Errorf("build delete rows query table=%s: %w", w.Table, err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete rows table=%s mode=%s: %w", w.Table, w.Mode, err)
	}
	return nil
}

func (r *TableRepository) Read(ctx context.Context, table string) ([]rawdata.Record, error) {
	query, args, err := qb.Select("year", "record_key", "payload", "payload_hash", "ingested_at").
		From(tableRowsTable).
		Where(qb.Eq("table_name", table)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build read rows query: %w", err)
	}

	var rows []tableRowTableModel
	err = retryStatement(func() error {
		rows = rows[:0]
		return r.db.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("read rows table=%s: %w", table, err)
	}

	out := make([]rawdata.Record, 0, len(rows))
	for _, row := range rows {
		if !sonic.Valid([]byte(row.Payload)) {
			return nil, fmt.Errorf("%w: table=%s key=%s", rawdata.ErrCorruptPayload, table, row.RecordKey)
		}
		out = append(out, rawdata.Record{
			Table:       table,
			Year:        row.Year,
			Key:         row.RecordKey,
			PayloadJSON: row.Payload,
			PayloadHash: row.PayloadHash,
			IngestedAt:  row.IngestedAt,
		})
	}
	return out, nil
}

func (r *TableRepository) MaxYear(ctx context.Context, table string) (int, bool, error) {
	query, args, err := qb.Select("MAX(year)").
		From(tableRowsTable).
		Where(qb.Eq("table_name", table)).
		ToSQL()
	if err != nil {
		return 0, false, fmt.Errorf("build max year query: %w", err)
	}

	var year sql.NullInt64
	err = retryStatement(func() error {
		return r.db.GetContext(ctx, &year, query, args...)
	})
	if err != nil {
		if isNotFound(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("max year table=%s: %w", table, err)
	}
	if !year.Valid {
		return 0, false, nil
	}
	return int(year.Int64), true, nil
}

type tableRowInsertModel struct {
	TableName   string `db:"table_name"`
	Year        int    `db:"year"`
	RecordKey   string `db:"record_key"`
	Payload     string `db:"payload"`
	PayloadHash string `db:"payload_hash"`
}

type tableRowTableModel struct {
	Year        int       `db:"year"`
	RecordKey   string    `db:"record_key"`
	Payload     string    `db:"payload"`
	PayloadHash string    `db:"payload_hash"`
	IngestedAt  time.Time `db:"ingested_at"`
}
