package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/cfb-predictor/internal/domain/rawdata"
)

// TableRepository keeps logical tables in process memory.
type TableRepository struct {
	mu     sync.RWMutex
	tables map[string][]rawdata.Record
	now    func() time.Time
}

func NewTableRepository() *TableRepository {
	return &TableRepository{
		tables: make(map[string][]rawdata.Record),
		now:    time.Now,
	}
}

func (r *TableRepository) Write(_ context.Context, writes ...rawdata.Write) error {
	for _, w := range writes {
		if err := w.Validate(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Stage every table first so a failed batch leaves nothing behind.
	staged := make(map[string][]rawdata.Record, len(writes))
	ingestedAt := r.now().UTC()
	for _, w := range writes {
		current, ok := staged[w.Table]
		if !ok {
			current = r.tables[w.Table]
		}

		var next []rawdata.Record
		switch w.Mode {
		case rawdata.ModeAppend:
			next = append(append([]rawdata.Record(nil), current...), stamp(w, ingestedAt)...)
		case rawdata.ModeReplaceAll:
			next = stamp(w, ingestedAt)
		case rawdata.ModeReplaceYear:
			next = make([]rawdata.Record, 0, len(current)+len(w.Records))
			for _, record := range current {
				if record.Year != w.Year {
					next = append(next, record)
				}
			}
			next = append(next, stamp(w, ingestedAt)...)
		}
		staged[w.Table] = next
	}

	for table, records := range staged {
		r.tables[table] = records
	}
	return nil
}

func (r *TableRepository) Read(_ context.Context, table string) ([]rawdata.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := r.tables[table]
	out := make([]rawdata.Record, 0, len(records))
	for _, record := range records {
		if !sonic.Valid([]byte(record.PayloadJSON)) {
			return nil, fmt.Errorf("%w: table=%s key=%s", rawdata.ErrCorruptPayload, table, record.Key)
		}
		out = append(out, record)
	}
	return out, nil
}

func (r *TableRepository) MaxYear(_ context.Context, table string) (int, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := r.tables[table]
	if len(records) == 0 {
		return 0, false, nil
	}
	maxYear := records[0].Year
	for _, record := range records[1:] {
		if record.Year > maxYear {
			maxYear = record.Year
		}
	}
	return maxYear, true, nil
}

func stamp(w rawdata.Write, at time.Time) []rawdata.Record {
	out := make([]rawdata.Record, 0, len(w.Records))
	for _, record := range w.Records {
		record.Table = w.Table
		record.IngestedAt = at
		out = append(out, record)
	}
	return out
}
