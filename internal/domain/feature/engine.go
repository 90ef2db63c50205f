package feature

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/cfb-predictor/internal/domain/teamgame"
)

// Skipped records a declared feature that could not be computed.
type Skipped struct {
	Name   string
	Reason string
}

// Table holds records with their engineered columns, in input order.
type Table struct {
	Records []teamgame.Record
	Columns []string
	Skipped []Skipped
	values  map[string][]*float64
}

// Value resolves an engineered column first, then a record column.
func (t *Table) Value(row int, name string) *float64 {
	if series, ok := t.values[name]; ok {
		return series[row]
	}
	return t.Records[row].Value(name)
}

// Has reports whether name is an engineered column or present in any record.
func (t *Table) Has(name string) bool {
	if _, ok := t.values[name]; ok {
		return true
	}
	return teamgame.HasColumn(t.Records, name)
}

func (t *Table) Series(name string) ([]*float64, bool) {
	series, ok := t.values[name]
	return series, ok
}

type Engine struct {
	workers int
}

func NewEngine(workers int) *Engine {
	if workers <= 0 {
		workers = 1
	}
	return &Engine{workers: workers}
}

// Compute evaluates every spec over records. Specs are evaluated in
// parallel on a read-only frame; each writes only its own column. A spec
// whose base column is absent from every record is skipped, not failed.
func (e *Engine) Compute(ctx context.Context, records []teamgame.Record, specs []Spec) (*Table, error) {
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate feature name %s", spec.Name)
		}
		seen[spec.Name] = struct{}{}
	}

	frame := NewFrame(records)
	table := &Table{
		Records: frame.inputRecords(),
		values:  make(map[string][]*float64, len(specs)),
	}

	runnable := make([]Spec, 0, len(specs))
	for _, spec := range specs {
		if spec.Kind.needsBase() && !frame.HasColumn(spec.Base) {
			table.Skipped = append(table.Skipped, Skipped{Name: spec.Name, Reason: "missing base column " + spec.Base})
			continue
		}
		runnable = append(runnable, spec)
	}

	results := make([][]*float64, len(runnable))

	pool, err := ants.NewPool(e.workers)
	if err != nil {
		return nil, fmt.Errorf("create feature worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for i, spec := range runnable {
		i, spec := i, spec
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			if ctx.Err() != nil {
				return
			}
			strategy, err := strategyFor(spec.Kind)
			if err != nil {
				return
			}
			results[i] = frame.realign(strategy.Compute(frame, spec))
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit feature %s to worker pool: %w", spec.Name, err)
		}
	}
	workers.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, spec := range runnable {
		table.values[spec.Name] = results[i]
		table.Columns = append(table.Columns, spec.Name)
	}
	return table, nil
}
