package feature

import (
	"sort"
	"strconv"

	"github.com/riskibarqy/cfb-predictor/internal/domain/teamgame"
)

// Frame is an immutable view of team-game records ordered by team and
// chronology. Strategies read it concurrently.
type Frame struct {
	records []teamgame.Record
	// order[i] is the input position of frame row i.
	order []int
	// teams holds frame row ranges, one per team, chronological.
	teams [][2]int
}

func NewFrame(records []teamgame.Record) *Frame {
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	keys := make([]string, len(records))
	for i := range records {
		keys[i] = teamKey(&records[i])
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := &records[order[a]], &records[order[b]]
		if ka, kb := keys[order[a]], keys[order[b]]; ka != kb {
			return ka < kb
		}
		if !ra.StartDate.Equal(rb.StartDate) {
			return ra.StartDate.Before(rb.StartDate)
		}
		return ra.GameID < rb.GameID
	})

	f := &Frame{records: make([]teamgame.Record, len(records)), order: order}
	for i, src := range order {
		f.records[i] = records[src]
	}
	start := 0
	for i := 1; i <= len(order); i++ {
		if i == len(order) || keys[order[i]] != keys[order[start]] {
			f.teams = append(f.teams, [2]int{start, i})
			start = i
		}
	}
	return f
}

func teamKey(r *teamgame.Record) string {
	if r.TeamID != nil {
		return "id:" + strconv.FormatInt(*r.TeamID, 10)
	}
	return "name:" + r.Team
}

func opponentKey(r *teamgame.Record) string {
	if r.OpponentID != nil {
		return "id:" + strconv.FormatInt(*r.OpponentID, 10)
	}
	return "name:" + r.Opponent
}

func (f *Frame) Len() int {
	return len(f.records)
}

func (f *Frame) Record(i int) *teamgame.Record {
	return &f.records[i]
}

// HasColumn reports whether any row carries a value for name.
func (f *Frame) HasColumn(name string) bool {
	return teamgame.HasColumn(f.records, name)
}

// realign maps a frame-ordered series back to input order.
func (f *Frame) realign(series []*float64) []*float64 {
	out := make([]*float64, len(series))
	for i, src := range f.order {
		out[src] = series[i]
	}
	return out
}

// inputRecords returns the records in input order.
func (f *Frame) inputRecords() []teamgame.Record {
	out := make([]teamgame.Record, len(f.records))
	for i, src := range f.order {
		out[src] = f.records[i]
	}
	return out
}
