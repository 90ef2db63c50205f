package cleaning

import (
	"sort"
	"strconv"

	"github.com/riskibarqy/cfb-predictor/internal/domain/teamgame"
)

// level is one step of a median fallback chain. key returns false when the
// record has no value for the grouping.
type level struct {
	name string
	key  func(*teamgame.Record) (string, bool)
}

type accessor struct {
	get func(*teamgame.Record) *float64
	set func(*teamgame.Record, float64)
}

func metricAccessor(name string) accessor {
	return accessor{
		get: func(r *teamgame.Record) *float64 { return r.Metric(name) },
		set: func(r *teamgame.Record, v float64) { r.SetMetric(name, &v) },
	}
}

// imputeChain fills nulls with the median of the first level whose group
// has observed values. Medians come from the values observed before any
// filling. It returns fills per level name.
func imputeChain(records []teamgame.Record, acc accessor, levels []level) map[string]int {
	groups := make([]map[string][]float64, len(levels))
	for i := range levels {
		groups[i] = make(map[string][]float64)
	}
	for i := range records {
		v := acc.get(&records[i])
		if v == nil {
			continue
		}
		for li, l := range levels {
			if key, ok := l.key(&records[i]); ok {
				groups[li][key] = append(groups[li][key], *v)
			}
		}
	}

	medians := make([]map[string]float64, len(levels))
	for li, byKey := range groups {
		medians[li] = make(map[string]float64, len(byKey))
		for key, values := range byKey {
			medians[li][key] = median(values)
		}
	}

	filled := make(map[string]int)
	for i := range records {
		rec := &records[i]
		if acc.get(rec) != nil {
			continue
		}
		for li, l := range levels {
			key, ok := l.key(rec)
			if !ok {
				continue
			}
			if m, ok := medians[li][key]; ok {
				acc.set(rec, m)
				filled[l.name]++
				break
			}
		}
	}
	return filled
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// teamKey identifies the record's team, preferring the numeric id.
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

func season(r *teamgame.Record) string {
	return strconv.Itoa(r.Season)
}

// sideLevels builds team+season, season, global levels for one side.
func sideLevels(opponent bool) []level {
	side := teamKey
	if opponent {
		side = opponentKey
	}
	return []level{
		{name: "team_season", key: func(r *teamgame.Record) (string, bool) { return side(r) + "|" + season(r), true }},
		{name: "season", key: func(r *teamgame.Record) (string, bool) { return season(r), true }},
		{name: "global", key: func(*teamgame.Record) (string, bool) { return "", true }},
	}
}
