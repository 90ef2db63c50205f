package feature

import (
	"time"

	"github.com/riskibarqy/cfb-predictor/internal/domain/teamgame"
)

// TableFeatures stores the model input artifact.
const TableFeatures = "features"

// Row is one model input row keyed by (season, week, team_id, opponent_id).
// Values omits null numeric columns.
type Row struct {
	Season     int                `json:"season"`
	Week       int                `json:"week"`
	TeamID     *int64             `json:"team_id"`
	OpponentID *int64             `json:"opponent_id"`
	GameID     int64              `json:"game_id"`
	StartDate  time.Time          `json:"start_date"`
	Team       string             `json:"team"`
	Opponent   string             `json:"opponent"`
	Win        float64            `json:"win"`
	Values     map[string]float64 `json:"values"`
	Categories map[string]string  `json:"categories,omitempty"`
}

// Artifact is the selected feature table.
type Artifact struct {
	Numeric     []string
	Categorical []string
	// Missing lists declared columns absent from the computed table.
	Missing []string
	Rows    []Row
}

// Columns returns numeric then categorical column names.
func (a Artifact) Columns() []string {
	out := make([]string, 0, len(a.Numeric)+len(a.Categorical))
	out = append(out, a.Numeric...)
	return append(out, a.Categorical...)
}

type Selector struct {
	names []string
}

func NewSelector(names []string) *Selector {
	return &Selector{names: append([]string(nil), names...)}
}

// Select projects the declared columns, skipping any the table lacks.
func (s *Selector) Select(t *Table) Artifact {
	var artifact Artifact
	seen := make(map[string]struct{}, len(s.names))
	for _, name := range s.names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		switch {
		case s.isNumeric(t, name):
			artifact.Numeric = append(artifact.Numeric, name)
		case isText(t.Records, name):
			artifact.Categorical = append(artifact.Categorical, name)
		default:
			artifact.Missing = append(artifact.Missing, name)
		}
	}

	artifact.Rows = make([]Row, 0, len(t.Records))
	for i := range t.Records {
		rec := &t.Records[i]
		row := Row{
			Season:     rec.Season,
			Week:       rec.Week,
			TeamID:     rec.TeamID,
			OpponentID: rec.OpponentID,
			GameID:     rec.GameID,
			StartDate:  rec.StartDate,
			Team:       rec.Team,
			Opponent:   rec.Opponent,
			Win:        rec.Win,
			Values:     make(map[string]float64, len(artifact.Numeric)),
		}
		for _, name := range artifact.Numeric {
			if v := t.Value(i, name); v != nil {
				row.Values[name] = *v
			}
		}
		for _, name := range artifact.Categorical {
			if v := rec.TextValue(name); v != nil {
				if row.Categories == nil {
					row.Categories = make(map[string]string, len(artifact.Categorical))
				}
				row.Categories[name] = *v
			}
		}
		artifact.Rows = append(artifact.Rows, row)
	}
	return artifact
}

func (s *Selector) isNumeric(t *Table, name string) bool {
	if _, ok := t.Series(name); ok {
		return true
	}
	for i := range t.Records {
		if t.Records[i].Value(name) != nil {
			return true
		}
	}
	return false
}

func isText(records []teamgame.Record, name string) bool {
	for i := range records {
		if records[i].TextValue(name) != nil {
			return true
		}
	}
	return false
}
