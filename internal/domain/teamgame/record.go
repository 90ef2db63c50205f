package teamgame

import (
	"sort"
	"strings"
	"time"
)

// Table names for the derived team-centric tables.
const (
	TableTeamGames = "team_games"
	TableCleaned   = "team_games_clean"
)

// Result values.
const (
	ResultWin  = "win"
	ResultLoss = "loss"
	ResultTie  = "tie"
)

// OpponentPrefix marks the opponent-side copy of a team-side metric.
const OpponentPrefix = "opponent_"

// Record is one game seen from one participating team.
//
// Metrics holds every numeric attribute beyond the fixed fields: box score
// stats under their category name, advanced metrics as offense_*/defense_*,
// external signals as team_*, and the opponent-side copy of each under the
// opponent_ prefix. A missing key is a null value.
type Record struct {
	GameID          int64     `json:"game_id"`
	Season          int       `json:"season"`
	Week            int       `json:"week"`
	SeasonType      string    `json:"season_type"`
	StartDate       time.Time `json:"start_date"`
	NeutralSite     bool      `json:"neutral_site"`
	ConferenceGame  bool      `json:"conference_game"`
	VenueID         *int64    `json:"venue_id"`
	Venue           *string   `json:"venue"`
	Attendance      *float64  `json:"attendance"`
	ExcitementIndex *float64  `json:"excitement_index"`

	IsHome         bool      `json:"is_home"`
	TeamID         *int64    `json:"team_id"`
	Team           string    `json:"team"`
	TeamConference *string   `json:"team_conference"`
	TeamDivision   *string   `json:"team_division"`
	TeamPoints     float64   `json:"team_points"`
	TeamLineScores []float64 `json:"team_line_scores,omitempty"`

	OpponentID         *int64    `json:"opponent_id"`
	Opponent           string    `json:"opponent"`
	OpponentConference *string   `json:"opponent_conference"`
	OpponentDivision   *string   `json:"opponent_division"`
	OpponentPoints     float64   `json:"opponent_points"`
	OpponentLineScores []float64 `json:"opponent_line_scores,omitempty"`

	PointDifference float64 `json:"point_difference"`
	Result          string  `json:"result"`
	Win             float64 `json:"win"`

	Metrics map[string]float64 `json:"metrics"`
	Text    map[string]string  `json:"text,omitempty"`
}

// Outcome derives result and win from the final score.
func Outcome(teamPoints, opponentPoints float64) (string, float64) {
	switch {
	case teamPoints > opponentPoints:
		return ResultWin, 1
	case teamPoints < opponentPoints:
		return ResultLoss, 0
	default:
		return ResultTie, 0.5
	}
}

// Metric returns a Metrics value, nil when absent.
func (r *Record) Metric(name string) *float64 {
	v, ok := r.Metrics[name]
	if !ok {
		return nil
	}
	return &v
}

// SetMetric stores v under name, deleting the key when v is nil.
func (r *Record) SetMetric(name string, v *float64) {
	if v == nil {
		delete(r.Metrics, name)
		return
	}
	if r.Metrics == nil {
		r.Metrics = make(map[string]float64)
	}
	r.Metrics[name] = *v
}

func (r *Record) SetText(name string, v *string) {
	if v == nil {
		delete(r.Text, name)
		return
	}
	if r.Text == nil {
		r.Text = make(map[string]string)
	}
	r.Text[name] = *v
}

// Value resolves a numeric column by name: fixed fields first, then Metrics.
func (r *Record) Value(name string) *float64 {
	f := func(v float64) *float64 { return &v }
	b := func(v bool) *float64 {
		if v {
			return f(1)
		}
		return f(0)
	}
	switch name {
	case "game_id":
		return f(float64(r.GameID))
	case "season":
		return f(float64(r.Season))
	case "week":
		return f(float64(r.Week))
	case "neutral_site":
		return b(r.NeutralSite)
	case "conference_game":
		return b(r.ConferenceGame)
	case "is_home":
		return b(r.IsHome)
	case "venue_id":
		if r.VenueID == nil {
			return nil
		}
		return f(float64(*r.VenueID))
	case "attendance":
		return r.Attendance
	case "excitement_index":
		return r.ExcitementIndex
	case "team_id":
		if r.TeamID == nil {
			return nil
		}
		return f(float64(*r.TeamID))
	case "opponent_id":
		if r.OpponentID == nil {
			return nil
		}
		return f(float64(*r.OpponentID))
	case "team_points":
		return f(r.TeamPoints)
	case "opponent_points":
		return f(r.OpponentPoints)
	case "point_difference":
		return f(r.PointDifference)
	case "win":
		return f(r.Win)
	}
	return r.Metric(name)
}

// TextValue resolves a text column by name: fixed fields first, then Text.
func (r *Record) TextValue(name string) *string {
	s := func(v string) *string { return &v }
	switch name {
	case "season_type":
		return s(r.SeasonType)
	case "venue":
		return r.Venue
	case "team":
		return s(r.Team)
	case "team_conference":
		return r.TeamConference
	case "team_division":
		return r.TeamDivision
	case "opponent":
		return s(r.Opponent)
	case "opponent_conference":
		return r.OpponentConference
	case "opponent_division":
		return r.OpponentDivision
	case "result":
		return s(r.Result)
	}
	v, ok := r.Text[name]
	if !ok {
		return nil
	}
	return &v
}

// MetricColumns lists every Metrics key present in at least one record.
func MetricColumns(records []Record) []string {
	seen := make(map[string]struct{})
	for i := range records {
		for name := range records[i].Metrics {
			seen[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// HasColumn reports whether any record carries a value for name.
func HasColumn(records []Record, name string) bool {
	for i := range records {
		if records[i].Value(name) != nil || records[i].TextValue(name) != nil {
			return true
		}
	}
	return false
}

// IsOpponentColumn reports whether name is an opponent-side copy.
func IsOpponentColumn(name string) bool {
	return strings.HasPrefix(name, OpponentPrefix)
}

// SortRecords orders records by start date, game id, home first.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := &records[i], &records[j]
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.Before(b.StartDate)
		}
		if a.GameID != b.GameID {
			return a.GameID < b.GameID
		}
		return a.IsHome && !b.IsHome
	})
}
