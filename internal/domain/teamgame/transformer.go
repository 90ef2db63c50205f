package teamgame

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/cfb-predictor/internal/domain/relational"
)

type Report struct {
	Games                int
	CompletedGames       int
	SkippedIncomplete    int
	SkippedMissingPoints int
	DuplicatesDropped    int
	ConflictingGameRows  int
	Records              int
	MissingBoxScores     int
	MissingAdvanced      int
	UnjoinableStatRows   int
}

// Transform turns every completed game into a home-perspective and an
// away-perspective record and left-joins the per-team tables onto both.
// The output is a pure function of the input tables.
func Transform(in relational.Tables) ([]Record, Report, error) {
	var report Report

	games, dropped, err := dedupe(in.Games)
	if err != nil {
		return nil, report, err
	}
	report.DuplicatesDropped += dropped
	games, report.ConflictingGameRows = uniqueGames(games)
	report.Games = len(games)

	idx, dropped, err := buildIndex(in)
	if err != nil {
		return nil, report, err
	}
	report.DuplicatesDropped += dropped
	report.UnjoinableStatRows = idx.unjoinable

	records := make([]Record, 0, 2*len(games))
	for _, g := range games {
		if !g.Completed {
			report.SkippedIncomplete++
			continue
		}
		if g.Home.Points == nil || g.Away.Points == nil {
			report.SkippedMissingPoints++
			continue
		}
		report.CompletedGames++
		for _, home := range []bool{true, false} {
			rec := perspective(g, home)
			missingBox, missingAdv := idx.join(&rec, g, home)
			if missingBox {
				report.MissingBoxScores++
			}
			if missingAdv {
				report.MissingAdvanced++
			}
			records = append(records, rec)
		}
	}

	SortRecords(records)
	report.Records = len(records)
	return records, report, nil
}

func perspective(g relational.GameRow, home bool) Record {
	team, opp := g.Home, g.Away
	if !home {
		team, opp = g.Away, g.Home
	}
	rec := Record{
		GameID:          g.ID,
		Season:          g.Season,
		Week:            g.Week,
		SeasonType:      g.SeasonType,
		StartDate:       g.StartDate,
		NeutralSite:     g.NeutralSite,
		ConferenceGame:  g.ConferenceGame,
		VenueID:         g.VenueID,
		Venue:           g.Venue,
		Attendance:      g.Attendance,
		ExcitementIndex: g.ExcitementIndex,
		IsHome:          home,

		TeamID:         team.TeamID,
		Team:           team.Team,
		TeamConference: team.Conference,
		TeamDivision:   team.Division,
		TeamPoints:     *team.Points,
		TeamLineScores: team.LineScores,

		OpponentID:         opp.TeamID,
		Opponent:           opp.Team,
		OpponentConference: opp.Conference,
		OpponentDivision:   opp.Division,
		OpponentPoints:     *opp.Points,
		OpponentLineScores: opp.LineScores,

		Metrics: make(map[string]float64),
	}
	rec.PointDifference = rec.TeamPoints - rec.OpponentPoints
	rec.Result, rec.Win = Outcome(rec.TeamPoints, rec.OpponentPoints)

	setPair(&rec, MetricPregameElo, team.PregameElo, opp.PregameElo)
	setPair(&rec, MetricPostgameElo, team.PostgameElo, opp.PostgameElo)
	setPair(&rec, MetricPostgameWinProbability, team.PostgameWinProbability, opp.PostgameWinProbability)
	return rec
}

func setPair(rec *Record, teamName string, team, opp *float64) {
	rec.SetMetric(teamName, team)
	rec.SetMetric(Opponent(teamName), opp)
}

// dedupe drops exact duplicate rows, keeping the first occurrence.
func dedupe[T any](rows []T) ([]T, int, error) {
	seen := make(map[string]struct{}, len(rows))
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		raw, err := sonic.ConfigStd.Marshal(row)
		if err != nil {
			return nil, 0, fmt.Errorf("dedupe key: %w", err)
		}
		key := string(raw)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}
	return out, len(rows) - len(out), nil
}

// uniqueGames keeps one row per game id. When two distinct rows share an id
// the completed one wins, otherwise the first.
func uniqueGames(games []relational.GameRow) ([]relational.GameRow, int) {
	pos := make(map[int64]int, len(games))
	out := make([]relational.GameRow, 0, len(games))
	conflicts := 0
	for _, g := range games {
		i, ok := pos[g.ID]
		if !ok {
			pos[g.ID] = len(out)
			out = append(out, g)
			continue
		}
		conflicts++
		if !out[i].Completed && g.Completed {
			out[i] = g
		}
	}
	return out, conflicts
}
