package teamgame

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/cfb-predictor/internal/domain/relational"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }
func str(v string) *string   { return &v }

func game(id int64, start time.Time, homeID int64, home string, homePts float64, awayID int64, away string, awayPts float64) relational.GameRow {
	return relational.GameRow{
		ID:        id,
		Season:    start.Year(),
		Week:      1,
		StartDate: start,
		Completed: true,
		Home: relational.GameSide{
			TeamID:     i64(homeID),
			Team:       home,
			Conference: str("SEC"),
			Points:     f64(homePts),
		},
		Away: relational.GameSide{
			TeamID:     i64(awayID),
			Team:       away,
			Conference: str("SEC"),
			Points:     f64(awayPts),
		},
	}
}

func TestTransform_ExampleScenario(t *testing.T) {
	start := time.Date(2021, 9, 4, 18, 0, 0, 0, time.UTC)
	tables := relational.Tables{Games: []relational.GameRow{game(1, start, 10, "Team A", 21, 30, "Team C", 14)}}

	records, report, err := Transform(tables)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2, report.Records)

	home, away := records[0], records[1]
	assert.Equal(t, "Team A", home.Team)
	assert.Equal(t, "Team C", home.Opponent)
	assert.Equal(t, 21.0, home.TeamPoints)
	assert.Equal(t, 14.0, home.OpponentPoints)
	assert.True(t, home.IsHome)
	assert.Equal(t, 1.0, home.Win)
	assert.Equal(t, ResultWin, home.Result)
	assert.Equal(t, 7.0, home.PointDifference)

	assert.Equal(t, "Team C", away.Team)
	assert.Equal(t, "Team A", away.Opponent)
	assert.Equal(t, 14.0, away.TeamPoints)
	assert.Equal(t, 21.0, away.OpponentPoints)
	assert.False(t, away.IsHome)
	assert.Equal(t, 0.0, away.Win)
	assert.Equal(t, ResultLoss, away.Result)
	assert.Equal(t, -7.0, away.PointDifference)
}

func TestTransform_RowDoublingAndSkips(t *testing.T) {
	start := time.Date(2019, 9, 1, 0, 0, 0, 0, time.UTC)
	g1 := game(1, start, 1, "A", 10, 2, "B", 10)
	g2 := game(2, start.Add(24*time.Hour), 3, "C", 3, 4, "D", 7)
	notPlayed := game(3, start.Add(48*time.Hour), 1, "A", 0, 3, "C", 0)
	notPlayed.Completed = false
	noPoints := game(4, start.Add(72*time.Hour), 2, "B", 0, 4, "D", 0)
	noPoints.Away.Points = nil

	records, report, err := Transform(relational.Tables{Games: []relational.GameRow{g1, g2, g1, notPlayed, noPoints}})
	require.NoError(t, err)

	assert.Len(t, records, 4)
	assert.Equal(t, 2, report.CompletedGames)
	assert.Equal(t, 1, report.DuplicatesDropped)
	assert.Equal(t, 1, report.SkippedIncomplete)
	assert.Equal(t, 1, report.SkippedMissingPoints)

	seen := map[[2]int64]bool{}
	for _, r := range records {
		key := [2]int64{r.GameID, *r.TeamID}
		assert.False(t, seen[key], "duplicate (game, team) %v", key)
		seen[key] = true

		result, win := Outcome(r.TeamPoints, r.OpponentPoints)
		assert.Equal(t, result, r.Result)
		assert.Equal(t, win, r.Win)
		assert.Equal(t, r.TeamPoints-r.OpponentPoints, r.PointDifference)
	}
	assert.Equal(t, ResultTie, records[0].Result)
	assert.Equal(t, 0.5, records[0].Win)
}

func TestTransform_JoinsAndSymmetry(t *testing.T) {
	start := time.Date(2021, 10, 2, 0, 0, 0, 0, time.UTC)
	g := game(7, start, 100, "Home U", 28, 200, "Away St", 24)
	g.Home.PregameElo = f64(1600)
	g.Away.PregameElo = f64(1500)

	homeStats := relational.KnownStats{TotalYards: f64(450), ThirdDownEff: str("6-12")}
	awayStats := relational.KnownStats{TotalYards: f64(300)}
	tables := relational.Tables{
		Games: []relational.GameRow{g},
		BoxScores: []relational.BoxScoreRow{
			{GameID: 7, TeamID: i64(100), Team: "Home U", HomeAway: "home", Stats: homeStats,
				Extra: map[string]relational.StatValue{"newStat": {Num: f64(2)}}},
			{GameID: 7, TeamID: i64(200), Team: "Away St", HomeAway: "away", Stats: awayStats},
		},
		Advanced: []relational.AdvancedRow{
			{GameID: 7, TeamID: i64(100), Team: "Home U", Metrics: map[string]float64{"offense_ppa": 0.3}},
		},
		Talent: []relational.TalentRow{{Season: 2021, TeamID: i64(200), Talent: f64(650)}},
		Ratings: []relational.RatingRow{
			{Season: 2021, System: relational.RatingSP, TeamID: i64(100), Rating: f64(12.5)},
		},
		Lines: []relational.LineRow{
			{GameID: 7, Provider: str("a"), Spread: f64(-3), OverUnder: f64(50), HomeMoneyline: f64(-150), AwayMoneyline: f64(130)},
			{GameID: 7, Provider: str("b"), Spread: f64(-4), OverUnder: f64(52)},
		},
		PregameWP: []relational.PregameWinProbRow{{GameID: 7, HomeWinProbability: f64(0.6)}},
	}

	records, report, err := Transform(tables)
	require.NoError(t, err)
	require.Len(t, records, 2)
	home, away := records[0], records[1]

	assert.Equal(t, 450.0, home.Metrics["totalYards"])
	assert.Equal(t, 300.0, home.Metrics["opponent_totalYards"])
	assert.Equal(t, 300.0, away.Metrics["totalYards"])
	assert.Equal(t, 450.0, away.Metrics["opponent_totalYards"])
	assert.Equal(t, "6-12", home.Text["thirdDownEff"])
	assert.Equal(t, "6-12", away.Text["opponent_thirdDownEff"])
	assert.Equal(t, 2.0, home.Metrics["newStat"])

	assert.Equal(t, 0.3, home.Metrics["offense_ppa"])
	assert.Equal(t, 0.3, away.Metrics["opponent_offense_ppa"])
	assert.NotContains(t, away.Metrics, "offense_ppa")
	assert.Equal(t, 1, report.MissingAdvanced)

	assert.Equal(t, 650.0, home.Metrics["opponent_talent"])
	assert.Equal(t, 650.0, away.Metrics[MetricTalent])
	assert.Equal(t, 12.5, home.Metrics[RatingMetric(relational.RatingSP)])
	assert.Equal(t, 12.5, away.Metrics["opponent_sp_rating"])
	assert.Equal(t, 1600.0, home.Metrics[MetricPregameElo])
	assert.Equal(t, 1600.0, away.Metrics["opponent_pregame_elo"])

	assert.Equal(t, -3.5, home.Metrics[MetricAvgSpread])
	assert.Equal(t, 3.5, away.Metrics[MetricAvgSpread])
	assert.Equal(t, 51.0, home.Metrics[MetricAvgOverUnder])
	assert.Equal(t, 51.0, away.Metrics[MetricAvgOverUnder])
	assert.Equal(t, -150.0, home.Metrics[MetricAvgTeamMoneyline])
	assert.Equal(t, -150.0, away.Metrics[MetricAvgOpponentMoneyline])

	assert.InDelta(t, 0.6, home.Metrics[MetricPregameWinProbability], 1e-9)
	assert.InDelta(t, 0.4, away.Metrics[MetricPregameWinProbability], 1e-9)

	assert.Equal(t, home.Team, away.Opponent)
	assert.Equal(t, home.Opponent, away.Team)
	assert.Equal(t, *home.TeamID, *away.OpponentID)
	assert.NotEqual(t, home.IsHome, away.IsHome)
}

func TestTransform_PriorSeasonRatingsIgnoreCurrentSeason(t *testing.T) {
	start := time.Date(2021, 9, 4, 0, 0, 0, 0, time.UTC)
	build := func(current float64) []Record {
		tables := relational.Tables{
			Games: []relational.GameRow{game(1, start, 100, "Home U", 21, 200, "Away St", 14)},
			Ratings: []relational.RatingRow{
				{Season: 2020, System: relational.RatingSP, TeamID: i64(100), Rating: f64(8)},
				{Season: 2021, System: relational.RatingSP, TeamID: i64(100), Rating: f64(current)},
			},
		}
		records, _, err := Transform(tables)
		require.NoError(t, err)
		require.Len(t, records, 2)
		return records
	}

	records := build(12.5)
	home, away := records[0], records[1]
	assert.Equal(t, 8.0, home.Metrics[PriorRatingMetric(relational.RatingSP)])
	assert.Equal(t, 8.0, away.Metrics["opponent_prior_sp_rating"])
	assert.NotContains(t, away.Metrics, PriorRatingMetric(relational.RatingSP))
	assert.Equal(t, 12.5, home.Metrics[RatingMetric(relational.RatingSP)])

	changed := build(-30)
	assert.Equal(t, home.Metrics[PriorRatingMetric(relational.RatingSP)], changed[0].Metrics[PriorRatingMetric(relational.RatingSP)])
	assert.Equal(t, away.Metrics["opponent_prior_sp_rating"], changed[1].Metrics["opponent_prior_sp_rating"])
}

func TestTransform_IsIdempotent(t *testing.T) {
	base := time.Date(2020, 9, 12, 0, 0, 0, 0, time.UTC)
	tables := relational.Tables{
		Games: []relational.GameRow{
			game(3, base.Add(48*time.Hour), 1, "A", 1, 2, "B", 2),
			game(1, base, 3, "C", 3, 4, "D", 4),
			game(2, base, 1, "A", 5, 4, "D", 6),
		},
		Lines: []relational.LineRow{{GameID: 1, Provider: str("x"), Spread: f64(1)}},
	}

	first, _, err := Transform(tables)
	require.NoError(t, err)
	second, _, err := Transform(tables)
	require.NoError(t, err)

	a, err := sonic.ConfigStd.Marshal(first)
	require.NoError(t, err)
	b, err := sonic.ConfigStd.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	assert.Equal(t, int64(1), first[0].GameID)
	assert.True(t, first[0].IsHome)
	assert.Equal(t, int64(2), first[2].GameID)
	assert.Equal(t, int64(3), first[4].GameID)
}

func TestTransform_PrefersCompletedRowForConflictingGameIDs(t *testing.T) {
	start := time.Date(2022, 9, 3, 0, 0, 0, 0, time.UTC)
	stale := game(9, start, 1, "A", 0, 2, "B", 0)
	stale.Completed = false
	stale.Home.Points, stale.Away.Points = nil, nil
	final := game(9, start, 1, "A", 24, 2, "B", 17)

	records, report, err := Transform(relational.Tables{Games: []relational.GameRow{stale, final}})
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 1, report.ConflictingGameRows)
}

func TestOpponentColumnName(t *testing.T) {
	assert.Equal(t, "opponent_talent", Opponent(MetricTalent))
	assert.Equal(t, "opponent_offense_ppa", Opponent("offense_ppa"))
	assert.Equal(t, "opponent_elo_rating", Opponent(RatingMetric(relational.RatingElo)))
}
