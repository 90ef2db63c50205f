package feature

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/riskibarqy/cfb-predictor/internal/domain/teamgame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i64(v int64) *int64 { return &v }

var epoch = time.Date(2019, 8, 31, 0, 0, 0, 0, time.UTC)

// teamGame builds one team's row; day orders games chronologically.
func teamGame(gameID int64, team, opponent int64, day, season int, win float64, yards float64) teamgame.Record {
	points, oppPoints := 20.0, 10.0
	switch win {
	case 0:
		points, oppPoints = 10, 20
	case 0.5:
		points, oppPoints = 14, 14
	}
	result, _ := teamgame.Outcome(points, oppPoints)
	return teamgame.Record{
		GameID:          gameID,
		Season:          season,
		StartDate:       epoch.AddDate(season-2019, 0, day*7),
		TeamID:          i64(team),
		OpponentID:      i64(opponent),
		TeamPoints:      points,
		OpponentPoints:  oppPoints,
		PointDifference: points - oppPoints,
		Result:          result,
		Win:             win,
		Metrics:         map[string]float64{"totalYards": yards},
	}
}

func rowFor(t *testing.T, table *Table, gameID, team int64) int {
	t.Helper()
	for i, r := range table.Records {
		if r.GameID == gameID && *r.TeamID == team {
			return i
		}
	}
	t.Fatalf("row game=%d team=%d not found", gameID, team)
	return -1
}

func TestEngine_WinRateLastThreeNeedsFullWindow(t *testing.T) {
	records := []teamgame.Record{
		teamGame(1, 1, 2, 0, 2019, 1, 300),
		teamGame(2, 1, 3, 1, 2019, 0, 300),
		teamGame(3, 1, 4, 2, 2019, 1, 300),
		teamGame(4, 1, 5, 3, 2019, 0, 300),
	}

	table, err := NewEngine(2).Compute(context.Background(), records, []Spec{WinRateLast(3)})
	require.NoError(t, err)

	series, ok := table.Series("win_rate_last_3")
	require.True(t, ok)
	assert.Nil(t, series[rowFor(t, table, 1, 1)])
	assert.Nil(t, series[rowFor(t, table, 2, 1)])
	assert.Nil(t, series[rowFor(t, table, 3, 1)])
	require.NotNil(t, series[rowFor(t, table, 4, 1)])
	assert.InDelta(t, 2.0/3.0, *series[rowFor(t, table, 4, 1)], 1e-9)
}

func TestEngine_FirstObservationDefaults(t *testing.T) {
	records := []teamgame.Record{teamGame(1, 1, 2, 0, 2019, 1, 300)}

	table, err := NewEngine(4).Compute(context.Background(), records, DefaultCatalog())
	require.NoError(t, err)

	for _, name := range table.Columns {
		v := table.Value(0, name)
		switch name {
		case "head_to_head_win_rate", "all_time_win_rate", "season_win_rate":
			require.NotNil(t, v, name)
			assert.Equal(t, 0.5, *v, name)
		case "games_played_in_season":
			assert.Equal(t, 0.0, *v)
		default:
			assert.Nil(t, v, name)
		}
	}
}

func TestEngine_RollingWeightedAndSeasonMeans(t *testing.T) {
	records := []teamgame.Record{
		teamGame(1, 1, 2, 0, 2019, 1, 100),
		teamGame(2, 1, 3, 1, 2019, 1, 200),
		teamGame(3, 1, 4, 2, 2019, 0, 400),
		teamGame(4, 1, 5, 0, 2020, 1, 800),
		teamGame(5, 1, 6, 1, 2020, 1, 50),
	}
	specs := []Spec{
		Rolling("totalYards", 2),
		{Name: "yards_last_3_min1", Kind: KindRollingMean, Base: "totalYards", Window: 3, MinPeriods: 1},
		Weighted("totalYards"),
		SeasonToDate("totalYards"),
		{Name: "pd_sum", Kind: KindSeasonPointDiffSum},
		{Name: "pd_mean", Kind: KindSeasonPointDiffMean},
		{Name: "season_wr", Kind: KindSeasonWinRate},
		{Name: "games", Kind: KindGamesPlayedInSeason},
	}

	table, err := NewEngine(3).Compute(context.Background(), records, specs)
	require.NoError(t, err)
	val := func(name string, game int64) *float64 { return table.Value(rowFor(t, table, game, 1), name) }

	assert.Nil(t, val("totalYards_last_2", 2))
	assert.Equal(t, 150.0, *val("totalYards_last_2", 3))
	assert.Equal(t, 300.0, *val("totalYards_last_2", 4))

	assert.Equal(t, 100.0, *val("yards_last_3_min1", 2))

	// weights 1,2,3 over 100,200,400
	assert.InDelta(t, (100+400+1200)/6.0, *val("totalYards_weighted", 4), 1e-9)

	assert.Nil(t, val("totalYards_season_to_date", 4), "new season starts empty")
	assert.Equal(t, 800.0, *val("totalYards_season_to_date", 5))
	assert.Equal(t, 150.0, *val("totalYards_season_to_date", 3))

	assert.Nil(t, val("pd_sum", 1))
	assert.Equal(t, 20.0, *val("pd_sum", 3))
	assert.Equal(t, 10.0, *val("pd_mean", 3))
	assert.Nil(t, val("pd_sum", 4))

	assert.Equal(t, 0.5, *val("season_wr", 4))
	assert.Equal(t, 1.0, *val("season_wr", 3))
	assert.Equal(t, 2.0, *val("games", 3))
	assert.Equal(t, 1.0, *val("games", 5))
}

func TestEngine_HeadToHeadUsesOnlyEarlierMeetings(t *testing.T) {
	records := []teamgame.Record{
		teamGame(1, 1, 2, 0, 2019, 1, 0),
		teamGame(1, 2, 1, 0, 2019, 0, 0),
		teamGame(2, 1, 3, 1, 2019, 0, 0),
		teamGame(3, 1, 2, 2, 2019, 0, 0),
		teamGame(3, 2, 1, 2, 2019, 1, 0),
		teamGame(4, 1, 2, 3, 2019, 1, 0),
	}

	table, err := NewEngine(1).Compute(context.Background(), records, []Spec{{Name: "h2h", Kind: KindHeadToHeadWinRate}})
	require.NoError(t, err)
	val := func(game, team int64) float64 { return *table.Value(rowFor(t, table, game, team), "h2h") }

	assert.Equal(t, 0.5, val(1, 1))
	assert.Equal(t, 0.5, val(1, 2))
	assert.Equal(t, 0.5, val(2, 1), "first meeting with team 3")
	assert.Equal(t, 1.0, val(3, 1))
	assert.Equal(t, 0.0, val(3, 2))
	assert.Equal(t, 0.5, val(4, 1))
}

func TestEngine_NoFutureInformation(t *testing.T) {
	var records []teamgame.Record
	for day := 0; day < 8; day++ {
		records = append(records, teamGame(int64(day+1), 1, int64(100+day), day, 2019, float64(day%2), float64(100+10*day)))
	}
	catalog := DefaultCatalog()

	before, err := NewEngine(4).Compute(context.Background(), records, catalog)
	require.NoError(t, err)

	mutated := make([]teamgame.Record, len(records))
	copy(mutated, records)
	mutated[5] = teamGame(6, 1, 105, 5, 2019, 1-mutated[5].Win, 9999)

	after, err := NewEngine(4).Compute(context.Background(), mutated, catalog)
	require.NoError(t, err)

	for row := 0; row <= 5; row++ {
		for _, name := range before.Columns {
			assert.Equal(t, before.Value(row, name), after.Value(row, name), "game %d feature %s", row+1, name)
		}
	}
	assert.NotEqual(t, before.Value(6, "totalYards_last_3"), after.Value(6, "totalYards_last_3"))
}

func TestEngine_InputOrderDoesNotMatter(t *testing.T) {
	var records []teamgame.Record
	for day := 0; day < 6; day++ {
		records = append(records,
			teamGame(int64(2*day+1), 1, 2, day, 2019, float64(day%2), float64(200+day)),
			teamGame(int64(2*day+1), 2, 1, day, 2019, float64(1-day%2), float64(300-day)),
		)
	}
	catalog := DefaultCatalog()
	ordered, err := NewEngine(2).Compute(context.Background(), records, catalog)
	require.NoError(t, err)

	shuffled := make([]teamgame.Record, len(records))
	copy(shuffled, records)
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	reordered, err := NewEngine(2).Compute(context.Background(), shuffled, catalog)
	require.NoError(t, err)

	for i, r := range ordered.Records {
		j := rowFor(t, reordered, r.GameID, *r.TeamID)
		for _, name := range ordered.Columns {
			assert.Equal(t, ordered.Value(i, name), reordered.Value(j, name), name)
		}
	}
}

func TestEngine_SkipsFeaturesWithMissingBase(t *testing.T) {
	records := []teamgame.Record{teamGame(1, 1, 2, 0, 2019, 1, 300)}
	specs := []Spec{Rolling("totalYards", 3), Rolling("offense_ppa", 3)}

	table, err := NewEngine(1).Compute(context.Background(), records, specs)
	require.NoError(t, err)
	assert.Equal(t, []string{"totalYards_last_3"}, table.Columns)
	require.Len(t, table.Skipped, 1)
	assert.Equal(t, "offense_ppa_last_3", table.Skipped[0].Name)
}

func TestEngine_RejectsInvalidSpecs(t *testing.T) {
	_, err := NewEngine(1).Compute(context.Background(), nil, []Spec{{Name: "x", Kind: Kind(99)}})
	assert.Error(t, err)

	_, err = NewEngine(1).Compute(context.Background(), nil, []Spec{WinRateLast(3), WinRateLast(3)})
	assert.Error(t, err)

	_, err = NewEngine(1).Compute(context.Background(), nil, []Spec{{Name: "r", Kind: KindRollingMean, Base: "totalYards"}})
	assert.Error(t, err)
}

func TestEngine_HonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine(1).Compute(ctx, []teamgame.Record{teamGame(1, 1, 2, 0, 2019, 1, 1)}, []Spec{WinRateLast(1)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSelector_ProjectsDeclaredColumnsAndSkipsMissing(t *testing.T) {
	conf := "SEC"
	rec := teamGame(1, 1, 2, 0, 2019, 1, 300)
	rec.TeamConference = &conf
	rec.Week = 1
	records := []teamgame.Record{rec, teamGame(2, 1, 3, 1, 2019, 0, 310)}

	table, err := NewEngine(1).Compute(context.Background(), records, []Spec{WinRateLast(1)})
	require.NoError(t, err)

	artifact := NewSelector([]string{"win_rate_last_1", "is_home", "team_conference", "not_a_column", "win_rate_last_1"}).Select(table)

	assert.Equal(t, []string{"win_rate_last_1", "is_home"}, artifact.Numeric)
	assert.Equal(t, []string{"team_conference"}, artifact.Categorical)
	assert.Equal(t, []string{"not_a_column"}, artifact.Missing)
	require.Len(t, artifact.Rows, 2)

	first := artifact.Rows[0]
	assert.Equal(t, 2019, first.Season)
	assert.Equal(t, int64(1), *first.TeamID)
	assert.Equal(t, int64(2), *first.OpponentID)
	assert.NotContains(t, first.Values, "win_rate_last_1")
	assert.Equal(t, "SEC", first.Categories["team_conference"])
	assert.Equal(t, 1.0, artifact.Rows[1].Values["win_rate_last_1"])
}
