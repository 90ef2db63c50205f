package relational

import (
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/cfb-predictor/internal/domain/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }

func numPtr(v source.Number) *source.Number { return &v }

func sampleGame() source.Game {
	return source.Game{
		ID:         401,
		Season:     2021,
		Week:       3,
		SeasonType: "regular",
		StartDate:  time.Date(2021, 9, 18, 19, 0, 0, 0, time.UTC),
		Completed:  true,
		HomeID:     int64Ptr(333),
		HomeTeam:   "Alabama",
		AwayID:     int64Ptr(2229),
		AwayTeam:   "Florida",
		HomePoints: source.Num(31),
		AwayPoints: source.Num(29),
	}
}

func TestNormalize_BoxScorePivotAndExtras(t *testing.T) {
	snap := Snapshot{
		Games: []source.Game{sampleGame()},
		TeamGameStats: []source.GameTeamStats{{
			ID: 401,
			Teams: []source.TeamStatBlock{{
				TeamID:   int64Ptr(333),
				Team:     "Alabama",
				HomeAway: "home",
				Points:   source.Num(31),
				Stats: []source.StatPair{
					{Category: strPtr("totalYards"), Stat: numPtr(source.Num(412))},
					{Category: strPtr("thirdDownEff"), Stat: numPtr(source.ParseNumber("5-12"))},
					{Category: strPtr("possessionTime"), Stat: numPtr(source.ParseNumber("31:05"))},
					{Category: strPtr("rushingYards"), Stat: numPtr(source.ParseNumber("n/a"))},
					{Category: strPtr("brandNewStat"), Stat: numPtr(source.Num(7))},
					{Category: nil, Stat: numPtr(source.Num(1))},
					{Category: strPtr("sacks"), Stat: nil},
				},
			}},
		}},
	}

	tables, report := Normalize(snap, nil)
	require.Len(t, tables.BoxScores, 1)
	row := tables.BoxScores[0]

	require.NotNil(t, row.Stats.TotalYards)
	assert.Equal(t, 412.0, *row.Stats.TotalYards)
	require.NotNil(t, row.Stats.ThirdDownEff)
	assert.Equal(t, "5-12", *row.Stats.ThirdDownEff)
	assert.Equal(t, "31:05", *row.Stats.PossessionTime)
	assert.Nil(t, row.Stats.RushingYards)
	assert.Nil(t, row.Stats.Sacks)

	require.Contains(t, row.Extra, "brandNewStat")
	assert.Equal(t, 7.0, *row.Extra["brandNewStat"].Num)

	assert.Equal(t, 2, report.MalformedStats)
	assert.Equal(t, 1, report.UncoercedStats)
	assert.Equal(t, []string{"brandNewStat"}, report.ExtraCategories)
}

func TestNormalize_ResolvesNameOnlyTablesThroughCrosswalk(t *testing.T) {
	snap := Snapshot{
		Games:  []source.Game{sampleGame()},
		Talent: []source.TeamTalent{{Year: 2021, Team: "alabama ", Talent: source.Num(1000.5)}},
		Ratings: map[string][]source.Rating{
			RatingElo: {{Year: 2021, Team: "Florida", Elo: source.Num(1720)}},
			RatingSP:  {{Year: 2021, Team: "Ole Miss", Rating: source.Num(18.2)}},
		},
	}
	aliases := []Alias{{Name: "Ole Miss", TeamID: 145}}

	tables, report := Normalize(snap, aliases)

	require.Len(t, tables.Talent, 1)
	require.NotNil(t, tables.Talent[0].TeamID)
	assert.Equal(t, int64(333), *tables.Talent[0].TeamID)

	require.Len(t, tables.Ratings, 2)
	assert.Equal(t, RatingElo, tables.Ratings[0].System)
	assert.Equal(t, 1720.0, *tables.Ratings[0].Rating)
	assert.Equal(t, int64(2229), *tables.Ratings[0].TeamID)
	assert.Equal(t, int64(145), *tables.Ratings[1].TeamID)

	assert.Empty(t, report.UnresolvedTeams)
	assert.Len(t, tables.Crosswalk, 3)
}

func TestNormalize_ReportsUnresolvedTeams(t *testing.T) {
	snap := Snapshot{
		Recruiting: []source.TeamRecruiting{{Year: 2020, Team: "Nowhere State", Rank: source.Num(90)}},
	}

	tables, report := Normalize(snap, nil)
	require.Len(t, tables.Recruiting, 1)
	assert.Nil(t, tables.Recruiting[0].TeamID)
	assert.Equal(t, []string{"Nowhere State"}, report.UnresolvedTeams)
}

func TestNormalize_LinesKeepGamesWithoutQuotes(t *testing.T) {
	snap := Snapshot{
		Lines: []source.BettingGame{
			{
				ID: 1, Season: 2021, HomeTeamID: int64Ptr(1), HomeTeam: "A", AwayTeamID: int64Ptr(2), AwayTeam: "B",
				Lines: []source.BettingLine{
					{Provider: "consensus", Spread: source.Num(-3.5), OverUnder: source.Num(51)},
					{Provider: "Bovada", Spread: source.Num(-4)},
				},
			},
			{ID: 2, Season: 2021, HomeTeamID: int64Ptr(3), HomeTeam: "C", AwayTeamID: int64Ptr(4), AwayTeam: "D"},
		},
	}

	tables, report := Normalize(snap, nil)
	require.Len(t, tables.Lines, 3)
	assert.Equal(t, "consensus", *tables.Lines[0].Provider)
	assert.Equal(t, -3.5, *tables.Lines[0].Spread)
	assert.Nil(t, tables.Lines[2].Provider)
	assert.Nil(t, tables.Lines[2].Spread)
	assert.Equal(t, int64(2), tables.Lines[2].GameID)
	assert.Equal(t, 1, report.GamesWithoutLines)
}

func TestNormalize_FlattensAdvancedStats(t *testing.T) {
	var stat source.AdvancedGameStat
	payload := `{"gameId":401,"season":2021,"week":3,"team":"Alabama","opponent":"Florida",
		"offense":{"ppa":0.31,"passingDowns":{"successRate":0.4},"rushingPlays":{"totalPPA":"12.5"}},
		"defense":{"stuffRate":null,"explosiveness":1.2}}`
	require.NoError(t, sonic.UnmarshalString(payload, &stat))

	tables, _ := Normalize(Snapshot{Games: []source.Game{sampleGame()}, Advanced: []source.AdvancedGameStat{stat}}, nil)
	require.Len(t, tables.Advanced, 1)
	row := tables.Advanced[0]

	assert.Equal(t, 0.31, row.Metrics["offense_ppa"])
	assert.Equal(t, 0.4, row.Metrics["offense_passing_downs_success_rate"])
	assert.Equal(t, 12.5, row.Metrics["offense_rushing_plays_total_ppa"])
	assert.Equal(t, 1.2, row.Metrics["defense_explosiveness"])
	assert.NotContains(t, row.Metrics, "defense_stuff_rate")
	assert.Equal(t, int64(333), *row.TeamID)
	assert.Equal(t, int64(2229), *row.OpponentID)

	for name := range row.Metrics {
		assert.Contains(t, AdvancedColumns(), name)
	}
}

func TestCrosswalk_AliasWinsOverGameName(t *testing.T) {
	c := NewCrosswalk()
	c.Add("Miami", 2390, CrosswalkFromGames)
	c.Add("Miami", 193, CrosswalkFromGames)
	c.Add("miami", 2390, CrosswalkFromAlias)
	c.Add("Miami", 193, CrosswalkFromAlias)

	id, ok := c.Resolve("  MIAMI ")
	require.True(t, ok)
	assert.Equal(t, int64(193), id)
	assert.Equal(t, 1, c.Conflicts())
}

func TestReadAliases(t *testing.T) {
	aliases, err := ReadAliases(strings.NewReader("name,team_id\nOle Miss,145\nUConn,41\n"))
	require.NoError(t, err)
	assert.Equal(t, []Alias{{Name: "Ole Miss", TeamID: 145}, {Name: "UConn", TeamID: 41}}, aliases)
}

func TestKnownStats_Registry(t *testing.T) {
	var k KnownStats
	v := 3.0
	require.True(t, k.SetNumeric("turnovers", &v))
	got, ok := k.Numeric("turnovers")
	require.True(t, ok)
	assert.Equal(t, 3.0, *got)

	assert.False(t, k.SetNumeric("thirdDownEff", &v))
	assert.True(t, IsKnownStat("thirdDownEff"))
	assert.False(t, IsKnownStat("brandNewStat"))
	assert.Contains(t, NumericStatNames(), "totalFumbles")
	assert.Contains(t, TextStatNames(), "totalPenaltiesYards")
}
