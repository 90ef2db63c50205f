package feature

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/cfb-predictor/internal/domain/relational"
	"github.com/riskibarqy/cfb-predictor/internal/domain/teamgame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func TestDefaultSelection_UsesPriorSeasonRatingsOnly(t *testing.T) {
	selection := DefaultSelection(DefaultCatalog())
	for _, system := range []string{relational.RatingElo, relational.RatingFPI, relational.RatingSP, relational.RatingSRS} {
		current := teamgame.RatingMetric(system)
		assert.NotContains(t, selection, current)
		assert.NotContains(t, selection, teamgame.Opponent(current))
		assert.Contains(t, selection, teamgame.PriorRatingMetric(system))
	}
}

func TestDefaultSelection_WeekOneRowIgnoresSameSeasonRatings(t *testing.T) {
	side := func(id int64, name string, points float64) relational.GameSide {
		return relational.GameSide{TeamID: i64(id), Team: name, Points: f64(points)}
	}
	build := func(currentSP float64) Artifact {
		tables := relational.Tables{
			Games: []relational.GameRow{{
				ID:        1,
				Season:    2021,
				Week:      1,
				StartDate: time.Date(2021, 9, 4, 0, 0, 0, 0, time.UTC),
				Completed: true,
				Home:      side(1, "Team A", 31),
				Away:      side(2, "Team C", 10),
			}},
			Ratings: []relational.RatingRow{
				{Season: 2020, System: relational.RatingSP, TeamID: i64(1), Rating: f64(9.5)},
				{Season: 2021, System: relational.RatingSP, TeamID: i64(1), Rating: f64(currentSP)},
				{Season: 2021, System: relational.RatingElo, TeamID: i64(2), Rating: f64(currentSP * 100)},
			},
		}
		records, _, err := teamgame.Transform(tables)
		require.NoError(t, err)

		catalog := DefaultCatalog()
		table, err := NewEngine(1).Compute(context.Background(), records, catalog)
		require.NoError(t, err)
		return NewSelector(DefaultSelection(catalog)).Select(table)
	}

	before := build(20)
	after := build(-5)

	require.Len(t, before.Rows, 2)
	require.Len(t, after.Rows, 2)
	assert.Equal(t, before.Columns(), after.Columns())
	for i := range before.Rows {
		assert.Equal(t, 1, before.Rows[i].Week)
		assert.Equal(t, before.Rows[i].Values, after.Rows[i].Values)
	}
	assert.Equal(t, 9.5, before.Rows[0].Values[teamgame.PriorRatingMetric(relational.RatingSP)])
	assert.Equal(t, 9.5, before.Rows[1].Values["opponent_prior_sp_rating"])
}
