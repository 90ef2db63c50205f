package feature

import "strconv"

// postGameStats are only known after kickoff, so model inputs use them
// through prior-game aggregates.
var postGameStats = []string{
	"totalYards",
	"netPassingYards",
	"rushingYards",
	"yardsPerPass",
	"yardsPerRushAttempt",
	"firstDowns",
	"turnovers",
	"thirdDownPct",
	"fourthDownPct",
	"completionPct",
	"penaltyYards",
	"possessionSeconds",
	"sacks",
	"tacklesForLoss",
	"opponent_totalYards",
	"opponent_turnovers",
	"offense_ppa",
	"offense_success_rate",
	"offense_explosiveness",
	"offense_stuff_rate",
	"offense_line_yards",
	"offense_passing_downs_success_rate",
	"defense_ppa",
	"defense_success_rate",
	"defense_explosiveness",
	"defense_stuff_rate",
	"defense_line_yards",
	"defense_passing_downs_success_rate",
}

// PostGameStats returns the base statistics the default catalog averages.
func PostGameStats() []string {
	return append([]string(nil), postGameStats...)
}

// DefaultCatalog declares the engineered columns computed on every run.
func DefaultCatalog() []Spec {
	var specs []Spec
	for _, base := range postGameStats {
		specs = append(specs, Rolling(base, 3), Rolling(base, 10), Weighted(base))
	}
	for _, n := range []int{1, 3, 5, 10} {
		specs = append(specs, WinRateLast(n))
	}
	for _, n := range []int{1, 3} {
		specs = append(specs,
			Spec{Name: "points_scored_last_" + strconv.Itoa(n), Kind: KindRollingMean, Base: "team_points", Window: n},
			Spec{Name: "points_allowed_last_" + strconv.Itoa(n), Kind: KindRollingMean, Base: "opponent_points", Window: n},
		)
	}
	specs = append(specs,
		Spec{Name: "points_scored_season_to_date", Kind: KindSeasonToDateMean, Base: "team_points"},
		Spec{Name: "points_allowed_season_to_date", Kind: KindSeasonToDateMean, Base: "opponent_points"},
		Spec{Name: "head_to_head_win_rate", Kind: KindHeadToHeadWinRate},
		Spec{Name: "season_point_diff_sum", Kind: KindSeasonPointDiffSum},
		Spec{Name: "season_point_diff_mean", Kind: KindSeasonPointDiffMean},
		Spec{Name: "all_time_win_rate", Kind: KindAllTimeWinRate},
		Spec{Name: "season_win_rate", Kind: KindSeasonWinRate},
		Spec{Name: "games_played_in_season", Kind: KindGamesPlayedInSeason},
	)
	return specs
}

// Pregame columns known before kickoff; selected as-is. Ratings come from
// the previous season since a season's ratings are published at its end.
var pregameColumns = []string{
	"is_home",
	"neutral_site",
	"conference_game",
	"team_talent",
	"opponent_talent",
	"team_recruiting_points",
	"opponent_recruiting_points",
	"team_pregame_elo",
	"opponent_pregame_elo",
	"team_prior_elo_rating",
	"opponent_prior_elo_rating",
	"team_prior_fpi_rating",
	"opponent_prior_fpi_rating",
	"team_prior_sp_rating",
	"opponent_prior_sp_rating",
	"team_prior_srs_rating",
	"opponent_prior_srs_rating",
	"team_pregame_win_probability",
	"avg_line_spread",
	"avg_over_under",
	"avg_team_moneyline",
	"avg_opponent_moneyline",
}

var categoricalColumns = []string{
	"season_type",
	"team_conference",
	"opponent_conference",
	"team_division",
	"opponent_division",
}

// DefaultSelection lists the columns of the model input table: pregame
// columns, categorical columns, then every engineered column of catalog.
func DefaultSelection(catalog []Spec) []string {
	out := make([]string, 0, len(pregameColumns)+len(categoricalColumns)+len(catalog))
	out = append(out, pregameColumns...)
	out = append(out, categoricalColumns...)
	for _, s := range catalog {
		out = append(out, s.Name)
	}
	return out
}
