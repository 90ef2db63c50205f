package teamgame

// Team-side metric names. The opponent copy of each is Opponent(name).
const (
	MetricTalent                 = "team_talent"
	MetricRecruitingRank         = "team_recruiting_rank"
	MetricRecruitingPoints       = "team_recruiting_points"
	MetricPregameElo             = "team_pregame_elo"
	MetricPostgameElo            = "team_postgame_elo"
	MetricPostgameWinProbability = "team_postgame_win_probability"
	MetricPregameWinProbability  = "team_pregame_win_probability"
)

// Betting aggregates, already in the team's perspective.
const (
	MetricAvgSpread            = "avg_line_spread"
	MetricAvgSpreadOpen        = "avg_line_spread_open"
	MetricAvgOverUnder         = "avg_over_under"
	MetricAvgOverUnderOpen     = "avg_over_under_open"
	MetricAvgTeamMoneyline     = "avg_team_moneyline"
	MetricAvgOpponentMoneyline = "avg_opponent_moneyline"
)

// RatingMetric names the team-side column of a rating system.
func RatingMetric(system string) string {
	return "team_" + system + "_rating"
}

// PriorRatingMetric names the team-side column holding the previous
// season's final rating. Same-season ratings are end-of-season values and
// already reflect the game itself.
func PriorRatingMetric(system string) string {
	return "team_prior_" + system + "_rating"
}

// Opponent returns the opponent-side column for a team-side name. A team_
// prefix is swapped, any other name is prefixed.
func Opponent(name string) string {
	const teamPrefix = "team_"
	if len(name) > len(teamPrefix) && name[:len(teamPrefix)] == teamPrefix {
		return OpponentPrefix + name[len(teamPrefix):]
	}
	return OpponentPrefix + name
}
