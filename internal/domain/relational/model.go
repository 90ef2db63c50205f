package relational

import "time"

// Normalized table names.
const (
	TableGames          = "rel_games"
	TableBoxScores      = "rel_box_scores"
	TableAdvanced       = "rel_advanced_stats"
	TableTalent         = "rel_talent"
	TableRecruiting     = "rel_recruiting"
	TableRatings        = "rel_ratings"
	TableBettingLines   = "rel_betting_lines"
	TablePregameWinProb = "rel_pregame_win_probability"
	TableTeamCrosswalk  = "rel_team_crosswalk"
)

// Rating systems carried in the ratings table.
const (
	RatingElo = "elo"
	RatingSP  = "sp"
	RatingSRS = "srs"
	RatingFPI = "fpi"
)

type GameRow struct {
	ID              int64     `json:"id"`
	Season          int       `json:"season"`
	Week            int       `json:"week"`
	SeasonType      string    `json:"season_type"`
	StartDate       time.Time `json:"start_date"`
	Completed       bool      `json:"completed"`
	NeutralSite     bool      `json:"neutral_site"`
	ConferenceGame  bool      `json:"conference_game"`
	Attendance      *float64  `json:"attendance"`
	VenueID         *int64    `json:"venue_id"`
	Venue           *string   `json:"venue"`
	ExcitementIndex *float64  `json:"excitement_index"`
	Home            GameSide  `json:"home"`
	Away            GameSide  `json:"away"`
}

type GameSide struct {
	TeamID                 *int64    `json:"team_id"`
	Team                   string    `json:"team"`
	Conference             *string   `json:"conference"`
	Division               *string   `json:"division"`
	Points                 *float64  `json:"points"`
	LineScores             []float64 `json:"line_scores,omitempty"`
	PostgameWinProbability *float64  `json:"postgame_win_probability"`
	PregameElo             *float64  `json:"pregame_elo"`
	PostgameElo            *float64  `json:"postgame_elo"`
}

// BoxScoreRow is one team's box score for one game.
type BoxScoreRow struct {
	GameID     int64                `json:"game_id"`
	TeamID     *int64               `json:"team_id"`
	Team       string               `json:"team"`
	Conference *string              `json:"conference"`
	HomeAway   string               `json:"home_away"`
	Points     *float64             `json:"points"`
	Stats      KnownStats           `json:"stats"`
	Extra      map[string]StatValue `json:"extra,omitempty"`
}

// StatValue holds a stat category outside the known set.
type StatValue struct {
	Num  *float64 `json:"num,omitempty"`
	Text string   `json:"text,omitempty"`
}

// AdvancedRow is one team's advanced metrics for one game, flattened to
// offense_* and defense_* columns listed by AdvancedColumns.
type AdvancedRow struct {
	GameID     int64              `json:"game_id"`
	Season     int                `json:"season"`
	Week       int                `json:"week"`
	Team       string             `json:"team"`
	TeamID     *int64             `json:"team_id"`
	Opponent   string             `json:"opponent"`
	OpponentID *int64             `json:"opponent_id"`
	Metrics    map[string]float64 `json:"metrics"`
}

type TalentRow struct {
	Season int      `json:"season"`
	Team   string   `json:"team"`
	TeamID *int64   `json:"team_id"`
	Talent *float64 `json:"talent"`
}

type RecruitingRow struct {
	Season int      `json:"season"`
	Team   string   `json:"team"`
	TeamID *int64   `json:"team_id"`
	Rank   *float64 `json:"rank"`
	Points *float64 `json:"points"`
}

type RatingRow struct {
	Season  int      `json:"season"`
	System  string   `json:"system"`
	Team    string   `json:"team"`
	TeamID  *int64   `json:"team_id"`
	Rating  *float64 `json:"rating"`
	Ranking *float64 `json:"ranking"`
}

// LineRow is one provider quote for one game. Provider is nil for the
// placeholder row of a game without quotes.
type LineRow struct {
	GameID        int64    `json:"game_id"`
	Season        int      `json:"season"`
	Week          int      `json:"week"`
	HomeTeamID    *int64   `json:"home_team_id"`
	HomeTeam      string   `json:"home_team"`
	AwayTeamID    *int64   `json:"away_team_id"`
	AwayTeam      string   `json:"away_team"`
	Provider      *string  `json:"provider"`
	Spread        *float64 `json:"spread"`
	SpreadOpen    *float64 `json:"spread_open"`
	OverUnder     *float64 `json:"over_under"`
	OverUnderOpen *float64 `json:"over_under_open"`
	HomeMoneyline *float64 `json:"home_moneyline"`
	AwayMoneyline *float64 `json:"away_moneyline"`
}

type PregameWinProbRow struct {
	GameID             int64    `json:"game_id"`
	Season             int      `json:"season"`
	Week               int      `json:"week"`
	HomeTeam           string   `json:"home_team"`
	AwayTeam           string   `json:"away_team"`
	Spread             *float64 `json:"spread"`
	HomeWinProbability *float64 `json:"home_win_probability"`
}

type CrosswalkRow struct {
	Name   string `json:"name"`
	TeamID int64  `json:"team_id"`
	Source string `json:"source"`
}
