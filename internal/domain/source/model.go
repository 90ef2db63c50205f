package source

import "time"

// Game is one record of the /games endpoint.
type Game struct {
	ID                         int64     `json:"id"`
	Season                     int       `json:"season"`
	Week                       int       `json:"week"`
	SeasonType                 string    `json:"seasonType"`
	StartDate                  time.Time `json:"startDate"`
	StartTimeTBD               bool      `json:"startTimeTBD"`
	Completed                  bool      `json:"completed"`
	NeutralSite                bool      `json:"neutralSite"`
	ConferenceGame             bool      `json:"conferenceGame"`
	Attendance                 Number    `json:"attendance"`
	VenueID                    *int64    `json:"venueId"`
	Venue                      *string   `json:"venue"`
	HomeID                     *int64    `json:"homeId"`
	HomeTeam                   string    `json:"homeTeam"`
	HomeConference             *string   `json:"homeConference"`
	HomeClassification         *string   `json:"homeClassification"`
	HomePoints                 Number    `json:"homePoints"`
	HomeLineScores             []Number  `json:"homeLineScores"`
	HomePostgameWinProbability Number    `json:"homePostgameWinProbability"`
	HomePregameElo             Number    `json:"homePregameElo"`
	HomePostgameElo            Number    `json:"homePostgameElo"`
	AwayID                     *int64    `json:"awayId"`
	AwayTeam                   string    `json:"awayTeam"`
	AwayConference             *string   `json:"awayConference"`
	AwayClassification         *string   `json:"awayClassification"`
	AwayPoints                 Number    `json:"awayPoints"`
	AwayLineScores             []Number  `json:"awayLineScores"`
	AwayPostgameWinProbability Number    `json:"awayPostgameWinProbability"`
	AwayPregameElo             Number    `json:"awayPregameElo"`
	AwayPostgameElo            Number    `json:"awayPostgameElo"`
	ExcitementIndex            Number    `json:"excitementIndex"`
	Highlights                 *string   `json:"highlights"`
	Notes                      *string   `json:"notes"`
}

// GameTeamStats is one record of /games/teams: a game with a box score per team.
type GameTeamStats struct {
	ID    int64           `json:"id"`
	Teams []TeamStatBlock `json:"teams"`
}

type TeamStatBlock struct {
	TeamID     *int64     `json:"teamId"`
	Team       string     `json:"team"`
	Conference *string    `json:"conference"`
	HomeAway   string     `json:"homeAway"`
	Points     Number     `json:"points"`
	Stats      []StatPair `json:"stats"`
}

// StatPair keeps category and stat as pointers so missing keys are detectable.
type StatPair struct {
	Category *string `json:"category"`
	Stat     *Number `json:"stat"`
}

// AdvancedGameStat is one record of /stats/game/advanced.
type AdvancedGameStat struct {
	GameID   int64        `json:"gameId"`
	Season   int          `json:"season"`
	Week     int          `json:"week"`
	Team     string       `json:"team"`
	Opponent string       `json:"opponent"`
	Offense  AdvancedSide `json:"offense"`
	Defense  AdvancedSide `json:"defense"`
}

type AdvancedSide struct {
	Plays                 Number        `json:"plays"`
	Drives                Number        `json:"drives"`
	PPA                   Number        `json:"ppa"`
	TotalPPA              Number        `json:"totalPPA"`
	SuccessRate           Number        `json:"successRate"`
	Explosiveness         Number        `json:"explosiveness"`
	PowerSuccess          Number        `json:"powerSuccess"`
	StuffRate             Number        `json:"stuffRate"`
	LineYards             Number        `json:"lineYards"`
	LineYardsTotal        Number        `json:"lineYardsTotal"`
	SecondLevelYards      Number        `json:"secondLevelYards"`
	SecondLevelYardsTotal Number        `json:"secondLevelYardsTotal"`
	OpenFieldYards        Number        `json:"openFieldYards"`
	OpenFieldYardsTotal   Number        `json:"openFieldYardsTotal"`
	StandardDowns         DownSplit     `json:"standardDowns"`
	PassingDowns          DownSplit     `json:"passingDowns"`
	RushingPlays          PlayTypeSplit `json:"rushingPlays"`
	PassingPlays          PlayTypeSplit `json:"passingPlays"`
}

type DownSplit struct {
	PPA           Number `json:"ppa"`
	SuccessRate   Number `json:"successRate"`
	Explosiveness Number `json:"explosiveness"`
}

type PlayTypeSplit struct {
	PPA           Number `json:"ppa"`
	TotalPPA      Number `json:"totalPPA"`
	SuccessRate   Number `json:"successRate"`
	Explosiveness Number `json:"explosiveness"`
}

type TeamTalent struct {
	Year   int    `json:"year"`
	Team   string `json:"team"`
	Talent Number `json:"talent"`
}

type TeamRecruiting struct {
	Year   int    `json:"year"`
	Rank   Number `json:"rank"`
	Team   string `json:"team"`
	Points Number `json:"points"`
}

// Rating covers the Elo, SP+, SRS and FPI endpoints; each fills the field it has.
type Rating struct {
	Year       int     `json:"year"`
	Team       string  `json:"team"`
	Conference *string `json:"conference"`
	Elo        Number  `json:"elo"`
	Rating     Number  `json:"rating"`
	FPI        Number  `json:"fpi"`
	Ranking    Number  `json:"ranking"`
}

// BettingGame is one record of /lines.
type BettingGame struct {
	ID             int64         `json:"id"`
	Season         int           `json:"season"`
	SeasonType     string        `json:"seasonType"`
	Week           int           `json:"week"`
	StartDate      time.Time     `json:"startDate"`
	HomeTeamID     *int64        `json:"homeTeamId"`
	HomeTeam       string        `json:"homeTeam"`
	HomeConference *string       `json:"homeConference"`
	HomeScore      Number        `json:"homeScore"`
	AwayTeamID     *int64        `json:"awayTeamId"`
	AwayTeam       string        `json:"awayTeam"`
	AwayConference *string       `json:"awayConference"`
	AwayScore      Number        `json:"awayScore"`
	Lines          []BettingLine `json:"lines"`
}

type BettingLine struct {
	Provider        string `json:"provider"`
	Spread          Number `json:"spread"`
	FormattedSpread string `json:"formattedSpread"`
	SpreadOpen      Number `json:"spreadOpen"`
	OverUnder       Number `json:"overUnder"`
	OverUnderOpen   Number `json:"overUnderOpen"`
	HomeMoneyline   Number `json:"homeMoneyline"`
	AwayMoneyline   Number `json:"awayMoneyline"`
}

// PregameWinProbability is one record of /metrics/wp/pregame.
type PregameWinProbability struct {
	Season             int    `json:"season"`
	SeasonType         string `json:"seasonType"`
	Week               int    `json:"week"`
	GameID             int64  `json:"gameId"`
	HomeTeam           string `json:"homeTeam"`
	AwayTeam           string `json:"awayTeam"`
	Spread             Number `json:"spread"`
	HomeWinProbability Number `json:"homeWinProbability"`
}
