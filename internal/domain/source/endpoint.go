package source

// Raw table names written by the collector.
const (
	TableGames                 = "games"
	TableTeamGameStats         = "team_game_stats"
	TableAdvancedTeamGameStats = "advanced_team_game_stats"
	TableTalent                = "team_talent"
	TableRecruiting            = "team_recruiting"
	TableEloRatings            = "ratings_elo"
	TableSPRatings             = "ratings_sp"
	TableSRSRatings            = "ratings_srs"
	TableFPIRatings            = "ratings_fpi"
	TableBettingLines          = "betting_lines"
	TablePregameWinProbability = "pregame_win_probability"
)

// Scope is the unit of work an endpoint is fetched by.
type Scope int

const (
	ScopeYear Scope = iota
	ScopeYearConference
	ScopeYearTeam
)

func (s Scope) String() string {
	switch s {
	case ScopeYear:
		return "year"
	case ScopeYearConference:
		return "year_conference"
	case ScopeYearTeam:
		return "year_team"
	default:
		return "unknown"
	}
}

// Endpoint describes one upstream collection and the raw table it lands in.
type Endpoint struct {
	Table string
	Path  string
	Scope Scope
	// BySeasonType fans each unit out over the configured season types.
	BySeasonType bool
	// CoverageStart is the first season the provider publishes; zero means always.
	CoverageStart int
	Params        map[string]string
}

// Covers reports whether the provider has data for year.
func (e Endpoint) Covers(year int) bool {
	return e.CoverageStart == 0 || year >= e.CoverageStart
}

// DefaultEndpoints lists every collected endpoint in dependency order:
// games come first because team-scoped endpoints enumerate teams from them.
func DefaultEndpoints() []Endpoint {
	return []Endpoint{
		{Table: TableGames, Path: "/games", Scope: ScopeYearConference, BySeasonType: true},
		{Table: TableTeamGameStats, Path: "/games/teams", Scope: ScopeYearConference, BySeasonType: true},
		{
			Table:        TableAdvancedTeamGameStats,
			Path:         "/stats/game/advanced",
			Scope:        ScopeYearTeam,
			BySeasonType: true,
			Params:       map[string]string{"excludeGarbageTime": "true"},
		},
		{Table: TableTalent, Path: "/talent", Scope: ScopeYear, CoverageStart: 2015},
		{Table: TableRecruiting, Path: "/recruiting/teams", Scope: ScopeYear, CoverageStart: 2015},
		{Table: TableEloRatings, Path: "/ratings/elo", Scope: ScopeYearConference},
		{Table: TableSPRatings, Path: "/ratings/sp", Scope: ScopeYear},
		{Table: TableSRSRatings, Path: "/ratings/srs", Scope: ScopeYear},
		{Table: TableFPIRatings, Path: "/ratings/fpi", Scope: ScopeYear},
		{Table: TableBettingLines, Path: "/lines", Scope: ScopeYearConference, BySeasonType: true, CoverageStart: 2013},
		{Table: TablePregameWinProbability, Path: "/metrics/wp/pregame", Scope: ScopeYear, BySeasonType: true},
	}
}

var conferenceNames = map[string]string{
	"SEC":  "SEC",
	"B1G":  "Big Ten",
	"ACC":  "ACC",
	"B12":  "Big 12",
	"PAC":  "Pac-12",
	"AAC":  "American Athletic",
	"MWC":  "Mountain West",
	"MAC":  "Mid-American",
	"CUSA": "Conference USA",
	"SBC":  "Sun Belt",
	"Ind":  "FBS Independents",
}

// ConferenceName maps a conference filter abbreviation to the name game
// records carry. Unknown abbreviations are returned unchanged.
func ConferenceName(abbreviation string) string {
	if name, ok := conferenceNames[abbreviation]; ok {
		return name
	}
	return abbreviation
}
