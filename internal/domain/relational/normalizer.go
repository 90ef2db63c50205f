package relational

import (
	"sort"

	"github.com/riskibarqy/cfb-predictor/internal/domain/source"
)

// Snapshot is the decoded content of every raw table.
type Snapshot struct {
	Games         []source.Game
	TeamGameStats []source.GameTeamStats
	Advanced      []source.AdvancedGameStat
	Talent        []source.TeamTalent
	Recruiting    []source.TeamRecruiting
	// Ratings is keyed by rating system.
	Ratings   map[string][]source.Rating
	Lines     []source.BettingGame
	PregameWP []source.PregameWinProbability
}

// Tables is the normalized relational output.
type Tables struct {
	Games      []GameRow
	BoxScores  []BoxScoreRow
	Advanced   []AdvancedRow
	Talent     []TalentRow
	Recruiting []RecruitingRow
	Ratings    []RatingRow
	Lines      []LineRow
	PregameWP  []PregameWinProbRow
	Crosswalk  []CrosswalkRow
}

type Report struct {
	MalformedStats     int
	UncoercedStats     int
	ExtraCategories    []string
	UnresolvedTeams    []string
	CrosswalkConflicts int
	GamesWithoutLines  int
}

// Normalize flattens raw records into relational rows. Malformed stat pairs
// are skipped and counted; names without a team id stay unresolved.
func Normalize(snap Snapshot, aliases []Alias) (Tables, Report) {
	n := normalizer{
		crosswalk:  NewCrosswalk(),
		unresolved: make(map[string]struct{}),
		extras:     make(map[string]struct{}),
	}
	n.crosswalk.AddAliases(aliases)
	for _, g := range snap.Games {
		if g.HomeID != nil {
			n.crosswalk.Add(g.HomeTeam, *g.HomeID, CrosswalkFromGames)
		}
		if g.AwayID != nil {
			n.crosswalk.Add(g.AwayTeam, *g.AwayID, CrosswalkFromGames)
		}
	}

	out := Tables{
		Games:      n.games(snap.Games),
		BoxScores:  n.boxScores(snap.TeamGameStats),
		Advanced:   n.advanced(snap.Advanced),
		Talent:     n.talent(snap.Talent),
		Recruiting: n.recruiting(snap.Recruiting),
		Ratings:    n.ratings(snap.Ratings),
		Lines:      n.lines(snap.Lines),
		PregameWP:  n.pregame(snap.PregameWP),
		Crosswalk:  n.crosswalk.Rows(),
	}
	n.report.CrosswalkConflicts = n.crosswalk.Conflicts()
	n.report.UnresolvedTeams = sortedKeys(n.unresolved)
	n.report.ExtraCategories = sortedKeys(n.extras)
	return out, n.report
}

type normalizer struct {
	crosswalk  *Crosswalk
	unresolved map[string]struct{}
	extras     map[string]struct{}
	report     Report
}

func (n *normalizer) resolve(id *int64, name string) *int64 {
	if id != nil {
		v := *id
		return &v
	}
	if resolved := n.crosswalk.ResolvePtr(name); resolved != nil {
		return resolved
	}
	if name != "" {
		n.unresolved[name] = struct{}{}
	}
	return nil
}

func (n *normalizer) games(games []source.Game) []GameRow {
	out := make([]GameRow, 0, len(games))
	for _, g := range games {
		out = append(out, GameRow{
			ID:              g.ID,
			Season:          g.Season,
			Week:            g.Week,
			SeasonType:      g.SeasonType,
			StartDate:       g.StartDate,
			Completed:       g.Completed,
			NeutralSite:     g.NeutralSite,
			ConferenceGame:  g.ConferenceGame,
			Attendance:      g.Attendance.Ptr(),
			VenueID:         g.VenueID,
			Venue:           g.Venue,
			ExcitementIndex: g.ExcitementIndex.Ptr(),
			Home: GameSide{
				TeamID:                 n.resolve(g.HomeID, g.HomeTeam),
				Team:                   g.HomeTeam,
				Conference:             g.HomeConference,
				Division:               g.HomeClassification,
				Points:                 g.HomePoints.Ptr(),
				LineScores:             lineScores(g.HomeLineScores),
				PostgameWinProbability: g.HomePostgameWinProbability.Ptr(),
				PregameElo:             g.HomePregameElo.Ptr(),
				PostgameElo:            g.HomePostgameElo.Ptr(),
			},
			Away: GameSide{
				TeamID:                 n.resolve(g.AwayID, g.AwayTeam),
				Team:                   g.AwayTeam,
				Conference:             g.AwayConference,
				Division:               g.AwayClassification,
				Points:                 g.AwayPoints.Ptr(),
				LineScores:             lineScores(g.AwayLineScores),
				PostgameWinProbability: g.AwayPostgameWinProbability.Ptr(),
				PregameElo:             g.AwayPregameElo.Ptr(),
				PostgameElo:            g.AwayPostgameElo.Ptr(),
			},
		})
	}
	return out
}

func lineScores(in []source.Number) []float64 {
	if len(in) == 0 {
		return nil
	}
	out := make([]float64, 0, len(in))
	for _, v := range in {
		if v.Valid {
			out = append(out, v.Value)
		}
	}
	return out
}

func (n *normalizer) boxScores(stats []source.GameTeamStats) []BoxScoreRow {
	out := make([]BoxScoreRow, 0, 2*len(stats))
	for _, game := range stats {
		for _, block := range game.Teams {
			row := BoxScoreRow{
				GameID:     game.ID,
				TeamID:     n.resolve(block.TeamID, block.Team),
				Team:       block.Team,
				Conference: block.Conference,
				HomeAway:   block.HomeAway,
				Points:     block.Points.Ptr(),
			}
			for _, pair := range block.Stats {
				if pair.Category == nil || *pair.Category == "" || pair.Stat == nil {
					n.report.MalformedStats++
					continue
				}
				known, coerced := row.Stats.set(*pair.Category, *pair.Stat)
				if known {
					if !coerced {
						n.report.UncoercedStats++
					}
					continue
				}
				if row.Extra == nil {
					row.Extra = make(map[string]StatValue)
				}
				n.extras[*pair.Category] = struct{}{}
				row.Extra[*pair.Category] = StatValue{Num: pair.Stat.Ptr(), Text: pair.Stat.Text}
			}
			out = append(out, row)
		}
	}
	return out
}

func (n *normalizer) advanced(stats []source.AdvancedGameStat) []AdvancedRow {
	out := make([]AdvancedRow, 0, len(stats))
	for _, s := range stats {
		out = append(out, AdvancedRow{
			GameID:     s.GameID,
			Season:     s.Season,
			Week:       s.Week,
			Team:       s.Team,
			TeamID:     n.resolve(nil, s.Team),
			Opponent:   s.Opponent,
			OpponentID: n.resolve(nil, s.Opponent),
			Metrics:    flattenAdvanced(s),
		})
	}
	return out
}

func (n *normalizer) talent(rows []source.TeamTalent) []TalentRow {
	out := make([]TalentRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, TalentRow{
			Season: r.Year,
			Team:   r.Team,
			TeamID: n.resolve(nil, r.Team),
			Talent: r.Talent.Ptr(),
		})
	}
	return out
}

func (n *normalizer) recruiting(rows []source.TeamRecruiting) []RecruitingRow {
	out := make([]RecruitingRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, RecruitingRow{
			Season: r.Year,
			Team:   r.Team,
			TeamID: n.resolve(nil, r.Team),
			Rank:   r.Rank.Ptr(),
			Points: r.Points.Ptr(),
		})
	}
	return out
}

func (n *normalizer) ratings(bySystem map[string][]source.Rating) []RatingRow {
	systems := make([]string, 0, len(bySystem))
	for system := range bySystem {
		systems = append(systems, system)
	}
	sort.Strings(systems)

	var out []RatingRow
	for _, system := range systems {
		for _, r := range bySystem[system] {
			out = append(out, RatingRow{
				Season:  r.Year,
				System:  system,
				Team:    r.Team,
				TeamID:  n.resolve(nil, r.Team),
				Rating:  ratingValue(system, r),
				Ranking: r.Ranking.Ptr(),
			})
		}
	}
	return out
}

func ratingValue(system string, r source.Rating) *float64 {
	switch system {
	case RatingElo:
		return r.Elo.Ptr()
	case RatingFPI:
		return r.FPI.Ptr()
	default:
		return r.Rating.Ptr()
	}
}

// lines emits one row per provider quote and a single row with a nil
// provider for games nobody quoted.
func (n *normalizer) lines(games []source.BettingGame) []LineRow {
	out := make([]LineRow, 0, 3*len(games))
	for _, g := range games {
		base := LineRow{
			GameID:     g.ID,
			Season:     g.Season,
			Week:       g.Week,
			HomeTeamID: n.resolve(g.HomeTeamID, g.HomeTeam),
			HomeTeam:   g.HomeTeam,
			AwayTeamID: n.resolve(g.AwayTeamID, g.AwayTeam),
			AwayTeam:   g.AwayTeam,
		}
		if len(g.Lines) == 0 {
			n.report.GamesWithoutLines++
			out = append(out, base)
			continue
		}
		for _, l := range g.Lines {
			row := base
			provider := l.Provider
			row.Provider = &provider
			row.Spread = l.Spread.Ptr()
			row.SpreadOpen = l.SpreadOpen.Ptr()
			row.OverUnder = l.OverUnder.Ptr()
			row.OverUnderOpen = l.OverUnderOpen.Ptr()
			row.HomeMoneyline = l.HomeMoneyline.Ptr()
			row.AwayMoneyline = l.AwayMoneyline.Ptr()
			out = append(out, row)
		}
	}
	return out
}

func (n *normalizer) pregame(rows []source.PregameWinProbability) []PregameWinProbRow {
	out := make([]PregameWinProbRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, PregameWinProbRow{
			GameID:             r.GameID,
			Season:             r.Season,
			Week:               r.Week,
			HomeTeam:           r.HomeTeam,
			AwayTeam:           r.AwayTeam,
			Spread:             r.Spread.Ptr(),
			HomeWinProbability: r.HomeWinProbability.Ptr(),
		})
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
