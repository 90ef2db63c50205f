package cleaning

import (
	"github.com/riskibarqy/cfb-predictor/internal/domain/relational"
	"github.com/riskibarqy/cfb-predictor/internal/domain/teamgame"
)

// ZeroFill lists counting stats that are genuinely zero when absent from
// StartYear on. Earlier seasons keep nulls.
type ZeroFill struct {
	StartYear int
	Columns   []string
}

// Ratio parses a "made-attempted" text column into a numeric ratio column.
type Ratio struct {
	Source string
	Target string
}

// Split parses a "count-amount" text column into two numeric columns.
type Split struct {
	Source      string
	CountTarget string
	TotalTarget string
}

// Coverage nulls columns for seasons before StartYear.
type Coverage struct {
	StartYear int
	Columns   []string
}

// Rules configures the cleaner. Team-side column names are listed; the
// opponent copies are handled alongside them.
type Rules struct {
	ZeroFill []ZeroFill
	Ratios   []Ratio
	Splits   []Split
	Coverage []Coverage

	// TotalFumbles is derived from its parts when absent.
	TotalFumbles string
	FumbleParts  []string

	PossessionText    string
	PossessionSeconds string

	AdvancedColumns []string

	VenueIDSentinel int64
	VenueSentinel   string
	// GenuineZeroAttendanceSeason keeps zero attendance as a real value.
	GenuineZeroAttendanceSeason int
}

func DefaultRules() Rules {
	return Rules{
		ZeroFill: []ZeroFill{
			{StartYear: 2004, Columns: []string{
				"totalYards", "netPassingYards", "rushingYards", "rushingAttempts", "rushingTDs",
				"passingTDs", "firstDowns", "turnovers", "fumblesLost", "fumblesRecovered", "totalFumbles",
				"interceptions", "passesIntercepted", "interceptionYards", "interceptionTDs",
				"puntReturns", "puntReturnYards", "puntReturnTDs", "kickingPoints",
			}},
			{StartYear: 2009, Columns: []string{"kickReturns", "kickReturnYards", "kickReturnTDs"}},
			{StartYear: 2016, Columns: []string{
				"tackles", "tacklesForLoss", "sacks", "qbHurries", "passesDeflected", "defensiveTDs",
			}},
		},
		Ratios: []Ratio{
			{Source: "thirdDownEff", Target: "thirdDownPct"},
			{Source: "fourthDownEff", Target: "fourthDownPct"},
			{Source: "completionAttempts", Target: "completionPct"},
		},
		Splits: []Split{
			{Source: "totalPenaltiesYards", CountTarget: "penalties", TotalTarget: "penaltyYards"},
		},
		Coverage: []Coverage{
			{StartYear: 2015, Columns: []string{
				teamgame.MetricTalent, teamgame.MetricRecruitingRank, teamgame.MetricRecruitingPoints,
			}},
		},
		TotalFumbles:                "totalFumbles",
		FumbleParts:                 []string{"fumblesLost", "fumblesRecovered"},
		PossessionText:              "possessionTime",
		PossessionSeconds:           "possessionSeconds",
		AdvancedColumns:             relational.AdvancedColumns(),
		VenueIDSentinel:             -1,
		VenueSentinel:               "Unknown Venue",
		GenuineZeroAttendanceSeason: 2020,
	}
}

// bothSides returns name and its opponent copy.
func bothSides(name string) []string {
	return []string{name, teamgame.Opponent(name)}
}
