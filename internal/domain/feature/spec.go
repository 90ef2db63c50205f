package feature

import (
	"fmt"
	"strconv"
)

// Kind selects the computation behind a feature.
type Kind int

const (
	KindRollingMean Kind = iota + 1
	KindWeightedMean
	KindSeasonToDateMean
	KindWinRateLastN
	KindHeadToHeadWinRate
	KindSeasonPointDiffSum
	KindSeasonPointDiffMean
	KindAllTimeWinRate
	KindSeasonWinRate
	KindGamesPlayedInSeason
)

func (k Kind) String() string {
	switch k {
	case KindRollingMean:
		return "rolling_mean"
	case KindWeightedMean:
		return "weighted_mean"
	case KindSeasonToDateMean:
		return "season_to_date_mean"
	case KindWinRateLastN:
		return "win_rate_last_n"
	case KindHeadToHeadWinRate:
		return "head_to_head_win_rate"
	case KindSeasonPointDiffSum:
		return "season_point_diff_sum"
	case KindSeasonPointDiffMean:
		return "season_point_diff_mean"
	case KindAllTimeWinRate:
		return "all_time_win_rate"
	case KindSeasonWinRate:
		return "season_win_rate"
	case KindGamesPlayedInSeason:
		return "games_played_in_season"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// needsBase reports whether the kind reads a base column.
func (k Kind) needsBase() bool {
	switch k {
	case KindRollingMean, KindWeightedMean, KindSeasonToDateMean:
		return true
	default:
		return false
	}
}

// Spec declares one engineered column.
type Spec struct {
	Name string
	Kind Kind
	// Base is the source column for mean kinds.
	Base string
	// Window is the number of prior games for rolling kinds.
	Window int
	// MinPeriods is the minimum number of non-null prior values; zero means Window.
	MinPeriods int
}

func (s Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("feature name is required")
	}
	if _, err := strategyFor(s.Kind); err != nil {
		return fmt.Errorf("feature %s: %w", s.Name, err)
	}
	if s.Kind.needsBase() && s.Base == "" {
		return fmt.Errorf("feature %s: %s requires a base column", s.Name, s.Kind)
	}
	if (s.Kind == KindRollingMean || s.Kind == KindWinRateLastN) && s.Window <= 0 {
		return fmt.Errorf("feature %s: window must be positive", s.Name)
	}
	if s.MinPeriods < 0 || (s.Window > 0 && s.MinPeriods > s.Window) {
		return fmt.Errorf("feature %s: min periods must be between 0 and window", s.Name)
	}
	return nil
}

func (s Spec) minPeriods() int {
	if s.MinPeriods > 0 {
		return s.MinPeriods
	}
	return s.Window
}

func Rolling(base string, window int) Spec {
	return Spec{Name: base + "_last_" + strconv.Itoa(window), Kind: KindRollingMean, Base: base, Window: window}
}

func Weighted(base string) Spec {
	return Spec{Name: base + "_weighted", Kind: KindWeightedMean, Base: base}
}

func SeasonToDate(base string) Spec {
	return Spec{Name: base + "_season_to_date", Kind: KindSeasonToDateMean, Base: base}
}

func WinRateLast(window int) Spec {
	return Spec{Name: "win_rate_last_" + strconv.Itoa(window), Kind: KindWinRateLastN, Window: window}
}
