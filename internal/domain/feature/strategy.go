package feature

import "fmt"

// Strategy computes one feature as a series aligned to the frame rows.
// Implementations only read rows that precede the current one within the
// same team.
type Strategy interface {
	Compute(f *Frame, spec Spec) []*float64
}

func strategyFor(kind Kind) (Strategy, error) {
	switch kind {
	case KindRollingMean:
		return rollingMean{}, nil
	case KindWeightedMean:
		return weightedMean{}, nil
	case KindSeasonToDateMean:
		return seasonToDateMean{}, nil
	case KindWinRateLastN:
		return winRateLastN{}, nil
	case KindHeadToHeadWinRate:
		return headToHead{}, nil
	case KindSeasonPointDiffSum:
		return seasonPointDiff{}, nil
	case KindSeasonPointDiffMean:
		return seasonPointDiff{mean: true}, nil
	case KindAllTimeWinRate:
		return expandingWinRate{}, nil
	case KindSeasonWinRate:
		return expandingWinRate{seasonal: true}, nil
	case KindGamesPlayedInSeason:
		return gamesPlayed{}, nil
	default:
		return nil, fmt.Errorf("unknown feature kind %d", int(kind))
	}
}

const noPriorWinRate = 0.5

func ptr(v float64) *float64 { return &v }

// trailingMean averages the non-null values of the window rows before i.
func trailingMean(values []*float64, start, i, window, minPeriods int) *float64 {
	from := max(start, i-window)
	sum, n := 0.0, 0
	for j := from; j < i; j++ {
		if values[j] != nil {
			sum += *values[j]
			n++
		}
	}
	if n == 0 || n < minPeriods {
		return nil
	}
	return ptr(sum / float64(n))
}

func column(f *Frame, get func(i int) *float64) []*float64 {
	out := make([]*float64, f.Len())
	for i := range out {
		out[i] = get(i)
	}
	return out
}

func baseColumn(f *Frame, name string) []*float64 {
	return column(f, func(i int) *float64 { return f.Record(i).Value(name) })
}

func winColumn(f *Frame) []*float64 {
	return column(f, func(i int) *float64 { return ptr(f.Record(i).Win) })
}

// seasons splits a team range into per-season ranges.
func (f *Frame) seasons(team [2]int) [][2]int {
	var out [][2]int
	start := team[0]
	for i := team[0] + 1; i <= team[1]; i++ {
		if i == team[1] || f.records[i].Season != f.records[start].Season {
			out = append(out, [2]int{start, i})
			start = i
		}
	}
	return out
}

type rollingMean struct{}

func (rollingMean) Compute(f *Frame, spec Spec) []*float64 {
	values := baseColumn(f, spec.Base)
	out := make([]*float64, f.Len())
	for _, team := range f.teams {
		for i := team[0]; i < team[1]; i++ {
			out[i] = trailingMean(values, team[0], i, spec.Window, spec.minPeriods())
		}
	}
	return out
}

type winRateLastN struct{}

func (winRateLastN) Compute(f *Frame, spec Spec) []*float64 {
	wins := winColumn(f)
	out := make([]*float64, f.Len())
	for _, team := range f.teams {
		for i := team[0]; i < team[1]; i++ {
			out[i] = trailingMean(wins, team[0], i, spec.Window, spec.minPeriods())
		}
	}
	return out
}

// weightedMean weights prior game k (1 = oldest) by k.
type weightedMean struct{}

func (weightedMean) Compute(f *Frame, spec Spec) []*float64 {
	values := baseColumn(f, spec.Base)
	out := make([]*float64, f.Len())
	for _, team := range f.teams {
		for i := team[0]; i < team[1]; i++ {
			sum, weights := 0.0, 0.0
			for j := team[0]; j < i; j++ {
				if values[j] == nil {
					continue
				}
				w := float64(j - team[0] + 1)
				sum += w * *values[j]
				weights += w
			}
			if weights > 0 {
				out[i] = ptr(sum / weights)
			}
		}
	}
	return out
}

type seasonToDateMean struct{}

func (seasonToDateMean) Compute(f *Frame, spec Spec) []*float64 {
	values := baseColumn(f, spec.Base)
	out := make([]*float64, f.Len())
	for _, team := range f.teams {
		for _, s := range f.seasons(team) {
			sum, n := 0.0, 0
			for i := s[0]; i < s[1]; i++ {
				if n > 0 {
					out[i] = ptr(sum / float64(n))
				}
				if values[i] != nil {
					sum += *values[i]
					n++
				}
			}
		}
	}
	return out
}

// headToHead is the team's win rate in earlier meetings with the same
// opponent. A first meeting carries no information and yields 0.5.
type headToHead struct{}

func (headToHead) Compute(f *Frame, _ Spec) []*float64 {
	out := make([]*float64, f.Len())
	for _, team := range f.teams {
		type tally struct {
			wins  float64
			games int
		}
		history := make(map[string]*tally)
		for i := team[0]; i < team[1]; i++ {
			rec := f.Record(i)
			key := opponentKey(rec)
			t, ok := history[key]
			if !ok {
				t = &tally{}
				history[key] = t
			}
			if t.games == 0 {
				out[i] = ptr(noPriorWinRate)
			} else {
				out[i] = ptr(t.wins / float64(t.games))
			}
			t.wins += rec.Win
			t.games++
		}
	}
	return out
}

type seasonPointDiff struct {
	mean bool
}

func (s seasonPointDiff) Compute(f *Frame, _ Spec) []*float64 {
	out := make([]*float64, f.Len())
	for _, team := range f.teams {
		for _, season := range f.seasons(team) {
			sum, n := 0.0, 0
			for i := season[0]; i < season[1]; i++ {
				if n > 0 {
					if s.mean {
						out[i] = ptr(sum / float64(n))
					} else {
						out[i] = ptr(sum)
					}
				}
				sum += f.Record(i).PointDifference
				n++
			}
		}
	}
	return out
}

// expandingWinRate is the win rate over all prior games, or prior games of
// the season. No prior games yields 0.5.
type expandingWinRate struct {
	seasonal bool
}

func (s expandingWinRate) Compute(f *Frame, _ Spec) []*float64 {
	out := make([]*float64, f.Len())
	for _, team := range f.teams {
		ranges := [][2]int{team}
		if s.seasonal {
			ranges = f.seasons(team)
		}
		for _, r := range ranges {
			wins, n := 0.0, 0
			for i := r[0]; i < r[1]; i++ {
				if n == 0 {
					out[i] = ptr(noPriorWinRate)
				} else {
					out[i] = ptr(wins / float64(n))
				}
				wins += f.Record(i).Win
				n++
			}
		}
	}
	return out
}

type gamesPlayed struct{}

func (gamesPlayed) Compute(f *Frame, _ Spec) []*float64 {
	out := make([]*float64, f.Len())
	for _, team := range f.teams {
		for _, season := range f.seasons(team) {
			for i := season[0]; i < season[1]; i++ {
				out[i] = ptr(float64(i - season[0]))
			}
		}
	}
	return out
}
