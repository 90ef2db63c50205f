package relational

import (
	"sort"
	"strconv"

	"github.com/riskibarqy/cfb-predictor/internal/domain/source"
)

// KnownStatsVersion is bumped whenever a category is added to KnownStats.
const KnownStatsVersion = 1

// KnownStats holds the box score categories the pipeline understands.
// Unknown categories land in BoxScoreRow.Extra.
type KnownStats struct {
	TotalYards          *float64 `json:"totalYards,omitempty"`
	NetPassingYards     *float64 `json:"netPassingYards,omitempty"`
	RushingYards        *float64 `json:"rushingYards,omitempty"`
	RushingAttempts     *float64 `json:"rushingAttempts,omitempty"`
	RushingTDs          *float64 `json:"rushingTDs,omitempty"`
	PassingTDs          *float64 `json:"passingTDs,omitempty"`
	YardsPerPass        *float64 `json:"yardsPerPass,omitempty"`
	YardsPerRushAttempt *float64 `json:"yardsPerRushAttempt,omitempty"`
	FirstDowns          *float64 `json:"firstDowns,omitempty"`
	Turnovers           *float64 `json:"turnovers,omitempty"`
	FumblesLost         *float64 `json:"fumblesLost,omitempty"`
	FumblesRecovered    *float64 `json:"fumblesRecovered,omitempty"`
	TotalFumbles        *float64 `json:"totalFumbles,omitempty"`
	Interceptions       *float64 `json:"interceptions,omitempty"`
	PassesIntercepted   *float64 `json:"passesIntercepted,omitempty"`
	InterceptionYards   *float64 `json:"interceptionYards,omitempty"`
	InterceptionTDs     *float64 `json:"interceptionTDs,omitempty"`
	KickReturns         *float64 `json:"kickReturns,omitempty"`
	KickReturnYards     *float64 `json:"kickReturnYards,omitempty"`
	KickReturnTDs       *float64 `json:"kickReturnTDs,omitempty"`
	PuntReturns         *float64 `json:"puntReturns,omitempty"`
	PuntReturnYards     *float64 `json:"puntReturnYards,omitempty"`
	PuntReturnTDs       *float64 `json:"puntReturnTDs,omitempty"`
	KickingPoints       *float64 `json:"kickingPoints,omitempty"`
	Tackles             *float64 `json:"tackles,omitempty"`
	TacklesForLoss      *float64 `json:"tacklesForLoss,omitempty"`
	Sacks               *float64 `json:"sacks,omitempty"`
	QBHurries           *float64 `json:"qbHurries,omitempty"`
	PassesDeflected     *float64 `json:"passesDeflected,omitempty"`
	DefensiveTDs        *float64 `json:"defensiveTDs,omitempty"`

	ThirdDownEff        *string `json:"thirdDownEff,omitempty"`
	FourthDownEff       *string `json:"fourthDownEff,omitempty"`
	CompletionAttempts  *string `json:"completionAttempts,omitempty"`
	TotalPenaltiesYards *string `json:"totalPenaltiesYards,omitempty"`
	PossessionTime      *string `json:"possessionTime,omitempty"`
}

type numericStat struct {
	name  string
	field func(*KnownStats) **float64
}

type textStat struct {
	name  string
	field func(*KnownStats) **string
}

var numericStats = []numericStat{
	{"totalYards", func(k *KnownStats) **float64 { return &k.TotalYards }},
	{"netPassingYards", func(k *KnownStats) **float64 { return &k.NetPassingYards }},
	{"rushingYards", func(k *KnownStats) **float64 { return &k.RushingYards }},
	{"rushingAttempts", func(k *KnownStats) **float64 { return &k.RushingAttempts }},
	{"rushingTDs", func(k *KnownStats) **float64 { return &k.RushingTDs }},
	{"passingTDs", func(k *KnownStats) **float64 { return &k.PassingTDs }},
	{"yardsPerPass", func(k *KnownStats) **float64 { return &k.YardsPerPass }},
	{"yardsPerRushAttempt", func(k *KnownStats) **float64 { return &k.YardsPerRushAttempt }},
	{"firstDowns", func(k *KnownStats) **float64 { return &k.FirstDowns }},
	{"turnovers", func(k *KnownStats) **float64 { return &k.Turnovers }},
	{"fumblesLost", func(k *KnownStats) **float64 { return &k.FumblesLost }},
	{"fumblesRecovered", func(k *KnownStats) **float64 { return &k.FumblesRecovered }},
	{"totalFumbles", func(k *KnownStats) **float64 { return &k.TotalFumbles }},
	{"interceptions", func(k *KnownStats) **float64 { return &k.Interceptions }},
	{"passesIntercepted", func(k *KnownStats) **float64 { return &k.PassesIntercepted }},
	{"interceptionYards", func(k *KnownStats) **float64 { return &k.InterceptionYards }},
	{"interceptionTDs", func(k *KnownStats) **float64 { return &k.InterceptionTDs }},
	{"kickReturns", func(k *KnownStats) **float64 { return &k.KickReturns }},
	{"kickReturnYards", func(k *KnownStats) **float64 { return &k.KickReturnYards }},
	{"kickReturnTDs", func(k *KnownStats) **float64 { return &k.KickReturnTDs }},
	{"puntReturns", func(k *KnownStats) **float64 { return &k.PuntReturns }},
	{"puntReturnYards", func(k *KnownStats) **float64 { return &k.PuntReturnYards }},
	{"puntReturnTDs", func(k *KnownStats) **float64 { return &k.PuntReturnTDs }},
	{"kickingPoints", func(k *KnownStats) **float64 { return &k.KickingPoints }},
	{"tackles", func(k *KnownStats) **float64 { return &k.Tackles }},
	{"tacklesForLoss", func(k *KnownStats) **float64 { return &k.TacklesForLoss }},
	{"sacks", func(k *KnownStats) **float64 { return &k.Sacks }},
	{"qbHurries", func(k *KnownStats) **float64 { return &k.QBHurries }},
	{"passesDeflected", func(k *KnownStats) **float64 { return &k.PassesDeflected }},
	{"defensiveTDs", func(k *KnownStats) **float64 { return &k.DefensiveTDs }},
}

var textStats = []textStat{
	{"thirdDownEff", func(k *KnownStats) **string { return &k.ThirdDownEff }},
	{"fourthDownEff", func(k *KnownStats) **string { return &k.FourthDownEff }},
	{"completionAttempts", func(k *KnownStats) **string { return &k.CompletionAttempts }},
	{"totalPenaltiesYards", func(k *KnownStats) **string { return &k.TotalPenaltiesYards }},
	{"possessionTime", func(k *KnownStats) **string { return &k.PossessionTime }},
}

var (
	numericIndex = indexNumeric()
	textIndex    = indexText()
)

func indexNumeric() map[string]numericStat {
	out := make(map[string]numericStat, len(numericStats))
	for _, s := range numericStats {
		out[s.name] = s
	}
	return out
}

func indexText() map[string]textStat {
	out := make(map[string]textStat, len(textStats))
	for _, s := range textStats {
		out[s.name] = s
	}
	return out
}

// NumericStatNames lists the known numeric categories in declaration order.
func NumericStatNames() []string {
	out := make([]string, 0, len(numericStats))
	for _, s := range numericStats {
		out = append(out, s.name)
	}
	return out
}

// TextStatNames lists the known text categories in declaration order.
func TextStatNames() []string {
	out := make([]string, 0, len(textStats))
	for _, s := range textStats {
		out = append(out, s.name)
	}
	return out
}

// IsKnownStat reports whether category has a typed field.
func IsKnownStat(category string) bool {
	_, numeric := numericIndex[category]
	_, text := textIndex[category]
	return numeric || text
}

// Numeric returns the value of a known numeric category.
func (k *KnownStats) Numeric(name string) (*float64, bool) {
	s, ok := numericIndex[name]
	if !ok {
		return nil, false
	}
	return *s.field(k), true
}

// SetNumeric assigns a known numeric category. It returns false for unknown names.
func (k *KnownStats) SetNumeric(name string, v *float64) bool {
	s, ok := numericIndex[name]
	if !ok {
		return false
	}
	*s.field(k) = v
	return true
}

// Text returns the raw value of a known text category.
func (k *KnownStats) Text(name string) (*string, bool) {
	s, ok := textIndex[name]
	if !ok {
		return nil, false
	}
	return *s.field(k), true
}

// set stores a raw stat under its category. A numeric category whose value
// does not parse is left null and reported as not coerced.
func (k *KnownStats) set(category string, value source.Number) (known, coerced bool) {
	if s, ok := numericIndex[category]; ok {
		*s.field(k) = value.Ptr()
		return true, value.Valid || value.Text == ""
	}
	if s, ok := textIndex[category]; ok {
		text := value.Text
		if value.Valid {
			text = strconv.FormatFloat(value.Value, 'f', -1, 64)
		}
		if text == "" {
			*s.field(k) = nil
			return true, true
		}
		*s.field(k) = &text
		return true, true
	}
	return false, false
}

// ExtraNames returns the extra category names of a row in sorted order.
func (r BoxScoreRow) ExtraNames() []string {
	out := make([]string, 0, len(r.Extra))
	for name := range r.Extra {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
