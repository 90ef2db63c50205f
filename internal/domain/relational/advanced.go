package relational

import "github.com/riskibarqy/cfb-predictor/internal/domain/source"

type advancedField struct {
	name  string
	value func(source.AdvancedSide) source.Number
}

var advancedFields = []advancedField{
	{"plays", func(s source.AdvancedSide) source.Number { return s.Plays }},
	{"drives", func(s source.AdvancedSide) source.Number { return s.Drives }},
	{"ppa", func(s source.AdvancedSide) source.Number { return s.PPA }},
	{"total_ppa", func(s source.AdvancedSide) source.Number { return s.TotalPPA }},
	{"success_rate", func(s source.AdvancedSide) source.Number { return s.SuccessRate }},
	{"explosiveness", func(s source.AdvancedSide) source.Number { return s.Explosiveness }},
	{"power_success", func(s source.AdvancedSide) source.Number { return s.PowerSuccess }},
	{"stuff_rate", func(s source.AdvancedSide) source.Number { return s.StuffRate }},
	{"line_yards", func(s source.AdvancedSide) source.Number { return s.LineYards }},
	{"line_yards_total", func(s source.AdvancedSide) source.Number { return s.LineYardsTotal }},
	{"second_level_yards", func(s source.AdvancedSide) source.Number { return s.SecondLevelYards }},
	{"second_level_yards_total", func(s source.AdvancedSide) source.Number { return s.SecondLevelYardsTotal }},
	{"open_field_yards", func(s source.AdvancedSide) source.Number { return s.OpenFieldYards }},
	{"open_field_yards_total", func(s source.AdvancedSide) source.Number { return s.OpenFieldYardsTotal }},
	{"standard_downs_ppa", func(s source.AdvancedSide) source.Number { return s.StandardDowns.PPA }},
	{"standard_downs_success_rate", func(s source.AdvancedSide) source.Number { return s.StandardDowns.SuccessRate }},
	{"standard_downs_explosiveness", func(s source.AdvancedSide) source.Number { return s.StandardDowns.Explosiveness }},
	{"passing_downs_ppa", func(s source.AdvancedSide) source.Number { return s.PassingDowns.PPA }},
	{"passing_downs_success_rate", func(s source.AdvancedSide) source.Number { return s.PassingDowns.SuccessRate }},
	{"passing_downs_explosiveness", func(s source.AdvancedSide) source.Number { return s.PassingDowns.Explosiveness }},
	{"rushing_plays_ppa", func(s source.AdvancedSide) source.Number { return s.RushingPlays.PPA }},
	{"rushing_plays_total_ppa", func(s source.AdvancedSide) source.Number { return s.RushingPlays.TotalPPA }},
	{"rushing_plays_success_rate", func(s source.AdvancedSide) source.Number { return s.RushingPlays.SuccessRate }},
	{"rushing_plays_explosiveness", func(s source.AdvancedSide) source.Number { return s.RushingPlays.Explosiveness }},
	{"passing_plays_ppa", func(s source.AdvancedSide) source.Number { return s.PassingPlays.PPA }},
	{"passing_plays_total_ppa", func(s source.AdvancedSide) source.Number { return s.PassingPlays.TotalPPA }},
	{"passing_plays_success_rate", func(s source.AdvancedSide) source.Number { return s.PassingPlays.SuccessRate }},
	{"passing_plays_explosiveness", func(s source.AdvancedSide) source.Number { return s.PassingPlays.Explosiveness }},
}

var advancedColumns = buildAdvancedColumns()

func buildAdvancedColumns() []string {
	out := make([]string, 0, 2*len(advancedFields))
	for _, side := range []string{"offense", "defense"} {
		for _, f := range advancedFields {
			out = append(out, side+"_"+f.name)
		}
	}
	return out
}

// AdvancedColumns lists every flattened advanced metric column.
func AdvancedColumns() []string {
	return append([]string(nil), advancedColumns...)
}

// flattenAdvanced maps nested offense/defense objects onto flat columns.
// Null and non-numeric values are omitted.
func flattenAdvanced(stat source.AdvancedGameStat) map[string]float64 {
	out := make(map[string]float64, len(advancedColumns))
	for _, side := range []struct {
		prefix string
		data   source.AdvancedSide
	}{{"offense", stat.Offense}, {"defense", stat.Defense}} {
		for _, f := range advancedFields {
			if n := f.value(side.data); n.Valid {
				out[side.prefix+"_"+f.name] = n.Value
			}
		}
	}
	return out
}
