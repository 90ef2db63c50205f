package cleaning

import (
	"sort"
	"strconv"

	"github.com/riskibarqy/cfb-predictor/internal/domain/teamgame"
)

// Drop reasons.
const (
	DropUnidentifiable = "unidentifiable_team"
	DropNoAdvanced     = "no_advanced_stats"
)

// Report summarizes one cleaning pass.
type Report struct {
	InputRows  int
	OutputRows int
	Dropped    map[string]int
	// Imputed counts filled values keyed by "column/step".
	Imputed map[string]int
	// SkippedColumns lists columns whose step was skipped because the
	// column is absent from the whole table.
	SkippedColumns []string
}

func (r *Report) imputed(column, step string, n int) {
	if n == 0 {
		return
	}
	r.Imputed[column+"/"+step] += n
}

type Cleaner struct {
	rules Rules
}

func NewCleaner(rules Rules) *Cleaner {
	return &Cleaner{rules: rules}
}

// Clean returns a cleaned copy of records. The input slice is not modified.
func (c *Cleaner) Clean(in []teamgame.Record) ([]teamgame.Record, Report) {
	report := Report{
		InputRows: len(in),
		Dropped:   make(map[string]int),
		Imputed:   make(map[string]int),
	}
	records := cloneRecords(in)

	records = c.fillIdentity(records, &report)
	records = c.dropUnidentifiable(records, &report)
	records = c.dropWithoutAdvanced(records, &report)
	c.parseText(records, &report)
	c.zeroFill(records, &report)
	c.fillAttendance(records, &report)
	c.fillVenue(records, &report)
	c.fillPossession(records, &report)
	c.fillAdvanced(records, &report)
	c.applyCoverage(records)

	teamgame.SortRecords(records)
	sort.Strings(report.SkippedColumns)
	report.OutputRows = len(records)
	return records, report
}

func cloneRecords(in []teamgame.Record) []teamgame.Record {
	out := make([]teamgame.Record, len(in))
	for i, r := range in {
		metrics := make(map[string]float64, len(r.Metrics))
		for k, v := range r.Metrics {
			metrics[k] = v
		}
		r.Metrics = metrics
		if r.Text != nil {
			text := make(map[string]string, len(r.Text))
			for k, v := range r.Text {
				text[k] = v
			}
			r.Text = text
		}
		out[i] = r
	}
	return out
}

// fillIdentity forward then backward fills conference and division within
// each team's chronological history.
func (c *Cleaner) fillIdentity(records []teamgame.Record, report *Report) []teamgame.Record {
	type field struct {
		name  string
		key   func(*teamgame.Record) string
		value func(*teamgame.Record) **string
	}
	fields := []field{
		{"team_conference", teamKey, func(r *teamgame.Record) **string { return &r.TeamConference }},
		{"team_division", teamKey, func(r *teamgame.Record) **string { return &r.TeamDivision }},
		{"opponent_conference", opponentKey, func(r *teamgame.Record) **string { return &r.OpponentConference }},
		{"opponent_division", opponentKey, func(r *teamgame.Record) **string { return &r.OpponentDivision }},
	}
	for _, f := range fields {
		for _, idx := range chronologicalGroups(records, f.key) {
			var last *string
			for _, i := range idx {
				p := f.value(&records[i])
				if *p != nil {
					last = *p
					continue
				}
				if last != nil {
					*p = last
					report.imputed(f.name, "ffill", 1)
				}
			}
			last = nil
			for j := len(idx) - 1; j >= 0; j-- {
				p := f.value(&records[idx[j]])
				if *p != nil {
					last = *p
					continue
				}
				if last != nil {
					*p = last
					report.imputed(f.name, "bfill", 1)
				}
			}
		}
	}
	return records
}

// chronologicalGroups returns record indexes grouped by key, each group
// ordered by start date then game id.
func chronologicalGroups(records []teamgame.Record, key func(*teamgame.Record) string) [][]int {
	byKey := make(map[string][]int)
	var order []string
	for i := range records {
		k := key(&records[i])
		if _, ok := byKey[k]; !ok {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], i)
	}
	out := make([][]int, 0, len(order))
	for _, k := range order {
		idx := byKey[k]
		sort.SliceStable(idx, func(a, b int) bool {
			ra, rb := &records[idx[a]], &records[idx[b]]
			if !ra.StartDate.Equal(rb.StartDate) {
				return ra.StartDate.Before(rb.StartDate)
			}
			return ra.GameID < rb.GameID
		})
		out = append(out, idx)
	}
	return out
}

func (c *Cleaner) dropUnidentifiable(records []teamgame.Record, report *Report) []teamgame.Record {
	out := records[:0]
	for _, r := range records {
		teamMissing := r.TeamConference == nil && r.TeamDivision == nil
		oppMissing := r.OpponentConference == nil && r.OpponentDivision == nil
		if teamMissing && oppMissing {
			report.Dropped[DropUnidentifiable]++
			continue
		}
		out = append(out, r)
	}
	return out
}

// dropWithoutAdvanced drops rows the advanced-stats provider never covered.
func (c *Cleaner) dropWithoutAdvanced(records []teamgame.Record, report *Report) []teamgame.Record {
	columns := make([]string, 0, 2*len(c.rules.AdvancedColumns))
	for _, name := range c.rules.AdvancedColumns {
		columns = append(columns, bothSides(name)...)
	}
	present := presentColumns(records, columns)
	if len(present) == 0 {
		report.SkippedColumns = append(report.SkippedColumns, "advanced_stats")
		return records
	}

	out := records[:0]
	for _, r := range records {
		covered := false
		for _, name := range present {
			if _, ok := r.Metrics[name]; ok {
				covered = true
				break
			}
		}
		if !covered {
			report.Dropped[DropNoAdvanced]++
			continue
		}
		out = append(out, r)
	}
	return out
}

func presentColumns(records []teamgame.Record, columns []string) []string {
	var out []string
	for _, name := range columns {
		for i := range records {
			if _, ok := records[i].Metrics[name]; ok {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

func hasText(records []teamgame.Record, name string) bool {
	for i := range records {
		if _, ok := records[i].Text[name]; ok {
			return true
		}
	}
	return false
}

func hasMetric(records []teamgame.Record, name string) bool {
	for i := range records {
		if _, ok := records[i].Metrics[name]; ok {
			return true
		}
	}
	return false
}

// parseText converts ratio and split text columns into numeric columns.
func (c *Cleaner) parseText(records []teamgame.Record, report *Report) {
	for _, ratio := range c.rules.Ratios {
		for i, source := range bothSides(ratio.Source) {
			target := bothSides(ratio.Target)[i]
			if !hasText(records, source) {
				report.SkippedColumns = append(report.SkippedColumns, source)
				continue
			}
			for j := range records {
				if text, ok := records[j].Text[source]; ok {
					records[j].SetMetric(target, ParseRatio(text))
				}
			}
		}
	}
	for _, split := range c.rules.Splits {
		for i, source := range bothSides(split.Source) {
			countTarget := bothSides(split.CountTarget)[i]
			totalTarget := bothSides(split.TotalTarget)[i]
			if !hasText(records, source) {
				report.SkippedColumns = append(report.SkippedColumns, source)
				continue
			}
			for j := range records {
				text, ok := records[j].Text[source]
				if !ok {
					continue
				}
				count, total, ok := parsePair(text)
				if !ok {
					continue
				}
				records[j].SetMetric(countTarget, &count)
				records[j].SetMetric(totalTarget, &total)
			}
		}
	}
}

// zeroFill derives totalFumbles, then sets absent counting stats to zero for
// seasons at or after each group's start year.
func (c *Cleaner) zeroFill(records []teamgame.Record, report *Report) {
	if c.rules.TotalFumbles != "" {
		for side, target := range bothSides(c.rules.TotalFumbles) {
			for i := range records {
				r := &records[i]
				if r.Metric(target) != nil {
					continue
				}
				sum, complete := 0.0, len(c.rules.FumbleParts) > 0
				for _, part := range c.rules.FumbleParts {
					v := r.Metric(bothSides(part)[side])
					if v == nil {
						complete = false
						break
					}
					sum += *v
				}
				if complete {
					r.SetMetric(target, &sum)
					report.imputed(target, "derived", 1)
				}
			}
		}
	}

	zero := 0.0
	for _, group := range c.rules.ZeroFill {
		for _, column := range group.Columns {
			for _, name := range bothSides(column) {
				if !hasMetric(records, name) {
					report.SkippedColumns = append(report.SkippedColumns, name)
					continue
				}
				for i := range records {
					r := &records[i]
					if r.Season < group.StartYear || r.Metric(name) != nil {
						continue
					}
					r.SetMetric(name, &zero)
					report.imputed(name, "zero", 1)
				}
			}
		}
	}
}

func (c *Cleaner) fillVenue(records []teamgame.Record, report *Report) {
	for i := range records {
		r := &records[i]
		if r.VenueID == nil {
			id := c.rules.VenueIDSentinel
			r.VenueID = &id
			report.imputed("venue_id", "sentinel", 1)
		}
		if r.Venue == nil {
			name := c.rules.VenueSentinel
			r.Venue = &name
			report.imputed("venue", "sentinel", 1)
		}
	}
}

// fillAttendance treats zero attendance as missing outside the genuine-zero
// season and fills through season+venue, season+team, season medians.
func (c *Cleaner) fillAttendance(records []teamgame.Record, report *Report) {
	if !teamgame.HasColumn(records, "attendance") {
		report.SkippedColumns = append(report.SkippedColumns, "attendance")
		return
	}
	for i := range records {
		r := &records[i]
		if r.Attendance != nil && *r.Attendance == 0 && r.Season != c.rules.GenuineZeroAttendanceSeason {
			r.Attendance = nil
		}
	}

	acc := accessor{
		get: func(r *teamgame.Record) *float64 { return r.Attendance },
		set: func(r *teamgame.Record, v float64) { r.Attendance = &v },
	}
	levels := []level{
		{name: "season_venue", key: func(r *teamgame.Record) (string, bool) {
			if r.VenueID == nil || *r.VenueID == c.rules.VenueIDSentinel {
				return "", false
			}
			return season(r) + "|" + strconv.FormatInt(*r.VenueID, 10), true
		}},
		{name: "season_team", key: func(r *teamgame.Record) (string, bool) { return season(r) + "|" + teamKey(r), true }},
		{name: "season", key: func(r *teamgame.Record) (string, bool) { return season(r), true }},
	}
	for step, n := range imputeChain(records, acc, levels) {
		report.imputed("attendance", step, n)
	}
}

// fillPossession imputes possession in seconds and writes the result back
// as MM:SS text.
func (c *Cleaner) fillPossession(records []teamgame.Record, report *Report) {
	if c.rules.PossessionText == "" {
		return
	}
	for side, textName := range bothSides(c.rules.PossessionText) {
		secondsName := bothSides(c.rules.PossessionSeconds)[side]
		if !hasText(records, textName) {
			report.SkippedColumns = append(report.SkippedColumns, textName)
			continue
		}
		for i := range records {
			if text, ok := records[i].Text[textName]; ok {
				records[i].SetMetric(secondsName, ParseClock(text))
			}
		}
		for step, n := range imputeChain(records, metricAccessor(secondsName), sideLevels(side == 1)) {
			report.imputed(secondsName, step, n)
		}
		for i := range records {
			if v := records[i].Metric(secondsName); v != nil {
				text := FormatClock(*v)
				records[i].SetText(textName, &text)
			}
		}
	}
}

func (c *Cleaner) fillAdvanced(records []teamgame.Record, report *Report) {
	for _, column := range c.rules.AdvancedColumns {
		for side, name := range bothSides(column) {
			if !hasMetric(records, name) {
				report.SkippedColumns = append(report.SkippedColumns, name)
				continue
			}
			for step, n := range imputeChain(records, metricAccessor(name), sideLevels(side == 1)) {
				report.imputed(name, step, n)
			}
		}
	}
}

// applyCoverage nulls columns for seasons before the provider covered them.
func (c *Cleaner) applyCoverage(records []teamgame.Record) {
	for _, cov := range c.rules.Coverage {
		for i := range records {
			r := &records[i]
			if r.Season >= cov.StartYear {
				continue
			}
			for _, column := range cov.Columns {
				for _, name := range bothSides(column) {
					r.SetMetric(name, nil)
				}
			}
		}
	}
}
