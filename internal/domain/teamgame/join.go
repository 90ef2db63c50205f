package teamgame

import (
	"github.com/riskibarqy/cfb-predictor/internal/domain/relational"
)

type gameTeamKey struct {
	game int64
	team int64
}

type seasonTeamKey struct {
	season int
	team   int64
}

type ratingKey struct {
	season int
	system string
	team   int64
}

// lineAverages holds provider-averaged quotes, relative to the home team.
type lineAverages struct {
	spread        *float64
	spreadOpen    *float64
	overUnder     *float64
	overUnderOpen *float64
	homeMoneyline *float64
	awayMoneyline *float64
}

var ratingSystems = []string{
	relational.RatingElo,
	relational.RatingFPI,
	relational.RatingSP,
	relational.RatingSRS,
}

type joinIndex struct {
	box        map[gameTeamKey]relational.BoxScoreRow
	advanced   map[gameTeamKey]relational.AdvancedRow
	talent     map[seasonTeamKey]*float64
	recruiting map[seasonTeamKey]relational.RecruitingRow
	ratings    map[ratingKey]*float64
	lines      map[int64]lineAverages
	pregame    map[int64]*float64
	unjoinable int
}

func buildIndex(in relational.Tables) (*joinIndex, int, error) {
	idx := &joinIndex{
		box:        make(map[gameTeamKey]relational.BoxScoreRow),
		advanced:   make(map[gameTeamKey]relational.AdvancedRow),
		talent:     make(map[seasonTeamKey]*float64),
		recruiting: make(map[seasonTeamKey]relational.RecruitingRow),
		ratings:    make(map[ratingKey]*float64),
		lines:      make(map[int64]lineAverages),
		pregame:    make(map[int64]*float64),
	}
	total := 0

	box, n, err := dedupe(in.BoxScores)
	if err != nil {
		return nil, 0, err
	}
	total += n
	for _, row := range box {
		if row.TeamID == nil {
			idx.unjoinable++
			continue
		}
		key := gameTeamKey{row.GameID, *row.TeamID}
		if _, ok := idx.box[key]; !ok {
			idx.box[key] = row
		}
	}

	advanced, n, err := dedupe(in.Advanced)
	if err != nil {
		return nil, 0, err
	}
	total += n
	for _, row := range advanced {
		if row.TeamID == nil {
			idx.unjoinable++
			continue
		}
		key := gameTeamKey{row.GameID, *row.TeamID}
		if _, ok := idx.advanced[key]; !ok {
			idx.advanced[key] = row
		}
	}

	talent, n, err := dedupe(in.Talent)
	if err != nil {
		return nil, 0, err
	}
	total += n
	for _, row := range talent {
		if row.TeamID == nil {
			idx.unjoinable++
			continue
		}
		key := seasonTeamKey{row.Season, *row.TeamID}
		if _, ok := idx.talent[key]; !ok {
			idx.talent[key] = row.Talent
		}
	}

	recruiting, n, err := dedupe(in.Recruiting)
	if err != nil {
		return nil, 0, err
	}
	total += n
	for _, row := range recruiting {
		if row.TeamID == nil {
			idx.unjoinable++
			continue
		}
		key := seasonTeamKey{row.Season, *row.TeamID}
		if _, ok := idx.recruiting[key]; !ok {
			idx.recruiting[key] = row
		}
	}

	ratings, n, err := dedupe(in.Ratings)
	if err != nil {
		return nil, 0, err
	}
	total += n
	for _, row := range ratings {
		if row.TeamID == nil {
			idx.unjoinable++
			continue
		}
		key := ratingKey{row.Season, row.System, *row.TeamID}
		if _, ok := idx.ratings[key]; !ok {
			idx.ratings[key] = row.Rating
		}
	}

	lines, n, err := dedupe(in.Lines)
	if err != nil {
		return nil, 0, err
	}
	total += n
	idx.lines = averageLines(lines)

	pregame, n, err := dedupe(in.PregameWP)
	if err != nil {
		return nil, 0, err
	}
	total += n
	for _, row := range pregame {
		if _, ok := idx.pregame[row.GameID]; !ok {
			idx.pregame[row.GameID] = row.HomeWinProbability
		}
	}

	return idx, total, nil
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}

// averageLines averages each quote field across providers per game. Null
// quotes do not count towards the mean.
func averageLines(rows []relational.LineRow) map[int64]lineAverages {
	type acc struct {
		spread, spreadOpen, overUnder, overUnderOpen, homeML, awayML mean
	}
	byGame := make(map[int64]*acc)
	for _, row := range rows {
		a, ok := byGame[row.GameID]
		if !ok {
			a = &acc{}
			byGame[row.GameID] = a
		}
		a.spread.add(row.Spread)
		a.spreadOpen.add(row.SpreadOpen)
		a.overUnder.add(row.OverUnder)
		a.overUnderOpen.add(row.OverUnderOpen)
		a.homeML.add(row.HomeMoneyline)
		a.awayML.add(row.AwayMoneyline)
	}

	out := make(map[int64]lineAverages, len(byGame))
	for id, a := range byGame {
		out[id] = lineAverages{
			spread:        a.spread.value(),
			spreadOpen:    a.spreadOpen.value(),
			overUnder:     a.overUnder.value(),
			overUnderOpen: a.overUnderOpen.value(),
			homeMoneyline: a.homeML.value(),
			awayMoneyline: a.awayML.value(),
		}
	}
	return out
}

// join attaches every per-team table to rec. It reports whether the team's
// own box score and advanced stats were missing.
func (idx *joinIndex) join(rec *Record, g relational.GameRow, home bool) (missingBox, missingAdvanced bool) {
	missingBox, missingAdvanced = true, true

	if rec.TeamID != nil {
		if row, ok := idx.box[gameTeamKey{g.ID, *rec.TeamID}]; ok {
			applyBoxScore(rec, row, "")
			missingBox = false
		}
		if row, ok := idx.advanced[gameTeamKey{g.ID, *rec.TeamID}]; ok {
			applyAdvanced(rec, row, "")
			missingAdvanced = false
		}
	}
	if rec.OpponentID != nil {
		if row, ok := idx.box[gameTeamKey{g.ID, *rec.OpponentID}]; ok {
			applyBoxScore(rec, row, OpponentPrefix)
		}
		if row, ok := idx.advanced[gameTeamKey{g.ID, *rec.OpponentID}]; ok {
			applyAdvanced(rec, row, OpponentPrefix)
		}
	}

	idx.joinSeasonal(rec, rec.TeamID, "")
	idx.joinSeasonal(rec, rec.OpponentID, OpponentPrefix)

	if lines, ok := idx.lines[g.ID]; ok {
		applyLines(rec, lines, home)
	}
	if p, ok := idx.pregame[g.ID]; ok && p != nil {
		teamP := *p
		if !home {
			teamP = 1 - *p
		}
		oppP := 1 - teamP
		setPair(rec, MetricPregameWinProbability, &teamP, &oppP)
	}
	return missingBox, missingAdvanced
}

func (idx *joinIndex) joinSeasonal(rec *Record, teamID *int64, prefix string) {
	if teamID == nil {
		return
	}
	name := func(teamSide string) string {
		if prefix == "" {
			return teamSide
		}
		return Opponent(teamSide)
	}
	key := seasonTeamKey{rec.Season, *teamID}
	if talent, ok := idx.talent[key]; ok {
		rec.SetMetric(name(MetricTalent), talent)
	}
	if recruiting, ok := idx.recruiting[key]; ok {
		rec.SetMetric(name(MetricRecruitingRank), recruiting.Rank)
		rec.SetMetric(name(MetricRecruitingPoints), recruiting.Points)
	}
	for _, system := range ratingSystems {
		if rating, ok := idx.ratings[ratingKey{rec.Season, system, *teamID}]; ok {
			rec.SetMetric(name(RatingMetric(system)), rating)
		}
		if rating, ok := idx.ratings[ratingKey{rec.Season - 1, system, *teamID}]; ok {
			rec.SetMetric(name(PriorRatingMetric(system)), rating)
		}
	}
}

func applyBoxScore(rec *Record, row relational.BoxScoreRow, prefix string) {
	for _, name := range relational.NumericStatNames() {
		if v, _ := row.Stats.Numeric(name); v != nil {
			rec.Metrics[prefix+name] = *v
		}
	}
	for _, name := range relational.TextStatNames() {
		if v, _ := row.Stats.Text(name); v != nil {
			rec.SetText(prefix+name, v)
		}
	}
	for name, v := range row.Extra {
		if v.Num != nil {
			rec.Metrics[prefix+name] = *v.Num
			continue
		}
		if v.Text != "" {
			text := v.Text
			rec.SetText(prefix+name, &text)
		}
	}
}

func applyAdvanced(rec *Record, row relational.AdvancedRow, prefix string) {
	for name, v := range row.Metrics {
		rec.Metrics[prefix+name] = v
	}
}

// applyLines converts home-relative quotes into the team's perspective:
// the spread flips sign for the away team and moneylines swap sides.
func applyLines(rec *Record, lines lineAverages, home bool) {
	spread, spreadOpen := lines.spread, lines.spreadOpen
	teamML, oppML := lines.homeMoneyline, lines.awayMoneyline
	if !home {
		spread, spreadOpen = negate(spread), negate(spreadOpen)
		teamML, oppML = oppML, teamML
	}
	rec.SetMetric(MetricAvgSpread, spread)
	rec.SetMetric(MetricAvgSpreadOpen, spreadOpen)
	rec.SetMetric(MetricAvgOverUnder, lines.overUnder)
	rec.SetMetric(MetricAvgOverUnderOpen, lines.overUnderOpen)
	rec.SetMetric(MetricAvgTeamMoneyline, teamML)
	rec.SetMetric(MetricAvgOpponentMoneyline, oppML)
}

func negate(v *float64) *float64 {
	if v == nil {
		return nil
	}
	n := -*v
	return &n
}
