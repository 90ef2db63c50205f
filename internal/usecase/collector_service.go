package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/cfb-predictor/internal/domain/rawdata"
	"github.com/riskibarqy/cfb-predictor/internal/domain/source"
	"github.com/riskibarqy/cfb-predictor/internal/platform/logging"
	"golang.org/x/time/rate"
)

// DataProvider fetches one unit of an upstream endpoint. Errors wrapping
// ErrDependencyUnavailable abort the collection; any other error only skips
// the unit.
type DataProvider interface {
	Fetch(ctx context.Context, endpoint source.Endpoint, year int, filters map[string]string) ([]json.RawMessage, error)
}

type CollectorConfig struct {
	StartYear    int
	EndYear      int
	Conferences  []string
	SeasonTypes  []string
	UseWatermark bool
	// CallDelay is the fixed pause between upstream calls.
	CallDelay time.Duration
}

// CollectInput overrides the configured range for one collection.
type CollectInput struct {
	StartYear    int
	EndYear      int
	UseWatermark *bool
	// Tables restricts collection to these raw tables; empty means all.
	Tables []string
}

type CollectTableResult struct {
	Table        string
	Years        []int
	Records      int
	Units        int
	FailedUnits  int
	KeptYears    []int
	SkippedYears []int
}

type CollectResult struct {
	Tables      []CollectTableResult
	Units       int
	FailedUnits int
	Records     int
}

type CollectorService struct {
	repo      rawdata.Repository
	provider  DataProvider
	endpoints []source.Endpoint
	cfg       CollectorConfig
	logger    *logging.Logger
}

func NewCollectorService(
	repo rawdata.Repository,
	provider DataProvider,
	endpoints []source.Endpoint,
	cfg CollectorConfig,
	logger *logging.Logger,
) *CollectorService {
	if logger == nil {
		logger = logging.Default()
	}
	if len(endpoints) == 0 {
		endpoints = source.DefaultEndpoints()
	}
	return &CollectorService{
		repo:      repo,
		provider:  provider,
		endpoints: endpoints,
		cfg:       cfg,
		logger:    logger,
	}
}

type collectUnit struct {
	label   string
	filters map[string]string
}

func (s *CollectorService) Collect(ctx context.Context, input CollectInput) (CollectResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CollectorService.Collect")
	defer span.End()

	startYear, endYear := input.StartYear, input.EndYear
	if startYear == 0 {
		startYear = s.cfg.StartYear
	}
	if endYear == 0 {
		endYear = s.cfg.EndYear
	}
	if startYear <= 0 || endYear < startYear {
		return CollectResult{}, fmt.Errorf("%w: invalid year range %d-%d", ErrInvalidInput, startYear, endYear)
	}
	useWatermark := s.cfg.UseWatermark
	if input.UseWatermark != nil {
		useWatermark = *input.UseWatermark
	}

	endpoints, err := s.selectEndpoints(input.Tables)
	if err != nil {
		return CollectResult{}, err
	}

	limit := rate.Inf
	if s.cfg.CallDelay > 0 {
		limit = rate.Every(s.cfg.CallDelay)
	}
	limiter := rate.NewLimiter(limit, 1)
	teamsByYear := make(map[int][]string)

	var result CollectResult
	for _, endpoint := range endpoints {
		from := startYear
		if useWatermark {
			watermark, ok, err := s.repo.MaxYear(ctx, endpoint.Table)
			if err != nil {
				return result, fmt.Errorf("%w: read watermark table=%s: %v", ErrDependencyUnavailable, endpoint.Table, err)
			}
			// inclusive: the newest stored season may still be in progress
			if ok && watermark > from {
				from = watermark
			}
		}

		tableResult := CollectTableResult{Table: endpoint.Table}
		for year := from; year <= endYear; year++ {
			if !endpoint.Covers(year) {
				s.logger.InfoContext(ctx, "skip year before provider coverage",
					"table", endpoint.Table, "year", year, "coverage_start", endpoint.CoverageStart)
				tableResult.SkippedYears = append(tableResult.SkippedYears, year)
				continue
			}

			units, err := s.units(ctx, endpoint, year, teamsByYear)
			if err != nil {
				return result, err
			}
			if len(units) == 0 {
				s.logger.WarnContext(ctx, "skip year without collection units", "table", endpoint.Table, "year", year)
				tableResult.SkippedYears = append(tableResult.SkippedYears, year)
				continue
			}

			records, failed, err := s.collectYear(ctx, limiter, endpoint, year, units)
			if err != nil {
				return result, err
			}
			tableResult.Units += len(units)
			tableResult.FailedUnits += failed

			if failed == len(units) {
				s.logger.WarnContext(ctx, "every unit failed, keeping stored rows",
					"table", endpoint.Table, "year", year, "units", len(units))
				tableResult.KeptYears = append(tableResult.KeptYears, year)
				continue
			}

			err = s.repo.Write(ctx, rawdata.Write{
				Table:   endpoint.Table,
				Mode:    rawdata.ModeReplaceYear,
				Year:    year,
				Records: records,
			})
			if err != nil {
				return result, fmt.Errorf("%w: write table=%s year=%d: %v", ErrDependencyUnavailable, endpoint.Table, year, err)
			}
			tableResult.Years = append(tableResult.Years, year)
			tableResult.Records += len(records)
			s.logger.InfoContext(ctx, "replaced raw year",
				"table", endpoint.Table,
				"year", year,
				"records", len(records),
				"units", len(units),
				"failed_units", failed,
			)
		}

		result.Tables = append(result.Tables, tableResult)
		result.Units += tableResult.Units
		result.FailedUnits += tableResult.FailedUnits
		result.Records += tableResult.Records
	}
	return result, nil
}

func (s *CollectorService) selectEndpoints(tables []string) ([]source.Endpoint, error) {
	if len(tables) == 0 {
		return s.endpoints, nil
	}
	wanted := make(map[string]struct{}, len(tables))
	for _, table := range tables {
		wanted[strings.TrimSpace(table)] = struct{}{}
	}
	out := make([]source.Endpoint, 0, len(wanted))
	for _, endpoint := range s.endpoints {
		if _, ok := wanted[endpoint.Table]; ok {
			out = append(out, endpoint)
			delete(wanted, endpoint.Table)
		}
	}
	if len(wanted) > 0 {
		unknown := make([]string, 0, len(wanted))
		for table := range wanted {
			unknown = append(unknown, table)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: unknown tables %s", ErrInvalidInput, strings.Join(unknown, ","))
	}
	return out, nil
}

// collectYear fetches every unit of one (endpoint, year), logging and
// counting unit failures.
func (s *CollectorService) collectYear(
	ctx context.Context,
	limiter *rate.Limiter,
	endpoint source.Endpoint,
	year int,
	units []collectUnit,
) ([]rawdata.Record, int, error) {
	var (
		records []rawdata.Record
		failed  int
	)
	for _, unit := range units {
		if err := limiter.Wait(ctx); err != nil {
			return nil, failed, err
		}

		items, err := s.provider.Fetch(ctx, endpoint, year, unit.filters)
		if err != nil {
			if errors.Is(err, ErrDependencyUnavailable) {
				return nil, failed, err
			}
			failed++
			s.logger.WarnContext(ctx, "skip failed collection unit",
				"table", endpoint.Table,
				"year", year,
				"unit", unit.label,
				"error", err,
			)
			continue
		}

		for i, item := range items {
			key := fmt.Sprintf("%s:%d:%s:%d", endpoint.Table, year, unit.label, i)
			records = append(records, rawdata.RecordFromJSON(endpoint.Table, year, key, item))
		}
		s.logger.DebugContext(ctx, "collected unit",
			"table", endpoint.Table, "year", year, "unit", unit.label, "records", len(items))
	}
	return records, failed, nil
}

func (s *CollectorService) units(ctx context.Context, endpoint source.Endpoint, year int, teamsByYear map[int][]string) ([]collectUnit, error) {
	seasonTypes := []string{""}
	if endpoint.BySeasonType && len(s.cfg.SeasonTypes) > 0 {
		seasonTypes = s.cfg.SeasonTypes
	}

	var scopes []collectUnit
	switch endpoint.Scope {
	case source.ScopeYear:
		scopes = []collectUnit{{label: "all"}}
	case source.ScopeYearConference:
		for _, conference := range s.cfg.Conferences {
			scopes = append(scopes, collectUnit{label: conference, filters: map[string]string{"conference": conference}})
		}
	case source.ScopeYearTeam:
		teams, ok := teamsByYear[year]
		if !ok {
			var err error
			teams, err = s.teamsForYear(ctx, year)
			if err != nil {
				return nil, err
			}
			teamsByYear[year] = teams
		}
		for _, team := range teams {
			scopes = append(scopes, collectUnit{label: team, filters: map[string]string{"team": team}})
		}
	default:
		return nil, fmt.Errorf("%w: endpoint %s has unknown scope %s", ErrInvalidInput, endpoint.Table, endpoint.Scope)
	}

	units := make([]collectUnit, 0, len(scopes)*len(seasonTypes))
	for _, scope := range scopes {
		for _, seasonType := range seasonTypes {
			filters := make(map[string]string, len(scope.filters)+len(endpoint.Params)+1)
			for k, v := range endpoint.Params {
				filters[k] = v
			}
			for k, v := range scope.filters {
				filters[k] = v
			}
			label := scope.label
			if seasonType != "" {
				filters["seasonType"] = seasonType
				label += "/" + seasonType
			}
			units = append(units, collectUnit{label: label, filters: filters})
		}
	}
	return units, nil
}

// teamsForYear lists teams of the configured conferences from stored games.
func (s *CollectorService) teamsForYear(ctx context.Context, year int) ([]string, error) {
	records, err := s.repo.Read(ctx, source.TableGames)
	if err != nil {
		if errors.Is(err, rawdata.ErrCorruptPayload) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: read games for team list: %v", ErrDependencyUnavailable, err)
	}

	yearRecords := records[:0:0]
	for _, record := range records {
		if record.Year == year {
			yearRecords = append(yearRecords, record)
		}
	}
	games, err := rawdata.Decode[source.Game](yearRecords)
	if err != nil {
		return nil, err
	}

	conferences := make(map[string]struct{}, len(s.cfg.Conferences))
	for _, c := range s.cfg.Conferences {
		conferences[strings.ToLower(c)] = struct{}{}
		conferences[strings.ToLower(source.ConferenceName(c))] = struct{}{}
	}
	inScope := func(conference *string) bool {
		if len(conferences) == 0 {
			return true
		}
		if conference == nil {
			return false
		}
		_, ok := conferences[strings.ToLower(*conference)]
		return ok
	}

	seen := make(map[string]struct{})
	for _, g := range games {
		if inScope(g.HomeConference) && g.HomeTeam != "" {
			seen[g.HomeTeam] = struct{}{}
		}
		if inScope(g.AwayConference) && g.AwayTeam != "" {
			seen[g.AwayTeam] = struct{}{}
		}
	}
	teams := make([]string, 0, len(seen))
	for team := range seen {
		teams = append(teams, team)
	}
	sort.Strings(teams)
	return teams, nil
}

// String renders a compact summary for logs and run records.
func (r CollectResult) String() string {
	var b strings.Builder
	b.WriteString("units=" + strconv.Itoa(r.Units))
	b.WriteString(" failed=" + strconv.Itoa(r.FailedUnits))
	b.WriteString(" records=" + strconv.Itoa(r.Records))
	return b.String()
}
