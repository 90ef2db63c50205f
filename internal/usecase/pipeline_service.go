package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/cfb-predictor/internal/domain/cleaning"
	"github.com/riskibarqy/cfb-predictor/internal/domain/feature"
	"github.com/riskibarqy/cfb-predictor/internal/domain/pipelinerun"
	"github.com/riskibarqy/cfb-predictor/internal/domain/rawdata"
	"github.com/riskibarqy/cfb-predictor/internal/domain/relational"
	"github.com/riskibarqy/cfb-predictor/internal/domain/source"
	"github.com/riskibarqy/cfb-predictor/internal/domain/teamgame"
	"github.com/riskibarqy/cfb-predictor/internal/platform/id"
	"github.com/riskibarqy/cfb-predictor/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

// Stage names, in run order.
const (
	StageCollect   = "collect"
	StageNormalize = "normalize"
	StageTransform = "transform"
	StageClean     = "clean"
	StageFeatures  = "features"
	StageRun       = "run"
)

const pipelineLockKey = "cfb-predictor:pipeline"

// RunLocker serializes pipeline invocations against one store. release is
// nil when ok is false.
type RunLocker interface {
	TryLock(ctx context.Context, key string) (release func(context.Context) error, ok bool, err error)
}

// ArtifactExporter publishes the selected feature table outside the store.
type ArtifactExporter interface {
	Export(ctx context.Context, artifact feature.Artifact) (string, error)
}

type noopRunLocker struct{}

func (noopRunLocker) TryLock(_ context.Context, _ string) (func(context.Context) error, bool, error) {
	return func(context.Context) error { return nil }, true, nil
}

type PipelineConfig struct {
	Aliases        []relational.Alias
	Rules          cleaning.Rules
	Catalog        []feature.Spec
	Selection      []string
	FeatureWorkers int
}

type RunInput struct {
	Collect     CollectInput
	SkipCollect bool
}

type NormalizeResult struct {
	Tables map[string]int    `json:"tables"`
	Report relational.Report `json:"report"`
}

type TransformResult struct {
	Report teamgame.Report `json:"report"`
}

type CleanResult struct {
	Report cleaning.Report `json:"report"`
}

type FeaturesResult struct {
	Rows        int               `json:"rows"`
	Numeric     int               `json:"numeric_columns"`
	Categorical int               `json:"categorical_columns"`
	Missing     []string          `json:"missing_columns,omitempty"`
	Skipped     []feature.Skipped `json:"skipped_features,omitempty"`
	ExportPath  string            `json:"export_path,omitempty"`
}

type RunResult struct {
	Collect   *CollectResult  `json:"collect,omitempty"`
	Normalize NormalizeResult `json:"normalize"`
	Transform TransformResult `json:"transform"`
	Clean     CleanResult     `json:"clean"`
	Features  FeaturesResult  `json:"features"`
}

type PipelineService struct {
	repo      rawdata.Repository
	collector *CollectorService
	runRepo   pipelinerun.Repository
	locker    RunLocker
	exporter  ArtifactExporter
	ids       id.Generator
	cfg       PipelineConfig
	logger    *logging.Logger
	now       func() time.Time
}

// NewPipelineService wires the stage runner. runRepo and exporter may be nil.
func NewPipelineService(
	repo rawdata.Repository,
	collector *CollectorService,
	runRepo pipelinerun.Repository,
	locker RunLocker,
	exporter ArtifactExporter,
	ids id.Generator,
	cfg PipelineConfig,
	logger *logging.Logger,
) *PipelineService {
	if locker == nil {
		locker = noopRunLocker{}
	}
	if ids == nil {
		ids = id.NewRandomGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Rules.VenueSentinel == "" {
		cfg.Rules = cleaning.DefaultRules()
	}
	if len(cfg.Catalog) == 0 {
		cfg.Catalog = feature.DefaultCatalog()
	}
	if len(cfg.Selection) == 0 {
		cfg.Selection = feature.DefaultSelection(cfg.Catalog)
	}

	return &PipelineService{
		repo:      repo,
		collector: collector,
		runRepo:   runRepo,
		locker:    locker,
		exporter:  exporter,
		ids:       ids,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *PipelineService) Collect(ctx context.Context, input CollectInput) (CollectResult, error) {
	var result CollectResult
	err := s.locked(ctx, StageCollect, func(ctx context.Context) (any, error) {
		var err error
		result, err = s.collect(ctx, input)
		return result, err
	})
	return result, err
}

func (s *PipelineService) Normalize(ctx context.Context) (NormalizeResult, error) {
	var result NormalizeResult
	err := s.locked(ctx, StageNormalize, func(ctx context.Context) (any, error) {
		var err error
		result, err = s.normalize(ctx)
		return result, err
	})
	return result, err
}

func (s *PipelineService) Transform(ctx context.Context) (TransformResult, error) {
	var result TransformResult
	err := s.locked(ctx, StageTransform, func(ctx context.Context) (any, error) {
		var err error
		result, err = s.transform(ctx)
		return result, err
	})
	return result, err
}

func (s *PipelineService) Clean(ctx context.Context) (CleanResult, error) {
	var result CleanResult
	err := s.locked(ctx, StageClean, func(ctx context.Context) (any, error) {
		var err error
		result, err = s.clean(ctx)
		return result, err
	})
	return result, err
}

func (s *PipelineService) Features(ctx context.Context) (FeaturesResult, error) {
	var result FeaturesResult
	err := s.locked(ctx, StageFeatures, func(ctx context.Context) (any, error) {
		var err error
		result, err = s.features(ctx)
		return result, err
	})
	return result, err
}

// Run executes every stage in order under one lock. A failing stage stops
// the run; tables of completed stages stay replaced.
func (s *PipelineService) Run(ctx context.Context, input RunInput) (RunResult, error) {
	var result RunResult
	err := s.locked(ctx, StageRun, func(ctx context.Context) (any, error) {
		if !input.SkipCollect {
			collected, err := s.tracked(ctx, StageCollect, func(ctx context.Context) (any, error) {
				return s.collect(ctx, input.Collect)
			})
			if err != nil {
				return result, err
			}
			c := collected.(CollectResult)
			result.Collect = &c
		}

		normalized, err := s.tracked(ctx, StageNormalize, func(ctx context.Context) (any, error) { return s.normalize(ctx) })
		if err != nil {
			return result, err
		}
		result.Normalize = normalized.(NormalizeResult)

		transformed, err := s.tracked(ctx, StageTransform, func(ctx context.Context) (any, error) { return s.transform(ctx) })
		if err != nil {
			return result, err
		}
		result.Transform = transformed.(TransformResult)

		cleaned, err := s.tracked(ctx, StageClean, func(ctx context.Context) (any, error) { return s.clean(ctx) })
		if err != nil {
			return result, err
		}
		result.Clean = cleaned.(CleanResult)

		engineered, err := s.tracked(ctx, StageFeatures, func(ctx context.Context) (any, error) { return s.features(ctx) })
		if err != nil {
			return result, err
		}
		result.Features = engineered.(FeaturesResult)
		return result, nil
	})
	return result, err
}

// locked takes the run lock and tracks fn as one stage.
func (s *PipelineService) locked(ctx context.Context, stage string, fn func(ctx context.Context) (any, error)) error {
	release, ok, err := s.locker.TryLock(ctx, pipelineLockKey)
	if err != nil {
		return fmt.Errorf("%w: acquire run lock: %v", ErrDependencyUnavailable, err)
	}
	if !ok {
		return fmt.Errorf("%w: stage=%s", ErrRunInProgress, stage)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.WarnContext(ctx, "release run lock failed", "stage", stage, "error", err)
		}
	}()

	_, err = s.tracked(ctx, stage, fn)
	return err
}

// tracked wraps one stage with a span, a completion log line and a run record.
func (s *PipelineService) tracked(ctx context.Context, stage string, fn func(ctx context.Context) (any, error)) (any, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService."+stage, attribute.String("pipeline.stage", stage))

	startedAt := s.now()
	result, err := fn(ctx)
	finishedAt := s.now()
	endUsecaseSpan(span, err)

	status := pipelinerun.StatusSucceeded
	if err != nil {
		status = pipelinerun.StatusFailed
		s.logger.ErrorContext(ctx, "pipeline stage failed", "stage", stage, "duration", finishedAt.Sub(startedAt), "error", err)
	} else {
		s.logger.InfoContext(ctx, "pipeline stage finished", "stage", stage, "duration", finishedAt.Sub(startedAt))
	}
	s.record(ctx, stage, startedAt, finishedAt, status, result, err)
	return result, err
}

func (s *PipelineService) record(ctx context.Context, stage string, startedAt, finishedAt time.Time, status pipelinerun.Status, result any, stageErr error) {
	if s.runRepo == nil {
		return
	}
	runID, err := s.ids.NewID()
	if err != nil {
		s.logger.WarnContext(ctx, "generate run id failed", "stage", stage, "error", err)
		return
	}
	run := pipelinerun.Run{
		ID:         runID,
		Stage:      stage,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Status:     status,
		Summary:    "{}",
	}
	if result != nil {
		if summary, err := sonic.ConfigStd.MarshalToString(result); err == nil {
			run.Summary = summary
		}
	}
	if stageErr != nil {
		run.Error = stageErr.Error()
	}
	if err := s.runRepo.Create(context.WithoutCancel(ctx), run); err != nil {
		s.logger.WarnContext(ctx, "record pipeline run failed", "stage", stage, "error", err)
	}
}

func (s *PipelineService) collect(ctx context.Context, input CollectInput) (CollectResult, error) {
	if s.collector == nil {
		return CollectResult{}, fmt.Errorf("%w: collector is not configured", ErrInvalidInput)
	}
	return s.collector.Collect(ctx, input)
}

func (s *PipelineService) normalize(ctx context.Context) (NormalizeResult, error) {
	snap, err := s.readSnapshot(ctx)
	if err != nil {
		return NormalizeResult{}, err
	}

	tables, report := relational.Normalize(snap, s.cfg.Aliases)
	if report.MalformedStats > 0 {
		s.logger.WarnContext(ctx, "dropped malformed stat entries", "count", report.MalformedStats)
	}
	if len(report.ExtraCategories) > 0 {
		s.logger.InfoContext(ctx, "kept unknown stat categories in extension map", "categories", report.ExtraCategories)
	}
	if len(report.UnresolvedTeams) > 0 {
		s.logger.WarnContext(ctx, "unresolved team names", "count", len(report.UnresolvedTeams), "teams", report.UnresolvedTeams)
	}
	if report.CrosswalkConflicts > 0 {
		s.logger.WarnContext(ctx, "conflicting team crosswalk entries ignored", "count", report.CrosswalkConflicts)
	}

	writes := make([]rawdata.Write, 0, 9)
	var encodeErr error
	add := func(w rawdata.Write, err error) {
		if err != nil && encodeErr == nil {
			encodeErr = err
		}
		writes = append(writes, w)
	}
	add(replaceAll(relational.TableGames, tables.Games, func(r relational.GameRow) int { return r.Season }))
	add(replaceAll(relational.TableBoxScores, tables.BoxScores, nil))
	add(replaceAll(relational.TableAdvanced, tables.Advanced, func(r relational.AdvancedRow) int { return r.Season }))
	add(replaceAll(relational.TableTalent, tables.Talent, func(r relational.TalentRow) int { return r.Season }))
	add(replaceAll(relational.TableRecruiting, tables.Recruiting, func(r relational.RecruitingRow) int { return r.Season }))
	add(replaceAll(relational.TableRatings, tables.Ratings, func(r relational.RatingRow) int { return r.Season }))
	add(replaceAll(relational.TableBettingLines, tables.Lines, func(r relational.LineRow) int { return r.Season }))
	add(replaceAll(relational.TablePregameWinProb, tables.PregameWP, func(r relational.PregameWinProbRow) int { return r.Season }))
	add(replaceAll(relational.TableTeamCrosswalk, tables.Crosswalk, nil))
	if encodeErr != nil {
		return NormalizeResult{}, encodeErr
	}
	if err := s.write(ctx, StageNormalize, writes...); err != nil {
		return NormalizeResult{}, err
	}

	counts := make(map[string]int, len(writes))
	for _, w := range writes {
		counts[w.Table] = len(w.Records)
		s.logger.InfoContext(ctx, "replaced derived table", "stage", StageNormalize, "table", w.Table, "rows", len(w.Records))
	}
	return NormalizeResult{Tables: counts, Report: report}, nil
}

var ratingTables = map[string]string{
	source.TableEloRatings: relational.RatingElo,
	source.TableSPRatings:  relational.RatingSP,
	source.TableSRSRatings: relational.RatingSRS,
	source.TableFPIRatings: relational.RatingFPI,
}

// readSnapshot decodes every raw table concurrently. The first failure
// cancels the remaining reads.
func (s *PipelineService) readSnapshot(ctx context.Context) (relational.Snapshot, error) {
	var (
		snap    relational.Snapshot
		elo     []source.Rating
		sp      []source.Rating
		srs     []source.Rating
		fpi     []source.Rating
		ratings = map[string]*[]source.Rating{
			relational.RatingElo: &elo,
			relational.RatingSP:  &sp,
			relational.RatingSRS: &srs,
			relational.RatingFPI: &fpi,
		}
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error { return readTable(ctx, s.repo, source.TableGames, &snap.Games) })
	p.Go(func(ctx context.Context) error {
		return readTable(ctx, s.repo, source.TableTeamGameStats, &snap.TeamGameStats)
	})
	p.Go(func(ctx context.Context) error {
		return readTable(ctx, s.repo, source.TableAdvancedTeamGameStats, &snap.Advanced)
	})
	p.Go(func(ctx context.Context) error { return readTable(ctx, s.repo, source.TableTalent, &snap.Talent) })
	p.Go(func(ctx context.Context) error {
		return readTable(ctx, s.repo, source.TableRecruiting, &snap.Recruiting)
	})
	p.Go(func(ctx context.Context) error { return readTable(ctx, s.repo, source.TableBettingLines, &snap.Lines) })
	p.Go(func(ctx context.Context) error {
		return readTable(ctx, s.repo, source.TablePregameWinProbability, &snap.PregameWP)
	})
	for table, system := range ratingTables {
		table := table
		dst := ratings[system]
		p.Go(func(ctx context.Context) error { return readTable(ctx, s.repo, table, dst) })
	}
	if err := p.Wait(); err != nil {
		return relational.Snapshot{}, err
	}

	snap.Ratings = make(map[string][]source.Rating, len(ratings))
	for system, rows := range ratings {
		if len(*rows) > 0 {
			snap.Ratings[system] = *rows
		}
	}
	return snap, nil
}

func (s *PipelineService) transform(ctx context.Context) (TransformResult, error) {
	var tables relational.Tables
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error { return readTable(ctx, s.repo, relational.TableGames, &tables.Games) })
	p.Go(func(ctx context.Context) error {
		return readTable(ctx, s.repo, relational.TableBoxScores, &tables.BoxScores)
	})
	p.Go(func(ctx context.Context) error {
		return readTable(ctx, s.repo, relational.TableAdvanced, &tables.Advanced)
	})
	p.Go(func(ctx context.Context) error { return readTable(ctx, s.repo, relational.TableTalent, &tables.Talent) })
	p.Go(func(ctx context.Context) error {
		return readTable(ctx, s.repo, relational.TableRecruiting, &tables.Recruiting)
	})
	p.Go(func(ctx context.Context) error {
		return readTable(ctx, s.repo, relational.TableRatings, &tables.Ratings)
	})
	p.Go(func(ctx context.Context) error {
		return readTable(ctx, s.repo, relational.TableBettingLines, &tables.Lines)
	})
	p.Go(func(ctx context.Context) error {
		return readTable(ctx, s.repo, relational.TablePregameWinProb, &tables.PregameWP)
	})
	if err := p.Wait(); err != nil {
		return TransformResult{}, err
	}

	records, report, err := teamgame.Transform(tables)
	if err != nil {
		return TransformResult{}, fmt.Errorf("transform team games: %w", err)
	}
	if report.MissingAdvanced > 0 || report.MissingBoxScores > 0 {
		s.logger.WarnContext(ctx, "team games without joined stats",
			"missing_box_scores", report.MissingBoxScores,
			"missing_advanced", report.MissingAdvanced,
		)
	}
	if report.UnjoinableStatRows > 0 {
		s.logger.WarnContext(ctx, "stat rows without a team id were not joined", "count", report.UnjoinableStatRows)
	}

	w, err := replaceAll(teamgame.TableTeamGames, records, func(r teamgame.Record) int { return r.Season })
	if err != nil {
		return TransformResult{}, err
	}
	if err := s.write(ctx, StageTransform, w); err != nil {
		return TransformResult{}, err
	}
	s.logger.InfoContext(ctx, "replaced derived table",
		"stage", StageTransform,
		"table", teamgame.TableTeamGames,
		"rows", len(records),
		"completed_games", report.CompletedGames,
	)
	return TransformResult{Report: report}, nil
}

func (s *PipelineService) clean(ctx context.Context) (CleanResult, error) {
	var records []teamgame.Record
	if err := readTable(ctx, s.repo, teamgame.TableTeamGames, &records); err != nil {
		return CleanResult{}, err
	}

	cleaned, report := cleaning.NewCleaner(s.cfg.Rules).Clean(records)
	for reason, n := range report.Dropped {
		if n > 0 {
			s.logger.WarnContext(ctx, "dropped rows", "stage", StageClean, "reason", reason, "rows", n)
		}
	}
	for _, column := range report.SkippedColumns {
		s.logger.WarnContext(ctx, "column absent, step skipped", "stage", StageClean, "column", column)
	}

	w, err := replaceAll(teamgame.TableCleaned, cleaned, func(r teamgame.Record) int { return r.Season })
	if err != nil {
		return CleanResult{}, err
	}
	if err := s.write(ctx, StageClean, w); err != nil {
		return CleanResult{}, err
	}
	s.logger.InfoContext(ctx, "replaced derived table",
		"stage", StageClean, "table", teamgame.TableCleaned, "rows", len(cleaned), "input_rows", report.InputRows)
	return CleanResult{Report: report}, nil
}

func (s *PipelineService) features(ctx context.Context) (FeaturesResult, error) {
	var records []teamgame.Record
	if err := readTable(ctx, s.repo, teamgame.TableCleaned, &records); err != nil {
		return FeaturesResult{}, err
	}

	table, err := feature.NewEngine(s.cfg.FeatureWorkers).Compute(ctx, records, s.cfg.Catalog)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return FeaturesResult{}, err
		}
		return FeaturesResult{}, fmt.Errorf("%w: compute features: %v", ErrInvalidInput, err)
	}
	for _, skipped := range table.Skipped {
		s.logger.WarnContext(ctx, "feature skipped", "feature", skipped.Name, "reason", skipped.Reason)
	}

	artifact := feature.NewSelector(s.cfg.Selection).Select(table)
	if len(artifact.Missing) > 0 {
		s.logger.WarnContext(ctx, "selected columns absent from feature table", "columns", artifact.Missing)
	}

	w, err := replaceAll(feature.TableFeatures, artifact.Rows, func(r feature.Row) int { return r.Season })
	if err != nil {
		return FeaturesResult{}, err
	}
	if err := s.write(ctx, StageFeatures, w); err != nil {
		return FeaturesResult{}, err
	}

	result := FeaturesResult{
		Rows:        len(artifact.Rows),
		Numeric:     len(artifact.Numeric),
		Categorical: len(artifact.Categorical),
		Missing:     artifact.Missing,
		Skipped:     table.Skipped,
	}
	if s.exporter != nil {
		path, err := s.exporter.Export(ctx, artifact)
		if err != nil {
			return result, fmt.Errorf("export feature artifact: %w", err)
		}
		result.ExportPath = path
	}
	s.logger.InfoContext(ctx, "replaced derived table",
		"stage", StageFeatures,
		"table", feature.TableFeatures,
		"rows", result.Rows,
		"numeric_columns", result.Numeric,
		"categorical_columns", result.Categorical,
	)
	return result, nil
}

func (s *PipelineService) write(ctx context.Context, stage string, writes ...rawdata.Write) error {
	if err := s.repo.Write(ctx, writes...); err != nil {
		return fmt.Errorf("%w: replace %s tables: %v", ErrDependencyUnavailable, stage, err)
	}
	return nil
}

func readTable[T any](ctx context.Context, repo rawdata.Repository, table string, dst *[]T) error {
	records, err := repo.Read(ctx, table)
	if err != nil {
		if errors.Is(err, rawdata.ErrCorruptPayload) {
			return err
		}
		return fmt.Errorf("%w: read table=%s: %v", ErrDependencyUnavailable, table, err)
	}
	rows, err := rawdata.Decode[T](records)
	if err != nil {
		return err
	}
	*dst = rows
	return nil
}

func replaceAll[T any](table string, rows []T, yearOf func(T) int) (rawdata.Write, error) {
	records, err := rawdata.Encode(table, rows, yearOf, nil)
	if err != nil {
		return rawdata.Write{}, err
	}
	return rawdata.Write{Table: table, Mode: rawdata.ModeReplaceAll, Records: records}, nil
}
