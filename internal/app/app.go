package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/cfb-predictor/external/cfbd"
	"github.com/riskibarqy/cfb-predictor/internal/config"
	"github.com/riskibarqy/cfb-predictor/internal/domain/pipelinerun"
	"github.com/riskibarqy/cfb-predictor/internal/domain/rawdata"
	"github.com/riskibarqy/cfb-predictor/internal/domain/relational"
	"github.com/riskibarqy/cfb-predictor/internal/infrastructure/export"
	"github.com/riskibarqy/cfb-predictor/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/cfb-predictor/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/cfb-predictor/internal/platform/cache"
	idgen "github.com/riskibarqy/cfb-predictor/internal/platform/id"
	"github.com/riskibarqy/cfb-predictor/internal/platform/logging"
	"github.com/riskibarqy/cfb-predictor/internal/platform/resilience"
	"github.com/riskibarqy/cfb-predictor/internal/platform/runlock"
	"github.com/riskibarqy/cfb-predictor/internal/usecase"
)

const cacheKeyPrefix = "cfb-predictor:cfbd:"

// Pipeline holds the wired services of one process.
type Pipeline struct {
	Service *usecase.PipelineService
	Runs    pipelinerun.Repository

	closers []func() error
}

// Close releases every connection opened by NewPipeline.
func (p *Pipeline) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewPipeline builds the store, provider client and stage runner from cfg.
func NewPipeline(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = logging.Default()
	}
	p := &Pipeline{}

	var (
		repo    rawdata.Repository
		runRepo pipelinerun.Repository
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		repo = memory.NewTableRepository()
		runRepo = memory.NewPipelineRunRepository()
	default:
		db, err := OpenDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, db.Close)
		repo = postgres.NewTableRepository(db)
		runRepo = postgres.NewPipelineRunRepository(db)
	}
	p.Runs = runRepo

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			_ = p.Close()
			return nil, err
		}
		redisClient = client
		p.closers = append(p.closers, client.Close)
	}

	var responseCache *cache.Store
	if cfg.CFBDCacheTTL > 0 {
		var backend cache.Backend = cache.NewMemoryBackend(cfg.CFBDCacheTTL)
		if redisClient != nil {
			backend = cache.NewRedisBackend(redisClient, cacheKeyPrefix, cfg.CFBDCacheTTL)
		}
		responseCache = cache.NewStore(backend)
	}

	client := cfbd.NewClient(cfbd.ClientConfig{
		BaseURL:    cfg.CFBDBaseURL,
		APIKey:     cfg.CFBDAPIKey,
		Timeout:    cfg.CFBDTimeout,
		MaxRetries: cfg.CFBDMaxRetries,
		Logger:     logger.Named("cfbd"),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.CFBDCircuitEnabled,
			FailureThreshold: cfg.CFBDCircuitFailureCount,
			OpenTimeout:      cfg.CFBDCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.CFBDCircuitHalfOpenMaxReq,
		},
		Cache: responseCache,
	})

	var aliases []relational.Alias
	if path := strings.TrimSpace(cfg.TeamCrosswalkPath); path != "" {
		loaded, err := relational.LoadAliases(path)
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("load team crosswalk: %w", err)
		}
		aliases = loaded
		logger.Info("team crosswalk loaded", "path", path, "aliases", len(aliases))
	}

	var locker usecase.RunLocker = runlock.NewLocal()
	if redisClient != nil {
		locker = runlock.NewRedis(redisClient, cfg.RunLockTTL)
	}

	var exporter usecase.ArtifactExporter
	if cfg.FeatureExportPath != "" {
		exporter = export.NewCSVWriter(cfg.FeatureExportPath)
	}

	collector := usecase.NewCollectorService(repo, client, nil, usecase.CollectorConfig{
		StartYear:    cfg.StartYear,
		EndYear:      cfg.EndYear,
		Conferences:  cfg.Conferences,
		SeasonTypes:  cfg.SeasonTypes,
		UseWatermark: cfg.UseWatermark,
		CallDelay:    cfg.CFBDCallDelay,
	}, logger.Named("collector"))

	p.Service = usecase.NewPipelineService(
		repo,
		collector,
		runRepo,
		locker,
		exporter,
		idgen.NewRandomGenerator(),
		usecase.PipelineConfig{
			Aliases:        aliases,
			FeatureWorkers: cfg.FeatureWorkers,
		},
		logger.Named("pipeline"),
	)
	return p, nil
}
