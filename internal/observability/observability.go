package observability

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/cfb-predictor/internal/config"
	"github.com/riskibarqy/cfb-predictor/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"
)

// Setup starts tracing and profiling as configured and returns a single
// shutdown func that flushes both. Disabled backends cost nothing.
func Setup(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	stopTracing := startTracing(cfg, logger)
	stopProfiling, err := startProfiling(cfg, logger)
	if err != nil {
		_ = stopTracing(context.Background())
		return nil, err
	}

	return func(ctx context.Context) error {
		return errors.Join(stopProfiling(), stopTracing(ctx))
	}, nil
}

func startTracing(cfg config.Config, logger *logging.Logger) func(context.Context) error {
	if !cfg.UptraceEnabled || strings.TrimSpace(cfg.UptraceDSN) == "" {
		logger.Debug("tracing disabled")
		return func(context.Context) error { return nil }
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithResourceAttributes(attribute.String("pipeline.store", cfg.StoreDriver)),
	)
	logger.Info("tracing enabled", "exporter", "uptrace", "service_name", cfg.ServiceName)
	return uptrace.Shutdown
}

func startProfiling(cfg config.Config, logger *logging.Logger) (func() error, error) {
	if !cfg.PyroscopeEnabled {
		logger.Debug("profiling disabled")
		return func() error { return nil }, nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags: map[string]string{
			"env":   cfg.AppEnv,
			"store": cfg.StoreDriver,
		},
		// backfills are allocation heavy; goroutine profiles add little
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope: %w", err)
	}
	logger.Info("profiling enabled", "server_address", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)
	return profiler.Stop, nil
}
