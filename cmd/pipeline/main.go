// Command pipeline builds the college football feature tables.
//
// Usage:
//
//	pipeline collect --start-year 2015 --end-year 2023
//	pipeline normalize
//	pipeline transform
//	pipeline clean
//	pipeline features
//	pipeline run --skip-collect
//	pipeline runs --stage features --limit 5
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/cfb-predictor/internal/app"
	"github.com/riskibarqy/cfb-predictor/internal/config"
	"github.com/riskibarqy/cfb-predictor/internal/observability"
	"github.com/riskibarqy/cfb-predictor/internal/platform/logging"
	"github.com/riskibarqy/cfb-predictor/internal/usecase"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load(".env")

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "pipeline",
		Short:         "College football feature pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.Store, "store", "", "store driver override (postgres|memory)")

	root.AddCommand(
		collectCmd(opts, out),
		stageCmd(opts, out, "normalize", "Rebuild the relational tables from raw data", func(ctx context.Context, svc *usecase.PipelineService) (any, error) {
			return svc.Normalize(ctx)
		}),
		stageCmd(opts, out, "transform", "Rebuild the team-game table", func(ctx context.Context, svc *usecase.PipelineService) (any, error) {
			return svc.Transform(ctx)
		}),
		stageCmd(opts, out, "clean", "Rebuild the cleaned team-game table", func(ctx context.Context, svc *usecase.PipelineService) (any, error) {
			return svc.Clean(ctx)
		}),
		stageCmd(opts, out, "features", "Rebuild the feature table and export it", func(ctx context.Context, svc *usecase.PipelineService) (any, error) {
			return svc.Features(ctx)
		}),
		runCmd(opts, out),
		runsCmd(opts, out),
	)
	return root
}

func collectCmd(opts *options, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Fetch raw tables from the data provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd, opts, out, func(ctx context.Context, p *app.Pipeline) (any, error) {
				result, err := p.Service.Collect(ctx, opts.collectInput(cmd))
				if err != nil {
					return nil, err
				}
				logging.Default().InfoContext(ctx, "collect finished", "summary", result.String())
				return result, nil
			})
		},
	}
	bindCollectFlags(cmd, opts)
	return cmd
}

func stageCmd(opts *options, out io.Writer, use, short string, fn func(context.Context, *usecase.PipelineService) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd, opts, out, func(ctx context.Context, p *app.Pipeline) (any, error) {
				return fn(ctx, p.Service)
			})
		},
	}
}

func runCmd(opts *options, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every stage in order under one lock",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd, opts, out, func(ctx context.Context, p *app.Pipeline) (any, error) {
				return p.Service.Run(ctx, usecase.RunInput{
					Collect:     opts.collectInput(cmd),
					SkipCollect: opts.SkipCollect,
				})
			})
		},
	}
	bindCollectFlags(cmd, opts)
	cmd.Flags().BoolVar(&opts.SkipCollect, "skip-collect", false, "start from the stored raw tables")
	return cmd
}

func runsCmd(opts *options, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded stage runs, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd, opts, out, func(ctx context.Context, p *app.Pipeline) (any, error) {
				return p.Runs.ListByStage(ctx, opts.Stage, opts.Limit)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Stage, "stage", "", "only runs of this stage")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list")
	return cmd
}

func bindCollectFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().IntVar(&opts.StartYear, "start-year", 0, "first season to collect (default from PIPELINE_START_YEAR)")
	cmd.Flags().IntVar(&opts.EndYear, "end-year", 0, "last season to collect (default from PIPELINE_END_YEAR)")
	cmd.Flags().BoolVar(&opts.UseWatermark, "use-watermark", true, "resume each table from its newest stored season")
	cmd.Flags().StringSliceVar(&opts.Tables, "tables", nil, "raw tables to collect (default all)")
}

// execute loads config, wires the pipeline and prints the stage result as
// JSON. Only fatal stage errors reach the caller.
func execute(cmd *cobra.Command, opts *options, out io.Writer, fn func(context.Context, *app.Pipeline) (any, error)) error {
	if err := opts.validate(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		return err
	}
	if opts.Store != "" {
		cfg.StoreDriver = opts.Store
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.AppEnv)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(cfg, logger)
	if err != nil {
		logger.Error("init observability", "error", err)
		return err
	}
	defer func() {
		if err := shutdownTelemetry(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("shutdown observability", "error", err)
		}
	}()

	pipeline, err := app.NewPipeline(ctx, cfg, logger)
	if err != nil {
		logger.Error("build pipeline", "error", err)
		return err
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			logger.Warn("close pipeline", "error", err)
		}
	}()

	result, err := fn(ctx, pipeline)
	if err != nil {
		logger.ErrorContext(ctx, "stage failed", "command", cmd.Name(), "error", err)
		return err
	}
	return printJSON(out, result)
}

func printJSON(out io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
