package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Dolphinator7/airtable-automation/internal/logger"
	"github.com/Dolphinator7/airtable-automation/internal/metrics"
	"github.com/Dolphinator7/airtable-automation/internal/pipeline"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var errExit = errors.New("exit requested")

// operation is implemented by every pipeline runner.
type operation interface {
	Run(ctx context.Context) (*pipeline.Report, error)
}

// environment is what every operation is built from.
type environment struct {
	cmd     *cobra.Command
	config  *Config
	logger  *zap.Logger
	deps    pipeline.Deps
	metrics *metrics.Recorder
}

type builder func(ctx context.Context, env *environment) (operation, error)

// run builds the shared dependencies, then runs a single pipeline operation.
func run(cmd *cobra.Command, name string, build builder) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := zap.String(logger.FieldRunID, uuid.NewString())

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger = logger.With(runID)

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting the airtable-automation", zap.String("version", version), zap.String("operation", name))

	store, err := newStore(config.Airtable, logger)
	if err != nil {
		logger.Fatal(
			"configuring airtable",
			zap.Error(err),
			zap.String("hint", "set AIRTABLE_API_KEY and BASE_ID environment variables or the airtable section in the configuration file"),
		)
	}

	recorder := metrics.New()
	env := &environment{
		cmd:     cmd,
		config:  config,
		logger:  logger,
		metrics: recorder,
		deps: pipeline.Deps{
			Store:   store,
			Tables:  config.Airtable.Tables,
			Logger:  logger,
			Metrics: recorder,
		},
	}

	op, err := build(ctx, env)
	if err != nil {
		if errors.Is(err, errExit) {
			return
		}
		logger.Fatal("preparing "+name, zap.Error(err))
	}

	report, err := op.Run(ctx)
	writeMetrics(config.MetricsFile, recorder, logger)
	if err != nil {
		logger.Fatal(name+" aborted", zap.Error(err))
	}

	if report.Failed > 0 {
		logger.Warn("some applicants were not processed", report.Fields()...)
	}
}

func writeMetrics(path string, recorder *metrics.Recorder, logger *zap.Logger) {
	if path == "" {
		return
	}

	if err := recorder.WriteToTextfile(path); err != nil {
		logger.Warn("writing metrics file", zap.String("file", path), zap.Error(err))
		return
	}

	logger.Debug("metrics file written", zap.String("file", path))
}
