package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codexec/internal/app/executor"
	"codexec/internal/config"
	"codexec/internal/dedup"
	"codexec/internal/domain/execution"
	"codexec/internal/engine"
	"codexec/internal/harness"
	"codexec/internal/infra/kafka"
	"codexec/internal/inputresolver"
	"codexec/internal/pipeline"
	"codexec/internal/registry"
	"codexec/internal/sandbox"
	"codexec/internal/workspace"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Consume scripts from Kafka, execute them sandboxed, and publish results",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPathFlag)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := buildLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg, err := registry.New()
	if err != nil {
		return fmt.Errorf("building registry: %w", err)
	}

	ws, err := workspace.NewManager(cfg.WorkspaceRoot)
	if err != nil {
		return fmt.Errorf("building workspace manager: %w", err)
	}

	sb := sandbox.NewExecutor()
	sb.Binary = cfg.DockerBinary

	pl := pipeline.New(ws, sb)
	pl.Logger = logger
	h := harness.New(ws, sb)
	h.Logger = logger
	eng := engine.New(reg, inputresolver.New(), pl, h)
	deduping := engine.NewDeduping(eng, dedup.New(cfg.DedupTTL))

	consumer, err := kafka.NewConsumer(kafka.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.ScriptsTopic,
		GroupID: cfg.Kafka.GroupID,
	})
	if err != nil {
		return fmt.Errorf("building kafka consumer: %w", err)
	}
	defer func() {
		if cerr := consumer.Close(); cerr != nil {
			logger.Warn("closing kafka consumer", zap.Error(cerr))
		}
	}()

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.ResultsTopic,
	})
	if err != nil {
		return fmt.Errorf("building kafka publisher: %w", err)
	}
	defer func() {
		if cerr := publisher.Close(); cerr != nil {
			logger.Warn("closing kafka publisher", zap.Error(cerr))
		}
	}()

	service := executor.NewService(deduping, cfg.MaxParallel)

	logger.Info("codexecd starting",
		zap.Strings("kafka_brokers", cfg.Kafka.Brokers),
		zap.String("scripts_topic", cfg.Kafka.ScriptsTopic),
		zap.String("results_topic", cfg.Kafka.ResultsTopic),
		zap.Int("max_parallel", cfg.MaxParallel),
		zap.Duration("dedup_ttl", cfg.DedupTTL),
	)

	err = service.ExecuteFromProducer(ctx, consumer, cfg.MaxScripts, func(report execution.RunReport) {
		publishReport(ctx, logger, publisher, report)
	})
	if err != nil {
		return fmt.Errorf("running executor service: %w", err)
	}

	logger.Info("codexecd shutting down")
	return nil
}

func publishReport(ctx context.Context, logger *zap.Logger, publisher *kafka.Publisher, report execution.RunReport) {
	if report.Err != nil {
		logger.Warn("script execution failed", zap.String("script_id", report.Script.ID), zap.Error(report.Err))
	} else if report.Result != nil {
		logger.Info("script execution completed",
			zap.String("script_id", report.Script.ID),
			zap.String("status", string(report.Result.Status)),
			zap.Int64("exit_code", report.Result.ExitCode),
			zap.Duration("wall_elapsed", report.Result.WallElapsed.Round(time.Millisecond)),
		)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := publisher.PublishRunReport(publishCtx, report); err != nil {
		logger.Warn("publishing run report", zap.String("script_id", report.Script.ID), zap.Error(err))
	}
}

func buildLogger(level, format string) (*zap.Logger, error) {
	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return cfg.Build()
}
