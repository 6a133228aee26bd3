package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sanspareilsmyn/tracelens/internal/config"
	"github.com/sanspareilsmyn/tracelens/internal/logging"
	"github.com/sanspareilsmyn/tracelens/internal/pipeline"
	"github.com/sanspareilsmyn/tracelens/internal/tracemodel"
)

const metricsShutdownTimeout = 5 * time.Second

var (
	configFile = flag.String("config", "configs/config.dev.yaml", "Path to the configuration file")
	logger     *zap.Logger
)

func main() {
	// Initialize Configuration
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration from %s: %v\n", *configFile, err)
		os.Exit(1)
	}

	// Initialize Logger
	var logErr error
	logger, logErr = logging.NewLogger(cfg.Log)
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", logErr)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync() // Flush buffered logs on exit
	}()

	sugar := logger.Sugar()
	sugar.Infow("Logger initialized",
		"level", cfg.Log.Level,
		"format", cfg.Log.Format,
	)
	sugar.Infow("Configuration loaded successfully", "path", *configFile)

	// Load Trace
	model, err := tracemodel.Load(cfg.Trace.File)
	if err != nil {
		sugar.Fatalw("Failed to load trace", "path", cfg.Trace.File, "error", err)
	}
	sugar.Infow("Trace loaded",
		"path", cfg.Trace.File,
		"windows", model.WindowNames(),
		"end_time", model.EndTime(),
	)

	var out io.Writer
	if cfg.Pipeline.Render {
		out = os.Stdout
	}

	// Handle Graceful Shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signals
		sugar.Infow("Received signal, initiating shutdown...", "signal", sig.String())
		cancel()
	}()

	var runErr error
	switch cfg.Pipeline.Mode {
	case config.ModeOneShot:
		runErr = runOnce(ctx, cfg, model, out)
	case config.ModeStream:
		runErr = runStream(ctx, cfg, model, out)
	}

	// Evaluate Pipeline Result
	finalLogLevel := zapcore.InfoLevel
	shutdownReason := "gracefully"
	var finalErrorField = zap.Skip()

	switch {
	case runErr == nil:
		sugar.Info("Pipeline execution completed without error.")
	case errors.Is(runErr, context.Canceled):
		sugar.Info("Pipeline execution cancelled (expected on shutdown).")
	default:
		shutdownReason = "due to error"
		finalLogLevel = zapcore.ErrorLevel
		finalErrorField = zap.Error(runErr)
		sugar.Errorw("Pipeline execution stopped unexpectedly", zap.Error(runErr))
	}

	finalMessage := fmt.Sprintf("Pipeline shutdown %s.", shutdownReason)
	logger.Log(finalLogLevel, finalMessage,
		zap.String("reason", shutdownReason),
		finalErrorField,
	)

	sugar.Info("TraceLens finished.")
	if finalLogLevel == zapcore.ErrorLevel {
		_ = logger.Sync()
		os.Exit(1)
	}
}

func runOnce(ctx context.Context, cfg *config.Config, model *tracemodel.Model, out io.Writer) error {
	logger.Info("Executing configured histogram...",
		zap.Float64("begin_time", cfg.Histogram.BeginTime),
		zap.Float64("end_time", cfg.Histogram.EndTime),
	)
	_, err := pipeline.RunOnce(ctx, cfg, model, out, logger)
	return err
}

func runStream(ctx context.Context, cfg *config.Config, model *tracemodel.Model, out io.Writer) error {
	sugar := logger.Sugar()

	sugar.Info("Initializing pipeline...")
	pipe, err := pipeline.New(cfg, model, out, logger)
	if err != nil {
		return err
	}

	if cfg.Metrics.Address != "" {
		srv := serveMetrics(cfg.Metrics.Address)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				sugar.Warnw("Metrics server shutdown failed", zap.Error(err))
			}
		}()
	}

	sugar.Info("Starting request pipeline...")
	return pipe.Run(ctx)
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("Serving metrics", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
