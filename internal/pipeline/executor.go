package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/tracelens/internal/config"
	"github.com/sanspareilsmyn/tracelens/internal/histogram"
	"github.com/sanspareilsmyn/tracelens/internal/message"
	"github.com/sanspareilsmyn/tracelens/internal/tracemodel"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracelens_requests_total",
			Help: "Execute requests handled, by outcome (ok, failed).",
		},
		[]string{"outcome"},
	)
	requestLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tracelens_request_latency_seconds",
			Help:    "Time between a request being issued and its result being ready.",
			Buckets: prometheus.ExponentialBuckets(0.005, 4, 10),
		},
	)
)

// Executor runs execute requests against one histogram, sequentially.
type Executor struct {
	cfg    config.HistogramConfig
	model  *tracemodel.Model
	hist   *histogram.Histogram
	input  <-chan message.ExecuteRequest
	output chan<- *message.Result
	logger *zap.Logger
}

// NewExecutor configures the histogram for model. input and output may be
// nil when the executor is only driven through Execute.
func NewExecutor(cfg config.HistogramConfig, model *tracemodel.Model, input <-chan message.ExecuteRequest, output chan<- *message.Result, logger *zap.Logger) (*Executor, error) {
	h, err := buildHistogram(cfg, model, logger.Named("histogram"))
	if err != nil {
		return nil, err
	}
	if cfg.PlaneMinValue != nil {
		h.SetPlaneMinValue(*cfg.PlaneMinValue)
	}

	logger.Info("Executor initialized",
		zap.Float64("trace_end", model.EndTime()),
		zap.Int("windows", len(model.WindowNames())),
	)
	return &Executor{
		cfg:    cfg,
		model:  model,
		hist:   h,
		input:  input,
		output: output,
		logger: logger,
	}, nil
}

// Execute computes the histogram for req and snapshots it. Empty request
// fields fall back to the configuration.
func (e *Executor) Execute(req message.ExecuteRequest) (*message.Result, error) {
	begin, end := req.BeginTime, req.EndTime
	if end == 0 {
		end = e.model.EndTime()
	}
	if end <= begin {
		requestsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: [%g, %g)", message.ErrInvalidTimeRange, begin, end)
	}

	names := e.cfg.Statistics
	if len(req.Statistics) > 0 {
		names = req.Statistics
	}
	if err := registerStatistics(e.hist, names); err != nil {
		requestsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	if req.PlaneMinValue != nil {
		e.hist.SetPlaneMinValue(*req.PlaneMinValue)
	}

	start := time.Now()
	if err := e.hist.Execute(begin, end); err != nil {
		requestsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %w", ErrHistogramExecution, err)
	}

	result := Snapshot(e.hist)
	result.RequestID = req.ID
	requestsTotal.WithLabelValues("ok").Inc()

	fields := []zap.Field{
		zap.String("request_id", req.ID),
		zap.Float64("begin_time", begin),
		zap.Float64("end_time", end),
		zap.Int("rows", len(result.Rows)),
		zap.Int("columns", len(result.Columns)),
		zap.Duration("elapsed", time.Since(start)),
	}
	if requested, ok := req.RequestedTime(); ok {
		latency := result.ExecutedAt.Sub(requested)
		requestLatency.Observe(latency.Seconds())
		fields = append(fields, zap.Duration("latency", latency))
	}
	e.logger.Info("Histogram executed", fields...)
	return result, nil
}

// Run executes every request read from the input channel. A failing request
// is logged and skipped.
func (e *Executor) Run(ctx context.Context) error {
	sugar := e.logger.Sugar()
	sugar.Info("Starting executor loop...")
	defer sugar.Info("Executor loop stopped.")

	for {
		select {
		case req, ok := <-e.input:
			if !ok {
				sugar.Info("Executor input channel closed.")
				return nil
			}

			result, err := e.Execute(req)
			if err != nil {
				sugar.Warnw("Failed to execute request, skipping",
					zap.String("request_id", req.ID),
					zap.Error(err),
				)
				continue
			}

			select {
			case e.output <- result:

			case <-ctx.Done():
				sugar.Debug("Executor context cancelled during send.")
				return ctx.Err()
			}

		case <-ctx.Done():
			sugar.Info("Context cancelled, stopping executor.")
			return ctx.Err()
		}
	}
}
