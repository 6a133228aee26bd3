package pipeline

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/tracelens/internal/config"
	"github.com/sanspareilsmyn/tracelens/internal/message"
)

var (
	statisticRowTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tracelens_statistic_row_total",
			Help: "Total of a statistic for one histogram row in the last result.",
		},
		[]string{"statistic", "row"},
	)
	statisticGrandTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tracelens_statistic_grand_total",
			Help: "Grand total of a statistic in the last result.",
		},
		[]string{"statistic"},
	)
	thresholdViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracelens_threshold_violations_total",
			Help: "Total number of row totals found outside their configured bounds.",
		},
		[]string{"statistic", "comparison"}, // comparison: < or >
	)
	publishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tracelens_publish_failures_total",
			Help: "Total number of results that could not be published.",
		},
	)
)

// ResultPublisher sends results to an outer system.
type ResultPublisher interface {
	Publish(ctx context.Context, r *message.Result) error
}

// Reporter exposes results as metrics, checks them against the configured
// thresholds and optionally publishes and renders them.
type Reporter struct {
	thresholds map[string][]config.ThresholdConfig
	input      <-chan *message.Result
	publisher  ResultPublisher
	render     io.Writer
	logger     *zap.Logger
}

// NewReporter creates a Reporter. publisher and render may be nil.
func NewReporter(thresholds []config.ThresholdConfig, input <-chan *message.Result, publisher ResultPublisher, render io.Writer, logger *zap.Logger) *Reporter {
	byStatistic := lo.GroupBy(thresholds, func(t config.ThresholdConfig) string { return t.Statistic })

	logger.Debug("Reporter initialized",
		zap.Int("threshold_count", len(thresholds)),
		zap.Bool("publish", publisher != nil),
		zap.Bool("render", render != nil),
	)

	return &Reporter{
		thresholds: byStatistic,
		input:      input,
		publisher:  publisher,
		render:     render,
		logger:     logger,
	}
}

// Run reports every result read from the input channel.
func (r *Reporter) Run(ctx context.Context) error {
	sugar := r.logger.Sugar()
	sugar.Info("Starting reporter loop...")
	defer sugar.Info("Reporter loop stopped.")

	for {
		select {
		case result, ok := <-r.input:
			if !ok {
				sugar.Info("Reporter input channel closed.")
				return nil
			}
			r.Report(ctx, result)

		case <-ctx.Done():
			sugar.Info("Context cancelled, stopping reporter.")
			return ctx.Err()
		}
	}
}

// Report handles one result and returns the number of threshold violations.
// Publishing failures are logged, never returned.
func (r *Reporter) Report(ctx context.Context, result *message.Result) int {
	sugar := r.logger.Sugar()

	violations := 0
	for _, s := range result.Statistics {
		for row, total := range s.RowTotals {
			statisticRowTotal.WithLabelValues(s.Name, rowLabel(result, row)).Set(total)
		}
		statisticGrandTotal.WithLabelValues(s.Name).Set(s.GrandTotal)

		for _, t := range r.thresholds[s.Name] {
			violations += r.checkThreshold(sugar, result, s, t)
		}
		r.logStatistic(sugar, result, s)
	}

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, result); err != nil {
			publishFailures.Inc()
			sugar.Errorw("Failed to publish result",
				zap.String("request_id", result.RequestID),
				zap.Error(err),
			)
		}
	}
	if r.render != nil {
		RenderTable(r.render, result)
	}
	return violations
}

func (r *Reporter) checkThreshold(sugar *zap.SugaredLogger, result *message.Result, s message.StatisticResult, t config.ThresholdConfig) int {
	violations := 0
	for row, total := range s.RowTotals {
		if t.Min != nil && total < *t.Min {
			sugar.Warnw("Statistic violation (Min)",
				zap.String("statistic", s.Name),
				zap.String("row", rowLabel(result, row)),
				zap.String("request_id", result.RequestID),
				zap.Float64("actual", total),
				zap.Float64("threshold", *t.Min),
				zap.String("comparison", "<"),
			)
			thresholdViolations.WithLabelValues(s.Name, "<").Inc()
			violations++
		}
		if t.Max != nil && total > *t.Max {
			sugar.Warnw("Statistic violation (Max)",
				zap.String("statistic", s.Name),
				zap.String("row", rowLabel(result, row)),
				zap.String("request_id", result.RequestID),
				zap.Float64("actual", total),
				zap.Float64("threshold", *t.Max),
				zap.String("comparison", ">"),
			)
			thresholdViolations.WithLabelValues(s.Name, ">").Inc()
			violations++
		}
	}
	return violations
}

func (r *Reporter) logStatistic(sugar *zap.SugaredLogger, result *message.Result, s message.StatisticResult) {
	fields := []interface{}{
		zap.String("statistic", s.Name),
		zap.String("request_id", result.RequestID),
		zap.Float64("begin_time", result.BeginTime),
		zap.Float64("end_time", result.EndTime),
		zap.Int("cells", len(s.Cells)),
		zap.Float64("grand_total", s.GrandTotal),
	}
	if result.ThreeDimensions {
		fields = append(fields, zap.String("plane", result.PlaneLabel))
	}
	sugar.Infow("Statistic reported", fields...)
}

func rowLabel(result *message.Result, row int) string {
	if row < len(result.Rows) {
		return result.Rows[row]
	}
	return "?"
}
