package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/tracelens/internal/config"
	"github.com/sanspareilsmyn/tracelens/internal/histogram"
	"github.com/sanspareilsmyn/tracelens/internal/statistics"
	"github.com/sanspareilsmyn/tracelens/internal/tracemodel"
)

// buildHistogram configures a histogram over the windows of model as
// described by cfg. Statistics are registered by the executor per request.
func buildHistogram(cfg config.HistogramConfig, model *tracemodel.Model, logger *zap.Logger) (*histogram.Histogram, error) {
	h := histogram.New(logger)

	control, err := model.Window(cfg.ControlWindow)
	if err != nil {
		return nil, fmt.Errorf("%w: control window: %w", ErrHistogramSetup, err)
	}
	h.SetControlWindow(control)

	if cfg.DataWindow != "" {
		data, err := model.Window(cfg.DataWindow)
		if err != nil {
			return nil, fmt.Errorf("%w: data window: %w", ErrHistogramSetup, err)
		}
		h.SetDataWindow(data)
	}

	if cfg.ExtraControlWindow != "" {
		extra, err := model.Window(cfg.ExtraControlWindow)
		if err != nil {
			return nil, fmt.Errorf("%w: extra control window: %w", ErrHistogramSetup, err)
		}
		h.SetExtraControlWindow(extra)
		h.SetExtraControlAxis(axisFrom(cfg.ExtraControl))
	}

	h.SetControlAxis(axisFrom(cfg.Control))
	h.SetDataRange(cfg.Data.Min, cfg.Data.Max)
	h.SetLimits(limitsFrom(cfg.Limits))
	h.SetInclusive(cfg.Inclusive)
	h.SetHorizontal(cfg.Horizontal)
	h.SetLegacyRowCount(cfg.LegacyRowCount)
	h.SetComputeScale(cfg.ComputeScale)
	h.SetScaleColumns(cfg.NumColumns)

	logger.Info("Histogram configured",
		zap.String("control_window", cfg.ControlWindow),
		zap.String("data_window", cfg.DataWindow),
		zap.String("extra_control_window", cfg.ExtraControlWindow),
		zap.Bool("compute_scale", cfg.ComputeScale),
		zap.Strings("statistics", cfg.Statistics),
	)
	return h, nil
}

// registerStatistics replaces the statistics of h by a fresh instance of
// every named one.
func registerStatistics(h *histogram.Histogram, names []string) error {
	h.ClearStatistics()
	if err := statistics.Register(h, names); err != nil {
		return fmt.Errorf("%w: %w", ErrHistogramSetup, err)
	}
	return nil
}

func axisFrom(a config.AxisConfig) histogram.Axis {
	return histogram.Axis{Min: a.Min, Max: a.Max, Delta: a.Delta}
}

func limitsFrom(l config.LimitsConfig) histogram.Limits {
	limits := histogram.DefaultLimits()
	if l.BurstMin != nil {
		limits.BurstMin = *l.BurstMin
	}
	if l.BurstMax != nil {
		limits.BurstMax = *l.BurstMax
	}
	if l.CommSizeMin != nil {
		limits.CommSizeMin = *l.CommSizeMin
	}
	if l.CommSizeMax != nil {
		limits.CommSizeMax = *l.CommSizeMax
	}
	if l.CommTagMin != nil {
		limits.CommTagMin = *l.CommTagMin
	}
	if l.CommTagMax != nil {
		limits.CommTagMax = *l.CommTagMax
	}
	return limits
}
