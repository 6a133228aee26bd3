package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
trace:
  file: trace.yaml
histogram:
  controlWindow: state
  statistics: ["Time", "# Bursts"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "trace.yaml", cfg.Trace.File)
	assert.Equal(t, "state", cfg.Histogram.ControlWindow)
	assert.Equal(t, []string{"Time", "# Bursts"}, cfg.Histogram.Statistics)
	assert.Equal(t, AxisConfig{Min: 0, Max: 1, Delta: 1}, cfg.Histogram.Control)
	assert.Equal(t, AxisConfig{Min: 0, Max: 1, Delta: 1}, cfg.Histogram.ExtraControl)
	assert.Equal(t, RangeConfig{Min: 0, Max: 1}, cfg.Histogram.Data)
	assert.True(t, cfg.Histogram.Horizontal)
	assert.Equal(t, defaultNumColumns, cfg.Histogram.NumColumns)
	assert.Nil(t, cfg.Histogram.PlaneMinValue)
	assert.Nil(t, cfg.Histogram.Limits.BurstMin)
	assert.Equal(t, ModeOneShot, cfg.Pipeline.Mode)
	assert.True(t, cfg.Pipeline.Render)
	assert.Equal(t, defaultKafkaGroupID, cfg.Kafka.GroupID)
	assert.Equal(t, defaultMetricsAddress, cfg.Metrics.Address)
	assert.Equal(t, defaultLogLevel, cfg.Log.Level)
	assert.Equal(t, defaultLogMaxSizeMB, cfg.Log.MaxSize)
}

func TestLoadFullHistogram(t *testing.T) {
	path := writeConfig(t, `
trace:
  file: trace.yaml
histogram:
  controlWindow: state
  extraControlWindow: phase
  control: {min: 0, max: 10, delta: 0.5}
  extraControl: {min: 0, max: 3, delta: 1}
  planeMinValue: 2
  endTime: 500
  limits:
    burstMin: 10
    commTagMax: 4
  thresholds:
    - {statistic: "Time", max: 90}
pipeline:
  mode: stream
kafka:
  brokers: ["localhost:9092"]
  requestTopic: requests
  resultTopic: results
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	h := cfg.Histogram
	assert.Equal(t, AxisConfig{Min: 0, Max: 10, Delta: 0.5}, h.Control)
	require.NotNil(t, h.PlaneMinValue)
	assert.Equal(t, 2.0, *h.PlaneMinValue)
	assert.Equal(t, 500.0, h.EndTime)
	require.NotNil(t, h.Limits.BurstMin)
	assert.Equal(t, 10.0, *h.Limits.BurstMin)
	require.NotNil(t, h.Limits.CommTagMax)
	assert.Equal(t, int64(4), *h.Limits.CommTagMax)
	assert.Nil(t, h.Limits.BurstMax)
	require.Len(t, h.Thresholds, 1)
	assert.Nil(t, h.Thresholds[0].Min)
	assert.Equal(t, 90.0, *h.Thresholds[0].Max)
	assert.Equal(t, ModeStream, cfg.Pipeline.Mode)
	assert.Equal(t, "results", cfg.Kafka.ResultTopic)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
trace:
  file: trace.yaml
histogram:
  controlWindow: state
`)
	t.Setenv("TRACELENS_HISTOGRAM_CONTROLWINDOW", "useful")
	t.Setenv("TRACELENS_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "useful", cfg.Histogram.ControlWindow)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{
			name:    "missing trace file",
			content: "histogram: {controlWindow: state}",
			want:    ErrEmptyTraceFile,
		},
		{
			name:    "missing control window",
			content: "trace: {file: t.yaml}",
			want:    ErrEmptyControlWindow,
		},
		{
			name:    "invalid control axis",
			content: "trace: {file: t.yaml}\nhistogram: {controlWindow: s, control: {min: 2, max: 1, delta: 1}}",
			want:    ErrInvalidAxis,
		},
		{
			name:    "invalid extra control axis",
			content: "trace: {file: t.yaml}\nhistogram: {controlWindow: s, extraControlWindow: p, extraControl: {min: 0, max: 1, delta: 0}}",
			want:    ErrInvalidAxis,
		},
		{
			name:    "non positive columns",
			content: "trace: {file: t.yaml}\nhistogram: {controlWindow: s, numColumns: 0}",
			want:    ErrInvalidNumColumns,
		},
		{
			name:    "reversed time range",
			content: "trace: {file: t.yaml}\nhistogram: {controlWindow: s, beginTime: 10, endTime: 5}",
			want:    ErrInvalidTimeRange,
		},
		{
			name:    "threshold without statistic",
			content: "trace: {file: t.yaml}\nhistogram: {controlWindow: s, thresholds: [{max: 1}]}",
			want:    ErrEmptyThresholdStatistic,
		},
		{
			name:    "unknown mode",
			content: "trace: {file: t.yaml}\nhistogram: {controlWindow: s}\npipeline: {mode: batch}",
			want:    ErrInvalidPipelineMode,
		},
		{
			name:    "stream without brokers",
			content: "trace: {file: t.yaml}\nhistogram: {controlWindow: s}\npipeline: {mode: stream}",
			want:    ErrEmptyKafkaBrokers,
		},
		{
			name:    "stream without topic",
			content: "trace: {file: t.yaml}\nhistogram: {controlWindow: s}\npipeline: {mode: stream}\nkafka: {brokers: [b:9092]}",
			want:    ErrEmptyKafkaTopic,
		},
		{
			name:    "result topic without brokers",
			content: "trace: {file: t.yaml}\nhistogram: {controlWindow: s}\nkafka: {resultTopic: results}",
			want:    ErrEmptyKafkaBrokers,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestComputeScaleSkipsAxisValidation(t *testing.T) {
	path := writeConfig(t, "trace: {file: t.yaml}\nhistogram: {controlWindow: s, computeScale: true, control: {delta: 0}}")
	_, err := Load(path)
	assert.NoError(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("")
	assert.ErrorIs(t, err, ErrConfigFileMissing)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, ErrReadingConfigFile)
}
