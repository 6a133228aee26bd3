package pipeline

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/tracelens/internal/config"
	"github.com/sanspareilsmyn/tracelens/internal/message"
)

func sampleResult() *message.Result {
	return &message.Result{
		RequestID: "r1",
		EndTime:   100,
		Rows:      []string{"TASK 1", "TASK 2"},
		Columns:   []string{"0", "1", "2"},
		Statistics: []message.StatisticResult{
			{
				Name: "Time",
				Cells: []message.Cell{
					{Row: 0, Column: 1, Value: 40},
					{Row: 0, Column: 2, Value: 60},
					{Row: 1, Column: 1, Value: 100},
				},
				ColumnTotals: []float64{0, 140, 60},
				RowTotals:    []float64{120, 80},
				GrandTotal:   200,
			},
			{
				Name:          "Bytes sent",
				Communication: true,
				Cells:         []message.Cell{{Row: 0, Column: 1, Value: 2048}},
				ColumnTotals:  []float64{0, 2048},
				RowTotals:     []float64{2048, 0},
				GrandTotal:    2048,
			},
		},
	}
}

func ptr(v float64) *float64 { return &v }

func TestReportThresholds(t *testing.T) {
	thresholds := []config.ThresholdConfig{
		{Statistic: "Time", Max: ptr(100)},
		{Statistic: "Time", Min: ptr(90)},
		{Statistic: "Average value", Max: ptr(0)},
	}
	r := NewReporter(thresholds, nil, nil, nil, zap.NewNop())

	above := testutil.ToFloat64(thresholdViolations.WithLabelValues("Time", ">"))
	below := testutil.ToFloat64(thresholdViolations.WithLabelValues("Time", "<"))

	assert.Equal(t, 2, r.Report(context.Background(), sampleResult()))
	assert.Equal(t, 1.0, testutil.ToFloat64(thresholdViolations.WithLabelValues("Time", ">"))-above)
	assert.Equal(t, 1.0, testutil.ToFloat64(thresholdViolations.WithLabelValues("Time", "<"))-below)

	assert.Equal(t, 200.0, testutil.ToFloat64(statisticGrandTotal.WithLabelValues("Time")))
	assert.Equal(t, 80.0, testutil.ToFloat64(statisticRowTotal.WithLabelValues("Time", "TASK 2")))
	assert.Equal(t, 2048.0, testutil.ToFloat64(statisticRowTotal.WithLabelValues("Bytes sent", "TASK 1")))
}

func TestReportPublishes(t *testing.T) {
	writer := &fakeWriter{}
	r := NewReporter(nil, nil, newPublisher(writer, zap.NewNop()), nil, zap.NewNop())

	r.Report(context.Background(), sampleResult())
	msgs := writer.written()
	require.Len(t, msgs, 1)
	assert.Equal(t, "r1", string(msgs[0].Key))

	decoded, err := message.DecodeResult(msgs[0].Value)
	require.NoError(t, err)
	assert.Len(t, decoded.Statistics, 2)
}

func TestReportPublishFailureIsNotFatal(t *testing.T) {
	writer := &fakeWriter{writeErr: errors.New("leader not available")}
	r := NewReporter(nil, nil, newPublisher(writer, zap.NewNop()), nil, zap.NewNop())

	before := testutil.ToFloat64(publishFailures)
	r.Report(context.Background(), sampleResult())
	assert.Equal(t, 1.0, testutil.ToFloat64(publishFailures)-before)
}

func TestReporterRunStopsOnClosedInput(t *testing.T) {
	input := make(chan *message.Result, 1)
	var out bytes.Buffer
	r := NewReporter(nil, input, nil, &out, zap.NewNop())

	input <- sampleResult()
	close(input)
	require.NoError(t, r.Run(context.Background()))
	assert.Contains(t, out.String(), "TASK 1")
}

func TestRenderTable(t *testing.T) {
	var out bytes.Buffer
	RenderTable(&out, sampleResult())
	text := out.String()

	assert.Contains(t, text, "Time [0, 100)")
	assert.Contains(t, text, "TASK 2")
	assert.Contains(t, text, "140")
	assert.Contains(t, text, "Bytes sent [0, 100)")
	assert.Contains(t, text, "2.0 kB")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "2.0 kB", formatValue("Bytes sent", 2048))
	assert.Equal(t, "1,234.5", formatValue("Time", 1234.5))
	assert.Equal(t, "40", formatValue("Time", 40))
}
