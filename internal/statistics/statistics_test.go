package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/tracelens/internal/histogram"
	"github.com/sanspareilsmyn/tracelens/internal/tracemodel"
)

const semanticModel = `
levels:
  - name: task
    objects: 2
windows:
  - name: state
    level: task
    rows:
      - [{begin: 0, end: 10, value: 1}, {begin: 10, end: 40, value: 0}, {begin: 40, end: 50, value: 1}]
      - [{begin: 0, end: 50, value: 0}]
  - name: ipc
    level: task
    rows:
      - [{begin: 0, end: 5, value: 2}, {begin: 5, end: 10, value: 4}, {begin: 10, end: 50, value: 1}]
      - []
`

const commModel = `
levels:
  - name: task
    objects: 3
windows:
  - name: state
    level: task
    rows:
      - [{begin: 0, end: 100, value: 1}]
    comms:
      - {row: 0, time: 10, kind: send, partner: 1, size: 100, tag: 1}
      - {row: 0, time: 20, kind: send, partner: 2, size: 50, tag: 1}
      - {row: 0, time: 30, kind: send, partner: 1, size: 300, tag: 5}
      - {row: 1, time: 15, kind: recv, partner: 0, size: 100, tag: 1}
`

func newHistogram(t *testing.T, model, control, data string, names ...string) *histogram.Histogram {
	t.Helper()
	m, err := tracemodel.Parse([]byte(model))
	require.NoError(t, err)

	h := histogram.New(zap.NewNop())
	cw, err := m.Window(control)
	require.NoError(t, err)
	h.SetControlWindow(cw)
	if data != "" {
		dw, err := m.Window(data)
		require.NoError(t, err)
		h.SetDataWindow(dw)
	}
	h.SetControlAxis(histogram.Axis{Min: 0, Max: 2, Delta: 1})
	require.NoError(t, Register(h, names))
	return h
}

func cell(t *testing.T, h *histogram.Histogram, col, row, stat int) float64 {
	t.Helper()
	v, ok := h.CellValue(col, row, stat, 0)
	require.True(t, ok, "cell col=%d row=%d stat=%d", col, row, stat)
	return v
}

func TestSemanticStatistics(t *testing.T) {
	names := []string{
		NameTime, NamePercentTime, NameBursts, NameAverageValue,
		NameMaximum, NameMinimum, NameSumBursts, NameAverageBurstTime,
	}
	h := newHistogram(t, semanticModel, "state", "ipc", names...)
	require.NoError(t, h.Execute(0, 100))
	require.Equal(t, 2, h.NumColumns())

	// Row 0, column 1 gets [0,5) 2, [5,10) 4 and [40,50) 1; column 0 gets
	// [10,40) 1 and [50,100) 0.
	tests := []struct {
		stat       int
		col0, col1 float64
	}{
		{stat: 0, col0: 80, col1: 20},
		{stat: 1, col0: 80, col1: 20},
		{stat: 2, col0: 2, col1: 3},
		{stat: 3, col0: 0.5, col1: 7.0 / 3.0},
		{stat: 4, col0: 1, col1: 4},
		{stat: 5, col0: 0, col1: 1},
		{stat: 6, col0: 1, col1: 7},
		{stat: 7, col0: 40, col1: 20.0 / 3.0},
	}
	for _, tt := range tests {
		t.Run(names[tt.stat], func(t *testing.T) {
			assert.InDelta(t, tt.col0, cell(t, h, 0, 0, tt.stat), 1e-9)
			assert.InDelta(t, tt.col1, cell(t, h, 1, 0, tt.stat), 1e-9)
		})
	}

	assert.InDelta(t, 100, cell(t, h, 0, 1, 0), 1e-9)
	_, ok := h.CellValue(1, 1, 0, 0)
	assert.False(t, ok)
}

func TestBurstLimits(t *testing.T) {
	h := newHistogram(t, semanticModel, "state", "ipc", NameBursts, NameSumBursts)
	limits := histogram.DefaultLimits()
	limits.BurstMin = 6
	h.SetLimits(limits)
	require.NoError(t, h.Execute(0, 100))

	assert.Equal(t, 1.0, cell(t, h, 1, 0, 0))
	assert.Equal(t, 1.0, cell(t, h, 1, 0, 1))
	assert.Equal(t, 2.0, cell(t, h, 0, 0, 0))
}

func TestCommunicationStatistics(t *testing.T) {
	h := newHistogram(t, commModel, "state", "",
		NameTime, NameSends, NameBytesSent, NameAverageBytesSent, NameReceives)
	require.NoError(t, h.Execute(0, 100))
	require.True(t, h.CreateComms())
	require.Len(t, h.Statistics(), 1)
	require.Len(t, h.CommStatistics(), 4)

	commCell := func(partner, row, stat int) float64 {
		v, ok := h.CommCellValue(partner, row, stat, 0)
		require.True(t, ok, "partner=%d row=%d stat=%d", partner, row, stat)
		return v
	}

	assert.Equal(t, 2.0, commCell(1, 0, 0))
	assert.Equal(t, 400.0, commCell(1, 0, 1))
	assert.Equal(t, 200.0, commCell(1, 0, 2))
	assert.Equal(t, 1.0, commCell(2, 0, 0))
	assert.Equal(t, 50.0, commCell(2, 0, 1))
	assert.Equal(t, 1.0, commCell(0, 1, 3))

	_, ok := h.CommCellValue(0, 0, 0, 0)
	assert.False(t, ok, "no communication towards itself")

	assert.Equal(t, 450.0, h.CommRowTotals().Total(1, 0, 0))
	assert.Equal(t, 3.0, h.CommColumnTotals().Total(0, 1, 0)+h.CommColumnTotals().Total(0, 2, 0))
}

func TestCommunicationLimits(t *testing.T) {
	h := newHistogram(t, commModel, "state", "", NameSends, NameBytesSent)
	limits := histogram.DefaultLimits()
	limits.CommTagMax = 4
	h.SetLimits(limits)
	require.NoError(t, h.Execute(0, 100))

	v, ok := h.CommCellValue(1, 0, 0, 0)
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
	v, ok = h.CommCellValue(1, 0, 1, 0)
	require.True(t, ok)
	assert.Equal(t, 100.0, v)
}

func TestRegistry(t *testing.T) {
	names := Names()
	assert.Len(t, names, 13)
	assert.IsIncreasing(t, names)

	for _, name := range names {
		s, err := New(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
		assert.Equal(t, IsCommunication(name), s.CreateComms())
		if s.CreateComms() {
			_, ok := s.(histogram.CommStatistic)
			assert.True(t, ok, name)
		}
	}

	assert.True(t, IsCommunication(NameBytesSent))
	assert.False(t, IsCommunication(NameTime))
	assert.False(t, IsCommunication("nope"))

	_, err := New("nope")
	assert.ErrorIs(t, err, ErrUnknownStatistic)

	h := histogram.New(zap.NewNop())
	assert.ErrorIs(t, Register(h, []string{NameTime, "nope"}), ErrUnknownStatistic)
}

func TestNewReturnsFreshInstances(t *testing.T) {
	a, err := New(NameAverageValue)
	require.NoError(t, err)
	b, err := New(NameAverageValue)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}
