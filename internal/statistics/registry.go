// Package statistics holds the statistic functions shipped with tracelens and
// a registry resolving them by name.
package statistics

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/samber/lo"

	"github.com/sanspareilsmyn/tracelens/internal/histogram"
)

var ErrUnknownStatistic = errors.New("unknown statistic")

const (
	NameTime             = "Time"
	NamePercentTime      = "% Time"
	NameBursts           = "# Bursts"
	NameAverageValue     = "Average value"
	NameMaximum          = "Maximum"
	NameMinimum          = "Minimum"
	NameSumBursts        = "Sum bursts"
	NameAverageBurstTime = "Average burst time"

	NameSends            = "# Sends"
	NameReceives         = "# Receives"
	NameBytesSent        = "Bytes sent"
	NameBytesReceived    = "Bytes received"
	NameAverageBytesSent = "Average bytes sent"
)

var registry = map[string]func() histogram.Statistic{
	NameTime:             func() histogram.Statistic { return &Time{} },
	NamePercentTime:      func() histogram.Statistic { return &PercentTime{} },
	NameBursts:           func() histogram.Statistic { return &Bursts{} },
	NameAverageValue:     func() histogram.Statistic { return newAverageValue() },
	NameMaximum:          func() histogram.Statistic { return newExtreme(NameMaximum, math.Max) },
	NameMinimum:          func() histogram.Statistic { return newExtreme(NameMinimum, math.Min) },
	NameSumBursts:        func() histogram.Statistic { return &SumBursts{} },
	NameAverageBurstTime: func() histogram.Statistic { return newAverageBurstTime() },

	NameSends:            func() histogram.Statistic { return &Sends{} },
	NameReceives:         func() histogram.Statistic { return &Receives{} },
	NameBytesSent:        func() histogram.Statistic { return &BytesSent{} },
	NameBytesReceived:    func() histogram.Statistic { return &BytesReceived{} },
	NameAverageBytesSent: func() histogram.Statistic { return newAverageBytesSent() },
}

// New returns a fresh instance of the named statistic.
func New(name string) (histogram.Statistic, error) {
	create, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatistic, name)
	}
	return create(), nil
}

// Names lists every registered statistic, sorted.
func Names() []string {
	names := lo.Keys(registry)
	slices.Sort(names)
	return names
}

// IsCommunication reports whether the named statistic is evaluated per
// communication. Unknown names report false.
func IsCommunication(name string) bool {
	create, ok := registry[name]
	return ok && create().CreateComms()
}

// Register adds every named statistic to h, in order.
func Register(h *histogram.Histogram, names []string) error {
	for _, name := range names {
		s, err := New(name)
		if err != nil {
			return err
		}
		if err := h.PushbackStatistic(s); err != nil {
			return err
		}
	}
	return nil
}

// base carries the parts every built-in shares.
type base struct {
	h *histogram.Histogram
}

func (b *base) Init(h *histogram.Histogram)                        { b.h = h }
func (b *base) CreateComms() bool                                  { return false }
func (b *base) FinishRow(value float64, column, plane int) float64 { return value }
func (b *base) Reset()                                             {}

func (b *base) dataValue(data *histogram.CalculateData) float64 {
	return b.h.DataWindow().Value(data.DataRow)
}

func (b *base) duration(data *histogram.CalculateData) float64 {
	return data.EndTime - data.BeginTime
}

// cellKey addresses a cell of the row being computed.
type cellKey struct {
	column, plane int
}

// cellCounter tracks per cell sums and counts for statistics averaged at row
// close-out.
type cellCounter map[cellKey]float64

func (c cellCounter) inc(column, plane int) {
	c[cellKey{column, plane}]++
}

func (c cellCounter) average(value float64, column, plane int) float64 {
	n := c[cellKey{column, plane}]
	if n == 0 {
		return 0
	}
	return value / n
}

func (c cellCounter) reset() {
	clear(c)
}
