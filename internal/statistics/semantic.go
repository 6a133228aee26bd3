package statistics

import "github.com/sanspareilsmyn/tracelens/internal/histogram"

// Time accumulates the duration of every contribution.
type Time struct{ base }

func (s *Time) Name() string { return NameTime }

func (s *Time) Execute(data *histogram.CalculateData) float64 {
	return s.duration(data)
}

// PercentTime is Time relative to the executed time range.
type PercentTime struct{ base }

func (s *PercentTime) Name() string { return NamePercentTime }

func (s *PercentTime) Execute(data *histogram.CalculateData) float64 {
	return s.duration(data)
}

func (s *PercentTime) FinishRow(value float64, column, plane int) float64 {
	span := s.h.EndTime() - s.h.BeginTime()
	if span <= 0 {
		return 0
	}
	return value * 100 / span
}

// Bursts counts the contributions whose duration passes the burst limits.
type Bursts struct{ base }

func (s *Bursts) Name() string { return NameBursts }

func (s *Bursts) Execute(data *histogram.CalculateData) float64 {
	if !s.h.Limits().AcceptBurst(s.duration(data)) {
		return 0
	}
	return 1
}

// SumBursts adds the data value of every accepted burst.
type SumBursts struct{ base }

func (s *SumBursts) Name() string { return NameSumBursts }

func (s *SumBursts) Execute(data *histogram.CalculateData) float64 {
	if !s.h.Limits().AcceptBurst(s.duration(data)) {
		return 0
	}
	return s.dataValue(data)
}

// AverageValue is the mean data value over the contributions of a cell.
type AverageValue struct {
	base
	counts cellCounter
}

func newAverageValue() *AverageValue {
	return &AverageValue{counts: cellCounter{}}
}

func (s *AverageValue) Name() string { return NameAverageValue }

func (s *AverageValue) Execute(data *histogram.CalculateData) float64 {
	s.counts.inc(data.Column, data.Plane)
	return s.dataValue(data)
}

func (s *AverageValue) FinishRow(value float64, column, plane int) float64 {
	return s.counts.average(value, column, plane)
}

func (s *AverageValue) Reset() { s.counts.reset() }

// AverageBurstTime is the mean duration of the accepted bursts of a cell.
type AverageBurstTime struct {
	base
	counts cellCounter
}

func newAverageBurstTime() *AverageBurstTime {
	return &AverageBurstTime{counts: cellCounter{}}
}

func (s *AverageBurstTime) Name() string { return NameAverageBurstTime }

func (s *AverageBurstTime) Execute(data *histogram.CalculateData) float64 {
	d := s.duration(data)
	if !s.h.Limits().AcceptBurst(d) {
		return 0
	}
	s.counts.inc(data.Column, data.Plane)
	return d
}

func (s *AverageBurstTime) FinishRow(value float64, column, plane int) float64 {
	return s.counts.average(value, column, plane)
}

func (s *AverageBurstTime) Reset() { s.counts.reset() }

// Extreme keeps the maximum or minimum data value seen in a cell. Execute
// contributes nothing; the kept value replaces the cell at row close-out.
type Extreme struct {
	base
	name   string
	pick   func(a, b float64) float64
	values map[cellKey]float64
}

func newExtreme(name string, pick func(a, b float64) float64) *Extreme {
	return &Extreme{name: name, pick: pick, values: map[cellKey]float64{}}
}

func (s *Extreme) Name() string { return s.name }

func (s *Extreme) Execute(data *histogram.CalculateData) float64 {
	k := cellKey{data.Column, data.Plane}
	v := s.dataValue(data)
	if old, ok := s.values[k]; ok {
		v = s.pick(old, v)
	}
	s.values[k] = v
	return 0
}

func (s *Extreme) FinishRow(value float64, column, plane int) float64 {
	return s.values[cellKey{column, plane}]
}

func (s *Extreme) Reset() { clear(s.values) }
