package histogram

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Criterion selects one of the figures kept by Totals.
type Criterion int

const (
	CriterionTotal Criterion = iota
	CriterionAverage
	CriterionMaximum
	CriterionMinimum
	CriterionStdev
	CriterionAvgDivMax
)

// totalsPlane holds statistic x index tables for one plane.
type totalsPlane struct {
	total, sumSq, maximum, minimum, count *mat.Dense
	average, stdev, avgDivMax             *mat.Dense
}

// Totals accumulates per (statistic, index, plane) running figures, where the
// index is either a histogram column or a histogram row.
type Totals struct {
	numStats   int
	numIndexes int
	planes     []totalsPlane
	finished   bool
}

func NewTotals(numStats, numIndexes, numPlanes int) *Totals {
	t := &Totals{
		numStats:   numStats,
		numIndexes: numIndexes,
		planes:     make([]totalsPlane, numPlanes),
	}
	if numStats == 0 || numIndexes == 0 {
		return t
	}
	for i := range t.planes {
		t.planes[i] = totalsPlane{
			total:   mat.NewDense(numStats, numIndexes, nil),
			sumSq:   mat.NewDense(numStats, numIndexes, nil),
			maximum: mat.NewDense(numStats, numIndexes, nil),
			minimum: mat.NewDense(numStats, numIndexes, nil),
			count:   mat.NewDense(numStats, numIndexes, nil),
		}
	}
	return t
}

func (t *Totals) NumStats() int   { return t.numStats }
func (t *Totals) NumIndexes() int { return t.numIndexes }
func (t *Totals) NumPlanes() int  { return len(t.planes) }

func (t *Totals) valid(stat, index, plane int) bool {
	return stat >= 0 && stat < t.numStats &&
		index >= 0 && index < t.numIndexes &&
		plane >= 0 && plane < len(t.planes)
}

// NewValue folds value into the figures of (stat, index, plane).
func (t *Totals) NewValue(value float64, stat, index, plane int) {
	if !t.valid(stat, index, plane) {
		return
	}
	p := &t.planes[plane]
	n := p.count.At(stat, index)
	if n == 0 || value > p.maximum.At(stat, index) {
		p.maximum.Set(stat, index, value)
	}
	if n == 0 || value < p.minimum.At(stat, index) {
		p.minimum.Set(stat, index, value)
	}
	p.total.Set(stat, index, p.total.At(stat, index)+value)
	p.sumSq.Set(stat, index, p.sumSq.At(stat, index)+value*value)
	p.count.Set(stat, index, n+1)
}

// Finish computes the derived figures. It must run once all values are in.
func (t *Totals) Finish() {
	t.finished = true
	if t.numStats == 0 || t.numIndexes == 0 {
		return
	}
	for i := range t.planes {
		p := &t.planes[i]
		p.average = mat.NewDense(t.numStats, t.numIndexes, nil)
		p.stdev = mat.NewDense(t.numStats, t.numIndexes, nil)
		p.avgDivMax = mat.NewDense(t.numStats, t.numIndexes, nil)
		for stat := 0; stat < t.numStats; stat++ {
			for index := 0; index < t.numIndexes; index++ {
				n := p.count.At(stat, index)
				if n == 0 {
					continue
				}
				avg := p.total.At(stat, index) / n
				variance := p.sumSq.At(stat, index)/n - avg*avg
				if variance < 0 {
					variance = 0
				}
				p.average.Set(stat, index, avg)
				p.stdev.Set(stat, index, math.Sqrt(variance))
				if maxv := p.maximum.At(stat, index); maxv != 0 {
					p.avgDivMax.Set(stat, index, avg/maxv)
				}
			}
		}
	}
}

func (t *Totals) Finished() bool { return t.finished }

func (t *Totals) at(m *mat.Dense, stat, index, plane int) float64 {
	if !t.valid(stat, index, plane) || m == nil {
		return 0
	}
	return m.At(stat, index)
}

func (t *Totals) Total(stat, index, plane int) float64 {
	if !t.valid(stat, index, plane) {
		return 0
	}
	return t.at(t.planes[plane].total, stat, index, plane)
}

func (t *Totals) Average(stat, index, plane int) float64 {
	if !t.valid(stat, index, plane) {
		return 0
	}
	return t.at(t.planes[plane].average, stat, index, plane)
}

func (t *Totals) Maximum(stat, index, plane int) float64 {
	if !t.valid(stat, index, plane) {
		return 0
	}
	return t.at(t.planes[plane].maximum, stat, index, plane)
}

func (t *Totals) Minimum(stat, index, plane int) float64 {
	if !t.valid(stat, index, plane) {
		return 0
	}
	return t.at(t.planes[plane].minimum, stat, index, plane)
}

func (t *Totals) Stdev(stat, index, plane int) float64 {
	if !t.valid(stat, index, plane) {
		return 0
	}
	return t.at(t.planes[plane].stdev, stat, index, plane)
}

func (t *Totals) AvgDivMax(stat, index, plane int) float64 {
	if !t.valid(stat, index, plane) {
		return 0
	}
	return t.at(t.planes[plane].avgDivMax, stat, index, plane)
}

// Count is the number of values folded into (stat, index, plane).
func (t *Totals) Count(stat, index, plane int) int {
	if !t.valid(stat, index, plane) {
		return 0
	}
	return int(t.at(t.planes[plane].count, stat, index, plane))
}

// Get returns the figure selected by criterion.
func (t *Totals) Get(criterion Criterion, stat, index, plane int) float64 {
	switch criterion {
	case CriterionAverage:
		return t.Average(stat, index, plane)
	case CriterionMaximum:
		return t.Maximum(stat, index, plane)
	case CriterionMinimum:
		return t.Minimum(stat, index, plane)
	case CriterionStdev:
		return t.Stdev(stat, index, plane)
	case CriterionAvgDivMax:
		return t.AvgDivMax(stat, index, plane)
	default:
		return t.Total(stat, index, plane)
	}
}

// GrandTotal sums the totals of stat over every index of plane.
func (t *Totals) GrandTotal(stat, plane int) float64 {
	if !t.valid(stat, 0, plane) || t.planes[plane].total == nil {
		return 0
	}
	return floats.Sum(t.planes[plane].total.RawRowView(stat))
}

// SortedIndexes returns the indexes of plane ordered by decreasing criterion
// for stat. Ties keep their index order.
func (t *Totals) SortedIndexes(stat, plane int, criterion Criterion) []int {
	if !t.valid(stat, 0, plane) {
		return nil
	}
	keys := make([]float64, t.numIndexes)
	for i := range keys {
		// Negated so that the ascending argsort yields a decreasing order.
		keys[i] = -t.Get(criterion, stat, i, plane)
	}
	inds := make([]int, t.numIndexes)
	floats.Argsort(keys, inds)
	return stableTies(keys, inds)
}

// stableTies reorders runs of equal keys by index. keys must be sorted.
func stableTies(keys []float64, inds []int) []int {
	for start := 0; start < len(inds); {
		end := start + 1
		for end < len(inds) && keys[end] == keys[start] {
			end++
		}
		sort.Ints(inds[start:end])
		start = end
	}
	return inds
}
