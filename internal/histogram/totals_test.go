package histogram

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalsFigures(t *testing.T) {
	tot := NewTotals(1, 2, 1)
	for _, v := range []float64{2, 4, 6} {
		tot.NewValue(v, 0, 0, 0)
	}
	tot.NewValue(-3, 0, 1, 0)
	assert.False(t, tot.Finished())
	tot.Finish()
	assert.True(t, tot.Finished())

	assert.Equal(t, 12.0, tot.Total(0, 0, 0))
	assert.Equal(t, 4.0, tot.Average(0, 0, 0))
	assert.Equal(t, 6.0, tot.Maximum(0, 0, 0))
	assert.Equal(t, 2.0, tot.Minimum(0, 0, 0))
	assert.InDelta(t, math.Sqrt(8.0/3.0), tot.Stdev(0, 0, 0), 1e-12)
	assert.InDelta(t, 4.0/6.0, tot.AvgDivMax(0, 0, 0), 1e-12)
	assert.Equal(t, 3, tot.Count(0, 0, 0))

	assert.Equal(t, -3.0, tot.Maximum(0, 1, 0))
	assert.Equal(t, -3.0, tot.Minimum(0, 1, 0))
	assert.Equal(t, 9.0, tot.GrandTotal(0, 0))

	assert.Equal(t, tot.Average(0, 0, 0), tot.Get(CriterionAverage, 0, 0, 0))
	assert.Equal(t, tot.Total(0, 0, 0), tot.Get(CriterionTotal, 0, 0, 0))
}

func TestTotalsUntouchedIndexesAreZero(t *testing.T) {
	tot := NewTotals(2, 3, 2)
	tot.NewValue(5, 1, 2, 1)
	tot.Finish()

	for _, c := range []Criterion{CriterionTotal, CriterionAverage, CriterionMaximum,
		CriterionMinimum, CriterionStdev, CriterionAvgDivMax} {
		assert.Zero(t, tot.Get(c, 0, 0, 0))
		assert.Zero(t, tot.Get(c, 1, 2, 0))
	}
	assert.Zero(t, tot.Count(1, 2, 0))
	assert.Equal(t, 1, tot.Count(1, 2, 1))
}

func TestTotalsEmptyDimensions(t *testing.T) {
	for _, tot := range []*Totals{NewTotals(0, 4, 1), NewTotals(2, 0, 1), NewTotals(0, 0, 0)} {
		tot.NewValue(1, 0, 0, 0)
		tot.Finish()
		assert.Zero(t, tot.Total(0, 0, 0))
		assert.Zero(t, tot.GrandTotal(0, 0))
		assert.Empty(t, tot.SortedIndexes(0, 0, CriterionTotal))
	}
}

func TestTotalsSortedIndexes(t *testing.T) {
	tot := NewTotals(1, 5, 1)
	for i, v := range []float64{3, 9, 3, 0, 9} {
		tot.NewValue(v, 0, i, 0)
	}
	tot.Finish()

	assert.Equal(t, []int{1, 4, 0, 2, 3}, tot.SortedIndexes(0, 0, CriterionTotal))
}

func TestTotalsInvalidIndexes(t *testing.T) {
	tot := NewTotals(1, 1, 1)
	tot.NewValue(1, 3, 0, 0)
	tot.NewValue(1, 0, 3, 0)
	tot.NewValue(1, 0, 0, 3)
	tot.Finish()

	assert.Zero(t, tot.Total(0, 0, 0))
	assert.Zero(t, tot.Total(5, 5, 5))
	assert.Zero(t, tot.Count(0, 0, 0))
}
