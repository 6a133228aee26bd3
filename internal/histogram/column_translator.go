package histogram

import (
	"fmt"
	"math"
)

// ColumnTranslator maps a continuous value into a bin of a [min, max) range
// split in steps of delta.
type ColumnTranslator struct {
	minLimit   float64
	maxLimit   float64
	delta      float64
	numColumns int
}

// NewColumnTranslator returns ErrInvalidRange unless min < max and delta > 0.
func NewColumnTranslator(minLimit, maxLimit, delta float64) (*ColumnTranslator, error) {
	if !(minLimit < maxLimit) || !(delta > 0) {
		return nil, fmt.Errorf("%w: min=%g max=%g delta=%g", ErrInvalidRange, minLimit, maxLimit, delta)
	}
	return &ColumnTranslator{
		minLimit:   minLimit,
		maxLimit:   maxLimit,
		delta:      delta,
		numColumns: int(math.Ceil((maxLimit - minLimit) / delta)),
	}, nil
}

// Column returns the bin for value, or false when value lies outside [min, max].
//
// The bin is computed from the absolute value and not from value-min, so it
// only matches an evenly spaced [min, max) split when min is 0.
func (t *ColumnTranslator) Column(value float64) (int, bool) {
	if value < t.minLimit || value > t.maxLimit {
		return 0, false
	}

	column := int(math.Floor(value * float64(t.numColumns) / (t.maxLimit - t.minLimit)))
	if column >= t.numColumns {
		column = t.numColumns - 1
	}
	if column < 0 {
		column = 0
	}
	return column, true
}

// TotalColumns is ceil((max-min)/delta).
func (t *ColumnTranslator) TotalColumns() int {
	return t.numColumns
}

// Min is the lower bound accepted by Column.
func (t *ColumnTranslator) Min() float64 { return t.minLimit }

// Max is the inclusive upper bound accepted by Column.
func (t *ColumnTranslator) Max() float64 { return t.maxLimit }

// Delta is the nominal bin width, used for labels and plane ranges.
func (t *ColumnTranslator) Delta() float64 { return t.delta }
