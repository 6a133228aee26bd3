package histogram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// blockTopology gives every parent object size consecutive children.
type blockTopology struct {
	size int
}

func (b blockTopology) ChildRange(row, parentLevel, childLevel int) (int, int) {
	if childLevel == parentLevel {
		return row, row
	}
	if childLevel < parentLevel {
		return row / b.size, row / b.size
	}
	return row * b.size, row*b.size + b.size - 1
}

// stubWindow is a window without intervals, enough to build translators.
type stubWindow struct {
	level    int
	objects  int
	topology Topology
}

func (w *stubWindow) Level() int                 { return w.level }
func (w *stubWindow) ObjectCount() int           { return w.objects }
func (w *stubWindow) Topology() Topology         { return w.topology }
func (w *stubWindow) Init(float64, bool)         {}
func (w *stubWindow) CalcNext(int)               {}
func (w *stubWindow) BeginTime(int) float64      { return 0 }
func (w *stubWindow) EndTime(int) float64        { return 0 }
func (w *stubWindow) Value(int) float64          { return 0 }
func (w *stubWindow) RecordList(int) *RecordList { return nil }

func TestRowsTranslatorOneToOne(t *testing.T) {
	topo := blockTopology{size: 3}
	a := &stubWindow{level: 1, objects: 4, topology: topo}
	b := &stubWindow{level: 1, objects: 4, topology: topo}

	rt := NewRowsTranslator([]Window{a, b}, false)
	assert.Equal(t, 4, rt.TotalRows())
	for row := 0; row < 4; row++ {
		first, last := rt.RowChilds(0, row)
		assert.Equal(t, row, first)
		assert.Equal(t, row, last)
		assert.Equal(t, row, rt.GlobalTranslate(0, row))
	}
}

func TestRowsTranslatorParentChild(t *testing.T) {
	topo := blockTopology{size: 3}
	parent := &stubWindow{level: 0, objects: 2, topology: topo}
	child := &stubWindow{level: 1, objects: 6, topology: topo}

	rt := NewRowsTranslator([]Window{parent, child}, false)
	assert.Equal(t, 2, rt.TotalRows())

	first, last := rt.RowChilds(0, 0)
	assert.Equal(t, 0, first)
	assert.Equal(t, 2, last)

	first, last = rt.RowChilds(0, 1)
	assert.Equal(t, 3, first)
	assert.Equal(t, 5, last)
}

func TestRowsTranslatorThreeWindows(t *testing.T) {
	topo := blockTopology{size: 2}
	top := &stubWindow{level: 0, objects: 2, topology: topo}
	mid := &stubWindow{level: 1, objects: 4, topology: topo}
	leaf := &stubWindow{level: 1, objects: 4, topology: topo}

	rt := NewRowsTranslator([]Window{top, mid, leaf}, false)
	first, last := rt.RowChilds(0, 1)
	assert.Equal(t, 2, first)
	assert.Equal(t, 3, last)

	first, last = rt.RowChilds(1, 3)
	assert.Equal(t, 3, first)
	assert.Equal(t, 3, last)
}

func TestRowsTranslatorLegacyRowCount(t *testing.T) {
	w := &stubWindow{level: 0, objects: 5, topology: blockTopology{size: 1}}

	assert.Equal(t, 5, NewRowsTranslator([]Window{w}, false).TotalRows())
	assert.Equal(t, 4, NewRowsTranslator([]Window{w}, true).TotalRows())

	empty := &stubWindow{level: 0, objects: 0, topology: blockTopology{size: 1}}
	assert.Zero(t, NewRowsTranslator([]Window{empty}, true).TotalRows())
	assert.Zero(t, NewRowsTranslator(nil, false).TotalRows())
}

func TestRowsTranslatorChildToAncestor(t *testing.T) {
	topo := blockTopology{size: 2}
	parent := &stubWindow{level: 0, objects: 2, topology: topo}
	child := &stubWindow{level: 1, objects: 4, topology: topo}

	rt := NewRowsTranslator([]Window{parent, child, parent}, false)
	assert.Equal(t, 2, rt.TotalRows())
	for row := 0; row < 4; row++ {
		first, last := rt.RowChilds(1, row)
		assert.Equal(t, row/2, first, "row %d", row)
		assert.Equal(t, row/2, last, "row %d", row)
	}
}
