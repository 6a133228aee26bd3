package tracemodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChildRange(t *testing.T) {
	topo, err := NewTopology(
		Level{Name: "node", Objects: 2},
		Level{Name: "task", Objects: 3, Parents: []int{0, 0, 1}},
		Level{Name: "thread", Objects: 6, Parents: []int{0, 0, 1, 1, 2, 2}},
	)
	require.NoError(t, err)

	tests := []struct {
		name                string
		row, parent, child  int
		wantFirst, wantLast int
	}{
		{name: "node to task", row: 0, parent: 0, child: 1, wantFirst: 0, wantLast: 1},
		{name: "node to thread", row: 0, parent: 0, child: 2, wantFirst: 0, wantLast: 3},
		{name: "second node to thread", row: 1, parent: 0, child: 2, wantFirst: 4, wantLast: 5},
		{name: "task to thread", row: 1, parent: 1, child: 2, wantFirst: 2, wantLast: 3},
		{name: "same level", row: 2, parent: 1, child: 1, wantFirst: 2, wantLast: 2},
		{name: "thread to task", row: 3, parent: 2, child: 1, wantFirst: 1, wantLast: 1},
		{name: "thread to node", row: 4, parent: 2, child: 0, wantFirst: 1, wantLast: 1},
		{name: "task to node", row: 1, parent: 1, child: 0, wantFirst: 0, wantLast: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := topo.ChildRange(tt.row, tt.parent, tt.child)
			assert.Equal(t, tt.wantFirst, first)
			assert.Equal(t, tt.wantLast, last)
		})
	}
}

func TestChildRangeWithoutChildren(t *testing.T) {
	topo, err := NewTopology(
		Level{Name: "task", Objects: 3},
		Level{Name: "thread", Objects: 2, Parents: []int{0, 2}},
	)
	require.NoError(t, err)

	first, last := topo.ChildRange(1, 0, 1)
	assert.Greater(t, first, last)
}

func TestNewTopologyValidation(t *testing.T) {
	_, err := NewTopology()
	assert.ErrorIs(t, err, ErrInvalidModel)

	_, err = NewTopology(Level{Name: "task", Objects: 1, Parents: []int{0}})
	assert.ErrorIs(t, err, ErrInvalidModel)

	_, err = NewTopology(
		Level{Name: "task", Objects: 2},
		Level{Name: "thread", Objects: 2, Parents: []int{1, 0}},
	)
	assert.ErrorIs(t, err, ErrInvalidModel)

	_, err = NewTopology(
		Level{Name: "task", Objects: 2},
		Level{Name: "thread", Objects: 1, Parents: []int{5}},
	)
	assert.ErrorIs(t, err, ErrInvalidModel)
}

func TestLevelIndex(t *testing.T) {
	topo, err := NewTopology(Level{Name: "Task", Objects: 1})
	require.NoError(t, err)

	i, err := topo.LevelIndex("task")
	require.NoError(t, err)
	assert.Zero(t, i)

	_, err = topo.LevelIndex("thread")
	assert.ErrorIs(t, err, ErrUnknownLevel)
}
