package tracemodel

import (
	"fmt"
	"sort"
	"strings"
)

// Level is one level of the object hierarchy. Parents maps every object to
// its owner in the previous level and must be non decreasing, so that the
// objects owned by a parent are contiguous.
type Level struct {
	Name    string `yaml:"name"`
	Objects int    `yaml:"objects"`
	Parents []int  `yaml:"parents"`
}

// Topology is an ordered list of levels, the first one being the coarsest.
type Topology struct {
	levels []Level
}

func NewTopology(levels ...Level) (*Topology, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("%w: topology has no levels", ErrInvalidModel)
	}
	for i, l := range levels {
		if l.Objects < 0 {
			return nil, fmt.Errorf("%w: level %q has a negative object count", ErrInvalidModel, l.Name)
		}
		if i == 0 {
			if len(l.Parents) != 0 {
				return nil, fmt.Errorf("%w: top level %q cannot have parents", ErrInvalidModel, l.Name)
			}
			continue
		}
		if len(l.Parents) != l.Objects {
			return nil, fmt.Errorf("%w: level %q has %d objects and %d parents",
				ErrInvalidModel, l.Name, l.Objects, len(l.Parents))
		}
		for j, p := range l.Parents {
			if p < 0 || p >= levels[i-1].Objects {
				return nil, fmt.Errorf("%w: level %q object %d has parent %d out of range",
					ErrInvalidModel, l.Name, j, p)
			}
			if j > 0 && p < l.Parents[j-1] {
				return nil, fmt.Errorf("%w: level %q parents are not contiguous", ErrInvalidModel, l.Name)
			}
		}
	}
	return &Topology{levels: levels}, nil
}

func (t *Topology) NumLevels() int { return len(t.levels) }

// LevelIndex resolves a level name, case insensitively.
func (t *Topology) LevelIndex(name string) (int, error) {
	for i, l := range t.levels {
		if strings.EqualFold(l.Name, name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
}

func (t *Topology) LevelName(level int) string {
	if level < 0 || level >= len(t.levels) {
		return ""
	}
	return t.levels[level].Name
}

func (t *Topology) Objects(level int) int {
	if level < 0 || level >= len(t.levels) {
		return 0
	}
	return t.levels[level].Objects
}

// Ancestor returns the object of level to that owns object obj of level from.
func (t *Topology) Ancestor(obj, from, to int) int {
	for l := from; l > to; l-- {
		obj = t.levels[l].Parents[obj]
	}
	return obj
}

// ChildRange returns the inclusive range of childLevel objects owned by row.
// A row owning nothing yields an empty range (first > last). When childLevel
// is coarser than parentLevel the range holds the single ancestor of row.
func (t *Topology) ChildRange(row, parentLevel, childLevel int) (first, last int) {
	if parentLevel >= len(t.levels) || childLevel < 0 || childLevel == parentLevel {
		return row, row
	}
	if childLevel < parentLevel {
		a := t.Ancestor(row, parentLevel, childLevel)
		return a, a
	}
	if childLevel >= len(t.levels) || parentLevel < 0 {
		return row, row
	}
	n := t.levels[childLevel].Objects
	first = sort.Search(n, func(i int) bool {
		return t.Ancestor(i, childLevel, parentLevel) >= row
	})
	end := sort.Search(n, func(i int) bool {
		return t.Ancestor(i, childLevel, parentLevel) > row
	})
	return first, end - 1
}
