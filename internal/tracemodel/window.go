package tracemodel

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sanspareilsmyn/tracelens/internal/histogram"
)

// Interval is a [Begin, End) span of an object during which the window
// evaluates to Value.
type Interval struct {
	Begin float64 `yaml:"begin"`
	End   float64 `yaml:"end"`
	Value float64 `yaml:"value"`
}

// Window is an in-memory histogram.Window. Every row is a gapless sequence of
// intervals starting at time 0; gaps evaluate to 0 and so does everything
// after the last interval.
type Window struct {
	name     string
	level    int
	topology *Topology

	rows  [][]Interval
	comms [][]histogram.CommRecord
	minY  float64
	maxY  float64

	cursor      []int
	nextComm    []int
	lists       []*histogram.RecordList
	createComms bool
}

var (
	_ histogram.Window   = (*Window)(nil)
	_ histogram.Rewinder = (*Window)(nil)
)

// NewWindow builds a window on a topology level. rows must hold one interval
// list per object of that level; comms, when not nil, one record list per
// object.
func NewWindow(name string, t *Topology, level int, rows [][]Interval, comms [][]histogram.CommRecord) (*Window, error) {
	if level < 0 || level >= t.NumLevels() {
		return nil, fmt.Errorf("%w: window %q level %d", ErrUnknownLevel, name, level)
	}
	objects := t.Objects(level)
	if len(rows) > objects {
		return nil, fmt.Errorf("%w: window %q has %d rows for %d objects",
			ErrInvalidModel, name, len(rows), objects)
	}
	if comms != nil && len(comms) > objects {
		return nil, fmt.Errorf("%w: window %q has communications for %d objects out of %d",
			ErrInvalidModel, name, len(comms), objects)
	}

	w := &Window{
		name:     name,
		level:    level,
		topology: t,
		rows:     make([][]Interval, objects),
		comms:    make([][]histogram.CommRecord, objects),
		cursor:   make([]int, objects),
		nextComm: make([]int, objects),
		lists:    make([]*histogram.RecordList, objects),
	}

	first := true
	for r, intervals := range rows {
		filled, err := fillGaps(intervals)
		if err != nil {
			return nil, fmt.Errorf("window %q row %d: %w", name, r, err)
		}
		w.rows[r] = filled
		for _, i := range intervals {
			if first {
				w.minY, w.maxY = i.Value, i.Value
				first = false
				continue
			}
			w.minY = math.Min(w.minY, i.Value)
			w.maxY = math.Max(w.maxY, i.Value)
		}
	}

	for r, records := range comms {
		for _, c := range records {
			if c.Partner < 0 || c.Partner >= objects {
				return nil, fmt.Errorf("%w: window %q row %d communicates with unknown partner %d",
					ErrInvalidModel, name, r, c.Partner)
			}
		}
		sorted := append([]histogram.CommRecord(nil), records...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
		w.comms[r] = sorted
	}
	for r := range w.lists {
		w.lists[r] = histogram.NewRecordList()
	}
	return w, nil
}

// fillGaps sorts the intervals and inserts zero valued ones where they do not
// touch, starting from time 0.
func fillGaps(intervals []Interval) ([]Interval, error) {
	sorted := append([]Interval(nil), intervals...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Begin < sorted[j].Begin })

	filled := make([]Interval, 0, len(sorted))
	last := 0.0
	for _, i := range sorted {
		if i.Begin < 0 || i.End <= i.Begin {
			return nil, fmt.Errorf("%w: interval [%g, %g)", ErrInvalidModel, i.Begin, i.End)
		}
		if i.Begin < last {
			return nil, fmt.Errorf("%w: interval [%g, %g) overlaps the previous one", ErrInvalidModel, i.Begin, i.End)
		}
		if i.Begin > last {
			filled = append(filled, Interval{Begin: last, End: i.Begin})
		}
		filled = append(filled, i)
		last = i.End
	}
	return filled, nil
}

func (w *Window) Name() string                 { return w.name }
func (w *Window) Level() int                   { return w.level }
func (w *Window) ObjectCount() int             { return len(w.rows) }
func (w *Window) Topology() histogram.Topology { return w.topology }
func (w *Window) YRange() (minY, maxY float64) { return w.minY, w.maxY }

func (w *Window) ObjectLabel(row int) string {
	return fmt.Sprintf("%s %d", strings.ToUpper(w.topology.LevelName(w.level)), row+1)
}

// LastEnd is the end of the last interval of any row.
func (w *Window) LastEnd() float64 {
	end := 0.0
	for _, r := range w.rows {
		if len(r) > 0 {
			end = math.Max(end, r[len(r)-1].End)
		}
	}
	return end
}

// Init places every row on the interval containing beginTime. With
// createComms the communications of that interval become pending.
func (w *Window) Init(beginTime float64, createComms bool) {
	w.createComms = createComms
	for r, intervals := range w.rows {
		w.cursor[r] = sort.Search(len(intervals), func(i int) bool {
			return intervals[i].End > beginTime
		})
		w.nextComm[r] = sort.Search(len(w.comms[r]), func(i int) bool {
			return w.comms[r][i].Time >= beginTime
		})
		w.lists[r].Clear()
		w.feed(r)
	}
}

func (w *Window) CalcNext(row int) {
	if w.cursor[row] < len(w.rows[row]) {
		w.cursor[row]++
	}
	w.feed(row)
}

// Rewind moves row back to the interval containing time. Pending
// communications are left untouched.
func (w *Window) Rewind(row int, time float64) {
	intervals := w.rows[row]
	w.cursor[row] = sort.Search(len(intervals), func(i int) bool {
		return intervals[i].End > time
	})
}

// feed makes pending every communication of row that happens up to the end
// of its current interval. A record on the boundary belongs to the interval
// it closes, so it is still seen when the execution stops there.
func (w *Window) feed(row int) {
	if !w.createComms {
		return
	}
	end := w.EndTime(row)
	records := w.comms[row]
	for w.nextComm[row] < len(records) && records[w.nextComm[row]].Time <= end {
		w.lists[row].Push(records[w.nextComm[row]])
		w.nextComm[row]++
	}
}

func (w *Window) BeginTime(row int) float64 {
	intervals := w.rows[row]
	if c := w.cursor[row]; c < len(intervals) {
		return intervals[c].Begin
	}
	if len(intervals) == 0 {
		return 0
	}
	return intervals[len(intervals)-1].End
}

func (w *Window) EndTime(row int) float64 {
	if c := w.cursor[row]; c < len(w.rows[row]) {
		return w.rows[row][c].End
	}
	return math.Inf(1)
}

func (w *Window) Value(row int) float64 {
	if c := w.cursor[row]; c < len(w.rows[row]) {
		return w.rows[row][c].Value
	}
	return 0
}

func (w *Window) RecordList(row int) *histogram.RecordList {
	if !w.createComms {
		return nil
	}
	return w.lists[row]
}
