package histogram

import "sort"

// Window is a per-object sequence of time intervals carrying a scalar value.
// The histogram only reads it: it positions the cursors with Init and moves
// them forward with CalcNext.
type Window interface {
	// Level is the hierarchy depth of the window objects, 0 being the coarsest.
	Level() int
	ObjectCount() int
	Topology() Topology

	Init(beginTime float64, createComms bool)
	CalcNext(row int)

	BeginTime(row int) float64
	EndTime(row int) float64
	Value(row int) float64

	// RecordList holds the communications pending for row. It is only filled
	// when the window was initialized with createComms.
	RecordList(row int) *RecordList
}

// Topology resolves which objects of a finer level belong to an object of a
// coarser one.
type Topology interface {
	// ChildRange returns the inclusive range of childLevel objects owned by
	// row at parentLevel. A coarser childLevel yields the ancestor of row.
	ChildRange(row, parentLevel, childLevel int) (first, last int)
}

// Rewinder is implemented by windows able to move a row back in time. A
// window following a finer one has its rows walked once per child, so the
// traversal rewinds them to the start of every walk.
type Rewinder interface {
	Rewind(row int, time float64)
}

// YRanger is implemented by windows that know their value range. It is used
// to compute the histogram scale automatically.
type YRanger interface {
	YRange() (minY, maxY float64)
}

// ObjectLabeler is implemented by windows able to name their objects.
type ObjectLabeler interface {
	ObjectLabel(row int) string
}

type RecordKind int

const (
	LogicalSend RecordKind = iota
	LogicalReceive
	PhysicalSend
	PhysicalReceive
)

func (k RecordKind) IsSend() bool {
	return k == LogicalSend || k == PhysicalSend
}

func (k RecordKind) IsReceive() bool {
	return k == LogicalReceive || k == PhysicalReceive
}

// CommRecord is a point to point communication seen from one of its ends.
type CommRecord struct {
	Time    float64
	Kind    RecordKind
	Partner int
	Size    int64
	Tag     int64
}

// RecordList keeps the communications of a row ordered by time.
type RecordList struct {
	records []CommRecord
}

func NewRecordList() *RecordList {
	return &RecordList{}
}

// Push inserts r keeping the list ordered; records with equal time keep their
// insertion order.
func (l *RecordList) Push(r CommRecord) {
	i := sort.Search(len(l.records), func(i int) bool {
		return l.records[i].Time > r.Time
	})
	l.records = append(l.records, CommRecord{})
	copy(l.records[i+1:], l.records[i:])
	l.records[i] = r
}

func (l *RecordList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.records)
}

func (l *RecordList) Clear() {
	l.records = l.records[:0]
}

// Consume calls fn once for every record with from <= Time <= to and drops
// it. Records older than from are dropped without being visited.
func (l *RecordList) Consume(from, to float64, fn func(r *CommRecord)) {
	if l == nil {
		return
	}
	kept := l.records[:0]
	for i := range l.records {
		r := l.records[i]
		switch {
		case r.Time < from:
		case r.Time <= to:
			fn(&r)
		default:
			kept = append(kept, r)
		}
	}
	l.records = kept
}
