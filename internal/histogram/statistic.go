package histogram

import "math"

// CalculateData is the traversal context handed to statistic functions for
// every leaf contribution.
type CalculateData struct {
	// Row is the histogram row being computed.
	Row        int
	ControlRow int
	DataRow    int
	Column     int
	Plane      int

	// BeginTime and EndTime bound the contribution, already clipped to the
	// current interval of every composed window.
	BeginTime float64
	EndTime   float64

	// Comm is the communication being evaluated; nil for semantic statistics.
	Comm *CommRecord

	records *RecordList
}

// Statistic is a pluggable metric accumulated by the histogram.
type Statistic interface {
	Name() string

	// CreateComms reports whether the statistic is evaluated per
	// communication. Such statistics must also implement CommStatistic.
	CreateComms() bool

	Init(h *Histogram)
	Execute(data *CalculateData) float64

	// FinishRow is applied to every accumulated cell when a row is closed.
	FinishRow(value float64, column, plane int) float64

	// Reset drops any state kept for the row just closed.
	Reset()
}

// CommStatistic is a Statistic evaluated per communication and accumulated in
// the column of the communication partner.
type CommStatistic interface {
	Statistic
	Partner(data *CalculateData) int
}

// Limits filter what statistic functions take into account.
type Limits struct {
	BurstMin    float64
	BurstMax    float64
	CommSizeMin int64
	CommSizeMax int64
	CommTagMin  int64
	CommTagMax  int64
}

// DefaultLimits lets everything through.
func DefaultLimits() Limits {
	return Limits{
		BurstMin:    0,
		BurstMax:    math.MaxFloat64,
		CommSizeMin: 0,
		CommSizeMax: math.MaxInt64,
		CommTagMin:  0,
		CommTagMax:  math.MaxInt64,
	}
}

func (l Limits) AcceptBurst(duration float64) bool {
	return duration >= l.BurstMin && duration <= l.BurstMax
}

func (l Limits) AcceptComm(r *CommRecord) bool {
	return r.Size >= l.CommSizeMin && r.Size <= l.CommSizeMax &&
		r.Tag >= l.CommTagMin && r.Tag <= l.CommTagMax
}
