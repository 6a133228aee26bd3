package message

import (
	"time"
)

// ExecuteRequest asks for a histogram over [BeginTime, EndTime) of the loaded
// trace. Empty fields fall back to the configured histogram.
type ExecuteRequest struct {
	ID            string   `json:"id"`
	BeginTime     float64  `json:"beginTime"`
	EndTime       float64  `json:"endTime"`                 // 0 means the end of the trace
	Statistics    []string `json:"statistics,omitempty"`    // Replaces the configured statistics
	PlaneMinValue *float64 `json:"planeMinValue,omitempty"` // Plane to select in 3D histograms
	RequestedAt   string   `json:"requestedAt,omitempty"`
}

// RequestedTime parses RequestedAt with the usual timestamp layouts.
func (r ExecuteRequest) RequestedTime() (time.Time, bool) {
	if r.RequestedAt == "" {
		return time.Time{}, false
	}

	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, r.RequestedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Result is a snapshot of an executed histogram, on the plane selected after
// the execution.
type Result struct {
	RequestID       string            `json:"requestId,omitempty"`
	BeginTime       float64           `json:"beginTime"`
	EndTime         float64           `json:"endTime"`
	ThreeDimensions bool              `json:"threeDimensions"`
	Plane           int               `json:"plane"`
	PlaneLabel      string            `json:"planeLabel,omitempty"`
	Rows            []string          `json:"rows"`
	Columns         []string          `json:"columns"`
	Statistics      []StatisticResult `json:"statistics"`
	ExecutedAt      time.Time         `json:"executedAt"`
}

// StatisticResult holds the cells and totals of one statistic. Communication
// statistics are indexed by partner row instead of column.
type StatisticResult struct {
	Name          string    `json:"name"`
	Communication bool      `json:"communication"`
	Cells         []Cell    `json:"cells"`
	ColumnTotals  []float64 `json:"columnTotals"`
	RowTotals     []float64 `json:"rowTotals"`
	GrandTotal    float64   `json:"grandTotal"`
}

type Cell struct {
	Row    int     `json:"row"`
	Column int     `json:"column"`
	Value  float64 `json:"value"`
}

// Statistic returns the result of the named statistic.
func (r *Result) Statistic(name string) (*StatisticResult, bool) {
	for i := range r.Statistics {
		if r.Statistics[i].Name == name {
			return &r.Statistics[i], true
		}
	}
	return nil, false
}
