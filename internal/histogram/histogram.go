// Package histogram computes dense statistics over trace windows: for every
// object row, how much of each statistic falls in every bin of the control
// window values, optionally split in planes by an extra control window.
//
// A Histogram is configured with windows, axis ranges and statistic functions
// and then executed over a time range. Execute rebuilds every translator,
// accumulator and totals table, so results of a previous run are discarded.
// Query methods are only meaningful after a successful Execute and return
// zero values, NoRow or empty totals otherwise.
package histogram

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// Axis is a [Min, Max) range split in bins of width Delta.
type Axis struct {
	Min   float64
	Max   float64
	Delta float64
}

const defaultScaleColumns = 20

// Histogram is not safe for concurrent use.
type Histogram struct {
	logger *zap.Logger

	controlWindow      Window
	dataWindow         Window
	extraControlWindow Window

	control      Axis
	extraControl Axis
	dataMin      float64
	dataMax      float64
	limits       Limits

	inclusive      bool
	horizontal     bool
	legacyRowCount bool
	computeScale   bool
	scaleColumns   int

	futurePlane   bool
	planeMinValue float64

	statistics     []Statistic
	commStatistics []CommStatistic

	beginTime       float64
	endTime         float64
	threeDimensions bool

	exec              *execution
	selectedPlane     int
	commSelectedPlane int
}

// execution owns everything built by one Execute call.
type execution struct {
	windows []Window
	rewind  []Rewinder
	rows    *RowsTranslator
	columns *ColumnTranslator
	planes  *ColumnTranslator

	numRows   int
	numCols   int
	numPlanes int

	cube     *Cube
	commCube *Cube

	totals        *Totals
	rowTotals     *Totals
	commTotals    *Totals
	rowCommTotals *Totals

	stats executeStats
}

var emptyTotals = NewTotals(0, 0, 0)

func New(logger *zap.Logger) *Histogram {
	return &Histogram{
		logger:       logger,
		control:      Axis{Min: 0, Max: 1, Delta: 1},
		extraControl: Axis{Min: 0, Max: 1, Delta: 1},
		dataMin:      0,
		dataMax:      1,
		limits:       DefaultLimits(),
		horizontal:   true,
		scaleColumns: defaultScaleColumns,
	}
}

// SetControlWindow sets the window whose values select the column.
func (h *Histogram) SetControlWindow(w Window) { h.controlWindow = w }

// SetDataWindow sets the window statistics read values from. When unset,
// Execute falls back to the control window and keeps it as data window.
func (h *Histogram) SetDataWindow(w Window) { h.dataWindow = w }

// SetExtraControlWindow sets the window whose values select the plane. Any
// extra control window makes the histogram three dimensional.
func (h *Histogram) SetExtraControlWindow(w Window) { h.extraControlWindow = w }

func (h *Histogram) ClearControlWindow()      { h.controlWindow = nil }
func (h *Histogram) ClearDataWindow()         { h.dataWindow = nil }
func (h *Histogram) ClearExtraControlWindow() { h.extraControlWindow = nil }

func (h *Histogram) ControlWindow() Window      { return h.controlWindow }
func (h *Histogram) DataWindow() Window         { return h.dataWindow }
func (h *Histogram) ExtraControlWindow() Window { return h.extraControlWindow }

// SetControlAxis sets the column range. It is overwritten by Execute when
// ComputeScale is on.
func (h *Histogram) SetControlAxis(a Axis) { h.control = a }

// ControlAxis returns the column range used by the last Execute, or the
// configured one before any.
func (h *Histogram) ControlAxis() Axis { return h.control }

// SetExtraControlAxis sets the plane range, overwritten like the control axis.
func (h *Histogram) SetExtraControlAxis(a Axis) { h.extraControl = a }

func (h *Histogram) ExtraControlAxis() Axis { return h.extraControl }

// SetDataRange records the expected range of the data window values. It is
// informational and does not filter anything.
func (h *Histogram) SetDataRange(minValue, maxValue float64) {
	h.dataMin, h.dataMax = minValue, maxValue
}

// DataMin and DataMax return the range given to SetDataRange.
func (h *Histogram) DataMin() float64 { return h.dataMin }
func (h *Histogram) DataMax() float64 { return h.dataMax }

// SetLimits sets the bounds statistics use to filter bursts and
// communications.
func (h *Histogram) SetLimits(l Limits) { h.limits = l }
func (h *Histogram) Limits() Limits     { return h.limits }

// SetInclusive records whether values on the data range bounds count as
// inside. Like SetDataRange it is informational.
func (h *Histogram) SetInclusive(v bool) { h.inclusive = v }
func (h *Histogram) Inclusive() bool     { return h.inclusive }

// SetHorizontal selects which totals SemanticTotals and CommTotals return:
// column totals when true, row totals otherwise.
func (h *Histogram) SetHorizontal(v bool) { h.horizontal = v }
func (h *Histogram) Horizontal() bool     { return h.horizontal }

// SetLegacyRowCount makes the row translator drop the last row.
func (h *Histogram) SetLegacyRowCount(v bool) { h.legacyRowCount = v }
func (h *Histogram) LegacyRowCount() bool     { return h.legacyRowCount }

// SetComputeScale makes Execute derive the axis ranges from the Y range of
// the control and extra control windows, aiming at n columns.
func (h *Histogram) SetComputeScale(v bool) { h.computeScale = v }
func (h *Histogram) ComputeScale() bool     { return h.computeScale }

func (h *Histogram) SetScaleColumns(n int) {
	if n > 0 {
		h.scaleColumns = n
	}
}

// SetPlaneMinValue asks the next Execute to select the plane containing v.
func (h *Histogram) SetPlaneMinValue(v float64) {
	h.planeMinValue = v
	h.futurePlane = true
}

// PushbackStatistic registers s after the statistics already registered.
// Semantic and communication statistics are numbered independently.
func (h *Histogram) PushbackStatistic(s Statistic) error {
	if !s.CreateComms() {
		h.statistics = append(h.statistics, s)
		return nil
	}
	cs, ok := s.(CommStatistic)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotCommStatistic, s.Name())
	}
	h.commStatistics = append(h.commStatistics, cs)
	return nil
}

func (h *Histogram) ClearStatistics() {
	h.statistics = nil
	h.commStatistics = nil
}

func (h *Histogram) Statistics() []Statistic         { return h.statistics }
func (h *Histogram) CommStatistics() []CommStatistic { return h.commStatistics }

// CreateComms reports whether communication statistics are registered.
func (h *Histogram) CreateComms() bool {
	return len(h.commStatistics) > 0
}

func (h *Histogram) ThreeDimensions() bool { return h.threeDimensions }
func (h *Histogram) BeginTime() float64    { return h.beginTime }
func (h *Histogram) EndTime() float64      { return h.endTime }

func (h *Histogram) NumRows() int {
	if h.exec == nil {
		return 0
	}
	return h.exec.numRows
}

func (h *Histogram) NumColumns() int {
	if h.exec == nil {
		return 0
	}
	return h.exec.numCols
}

func (h *Histogram) NumPlanes() int {
	if h.exec == nil {
		return 0
	}
	return h.exec.numPlanes
}

func (h *Histogram) cube() *Cube {
	if h.exec == nil {
		return nil
	}
	return h.exec.cube
}

func (h *Histogram) commCube() *Cube {
	if h.exec == nil {
		return nil
	}
	return h.exec.commCube
}

func (h *Histogram) CurrentValue(col, stat, plane int) float64 {
	if c := h.cube(); c != nil {
		return c.CurrentValue(plane, col, stat)
	}
	return 0
}

func (h *Histogram) CurrentRow(col, plane int) int {
	if c := h.cube(); c != nil {
		return c.CurrentRow(plane, col)
	}
	return NoRow
}

func (h *Histogram) SetFirstCell(col, plane int) {
	if c := h.cube(); c != nil {
		c.SetFirstCell(plane, col)
	}
}

func (h *Histogram) SetNextCell(col, plane int) {
	if c := h.cube(); c != nil {
		c.SetNextCell(plane, col)
	}
}

func (h *Histogram) EndCell(col, plane int) bool {
	if c := h.cube(); c != nil {
		return c.EndCell(plane, col)
	}
	return true
}

// PlaneWithValues is always true for two dimensional histograms.
func (h *Histogram) PlaneWithValues(plane int) bool {
	if !h.threeDimensions {
		return true
	}
	if c := h.cube(); c != nil {
		return c.PlaneWithValues(plane)
	}
	return false
}

func (h *Histogram) CellValue(col, row, stat, plane int) (float64, bool) {
	if c := h.cube(); c != nil {
		return c.CellValue(plane, col, row, stat)
	}
	return 0, false
}

func (h *Histogram) CommCurrentValue(col, stat, plane int) float64 {
	if c := h.commCube(); c != nil {
		return c.CurrentValue(plane, col, stat)
	}
	return 0
}

func (h *Histogram) CommCurrentRow(col, plane int) int {
	if c := h.commCube(); c != nil {
		return c.CurrentRow(plane, col)
	}
	return NoRow
}

func (h *Histogram) SetCommFirstCell(col, plane int) {
	if c := h.commCube(); c != nil {
		c.SetFirstCell(plane, col)
	}
}

func (h *Histogram) SetCommNextCell(col, plane int) {
	if c := h.commCube(); c != nil {
		c.SetNextCell(plane, col)
	}
}

func (h *Histogram) EndCommCell(col, plane int) bool {
	if c := h.commCube(); c != nil {
		return c.EndCell(plane, col)
	}
	return true
}

func (h *Histogram) PlaneCommWithValues(plane int) bool {
	if !h.threeDimensions {
		return true
	}
	if c := h.commCube(); c != nil {
		return c.PlaneWithValues(plane)
	}
	return false
}

func (h *Histogram) CommCellValue(col, row, stat, plane int) (float64, bool) {
	if c := h.commCube(); c != nil {
		return c.CellValue(plane, col, row, stat)
	}
	return 0, false
}

func orEmpty(t *Totals) *Totals {
	if t == nil {
		return emptyTotals
	}
	return t
}

// ColumnTotals are indexed by control column.
func (h *Histogram) ColumnTotals() *Totals {
	if h.exec == nil {
		return emptyTotals
	}
	return orEmpty(h.exec.totals)
}

// RowTotals are indexed by histogram row.
func (h *Histogram) RowTotals() *Totals {
	if h.exec == nil {
		return emptyTotals
	}
	return orEmpty(h.exec.rowTotals)
}

// CommColumnTotals are indexed by partner row.
func (h *Histogram) CommColumnTotals() *Totals {
	if h.exec == nil {
		return emptyTotals
	}
	return orEmpty(h.exec.commTotals)
}

func (h *Histogram) CommRowTotals() *Totals {
	if h.exec == nil {
		return emptyTotals
	}
	return orEmpty(h.exec.rowCommTotals)
}

func (h *Histogram) SemanticTotals() *Totals {
	if h.horizontal {
		return h.ColumnTotals()
	}
	return h.RowTotals()
}

func (h *Histogram) CommTotals() *Totals {
	if h.horizontal {
		return h.CommColumnTotals()
	}
	return h.CommRowTotals()
}

// SelectedPlane is the plane a presentation layer should show first.
func (h *Histogram) SelectedPlane() int     { return h.selectedPlane }
func (h *Histogram) CommSelectedPlane() int { return h.commSelectedPlane }

func (h *Histogram) ColumnLabel(col int) string {
	return axisLabel(h.control, col)
}

func (h *Histogram) PlaneLabel(plane int) string {
	return axisLabel(h.extraControl, plane)
}

// RowLabel names a histogram row after the objects of the coarsest window.
func (h *Histogram) RowLabel(row int) string {
	if h.exec != nil && len(h.exec.windows) > 0 {
		if l, ok := h.exec.windows[0].(ObjectLabeler); ok {
			return l.ObjectLabel(row)
		}
	}
	return strconv.Itoa(row)
}

func axisLabel(a Axis, bin int) string {
	from := a.Min + a.Delta*float64(bin)
	if a.Delta == 1 {
		return formatLimit(from)
	}
	to := from + a.Delta
	if to > a.Max {
		to = a.Max
	}
	return "[" + formatLimit(from) + ", " + formatLimit(to) + ")"
}

func formatLimit(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
