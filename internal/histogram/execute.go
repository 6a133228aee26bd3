package histogram

import (
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
)

// Execute computes the histogram over [beginTime, endTime). Without a data
// window the control window is used as data window.
func (h *Histogram) Execute(beginTime, endTime float64) error {
	h.exec = nil
	if h.controlWindow == nil {
		return ErrNoControlWindow
	}
	if h.dataWindow == nil {
		h.dataWindow = h.controlWindow
	}

	start := time.Now()
	threeDimensions := h.extraControlWindow != nil

	if h.computeScale {
		h.control = h.scaleFor(h.controlWindow, h.control)
		if threeDimensions {
			h.extraControl = h.scaleFor(h.extraControlWindow, h.extraControl)
		}
	}

	columns, err := NewColumnTranslator(h.control.Min, h.control.Max, h.control.Delta)
	if err != nil {
		return fmt.Errorf("control axis: %w", err)
	}
	var planes *ColumnTranslator
	if threeDimensions {
		planes, err = NewColumnTranslator(h.extraControl.Min, h.extraControl.Max, h.extraControl.Delta)
		if err != nil {
			return fmt.Errorf("extra control axis: %w", err)
		}
	}

	h.beginTime = beginTime
	h.endTime = endTime
	h.threeDimensions = threeDimensions

	windows := h.orderWindows()
	rows := NewRowsTranslator(windows, h.legacyRowCount)

	e := &execution{
		windows:   windows,
		rewind:    rewinders(windows),
		rows:      rows,
		columns:   columns,
		planes:    planes,
		numRows:   rows.TotalRows(),
		numCols:   columns.TotalColumns(),
		numPlanes: 1,
	}
	if threeDimensions {
		e.numPlanes = planes.TotalColumns()
	}
	h.initMatrix(e)
	h.initTotals(e)
	h.exec = e

	h.logger.Debug("Executing histogram",
		zap.Float64("begin_time", beginTime),
		zap.Float64("end_time", endTime),
		zap.Int("windows", len(windows)),
		zap.Int("rows", e.numRows),
		zap.Int("columns", e.numCols),
		zap.Int("planes", e.numPlanes),
		zap.Bool("three_dimensions", threeDimensions),
		zap.Int("statistics", len(h.statistics)),
		zap.Int("comm_statistics", len(h.commStatistics)),
	)

	h.initWindows(beginTime)
	h.initStatistics()

	if e.numRows > 0 {
		h.recursiveExecution(beginTime, endTime, 0, e.numRows-1, 0, &CalculateData{})
	}

	e.cube.Finish()
	if e.commCube != nil {
		e.commCube.Finish()
	}
	e.totals.Finish()
	e.rowTotals.Finish()
	if e.commTotals != nil {
		e.commTotals.Finish()
		e.rowCommTotals.Finish()
	}

	h.selectPlanes()

	e.stats.flush()
	elapsed := time.Since(start)
	executeDuration.Observe(elapsed.Seconds())
	h.logger.Debug("Histogram executed",
		zap.Duration("elapsed", elapsed),
		zap.Int("rows_closed", e.stats.rowsClosed),
		zap.Int("semantic_contributions", e.stats.semantic),
		zap.Int("comm_contributions", e.stats.comm),
		zap.Int("column_misses", e.stats.columnMiss),
		zap.Int("plane_misses", e.stats.planeMiss),
	)
	return nil
}

// orderWindows lists the windows from the coarsest to the finest level, the
// data window last. An extra control window goes first on equal levels.
// Consecutive repetitions of a window are composed once.
func (h *Histogram) orderWindows() []Window {
	var ordered []Window
	switch {
	case h.extraControlWindow == nil:
		ordered = []Window{h.controlWindow}
	case h.extraControlWindow.Level() <= h.controlWindow.Level():
		ordered = []Window{h.extraControlWindow, h.controlWindow}
	default:
		ordered = []Window{h.controlWindow, h.extraControlWindow}
	}
	ordered = append(ordered, h.dataWindow)
	return slices.Compact(ordered)
}

// rewinders returns, per ordered window, the Rewinder to use when its rows
// are revisited. Rows are revisited below the first step from a finer window
// to a coarser one. A window repeating an earlier one keeps the cursor of its
// first occurrence.
func rewinders(windows []Window) []Rewinder {
	out := make([]Rewinder, len(windows))
	revisited := false
	for i := 1; i < len(windows); i++ {
		if windows[i].Level() < windows[i-1].Level() {
			revisited = true
		}
		if !revisited || slices.Contains(windows[:i], windows[i]) {
			continue
		}
		if r, ok := windows[i].(Rewinder); ok {
			out[i] = r
		}
	}
	return out
}

// scaleFor derives an axis from the Y range of w, keeping current when w does
// not expose one.
func (h *Histogram) scaleFor(w Window, current Axis) Axis {
	ranger, ok := w.(YRanger)
	if !ok {
		h.logger.Debug("Window has no Y range, keeping configured scale")
		return current
	}
	minY, maxY := ranger.YRange()
	n := float64(h.scaleColumns)
	a := Axis{Min: minY, Max: maxY}

	switch span := maxY - minY; {
	case span == 0:
		a.Delta = 1
		a.Max = minY + 1
	case span < 1:
		a.Delta = span / n
	case span < n:
		a.Delta = 1
	default:
		a.Delta = span / n
	}
	return a
}

func (h *Histogram) initMatrix(e *execution) {
	e.cube = NewCube(e.numPlanes, e.numCols, len(h.statistics))
	if h.CreateComms() {
		e.commCube = NewCube(e.numPlanes, e.numRows, len(h.commStatistics))
	}
}

func (h *Histogram) initTotals(e *execution) {
	e.totals = NewTotals(len(h.statistics), e.numCols, e.numPlanes)
	e.rowTotals = NewTotals(len(h.statistics), e.numRows, e.numPlanes)
	if h.CreateComms() {
		e.commTotals = NewTotals(len(h.commStatistics), e.numRows, e.numPlanes)
		e.rowCommTotals = NewTotals(len(h.commStatistics), e.numRows, e.numPlanes)
	}
}

// initWindows positions every distinct window at beginTime. Only the control
// window collects communications.
func (h *Histogram) initWindows(beginTime float64) {
	h.controlWindow.Init(beginTime, h.CreateComms())

	if h.extraControlWindow != nil && h.extraControlWindow != h.controlWindow {
		h.extraControlWindow.Init(beginTime, false)
	}
	if h.dataWindow != h.controlWindow && h.dataWindow != h.extraControlWindow {
		h.dataWindow.Init(beginTime, false)
	}
}

func (h *Histogram) initStatistics() {
	for _, s := range h.statistics {
		s.Init(h)
	}
	for _, s := range h.commStatistics {
		s.Init(h)
	}
}

// selectPlanes picks the first plane with values, semantic and communication
// independently. A pending SetPlaneMinValue request wins when the plane
// holding that value has values.
func (h *Histogram) selectPlanes() {
	h.selectedPlane, h.commSelectedPlane = 0, 0
	if !h.threeDimensions {
		return
	}
	e := h.exec

	found, commFound := false, false
	for i := 0; i < e.numPlanes; i++ {
		if !found && e.cube.PlaneWithValues(i) {
			h.selectedPlane, found = i, true
		}
		if !commFound && e.commCube != nil && e.commCube.PlaneWithValues(i) {
			h.commSelectedPlane, commFound = i, true
		}
	}

	if !h.futurePlane {
		return
	}
	h.futurePlane = false
	for i := 0; i < e.numPlanes; i++ {
		from := e.planes.Min() + e.planes.Delta()*float64(i)
		if h.planeMinValue < from || h.planeMinValue >= from+e.planes.Delta() {
			continue
		}
		if e.cube.PlaneWithValues(i) {
			h.selectedPlane = i
		}
		if e.commCube != nil && e.commCube.PlaneWithValues(i) {
			h.commSelectedPlane = i
		}
	}
}
