package histogram

// recursiveExecution walks rows [fromRow, toRow] of window winIndex over
// [fromTime, toTime), descending into the rows each interval owns in the next
// window. Rows of the first window are closed out as soon as they are done.
func (h *Histogram) recursiveExecution(fromTime, toTime float64, fromRow, toRow, winIndex int, data *CalculateData) {
	e := h.exec
	w := e.windows[winIndex]

	for iRow := fromRow; iRow <= toRow; iRow++ {
		if winIndex == 0 {
			data.Row = e.rows.GlobalTranslate(winIndex, iRow)
		}
		if w == h.controlWindow {
			data.ControlRow = iRow
		}
		if w == h.dataWindow {
			data.DataRow = iRow
		}

		if r := e.rewind[winIndex]; r != nil && w.BeginTime(iRow) > fromTime {
			r.Rewind(iRow, fromTime)
		}

		for w.EndTime(iRow) <= fromTime {
			w.CalcNext(iRow)
		}

		for w.EndTime(iRow) < toTime {
			h.calculate(iRow, fromTime, toTime, winIndex, data)
			w.CalcNext(iRow)
		}

		if w.BeginTime(iRow) < toTime {
			h.calculate(iRow, fromTime, toTime, winIndex, data)
		}

		if winIndex == 0 {
			h.finishRow(data)
		}
	}
}

func (h *Histogram) calculate(iRow int, fromTime, toTime float64, winIndex int, data *CalculateData) {
	e := h.exec
	w := e.windows[winIndex]

	if w == h.controlWindow {
		column, ok := e.columns.Column(w.Value(iRow))
		if !ok {
			e.stats.columnMiss++
			return
		}
		data.Column = column
		data.records = w.RecordList(iRow)
	}
	if h.threeDimensions && w == h.extraControlWindow {
		plane, ok := e.planes.Column(w.Value(iRow))
		if !ok {
			e.stats.planeMiss++
			return
		}
		data.Plane = plane
	}

	childFromTime := max(fromTime, w.BeginTime(iRow))
	childToTime := min(toTime, w.EndTime(iRow))

	if winIndex == len(e.windows)-1 {
		h.leafContribution(childFromTime, childToTime, data)
		return
	}

	childFromRow, childToRow := e.rows.RowChilds(winIndex, iRow)
	h.recursiveExecution(childFromTime, childToTime, childFromRow, childToRow, winIndex+1, data)
}

func (h *Histogram) leafContribution(fromTime, toTime float64, data *CalculateData) {
	e := h.exec
	data.BeginTime = fromTime
	data.EndTime = toTime

	if h.CreateComms() {
		data.records.Consume(fromTime, toTime, func(r *CommRecord) {
			data.Comm = r
			for iStat, stat := range h.commStatistics {
				value := stat.Execute(data)
				if value == 0 {
					continue
				}
				e.commCube.AddValue(data.Plane, stat.Partner(data), iStat, value)
			}
			e.stats.comm++
		})
		data.Comm = nil
	}

	for iStat, stat := range h.statistics {
		e.cube.AddValue(data.Plane, data.Column, iStat, stat.Execute(data))
	}
	if len(h.statistics) > 0 {
		e.stats.semantic++
	}
}

// finishRow passes every modified cell of the current row through the
// FinishRow hook of its statistic, folds it into the totals and rotates the
// accumulators.
func (h *Histogram) finishRow(data *CalculateData) {
	e := h.exec

	if e.commCube != nil {
		h.closeOut(e.commCube, e.numRows, len(h.commStatistics),
			func(stat int, value float64, col, plane int) float64 {
				return h.commStatistics[stat].FinishRow(value, col, plane)
			},
			e.commTotals, e.rowCommTotals, data.Row)
		for _, s := range h.commStatistics {
			s.Reset()
		}
	}

	h.closeOut(e.cube, e.numCols, len(h.statistics),
		func(stat int, value float64, col, plane int) float64 {
			return h.statistics[stat].FinishRow(value, col, plane)
		},
		e.totals, e.rowTotals, data.Row)
	for _, s := range h.statistics {
		s.Reset()
	}

	if e.commCube != nil {
		e.commCube.NewRow()
	}
	e.cube.NewRow()
	e.stats.rowsClosed++
}

func (h *Histogram) closeOut(cube *Cube, numColumns, numStats int,
	finish func(stat int, value float64, col, plane int) float64,
	columnTotals, rowTotals *Totals, row int) {
	for plane := 0; plane < cube.NumPlanes(); plane++ {
		if h.threeDimensions && !cube.PlaneWithValues(plane) {
			continue
		}
		for col := 0; col < numColumns; col++ {
			if !cube.CurrentCellModified(plane, col) {
				continue
			}
			for stat := 0; stat < numStats; stat++ {
				value := finish(stat, cube.Value(plane, col, stat), col, plane)
				cube.SetValue(plane, col, stat, value)
				columnTotals.NewValue(value, stat, col, plane)
				rowTotals.NewValue(value, stat, row, plane)
			}
		}
	}
}
