package histogram

type rowRange struct {
	first, last int
}

type rowChildInfo struct {
	oneToOne  bool
	rowChilds []rowRange
}

// RowsTranslator composes the rows of windows ordered from the coarsest to the
// finest level into the row space of the histogram.
type RowsTranslator struct {
	childInfo []rowChildInfo
	rows      int
	dropLast  bool
}

// NewRowsTranslator builds the child tables for every adjacent pair of
// windows. With dropLast the row count loses its last row, as the legacy
// row range tables did.
func NewRowsTranslator(windows []Window, dropLast bool) *RowsTranslator {
	t := &RowsTranslator{
		childInfo: make([]rowChildInfo, 0, len(windows)),
		dropLast:  dropLast,
	}
	if len(windows) > 0 {
		t.rows = windows[0].ObjectCount()
	}

	for ii := 0; ii+1 < len(windows); ii++ {
		parent, child := windows[ii], windows[ii+1]
		info := rowChildInfo{
			oneToOne: parent.ObjectCount() == child.ObjectCount(),
		}
		if !info.oneToOne {
			topology := parent.Topology()
			info.rowChilds = make([]rowRange, parent.ObjectCount())
			for iRow := range info.rowChilds {
				first, last := topology.ChildRange(iRow, parent.Level(), child.Level())
				info.rowChilds[iRow] = rowRange{first: first, last: last}
			}
		}
		t.childInfo = append(t.childInfo, info)
	}
	return t
}

// GlobalTranslate maps a row of the window at winIndex to a histogram row.
func (t *RowsTranslator) GlobalTranslate(winIndex, row int) int {
	return row
}

// RowChilds returns the inclusive range of rows of window winIndex+1 owned by
// row of window winIndex.
func (t *RowsTranslator) RowChilds(winIndex, row int) (first, last int) {
	info := t.childInfo[winIndex]
	if info.oneToOne {
		return row, row
	}
	r := info.rowChilds[row]
	return r.first, r.last
}

// TotalRows is the object count of the first window, less one with dropLast.
func (t *RowsTranslator) TotalRows() int {
	if t.dropLast && t.rows > 0 {
		return t.rows - 1
	}
	return t.rows
}
