package histogram

import "sort"

// NoRow is returned by cell queries that point to no cell.
const NoRow = -1

type cell struct {
	row    int
	values []float64
}

// column keeps the cells of one histogram column, one per row that received
// a value, plus the cell of the row being accumulated.
type column struct {
	cells    []cell
	current  cell
	modified bool
	it       int
}

// Matrix accumulates (column, statistic) values row by row. Values are added
// to the current row until NewRow rotates it; Finish seals the matrix and
// rewinds the cell cursors.
type Matrix struct {
	columns  []column
	numStats int
	row      int
}

func NewMatrix(numColumns, numStats int) *Matrix {
	return &Matrix{
		columns:  make([]column, numColumns),
		numStats: numStats,
	}
}

func (m *Matrix) NumColumns() int { return len(m.columns) }
func (m *Matrix) NumStats() int   { return m.numStats }

func (m *Matrix) valid(col, stat int) bool {
	return col >= 0 && col < len(m.columns) && stat >= 0 && stat < m.numStats
}

func (m *Matrix) touch(col int) *column {
	c := &m.columns[col]
	if !c.modified {
		c.modified = true
		c.current.row = m.row
		c.current.values = make([]float64, m.numStats)
	}
	return c
}

// AddValue adds value to the current row cell. Adding a zero still marks the
// cell as modified.
func (m *Matrix) AddValue(col, stat int, value float64) {
	if !m.valid(col, stat) {
		return
	}
	m.touch(col).current.values[stat] += value
}

func (m *Matrix) SetValue(col, stat int, value float64) {
	if !m.valid(col, stat) {
		return
	}
	m.touch(col).current.values[stat] = value
}

// Value reads the current row cell.
func (m *Matrix) Value(col, stat int) float64 {
	if !m.valid(col, stat) || !m.columns[col].modified {
		return 0
	}
	return m.columns[col].current.values[stat]
}

func (m *Matrix) CurrentCellModified(col int) bool {
	if col < 0 || col >= len(m.columns) {
		return false
	}
	return m.columns[col].modified
}

// NewRow stores the modified cells of the current row and starts the next one.
func (m *Matrix) NewRow() {
	for i := range m.columns {
		c := &m.columns[i]
		if c.modified {
			c.cells = append(c.cells, c.current)
			c.current = cell{}
			c.modified = false
		}
	}
	m.row++
}

// Finish stores a pending row, if any, and rewinds every cell cursor.
func (m *Matrix) Finish() {
	for i := range m.columns {
		c := &m.columns[i]
		if c.modified {
			c.cells = append(c.cells, c.current)
			c.current = cell{}
			c.modified = false
		}
		c.it = 0
	}
}

// HasValues reports whether any row stored a cell.
func (m *Matrix) HasValues() bool {
	for i := range m.columns {
		if len(m.columns[i].cells) > 0 || m.columns[i].modified {
			return true
		}
	}
	return false
}

func (m *Matrix) SetFirstCell(col int) {
	if col < 0 || col >= len(m.columns) {
		return
	}
	m.columns[col].it = 0
}

func (m *Matrix) SetNextCell(col int) {
	if col < 0 || col >= len(m.columns) {
		return
	}
	if c := &m.columns[col]; c.it < len(c.cells) {
		c.it++
	}
}

// EndCell reports whether the cursor of col went past its last cell.
func (m *Matrix) EndCell(col int) bool {
	if col < 0 || col >= len(m.columns) {
		return true
	}
	c := &m.columns[col]
	return c.it >= len(c.cells)
}

// CurrentValue reads the cell under the cursor of col.
func (m *Matrix) CurrentValue(col, stat int) float64 {
	if !m.valid(col, stat) || m.EndCell(col) {
		return 0
	}
	c := &m.columns[col]
	return c.cells[c.it].values[stat]
}

// CurrentRow returns the row of the cell under the cursor of col, or NoRow.
func (m *Matrix) CurrentRow(col int) int {
	if m.EndCell(col) {
		return NoRow
	}
	c := &m.columns[col]
	return c.cells[c.it].row
}

// CellValue looks up the stored cell of (col, row).
func (m *Matrix) CellValue(col, row, stat int) (float64, bool) {
	if !m.valid(col, stat) {
		return 0, false
	}
	cells := m.columns[col].cells
	i := sort.Search(len(cells), func(i int) bool { return cells[i].row >= row })
	if i == len(cells) || cells[i].row != row {
		return 0, false
	}
	return cells[i].values[stat], true
}
