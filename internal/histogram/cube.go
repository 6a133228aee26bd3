package histogram

// Cube is a stack of matrices, one per plane, rotated together.
type Cube struct {
	planes    []*Matrix
	hasValues []bool
}

func NewCube(numPlanes, numColumns, numStats int) *Cube {
	c := &Cube{
		planes:    make([]*Matrix, numPlanes),
		hasValues: make([]bool, numPlanes),
	}
	for i := range c.planes {
		c.planes[i] = NewMatrix(numColumns, numStats)
	}
	return c
}

func (c *Cube) NumPlanes() int { return len(c.planes) }

func (c *Cube) plane(plane int) *Matrix {
	if plane < 0 || plane >= len(c.planes) {
		return nil
	}
	return c.planes[plane]
}

func (c *Cube) AddValue(plane, col, stat int, value float64) {
	m := c.plane(plane)
	if m == nil || !m.valid(col, stat) {
		return
	}
	m.AddValue(col, stat, value)
	c.hasValues[plane] = true
}

func (c *Cube) SetValue(plane, col, stat int, value float64) {
	m := c.plane(plane)
	if m == nil || !m.valid(col, stat) {
		return
	}
	m.SetValue(col, stat, value)
	c.hasValues[plane] = true
}

func (c *Cube) Value(plane, col, stat int) float64 {
	if m := c.plane(plane); m != nil {
		return m.Value(col, stat)
	}
	return 0
}

func (c *Cube) CurrentCellModified(plane, col int) bool {
	if m := c.plane(plane); m != nil {
		return m.CurrentCellModified(col)
	}
	return false
}

// PlaneWithValues reports whether any value was ever written to plane.
func (c *Cube) PlaneWithValues(plane int) bool {
	if plane < 0 || plane >= len(c.hasValues) {
		return false
	}
	return c.hasValues[plane]
}

func (c *Cube) NewRow() {
	for _, m := range c.planes {
		m.NewRow()
	}
}

func (c *Cube) Finish() {
	for _, m := range c.planes {
		m.Finish()
	}
}

func (c *Cube) SetFirstCell(plane, col int) {
	if m := c.plane(plane); m != nil {
		m.SetFirstCell(col)
	}
}

func (c *Cube) SetNextCell(plane, col int) {
	if m := c.plane(plane); m != nil {
		m.SetNextCell(col)
	}
}

func (c *Cube) EndCell(plane, col int) bool {
	if m := c.plane(plane); m != nil {
		return m.EndCell(col)
	}
	return true
}

func (c *Cube) CurrentValue(plane, col, stat int) float64 {
	if m := c.plane(plane); m != nil {
		return m.CurrentValue(col, stat)
	}
	return 0
}

func (c *Cube) CurrentRow(plane, col int) int {
	if m := c.plane(plane); m != nil {
		return m.CurrentRow(col)
	}
	return NoRow
}

func (c *Cube) CellValue(plane, col, row, stat int) (float64, bool) {
	if m := c.plane(plane); m != nil {
		return m.CellValue(col, row, stat)
	}
	return 0, false
}
