package pipeline

import (
	"cmp"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/sanspareilsmyn/tracelens/internal/histogram"
	"github.com/sanspareilsmyn/tracelens/internal/message"
)

// Snapshot copies the selected planes of an executed histogram into a Result.
func Snapshot(h *histogram.Histogram) *message.Result {
	plane := h.SelectedPlane()
	r := &message.Result{
		BeginTime:       h.BeginTime(),
		EndTime:         h.EndTime(),
		ThreeDimensions: h.ThreeDimensions(),
		Plane:           plane,
		Rows:            lo.Times(h.NumRows(), h.RowLabel),
		Columns:         lo.Times(h.NumColumns(), h.ColumnLabel),
		ExecutedAt:      time.Now().UTC(),
	}
	if r.ThreeDimensions {
		r.PlaneLabel = h.PlaneLabel(plane)
	}

	for stat, s := range h.Statistics() {
		r.Statistics = append(r.Statistics, semanticResult(h, s.Name(), stat, plane))
	}
	commPlane := h.CommSelectedPlane()
	for stat, s := range h.CommStatistics() {
		r.Statistics = append(r.Statistics, commResult(h, s.Name(), stat, commPlane))
	}
	return r
}

func semanticResult(h *histogram.Histogram, name string, stat, plane int) message.StatisticResult {
	var cells []message.Cell
	for col := 0; col < h.NumColumns(); col++ {
		for h.SetFirstCell(col, plane); !h.EndCell(col, plane); h.SetNextCell(col, plane) {
			cells = append(cells, message.Cell{
				Row:    h.CurrentRow(col, plane),
				Column: col,
				Value:  h.CurrentValue(col, stat, plane),
			})
		}
	}
	sortCells(cells)

	columns, rows := h.ColumnTotals(), h.RowTotals()
	return message.StatisticResult{
		Name:  name,
		Cells: cells,
		ColumnTotals: lo.Times(h.NumColumns(), func(col int) float64 {
			return columns.Total(stat, col, plane)
		}),
		RowTotals: lo.Times(h.NumRows(), func(row int) float64 {
			return rows.Total(stat, row, plane)
		}),
		GrandTotal: columns.GrandTotal(stat, plane),
	}
}

// commResult indexes columns by partner row.
func commResult(h *histogram.Histogram, name string, stat, plane int) message.StatisticResult {
	var cells []message.Cell
	for partner := 0; partner < h.NumRows(); partner++ {
		for h.SetCommFirstCell(partner, plane); !h.EndCommCell(partner, plane); h.SetCommNextCell(partner, plane) {
			cells = append(cells, message.Cell{
				Row:    h.CommCurrentRow(partner, plane),
				Column: partner,
				Value:  h.CommCurrentValue(partner, stat, plane),
			})
		}
	}
	sortCells(cells)

	columns, rows := h.CommColumnTotals(), h.CommRowTotals()
	return message.StatisticResult{
		Name:          name,
		Communication: true,
		Cells:         cells,
		ColumnTotals: lo.Times(h.NumRows(), func(partner int) float64 {
			return columns.Total(stat, partner, plane)
		}),
		RowTotals: lo.Times(h.NumRows(), func(row int) float64 {
			return rows.Total(stat, row, plane)
		}),
		GrandTotal: columns.GrandTotal(stat, plane),
	}
}

func sortCells(cells []message.Cell) {
	slices.SortFunc(cells, func(a, b message.Cell) int {
		return cmp.Or(cmp.Compare(a.Row, b.Row), cmp.Compare(a.Column, b.Column))
	})
}
