package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/sanspareilsmyn/tracelens/internal/message"
)

// RenderTable prints one table per statistic of r: a line per row, a column
// per bin (or partner for communication statistics) and the totals.
func RenderTable(w io.Writer, r *message.Result) {
	for _, s := range r.Statistics {
		title := fmt.Sprintf("%s [%s, %s)", s.Name, formatValue("", r.BeginTime), formatValue("", r.EndTime))
		if r.ThreeDimensions {
			title += " plane " + r.PlaneLabel
		}
		fmt.Fprintln(w, title)

		columns := r.Columns
		if s.Communication {
			columns = r.Rows
		}

		table := tablewriter.NewWriter(w)
		table.SetHeader(append(append([]string{""}, columns...), "Total"))

		grid := make([][]string, len(r.Rows))
		for row := range grid {
			grid[row] = make([]string, len(columns))
		}
		for _, c := range s.Cells {
			if c.Row < len(grid) && c.Column < len(columns) {
				grid[c.Row][c.Column] = formatValue(s.Name, c.Value)
			}
		}
		for row, label := range r.Rows {
			line := append([]string{label}, grid[row]...)
			var total float64
			if row < len(s.RowTotals) {
				total = s.RowTotals[row]
			}
			table.Append(append(line, formatValue(s.Name, total)))
		}

		footer := []string{"Total"}
		for _, v := range s.ColumnTotals {
			footer = append(footer, formatValue(s.Name, v))
		}
		table.SetFooter(append(footer, formatValue(s.Name, s.GrandTotal)))
		table.Render()
	}
}

func formatValue(statistic string, v float64) string {
	if strings.Contains(strings.ToLower(statistic), "bytes") && v >= 0 {
		return humanize.Bytes(uint64(v))
	}
	return humanize.CommafWithDigits(v, 2)
}
