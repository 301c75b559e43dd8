package shell

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/tuannm99/flatsql/internal/sql/executor"
)

// RenderResult prints a row set as an ASCII table followed by its row
// count, or a status line for statements that return no rows.
func RenderResult(w io.Writer, res *executor.Result) {
	if !res.HasRows() {
		// DDL/DML
		fmt.Fprintf(w, "OK (%d affected)\n", res.AffectedRows)
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(res.Columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)

	for _, row := range res.Rows {
		cells := make([]string, len(res.Columns))
		for i := range res.Columns {
			if i < len(row) && row[i] != nil {
				cells[i] = fmt.Sprintf("%v", row[i])
			} else {
				cells[i] = "NULL"
			}
		}
		table.Append(cells)
	}
	table.Render()

	fmt.Fprintf(w, "(%d rows)\n", len(res.Rows))
}
