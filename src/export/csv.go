package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"rfpdesk-server/src/budget"
)

// WriteCSV renders the table as comma separated text: header, data rows, totals.
func WriteCSV(w io.Writer, table budget.TableExport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	if err := cw.Write(table.Totals); err != nil {
		return fmt.Errorf("write totals: %w", err)
	}
	cw.Flush()
	return cw.Error()
}
