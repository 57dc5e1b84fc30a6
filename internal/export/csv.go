package export

import (
	"bufio"
	"io"
	"strings"

	"bankinfo/internal"
)

// CSVWriter writes address rows as "III","BBBBB","address" lines. Every field
// is quoted, which encoding/csv only does when a field needs it.
type CSVWriter struct {
	w *bufio.Writer
}

func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: bufio.NewWriter(w)}
}

// WriteAddressLine writes one row and flushes so each branch is visible as
// soon as it is scraped.
func (c *CSVWriter) WriteAddressLine(n internal.BranchNumber, address string) error {
	if _, err := c.w.WriteString(FormatAddressLine(n, address) + "\n"); err != nil {
		return err
	}
	return c.w.Flush()
}

func FormatAddressLine(n internal.BranchNumber, address string) string {
	return quote(n.Institution) + "," + quote(n.Branch) + "," + quote(strings.TrimSpace(address))
}

func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// ExportRowsToCSV writes the successful rows of a run in scrape output format.
func ExportRowsToCSV(rows []internal.AddressRow, w io.Writer) (int, error) {
	cw := NewCSVWriter(w)
	written := 0
	for _, row := range rows {
		if row.Status != internal.AddressOK {
			continue
		}
		n := internal.BranchNumber{Institution: row.Institution, Branch: row.Branch}
		if _, err := cw.w.WriteString(FormatAddressLine(n, row.Line) + "\n"); err != nil {
			return written, err
		}
		written++
	}
	return written, cw.w.Flush()
}
