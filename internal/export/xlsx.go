package export

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"bankinfo/internal"
	"bankinfo/internal/util"
)

func ExportRowsToXLSX(rows []internal.AddressRow, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers := []string{
		"institution", "branch", "branch_number", "url",
		"branch_name", "address", "line", "status", "error", "scraped_at",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		// Codes are written as strings so leading zeros survive.
		set(1, row.Institution)
		set(2, row.Branch)
		set(3, row.Number)
		set(4, row.URL)
		set(5, row.BranchName)
		set(6, row.Address)
		set(7, row.Line)
		set(8, string(row.Status))
		set(9, util.DerefString(row.Error))
		set(10, row.ScrapedAt)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
