package ingest

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// readXLSXRows extracts the first sheet that looks like tabular entity data
// from an XLSX workbook. Sheets without a header row containing at least
// one known id column are skipped.
func readXLSXRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) < 2 {
			continue
		}
		if isEntityHeader(rows[0]) {
			return rows, nil
		}
	}

	return nil, fmt.Errorf("no tabular entity sheet found in workbook")
}

// isEntityHeader reports whether a row looks like the header of an entity
// table.
func isEntityHeader(row []string) bool {
	markers := []string{"_id", "zip_code_prefix", "category_name", "geolocation", "payment_sequential"}
	for _, cell := range row {
		cell = strings.ToLower(strings.TrimSpace(cell))
		for _, marker := range markers {
			if strings.Contains(cell, marker) {
				return true
			}
		}
	}
	return false
}
