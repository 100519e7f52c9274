package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"platingreport/internal/domain"
)

func loadXLSX(path string) (domain.Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return domain.Workbook{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var tables []domain.Table
	for _, name := range f.GetSheetList() {
		rows, rowsErr := f.GetRows(name)
		if rowsErr != nil {
			return domain.Workbook{}, fmt.Errorf("read sheet %s: %w", name, rowsErr)
		}
		tables = append(tables, fromRows(name, rows))
	}

	return newWorkbook(tables...), nil
}
