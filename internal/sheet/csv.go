package sheet

import (
	"encoding/csv"
	"fmt"
	"io"

	"platingreport/internal/domain"
)

// ReadCSV parses a single CSV sheet.
func ReadCSV(name string, r io.Reader) (domain.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return domain.Table{}, fmt.Errorf("read CSV %s: %w", name, err)
	}

	return fromRows(name, rows), nil
}
