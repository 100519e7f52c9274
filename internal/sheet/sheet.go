// Package sheet loads workbooks into in-memory tables keyed by sheet name.
package sheet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"platingreport/internal/domain"
)

var ErrUnsupportedFormat = errors.New("unsupported workbook format")

// Load reads path and keeps only the sheets named in only (all sheets when
// only is empty). The format follows the file extension.
func Load(path string, only ...string) (domain.Workbook, error) {
	var (
		wb  domain.Workbook
		err error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		wb, err = loadXLSX(path)
	case ".csv":
		wb, err = loadCSVFile(path)
	case ".html", ".htm":
		wb, err = loadHTMLFile(path)
	default:
		return domain.Workbook{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return domain.Workbook{}, err
	}

	wb.Source = path

	return selectSheets(wb, only)
}

func loadCSVFile(path string) (domain.Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Workbook{}, fmt.Errorf("open CSV: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	t, err := ReadCSV(name, f)
	if err != nil {
		return domain.Workbook{}, err
	}

	return newWorkbook(t), nil
}

func loadHTMLFile(path string) (domain.Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Workbook{}, fmt.Errorf("open HTML: %w", err)
	}
	defer f.Close()

	return ReadHTML(f)
}

func selectSheets(wb domain.Workbook, only []string) (domain.Workbook, error) {
	if len(only) == 0 {
		return wb, nil
	}

	out := domain.Workbook{
		Source: wb.Source,
		Sheets: make(map[string]domain.Table, len(only)),
	}

	var errs []error
	for _, name := range only {
		name = strings.TrimSpace(name)
		if name == "" || slices.Contains(out.Order, name) {
			continue
		}

		t, ok := wb.Sheets[name]
		if !ok {
			errs = append(errs, fmt.Errorf("sheet %q not found (available = %s)", name, strings.Join(wb.Order, ", ")))
			continue
		}

		out.Order = append(out.Order, name)
		out.Sheets[name] = t
	}

	return out, errors.Join(errs...)
}

func newWorkbook(tables ...domain.Table) domain.Workbook {
	wb := domain.Workbook{Sheets: make(map[string]domain.Table, len(tables))}
	for _, t := range tables {
		wb.Order = append(wb.Order, t.Name)
		wb.Sheets[t.Name] = t
	}
	return wb
}

// fromRows turns raw rows into a table. The first non-blank row is the
// header; blank rows are skipped and short rows padded with "". Columns with
// an empty header are dropped and repeated headers get a " (N)" suffix.
func fromRows(name string, rows [][]string) domain.Table {
	t := domain.Table{Name: name}

	var positions []int
	headerFound := false
	for _, row := range rows {
		if isBlank(row) {
			continue
		}

		if !headerFound {
			t.Columns, positions = header(row)
			headerFound = true
			continue
		}

		rec := make(domain.Record, len(t.Columns))
		for i, col := range t.Columns {
			if pos := positions[i]; pos < len(row) {
				rec[col] = strings.TrimSpace(row[pos])
			} else {
				rec[col] = ""
			}
		}
		t.Records = append(t.Records, rec)
	}

	return t
}

// header returns the column names and the row position each one reads.
func header(row []string) ([]string, []int) {
	var (
		cols      []string
		positions []int
	)
	names := newUniqueNames()

	for i, c := range row {
		c = strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
		if c == "" {
			continue
		}
		cols = append(cols, names.next(c))
		positions = append(positions, i)
	}
	return cols, positions
}

// uniqueNames hands out names that were not handed out before: the first
// use of a base keeps it, later ones become "base (2)", "base (3)" and so on.
type uniqueNames struct {
	used  map[string]struct{}
	count map[string]int
}

func newUniqueNames() *uniqueNames {
	return &uniqueNames{
		used:  make(map[string]struct{}),
		count: make(map[string]int),
	}
}

func (u *uniqueNames) next(base string) string {
	name := base
	for n := u.count[base]; ; n++ {
		if n > 0 {
			name = fmt.Sprintf("%s (%d)", base, n+1)
		}
		if _, taken := u.used[name]; !taken {
			u.count[base] = n + 1
			u.used[name] = struct{}{}
			return name
		}
	}
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
