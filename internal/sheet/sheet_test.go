package sheet_test

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"platingreport/internal/domain"
	"platingreport/internal/sheet"
)

func TestReadCSV(t *testing.T) {
	input := "\ufeff電鍍次數, 硫酸實際值(g/l) ,note\n1,65,ok\n\n2,,\n3,70\n"

	got, err := sheet.ReadCSV("EP15", strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	want := domain.Table{
		Name:    "EP15",
		Columns: []string{"電鍍次數", "硫酸實際值(g/l)", "note"},
		Records: []domain.Record{
			{"電鍍次數": "1", "硫酸實際值(g/l)": "65", "note": "ok"},
			{"電鍍次數": "2", "硫酸實際值(g/l)": "", "note": ""},
			{"電鍍次數": "3", "硫酸實際值(g/l)": "70", "note": ""},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected table (-want +got):\n%s", diff)
	}
}

func TestReadHTMLNamesSheets(t *testing.T) {
	input := `<html><body>
<table><caption>EP15</caption><tr><th>A</th><th>B</th></tr><tr><td> 65 </td><td>205</td></tr></table>
<table id="EP16"><tr><th>A</th></tr><tr><td>70</td></tr></table>
<table><tr><th>A</th></tr></table>
</body></html>`

	wb, err := sheet.ReadHTML(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadHTML: %v", err)
	}

	if diff := cmp.Diff([]string{"EP15", "EP16", "Sheet3"}, wb.Order); diff != "" {
		t.Fatalf("unexpected sheet order (-want +got):\n%s", diff)
	}

	ep15, _ := wb.Sheet("EP15")
	if diff := cmp.Diff([]domain.Record{{"A": "65", "B": "205"}}, ep15.Records); diff != "" {
		t.Fatalf("unexpected EP15 records (-want +got):\n%s", diff)
	}

	empty, _ := wb.Sheet("Sheet3")
	if len(empty.Records) != 0 || len(empty.Columns) != 1 {
		t.Fatalf("expected header-only sheet, got %+v", empty)
	}
}

func TestReadHTMLKeepsTablesWithRepeatedCaptions(t *testing.T) {
	input := `<html><body>
<table><caption>A</caption><tr><th>v</th></tr><tr><td>1</td></tr></table>
<table><caption>A (2)</caption><tr><th>v</th></tr><tr><td>2</td></tr></table>
<table><caption>A</caption><tr><th>v</th></tr><tr><td>3</td></tr></table>
<table><caption>A</caption><tr><th>v</th></tr><tr><td>4</td></tr></table>
</body></html>`

	wb, err := sheet.ReadHTML(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadHTML: %v", err)
	}

	want := []string{"A", "A (2)", "A (3)", "A (4)"}
	if diff := cmp.Diff(want, wb.Order); diff != "" {
		t.Fatalf("unexpected sheet order (-want +got):\n%s", diff)
	}
	if len(wb.Sheets) != len(want) {
		t.Fatalf("expected %d sheets, got %d", len(want), len(wb.Sheets))
	}

	for i, name := range want {
		tbl, ok := wb.Sheet(name)
		if !ok {
			t.Fatalf("sheet %q is missing", name)
		}
		wantRecords := []domain.Record{{"v": strconv.Itoa(i + 1)}}
		if diff := cmp.Diff(wantRecords, tbl.Records); diff != "" {
			t.Fatalf("unexpected records in %q (-want +got):\n%s", name, diff)
		}
	}
}

func TestReadCSVRenamesRepeatedAndDropsEmptyHeaders(t *testing.T) {
	input := "A,,A, A ,B\n1,x,2,3,4\n5\n"

	got, err := sheet.ReadCSV("EP15", strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	want := domain.Table{
		Name:    "EP15",
		Columns: []string{"A", "A (2)", "A (3)", "B"},
		Records: []domain.Record{
			{"A": "1", "A (2)": "2", "A (3)": "3", "B": "4"},
			{"A": "5", "A (2)": "", "A (3)": "", "B": ""},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected table (-want +got):\n%s", diff)
	}
}

func TestLoadXLSXFiltersSheets(t *testing.T) {
	path := writeWorkbook(t)

	wb, err := sheet.Load(path, "EP16")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if diff := cmp.Diff([]string{"EP16"}, wb.Order); diff != "" {
		t.Fatalf("unexpected sheets (-want +got):\n%s", diff)
	}

	ep16, ok := wb.Sheet("EP16")
	if !ok {
		t.Fatalf("expected EP16")
	}
	if len(ep16.Records) != 1 || ep16.Records[0]["硫酸實際值(g/l)"] != "66" {
		t.Fatalf("unexpected EP16 records: %v", ep16.Records)
	}
	if wb.Source != path {
		t.Fatalf("expected source %q, got %q", path, wb.Source)
	}
}

func TestLoadReportsUnknownSheets(t *testing.T) {
	path := writeWorkbook(t)

	wb, err := sheet.Load(path, "EP15", "EP99")
	if err == nil || !strings.Contains(err.Error(), "EP99") {
		t.Fatalf("expected unknown sheet error, got %v", err)
	}
	if _, ok := wb.Sheet("EP15"); !ok {
		t.Fatalf("expected known sheets to load alongside the error")
	}
}

func TestLoadCSVFileUsesFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "EP15.csv")
	if err := os.WriteFile(path, []byte("A\n1\n"), 0o600); err != nil {
		t.Fatalf("write CSV: %v", err)
	}

	wb, err := sheet.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := wb.Sheet("EP15"); !ok {
		t.Fatalf("expected sheet named after file, got %v", wb.Order)
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	_, err := sheet.Load("data.ods")
	if !errors.Is(err, sheet.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func writeWorkbook(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "EP15"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	if _, err := f.NewSheet("EP16"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}

	header := []any{"電鍍次數", "硫酸實際值(g/l)", "電鍍開始時間"}
	rows := map[string][][]any{
		"EP15": {header, {1, 65, "2025-01-03 08:00:00"}, {2, 70, "2025-01-04 08:00:00"}},
		"EP16": {header, {1, 66, "2025-02-01 09:30:00"}},
	}
	for name, sheetRows := range rows {
		for i, row := range sheetRows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err = f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "電鍍履歷表.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}
