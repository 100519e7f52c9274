package sheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"platingreport/internal/domain"
)

// ReadHTML treats every <table> of a "save as web page" export as a sheet.
// Sheets are named after the caption, then the id, then their position.
func ReadHTML(r io.Reader) (domain.Workbook, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return domain.Workbook{}, fmt.Errorf("parse HTML: %w", err)
	}

	var tables []domain.Table
	names := newUniqueNames()

	doc.Find("table").Each(func(i int, s *goquery.Selection) {
		name := names.next(tableName(i, s))

		var rows [][]string
		s.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var row []string
			tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				row = append(row, strings.TrimSpace(cell.Text()))
			})
			rows = append(rows, row)
		})

		tables = append(tables, fromRows(name, rows))
	})

	return newWorkbook(tables...), nil
}

func tableName(i int, s *goquery.Selection) string {
	if caption := strings.TrimSpace(s.Find("caption").First().Text()); caption != "" {
		return caption
	}
	if id, ok := s.Attr("id"); ok && strings.TrimSpace(id) != "" {
		return strings.TrimSpace(id)
	}
	return fmt.Sprintf("Sheet%d", i+1)
}
