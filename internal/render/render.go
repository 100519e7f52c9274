// Package render draws computed report tables for a terminal.
package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"platingreport/internal/domain"
	"platingreport/internal/report"
	"platingreport/internal/summarizer"
	"platingreport/internal/validator"
)

const barWidth = 40

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginTop(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	markedStyle = cellStyle.
			Background(lipgloss.Color("#FA8072")).
			Foreground(lipgloss.Color("#000000"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2E8B57"))
	ngStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC143C"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4682B4"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#DC143C"))
	emptyStyle = lipgloss.NewStyle().Italic(true).Faint(true)
)

func Title(text string) string {
	return titleStyle.Render(text)
}

// Table renders every record of t, highlighting the cells in marks.
func Table(t domain.Table, marks []validator.Cell) string {
	if len(t.Records) == 0 {
		return emptyStyle.Render("(no records)")
	}

	set := validator.NewMarks(marks)

	rows := make([][]string, 0, len(t.Records))
	for _, rec := range t.Records {
		row := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			row[i] = cellText(rec[col])
		}
		rows = append(rows, row)
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Columns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || row < 0 {
				return headerStyle
			}
			if col < len(t.Columns) && set.Has(row, t.Columns[col]) {
				return markedStyle
			}
			if row < len(rows) && col < len(t.Columns) && t.Columns[col] == domain.StatusAttribute {
				return statusStyle(rows[row][col])
			}
			return cellStyle
		})

	return tbl.String()
}

func statusStyle(v string) lipgloss.Style {
	if v == string(domain.StatusNG) {
		return cellStyle.Inherit(ngStyle)
	}
	return cellStyle.Inherit(okStyle)
}

func cellText(v domain.Value) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return domain.Text(v)
}

// Shares renders the OK/NG proportions with a percentage bar each.
func Shares(shares []report.Share) string {
	if len(shares) == 0 {
		return emptyStyle.Render("(no classified records)")
	}

	var b strings.Builder
	for _, s := range shares {
		style := okStyle
		if s.Status == domain.StatusNG {
			style = ngStyle
		}
		width := int(math.Round(s.Percent * barWidth))
		fmt.Fprintf(&b, "%-3s %s %5.1f%% (%d)\n",
			s.Status,
			style.Render(strings.Repeat("█", width)),
			s.Percent*100,
			s.Count)
	}
	return strings.TrimRight(b.String(), "\n")
}

// MonthlyBars renders one horizontal bar per month using value for length.
func MonthlyBars(months []report.MonthTotal, value func(report.MonthTotal) int) string {
	if len(months) == 0 {
		return emptyStyle.Render("(no dated records)")
	}

	peak := 0
	for _, m := range months {
		peak = max(peak, value(m))
	}

	var b strings.Builder
	for _, m := range months {
		v := value(m)
		width := 0
		if peak > 0 && v > 0 {
			width = max(1, v*barWidth/peak)
		}
		fmt.Fprintf(&b, "%s %s %d\n", m.Label(), barStyle.Render(strings.Repeat("█", width)), v)
	}
	return strings.TrimRight(b.String(), "\n")
}

func BatchCount(m report.MonthTotal) int {
	return m.Count
}

func MaterialTotal(m report.MonthTotal) int {
	return m.Rounded()
}

// Trend describes the fitted line and tabulates the observations.
func Trend(fit report.Fit) string {
	if !fit.Valid {
		return emptyStyle.Render(fmt.Sprintf("(not enough numeric %s/%s pairs for a trend)", fit.X, fit.Y))
	}

	rows := make([][]string, 0, len(fit.Points))
	for _, p := range fit.Points {
		rows = append(rows, []string{
			strconv.FormatFloat(p.X, 'f', 2, 64),
			strconv.FormatFloat(p.Y, 'f', 2, 64),
			strconv.FormatFloat(fit.At(p.X), 'f', 2, 64),
		})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(fit.X, fit.Y, "trend").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	line := fmt.Sprintf("%s = %.4f × %s %+.4f (n = %d)", fit.Y, fit.Slope, fit.X, fit.Intercept, len(fit.Points))
	return line + "\n" + tbl.String()
}

// Series tabulates a line series; missing values show as blanks.
func Series(s report.Series) string {
	if len(s.Points) == 0 {
		return emptyStyle.Render("(no series data)")
	}

	rows := make([][]string, 0, len(s.Points))
	for _, p := range s.Points {
		row := []string{cellText(p.X)}
		for _, v := range p.Values {
			if math.IsNaN(v) {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		rows = append(rows, row)
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(append([]string{s.X}, s.Y...)...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	return tbl.String()
}

// Reply shows a summarizer reply, styling failures as errors.
func Reply(reply string) string {
	if summarizer.IsErrorReply(reply) {
		return errorStyle.Render(reply)
	}
	return reply
}
