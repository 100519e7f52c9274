package render_test

import (
	"strings"
	"testing"
	"time"

	"platingreport/internal/domain"
	"platingreport/internal/render"
	"platingreport/internal/report"
	"platingreport/internal/validator"
)

func TestTableShowsEveryCell(t *testing.T) {
	tbl := domain.Table{
		Columns: []string{"A", domain.StatusAttribute},
		Records: []domain.Record{
			{"A": 70.0, domain.StatusAttribute: domain.StatusNG},
			{"A": 65.5, domain.StatusAttribute: domain.StatusOK},
		},
	}

	out := render.Table(tbl, []validator.Cell{{Row: 0, Attribute: "A"}})

	for _, want := range []string{"A", domain.StatusAttribute, "70", "65.5", "NG", "OK"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table:\n%s", want, out)
		}
	}
}

func TestTableWithoutRecords(t *testing.T) {
	out := render.Table(domain.Table{Columns: []string{"A"}}, nil)

	if !strings.Contains(out, "no records") {
		t.Fatalf("unexpected empty table output %q", out)
	}
}

func TestShares(t *testing.T) {
	out := render.Shares([]report.Share{
		{Status: domain.StatusOK, Count: 3, Percent: 0.75},
		{Status: domain.StatusNG, Count: 1, Percent: 0.25},
	})

	if !strings.Contains(out, "75.0%") || !strings.Contains(out, "25.0%") {
		t.Fatalf("unexpected shares output:\n%s", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected two lines, got:\n%s", out)
	}
}

func TestMonthlyBars(t *testing.T) {
	months := []report.MonthTotal{
		{Month: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Count: 4, Total: 22.7},
		{Month: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Count: 1, Total: 0},
	}

	counts := render.MonthlyBars(months, render.BatchCount)
	if !strings.Contains(counts, "2025-01") || !strings.Contains(counts, " 4") {
		t.Fatalf("unexpected count bars:\n%s", counts)
	}

	totals := render.MonthlyBars(months, render.MaterialTotal)
	if !strings.Contains(totals, " 23") || !strings.HasSuffix(totals, " 0") {
		t.Fatalf("unexpected material bars:\n%s", totals)
	}
}

func TestTrendWithoutData(t *testing.T) {
	out := render.Trend(report.Fit{X: "SP10平均", Y: "硬度HB"})

	if !strings.Contains(out, "not enough") {
		t.Fatalf("unexpected trend output %q", out)
	}
}

func TestReplyKeepsText(t *testing.T) {
	if got := render.Reply("analysis"); got != "analysis" {
		t.Fatalf("expected plain reply untouched, got %q", got)
	}
	if got := render.Reply("Error: boom"); !strings.Contains(got, "Error: boom") {
		t.Fatalf("expected error text kept, got %q", got)
	}
}
