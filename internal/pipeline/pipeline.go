package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"platingreport/internal/config"
	"platingreport/internal/domain"
	"platingreport/internal/metrics"
	"platingreport/internal/render"
	"platingreport/internal/report"
	"platingreport/internal/validator"
)

// Summarizer is the slice of summarizer.Summarizer the pipeline needs.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

type Charts struct {
	Series   report.Series
	Shares   []report.Share
	Trend    report.Fit
	Batches  []report.MonthTotal
	Material []report.MonthTotal
}

// Result holds every view derived from one sheet.
type Result struct {
	Sheet      string
	Loaded     int
	Thresholds domain.Thresholds
	Classified domain.Table
	OutOfSpec  domain.Table
	Marks      []validator.Cell
	OOSMarks   []validator.Cell
	Charts     Charts
}

func (r Result) Dropped() int {
	return r.Loaded - len(r.Classified.Records)
}

func (r Result) Counts() (ok, ng int) {
	for _, rec := range r.Classified.Records {
		if rec[domain.StatusAttribute] == domain.StatusOK {
			ok++
		} else {
			ng++
		}
	}
	return ok, ng
}

// Process validates and classifies t, then computes the chart tables.
func Process(t domain.Table, rules config.Rules) Result {
	clean := validator.CoerceAndFilter(t, rules.Thresholds.Attributes())
	classified := validator.Classify(clean, rules.Thresholds)
	oos := validator.SelectOutOfSpec(classified, rules.Thresholds)

	ch := rules.Charts

	return Result{
		Sheet:      t.Name,
		Loaded:     len(t.Records),
		Thresholds: rules.Thresholds,
		Classified: classified,
		OutOfSpec:  oos,
		Marks:      validator.MarkOutOfRangeCells(classified, rules.Thresholds),
		OOSMarks:   validator.MarkOutOfRangeCells(oos, rules.Thresholds),
		Charts: Charts{
			Series:   report.LineSeries(classified, ch.Sequence, rules.Thresholds.Attributes()),
			Shares:   report.StatusShare(classified),
			Trend:    report.Trend(classified, ch.ScatterX, ch.ScatterY),
			Batches:  report.MonthlyCount(classified, ch.Date),
			Material: report.MonthlyMaterial(classified, ch.Date, ch.Material),
		},
	}
}

// Observe records the result on the package metrics.
func Observe(r Result) {
	ok, ng := r.Counts()
	metrics.ObserveClassified(r.Sheet, domain.StatusOK, ok)
	metrics.ObserveClassified(r.Sheet, domain.StatusNG, ng)
	metrics.ObserveDropped(r.Sheet, r.Dropped())
}

// Analyze asks s for a trend analysis of the latest n classified records.
func Analyze(ctx context.Context, s Summarizer, r Result, n int) (string, error) {
	prompt, err := report.AnalysisPrompt(r.Classified, n)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	return s.Summarize(ctx, prompt)
}

type section struct {
	title string
	body  string
}

// Write renders every section of r to w.
func Write(w io.Writer, r Result, rules config.Rules, reply string) error {
	ok, ng := r.Counts()

	sections := []section{
		{fmt.Sprintf("📋 %s 全部資料（已去除 %d 筆缺值，超標欄位標紅）", r.Sheet, r.Dropped()), render.Table(r.Classified, r.Marks)},
		{fmt.Sprintf("🚨 僅顯示超標列（%d 筆）", len(r.OutOfSpec.Records)), render.Table(r.OutOfSpec, r.OOSMarks)},
		{fmt.Sprintf("📈 %s vs 濃度", rules.Charts.Sequence), render.Series(r.Charts.Series)},
		{fmt.Sprintf("📊 OK/NG 比例（OK %d / NG %d）", ok, ng), render.Shares(r.Charts.Shares)},
		{fmt.Sprintf("🔍 %s vs %s 趨勢", rules.Charts.ScatterX, rules.Charts.ScatterY), render.Trend(r.Charts.Trend)},
		{"📈 每月電鍍批次總數", render.MonthlyBars(r.Charts.Batches, render.BatchCount)},
		{fmt.Sprintf("📈 每月%s 總和", rules.Charts.Material), render.MonthlyBars(r.Charts.Material, render.MaterialTotal)},
	}
	if reply != "" {
		sections = append(sections, section{"🧠 分析回覆", render.Reply(reply)})
	}

	for _, s := range sections {
		if _, err := fmt.Fprintf(w, "%s\n%s\n", render.Title(s.title), s.body); err != nil {
			return fmt.Errorf("write section: %w", err)
		}
	}
	return nil
}

// LogResult writes the per-sheet outcome the way the rest of the app logs.
func LogResult(ctx context.Context, log *slog.Logger, r Result) {
	ok, ng := r.Counts()
	log.InfoContext(ctx, "Sheet is processed",
		"sheet", r.Sheet,
		"loaded", r.Loaded,
		"dropped", r.Dropped(),
		"ok", ok,
		"ng", ng,
		"outOfSpec", len(r.OutOfSpec.Records))
}
