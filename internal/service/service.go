package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"platingreport/internal/config"
	"platingreport/internal/pipeline"
	"platingreport/internal/sheet"
	"platingreport/internal/summarizer"
)

// Service loads the workbook, produces per-sheet results and asks the
// summarizer for analyses. The summarizer is optional.
type Service struct {
	workbookPath  string
	sheets        []string
	latestRecords int
	rules         config.Rules
	summarizer    pipeline.Summarizer
	log           *slog.Logger
}

func New(cfg config.Config, rules config.Rules, s pipeline.Summarizer, log *slog.Logger) *Service {
	return &Service{
		workbookPath:  cfg.WorkbookPath,
		sheets:        cfg.Sheets,
		latestRecords: cfg.LatestRecords,
		rules:         rules,
		summarizer:    s,
		log:           log,
	}
}

func (s *Service) Rules() config.Rules {
	return s.rules
}

func (s *Service) CanAnalyze() bool {
	return s.summarizer != nil
}

// Sheets returns the configured sheet filter.
func (s *Service) Sheets() []string {
	return s.sheets
}

// Process loads the requested sheets (the configured ones when none are
// given) and runs the pipeline on each. Sheets that load are processed even
// when others are missing; the load error is returned alongside.
func (s *Service) Process(ctx context.Context, only ...string) ([]pipeline.Result, error) {
	if len(only) == 0 {
		only = s.sheets
	}

	wb, loadErr := sheet.Load(s.workbookPath, only...)
	if loadErr != nil && len(wb.Order) == 0 {
		return nil, fmt.Errorf("load workbook %s: %w", s.workbookPath, loadErr)
	}

	s.log.InfoContext(ctx, "Workbook is loaded",
		"path", s.workbookPath,
		"sheets", wb.Order)

	results := make([]pipeline.Result, 0, len(wb.Order))
	for _, name := range wb.Order {
		r := pipeline.Process(wb.Sheets[name], s.rules)
		pipeline.Observe(r)
		pipeline.LogResult(ctx, s.log, r)
		results = append(results, r)
	}

	if loadErr != nil {
		return results, fmt.Errorf("load workbook %s: %w", s.workbookPath, loadErr)
	}
	return results, nil
}

// ErrNoSummarizer is returned by Analyze and Ask when no credential was
// configured.
var ErrNoSummarizer = errors.New("summarizer is not configured")

// Analyze returns the reply for r: generated text or an ErrorPrefix string.
func (s *Service) Analyze(ctx context.Context, r pipeline.Result) string {
	if s.summarizer == nil {
		return summarizer.Reply("", ErrNoSummarizer)
	}

	text, err := pipeline.Analyze(ctx, s.summarizer, r, s.latestRecords)
	if err != nil {
		s.log.WarnContext(ctx, "Analysis is unavailable",
			"error", err,
			"sheet", r.Sheet)
	}
	return summarizer.Reply(text, err)
}

// Ask forwards a free-text question.
func (s *Service) Ask(ctx context.Context, question string) string {
	if s.summarizer == nil {
		return summarizer.Reply("", ErrNoSummarizer)
	}

	text, err := s.summarizer.Summarize(ctx, question)
	if err != nil {
		s.log.WarnContext(ctx, "Question is not answered",
			"error", err,
			"questionBytes", len(question))
	}
	return summarizer.Reply(text, err)
}
