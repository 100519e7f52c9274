package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"platingreport/internal/pipeline"
)

const (
	DefaultSpec           = "0 * * * *"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	runReportTimeout      = 15 * time.Minute
)

type Service interface {
	Process(ctx context.Context, only ...string) ([]pipeline.Result, error)
	Analyze(ctx context.Context, r pipeline.Result) string
	CanAnalyze() bool
}

// Notifier delivers the digest of one scheduled run.
type Notifier interface {
	SendDigest(ctx context.Context, results []pipeline.Result, replies map[string]string) error
}

type Scheduler struct {
	ctx      context.Context
	cron     *cron.Cron
	spec     string
	svc      Service
	notifier Notifier
	log      *slog.Logger
}

// New validates spec (standard five-field cron syntax). notifier may be nil,
// in which case runs are only logged.
func New(ctx context.Context, spec string, svc Service, notifier Notifier, log *slog.Logger) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSpec
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}

	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:      ctx,
		cron:     c,
		spec:     spec,
		svc:      svc,
		notifier: notifier,
		log:      log,
	}, nil
}

func (s *Scheduler) Spec() string {
	return s.spec
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runReport); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runReport() {
	ctx, cancel := context.WithTimeout(s.ctx, runReportTimeout)
	defer cancel()

	if err := s.RunOnce(ctx); err != nil {
		s.log.ErrorContext(ctx, "Scheduled report failed",
			"error", err,
			"spec", s.spec)
	}
}

// RunOnce processes the workbook, analyses each sheet when a summarizer is
// configured and hands everything to the notifier.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return nil
	default:
	}

	results, err := s.svc.Process(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to process workbook",
			"error", err,
			"sheetCount", len(results))
	}
	if len(results) == 0 {
		return err
	}

	replies := make(map[string]string, len(results))
	if s.svc.CanAnalyze() {
		for _, r := range results {
			if ctx.Err() != nil {
				s.log.InfoContext(ctx, "Scheduler context is done",
					"error", ctx.Err())
				return nil
			}
			replies[r.Sheet] = s.svc.Analyze(ctx, r)
		}
	}

	if s.notifier == nil {
		s.log.InfoContext(ctx, "Scheduled report is done",
			"sheets", sheetNames(results),
			"analyses", len(replies))
		return nil
	}

	if err = s.notifier.SendDigest(ctx, results, replies); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}

	s.log.InfoContext(ctx, "Scheduled report is sent",
		"sheets", sheetNames(results),
		"analyses", len(replies))

	return nil
}

func sheetNames(results []pipeline.Result) []string {
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Sheet)
	}
	return names
}
