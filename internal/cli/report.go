package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"platingreport/internal/pipeline"
	"platingreport/internal/service"
)

// ErrAnalysisFailed is returned after printing when a reply carries
// summarizer.ErrorPrefix, so the process exits non-zero.
var ErrAnalysisFailed = errors.New("analysis failed")

type reportOptions struct {
	file    string
	sheets  []string
	analyze bool
}

func newReportCmd(root *rootOptions) *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Validate the workbook and print every view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "workbook path (defaults to WORKBOOK_PATH)")
	cmd.Flags().StringSliceVar(&opts.sheets, "sheet", nil, "sheets to report (defaults to SHEETS)")
	cmd.Flags().BoolVar(&opts.analyze, "analyze", false, "ask the model for a trend analysis of each sheet")

	return cmd
}

func runReport(cmd *cobra.Command, root *rootOptions, opts *reportOptions) error {
	ctx := cmd.Context()

	a, err := setup(root, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if opts.file != "" {
		a.cfg.WorkbookPath = opts.file
	}
	if len(opts.sheets) > 0 {
		a.cfg.Sheets = opts.sheets
	}

	var s pipeline.Summarizer
	if opts.analyze {
		sum, sumErr := a.newSummarizer(ctx)
		if sumErr != nil {
			a.log.ErrorContext(ctx, "Analysis needs a summarizer",
				"error", sumErr,
				"envVar", a.cfg.APIKeyEnvVar())

			return sumErr
		}
		s = sum
	}

	svc := service.New(a.cfg, a.rules, s, a.log)

	results, procErr := svc.Process(ctx)
	if procErr != nil && len(results) == 0 {
		return procErr
	}

	var errs []error
	for _, r := range results {
		reply := ""
		if svc.CanAnalyze() {
			reply = svc.Analyze(ctx, r)
		}

		if err = pipeline.Write(cmd.OutOrStdout(), r, a.rules, reply); err != nil {
			errs = append(errs, fmt.Errorf("write report (sheet = %s): %w", r.Sheet, err))
		}
		if err = replyError(reply); err != nil {
			errs = append(errs, fmt.Errorf("analyze sheet %s: %w", r.Sheet, err))
		}
	}

	return errors.Join(append([]error{procErr}, errs...)...)
}
