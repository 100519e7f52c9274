package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"platingreport/internal/config"
	"platingreport/internal/pipeline"
	"platingreport/internal/summarizer"
)

type rootOptions struct {
	envFiles []string
	debug    bool
}

// app is what every command needs once configuration is loaded.
type app struct {
	cfg   config.Config
	rules config.Rules
	log   *slog.Logger
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		slog.Error("Command failed",
			"error", err)
		os.Exit(1)
	}
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "platingreport",
		Short:         "Plating history validation and analysis",
		Long:          `platingreport validates plating-history workbooks against concentration thresholds and asks a language model for a trend analysis.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "env files loaded before the environment")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newReportCmd(opts),
		newAskCmd(opts),
		newWatchCmd(opts),
	)

	return cmd
}

func setup(opts *rootOptions, logOut io.Writer) (*app, error) {
	cfg, err := config.LoadConfig(opts.envFiles...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.LogLevel
	if opts.debug {
		level = "debug"
	}

	log, err := newLogger(logOut, cfg.LogFormat, level)
	if err != nil {
		return nil, err
	}
	log = log.With("runID", uuid.NewString())
	slog.SetDefault(log)

	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	return &app{cfg: cfg, rules: rules, log: log}, nil
}

// newSummarizer builds the configured provider's summarizer. A blank
// credential is reported as summarizer.ErrMissingCredential.
func (a *app) newSummarizer(ctx context.Context, options ...summarizer.Option) (*summarizer.Summarizer, error) {
	gen, err := summarizer.NewGenerator(ctx, a.cfg.Provider, a.cfg.APIKey())
	if err != nil {
		return nil, fmt.Errorf("create %s generator (envVar = %s): %w", a.cfg.Provider, a.cfg.APIKeyEnvVar(), err)
	}

	s, err := summarizer.New(gen, a.cfg.SummarizerOptions(), a.log, options...)
	if err != nil {
		return nil, fmt.Errorf("create summarizer: %w", err)
	}

	a.log.InfoContext(ctx, "Summarizer is initialized",
		"provider", a.cfg.Provider,
		"model", a.cfg.Model,
		"maxRetries", a.cfg.MaxRetries)

	return s, nil
}

// optionalSummarizer returns nil when no credential is configured so that
// callers can run without analysis.
func (a *app) optionalSummarizer(ctx context.Context, options ...summarizer.Option) pipeline.Summarizer {
	if a.cfg.APIKey() == "" {
		a.log.WarnContext(ctx, "API key is missing so analysis is disabled",
			"envVar", a.cfg.APIKeyEnvVar())

		return nil
	}

	s, err := a.newSummarizer(ctx, options...)
	if err != nil {
		a.log.ErrorContext(ctx, "Failed to create summarizer so analysis is disabled",
			"error", err)

		return nil
	}
	return s
}
