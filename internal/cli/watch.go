package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"platingreport/internal/bot"
	"platingreport/internal/metrics"
	"platingreport/internal/scheduler"
	"platingreport/internal/service"
	"platingreport/internal/summarizer"
)

const (
	cacheEntries    = 64
	cacheTTL        = 24 * time.Hour
	shutdownTimeout = 15 * time.Second
)

type watchOptions struct {
	runNow bool
}

func newWatchCmd(root *rootOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the report on a schedule and send digests to Telegram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, root, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.runNow, "now", false, "run once immediately after start")

	return cmd
}

func runWatch(cmd *cobra.Command, root *rootOptions, opts *watchOptions) error {
	start := time.Now()

	a, err := setup(root, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	log := a.log

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err = metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	var metricsServer *metrics.Server
	if a.cfg.MetricsAddress != "" {
		metricsServer = metrics.NewServer(a.cfg.MetricsAddress, prometheus.DefaultGatherer)
		go func() {
			if serveErr := metricsServer.Start(); serveErr != nil {
				log.ErrorContext(ctx, "Metrics server stopped",
					"error", serveErr,
					"address", a.cfg.MetricsAddress)
			}
		}()
		log.InfoContext(ctx, "Metrics server is started",
			"address", a.cfg.MetricsAddress)
	}

	s := a.optionalSummarizer(ctx, summarizer.WithCache(cacheEntries, cacheTTL))
	svc := service.New(a.cfg, a.rules, s, log)

	var notifier scheduler.Notifier
	if a.cfg.TelegramEnabled() {
		botInst, botErr := bot.New(a.cfg.TelegramToken, a.cfg.TelegramChatID, svc, log)
		if botErr != nil {
			log.ErrorContext(ctx, "Failed to initialize bot",
				"error", botErr)

			return botErr
		}
		notifier = botInst

		go botInst.Start(ctx)
		log.InfoContext(ctx, "Bot is started",
			"chatID", a.cfg.TelegramChatID)
	} else {
		log.WarnContext(ctx, "Telegram is not configured so digests are only logged",
			"envVars", []string{"TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID"})
	}

	sched, err := scheduler.New(ctx, a.cfg.Schedule, svc, notifier, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create scheduler",
			"error", err,
			"spec", a.cfg.Schedule)

		return err
	}
	if err = sched.Start(); err != nil {
		log.ErrorContext(ctx, "Failed to start scheduler",
			"error", err,
			"spec", sched.Spec())

		return err
	}
	log.InfoContext(ctx, "Scheduler is started",
		"spec", sched.Spec(),
		"timezone", scheduler.Timezone)

	if opts.runNow {
		if err = sched.RunOnce(ctx); err != nil {
			log.ErrorContext(ctx, "Initial report failed",
				"error", err)
		}
	}

	<-ctx.Done()
	log.InfoContext(ctx, "Shutdown signal is received",
		"uptimeSeconds", time.Since(start).Seconds())

	sched.Stop()
	log.InfoContext(ctx, "Scheduler is stopped")

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err = metricsServer.Stop(shutdownCtx); err != nil {
			log.ErrorContext(ctx, "Failed to stop metrics server",
				"error", err)
		}
	}

	log.InfoContext(ctx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())

	return nil
}
