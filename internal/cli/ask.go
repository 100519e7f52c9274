package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"platingreport/internal/render"
	"platingreport/internal/service"
	"platingreport/internal/summarizer"
)

func newAskCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the model a free-text question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := setup(root, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			s, err := a.newSummarizer(ctx)
			if err != nil {
				a.log.ErrorContext(ctx, "Question needs a summarizer",
					"error", err,
					"envVar", a.cfg.APIKeyEnvVar())

				return err
			}

			svc := service.New(a.cfg, a.rules, s, a.log)
			reply := svc.Ask(ctx, strings.Join(args, " "))

			return printReply(cmd.OutOrStdout(), reply)
		},
	}
}

// printReply writes the rendered reply and reports an error reply as
// ErrAnalysisFailed.
func printReply(w io.Writer, reply string) error {
	if _, err := fmt.Fprintln(w, render.Reply(reply)); err != nil {
		return err
	}
	return replyError(reply)
}

func replyError(reply string) error {
	if !summarizer.IsErrorReply(reply) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrAnalysisFailed, strings.TrimPrefix(reply, summarizer.ErrorPrefix))
}
