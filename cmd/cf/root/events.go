package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"chronoforge/internal/journal"
	"chronoforge/internal/ui"
)

func newEventsCmd() *cobra.Command {
	var (
		after       int64
		limit       int
		fromJournal bool
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print the event log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if fromJournal {
				if cfg.JournalDir == "" {
					return errors.New("journal_dir is not configured")
				}
				recs, err := journal.ReadDir(cfg.JournalDir)
				if err != nil {
					return err
				}
				for _, r := range recs {
					if r.Seq <= after {
						continue
					}
					printEvent(out, r.Seq, string(r.Kind), r.TokenID, r.At, string(r.Data))
				}
				return nil
			}

			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			rows, err := svc.EventRepo().ListAfter(ctx, after, limit)
			if err != nil {
				return err
			}
			for _, e := range rows {
				printEvent(out, e.ID, e.Kind, e.TokenID, time.Unix(e.At, 0), e.Payload)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&after, "after", 0, "only events with a higher sequence number")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of events")
	cmd.Flags().BoolVar(&fromJournal, "journal", false, "read the compressed journal instead of the ledger")
	return cmd
}

func printEvent(out io.Writer, seq int64, kind string, tokenID *int64, at time.Time, data string) {
	token := ""
	if tokenID != nil {
		token = fmt.Sprintf(" #%d", *tokenID)
	}
	fmt.Fprintf(out, "%s %s%s %s %s\n",
		ui.Muted.Render(fmt.Sprintf("%6d", seq)),
		ui.Key.Render(kind), token,
		ui.Dim.Render(at.Local().Format("2006-01-02 15:04:05")),
		data)
}
