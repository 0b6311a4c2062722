package root

import (
	"context"

	"github.com/spf13/cobra"

	"chronoforge/internal/tui"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the TUI vault of your shards",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			caller, err := callerAddress()
			if err != nil {
				return err
			}
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			return tui.RunBoard(ctx, svc, caller, cmd.OutOrStdout())
		},
	}

	return cmd
}
