package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"chronoforge/internal/engine"
	"chronoforge/internal/ui"
)

func newWhitelistCmd() *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "whitelist <partner>",
		Short: "Allow (or with --remove, revoke) a partner token for infusion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			partner, err := engine.ParseAddress(args[0])
			if err != nil {
				return err
			}
			caller, err := callerAddress()
			if err != nil {
				return err
			}
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.WhitelistPartnerToken(ctx, caller, partner, !remove); err != nil {
				return err
			}
			if remove {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render("Revoked"), partner)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconPlus+" Whitelisted"), partner)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&remove, "remove", false, "revoke instead of allow")
	return cmd
}

func newWithdrawCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Pay the treasury out to the owner",
		Args:  cobra.NoArgs,
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

			amount, err := svc.Withdraw(ctx, caller)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s to %s\n", ui.Good.Render(ui.IconVault+" Withdrew"), ui.Gold.Render(amount.String()), caller)
			return nil
		},
	}
	return cmd
}
