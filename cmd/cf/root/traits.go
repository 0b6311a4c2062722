package root

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"chronoforge/internal/engine"
	"chronoforge/internal/ui"
)

func newInfuseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "infuse <id> <partner> <trait...>",
		Short: "Infuse a partner trait into a shard (costs purity)",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := tokenArg(args, 0)
			if err != nil {
				return err
			}
			partner, err := engine.ParseAddress(args[1])
			if err != nil {
				return err
			}
			trait := strings.Join(args[2:], " ")
			caller, err := callerAddress()
			if err != nil {
				return err
			}
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.Infuse(ctx, caller, id, partner, trait)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d with %q → purity %s %s\n",
				ui.Good.Render(ui.IconFlask+" Infused"), res.TokenID, res.Trait,
				ui.PurityText(res.Purity, svc.Rules().MinEvolvePurity),
				ui.Muted.Render(fmt.Sprintf("(%d traits)", res.TraitCount)))
			return nil
		},
	}
	return cmd
}

func newCleanseCmd() *cobra.Command {
	var pay string
	cmd := &cobra.Command{
		Use:   "cleanse <id> <trait-index>",
		Short: "Pay to remove a trait and restore purity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := tokenArg(args, 0)
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[1])
			if err != nil || index < 0 {
				return fmt.Errorf("trait index must be a non-negative integer")
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

			payment, err := paymentOrDefault(pay, svc.Rules().CleanseCost)
			if err != nil {
				return err
			}
			res, err := svc.Cleanse(ctx, caller, id, index, payment)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d removed %q → purity %s %s\n",
				ui.Good.Render(ui.IconDone+" Cleansed"), res.TokenID, res.Trait,
				ui.PurityText(res.Purity, svc.Rules().MinEvolvePurity),
				ui.Muted.Render("(paid "+res.Paid.String()+")"))
			return nil
		},
	}
	cmd.Flags().StringVar(&pay, "pay", "", "payment in ETH (default: cleanse cost)")
	return cmd
}
