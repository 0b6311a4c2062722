package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"chronoforge/internal/engine"
	"chronoforge/internal/ui"
)

func newDeployCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Initialize the ledger with its administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			var (
				addr engine.Address
				err  error
			)
			if owner != "" {
				addr, err = engine.ParseAddress(owner)
			} else {
				addr, err = callerAddress()
			}
			if err != nil {
				return err
			}

			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.Deploy(ctx, addr); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s owner %s\n", ui.Good.Render(ui.IconVault+" Deployed"), ui.Key.Render(string(addr)))
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "administrator address (default: --as)")
	return cmd
}

func newMintCmd() *cobra.Command {
	var pay string
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint a new Aetherium Shard",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return errors.New("mint takes no arguments; use --pay for the amount")
			}
			return nil
		},
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

			payment, err := paymentOrDefault(pay, svc.Rules().MintPrice)
			if err != nil {
				return err
			}
			res, err := svc.Mint(ctx, caller, payment)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s %s %s\n",
				ui.Good.Render(ui.IconSparkle+" Minted"), res.TokenID,
				ui.ElementIcon(res.Element.String()), res.Element,
				ui.Muted.Render("(paid "+res.Paid.String()+")"))
			return nil
		},
	}
	cmd.Flags().StringVar(&pay, "pay", "", "payment in ETH (default: mint price)")
	return cmd
}
