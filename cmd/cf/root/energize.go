package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"chronoforge/internal/ui"
)

func newEnergizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "energize <id>",
		Short: "Energize a shard (once per cooldown)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := tokenArg(args, 0)
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

			res, err := svc.Energize(ctx, caller, id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s #%d +%d\n", ui.Good.Render(ui.IconBolt+" Energized"), res.TokenID, res.Gain)
			fmt.Fprintln(out, ui.EnergyBar(res.EnergyLevel, svc.Rules().EvolutionThreshold, 24))
			fmt.Fprintln(out, ui.LabelValue("Streak", res.Streak))
			fmt.Fprintln(out, ui.LabelValue("Next", res.NextEnergizeAt.Local().Format("2006-01-02 15:04")))
			return nil
		},
	}
	return cmd
}

func newEvolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evolve <id>",
		Short: "Evolve a shard that reached the energy threshold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := tokenArg(args, 0)
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

			res, err := svc.Evolve(ctx, caller, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d → %s %s\n", ui.Good.Render(ui.IconSparkle+" Evolved"), res.TokenID, ui.Gold.Render(res.Generation.String()), ui.BadgeEvolved)
			return nil
		},
	}
	return cmd
}

func newForgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forge <id1> <id2>",
		Short: "Burn two evolved shards into one of a higher generation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := tokenArg(args, 0)
			if err != nil {
				return err
			}
			b, err := tokenArg(args, 1)
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

			res, err := svc.Forge(ctx, caller, a, b)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d + #%d → #%d %s %s\n",
				ui.Good.Render(ui.IconForge+" Forged"), res.Burned[0], res.Burned[1], res.TokenID,
				ui.ElementIcon(res.Element.String()), ui.Gold.Render(res.Generation.String()))
			return nil
		},
	}
	return cmd
}
