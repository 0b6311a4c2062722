package root

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chronoforge/internal/engine"
	"chronoforge/internal/ui"
)

func newTokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens [address]",
		Short: "List the shards an address holds",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			var (
				holder engine.Address
				err    error
			)
			if len(args) == 1 {
				holder, err = engine.ParseAddress(args[0])
			} else {
				holder, err = callerAddress()
			}
			if err != nil {
				return err
			}
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			ids, err := svc.UserTokens(ctx, holder)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconShard, fmt.Sprintf("Shards of %s (%d)", holder.Short(), len(ids))))
			if len(ids) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(none)"))
				return nil
			}
			rules := svc.Rules()
			for _, id := range ids {
				info, err := svc.TokenBasicInfo(ctx, id)
				if err != nil {
					return err
				}
				evolved := ""
				if info.Evolved {
					evolved = " " + ui.BadgeEvolved
				}
				fmt.Fprintf(out, "- #%d %s %-5s %s energy %d purity %s%s\n",
					id, ui.ElementIcon(info.CoreElement.String()), info.CoreElement, info.Generation,
					info.EnergyLevel, ui.PurityText(info.Purity, rules.MinEvolvePurity), evolved)
			}
			return nil
		},
	}
	return cmd
}

func newShowCmd() *cobra.Command {
	var (
		start int
		count int
		uri   bool
	)
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one shard in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := tokenArg(args, 0)
			if err != nil {
				return err
			}
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			if uri {
				u, err := svc.TokenURI(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, u)
				return nil
			}

			owner, err := svc.OwnerOf(ctx, id)
			if err != nil {
				return err
			}
			info, err := svc.TokenBasicInfo(ctx, id)
			if err != nil {
				return err
			}
			energy, err := svc.TokenEnergyInfo(ctx, id)
			if err != nil {
				return err
			}
			traits, err := svc.TokenTraitsPaginated(ctx, id, start, count)
			if err != nil {
				return err
			}
			rules := svc.Rules()

			fmt.Fprintln(out, ui.Heading(ui.ElementIcon(info.CoreElement.String()), fmt.Sprintf("Aetherium Shard #%d", id)))
			fmt.Fprintln(out, ui.LabelValue("Owner", owner))
			fmt.Fprintln(out, ui.LabelValue("Element", info.CoreElement))
			gen := info.Generation.String()
			if info.Evolved {
				gen += " " + ui.BadgeEvolved
			}
			fmt.Fprintln(out, ui.LabelValue("Generation", gen))
			fmt.Fprintln(out, ui.LabelValue("Energy", ui.EnergyBar(info.EnergyLevel, rules.EvolutionThreshold, 24)))
			fmt.Fprintln(out, ui.LabelValue("Purity", ui.PurityText(info.Purity, rules.MinEvolvePurity)))
			fmt.Fprintln(out, ui.LabelValue("Streak", energy.CurrentStreak))
			fmt.Fprintln(out, ui.LabelValue("Energize", ui.CooldownText(rules.NextEnergizeAt(energy.LastEnergized), svc.Now())))
			fmt.Fprintln(out, ui.LabelValue("Created", info.CreationTime.Local().Format("2006-01-02 15:04")))
			fmt.Fprintln(out, "")
			fmt.Fprintln(out, ui.H2.Render(ui.IconFlask+" Traits"))
			if len(traits) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(none)"))
			}
			for i, t := range traits {
				fmt.Fprintf(out, "%s %s\n", ui.Muted.Render(fmt.Sprintf("[%d]", start+i)), t)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&start, "start", 0, "first trait index")
	cmd.Flags().IntVar(&count, "count", engine.MaxTraitPage, "traits per page (max 50)")
	cmd.Flags().BoolVar(&uri, "uri", false, "print the metadata data URI instead")
	return cmd
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show ledger totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			stats, err := svc.BasicStats(ctx)
			if err != nil {
				return err
			}
			supply, err := svc.TotalSupply(ctx)
			if err != nil {
				return err
			}
			owner, err := svc.Owner(ctx)
			if err != nil {
				return err
			}
			treasury, err := svc.Treasury(ctx)
			if err != nil {
				return err
			}
			partners, err := svc.WhitelistedPartners(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconScroll, "Ledger"))
			fmt.Fprintln(out, ui.LabelValue("Owner", owner))
			fmt.Fprintln(out, ui.LabelValue("Minted", stats.TotalMinted))
			fmt.Fprintln(out, ui.LabelValue("Evolved", stats.TotalEvolved))
			fmt.Fprintln(out, ui.LabelValue("Supply", fmt.Sprintf("%d / %d", supply, svc.Rules().MaxSupply)))
			fmt.Fprintln(out, ui.LabelValue("Treasury", treasury))
			names := make([]string, 0, len(partners))
			for _, p := range partners {
				names = append(names, p.Short())
			}
			if len(names) == 0 {
				names = append(names, ui.Muted.Render("(none)"))
			}
			fmt.Fprintln(out, ui.LabelValue("Partners", strings.Join(names, ", ")))
			return nil
		},
	}
	return cmd
}

func newConstantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "constants",
		Short: "Show the rule constants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg.Rules().Constants()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconInfo, "Constants"))
			fmt.Fprintln(out, ui.LabelValue("MINT_PRICE", c.MintPrice))
			fmt.Fprintln(out, ui.LabelValue("CLEANSE_COST", c.CleanseCost))
			fmt.Fprintln(out, ui.LabelValue("EVOLUTION_THRESHOLD", c.EvolutionThreshold))
			fmt.Fprintln(out, ui.LabelValue("DAILY_ENERGY_GAIN", c.DailyEnergyGain))
			fmt.Fprintln(out, ui.LabelValue("STREAK_BONUS_MULTIPLIER", c.StreakBonusMultiplier))
			fmt.Fprintln(out, ui.LabelValue("MAX_SUPPLY", c.MaxSupply))
			return nil
		},
	}
	return cmd
}
