package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"chronoforge/internal/config"
	"chronoforge/internal/ui"
)

const Version = "0.1.0"

var (
	flagDB      string
	flagConfig  string
	flagCaller  string
	flagVerbose bool

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "cf",
	Short: "ChronoForge: local token lifecycle ledger",
	Long: `ChronoForge keeps a ledger of Aetherium Shards: collectible tokens that
gain energy through daily care, evolve, fuse and carry partner traits.

Every command acts as the address given by --as (or default_caller in the config).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := flagConfig
		if path == "" {
			p, err := config.ResolvePath()
			if err != nil {
				return err
			}
			path = p
		}
		c, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = c

		l, err := buildLogger(cfg.Logging, flagVerbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func buildLogger(lc config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = lc.Encoding
	if lc.Encoding == "console" {
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		level = zapcore.WarnLevel
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagDB, "db", "", "ledger database path (default $CHRONOFORGE_DB_PATH or ~/.local/share/chronoforge/ledger.db)")
	pf.StringVar(&flagConfig, "config", "", "config file (default $CHRONOFORGE_CONFIG or ~/.config/chronoforge/config.yaml)")
	pf.StringVar(&flagCaller, "as", "", "caller address")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newDeployCmd(),
		newMintCmd(),
		newEnergizeCmd(),
		newEvolveCmd(),
		newForgeCmd(),
		newInfuseCmd(),
		newCleanseCmd(),
		newWhitelistCmd(),
		newWithdrawCmd(),
		newTokensCmd(),
		newShowCmd(),
		newStatsCmd(),
		newConstantsCmd(),
		newEventsCmd(),
		newBoardCmd(),
		newServeCmd(),
		newConfigCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
