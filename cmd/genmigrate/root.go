package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"

	"github.com/cosmos/cosmos-sdk/telemetry"

	"github.com/kiichain/genesis-migrator/app/config"
	"github.com/kiichain/genesis-migrator/app/document"
	"github.com/kiichain/genesis-migrator/app/migrations"
	"github.com/kiichain/genesis-migrator/app/types"
)

const (
	flagConfig         = "config"
	flagLogLevel       = "log-level"
	flagLogFormat      = "log-format"
	flagIndent         = "indent"
	flagDryRun         = "dry-run"
	flagSkipValidation = "skip-validation"
	flagChainID        = "chain-id"
	flagAppVersion     = "app-version"
	flagTelemetry      = "telemetry"
	flagReport         = "report"
	flagSummary        = "summary"

	logFormatPlain = "plain"
	logFormatJSON  = "json"
)

// NewRootCmd creates the genmigrate command with its subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "genmigrate [input-genesis] [output-genesis]",
		Short: "kiichain genesis migrator",
		Long: `Migrate an exported legacy kiichain genesis to the genesis of the EVM based chain.

This command performs the following:
1. Rewrites the genesis metadata and consensus parameters
2. Re-keys associated accounts to their EVM derived addresses
3. Renames and rescales the native denom
4. Migrates, drops or adds every module state
5. Validates the migrated genesis

Nothing is written unless every step succeeds.`,
		Example: `  # Migrate with the default parameters
  genmigrate export.json genesis.json

  # Dry-run to see what would be migrated (no file written)
  genmigrate export.json genesis.json --dry-run

  # Use a parameter file and pretty print the output
  genmigrate export.json genesis.json --config migrate.toml --indent 2

  # Keep the report next to the genesis and only log a summary
  genmigrate export.json genesis.json --report report.txt --summary`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runMigrate,
	}

	rootCmd.PersistentFlags().String(flagConfig, "", "Migration parameter file (toml, yaml or json)")
	rootCmd.PersistentFlags().String(flagLogLevel, zerolog.InfoLevel.String(), "Log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().String(flagLogFormat, logFormatPlain, "Log format (plain|json)")

	rootCmd.Flags().Int(flagIndent, 0, "Indent the output with this many spaces, 0 writes compact JSON")
	rootCmd.Flags().Bool(flagDryRun, false, "Run the migration without writing the output genesis")
	rootCmd.Flags().Bool(flagSkipValidation, false, "Skip post-migration validation (not recommended)")
	rootCmd.Flags().String(flagChainID, config.DefaultChainID, "Chain ID of the migrated genesis")
	rootCmd.Flags().String(flagAppVersion, config.DefaultAppVersion, "App version of the migrated genesis")
	rootCmd.Flags().Bool(flagTelemetry, false, "Collect phase timings and module counters and print them as JSON to stdout")
	rootCmd.Flags().String(flagReport, "", "Also write the migration report to this file")
	rootCmd.Flags().Bool(flagSummary, false, "Log a one-line summary instead of the full report")

	rootCmd.AddCommand(
		HoldersCmd(),
		BreakdownCmd(),
		ConfigCmd(),
	)

	return rootCmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool(flagDryRun)
	skipValidation, _ := cmd.Flags().GetBool(flagSkipValidation)
	summary, _ := cmd.Flags().GetBool(flagSummary)
	reportPath, _ := cmd.Flags().GetString(flagReport)
	indent, _ := cmd.Flags().GetInt(flagIndent)
	if indent < 0 {
		return errorsmod.Wrapf(types.ErrInvalidUsage, "indent must not be negative, got %d", indent)
	}

	input, output := args[0], args[1]
	logger.Info("Reading genesis", "path", input)
	genesis, err := readGenesis(input)
	if err != nil {
		return err
	}

	sink, err := newTelemetry(cmd)
	if err != nil {
		return err
	}

	migrator := migrations.NewMigrator(logger, cfg)
	migrator.SetDryRun(dryRun)
	migrator.SetSkipValidation(skipValidation)

	migrated, report, validationResults, err := migrator.Migrate(genesis)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if reportPath != "" {
		if err := os.WriteFile(reportPath, []byte(migrations.FormatReport(report, validationResults)), 0o644); err != nil {
			return errorsmod.Wrapf(types.ErrInvalidUsage, "writing report: %s", err)
		}
		logger.Info("Report written", "path", reportPath)
	}

	if !dryRun {
		logger.Info("Writing genesis", "path", output)
		if err := writeGenesis(output, migrated, strings.Repeat(" ", indent)); err != nil {
			return err
		}
		logger.Info("✅ Genesis written", "path", output)
	} else {
		logger.Info("✅ Dry-run completed (no genesis written)")
	}

	if summary {
		migrations.NewReportGenerator(logger).GenerateQuickSummary(report)
	} else {
		migrations.NewReportGenerator(logger).GenerateReport(report, validationResults)
	}

	if sink != nil {
		gathered, err := sink.Gather(telemetry.FormatDefault)
		if err != nil {
			return fmt.Errorf("gathering telemetry: %w", err)
		}
		if _, err := cmd.OutOrStdout().Write(gathered.Metrics); err != nil {
			return err
		}
	}

	logger.Info("")
	logger.Info("====================================================")
	if dryRun {
		logger.Info("DRY-RUN COMPLETE - Run without --dry-run to migrate")
	} else {
		logger.Info("MIGRATION COMPLETE")
	}
	logger.Info("====================================================")

	return nil
}

// newLogger builds the logger selected by the log flags.
func newLogger(cmd *cobra.Command) (log.Logger, error) {
	levelFlag, _ := cmd.Flags().GetString(flagLogLevel)
	level, err := zerolog.ParseLevel(levelFlag)
	if err != nil {
		return nil, errorsmod.Wrapf(types.ErrInvalidUsage, "invalid log level %q", levelFlag)
	}

	opts := []log.Option{log.LevelOption(level)}
	format, _ := cmd.Flags().GetString(flagLogFormat)
	switch format {
	case logFormatPlain:
	case logFormatJSON:
		opts = append(opts, log.OutputJSONOption())
	default:
		return nil, errorsmod.Wrapf(types.ErrInvalidUsage, "invalid log format %q", format)
	}

	return log.NewLogger(cmd.ErrOrStderr(), opts...), nil
}

// newTelemetry enables the in-memory metrics sink when requested. It
// returns nil when telemetry is off.
func newTelemetry(cmd *cobra.Command) (*telemetry.Metrics, error) {
	enabled, _ := cmd.Flags().GetBool(flagTelemetry)
	if !enabled {
		return nil, nil
	}
	m, err := telemetry.New(telemetry.Config{
		ServiceName: "genmigrate",
		Enabled:     true,
		MetricsSink: telemetry.MetricSinkInMem,
	})
	if err != nil {
		return nil, fmt.Errorf("starting telemetry: %w", err)
	}
	return m, nil
}

// loadConfig reads the optional parameter file and the metadata flags.
// Flags that are not set leave the file values in place.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v := viper.New()

	if path, _ := cmd.Flags().GetString(flagConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return config.Config{}, errorsmod.Wrapf(types.ErrInvalidUsage, "reading config %s: %s", path, err)
		}
	}

	for key, flag := range map[string]string{
		"chain_id":    flagChainID,
		"app_version": flagAppVersion,
	} {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return config.Config{}, err
		}
	}

	cfg, err := config.NewConfigFromOptions(v)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func readGenesis(path string) (*document.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errorsmod.Wrapf(types.ErrInvalidUsage, "opening genesis: %s", err)
	}
	defer f.Close()

	n, err := document.Decode(f)
	if err != nil {
		return nil, errorsmod.Wrap(err, path)
	}
	return n, nil
}

// writeGenesis writes n next to path and renames it into place, so a failed
// write never leaves a partial file at path.
func writeGenesis(path string, n *document.Node, indent string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".genmigrate-*.json")
	if err != nil {
		return errorsmod.Wrapf(types.ErrInvalidUsage, "creating output: %s", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("setting output mode: %w", err)
	}
	if err = document.Encode(tmp, n, indent); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errorsmod.Wrapf(types.ErrInvalidUsage, "moving output into place: %s", err)
	}
	return nil
}
