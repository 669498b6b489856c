package main

import (
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	errorsmod "cosmossdk.io/errors"

	"github.com/kiichain/genesis-migrator/app/config"
	"github.com/kiichain/genesis-migrator/app/types"
)

const (
	flagFormat = "format"

	formatTOML = "toml"
	formatYAML = "yaml"
)

// ConfigCmd prints the default migration parameters.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the default migration parameters",
		Example: `  # Write a parameter file to edit
  genmigrate config > migrate.toml

  # The same parameters as YAML
  genmigrate config --format yaml > migrate.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString(flagFormat)

			var out []byte
			switch format {
			case formatTOML:
				out = []byte(config.DefaultConfigTemplate())
			case formatYAML:
				bz, err := yaml.Marshal(config.DefaultConfig())
				if err != nil {
					return err
				}
				out = bz
			default:
				return errorsmod.Wrapf(types.ErrInvalidUsage, "invalid format %q", format)
			}

			_, err := cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().String(flagFormat, formatTOML, "Output format (toml|yaml)")

	return cmd
}
