// Package config holds the parameters of a genesis migration.
package config

import (
	"fmt"
	"sort"
	"strings"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/spf13/cast"

	servertypes "github.com/cosmos/cosmos-sdk/server/types"

	"github.com/kiichain/genesis-migrator/app/address"
	"github.com/kiichain/genesis-migrator/app/types"
)

const (
	DefaultAppName               = "kiichaind"
	DefaultAppVersion            = "1.0.0"
	DefaultChainID               = "kiichain_1336-1"
	DefaultAccountPrefix         = "kii"
	DefaultLegacyDenom           = "ukii"
	DefaultDenom                 = "akii"
	DefaultDisplayDenom          = "KII"
	DefaultDecimals              = 18
	DefaultEarlyAccountThreshold = 50
	DefaultEVMChainID            = 3665
)

// ClawbackConfig names the disallowed balance and where its excess goes.
// An empty source disables the clawback.
type ClawbackConfig struct {
	Source string `mapstructure:"source" json:"source"`
	Rescue string `mapstructure:"rescue" json:"rescue"`
}

// Enabled reports whether a clawback is configured.
func (c ClawbackConfig) Enabled() bool {
	return c.Source != ""
}

// DenomRename replaces every string equal to From with To.
type DenomRename struct {
	From string `mapstructure:"from" json:"from"`
	To   string `mapstructure:"to" json:"to"`
}

// EVMConfig defines the EVM chain the new genesis runs.
type EVMConfig struct {
	ChainID      uint64 `mapstructure:"chain_id" json:"chain_id"`
	DisplayDenom string `mapstructure:"display_denom" json:"display_denom"`
}

// Config defines the migration configuration.
type Config struct {
	AppName    string `mapstructure:"app_name" json:"app_name"`
	AppVersion string `mapstructure:"app_version" json:"app_version"`
	ChainID    string `mapstructure:"chain_id" json:"chain_id"`

	AccountPrefix         string `mapstructure:"account_prefix" json:"account_prefix"`
	EarlyAccountThreshold uint64 `mapstructure:"early_account_threshold" json:"early_account_threshold"`

	LegacyDenom string `mapstructure:"legacy_denom" json:"legacy_denom"`
	Denom       string `mapstructure:"denom" json:"denom"`
	// Decimals is the precision of Denom. One unit is 10^Decimals. Amounts
	// are rescaled by a fixed 10^12, so only 18 is accepted.
	Decimals uint `mapstructure:"decimals" json:"decimals"`
	// DenomRenames is applied to every string of the document. It must
	// rename LegacyDenom to Denom. It is a list so that denoms keep their
	// case when read through viper.
	DenomRenames []DenomRename `mapstructure:"denom_renames" json:"denom_renames"`

	Clawback ClawbackConfig `mapstructure:"clawback" json:"clawback"`
	EVM      EVMConfig      `mapstructure:"evm" json:"evm"`
}

func DefaultConfig() Config {
	return Config{
		AppName:               DefaultAppName,
		AppVersion:            DefaultAppVersion,
		ChainID:               DefaultChainID,
		AccountPrefix:         DefaultAccountPrefix,
		EarlyAccountThreshold: DefaultEarlyAccountThreshold,
		LegacyDenom:           DefaultLegacyDenom,
		Denom:                 DefaultDenom,
		Decimals:              DefaultDecimals,
		DenomRenames:          []DenomRename{{From: DefaultLegacyDenom, To: DefaultDenom}},
		EVM: EVMConfig{
			ChainID:      DefaultEVMChainID,
			DisplayDenom: DefaultDisplayDenom,
		},
	}
}

// Unit returns one whole token of Denom in base units.
func (c Config) Unit() sdkmath.Int {
	return sdkmath.NewIntWithDecimal(1, int(c.Decimals))
}

// Renames returns DenomRenames keyed by the denom they replace.
func (c Config) Renames() map[string]string {
	m := make(map[string]string, len(c.DenomRenames))
	for _, r := range c.DenomRenames {
		m[r.From] = r.To
	}
	return m
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	required := map[string]string{
		"app_name":       c.AppName,
		"app_version":    c.AppVersion,
		"chain_id":       c.ChainID,
		"account_prefix": c.AccountPrefix,
		"legacy_denom":   c.LegacyDenom,
		"denom":          c.Denom,
	}
	for _, key := range sortedKeys(required) {
		if strings.TrimSpace(required[key]) == "" {
			return errorsmod.Wrapf(types.ErrInvalidConfig, "%s must not be empty", key)
		}
	}

	if c.LegacyDenom == c.Denom {
		return errorsmod.Wrapf(types.ErrInvalidConfig, "legacy denom and denom are both %s", c.Denom)
	}
	seen := make(map[string]bool, len(c.DenomRenames))
	for i, r := range c.DenomRenames {
		if r.From == "" || r.To == "" {
			return errorsmod.Wrapf(types.ErrInvalidConfig, "denom_renames[%d]: from and to must not be empty", i)
		}
		if seen[r.From] {
			return errorsmod.Wrapf(types.ErrInvalidConfig, "denom_renames: %s renamed twice", r.From)
		}
		seen[r.From] = true
	}
	if c.Renames()[c.LegacyDenom] != c.Denom {
		return errorsmod.Wrapf(types.ErrInvalidConfig, "denom_renames must map %s to %s", c.LegacyDenom, c.Denom)
	}
	if c.Decimals != DefaultDecimals {
		return errorsmod.Wrapf(types.ErrInvalidConfig, "decimals must be %d, got %d", DefaultDecimals, c.Decimals)
	}
	if c.EVM.ChainID == 0 {
		return errorsmod.Wrap(types.ErrInvalidConfig, "evm chain_id must be positive")
	}

	if c.Clawback.Enabled() {
		if c.Clawback.Rescue == "" {
			return errorsmod.Wrap(types.ErrInvalidConfig, "clawback rescue address is required when a source is set")
		}
		if c.Clawback.Source == c.Clawback.Rescue {
			return errorsmod.Wrapf(types.ErrInvalidConfig, "clawback source and rescue are both %s", c.Clawback.Source)
		}
		for _, addr := range []string{c.Clawback.Source, c.Clawback.Rescue} {
			if _, err := address.DecodePrefixed(addr, c.AccountPrefix); err != nil {
				return errorsmod.Wrapf(types.ErrInvalidConfig, "clawback address: %s", err)
			}
		}
	} else if c.Clawback.Rescue != "" {
		return errorsmod.Wrap(types.ErrInvalidConfig, "clawback rescue address set without a source")
	}

	return nil
}

// DefaultConfigTemplate returns the default TOML configuration.
func DefaultConfigTemplate() string {
	return ConfigTemplate(DefaultConfig())
}

// ConfigTemplate returns the TOML document for c.
func ConfigTemplate(c Config) string {
	var renames strings.Builder
	for _, r := range c.DenomRenames {
		fmt.Fprintf(&renames, "[[denom_renames]]\nfrom = %q\nto = %q\n\n", r.From, r.To)
	}

	return fmt.Sprintf(`# Genesis metadata written to the migrated file.
app_name = %q
app_version = %q
chain_id = %q

# Bech32 prefix of account addresses.
account_prefix = %q

# Accounts with a number in (0, early_account_threshold] keep their address.
early_account_threshold = %d

legacy_denom = %q
denom = %q
decimals = %d

%s[clawback]
# Leave source empty to disable the clawback.
source = %q
rescue = %q

[evm]
chain_id = %d
display_denom = %q
`,
		c.AppName, c.AppVersion, c.ChainID,
		c.AccountPrefix,
		c.EarlyAccountThreshold,
		c.LegacyDenom, c.Denom, c.Decimals,
		renames.String(),
		c.Clawback.Source, c.Clawback.Rescue,
		c.EVM.ChainID, c.EVM.DisplayDenom,
	)
}

// NewConfigFromOptions reads the configuration from opts. Options that are
// not set keep their default value.
func NewConfigFromOptions(opts servertypes.AppOptions) (Config, error) {
	c := DefaultConfig()

	setString := func(dst *string, key string) {
		if v := opts.Get(key); v != nil {
			*dst = cast.ToString(v)
		}
	}

	setString(&c.AppName, "app_name")
	setString(&c.AppVersion, "app_version")
	setString(&c.ChainID, "chain_id")
	setString(&c.AccountPrefix, "account_prefix")
	setString(&c.LegacyDenom, "legacy_denom")
	setString(&c.Denom, "denom")
	setString(&c.Clawback.Source, "clawback.source")
	setString(&c.Clawback.Rescue, "clawback.rescue")
	setString(&c.EVM.DisplayDenom, "evm.display_denom")

	if v := opts.Get("early_account_threshold"); v != nil {
		c.EarlyAccountThreshold = cast.ToUint64(v)
	}
	if v := opts.Get("decimals"); v != nil {
		c.Decimals = cast.ToUint(v)
	}
	if v := opts.Get("evm.chain_id"); v != nil {
		c.EVM.ChainID = cast.ToUint64(v)
	}
	if v := opts.Get("denom_renames"); v != nil {
		renames, err := parseRenames(v)
		if err != nil {
			return Config{}, err
		}
		c.DenomRenames = renames
	} else if c.LegacyDenom != DefaultLegacyDenom || c.Denom != DefaultDenom {
		c.DenomRenames = []DenomRename{{From: c.LegacyDenom, To: c.Denom}}
	}

	return c, nil
}

// parseRenames reads a list of {from, to} tables.
func parseRenames(v any) ([]DenomRename, error) {
	items, err := cast.ToSliceE(v)
	if err != nil {
		return nil, errorsmod.Wrap(types.ErrInvalidConfig, "denom_renames must be a list of {from, to} tables")
	}

	renames := make([]DenomRename, 0, len(items))
	for i, item := range items {
		fields, err := cast.ToStringMapStringE(item)
		if err != nil {
			return nil, errorsmod.Wrapf(types.ErrInvalidConfig, "denom_renames[%d]: %s", i, err)
		}
		renames = append(renames, DenomRename{From: fields["from"], To: fields["to"]})
	}
	return renames, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
