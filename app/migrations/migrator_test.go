package migrations

import (
	"testing"

	"github.com/icza/dyno"
	"github.com/stretchr/testify/require"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"

	"github.com/kiichain/genesis-migrator/app/config"
	"github.com/kiichain/genesis-migrator/app/document"
	"github.com/kiichain/genesis-migrator/app/resolver"
	"github.com/kiichain/genesis-migrator/app/types"
)

func migrate(t *testing.T, cfg config.Config, genesis map[string]any) (map[string]any, *MigrationReport, []ValidationResult) {
	t.Helper()
	out, report, results, err := NewMigrator(log.NewNopLogger(), cfg).Migrate(toNode(t, genesis))
	require.NoError(t, err)
	return toMap(t, out), report, results
}

func TestMigrateRoot(t *testing.T) {
	out, _, _ := migrate(t, config.DefaultConfig(), legacyGenesis())

	require.Equal(t, "kiichaind", out["app_name"])
	require.Equal(t, "1.0.0", out["app_version"])
	require.Equal(t, "kiichain_1336-1", out["chain_id"])
	require.Equal(t, float64(1), out["initial_height"])
	require.Nil(t, out["app_hash"])
	require.Equal(t, "2024-06-01T00:00:00Z", out["genesis_time"])

	require.NotContains(t, out, "consensus_params")
	require.NotContains(t, out, "validators")
	require.Equal(t, "node0", getString(t, out, "consensus", "validators", 0, "name"))
	require.Equal(t, "22020096", getString(t, out, "consensus", "params", "block", "max_bytes"))
	require.Equal(t, "100000", getString(t, out, "consensus", "params", "evidence", "max_age_num_blocks"))
	require.Equal(t, "172800000000000", getString(t, out, "consensus", "params", "evidence", "max_age_duration"))
	require.Equal(t, "1048576", getString(t, out, "consensus", "params", "evidence", "max_bytes"))
	require.Equal(t, "0", getString(t, out, "consensus", "params", "version", "app"))
	require.Equal(t, "0", getString(t, out, "consensus", "params", "abci", "vote_extensions_enable_height"))
}

func TestMigrateModules(t *testing.T) {
	out, report, results := migrate(t, config.DefaultConfig(), legacyGenesis())

	appState := out["app_state"].(map[string]any)
	for _, dropped := range []string{"accesscontrol", "epoch", "mint", "params"} {
		require.NotContains(t, appState, dropped)
	}

	// auth
	require.Equal(t, holderNew, getString(t, out, "app_state", "auth", "accounts", 0, "address"))
	pubKey, err := dyno.Get(out, "app_state", "auth", "accounts", 0, "pub_key")
	require.NoError(t, err)
	require.Nil(t, pubKey)
	require.Equal(t, validatorAcc, getString(t, out, "app_state", "auth", "accounts", 2, "address"))
	require.Equal(t, earlyAccount, getString(t, out, "app_state", "auth", "accounts", 3, "address"))
	require.NotContains(t, appState["auth"].(map[string]any)["params"], "disable_seqno_check")

	// authz
	require.Equal(t, map[string]any{"authorization": []any{}}, appState["authz"])

	// bank
	require.Equal(t, []any{
		map[string]any{"address": holderNew, "coins": []any{coin("akii", "1000000500000000000"), coin("factory/x", "5")}},
		map[string]any{"address": moduleAccount, "coins": []any{coin("akii", "2000000000000")}},
		map[string]any{"address": sourceAccount, "coins": []any{coin("akii", "3000000000000000000")}},
	}, appState["bank"].(map[string]any)["balances"])
	require.Equal(t, []any{coin("akii", "4000002000000000000"), coin("factory/x", "5")}, appState["bank"].(map[string]any)["supply"])
	require.Equal(t, []any{}, appState["bank"].(map[string]any)["send_enabled"])
	require.NotContains(t, appState["bank"], "wei_balances")

	// crisis
	require.Equal(t, coin("akii", "1000000000000000"), appState["crisis"].(map[string]any)["constant_fee"])

	// distribution
	require.Equal(t, "10500000000000.000000000000000000", getString(t, out, "app_state", "distribution", "fee_pool", "community_pool", 0, "amount"))
	require.Equal(t, "1500000000000.000000000000000000", getString(t, out, "app_state", "distribution", "outstanding_rewards", 0, "outstanding_rewards", 0, "amount"))
	require.Equal(t, "250000000000.000000000000000000", getString(t, out, "app_state", "distribution", "validator_accumulated_commissions", 0, "accumulated", "commission", 0, "amount"))
	require.Equal(t, "2000000000000.000000000000000000", getString(t, out, "app_state", "distribution", "validator_current_rewards", 0, "rewards", "rewards", 0, "amount"))
	require.Equal(t, "100000000000000.000000000000000000", getString(t, out, "app_state", "distribution", "delegator_starting_infos", 0, "starting_info", "stake"))
	require.Equal(t, holderNew, getString(t, out, "app_state", "distribution", "delegator_starting_infos", 0, "delegator_address"))

	// evm
	require.Equal(t, "akii", getString(t, out, "app_state", "evm", "params", "evm_denom"))
	require.Equal(t, "3665", getString(t, out, "app_state", "evm", "params", "chain_config", "chain_id"))
	require.NotContains(t, appState["evm"], "address_associations")

	// feegrant
	require.Equal(t, "100000000000000", getString(t, out, "app_state", "feegrant", "allowances", 0, "allowance", "basic", "spend_limit", 0, "amount"))
	require.Equal(t, "10000000000000", getString(t, out, "app_state", "feegrant", "allowances", 0, "allowance", "period_spend_limit", 0, "amount"))
	require.Equal(t, "7000000000000", getString(t, out, "app_state", "feegrant", "allowances", 0, "allowance", "period_can_spend", 0, "amount"))
	require.Equal(t, "7", getString(t, out, "app_state", "feegrant", "allowances", 0, "allowance", "period_can_spend", 1, "amount"))

	// gov
	require.Equal(t, "10000000000000000000", getString(t, out, "app_state", "gov", "params", "min_deposit", 0, "amount"))
	require.Equal(t, "20000000000000000000", getString(t, out, "app_state", "gov", "params", "expedited_min_deposit", 0, "amount"))
	require.Equal(t, "1", getString(t, out, "app_state", "gov", "starting_proposal_id"))
	require.Equal(t, []any{}, appState["gov"].(map[string]any)["proposals"])
	require.Nil(t, appState["gov"].(map[string]any)["deposit_params"])

	// ibc
	require.Equal(t, "09-localhost", getString(t, out, "app_state", "ibc", "client_genesis", "clients", 0, "client_id"))

	// slashing
	require.Equal(t, []any{}, appState["slashing"].(map[string]any)["missed_blocks"].([]any)[0].(map[string]any)["missed_blocks"])
	require.NotContains(t, appState["slashing"].(map[string]any)["missed_blocks"].([]any)[0], "window_size")

	// staking
	require.Equal(t, "akii", getString(t, out, "app_state", "staking", "params", "bond_denom"))
	require.NotContains(t, appState["staking"].(map[string]any)["params"], "max_voting_power_ratio")
	require.Equal(t, "3000000000000000000", getString(t, out, "app_state", "staking", "validators", 0, "tokens"))
	require.Equal(t, "3000000000000000000.000000000000000000", getString(t, out, "app_state", "staking", "validators", 0, "delegator_shares"))
	require.Equal(t, "0", getString(t, out, "app_state", "staking", "validators", 0, "unbonding_on_hold_ref_count"))
	require.Equal(t, "3000000000000000000.000000000000000000", getString(t, out, "app_state", "staking", "delegations", 0, "shares"))
	require.Equal(t, "50000000000000", getString(t, out, "app_state", "staking", "unbonding_delegations", 0, "entries", 0, "initial_balance"))
	require.Equal(t, "40000000000000", getString(t, out, "app_state", "staking", "unbonding_delegations", 0, "entries", 0, "balance"))
	require.Equal(t, "20000000000000.000000000000000000", getString(t, out, "app_state", "staking", "redelegations", 0, "entries", 0, "shares_dst"))
	require.Equal(t, "3", getString(t, out, "app_state", "staking", "last_total_power"))

	// tokenfactory
	require.Equal(t, coin("akii", TokenfactoryCreationFee), appState["tokenfactory"].(map[string]any)["params"].(map[string]any)["denom_creation_fee"].([]any)[0])

	// transfer
	require.Equal(t, []any{}, appState["transfer"].(map[string]any)["total_escrowed"])

	// wasm
	require.Equal(t, []any{}, appState["wasm"].(map[string]any)["params"].(map[string]any)["code_upload_access"].(map[string]any)["addresses"])
	require.Equal(t, "ACCESS_TYPE_ANY_OF_ADDRESSES", getString(t, out, "app_state", "wasm", "codes", 0, "code_info", "instantiate_config", "permission"))
	require.Equal(t, holderNew, getString(t, out, "app_state", "wasm", "codes", 0, "code_info", "instantiate_config", "addresses", 0))
	require.Equal(t, "636f6e666967", getString(t, out, "app_state", "wasm", "contracts", 0, "contract_state", 0, "key"))
	require.Equal(t, "0", getString(t, out, "app_state", "wasm", "contracts", 0, "contract_info", "created", "block_height"))
	require.Equal(t, "1", getString(t, out, "app_state", "wasm", "contracts", 0, "contract_code_history", 0, "code_id"))
	require.NotContains(t, appState["wasm"], "gen_msgs")

	// report
	stats := report.Stats
	require.Equal(t, 23, stats.TotalModules)
	require.Equal(t, 4, stats.DroppedModules)
	require.Equal(t, 5, stats.UnchangedModules)
	require.Equal(t, 14, stats.TransformedModules)
	require.Equal(t, 6, stats.AddedModules)
	require.Equal(t, 3, stats.Associations)
	require.Equal(t, 1, stats.Replacements)
	require.Equal(t, 2, stats.SkippedAccounts)
	require.Equal(t, 1, stats.Fragments.Merged)
	require.Equal(t, 3, stats.Fragments.Scaled)
	require.Equal(t, []resolver.SkipNotice{
		{Address: validatorAcc, Reason: resolver.Exclusion{Reason: resolver.ReasonValidator}},
		{Address: earlyAccount, Reason: resolver.Exclusion{Reason: resolver.ReasonEarlyAccount, AccountNumber: 3}},
	}, report.SkipNotices)
	require.Empty(t, report.Collisions)
	require.Nil(t, report.Clawback)
	require.Contains(t, warningMessages(report), "bank supply does not match the sum of balances")
	require.Len(t, report.Modules, 29)

	require.Len(t, results, 5)
	for _, r := range results {
		require.True(t, r.Valid, r.Check)
	}
}

func TestMigrateAddedModulesOrder(t *testing.T) {
	out, _, _, err := NewMigrator(log.NewNopLogger(), config.DefaultConfig()).Migrate(toNode(t, legacyGenesis()))
	require.NoError(t, err)

	appState, err := out.GetObject("app_state")
	require.NoError(t, err)
	keys := appState.Keys()
	require.Equal(t, []string{
		"erc20", "feemarket", "feeibc", "interchainaccounts", "packetfowardmiddleware", "ratelimit",
	}, keys[len(keys)-6:])
}

func TestMigrateLeavesInputUntouched(t *testing.T) {
	in := toNode(t, legacyGenesis())
	before, err := document.Marshal(in)
	require.NoError(t, err)

	_, _, _, err = NewMigrator(log.NewNopLogger(), config.DefaultConfig()).Migrate(in)
	require.NoError(t, err)

	after, err := document.Marshal(in)
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))
}

func TestMigrateClawback(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Clawback = config.ClawbackConfig{Source: sourceAccount, Rescue: earlyAccount}

	out, report, _ := migrate(t, cfg, legacyGenesis())

	require.NotNil(t, report.Clawback)
	require.True(t, report.Clawback.Outcome.Applied)
	require.True(t, report.Clawback.Outcome.RescueCreated)
	require.True(t, report.Clawback.Outcome.Remainder.Equal(sdkmath.NewIntWithDecimal(2, 18)))

	balances, err := dyno.GetSlice(out, "app_state", "bank", "balances")
	require.NoError(t, err)
	require.Len(t, balances, 4)
	require.Equal(t, map[string]any{"address": sourceAccount, "coins": []any{coin("akii", "1000000000000000000")}}, balances[2])
	require.Equal(t, map[string]any{"address": earlyAccount, "coins": []any{coin("akii", "2000000000000000000")}}, balances[3])
}

func TestMigrateUnscaledBondDenom(t *testing.T) {
	genesis := legacyGenesis()
	modifyGenesis(t, genesis, "stake", "app_state", "staking", "params", "bond_denom")

	out, report, _ := migrate(t, config.DefaultConfig(), genesis)

	require.Equal(t, "3000000", getString(t, out, "app_state", "staking", "validators", 0, "tokens"))
	require.Equal(t, "3000000.000000000000000000", getString(t, out, "app_state", "staking", "delegations", 0, "shares"))
	require.Equal(t, "100.000000000000000000", getString(t, out, "app_state", "distribution", "delegator_starting_infos", 0, "starting_info", "stake"))
	require.Equal(t, "0", getString(t, out, "app_state", "staking", "validators", 0, "unbonding_on_hold_ref_count"))
	require.Len(t, report.Warnings, 3)
}

func TestMigrateErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(t *testing.T, genesis map[string]any)
		cfg    func(cfg *config.Config)
		err    error
	}{
		{
			name: "unknown module",
			modify: func(t *testing.T, genesis map[string]any) {
				modifyGenesis(t, genesis, map[string]any{}, "app_state", "oracle")
			},
			err: types.ErrSchema,
		},
		{
			name: "missing consensus params",
			modify: func(t *testing.T, genesis map[string]any) {
				deleteFromGenesis(t, genesis, "consensus_params")
			},
			err: types.ErrSchema,
		},
		{
			name: "hex initial height",
			modify: func(t *testing.T, genesis map[string]any) {
				modifyGenesis(t, genesis, "0x10", "initial_height")
			},
			err: types.ErrSchema,
		},
		{
			name: "bad association checksum length",
			modify: func(t *testing.T, genesis map[string]any) {
				modifyGenesis(t, genesis, "0x40f2", "app_state", "evm", "address_associations", 0, "eth_address")
			},
			err: types.ErrAddressFormat,
		},
		{
			name: "unparsable balance",
			modify: func(t *testing.T, genesis map[string]any) {
				modifyGenesis(t, genesis, "1.5", "app_state", "bank", "balances", 1, "coins", 0, "amount")
			},
			err: types.ErrArithmetic,
		},
		{
			name: "oversized wei fragment",
			modify: func(t *testing.T, genesis map[string]any) {
				modifyGenesis(t, genesis, "1000000000000", "app_state", "bank", "wei_balances", 0, "amount")
			},
			err: types.ErrArithmetic,
		},
		{
			name: "invalid config",
			cfg: func(cfg *config.Config) {
				cfg.Denom = cfg.LegacyDenom
			},
			err: types.ErrInvalidConfig,
		},
		{
			name: "decimals other than 18",
			cfg: func(cfg *config.Config) {
				cfg.Decimals = 6
			},
			err: types.ErrInvalidConfig,
		},
		{
			name: "denom rename shadows an address",
			cfg: func(cfg *config.Config) {
				cfg.DenomRenames = append(cfg.DenomRenames, config.DenomRename{From: holderLegacy, To: "kii1other"})
			},
			err: types.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			genesis := legacyGenesis()
			if tt.modify != nil {
				tt.modify(t, genesis)
			}
			cfg := config.DefaultConfig()
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}

			out, report, _, err := NewMigrator(log.NewNopLogger(), cfg).Migrate(toNode(t, genesis))
			require.ErrorIs(t, err, tt.err)
			require.Nil(t, out)
			require.Nil(t, report)
		})
	}
}

func TestMigrateValidationFailure(t *testing.T) {
	leaky := func(_ *ModuleContext, state *document.Node) (*document.Node, error) {
		obj, _ := state.AsObject()
		obj.Set("leak", document.String(holderLegacy))
		return state, nil
	}

	registry := DefaultRegistry()
	entries := make(map[string]Entry, len(registry.entries))
	for name, e := range registry.entries {
		entries[name] = e
	}
	entries["upgrade"] = Entry{Action: ActionTransform, Rule: leaky}
	leakingRegistry, err := NewRegistry(entries, AddedModules())
	require.NoError(t, err)

	m := NewMigrator(log.NewNopLogger(), config.DefaultConfig()).WithRegistry(leakingRegistry)
	out, _, results, err := m.Migrate(toNode(t, legacyGenesis()))
	require.ErrorIs(t, err, types.ErrValidation)
	require.Nil(t, out)
	require.NotEmpty(t, results)

	m.SetSkipValidation(true)
	out, report, results, err := m.Migrate(toNode(t, legacyGenesis()))
	require.NoError(t, err)
	require.NotNil(t, out)
	require.NotNil(t, report)
	require.Empty(t, results)
}

func TestMigratorDryRun(t *testing.T) {
	m := NewMigrator(log.NewNopLogger(), config.DefaultConfig())
	require.False(t, m.dryRun)

	m.SetDryRun(true)
	require.True(t, m.dryRun)

	_, report, _, err := m.Migrate(toNode(t, legacyGenesis()))
	require.NoError(t, err)
	require.True(t, report.DryRun)
}
