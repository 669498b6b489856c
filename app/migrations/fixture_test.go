package migrations

import (
	"encoding/json"
	"testing"

	"github.com/icza/dyno"
	"github.com/stretchr/testify/require"

	"github.com/kiichain/genesis-migrator/app/document"
)

const (
	holderLegacy  = "kii1zyg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3ckdgys"
	holderHex     = "0x40f2e27f95b50E4D13849d09d2504004A2D57f50"
	holderNew     = "kii1grewylu4k58y6yuyn5yay5zqqj3d2l6skxu8xc"
	moduleAccount = "kii1yg3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zhtgwv8"
	validatorOper = "kiivaloper1xvenxvenxvenxvenxvenxvenxvenxvensryqcp"
	validatorAcc  = "kii1xvenxvenxvenxvenxvenxvenxvenxven94lne4"
	validatorHex  = "0x299680Ef50C6DD897450176aac933D08B756DDe6"
	earlyAccount  = "kii1g3zyg3zyg3zyg3zyg3zyg3zyg3zyg3zy66hvlm"
	earlyHex      = "0x7979f3A3c912D73c953fb59de0311bfA9b176730"
	sourceAccount = "kii124242424242424242424242424242424gyq32f"
	contractAddr  = "kii1venxvenxvenxvenxvenxvenxvenxvenxvenxvenxvenxvenxvenqhgch07"
)

func coin(denom, amount string) map[string]any {
	return map[string]any{"denom": denom, "amount": amount}
}

func account(addr, number string) map[string]any {
	return map[string]any{
		"@type":          "/cosmos.auth.v1beta1.BaseAccount",
		"address":        addr,
		"pub_key":        nil,
		"account_number": number,
		"sequence":       "0",
	}
}

// legacyGenesis returns an exported legacy genesis touching every registered module.
func legacyGenesis() map[string]any {
	holder := account(holderLegacy, "100")
	holder["pub_key"] = map[string]any{"@type": "/cosmos.crypto.secp256k1.PubKey", "key": "A1"}

	return map[string]any{
		"genesis_time":   "2024-06-01T00:00:00Z",
		"chain_id":       "kiichain3",
		"initial_height": "1",
		"app_hash":       "",
		"consensus_params": map[string]any{
			"block":     map[string]any{"max_bytes": "22020096", "max_gas": "-1"},
			"evidence":  map[string]any{"max_age_num_blocks": "1"},
			"validator": map[string]any{"pub_key_types": []any{"ed25519"}},
			"version":   map[string]any{"app_version": "0"},
			"abci":      map[string]any{"vote_extensions_enable_height": 0},
		},
		"validators": []any{
			map[string]any{"address": "ABCD", "name": "node0", "power": "3"},
		},
		"app_state": map[string]any{
			"accesscontrol": map[string]any{"params": map[string]any{}},
			"auth": map[string]any{
				"params": map[string]any{"max_memo_characters": "256", "disable_seqno_check": false},
				"accounts": []any{
					holder,
					map[string]any{
						"@type": "/cosmos.auth.v1beta1.ModuleAccount",
						"base_account": map[string]any{
							"address":        moduleAccount,
							"pub_key":        nil,
							"account_number": "60",
							"sequence":       "0",
						},
						"name":        "distribution",
						"permissions": []any{},
					},
					account(validatorAcc, "200"),
					account(earlyAccount, "3"),
					account(sourceAccount, "101"),
				},
			},
			"authz": map[string]any{
				"authorization": []any{
					map[string]any{"granter": holderLegacy, "grantee": earlyAccount},
				},
			},
			"bank": map[string]any{
				"params": map[string]any{"default_send_enabled": true},
				"balances": []any{
					map[string]any{"address": holderLegacy, "coins": []any{coin("factory/x", "5"), coin("ukii", "1000000")}},
					map[string]any{"address": moduleAccount, "coins": []any{coin("ukii", "2")}},
					map[string]any{"address": sourceAccount, "coins": []any{coin("ukii", "3000000")}},
				},
				"supply":         []any{coin("factory/x", "5"), coin("ukii", "4000002")},
				"denom_metadata": []any{},
				"send_enabled":   []any{map[string]any{"denom": "ukii", "enabled": true}},
				"wei_balances": []any{
					map[string]any{"address": holderLegacy, "amount": "500000000000"},
				},
			},
			"capability": map[string]any{"index": "1", "owners": []any{}},
			"crisis":     map[string]any{"constant_fee": coin("ukii", "1000")},
			"distribution": map[string]any{
				"params":                   map[string]any{"community_tax": "0.020000000000000000"},
				"fee_pool":                 map[string]any{"community_pool": []any{coin("ukii", "10.500000000000000000")}},
				"delegator_withdraw_infos": []any{},
				"previous_proposer":        "",
				"outstanding_rewards": []any{
					map[string]any{"validator_address": validatorOper, "outstanding_rewards": []any{coin("ukii", "1.5")}},
				},
				"validator_accumulated_commissions": []any{
					map[string]any{"validator_address": validatorOper, "accumulated": map[string]any{"commission": []any{coin("ukii", "0.25")}}},
				},
				"validator_historical_rewards": []any{},
				"validator_current_rewards": []any{
					map[string]any{"validator_address": validatorOper, "rewards": map[string]any{"rewards": []any{coin("ukii", "2")}, "period": "3"}},
				},
				"delegator_starting_infos": []any{
					map[string]any{
						"delegator_address": holderLegacy,
						"validator_address": validatorOper,
						"starting_info":     map[string]any{"previous_period": "1", "stake": "100.000000000000000000", "height": "0"},
					},
				},
				"validator_slash_events": []any{},
			},
			"epoch":    map[string]any{"params": map[string]any{}},
			"evidence": map[string]any{"evidence": []any{}},
			"evm": map[string]any{
				"params": map[string]any{"priority_normalizer": "1.0"},
				"address_associations": []any{
					map[string]any{"kii_address": holderLegacy, "eth_address": holderHex},
					map[string]any{"kii_address": validatorAcc, "eth_address": validatorHex},
					map[string]any{"kii_address": earlyAccount, "eth_address": earlyHex},
				},
			},
			"feegrant": map[string]any{
				"allowances": []any{
					map[string]any{
						"granter": holderLegacy,
						"grantee": earlyAccount,
						"allowance": map[string]any{
							"@type":              "/cosmos.feegrant.v1beta1.PeriodicAllowance",
							"basic":              map[string]any{"spend_limit": []any{coin("ukii", "100")}, "expiration": nil},
							"period":             "3600s",
							"period_spend_limit": []any{coin("ukii", "10")},
							"period_can_spend":   []any{coin("ukii", "7"), coin("factory/x", "7")},
						},
					},
				},
			},
			"genutil": map[string]any{"gen_txs": []any{}},
			"gov": map[string]any{
				"starting_proposal_id": "5",
				"deposits":             []any{map[string]any{"proposal_id": "4", "depositor": holderLegacy, "amount": []any{coin("ukii", "10")}}},
				"votes":                []any{},
				"proposals":            []any{map[string]any{"proposal_id": "4"}},
				"deposit_params": map[string]any{
					"min_deposit":           []any{coin("ukii", "10000000")},
					"max_deposit_period":    "172800s",
					"min_expedited_deposit": []any{coin("ukii", "20000000")},
				},
				"voting_params": map[string]any{"voting_period": "432000s", "expedited_voting_period": "86400s"},
				"tally_params": map[string]any{
					"quorum":              "0.334000000000000000",
					"threshold":           "0.500000000000000000",
					"veto_threshold":      "0.334000000000000000",
					"expedited_threshold": "0.667000000000000000",
				},
			},
			"ibc":    map[string]any{"client_genesis": map[string]any{"clients": []any{}}},
			"mint":   map[string]any{"minter": map[string]any{}},
			"params": map[string]any{"params": []any{}},
			"slashing": map[string]any{
				"params":        map[string]any{"signed_blocks_window": "100"},
				"signing_infos": []any{},
				"missed_blocks": []any{
					map[string]any{
						"address":       "kiivalcons1node0",
						"missed_blocks": []any{map[string]any{"index": "0", "missed": true}},
						"window_size":   "100",
					},
				},
			},
			"staking": map[string]any{
				"params": map[string]any{
					"bond_denom":                             "ukii",
					"unbonding_time":                         "1814400s",
					"max_validators":                         35,
					"max_voting_power_enforcement_threshold": "1000",
					"max_voting_power_ratio":                 "0.200000000000000000",
				},
				"last_total_power":      "3",
				"last_validator_powers": []any{map[string]any{"address": validatorOper, "power": "3"}},
				"validators": []any{
					map[string]any{
						"operator_address":            validatorOper,
						"tokens":                      "3000000",
						"delegator_shares":            "3000000.000000000000000000",
						"unbonding_on_hold_ref_count": "2",
						"unbonding_ids":               []any{"1", "2"},
					},
				},
				"delegations": []any{
					map[string]any{"delegator_address": holderLegacy, "validator_address": validatorOper, "shares": "3000000.000000000000000000"},
				},
				"unbonding_delegations": []any{
					map[string]any{
						"delegator_address": holderLegacy,
						"validator_address": validatorOper,
						"entries":           []any{map[string]any{"creation_height": "10", "initial_balance": "50", "balance": "40"}},
					},
				},
				"redelegations": []any{
					map[string]any{
						"delegator_address":     holderLegacy,
						"validator_src_address": validatorOper,
						"validator_dst_address": validatorOper,
						"entries":               []any{map[string]any{"creation_height": "10", "initial_balance": "20", "shares_dst": "20.000000000000000000"}},
					},
				},
				"exported": true,
			},
			"tokenfactory": map[string]any{
				"params":         map[string]any{"denom_creation_fee": []any{coin("ukii", "1")}},
				"factory_denoms": []any{},
			},
			"transfer": map[string]any{
				"port_id":        "transfer",
				"denom_traces":   []any{},
				"total_escrowed": []any{coin("ukii", "5")},
			},
			"upgrade": map[string]any{},
			"vesting": map[string]any{},
			"wasm": map[string]any{
				"params": map[string]any{
					"code_upload_access":             map[string]any{"permission": "ACCESS_TYPE_EVERYBODY", "address": ""},
					"instantiate_default_permission": "ACCESS_TYPE_EVERYBODY",
				},
				"codes": []any{
					map[string]any{
						"code_id": "1",
						"code_info": map[string]any{
							"code_hash":          "AA==",
							"creator":            holderLegacy,
							"instantiate_config": map[string]any{"permission": "ACCESS_TYPE_ONLY_ADDRESS", "address": holderLegacy},
						},
						"code_bytes": "AA==",
					},
				},
				"contracts": []any{
					map[string]any{
						"contract_address": contractAddr,
						"contract_info":    map[string]any{"code_id": "1", "creator": holderLegacy, "admin": "", "label": "counter"},
						"contract_state":   []any{map[string]any{"key": "Y29uZmln", "value": "e30="}},
					},
				},
				"sequences": []any{},
				"gen_msgs":  []any{},
			},
		},
	}
}

// modifyGenesis sets value at path in a fixture.
func modifyGenesis(t *testing.T, genesis map[string]any, value any, path ...any) {
	t.Helper()
	require.NoError(t, dyno.Set(genesis, value, path...))
}

// deleteFromGenesis removes key from the object at path.
func deleteFromGenesis(t *testing.T, genesis map[string]any, key string, path ...any) {
	t.Helper()
	require.NoError(t, dyno.Delete(genesis, key, path...))
}

func toNode(t *testing.T, v any) *document.Node {
	t.Helper()
	bz, err := json.Marshal(v)
	require.NoError(t, err)
	n, err := document.Unmarshal(bz)
	require.NoError(t, err)
	return n
}

// toMap decodes a document back into plain values for dyno lookups.
func toMap(t *testing.T, n *document.Node) map[string]any {
	t.Helper()
	bz, err := document.Marshal(n)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(bz, &out))
	return out
}

func getString(t *testing.T, v any, path ...any) string {
	t.Helper()
	s, err := dyno.GetString(v, path...)
	require.NoError(t, err)
	return s
}

func moduleState(t *testing.T, genesis map[string]any, module string) *document.Node {
	t.Helper()
	v, err := dyno.Get(genesis, "app_state", module)
	require.NoError(t, err)
	return toNode(t, v)
}
