package migrations

import (
	"fmt"

	"github.com/kiichain/genesis-migrator/app/document"
)

// AddedModules returns the modules the new chain runs that the legacy chain
// did not, in the order they are appended to app_state.
func AddedModules() []NewModule {
	return []NewModule{
		{Name: "erc20", Payload: erc20Genesis},
		{Name: "feemarket", Payload: feemarketGenesis},
		{Name: "feeibc", Payload: feeibcGenesis},
		{Name: "interchainaccounts", Payload: interchainAccountsGenesis},
		{Name: "packetfowardmiddleware", Payload: packetForwardGenesis},
		{Name: "ratelimit", Payload: ratelimitGenesis},
	}
}

func erc20Genesis() *document.Node {
	return mustParse(`{
		"params": {
			"dynamic_precompiles": [],
			"enable_erc20": true,
			"native_precompiles": []
		},
		"token_pairs": []
	}`)
}

func feemarketGenesis() *document.Node {
	return mustParse(`{
		"block_gas": "96479",
		"params": {
			"base_fee": "392695903.778098200015595140",
			"base_fee_change_denominator": 8,
			"elasticity_multiplier": 2,
			"enable_height": "0",
			"min_gas_multiplier": "0.500000000000000000",
			"min_gas_price": "0.000000000000000000",
			"no_base_fee": false
		}
	}`)
}

func feeibcGenesis() *document.Node {
	return mustParse(`{
		"identified_fees": [],
		"fee_enabled_channels": [],
		"registered_payees": [],
		"registered_counterparty_payees": [],
		"forward_relayers": []
	}`)
}

func interchainAccountsGenesis() *document.Node {
	return mustParse(`{
		"controller_genesis_state": {
			"active_channels": [],
			"interchain_accounts": [],
			"ports": [],
			"params": {"controller_enabled": true}
		},
		"host_genesis_state": {
			"active_channels": [],
			"interchain_accounts": [],
			"port": "icahost",
			"params": {"host_enabled": true, "allow_messages": ["*"]}
		}
	}`)
}

func packetForwardGenesis() *document.Node {
	return mustParse(`{"in_flight_packets": {}}`)
}

func ratelimitGenesis() *document.Node {
	return mustParse(`{
		"params": {},
		"rate_limits": [],
		"whitelisted_address_pairs": [],
		"blacklisted_denoms": [],
		"pending_send_packet_sequence_numbers": [],
		"hour_epoch": {
			"epoch_number": "0",
			"duration": "3600s",
			"epoch_start_time": "0001-01-01T00:00:00Z",
			"epoch_start_height": "0"
		}
	}`)
}

// ibcGenesis is a fresh IBC core state with only the localhost client and connection.
func ibcGenesis() *document.Node {
	return mustParse(`{
		"client_genesis": {
			"clients": [
				{
					"client_id": "09-localhost",
					"client_state": {
						"@type": "/ibc.lightclients.localhost.v2.ClientState",
						"latest_height": {"revision_number": "1", "revision_height": "28"}
					}
				}
			],
			"clients_consensus": [],
			"clients_metadata": [],
			"params": {"allowed_clients": ["*"]},
			"create_localhost": false,
			"next_client_sequence": "0"
		},
		"connection_genesis": {
			"connections": [
				{
					"id": "connection-localhost",
					"client_id": "09-localhost",
					"versions": [
						{"identifier": "1", "features": ["ORDER_ORDERED", "ORDER_UNORDERED"]}
					],
					"state": "STATE_OPEN",
					"counterparty": {
						"client_id": "09-localhost",
						"connection_id": "connection-localhost",
						"prefix": {"key_prefix": "aWJj"}
					},
					"delay_period": "0"
				}
			],
			"client_connection_paths": [],
			"next_connection_sequence": "0",
			"params": {"max_expected_time_per_block": "30000000000"}
		},
		"channel_genesis": {
			"channels": [],
			"acknowledgements": [],
			"commitments": [],
			"receipts": [],
			"send_sequences": [],
			"recv_sequences": [],
			"ack_sequences": [],
			"next_channel_sequence": "0",
			"params": {
				"upgrade_timeout": {
					"height": {"revision_number": "0", "revision_height": "0"},
					"timestamp": "600000000000"
				}
			}
		}
	}`)
}

// evmGenesis is an empty EVM state for a chain whose gas token is denom.
func evmGenesis(denom string, chainID uint64, decimals uint) *document.Node {
	return mustParse(fmt.Sprintf(`{
		"accounts": [],
		"params": {
			"evm_denom": %q,
			"extra_eips": [],
			"chain_config": {
				"chain_id": "%d",
				"denom": %q,
				"decimals": "%d"
			},
			"allow_unprotected_txs": false,
			"evm_channels": [],
			"access_control": {
				"create": {"access_type": "ACCESS_TYPE_PERMISSIONLESS", "access_control_list": []},
				"call": {"access_type": "ACCESS_TYPE_PERMISSIONLESS", "access_control_list": []}
			},
			"active_static_precompiles": []
		},
		"preinstalls": []
	}`, denom, chainID, denom, decimals))
}

func mustParse(payload string) *document.Node {
	n, err := document.Unmarshal([]byte(payload))
	if err != nil {
		panic(fmt.Sprintf("invalid built-in payload: %s", err))
	}
	return n
}
