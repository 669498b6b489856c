package migrations

import (
	"encoding/base64"
	"encoding/hex"

	errorsmod "cosmossdk.io/errors"

	"github.com/kiichain/genesis-migrator/app/document"
	"github.com/kiichain/genesis-migrator/app/types"
)

const (
	accessTypeOnlyAddress    = "ACCESS_TYPE_ONLY_ADDRESS"
	accessTypeAnyOfAddresses = "ACCESS_TYPE_ANY_OF_ADDRESSES"

	codeHistoryInit = "CONTRACT_CODE_HISTORY_OPERATION_TYPE_INIT"
)

// migrateWasm moves the state to the current wasmd genesis layout: access
// configs carry address lists, contracts carry their creation position and
// code history, and state keys are hex instead of base64.
func migrateWasm(mc *ModuleContext, state *document.Node) (*document.Node, error) {
	wasm, err := moduleObject("wasm", state)
	if err != nil {
		return nil, err
	}

	params, err := wasm.ObjectField("params")
	if err != nil {
		return nil, err
	}
	uploadAccess, err := params.ObjectField("code_upload_access")
	if err != nil {
		return nil, errorsmod.Wrap(err, "wasm.params")
	}
	if err := migrateAccessConfig(uploadAccess); err != nil {
		return nil, errorsmod.Wrap(err, "wasm.params.code_upload_access")
	}

	if err := eachObject(wasm, "codes", func(code *document.Object) error {
		info, err := code.ObjectField("code_info")
		if err != nil {
			return err
		}
		cfg, err := info.ObjectField("instantiate_config")
		if err != nil {
			return err
		}
		return errorsmod.Wrap(migrateAccessConfig(cfg), "code_info.instantiate_config")
	}); err != nil {
		return nil, errorsmod.Wrap(err, "wasm")
	}

	keys := 0
	if err := eachObject(wasm, "contracts", func(contract *document.Object) error {
		n, err := migrateContract(contract)
		keys += n
		return err
	}); err != nil {
		return nil, errorsmod.Wrap(err, "wasm")
	}

	if err := wasm.Remove("gen_msgs"); err != nil {
		return nil, errorsmod.Wrap(err, "wasm")
	}

	mc.Logger.Debug("wasm migrated", "state_keys", keys)
	return state, nil
}

// migrateAccessConfig replaces the single address field of an access
// config with an address list. Only-address permissions become any-of
// permissions over that list.
func migrateAccessConfig(cfg *document.Object) error {
	addresses := document.Array()
	if v, ok := cfg.Get("address"); ok {
		addr, ok := v.AsString()
		if !ok {
			return errorsmod.Wrapf(types.ErrSchema, "address: expected string, got %s", v.Kind())
		}
		if addr != "" {
			addresses.Append(document.String(addr))
		}
		cfg.Delete("address")
	}
	if !cfg.Has("addresses") {
		cfg.Set("addresses", addresses)
	}

	if permission, err := cfg.StringField("permission"); err == nil && permission == accessTypeOnlyAddress {
		cfg.Set("permission", document.String(accessTypeAnyOfAddresses))
	}
	return nil
}

// migrateContract adds the creation metadata and code history of a contract
// and rewrites its state keys to hex. It returns the number of keys.
func migrateContract(contract *document.Object) (int, error) {
	info, err := contract.ObjectField("contract_info")
	if err != nil {
		return 0, err
	}
	codeID, err := info.Field("code_id")
	if err != nil {
		return 0, errorsmod.Wrap(err, "contract_info")
	}
	info.Set("created", genesisPosition())

	entry := document.NewObject()
	entry.Set("operation", document.String(codeHistoryInit))
	entry.Set("code_id", codeID.Clone())
	entry.Set("updated", genesisPosition())
	msg := document.NewObject()
	msg.Set("count", document.Uint(1))
	entry.Set("msg", document.FromObject(msg))
	contract.Set("contract_code_history", document.Array(document.FromObject(entry)))

	models, err := contract.ArrayField("contract_state")
	if err != nil {
		return 0, err
	}
	objs, err := document.Objects(models, "contract_state")
	if err != nil {
		return 0, err
	}
	for i, model := range objs {
		key, err := model.StringField("key")
		if err != nil {
			return i, errorsmod.Wrapf(err, "contract_state[%d]", i)
		}
		hexKey, err := base64ToHex(key)
		if err != nil {
			return i, errorsmod.Wrapf(err, "contract_state[%d].key", i)
		}
		model.Set("key", document.String(hexKey))
	}
	return len(objs), nil
}

// genesisPosition is the absolute tx position of everything created at genesis.
func genesisPosition() *document.Node {
	pos := document.NewObject()
	pos.Set("block_height", document.String("0"))
	pos.Set("tx_index", document.String("0"))
	return document.FromObject(pos)
}

func base64ToHex(s string) (string, error) {
	bz, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", errorsmod.Wrapf(types.ErrSchema, "invalid base64 %q: %s", s, err)
	}
	return hex.EncodeToString(bz), nil
}
