package migrations

import (
	errorsmod "cosmossdk.io/errors"

	"github.com/kiichain/genesis-migrator/app/document"
)

const (
	// TokenfactoryCreationFee is the denom creation fee, in base units of the new denom.
	TokenfactoryCreationFee = "10000000"
	// TokenfactoryCreationGas is the gas consumed by a denom creation.
	TokenfactoryCreationGas = "2000000"
)

// migrateAuth clears root level public keys, which the new chain derives
// differently, and drops the sequence check param.
func migrateAuth(mc *ModuleContext, state *document.Node) (*document.Node, error) {
	auth, err := moduleObject("auth", state)
	if err != nil {
		return nil, err
	}
	accounts, err := auth.ArrayField("accounts")
	if err != nil {
		return nil, err
	}
	objs, err := document.Objects(accounts, "auth.accounts")
	if err != nil {
		return nil, err
	}
	cleared := 0
	for _, acc := range objs {
		if acc.Has("pub_key") {
			acc.Set("pub_key", document.Null())
			cleared++
		}
	}

	params, err := auth.ObjectField("params")
	if err != nil {
		return nil, err
	}
	if err := params.Remove("disable_seqno_check"); err != nil {
		return nil, errorsmod.Wrap(err, "auth.params")
	}

	mc.Logger.Debug("auth migrated", "accounts", len(objs), "pub_keys_cleared", cleared)
	return state, nil
}

func migrateAuthz(_ *ModuleContext, _ *document.Node) (*document.Node, error) {
	out := document.NewObject()
	out.Set("authorization", document.Array())
	return document.FromObject(out), nil
}

func migrateCrisis(mc *ModuleContext, state *document.Node) (*document.Node, error) {
	crisis, err := moduleObject("crisis", state)
	if err != nil {
		return nil, err
	}
	fee, err := crisis.ObjectField("constant_fee")
	if err != nil {
		return nil, err
	}
	scaled, err := mc.scaleCoin(fee)
	if err != nil {
		return nil, errorsmod.Wrap(err, "crisis.constant_fee")
	}
	if !scaled {
		mc.warn("crisis constant fee is not in the designated denom and was left unscaled")
	}
	return state, nil
}

// feegrantCoinFields are the coin lists found in basic, periodic and nested allowances.
var feegrantCoinFields = []string{"spend_limit", "period_spend_limit", "period_can_spend"}

func migrateFeegrant(mc *ModuleContext, state *document.Node) (*document.Node, error) {
	feegrant, err := moduleObject("feegrant", state)
	if err != nil {
		return nil, err
	}
	allowances, err := feegrant.ArrayField("allowances")
	if err != nil {
		return nil, err
	}
	for i, grant := range allowances {
		allowance, err := grant.Get("allowance")
		if err != nil {
			return nil, errorsmod.Wrapf(err, "feegrant.allowances[%d]", i)
		}
		if err := scaleAllowance(mc, allowance); err != nil {
			return nil, errorsmod.Wrapf(err, "feegrant.allowances[%d]", i)
		}
	}
	return state, nil
}

// scaleAllowance scales the coin lists of an allowance and of every
// allowance nested in it.
func scaleAllowance(mc *ModuleContext, allowance *document.Node) error {
	obj, ok := allowance.AsObject()
	if !ok {
		return nil
	}
	for _, key := range feegrantCoinFields {
		coins, ok := obj.Get(key)
		if !ok {
			continue
		}
		items, ok := coins.AsArray()
		if !ok {
			continue
		}
		if err := mc.scaleCoins(items); err != nil {
			return errorsmod.Wrap(err, key)
		}
	}
	for _, key := range obj.Keys() {
		if key == "@type" {
			continue
		}
		child, _ := obj.Get(key)
		if child.Kind() == document.KindObject {
			if err := scaleAllowance(mc, child); err != nil {
				return errorsmod.Wrap(err, key)
			}
		}
	}
	return nil
}

func migrateTransfer(_ *ModuleContext, state *document.Node) (*document.Node, error) {
	transfer, err := moduleObject("transfer", state)
	if err != nil {
		return nil, err
	}
	transfer.Set("total_escrowed", document.Array())
	return state, nil
}

func migrateTokenfactory(mc *ModuleContext, state *document.Node) (*document.Node, error) {
	tokenfactory, err := moduleObject("tokenfactory", state)
	if err != nil {
		return nil, err
	}
	fee := document.NewObject()
	fee.Set("denom", document.String(mc.Config.Denom))
	fee.Set("amount", document.String(TokenfactoryCreationFee))

	params := document.NewObject()
	params.Set("denom_creation_fee", document.Array(document.FromObject(fee)))
	params.Set("denom_creation_gas_consume", document.String(TokenfactoryCreationGas))
	tokenfactory.Set("params", document.FromObject(params))
	return state, nil
}

func migrateIBC(_ *ModuleContext, _ *document.Node) (*document.Node, error) {
	return ibcGenesis(), nil
}

func migrateEVM(mc *ModuleContext, _ *document.Node) (*document.Node, error) {
	return evmGenesis(mc.Config.Denom, mc.Config.EVM.ChainID, mc.Config.Decimals), nil
}
