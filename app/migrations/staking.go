package migrations

import (
	errorsmod "cosmossdk.io/errors"

	"github.com/kiichain/genesis-migrator/app/decimals"
	"github.com/kiichain/genesis-migrator/app/document"
)

// removedStakingParams are the legacy voting power cap params.
var removedStakingParams = []string{
	"max_voting_power_enforcement_threshold",
	"max_voting_power_ratio",
}

// migrateStaking drops the voting power cap params, resets unbonding
// references and rescales tokens and shares. Powers are kept: the new chain
// derives them with a power reduction scaled by the same factor.
func migrateStaking(mc *ModuleContext, state *document.Node) (*document.Node, error) {
	staking, err := moduleObject("staking", state)
	if err != nil {
		return nil, err
	}

	params, err := staking.ObjectField("params")
	if err != nil {
		return nil, err
	}
	for _, key := range removedStakingParams {
		if err := params.Remove(key); err != nil {
			return nil, errorsmod.Wrap(err, "staking.params")
		}
	}

	scale := mc.stakeScaled("staking")

	validators, err := staking.ArrayField("validators")
	if err != nil {
		return nil, err
	}
	vals, err := document.Objects(validators, "staking.validators")
	if err != nil {
		return nil, err
	}
	for i, val := range vals {
		val.Set("unbonding_on_hold_ref_count", document.String("0"))
		val.Set("unbonding_ids", document.Array())
		if !scale {
			continue
		}
		if err := decimals.ScaleIntegerField(val, "tokens", decimals.ExtraDecimals); err != nil {
			return nil, errorsmod.Wrapf(err, "staking.validators[%d]", i)
		}
		if err := decimals.ScaleDecimalField(val, "delegator_shares", decimals.ExtraDecimals); err != nil {
			return nil, errorsmod.Wrapf(err, "staking.validators[%d]", i)
		}
	}

	if !scale {
		return state, nil
	}

	delegations, err := staking.ArrayField("delegations")
	if err != nil {
		return nil, err
	}
	dels, err := document.Objects(delegations, "staking.delegations")
	if err != nil {
		return nil, err
	}
	for i, del := range dels {
		if err := decimals.ScaleDecimalField(del, "shares", decimals.ExtraDecimals); err != nil {
			return nil, errorsmod.Wrapf(err, "staking.delegations[%d]", i)
		}
	}

	if err := scaleStakingEntries(staking, "unbonding_delegations", func(entry *document.Object) error {
		if err := decimals.ScaleIntegerField(entry, "initial_balance", decimals.ExtraDecimals); err != nil {
			return err
		}
		return decimals.ScaleIntegerField(entry, "balance", decimals.ExtraDecimals)
	}); err != nil {
		return nil, err
	}
	if err := scaleStakingEntries(staking, "redelegations", func(entry *document.Object) error {
		if err := decimals.ScaleIntegerField(entry, "initial_balance", decimals.ExtraDecimals); err != nil {
			return err
		}
		return decimals.ScaleDecimalField(entry, "shares_dst", decimals.ExtraDecimals)
	}); err != nil {
		return nil, err
	}

	mc.Logger.Info("Validator powers kept as exported",
		"validators", len(vals),
		"delegations", len(dels),
	)
	return state, nil
}

// scaleStakingEntries applies fn to every entry of every record in the
// list stored under key.
func scaleStakingEntries(staking *document.Object, key string, fn func(*document.Object) error) error {
	list, err := staking.ArrayField(key)
	if err != nil {
		return err
	}
	records, err := document.Objects(list, "staking."+key)
	if err != nil {
		return err
	}
	for i, record := range records {
		items, err := record.ArrayField("entries")
		if err != nil {
			return errorsmod.Wrapf(err, "staking.%s[%d]", key, i)
		}
		entries, err := document.Objects(items, "entries")
		if err != nil {
			return errorsmod.Wrapf(err, "staking.%s[%d]", key, i)
		}
		for j, entry := range entries {
			if err := fn(entry); err != nil {
				return errorsmod.Wrapf(err, "staking.%s[%d].entries[%d]", key, i, j)
			}
		}
	}
	return nil
}

// migrateDistribution rescales the reward pools kept as decimal coins and
// the stake recorded in delegator starting infos. Historical rewards are
// ratios and stay as they are.
func migrateDistribution(mc *ModuleContext, state *document.Node) (*document.Node, error) {
	distr, err := moduleObject("distribution", state)
	if err != nil {
		return nil, err
	}

	feePool, err := distr.ObjectField("fee_pool")
	if err != nil {
		return nil, err
	}
	if err := mc.scaleDecCoinsAt(feePool, "community_pool"); err != nil {
		return nil, errorsmod.Wrap(err, "distribution.fee_pool")
	}

	if err := eachObject(distr, "outstanding_rewards", func(obj *document.Object) error {
		return mc.scaleDecCoinsAt(obj, "outstanding_rewards")
	}); err != nil {
		return nil, err
	}
	if err := eachObject(distr, "validator_accumulated_commissions", func(obj *document.Object) error {
		accumulated, err := obj.ObjectField("accumulated")
		if err != nil {
			return err
		}
		return mc.scaleDecCoinsAt(accumulated, "commission")
	}); err != nil {
		return nil, err
	}
	if err := eachObject(distr, "validator_current_rewards", func(obj *document.Object) error {
		rewards, err := obj.ObjectField("rewards")
		if err != nil {
			return err
		}
		return mc.scaleDecCoinsAt(rewards, "rewards")
	}); err != nil {
		return nil, err
	}

	if !mc.stakeScaled("distribution") {
		return state, nil
	}
	if err := eachObject(distr, "delegator_starting_infos", func(obj *document.Object) error {
		info, err := obj.ObjectField("starting_info")
		if err != nil {
			return err
		}
		return decimals.ScaleDecimalField(info, "stake", decimals.ExtraDecimals)
	}); err != nil {
		return nil, err
	}
	return state, nil
}

// eachObject applies fn to every object of the list stored under key.
func eachObject(module *document.Object, key string, fn func(*document.Object) error) error {
	list, err := module.ArrayField(key)
	if err != nil {
		return err
	}
	objs, err := document.Objects(list, key)
	if err != nil {
		return err
	}
	for i, obj := range objs {
		if err := fn(obj); err != nil {
			return errorsmod.Wrapf(err, "%s[%d]", key, i)
		}
	}
	return nil
}

// migrateSlashing clears the missed block bitmaps, which the new chain
// keeps in a different layout.
func migrateSlashing(_ *ModuleContext, state *document.Node) (*document.Node, error) {
	slashing, err := moduleObject("slashing", state)
	if err != nil {
		return nil, err
	}
	if err := eachObject(slashing, "missed_blocks", func(obj *document.Object) error {
		obj.Set("missed_blocks", document.Array())
		return obj.Remove("window_size")
	}); err != nil {
		return nil, errorsmod.Wrap(err, "slashing")
	}
	return state, nil
}
