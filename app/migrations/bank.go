package migrations

import (
	errorsmod "cosmossdk.io/errors"

	"github.com/kiichain/genesis-migrator/app/decimals"
	"github.com/kiichain/genesis-migrator/app/document"
	"github.com/kiichain/genesis-migrator/app/reconcile"
)

// migrateBank folds the wei balances into the main balances, applies the
// clawback and rescales the supply. The clawback has to run after the merge:
// only then is the source balance at final scale.
func migrateBank(mc *ModuleContext, state *document.Node) (*document.Node, error) {
	bank, err := moduleObject("bank", state)
	if err != nil {
		return nil, err
	}

	balanceNodes, err := bank.ArrayField("balances")
	if err != nil {
		return nil, err
	}
	weiNodes, err := bank.ArrayField("wei_balances")
	if err != nil {
		return nil, err
	}

	records, err := decimals.ParseBalances(balanceNodes)
	if err != nil {
		return nil, errorsmod.Wrap(err, "bank")
	}
	fragments, err := decimals.ParseFragments(weiNodes)
	if err != nil {
		return nil, errorsmod.Wrap(err, "bank")
	}

	records, stats, err := decimals.MergeFragments(records, fragments, mc.Config.Denom)
	if err != nil {
		return nil, errorsmod.Wrap(err, "bank.balances")
	}
	mc.Report.Stats.Fragments = stats
	mc.Logger.Info("Merged wei balances",
		"fragments", stats.Fragments,
		"merged", stats.Merged,
		"new_coins", stats.NewCoins,
		"new_records", stats.NewRecords,
		"scaled_balances", stats.Scaled,
	)

	if mc.Config.Clawback.Enabled() {
		params := reconcile.Params{
			Denom:  mc.Config.Denom,
			Source: mc.Config.Clawback.Source,
			Rescue: mc.Config.Clawback.Rescue,
			Unit:   mc.Config.Unit(),
		}
		var outcome reconcile.Outcome
		records, outcome, err = reconcile.Reconcile(records, params)
		if err != nil {
			return nil, errorsmod.Wrap(err, "bank.balances")
		}
		mc.Report.Clawback = &ClawbackReport{
			Source:  params.Source,
			Rescue:  params.Rescue,
			Denom:   params.Denom,
			Outcome: outcome,
		}
	}

	bank.Set("balances", decimals.BalancesNode(records))

	if err := mc.scaleCoinsAt(bank, "supply"); err != nil {
		return nil, errorsmod.Wrap(err, "bank")
	}
	if err := sortSupply(mc, bank, records); err != nil {
		return nil, err
	}

	bank.Set("send_enabled", document.Array())
	if err := bank.Remove("wei_balances"); err != nil {
		return nil, errorsmod.Wrap(err, "bank")
	}
	return state, nil
}

// sortSupply re-sorts the supply, whose order changes with the denom rename,
// and warns when the designated supply differs from the sum of the balances.
// The bank module refuses to start on such a genesis.
func sortSupply(mc *ModuleContext, bank *document.Object, records []decimals.BalanceRecord) error {
	supplyNodes, err := bank.ArrayField("supply")
	if err != nil {
		return err
	}
	supply, err := decimals.ParseCoins(supplyNodes)
	if err != nil {
		return errorsmod.Wrap(err, "bank.supply")
	}
	decimals.SortCoins(supply)
	bank.Set("supply", decimals.CoinsNode(supply))
	if len(supply) == 0 {
		return nil
	}

	held, err := decimals.SumDenom(records, mc.Config.Denom)
	if err != nil {
		return errorsmod.Wrap(err, "bank.balances")
	}
	total, err := decimals.SumDenom([]decimals.BalanceRecord{{Address: "supply", Coins: supply}}, mc.Config.Denom)
	if err != nil {
		return errorsmod.Wrap(err, "bank.supply")
	}
	if !held.Equal(total) {
		mc.warn("bank supply does not match the sum of balances",
			"denom", mc.Config.Denom,
			"supply", total.String(),
			"balances", held.String(),
		)
	}
	return nil
}
