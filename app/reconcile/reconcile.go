// Package reconcile clamps the balance of a disallowed address to a single
// unit and credits the remainder to a rescue address.
package reconcile

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/kiichain/genesis-migrator/app/decimals"
	"github.com/kiichain/genesis-migrator/app/types"
)

// Params configures a reconciliation. Amounts are at final scale.
type Params struct {
	Denom  string
	Source string
	Rescue string
	Unit   sdkmath.Int
}

// Outcome describes what a reconciliation did.
type Outcome struct {
	Applied   bool
	Original  sdkmath.Int
	Remainder sdkmath.Int
	// RescueCreated is set when the rescue address had no balance record.
	RescueCreated bool
}

// Reconcile moves everything above Unit from the source balance to the rescue
// balance. Records must already be at final scale. The designated denom total
// is identical before and after.
func Reconcile(records []decimals.BalanceRecord, params Params) ([]decimals.BalanceRecord, Outcome, error) {
	outcome := Outcome{Original: sdkmath.ZeroInt(), Remainder: sdkmath.ZeroInt()}

	if params.Source == params.Rescue {
		return nil, outcome, errorsmod.Wrapf(types.ErrInvalidConfig, "source and rescue address are both %s", params.Source)
	}
	if params.Unit.IsNil() || params.Unit.IsNegative() {
		return nil, outcome, errorsmod.Wrap(types.ErrInvalidConfig, "unit must be a non-negative amount")
	}

	out := cloneRecords(records)
	srcRec, srcCoin := locate(out, params.Source, params.Denom)
	if srcCoin < 0 {
		return out, outcome, nil
	}

	original, err := decimals.ParseAmount(out[srcRec].Coins[srcCoin].Amount)
	if err != nil {
		return nil, outcome, errorsmod.Wrapf(err, "balance of %s", params.Source)
	}
	outcome.Original = original
	if original.LTE(params.Unit) {
		return out, outcome, nil
	}

	before, err := decimals.SumDenom(out, params.Denom)
	if err != nil {
		return nil, outcome, err
	}

	remainder := original.Sub(params.Unit)
	out[srcRec].Coins[srcCoin].Amount = params.Unit.String()

	rescueRec, rescueCoin := locate(out, params.Rescue, params.Denom)
	switch {
	case rescueRec < 0:
		out = append(out, decimals.BalanceRecord{
			Address: params.Rescue,
			Coins:   []decimals.Coin{{Denom: params.Denom, Amount: remainder.String()}},
		})
		outcome.RescueCreated = true
	case rescueCoin < 0:
		out[rescueRec].Coins = append(out[rescueRec].Coins, decimals.Coin{Denom: params.Denom, Amount: remainder.String()})
		decimals.SortCoins(out[rescueRec].Coins)
	default:
		held, err := decimals.ParseAmount(out[rescueRec].Coins[rescueCoin].Amount)
		if err != nil {
			return nil, outcome, errorsmod.Wrapf(err, "balance of %s", params.Rescue)
		}
		credited, err := held.SafeAdd(remainder)
		if err != nil {
			return nil, outcome, errorsmod.Wrapf(types.ErrArithmetic, "crediting %s: %s", params.Rescue, err)
		}
		out[rescueRec].Coins[rescueCoin].Amount = credited.String()
	}

	after, err := decimals.SumDenom(out, params.Denom)
	if err != nil {
		return nil, outcome, err
	}
	if !before.Equal(after) {
		return nil, outcome, errorsmod.Wrapf(types.ErrConservation, "%s total changed from %s to %s", params.Denom, before, after)
	}

	outcome.Applied = true
	outcome.Remainder = remainder
	return out, outcome, nil
}

// locate returns the record index of addr and the index of its denom coin,
// or -1 for either when absent.
func locate(records []decimals.BalanceRecord, addr, denom string) (int, int) {
	for i, rec := range records {
		if rec.Address != addr {
			continue
		}
		for j, c := range rec.Coins {
			if c.Denom == denom {
				return i, j
			}
		}
		return i, -1
	}
	return -1, -1
}

func cloneRecords(records []decimals.BalanceRecord) []decimals.BalanceRecord {
	out := make([]decimals.BalanceRecord, len(records), len(records)+1)
	for i, rec := range records {
		out[i] = decimals.BalanceRecord{
			Address: rec.Address,
			Coins:   append([]decimals.Coin(nil), rec.Coins...),
		}
	}
	return out
}
