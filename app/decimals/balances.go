package decimals

import (
	"sort"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/kiichain/genesis-migrator/app/document"
	"github.com/kiichain/genesis-migrator/app/types"
)

// Coin is a denom and its amount, kept as text.
type Coin struct {
	Denom  string
	Amount string
}

// BalanceRecord is the bank balance of one address.
type BalanceRecord struct {
	Address string
	Coins   []Coin
}

// Fragment holds the low order digits of a designated denom balance, stored
// apart from the main balance on the legacy chain.
type Fragment struct {
	Address string
	Amount  string
}

// MergeStats summarizes a fragment merge.
type MergeStats struct {
	Fragments int
	// Merged counts fragments folded into an existing coin.
	Merged int
	// NewCoins counts fragments whose owner had a balance record but no coin of the denom.
	NewCoins int
	// NewRecords counts fragments whose owner had no balance record at all.
	NewRecords int
	// Scaled counts designated coins rescaled, with or without a fragment.
	Scaled int
}

// ParseBalances reads a bank balance list.
func ParseBalances(items []*document.Node) ([]BalanceRecord, error) {
	objs, err := document.Objects(items, "balances")
	if err != nil {
		return nil, err
	}
	records := make([]BalanceRecord, 0, len(objs))
	for i, obj := range objs {
		addr, err := obj.StringField("address")
		if err != nil {
			return nil, errorsmod.Wrap(err, describe("balances", i))
		}
		coinNodes, err := obj.ArrayField("coins")
		if err != nil {
			return nil, errorsmod.Wrap(err, describe("balances", i))
		}
		coins, err := ParseCoins(coinNodes)
		if err != nil {
			return nil, errorsmod.Wrapf(err, "balances[%d] (%s)", i, addr)
		}
		records = append(records, BalanceRecord{Address: addr, Coins: coins})
	}
	return records, nil
}

// ParseCoins reads a coin list.
func ParseCoins(items []*document.Node) ([]Coin, error) {
	objs, err := document.Objects(items, "coins")
	if err != nil {
		return nil, err
	}
	coins := make([]Coin, 0, len(objs))
	for i, obj := range objs {
		denom, err := obj.StringField("denom")
		if err != nil {
			return nil, errorsmod.Wrap(err, describe("coins", i))
		}
		amount, err := obj.StringField("amount")
		if err != nil {
			return nil, errorsmod.Wrap(err, describe("coins", i))
		}
		coins = append(coins, Coin{Denom: denom, Amount: amount})
	}
	return coins, nil
}

// ParseFragments reads the wei balance list.
func ParseFragments(items []*document.Node) ([]Fragment, error) {
	objs, err := document.Objects(items, "wei_balances")
	if err != nil {
		return nil, err
	}
	fragments := make([]Fragment, 0, len(objs))
	for i, obj := range objs {
		addr, err := obj.StringField("address")
		if err != nil {
			return nil, errorsmod.Wrap(err, describe("wei_balances", i))
		}
		amount, err := obj.StringField("amount")
		if err != nil {
			return nil, errorsmod.Wrap(err, describe("wei_balances", i))
		}
		fragments = append(fragments, Fragment{Address: addr, Amount: amount})
	}
	return fragments, nil
}

// MergeFragments rescales the designated denom of every record and folds each
// fragment into its owner's balance. Each fragment is consumed exactly once.
// Owners without a record or without a coin of denom receive one holding the
// fragment value. Other denoms are left untouched and every record's coins are
// sorted on return.
func MergeFragments(records []BalanceRecord, fragments []Fragment, denom string) ([]BalanceRecord, MergeStats, error) {
	stats := MergeStats{Fragments: len(fragments)}

	byAddress := make(map[string]string, len(fragments))
	order := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if _, ok := byAddress[f.Address]; ok {
			return nil, stats, errorsmod.Wrapf(types.ErrSchema, "duplicate wei balance for %s", f.Address)
		}
		byAddress[f.Address] = f.Amount
		order = append(order, f.Address)
	}

	seen := make(map[string]struct{}, len(records))
	out := make([]BalanceRecord, 0, len(records)+len(fragments))
	for _, rec := range records {
		if _, ok := seen[rec.Address]; ok {
			return nil, stats, errorsmod.Wrapf(types.ErrSchema, "duplicate balance record for %s", rec.Address)
		}
		seen[rec.Address] = struct{}{}

		fragment, hasFragment := byAddress[rec.Address]
		coins := make([]Coin, 0, len(rec.Coins)+1)
		found := false
		for _, c := range rec.Coins {
			if c.Denom == denom {
				if found {
					return nil, stats, errorsmod.Wrapf(types.ErrSchema, "duplicate %s coin for %s", denom, rec.Address)
				}
				found = true
				amount, err := MergeFragment(c.Amount, fragment, hasFragment)
				if err != nil {
					return nil, stats, errorsmod.Wrapf(err, "balance of %s", rec.Address)
				}
				c.Amount = amount
				stats.Scaled++
				if hasFragment {
					stats.Merged++
				}
			}
			coins = append(coins, c)
		}
		if !found && hasFragment {
			amount, err := MergeFragment("0", fragment, true)
			if err != nil {
				return nil, stats, errorsmod.Wrapf(err, "balance of %s", rec.Address)
			}
			coins = append(coins, Coin{Denom: denom, Amount: amount})
			stats.NewCoins++
		}
		SortCoins(coins)
		out = append(out, BalanceRecord{Address: rec.Address, Coins: coins})
	}

	for _, addr := range order {
		if _, ok := seen[addr]; ok {
			continue
		}
		amount, err := MergeFragment("0", byAddress[addr], true)
		if err != nil {
			return nil, stats, errorsmod.Wrapf(err, "balance of %s", addr)
		}
		out = append(out, BalanceRecord{Address: addr, Coins: []Coin{{Denom: denom, Amount: amount}}})
		stats.NewRecords++
	}

	return out, stats, nil
}

// SortCoins sorts coins ascending by denom.
func SortCoins(coins []Coin) {
	sort.SliceStable(coins, func(i, j int) bool {
		return coins[i].Denom < coins[j].Denom
	})
}

// SumDenom returns the total amount of denom held across records.
func SumDenom(records []BalanceRecord, denom string) (sdkmath.Int, error) {
	total := sdkmath.ZeroInt()
	for _, rec := range records {
		for _, c := range rec.Coins {
			if c.Denom != denom {
				continue
			}
			v, err := ParseAmount(c.Amount)
			if err != nil {
				return sdkmath.Int{}, errorsmod.Wrapf(err, "balance of %s", rec.Address)
			}
			if total, err = total.SafeAdd(v); err != nil {
				return sdkmath.Int{}, errorsmod.Wrapf(types.ErrArithmetic, "summing %s: %s", denom, err)
			}
		}
	}
	return total, nil
}

// CoinsNode converts coins back to a document list.
func CoinsNode(coins []Coin) *document.Node {
	items := make([]*document.Node, 0, len(coins))
	for _, c := range coins {
		obj := document.NewObject()
		obj.Set("denom", document.String(c.Denom))
		obj.Set("amount", document.String(c.Amount))
		items = append(items, document.FromObject(obj))
	}
	return document.Array(items...)
}

// BalancesNode converts records back to a bank balance list.
func BalancesNode(records []BalanceRecord) *document.Node {
	items := make([]*document.Node, 0, len(records))
	for _, rec := range records {
		obj := document.NewObject()
		obj.Set("address", document.String(rec.Address))
		obj.Set("coins", CoinsNode(rec.Coins))
		items = append(items, document.FromObject(obj))
	}
	return document.Array(items...)
}
