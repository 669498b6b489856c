package main

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	errorsmod "cosmossdk.io/errors"

	"github.com/kiichain/genesis-migrator/app/config"
	"github.com/kiichain/genesis-migrator/app/decimals"
	"github.com/kiichain/genesis-migrator/app/document"
	"github.com/kiichain/genesis-migrator/app/resolver"
	"github.com/kiichain/genesis-migrator/app/types"
)

const (
	flagDenom    = "denom"
	flagExponent = "exponent"
	flagTop      = "top"

	defaultLegacyExponent = 6
	defaultTop            = 100
)

var hundred = decimal.NewFromInt(100)

// holder is one row of the holders report.
type holder struct {
	Address       string
	Amount        decimal.Decimal
	AccountNumber uint64
	HasAccount    bool
	Share         decimal.Decimal // Percentage of the denom held across all balances
}

// HoldersCmd lists the largest holders of a denom in a genesis.
func HoldersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holders [genesis]",
		Short: "List the largest holders of a denom",
		Example: `  # Top 100 holders of the legacy denom
  genmigrate holders export.json

  # Top 10 holders of the migrated denom
  genmigrate holders genesis.json --denom akii --exponent 18 --top 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			denom, _ := cmd.Flags().GetString(flagDenom)
			exponent, _ := cmd.Flags().GetInt32(flagExponent)
			top, _ := cmd.Flags().GetInt(flagTop)
			if exponent < 0 || top <= 0 {
				return errorsmod.Wrap(types.ErrInvalidUsage, "exponent must not be negative and top must be positive")
			}

			genesis, err := readGenesis(args[0])
			if err != nil {
				return err
			}
			holders, err := topHolders(genesis, denom, top)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, h := range holders {
				number := "-"
				if h.HasAccount {
					number = fmt.Sprintf("%d", h.AccountNumber)
				}
				fmt.Fprintf(out, "Wallet: %s, Balance: %s %s, Share: %s%%, Account number: %s\n",
					h.Address,
					h.Amount.Shift(-exponent).StringFixed(exponent),
					denom,
					h.Share.StringFixed(4),
					number,
				)
			}
			return nil
		},
	}

	cmd.Flags().String(flagDenom, config.DefaultLegacyDenom, "Denom to rank balances by")
	cmd.Flags().Int32(flagExponent, defaultLegacyExponent, "Decimal places of the denom for display")
	cmd.Flags().Int(flagTop, defaultTop, "Number of holders to list")

	return cmd
}

// topHolders ranks the bank balances of denom, largest first. Ties keep
// address order.
func topHolders(genesis *document.Node, denom string, limit int) ([]holder, error) {
	items, err := genesis.GetArray("app_state", "bank", "balances")
	if err != nil {
		return nil, err
	}
	records, err := decimals.ParseBalances(items)
	if err != nil {
		return nil, err
	}

	numbers, err := accountNumbers(genesis)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	var holders []holder
	for _, rec := range records {
		for _, c := range rec.Coins {
			if c.Denom != denom {
				continue
			}
			amount, err := decimal.NewFromString(c.Amount)
			if err != nil {
				return nil, errorsmod.Wrapf(types.ErrArithmetic, "balance of %s: %s", rec.Address, err)
			}
			total = total.Add(amount)
			number, ok := numbers[rec.Address]
			holders = append(holders, holder{
				Address:       rec.Address,
				Amount:        amount,
				AccountNumber: number,
				HasAccount:    ok,
			})
		}
	}

	sort.SliceStable(holders, func(i, j int) bool {
		return holders[i].Amount.GreaterThan(holders[j].Amount)
	})
	if len(holders) > limit {
		holders = holders[:limit]
	}

	for i := range holders {
		if total.IsPositive() {
			holders[i].Share = holders[i].Amount.Mul(hundred).DivRound(total, 8)
		}
	}
	return holders, nil
}

// accountNumbers maps auth account addresses to their account number.
func accountNumbers(genesis *document.Node) (map[string]uint64, error) {
	numbers := make(map[string]uint64)
	if !genesis.Has("app_state", "auth", "accounts") {
		return numbers, nil
	}
	accounts, err := genesis.GetArray("app_state", "auth", "accounts")
	if err != nil {
		return nil, err
	}
	for i, acc := range accounts {
		addr, number, err := resolver.AccountIdentity(acc)
		if err != nil {
			return nil, errorsmod.Wrapf(err, "auth.accounts[%d]", i)
		}
		numbers[addr] = number
	}
	return numbers, nil
}
