package migrations

import (
	"fmt"
	"strings"
	"time"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"

	"github.com/kiichain/genesis-migrator/app/decimals"
	"github.com/kiichain/genesis-migrator/app/document"
	"github.com/kiichain/genesis-migrator/app/resolver"
	"github.com/kiichain/genesis-migrator/app/rewrite"
	"github.com/kiichain/genesis-migrator/app/types"
)

// Names of the post-migration checks
const (
	CheckBalanceCoins      = "balance-coins"
	CheckReplacedAddresses = "replaced-addresses"
	CheckLegacyDenoms      = "legacy-denoms"
	CheckExcludedAddresses = "excluded-addresses"
	CheckAddedModules      = "added-modules"
)

// ValidationInput is what the validator compares.
type ValidationInput struct {
	Input        *document.Node
	Output       *document.Node
	Replacements rewrite.Map
	DenomRenames rewrite.Map
	Exclusions   resolver.ExclusionSet
	Added        []NewModule
}

// Validator handles post-migration validation
type Validator struct {
	logger log.Logger
}

// NewValidator creates a new validator instance
func NewValidator(logger log.Logger) *Validator {
	return &Validator{logger: logger}
}

// ValidateMigration runs every check against the migrated genesis. It
// returns all results and an ErrValidation naming the failed checks.
func (v *Validator) ValidateMigration(in ValidationInput) ([]ValidationResult, error) {
	v.logger.Info("Starting post-migration validation")
	startTime := time.Now()

	results := []ValidationResult{
		v.validateBalances(in.Output),
		v.validateRemoved(CheckReplacedAddresses, in.Output, in.Replacements),
		v.validateRemoved(CheckLegacyDenoms, in.Output, in.DenomRenames),
		v.validateExcluded(in.Input, in.Output, in.Exclusions),
		v.validateAdded(in.Output, in.Added),
	}

	var failed []string
	for _, r := range results {
		if r.Valid {
			continue
		}
		failed = append(failed, r.Check)
		v.logger.Error("Validation check failed",
			"check", r.Check,
			"error", r.Error,
		)
	}

	v.logger.Info("Validation complete",
		"checks", len(results),
		"failed", len(failed),
		"duration", time.Since(startTime),
	)

	if len(failed) > 0 {
		return results, errorsmod.Wrapf(types.ErrValidation, "failed checks: %s", strings.Join(failed, ", "))
	}
	return results, nil
}

// validateBalances checks that the coins of every balance record and of the
// supply are sorted by denom without duplicates.
func (v *Validator) validateBalances(out *document.Node) ValidationResult {
	result := ValidationResult{Check: CheckBalanceCoins}
	if !out.Has("app_state", "bank") {
		result.Valid = true
		return result
	}
	items, err := out.GetArray("app_state", "bank", "balances")
	if err != nil {
		result.Error = err
		return result
	}
	records, err := decimals.ParseBalances(items)
	if err != nil {
		result.Error = err
		return result
	}
	if supply, err := out.GetArray("app_state", "bank", "supply"); err == nil {
		coins, err := decimals.ParseCoins(supply)
		if err != nil {
			result.Error = err
			return result
		}
		records = append(records, decimals.BalanceRecord{Address: "supply", Coins: coins})
	}
	for _, rec := range records {
		if denom, ok := unsortedDenom(rec.Coins); ok {
			result.Error = fmt.Errorf("coins of %s not sorted or duplicated at %s", rec.Address, denom)
			return result
		}
		result.Checked++
	}
	result.Valid = true
	return result
}

// unsortedDenom returns the first denom that breaks strict ascending order.
func unsortedDenom(coins []decimals.Coin) (string, bool) {
	for i := 1; i < len(coins); i++ {
		if coins[i-1].Denom >= coins[i].Denom {
			return coins[i].Denom, true
		}
	}
	return "", false
}

// validateRemoved checks that no key of m is left as a string value. Keys
// that are also values of m are legitimately present and are skipped.
func (v *Validator) validateRemoved(check string, out *document.Node, m rewrite.Map) ValidationResult {
	result := ValidationResult{Check: check}
	targets := make(map[string]struct{}, len(m))
	for _, to := range m {
		targets[to] = struct{}{}
	}
	leftovers := make(rewrite.Map, len(m))
	for from, to := range m {
		if _, ok := targets[from]; ok {
			continue
		}
		leftovers[from] = to
	}
	result.Checked = len(leftovers)
	if n := rewrite.Count(out, leftovers); n > 0 {
		result.Error = fmt.Errorf("%d values were not rewritten", n)
		return result
	}
	result.Valid = true
	return result
}

// validateExcluded checks that excluded addresses found in the input are
// still found in the output.
func (v *Validator) validateExcluded(in, out *document.Node, exclusions resolver.ExclusionSet) ValidationResult {
	result := ValidationResult{Check: CheckExcludedAddresses}
	before := stringsIn(in, exclusions)
	after := stringsIn(out, exclusions)
	var missing []string
	for addr := range before {
		result.Checked++
		if _, ok := after[addr]; !ok {
			missing = append(missing, addr)
		}
	}
	if len(missing) > 0 {
		result.Error = fmt.Errorf("%d excluded addresses disappeared, first %s", len(missing), firstSorted(missing))
		return result
	}
	result.Valid = true
	return result
}

// validateAdded checks that every added module is part of the app state.
func (v *Validator) validateAdded(out *document.Node, added []NewModule) ValidationResult {
	result := ValidationResult{Check: CheckAddedModules}
	for _, m := range added {
		result.Checked++
		if !out.Has("app_state", m.Name) {
			result.Error = fmt.Errorf("module %s is missing", m.Name)
			return result
		}
	}
	result.Valid = true
	return result
}

// stringsIn returns the excluded addresses that occur as string values of n.
func stringsIn(n *document.Node, exclusions resolver.ExclusionSet) map[string]struct{} {
	found := make(map[string]struct{})
	n.Walk(func(v *document.Node) {
		if s, ok := v.AsString(); ok && exclusions.Contains(s) {
			found[s] = struct{}{}
		}
	})
	return found
}

func firstSorted(values []string) string {
	first := values[0]
	for _, v := range values[1:] {
		if v < first {
			first = v
		}
	}
	return first
}
