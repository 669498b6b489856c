// Package resolver decides which legacy addresses are re-keyed to the
// address derived from their associated EVM account, and which must keep
// their legacy text.
package resolver

import (
	"slices"
	"sort"

	errorsmod "cosmossdk.io/errors"

	"github.com/kiichain/genesis-migrator/app/address"
	"github.com/kiichain/genesis-migrator/app/document"
	"github.com/kiichain/genesis-migrator/app/rewrite"
)

// Association links a legacy bech32 address to its EVM counterpart.
type Association struct {
	Legacy string
	Hex    string
}

// SkipNotice records an association left alone because its legacy address is excluded.
type SkipNotice struct {
	Address string
	Reason  Exclusion
}

// CollisionKind classifies a detected collision.
type CollisionKind string

const (
	// CollisionDuplicateTarget means several legacy addresses map to one new address.
	CollisionDuplicateTarget CollisionKind = "duplicate-target"
	// CollisionExcluded means a new address equals an address that keeps its text.
	CollisionExcluded CollisionKind = "excluded-address"
	// CollisionExistingAccount means a new address equals an auth account that is not re-keyed.
	CollisionExistingAccount CollisionKind = "existing-account"
)

// Collision is a warning about a new address that coincides with another one.
// Collisions never stop the migration.
type Collision struct {
	Kind    CollisionKind
	Address string
	Sources []string
}

// Params configures address resolution.
type Params struct {
	Prefix                string
	EarlyAccountThreshold uint64
}

// Result is the outcome of address resolution.
type Result struct {
	Exclusions   ExclusionSet
	Replacements rewrite.Map
	Associations int
	Skipped      []SkipNotice
	Collisions   []Collision
}

// Associations reads the EVM address association list of the genesis.
func Associations(genesis *document.Node) ([]Association, error) {
	items, err := genesis.GetArray("app_state", "evm", "address_associations")
	if err != nil {
		return nil, err
	}
	out := make([]Association, 0, len(items))
	for i, item := range items {
		legacy, err := item.GetString("kii_address")
		if err != nil {
			return nil, errorsmod.Wrapf(err, "evm.address_associations[%d]", i)
		}
		hex, err := item.GetString("eth_address")
		if err != nil {
			return nil, errorsmod.Wrapf(err, "evm.address_associations[%d]", i)
		}
		out = append(out, Association{Legacy: legacy, Hex: hex})
	}
	return out, nil
}

// Resolve builds the exclusion set and the replacement map for genesis.
func Resolve(genesis *document.Node, params Params) (*Result, error) {
	exclusions, err := BuildExclusions(genesis, params.Prefix, params.EarlyAccountThreshold)
	if err != nil {
		return nil, err
	}
	associations, err := Associations(genesis)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Exclusions:   exclusions,
		Replacements: make(rewrite.Map, len(associations)),
		Associations: len(associations),
	}
	for _, assoc := range associations {
		if reason, ok := exclusions[assoc.Legacy]; ok {
			res.Skipped = append(res.Skipped, SkipNotice{Address: assoc.Legacy, Reason: reason})
			continue
		}
		addr, err := address.DecodeHexChecksummed(assoc.Hex)
		if err != nil {
			return nil, errorsmod.Wrapf(err, "association of %s", assoc.Legacy)
		}
		target, err := address.EncodePrefixed(addr, params.Prefix)
		if err != nil {
			return nil, err
		}
		res.Replacements[assoc.Legacy] = target
	}

	accounts, err := accountAddresses(genesis)
	if err != nil {
		return nil, err
	}
	res.Collisions = findCollisions(res.Replacements, exclusions, accounts)
	return res, nil
}

func accountAddresses(genesis *document.Node) (map[string]struct{}, error) {
	accounts, err := genesis.GetArray("app_state", "auth", "accounts")
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(accounts))
	for _, acc := range accounts {
		addr, _, err := AccountIdentity(acc)
		if err != nil {
			return nil, err
		}
		out[addr] = struct{}{}
	}
	return out, nil
}

// findCollisions returns collisions sorted by address so reports are stable.
func findCollisions(replacements rewrite.Map, exclusions ExclusionSet, accounts map[string]struct{}) []Collision {
	byTarget := make(map[string][]string)
	for legacy, target := range replacements {
		byTarget[target] = append(byTarget[target], legacy)
	}

	var collisions []Collision
	for target, sources := range byTarget {
		sort.Strings(sources)
		if len(sources) > 1 {
			collisions = append(collisions, Collision{Kind: CollisionDuplicateTarget, Address: target, Sources: sources})
		}
		if exclusions.Contains(target) {
			collisions = append(collisions, Collision{Kind: CollisionExcluded, Address: target, Sources: sources})
			continue
		}
		// a legacy key that is itself re-keyed frees its text
		if _, ok := accounts[target]; ok {
			if _, rekeyed := replacements[target]; !rekeyed && !slices.Contains(sources, target) {
				collisions = append(collisions, Collision{Kind: CollisionExistingAccount, Address: target, Sources: sources})
			}
		}
	}

	sort.Slice(collisions, func(i, j int) bool {
		if collisions[i].Address != collisions[j].Address {
			return collisions[i].Address < collisions[j].Address
		}
		return collisions[i].Kind < collisions[j].Kind
	})
	return collisions
}
