package resolver

import (
	"fmt"
	"strconv"

	errorsmod "cosmossdk.io/errors"

	"github.com/kiichain/genesis-migrator/app/address"
	"github.com/kiichain/genesis-migrator/app/document"
	"github.com/kiichain/genesis-migrator/app/types"
)

const (
	// ModuleAccountType is the type discriminator of module accounts in auth genesis.
	ModuleAccountType = "/cosmos.auth.v1beta1.ModuleAccount"

	// DefaultEarlyAccountThreshold is the highest account number kept on its legacy address.
	DefaultEarlyAccountThreshold = 50
)

// Reason tells why an address is excluded from re-keying.
type Reason string

const (
	ReasonValidator     Reason = "validator"
	ReasonModuleAccount Reason = "module-account"
	ReasonWasmContract  Reason = "wasm-contract"
	ReasonEarlyAccount  Reason = "early-account"
)

// Exclusion is the entry recorded for an excluded address.
type Exclusion struct {
	Reason Reason
	// AccountNumber is set for early accounts only.
	AccountNumber uint64
}

func (e Exclusion) String() string {
	if e.Reason == ReasonEarlyAccount {
		return fmt.Sprintf("%s(%d)", e.Reason, e.AccountNumber)
	}
	return string(e.Reason)
}

// ExclusionSet maps a bech32 address to the reason it must keep its text.
type ExclusionSet map[string]Exclusion

// Contains reports whether addr is excluded.
func (s ExclusionSet) Contains(addr string) bool {
	_, ok := s[addr]
	return ok
}

// Count returns the number of exclusions per reason.
func (s ExclusionSet) Count() map[Reason]int {
	counts := make(map[Reason]int)
	for _, e := range s {
		counts[e.Reason]++
	}
	return counts
}

// BuildExclusions collects every address that must not be re-keyed. Later
// rules overwrite the reason recorded by earlier ones.
func BuildExclusions(genesis *document.Node, prefix string, threshold uint64) (ExclusionSet, error) {
	set := make(ExclusionSet)

	validators, err := genesis.GetArray("app_state", "staking", "validators")
	if err != nil {
		return nil, err
	}
	for i, v := range validators {
		operator, err := v.GetString("operator_address")
		if err != nil {
			return nil, errorsmod.Wrapf(err, "staking.validators[%d]", i)
		}
		accountAddr, err := address.ReencodePrefix(operator, prefix)
		if err != nil {
			return nil, errorsmod.Wrapf(err, "staking.validators[%d]", i)
		}
		set[accountAddr] = Exclusion{Reason: ReasonValidator}
	}

	accounts, err := genesis.GetArray("app_state", "auth", "accounts")
	if err != nil {
		return nil, err
	}
	for i, acc := range accounts {
		accType, err := acc.GetString("@type")
		if err != nil {
			return nil, errorsmod.Wrapf(err, "auth.accounts[%d]", i)
		}
		if accType != ModuleAccountType {
			continue
		}
		addr, err := acc.GetString("base_account", "address")
		if err != nil {
			return nil, errorsmod.Wrapf(err, "auth.accounts[%d]", i)
		}
		set[addr] = Exclusion{Reason: ReasonModuleAccount}
	}

	// wasm is optional: chains without contracts export no wasm state
	if contracts, err := genesis.GetArray("app_state", "wasm", "contracts"); err == nil {
		for i, c := range contracts {
			addr, err := c.GetString("contract_address")
			if err != nil {
				return nil, errorsmod.Wrapf(err, "wasm.contracts[%d]", i)
			}
			set[addr] = Exclusion{Reason: ReasonWasmContract}
		}
	}

	for i, acc := range accounts {
		addr, number, err := AccountIdentity(acc)
		if err != nil {
			return nil, errorsmod.Wrapf(err, "auth.accounts[%d]", i)
		}
		if number > 0 && number <= threshold {
			set[addr] = Exclusion{Reason: ReasonEarlyAccount, AccountNumber: number}
		}
	}

	return set, nil
}

// AccountIdentity returns the address and account number of an auth account,
// looking through module and vesting account wrappers.
func AccountIdentity(acc *document.Node) (string, uint64, error) {
	base := acc
	switch {
	case acc.Has("base_account"):
		base, _ = acc.Get("base_account")
	case acc.Has("base_vesting_account", "base_account"):
		base, _ = acc.Get("base_vesting_account", "base_account")
	}

	addr, err := base.GetString("address")
	if err != nil {
		return "", 0, err
	}
	raw, err := base.Get("account_number")
	if err != nil {
		return "", 0, err
	}
	number, err := parseUint(raw)
	if err != nil {
		return "", 0, errorsmod.Wrapf(err, "account %s", addr)
	}
	return addr, number, nil
}

func parseUint(n *document.Node) (uint64, error) {
	text, ok := n.AsString()
	if !ok {
		text, ok = n.AsNumber()
	}
	if !ok {
		return 0, errorsmod.Wrapf(types.ErrSchema, "account_number: expected string or number, got %s", n.Kind())
	}
	v, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, errorsmod.Wrapf(types.ErrArithmetic, "account_number %q: %s", text, err)
	}
	return v, nil
}
