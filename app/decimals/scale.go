// Package decimals converts token amounts from the legacy 6 decimal
// representation to the 18 decimal one without ever leaving exact
// arithmetic.
package decimals

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/kiichain/genesis-migrator/app/types"
)

const (
	// ExtraDecimals is the number of decimals added to every designated amount.
	ExtraDecimals = 12

	// FragmentDigits is the width of a wei fragment.
	FragmentDigits = 12
)

// ScaleInteger multiplies a non-negative integer amount by 10^extra.
func ScaleInteger(amount string, extra uint) (string, error) {
	v, err := ParseAmount(amount)
	if err != nil {
		return "", err
	}
	if v.IsZero() {
		return "0", nil
	}
	scaled, err := v.SafeMul(pow10(extra))
	if err != nil {
		return "", errorsmod.Wrapf(types.ErrArithmetic, "scaling %s by 10^%d: %s", amount, extra, err)
	}
	return scaled.String(), nil
}

// ScaleDecimal multiplies a fixed point decimal amount by 10^extra and
// returns it with 18 fractional digits.
func ScaleDecimal(amount string, extra uint) (out string, err error) {
	d, err := sdkmath.LegacyNewDecFromStr(amount)
	if err != nil {
		return "", errorsmod.Wrapf(types.ErrArithmetic, "invalid decimal %q: %s", amount, err)
	}

	// LegacyDec panics when the result exceeds its bit length
	defer func() {
		if r := recover(); r != nil {
			err = errorsmod.Wrapf(types.ErrArithmetic, "scaling %s by 10^%d: %v", amount, extra, r)
		}
	}()
	return d.MulInt(pow10(extra)).String(), nil
}

// MergeFragment returns base * 10^12 + fragment. An absent or empty
// fragment counts as zero.
func MergeFragment(base, fragment string, present bool) (string, error) {
	v, err := ParseAmount(base)
	if err != nil {
		return "", err
	}

	low := sdkmath.ZeroInt()
	if present {
		if low, err = parseFragment(fragment); err != nil {
			return "", err
		}
	}

	shifted, err := v.SafeMul(pow10(FragmentDigits))
	if err != nil {
		return "", errorsmod.Wrapf(types.ErrArithmetic, "merging fragment into %s: %s", base, err)
	}
	merged, err := shifted.SafeAdd(low)
	if err != nil {
		return "", errorsmod.Wrapf(types.ErrArithmetic, "merging fragment into %s: %s", base, err)
	}
	return merged.String(), nil
}

// ParseAmount parses a non-negative integer amount.
func ParseAmount(amount string) (sdkmath.Int, error) {
	if !isDigits(amount) {
		return sdkmath.Int{}, errorsmod.Wrapf(types.ErrArithmetic, "invalid integer amount %q", amount)
	}
	v, ok := sdkmath.NewIntFromString(amount)
	if !ok {
		return sdkmath.Int{}, errorsmod.Wrapf(types.ErrArithmetic, "integer amount %q out of range", amount)
	}
	return v, nil
}

func parseFragment(fragment string) (sdkmath.Int, error) {
	if fragment == "" {
		return sdkmath.ZeroInt(), nil
	}
	if len(fragment) > FragmentDigits {
		return sdkmath.Int{}, errorsmod.Wrapf(types.ErrArithmetic, "wei fragment %q has more than %d digits", fragment, FragmentDigits)
	}
	return ParseAmount(fragment)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func pow10(exp uint) sdkmath.Int {
	return sdkmath.NewIntWithDecimal(1, int(exp))
}

func describe(what string, i int) string {
	return fmt.Sprintf("%s[%d]", what, i)
}
