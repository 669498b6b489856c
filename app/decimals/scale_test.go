package decimals

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kiichain/genesis-migrator/app/types"
)

func TestScaleInteger(t *testing.T) {
	tests := []struct {
		amount   string
		extra    uint
		expected string
	}{
		{"5", 12, "5000000000000"},
		{"0", 12, "0"},
		{"1", 0, "1"},
		{"123456789", 12, "123456789000000000000"},
		{"007", 3, "7000"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			out, err := ScaleInteger(tt.amount, tt.extra)
			require.NoError(t, err)
			require.Equal(t, tt.expected, out)
		})
	}
}

func TestScaleIntegerErrors(t *testing.T) {
	for _, amount := range []string{"", "-1", "1.5", "1e6", " 1", "abc", strings.Repeat("9", 80)} {
		t.Run(amount, func(t *testing.T) {
			_, err := ScaleInteger(amount, 12)
			require.ErrorIs(t, err, types.ErrArithmetic)
		})
	}

	// fits before scaling but not after
	_, err := ScaleInteger(strings.Repeat("9", 70), 12)
	require.ErrorIs(t, err, types.ErrArithmetic)
}

func TestScaleDecimal(t *testing.T) {
	tests := []struct {
		amount   string
		expected string
	}{
		{"1.500000000000000000", "1500000000000.000000000000000000"},
		{"0.000000000001000000", "1.000000000000000000"},
		{"0.000000000000000001", "0.000001000000000000"},
		{"12", "12000000000000.000000000000000000"},
		{"0", "0.000000000000000000"},
		{"-2.5", "-2500000000000.000000000000000000"},
		// 50 significant digits survive exactly
		{
			"12345678901234567890123456789012.345678901234567890",
			"12345678901234567890123456789012345678901234.567890000000000000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			out, err := ScaleDecimal(tt.amount, ExtraDecimals)
			require.NoError(t, err)
			require.Equal(t, tt.expected, out)
			require.NotContains(t, out, "e")
			require.NotContains(t, out, "E")
		})
	}
}

func TestScaleDecimalErrors(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{name: "empty", amount: ""},
		{name: "not a number", amount: "one"},
		{name: "scientific", amount: "1e6"},
		{name: "too many fractional digits", amount: "0.0000000000000000001"},
		{name: "overflow", amount: strings.Repeat("9", 70)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ScaleDecimal(tt.amount, ExtraDecimals)
			require.ErrorIs(t, err, types.ErrArithmetic)
		})
	}
}

func TestMergeFragment(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		fragment string
		present  bool
		expected string
	}{
		{name: "absent fragment", base: "5", expected: "5" + strings.Repeat("0", 12)},
		{name: "padded fragment", base: "5", fragment: "000000000001", present: true, expected: "5000000000001"},
		{name: "short fragment", base: "5", fragment: "1", present: true, expected: "5000000000001"},
		{name: "full fragment", base: "5", fragment: "999999999999", present: true, expected: "5999999999999"},
		{name: "zero base", base: "0", fragment: "42", present: true, expected: "42"},
		{name: "zero base absent", base: "0", expected: "0"},
		{name: "empty fragment", base: "5", fragment: "", present: true, expected: "5" + strings.Repeat("0", 12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := MergeFragment(tt.base, tt.fragment, tt.present)
			require.NoError(t, err)
			require.Equal(t, tt.expected, out)
		})
	}
}

func TestMergeFragmentErrors(t *testing.T) {
	_, err := MergeFragment("5", "1000000000000", true)
	require.ErrorIs(t, err, types.ErrArithmetic)

	_, err = MergeFragment("5", "12a", true)
	require.ErrorIs(t, err, types.ErrArithmetic)

	_, err = MergeFragment("x", "", false)
	require.ErrorIs(t, err, types.ErrArithmetic)
}

