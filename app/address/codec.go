// Package address converts 20-byte account addresses between their bech32
// and EIP-55 checksummed hex text forms.
package address

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	errorsmod "cosmossdk.io/errors"

	"github.com/cosmos/cosmos-sdk/types/bech32"

	"github.com/kiichain/genesis-migrator/app/types"
)

// Length is the size of an account address in bytes
const Length = common.AddressLength

// Address is the raw byte identity of an account. Two text forms that
// decode to the same bytes are the same address.
type Address [Length]byte

// BytesToAddress converts b into an Address, failing unless b is exactly 20 bytes long.
func BytesToAddress(b []byte) (Address, error) {
	var addr Address
	if len(b) != Length {
		return addr, errorsmod.Wrapf(types.ErrAddressFormat, "expected %d bytes, got %d", Length, len(b))
	}
	copy(addr[:], b)
	return addr, nil
}

// Bytes returns a copy of the raw address bytes
func (a Address) Bytes() []byte {
	return append([]byte(nil), a[:]...)
}

// String returns the checksummed hex form
func (a Address) String() string {
	return EncodeHexChecksummed(a)
}

// DecodePrefixed decodes a bech32 address whose human readable part must equal expectedPrefix.
func DecodePrefixed(text, expectedPrefix string) (Address, error) {
	prefix, addr, err := decodeBech32(text)
	if err != nil {
		return Address{}, err
	}
	if prefix != expectedPrefix {
		return Address{}, errorsmod.Wrapf(types.ErrAddressFormat, "%s: expected prefix %q, got %q", text, expectedPrefix, prefix)
	}
	return addr, nil
}

// EncodePrefixed encodes addr as bech32 with the given prefix.
func EncodePrefixed(addr Address, prefix string) (string, error) {
	if prefix == "" {
		return "", errorsmod.Wrap(types.ErrAddressFormat, "empty bech32 prefix")
	}
	text, err := bech32.ConvertAndEncode(prefix, addr[:])
	if err != nil {
		return "", errorsmod.Wrapf(types.ErrAddressFormat, "encoding with prefix %q: %s", prefix, err)
	}
	return text, nil
}

// ReencodePrefix decodes a bech32 address with any prefix and encodes the
// same bytes with newPrefix.
func ReencodePrefix(text, newPrefix string) (string, error) {
	_, addr, err := decodeBech32(text)
	if err != nil {
		return "", err
	}
	return EncodePrefixed(addr, newPrefix)
}

// DecodeHexChecksummed decodes a 0x-prefixed, 40 digit hex address. The
// checksum casing is not verified.
func DecodeHexChecksummed(text string) (Address, error) {
	if !strings.HasPrefix(text, "0x") {
		return Address{}, errorsmod.Wrapf(types.ErrAddressFormat, "%s: hex address must start with 0x", text)
	}
	if len(text) != 2+2*Length || !common.IsHexAddress(text) {
		return Address{}, errorsmod.Wrapf(types.ErrAddressFormat, "%s: not a %d byte hex address", text, Length)
	}
	return Address(common.HexToAddress(text)), nil
}

// EncodeHexChecksummed returns the EIP-55 mixed-case hex form of addr.
func EncodeHexChecksummed(addr Address) string {
	return common.Address(addr).Hex()
}

func decodeBech32(text string) (string, Address, error) {
	prefix, bz, err := bech32.DecodeAndConvert(text)
	if err != nil {
		return "", Address{}, errorsmod.Wrapf(types.ErrAddressFormat, "%s: %s", text, err)
	}
	addr, err := BytesToAddress(bz)
	if err != nil {
		return "", Address{}, errorsmod.Wrap(err, text)
	}
	return prefix, addr, nil
}
