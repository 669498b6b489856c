package types

import errorsmod "cosmossdk.io/errors"

// Codes for genesis migration errors
const (
	DefaultCodespace = "genmigrate"
)

var (
	// ErrInvalidUsage is returned when the CLI arguments or paths are invalid.
	ErrInvalidUsage = errorsmod.Register(DefaultCodespace, 2, "invalid usage")

	// ErrSchema is returned when a module is not registered or a required field is missing or has the wrong type.
	ErrSchema = errorsmod.Register(DefaultCodespace, 3, "genesis schema error")

	// ErrAddressFormat is returned for bad checksums, wrong lengths and unexpected prefixes.
	ErrAddressFormat = errorsmod.Register(DefaultCodespace, 4, "invalid address format")

	// ErrArithmetic is returned when a numeric string cannot be parsed or scaled.
	ErrArithmetic = errorsmod.Register(DefaultCodespace, 5, "invalid amount")

	// ErrConservation is returned when a balance operation changes the total supply of a denom.
	ErrConservation = errorsmod.Register(DefaultCodespace, 6, "value conservation violated")

	// ErrInvalidConfig is returned when the migration configuration is inconsistent.
	ErrInvalidConfig = errorsmod.Register(DefaultCodespace, 7, "invalid migration config")

	// ErrValidation is returned when the migrated genesis fails post-migration validation.
	ErrValidation = errorsmod.Register(DefaultCodespace, 8, "post-migration validation failed")
)
