package types

import (
	"cosmossdk.io/errors"
)

// Module error codes
var (
	ErrPoolNotFound       = errors.Register(ModuleName, 1, "pool not found")
	ErrPositionNotFound   = errors.Register(ModuleName, 2, "position not found")
	ErrInsufficientFunds  = errors.Register(ModuleName, 3, "withdrawal exceeds convertible balance")
	ErrBelowMinimum       = errors.Register(ModuleName, 4, "amount below pool minimum deposit")
	ErrInvalidPhase       = errors.Register(ModuleName, 5, "operation not permitted in current round phase")
	ErrInvalidTiming      = errors.Register(ModuleName, 6, "operation violates round timing")
	ErrNotOperational     = errors.Register(ModuleName, 7, "pool lifecycle state blocks this operation")
	ErrStrategyInvalid    = errors.Register(ModuleName, 8, "distribution fractions must each lie in [0,1] and sum to 1")
	ErrUnauthorized       = errors.Register(ModuleName, 9, "unauthorized")
	ErrRandomnessPending  = errors.Register(ModuleName, 10, "draw randomness not yet fulfilled")
	ErrBatchIncomplete    = errors.Register(ModuleName, 11, "draw batch processing not complete")
	ErrInvalidAmount      = errors.Register(ModuleName, 12, "invalid amount")
	ErrNoFeeRecipient     = errors.Register(ModuleName, 13, "no protocol fee recipient configured")
	ErrYieldSource        = errors.Register(ModuleName, 14, "yield source operation failed")
)
