package types

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// YieldSource is the external custodian of pool funds. It is the sole source
// of truth for the actual balance, which can drift from the ledger's
// bookkeeping in either direction. Take may release less than requested; the
// returned amount is authoritative for share-burn math.
type YieldSource interface {
	Put(ctx sdk.Context, poolID uint64, amount math.LegacyDec) error
	Take(ctx sdk.Context, poolID uint64, requested math.LegacyDec) (math.LegacyDec, error)
	Balance(ctx sdk.Context, poolID uint64) (math.LegacyDec, error)
}

// RandomnessSource is the host randomness facility. Fulfillment requires at
// least one block of chain progress after the request; until then Fulfilled
// returns ok=false and callers must retry in a later transaction.
type RandomnessSource interface {
	Request(ctx sdk.Context) (string, error)
	Fulfilled(ctx sdk.Context, handle string) (math.Int, bool, error)
}

// BankKeeper is the subset of the bank module used by the app-level yield
// source adapter and protocol fee payout.
type BankKeeper interface {
	SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
	SendCoinsFromModuleToModule(ctx context.Context, senderModule, recipientModule string, amt sdk.Coins) error
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
}
