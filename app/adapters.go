package app

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"strconv"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkaddress "github.com/cosmos/cosmos-sdk/types/address"
	bankkeeper "github.com/cosmos/cosmos-sdk/x/bank/keeper"

	prizepooltypes "github.com/openalpha/prize-savings/x/prizepool/types"
)

// yieldAccountAddr derives a per-pool vault address. Coins sent to this
// address by an external strategy show up as surplus on the next sync; coins
// removed show up as deficit.
func yieldAccountAddr(poolID uint64) sdk.AccAddress {
	return sdkaddress.Module(prizepooltypes.ModuleName, append([]byte("yield"), sdk.Uint64ToBigEndian(poolID)...))
}

// bankYieldSource custodies pool funds in a derived per-pool bank account.
// The bank balance is the authoritative actual balance the ledger reconciles
// against.
type bankYieldSource struct {
	bank  bankkeeper.Keeper
	denom func(ctx sdk.Context, poolID uint64) (string, error)
}

func newBankYieldSource(bank bankkeeper.Keeper) *bankYieldSource {
	return &bankYieldSource{bank: bank}
}

// SetDenomResolver wires the pool denom lookup. The prizepool keeper is
// constructed with this adapter, so the lookup is bound after both exist.
func (y *bankYieldSource) SetDenomResolver(fn func(ctx sdk.Context, poolID uint64) (string, error)) {
	y.denom = fn
}

func (y *bankYieldSource) Put(ctx sdk.Context, poolID uint64, amount math.LegacyDec) error {
	denom, err := y.denom(ctx, poolID)
	if err != nil {
		return err
	}
	amt := amount.TruncateInt()
	if !amt.IsPositive() {
		return nil
	}
	coins := sdk.NewCoins(sdk.NewCoin(denom, amt))
	return y.bank.SendCoinsFromModuleToAccount(ctx, prizepooltypes.ModuleName, yieldAccountAddr(poolID), coins)
}

func (y *bankYieldSource) Take(ctx sdk.Context, poolID uint64, requested math.LegacyDec) (math.LegacyDec, error) {
	denom, err := y.denom(ctx, poolID)
	if err != nil {
		return math.LegacyZeroDec(), err
	}

	available := y.bank.GetBalance(ctx, yieldAccountAddr(poolID), denom).Amount
	amt := requested.TruncateInt()
	if amt.GT(available) {
		amt = available
	}
	if !amt.IsPositive() {
		return math.LegacyZeroDec(), nil
	}

	coins := sdk.NewCoins(sdk.NewCoin(denom, amt))
	if err := y.bank.SendCoinsFromAccountToModule(ctx, yieldAccountAddr(poolID), prizepooltypes.ModuleName, coins); err != nil {
		return math.LegacyZeroDec(), err
	}
	return math.LegacyNewDecFromInt(amt), nil
}

func (y *bankYieldSource) Balance(ctx sdk.Context, poolID uint64) (math.LegacyDec, error) {
	denom, err := y.denom(ctx, poolID)
	if err != nil {
		return math.LegacyZeroDec(), err
	}
	bal := y.bank.GetBalance(ctx, yieldAccountAddr(poolID), denom).Amount
	return math.LegacyNewDecFromInt(bal), nil
}

// blockHashRandomness derives draw randomness from a block hash produced
// after the request. Fulfillment needs at least one block of chain progress,
// so the randomness cannot be known inside the requesting transaction.
type blockHashRandomness struct{}

func newBlockHashRandomness() blockHashRandomness {
	return blockHashRandomness{}
}

func (blockHashRandomness) Request(ctx sdk.Context) (string, error) {
	return strconv.FormatInt(ctx.BlockHeight(), 10), nil
}

func (blockHashRandomness) Fulfilled(ctx sdk.Context, handle string) (math.Int, bool, error) {
	requestHeight, err := strconv.ParseInt(handle, 10, 64)
	if err != nil {
		return math.ZeroInt(), false, fmt.Errorf("malformed randomness handle %q: %w", handle, err)
	}
	if ctx.BlockHeight() <= requestHeight {
		return math.ZeroInt(), false, nil
	}

	seed := append(ctx.HeaderHash(), []byte(handle)...)
	digest := sha256.Sum256(seed)
	return math.NewIntFromBigInt(new(big.Int).SetBytes(digest[:])), true, nil
}
