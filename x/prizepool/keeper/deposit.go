package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/prize-savings/x/prizepool/types"
)

// Deposit converts an asset amount into pool shares. The ledger syncs with
// the yield source before any share math runs, so a depositor can never buy
// shares at a price that predates a known surplus or deficit.
func (k *Keeper) Deposit(ctx sdk.Context, depositor string, poolID uint64, amount math.LegacyDec) (math.LegacyDec, error) {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return math.LegacyZeroDec(), types.ErrPoolNotFound
	}
	if !pool.CanDeposit() {
		return math.LegacyZeroDec(), types.ErrNotOperational.Wrapf("pool %d is %s", poolID, pool.LifecycleState)
	}
	// Custody moves in whole base units; the fractional part of a request is
	// dropped before any ledger math sees it.
	coinAmt := amount.TruncateInt()
	amount = math.LegacyNewDecFromInt(coinAmt)
	if !amount.IsPositive() {
		return math.LegacyZeroDec(), types.ErrInvalidAmount
	}

	depositorAddr, err := sdk.AccAddressFromBech32(depositor)
	if err != nil {
		return math.LegacyZeroDec(), err
	}

	if _, err := k.syncWithYieldSource(ctx, pool); err != nil {
		return math.LegacyZeroDec(), err
	}

	active := k.GetActiveRound(ctx, poolID)
	now := ctx.BlockTime().Unix()

	pos := k.getOrCreatePosition(ctx, pool, active, depositor, now)

	// Minimum applies to new positions only; topping up an existing stake
	// just has to be positive.
	if pos.Shares.IsZero() && amount.LT(pool.MinimumDeposit) {
		return math.LegacyZeroDec(), types.ErrBelowMinimum.Wrapf("deposit %s below minimum %s", amount.String(), pool.MinimumDeposit.String())
	}

	shares := pool.SharesForAmount(amount)

	coins := sdk.NewCoins(sdk.NewCoin(pool.Denom, coinAmt))
	if err := k.bank.SendCoinsFromAccountToModule(ctx, depositorAddr, types.ModuleName, coins); err != nil {
		return math.LegacyZeroDec(), err
	}
	if err := k.yield.Put(ctx, poolID, amount); err != nil {
		return math.LegacyZeroDec(), types.ErrYieldSource.Wrapf("put: %v", err)
	}

	k.touchPosition(ctx, pool, active, pos, now)
	pos.Shares = pos.Shares.Add(shares)

	pool.AllocatedPrincipal = pool.AllocatedPrincipal.Add(amount)
	pool.TotalShares = pool.TotalShares.Add(shares)
	pool.UpdatedAt = now

	k.SetPosition(ctx, pos)
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"prizepool_deposit",
			sdk.NewAttribute("pool_id", formatU64(poolID)),
			sdk.NewAttribute("depositor", depositor),
			sdk.NewAttribute("amount", amount.String()),
			sdk.NewAttribute("shares", shares.String()),
		),
	)

	k.logger.Info("Deposit processed",
		"pool_id", poolID,
		"depositor", depositor,
		"amount", amount.String(),
		"shares", shares.String(),
	)

	return shares, nil
}

// PreviewDeposit returns the shares a deposit would mint at the current
// share price. Query-only; does not sync.
func (k *Keeper) PreviewDeposit(ctx sdk.Context, poolID uint64, amount math.LegacyDec) (math.LegacyDec, error) {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return math.LegacyZeroDec(), types.ErrPoolNotFound
	}
	return pool.SharesForAmount(amount), nil
}
