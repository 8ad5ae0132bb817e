package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/prize-savings/x/prizepool/types"
)

// Withdraw burns shares and releases the underlying asset. The yield source's
// actual return is authoritative: shares burned and principal released are
// both derived from what Take delivered, not from what was requested, so the
// ledger can never record an outflow that did not happen.
func (k *Keeper) Withdraw(ctx sdk.Context, withdrawer string, poolID uint64, amount math.LegacyDec) (returned, burned math.LegacyDec, err error) {
	zero := math.LegacyZeroDec()
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return zero, zero, types.ErrPoolNotFound
	}
	if !pool.CanWithdraw() {
		return zero, zero, types.ErrNotOperational.Wrapf("pool %d is %s", poolID, pool.LifecycleState)
	}
	if !amount.IsPositive() {
		return zero, zero, types.ErrInvalidAmount
	}

	withdrawerAddr, err := sdk.AccAddressFromBech32(withdrawer)
	if err != nil {
		return zero, zero, err
	}

	if _, err := k.syncWithYieldSource(ctx, pool); err != nil {
		return zero, zero, err
	}

	pos := k.GetPositionByOwner(ctx, poolID, withdrawer)
	if pos == nil {
		return zero, zero, types.ErrPositionNotFound
	}

	sharesRequested := pool.SharesForAmount(amount)
	if sharesRequested.GT(pos.Shares) {
		return zero, zero, types.ErrInsufficientFunds.Wrapf(
			"requested %s shares, position holds %s", sharesRequested.String(), pos.Shares.String())
	}

	active := k.GetActiveRound(ctx, poolID)
	now := ctx.BlockTime().Unix()

	// Settle TWAB state at the pre-burn balance. If a draw is mid-batch this
	// finalizes the position's entries first, so withdrawing to zero does not
	// erase its chance in the in-flight draw.
	k.touchPosition(ctx, pool, active, pos, now)

	actual, err := k.yield.Take(ctx, poolID, amount)
	if err != nil {
		return zero, zero, types.ErrYieldSource.Wrapf("take: %v", err)
	}
	if actual.GT(amount) {
		actual = amount
	}

	// Re-derive the burn from the delivered amount at the pre-take price.
	burned = pool.SharesForAmount(actual)
	if burned.GT(pos.Shares) {
		burned = pos.Shares
	}

	pool.AllocatedPrincipal = pool.AllocatedPrincipal.Sub(actual)
	pool.TotalShares = pool.TotalShares.Sub(burned)
	pos.Shares = pos.Shares.Sub(burned)
	pool.UpdatedAt = now

	payout := actual.TruncateInt()
	if payout.IsPositive() {
		coins := sdk.NewCoins(sdk.NewCoin(pool.Denom, payout))
		if err := k.bank.SendCoinsFromModuleToAccount(ctx, types.ModuleName, withdrawerAddr, coins); err != nil {
			return zero, zero, err
		}
	}

	k.SetPosition(ctx, pos)
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"prizepool_withdraw",
			sdk.NewAttribute("pool_id", formatU64(poolID)),
			sdk.NewAttribute("withdrawer", withdrawer),
			sdk.NewAttribute("requested", amount.String()),
			sdk.NewAttribute("returned", actual.String()),
			sdk.NewAttribute("shares_burned", burned.String()),
		),
	)

	k.logger.Info("Withdrawal processed",
		"pool_id", poolID,
		"withdrawer", withdrawer,
		"requested", amount.String(),
		"returned", actual.String(),
		"shares_burned", burned.String(),
	)

	return actual, burned, nil
}
