package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/prize-savings/x/prizepool/types"
)

// syncWithYieldSource reconciles the allocation buckets against the yield
// source's actual balance. Runs at the start of every deposit, withdrawal and
// explicit ProcessRewards call, never on a timer, so the first interaction
// after a surplus or deficit event settles it before any amounts are
// computed. Returns the distributed delta (zero when below threshold).
//
// The caller is responsible for persisting the pool.
func (k *Keeper) syncWithYieldSource(ctx sdk.Context, pool *types.Pool) (math.LegacyDec, error) {
	actual, err := k.yield.Balance(ctx, pool.PoolID)
	if err != nil {
		return math.LegacyZeroDec(), types.ErrYieldSource.Wrapf("balance: %v", err)
	}

	delta := actual.Sub(pool.TrackedBalance())
	if delta.Abs().LT(types.MinimumDistributionThreshold) {
		// Rounding noise. Distributing it would truncate to nothing and
		// silently lose the dust, so leaving it in place is the correct
		// behavior, not an error.
		return math.LegacyZeroDec(), nil
	}

	if delta.IsPositive() {
		k.distributeSurplus(ctx, pool, delta)
	} else {
		k.absorbDeficit(ctx, pool, delta.Neg())
	}
	pool.UpdatedAt = ctx.BlockTime().Unix()
	return delta, nil
}

// distributeSurplus splits new yield across the three buckets using the
// pool's distribution strategy. Fixed-point dust from the proportional split
// lands in principal.
func (k *Keeper) distributeSurplus(ctx sdk.Context, pool *types.Pool, surplus math.LegacyDec) {
	principalCut, prizeCut, feeCut := pool.Strategy.Split(surplus)

	pool.AllocatedPrincipal = pool.AllocatedPrincipal.Add(principalCut)
	pool.AllocatedPrizeYield = pool.AllocatedPrizeYield.Add(prizeCut)
	pool.AllocatedProtocolFee = pool.AllocatedProtocolFee.Add(feeCut)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"prizepool_surplus_distributed",
			sdk.NewAttribute("pool_id", formatU64(pool.PoolID)),
			sdk.NewAttribute("surplus", surplus.String()),
			sdk.NewAttribute("principal_cut", principalCut.String()),
			sdk.NewAttribute("prize_cut", prizeCut.String()),
			sdk.NewAttribute("fee_cut", feeCut.String()),
		),
	)

	k.logger.Info("Yield surplus distributed",
		"pool_id", pool.PoolID,
		"surplus", surplus.String(),
		"principal_cut", principalCut.String(),
		"prize_cut", prizeCut.String(),
		"fee_cut", feeCut.String(),
	)
}

// absorbDeficit applies the loss waterfall: protocol fee first, then prize,
// then principal. Depositor principal is touched only once both reserve
// buckets are fully drained; no bucket ever goes negative because the
// deficit cannot exceed the bucket sum.
func (k *Keeper) absorbDeficit(ctx sdk.Context, pool *types.Pool, deficit math.LegacyDec) {
	remaining := deficit

	fromFee := math.LegacyMinDec(remaining, pool.AllocatedProtocolFee)
	pool.AllocatedProtocolFee = pool.AllocatedProtocolFee.Sub(fromFee)
	remaining = remaining.Sub(fromFee)

	fromPrize := math.LegacyMinDec(remaining, pool.AllocatedPrizeYield)
	pool.AllocatedPrizeYield = pool.AllocatedPrizeYield.Sub(fromPrize)
	remaining = remaining.Sub(fromPrize)

	pool.AllocatedPrincipal = pool.AllocatedPrincipal.Sub(remaining)

	// A drained fee bucket can leave the withdrawable accumulator stale.
	if pool.UnclaimedProtocolFee.GT(pool.AllocatedProtocolFee) {
		pool.UnclaimedProtocolFee = pool.AllocatedProtocolFee
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"prizepool_deficit_absorbed",
			sdk.NewAttribute("pool_id", formatU64(pool.PoolID)),
			sdk.NewAttribute("deficit", deficit.String()),
			sdk.NewAttribute("from_fee", fromFee.String()),
			sdk.NewAttribute("from_prize", fromPrize.String()),
			sdk.NewAttribute("from_principal", remaining.String()),
		),
	)

	k.logger.Warn("Yield deficit absorbed",
		"pool_id", pool.PoolID,
		"deficit", deficit.String(),
		"from_fee", fromFee.String(),
		"from_prize", fromPrize.String(),
		"from_principal", remaining.String(),
	)
}

// ProcessRewards forces a sync against the yield source (admin).
func (k *Keeper) ProcessRewards(ctx sdk.Context, poolID uint64) (math.LegacyDec, error) {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return math.LegacyZeroDec(), types.ErrPoolNotFound
	}

	delta, err := k.syncWithYieldSource(ctx, pool)
	if err != nil {
		return math.LegacyZeroDec(), err
	}
	k.SetPool(ctx, pool)
	return delta, nil
}
