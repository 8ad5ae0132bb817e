package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/prize-savings/x/prizepool/types"
)

// UpdateDistributionStrategy swaps the pool's yield split. A sync runs first
// so yield accrued under the old strategy is settled by the old fractions;
// the new split only governs deltas observed after this call.
func (k *Keeper) UpdateDistributionStrategy(ctx sdk.Context, poolID uint64, strategy types.DistributionStrategy) error {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return types.ErrPoolNotFound
	}
	if err := strategy.Validate(); err != nil {
		return err
	}

	if _, err := k.syncWithYieldSource(ctx, pool); err != nil {
		return err
	}

	pool.Strategy = strategy
	pool.UpdatedAt = ctx.BlockTime().Unix()
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"prizepool_strategy_updated",
			sdk.NewAttribute("pool_id", formatU64(poolID)),
			sdk.NewAttribute("rewards_fraction", strategy.RewardsFraction.String()),
			sdk.NewAttribute("prize_fraction", strategy.PrizeFraction.String()),
			sdk.NewAttribute("fee_fraction", strategy.FeeFraction.String()),
		),
	)

	k.logger.Info("Distribution strategy updated",
		"pool_id", poolID,
		"rewards", strategy.RewardsFraction.String(),
		"prize", strategy.PrizeFraction.String(),
		"fee", strategy.FeeFraction.String(),
	)

	return nil
}

// UpdateDrawInterval changes the pool's round length. The active round is
// retargeted only while the round is genuinely active; an ended round's draw
// is already due and a draw in flight must not move.
func (k *Keeper) UpdateDrawInterval(ctx sdk.Context, poolID uint64, intervalSeconds int64) error {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return types.ErrPoolNotFound
	}
	if intervalSeconds <= 0 {
		return types.ErrInvalidTiming
	}

	now := ctx.BlockTime().Unix()
	pool.DrawIntervalSeconds = intervalSeconds
	pool.UpdatedAt = now

	active := k.GetActiveRound(ctx, poolID)
	retargeted := false
	if active != nil && types.PoolPhase(pool, active, now) == types.PhaseActive {
		active.TargetEndTime = active.StartTime + intervalSeconds
		k.SetActiveRound(ctx, active)
		retargeted = true
	}
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"prizepool_draw_interval_updated",
			sdk.NewAttribute("pool_id", formatU64(poolID)),
			sdk.NewAttribute("interval_seconds", formatI64(intervalSeconds)),
			sdk.NewAttribute("retargeted", boolString(retargeted)),
		),
	)

	k.logger.Info("Draw interval updated",
		"pool_id", poolID,
		"interval_seconds", intervalSeconds,
		"retargeted", retargeted,
	)

	return nil
}

// UpdateMinimumDeposit changes the entry minimum. Existing positions are
// unaffected; only new positions check it.
func (k *Keeper) UpdateMinimumDeposit(ctx sdk.Context, poolID uint64, minimum math.LegacyDec) error {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return types.ErrPoolNotFound
	}
	if minimum.IsNegative() {
		return types.ErrInvalidAmount
	}

	pool.MinimumDeposit = minimum
	pool.UpdatedAt = ctx.BlockTime().Unix()
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"prizepool_minimum_deposit_updated",
			sdk.NewAttribute("pool_id", formatU64(poolID)),
			sdk.NewAttribute("minimum_deposit", minimum.String()),
		),
	)

	return nil
}

// UpdateRoundTargetEndTime moves the active round's end, shortening or
// extending it. Rejected outside the Active phase: once the round has ended
// its draw is due at the recorded time, and a draw in flight works over a
// frozen snapshot.
func (k *Keeper) UpdateRoundTargetEndTime(ctx sdk.Context, poolID uint64, targetEndTime int64) error {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return types.ErrPoolNotFound
	}

	active := k.GetActiveRound(ctx, poolID)
	now := ctx.BlockTime().Unix()
	if active == nil || types.PoolPhase(pool, active, now) != types.PhaseActive {
		return types.ErrInvalidPhase.Wrap("no active round to retarget")
	}
	// Strictly future relative to now, not just the round start. A target in
	// (start, now] would flip the round straight to AwaitingDraw with more
	// elapsed weight than the new duration admits.
	if targetEndTime <= now {
		return types.ErrInvalidTiming.Wrapf("target %d not after current time %d", targetEndTime, now)
	}

	active.TargetEndTime = targetEndTime
	k.SetActiveRound(ctx, active)
	pool.UpdatedAt = now
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"prizepool_round_retargeted",
			sdk.NewAttribute("pool_id", formatU64(poolID)),
			sdk.NewAttribute("round_id", formatU64(active.RoundID)),
			sdk.NewAttribute("target_end_time", formatI64(targetEndTime)),
		),
	)

	k.logger.Info("Round retargeted",
		"pool_id", poolID,
		"round_id", active.RoundID,
		"target_end_time", targetEndTime,
	)

	return nil
}

// SetPoolState transitions the pool's lifecycle state.
func (k *Keeper) SetPoolState(ctx sdk.Context, poolID uint64, state, reason string) error {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return types.ErrPoolNotFound
	}
	if !types.ValidLifecycleState(state) {
		return types.ErrNotOperational.Wrapf("unknown lifecycle state %q", state)
	}

	now := ctx.BlockTime().Unix()
	pool.LifecycleState = state
	pool.StateReason = reason
	pool.StateChangedAt = now
	pool.UpdatedAt = now
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"prizepool_state_changed",
			sdk.NewAttribute("pool_id", formatU64(poolID)),
			sdk.NewAttribute("state", state),
			sdk.NewAttribute("reason", reason),
		),
	)

	k.logger.Info("Pool lifecycle state changed",
		"pool_id", poolID,
		"state", state,
		"reason", reason,
	)

	return nil
}

// SetProtocolFeeRecipient sets the treasury address that receives protocol
// fees. Accrued fees start auto-forwarding at the next draw completion.
func (k *Keeper) SetProtocolFeeRecipient(ctx sdk.Context, poolID uint64, recipient string) error {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return types.ErrPoolNotFound
	}
	if _, err := sdk.AccAddressFromBech32(recipient); err != nil {
		return err
	}

	pool.ProtocolFeeRecipient = recipient
	pool.UpdatedAt = ctx.BlockTime().Unix()
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"prizepool_fee_recipient_set",
			sdk.NewAttribute("pool_id", formatU64(poolID)),
			sdk.NewAttribute("recipient", recipient),
		),
	)

	return nil
}

// ClearProtocolFeeRecipient removes the treasury address. Fees keep accruing
// in the bucket and stay claimable once a recipient is set again.
func (k *Keeper) ClearProtocolFeeRecipient(ctx sdk.Context, poolID uint64) error {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return types.ErrPoolNotFound
	}

	pool.ProtocolFeeRecipient = ""
	pool.UpdatedAt = ctx.BlockTime().Unix()
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"prizepool_fee_recipient_cleared",
			sdk.NewAttribute("pool_id", formatU64(poolID)),
		),
	)

	return nil
}

// WithdrawProtocolFee pays out the claimable fee balance to the configured
// recipient.
func (k *Keeper) WithdrawProtocolFee(ctx sdk.Context, poolID uint64) (math.LegacyDec, error) {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return math.LegacyZeroDec(), types.ErrPoolNotFound
	}
	if pool.ProtocolFeeRecipient == "" {
		return math.LegacyZeroDec(), types.ErrNoFeeRecipient
	}
	if !pool.UnclaimedProtocolFee.IsPositive() {
		return math.LegacyZeroDec(), types.ErrInvalidAmount.Wrap("no claimable protocol fee")
	}

	paid, err := k.forwardProtocolFee(ctx, pool)
	if err != nil {
		return math.LegacyZeroDec(), err
	}
	pool.UpdatedAt = ctx.BlockTime().Unix()
	k.SetPool(ctx, pool)
	return paid, nil
}

// forwardProtocolFee pulls the claimable fee from the yield source and sends
// it to the recipient, decrementing both the bucket and the claimable
// accumulator by what was actually delivered. The caller persists the pool.
func (k *Keeper) forwardProtocolFee(ctx sdk.Context, pool *types.Pool) (math.LegacyDec, error) {
	recipientAddr, err := sdk.AccAddressFromBech32(pool.ProtocolFeeRecipient)
	if err != nil {
		return math.LegacyZeroDec(), err
	}

	actual, err := k.yield.Take(ctx, pool.PoolID, pool.UnclaimedProtocolFee)
	if err != nil {
		return math.LegacyZeroDec(), types.ErrYieldSource.Wrapf("take: %v", err)
	}
	if actual.GT(pool.UnclaimedProtocolFee) {
		actual = pool.UnclaimedProtocolFee
	}

	pool.AllocatedProtocolFee = pool.AllocatedProtocolFee.Sub(actual)
	pool.UnclaimedProtocolFee = pool.UnclaimedProtocolFee.Sub(actual)

	payout := actual.TruncateInt()
	if payout.IsPositive() {
		coins := sdk.NewCoins(sdk.NewCoin(pool.Denom, payout))
		if err := k.bank.SendCoinsFromModuleToAccount(ctx, types.ModuleName, recipientAddr, coins); err != nil {
			return math.LegacyZeroDec(), err
		}
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"prizepool_fee_forwarded",
			sdk.NewAttribute("pool_id", formatU64(pool.PoolID)),
			sdk.NewAttribute("recipient", pool.ProtocolFeeRecipient),
			sdk.NewAttribute("amount", actual.String()),
		),
	)

	k.logger.Info("Protocol fee forwarded",
		"pool_id", pool.PoolID,
		"recipient", pool.ProtocolFeeRecipient,
		"amount", actual.String(),
	)

	return actual, nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
