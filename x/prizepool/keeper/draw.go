package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/google/uuid"

	"github.com/openalpha/prize-savings/x/prizepool/types"
)

// entryScale maps the raw randomness word onto [0, 1) with 18 decimal places.
var entryScale = math.NewIntWithDecimal(1, 18)

// StartDraw freezes the ended round for winner selection and opens the next
// one. The frozen round keeps accepting lazy TWAB finalizations while the
// batch walk runs; the new active round accrues weight from the snapshot
// instant so no holding time falls between rounds.
func (k *Keeper) StartDraw(ctx sdk.Context, poolID uint64) (frozenRoundID uint64, err error) {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return 0, types.ErrPoolNotFound
	}
	if !pool.CanDraw() {
		return 0, types.ErrNotOperational.Wrapf("pool %d is %s", poolID, pool.LifecycleState)
	}
	if pool.DrawPhase != types.DrawPhaseNone {
		return 0, types.ErrInvalidPhase.Wrapf("draw already in flight (%s)", pool.DrawPhase)
	}

	active := k.GetActiveRound(ctx, poolID)
	if active == nil {
		return 0, types.ErrInvalidPhase.Wrap("pool has no active round")
	}
	now := ctx.BlockTime().Unix()
	if !active.Ended(now) {
		return 0, types.ErrInvalidTiming.Wrapf("round %d ends at %d, now %d", active.RoundID, active.TargetEndTime, now)
	}

	if _, err := k.syncWithYieldSource(ctx, pool); err != nil {
		return 0, err
	}

	handle, err := k.randomness.Request(ctx)
	if err != nil {
		return 0, err
	}

	// Freeze the round. The participant count captured here bounds the batch
	// walk; later joiners carry a higher index and a higher round id, so the
	// cursor never has to revisit them.
	pending := active
	pending.SnapshotTime = now
	pending.SnapshotCount = pool.ParticipantCount
	pending.BatchCursor = 0
	pending.RandomnessHandle = handle
	pending.TotalEntries = math.LegacyZeroDec()
	k.SetPendingRound(ctx, pending)

	next := types.NewRound(poolID, pending.RoundID+1, now, pool.DrawIntervalSeconds)
	k.SetActiveRound(ctx, next)

	pool.DrawPhase = types.DrawPhaseProcessing
	pool.UpdatedAt = now
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"prizepool_draw_started",
			sdk.NewAttribute("pool_id", formatU64(poolID)),
			sdk.NewAttribute("round_id", formatU64(pending.RoundID)),
			sdk.NewAttribute("snapshot_count", formatU64(pending.SnapshotCount)),
			sdk.NewAttribute("randomness_handle", handle),
		),
	)

	k.logger.Info("Draw started",
		"pool_id", poolID,
		"round_id", pending.RoundID,
		"snapshot_count", pending.SnapshotCount,
	)

	return pending.RoundID, nil
}

// ProcessDrawBatch finalizes up to limit snapshotted positions against the
// pending round. Positions already finalized lazily by their own activity are
// skipped; the cursor only ever moves forward.
func (k *Keeper) ProcessDrawBatch(ctx sdk.Context, poolID, limit uint64) (processed uint64, complete bool, err error) {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return 0, false, types.ErrPoolNotFound
	}
	if !pool.CanDraw() {
		return 0, false, types.ErrNotOperational.Wrapf("pool %d is %s", poolID, pool.LifecycleState)
	}
	if pool.DrawPhase != types.DrawPhaseProcessing {
		return 0, false, types.ErrInvalidPhase.Wrapf("no draw processing (phase %q)", pool.DrawPhase)
	}
	pending := k.GetPendingRound(ctx, poolID)
	if pending == nil {
		return 0, false, types.ErrInvalidPhase.Wrap("pending round missing")
	}
	if limit == 0 {
		limit = 100
	}

	end := pending.BatchCursor + limit
	if end > pending.SnapshotCount {
		end = pending.SnapshotCount
	}

	for i := pending.BatchCursor; i < end; i++ {
		pos := k.GetPosition(ctx, poolID, i)
		if pos == nil {
			continue
		}
		if pos.FinalizedRoundID >= pending.RoundID {
			continue
		}
		k.finalizeForPendingDraw(ctx, pending, pos)
		k.SetPosition(ctx, pos)
		processed++
	}

	pending.BatchCursor = end
	k.SetPendingRound(ctx, pending)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"prizepool_draw_batch",
			sdk.NewAttribute("pool_id", formatU64(poolID)),
			sdk.NewAttribute("round_id", formatU64(pending.RoundID)),
			sdk.NewAttribute("cursor", formatU64(end)),
			sdk.NewAttribute("processed", formatU64(processed)),
		),
	)

	return processed, pending.BatchComplete(), nil
}

// CompleteDraw selects the winner, credits the prize as newly minted shares
// and moves the pool into intermission. Requires a complete batch walk and
// fulfilled randomness; both are retryable conditions, not failures.
func (k *Keeper) CompleteDraw(ctx sdk.Context, poolID uint64) (*types.DrawResult, error) {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}
	if !pool.CanDraw() {
		return nil, types.ErrNotOperational.Wrapf("pool %d is %s", poolID, pool.LifecycleState)
	}
	if pool.DrawPhase != types.DrawPhaseProcessing {
		return nil, types.ErrInvalidPhase.Wrapf("no draw processing (phase %q)", pool.DrawPhase)
	}
	pending := k.GetPendingRound(ctx, poolID)
	if pending == nil {
		return nil, types.ErrInvalidPhase.Wrap("pending round missing")
	}
	if !pending.BatchComplete() {
		return nil, types.ErrBatchIncomplete.Wrapf("cursor %d of %d", pending.BatchCursor, pending.SnapshotCount)
	}

	randValue, ok, err := k.randomness.Fulfilled(ctx, pending.RandomnessHandle)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrRandomnessPending
	}

	if _, err := k.syncWithYieldSource(ctx, pool); err != nil {
		return nil, err
	}

	now := ctx.BlockTime().Unix()
	prize := pool.AllocatedPrizeYield

	winner := ""
	if pending.TotalEntries.IsPositive() {
		winner = k.selectWinner(ctx, pending, randValue)
	}

	minted := math.LegacyZeroDec()
	if winner != "" && prize.IsPositive() {
		pos := k.GetPositionByOwner(ctx, poolID, winner)
		active := k.GetActiveRound(ctx, poolID)

		// Settle the winner's TWAB at its pre-prize balance, then mint shares
		// against the prize at the current price. The prize moves between
		// buckets only; the custodied total is untouched.
		k.touchPosition(ctx, pool, active, pos, now)
		minted = pool.SharesForAmount(prize)

		pool.AllocatedPrizeYield = pool.AllocatedPrizeYield.Sub(prize)
		pool.AllocatedPrincipal = pool.AllocatedPrincipal.Add(prize)
		pool.TotalShares = pool.TotalShares.Add(minted)
		pos.Shares = pos.Shares.Add(minted)
		k.SetPosition(ctx, pos)
	}

	// Fee accrued over the round becomes claimable at draw completion.
	pool.UnclaimedProtocolFee = pool.AllocatedProtocolFee
	if pool.ProtocolFeeRecipient != "" && pool.UnclaimedProtocolFee.IsPositive() {
		if _, err := k.forwardProtocolFee(ctx, pool); err != nil {
			return nil, err
		}
	}

	result := &types.DrawResult{
		ResultID:     uuid.NewString(),
		PoolID:       poolID,
		RoundID:      pending.RoundID,
		Winner:       winner,
		PrizeAmount:  prize,
		TotalEntries: pending.TotalEntries,
		Participants: pending.SnapshotCount,
		CompletedAt:  now,
	}
	if winner == "" {
		// No eligible entries: the prize stays in its bucket for next round.
		result.PrizeAmount = math.LegacyZeroDec()
	}
	k.SetDrawResult(ctx, result)

	k.DeletePendingRound(ctx, poolID)
	pool.DrawPhase = types.DrawPhaseIntermission
	pool.UpdatedAt = now
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"prizepool_draw_completed",
			sdk.NewAttribute("pool_id", formatU64(poolID)),
			sdk.NewAttribute("round_id", formatU64(result.RoundID)),
			sdk.NewAttribute("result_id", result.ResultID),
			sdk.NewAttribute("winner", winner),
			sdk.NewAttribute("prize", result.PrizeAmount.String()),
			sdk.NewAttribute("shares_minted", minted.String()),
			sdk.NewAttribute("total_entries", result.TotalEntries.String()),
		),
	)

	k.logger.Info("Draw completed",
		"pool_id", poolID,
		"round_id", result.RoundID,
		"winner", winner,
		"prize", result.PrizeAmount.String(),
		"total_entries", result.TotalEntries.String(),
	)

	return result, nil
}

// selectWinner walks the snapshot arena accumulating finalized entries until
// the cumulative sum passes the randomness-derived target. Entry weight is
// the probability weight: a position holding twice the entries is twice as
// likely to be passed through.
func (k *Keeper) selectWinner(ctx sdk.Context, pending *types.Round, randValue math.Int) string {
	frac := math.LegacyNewDecFromInt(randValue.Mod(entryScale)).Quo(math.LegacyNewDecFromInt(entryScale))
	target := pending.TotalEntries.Mul(frac)

	cumulative := math.LegacyZeroDec()
	lastEligible := ""
	for i := uint64(0); i < pending.SnapshotCount; i++ {
		pos := k.GetPosition(ctx, pending.PoolID, i)
		if pos == nil || pos.FinalizedRoundID != pending.RoundID || !pos.FinalizedEntries.IsPositive() {
			continue
		}
		lastEligible = pos.Owner
		cumulative = cumulative.Add(pos.FinalizedEntries)
		if cumulative.GT(target) {
			return pos.Owner
		}
	}
	// Rounding can leave the target a hair above the final cumulative sum.
	return lastEligible
}

// StartNextRound ends the intermission. The next round already started the
// instant the draw snapshot was taken; this clears the marker so retargeting
// and the next draw become available again.
func (k *Keeper) StartNextRound(ctx sdk.Context, poolID uint64) error {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return types.ErrPoolNotFound
	}
	if !pool.CanDraw() {
		return types.ErrNotOperational.Wrapf("pool %d is %s", poolID, pool.LifecycleState)
	}
	if pool.DrawPhase != types.DrawPhaseIntermission {
		return types.ErrInvalidPhase.Wrapf("pool not in intermission (phase %q)", pool.DrawPhase)
	}

	active := k.GetActiveRound(ctx, poolID)
	pool.DrawPhase = types.DrawPhaseNone
	pool.UpdatedAt = ctx.BlockTime().Unix()
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"prizepool_round_started",
			sdk.NewAttribute("pool_id", formatU64(poolID)),
			sdk.NewAttribute("round_id", formatU64(active.RoundID)),
			sdk.NewAttribute("target_end_time", formatI64(active.TargetEndTime)),
		),
	)

	k.logger.Info("Round opened",
		"pool_id", poolID,
		"round_id", active.RoundID,
	)

	return nil
}
