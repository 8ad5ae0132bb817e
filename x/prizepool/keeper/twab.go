package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/prize-savings/x/prizepool/types"
)

// touchPosition settles a position's TWAB state before a balance mutation.
// Two steps, both lazy:
//
//  1. If a draw is in flight and the position has not been finalized against
//     the frozen round yet, finalize it now using its pre-mutation shares.
//     The share balance cannot have changed since the snapshot (any change
//     would have finalized first), so this is exactly the snapshot balance.
//     This is what lets a position withdraw to zero mid-batch and still
//     carry its historical weight into the draw.
//  2. Fold elapsed holding time into the accumulator for the round the
//     position currently participates in, rolling it forward into the
//     active round if it lagged behind.
//
// The caller persists the position after applying its mutation.
func (k *Keeper) touchPosition(ctx sdk.Context, pool *types.Pool, active *types.Round, pos *types.Position, now int64) {
	if pool.DrawPhase == types.DrawPhaseProcessing {
		if pending := k.GetPendingRound(ctx, pool.PoolID); pending != nil && pos.FinalizedRoundID < pending.RoundID {
			k.finalizeForPendingDraw(ctx, pending, pos)
		}
	}

	switch {
	case pos.RoundID == active.RoundID:
		pos.AccrueWeight(active.StartTime, now)
	case pos.RoundID < active.RoundID:
		pos.EnterRound(active.RoundID, active.StartTime, now)
	default:
		// Deferred gap-period joiner: the round it was assigned to does not
		// exist yet, so no weight can accrue.
		pos.LastUpdateTime = now
	}
}

// finalizeForPendingDraw computes and records a position's entries for the
// frozen round. Weight accrues only up to the snapshot time; anything after
// belongs to the new active round and is invisible to the in-flight draw.
func (k *Keeper) finalizeForPendingDraw(ctx sdk.Context, pending *types.Round, pos *types.Position) {
	weight := math.LegacyZeroDec()
	switch {
	case pos.RoundID == pending.RoundID:
		from := pos.LastUpdateTime
		if from < pending.StartTime {
			from = pending.StartTime
		}
		weight = pos.WeightAccumulator
		if pending.SnapshotTime > from {
			elapsed := math.LegacyNewDec(pending.SnapshotTime - from)
			weight = weight.Add(pos.Shares.Mul(elapsed))
		}
	case pos.RoundID < pending.RoundID:
		// Untouched since before the round began: balance was constant for
		// its entire span.
		if pending.SnapshotTime > pending.StartTime {
			elapsed := math.LegacyNewDec(pending.SnapshotTime - pending.StartTime)
			weight = pos.Shares.Mul(elapsed)
		}
	default:
		// Joined during the gap period: zero weight in the round that
		// already ended.
	}

	entries := pending.FinalizeEntries(weight, pos.Shares)
	pos.FinalizedRoundID = pending.RoundID
	pos.FinalizedEntries = entries

	pending.TotalEntries = pending.TotalEntries.Add(entries)
	k.SetPendingRound(ctx, pending)
}

// PositionEntriesPreview computes the entries a position would currently be
// credited with for a round, without mutating anything. Query-only helper.
func (k *Keeper) PositionEntriesPreview(ctx sdk.Context, round *types.Round, pos *types.Position, now int64) math.LegacyDec {
	if pos.RoundID > round.RoundID {
		return math.LegacyZeroDec()
	}
	asOf := now
	if round.SnapshotTime > 0 && round.SnapshotTime < asOf {
		asOf = round.SnapshotTime
	}

	weight := math.LegacyZeroDec()
	if pos.RoundID == round.RoundID {
		from := pos.LastUpdateTime
		if from < round.StartTime {
			from = round.StartTime
		}
		weight = pos.WeightAccumulator
		if asOf > from {
			weight = weight.Add(pos.Shares.Mul(math.LegacyNewDec(asOf - from)))
		}
	} else if asOf > round.StartTime {
		weight = pos.Shares.Mul(math.LegacyNewDec(asOf - round.StartTime))
	}
	return round.FinalizeEntries(weight, pos.Shares)
}

// getOrCreatePosition resolves or registers a participant. New positions
// created during the gap period are deferred into the round that will start
// when the draw does, so they cannot dilute a round that already ended.
func (k *Keeper) getOrCreatePosition(ctx sdk.Context, pool *types.Pool, active *types.Round, addr string, now int64) *types.Position {
	if pos := k.GetPositionByOwner(ctx, pool.PoolID, addr); pos != nil {
		return pos
	}

	index := k.registerParticipant(ctx, pool, addr)
	roundID := active.RoundID
	if pool.DrawPhase == types.DrawPhaseNone && active.Ended(now) {
		roundID = active.RoundID + 1
	}
	pos := types.NewPosition(pool.PoolID, index, addr, roundID, now)
	pos.CreatedAt = now
	return pos
}
