package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/prize-savings/x/prizepool/types"
)

// QueryPool returns the pool with its derived phase and round timing. Reads
// only; yield-source drift since the last sync is not reflected.
func (k *Keeper) QueryPool(ctx sdk.Context, poolID uint64) (*types.PoolInfo, error) {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}
	active := k.GetActiveRound(ctx, poolID)

	info := &types.PoolInfo{
		Pool:       pool,
		Phase:      types.PoolPhase(pool, active, ctx.BlockTime().Unix()),
		SharePrice: pool.SharePrice(),
	}
	if active != nil {
		info.ActiveRoundID = active.RoundID
		info.RoundStartTime = active.StartTime
		info.RoundTargetEndTime = active.TargetEndTime
	}
	return info, nil
}

// QueryPosition returns a depositor's stake with its asset value and an
// entries estimate. While a draw is in flight the estimate targets the
// frozen round, since that is the draw the position is entered in.
func (k *Keeper) QueryPosition(ctx sdk.Context, poolID uint64, owner string) (*types.PositionInfo, error) {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}
	pos := k.GetPositionByOwner(ctx, poolID, owner)
	if pos == nil {
		return nil, types.ErrPositionNotFound
	}

	now := ctx.BlockTime().Unix()
	entries := math.LegacyZeroDec()
	if pool.DrawPhase == types.DrawPhaseProcessing {
		if pending := k.GetPendingRound(ctx, poolID); pending != nil {
			if pos.FinalizedRoundID >= pending.RoundID {
				entries = pos.FinalizedEntries
			} else {
				entries = k.PositionEntriesPreview(ctx, pending, pos, now)
			}
		}
	} else if active := k.GetActiveRound(ctx, poolID); active != nil {
		entries = k.PositionEntriesPreview(ctx, active, pos, now)
	}

	return &types.PositionInfo{
		Position:       pos,
		AssetValue:     pool.AmountForShares(pos.Shares),
		CurrentEntries: entries,
	}, nil
}

// QueryTreasury returns the pool's protocol fee accounting.
func (k *Keeper) QueryTreasury(ctx sdk.Context, poolID uint64) (*types.TreasuryInfo, error) {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}
	return &types.TreasuryInfo{
		PoolID:               poolID,
		Recipient:            pool.ProtocolFeeRecipient,
		AllocatedProtocolFee: pool.AllocatedProtocolFee,
		UnclaimedProtocolFee: pool.UnclaimedProtocolFee,
	}, nil
}

// QueryEmergencyInfo returns the pool's lifecycle state and the reason it was
// last changed.
func (k *Keeper) QueryEmergencyInfo(ctx sdk.Context, poolID uint64) (*types.EmergencyInfo, error) {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}
	return &types.EmergencyInfo{
		PoolID:         poolID,
		LifecycleState: pool.LifecycleState,
		Reason:         pool.StateReason,
		StateChangedAt: pool.StateChangedAt,
	}, nil
}

// QueryDrawStatus reports batch progress for an in-flight draw.
func (k *Keeper) QueryDrawStatus(ctx sdk.Context, poolID uint64) (*types.DrawStatus, error) {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}
	pending := k.GetPendingRound(ctx, poolID)
	if pending == nil {
		return nil, types.ErrInvalidPhase.Wrap("no draw in flight")
	}
	return &types.DrawStatus{
		PoolID:           poolID,
		RoundID:          pending.RoundID,
		SnapshotTime:     pending.SnapshotTime,
		SnapshotCount:    pending.SnapshotCount,
		BatchCursor:      pending.BatchCursor,
		BatchComplete:    pending.BatchComplete(),
		TotalEntries:     pending.TotalEntries,
		RandomnessHandle: pending.RandomnessHandle,
	}, nil
}
