package keeper

import (
	"errors"
	"testing"

	"cosmossdk.io/math"

	"github.com/openalpha/prize-savings/x/prizepool/types"
)

// TestUpdateStrategySettlesOldYieldFirst tests that a pending surplus is
// split by the outgoing strategy, not the incoming one.
func TestUpdateStrategySettlesOldYieldFirst(t *testing.T) {
	k, ctx, yield, _ := setupKeeper(t)
	pool := createTestPool(t, k, ctx)
	mustDeposit(t, k, ctx, testAddr(0x01), pool.PoolID, 1000)

	yield.drift(pool.PoolID, math.LegacyNewDec(100))

	// Everything to prize from now on.
	allPrize := types.NewDistributionStrategy(
		math.LegacyZeroDec(), math.LegacyOneDec(), math.LegacyZeroDec())
	if err := k.UpdateDistributionStrategy(ctx, pool.PoolID, allPrize); err != nil {
		t.Fatalf("UpdateDistributionStrategy failed: %v", err)
	}

	// The 100 surplus was settled 70/20/10 before the swap.
	pool = k.GetPool(ctx, pool.PoolID)
	if !pool.AllocatedPrizeYield.Equal(math.LegacyNewDec(20)) {
		t.Errorf("expected prize 20 under old strategy, got %s", pool.AllocatedPrizeYield.String())
	}

	yield.drift(pool.PoolID, math.LegacyNewDec(50))
	if _, err := k.ProcessRewards(ctx, pool.PoolID); err != nil {
		t.Fatalf("ProcessRewards failed: %v", err)
	}
	pool = k.GetPool(ctx, pool.PoolID)
	if !pool.AllocatedPrizeYield.Equal(math.LegacyNewDec(70)) {
		t.Errorf("expected prize 70 under new strategy, got %s", pool.AllocatedPrizeYield.String())
	}
}

// TestUpdateStrategyRejectsInvalid tests fraction validation.
func TestUpdateStrategyRejectsInvalid(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)
	pool := createTestPool(t, k, ctx)

	bad := types.NewDistributionStrategy(
		math.LegacyMustNewDecFromStr("0.5"),
		math.LegacyMustNewDecFromStr("0.5"),
		math.LegacyMustNewDecFromStr("0.5"))
	if err := k.UpdateDistributionStrategy(ctx, pool.PoolID, bad); !errors.Is(err, types.ErrStrategyInvalid) {
		t.Errorf("expected ErrStrategyInvalid, got %v", err)
	}
}

// TestUpdateDrawIntervalRetargetsActiveRound tests that the running round is
// retargeted only while genuinely active.
func TestUpdateDrawIntervalRetargetsActiveRound(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)
	pool := createTestPool(t, k, ctx)

	if err := k.UpdateDrawInterval(ctx, pool.PoolID, 3600); err != nil {
		t.Fatalf("UpdateDrawInterval failed: %v", err)
	}
	active := k.GetActiveRound(ctx, pool.PoolID)
	if active.TargetEndTime != baseTime+3600 {
		t.Errorf("expected retargeted end %d, got %d", baseTime+3600, active.TargetEndTime)
	}
	// The normalization divisor is frozen at round creation.
	if active.EligibilityDuration != drawInterval {
		t.Errorf("expected eligibility duration unchanged at %d, got %d", drawInterval, active.EligibilityDuration)
	}

	// Once the round has ended the draw is due; the round must not move.
	lateCtx := atTime(ctx, baseTime+3600)
	if err := k.UpdateDrawInterval(lateCtx, pool.PoolID, 7200); err != nil {
		t.Fatalf("UpdateDrawInterval failed: %v", err)
	}
	active = k.GetActiveRound(lateCtx, pool.PoolID)
	if active.TargetEndTime != baseTime+3600 {
		t.Errorf("expected ended round untouched, got end %d", active.TargetEndTime)
	}
	if k.GetPool(lateCtx, pool.PoolID).DrawIntervalSeconds != 7200 {
		t.Error("expected interval stored for future rounds")
	}
}

// TestRetargetRoundEndTime tests the explicit end-time override and its
// phase gating.
func TestRetargetRoundEndTime(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)
	pool := createTestPool(t, k, ctx)

	if err := k.UpdateRoundTargetEndTime(ctx, pool.PoolID, baseTime+1000); err != nil {
		t.Fatalf("UpdateRoundTargetEndTime failed: %v", err)
	}
	if got := k.GetActiveRound(ctx, pool.PoolID).TargetEndTime; got != baseTime+1000 {
		t.Errorf("expected end %d, got %d", baseTime+1000, got)
	}

	if err := k.UpdateRoundTargetEndTime(ctx, pool.PoolID, baseTime); !errors.Is(err, types.ErrInvalidTiming) {
		t.Errorf("expected ErrInvalidTiming for target at round start, got %v", err)
	}

	// Mid-round, a target at or before now would end the round in the past
	// with more elapsed weight than the new duration admits.
	midCtx := atTime(ctx, baseTime+600)
	if err := k.UpdateRoundTargetEndTime(midCtx, pool.PoolID, baseTime+500); !errors.Is(err, types.ErrInvalidTiming) {
		t.Errorf("expected ErrInvalidTiming for past target, got %v", err)
	}
	if err := k.UpdateRoundTargetEndTime(midCtx, pool.PoolID, baseTime+600); !errors.Is(err, types.ErrInvalidTiming) {
		t.Errorf("expected ErrInvalidTiming for target equal to now, got %v", err)
	}
	if got := k.GetActiveRound(midCtx, pool.PoolID).TargetEndTime; got != baseTime+1000 {
		t.Errorf("expected rejected retargets to leave end %d, got %d", baseTime+1000, got)
	}
	if err := k.UpdateRoundTargetEndTime(midCtx, pool.PoolID, baseTime+601); err != nil {
		t.Fatalf("UpdateRoundTargetEndTime to the next instant failed: %v", err)
	}

	// Awaiting draw: retargeting is off the table.
	lateCtx := atTime(ctx, baseTime+1000)
	if err := k.UpdateRoundTargetEndTime(lateCtx, pool.PoolID, baseTime+5000); !errors.Is(err, types.ErrInvalidPhase) {
		t.Errorf("expected ErrInvalidPhase after round end, got %v", err)
	}
}

// TestSetPoolState tests lifecycle transitions and validation.
func TestSetPoolState(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)
	pool := createTestPool(t, k, ctx)

	if err := k.SetPoolState(ctx, pool.PoolID, types.PoolStateEmergency, "custodian halt"); err != nil {
		t.Fatalf("SetPoolState failed: %v", err)
	}
	pool = k.GetPool(ctx, pool.PoolID)
	if pool.LifecycleState != types.PoolStateEmergency {
		t.Errorf("expected emergency state, got %s", pool.LifecycleState)
	}
	if pool.StateReason != "custodian halt" {
		t.Errorf("expected reason recorded, got %q", pool.StateReason)
	}

	if err := k.SetPoolState(ctx, pool.PoolID, "frozen", ""); !errors.Is(err, types.ErrNotOperational) {
		t.Errorf("expected ErrNotOperational for unknown state, got %v", err)
	}

	// Recovery back to normal reopens deposits.
	if err := k.SetPoolState(ctx, pool.PoolID, types.PoolStateNormal, "recovered"); err != nil {
		t.Fatalf("SetPoolState failed: %v", err)
	}
	if _, err := k.Deposit(ctx, testAddr(0x01), pool.PoolID, math.LegacyNewDec(500)); err != nil {
		t.Errorf("expected deposit after recovery, got %v", err)
	}
}

// TestUpdateMinimumDeposit tests that the new floor binds new positions only.
func TestUpdateMinimumDeposit(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)
	pool := createTestPool(t, k, ctx)
	mustDeposit(t, k, ctx, testAddr(0x01), pool.PoolID, 1000)

	if err := k.UpdateMinimumDeposit(ctx, pool.PoolID, math.LegacyNewDec(5000)); err != nil {
		t.Fatalf("UpdateMinimumDeposit failed: %v", err)
	}

	if _, err := k.Deposit(ctx, testAddr(0x02), pool.PoolID, math.LegacyNewDec(1000)); !errors.Is(err, types.ErrBelowMinimum) {
		t.Errorf("expected ErrBelowMinimum for new position, got %v", err)
	}
	if _, err := k.Deposit(ctx, testAddr(0x01), pool.PoolID, math.LegacyNewDec(10)); err != nil {
		t.Errorf("expected existing position top-up unaffected, got %v", err)
	}

	if err := k.UpdateMinimumDeposit(ctx, pool.PoolID, math.LegacyNewDec(-1)); !errors.Is(err, types.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount for negative minimum, got %v", err)
	}
}

// TestProtocolFeeTreasury tests recipient management and the manual claim.
func TestProtocolFeeTreasury(t *testing.T) {
	k, ctx, yield, _ := setupKeeper(t)
	pool := createTestPool(t, k, ctx)
	treasury := testAddr(0x0F)

	mustDeposit(t, k, ctx, testAddr(0x01), pool.PoolID, 1000)

	// No recipient configured yet.
	if _, err := k.WithdrawProtocolFee(ctx, pool.PoolID); !errors.Is(err, types.ErrNoFeeRecipient) {
		t.Errorf("expected ErrNoFeeRecipient, got %v", err)
	}

	if err := k.SetProtocolFeeRecipient(ctx, pool.PoolID, "not-bech32"); err == nil {
		t.Error("expected error for malformed recipient")
	}
	if err := k.SetProtocolFeeRecipient(ctx, pool.PoolID, treasury); err != nil {
		t.Fatalf("SetProtocolFeeRecipient failed: %v", err)
	}

	// Nothing claimable before a draw completes.
	if _, err := k.WithdrawProtocolFee(ctx, pool.PoolID); !errors.Is(err, types.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount with nothing claimable, got %v", err)
	}

	// Accrue fee and complete a draw; the configured recipient is paid
	// automatically at completion.
	yield.drift(pool.PoolID, math.LegacyNewDec(100))
	endCtx := atTime(ctx, baseTime+drawInterval)
	if _, err := k.StartDraw(endCtx, pool.PoolID); err != nil {
		t.Fatalf("StartDraw failed: %v", err)
	}
	if _, _, err := k.ProcessDrawBatch(endCtx, pool.PoolID, 10); err != nil {
		t.Fatalf("ProcessDrawBatch failed: %v", err)
	}
	if _, err := k.CompleteDraw(endCtx, pool.PoolID); err != nil {
		t.Fatalf("CompleteDraw failed: %v", err)
	}

	pool = k.GetPool(endCtx, pool.PoolID)
	if !pool.AllocatedProtocolFee.IsZero() {
		t.Errorf("expected fee bucket forwarded, got %s", pool.AllocatedProtocolFee.String())
	}
	if !pool.UnclaimedProtocolFee.IsZero() {
		t.Errorf("expected unclaimed fee cleared, got %s", pool.UnclaimedProtocolFee.String())
	}
	checkConservation(t, k, endCtx, yield, pool.PoolID)
}

// TestFeeAccruesWithoutRecipient tests that clearing the recipient keeps
// fees claimable later instead of forwarding them.
func TestFeeAccruesWithoutRecipient(t *testing.T) {
	k, ctx, yield, _ := setupKeeper(t)
	pool := createTestPool(t, k, ctx)
	treasury := testAddr(0x0F)

	mustDeposit(t, k, ctx, testAddr(0x01), pool.PoolID, 1000)
	yield.drift(pool.PoolID, math.LegacyNewDec(100))

	endCtx := atTime(ctx, baseTime+drawInterval)
	if _, err := k.StartDraw(endCtx, pool.PoolID); err != nil {
		t.Fatalf("StartDraw failed: %v", err)
	}
	if _, _, err := k.ProcessDrawBatch(endCtx, pool.PoolID, 10); err != nil {
		t.Fatalf("ProcessDrawBatch failed: %v", err)
	}
	if _, err := k.CompleteDraw(endCtx, pool.PoolID); err != nil {
		t.Fatalf("CompleteDraw failed: %v", err)
	}

	// No recipient at completion: the fee stayed claimable.
	pool = k.GetPool(endCtx, pool.PoolID)
	if !pool.UnclaimedProtocolFee.Equal(math.LegacyNewDec(10)) {
		t.Fatalf("expected 10 unclaimed, got %s", pool.UnclaimedProtocolFee.String())
	}

	if err := k.SetProtocolFeeRecipient(endCtx, pool.PoolID, treasury); err != nil {
		t.Fatalf("SetProtocolFeeRecipient failed: %v", err)
	}
	paid, err := k.WithdrawProtocolFee(endCtx, pool.PoolID)
	if err != nil {
		t.Fatalf("WithdrawProtocolFee failed: %v", err)
	}
	if !paid.Equal(math.LegacyNewDec(10)) {
		t.Errorf("expected 10 paid, got %s", paid.String())
	}

	pool = k.GetPool(endCtx, pool.PoolID)
	if !pool.AllocatedProtocolFee.IsZero() || !pool.UnclaimedProtocolFee.IsZero() {
		t.Errorf("expected fee buckets cleared, got bucket %s unclaimed %s",
			pool.AllocatedProtocolFee.String(), pool.UnclaimedProtocolFee.String())
	}

	// Clearing the recipient blocks further claims.
	if err := k.ClearProtocolFeeRecipient(endCtx, pool.PoolID); err != nil {
		t.Fatalf("ClearProtocolFeeRecipient failed: %v", err)
	}
	if _, err := k.WithdrawProtocolFee(endCtx, pool.PoolID); !errors.Is(err, types.ErrNoFeeRecipient) {
		t.Errorf("expected ErrNoFeeRecipient after clear, got %v", err)
	}
	checkConservation(t, k, endCtx, yield, pool.PoolID)
}
