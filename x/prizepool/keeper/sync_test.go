package keeper

import (
	"testing"

	"cosmossdk.io/math"

	"github.com/openalpha/prize-savings/x/prizepool/types"
)

// TestSurplusDistribution tests that yield above the tracked balance is split
// across the buckets by the pool's strategy.
func TestSurplusDistribution(t *testing.T) {
	k, ctx, yield, _ := setupKeeper(t)
	pool := createTestPool(t, k, ctx)
	mustDeposit(t, k, ctx, testAddr(0x01), pool.PoolID, 1000)

	// External yield lands in the source.
	yield.drift(pool.PoolID, math.LegacyNewDec(100))

	delta, err := k.ProcessRewards(ctx, pool.PoolID)
	if err != nil {
		t.Fatalf("ProcessRewards failed: %v", err)
	}
	if !delta.Equal(math.LegacyNewDec(100)) {
		t.Errorf("expected delta 100, got %s", delta.String())
	}

	pool = k.GetPool(ctx, pool.PoolID)
	if !pool.AllocatedPrincipal.Equal(math.LegacyNewDec(1070)) {
		t.Errorf("expected principal 1070, got %s", pool.AllocatedPrincipal.String())
	}
	if !pool.AllocatedPrizeYield.Equal(math.LegacyNewDec(20)) {
		t.Errorf("expected prize yield 20, got %s", pool.AllocatedPrizeYield.String())
	}
	if !pool.AllocatedProtocolFee.Equal(math.LegacyNewDec(10)) {
		t.Errorf("expected protocol fee 10, got %s", pool.AllocatedProtocolFee.String())
	}
	checkConservation(t, k, ctx, yield, pool.PoolID)
}

// TestSurplusDustLandsInPrincipal tests that fixed-point remainders from the
// proportional split go to principal so the cuts always sum to the surplus.
func TestSurplusDustLandsInPrincipal(t *testing.T) {
	k, ctx, yield, _ := setupKeeper(t)
	pool := createTestPool(t, k, ctx)
	mustDeposit(t, k, ctx, testAddr(0x01), pool.PoolID, 1000)

	surplus := math.LegacyMustNewDecFromStr("0.000000000000000107")
	yield.drift(pool.PoolID, surplus)

	if _, err := k.ProcessRewards(ctx, pool.PoolID); err != nil {
		t.Fatalf("ProcessRewards failed: %v", err)
	}

	pool = k.GetPool(ctx, pool.PoolID)
	distributed := pool.TrackedBalance().Sub(math.LegacyNewDec(1000))
	if !distributed.Equal(surplus) {
		t.Errorf("expected full surplus %s distributed, got %s", surplus.String(), distributed.String())
	}
	checkConservation(t, k, ctx, yield, pool.PoolID)
}

// TestDeltaBelowThresholdIgnored tests that rounding-noise deltas are left in
// place instead of being distributed.
func TestDeltaBelowThresholdIgnored(t *testing.T) {
	k, ctx, yield, _ := setupKeeper(t)
	pool := createTestPool(t, k, ctx)
	mustDeposit(t, k, ctx, testAddr(0x01), pool.PoolID, 1000)

	yield.drift(pool.PoolID, math.LegacyNewDecWithPrec(1, 17))

	delta, err := k.ProcessRewards(ctx, pool.PoolID)
	if err != nil {
		t.Fatalf("ProcessRewards failed: %v", err)
	}
	if !delta.IsZero() {
		t.Errorf("expected zero delta for below-threshold drift, got %s", delta.String())
	}

	pool = k.GetPool(ctx, pool.PoolID)
	if !pool.AllocatedPrincipal.Equal(math.LegacyNewDec(1000)) {
		t.Errorf("expected principal untouched at 1000, got %s", pool.AllocatedPrincipal.String())
	}
}

// TestDeficitWaterfall tests the loss order: protocol fee first, then prize
// yield, principal last.
func TestDeficitWaterfall(t *testing.T) {
	k, ctx, yield, _ := setupKeeper(t)
	pool := createTestPool(t, k, ctx)
	mustDeposit(t, k, ctx, testAddr(0x01), pool.PoolID, 1000)

	// Build reserves: principal 1070, prize 20, fee 10.
	yield.drift(pool.PoolID, math.LegacyNewDec(100))
	if _, err := k.ProcessRewards(ctx, pool.PoolID); err != nil {
		t.Fatalf("ProcessRewards failed: %v", err)
	}

	// First loss drains the fee bucket and part of the prize bucket.
	yield.drift(pool.PoolID, math.LegacyNewDec(-25))
	if _, err := k.ProcessRewards(ctx, pool.PoolID); err != nil {
		t.Fatalf("ProcessRewards failed: %v", err)
	}

	pool = k.GetPool(ctx, pool.PoolID)
	if !pool.AllocatedProtocolFee.IsZero() {
		t.Errorf("expected fee bucket drained, got %s", pool.AllocatedProtocolFee.String())
	}
	if !pool.AllocatedPrizeYield.Equal(math.LegacyNewDec(5)) {
		t.Errorf("expected prize yield 5, got %s", pool.AllocatedPrizeYield.String())
	}
	if !pool.AllocatedPrincipal.Equal(math.LegacyNewDec(1070)) {
		t.Errorf("expected principal untouched at 1070, got %s", pool.AllocatedPrincipal.String())
	}

	// Second loss exhausts the prize bucket and reaches principal.
	yield.drift(pool.PoolID, math.LegacyNewDec(-10))
	if _, err := k.ProcessRewards(ctx, pool.PoolID); err != nil {
		t.Fatalf("ProcessRewards failed: %v", err)
	}

	pool = k.GetPool(ctx, pool.PoolID)
	if !pool.AllocatedPrizeYield.IsZero() {
		t.Errorf("expected prize bucket drained, got %s", pool.AllocatedPrizeYield.String())
	}
	if !pool.AllocatedPrincipal.Equal(math.LegacyNewDec(1065)) {
		t.Errorf("expected principal 1065 after waterfall, got %s", pool.AllocatedPrincipal.String())
	}
	checkConservation(t, k, ctx, yield, pool.PoolID)
}

// TestDeficitClampsUnclaimedFee tests that a loss draining the fee bucket
// also clamps the claimable fee accumulator.
func TestDeficitClampsUnclaimedFee(t *testing.T) {
	k, ctx, yield, _ := setupKeeper(t)
	pool := createTestPool(t, k, ctx)
	mustDeposit(t, k, ctx, testAddr(0x01), pool.PoolID, 1000)

	pool = k.GetPool(ctx, pool.PoolID)
	pool.AllocatedProtocolFee = math.LegacyNewDec(10)
	pool.UnclaimedProtocolFee = math.LegacyNewDec(10)
	k.SetPool(ctx, pool)
	yield.drift(pool.PoolID, math.LegacyNewDec(10))

	// Drop below even the fee bucket.
	yield.drift(pool.PoolID, math.LegacyNewDec(-7))
	if _, err := k.ProcessRewards(ctx, pool.PoolID); err != nil {
		t.Fatalf("ProcessRewards failed: %v", err)
	}

	pool = k.GetPool(ctx, pool.PoolID)
	if !pool.AllocatedProtocolFee.Equal(math.LegacyNewDec(3)) {
		t.Errorf("expected fee bucket 3, got %s", pool.AllocatedProtocolFee.String())
	}
	if !pool.UnclaimedProtocolFee.Equal(math.LegacyNewDec(3)) {
		t.Errorf("expected unclaimed fee clamped to 3, got %s", pool.UnclaimedProtocolFee.String())
	}
}

// TestPutFeeAbsorbedBeforePricing tests share pricing against a source that
// keeps a proportional cut of every deposit. The fee surfaces as a deficit at
// the next sync, so each depositor's fee is priced in before anyone new buys
// shares: the first depositor's cut never dilutes the second.
func TestPutFeeAbsorbedBeforePricing(t *testing.T) {
	k, ctx, yield, _ := setupKeeper(t)
	pool := createTestPool(t, k, ctx)
	alice, bob := testAddr(0x01), testAddr(0x02)

	yield.putFee = math.LegacyNewDecWithPrec(2, 1)

	// Alice's 1000 lands as 800 in the source. The ledger still tracks 1000
	// until the next sync observes the shortfall.
	aliceShares := mustDeposit(t, k, ctx, alice, pool.PoolID, 1000)
	if !aliceShares.Equal(math.LegacyNewDec(1000)) {
		t.Fatalf("expected 1000 shares for first depositor, got %s", aliceShares.String())
	}

	// Bob's deposit syncs first: Alice's 200 fee hits principal, dropping the
	// price to 0.8 before Bob's shares are computed. Bob pays 1000 and gets
	// 1250 shares, worth exactly his contribution at the post-fee price.
	bobShares := mustDeposit(t, k, atTime(ctx, baseTime+600), bob, pool.PoolID, 1000)
	if !bobShares.Equal(math.LegacyNewDec(1250)) {
		t.Fatalf("expected 1250 shares at the post-fee price, got %s", bobShares.String())
	}

	pool = k.GetPool(ctx, pool.PoolID)
	if !pool.AllocatedPrincipal.Equal(math.LegacyNewDec(1800)) {
		t.Errorf("expected principal 1800, got %s", pool.AllocatedPrincipal.String())
	}
	if !pool.TotalShares.Equal(math.LegacyNewDec(2250)) {
		t.Errorf("expected 2250 total shares, got %s", pool.TotalShares.String())
	}

	// Bob's own fee is still latent. The next sync absorbs it pro rata across
	// the 2250 outstanding shares.
	delta, err := k.ProcessRewards(ctx, pool.PoolID)
	if err != nil {
		t.Fatalf("ProcessRewards failed: %v", err)
	}
	if !delta.Equal(math.LegacyNewDec(-200)) {
		t.Errorf("expected delta -200, got %s", delta.String())
	}
	pool = k.GetPool(ctx, pool.PoolID)
	if !pool.AllocatedPrincipal.Equal(math.LegacyNewDec(1600)) {
		t.Errorf("expected principal 1600, got %s", pool.AllocatedPrincipal.String())
	}
	checkConservation(t, k, ctx, yield, pool.PoolID)
}

// TestProcessRewardsUnknownPool tests the not-found error path.
func TestProcessRewardsUnknownPool(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)
	if _, err := k.ProcessRewards(ctx, 99); err != types.ErrPoolNotFound {
		t.Errorf("expected ErrPoolNotFound, got %v", err)
	}
}
