package types

import (
	"testing"

	"cosmossdk.io/math"
)

func testPool() *Pool {
	return NewPool(1, "stake", math.LegacyNewDec(100), 86400, DefaultDistributionStrategy(), 1000)
}

// TestNewPool tests pool construction defaults.
func TestNewPool(t *testing.T) {
	pool := testPool()

	if pool.LifecycleState != PoolStateNormal {
		t.Errorf("expected normal state, got %s", pool.LifecycleState)
	}
	if !pool.TotalShares.IsZero() || !pool.TrackedBalance().IsZero() {
		t.Error("expected empty ledger on creation")
	}
	if pool.DrawPhase != DrawPhaseNone {
		t.Errorf("expected no draw phase, got %q", pool.DrawPhase)
	}
	if !pool.SharePrice().Equal(math.LegacyOneDec()) {
		t.Errorf("expected bootstrap price 1.0, got %s", pool.SharePrice().String())
	}
}

// TestSharePriceIgnoresReserveBuckets tests that only principal backs shares.
func TestSharePriceIgnoresReserveBuckets(t *testing.T) {
	pool := testPool()
	pool.TotalShares = math.LegacyNewDec(1000)
	pool.AllocatedPrincipal = math.LegacyNewDec(1070)
	pool.AllocatedPrizeYield = math.LegacyNewDec(20)
	pool.AllocatedProtocolFee = math.LegacyNewDec(10)

	if !pool.SharePrice().Equal(math.LegacyMustNewDecFromStr("1.07")) {
		t.Errorf("expected price 1.07, got %s", pool.SharePrice().String())
	}
	if !pool.TrackedBalance().Equal(math.LegacyNewDec(1100)) {
		t.Errorf("expected tracked 1100, got %s", pool.TrackedBalance().String())
	}
}

// TestShareConversions tests the amount/share round trip and the degenerate
// 1:1 cases.
func TestShareConversions(t *testing.T) {
	pool := testPool()

	// Bootstrap: no shares outstanding.
	if !pool.SharesForAmount(math.LegacyNewDec(500)).Equal(math.LegacyNewDec(500)) {
		t.Error("expected 1:1 conversion with no shares outstanding")
	}
	if !pool.AmountForShares(math.LegacyNewDec(500)).IsZero() {
		t.Error("expected zero amount with no shares outstanding")
	}

	pool.TotalShares = math.LegacyNewDec(1000)
	pool.AllocatedPrincipal = math.LegacyNewDec(2000)
	if !pool.SharesForAmount(math.LegacyNewDec(100)).Equal(math.LegacyNewDec(50)) {
		t.Errorf("expected 50 shares at price 2.0, got %s",
			pool.SharesForAmount(math.LegacyNewDec(100)).String())
	}
	if !pool.AmountForShares(math.LegacyNewDec(50)).Equal(math.LegacyNewDec(100)) {
		t.Errorf("expected 100 for 50 shares, got %s",
			pool.AmountForShares(math.LegacyNewDec(50)).String())
	}

	// Principal fully drained while shares remain: back to 1:1 rather than a
	// division by zero.
	pool.AllocatedPrincipal = math.LegacyZeroDec()
	if !pool.SharesForAmount(math.LegacyNewDec(100)).Equal(math.LegacyNewDec(100)) {
		t.Error("expected 1:1 conversion with drained principal")
	}
}

// TestLifecycleGates tests the per-state operation matrix.
func TestLifecycleGates(t *testing.T) {
	testCases := []struct {
		state                       string
		deposit, withdraw, drawable bool
	}{
		{PoolStateNormal, true, true, true},
		{PoolStatePaused, false, false, false},
		{PoolStatePartial, false, true, false},
		{PoolStateEmergency, false, false, false},
	}

	for _, tc := range testCases {
		pool := testPool()
		pool.LifecycleState = tc.state
		if pool.CanDeposit() != tc.deposit {
			t.Errorf("state %s: CanDeposit = %v, expected %v", tc.state, pool.CanDeposit(), tc.deposit)
		}
		if pool.CanWithdraw() != tc.withdraw {
			t.Errorf("state %s: CanWithdraw = %v, expected %v", tc.state, pool.CanWithdraw(), tc.withdraw)
		}
		if pool.CanDraw() != tc.drawable {
			t.Errorf("state %s: CanDraw = %v, expected %v", tc.state, pool.CanDraw(), tc.drawable)
		}
	}

	if ValidLifecycleState("frozen") {
		t.Error("expected unknown state rejected")
	}
}

// TestAccrueWeight tests time-weighted accumulation and the round-start clamp.
func TestAccrueWeight(t *testing.T) {
	pos := NewPosition(1, 0, "owner", 1, 1000)
	pos.Shares = math.LegacyNewDec(10)

	pos.AccrueWeight(1000, 1600)
	if !pos.WeightAccumulator.Equal(math.LegacyNewDec(6000)) {
		t.Errorf("expected weight 6000, got %s", pos.WeightAccumulator.String())
	}
	if pos.LastUpdateTime != 1600 {
		t.Errorf("expected stamp 1600, got %d", pos.LastUpdateTime)
	}

	// Time before the round start is excluded.
	stale := NewPosition(1, 0, "owner", 2, 500)
	stale.Shares = math.LegacyNewDec(10)
	stale.AccrueWeight(1000, 1100)
	if !stale.WeightAccumulator.Equal(math.LegacyNewDec(1000)) {
		t.Errorf("expected weight 1000 from round start only, got %s", stale.WeightAccumulator.String())
	}

	// Clock going nowhere accrues nothing.
	pos.AccrueWeight(1000, 1600)
	if !pos.WeightAccumulator.Equal(math.LegacyNewDec(6000)) {
		t.Errorf("expected weight unchanged, got %s", pos.WeightAccumulator.String())
	}
}

// TestEnterRound tests the reset crediting holding time from the new round's
// start.
func TestEnterRound(t *testing.T) {
	pos := NewPosition(1, 0, "owner", 1, 1000)
	pos.Shares = math.LegacyNewDec(10)
	pos.AccrueWeight(1000, 5000)

	// Rolled over a boundary: round 2 started at 4000, touched at 4500.
	pos.EnterRound(2, 4000, 4500)
	if pos.RoundID != 2 {
		t.Errorf("expected round 2, got %d", pos.RoundID)
	}
	if !pos.WeightAccumulator.Equal(math.LegacyNewDec(5000)) {
		t.Errorf("expected weight 5000 for 500s held, got %s", pos.WeightAccumulator.String())
	}
	if pos.LastUpdateTime != 4500 {
		t.Errorf("expected stamp 4500, got %d", pos.LastUpdateTime)
	}
}
