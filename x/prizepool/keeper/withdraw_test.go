package keeper

import (
	"errors"
	"testing"

	"cosmossdk.io/math"

	"github.com/openalpha/prize-savings/x/prizepool/types"
)

// TestWithdrawBurnsSharesAtPrice tests the round trip: deposit, withdraw
// part, balances and buckets reconcile.
func TestWithdrawBurnsSharesAtPrice(t *testing.T) {
	k, ctx, yield, _ := setupKeeper(t)
	pool := createTestPool(t, k, ctx)
	mustDeposit(t, k, ctx, testAddr(0x01), pool.PoolID, 1000)

	returned, burned, err := k.Withdraw(ctx, testAddr(0x01), pool.PoolID, math.LegacyNewDec(400))
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if !returned.Equal(math.LegacyNewDec(400)) {
		t.Errorf("expected 400 returned, got %s", returned.String())
	}
	if !burned.Equal(math.LegacyNewDec(400)) {
		t.Errorf("expected 400 shares burned at price 1.0, got %s", burned.String())
	}

	pool = k.GetPool(ctx, pool.PoolID)
	if !pool.AllocatedPrincipal.Equal(math.LegacyNewDec(600)) {
		t.Errorf("expected principal 600, got %s", pool.AllocatedPrincipal.String())
	}
	if !pool.TotalShares.Equal(math.LegacyNewDec(600)) {
		t.Errorf("expected total shares 600, got %s", pool.TotalShares.String())
	}
	checkConservation(t, k, ctx, yield, pool.PoolID)
}

// TestWithdrawAfterSurplus tests that a surplus settled before the
// withdrawal lets the depositor take out more than they put in.
func TestWithdrawAfterSurplus(t *testing.T) {
	k, ctx, yield, _ := setupKeeper(t)
	pool := createTestPool(t, k, ctx)
	mustDeposit(t, k, ctx, testAddr(0x01), pool.PoolID, 1000)

	yield.drift(pool.PoolID, math.LegacyNewDec(100))

	// Principal is 1070 against 1000 shares after the sync inside Withdraw.
	returned, burned, err := k.Withdraw(ctx, testAddr(0x01), pool.PoolID, math.LegacyNewDec(1070))
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if !returned.Equal(math.LegacyNewDec(1070)) {
		t.Errorf("expected 1070 returned, got %s", returned.String())
	}
	if !burned.Equal(math.LegacyNewDec(1000)) {
		t.Errorf("expected all 1000 shares burned, got %s", burned.String())
	}

	pos := k.GetPositionByOwner(ctx, pool.PoolID, testAddr(0x01))
	if !pos.Shares.IsZero() {
		t.Errorf("expected empty position, got %s shares", pos.Shares.String())
	}
	checkConservation(t, k, ctx, yield, pool.PoolID)
}

// TestWithdrawPartialDelivery tests that shares burned follow what the yield
// source actually released, not what was requested.
func TestWithdrawPartialDelivery(t *testing.T) {
	k, ctx, yield, _ := setupKeeper(t)
	pool := createTestPool(t, k, ctx)
	mustDeposit(t, k, ctx, testAddr(0x01), pool.PoolID, 1000)

	yield.takeCap = math.LegacyNewDec(600)

	returned, burned, err := k.Withdraw(ctx, testAddr(0x01), pool.PoolID, math.LegacyNewDec(1000))
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if !returned.Equal(math.LegacyNewDec(600)) {
		t.Errorf("expected 600 delivered, got %s", returned.String())
	}
	if !burned.Equal(math.LegacyNewDec(600)) {
		t.Errorf("expected 600 shares burned, got %s", burned.String())
	}

	pos := k.GetPositionByOwner(ctx, pool.PoolID, testAddr(0x01))
	if !pos.Shares.Equal(math.LegacyNewDec(400)) {
		t.Errorf("expected 400 shares remaining, got %s", pos.Shares.String())
	}
	checkConservation(t, k, ctx, yield, pool.PoolID)
}

// TestWithdrawMoreThanHeld tests the over-withdrawal rejection.
func TestWithdrawMoreThanHeld(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)
	pool := createTestPool(t, k, ctx)
	mustDeposit(t, k, ctx, testAddr(0x01), pool.PoolID, 1000)

	if _, _, err := k.Withdraw(ctx, testAddr(0x01), pool.PoolID, math.LegacyNewDec(1001)); !errors.Is(err, types.ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}
}

// TestWithdrawLifecycleGating tests that partial mode still allows exits
// while paused and emergency block them.
func TestWithdrawLifecycleGating(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)
	pool := createTestPool(t, k, ctx)
	mustDeposit(t, k, ctx, testAddr(0x01), pool.PoolID, 1000)

	if err := k.SetPoolState(ctx, pool.PoolID, types.PoolStatePartial, "degraded"); err != nil {
		t.Fatalf("SetPoolState failed: %v", err)
	}
	if _, _, err := k.Withdraw(ctx, testAddr(0x01), pool.PoolID, math.LegacyNewDec(100)); err != nil {
		t.Errorf("expected withdraw allowed in partial mode, got %v", err)
	}

	for _, state := range []string{types.PoolStatePaused, types.PoolStateEmergency} {
		if err := k.SetPoolState(ctx, pool.PoolID, state, "test"); err != nil {
			t.Fatalf("SetPoolState(%s) failed: %v", state, err)
		}
		if _, _, err := k.Withdraw(ctx, testAddr(0x01), pool.PoolID, math.LegacyNewDec(100)); !errors.Is(err, types.ErrNotOperational) {
			t.Errorf("state %s: expected ErrNotOperational, got %v", state, err)
		}
	}
}

// TestWithdrawWithoutPosition tests the unknown-depositor error path.
func TestWithdrawWithoutPosition(t *testing.T) {
	k, ctx, _, _ := setupKeeper(t)
	pool := createTestPool(t, k, ctx)
	mustDeposit(t, k, ctx, testAddr(0x01), pool.PoolID, 1000)

	if _, _, err := k.Withdraw(ctx, testAddr(0x02), pool.PoolID, math.LegacyNewDec(100)); !errors.Is(err, types.ErrPositionNotFound) {
		t.Errorf("expected ErrPositionNotFound, got %v", err)
	}
}
