package keeper

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/prize-savings/x/prizepool/types"

	"context"
)

const (
	baseTime     = int64(1700000000)
	drawInterval = int64(86400)
)

// mockYieldSource holds per-pool balances in memory. Tests drift the balance
// directly to simulate external yield or loss.
type mockYieldSource struct {
	balances map[uint64]math.LegacyDec

	// takeCap limits what a single Take delivers, simulating a source that
	// cannot release the full request. Nil means deliver everything available.
	takeCap math.LegacyDec

	// putFee shaves a proportional cut off every Put, simulating a source
	// that charges an entry fee on custody. Nil means fee-free.
	putFee math.LegacyDec
}

func newMockYieldSource() *mockYieldSource {
	return &mockYieldSource{balances: make(map[uint64]math.LegacyDec)}
}

func (m *mockYieldSource) balance(poolID uint64) math.LegacyDec {
	if bal, ok := m.balances[poolID]; ok {
		return bal
	}
	return math.LegacyZeroDec()
}

// drift moves the actual balance without the ledger's knowledge.
func (m *mockYieldSource) drift(poolID uint64, delta math.LegacyDec) {
	m.balances[poolID] = m.balance(poolID).Add(delta)
}

func (m *mockYieldSource) Put(_ sdk.Context, poolID uint64, amount math.LegacyDec) error {
	if !m.putFee.IsNil() {
		amount = amount.Sub(amount.Mul(m.putFee))
	}
	m.balances[poolID] = m.balance(poolID).Add(amount)
	return nil
}

func (m *mockYieldSource) Take(_ sdk.Context, poolID uint64, requested math.LegacyDec) (math.LegacyDec, error) {
	actual := requested
	if !m.takeCap.IsNil() && actual.GT(m.takeCap) {
		actual = m.takeCap
	}
	if bal := m.balance(poolID); actual.GT(bal) {
		actual = bal
	}
	m.balances[poolID] = m.balance(poolID).Sub(actual)
	return actual, nil
}

func (m *mockYieldSource) Balance(_ sdk.Context, poolID uint64) (math.LegacyDec, error) {
	return m.balance(poolID), nil
}

// mockRandomness returns a fixed word once the test flips pending off.
type mockRandomness struct {
	pending bool
	value   math.Int
}

func (m *mockRandomness) Request(sdk.Context) (string, error) {
	return "handle-1", nil
}

func (m *mockRandomness) Fulfilled(_ sdk.Context, _ string) (math.Int, bool, error) {
	if m.pending {
		return math.ZeroInt(), false, nil
	}
	return m.value, true, nil
}

type mockBankKeeper struct{}

func (mockBankKeeper) SendCoinsFromAccountToModule(context.Context, sdk.AccAddress, string, sdk.Coins) error {
	return nil
}

func (mockBankKeeper) SendCoinsFromModuleToAccount(context.Context, string, sdk.AccAddress, sdk.Coins) error {
	return nil
}

func (mockBankKeeper) SendCoinsFromModuleToModule(context.Context, string, string, sdk.Coins) error {
	return nil
}

func (mockBankKeeper) GetBalance(context.Context, sdk.AccAddress, string) sdk.Coin {
	return sdk.Coin{Denom: "stake", Amount: math.ZeroInt()}
}

var testAuthority = testAddr(0xAA)

// testAddr derives a deterministic bech32 address from a seed byte.
func testAddr(seed byte) string {
	addr := make([]byte, 20)
	for i := range addr {
		addr[i] = seed
	}
	return sdk.AccAddress(addr).String()
}

// setupKeeper creates a test keeper backed by an in-memory store, with mock
// yield and randomness sources the test can steer.
func setupKeeper(tb testing.TB) (*Keeper, sdk.Context, *mockYieldSource, *mockRandomness) {
	tb.Helper()

	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	if err := stateStore.LoadLatestVersion(); err != nil {
		tb.Fatalf("failed to load store: %v", err)
	}

	ctx := sdk.NewContext(stateStore, cmtproto.Header{}, false, log.NewNopLogger()).
		WithBlockTime(time.Unix(baseTime, 0))

	interfaceRegistry := codectypes.NewInterfaceRegistry()
	cdc := codec.NewProtoCodec(interfaceRegistry)

	yield := newMockYieldSource()
	random := &mockRandomness{value: math.NewInt(12345)}
	keeper := NewKeeper(cdc, storeKey, mockBankKeeper{}, yield, random, testAuthority, log.NewNopLogger())

	return keeper, ctx, yield, random
}

// createTestPool creates a pool with a 100 minimum deposit, a one-day draw
// interval and the default 70/20/10 strategy.
func createTestPool(tb testing.TB, k *Keeper, ctx sdk.Context) *types.Pool {
	tb.Helper()
	pool, err := k.CreatePool(ctx, "stake", math.LegacyNewDec(100), drawInterval, types.DefaultDistributionStrategy())
	if err != nil {
		tb.Fatalf("failed to create pool: %v", err)
	}
	return pool
}

// atTime returns the context with its block time moved to the given unix time.
func atTime(ctx sdk.Context, unix int64) sdk.Context {
	return ctx.WithBlockTime(time.Unix(unix, 0))
}

func mustDeposit(tb testing.TB, k *Keeper, ctx sdk.Context, addr string, poolID uint64, amount int64) math.LegacyDec {
	tb.Helper()
	shares, err := k.Deposit(ctx, addr, poolID, math.LegacyNewDec(amount))
	if err != nil {
		tb.Fatalf("deposit of %d failed: %v", amount, err)
	}
	return shares
}

// checkConservation verifies the allocation buckets sum to the yield source's
// actual balance.
func checkConservation(tb testing.TB, k *Keeper, ctx sdk.Context, yield *mockYieldSource, poolID uint64) {
	tb.Helper()
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		tb.Fatalf("pool %d not found", poolID)
	}
	actual := yield.balance(poolID)
	if !pool.TrackedBalance().Equal(actual) {
		tb.Errorf("conservation violated: tracked %s, yield source holds %s",
			pool.TrackedBalance().String(), actual.String())
	}
}
