package keeper

import (
	"encoding/binary"
	"encoding/json"
	"strconv"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/prize-savings/x/prizepool/types"
)

func formatU64(v uint64) string { return strconv.FormatUint(v, 10) }
func formatI64(v int64) string  { return strconv.FormatInt(v, 10) }

// Store key prefixes
var (
	PoolKeyPrefix             = []byte{0x01}
	PositionKeyPrefix         = []byte{0x02}
	ParticipantIndexKeyPrefix = []byte{0x03} // poolID|addr -> index
	ParticipantAddrKeyPrefix  = []byte{0x04} // poolID|index -> addr
	ActiveRoundKeyPrefix      = []byte{0x05}
	PendingRoundKeyPrefix     = []byte{0x06}
	DrawResultKeyPrefix       = []byte{0x07}
	PoolCounterKey            = []byte{0x08}
)

// Keeper manages the prizepool module state. All mutating entry points run
// transactionally under the host's serialization; round phase is always
// derived from stored timestamps, never from timers.
type Keeper struct {
	cdc        codec.BinaryCodec
	storeKey   storetypes.StoreKey
	bank       types.BankKeeper
	yield      types.YieldSource
	randomness types.RandomnessSource
	logger     log.Logger
	authority  string
}

// NewKeeper creates a new prizepool keeper.
func NewKeeper(
	cdc codec.BinaryCodec,
	storeKey storetypes.StoreKey,
	bank types.BankKeeper,
	yield types.YieldSource,
	randomness types.RandomnessSource,
	authority string,
	logger log.Logger,
) *Keeper {
	return &Keeper{
		cdc:        cdc,
		storeKey:   storeKey,
		bank:       bank,
		yield:      yield,
		randomness: randomness,
		authority:  authority,
		logger:     logger.With("module", "x/prizepool"),
	}
}

// Logger returns the module logger
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// GetAuthority returns the admin authority address
func (k *Keeper) GetAuthority() string {
	return k.authority
}

// GetStore returns the KVStore
func (k *Keeper) GetStore(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

func u64Key(prefix []byte, id uint64) []byte {
	key := make([]byte, len(prefix)+8)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], id)
	return key
}

func u64PairKey(prefix []byte, a, b uint64) []byte {
	key := make([]byte, len(prefix)+16)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], a)
	binary.BigEndian.PutUint64(key[len(prefix)+8:], b)
	return key
}

// ============ Pool Operations ============

// SetPool saves a pool to the store
func (k *Keeper) SetPool(ctx sdk.Context, pool *types.Pool) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(pool)
	store.Set(u64Key(PoolKeyPrefix, pool.PoolID), bz)
}

// GetPool retrieves a pool from the store
func (k *Keeper) GetPool(ctx sdk.Context, poolID uint64) *types.Pool {
	store := k.GetStore(ctx)
	bz := store.Get(u64Key(PoolKeyPrefix, poolID))
	if bz == nil {
		return nil
	}
	var pool types.Pool
	if err := json.Unmarshal(bz, &pool); err != nil {
		return nil
	}
	return &pool
}

// GetAllPools returns all pools
func (k *Keeper) GetAllPools(ctx sdk.Context) []*types.Pool {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, PoolKeyPrefix)
	defer iterator.Close()

	var pools []*types.Pool
	for ; iterator.Valid(); iterator.Next() {
		var pool types.Pool
		if err := json.Unmarshal(iterator.Value(), &pool); err != nil {
			continue
		}
		pools = append(pools, &pool)
	}
	return pools
}

// NextPoolID increments and returns the monotonic pool counter.
func (k *Keeper) NextPoolID(ctx sdk.Context) uint64 {
	store := k.GetStore(ctx)
	next := uint64(1)
	if bz := store.Get(PoolCounterKey); bz != nil {
		next = binary.BigEndian.Uint64(bz) + 1
	}
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, next)
	store.Set(PoolCounterKey, bz)
	return next
}

// ============ Position Operations ============

// SetPosition saves a position to the store
func (k *Keeper) SetPosition(ctx sdk.Context, pos *types.Position) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(pos)
	store.Set(u64PairKey(PositionKeyPrefix, pos.PoolID, pos.ParticipantIndex), bz)
}

// GetPosition retrieves a position by its stable participant index
func (k *Keeper) GetPosition(ctx sdk.Context, poolID, index uint64) *types.Position {
	store := k.GetStore(ctx)
	bz := store.Get(u64PairKey(PositionKeyPrefix, poolID, index))
	if bz == nil {
		return nil
	}
	var pos types.Position
	if err := json.Unmarshal(bz, &pos); err != nil {
		return nil
	}
	return &pos
}

// GetParticipantIndex resolves an address to its stable index in a pool.
func (k *Keeper) GetParticipantIndex(ctx sdk.Context, poolID uint64, addr string) (uint64, bool) {
	store := k.GetStore(ctx)
	key := append(u64Key(ParticipantIndexKeyPrefix, poolID), []byte(addr)...)
	bz := store.Get(key)
	if bz == nil {
		return 0, false
	}
	return binary.BigEndian.Uint64(bz), true
}

// GetParticipantAddr is the reverse lookup used by batch processing.
func (k *Keeper) GetParticipantAddr(ctx sdk.Context, poolID, index uint64) string {
	store := k.GetStore(ctx)
	return string(store.Get(u64PairKey(ParticipantAddrKeyPrefix, poolID, index)))
}

// GetPositionByOwner retrieves a position by owner address.
func (k *Keeper) GetPositionByOwner(ctx sdk.Context, poolID uint64, addr string) *types.Position {
	index, ok := k.GetParticipantIndex(ctx, poolID, addr)
	if !ok {
		return nil
	}
	return k.GetPosition(ctx, poolID, index)
}

// registerParticipant assigns the next stable index to a new depositor and
// records both directions of the lookup. Indexes are never reused, so the
// batch cursor stays valid across the pool's whole life.
func (k *Keeper) registerParticipant(ctx sdk.Context, pool *types.Pool, addr string) uint64 {
	store := k.GetStore(ctx)
	index := pool.ParticipantCount
	pool.ParticipantCount++

	idxBz := make([]byte, 8)
	binary.BigEndian.PutUint64(idxBz, index)
	store.Set(append(u64Key(ParticipantIndexKeyPrefix, pool.PoolID), []byte(addr)...), idxBz)
	store.Set(u64PairKey(ParticipantAddrKeyPrefix, pool.PoolID, index), []byte(addr))
	return index
}

// GetUserPools returns the IDs of every pool the address holds a position in.
func (k *Keeper) GetUserPools(ctx sdk.Context, addr string) []uint64 {
	var ids []uint64
	for _, pool := range k.GetAllPools(ctx) {
		if _, ok := k.GetParticipantIndex(ctx, pool.PoolID, addr); ok {
			ids = append(ids, pool.PoolID)
		}
	}
	return ids
}

// ============ Round Operations ============

// SetActiveRound saves the pool's active round
func (k *Keeper) SetActiveRound(ctx sdk.Context, round *types.Round) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(round)
	store.Set(u64Key(ActiveRoundKeyPrefix, round.PoolID), bz)
}

// GetActiveRound retrieves the pool's active round
func (k *Keeper) GetActiveRound(ctx sdk.Context, poolID uint64) *types.Round {
	store := k.GetStore(ctx)
	bz := store.Get(u64Key(ActiveRoundKeyPrefix, poolID))
	if bz == nil {
		return nil
	}
	var round types.Round
	if err := json.Unmarshal(bz, &round); err != nil {
		return nil
	}
	return &round
}

// SetPendingRound saves the frozen round an in-flight draw is working over
func (k *Keeper) SetPendingRound(ctx sdk.Context, round *types.Round) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(round)
	store.Set(u64Key(PendingRoundKeyPrefix, round.PoolID), bz)
}

// GetPendingRound retrieves the frozen round, nil when no draw is in flight
func (k *Keeper) GetPendingRound(ctx sdk.Context, poolID uint64) *types.Round {
	store := k.GetStore(ctx)
	bz := store.Get(u64Key(PendingRoundKeyPrefix, poolID))
	if bz == nil {
		return nil
	}
	var round types.Round
	if err := json.Unmarshal(bz, &round); err != nil {
		return nil
	}
	return &round
}

// DeletePendingRound clears the frozen round after its draw completes
func (k *Keeper) DeletePendingRound(ctx sdk.Context, poolID uint64) {
	store := k.GetStore(ctx)
	store.Delete(u64Key(PendingRoundKeyPrefix, poolID))
}

// ============ Draw Result Operations ============

// SetDrawResult saves a completed draw record
func (k *Keeper) SetDrawResult(ctx sdk.Context, result *types.DrawResult) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(result)
	store.Set(u64PairKey(DrawResultKeyPrefix, result.PoolID, result.RoundID), bz)
}

// GetDrawResult retrieves the draw record for a round
func (k *Keeper) GetDrawResult(ctx sdk.Context, poolID, roundID uint64) *types.DrawResult {
	store := k.GetStore(ctx)
	bz := store.Get(u64PairKey(DrawResultKeyPrefix, poolID, roundID))
	if bz == nil {
		return nil
	}
	var result types.DrawResult
	if err := json.Unmarshal(bz, &result); err != nil {
		return nil
	}
	return &result
}

// GetDrawResults returns all draw records for a pool in round order.
func (k *Keeper) GetDrawResults(ctx sdk.Context, poolID uint64) []*types.DrawResult {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, u64Key(DrawResultKeyPrefix, poolID))
	defer iterator.Close()

	var results []*types.DrawResult
	for ; iterator.Valid(); iterator.Next() {
		var result types.DrawResult
		if err := json.Unmarshal(iterator.Value(), &result); err != nil {
			continue
		}
		results = append(results, &result)
	}
	return results
}

// CreatePool creates a pool and its first active round (admin).
func (k *Keeper) CreatePool(ctx sdk.Context, denom string, minDeposit math.LegacyDec, drawInterval int64, strategy types.DistributionStrategy) (*types.Pool, error) {
	if err := strategy.Validate(); err != nil {
		return nil, err
	}
	if minDeposit.IsNegative() {
		return nil, types.ErrInvalidAmount
	}
	if drawInterval <= 0 {
		return nil, types.ErrInvalidTiming
	}

	now := ctx.BlockTime().Unix()
	pool := types.NewPool(k.NextPoolID(ctx), denom, minDeposit, drawInterval, strategy, now)
	round := types.NewRound(pool.PoolID, 1, now, drawInterval)

	k.SetPool(ctx, pool)
	k.SetActiveRound(ctx, round)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"prizepool_pool_created",
			sdk.NewAttribute("pool_id", formatU64(pool.PoolID)),
			sdk.NewAttribute("denom", denom),
			sdk.NewAttribute("minimum_deposit", minDeposit.String()),
			sdk.NewAttribute("draw_interval", formatI64(drawInterval)),
		),
	)

	k.logger.Info("Pool created",
		"pool_id", pool.PoolID,
		"minimum_deposit", minDeposit.String(),
		"draw_interval", drawInterval,
	)

	return pool, nil
}
