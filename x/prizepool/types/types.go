package types

import (
	"cosmossdk.io/math"
)

// Module name and store key
const (
	ModuleName = "prizepool"
	StoreKey   = ModuleName
)

// Pool lifecycle states
const (
	PoolStateNormal    = "normal"
	PoolStatePaused    = "paused"
	PoolStateEmergency = "emergency"
	PoolStatePartial   = "partial" // withdraw-only degraded mode
)

// Round phases. Active and AwaitingDraw are derived from timestamps;
// DrawProcessing and Intermission are explicit markers set by the draw engine.
const (
	PhaseActive         = "active"
	PhaseAwaitingDraw   = "awaiting_draw"
	PhaseDrawProcessing = "draw_processing"
	PhaseIntermission   = "intermission"
)

// Draw phase markers stored on the pool. Empty means no draw in flight.
const (
	DrawPhaseNone         = ""
	DrawPhaseProcessing   = "processing"
	DrawPhaseIntermission = "intermission"
)

// MinimumDistributionThreshold is the smallest yield-source delta the sync
// will distribute. Deltas below it are rounding noise and are left in place
// rather than split across buckets (100x the smallest representable unit).
var MinimumDistributionThreshold = math.LegacyNewDecWithPrec(1, 16)

// Pool is one prize-linked savings product instance. Depositors own shares
// against AllocatedPrincipal; yield is split across the three allocation
// buckets by the distribution strategy. The bucket sum must reconcile with
// the yield source balance after every sync.
type Pool struct {
	PoolID      uint64         `json:"pool_id"`
	Denom       string         `json:"denom"`
	TotalShares math.LegacyDec `json:"total_shares"`

	// Allocation buckets
	AllocatedPrincipal   math.LegacyDec `json:"allocated_principal"`
	AllocatedPrizeYield  math.LegacyDec `json:"allocated_prize_yield"`
	AllocatedProtocolFee math.LegacyDec `json:"allocated_protocol_fee"`

	// Configuration
	MinimumDeposit      math.LegacyDec       `json:"minimum_deposit"`
	DrawIntervalSeconds int64                `json:"draw_interval_seconds"`
	Strategy            DistributionStrategy `json:"strategy"`

	// Lifecycle
	LifecycleState string `json:"lifecycle_state"`
	StateReason    string `json:"state_reason,omitempty"`
	StateChangedAt int64  `json:"state_changed_at,omitempty"`

	// Protocol fee treasury
	ProtocolFeeRecipient string         `json:"protocol_fee_recipient,omitempty"`
	UnclaimedProtocolFee math.LegacyDec `json:"unclaimed_protocol_fee"`

	// Draw engine marker; round timing lives on the Round records
	DrawPhase string `json:"draw_phase,omitempty"`

	// Participant arena counter; indexes are stable across the pool's life
	ParticipantCount uint64 `json:"participant_count"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// NewPool creates a pool in Normal state with empty buckets.
func NewPool(poolID uint64, denom string, minDeposit math.LegacyDec, drawInterval int64, strategy DistributionStrategy, now int64) *Pool {
	return &Pool{
		PoolID:               poolID,
		Denom:                denom,
		TotalShares:          math.LegacyZeroDec(),
		AllocatedPrincipal:   math.LegacyZeroDec(),
		AllocatedPrizeYield:  math.LegacyZeroDec(),
		AllocatedProtocolFee: math.LegacyZeroDec(),
		MinimumDeposit:       minDeposit,
		DrawIntervalSeconds:  drawInterval,
		Strategy:             strategy,
		LifecycleState:       PoolStateNormal,
		UnclaimedProtocolFee: math.LegacyZeroDec(),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// TrackedBalance is the ledger's view of the custodied funds: the sum of the
// three allocation buckets. Sync compares it against the yield source.
func (p *Pool) TrackedBalance() math.LegacyDec {
	return p.AllocatedPrincipal.Add(p.AllocatedPrizeYield).Add(p.AllocatedProtocolFee)
}

// SharePrice returns AllocatedPrincipal / TotalShares, the exchange rate
// between one share and the underlying asset. 1.0 while no shares exist.
func (p *Pool) SharePrice() math.LegacyDec {
	if p.TotalShares.IsZero() {
		return math.LegacyOneDec()
	}
	return p.AllocatedPrincipal.Quo(p.TotalShares)
}

// SharesForAmount converts an asset amount into shares at the current price.
// 1:1 when the pool has no outstanding shares, or when principal has been
// fully drained while shares remain (price would be zero).
func (p *Pool) SharesForAmount(amount math.LegacyDec) math.LegacyDec {
	if p.TotalShares.IsZero() || p.AllocatedPrincipal.IsZero() {
		return amount
	}
	return amount.Mul(p.TotalShares).Quo(p.AllocatedPrincipal)
}

// AmountForShares converts shares back into the underlying asset.
func (p *Pool) AmountForShares(shares math.LegacyDec) math.LegacyDec {
	if p.TotalShares.IsZero() {
		return math.LegacyZeroDec()
	}
	return shares.Mul(p.AllocatedPrincipal).Quo(p.TotalShares)
}

// CanDeposit reports whether the lifecycle state admits deposits.
func (p *Pool) CanDeposit() bool {
	return p.LifecycleState == PoolStateNormal
}

// CanWithdraw reports whether the lifecycle state admits withdrawals.
// PartialMode is withdraw-only: deposits and draws are blocked but
// depositors can still exit.
func (p *Pool) CanWithdraw() bool {
	return p.LifecycleState == PoolStateNormal || p.LifecycleState == PoolStatePartial
}

// CanDraw reports whether the lifecycle state admits draw operations.
func (p *Pool) CanDraw() bool {
	return p.LifecycleState == PoolStateNormal
}

// ValidLifecycleState reports whether s names a known lifecycle state.
func ValidLifecycleState(s string) bool {
	switch s {
	case PoolStateNormal, PoolStatePaused, PoolStateEmergency, PoolStatePartial:
		return true
	}
	return false
}

// Position is one depositor's stake in one pool, with the embedded TWAB
// record used as lottery-entry weight.
type Position struct {
	PoolID           uint64         `json:"pool_id"`
	ParticipantIndex uint64         `json:"participant_index"`
	Owner            string         `json:"owner"`
	Shares           math.LegacyDec `json:"shares"`

	// TWAB state for RoundID. WeightAccumulator is balance integrated over
	// seconds since the position entered the round.
	RoundID           uint64         `json:"round_id"`
	LastUpdateTime    int64          `json:"last_update_time"`
	WeightAccumulator math.LegacyDec `json:"weight_accumulator"`

	// Draw finalization. Entries for FinalizedRoundID, written once either
	// by batch processing or lazily by the first touch after a snapshot.
	FinalizedRoundID uint64         `json:"finalized_round_id,omitempty"`
	FinalizedEntries math.LegacyDec `json:"finalized_entries"`

	CreatedAt int64 `json:"created_at"`
}

// NewPosition creates an empty position entering the given round at now.
func NewPosition(poolID, index uint64, owner string, roundID uint64, now int64) *Position {
	return &Position{
		PoolID:            poolID,
		ParticipantIndex:  index,
		Owner:             owner,
		Shares:            math.LegacyZeroDec(),
		RoundID:           roundID,
		LastUpdateTime:    now,
		WeightAccumulator: math.LegacyZeroDec(),
		FinalizedEntries:  math.LegacyZeroDec(),
	}
}

// AccrueWeight folds elapsed holding time into the weight accumulator and
// stamps the position at now. Elapsed time before roundStart is excluded so
// gap-period joiners only accrue from the round they were deferred into.
func (pos *Position) AccrueWeight(roundStart, now int64) {
	from := pos.LastUpdateTime
	if from < roundStart {
		from = roundStart
	}
	if now > from {
		elapsed := math.LegacyNewDec(now - from)
		pos.WeightAccumulator = pos.WeightAccumulator.Add(pos.Shares.Mul(elapsed))
	}
	pos.LastUpdateTime = now
}

// EnterRound resets TWAB state into a round. Holding history prior to the
// round's start is credited from roundStart, so a position that rolled over
// an entire round boundary starts with the weight it earned since the new
// round began.
func (pos *Position) EnterRound(roundID uint64, roundStart, now int64) {
	pos.RoundID = roundID
	pos.WeightAccumulator = math.LegacyZeroDec()
	pos.LastUpdateTime = roundStart
	pos.AccrueWeight(roundStart, now)
}

// DrawResult records one completed draw for query and history consumers.
type DrawResult struct {
	ResultID    string         `json:"result_id"`
	PoolID      uint64         `json:"pool_id"`
	RoundID     uint64         `json:"round_id"`
	Winner      string         `json:"winner,omitempty"`
	PrizeAmount math.LegacyDec `json:"prize_amount"`
	TotalEntries math.LegacyDec `json:"total_entries"`
	Participants uint64        `json:"participants"`
	CompletedAt int64          `json:"completed_at"`
}
