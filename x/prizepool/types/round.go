package types

import (
	"cosmossdk.io/math"
)

// Round is one lottery round. While active its TWAB state is mutated by
// every deposit and withdrawal; the instant a draw starts it is frozen as
// the pool's pending round and a new active round begins.
type Round struct {
	PoolID  uint64 `json:"pool_id"`
	RoundID uint64 `json:"round_id"`

	StartTime     int64 `json:"start_time"`
	TargetEndTime int64 `json:"target_end_time"`

	// EligibilityDuration is the intended round length captured at creation.
	// It is the TWAB normalization divisor and never changes afterwards, so
	// entry math is immune to draw-interval churn mid-round.
	EligibilityDuration int64 `json:"eligibility_duration"`

	// Draw state, meaningful only once the round is frozen as pending.
	SnapshotTime     int64          `json:"snapshot_time,omitempty"`
	SnapshotCount    uint64         `json:"snapshot_count,omitempty"`
	BatchCursor      uint64         `json:"batch_cursor,omitempty"`
	RandomnessHandle string         `json:"randomness_handle,omitempty"`
	TotalEntries     math.LegacyDec `json:"total_entries"`
}

// NewRound creates an active round starting at now with the given intended
// duration.
func NewRound(poolID, roundID uint64, now, duration int64) *Round {
	return &Round{
		PoolID:              poolID,
		RoundID:             roundID,
		StartTime:           now,
		TargetEndTime:       now + duration,
		EligibilityDuration: duration,
		TotalEntries:        math.LegacyZeroDec(),
	}
}

// Ended reports whether the round's target end time has passed. The interval
// between Ended and the admin's startDraw call is the gap period: operations
// keep mutating this round's TWAB state until the snapshot.
func (r *Round) Ended(now int64) bool {
	return now >= r.TargetEndTime
}

// BatchComplete reports whether every snapshotted participant has been
// finalized for the pending draw.
func (r *Round) BatchComplete() bool {
	return r.BatchCursor >= r.SnapshotCount
}

// FinalizeEntries converts an accumulated weight into lottery entries:
// weight normalized by the eligibility duration, capped at the share balance
// held at snapshot time. The cap bounds entry credit at "held full shares
// for the whole round" no matter how long the gap period ran.
func (r *Round) FinalizeEntries(weight, sharesAtSnapshot math.LegacyDec) math.LegacyDec {
	if r.EligibilityDuration <= 0 || !weight.IsPositive() {
		return math.LegacyZeroDec()
	}
	entries := weight.Quo(math.LegacyNewDec(r.EligibilityDuration))
	if entries.GT(sharesAtSnapshot) {
		entries = sharesAtSnapshot
	}
	return entries
}

// PoolPhase derives the four-phase view for a pool and its active
// round at a given time. Pure function of stored state; there are no timers.
func PoolPhase(pool *Pool, active *Round, now int64) string {
	switch pool.DrawPhase {
	case DrawPhaseProcessing:
		return PhaseDrawProcessing
	case DrawPhaseIntermission:
		return PhaseIntermission
	}
	if active != nil && active.Ended(now) {
		return PhaseAwaitingDraw
	}
	return PhaseActive
}
