package types

import (
	"cosmossdk.io/math"
)

// PoolInfo is the query view of a pool with its derived phase and round
// timing folded in.
type PoolInfo struct {
	Pool       *Pool          `json:"pool"`
	Phase      string         `json:"phase"`
	SharePrice math.LegacyDec `json:"share_price"`

	ActiveRoundID      uint64 `json:"active_round_id"`
	RoundStartTime     int64  `json:"round_start_time"`
	RoundTargetEndTime int64  `json:"round_target_end_time"`
}

// PositionInfo is the query view of one depositor's stake, including the
// asset value of the shares at the current price and a non-mutating entries
// estimate for the relevant round.
type PositionInfo struct {
	Position       *Position      `json:"position"`
	AssetValue     math.LegacyDec `json:"asset_value"`
	CurrentEntries math.LegacyDec `json:"current_entries"`
}

// TreasuryInfo is the query view of a pool's protocol fee accounting.
type TreasuryInfo struct {
	PoolID               uint64         `json:"pool_id"`
	Recipient            string         `json:"recipient,omitempty"`
	AllocatedProtocolFee math.LegacyDec `json:"allocated_protocol_fee"`
	UnclaimedProtocolFee math.LegacyDec `json:"unclaimed_protocol_fee"`
}

// EmergencyInfo is the query view of a pool's lifecycle state.
type EmergencyInfo struct {
	PoolID         uint64 `json:"pool_id"`
	LifecycleState string `json:"lifecycle_state"`
	Reason         string `json:"reason,omitempty"`
	StateChangedAt int64  `json:"state_changed_at,omitempty"`
}

// DrawStatus reports the progress of an in-flight draw.
type DrawStatus struct {
	PoolID           uint64         `json:"pool_id"`
	RoundID          uint64         `json:"round_id"`
	SnapshotTime     int64          `json:"snapshot_time"`
	SnapshotCount    uint64         `json:"snapshot_count"`
	BatchCursor      uint64         `json:"batch_cursor"`
	BatchComplete    bool           `json:"batch_complete"`
	TotalEntries     math.LegacyDec `json:"total_entries"`
	RandomnessHandle string         `json:"randomness_handle"`
}
