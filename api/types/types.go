package types

// PoolSummary is the public view of one savings pool
type PoolSummary struct {
	PoolID              uint64 `json:"pool_id"`
	Denom               string `json:"denom"`
	Phase               string `json:"phase"`
	LifecycleState      string `json:"lifecycle_state"`
	TotalShares         string `json:"total_shares"`
	SharePrice          string `json:"share_price"`
	AllocatedPrincipal  string `json:"allocated_principal"`
	AllocatedPrizeYield string `json:"allocated_prize_yield"`
	ProtocolFeeBucket   string `json:"protocol_fee_bucket"`
	MinimumDeposit      string `json:"minimum_deposit"`
	DrawIntervalSeconds int64  `json:"draw_interval_seconds"`
	ParticipantCount    uint64 `json:"participant_count"`

	ActiveRoundID      uint64 `json:"active_round_id"`
	RoundStartTime     int64  `json:"round_start_time"`
	RoundTargetEndTime int64  `json:"round_target_end_time"`
}

// PositionSummary is the public view of one depositor's stake
type PositionSummary struct {
	PoolID         uint64 `json:"pool_id"`
	Owner          string `json:"owner"`
	Shares         string `json:"shares"`
	AssetValue     string `json:"asset_value"`
	CurrentEntries string `json:"current_entries"`
	RoundID        uint64 `json:"round_id"`
	CreatedAt      int64  `json:"created_at"`
}

// DrawRecord is one completed draw
type DrawRecord struct {
	ResultID     string `json:"result_id"`
	PoolID       uint64 `json:"pool_id"`
	RoundID      uint64 `json:"round_id"`
	Winner       string `json:"winner,omitempty"`
	PrizeAmount  string `json:"prize_amount"`
	TotalEntries string `json:"total_entries"`
	Participants uint64 `json:"participants"`
	CompletedAt  int64  `json:"completed_at"`
}

// DrawStatus is the progress view of an in-flight draw
type DrawStatus struct {
	PoolID            uint64 `json:"pool_id"`
	RoundID           uint64 `json:"round_id"`
	SnapshotTime      int64  `json:"snapshot_time"`
	SnapshotCount     uint64 `json:"snapshot_count"`
	BatchCursor       uint64 `json:"batch_cursor"`
	BatchComplete     bool   `json:"batch_complete"`
	TotalEntries      string `json:"total_entries"`
	RandomnessPending bool   `json:"randomness_pending"`
}

// PoolService serves pool state to the REST and websocket layers. Implemented
// by the chain-backed service in production and a mock for development.
type PoolService interface {
	GetPools() ([]*PoolSummary, error)
	GetPool(poolID uint64) (*PoolSummary, error)
	GetPosition(poolID uint64, address string) (*PositionSummary, error)
	GetUserPools(address string) ([]uint64, error)
	GetDraws(poolID uint64, limit int) ([]*DrawRecord, error)
	GetDrawStatus(poolID uint64) (*DrawStatus, error)
}
