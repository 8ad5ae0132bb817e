package api

import (
	"fmt"
	"sync"
	"time"

	"github.com/openalpha/prize-savings/api/types"
)

// MockService serves deterministic pool data for development and frontend
// work without a running chain.
type MockService struct {
	mu    sync.RWMutex
	pools map[uint64]*types.PoolSummary
	draws map[uint64][]*types.DrawRecord
}

// NewMockService creates a mock service seeded with two pools and a short
// draw history.
func NewMockService() *MockService {
	now := time.Now().Unix()
	s := &MockService{
		pools: make(map[uint64]*types.PoolSummary),
		draws: make(map[uint64][]*types.DrawRecord),
	}

	s.pools[1] = &types.PoolSummary{
		PoolID:              1,
		Denom:               "uusdc",
		Phase:               "active",
		LifecycleState:      "normal",
		TotalShares:         "2500000.000000000000000000",
		SharePrice:          "1.034000000000000000",
		AllocatedPrincipal:  "2585000.000000000000000000",
		AllocatedPrizeYield: "12400.000000000000000000",
		ProtocolFeeBucket:   "6200.000000000000000000",
		MinimumDeposit:      "100.000000000000000000",
		DrawIntervalSeconds: 604800,
		ParticipantCount:    412,
		ActiveRoundID:       9,
		RoundStartTime:      now - 250000,
		RoundTargetEndTime:  now + 354800,
	}
	s.pools[2] = &types.PoolSummary{
		PoolID:              2,
		Denom:               "stake",
		Phase:               "draw_processing",
		LifecycleState:      "normal",
		TotalShares:         "800000.000000000000000000",
		SharePrice:          "1.002000000000000000",
		AllocatedPrincipal:  "801600.000000000000000000",
		AllocatedPrizeYield: "3000.000000000000000000",
		ProtocolFeeBucket:   "900.000000000000000000",
		MinimumDeposit:      "10.000000000000000000",
		DrawIntervalSeconds: 86400,
		ParticipantCount:    97,
		ActiveRoundID:       31,
		RoundStartTime:      now - 1200,
		RoundTargetEndTime:  now + 85200,
	}

	s.draws[1] = []*types.DrawRecord{
		{
			ResultID:     "b3f2a6f0-5a61-4e6a-9f6e-8f4f3f1c2d01",
			PoolID:       1,
			RoundID:      8,
			Winner:       "cosmos1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5lzv7xu",
			PrizeAmount:  "11800.000000000000000000",
			TotalEntries: "2310544.120000000000000000",
			Participants: 398,
			CompletedAt:  now - 255000,
		},
		{
			ResultID:     "7c1d9f42-0b8e-4f2a-b9f1-0a2c4e6d8b02",
			PoolID:       1,
			RoundID:      7,
			Winner:       "cosmos1xyerxdp4xcmnswfsxyerxdp4xcmnswfs08wgfc",
			PrizeAmount:  "9650.000000000000000000",
			TotalEntries: "2107911.000000000000000000",
			Participants: 371,
			CompletedAt:  now - 860000,
		},
	}

	return s
}

// GetPools returns all pools
func (s *MockService) GetPools() ([]*types.PoolSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pools := make([]*types.PoolSummary, 0, len(s.pools))
	for _, p := range s.pools {
		pools = append(pools, p)
	}
	return pools, nil
}

// GetPool returns a single pool
func (s *MockService) GetPool(poolID uint64) (*types.PoolSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool, ok := s.pools[poolID]
	if !ok {
		return nil, fmt.Errorf("pool %d not found", poolID)
	}
	return pool, nil
}

// GetPosition returns a synthetic position for any address
func (s *MockService) GetPosition(poolID uint64, address string) (*types.PositionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool, ok := s.pools[poolID]
	if !ok {
		return nil, fmt.Errorf("pool %d not found", poolID)
	}
	return &types.PositionSummary{
		PoolID:         poolID,
		Owner:          address,
		Shares:         "1250.000000000000000000",
		AssetValue:     "1292.500000000000000000",
		CurrentEntries: "873.400000000000000000",
		RoundID:        pool.ActiveRoundID,
		CreatedAt:      time.Now().Unix() - 1800000,
	}, nil
}

// GetUserPools returns the pools an address participates in
func (s *MockService) GetUserPools(address string) ([]uint64, error) {
	return []uint64{1}, nil
}

// GetDraws returns draw history, newest first
func (s *MockService) GetDraws(poolID uint64, limit int) ([]*types.DrawRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	draws := s.draws[poolID]
	if limit > 0 && limit < len(draws) {
		draws = draws[:limit]
	}
	return draws, nil
}

// GetDrawStatus returns draw progress for pools mid-draw
func (s *MockService) GetDrawStatus(poolID uint64) (*types.DrawStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool, ok := s.pools[poolID]
	if !ok {
		return nil, fmt.Errorf("pool %d not found", poolID)
	}
	if pool.Phase != "draw_processing" {
		return nil, fmt.Errorf("pool %d has no draw in flight", poolID)
	}
	return &types.DrawStatus{
		PoolID:            poolID,
		RoundID:           pool.ActiveRoundID - 1,
		SnapshotTime:      pool.RoundStartTime,
		SnapshotCount:     pool.ParticipantCount,
		BatchCursor:       64,
		BatchComplete:     false,
		TotalEntries:      "512223.000000000000000000",
		RandomnessPending: true,
	}, nil
}
