package drawkeeper

import (
	"sync"
	"time"
)

// Pool phase values mirrored from chain state
const (
	PhaseActive         = "active"
	PhaseAwaitingDraw   = "awaiting_draw"
	PhaseDrawProcessing = "draw_processing"
	PhaseIntermission   = "intermission"
)

// PoolState is the tracker's view of one pool, fed from chain events or
// queries and advanced optimistically as submissions succeed.
type PoolState struct {
	PoolID       uint64
	Phase        string
	RoundID      uint64
	RoundEndTime time.Time
	DrawInterval time.Duration

	LastSync   time.Time
	LastAction time.Time
}

// PoolTracker caches pool states for the tick loop
type PoolTracker struct {
	mu    sync.RWMutex
	pools map[uint64]*PoolState
}

// NewPoolTracker creates an empty tracker
func NewPoolTracker() *PoolTracker {
	return &PoolTracker{
		pools: make(map[uint64]*PoolState),
	}
}

// Set stores or replaces a pool state
func (t *PoolTracker) Set(state *PoolState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pools[state.PoolID] = state
}

// Get returns a copy of a pool state
func (t *PoolTracker) Get(poolID uint64) (PoolState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	state, ok := t.pools[poolID]
	if !ok {
		return PoolState{}, false
	}
	return *state, true
}

// Delete removes a pool from tracking
func (t *PoolTracker) Delete(poolID uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pools, poolID)
}

// Len returns the number of tracked pools
func (t *PoolTracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.pools)
}

// List returns copies of all tracked pool states
func (t *PoolTracker) List() []PoolState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	states := make([]PoolState, 0, len(t.pools))
	for _, state := range t.pools {
		states = append(states, *state)
	}
	return states
}

// Due returns pools that need a submission at the given instant: active
// rounds past their end time, and any pool mid-draw or in intermission.
func (t *PoolTracker) Due(now time.Time) []PoolState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	due := make([]PoolState, 0)
	for _, state := range t.pools {
		switch state.Phase {
		case PhaseActive, PhaseAwaitingDraw:
			if !state.RoundEndTime.After(now) {
				due = append(due, *state)
			}
		case PhaseDrawProcessing, PhaseIntermission:
			due = append(due, *state)
		}
	}
	return due
}

// advance mutates a tracked pool through a closure while holding the lock
func (t *PoolTracker) advance(poolID uint64, fn func(*PoolState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if state, ok := t.pools[poolID]; ok {
		fn(state)
	}
}
