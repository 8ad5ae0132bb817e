package drawkeeper

import (
	"context"
	"log"
	"sync"
	"time"
)

// Config holds the draw keeper configuration
type Config struct {
	TickInterval time.Duration // How often due pools are checked
	SyncInterval time.Duration // How often pools are settled against yield
	BatchLimit   uint64        // Participants finalized per draw batch
}

// DefaultConfig returns the default draw keeper configuration
func DefaultConfig() *Config {
	return &Config{
		TickInterval: 5 * time.Second,
		SyncInterval: time.Minute,
		BatchLimit:   200,
	}
}

// DrawKeeper watches tracked pools and submits the transactions that move
// draws forward: freezing ended rounds, walking snapshot batches, completing
// draws and reopening intermissions. Submissions that fail stay due and are
// retried on the next tick.
type DrawKeeper struct {
	config    *Config
	tracker   *PoolTracker
	submitter TxSubmitter

	drawsDriven    uint64
	submitFailures uint64
	statsMu        sync.Mutex

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewDrawKeeper creates a new draw keeper instance
func NewDrawKeeper(config *Config, submitter TxSubmitter) *DrawKeeper {
	if config == nil {
		config = DefaultConfig()
	}
	if submitter == nil {
		submitter = NewMockSubmitter()
	}

	return &DrawKeeper{
		config:    config,
		tracker:   NewPoolTracker(),
		submitter: submitter,
		stopCh:    make(chan struct{}),
	}
}

// Start starts the draw keeper loops
func (k *DrawKeeper) Start(ctx context.Context) error {
	log.Println("Starting draw keeper...")

	k.wg.Add(1)
	go k.tickLoop(ctx)

	k.wg.Add(1)
	go k.syncLoop(ctx)

	log.Println("Draw keeper started")
	return nil
}

// Stop stops the draw keeper
func (k *DrawKeeper) Stop() error {
	log.Println("Stopping draw keeper...")
	close(k.stopCh)
	k.wg.Wait()
	log.Println("Draw keeper stopped")
	return nil
}

// TrackPool adds or updates a pool in the keeper's view
func (k *DrawKeeper) TrackPool(state *PoolState) {
	k.tracker.Set(state)
}

// UntrackPool removes a pool from the keeper's view
func (k *DrawKeeper) UntrackPool(poolID uint64) {
	k.tracker.Delete(poolID)
}

// tickLoop drives due pools on a fixed interval
func (k *DrawKeeper) tickLoop(ctx context.Context) {
	defer k.wg.Done()

	ticker := time.NewTicker(k.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-k.stopCh:
			return
		case now := <-ticker.C:
			k.tick(ctx, now)
		}
	}
}

// syncLoop settles every tracked pool against its yield source periodically
func (k *DrawKeeper) syncLoop(ctx context.Context) {
	defer k.wg.Done()

	ticker := time.NewTicker(k.config.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-k.stopCh:
			return
		case now := <-ticker.C:
			for _, state := range k.tracker.List() {
				if err := k.submitter.SyncPool(ctx, state.PoolID); err != nil {
					k.recordFailure()
					log.Printf("Pool %d sync failed: %v", state.PoolID, err)
					continue
				}
				k.tracker.advance(state.PoolID, func(s *PoolState) {
					s.LastSync = now
				})
			}
		}
	}
}

// tick submits the next transaction for every due pool
func (k *DrawKeeper) tick(ctx context.Context, now time.Time) {
	for _, state := range k.tracker.Due(now) {
		switch state.Phase {
		case PhaseActive, PhaseAwaitingDraw:
			k.startDraw(ctx, state, now)
		case PhaseDrawProcessing:
			k.driveDraw(ctx, state, now)
		case PhaseIntermission:
			k.startNextRound(ctx, state, now)
		}
	}
}

func (k *DrawKeeper) startDraw(ctx context.Context, state PoolState, now time.Time) {
	if err := k.submitter.StartDraw(ctx, state.PoolID); err != nil {
		k.recordFailure()
		log.Printf("Pool %d start draw failed: %v", state.PoolID, err)
		return
	}

	k.tracker.advance(state.PoolID, func(s *PoolState) {
		s.Phase = PhaseDrawProcessing
		s.LastAction = now
	})
	log.Printf("Pool %d round %d frozen for draw", state.PoolID, state.RoundID)
}

func (k *DrawKeeper) driveDraw(ctx context.Context, state PoolState, now time.Time) {
	// Fails while the batch walk is incomplete or randomness is pending.
	// The pool stays due and the next tick retries.
	if err := k.submitter.DriveDraw(ctx, state.PoolID, k.config.BatchLimit); err != nil {
		k.recordFailure()
		log.Printf("Pool %d draw tick: %v", state.PoolID, err)
		return
	}

	k.tracker.advance(state.PoolID, func(s *PoolState) {
		s.Phase = PhaseIntermission
		s.LastAction = now
	})

	k.statsMu.Lock()
	k.drawsDriven++
	k.statsMu.Unlock()

	log.Printf("Pool %d round %d draw completed", state.PoolID, state.RoundID)
}

func (k *DrawKeeper) startNextRound(ctx context.Context, state PoolState, now time.Time) {
	if err := k.submitter.StartNextRound(ctx, state.PoolID); err != nil {
		k.recordFailure()
		log.Printf("Pool %d start next round failed: %v", state.PoolID, err)
		return
	}

	k.tracker.advance(state.PoolID, func(s *PoolState) {
		s.Phase = PhaseActive
		s.RoundID++
		s.RoundEndTime = now.Add(s.DrawInterval)
		s.LastAction = now
	})
	log.Printf("Pool %d round %d opened", state.PoolID, state.RoundID+1)
}

func (k *DrawKeeper) recordFailure() {
	k.statsMu.Lock()
	k.submitFailures++
	k.statsMu.Unlock()
}

// Stats returns draw keeper statistics
type Stats struct {
	PoolCount      int
	DrawsDriven    uint64
	SubmitFailures uint64
}

// GetStats returns current draw keeper statistics
func (k *DrawKeeper) GetStats() Stats {
	k.statsMu.Lock()
	defer k.statsMu.Unlock()

	return Stats{
		PoolCount:      k.tracker.Len(),
		DrawsDriven:    k.drawsDriven,
		SubmitFailures: k.submitFailures,
	}
}
