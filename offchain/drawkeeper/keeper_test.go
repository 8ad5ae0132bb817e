package drawkeeper

import (
	"context"
	"testing"
	"time"
)

func trackedPool(k *DrawKeeper, phase string, endOffset time.Duration, now time.Time) {
	k.TrackPool(&PoolState{
		PoolID:       1,
		Phase:        phase,
		RoundID:      3,
		RoundEndTime: now.Add(endOffset),
		DrawInterval: time.Hour,
	})
}

func TestTickIgnoresActiveRound(t *testing.T) {
	sub := NewMockSubmitter()
	k := NewDrawKeeper(nil, sub)
	now := time.Now()

	trackedPool(k, PhaseActive, time.Minute, now)
	k.tick(context.Background(), now)

	if actions := sub.Actions(); len(actions) != 0 {
		t.Errorf("actions = %v, want none before round end", actions)
	}
}

func TestTickDrivesFullDrawCycle(t *testing.T) {
	sub := NewMockSubmitter()
	k := NewDrawKeeper(nil, sub)
	now := time.Now()

	trackedPool(k, PhaseActive, -time.Second, now)

	// Ended round: freeze it
	k.tick(context.Background(), now)
	state, _ := k.tracker.Get(1)
	if state.Phase != PhaseDrawProcessing {
		t.Fatalf("phase = %s, want %s", state.Phase, PhaseDrawProcessing)
	}

	// Mid-draw: batch walk and completion
	k.tick(context.Background(), now)
	state, _ = k.tracker.Get(1)
	if state.Phase != PhaseIntermission {
		t.Fatalf("phase = %s, want %s", state.Phase, PhaseIntermission)
	}

	// Intermission: reopen
	k.tick(context.Background(), now)
	state, _ = k.tracker.Get(1)
	if state.Phase != PhaseActive {
		t.Fatalf("phase = %s, want %s", state.Phase, PhaseActive)
	}
	if state.RoundID != 4 {
		t.Errorf("round = %d, want 4", state.RoundID)
	}
	if !state.RoundEndTime.Equal(now.Add(time.Hour)) {
		t.Errorf("round end = %v, want %v", state.RoundEndTime, now.Add(time.Hour))
	}

	want := []string{"start_draw:1", "drive_draw:1", "start_next_round:1"}
	actions := sub.Actions()
	if len(actions) != len(want) {
		t.Fatalf("actions = %v, want %v", actions, want)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Errorf("action[%d] = %s, want %s", i, actions[i], want[i])
		}
	}

	stats := k.GetStats()
	if stats.DrawsDriven != 1 {
		t.Errorf("draws driven = %d, want 1", stats.DrawsDriven)
	}
}

func TestTickRetriesIncompleteDraw(t *testing.T) {
	sub := NewMockSubmitter()
	sub.SetDriveFailures(2)
	k := NewDrawKeeper(nil, sub)
	now := time.Now()

	trackedPool(k, PhaseDrawProcessing, -time.Second, now)

	// Two failed ticks leave the pool mid-draw
	k.tick(context.Background(), now)
	k.tick(context.Background(), now)
	state, _ := k.tracker.Get(1)
	if state.Phase != PhaseDrawProcessing {
		t.Fatalf("phase = %s, want %s after failed ticks", state.Phase, PhaseDrawProcessing)
	}
	if stats := k.GetStats(); stats.SubmitFailures != 2 {
		t.Errorf("failures = %d, want 2", stats.SubmitFailures)
	}

	// Third tick succeeds
	k.tick(context.Background(), now)
	state, _ = k.tracker.Get(1)
	if state.Phase != PhaseIntermission {
		t.Errorf("phase = %s, want %s", state.Phase, PhaseIntermission)
	}
}

func TestTickSkipsFrozenPoolBeforeEnd(t *testing.T) {
	sub := NewMockSubmitter()
	k := NewDrawKeeper(nil, sub)
	now := time.Now()

	// Awaiting draw past the end time is due immediately
	trackedPool(k, PhaseAwaitingDraw, -time.Minute, now)
	k.tick(context.Background(), now)

	state, _ := k.tracker.Get(1)
	if state.Phase != PhaseDrawProcessing {
		t.Errorf("phase = %s, want %s", state.Phase, PhaseDrawProcessing)
	}
}

func TestUntrackPool(t *testing.T) {
	sub := NewMockSubmitter()
	k := NewDrawKeeper(nil, sub)
	now := time.Now()

	trackedPool(k, PhaseIntermission, 0, now)
	k.UntrackPool(1)

	k.tick(context.Background(), now)
	if actions := sub.Actions(); len(actions) != 0 {
		t.Errorf("actions = %v, want none for untracked pool", actions)
	}
	if k.GetStats().PoolCount != 0 {
		t.Errorf("pool count = %d, want 0", k.GetStats().PoolCount)
	}
}
