package types

import (
	"testing"

	"cosmossdk.io/math"
)

// TestNewRound tests round construction and the frozen eligibility divisor.
func TestNewRound(t *testing.T) {
	round := NewRound(1, 3, 1000, 86400)

	if round.PoolID != 1 || round.RoundID != 3 {
		t.Errorf("expected pool 1 round 3, got pool %d round %d", round.PoolID, round.RoundID)
	}
	if round.StartTime != 1000 {
		t.Errorf("expected start 1000, got %d", round.StartTime)
	}
	if round.TargetEndTime != 87400 {
		t.Errorf("expected target end 87400, got %d", round.TargetEndTime)
	}
	if round.EligibilityDuration != 86400 {
		t.Errorf("expected eligibility duration 86400, got %d", round.EligibilityDuration)
	}
	if !round.TotalEntries.IsZero() {
		t.Errorf("expected zero entries, got %s", round.TotalEntries.String())
	}
}

// TestRoundEnded tests the end boundary is inclusive.
func TestRoundEnded(t *testing.T) {
	round := NewRound(1, 1, 1000, 500)

	if round.Ended(1499) {
		t.Error("expected round still running one second before target")
	}
	if !round.Ended(1500) {
		t.Error("expected round ended exactly at target")
	}
	if !round.Ended(2000) {
		t.Error("expected round ended after target")
	}
}

// TestBatchComplete tests cursor coverage of the snapshot.
func TestBatchComplete(t *testing.T) {
	round := NewRound(1, 1, 1000, 500)
	round.SnapshotCount = 3

	if round.BatchComplete() {
		t.Error("expected incomplete at cursor 0")
	}
	round.BatchCursor = 3
	if !round.BatchComplete() {
		t.Error("expected complete at cursor 3 of 3")
	}

	// Empty snapshot is trivially complete.
	empty := NewRound(1, 1, 1000, 500)
	if !empty.BatchComplete() {
		t.Error("expected empty snapshot complete")
	}
}

// TestFinalizeEntries tests weight normalization and the share-balance cap.
func TestFinalizeEntries(t *testing.T) {
	round := NewRound(1, 1, 0, 100)

	testCases := []struct {
		name     string
		weight   math.LegacyDec
		shares   math.LegacyDec
		expected math.LegacyDec
	}{
		{"full round", math.LegacyNewDec(50000), math.LegacyNewDec(500), math.LegacyNewDec(500)},
		{"half round", math.LegacyNewDec(25000), math.LegacyNewDec(500), math.LegacyNewDec(250)},
		{"capped at shares", math.LegacyNewDec(90000), math.LegacyNewDec(500), math.LegacyNewDec(500)},
		{"zero weight", math.LegacyZeroDec(), math.LegacyNewDec(500), math.LegacyZeroDec()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			entries := round.FinalizeEntries(tc.weight, tc.shares)
			if !entries.Equal(tc.expected) {
				t.Errorf("expected %s entries, got %s", tc.expected.String(), entries.String())
			}
		})
	}

	degenerate := &Round{EligibilityDuration: 0}
	if !degenerate.FinalizeEntries(math.LegacyNewDec(100), math.LegacyNewDec(100)).IsZero() {
		t.Error("expected zero entries for zero-duration round")
	}
}

// TestPoolPhase tests the derived four-phase view.
func TestPoolPhase(t *testing.T) {
	pool := &Pool{}
	round := NewRound(1, 1, 1000, 500)

	if got := PoolPhase(pool, round, 1200); got != PhaseActive {
		t.Errorf("expected active, got %s", got)
	}
	if got := PoolPhase(pool, round, 1500); got != PhaseAwaitingDraw {
		t.Errorf("expected awaiting_draw, got %s", got)
	}

	pool.DrawPhase = DrawPhaseProcessing
	if got := PoolPhase(pool, round, 1200); got != PhaseDrawProcessing {
		t.Errorf("expected draw_processing, got %s", got)
	}

	pool.DrawPhase = DrawPhaseIntermission
	if got := PoolPhase(pool, round, 2000); got != PhaseIntermission {
		t.Errorf("expected intermission, got %s", got)
	}

	// The explicit markers win over timestamps.
	pool.DrawPhase = DrawPhaseNone
	if got := PoolPhase(pool, nil, 2000); got != PhaseActive {
		t.Errorf("expected active with no round record, got %s", got)
	}
}
