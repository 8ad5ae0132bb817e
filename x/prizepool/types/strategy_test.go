package types

import (
	"testing"

	"cosmossdk.io/math"
)

// TestStrategyValidate tests fraction bounds and the exact-sum rule.
func TestStrategyValidate(t *testing.T) {
	testCases := []struct {
		name                 string
		rewards, prize, fee  string
		valid                bool
	}{
		{"default split", "0.70", "0.20", "0.10", true},
		{"all to rewards", "1", "0", "0", true},
		{"all to prize", "0", "1", "0", true},
		{"sum below one", "0.5", "0.2", "0.1", false},
		{"sum above one", "0.5", "0.5", "0.5", false},
		{"negative fraction", "-0.1", "1.0", "0.1", false},
		{"fraction above one", "1.5", "0", "0", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewDistributionStrategy(
				math.LegacyMustNewDecFromStr(tc.rewards),
				math.LegacyMustNewDecFromStr(tc.prize),
				math.LegacyMustNewDecFromStr(tc.fee),
			)
			err := s.Validate()
			if tc.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tc.valid && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

// TestStrategyFromFractions tests string parsing and validation.
func TestStrategyFromFractions(t *testing.T) {
	s, err := StrategyFromFractions("0.70", "0.20", "0.10")
	if err != nil {
		t.Fatalf("expected valid strategy, got %v", err)
	}
	if !s.PrizeFraction.Equal(math.LegacyMustNewDecFromStr("0.20")) {
		t.Errorf("expected prize fraction 0.20, got %s", s.PrizeFraction.String())
	}

	if _, err := StrategyFromFractions("abc", "0.2", "0.1"); err == nil {
		t.Error("expected parse error")
	}
	if _, err := StrategyFromFractions("0.5", "0.2", "0.1"); err == nil {
		t.Error("expected sum validation error")
	}
}

// TestStrategySplitConserves tests that the three cuts always sum to the
// surplus, with rounding dust going to principal.
func TestStrategySplitConserves(t *testing.T) {
	s := DefaultDistributionStrategy()

	surpluses := []string{
		"100",
		"0.333333333333333333",
		"1234567.000000000000000001",
		"0.000000000000000107",
	}
	for _, raw := range surpluses {
		surplus := math.LegacyMustNewDecFromStr(raw)
		principal, prize, fee := s.Split(surplus)
		total := principal.Add(prize).Add(fee)
		if !total.Equal(surplus) {
			t.Errorf("split of %s lost dust: cuts sum to %s", raw, total.String())
		}
	}

	principal, prize, fee := s.Split(math.LegacyNewDec(100))
	if !principal.Equal(math.LegacyNewDec(70)) || !prize.Equal(math.LegacyNewDec(20)) || !fee.Equal(math.LegacyNewDec(10)) {
		t.Errorf("expected 70/20/10, got %s/%s/%s", principal.String(), prize.String(), fee.String())
	}
}
