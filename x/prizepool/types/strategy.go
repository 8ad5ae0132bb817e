package types

import (
	"cosmossdk.io/math"
)

// DistributionStrategy splits each yield surplus across the three allocation
// buckets. The three fractions must sum to exactly 1.
type DistributionStrategy struct {
	RewardsFraction math.LegacyDec `json:"rewards_fraction"`
	PrizeFraction   math.LegacyDec `json:"prize_fraction"`
	FeeFraction     math.LegacyDec `json:"fee_fraction"`
}

// NewDistributionStrategy builds a strategy from the three fractions.
func NewDistributionStrategy(rewards, prize, fee math.LegacyDec) DistributionStrategy {
	return DistributionStrategy{
		RewardsFraction: rewards,
		PrizeFraction:   prize,
		FeeFraction:     fee,
	}
}

// StrategyFromFractions parses the three fraction strings and validates the
// resulting strategy.
func StrategyFromFractions(rewards, prize, fee string) (DistributionStrategy, error) {
	r, err := math.LegacyNewDecFromStr(rewards)
	if err != nil {
		return DistributionStrategy{}, ErrStrategyInvalid.Wrapf("rewards fraction %q: %v", rewards, err)
	}
	p, err := math.LegacyNewDecFromStr(prize)
	if err != nil {
		return DistributionStrategy{}, ErrStrategyInvalid.Wrapf("prize fraction %q: %v", prize, err)
	}
	f, err := math.LegacyNewDecFromStr(fee)
	if err != nil {
		return DistributionStrategy{}, ErrStrategyInvalid.Wrapf("fee fraction %q: %v", fee, err)
	}
	s := NewDistributionStrategy(r, p, f)
	if err := s.Validate(); err != nil {
		return DistributionStrategy{}, err
	}
	return s, nil
}

// DefaultDistributionStrategy is 70% compounding, 20% prize, 10% fee.
func DefaultDistributionStrategy() DistributionStrategy {
	return DistributionStrategy{
		RewardsFraction: math.LegacyMustNewDecFromStr("0.70"),
		PrizeFraction:   math.LegacyMustNewDecFromStr("0.20"),
		FeeFraction:     math.LegacyMustNewDecFromStr("0.10"),
	}
}

// Validate checks that every fraction is within [0, 1] and that the three
// sum to exactly 1.
func (s DistributionStrategy) Validate() error {
	for _, f := range []math.LegacyDec{s.RewardsFraction, s.PrizeFraction, s.FeeFraction} {
		if f.IsNil() || f.IsNegative() || f.GT(math.LegacyOneDec()) {
			return ErrStrategyInvalid
		}
	}
	sum := s.RewardsFraction.Add(s.PrizeFraction).Add(s.FeeFraction)
	if !sum.Equal(math.LegacyOneDec()) {
		return ErrStrategyInvalid
	}
	return nil
}

// Split divides a surplus across the buckets. The fee and prize cuts are
// taken at their fractions; the principal cut is the exact remainder, so the
// three always sum to the full surplus and rounding dust lands in principal.
func (s DistributionStrategy) Split(surplus math.LegacyDec) (principal, prize, fee math.LegacyDec) {
	fee = surplus.Mul(s.FeeFraction)
	prize = surplus.Mul(s.PrizeFraction)
	principal = surplus.Sub(fee).Sub(prize)
	return principal, prize, fee
}
