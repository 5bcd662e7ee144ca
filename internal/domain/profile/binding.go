package profile

import (
	"fmt"

	"hrapp/internal/domain/dimension"
)

// NewBinding validates and builds a binding for dim. MinScore defaults to the
// dimension's lower bound and TargetScore to 80% of its upper bound when the
// caller passes nil.
func NewBinding(profileID string, dim dimension.Dimension, weight float64, minScore, targetScore *float64, critical bool) (Binding, error) {
	binding := Binding{
		ProfileID: profileID,
		Dimension: dim,
		Weight:    weight,
		Critical:  critical,
		Active:    true,
	}

	binding.MinScore = dim.MinValue
	if minScore != nil {
		binding.MinScore = *minScore
	}
	binding.TargetScore = dim.MaxValue * 0.8
	if targetScore != nil {
		binding.TargetScore = *targetScore
	}

	if err := binding.validateThresholds(); err != nil {
		return Binding{}, err
	}
	return binding, nil
}

func (b Binding) validateThresholds() error {
	if b.Weight < 0 || b.Weight > 100 {
		return &ThresholdError{Field: "weight", Reason: "must be between 0 and 100"}
	}
	dim := b.Dimension
	if !dim.InRange(b.MinScore) {
		return &ThresholdError{Field: "minScore", Reason: fmt.Sprintf("must lie within [%v, %v]", dim.MinValue, dim.MaxValue)}
	}
	if !dim.InRange(b.TargetScore) {
		return &ThresholdError{Field: "targetScore", Reason: fmt.Sprintf("must lie within [%v, %v]", dim.MinValue, dim.MaxValue)}
	}
	if b.MinScore > b.TargetScore {
		return &ThresholdError{Field: "minScore", Reason: "must not exceed targetScore"}
	}
	return nil
}

// Status partitions every possible score into exactly one bucket: out-of-range
// (or absent) scores are invalid, everything else falls below minimum, between
// the thresholds, or at/above target.
func (b Binding) Status(raw *float64) PerformanceStatus {
	if raw == nil || !b.Dimension.InRange(*raw) {
		return StatusInvalid
	}
	switch {
	case *raw >= b.TargetScore:
		return StatusExceedsTarget
	case *raw >= b.MinScore:
		return StatusMeetsMinimum
	default:
		return StatusBelowMinimum
	}
}

// CriticalFailure reports whether a critical binding scored below its minimum.
func (b Binding) CriticalFailure(raw *float64) bool {
	return b.Critical && b.Status(raw) == StatusBelowMinimum
}

// WeightedContribution is the binding's share of the aggregate: the normalized
// score scaled by weight/100. A missing or out-of-range observation
// contributes zero.
func (b Binding) WeightedContribution(raw *float64) float64 {
	if raw == nil {
		return 0
	}
	normalized, err := dimension.Normalize(b.Dimension, *raw)
	if err != nil {
		return 0
	}
	return normalized * (b.Weight / 100)
}

// TargetGap is how far the score falls short of target, zero when met.
func (b Binding) TargetGap(raw *float64) *float64 {
	if raw == nil || !b.Dimension.InRange(*raw) {
		return nil
	}
	gap := b.TargetScore - *raw
	if gap < 0 {
		gap = 0
	}
	return &gap
}
