package profile

import "hrapp/internal/domain/dimension"

// CalculateSuccessScore aggregates observed dimension scores into a 0-100
// weighted average. Only active bindings participate, and only observed
// dimensions enter the weight denominator: a dimension nobody scored is left
// out of the average entirely rather than counted as zero. Sparse observation
// sets therefore rest on fewer weights; this is deliberate and relied upon by
// callers.
func CalculateSuccessScore(bindings []Binding, observations Observations) float64 {
	var weightedSum, effectiveWeight float64
	for _, binding := range bindings {
		if !binding.Active {
			continue
		}
		raw, observed := observations[binding.Dimension.ID]
		if !observed {
			continue
		}
		normalized, err := dimension.Normalize(binding.Dimension, raw)
		if err != nil {
			continue
		}
		weightedSum += normalized * binding.Weight
		effectiveWeight += binding.Weight
	}
	if effectiveWeight <= 0 {
		return 0
	}
	return weightedSum / effectiveWeight
}

// Evaluate runs the full judgement for one profile: aggregate score, the two
// threshold predicates, and per-dimension detail. A critical failure is
// reported alongside the aggregate rather than vetoing it; whether it
// overrides a passing score is the caller's policy.
func Evaluate(p Profile, bindings []Binding, observations Observations) Evaluation {
	eval := Evaluation{
		ProfileID:        p.ID,
		CriticalFailures: []string{},
		PerDimension:     []DimensionResult{},
	}

	eval.SuccessScore = CalculateSuccessScore(bindings, observations)
	eval.MeetsMinimum = eval.SuccessScore >= p.MinSuccessScore
	eval.MeetsTarget = eval.SuccessScore >= p.TargetSuccessScore

	for _, binding := range bindings {
		if !binding.Active {
			continue
		}
		var raw *float64
		if value, observed := observations[binding.Dimension.ID]; observed {
			v := value
			raw = &v
		}

		result := DimensionResult{
			DimensionID: binding.Dimension.ID,
			Name:        binding.Dimension.Name,
			Status:      binding.Status(raw),
			RawScore:    raw,
			Weight:      binding.Weight,
			Critical:    binding.Critical,
		}
		if raw != nil {
			if normalized, err := dimension.Normalize(binding.Dimension, *raw); err == nil {
				result.Normalized = &normalized
			}
		}
		eval.PerDimension = append(eval.PerDimension, result)

		if binding.CriticalFailure(raw) {
			eval.CriticalFailures = append(eval.CriticalFailures, binding.Dimension.ID)
		}
	}
	return eval
}

// HasCriticalFailure reports whether any active critical binding scored below
// its minimum. Independent of the aggregate pass/fail outcome.
func HasCriticalFailure(bindings []Binding, observations Observations) bool {
	for _, binding := range bindings {
		if !binding.Active {
			continue
		}
		var raw *float64
		if value, observed := observations[binding.Dimension.ID]; observed {
			v := value
			raw = &v
		}
		if binding.CriticalFailure(raw) {
			return true
		}
	}
	return false
}
