package profile

import (
	"math"
	"testing"
)

func twoBindingProfile() (Profile, []Binding) {
	p := Profile{ID: "p1", Name: "Backend Engineer", MinSuccessScore: 60, TargetSuccessScore: 85, Active: true}
	bindings := []Binding{
		{ID: "b1", ProfileID: "p1", Dimension: likert5("A"), Weight: 70, MinScore: 2, TargetScore: 4, Active: true},
		{ID: "b2", ProfileID: "p1", Dimension: likert5("B"), Weight: 30, MinScore: 3, TargetScore: 4, Active: true},
	}
	return p, bindings
}

func TestCalculateSuccessScoreWeightedAverage(t *testing.T) {
	_, bindings := twoBindingProfile()
	// normalize(A,4)=75, normalize(B,3)=50 -> (75*70 + 50*30) / 100
	score := CalculateSuccessScore(bindings, Observations{"A": 4, "B": 3})
	if score != 67.5 {
		t.Fatalf("expected 67.5, got %v", score)
	}
}

func TestCalculateSuccessScoreSkipsUnobservedWeights(t *testing.T) {
	_, bindings := twoBindingProfile()
	// B unobserved: denominator shrinks to 70, not treated as zero score.
	score := CalculateSuccessScore(bindings, Observations{"A": 4})
	if score != 75 {
		t.Fatalf("expected 75, got %v", score)
	}
}

func TestCalculateSuccessScoreEmptyCases(t *testing.T) {
	if score := CalculateSuccessScore(nil, Observations{"A": 4}); score != 0 {
		t.Fatalf("expected 0 with no bindings, got %v", score)
	}
	_, bindings := twoBindingProfile()
	if score := CalculateSuccessScore(bindings, Observations{}); score != 0 {
		t.Fatalf("expected 0 with no observations, got %v", score)
	}
	inactive := bindings
	for i := range inactive {
		inactive[i].Active = false
	}
	if score := CalculateSuccessScore(inactive, Observations{"A": 4, "B": 3}); score != 0 {
		t.Fatalf("expected 0 with only inactive bindings, got %v", score)
	}
}

func TestCalculateSuccessScoreSingleObservationAtTarget(t *testing.T) {
	// With a single contributor the weight cancels out entirely.
	for _, weight := range []float64{5, 40, 100} {
		bindings := []Binding{
			{Dimension: likert5("A"), Weight: weight, MinScore: 2, TargetScore: 4, Active: true},
		}
		score := CalculateSuccessScore(bindings, Observations{"A": 4})
		if score != 75 {
			t.Fatalf("weight %v: expected 75, got %v", weight, score)
		}
	}
}

func TestCalculateSuccessScoreScaleInvariance(t *testing.T) {
	_, bindings := twoBindingProfile()
	observations := Observations{"A": 4, "B": 3}
	base := CalculateSuccessScore(bindings, observations)

	scaled := make([]Binding, len(bindings))
	copy(scaled, bindings)
	for i := range scaled {
		scaled[i].Weight *= 2.5
	}
	if got := CalculateSuccessScore(scaled, observations); math.Abs(got-base) > 1e-9 {
		t.Fatalf("expected score invariant under uniform weight scaling: %v vs %v", base, got)
	}
}

func TestEvaluateVerdicts(t *testing.T) {
	p, bindings := twoBindingProfile()
	eval := Evaluate(p, bindings, Observations{"A": 4, "B": 3})

	if eval.SuccessScore != 67.5 {
		t.Fatalf("expected success score 67.5, got %v", eval.SuccessScore)
	}
	if !eval.MeetsMinimum {
		t.Fatal("expected meetsMinimum with minSuccessScore 60")
	}
	if eval.MeetsTarget {
		t.Fatal("did not expect meetsTarget with targetSuccessScore 85")
	}
	if len(eval.CriticalFailures) != 0 {
		t.Fatalf("expected no critical failures, got %v", eval.CriticalFailures)
	}
	if len(eval.PerDimension) != 2 {
		t.Fatalf("expected 2 dimension results, got %d", len(eval.PerDimension))
	}
	if eval.PerDimension[0].Status != StatusExceedsTarget {
		t.Fatalf("expected A exceeds target, got %s", eval.PerDimension[0].Status)
	}
	if eval.PerDimension[1].Status != StatusMeetsMinimum {
		t.Fatalf("expected B meets minimum, got %s", eval.PerDimension[1].Status)
	}
}

func TestEvaluateReportsCriticalFailureIndependently(t *testing.T) {
	p := Profile{ID: "p1", MinSuccessScore: 40, TargetSuccessScore: 85, Active: true}
	bindings := []Binding{
		{Dimension: likert5("A"), Weight: 80, MinScore: 2, TargetScore: 4, Active: true},
		{Dimension: likert5("C"), Weight: 20, MinScore: 3, TargetScore: 4, Critical: true, Active: true},
	}
	eval := Evaluate(p, bindings, Observations{"A": 5, "C": 2})

	// Aggregate passes the minimum even though the critical dimension failed;
	// the two signals stay independent.
	if !eval.MeetsMinimum {
		t.Fatalf("expected aggregate pass, score %v", eval.SuccessScore)
	}
	if len(eval.CriticalFailures) != 1 || eval.CriticalFailures[0] != "C" {
		t.Fatalf("expected critical failure on C, got %v", eval.CriticalFailures)
	}
	if !HasCriticalFailure(bindings, Observations{"A": 5, "C": 2}) {
		t.Fatal("expected HasCriticalFailure true")
	}
	if HasCriticalFailure(bindings, Observations{"A": 5, "C": 3}) {
		t.Fatal("expected HasCriticalFailure false at minimum")
	}
}

func TestEvaluateMarksUnobservedDimensionsInvalid(t *testing.T) {
	p, bindings := twoBindingProfile()
	eval := Evaluate(p, bindings, Observations{"A": 4})

	if eval.SuccessScore != 75 {
		t.Fatalf("expected 75, got %v", eval.SuccessScore)
	}
	if eval.PerDimension[1].Status != StatusInvalid {
		t.Fatalf("expected unobserved B invalid, got %s", eval.PerDimension[1].Status)
	}
	if eval.PerDimension[1].RawScore != nil {
		t.Fatal("expected nil raw score for unobserved dimension")
	}
}

func TestEvaluateIgnoresInactiveBindings(t *testing.T) {
	p, bindings := twoBindingProfile()
	bindings[1].Active = false
	eval := Evaluate(p, bindings, Observations{"A": 4, "B": 3})

	if eval.SuccessScore != 75 {
		t.Fatalf("expected inactive binding excluded, got %v", eval.SuccessScore)
	}
	if len(eval.PerDimension) != 1 {
		t.Fatalf("expected 1 dimension result, got %d", len(eval.PerDimension))
	}
}
