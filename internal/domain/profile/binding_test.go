package profile

import (
	"errors"
	"testing"

	"hrapp/internal/domain/dimension"
)

func likert5(id string) dimension.Dimension {
	return dimension.Dimension{ID: id, Name: "Dim " + id, ScaleFamily: dimension.ScaleLikert5, MinValue: 1, MaxValue: 5}
}

func ptr(v float64) *float64 { return &v }

func TestNewBindingDefaults(t *testing.T) {
	binding, err := NewBinding("p1", likert5("d1"), 25, nil, nil, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if binding.MinScore != 1 {
		t.Fatalf("expected minScore default 1, got %v", binding.MinScore)
	}
	if binding.TargetScore != 4 {
		t.Fatalf("expected targetScore default 4, got %v", binding.TargetScore)
	}
	if !binding.Active {
		t.Fatal("expected new binding active")
	}
}

func TestNewBindingRejectsBadThresholds(t *testing.T) {
	var thresholdErr *ThresholdError

	_, err := NewBinding("p1", likert5("d1"), 25, ptr(4), ptr(2), false)
	if !errors.As(err, &thresholdErr) {
		t.Fatalf("expected ThresholdError for min > target, got %v", err)
	}

	_, err = NewBinding("p1", likert5("d1"), 25, ptr(0.5), nil, false)
	if !errors.As(err, &thresholdErr) {
		t.Fatalf("expected ThresholdError for minScore below scale, got %v", err)
	}

	_, err = NewBinding("p1", likert5("d1"), 25, nil, ptr(6), false)
	if !errors.As(err, &thresholdErr) {
		t.Fatalf("expected ThresholdError for targetScore above scale, got %v", err)
	}

	_, err = NewBinding("p1", likert5("d1"), 120, nil, nil, false)
	if !errors.As(err, &thresholdErr) {
		t.Fatalf("expected ThresholdError for weight above 100, got %v", err)
	}
}

func TestStatusPartitionsScale(t *testing.T) {
	binding := Binding{Dimension: likert5("d1"), Weight: 50, MinScore: 2, TargetScore: 4, Active: true}

	cases := []struct {
		raw      *float64
		expected PerformanceStatus
	}{
		{nil, StatusInvalid},
		{ptr(0.5), StatusInvalid},
		{ptr(5.5), StatusInvalid},
		{ptr(1), StatusBelowMinimum},
		{ptr(1.99), StatusBelowMinimum},
		{ptr(2), StatusMeetsMinimum},
		{ptr(3.99), StatusMeetsMinimum},
		{ptr(4), StatusExceedsTarget},
		{ptr(5), StatusExceedsTarget},
	}
	for _, tc := range cases {
		if got := binding.Status(tc.raw); got != tc.expected {
			t.Fatalf("status(%v): expected %s, got %s", tc.raw, tc.expected, got)
		}
	}
}

func TestStatusCoversEveryInRangeScore(t *testing.T) {
	binding := Binding{Dimension: likert5("d1"), MinScore: 2, TargetScore: 4, Active: true}
	for raw := 1.0; raw <= 5.0; raw += 0.25 {
		status := binding.Status(ptr(raw))
		if status == StatusInvalid {
			t.Fatalf("in-range score %v classified invalid", raw)
		}
	}
}

func TestCriticalFailure(t *testing.T) {
	critical := Binding{Dimension: likert5("d1"), MinScore: 3, TargetScore: 4, Critical: true, Active: true}
	if !critical.CriticalFailure(ptr(2)) {
		t.Fatal("expected critical failure below minimum")
	}
	if critical.CriticalFailure(ptr(3)) {
		t.Fatal("did not expect critical failure at minimum")
	}
	if critical.CriticalFailure(nil) {
		t.Fatal("did not expect critical failure for unobserved score")
	}

	regular := critical
	regular.Critical = false
	if regular.CriticalFailure(ptr(2)) {
		t.Fatal("did not expect critical failure on non-critical binding")
	}
}

func TestWeightedContribution(t *testing.T) {
	binding := Binding{Dimension: likert5("d1"), Weight: 70, MinScore: 2, TargetScore: 4, Active: true}

	// normalize(4) = 75, scaled by 0.7
	got := binding.WeightedContribution(ptr(4))
	if got != 52.5 {
		t.Fatalf("expected 52.5, got %v", got)
	}
	if binding.WeightedContribution(nil) != 0 {
		t.Fatal("expected zero contribution for missing observation")
	}
	if binding.WeightedContribution(ptr(9)) != 0 {
		t.Fatal("expected zero contribution for out-of-range observation")
	}
}
