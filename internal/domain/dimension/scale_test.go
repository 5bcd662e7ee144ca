package dimension

import (
	"errors"
	"math"
	"testing"
)

func likert5() Dimension {
	return Dimension{ID: "d1", Name: "Technical Competency", ScaleFamily: ScaleLikert5, MinValue: 1, MaxValue: 5}
}

func TestNormalize(t *testing.T) {
	dim := likert5()

	got, err := Normalize(dim, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 75 {
		t.Fatalf("expected 75, got %v", got)
	}

	got, err = Normalize(dim, 1)
	if err != nil || got != 0 {
		t.Fatalf("expected 0 at lower bound, got %v err %v", got, err)
	}

	got, err = Normalize(dim, 5)
	if err != nil || got != 100 {
		t.Fatalf("expected 100 at upper bound, got %v err %v", got, err)
	}
}

func TestNormalizeOutOfRange(t *testing.T) {
	dim := likert5()

	_, err := Normalize(dim, 0.5)
	var rangeErr *OutOfRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected OutOfRangeError, got %v", err)
	}
	if rangeErr.Min != 1 || rangeErr.Max != 5 {
		t.Fatalf("expected range [1, 5] in error, got [%v, %v]", rangeErr.Min, rangeErr.Max)
	}

	if _, err := Normalize(dim, 5.01); err == nil {
		t.Fatal("expected error above upper bound")
	}
}

func TestDenormalizeRejectsOutsidePercentage(t *testing.T) {
	dim := likert5()
	if _, err := Denormalize(dim, -1); err == nil {
		t.Fatal("expected error below 0")
	}
	if _, err := Denormalize(dim, 100.5); err == nil {
		t.Fatal("expected error above 100")
	}
}

func TestNormalizeDenormalizeRoundTrip(t *testing.T) {
	dims := []Dimension{
		likert5(),
		{ID: "d2", ScaleFamily: ScaleLikert7, MinValue: 1, MaxValue: 7},
		{ID: "d3", ScaleFamily: ScalePercentage, MinValue: 0, MaxValue: 100},
		{ID: "d4", ScaleFamily: ScaleNumeric, MinValue: -10, MaxValue: 40},
	}
	for _, dim := range dims {
		for _, raw := range []float64{dim.MinValue, dim.MaxValue, (dim.MinValue + dim.MaxValue) / 2, dim.MinValue + 0.3} {
			pct, err := Normalize(dim, raw)
			if err != nil {
				t.Fatalf("normalize(%v) on %s failed: %v", raw, dim.ScaleFamily, err)
			}
			back, err := Denormalize(dim, pct)
			if err != nil {
				t.Fatalf("denormalize(%v) on %s failed: %v", pct, dim.ScaleFamily, err)
			}
			if math.Abs(back-raw) > 1e-9 {
				t.Fatalf("round trip on %s: %v -> %v -> %v", dim.ScaleFamily, raw, pct, back)
			}
		}
	}
}

func TestValidateScaleRejectsZeroWidth(t *testing.T) {
	if err := ValidateScale(3, 3); !errors.Is(err, ErrInvalidScaleBounds) {
		t.Fatalf("expected ErrInvalidScaleBounds, got %v", err)
	}
	if err := ValidateScale(5, 1); !errors.Is(err, ErrInvalidScaleBounds) {
		t.Fatalf("expected ErrInvalidScaleBounds for inverted bounds, got %v", err)
	}
	if err := ValidateScale(1, 5); err != nil {
		t.Fatalf("expected valid scale, got %v", err)
	}
}

func TestDefaultsFor(t *testing.T) {
	cases := []struct {
		family   ScaleFamily
		min, max float64
	}{
		{ScaleLikert5, 1, 5},
		{ScaleLikert7, 1, 7},
		{ScalePercentage, 0, 100},
		{ScaleYesNo, 0, 1},
	}
	for _, tc := range cases {
		defaults := DefaultsFor(tc.family)
		if defaults.MinValue != tc.min || defaults.MaxValue != tc.max {
			t.Fatalf("%s: expected bounds [%v, %v], got [%v, %v]",
				tc.family, tc.min, tc.max, defaults.MinValue, defaults.MaxValue)
		}
	}
	if DefaultsFor(ScaleYesNo).Labels["1"] != "Yes" {
		t.Fatal("expected yes/no labels")
	}
}
