package dimension

// ValidateScale rejects a degenerate scale. A zero-width scale would make
// normalization divide by zero, so it is refused at creation time.
func ValidateScale(minValue, maxValue float64) error {
	if minValue >= maxValue {
		return ErrInvalidScaleBounds
	}
	return nil
}

// InRange reports whether value lies on the dimension's scale, bounds inclusive.
func (d Dimension) InRange(value float64) bool {
	return value >= d.MinValue && value <= d.MaxValue
}

// Normalize converts a raw score on the dimension's scale to a 0-100 percentage.
func Normalize(d Dimension, raw float64) (float64, error) {
	if !d.InRange(raw) {
		return 0, &OutOfRangeError{Value: raw, Min: d.MinValue, Max: d.MaxValue}
	}
	return (raw - d.MinValue) / (d.MaxValue - d.MinValue) * 100, nil
}

// Denormalize converts a 0-100 percentage back to the dimension's raw scale.
func Denormalize(d Dimension, percentage float64) (float64, error) {
	if percentage < 0 || percentage > 100 {
		return 0, &OutOfRangeError{Value: percentage, Min: 0, Max: 100}
	}
	return d.MinValue + percentage/100*(d.MaxValue-d.MinValue), nil
}

type ScaleDefaults struct {
	MinValue float64
	MaxValue float64
	Labels   map[string]string
}

// DefaultsFor returns the canonical bounds and ordinal labels for a scale
// family. Used only to seed a new dimension; evaluation never consults it.
func DefaultsFor(family ScaleFamily) ScaleDefaults {
	switch family {
	case ScaleLikert5:
		return ScaleDefaults{MinValue: 1, MaxValue: 5, Labels: map[string]string{
			"1": "Insufficient", "2": "Developing", "3": "Sufficient", "4": "Good", "5": "Excellent",
		}}
	case ScaleLikert3:
		return ScaleDefaults{MinValue: 1, MaxValue: 3, Labels: map[string]string{
			"1": "Below Expectations", "2": "Meets Expectations", "3": "Exceeds Expectations",
		}}
	case ScaleLikert7:
		return ScaleDefaults{MinValue: 1, MaxValue: 7, Labels: map[string]string{
			"1": "Very Poor", "2": "Poor", "3": "Needs Improvement", "4": "Average",
			"5": "Good", "6": "Very Good", "7": "Excellent",
		}}
	case ScaleLikert10:
		return ScaleDefaults{MinValue: 1, MaxValue: 10, Labels: map[string]string{
			"1": "1", "2": "2", "3": "3", "4": "4", "5": "5",
			"6": "6", "7": "7", "8": "8", "9": "9", "10": "10",
		}}
	case ScalePercentage:
		return ScaleDefaults{MinValue: 0, MaxValue: 100, Labels: map[string]string{
			"0": "0%", "25": "25%", "50": "50%", "75": "75%", "100": "100%",
		}}
	case ScaleYesNo:
		return ScaleDefaults{MinValue: 0, MaxValue: 1, Labels: map[string]string{
			"0": "No", "1": "Yes",
		}}
	case ScaleRatingStars:
		return ScaleDefaults{MinValue: 1, MaxValue: 5, Labels: map[string]string{
			"1": "1 Star", "2": "2 Stars", "3": "3 Stars", "4": "4 Stars", "5": "5 Stars",
		}}
	case ScaleNumeric, ScaleCustom:
		// No canonical labels; caller supplies bounds.
		return ScaleDefaults{MinValue: 0, MaxValue: 100}
	}
	return DefaultsFor(ScaleLikert5)
}
