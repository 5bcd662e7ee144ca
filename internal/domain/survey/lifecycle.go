package survey

import "time"

// transitions is the authoritative lifecycle table. Archived and cancelled are
// terminal: they have no outgoing edges.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusPublished, StatusCancelled},
	StatusPublished: {StatusActive, StatusCancelled},
	StatusActive:    {StatusPaused, StatusCompleted, StatusCancelled},
	StatusPaused:    {StatusActive, StatusCancelled},
	StatusCompleted: {StatusArchived},
	StatusArchived:  {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ApplyTransition returns a copy of the survey moved to the target status,
// with the table's side effects applied: activation stamps the start date,
// completion stamps the end date, cancellation drops the active flag. The
// caller must persist the result under a per-survey write guard so two
// concurrent transitions cannot both pass the table check from a stale state.
func ApplyTransition(s Survey, to Status, now time.Time) (Survey, error) {
	if !CanTransition(s.Status, to) {
		return Survey{}, &TransitionError{From: s.Status, To: to}
	}

	s.Status = to
	switch to {
	case StatusActive:
		if s.StartDate == nil {
			s.StartDate = &now
		}
	case StatusCompleted:
		if s.EndDate == nil {
			s.EndDate = &now
		}
	case StatusCancelled:
		s.Active = false
	}
	return s, nil
}

// CanAddQuestion gates structural mutation: once responses may exist, adding
// a question would invalidate answers already collected.
func CanAddQuestion(s Survey) bool {
	return s.Status == StatusDraft || s.Status == StatusPublished
}

// IsCurrentlyActive reports whether the survey is open for response
// collection at the given instant: active flag set, status active, and now
// inside the configured window (unset bounds are open-ended).
func IsCurrentlyActive(s Survey, now time.Time) bool {
	if !s.Active || s.Status != StatusActive {
		return false
	}
	if s.StartDate != nil && now.Before(*s.StartDate) {
		return false
	}
	if s.EndDate != nil && now.After(*s.EndDate) {
		return false
	}
	return true
}

// IsFull reports whether the response cap has been reached. Surveys with no
// cap are never full.
func IsFull(s Survey) bool {
	return s.MaxResponses != nil && s.ResponseCount >= *s.MaxResponses
}

// CheckAdmission decides whether a new response may be started right now.
func CheckAdmission(s Survey, now time.Time) error {
	if !IsCurrentlyActive(s, now) {
		return ErrSurveyNotCollecting
	}
	if IsFull(s) {
		return ErrSurveyFull
	}
	return nil
}

// RemainingDays is the whole number of days until the end date, nil when the
// survey has no end date, zero when already past it.
func RemainingDays(s Survey, now time.Time) *int {
	if s.EndDate == nil {
		return nil
	}
	days := 0
	if now.Before(*s.EndDate) {
		days = int(s.EndDate.Sub(now).Hours() / 24)
	}
	return &days
}

// CompletionRate is responses as a share of the cap, nil for uncapped surveys.
func CompletionRate(s Survey) *float64 {
	if s.MaxResponses == nil || *s.MaxResponses == 0 {
		return nil
	}
	rate := float64(s.ResponseCount) / float64(*s.MaxResponses) * 100
	return &rate
}
