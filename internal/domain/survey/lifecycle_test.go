package survey

import (
	"errors"
	"testing"
	"time"
)

func TestCanTransitionTable(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusDraft, StatusPublished},
		{StatusDraft, StatusCancelled},
		{StatusPublished, StatusActive},
		{StatusPublished, StatusCancelled},
		{StatusActive, StatusPaused},
		{StatusActive, StatusCompleted},
		{StatusActive, StatusCancelled},
		{StatusPaused, StatusActive},
		{StatusPaused, StatusCancelled},
		{StatusCompleted, StatusArchived},
	}
	allowedSet := map[[2]Status]bool{}
	for _, tc := range allowed {
		allowedSet[[2]Status{tc.from, tc.to}] = true
		if !CanTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s allowed", tc.from, tc.to)
		}
	}
	for _, from := range Statuses {
		for _, to := range Statuses {
			if !allowedSet[[2]Status{from, to}] && CanTransition(from, to) {
				t.Fatalf("expected %s -> %s forbidden", from, to)
			}
		}
	}
}

func TestTerminalStatesRejectEverything(t *testing.T) {
	for _, from := range []Status{StatusArchived, StatusCancelled} {
		for _, to := range Statuses {
			if CanTransition(from, to) {
				t.Fatalf("terminal %s allowed transition to %s", from, to)
			}
		}
	}
}

func TestApplyTransitionDraftToActiveFails(t *testing.T) {
	s := Survey{ID: "s1", Status: StatusDraft, Active: true}
	_, err := ApplyTransition(s, StatusActive, time.Now())

	var transitionErr *TransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if transitionErr.From != StatusDraft || transitionErr.To != StatusActive {
		t.Fatalf("expected error naming draft -> active, got %s -> %s", transitionErr.From, transitionErr.To)
	}
}

func TestApplyTransitionPublishThenActivate(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := Survey{ID: "s1", Status: StatusDraft, Active: true}

	s, err := ApplyTransition(s, StatusPublished, now)
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if s.StartDate != nil {
		t.Fatal("publish must not stamp start date")
	}

	s, err = ApplyTransition(s, StatusActive, now)
	if err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if s.StartDate == nil || !s.StartDate.Equal(now) {
		t.Fatalf("expected start date stamped at activation, got %v", s.StartDate)
	}
}

func TestApplyTransitionKeepsExplicitDates(t *testing.T) {
	now := time.Now()
	start := now.Add(-48 * time.Hour)
	s := Survey{Status: StatusPublished, Active: true, StartDate: &start}

	s, err := ApplyTransition(s, StatusActive, now)
	if err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if !s.StartDate.Equal(start) {
		t.Fatal("expected explicit start date preserved")
	}

	s, err = ApplyTransition(s, StatusCompleted, now)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if s.EndDate == nil || !s.EndDate.Equal(now) {
		t.Fatalf("expected end date stamped at completion, got %v", s.EndDate)
	}
}

func TestApplyTransitionCancelClearsActive(t *testing.T) {
	s := Survey{Status: StatusPaused, Active: true}
	s, err := ApplyTransition(s, StatusCancelled, time.Now())
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if s.Active {
		t.Fatal("expected active flag cleared on cancellation")
	}
}

func TestCanAddQuestion(t *testing.T) {
	expected := map[Status]bool{
		StatusDraft:     true,
		StatusPublished: true,
		StatusActive:    false,
		StatusPaused:    false,
		StatusCompleted: false,
		StatusArchived:  false,
		StatusCancelled: false,
	}
	for status, want := range expected {
		if got := CanAddQuestion(Survey{Status: status}); got != want {
			t.Fatalf("canAddQuestion(%s): expected %v, got %v", status, want, got)
		}
	}
}

func TestIsCurrentlyActiveWindow(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	base := Survey{Status: StatusActive, Active: true}
	if !IsCurrentlyActive(base, now) {
		t.Fatal("expected active survey with no window to be collecting")
	}

	windowed := base
	windowed.StartDate = &past
	windowed.EndDate = &future
	if !IsCurrentlyActive(windowed, now) {
		t.Fatal("expected survey inside window to be collecting")
	}

	notStarted := base
	notStarted.StartDate = &future
	if IsCurrentlyActive(notStarted, now) {
		t.Fatal("expected survey before window to be closed")
	}

	expired := base
	expired.EndDate = &past
	if IsCurrentlyActive(expired, now) {
		t.Fatal("expected survey past window to be closed")
	}

	inactive := base
	inactive.Active = false
	if IsCurrentlyActive(inactive, now) {
		t.Fatal("expected inactive flag to close collection")
	}

	paused := base
	paused.Status = StatusPaused
	if IsCurrentlyActive(paused, now) {
		t.Fatal("expected paused survey to be closed")
	}
}

func TestIsFullAndAdmission(t *testing.T) {
	now := time.Now()
	cap := 2

	open := Survey{Status: StatusActive, Active: true, MaxResponses: &cap, ResponseCount: 1}
	if IsFull(open) {
		t.Fatal("did not expect survey below cap to be full")
	}
	if err := CheckAdmission(open, now); err != nil {
		t.Fatalf("expected admission, got %v", err)
	}

	full := open
	full.ResponseCount = 2
	if !IsFull(full) {
		t.Fatal("expected survey at cap to be full")
	}
	if err := CheckAdmission(full, now); !errors.Is(err, ErrSurveyFull) {
		t.Fatalf("expected ErrSurveyFull, got %v", err)
	}

	uncapped := Survey{Status: StatusActive, Active: true, ResponseCount: 10000}
	if IsFull(uncapped) {
		t.Fatal("uncapped survey can never be full")
	}

	closed := Survey{Status: StatusDraft, Active: true}
	if err := CheckAdmission(closed, now); !errors.Is(err, ErrSurveyNotCollecting) {
		t.Fatalf("expected ErrSurveyNotCollecting, got %v", err)
	}
}
