package survey

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("survey not found")
	ErrResponseNotFound    = errors.New("survey response not found")
	ErrDuplicateTitle      = errors.New("survey title already in use")
	ErrSystemSurvey        = errors.New("system surveys cannot be modified")
	ErrSurveyLocked        = errors.New("questions can only be added while a survey is draft or published")
	ErrSurveyNotCollecting = errors.New("survey is not currently accepting responses")
	ErrSurveyFull          = errors.New("survey has reached its maximum response count")
	ErrDuplicateResponse   = errors.New("respondent already has a response for this survey")
	ErrActiveSurveyDelete  = errors.New("active surveys cannot be deleted")
)

// TransitionError reports a lifecycle move the state machine forbids.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal survey transition from %s to %s", e.From, e.To)
}
