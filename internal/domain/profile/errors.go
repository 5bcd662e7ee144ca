package profile

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("success profile not found")
	ErrBindingNotFound  = errors.New("profile does not bind this dimension")
	ErrDuplicateName    = errors.New("profile name already in use")
	ErrDuplicateBinding = errors.New("dimension already bound to this profile")
	ErrSystemProfile    = errors.New("system profiles cannot be modified")
	ErrProfileInactive  = errors.New("profile is inactive")
)

// ThresholdError reports a binding threshold that is inconsistent with itself
// or with the dimension's scale.
type ThresholdError struct {
	Field  string
	Reason string
}

func (e *ThresholdError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
