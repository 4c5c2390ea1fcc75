package service

import (
	"errors"
	"fmt"
)

// Domain errors shared by the session services. Handlers map these to API
// error codes; none are retried by the core.
var (
	ErrSessionNotFound      = errors.New("test session not found")
	ErrResultNotFound       = errors.New("test result not found")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrConfigNotFound       = errors.New("test configuration not found or inactive")
	ErrCandidateNotFound    = errors.New("candidate not found")
	ErrCandidateNotApproved = errors.New("only approved candidates can start tests")
	ErrTestAccessDenied     = errors.New("no verified appointment for this test today")
	ErrSessionNotActive     = errors.New("test session is not active")
	ErrSessionExpired       = errors.New("test session has expired")
	ErrNotSessionOwner      = errors.New("access denied to this test session")
	ErrStageMismatch        = errors.New("session is not at the requested stage")
	ErrInvalidStage         = errors.New("written stage is not evaluated through this entry point")
	ErrOfficerNotAssigned   = errors.New("caller is not the officer assigned to this stage")
	ErrOfficerNotFound      = errors.New("assessment officer not found or inactive")
	ErrWrittenStagePending  = errors.New("written stage has not been completed")
)

// InsufficientQuestionsError reports a selection shortfall after backfill.
// It is an aggregate error carrying counts, not a per-question failure.
type InsufficientQuestionsError struct {
	Required  int
	Available int
}

func (e *InsufficientQuestionsError) Error() string {
	return fmt.Sprintf("not enough approved questions available: need %d, found %d", e.Required, e.Available)
}
