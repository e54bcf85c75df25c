package session

import (
	"errors"
	"fmt"
)

// Domain errors surfaced by the controller.
var (
	ErrSessionNotLive    = errors.New("session is not accepting changes")
	ErrAlreadySubmitted  = errors.New("session already submitted")
	ErrSubmitInFlight    = errors.New("submission already in progress")
	ErrNotAwaitingResume = errors.New("no resume decision pending")
	ErrResumeMandatory   = errors.New("resume is mandatory while the session tab is alive")
	ErrResumePending     = errors.New("resume decision required before continuing")
	ErrUnknownQuestion   = errors.New("question does not belong to this test")
	ErrAnswerShape       = errors.New("answer shape does not match question type")
	ErrIndexOutOfRange   = errors.New("question index out of range")
)

// SubmissionError wraps an Attempt Repository failure. The session state
// is fully preserved when it is returned; the caller may retry.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }
