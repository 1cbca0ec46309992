package retry

import (
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"
)

// Error types carried by *temporal.ApplicationError across the activity
// boundary. The workflow side classifies failures by these names only.
const (
	TypeTransient    = "TransientServiceError"
	TypeNotFound     = "NotFoundError"
	TypeClient       = "ClientError"
	TypePrecondition = "PreconditionError"
	TypeTerminal     = "TerminalWorkflowError"
	TypeNotReady     = "NotReadyError"
)

// Transient marks a network or 5xx-class failure the retry policy may repeat.
func Transient(msg string, cause error) error {
	return temporal.NewApplicationErrorWithCause(msg, TypeTransient, cause)
}

// NotFound marks a resource that does not exist yet. Polls keep going on it.
func NotFound(msg string, cause error) error {
	return temporal.NewApplicationErrorWithCause(msg, TypeNotFound, cause)
}

// Client marks a rejected request. It is never retried.
func Client(msg string, cause error) error {
	return temporal.NewNonRetryableApplicationError(msg, TypeClient, cause)
}

// Precondition marks a step that cannot start because its inputs are missing.
func Precondition(msg string, cause error) error {
	return temporal.NewNonRetryableApplicationError(msg, TypePrecondition, cause)
}

// IsTransient reports whether err is retryable by the step policy. Activity
// timeouts count as transient; an exhausted policy or poll never does.
func IsTransient(err error) bool {
	if err == nil || IsTerminal(err) {
		return false
	}
	if hasType(err, TypeTransient) {
		return true
	}
	var timeoutErr *temporal.TimeoutError
	return errors.As(err, &timeoutErr)
}

// IsNotFound reports whether err says the remote resource does not exist yet.
func IsNotFound(err error) bool {
	return hasType(err, TypeNotFound)
}

func hasType(err error, typ string) bool {
	var appErr *temporal.ApplicationError
	for e := err; errors.As(e, &appErr); e = appErr.Unwrap() {
		if appErr.Type() == typ {
			return true
		}
	}
	return false
}

// Remark returns the human-readable message of err without the activity
// envelope the workflow engine adds around it.
func Remark(err error) string {
	if err == nil {
		return ""
	}
	if te, ok := err.(*TerminalError); ok {
		return te.Error()
	}
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	msg := appErr.Message()
	if cause := appErr.Unwrap(); cause != nil {
		if msg == "" {
			return Remark(cause)
		}
		msg += ": " + Remark(cause)
	}
	return msg
}

// TerminalError is returned once a policy or poll gives up. Attempts is the
// number of times the operation ran.
type TerminalError struct {
	Attempts int
	Err      error
}

func (e *TerminalError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %s", e.Attempts, Remark(e.Err))
}

func (e *TerminalError) Unwrap() error {
	return e.Err
}

// IsTerminal reports whether err is a *TerminalError.
func IsTerminal(err error) bool {
	var te *TerminalError
	return errors.As(err, &te)
}
