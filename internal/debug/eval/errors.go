package eval

import (
	"errors"
	"fmt"
)

// Sentinel errors for the eval package.
var (
	// ErrEvalInFlight is returned when a slot registration finds an
	// evaluation already in flight.
	ErrEvalInFlight = errors.New("evaluation already in flight")

	// ErrEvalTimedOut is returned when an evaluation missed its deadline and
	// was subsequently resolved by the abort escalation.
	ErrEvalTimedOut = errors.New("evaluation timed out")

	// ErrEvalCanceled is returned when an evaluation was aborted by an
	// explicit cancellation request.
	ErrEvalCanceled = errors.New("evaluation canceled")

	// ErrCannotCallOnThisThread is returned when the runtime reported that
	// the evaluation thread blocked on another thread and the evaluation was
	// aborted to avoid a deadlock.
	ErrCannotCallOnThisThread = errors.New("cannot evaluate on this thread: cross-thread dependency")

	// ErrEvalUnrecoverable is returned when both wait phases expired without
	// a completion. The debuggee may be left in an inconsistent state and the
	// session should not attempt further evaluations.
	ErrEvalUnrecoverable = errors.New("evaluation abort failed: debuggee state is unrecoverable")
)

// SetupError reports that the setup callback could not program the
// evaluation. No debuggee state changed beyond thread suspension, which is
// restored before the error is returned.
type SetupError struct {
	Err error
}

// Error implements the error interface.
func (e *SetupError) Error() string {
	return fmt.Sprintf("eval setup failed: %v", e.Err)
}

// Unwrap returns the inner setup failure.
func (e *SetupError) Unwrap() error {
	return e.Err
}

// RuntimeError reports that the evaluation ran and failed with a
// runtime-reported status code.
type RuntimeError struct {
	Code uint32
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("evaluation failed with runtime status 0x%08X", e.Code)
}
