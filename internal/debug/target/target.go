package target

// ThreadState is the debug state of a debuggee thread.
type ThreadState int

const (
	// ThreadRun allows the thread to execute when the process runs.
	ThreadRun ThreadState = iota
	// ThreadSuspend keeps the thread parked while the process runs.
	ThreadSuspend
)

// String returns the state name.
func (s ThreadState) String() string {
	switch s {
	case ThreadRun:
		return "run"
	case ThreadSuspend:
		return "suspend"
	default:
		return "unknown"
	}
}

// EvalStatus classifies the outcome of a finished evaluation.
type EvalStatus int

const (
	// EvalCompleted means the evaluation produced a result value.
	EvalCompleted EvalStatus = iota
	// EvalNoResult means the evaluation completed without producing a value,
	// such as a call whose return type is void.
	EvalNoResult
	// EvalAborted means an abort landed before the evaluation completed.
	EvalAborted
	// EvalFailed means the runtime reported a failure status.
	EvalFailed
)

// String returns the status name.
func (s EvalStatus) String() string {
	switch s {
	case EvalCompleted:
		return "completed"
	case EvalNoResult:
		return "no-result"
	case EvalAborted:
		return "aborted"
	case EvalFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EvalResult is the outcome extracted from a finished evaluation handle.
type EvalResult struct {
	Status EvalStatus

	// Code is the raw runtime status code, meaningful when Status is
	// EvalFailed.
	Code uint32

	// Value is the result handle, non-nil only when Status is EvalCompleted.
	// Ownership transfers to the receiver.
	Value Value
}

// Value is an owned handle to a value inside the debuggee. The holder must
// release it exactly once through the transport.
type Value interface {
	Release() error
}

// Eval is a runtime evaluation handle. It is borrowed from the transport for
// the lifetime of a single evaluation slot.
type Eval interface {
	// Abort requests cooperative termination of the running evaluation.
	Abort() error

	// RudeAbort terminates the evaluation unconditionally, bypassing
	// cooperative cleanup. Used when Abort fails; unreliable on some
	// platform and architecture combinations, like Abort itself.
	RudeAbort() error

	// Result extracts the outcome after the runtime has signaled completion.
	Result() EvalResult
}

// Thread is a debuggee thread handle.
type Thread interface {
	// ID returns the runtime thread identifier.
	ID() int

	// Process resolves the process owning this thread.
	Process() (Process, error)

	// SetState changes the thread's debug state.
	SetState(state ThreadState) error

	// NewEval creates an evaluation handle bound to this thread.
	NewEval() (Eval, error)
}

// Process is a debuggee process handle.
type Process interface {
	// Threads enumerates the current debuggee threads.
	Threads() ([]Thread, error)

	// Continue resumes process execution.
	Continue() error

	// Stop synchronously stops process execution.
	Stop() error

	// EnableCustomNotification enables or disables delivery of custom
	// debugger notifications for instances of cls.
	EnableCustomNotification(cls Class, enable bool) error
}

// TypeToken identifies a type definition within a module's metadata.
type TypeToken uint32

// TypeTokenNil is the absent token, used as the parent for top-level lookups.
const TypeTokenNil TypeToken = 0

// Class is an opaque handle to a class loaded in the debuggee.
type Class interface{}

// Module provides metadata access for one debuggee module.
type Module interface {
	// FindTypeDef resolves a type definition by name. When parent is not
	// TypeTokenNil the lookup is scoped to types nested under it.
	FindTypeDef(name string, parent TypeToken) (TypeToken, error)

	// ClassFromToken resolves a class handle from a type definition token.
	ClassFromToken(tok TypeToken) (Class, error)
}
