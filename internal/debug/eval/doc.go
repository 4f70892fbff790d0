// Package eval coordinates expression evaluation inside the debuggee.
//
// Running user code in the debuggee (a function call, a property getter)
// requires a rendezvous between the session's controlling goroutine and the
// runtime's callback thread: every other debuggee thread is suspended, a
// runtime evaluation is submitted on the target thread, the process resumes,
// and the caller blocks until the runtime signals completion or the abort
// escalation ladder gives up.
//
// The package guarantees at most one evaluation in flight per Waiter,
// delivers completion callbacks into the blocking waiter through a one-shot
// channel, and translates aborted outcomes into distinct timeout, cancel and
// cross-thread-dependency errors.
package eval
