package eval

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/randomnoise/netcoredbg/internal/debug/target"
)

// DefaultPhaseTimeout is the deadline for each of the two wait phases. It
// matches the NormalEvalTimeout other .NET debuggers default to.
const DefaultPhaseTimeout = 5 * time.Second

// SetupFunc programs a freshly created evaluation handle with the call or
// value to evaluate.
type SetupFunc func(ev target.Eval) error

// Waiter is the evaluation coordinator. It drives the suspend, submit,
// resume, wait and abort-escalation sequence for one evaluation at a time and
// bridges the runtime's completion callback into the blocking caller.
type Waiter struct {
	registry     *Registry
	notification *target.NotificationClass
	log          *zap.Logger

	// timeoutMu guards phaseTimeout, which a configuration reload may
	// replace while an evaluation is in flight.
	timeoutMu    sync.Mutex
	phaseTimeout time.Duration

	// waitMu serializes entire WaitEvalResult invocations. The runtime
	// permits a single evaluation in flight, and the thread suspension
	// bracketing is not reentrant-safe.
	waitMu sync.Mutex

	// Session flags, scoped to one WaitEvalResult invocation. Written by the
	// cancellation and cross-thread-dependency paths on arbitrary
	// goroutines, read during outcome translation.
	flagsMu               sync.Mutex
	canceled              bool
	crossThreadDependency bool
}

// Option configures a Waiter.
type Option func(*Waiter)

// WithLogger sets the logger used for degraded-condition reporting.
func WithLogger(log *zap.Logger) Option {
	return func(w *Waiter) {
		if log != nil {
			w.log = log
		}
	}
}

// WithPhaseTimeout sets the deadline used by each of the two wait phases.
func WithPhaseTimeout(d time.Duration) Option {
	return func(w *Waiter) {
		if d > 0 {
			w.phaseTimeout = d
		}
	}
}

// New creates a Waiter.
func New(opts ...Option) *Waiter {
	w := &Waiter{
		notification: &target.NotificationClass{},
		log:          zap.NewNop(),
		phaseTimeout: DefaultPhaseTimeout,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.registry = NewRegistry(w.log)
	return w
}

// PhaseTimeout returns the deadline currently used by each wait phase.
func (w *Waiter) PhaseTimeout() time.Duration {
	w.timeoutMu.Lock()
	defer w.timeoutMu.Unlock()
	return w.phaseTimeout
}

// SetPhaseTimeout replaces the wait-phase deadline for subsequent
// evaluations. An evaluation already blocked keeps the deadline it started
// with. Non-positive durations are ignored.
func (w *Waiter) SetPhaseTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	w.timeoutMu.Lock()
	w.phaseTimeout = d
	w.timeoutMu.Unlock()
}

// ResolveNotificationClass resolves the cross-thread dependency notification
// class from mod and caches it for subsequent evaluations. Called once per
// load of the module carrying the well-known diagnostic type.
func (w *Waiter) ResolveNotificationClass(mod target.Module) error {
	return w.notification.Resolve(mod)
}

// WaitEvalResult runs an evaluation on thread and blocks until it completes,
// is aborted, or both wait phases expire. setup programs the evaluation on
// the handle created for the target thread.
//
// On success the returned value handle is owned by the caller; a completed
// evaluation without a value (a void call) returns nil, nil. Aborted
// evaluations are translated into ErrEvalCanceled, ErrCannotCallOnThisThread
// or ErrEvalTimedOut depending on what triggered the abort.
func (w *Waiter) WaitEvalResult(thread target.Thread, setup SetupFunc) (target.Value, error) {
	// Evaluation may proceed for only one thread at a time. Callbacks
	// provoked by user code running during the evaluation (breakpoints,
	// exceptions) are suppressed by policy elsewhere; nothing here pauses
	// managed execution.
	w.waitMu.Lock()
	defer w.waitMu.Unlock()

	proc, err := thread.Process()
	if err != nil {
		return nil, fmt.Errorf("resolve owning process: %w", err)
	}
	threadID := thread.ID()

	log := w.log.With(
		zap.String("eval_id", uuid.NewString()),
		zap.Int("thread_id", threadID),
	)

	w.resetFlags()
	w.setCustomNotification(proc, true, log)
	defer w.setCustomNotification(proc, false, log)

	// Thread-state restoration is unconditional, the fatal path included.
	defer w.changeThreadsState(proc, threadID, target.ThreadRun, log)

	res, timedOut, err := w.waitResult(proc, thread, threadID, setup, log)
	if err != nil {
		return nil, err
	}
	return w.translate(res, timedOut)
}

// waitResult suspends the other threads, submits the evaluation, and drives
// the two wait phases with abort escalation between them. The returned bool
// reports whether the first phase deadline expired.
func (w *Waiter) waitResult(proc target.Process, thread target.Thread, threadID int, setup SetupFunc, log *zap.Logger) (target.EvalResult, bool, error) {
	// One deadline snapshot per evaluation; a reload applies from the next
	// one.
	timeout := w.PhaseTimeout()

	// Suspend every managed thread not used for the evaluation: delegates,
	// reverse p/invokes, worker threads.
	w.changeThreadsState(proc, threadID, target.ThreadSuspend, log)

	ev, err := thread.NewEval()
	if err != nil {
		return target.EvalResult{}, false, fmt.Errorf("create eval: %w", err)
	}

	done, err := w.runEval(proc, threadID, ev, setup, log)
	if err != nil {
		return target.EvalResult{}, false, err
	}

	select {
	case res := <-done:
		return res, false, nil
	case <-time.After(timeout):
	}

	log.Warn("evaluation timed out; allowing all threads to run to attempt an abort")
	log.Warn("process state may have changed and breakpoints or exceptions in this window are skipped")

	// The runtime's abort primitives are unreliable on some platform and
	// architecture combinations while other threads stay suspended. Stop the
	// process, resume everything, and try to abort by any means. Errors are
	// ignored; this is the last chance to keep the session from hanging.
	if err := proc.Stop(); err != nil {
		log.Warn("stop before abort failed", zap.Error(err))
	}
	w.changeThreadsState(proc, threadID, target.ThreadRun, log)
	if err := abortEval(ev); err != nil {
		log.Error("abort and rude abort both failed", zap.Error(err))
	}
	if err := proc.Continue(); err != nil {
		log.Warn("continue after abort failed", zap.Error(err))
	}

	// Second phase: give the abort a chance to land.
	select {
	case res := <-done:
		return res, true, nil
	case <-time.After(timeout):
	}

	// The evaluation cannot be aborted. The debuggee holds inconsistent
	// state now; the slot is force-cleared since its completion will never
	// be trusted, and the session must not attempt further evaluations.
	if err := proc.Stop(); err != nil {
		log.Error("stop after failed abort failed", zap.Error(err))
	}
	w.registry.Clear()
	// A completion delivered between the phase deadline and the clear sits in
	// the handoff buffer and will never be read again; release its value
	// handle before abandoning the channel.
	select {
	case res := <-done:
		if res.Value != nil {
			_ = res.Value.Release()
		}
	default:
	}
	log.Error("evaluation abort failed; debug session cannot safely continue evaluations")
	return target.EvalResult{}, true, ErrEvalUnrecoverable
}

// runEval registers the evaluation slot, programs the handle, and resumes
// the process so the target thread can run it.
func (w *Waiter) runEval(proc target.Process, threadID int, ev target.Eval, setup SetupFunc, log *zap.Logger) (<-chan target.EvalResult, error) {
	done, err := w.registry.Register(threadID, ev)
	if err != nil {
		return nil, err
	}

	// There is no easy way to abort an already-programmed evaluation on a
	// debugger API error, so program it only when everything else is ready
	// to run.
	if err := setup(ev); err != nil {
		w.registry.Clear()
		log.Error("eval setup failed", zap.Error(err))
		return nil, &SetupError{Err: err}
	}

	if err := proc.Continue(); err != nil {
		w.registry.Clear()
		log.Error("continue for eval failed", zap.Error(err))
		return nil, fmt.Errorf("continue process: %w", err)
	}

	return done, nil
}

// translate maps a delivered outcome and the session flags onto the caller
// visible result.
func (w *Waiter) translate(res target.EvalResult, timedOut bool) (target.Value, error) {
	if res.Status == target.EvalAborted {
		canceled, crossThread := w.sessionFlags()
		switch {
		case crossThread:
			return nil, ErrCannotCallOnThisThread
		case canceled:
			return nil, ErrEvalCanceled
		default:
			return nil, ErrEvalTimedOut
		}
	}

	if timedOut {
		// The outcome landed only inside the escalation window, after all
		// threads were allowed to run. Report the timeout; a value produced
		// by the raced completion is released, not handed out.
		if res.Value != nil {
			_ = res.Value.Release()
		}
		return nil, ErrEvalTimedOut
	}

	switch res.Status {
	case target.EvalFailed:
		return nil, &RuntimeError{Code: res.Code}
	case target.EvalNoResult:
		return nil, nil
	default:
		return res.Value, nil
	}
}

// changeThreadsState sets every debuggee thread except the evaluation thread
// to state. Individual failures degrade the session instead of failing the
// evaluation.
func (w *Waiter) changeThreadsState(proc target.Process, evalThreadID int, state target.ThreadState, log *zap.Logger) {
	threads, err := proc.Threads()
	if err != nil {
		log.Warn("enumerate threads failed",
			zap.Stringer("state", state),
			zap.Error(err))
		return
	}

	for _, t := range threads {
		tid := t.ID()
		if tid == evalThreadID {
			continue
		}
		if err := t.SetState(state); err == nil {
			continue
		} else if state == target.ThreadSuspend {
			log.Warn("suspend during eval setup failed; breakpoints and exceptions hit meanwhile are skipped",
				zap.Int("suspend_thread_id", tid),
				zap.Error(err))
		} else {
			log.Warn("resume after eval failed; process state was not restored",
				zap.Int("resume_thread_id", tid),
				zap.Error(err))
		}
	}
}

// setCustomNotification toggles cross-thread dependency notifications for
// the process. A missing notification class (module not loaded yet) skips
// the toggle; failures are best-effort.
func (w *Waiter) setCustomNotification(proc target.Process, enable bool, log *zap.Logger) {
	cls, ok := w.notification.Class()
	if !ok {
		return
	}
	if err := proc.EnableCustomNotification(cls, enable); err != nil {
		log.Warn("toggle cross-thread dependency notification failed",
			zap.Bool("enable", enable),
			zap.Error(err))
	}
}

// abortEval escalates from cooperative to rude abort. Returns nil as soon as
// either primitive succeeds.
func abortEval(ev target.Eval) error {
	if err := ev.Abort(); err == nil {
		return nil
	}
	return ev.RudeAbort()
}

// Session flag accessors.

func (w *Waiter) resetFlags() {
	w.flagsMu.Lock()
	w.canceled = false
	w.crossThreadDependency = false
	w.flagsMu.Unlock()
}

func (w *Waiter) setCanceled() {
	w.flagsMu.Lock()
	w.canceled = true
	w.flagsMu.Unlock()
}

func (w *Waiter) setCrossThreadDependency() {
	w.flagsMu.Lock()
	w.crossThreadDependency = true
	w.flagsMu.Unlock()
}

func (w *Waiter) sessionFlags() (canceled, crossThread bool) {
	w.flagsMu.Lock()
	defer w.flagsMu.Unlock()
	return w.canceled, w.crossThreadDependency
}
