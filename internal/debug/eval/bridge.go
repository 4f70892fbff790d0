package eval

import (
	"go.uber.org/zap"

	"github.com/randomnoise/netcoredbg/internal/debug/target"
)

// NotifyEvalComplete delivers a completion callback from the runtime into
// the blocking waiter. It runs on whatever thread the runtime chose for the
// callback and must not block on application logic: it only extracts the
// outcome and performs a one-shot channel send.
//
// A nil thread means no evaluation outcome is available; any in-flight slot
// is cleared. A nil eval reports completion without a result.
func (w *Waiter) NotifyEvalComplete(thread target.Thread, ev target.Eval) {
	if thread == nil {
		w.registry.Clear()
		return
	}

	res := target.EvalResult{Status: target.EvalNoResult}
	if ev != nil {
		res = ev.Result()
	}

	w.registry.Complete(thread.ID(), res)
}

// IsEvalRunning reports whether an evaluation is in flight. Used by session
// control and by reentrancy guards elsewhere in the debugger.
func (w *Waiter) IsEvalRunning() bool {
	return w.registry.InFlight()
}

// CancelEvalRunning aborts the in-flight evaluation on demand, typically for
// a user-initiated stop. A no-op when nothing is in flight. On a successful
// abort the canceled flag makes the eventual aborted outcome translate to
// ErrEvalCanceled.
func (w *Waiter) CancelEvalRunning() {
	// Snapshot the handle and abort outside the slot lock; the target may
	// block or re-enter. A completion racing the abort is dropped by the
	// registry's owner check.
	ev := w.registry.CurrentEval()
	if ev == nil {
		return
	}

	if err := abortEval(ev); err != nil {
		w.log.Error("cancel: abort and rude abort both failed", zap.Error(err))
		return
	}
	w.setCanceled()
}

// OnCrossThreadDependency handles the runtime notification that a thread
// running an evaluation blocked waiting on another thread. Notifications
// from threads that do not own the in-flight evaluation, including threads
// created during the evaluation, are ignored. On a successful abort the
// cross-thread flag makes the eventual aborted outcome translate to
// ErrCannotCallOnThisThread.
func (w *Waiter) OnCrossThreadDependency(thread target.Thread) error {
	ev := w.registry.EvalForThread(thread.ID())
	if ev == nil {
		return nil
	}

	if err := abortEval(ev); err != nil {
		w.log.Error("cross-thread dependency: abort and rude abort both failed",
			zap.Int("thread_id", thread.ID()),
			zap.Error(err))
		return err
	}

	w.setCrossThreadDependency()
	return nil
}
