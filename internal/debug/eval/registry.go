package eval

import (
	"sync"

	"go.uber.org/zap"

	"github.com/randomnoise/netcoredbg/internal/debug/target"
)

// Registry holds the single in-flight evaluation slot. At most one
// evaluation exists per registry; entry into the waiter is serialized, so a
// second registration is a programming error surfaced as ErrEvalInFlight.
//
// Registry is safe for concurrent use. Its lock is held only for slot
// bookkeeping, never across a call into the debug target.
type Registry struct {
	mu   sync.Mutex
	slot *slot
	log  *zap.Logger
}

// slot is one in-flight evaluation. done is a one-shot handoff: exactly one
// send and at most one receive happen per slot instance.
type slot struct {
	threadID int
	eval     target.Eval
	done     chan target.EvalResult
}

// NewRegistry creates an empty registry.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{log: log}
}

// Register records the evaluation running on threadID and returns the
// channel its outcome will be delivered on.
func (r *Registry) Register(threadID int, ev target.Eval) (<-chan target.EvalResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slot != nil {
		return nil, ErrEvalInFlight
	}

	r.slot = &slot{
		threadID: threadID,
		eval:     ev,
		done:     make(chan target.EvalResult, 1),
	}
	return r.slot.done, nil
}

// InFlight reports whether an evaluation slot exists.
func (r *Registry) InFlight() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slot != nil
}

// EvalForThread returns the in-flight eval handle if threadID owns it, nil
// otherwise.
func (r *Registry) EvalForThread(threadID int) target.Eval {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slot == nil || r.slot.threadID != threadID {
		return nil
	}
	return r.slot.eval
}

// CurrentEval returns the in-flight eval handle regardless of owner, nil if
// none. Callers abort the handle outside the registry lock.
func (r *Registry) CurrentEval() target.Eval {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slot == nil {
		return nil
	}
	return r.slot.eval
}

// Complete delivers res to the slot owned by threadID and clears the slot,
// reporting whether delivery happened. A completion for an absent or
// differently owned slot is dropped: runtime callbacks can race with
// cancellation or reset, and a late completion must not resurrect a cleared
// slot or unblock an unrelated waiter.
func (r *Registry) Complete(threadID int, res target.EvalResult) bool {
	r.mu.Lock()
	s := r.slot
	if s == nil || s.threadID != threadID {
		r.mu.Unlock()
		r.releaseDropped(res, threadID)
		return false
	}
	r.slot = nil

	// Buffered one-shot channel; the slot is cleared above, so this is the
	// only send that can ever happen for it and it cannot block. Sending
	// before unlocking means that once a Clear returns, any outcome that was
	// delivered is already buffered and a drain of the channel observes it.
	s.done <- res
	r.mu.Unlock()
	return true
}

// Clear unconditionally discards the in-flight slot without completing its
// channel.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.slot = nil
	r.mu.Unlock()
}

// releaseDropped releases the value of an undeliverable outcome so the
// handle does not leak in the transport.
func (r *Registry) releaseDropped(res target.EvalResult, threadID int) {
	r.log.Debug("dropping evaluation completion with no matching slot",
		zap.Int("thread_id", threadID),
		zap.Stringer("status", res.Status))
	if res.Value != nil {
		if err := res.Value.Release(); err != nil {
			r.log.Warn("release of dropped eval result failed", zap.Error(err))
		}
	}
}
