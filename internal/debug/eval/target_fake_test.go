package eval

import (
	"errors"
	"sync"
	"time"

	"github.com/randomnoise/netcoredbg/internal/debug/target"
)

// Hand-written fakes for the target capability set.

type fakeValue struct {
	mu       sync.Mutex
	released int
}

func (v *fakeValue) Release() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.released++
	return nil
}

func (v *fakeValue) releaseCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.released
}

type fakeEval struct {
	mu         sync.Mutex
	result     target.EvalResult
	abortErr   error
	rudeErr    error
	aborts     int
	rudeAborts int
}

func (e *fakeEval) Abort() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.aborts++
	return e.abortErr
}

func (e *fakeEval) RudeAbort() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rudeAborts++
	return e.rudeErr
}

func (e *fakeEval) Result() target.EvalResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}

func (e *fakeEval) counts() (aborts, rudeAborts int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.aborts, e.rudeAborts
}

type fakeThread struct {
	id   int
	proc *fakeProcess

	mu       sync.Mutex
	eval     *fakeEval
	evalErr  error
	stateErr error
	states   []target.ThreadState
}

func (t *fakeThread) ID() int { return t.id }

func (t *fakeThread) Process() (target.Process, error) {
	if t.proc == nil {
		return nil, errors.New("thread has no process")
	}
	return t.proc, nil
}

func (t *fakeThread) SetState(s target.ThreadState) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states = append(t.states, s)
	return t.stateErr
}

func (t *fakeThread) NewEval() (target.Eval, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.evalErr != nil {
		return nil, t.evalErr
	}
	if t.eval == nil {
		t.eval = &fakeEval{}
	}
	return t.eval, nil
}

func (t *fakeThread) stateHistory() []target.ThreadState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]target.ThreadState{}, t.states...)
}

type fakeProcess struct {
	mu            sync.Mutex
	threads       []target.Thread
	continueErr   error
	continues     int
	stops         int
	notifications []bool

	// onStop, when set, runs after each Stop with the stop count. Set before
	// the evaluation starts.
	onStop func(stops int)
}

func (p *fakeProcess) Threads() ([]target.Thread, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]target.Thread{}, p.threads...), nil
}

func (p *fakeProcess) Continue() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.continues++
	return p.continueErr
}

func (p *fakeProcess) Stop() error {
	p.mu.Lock()
	p.stops++
	stops := p.stops
	hook := p.onStop
	p.mu.Unlock()
	if hook != nil {
		hook(stops)
	}
	return nil
}

func (p *fakeProcess) EnableCustomNotification(cls target.Class, enable bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, enable)
	return nil
}

func (p *fakeProcess) counters() (continues, stops int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.continues, p.stops
}

// newEvalFixture builds a process with an evaluation thread (id 1) and one
// worker thread (id 2) that gets suspended during evaluation.
func newEvalFixture() (*fakeProcess, *fakeThread, *fakeThread) {
	proc := &fakeProcess{}
	evalThread := &fakeThread{id: 1, proc: proc}
	worker := &fakeThread{id: 2, proc: proc}
	proc.threads = []target.Thread{evalThread, worker}
	return proc, evalThread, worker
}

// waitFor polls cond until it holds or the timeout expires.
func waitFor(cond func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}
