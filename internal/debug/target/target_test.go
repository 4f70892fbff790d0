package target

import "testing"

func TestThreadStateString(t *testing.T) {
	tests := []struct {
		state ThreadState
		want  string
	}{
		{ThreadRun, "run"},
		{ThreadSuspend, "suspend"},
		{ThreadState(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("ThreadState(%d).String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}

func TestEvalStatusString(t *testing.T) {
	tests := []struct {
		status EvalStatus
		want   string
	}{
		{EvalCompleted, "completed"},
		{EvalNoResult, "no-result"},
		{EvalAborted, "aborted"},
		{EvalFailed, "failed"},
		{EvalStatus(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("EvalStatus(%d).String() = %q, want %q", int(tt.status), got, tt.want)
		}
	}
}
