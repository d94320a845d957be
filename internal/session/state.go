package session

import "sync/atomic"

// RunState is the process-wide lifecycle state.
type RunState int32

const (
	// Running means change batches are delivered and dispatched.
	Running RunState = iota
	// Paused means the watch subscription is not delivering batches.
	Paused
	// Stopped is terminal; no transition leaves it.
	Stopped
)

func (s RunState) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// State holds the run state with atomic transitions. Reads are advisory and
// may race with transitions; callers that need a stable view take the
// dispatch guard around the transition instead.
type State struct {
	v atomic.Int32
}

// Current returns the current run state.
func (s *State) Current() RunState {
	return RunState(s.v.Load())
}

// Running reports whether the state is RUNNING.
func (s *State) Running() bool { return s.Current() == Running }

// Paused reports whether the state is PAUSED.
func (s *State) Paused() bool { return s.Current() == Paused }

// Stopped reports whether the state is STOPPED.
func (s *State) Stopped() bool { return s.Current() == Stopped }

// TryPause transitions RUNNING to PAUSED. It reports whether the transition
// happened; from PAUSED or STOPPED it is a no-op.
func (s *State) TryPause() bool {
	return s.v.CompareAndSwap(int32(Running), int32(Paused))
}

// TryResume transitions PAUSED to RUNNING. It reports whether the transition
// happened; from RUNNING or STOPPED it is a no-op.
func (s *State) TryResume() bool {
	return s.v.CompareAndSwap(int32(Paused), int32(Running))
}

// TryStop transitions RUNNING or PAUSED to STOPPED. It reports whether this
// call performed the transition; repeated calls are no-ops.
func (s *State) TryStop() bool {
	for {
		cur := s.v.Load()
		if RunState(cur) == Stopped {
			return false
		}
		if s.v.CompareAndSwap(cur, int32(Stopped)) {
			return true
		}
	}
}
