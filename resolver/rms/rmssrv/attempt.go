package rmssrv

// AttemptPhase is the retry loop's position
type AttemptPhase int

const (
	PhaseAttempting AttemptPhase = iota
	PhaseSucceeded
	PhaseExhausted
)

func (p AttemptPhase) String() string {
	switch p {
	case PhaseAttempting:
		return "attempting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseExhausted:
		return "exhausted"
	}
	return "unknown"
}

// AttemptState models the retry loop explicitly so it can be tested
// without I/O. Attempt is 1-based; LastErr carries the most recent
// failure once exhausted.
type AttemptState struct {
	Phase       AttemptPhase
	Attempt     int
	MaxAttempts int
	LastErr     error
}

// NewAttemptState starts at attempt 1
func NewAttemptState(maxAttempts int) AttemptState {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return AttemptState{Phase: PhaseAttempting, Attempt: 1, MaxAttempts: maxAttempts}
}

// Step advances the state with the outcome of the current attempt.
// A nil error succeeds; a non-retryable error or an exhausted budget
// terminates; otherwise the next attempt begins. Pure: the receiver is
// unchanged.
func (s AttemptState) Step(err error, retryable bool) AttemptState {
	if s.Phase != PhaseAttempting {
		return s
	}
	if err == nil {
		s.Phase = PhaseSucceeded
		s.LastErr = nil
		return s
	}
	s.LastErr = err
	if !retryable || s.Attempt >= s.MaxAttempts {
		s.Phase = PhaseExhausted
		return s
	}
	s.Attempt++
	return s
}
