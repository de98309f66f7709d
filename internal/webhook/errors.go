package webhook

import "fmt"

// AttemptError describes one failed attempt. Its message always starts with
// the failure class so the three kinds stay distinguishable in logs.
type AttemptError struct {
	Kind       FailureKind
	Attempt    int
	StatusCode int
	Err        error
}

func (e *AttemptError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: attempt %d: HTTP %d: %v", e.Kind, e.Attempt, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: attempt %d: %v", e.Kind, e.Attempt, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// Timeout reports whether the attempt ran out of time.
func (e *AttemptError) Timeout() bool { return e.Kind == FailureTimeout }
