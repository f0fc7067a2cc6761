package lifecycle

import "fmt"

// Step is one store round-trip of a multi-step transition.
type Step struct {
	Name string
	// Leaves describes the state the store is left in if this step fails.
	Leaves string
	Run    func() error
}

// SagaError reports which step of a saga failed and what had already committed.
type SagaError struct {
	Saga      string
	Step      string
	Leaves    string
	Completed []string
	Err       error
}

func (e *SagaError) Error() string {
	return fmt.Sprintf("%s: step %q failed after %v (%s): %v", e.Saga, e.Step, e.Completed, e.Leaves, e.Err)
}

func (e *SagaError) Unwrap() error { return e.Err }

// RunSaga executes steps in order and stops at the first failure. Completed
// steps are not compensated; the failing step's Leaves text is carried on the
// error so the drift it can cause is visible in logs.
func RunSaga(name string, steps ...Step) error {
	completed := make([]string, 0, len(steps))
	for _, s := range steps {
		if err := s.Run(); err != nil {
			return &SagaError{
				Saga:      name,
				Step:      s.Name,
				Leaves:    s.Leaves,
				Completed: completed,
				Err:       err,
			}
		}
		completed = append(completed, s.Name)
	}
	return nil
}
