// internal/model/transition.go
package model

import "fmt"

// InvalidTransitionError reports an attempted status move that is not in the
// transition table for its entity.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s status cannot move from %q to %q", e.Entity, e.From, e.To)
}
