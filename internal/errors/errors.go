// internal/errors/errors.go
package appErrors

import "fmt"

// ErrLeadNotFound is a sentinel error
type ErrLeadNotFound struct {
	Email string
	ID    int
}

func (e *ErrLeadNotFound) Error() string {
	if e.Email != "" {
		return fmt.Sprintf("lead with email %s not found", e.Email)
	}
	return fmt.Sprintf("lead with ID %d not found", e.ID)
}

// Helper constructors
func NewLeadNotFound(id int) error {
	return &ErrLeadNotFound{ID: id}
}

func NewLeadNotFoundByEmail(email string) error {
	return &ErrLeadNotFound{Email: email}
}

// ErrMessageNotFound covers both a missing row and a row no longer in the
// status the caller required (e.g. approving an already-rejected message).
type ErrMessageNotFound struct {
	MessageID int
}

func (e *ErrMessageNotFound) Error() string {
	return fmt.Sprintf("message with ID %d not found or already processed", e.MessageID)
}

func NewMessageNotFound(id int) error {
	return &ErrMessageNotFound{MessageID: id}
}
