// internal/drafting/producer.go
package drafting

import (
	"context"

	"github.com/draftloop/outreach-backend/internal/model"
)

// Producer is the draft-generation collaborator boundary. An error return or
// an empty string is a failed draft, which callers treat as terminal for the
// claimed row; only a context timeout or cancellation is worth retrying.
type Producer interface {
	DraftInitial(ctx context.Context, lead model.Lead) (string, error)
	DraftFollowUp(ctx context.Context, lead model.Lead, sequenceStep int) (string, error)
	DraftReply(ctx context.Context, conversationHistory string) (string, error)
	GuessEmail(ctx context.Context, fullName, company string) (string, error)
}
