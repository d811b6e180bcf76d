// internal/mailbox/mailbox.go
package mailbox

import "context"

// Handle identifies one message within an open session (IMAP UID).
type Handle uint32

// Session is one open mailbox connection. Handles are only valid for the
// session that produced them.
type Session interface {
	// SearchUnreadFrom lists unread messages authored by the given address.
	SearchUnreadFrom(addr string) ([]Handle, error)
	// Fetch returns the full raw source of a message. A nil result with a
	// nil error means the message was unavailable (transient).
	Fetch(h Handle) ([]byte, error)
	// MarkSeen flags the message read so it is never reprocessed.
	MarkSeen(h Handle) error
	Close() error
}

// Mailbox is the mail-retrieval collaborator boundary.
type Mailbox interface {
	Dial(ctx context.Context) (Session, error)
}
