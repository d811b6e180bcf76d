// internal/model/message.go
package model

import "time"

type MessageStatus string

const (
	MessageStatusPendingApproval MessageStatus = "pending_approval"
	MessageStatusApproved        MessageStatus = "approved"
	MessageStatusRejected        MessageStatus = "rejected"
	MessageStatusScheduled       MessageStatus = "scheduled"
	MessageStatusSent            MessageStatus = "sent"
	MessageStatusSendFailed      MessageStatus = "send_failed"
	MessageStatusDraftFailed     MessageStatus = "draft_failed"
	MessageStatusReceived        MessageStatus = "received"
)

// messageTransitions maps each non-terminal message status to its legal
// successors. A scheduled row moving to pending_approval is the follow-up
// worker filling in the reservation; everything else is terminal.
var messageTransitions = map[MessageStatus][]MessageStatus{
	MessageStatusPendingApproval: {MessageStatusApproved, MessageStatusRejected},
	MessageStatusApproved:        {MessageStatusSent, MessageStatusSendFailed},
	MessageStatusScheduled:       {MessageStatusPendingApproval, MessageStatusDraftFailed},
}

// entryStatuses are the statuses a message row may be created with.
var entryStatuses = map[MessageStatus]bool{
	MessageStatusPendingApproval: true,
	MessageStatusScheduled:       true,
	MessageStatusReceived:        true,
}

func (s MessageStatus) Valid() bool {
	switch s {
	case MessageStatusPendingApproval, MessageStatusApproved, MessageStatusRejected,
		MessageStatusScheduled, MessageStatusSent, MessageStatusSendFailed,
		MessageStatusDraftFailed, MessageStatusReceived:
		return true
	}
	return false
}

func (s MessageStatus) Terminal() bool {
	return s.Valid() && len(messageTransitions[s]) == 0
}

func (s MessageStatus) CanTransition(to MessageStatus) bool {
	for _, next := range messageTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s MessageStatus) Transition(to MessageStatus) error {
	if !s.CanTransition(to) {
		return &InvalidTransitionError{Entity: "message", From: string(s), To: string(to)}
	}
	return nil
}

// ValidEntry reports whether a new message row may be inserted with status s.
func (s MessageStatus) ValidEntry() bool {
	return entryStatuses[s]
}

type Message struct {
	ID           int           `db:"id" json:"id"`
	LeadID       int           `db:"lead_id" json:"lead_id"`
	Channel      string        `db:"channel" json:"channel"`
	Inbound      bool          `db:"inbound" json:"inbound"`
	Content      string        `db:"content" json:"content"`
	Status       MessageStatus `db:"status" json:"status"`
	SequenceStep int           `db:"sequence_step" json:"sequence_step,omitempty"`
	ScheduledFor *time.Time    `db:"scheduled_for" json:"scheduled_for,omitempty"`
	ThreadID     string        `db:"thread_id" json:"thread_id,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}
