// internal/repository/message_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	appErrors "github.com/draftloop/outreach-backend/internal/errors"
	"github.com/draftloop/outreach-backend/internal/model"
)

type MessageRepositoryInterface interface {
	ListPending() ([]PendingMessage, error)
	Approve(id int) (*model.Message, error)
	Reject(id int) (*model.Message, error)
	UpdateContent(id int, content string) (*model.Message, error)
	InsertDraft(msg *model.Message) error
	ThreadHistory(leadID int, threadID string) ([]model.Message, error)
	RecordReplyExchange(ctx context.Context, leadID int, threadID, inboundText, replyDraft string) error
	ClaimScheduled(ctx context.Context) (*ClaimedFollowUp, error)
	ClaimApproved(ctx context.Context) (*ClaimedSend, error)
}

type MessageRepository struct {
	DB *sql.DB
}

const messageColumns = `id, lead_id, channel, inbound, COALESCE(content,''), status,
		COALESCE(sequence_step, 0), scheduled_for, COALESCE(thread_id,''), created_at`

func scanMessage(row interface{ Scan(...any) error }) (*model.Message, error) {
	var m model.Message
	err := row.Scan(&m.ID, &m.LeadID, &m.Channel, &m.Inbound, &m.Content, &m.Status,
		&m.SequenceStep, &m.ScheduledFor, &m.ThreadID, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// PendingMessage is a message awaiting human review, joined with the lead
// fields the approval dashboard displays.
type PendingMessage struct {
	ID        int                 `json:"id"`
	Content   string              `json:"content"`
	Channel   string              `json:"channel"`
	Status    model.MessageStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	FullName  string              `json:"full_name"`
	Company   string              `json:"company"`
	Title     string              `json:"title"`
}

func (r *MessageRepository) ListPending() ([]PendingMessage, error) {
	query := `
        SELECT m.id, COALESCE(m.content,''), m.channel, m.status, m.created_at,
               l.full_name, COALESCE(l.company,''), COALESCE(l.title,'')
        FROM messages m
        JOIN leads l ON m.lead_id = l.id
        WHERE m.status = 'pending_approval'
        ORDER BY m.created_at DESC
    `
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pending := []PendingMessage{}
	for rows.Next() {
		var p PendingMessage
		if err := rows.Scan(&p.ID, &p.Content, &p.Channel, &p.Status, &p.CreatedAt,
			&p.FullName, &p.Company, &p.Title); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// Approve clears a pending message for transmission. The status guard in the
// WHERE clause makes concurrent approve/reject first-writer-wins.
func (r *MessageRepository) Approve(id int) (*model.Message, error) {
	return r.updateFromPending(id, model.MessageStatusApproved)
}

// Reject is terminal; the message is discarded from further processing.
func (r *MessageRepository) Reject(id int) (*model.Message, error) {
	return r.updateFromPending(id, model.MessageStatusRejected)
}

func (r *MessageRepository) updateFromPending(id int, to model.MessageStatus) (*model.Message, error) {
	if err := model.MessageStatusPendingApproval.Transition(to); err != nil {
		return nil, err
	}
	query := `
        UPDATE messages SET status = $1
        WHERE id = $2 AND status = 'pending_approval'
        RETURNING ` + messageColumns
	m, err := scanMessage(r.DB.QueryRow(query, to, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewMessageNotFound(id)
		}
		return nil, err
	}
	return m, nil
}

// UpdateContent is the human edit-in-place on a pending draft; the status
// does not change.
func (r *MessageRepository) UpdateContent(id int, content string) (*model.Message, error) {
	query := `
        UPDATE messages SET content = $1
        WHERE id = $2 AND status = 'pending_approval'
        RETURNING ` + messageColumns
	m, err := scanMessage(r.DB.QueryRow(query, content, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewMessageNotFound(id)
		}
		return nil, err
	}
	return m, nil
}

// InsertDraft stores an externally produced draft (the /api/drafts intake).
func (r *MessageRepository) InsertDraft(msg *model.Message) error {
	if !msg.Status.ValidEntry() {
		return fmt.Errorf("status %q is not a valid entry status", msg.Status)
	}
	query := `
        INSERT INTO messages (lead_id, content, status, channel, inbound, thread_id)
        VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
        RETURNING id, created_at
    `
	return r.DB.QueryRow(query, msg.LeadID, msg.Content, msg.Status, msg.Channel,
		msg.Inbound, msg.ThreadID).Scan(&msg.ID, &msg.CreatedAt)
}

// ThreadHistory returns every message in one conversation, oldest first.
func (r *MessageRepository) ThreadHistory(leadID int, threadID string) ([]model.Message, error) {
	query := `
        SELECT ` + messageColumns + `
        FROM messages
        WHERE lead_id = $1 AND thread_id = $2
        ORDER BY created_at ASC
    `
	rows, err := r.DB.Query(query, leadID, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []model.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		history = append(history, *m)
	}
	return history, rows.Err()
}

// RecordReplyExchange atomically stores an inbound reply and its AI-drafted
// response, both stamped with the thread token, and marks the lead replied.
// A crash before commit leaves no trace, so the reply is rediscovered while
// it stays unread in the mailbox.
func (r *MessageRepository) RecordReplyExchange(ctx context.Context, leadID int, threadID, inboundText, replyDraft string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO messages (lead_id, content, status, channel, inbound, thread_id)
        VALUES ($1, $2, 'received', 'email', TRUE, $3)
    `, leadID, inboundText, threadID)
	if err != nil {
		return fmt.Errorf("record inbound reply: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO messages (lead_id, content, status, channel, inbound, thread_id)
        VALUES ($1, $2, 'pending_approval', 'email', FALSE, $3)
    `, leadID, replyDraft, threadID)
	if err != nil {
		return fmt.Errorf("record drafted reply: %w", err)
	}

	var current model.LeadStatus
	if err := tx.QueryRowContext(ctx, `SELECT status FROM leads WHERE id = $1 FOR UPDATE`, leadID).Scan(&current); err != nil {
		return err
	}
	if current.CanTransition(model.LeadStatusReplied) {
		if _, err := tx.ExecContext(ctx, `UPDATE leads SET status = 'replied' WHERE id = $1`, leadID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ClaimScheduled claims one scheduled message whose time has elapsed, joined
// with the owning lead's profile for follow-up drafting. Returns (nil, nil)
// when nothing is due. The lock covers only the message row so the sending
// worker is never blocked on the lead.
func (r *MessageRepository) ClaimScheduled(ctx context.Context) (*ClaimedFollowUp, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	query := `
        SELECT m.id, m.lead_id, m.channel, m.inbound, COALESCE(m.content,''), m.status,
               COALESCE(m.sequence_step, 0), m.scheduled_for, COALESCE(m.thread_id,''), m.created_at,
               l.full_name, COALESCE(l.company,''), COALESCE(l.title,''), l.email,
               COALESCE(l.linkedin_url,''), l.preferred_channel, l.status
        FROM messages m
        JOIN leads l ON m.lead_id = l.id
        WHERE m.status = 'scheduled' AND m.scheduled_for <= NOW()
        ORDER BY m.scheduled_for
        LIMIT 1
        FOR UPDATE OF m SKIP LOCKED
    `
	var m model.Message
	var l model.Lead
	err = tx.QueryRowContext(ctx, query).Scan(
		&m.ID, &m.LeadID, &m.Channel, &m.Inbound, &m.Content, &m.Status,
		&m.SequenceStep, &m.ScheduledFor, &m.ThreadID, &m.CreatedAt,
		&l.FullName, &l.Company, &l.Title, &l.Email,
		&l.LinkedInURL, &l.PreferredChannel, &l.Status,
	)
	if err != nil {
		tx.Rollback()
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	l.ID = m.LeadID
	return &ClaimedFollowUp{msg: m, lead: l, tx: tx}, nil
}

// ClaimedFollowUp is a lease on one due scheduled message.
type ClaimedFollowUp struct {
	msg  model.Message
	lead model.Lead
	tx   *sql.Tx
}

func (c *ClaimedFollowUp) Message() model.Message { return c.msg }
func (c *ClaimedFollowUp) Lead() model.Lead       { return c.lead }

// Succeed fills the reservation in place: the scheduled row becomes the
// pending follow-up draft and its due time is cleared.
func (c *ClaimedFollowUp) Succeed(content string) error {
	if err := c.msg.Status.Transition(model.MessageStatusPendingApproval); err != nil {
		c.tx.Rollback()
		return err
	}
	_, err := c.tx.Exec(`
        UPDATE messages
        SET content = $1, status = 'pending_approval', scheduled_for = NULL
        WHERE id = $2
    `, content, c.msg.ID)
	if err != nil {
		c.tx.Rollback()
		return err
	}
	return c.tx.Commit()
}

// FailDrafting is terminal so the reservation is not retried indefinitely.
func (c *ClaimedFollowUp) FailDrafting() error {
	if err := c.msg.Status.Transition(model.MessageStatusDraftFailed); err != nil {
		c.tx.Rollback()
		return err
	}
	_, err := c.tx.Exec(`UPDATE messages SET status = 'draft_failed' WHERE id = $1`, c.msg.ID)
	if err != nil {
		c.tx.Rollback()
		return err
	}
	return c.tx.Commit()
}

func (c *ClaimedFollowUp) Release() error {
	return c.tx.Rollback()
}

// ClaimApproved claims one approved outbound message joined with the lead's
// contact fields for dispatch. Returns (nil, nil) when none is waiting.
// Rows with an unrecognized channel are never claimed; claiming and rolling
// them back would keep re-selecting the same lowest-id row and starve every
// approved message behind it. They stay approved and visible for manual fix.
func (r *MessageRepository) ClaimApproved(ctx context.Context) (*ClaimedSend, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	query := `
        SELECT m.id, m.lead_id, m.channel, m.inbound, COALESCE(m.content,''), m.status,
               COALESCE(m.sequence_step, 0), m.scheduled_for, COALESCE(m.thread_id,''), m.created_at,
               l.full_name, COALESCE(l.company,''), COALESCE(l.title,''), l.email,
               COALESCE(l.linkedin_url,''), l.preferred_channel, l.status
        FROM messages m
        JOIN leads l ON m.lead_id = l.id
        WHERE m.status = 'approved' AND m.inbound = FALSE
          AND m.channel IN ('email', 'linkedin')
        ORDER BY m.id
        LIMIT 1
        FOR UPDATE OF m SKIP LOCKED
    `
	var m model.Message
	var l model.Lead
	err = tx.QueryRowContext(ctx, query).Scan(
		&m.ID, &m.LeadID, &m.Channel, &m.Inbound, &m.Content, &m.Status,
		&m.SequenceStep, &m.ScheduledFor, &m.ThreadID, &m.CreatedAt,
		&l.FullName, &l.Company, &l.Title, &l.Email,
		&l.LinkedInURL, &l.PreferredChannel, &l.Status,
	)
	if err != nil {
		tx.Rollback()
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	l.ID = m.LeadID
	return &ClaimedSend{msg: m, lead: l, tx: tx}, nil
}

// ClaimedSend is a lease on one approved message ready for dispatch.
type ClaimedSend struct {
	msg  model.Message
	lead model.Lead
	tx   *sql.Tx
}

func (c *ClaimedSend) Message() model.Message { return c.msg }
func (c *ClaimedSend) Lead() model.Lead       { return c.lead }

// LatestThreadID returns the most recent non-null thread token across all of
// this lead's messages, or "" when the conversation has no thread yet.
func (c *ClaimedSend) LatestThreadID() (string, error) {
	var threadID string
	err := c.tx.QueryRow(`
        SELECT thread_id FROM messages
        WHERE lead_id = $1 AND thread_id IS NOT NULL
        ORDER BY created_at DESC
        LIMIT 1
    `, c.msg.LeadID).Scan(&threadID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return threadID, nil
}

// MarkSent records the transmission and, when next is non-nil, inserts the
// scheduled reservation for the following sequence step in the same
// transaction so a crash never leaves an orphaned reservation.
func (c *ClaimedSend) MarkSent(next *model.Message) error {
	if err := c.msg.Status.Transition(model.MessageStatusSent); err != nil {
		c.tx.Rollback()
		return err
	}
	_, err := c.tx.Exec(`UPDATE messages SET status = 'sent' WHERE id = $1`, c.msg.ID)
	if err != nil {
		c.tx.Rollback()
		return err
	}
	if next != nil {
		if !next.Status.ValidEntry() {
			c.tx.Rollback()
			return fmt.Errorf("status %q is not a valid entry status", next.Status)
		}
		_, err = c.tx.Exec(`
            INSERT INTO messages (lead_id, channel, status, sequence_step, scheduled_for)
            VALUES ($1, $2, 'scheduled', $3, $4)
        `, next.LeadID, next.Channel, next.SequenceStep, next.ScheduledFor)
		if err != nil {
			c.tx.Rollback()
			return fmt.Errorf("insert follow-up reservation: %w", err)
		}
	}
	return c.tx.Commit()
}

// MarkSendFailed is terminal; failed sends are surfaced for manual
// remediation, never auto-retried.
func (c *ClaimedSend) MarkSendFailed() error {
	if err := c.msg.Status.Transition(model.MessageStatusSendFailed); err != nil {
		c.tx.Rollback()
		return err
	}
	_, err := c.tx.Exec(`UPDATE messages SET status = 'send_failed' WHERE id = $1`, c.msg.ID)
	if err != nil {
		c.tx.Rollback()
		return err
	}
	return c.tx.Commit()
}

// Release rolls back, leaving the row untouched and claimable.
func (c *ClaimedSend) Release() error {
	return c.tx.Rollback()
}

var _ MessageRepositoryInterface = (*MessageRepository)(nil)
