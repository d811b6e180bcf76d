// internal/repository/lead_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	appErrors "github.com/draftloop/outreach-backend/internal/errors"
	"github.com/draftloop/outreach-backend/internal/model"
)

type LeadRepositoryInterface interface {
	BulkUpsert(leads []model.Lead) (int, error)
	GetByID(id int) (*model.Lead, error)
	ListByStatus(statuses ...model.LeadStatus) ([]model.Lead, error)
	UpdateStatusByEmail(email string, status model.LeadStatus) (*model.Lead, error)
	ClaimNew(ctx context.Context) (*ClaimedLead, error)
}

type LeadRepository struct {
	DB *sql.DB
}

const leadColumns = `id, full_name, COALESCE(company,''), COALESCE(title,''), email,
		COALESCE(linkedin_url,''), preferred_channel, status, created_at`

func scanLead(row interface{ Scan(...any) error }) (*model.Lead, error) {
	var l model.Lead
	err := row.Scan(&l.ID, &l.FullName, &l.Company, &l.Title, &l.Email,
		&l.LinkedInURL, &l.PreferredChannel, &l.Status, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// BulkUpsert inserts leads one row at a time, skipping emails that already
// exist. Re-uploading a known lead is a no-op merge, never an error.
func (r *LeadRepository) BulkUpsert(leads []model.Lead) (int, error) {
	query := `
        INSERT INTO leads (full_name, company, title, email, linkedin_url, preferred_channel)
        VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
        ON CONFLICT (email) DO NOTHING
    `
	inserted := 0
	for _, l := range leads {
		if l.PreferredChannel == "" {
			l.PreferredChannel = model.ChannelEmail
		}
		res, err := r.DB.Exec(query, l.FullName, l.Company, l.Title, l.Email, l.LinkedInURL, l.PreferredChannel)
		if err != nil {
			return inserted, fmt.Errorf("upsert lead %s: %w", l.Email, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

func (r *LeadRepository) GetByID(id int) (*model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	l, err := scanLead(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewLeadNotFound(id)
		}
		return nil, err
	}
	return l, nil
}

func (r *LeadRepository) ListByStatus(statuses ...model.LeadStatus) ([]model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE status = ANY($1) ORDER BY id`
	args := make([]string, len(statuses))
	for i, s := range statuses {
		args[i] = string(s)
	}
	rows, err := r.DB.Query(query, pq.Array(args))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []model.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, rows.Err()
}

// UpdateStatusByEmail moves a lead to the given status, validating the move
// against the transition table so external callers (Calendly webhooks, n8n)
// cannot write nonsense states.
func (r *LeadRepository) UpdateStatusByEmail(email string, status model.LeadStatus) (*model.Lead, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var current model.LeadStatus
	err = tx.QueryRow(`SELECT status FROM leads WHERE email = $1 FOR UPDATE`, email).Scan(&current)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewLeadNotFoundByEmail(email)
		}
		return nil, err
	}
	if err := current.Transition(status); err != nil {
		return nil, err
	}

	query := `UPDATE leads SET status = $1 WHERE email = $2 RETURNING ` + leadColumns
	l, err := scanLead(tx.QueryRow(query, status, email))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return l, nil
}

// ClaimNew claims one lead with status 'new' under row-level lock, skipping
// rows held by concurrent claimers. It returns (nil, nil) when no lead is
// eligible. The returned claim holds an open transaction; the caller must
// finish it with Succeed, FailDrafting or Release.
func (r *LeadRepository) ClaimNew(ctx context.Context) (*ClaimedLead, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	query := `
        SELECT ` + leadColumns + `
        FROM leads
        WHERE status = 'new'
        ORDER BY id
        LIMIT 1
        FOR UPDATE SKIP LOCKED
    `
	l, err := scanLead(tx.QueryRowContext(ctx, query))
	if err != nil {
		tx.Rollback()
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &ClaimedLead{lead: *l, tx: tx}, nil
}

// ClaimedLead is an exclusive, transaction-scoped lease on one 'new' lead.
type ClaimedLead struct {
	lead model.Lead
	tx   *sql.Tx
}

func (c *ClaimedLead) Lead() model.Lead {
	return c.lead
}

// Succeed stores the drafted first-touch message at sequence step 1 and
// marks the lead processed, atomically with the claim.
func (c *ClaimedLead) Succeed(content string) error {
	if err := c.lead.Status.Transition(model.LeadStatusProcessed); err != nil {
		c.tx.Rollback()
		return err
	}
	_, err := c.tx.Exec(`
        INSERT INTO messages (lead_id, content, status, channel, sequence_step)
        VALUES ($1, $2, 'pending_approval', $3, 1)
    `, c.lead.ID, content, c.lead.PreferredChannel)
	if err != nil {
		c.tx.Rollback()
		return fmt.Errorf("insert drafted message: %w", err)
	}
	_, err = c.tx.Exec(`UPDATE leads SET status = 'processed' WHERE id = $1`, c.lead.ID)
	if err != nil {
		c.tx.Rollback()
		return fmt.Errorf("mark lead processed: %w", err)
	}
	return c.tx.Commit()
}

// FailDrafting moves the lead to the terminal drafting_failed status so it
// stops being reclaimed every tick.
func (c *ClaimedLead) FailDrafting() error {
	if err := c.lead.Status.Transition(model.LeadStatusDraftingFailed); err != nil {
		c.tx.Rollback()
		return err
	}
	_, err := c.tx.Exec(`UPDATE leads SET status = 'drafting_failed' WHERE id = $1`, c.lead.ID)
	if err != nil {
		c.tx.Rollback()
		return err
	}
	return c.tx.Commit()
}

// Release rolls the claim back, leaving the lead claimable again.
func (c *ClaimedLead) Release() error {
	return c.tx.Rollback()
}

var _ LeadRepositoryInterface = (*LeadRepository)(nil)
