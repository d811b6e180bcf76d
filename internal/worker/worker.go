// internal/worker/worker.go
package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/draftloop/outreach-backend/internal/model"
	"github.com/draftloop/outreach-backend/internal/repository"
)

// DraftingClaim is a lease on one new lead awaiting a first draft.
type DraftingClaim interface {
	Lead() model.Lead
	Succeed(content string) error
	FailDrafting() error
	Release() error
}

// DraftingStore hands out drafting claims. A nil claim with a nil error
// means nothing is eligible this tick.
type DraftingStore interface {
	ClaimNew(ctx context.Context) (DraftingClaim, error)
}

// FollowUpClaim is a lease on one due scheduled reservation.
type FollowUpClaim interface {
	Message() model.Message
	Lead() model.Lead
	Succeed(content string) error
	FailDrafting() error
	Release() error
}

type FollowUpStore interface {
	ClaimScheduled(ctx context.Context) (FollowUpClaim, error)
}

// SendClaim is a lease on one approved outbound message.
type SendClaim interface {
	Message() model.Message
	Lead() model.Lead
	LatestThreadID() (string, error)
	MarkSent(next *model.Message) error
	MarkSendFailed() error
	Release() error
}

type SendStore interface {
	ClaimApproved(ctx context.Context) (SendClaim, error)
}

// LeadLister is the slice of the lead repository the inbound worker reads.
type LeadLister interface {
	ListByStatus(statuses ...model.LeadStatus) ([]model.Lead, error)
}

// LeadMerger is the slice of the lead repository prospecting writes through.
type LeadMerger interface {
	BulkUpsert(leads []model.Lead) (int, error)
}

// ReplyStore is the slice of the message repository the inbound worker uses.
type ReplyStore interface {
	ThreadHistory(leadID int, threadID string) ([]model.Message, error)
	RecordReplyExchange(ctx context.Context, leadID int, threadID, inboundText, replyDraft string) error
}

// LeadClaimStore adapts the concrete lead repository to DraftingStore. The
// indirection keeps a nil *repository.ClaimedLead from becoming a non-nil
// interface value.
type LeadClaimStore struct {
	Repo repository.LeadRepositoryInterface
}

func (s LeadClaimStore) ClaimNew(ctx context.Context) (DraftingClaim, error) {
	claim, err := s.Repo.ClaimNew(ctx)
	if err != nil || claim == nil {
		return nil, err
	}
	return claim, nil
}

// MessageClaimStore adapts the concrete message repository to FollowUpStore
// and SendStore.
type MessageClaimStore struct {
	Repo repository.MessageRepositoryInterface
}

func (s MessageClaimStore) ClaimScheduled(ctx context.Context) (FollowUpClaim, error) {
	claim, err := s.Repo.ClaimScheduled(ctx)
	if err != nil || claim == nil {
		return nil, err
	}
	return claim, nil
}

func (s MessageClaimStore) ClaimApproved(ctx context.Context) (SendClaim, error) {
	claim, err := s.Repo.ClaimApproved(ctx)
	if err != nil || claim == nil {
		return nil, err
	}
	return claim, nil
}

// retryable reports whether a collaborator call was cut short by its context
// rather than failing outright. Only interrupted calls earn a reclaim.
func retryable(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// runLoop drives one worker: an optional immediate first pass, then one tick
// per interval until the context is cancelled. Each tick handles at most one
// claim so a lease is always resolved before the next poll.
func runLoop(ctx context.Context, name string, interval time.Duration, immediate bool, tick func(ctx context.Context)) {
	workerID := fmt.Sprintf("%s-%s", name, uuid.NewString()[:8])
	log.Printf("🚀 Worker %s started (every %s)", workerID, interval)

	if immediate {
		tick(ctx)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("🛑 Worker %s stopped", workerID)
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}
