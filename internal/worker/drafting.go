// internal/worker/drafting.go
package worker

import (
	"context"
	"log"
	"time"

	"github.com/draftloop/outreach-backend/internal/drafting"
	"github.com/draftloop/outreach-backend/internal/events"
)

// DraftingWorker turns new leads into first-touch drafts awaiting approval.
type DraftingWorker struct {
	Store    DraftingStore
	Producer drafting.Producer
	Events   events.Publisher
	Interval time.Duration
	Timeout  time.Duration
}

func (w *DraftingWorker) Run(ctx context.Context) {
	runLoop(ctx, "drafting", w.Interval, false, w.tick)
}

func (w *DraftingWorker) tick(ctx context.Context) {
	claim, err := w.Store.ClaimNew(ctx)
	if err != nil {
		log.Println("⚠️ Drafting claim failed:", err)
		return
	}
	if claim == nil {
		return
	}

	lead := claim.Lead()
	log.Printf("✍️ Drafting first touch for lead %d (%s)", lead.ID, lead.FullName)

	callCtx, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()

	content, err := w.Producer.DraftInitial(callCtx, lead)
	if retryable(err) {
		// The producer never got a full chance; roll back so a later tick
		// picks the lead up again.
		log.Printf("⚠️ Draft for lead %d interrupted, will retry: %v", lead.ID, err)
		if rerr := claim.Release(); rerr != nil {
			log.Println("⚠️ Release failed:", rerr)
		}
		return
	}
	if err != nil || content == "" {
		log.Printf("⚠️ Draft for lead %d failed, marking drafting_failed: %v", lead.ID, err)
		if ferr := claim.FailDrafting(); ferr != nil {
			log.Println("⚠️ Marking drafting_failed failed:", ferr)
			return
		}
		events.PublishOrLog(w.Events, events.Event{Kind: events.KindDraftFailed, LeadID: lead.ID, Channel: lead.PreferredChannel})
		return
	}

	if err := claim.Succeed(content); err != nil {
		log.Printf("⚠️ Storing draft for lead %d failed: %v", lead.ID, err)
		return
	}
	events.PublishOrLog(w.Events, events.Event{Kind: events.KindDraftReady, LeadID: lead.ID, Channel: lead.PreferredChannel})
	log.Printf("✅ Draft for lead %d awaiting approval", lead.ID)
}
