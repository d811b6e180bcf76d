// internal/worker/followup.go
package worker

import (
	"context"
	"log"
	"time"

	"github.com/draftloop/outreach-backend/internal/drafting"
	"github.com/draftloop/outreach-backend/internal/events"
)

// FollowUpWorker fills due scheduled reservations with drafted follow-up
// content, sending them back through the approval gate.
type FollowUpWorker struct {
	Store    FollowUpStore
	Producer drafting.Producer
	Events   events.Publisher
	Interval time.Duration
	Timeout  time.Duration
}

func (w *FollowUpWorker) Run(ctx context.Context) {
	runLoop(ctx, "followup", w.Interval, false, w.tick)
}

func (w *FollowUpWorker) tick(ctx context.Context) {
	claim, err := w.Store.ClaimScheduled(ctx)
	if err != nil {
		log.Println("⚠️ Follow-up claim failed:", err)
		return
	}
	if claim == nil {
		return
	}

	msg := claim.Message()
	lead := claim.Lead()
	log.Printf("✍️ Drafting follow-up step %d for lead %d (%s)", msg.SequenceStep, msg.LeadID, lead.FullName)

	callCtx, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()

	content, err := w.Producer.DraftFollowUp(callCtx, lead, msg.SequenceStep)
	if retryable(err) {
		log.Printf("⚠️ Follow-up draft for message %d interrupted, will retry: %v", msg.ID, err)
		if rerr := claim.Release(); rerr != nil {
			log.Println("⚠️ Release failed:", rerr)
		}
		return
	}
	if err != nil || content == "" {
		log.Printf("⚠️ Follow-up draft for message %d failed, marking draft_failed: %v", msg.ID, err)
		if ferr := claim.FailDrafting(); ferr != nil {
			log.Println("⚠️ Marking draft_failed failed:", ferr)
			return
		}
		events.PublishOrLog(w.Events, events.Event{Kind: events.KindDraftFailed, LeadID: msg.LeadID, MessageID: msg.ID, Channel: msg.Channel})
		return
	}

	if err := claim.Succeed(content); err != nil {
		log.Printf("⚠️ Storing follow-up draft for message %d failed: %v", msg.ID, err)
		return
	}
	events.PublishOrLog(w.Events, events.Event{Kind: events.KindDraftReady, LeadID: msg.LeadID, MessageID: msg.ID, Channel: msg.Channel})
	log.Printf("✅ Follow-up draft for message %d awaiting approval", msg.ID)
}
