// internal/worker/sending.go
package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/draftloop/outreach-backend/internal/events"
	"github.com/draftloop/outreach-backend/internal/model"
	"github.com/draftloop/outreach-backend/internal/outbound"
)

// SendingWorker dispatches approved messages over the lead's channel and
// books the next follow-up slot in the same transaction as the sent mark.
type SendingWorker struct {
	Store         SendStore
	Email         outbound.EmailTransmitter
	LinkedIn      outbound.ConnectionRequester
	Events        events.Publisher
	Interval      time.Duration
	Timeout       time.Duration
	MaxFollowUps  int
	FollowUpDelay time.Duration
}

func (w *SendingWorker) Run(ctx context.Context) {
	runLoop(ctx, "sending", w.Interval, false, w.tick)
}

// emailSubject picks the subject line: threaded sends reply into the
// existing conversation, step 1 opens it, later steps nudge.
func emailSubject(lead model.Lead, step int, threadID string) string {
	if threadID != "" {
		return fmt.Sprintf("Re: A quick question for %s", lead.Company)
	}
	if step <= 1 {
		return fmt.Sprintf("A quick question for %s", lead.Company)
	}
	return "Following up"
}

func (w *SendingWorker) tick(ctx context.Context) {
	claim, err := w.Store.ClaimApproved(ctx)
	if err != nil {
		log.Println("⚠️ Send claim failed:", err)
		return
	}
	if claim == nil {
		return
	}

	msg := claim.Message()
	lead := claim.Lead()

	callCtx, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()

	var sendErr error
	switch msg.Channel {
	case model.ChannelEmail:
		threadID, terr := claim.LatestThreadID()
		if terr != nil {
			log.Printf("⚠️ Thread lookup for message %d failed: %v", msg.ID, terr)
			if rerr := claim.Release(); rerr != nil {
				log.Println("⚠️ Release failed:", rerr)
			}
			return
		}
		subject := emailSubject(lead, msg.SequenceStep, threadID)
		log.Printf("📤 Sending email message %d to %s", msg.ID, lead.Email)
		sendErr = w.Email.Send(callCtx, lead.Email, subject, outbound.HTMLBody(msg.Content), threadID)

	case model.ChannelLinkedIn:
		if lead.LinkedInURL == "" {
			log.Printf("⚠️ Lead %d has no LinkedIn URL, marking message %d send_failed", lead.ID, msg.ID)
			if ferr := claim.MarkSendFailed(); ferr != nil {
				log.Println("⚠️ Marking send_failed failed:", ferr)
				return
			}
			events.PublishOrLog(w.Events, events.Event{Kind: events.KindSendFailed, LeadID: lead.ID, MessageID: msg.ID, Channel: msg.Channel, Detail: "missing linkedin_url"})
			return
		}
		log.Printf("📤 Sending LinkedIn connection for message %d to %s", msg.ID, lead.LinkedInURL)
		sendErr = w.LinkedIn.Connect(callCtx, lead.LinkedInURL, msg.Content)

	default:
		// The claim query only selects known channels, so this branch means
		// the row changed under us or the store filter drifted. Roll back
		// and leave the row approved for inspection.
		log.Printf("⚠️ Message %d has unknown channel %q, skipping", msg.ID, msg.Channel)
		if rerr := claim.Release(); rerr != nil {
			log.Println("⚠️ Release failed:", rerr)
		}
		return
	}

	if sendErr != nil {
		log.Printf("⚠️ Send of message %d failed: %v", msg.ID, sendErr)
		if ferr := claim.MarkSendFailed(); ferr != nil {
			log.Println("⚠️ Marking send_failed failed:", ferr)
			return
		}
		events.PublishOrLog(w.Events, events.Event{Kind: events.KindSendFailed, LeadID: lead.ID, MessageID: msg.ID, Channel: msg.Channel, Detail: sendErr.Error()})
		return
	}

	var next *model.Message
	if msg.SequenceStep >= 1 && msg.SequenceStep < w.MaxFollowUps {
		due := time.Now().Add(w.FollowUpDelay)
		next = &model.Message{
			LeadID:       msg.LeadID,
			Channel:      msg.Channel,
			Status:       model.MessageStatusScheduled,
			SequenceStep: msg.SequenceStep + 1,
			ScheduledFor: &due,
		}
	}
	if err := claim.MarkSent(next); err != nil {
		log.Printf("⚠️ Marking message %d sent failed: %v", msg.ID, err)
		return
	}
	events.PublishOrLog(w.Events, events.Event{Kind: events.KindMessageSent, LeadID: lead.ID, MessageID: msg.ID, Channel: msg.Channel})
	log.Printf("✅ Message %d sent", msg.ID)
}
