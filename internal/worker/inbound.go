// internal/worker/inbound.go
package worker

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/draftloop/outreach-backend/internal/drafting"
	"github.com/draftloop/outreach-backend/internal/events"
	"github.com/draftloop/outreach-backend/internal/mailbox"
	"github.com/draftloop/outreach-backend/internal/model"
)

// InboundWorker scans the mailbox for unread replies from contacted leads,
// drafts a response for each, and records the exchange. The unread flag in
// the mailbox is the dedupe ledger: a message is marked seen exactly when it
// no longer needs rediscovery.
type InboundWorker struct {
	Leads        LeadLister
	Messages     ReplyStore
	Mailbox      mailbox.Mailbox
	Producer     drafting.Producer
	Events       events.Publisher
	Interval     time.Duration
	Timeout      time.Duration
	FetchRetries int
	FetchBackoff time.Duration
}

func (w *InboundWorker) Run(ctx context.Context) {
	runLoop(ctx, "inbound", w.Interval, true, w.tick)
}

func (w *InboundWorker) tick(ctx context.Context) {
	session, err := w.Mailbox.Dial(ctx)
	if err != nil {
		log.Println("⚠️ Mailbox dial failed:", err)
		return
	}
	defer session.Close()

	leads, err := w.Leads.ListByStatus(model.LeadStatusProcessed, model.LeadStatusContacted)
	if err != nil {
		log.Println("⚠️ Listing contactable leads failed:", err)
		return
	}

	for _, lead := range leads {
		if ctx.Err() != nil {
			return
		}
		if lead.Email == "" {
			continue
		}
		handles, err := session.SearchUnreadFrom(lead.Email)
		if err != nil {
			// A broken session aborts the whole pass; nothing was marked
			// seen for messages not yet handled, so they survive.
			log.Printf("⚠️ Mailbox search for %s failed, aborting pass: %v", lead.Email, err)
			return
		}
		for _, h := range handles {
			w.processReply(ctx, session, lead, h)
		}
	}
}

func (w *InboundWorker) fetchRaw(session mailbox.Session, h mailbox.Handle) []byte {
	for attempt := 1; attempt <= w.FetchRetries; attempt++ {
		raw, err := session.Fetch(h)
		if err == nil && raw != nil {
			return raw
		}
		if err != nil {
			log.Printf("⚠️ Fetch attempt %d/%d for message %d failed: %v", attempt, w.FetchRetries, h, err)
		}
		if attempt < w.FetchRetries {
			time.Sleep(w.FetchBackoff)
		}
	}
	return nil
}

func (w *InboundWorker) markSeen(session mailbox.Session, h mailbox.Handle) {
	if err := session.MarkSeen(h); err != nil {
		log.Printf("⚠️ Marking message %d seen failed: %v", h, err)
	}
}

func (w *InboundWorker) processReply(ctx context.Context, session mailbox.Session, lead model.Lead, h mailbox.Handle) {
	raw := w.fetchRaw(session, h)
	if raw == nil {
		log.Printf("⚠️ Message %d from %s unfetchable, skipping", h, lead.Email)
		w.markSeen(session, h)
		return
	}

	parsed, err := mailbox.ParseReply(raw)
	if err != nil {
		log.Printf("⚠️ Parsing message %d from %s failed: %v", h, lead.Email, err)
		w.markSeen(session, h)
		return
	}
	if parsed.Text == "" {
		log.Printf("⚠️ Message %d from %s has no plain-text body, skipping", h, lead.Email)
		w.markSeen(session, h)
		return
	}

	token := parsed.ThreadToken()
	history, err := w.Messages.ThreadHistory(lead.ID, token)
	if err != nil {
		log.Printf("⚠️ Loading thread history for lead %d failed: %v", lead.ID, err)
		w.markSeen(session, h)
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()

	draft, err := w.Producer.DraftReply(callCtx, BuildConversation(history, parsed.Text))
	if err != nil || draft == "" {
		log.Printf("⚠️ Drafting reply to lead %d failed, skipping: %v", lead.ID, err)
		w.markSeen(session, h)
		return
	}

	// Record before marking seen: a failed write leaves the reply unread so
	// the next pass rediscovers it.
	if err := w.Messages.RecordReplyExchange(ctx, lead.ID, token, parsed.Text, draft); err != nil {
		log.Printf("⚠️ Recording reply exchange for lead %d failed: %v", lead.ID, err)
		return
	}
	w.markSeen(session, h)
	events.PublishOrLog(w.Events, events.Event{Kind: events.KindReplyReceived, LeadID: lead.ID, Channel: model.ChannelEmail})
	log.Printf("✅ Reply from lead %d recorded, response draft awaiting approval", lead.ID)
}

// BuildConversation renders a thread as the transcript the reply prompt
// expects: prior messages oldest first, then the reply being answered.
func BuildConversation(history []model.Message, newestReply string) string {
	var b strings.Builder
	for _, m := range history {
		if m.Inbound {
			b.WriteString("Their Message:\n")
		} else {
			b.WriteString("Our Message:\n")
		}
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}
	b.WriteString("Their Newest Reply:\n")
	b.WriteString(newestReply)
	return b.String()
}
