// internal/worker/prospecting.go
package worker

import (
	"context"
	"log"
	"time"

	"github.com/draftloop/outreach-backend/internal/drafting"
	"github.com/draftloop/outreach-backend/internal/events"
	"github.com/draftloop/outreach-backend/internal/model"
	"github.com/draftloop/outreach-backend/internal/outbound"
)

// ProspectingWorker runs on demand: it pulls scraped prospects from the
// automation bridge, guesses a contact email for each, and merges them into
// the lead pool where the drafting worker picks them up.
type ProspectingWorker struct {
	Source   outbound.ProspectSource
	Producer drafting.Producer
	Leads    LeadMerger
	Events   events.Publisher
	Timeout  time.Duration
}

func (w *ProspectingWorker) RunOnce(ctx context.Context) error {
	prospects, err := w.Source.FindProspects(ctx)
	if err != nil {
		return err
	}
	log.Printf("🔎 Prospecting found %d candidates", len(prospects))

	merged := 0
	for _, p := range prospects {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if p.FullName == "" || p.Company == "" {
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, w.Timeout)
		email, err := w.Producer.GuessEmail(callCtx, p.FullName, p.Company)
		cancel()
		if err != nil || email == "" {
			log.Printf("⚠️ No email guess for %s (%s), skipping: %v", p.FullName, p.Company, err)
			continue
		}

		n, err := w.Leads.BulkUpsert([]model.Lead{{
			FullName:         p.FullName,
			Company:          p.Company,
			Title:            p.Title,
			Email:            email,
			LinkedInURL:      p.ProfileURL,
			PreferredChannel: model.ChannelEmail,
		}})
		if err != nil {
			log.Printf("⚠️ Merging prospect %s failed: %v", email, err)
			continue
		}
		merged += n
	}

	if merged > 0 {
		events.PublishOrLog(w.Events, events.Event{Kind: events.KindLeadsMerged, Detail: "prospecting"})
	}
	log.Printf("✅ Prospecting merged %d new leads", merged)
	return nil
}
