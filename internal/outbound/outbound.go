// internal/outbound/outbound.go
package outbound

import "context"

// EmailTransmitter dispatches one outbound email. A non-empty threadID makes
// the message a reply in an existing conversation (threading headers set).
type EmailTransmitter interface {
	Send(ctx context.Context, to, subject, htmlBody, threadID string) error
}

// ConnectionRequester sends a LinkedIn connection request with a note via
// the browser-automation collaborator.
type ConnectionRequester interface {
	Connect(ctx context.Context, profileURL, note string) error
}

// Prospect is a scraped potential lead, pre-enrichment.
type Prospect struct {
	FullName   string `json:"full_name"`
	Title      string `json:"title"`
	Company    string `json:"company"`
	ProfileURL string `json:"profile_url"`
}

// ProspectSource discovers prospects through the scraping collaborator.
type ProspectSource interface {
	FindProspects(ctx context.Context) ([]Prospect, error)
}
