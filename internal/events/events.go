// internal/events/events.go
package events

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Event is one pipeline milestone, published for external consumers
// (alerting, analytics). The pipeline never coordinates through these.
type Event struct {
	Kind      string    `json:"kind"`
	LeadID    int       `json:"lead_id,omitempty"`
	MessageID int       `json:"message_id,omitempty"`
	Channel   string    `json:"channel,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
}

const (
	KindDraftReady      = "draft_ready"
	KindDraftFailed     = "draft_failed"
	KindMessageApproved = "message_approved"
	KindMessageSent     = "message_sent"
	KindSendFailed      = "send_failed"
	KindReplyReceived   = "reply_received"
	KindLeadsMerged     = "leads_merged"
)

// Publisher emits pipeline events. Publishing is fire-and-forget; a failed
// publish is logged and never blocks the pipeline.
type Publisher interface {
	Publish(event Event) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) error { return nil }

// InMemoryBus fans events out to in-process subscribers. Useful for tests
// and single-binary deployments.
type InMemoryBus struct {
	mu       sync.Mutex
	handlers []func(Event)
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{}
}

func (b *InMemoryBus) Subscribe(handler func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

func (b *InMemoryBus) Publish(event Event) error {
	b.mu.Lock()
	handlers := make([]func(Event), len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.Unlock()

	for _, handler := range handlers {
		handler(event)
	}
	return nil
}

// PublishOrLog publishes and downgrades any failure to a log line.
func PublishOrLog(p Publisher, event Event) {
	if p == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	if err := p.Publish(event); err != nil {
		payload, _ := json.Marshal(event)
		log.Println("⚠️ Failed to publish event:", string(payload), "error:", err)
	}
}

var _ Publisher = (*InMemoryBus)(nil)
var _ Publisher = NopPublisher{}
