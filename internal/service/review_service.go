// internal/service/review_service.go
package service

import (
	"fmt"
	"strings"

	"github.com/draftloop/outreach-backend/internal/events"
	"github.com/draftloop/outreach-backend/internal/model"
	"github.com/draftloop/outreach-backend/internal/repository"
)

// ReviewService is the human approval gate: drafts enter pending_approval
// and only leave it through these operations.
type ReviewService struct {
	MessageRepo repository.MessageRepositoryInterface
	LeadRepo    repository.LeadRepositoryInterface
	Events      events.Publisher
}

func (s *ReviewService) ListPending() ([]repository.PendingMessage, error) {
	return s.MessageRepo.ListPending()
}

// Approve clears a draft for the sending worker. Concurrent approve/reject
// on the same draft resolves first-writer-wins in the repository.
func (s *ReviewService) Approve(id int) (*model.Message, error) {
	msg, err := s.MessageRepo.Approve(id)
	if err != nil {
		return nil, err
	}
	events.PublishOrLog(s.Events, events.Event{Kind: events.KindMessageApproved, LeadID: msg.LeadID, MessageID: msg.ID, Channel: msg.Channel})
	return msg, nil
}

func (s *ReviewService) Reject(id int) (*model.Message, error) {
	return s.MessageRepo.Reject(id)
}

// EditContent replaces a pending draft's text before approval.
func (s *ReviewService) EditContent(id int, content string) (*model.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("content cannot be empty")
	}
	return s.MessageRepo.UpdateContent(id, content)
}

// SaveReplyDraft is the intake for externally produced drafts (n8n and
// similar automations POSTing to /api/drafts). The lead must exist; the
// draft lands in the normal approval queue.
func (s *ReviewService) SaveReplyDraft(leadID int, content, threadID string) (*model.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("content cannot be empty")
	}
	lead, err := s.LeadRepo.GetByID(leadID)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{
		LeadID:   lead.ID,
		Channel:  model.ChannelEmail,
		Content:  content,
		Status:   model.MessageStatusPendingApproval,
		ThreadID: threadID,
	}
	if err := s.MessageRepo.InsertDraft(msg); err != nil {
		return nil, err
	}
	return msg, nil
}
