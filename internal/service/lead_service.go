// internal/service/lead_service.go
package service

import (
	"fmt"
	"strings"

	"github.com/draftloop/outreach-backend/internal/events"
	"github.com/draftloop/outreach-backend/internal/model"
	"github.com/draftloop/outreach-backend/internal/repository"
)

type LeadService struct {
	LeadRepo repository.LeadRepositoryInterface
	Events   events.Publisher
}

// UploadResult summarizes a lead upload for the API response.
type UploadResult struct {
	Received int `json:"received"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// UploadLeads validates and merges an uploaded batch. Known emails are
// silently skipped so re-uploading a list is always safe.
func (s *LeadService) UploadLeads(leads []model.Lead) (*UploadResult, error) {
	if len(leads) == 0 {
		return nil, fmt.Errorf("no leads in upload")
	}
	for i := range leads {
		leads[i].Email = strings.TrimSpace(strings.ToLower(leads[i].Email))
		if leads[i].FullName == "" || leads[i].Email == "" {
			return nil, fmt.Errorf("lead %d is missing full_name or email", i)
		}
		if leads[i].PreferredChannel == "" {
			leads[i].PreferredChannel = model.ChannelEmail
		}
		if leads[i].PreferredChannel != model.ChannelEmail && leads[i].PreferredChannel != model.ChannelLinkedIn {
			return nil, fmt.Errorf("lead %d has unknown preferred_channel %q", i, leads[i].PreferredChannel)
		}
	}

	inserted, err := s.LeadRepo.BulkUpsert(leads)
	if err != nil {
		return nil, err
	}
	if inserted > 0 {
		events.PublishOrLog(s.Events, events.Event{Kind: events.KindLeadsMerged, Detail: "upload"})
	}
	return &UploadResult{
		Received: len(leads),
		Inserted: inserted,
		Skipped:  len(leads) - inserted,
	}, nil
}

// ListContacted returns leads the pipeline has already reached out to, the
// population the reply dashboard cares about.
func (s *LeadService) ListContacted() ([]model.Lead, error) {
	return s.LeadRepo.ListByStatus(
		model.LeadStatusProcessed,
		model.LeadStatusContacted,
		model.LeadStatusReplied,
		model.LeadStatusMeetingBooked,
	)
}

// UpdateStatusByEmail moves a lead to a new status on behalf of external
// integrations (booking webhooks). The transition table rejects bad moves.
func (s *LeadService) UpdateStatusByEmail(email string, status model.LeadStatus) (*model.Lead, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown lead status %q", status)
	}
	return s.LeadRepo.UpdateStatusByEmail(strings.TrimSpace(strings.ToLower(email)), status)
}
