// internal/model/lead.go
package model

import "time"

// Channel values a lead can be contacted on.
const (
	ChannelEmail    = "email"
	ChannelLinkedIn = "linkedin"
)

type LeadStatus string

const (
	LeadStatusNew            LeadStatus = "new"
	LeadStatusProcessed      LeadStatus = "processed"
	LeadStatusDraftingFailed LeadStatus = "drafting_failed"
	LeadStatusContacted      LeadStatus = "contacted"
	LeadStatusReplied        LeadStatus = "replied"
	LeadStatusMeetingBooked  LeadStatus = "meeting_booked"
)

// leadTransitions is the full set of legal lead status moves. Anything not
// listed here is rejected, including self-transitions.
var leadTransitions = map[LeadStatus][]LeadStatus{
	LeadStatusNew:       {LeadStatusProcessed, LeadStatusDraftingFailed},
	LeadStatusProcessed: {LeadStatusContacted, LeadStatusReplied, LeadStatusMeetingBooked},
	LeadStatusContacted: {LeadStatusReplied, LeadStatusMeetingBooked},
	LeadStatusReplied:   {LeadStatusMeetingBooked},
}

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusProcessed, LeadStatusDraftingFailed,
		LeadStatusContacted, LeadStatusReplied, LeadStatusMeetingBooked:
		return true
	}
	return false
}

// CanTransition reports whether s -> to is in the transition table.
func (s LeadStatus) CanTransition(to LeadStatus) bool {
	for _, next := range leadTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition returns an InvalidTransitionError if s -> to is not legal.
func (s LeadStatus) Transition(to LeadStatus) error {
	if !s.CanTransition(to) {
		return &InvalidTransitionError{Entity: "lead", From: string(s), To: string(to)}
	}
	return nil
}

type Lead struct {
	ID               int        `db:"id" json:"id"`
	FullName         string     `db:"full_name" json:"full_name"`
	Company          string     `db:"company" json:"company"`
	Title            string     `db:"title" json:"title"`
	Email            string     `db:"email" json:"email"`
	LinkedInURL      string     `db:"linkedin_url" json:"linkedin_url,omitempty"`
	PreferredChannel string     `db:"preferred_channel" json:"preferred_channel"`
	Status           LeadStatus `db:"status" json:"status"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}
