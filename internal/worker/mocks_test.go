package worker

import (
	"context"
	"errors"

	"github.com/draftloop/outreach-backend/internal/mailbox"
	"github.com/draftloop/outreach-backend/internal/model"
	"github.com/draftloop/outreach-backend/internal/outbound"
)

// mockProducer scripts the draft producer per call kind.
type mockProducer struct {
	initial   string
	followUp  string
	reply     string
	email     string
	err       error
	histories []string
	steps     []int
}

func (m *mockProducer) DraftInitial(_ context.Context, _ model.Lead) (string, error) {
	return m.initial, m.err
}

func (m *mockProducer) DraftFollowUp(_ context.Context, _ model.Lead, step int) (string, error) {
	m.steps = append(m.steps, step)
	return m.followUp, m.err
}

func (m *mockProducer) DraftReply(_ context.Context, history string) (string, error) {
	m.histories = append(m.histories, history)
	return m.reply, m.err
}

func (m *mockProducer) GuessEmail(_ context.Context, _, _ string) (string, error) {
	return m.email, m.err
}

// mockDraftingClaim records which resolution the worker chose.
type mockDraftingClaim struct {
	lead     model.Lead
	resolved string
	content  string
}

func (m *mockDraftingClaim) Lead() model.Lead { return m.lead }
func (m *mockDraftingClaim) Succeed(content string) error {
	m.resolved = "succeed"
	m.content = content
	return nil
}
func (m *mockDraftingClaim) FailDrafting() error { m.resolved = "fail"; return nil }
func (m *mockDraftingClaim) Release() error      { m.resolved = "release"; return nil }

type mockDraftingStore struct {
	claim *mockDraftingClaim
	err   error
}

func (m *mockDraftingStore) ClaimNew(context.Context) (DraftingClaim, error) {
	if m.claim == nil {
		return nil, m.err
	}
	return m.claim, m.err
}

type mockFollowUpClaim struct {
	msg      model.Message
	lead     model.Lead
	resolved string
	content  string
}

func (m *mockFollowUpClaim) Message() model.Message { return m.msg }
func (m *mockFollowUpClaim) Lead() model.Lead       { return m.lead }
func (m *mockFollowUpClaim) Succeed(content string) error {
	m.resolved = "succeed"
	m.content = content
	return nil
}
func (m *mockFollowUpClaim) FailDrafting() error { m.resolved = "fail"; return nil }
func (m *mockFollowUpClaim) Release() error      { m.resolved = "release"; return nil }

type mockFollowUpStore struct {
	claim *mockFollowUpClaim
}

func (m *mockFollowUpStore) ClaimScheduled(context.Context) (FollowUpClaim, error) {
	if m.claim == nil {
		return nil, nil
	}
	return m.claim, nil
}

type mockSendClaim struct {
	msg      model.Message
	lead     model.Lead
	threadID string
	resolved string
	next     *model.Message
}

func (m *mockSendClaim) Message() model.Message          { return m.msg }
func (m *mockSendClaim) Lead() model.Lead                { return m.lead }
func (m *mockSendClaim) LatestThreadID() (string, error) { return m.threadID, nil }
func (m *mockSendClaim) MarkSent(next *model.Message) error {
	m.resolved = "sent"
	m.next = next
	return nil
}
func (m *mockSendClaim) MarkSendFailed() error { m.resolved = "send_failed"; return nil }
func (m *mockSendClaim) Release() error        { m.resolved = "release"; return nil }

type mockSendStore struct {
	claim *mockSendClaim
}

func (m *mockSendStore) ClaimApproved(context.Context) (SendClaim, error) {
	if m.claim == nil {
		return nil, nil
	}
	return m.claim, nil
}

type sentEmail struct {
	to, subject, body, threadID string
}

type mockEmail struct {
	sent []sentEmail
	err  error
}

func (m *mockEmail) Send(_ context.Context, to, subject, htmlBody, threadID string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{to, subject, htmlBody, threadID})
	return nil
}

type mockLinkedIn struct {
	profileURLs []string
	notes       []string
	err         error
}

func (m *mockLinkedIn) Connect(_ context.Context, profileURL, note string) error {
	if m.err != nil {
		return m.err
	}
	m.profileURLs = append(m.profileURLs, profileURL)
	m.notes = append(m.notes, note)
	return nil
}

type mockLeadLister struct {
	leads []model.Lead
}

func (m *mockLeadLister) ListByStatus(...model.LeadStatus) ([]model.Lead, error) {
	return m.leads, nil
}

type recordedExchange struct {
	leadID      int
	threadID    string
	inboundText string
	replyDraft  string
}

type mockReplyStore struct {
	history   []model.Message
	recorded  []recordedExchange
	recordErr error
}

func (m *mockReplyStore) ThreadHistory(int, string) ([]model.Message, error) {
	return m.history, nil
}

func (m *mockReplyStore) RecordReplyExchange(_ context.Context, leadID int, threadID, inboundText, replyDraft string) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.recorded = append(m.recorded, recordedExchange{leadID, threadID, inboundText, replyDraft})
	return nil
}

// mockSession is an in-memory mailbox: raw message bytes keyed by handle.
type mockSession struct {
	messages  map[mailbox.Handle][]byte
	fetchErrs map[mailbox.Handle]int
	searchErr error
	seen      []mailbox.Handle
	closed    bool
}

func (m *mockSession) SearchUnreadFrom(string) ([]mailbox.Handle, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	handles := make([]mailbox.Handle, 0, len(m.messages))
	for h := range m.messages {
		handles = append(handles, h)
	}
	return handles, nil
}

func (m *mockSession) Fetch(h mailbox.Handle) ([]byte, error) {
	if m.fetchErrs[h] > 0 {
		m.fetchErrs[h]--
		return nil, errors.New("fetch failed")
	}
	return m.messages[h], nil
}

func (m *mockSession) MarkSeen(h mailbox.Handle) error {
	m.seen = append(m.seen, h)
	return nil
}

func (m *mockSession) Close() error {
	m.closed = true
	return nil
}

type mockMailbox struct {
	session *mockSession
	dialErr error
}

func (m *mockMailbox) Dial(context.Context) (mailbox.Session, error) {
	if m.dialErr != nil {
		return nil, m.dialErr
	}
	return m.session, nil
}

type mockMerger struct {
	merged []model.Lead
}

func (m *mockMerger) BulkUpsert(leads []model.Lead) (int, error) {
	m.merged = append(m.merged, leads...)
	return len(leads), nil
}

type mockProspectSource struct {
	prospects []outbound.Prospect
	err       error
}

func (m *mockProspectSource) FindProspects(context.Context) ([]outbound.Prospect, error) {
	return m.prospects, m.err
}
