package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/draftloop/outreach-backend/internal/errors"
	"github.com/draftloop/outreach-backend/internal/model"
	"github.com/draftloop/outreach-backend/internal/repository"
	"github.com/draftloop/outreach-backend/internal/service"
)

type stubLeadRepo struct {
	upserted []model.Lead
	leads    []model.Lead
}

func (s *stubLeadRepo) BulkUpsert(leads []model.Lead) (int, error) {
	s.upserted = append(s.upserted, leads...)
	return len(leads), nil
}

func (s *stubLeadRepo) GetByID(id int) (*model.Lead, error) {
	return nil, appErrors.NewLeadNotFound(id)
}

func (s *stubLeadRepo) ListByStatus(...model.LeadStatus) ([]model.Lead, error) {
	return s.leads, nil
}

func (s *stubLeadRepo) UpdateStatusByEmail(email string, status model.LeadStatus) (*model.Lead, error) {
	if email != "jane@acme.com" {
		return nil, appErrors.NewLeadNotFoundByEmail(email)
	}
	return &model.Lead{Email: email, Status: status}, nil
}

func (s *stubLeadRepo) ClaimNew(context.Context) (*repository.ClaimedLead, error) {
	return nil, nil
}

type stubMessageRepo struct {
	pending  []repository.PendingMessage
	approved []int
}

func (s *stubMessageRepo) ListPending() ([]repository.PendingMessage, error) {
	return s.pending, nil
}

func (s *stubMessageRepo) Approve(id int) (*model.Message, error) {
	if id != 4 {
		return nil, appErrors.NewMessageNotFound(id)
	}
	s.approved = append(s.approved, id)
	return &model.Message{ID: id, Status: model.MessageStatusApproved}, nil
}

func (s *stubMessageRepo) Reject(id int) (*model.Message, error) {
	if id != 4 {
		return nil, appErrors.NewMessageNotFound(id)
	}
	return &model.Message{ID: id, Status: model.MessageStatusRejected}, nil
}

func (s *stubMessageRepo) UpdateContent(id int, content string) (*model.Message, error) {
	return &model.Message{ID: id, Content: content, Status: model.MessageStatusPendingApproval}, nil
}

func (s *stubMessageRepo) InsertDraft(msg *model.Message) error {
	msg.ID = 1
	return nil
}

func (s *stubMessageRepo) ThreadHistory(int, string) ([]model.Message, error) { return nil, nil }

func (s *stubMessageRepo) RecordReplyExchange(context.Context, int, string, string, string) error {
	return nil
}

func (s *stubMessageRepo) ClaimScheduled(context.Context) (*repository.ClaimedFollowUp, error) {
	return nil, nil
}

func (s *stubMessageRepo) ClaimApproved(context.Context) (*repository.ClaimedSend, error) {
	return nil, nil
}

type stubProspecting struct {
	ran chan struct{}
}

func (s *stubProspecting) RunOnce(context.Context) error {
	close(s.ran)
	return nil
}

func newTestServer(leadRepo *stubLeadRepo, msgRepo *stubMessageRepo, prospecting ProspectingRunner) *httptest.Server {
	leadCtrl := &LeadController{
		LeadService: &service.LeadService{LeadRepo: leadRepo},
		Prospecting: prospecting,
	}
	msgCtrl := &MessageController{
		ReviewService: &service.ReviewService{MessageRepo: msgRepo, LeadRepo: leadRepo},
	}
	return httptest.NewServer(NewRouter(leadCtrl, msgCtrl))
}

func TestUploadLeadsEndpoint(t *testing.T) {
	leadRepo := &stubLeadRepo{}
	srv := newTestServer(leadRepo, &stubMessageRepo{}, nil)
	defer srv.Close()

	body := `[{"full_name":"Jane Doe","email":"jane@acme.com","company":"Acme"}]`
	resp, err := http.Post(srv.URL+"/api/leads/upload", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var result service.UploadResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 1, result.Inserted)
	require.Len(t, leadRepo.upserted, 1)
}

func TestUploadLeadsEndpointRejectsBadBody(t *testing.T) {
	srv := newTestServer(&stubLeadRepo{}, &stubMessageRepo{}, nil)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/leads/upload", "application/json", strings.NewReader("not json"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListPendingEndpoint(t *testing.T) {
	msgRepo := &stubMessageRepo{pending: []repository.PendingMessage{
		{ID: 4, Content: "Hi Jane", Channel: "email", FullName: "Jane Doe", Company: "Acme"},
	}}
	srv := newTestServer(&stubLeadRepo{}, msgRepo, nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/messages/pending")
	require.NoError(t, err)
	defer resp.Body.Close()

	var pending []repository.PendingMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pending))
	require.Len(t, pending, 1)
	assert.Equal(t, "Jane Doe", pending[0].FullName)
}

func putJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestApproveEndpoint(t *testing.T) {
	msgRepo := &stubMessageRepo{}
	srv := newTestServer(&stubLeadRepo{}, msgRepo, nil)
	defer srv.Close()

	resp := putJSON(t, srv.URL+"/api/messages/4/approve", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []int{4}, msgRepo.approved)
}

func TestApproveMissingMessageIs404(t *testing.T) {
	srv := newTestServer(&stubLeadRepo{}, &stubMessageRepo{}, nil)
	defer srv.Close()

	resp := putJSON(t, srv.URL+"/api/messages/99/approve", "")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateContentEndpointRequiresContent(t *testing.T) {
	srv := newTestServer(&stubLeadRepo{}, &stubMessageRepo{}, nil)
	defer srv.Close()

	resp := putJSON(t, srv.URL+"/api/messages/4", `{"content":""}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = putJSON(t, srv.URL+"/api/messages/4", `{"content":"better text"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUpdateLeadStatusEndpoint(t *testing.T) {
	srv := newTestServer(&stubLeadRepo{}, &stubMessageRepo{}, nil)
	defer srv.Close()

	resp := putJSON(t, srv.URL+"/api/leads/status/by-email/jane@acme.com", `{"status":"meeting_booked"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2 := putJSON(t, srv.URL+"/api/leads/status/by-email/nobody@acme.com", `{"status":"meeting_booked"}`)
	resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestStartScrapingEndpoint(t *testing.T) {
	prospecting := &stubProspecting{ran: make(chan struct{})}
	srv := newTestServer(&stubLeadRepo{}, &stubMessageRepo{}, prospecting)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/leads/start-scraping")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	select {
	case <-prospecting.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("prospecting run was not triggered")
	}
}

func TestSaveDraftEndpointUnknownLeadIs404(t *testing.T) {
	srv := newTestServer(&stubLeadRepo{}, &stubMessageRepo{}, nil)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/drafts", "application/json",
		strings.NewReader(`{"lead_id":99,"content":"hello","thread_id":"t"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
