package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftloop/outreach-backend/internal/model"
	"github.com/draftloop/outreach-backend/internal/outbound"
)

func TestProspectingMergesGuessedLeads(t *testing.T) {
	merger := &mockMerger{}
	w := &ProspectingWorker{
		Source: &mockProspectSource{prospects: []outbound.Prospect{
			{FullName: "Jane Doe", Company: "Acme Agency", Title: "Marketing Lead", ProfileURL: "https://linkedin.com/in/jane"},
		}},
		Producer: &mockProducer{email: "jane.doe@acmeagency.com"},
		Leads:    merger,
		Timeout:  time.Second,
	}

	require.NoError(t, w.RunOnce(context.Background()))

	require.Len(t, merger.merged, 1)
	lead := merger.merged[0]
	assert.Equal(t, "jane.doe@acmeagency.com", lead.Email)
	assert.Equal(t, model.ChannelEmail, lead.PreferredChannel)
	assert.Equal(t, "https://linkedin.com/in/jane", lead.LinkedInURL)
}

func TestProspectingSkipsUnresolvableProspects(t *testing.T) {
	merger := &mockMerger{}
	w := &ProspectingWorker{
		Source: &mockProspectSource{prospects: []outbound.Prospect{
			{FullName: "Jane Doe", Company: "Acme"},
			{FullName: "", Company: "Nameless Inc"},
		}},
		Producer: &mockProducer{email: ""},
		Leads:    merger,
		Timeout:  time.Second,
	}

	require.NoError(t, w.RunOnce(context.Background()))
	assert.Empty(t, merger.merged)
}

func TestProspectingSourceErrorPropagates(t *testing.T) {
	w := &ProspectingWorker{
		Source:  &mockProspectSource{err: errors.New("bridge down")},
		Leads:   &mockMerger{},
		Timeout: time.Second,
	}
	assert.Error(t, w.RunOnce(context.Background()))
}
