package drafting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, ":generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
}

func TestGeminiDraftInitial(t *testing.T) {
	srv := geminiServer(t, http.StatusOK, map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": "Hi Jane, "}, {"text": "quick question."}}}},
		},
	})
	defer srv.Close()

	c := NewGeminiClient("test-key", "gemini-1.5-flash-latest", srv.URL)
	text, err := c.DraftInitial(context.Background(), testLead)
	require.NoError(t, err)
	assert.Equal(t, "Hi Jane, quick question.", text)
}

func TestGeminiEmptyCandidatesIsContentFailure(t *testing.T) {
	srv := geminiServer(t, http.StatusOK, map[string]any{"candidates": []any{}})
	defer srv.Close()

	c := NewGeminiClient("test-key", "gemini-1.5-flash-latest", srv.URL)
	text, err := c.DraftReply(context.Background(), "history")
	require.NoError(t, err)
	assert.Empty(t, text, "no candidates must surface as empty text, not an error")
}

func TestGeminiHTTPErrorSurfaces(t *testing.T) {
	srv := geminiServer(t, http.StatusTooManyRequests, map[string]any{
		"error": map[string]any{"code": 429, "message": "rate limited"},
	})
	defer srv.Close()

	c := NewGeminiClient("test-key", "gemini-1.5-flash-latest", srv.URL)
	_, err := c.DraftFollowUp(context.Background(), testLead, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGuessEmailNormalized(t *testing.T) {
	srv := geminiServer(t, http.StatusOK, map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": "  Jane.Doe@Acme.com\n"}}}},
		},
	})
	defer srv.Close()

	c := NewGeminiClient("test-key", "gemini-1.5-flash-latest", srv.URL)
	email, err := c.GuessEmail(context.Background(), "Jane Doe", "Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@acme.com", email)
}

func TestGeminiIsConfigured(t *testing.T) {
	assert.False(t, NewGeminiClient("", "m", "http://x").IsConfigured())
	assert.True(t, NewGeminiClient("k", "m", "http://x").IsConfigured())
}
