// internal/drafting/gemini.go
package drafting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/draftloop/outreach-backend/internal/model"
)

// GeminiClient drafts content through the Gemini generateContent REST API.
type GeminiClient struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
}

func NewGeminiClient(apiKey, modelName, baseURL string) *GeminiClient {
	return &GeminiClient{
		apiKey:     apiKey,
		modelName:  modelName,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// IsConfigured returns true if the API key is set.
func (c *GeminiClient) IsConfigured() bool {
	return c.apiKey != ""
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.modelName, c.apiKey)

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("gemini error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}

func (c *GeminiClient) DraftInitial(ctx context.Context, lead model.Lead) (string, error) {
	return c.generate(ctx, PromptForLead(lead, 1))
}

func (c *GeminiClient) DraftFollowUp(ctx context.Context, lead model.Lead, sequenceStep int) (string, error) {
	return c.generate(ctx, PromptForLead(lead, sequenceStep))
}

func (c *GeminiClient) DraftReply(ctx context.Context, conversationHistory string) (string, error) {
	return c.generate(ctx, PromptForReply(conversationHistory))
}

// GuessEmail returns a lowercased best-guess address for a scraped prospect.
func (c *GeminiClient) GuessEmail(ctx context.Context, fullName, company string) (string, error) {
	guess, err := c.generate(ctx, PromptForEmailGuess(fullName, company))
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(guess)), nil
}

var _ Producer = (*GeminiClient)(nil)
