// internal/outbound/linkedin.go
package outbound

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// LinkedInBridge talks to the headless-browser automation sidecar that
// performs the literal LinkedIn actions. The core only knows this narrow
// HTTP surface.
type LinkedInBridge struct {
	baseURL    string
	httpClient *http.Client
}

func NewLinkedInBridge(baseURL string) *LinkedInBridge {
	return &LinkedInBridge{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

func (b *LinkedInBridge) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("automation bridge request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("automation bridge returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if out != nil {
		return json.Unmarshal(respBody, out)
	}
	return nil
}

// Connect asks the sidecar to send a connection request with a note.
func (b *LinkedInBridge) Connect(ctx context.Context, profileURL, note string) error {
	payload := map[string]string{
		"profile_url": profileURL,
		"note":        note,
	}
	return b.doRequest(ctx, http.MethodPost, "/connect", payload, nil)
}

// FindProspects asks the sidecar to scrape a batch of prospects from the
// configured directory.
func (b *LinkedInBridge) FindProspects(ctx context.Context) ([]Prospect, error) {
	var result struct {
		Prospects []Prospect `json:"prospects"`
	}
	if err := b.doRequest(ctx, http.MethodGet, "/prospects", nil, &result); err != nil {
		return nil, err
	}
	return result.Prospects, nil
}

var _ ConnectionRequester = (*LinkedInBridge)(nil)
var _ ProspectSource = (*LinkedInBridge)(nil)
