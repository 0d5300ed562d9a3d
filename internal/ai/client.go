// Package ai calls the external insight text service. The service is an
// optional collaborator: every failure maps to errs.ErrInsightUnavailable
// and is never fatal to the caller.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cyclewise/cyclewise/internal/errs"
)

// maxContextBytes bounds the JSON-encoded context shipped with a prompt.
const maxContextBytes = 6000

// Client talks to the insight endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs a Client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type suggestRequest struct {
	Prompt  string          `json:"prompt"`
	Context json.RawMessage `json:"context"`
}

type suggestResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// Suggest posts {prompt, context} and returns the generated text. The
// context is truncated to a bounded size before sending; any transport,
// status or decode failure returns errs.ErrInsightUnavailable.
func (c *Client) Suggest(ctx context.Context, prompt string, contextData any) (string, error) {
	raw, err := json.Marshal(contextData)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrInsightUnavailable, err)
	}
	if len(raw) > maxContextBytes {
		// Truncation can break JSON; ship the remainder as a JSON string so
		// the payload stays well-formed.
		trimmed, _ := json.Marshal(string(raw[:maxContextBytes]))
		raw = trimmed
	}

	body, err := json.Marshal(suggestRequest{Prompt: prompt, Context: raw})
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrInsightUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ai", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrInsightUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrInsightUnavailable, err)
	}
	defer resp.Body.Close()

	var out suggestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrInsightUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d: %s", errs.ErrInsightUnavailable, resp.StatusCode, out.Error)
	}
	return out.Text, nil
}
