package client

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

// Client invokes the analysis backend and normalizes its failures.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client (tests, custom
// transports).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token after a re-login.
func (c *Client) SetToken(token string) { c.token = token }

// Analyze submits merged lead content and returns the structured report.
// On failure it returns a *Error carrying a kind and one flat message;
// normalization priority: unreachable transport, quota (402), structured
// error body, raw fallback.
func (c *Client) Analyze(ctx context.Context, text string) (*AnalysisResult, error) {
	if strings.TrimSpace(c.token) == "" {
		return nil, &Error{Kind: KindUnauthenticated, Message: msgUnauthenticated}
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, &Error{Kind: KindBackend, Message: msgGenericFailure}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Kind: KindBackend, Message: msgGenericFailure}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindUnreachable, Message: msgUnreachable}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindBackend, Status: resp.StatusCode, Message: msgGenericFailure}
	}

	if resp.StatusCode == http.StatusPaymentRequired {
		// Fixed message regardless of whatever the backend put in the body.
		return nil, &Error{Kind: KindQuotaExceeded, Status: resp.StatusCode, Message: msgQuotaExceeded}
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &Error{Kind: KindUnauthenticated, Status: resp.StatusCode, Message: msgUnauthenticated}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Kind:    KindBackend,
			Status:  resp.StatusCode,
			Message: extractErrorMessage(body, msgGenericFailure),
		}
	}

	var result AnalysisResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &Error{Kind: KindBackend, Status: resp.StatusCode, Message: msgGenericFailure}
	}
	return &result, nil
}

// Probe runs the diagnostic health call. It never returns an error; any
// failure is folded into the message.
func (c *Client) Probe(ctx context.Context) Health {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/analyze", nil)
	if err != nil {
		return Health{OK: false, Message: fmt.Sprintf("probe setup failed: %v", err)}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Health{OK: false, Message: msgUnreachable}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return Health{OK: false, Message: fmt.Sprintf("backend returned status %d: %s", resp.StatusCode, extractErrorMessage(body, "no details"))}
	}

	var status struct {
		Status string `json:"status"`
		Model  string `json:"model"`
	}
	if err := json.Unmarshal(body, &status); err != nil {
		return Health{OK: false, Message: "backend responded with an unexpected payload"}
	}
	return Health{OK: true, Message: fmt.Sprintf("backend %s, model %s", status.Status, status.Model)}
}

// extractErrorMessage unwraps {"error": "..."} bodies, including the
// stringified-JSON nesting some gateways produce, down to one string.
func extractErrorMessage(body []byte, fallback string) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fallback
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(trimmed), &payload); err == nil && payload.Error != "" {
		// The error field itself may be a stringified {"error": ...} or a
		// quoted string.
		var nested struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal([]byte(payload.Error), &nested); err == nil && nested.Error != "" {
			return nested.Error
		}
		var s string
		if err := json.Unmarshal([]byte(payload.Error), &s); err == nil && s != "" {
			return s
		}
		return payload.Error
	}

	var s string
	if err := json.Unmarshal([]byte(trimmed), &s); err == nil && s != "" {
		return s
	}
	return trimmed
}
