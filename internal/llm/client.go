// Package llm implements the artifact generator against an
// OpenAI-compatible chat completion endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mikanntool/goliath/pkg/goliath/build"
)

// Client calls an OpenAI-compatible chat completion endpoint. It
// implements build.Generator.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string

	HTTPClient *http.Client
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

const buildSystem = "You are a static-site generator. Emit one complete, self-contained HTML document and nothing else. No explanations, no code fences."

const patchSystem = "You repair HTML documents. Emit a unified diff against the provided document fixing ONLY the reported problem. Start with '--- a/index.html' and '+++ b/index.html', use '@@ -a,b +c,d @@' hunk headers, and nothing else."

// Build generates a complete artifact for the request.
func (c *Client) Build(ctx context.Context, req build.Request) (string, error) {
	out, err := c.chat(ctx, buildSystem, buildPrompt(req))
	if err != nil {
		return "", err
	}
	return stripFences(out), nil
}

// Patch asks for a unified diff targeting the single reported
// validation failure.
func (c *Client) Patch(ctx context.Context, reason, current string) (string, error) {
	user := fmt.Sprintf("Validation failed: %s\n\nCurrent document:\n%s\n\nEmit the smallest unified diff that fixes this.", reason, current)
	out, err := c.chat(ctx, patchSystem, user)
	if err != nil {
		return "", err
	}
	return stripFences(out), nil
}

func buildPrompt(req build.Request) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Build a single-page micro tool site.\n")
	fmt.Fprintf(&buf, "Title: %s\nCategory: %s\nCanonical path: %s\n", req.Title, req.Category, req.CanonicalPath)
	fmt.Fprintf(&buf, "Keywords: %s\n", strings.Join(req.Keywords, ", "))
	fmt.Fprintf(&buf, "Problems it must address:\n")
	for i, p := range req.ProblemExamples {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, p)
	}
	fmt.Fprintf(&buf, `
Structural requirements:
- start with <!doctype html> and a full <html> document
- footer links to privacy, terms, disclaimer, about and contact pages
- a language switcher <select id="%s"> and at least %d elements with data-i18n attributes
- a back-link to %s
- the literal placeholder %s where sponsor content goes
- an inline script containing exactly: window.__RELATED__ = []
`, build.LangSwitcherID, 12, build.HubPath, build.SponsorSlotMarker)
	if req.FailureReason != "" {
		fmt.Fprintf(&buf, "\nThe previous attempt failed validation: %s\nAvoid repeating that mistake.\n", req.FailureReason)
	}
	return buf.String()
}

func (c *Client) chat(ctx context.Context, system, user string) (string, error) {
	if c.BaseURL == "" || c.Model == "" {
		return "", fmt.Errorf("llm: base URL and model required")
	}
	messages := []chatMessage{{Role: "system", Content: system}, {Role: "user", Content: user}}
	payload, err := c.send(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("llm: empty response")
	}
	return payload.Choices[0].Message.Content, nil
}

func (c *Client) send(ctx context.Context, messages []chatMessage) (*chatResponse, error) {
	reqBody, err := json.Marshal(chatRequest{Model: c.Model, Messages: messages})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var payload chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("llm error: %s", payload.Error.Message)
	}
	return &payload, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 120 * time.Second}
}

// stripFences drops a surrounding markdown code fence if the model
// added one anyway.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
