// Package clicklog talks to the click-tracking worker: posting click
// events fire-and-forget and fetching aggregated stats for priority
// tuning.
package clicklog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client wraps the tracking worker endpoints. Endpoint is the stats
// URL; Token is optional.
type Client struct {
	Endpoint string
	Token    string

	HTTPClient *http.Client
	Log        *slog.Logger
}

type statsResponse struct {
	ByAdID map[string]int `json:"by_ad_id"`
}

// Stats fetches click counts per affiliate ID over the trailing
// window.
func (c *Client) Stats(ctx context.Context, days int) (map[string]int, error) {
	if c.Endpoint == "" {
		return nil, fmt.Errorf("clicklog: endpoint not configured")
	}
	if days <= 0 {
		days = 7
	}

	u := c.Endpoint + "?" + url.Values{"days": {strconv.Itoa(days)}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("clicklog: HTTP %d", resp.StatusCode)
	}

	var payload statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.ByAdID == nil {
		return map[string]int{}, nil
	}
	return payload.ByAdID, nil
}

// Post records a sponsor event (a placement at publish time, a click
// from the page hook) keyed by sponsor id and page slug. Failures are
// logged and swallowed; a lost event never disturbs publication.
func (c *Client) Post(ctx context.Context, event, adID, page string) {
	if c.Endpoint == "" || adID == "" {
		return
	}

	body, err := json.Marshal(map[string]string{
		"event": event,
		"ad_id": adID,
		"page":  page,
		"ts":    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		c.logger().Warn("click post failed", "ad_id", adID, "error", err)
		return
	}
	resp.Body.Close()
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (c *Client) logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}
