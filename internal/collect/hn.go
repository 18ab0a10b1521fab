package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mikanntool/goliath/pkg/goliath/candidate"
)

const hnSearchURL = "https://hn.algolia.com/api/v1/search_by_date"

// HN collects recent stories and comments from the Algolia Hacker
// News search API. No credentials required.
type HN struct {
	DaysBack   int
	HTTPClient *http.Client
}

func (h *HN) Name() string { return "hn" }

type hnResponse struct {
	Hits []struct {
		ObjectID    string `json:"objectID"`
		Title       string `json:"title"`
		StoryTitle  string `json:"story_title"`
		CommentText string `json:"comment_text"`
		Author      string `json:"author"`
		Points      int    `json:"points"`
		NumComments int    `json:"num_comments"`
		CreatedAtI  int64  `json:"created_at_i"`
	} `json:"hits"`
}

func (h *HN) Collect(ctx context.Context, queries []string, perQuery int) ([]candidate.Raw, Diagnostic) {
	daysBack := h.DaysBack
	if daysBack <= 0 {
		daysBack = 365
	}
	minTS := time.Now().UTC().AddDate(0, 0, -daysBack).Unix()
	client := httpClient(h.HTTPClient)

	var out []candidate.Raw
	var lastErr error
	for _, q := range queries {
		params := url.Values{
			"query":          {q},
			"tags":           {"(story,comment)"},
			"numericFilters": {fmt.Sprintf("created_at_i>%d", minTS)},
			"hitsPerPage":    {strconv.Itoa(perQuery)},
		}

		var payload hnResponse
		if err := getJSON(ctx, client, hnSearchURL+"?"+params.Encode(), nil, &payload); err != nil {
			lastErr = err
			continue
		}

		for _, hit := range payload.Hits {
			text := strings.TrimSpace(hit.Title)
			if text == "" {
				text = strings.TrimSpace(hit.StoryTitle)
			}
			if text == "" {
				text = strings.TrimSpace(hit.CommentText)
			}
			if text == "" || hit.ObjectID == "" {
				continue
			}
			out = append(out, candidate.Raw{
				Text:       text,
				URL:        "https://news.ycombinator.com/item?id=" + hit.ObjectID,
				Source:     "hn",
				Author:     hit.Author,
				CreatedAt:  time.Unix(hit.CreatedAtI, 0).UTC(),
				Engagement: hit.Points + hit.NumComments,
			})
		}
	}
	return out, diagnose("hn", out, lastErr)
}

func getJSON(ctx context.Context, client *http.Client, rawURL string, headers map[string]string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}
	return json.NewDecoder(resp.Body).Decode(into)
}
