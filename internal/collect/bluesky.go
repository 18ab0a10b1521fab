package collect

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mikanntool/goliath/pkg/goliath/candidate"
)

const blueskySearchURL = "https://public.api.bsky.app/xrpc/app.bsky.feed.searchPosts"

// Bluesky collects posts from the public AppView search endpoint. No
// credentials required.
type Bluesky struct {
	HTTPClient *http.Client
}

func (b *Bluesky) Name() string { return "bluesky" }

type blueskyResponse struct {
	Posts []struct {
		URI    string `json:"uri"`
		Author struct {
			Handle string `json:"handle"`
		} `json:"author"`
		Record struct {
			Text      string `json:"text"`
			CreatedAt string `json:"createdAt"`
		} `json:"record"`
		LikeCount   int `json:"likeCount"`
		RepostCount int `json:"repostCount"`
		ReplyCount  int `json:"replyCount"`
	} `json:"posts"`
}

func (b *Bluesky) Collect(ctx context.Context, queries []string, perQuery int) ([]candidate.Raw, Diagnostic) {
	client := httpClient(b.HTTPClient)

	var out []candidate.Raw
	var lastErr error
	for _, q := range queries {
		params := url.Values{"q": {q}, "limit": {strconv.Itoa(perQuery)}}

		var payload blueskyResponse
		if err := getJSON(ctx, client, blueskySearchURL+"?"+params.Encode(), nil, &payload); err != nil {
			lastErr = err
			continue
		}

		for _, p := range payload.Posts {
			text := strings.TrimSpace(p.Record.Text)
			if text == "" {
				continue
			}

			postURL := p.URI
			const marker = "/app.bsky.feed.post/"
			if idx := strings.LastIndex(p.URI, marker); idx >= 0 && p.Author.Handle != "" {
				rkey := p.URI[idx+len(marker):]
				postURL = "https://bsky.app/profile/" + p.Author.Handle + "/post/" + rkey
			}
			if postURL == "" {
				continue
			}

			raw := candidate.Raw{
				Text:       text,
				URL:        postURL,
				Source:     "bluesky",
				Author:     p.Author.Handle,
				Engagement: p.LikeCount + p.RepostCount + p.ReplyCount,
			}
			if ts, err := time.Parse(time.RFC3339, p.Record.CreatedAt); err == nil {
				raw.CreatedAt = ts.UTC()
			}
			out = append(out, raw)
		}
	}
	return out, diagnose("bluesky", out, lastErr)
}
