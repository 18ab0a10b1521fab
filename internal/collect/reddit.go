package collect

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mikanntool/goliath/pkg/goliath/candidate"
)

const redditBaseURL = "https://www.reddit.com"

// Reddit collects fresh posts from the public new.json listing of a
// set of subreddits and keeps only the help-like ones. No credentials
// required, but the public endpoint is rate-limited; failures leave
// the batch partial rather than aborting.
type Reddit struct {
	Subreddits []string
	HTTPClient *http.Client

	baseURL string // test override
}

func (r *Reddit) Name() string { return "reddit" }

type redditResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				Name        string  `json:"name"`
				Title       string  `json:"title"`
				Selftext    string  `json:"selftext"`
				Permalink   string  `json:"permalink"`
				URL         string  `json:"url"`
				Author      string  `json:"author"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
				CreatedUTC  float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (r *Reddit) Collect(ctx context.Context, queries []string, perQuery int) ([]candidate.Raw, Diagnostic) {
	subs := r.Subreddits
	if len(subs) == 0 {
		subs = []string{"webdev", "sysadmin", "programming"}
	}
	base := r.baseURL
	if base == "" {
		base = redditBaseURL
	}
	client := httpClient(r.HTTPClient)

	lowered := make([]string, 0, len(queries))
	for _, q := range queries {
		lowered = append(lowered, strings.ToLower(q))
	}

	var out []candidate.Raw
	var lastErr error
	for _, sub := range subs {
		params := url.Values{"limit": {"50"}}

		var payload redditResponse
		if err := getJSON(ctx, client, base+"/r/"+url.PathEscape(sub)+"/new.json?"+params.Encode(), nil, &payload); err != nil {
			lastErr = err
			continue
		}

		kept := 0
		for _, ch := range payload.Data.Children {
			d := ch.Data
			text := strings.TrimSpace(strings.TrimSpace(d.Title) + "\n" + strings.TrimSpace(d.Selftext))
			if text == "" || !containsAny(strings.ToLower(text), lowered) {
				continue
			}

			postURL := d.URL
			if strings.HasPrefix(d.Permalink, "/") {
				postURL = redditBaseURL + d.Permalink
			}
			if postURL == "" {
				continue
			}

			out = append(out, candidate.Raw{
				Text:       text,
				URL:        postURL,
				Source:     "reddit",
				Author:     d.Author,
				CreatedAt:  time.Unix(int64(d.CreatedUTC), 0).UTC(),
				Engagement: d.Score + d.NumComments,
			})
			kept++
			if perQuery > 0 && kept >= perQuery {
				break
			}
		}
	}
	return out, diagnose("reddit", out, lastErr)
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if p != "" && strings.Contains(text, p) {
			return true
		}
	}
	return false
}
