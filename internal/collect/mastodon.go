package collect

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/mikanntool/goliath/pkg/goliath/candidate"
)

// Mastodon collects statuses via the v2 search API of a configured
// instance. Both APIBase and AccessToken are required; without them
// the source reports no-credentials and is skipped.
type Mastodon struct {
	APIBase     string
	AccessToken string
	HTTPClient  *http.Client
}

func (m *Mastodon) Name() string { return "mastodon" }

type mastodonResponse struct {
	Statuses []struct {
		URL     string `json:"url"`
		Content string `json:"content"`
		Account struct {
			Acct string `json:"acct"`
		} `json:"account"`
		FavouritesCount int `json:"favourites_count"`
		ReblogsCount    int `json:"reblogs_count"`
	} `json:"statuses"`
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

func (m *Mastodon) Collect(ctx context.Context, queries []string, perQuery int) ([]candidate.Raw, Diagnostic) {
	base := strings.TrimSuffix(strings.TrimSpace(m.APIBase), "/")
	token := strings.TrimSpace(m.AccessToken)
	if base == "" || token == "" {
		return nil, Diagnostic{Source: "mastodon", Status: StatusNoCredentials}
	}

	client := httpClient(m.HTTPClient)
	headers := map[string]string{"Authorization": "Bearer " + token}

	var out []candidate.Raw
	var lastErr error
	for _, q := range queries {
		params := url.Values{
			"q":       {q},
			"type":    {"statuses"},
			"limit":   {strconv.Itoa(perQuery)},
			"resolve": {"false"},
		}

		var payload mastodonResponse
		if err := getJSON(ctx, client, base+"/api/v2/search?"+params.Encode(), headers, &payload); err != nil {
			lastErr = err
			continue
		}

		for _, s := range payload.Statuses {
			text := stripStatusHTML(s.Content)
			if text == "" || s.URL == "" {
				continue
			}
			out = append(out, candidate.Raw{
				Text:       text,
				URL:        s.URL,
				Source:     "mastodon",
				Author:     s.Account.Acct,
				Engagement: s.FavouritesCount + s.ReblogsCount,
			})
		}
	}
	return out, diagnose("mastodon", out, lastErr)
}

// stripStatusHTML flattens a status body to plain text, keeping line
// breaks.
func stripStatusHTML(content string) string {
	for _, br := range []string{"<br />", "<br/>", "<br>"} {
		content = strings.ReplaceAll(content, br, "\n")
	}
	return strings.TrimSpace(tagPattern.ReplaceAllString(content, ""))
}
