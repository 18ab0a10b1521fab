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

const xSearchURL = "https://api.x.com/2/tweets/search/recent"

// X collects recent posts via the v2 search API. A bearer token is
// required; without one the source reports no-credentials and is
// skipped.
type X struct {
	BearerToken string
	HTTPClient  *http.Client
}

func (x *X) Name() string { return "x" }

type xResponse struct {
	Data []struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		CreatedAt string `json:"created_at"`
	} `json:"data"`
}

func (x *X) Collect(ctx context.Context, queries []string, perQuery int) ([]candidate.Raw, Diagnostic) {
	token := strings.TrimSpace(x.BearerToken)
	if token == "" {
		return nil, Diagnostic{Source: "x", Status: StatusNoCredentials}
	}

	if perQuery > 100 {
		perQuery = 100
	}
	client := httpClient(x.HTTPClient)
	headers := map[string]string{"Authorization": "Bearer " + token}

	var out []candidate.Raw
	var lastErr error
	for _, q := range queries {
		params := url.Values{
			"query":        {q},
			"max_results":  {strconv.Itoa(perQuery)},
			"tweet.fields": {"created_at"},
		}

		var payload xResponse
		if err := getJSON(ctx, client, xSearchURL+"?"+params.Encode(), headers, &payload); err != nil {
			lastErr = err
			continue
		}

		for _, t := range payload.Data {
			text := strings.TrimSpace(t.Text)
			if t.ID == "" || text == "" {
				continue
			}
			raw := candidate.Raw{
				Text:   text,
				URL:    "https://x.com/i/web/status/" + t.ID,
				Source: "x",
			}
			if ts, err := time.Parse(time.RFC3339, t.CreatedAt); err == nil {
				raw.CreatedAt = ts.UTC()
			}
			out = append(out, raw)
		}
	}
	return out, diagnose("x", out, lastErr)
}
