package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mikanntool/goliath/pkg/goliath/build"
)

func chatServer(t *testing.T, reply string, gotPrompt *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if len(req.Messages) != 2 {
			t.Errorf("messages = %d", len(req.Messages))
		}
		if gotPrompt != nil {
			*gotPrompt = req.Messages[1].Content
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}))
}

func TestBuildSendsStructuredPrompt(t *testing.T) {
	var prompt string
	srv := chatServer(t, "<!doctype html><html></html>", &prompt)
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, Model: "test-model", HTTPClient: srv.Client()}
	out, err := c.Build(context.Background(), build.Request{
		Title:           "CSV Fixer",
		Category:        "Data/Spreadsheets",
		CanonicalPath:   "/pages/csv-fixer/",
		Keywords:        []string{"csv", "json"},
		ProblemExamples: []string{"my csv breaks"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "<!doctype html>") {
		t.Errorf("out = %q", out)
	}
	for _, want := range []string{"CSV Fixer", "/pages/csv-fixer/", "my csv breaks", build.SponsorSlotMarker, "window.__RELATED__ = []"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildCarriesFailureReason(t *testing.T) {
	var prompt string
	srv := chatServer(t, "<!doctype html>", &prompt)
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, Model: "m", HTTPClient: srv.Client()}
	_, err := c.Build(context.Background(), build.Request{Title: "T", FailureReason: "missing hub back-link"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(prompt, "missing hub back-link") {
		t.Error("failure reason not propagated to prompt")
	}
}

func TestPatchReturnsDiff(t *testing.T) {
	srv := chatServer(t, "```diff\n--- a/index.html\n+++ b/index.html\n@@ -1,1 +1,1 @@\n-x\n+y\n```", nil)
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, Model: "m", HTTPClient: srv.Client()}
	out, err := c.Patch(context.Background(), "missing doctype", "<html></html>")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "--- a/index.html") {
		t.Errorf("fences not stripped: %q", out)
	}
}

func TestChatRequiresConfig(t *testing.T) {
	c := &Client{}
	if _, err := c.Build(context.Background(), build.Request{}); err == nil {
		t.Error("expected error without base URL and model")
	}
}

func TestStripFences(t *testing.T) {
	if got := stripFences("```html\n<p>x</p>\n```"); got != "<p>x</p>" {
		t.Errorf("got %q", got)
	}
	if got := stripFences("plain"); got != "plain" {
		t.Errorf("got %q", got)
	}
}
