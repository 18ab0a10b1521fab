package clicklog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatsFetchesByAdID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("days") != "7" {
			t.Errorf("days = %q", r.URL.Query().Get("days"))
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("auth = %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`{"by_ad_id":{"ad1":12,"ad2":0}}`))
	}))
	defer srv.Close()

	c := &Client{Endpoint: srv.URL, Token: "tok", HTTPClient: srv.Client()}
	got, err := c.Stats(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if got["ad1"] != 12 || got["ad2"] != 0 {
		t.Errorf("stats = %+v", got)
	}
}

func TestStatsRequiresEndpoint(t *testing.T) {
	c := &Client{}
	if _, err := c.Stats(context.Background(), 7); err == nil {
		t.Error("expected error without endpoint")
	}
}

func TestPostIsFireAndForget(t *testing.T) {
	var received map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
	}))
	defer srv.Close()

	c := &Client{Endpoint: srv.URL, HTTPClient: srv.Client()}
	c.Post(context.Background(), "placement", "ad1", "csv-fixer")

	if received["event"] != "placement" || received["ad_id"] != "ad1" || received["page"] != "csv-fixer" {
		t.Errorf("received = %+v", received)
	}
	if received["ts"] == "" {
		t.Error("event has no timestamp")
	}

	// Unreachable endpoint must not panic or error out.
	down := &Client{Endpoint: "http://127.0.0.1:0"}
	down.Post(context.Background(), "click", "ad1", "p")
}
