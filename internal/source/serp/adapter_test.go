package serp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lenilani/leadscout/internal/domain"
)

func testQuery() domain.QueryCombination {
	return domain.QueryCombination{Industry: "tourism", Location: "Honolulu", Keyword: "snorkeling"}
}

func TestFetchParsesLocalResults(t *testing.T) {
	var gotParams map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotParams = map[string]string{
			"engine":  r.URL.Query().Get("engine"),
			"q":       r.URL.Query().Get("q"),
			"api_key": r.URL.Query().Get("api_key"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"local_results": [
				{"title": "Aloha Snorkel", "website": "https://alohasnorkel.com", "phone": "808-555-0001", "address": "Waikiki", "rating": 4.8, "reviews": 120, "place_id": "abc"},
				{"title": "", "website": "https://unnamed.com"}
			]
		}`))
	}))
	defer server.Close()

	a := NewAdapter(&Config{APIKey: "test-key", BaseURL: server.URL, RateLimit: 100})

	candidates, err := a.Fetch(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotParams["engine"] != "google_maps" {
		t.Errorf("engine = %q, want google_maps", gotParams["engine"])
	}
	if gotParams["q"] != "Honolulu snorkeling" {
		t.Errorf("q = %q, want %q", gotParams["q"], "Honolulu snorkeling")
	}
	if gotParams["api_key"] != "test-key" {
		t.Errorf("api_key = %q, want test-key", gotParams["api_key"])
	}

	// Untitled results are dropped.
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	c := candidates[0]
	if c.Name != "Aloha Snorkel" {
		t.Errorf("name = %q", c.Name)
	}
	if c.SourceID != SourceID {
		t.Errorf("source ID = %q, want %q", c.SourceID, SourceID)
	}
	if c.Industry != "tourism" || c.Location != "Honolulu" {
		t.Errorf("query dimensions not carried: industry=%q location=%q", c.Industry, c.Location)
	}
	if c.Raw["place_id"] != "abc" {
		t.Errorf("raw place_id = %v", c.Raw["place_id"])
	}
}

func TestFetchUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error": "Invalid API key"}`))
	}))
	defer server.Close()

	a := NewAdapter(&Config{APIKey: "bad-key", BaseURL: server.URL, RateLimit: 100})

	_, err := a.Fetch(context.Background(), testQuery())
	if err == nil {
		t.Fatal("expected error from upstream error payload")
	}
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	a := NewAdapter(&Config{APIKey: "test-key", BaseURL: server.URL, RateLimit: 100})

	_, err := a.Fetch(context.Background(), testQuery())
	if err == nil {
		t.Fatal("expected error for HTTP 429")
	}
}

func TestFetchHonorsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	a := NewAdapter(&Config{APIKey: "test-key", BaseURL: server.URL, RateLimit: 100})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Fetch(ctx, testQuery())
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
}
