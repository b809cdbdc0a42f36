package directory

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lenilani/leadscout/internal/domain"
)

func writeDump(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFetchFiltersListings(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "chamber.json", `[
		{"name": "Aloha Tours", "industry": "tourism", "location": "Honolulu", "phone": "808-555-0001"},
		{"name": "Maui Cafe", "industry": "restaurant", "location": "Maui"},
		{"name": "Sunset Luau Nights", "industry": "entertainment", "location": "Kona", "description": "the best luau on the island"},
		{"name": "", "industry": "tourism", "location": "Honolulu"}
	]`)

	a := NewAdapter(dir)
	query := domain.QueryCombination{Industry: "tourism", Location: "Honolulu", Keyword: "luau"}

	candidates, err := a.Fetch(context.Background(), query)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Aloha Tours matches industry+location; Sunset Luau Nights matches the
	// keyword; Maui Cafe matches neither; the unnamed listing is dropped.
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Name != "Aloha Tours" {
		t.Errorf("candidate 0 = %q, want Aloha Tours", candidates[0].Name)
	}
	if candidates[1].Name != "Sunset Luau Nights" {
		t.Errorf("candidate 1 = %q, want Sunset Luau Nights", candidates[1].Name)
	}
	if candidates[0].SourceID != SourceID {
		t.Errorf("source ID = %q, want %q", candidates[0].SourceID, SourceID)
	}
}

func TestFetchDeterministicAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "b.json", `[{"name": "Beta Tours", "industry": "tourism", "location": "Honolulu"}]`)
	writeDump(t, dir, "a.json", `[{"name": "Alpha Tours", "industry": "tourism", "location": "Honolulu"}]`)

	a := NewAdapter(dir)
	query := domain.QueryCombination{Industry: "tourism", Location: "Honolulu", Keyword: "tour"}

	candidates, err := a.Fetch(context.Background(), query)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	// Files load in sorted path order: a.json before b.json.
	if candidates[0].Name != "Alpha Tours" || candidates[1].Name != "Beta Tours" {
		t.Errorf("unexpected order: %q, %q", candidates[0].Name, candidates[1].Name)
	}
}

func TestFetchConcurrentCallsShareOneLoad(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "chamber.json", `[
		{"name": "Aloha Tours", "industry": "tourism", "location": "Honolulu"},
		{"name": "Kona Luau Co", "industry": "entertainment", "location": "Kona", "description": "luau shows"}
	]`)

	// The orchestrator fans out one goroutine per query, so a single adapter
	// sees parallel Fetch calls.
	a := NewAdapter(dir)
	query := domain.QueryCombination{Industry: "tourism", Location: "Honolulu", Keyword: "luau"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			candidates, err := a.Fetch(context.Background(), query)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if len(candidates) != 2 {
				t.Errorf("expected 2 candidates, got %d", len(candidates))
			}
		}()
	}
	wg.Wait()
}

func TestFetchMissingPath(t *testing.T) {
	a := NewAdapter("/nonexistent/path")
	_, err := a.Fetch(context.Background(), domain.QueryCombination{Industry: "tourism", Location: "Honolulu", Keyword: "tour"})
	if err == nil {
		t.Fatal("expected error for missing base path")
	}
}

func TestFetchMalformedDump(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "bad.json", `{not json`)

	a := NewAdapter(dir)
	_, err := a.Fetch(context.Background(), domain.QueryCombination{Industry: "tourism", Location: "Honolulu", Keyword: "tour"})
	if err == nil {
		t.Fatal("expected error for malformed dump")
	}
}
