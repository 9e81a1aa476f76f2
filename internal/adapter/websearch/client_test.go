package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearch_SendsAuthAndParsesResults(t *testing.T) {
	var gotAuth string
	var gotReq map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Guide", "url": "https://example.com/guide", "content": "summary", "raw_content": "full page text"},
				{"title": "Short", "url": "https://example.com/short", "content": "only snippet"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-key", 5, 100, server.Client())
	results, err := client.Search(context.Background(), "course design basics")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if gotAuth != "Bearer secret-key" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotReq["query"] != "course design basics" {
		t.Fatalf("unexpected query: %v", gotReq["query"])
	}
	if gotReq["max_results"] != float64(5) {
		t.Fatalf("unexpected max_results: %v", gotReq["max_results"])
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// raw_content wins when present, content is the fallback.
	if results[0].Content != "full page text" {
		t.Fatalf("expected raw content, got %q", results[0].Content)
	}
	if results[1].Content != "only snippet" {
		t.Fatalf("expected snippet fallback, got %q", results[1].Content)
	}
}

func TestSearch_CoercesNonStringContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Some providers return a list of snippets where others return a
		// plain string for the same field.
		_, _ = w.Write([]byte(`{"results":[
			{"title":"List", "url":"https://example.com/list", "content":["snippet one","snippet two"]},
			{"title":"Mixed", "url":"https://example.com/mixed", "raw_content":{"text":"nested"}},
			{"title":"Null", "url":"https://example.com/null", "content":null, "raw_content":"real text"}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", 5, 100, server.Client())
	results, err := client.Search(context.Background(), "query")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if results[0].Content != "snippet one\n\nsnippet two" {
		t.Fatalf("expected joined snippets, got %q", results[0].Content)
	}
	if results[1].Content == "" {
		t.Fatalf("expected stringified object content, got empty")
	}
	if results[2].Content != "real text" {
		t.Fatalf("expected raw_content with null content, got %q", results[2].Content)
	}
}

func TestSearch_BadStatusReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "key", 5, 100, server.Client())
	if _, err := client.Search(context.Background(), "query"); err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestSearch_CancelledContextAbortsRateWait(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []map[string]any{}})
	}))
	defer server.Close()

	// Burst of one at a very low rate: the second call must wait, and a
	// cancelled context aborts that wait.
	client := NewClient(server.URL, "key", 5, 0.001, server.Client())

	if _, err := client.Search(context.Background(), "first"); err != nil {
		t.Fatalf("first Search failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Search(ctx, "second"); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
