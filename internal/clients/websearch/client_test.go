package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const resultsPage = `<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fnews">Acme FY2024 results</a>
  <div class="result__snippet">Acme Corp reported revenue growth of 12%.</div>
</div>
<div class="result">
  <a class="result__a" href="https://other.example.com/article">Competitor update</a>
  <div class="result__snippet">Rival posts flat quarter.</div>
</div>
<div class="result">
  <a class="result__a" href=""></a>
</div>
</body></html>`

func TestSearch_ParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "" {
			t.Error("expected query parameter q")
		}
		fmt.Fprint(w, resultsPage)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithTimeout(5*time.Second))

	results, err := client.Search(context.Background(), "acme corp news")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	if results[0].Title != "Acme FY2024 results" {
		t.Errorf("first title = %q", results[0].Title)
	}
	if results[0].URL != "https://example.com/news" {
		t.Errorf("redirect URL not unwrapped: %q", results[0].URL)
	}
	if results[1].URL != "https://other.example.com/article" {
		t.Errorf("plain URL altered: %q", results[1].URL)
	}
}

func TestSearch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))

	if _, err := client.Search(context.Background(), "anything"); err == nil {
		t.Error("expected error on 503 response")
	}
}

func TestCleanResultURL_PassThrough(t *testing.T) {
	href := "https://example.com/page"
	if got := cleanResultURL(href); got != href {
		t.Errorf("cleanResultURL(%q) = %q", href, got)
	}
}
