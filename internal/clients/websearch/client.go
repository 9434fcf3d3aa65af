// Package websearch provides a web search client backed by the
// DuckDuckGo HTML endpoint. No API key required.
package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/bobmcallan/finsight/internal/common"
	"github.com/bobmcallan/finsight/internal/interfaces"
	"github.com/bobmcallan/finsight/internal/models"
)

const (
	DefaultBaseURL = "https://html.duckduckgo.com/html/"
	maxResults     = 10
)

// Client implements the SearchClient interface by scraping the HTML
// results page.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL overrides the search endpoint
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new web search client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 20 * time.Second},
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Search runs a query and returns result snippets.
func (c *Client) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	reqURL := fmt.Sprintf("%s?q=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSearchUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", models.ErrSearchUnavailable, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	results := parseResults(doc)

	c.logger.Debug().
		Str("query", query).
		Int("count", len(results)).
		Msg("Web search complete")

	return results, nil
}

// parseResults extracts result entries from the results page DOM.
func parseResults(doc *goquery.Document) []models.SearchResult {
	var results []models.SearchResult

	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find("a.result__a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		snippet := strings.TrimSpace(sel.Find(".result__snippet").Text())

		if title == "" || href == "" {
			return true
		}

		results = append(results, models.SearchResult{
			Title:   title,
			URL:     cleanResultURL(href),
			Snippet: snippet,
		})

		return len(results) < maxResults
	})

	return results
}

// cleanResultURL unwraps the redirect URLs the HTML endpoint returns
// (//duckduckgo.com/l/?uddg=<encoded>).
func cleanResultURL(href string) string {
	if !strings.Contains(href, "uddg=") {
		return href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		if decoded, err := url.QueryUnescape(target); err == nil {
			return decoded
		}
	}
	return href
}

// Ensure Client implements SearchClient
var _ interfaces.SearchClient = (*Client)(nil)
