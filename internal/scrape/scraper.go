package scrape

import (
	"context"
)

// Link is an anchor found on a page, resolved to an absolute URL.
type Link struct {
	URL  string
	Text string
}

// Page is the readable content of one fetched URL.
type Page struct {
	URL         string
	Title       string
	Text        string
	Links       []Link
	PublishedAt string // raw timestamp from page metadata, if any
	StatusCode  int
}

// Result holds a scraped page with the scraper that produced it.
type Result struct {
	Page   Page
	Source string // e.g. "local_http", "jina"
}

// Scraper fetches a single URL and returns its content.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Result, error)
	Name() string
	Supports(url string) bool
}
