package source

import (
	"context"
	"regexp"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/venture-watch/internal/extract"
	"github.com/sells-group/venture-watch/internal/model"
	"github.com/sells-group/venture-watch/internal/scrape"
)

// Site scrapes a news site's venture listing page and the funding articles
// it links to.
type Site struct {
	name          string
	label         string
	listingURL    string
	linkPattern   *regexp.Regexp
	chain         *scrape.Chain
	maxArticles   int
	maxConcurrent int
}

// SiteConfig describes a scraped news site.
type SiteConfig struct {
	Name          string
	Label         string
	ListingURL    string
	LinkPattern   string
	MaxArticles   int
	MaxConcurrent int
}

// NewSite creates a site scraper. An empty LinkPattern accepts every link.
func NewSite(cfg SiteConfig, chain *scrape.Chain) (*Site, error) {
	if cfg.ListingURL == "" {
		return nil, eris.Errorf("source: site %s has no listing_url", cfg.Name)
	}
	pattern := cfg.LinkPattern
	if pattern == "" {
		pattern = ".*"
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, eris.Wrapf(err, "source: site %s link_pattern", cfg.Name)
	}
	if cfg.MaxArticles <= 0 {
		cfg.MaxArticles = 20
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 3
	}
	label := cfg.Label
	if label == "" {
		label = cfg.Name
	}
	return &Site{
		name:          cfg.Name,
		label:         label,
		listingURL:    cfg.ListingURL,
		linkPattern:   re,
		chain:         chain,
		maxArticles:   cfg.MaxArticles,
		maxConcurrent: cfg.MaxConcurrent,
	}, nil
}

func (s *Site) Name() string { return s.name }
func (s *Site) Kind() Kind   { return KindScraper }

// Collect fetches the listing page, follows links whose anchor text reads
// like a funding announcement, and keeps articles that yield both a company
// name and an amount.
func (s *Site) Collect(ctx context.Context, w Window) ([]model.Record, error) {
	listing, err := s.chain.Scrape(ctx, s.listingURL)
	if err != nil {
		return nil, eris.Wrapf(err, "source: %s listing", s.name)
	}

	headlines := s.articleLinks(listing.Page.Links)
	urls := make([]string, 0, len(headlines))
	for _, l := range headlines {
		urls = append(urls, l.URL)
	}
	zap.L().Debug("source: site articles selected",
		zap.String("source", s.name),
		zap.Int("links", len(listing.Page.Links)),
		zap.Int("articles", len(urls)),
	)

	byURL := make(map[string]string, len(headlines))
	for _, l := range headlines {
		byURL[l.URL] = l.Text
	}

	var out []model.Record
	for _, page := range s.chain.ScrapeAll(ctx, urls, s.maxConcurrent) {
		title := byURL[page.URL]
		if title == "" {
			title = page.Title
		}
		published := parseTime(page.PublishedAt)
		if !w.Contains(published) {
			continue
		}
		r := extract.FromText(page.Text, title)
		if r.CompanyName == "" || r.FundingAmount == nil {
			continue
		}
		r.URL = page.URL
		r.Title = title
		if published.IsZero() {
			published = w.Now
		}
		r.PublishedDate = model.DateOf(published)
		out = append(out, r)
	}
	stamp(out, s.label, w.Now)
	return out, nil
}

// articleLinks returns distinct funding-article links in page order, capped
// at maxArticles.
func (s *Site) articleLinks(links []scrape.Link) []scrape.Link {
	seen := make(map[string]bool)
	var out []scrape.Link
	for _, l := range links {
		if seen[l.URL] || l.URL == s.listingURL {
			continue
		}
		if !s.linkPattern.MatchString(l.URL) || !extract.LooksLikeFunding(l.Text) {
			continue
		}
		seen[l.URL] = true
		out = append(out, l)
		if len(out) == s.maxArticles {
			break
		}
	}
	return out
}
