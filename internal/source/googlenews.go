package source

import (
	"context"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/venture-watch/internal/extract"
	"github.com/sells-group/venture-watch/internal/fetcher"
	"github.com/sells-group/venture-watch/internal/model"
	"github.com/sells-group/venture-watch/internal/scrape"
)

// GoogleNews collects funding headlines from the Google News RSS search.
type GoogleNews struct {
	name    string
	label   string
	baseURL string
	query   string
	limit   int
	fetcher fetcher.Fetcher
}

// NewGoogleNews creates a Google News source. limit caps the feed items read;
// zero reads the whole feed.
func NewGoogleNews(name, label, baseURL, query string, limit int, f fetcher.Fetcher) *GoogleNews {
	if label == "" {
		label = "Google News"
	}
	return &GoogleNews{name: name, label: label, baseURL: baseURL, query: query, limit: limit, fetcher: f}
}

func (g *GoogleNews) Name() string { return g.name }
func (g *GoogleNews) Kind() Kind   { return KindAPI }

// FeedURL returns the RSS search URL for the window.
func (g *GoogleNews) FeedURL(w Window) string {
	q := g.query
	if w.DaysBack > 0 {
		q += " when:" + strconv.Itoa(w.DaysBack) + "d"
	}
	params := url.Values{
		"q":    {q},
		"hl":   {"en-US"},
		"gl":   {"US"},
		"ceid": {"US:en"},
	}
	return g.baseURL + "/rss/search?" + params.Encode()
}

// Collect reads the feed and keeps items whose headline names a funded
// company.
func (g *GoogleNews) Collect(ctx context.Context, w Window) ([]model.Record, error) {
	body, err := g.fetcher.Download(ctx, g.FeedURL(w))
	if err != nil {
		return nil, eris.Wrap(err, "source: googlenews download")
	}
	defer body.Close() //nolint:errcheck

	items, err := fetcher.ParseRSS(ctx, body, g.limit)
	if err != nil {
		return nil, eris.Wrap(err, "source: googlenews parse")
	}

	var out []model.Record
	for _, item := range items {
		title := extract.CleanHeadline(item.Title, item.Source.Name)
		if !extract.LooksLikeFunding(title) {
			continue
		}
		published := parseTime(item.PubDate)
		if !w.Contains(published) {
			continue
		}
		r := extract.FromText(scrape.PlainText(item.Description), title)
		if r.CompanyName == "" {
			continue
		}
		r.URL = item.Link
		r.Title = title
		r.Source = item.Source.Name
		if !published.IsZero() {
			r.PublishedDate = model.DateOf(published)
		}
		out = append(out, r)
	}
	stamp(out, g.label, w.Now)
	return out, nil
}
