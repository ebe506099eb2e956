package source

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/venture-watch/internal/extract"
	"github.com/sells-group/venture-watch/internal/model"
	"github.com/sells-group/venture-watch/pkg/google"
)

// maxSearchPages bounds paging; Custom Search serves at most 100 results.
const maxSearchPages = 10

// CustomSearch collects funding announcements from Google Custom Search
// results.
type CustomSearch struct {
	name   string
	label  string
	query  string
	limit  int
	client google.Client
}

// NewCustomSearch creates a Custom Search source reading up to limit hits.
func NewCustomSearch(name, label, query string, limit int, client google.Client) *CustomSearch {
	if label == "" {
		label = "Google Search"
	}
	if limit <= 0 {
		limit = 10
	}
	return &CustomSearch{name: name, label: label, query: query, limit: limit, client: client}
}

func (c *CustomSearch) Name() string { return c.name }
func (c *CustomSearch) Kind() Kind   { return KindSearch }

// Collect pages through the results until limit hits have been read.
func (c *CustomSearch) Collect(ctx context.Context, w Window) ([]model.Record, error) {
	var out []model.Record
	start, seen := 1, 0
	for page := 0; page < maxSearchPages && seen < c.limit; page++ {
		resp, err := c.client.Search(ctx, google.SearchRequest{
			Query:    c.query,
			DaysBack: w.DaysBack,
			Num:      min(10, c.limit-seen),
			Start:    start,
		})
		if err != nil {
			if len(out) > 0 {
				// Keep what earlier pages produced.
				break
			}
			return nil, eris.Wrap(err, "source: customsearch")
		}
		for _, item := range resp.Items {
			seen++
			if r, ok := searchRecord(item); ok {
				out = append(out, r)
			}
		}
		start = resp.NextStart()
		if start == 0 || len(resp.Items) == 0 {
			break
		}
	}
	stamp(out, c.label, w.Now)
	return out, nil
}

func searchRecord(item google.Item) (model.Record, bool) {
	title := extract.CleanHeadline(item.Title, "")
	if !extract.LooksLikeFunding(title + " " + item.Snippet) {
		return model.Record{}, false
	}
	r := extract.FromText(item.Snippet, title)
	if r.CompanyName == "" {
		return model.Record{}, false
	}
	r.URL = item.Link
	r.Title = title
	if t := parseTime(item.PublishedTime()); !t.IsZero() {
		r.PublishedDate = model.DateOf(t)
	}
	return r, true
}
