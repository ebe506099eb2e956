// Package source collects candidate funding records from APIs, search
// engines and news sites.
package source

import (
	"context"
	"time"

	"github.com/sells-group/venture-watch/internal/model"
)

// Kind groups sources by how they obtain data.
type Kind string

const (
	KindAPI     Kind = "api"
	KindSearch  Kind = "search"
	KindScraper Kind = "scraper"
)

// Window bounds a collection to announcements in the DaysBack days before Now.
type Window struct {
	DaysBack int
	Now      time.Time
}

// Since returns the start of the window.
func (w Window) Since() time.Time {
	return w.Now.AddDate(0, 0, -w.DaysBack)
}

// Contains reports whether t falls inside the window. A zero t is treated as
// inside because many feeds omit dates.
func (w Window) Contains(t time.Time) bool {
	if t.IsZero() || w.DaysBack <= 0 {
		return true
	}
	return !t.Before(w.Since())
}

// Source produces candidate records for a window.
type Source interface {
	Name() string
	Kind() Kind
	Collect(ctx context.Context, w Window) ([]model.Record, error)
}

// Batch is one source's contribution to a collection cycle.
type Batch struct {
	Source   string
	Kind     Kind
	Records  []model.Record
	Err      error
	Duration time.Duration
}

// stamp fills the discovery date and the source label on records that lack
// them.
func stamp(recs []model.Record, label string, now time.Time) {
	today := model.DateOf(now)
	for i := range recs {
		if recs[i].Source == "" {
			recs[i].Source = label
		}
		if recs[i].DiscoveryDate.IsZero() {
			recs[i].DiscoveryDate = today
		}
	}
}

// parseTime parses the timestamp layouts feeds and pages use. The zero time
// is returned when s matches none of them.
func parseTime(s string) time.Time {
	for _, layout := range []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC3339,
		"2006-01-02T15:04:05-0700",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
