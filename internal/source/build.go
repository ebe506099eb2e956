package source

import (
	"go.uber.org/zap"

	"github.com/sells-group/venture-watch/internal/fetcher"
	"github.com/sells-group/venture-watch/internal/scrape"
	"github.com/sells-group/venture-watch/pkg/crunchbase"
	"github.com/sells-group/venture-watch/pkg/google"
)

// Deps holds the clients sources are built from. A nil client disables the
// sources that need it.
type Deps struct {
	Crunchbase crunchbase.Client
	Google     google.Client
	Fetcher    fetcher.Fetcher
	Chain      *scrape.Chain

	GoogleNewsURL     string
	GoogleNewsQuery   string
	CustomSearchQuery string
	CrunchbaseLimit   int
	MaxArticles       int
	MaxConcurrent     int
}

// Build creates sources for entries, in order. Entries whose client is not
// configured are skipped with a warning; an invalid site entry is an error.
func Build(entries []Entry, deps Deps) ([]Source, error) {
	var out []Source
	for _, e := range entries {
		switch e.Type {
		case TypeCrunchbase:
			if deps.Crunchbase == nil {
				skipped(e, "crunchbase key not configured")
				continue
			}
			out = append(out, NewCrunchbase(e.Name, e.Label, deps.Crunchbase, firstPositive(e.Limit, deps.CrunchbaseLimit)))
		case TypeGoogleNews:
			if deps.Fetcher == nil {
				skipped(e, "no fetcher")
				continue
			}
			out = append(out, NewGoogleNews(e.Name, e.Label, deps.GoogleNewsURL, firstNonEmpty(e.Query, deps.GoogleNewsQuery), e.Limit, deps.Fetcher))
		case TypeCustomSearch:
			if deps.Google == nil {
				skipped(e, "google api key or cse id not configured")
				continue
			}
			out = append(out, NewCustomSearch(e.Name, e.Label, firstNonEmpty(e.Query, deps.CustomSearchQuery), e.Limit, deps.Google))
		case TypeSite:
			if deps.Chain == nil {
				skipped(e, "no scrape chain")
				continue
			}
			s, err := NewSite(SiteConfig{
				Name:          e.Name,
				Label:         e.Label,
				ListingURL:    e.ListingURL,
				LinkPattern:   e.LinkPattern,
				MaxArticles:   firstPositive(e.Limit, deps.MaxArticles),
				MaxConcurrent: deps.MaxConcurrent,
			}, deps.Chain)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		default:
			skipped(e, "unknown type")
		}
	}
	return out, nil
}

func skipped(e Entry, reason string) {
	zap.L().Warn("source: skipping source",
		zap.String("source", e.Name),
		zap.String("reason", reason),
	)
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
