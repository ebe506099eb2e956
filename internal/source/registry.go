package source

import (
	"errors"
	"io/fs"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Source types understood by Build.
const (
	TypeCrunchbase   = "crunchbase"
	TypeGoogleNews   = "googlenews"
	TypeCustomSearch = "customsearch"
	TypeSite         = "site"
)

// Entry configures one source in the registry file.
type Entry struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Enabled     *bool  `yaml:"enabled,omitempty"`
	Label       string `yaml:"label,omitempty"`
	Query       string `yaml:"query,omitempty"`
	Limit       int    `yaml:"limit,omitempty"`
	ListingURL  string `yaml:"listing_url,omitempty"`
	LinkPattern string `yaml:"link_pattern,omitempty"`
}

// IsEnabled reports whether the entry is on. Entries are on unless disabled
// explicitly.
func (e Entry) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

// Kind returns the kind of source the entry builds.
func (e Entry) Kind() Kind {
	switch e.Type {
	case TypeCustomSearch:
		return KindSearch
	case TypeSite:
		return KindScraper
	default:
		return KindAPI
	}
}

// Registry is the ordered list of configured sources. Collection results are
// reported in this order.
type Registry struct {
	Sources []Entry `yaml:"sources"`
}

// DefaultRegistry returns the built-in sources: the Crunchbase API, Google
// News, Google Custom Search and three venture news sites.
func DefaultRegistry() *Registry {
	return &Registry{Sources: []Entry{
		{Name: "crunchbase", Type: TypeCrunchbase, Label: "Crunchbase"},
		{Name: "googlenews", Type: TypeGoogleNews, Label: "Google News", Limit: 50},
		{Name: "customsearch", Type: TypeCustomSearch, Label: "Google Search", Limit: 20},
		{
			Name:        "techcrunch",
			Type:        TypeSite,
			Label:       "TechCrunch",
			ListingURL:  "https://techcrunch.com/category/venture/",
			LinkPattern: `^https://techcrunch\.com/\d{4}/\d{2}/\d{2}/`,
		},
		{
			Name:        "venturebeat",
			Type:        TypeSite,
			Label:       "VentureBeat",
			ListingURL:  "https://venturebeat.com/category/venture/",
			LinkPattern: `^https://venturebeat\.com/[a-z0-9-]+/[a-z0-9-]+/?$`,
		},
		{
			Name:        "crunchbase-news",
			Type:        TypeSite,
			Label:       "Crunchbase News",
			ListingURL:  "https://news.crunchbase.com/venture/",
			LinkPattern: `^https://news\.crunchbase\.com/[a-z0-9-]+/[a-z0-9-]+/?$`,
		},
	}}
}

// LoadRegistry reads the registry at path. A missing file yields the default
// registry.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultRegistry(), nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "source: read registry %s", path)
	}
	return ParseRegistry(data)
}

// ParseRegistry decodes and validates a YAML registry.
func ParseRegistry(data []byte) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, eris.Wrap(err, "source: parse registry")
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate checks that names are unique and every entry has a known type
// with the fields that type needs.
func (r *Registry) Validate() error {
	seen := make(map[string]bool, len(r.Sources))
	for i, e := range r.Sources {
		if e.Name == "" {
			return eris.Errorf("source: registry entry %d has no name", i)
		}
		if seen[e.Name] {
			return eris.Errorf("source: duplicate registry entry %q", e.Name)
		}
		seen[e.Name] = true
		switch e.Type {
		case TypeCrunchbase, TypeGoogleNews, TypeCustomSearch:
		case TypeSite:
			if e.ListingURL == "" {
				return eris.Errorf("source: site %q has no listing_url", e.Name)
			}
		default:
			return eris.Errorf("source: entry %q has unknown type %q", e.Name, e.Type)
		}
	}
	return nil
}

// Enabled returns the enabled entries in registry order. Scraper entries are
// included only when useScrapers is set.
func (r *Registry) Enabled(useScrapers bool) []Entry {
	var out []Entry
	for _, e := range r.Sources {
		if !e.IsEnabled() {
			continue
		}
		if e.Kind() == KindScraper && !useScrapers {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Marshal encodes the registry as YAML.
func (r *Registry) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, eris.Wrap(err, "source: marshal registry")
	}
	return data, nil
}
