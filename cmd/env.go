package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/venture-watch/internal/archive"
	"github.com/sells-group/venture-watch/internal/collection"
	"github.com/sells-group/venture-watch/internal/enrich"
	"github.com/sells-group/venture-watch/internal/fetcher"
	"github.com/sells-group/venture-watch/internal/monitoring"
	"github.com/sells-group/venture-watch/internal/pipeline"
	"github.com/sells-group/venture-watch/internal/publish"
	"github.com/sells-group/venture-watch/internal/scrape"
	"github.com/sells-group/venture-watch/internal/source"
	"github.com/sells-group/venture-watch/internal/store"
	anthropicpkg "github.com/sells-group/venture-watch/pkg/anthropic"
	"github.com/sells-group/venture-watch/pkg/crunchbase"
	"github.com/sells-group/venture-watch/pkg/google"
	"github.com/sells-group/venture-watch/pkg/jina"
	"github.com/sells-group/venture-watch/pkg/notion"
)

// initStore opens and migrates the run store.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initCollection opens the collection file, attaching the S3 archiver when
// archiving is on.
func initCollection(ctx context.Context) (*collection.Store, error) {
	opts := []collection.Option{
		collection.WithLockTimeout(time.Duration(cfg.Collection.LockTimeoutSecs) * time.Second),
	}
	if cfg.Collection.Archive {
		a, err := archive.New(ctx, cfg.S3)
		if err != nil {
			return nil, eris.Wrap(err, "init archiver")
		}
		opts = append(opts, collection.WithArchiver(a))
		zap.L().Info("collection snapshots enabled", zap.String("bucket", cfg.S3.Bucket))
	}
	return collection.New(cfg.Collection.Path, opts...), nil
}

// sourceDeps builds the clients sources need. Clients whose credentials are
// missing stay nil, which disables their sources.
func sourceDeps() source.Deps {
	deps := source.Deps{
		Fetcher:           fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}),
		GoogleNewsURL:     cfg.GoogleNews.BaseURL,
		GoogleNewsQuery:   cfg.GoogleNews.Query,
		CustomSearchQuery: cfg.Google.Query,
		CrunchbaseLimit:   cfg.Crunchbase.Limit,
		MaxArticles:       cfg.Sources.MaxArticles,
		MaxConcurrent:     cfg.Sources.MaxConcurrent,
	}

	if cfg.Crunchbase.Key != "" {
		deps.Crunchbase = crunchbase.NewClient(cfg.Crunchbase.Key, crunchbase.WithBaseURL(cfg.Crunchbase.BaseURL))
	} else {
		zap.L().Debug("VENTURE_CRUNCHBASE_KEY not set, Crunchbase source disabled")
	}
	if cfg.Google.Key != "" && cfg.Google.CSEID != "" {
		deps.Google = google.NewClient(cfg.Google.Key, cfg.Google.CSEID, google.WithBaseURL(cfg.Google.BaseURL))
	} else {
		zap.L().Debug("google custom search not configured, search source disabled")
	}

	// Build scrape chain: local HTTP primary, Jina reader fallback.
	jinaClient := jina.NewClient(cfg.Jina.Key, jina.WithBaseURL(cfg.Jina.BaseURL))
	deps.Chain = scrape.NewChain(scrape.NewPathMatcher(nil),
		scrape.NewLocalScraper(&http.Client{Timeout: 30 * time.Second}),
		scrape.NewJinaAdapter(jinaClient),
	)
	return deps
}

// initSources builds the enabled sources from the registry.
func initSources(useScrapers bool) ([]source.Source, error) {
	reg, err := source.LoadRegistry(cfg.Sources.RegistryPath)
	if err != nil {
		return nil, err
	}
	sources, err := source.Build(reg.Enabled(useScrapers), sourceDeps())
	if err != nil {
		return nil, eris.Wrap(err, "build sources")
	}
	if len(sources) == 0 {
		return nil, eris.New("no sources configured")
	}
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name()
	}
	zap.L().Info("sources ready", zap.Strings("sources", names))
	return sources, nil
}

// initEnricher returns nil when no Anthropic key is configured.
func initEnricher() *enrich.Enricher {
	if cfg.Anthropic.Key == "" {
		return nil
	}
	return enrich.New(anthropicpkg.NewClient(cfg.Anthropic.Key), enrich.Options{
		Model:         cfg.Anthropic.Model,
		MaxTokens:     cfg.Anthropic.MaxTokens,
		MaxConcurrent: cfg.Anthropic.MaxConcurrent,
	})
}

// initPublisher returns nil when Notion is not configured.
func initPublisher() *publish.Publisher {
	if cfg.Notion.Token == "" || cfg.Notion.DatabaseID == "" {
		return nil
	}
	return publish.New(notion.NewClient(cfg.Notion.Token), cfg.Notion.DatabaseID, 0)
}

// initStatus builds the monitoring collector over the run store and
// collection file.
func initStatus(st store.Store) *monitoring.Collector {
	stale := time.Duration(cfg.Monitoring.StaleAfterHours) * time.Hour
	return monitoring.NewCollector(st, cfg.Collection.Path, stale)
}

// cycleEnv holds what a collection cycle needs.
type cycleEnv struct {
	Store      store.Store
	Collection *collection.Store
	Cycle      *pipeline.Cycle
}

// Close releases the run store.
func (e *cycleEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

type cycleOptions struct {
	collect bool // build sources; Ingest-only callers skip them
	publish bool
	enrich  bool
	enrichN int
}

// initCycle wires the run store, collection, sources and optional
// publisher and enricher into a cycle. Callers should defer env.Close().
func initCycle(ctx context.Context, mode string, o cycleOptions) (*cycleEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	coll, err := initCollection(ctx)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	var sources []source.Source
	if o.collect {
		sources, err = initSources(cfg.Sources.UseScrapers)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
	}

	opts := []pipeline.Option{
		pipeline.WithRunStore(st),
		pipeline.WithDaysBack(cfg.Sources.DaysBack),
	}
	if o.publish {
		if p := initPublisher(); p != nil {
			opts = append(opts, pipeline.WithPublisher(p))
		} else {
			zap.L().Warn("notion not configured, new entries will not be published")
		}
	}
	if o.enrich {
		if e := initEnricher(); e != nil {
			opts = append(opts, pipeline.WithEnricher(e, o.enrichN))
		} else {
			zap.L().Warn("VENTURE_ANTHROPIC_KEY not set, skipping enrichment")
		}
	}

	collector := source.NewCollector(sources, cfg.Sources.MaxConcurrent)
	return &cycleEnv{
		Store:      st,
		Collection: coll,
		Cycle:      pipeline.New(collector, coll, opts...),
	}, nil
}
