// Package pipeline runs collection cycles: collect from every source, fold
// the candidates into the collection, then publish and enrich what changed.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/venture-watch/internal/collection"
	"github.com/sells-group/venture-watch/internal/enrich"
	"github.com/sells-group/venture-watch/internal/metrics"
	"github.com/sells-group/venture-watch/internal/model"
	"github.com/sells-group/venture-watch/internal/publish"
	"github.com/sells-group/venture-watch/internal/reconcile"
	"github.com/sells-group/venture-watch/internal/source"
	"github.com/sells-group/venture-watch/internal/store"
)

// Collection is the persisted collection a cycle updates.
type Collection interface {
	Read() []model.Record
	Update(ctx context.Context, batch []model.Record) *collection.UpdateResult
}

// Publisher mirrors newly added records elsewhere.
type Publisher interface {
	Publish(ctx context.Context, records []model.Record) (*publish.Result, error)
}

// Enricher fills analysis fields on collection records.
type Enricher interface {
	EnrichCollection(ctx context.Context, coll enrich.Collection, limit int) (*enrich.Result, *collection.UpdateResult)
}

// Cycle runs collection cycles against one collection.
type Cycle struct {
	collector   *source.Collector
	collection  Collection
	runs        store.Store
	publisher   Publisher
	enricher    Enricher
	enrichLimit int
	daysBack    int
	now         func() time.Time
}

// Option configures a Cycle.
type Option func(*Cycle)

// WithRunStore records each cycle in st.
func WithRunStore(st store.Store) Option {
	return func(c *Cycle) { c.runs = st }
}

// WithPublisher publishes records added by each cycle.
func WithPublisher(p Publisher) Option {
	return func(c *Cycle) { c.publisher = p }
}

// WithEnricher enriches up to limit records after each cycle. A limit of 0
// enriches every record that needs it.
func WithEnricher(e Enricher, limit int) Option {
	return func(c *Cycle) {
		c.enricher = e
		c.enrichLimit = limit
	}
}

// WithDaysBack sets the collection window.
func WithDaysBack(days int) Option {
	return func(c *Cycle) { c.daysBack = days }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cycle) { c.now = now }
}

// New creates a cycle over the collector and collection.
func New(collector *source.Collector, coll Collection, opts ...Option) *Cycle {
	c := &Cycle{
		collector:  collector,
		collection: coll,
		daysBack:   7,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Run collects from every source and folds the result into the collection.
func (c *Cycle) Run(ctx context.Context, trigger model.Trigger) (*model.RunResult, error) {
	return c.execute(ctx, trigger, func(ctx context.Context) []source.Batch {
		return c.collector.Collect(ctx, source.Window{DaysBack: c.daysBack, Now: c.now()})
	})
}

// Ingest folds an already collected set of records into the collection as
// a single batch labelled name.
func (c *Cycle) Ingest(ctx context.Context, trigger model.Trigger, name string, records []model.Record) (*model.RunResult, error) {
	return c.execute(ctx, trigger, func(context.Context) []source.Batch {
		return []source.Batch{{Source: name, Records: records}}
	})
}

func (c *Cycle) execute(ctx context.Context, trigger model.Trigger, gather func(context.Context) []source.Batch) (*model.RunResult, error) {
	log := zap.L().With(zap.String("trigger", string(trigger)))
	start := time.Now()

	runID := ""
	if c.runs != nil {
		run, err := c.runs.CreateRun(ctx, trigger)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: create run")
		}
		runID = run.ID
		log = log.With(zap.String("run_id", runID))
	}
	log.Info("pipeline: cycle started")

	batches := gather(ctx)
	result := &model.RunResult{
		Sources:   SourceResults(batches),
		Collected: source.Count(batches),
	}

	if err := ctx.Err(); err != nil {
		return result, c.fail(ctx, runID, result, eris.Wrap(err, "pipeline: cancelled after collection"))
	}

	batch := make([]model.Record, 0, result.Collected)
	for _, b := range batches {
		batch = append(batch, b.Records...)
	}
	result.Unique = len(reconcile.Deduplicate(batch))

	// Update deduplicates again and counts unidentifiable records as dropped.
	upd := c.collection.Update(ctx, batch)
	result.Added = upd.Added
	result.Updated = upd.Updated
	result.Dropped = upd.Dropped
	result.Total = len(upd.Records)
	result.Persisted = upd.Persisted
	if !upd.Persisted {
		return result, c.fail(ctx, runID, result, eris.Wrap(upd.PersistErr, "pipeline: persist collection"))
	}

	if c.publisher != nil && len(upd.AddedRecords) > 0 {
		pub, err := c.publisher.Publish(ctx, upd.AddedRecords)
		if pub != nil {
			result.Published = pub.Created
		}
		if err != nil {
			log.Warn("pipeline: publish interrupted", zap.Error(err))
		}
	}

	if c.enricher != nil {
		res, _ := c.enricher.EnrichCollection(ctx, c.collection, c.enrichLimit)
		if res != nil {
			result.Enriched = len(res.Records)
		}
	}

	if c.runs != nil {
		if err := c.runs.CompleteRun(ctx, runID, result); err != nil {
			log.Warn("pipeline: failed to record completion", zap.Error(err))
		}
	}
	metrics.Runs.WithLabelValues(string(model.RunStatusComplete)).Inc()

	log.Info("pipeline: cycle complete",
		zap.Int("collected", result.Collected),
		zap.Int("unique", result.Unique),
		zap.Int("added", result.Added),
		zap.Int("updated", result.Updated),
		zap.Int("total", result.Total),
		zap.Int("published", result.Published),
		zap.Int("enriched", result.Enriched),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// fail records a failed run and returns runErr.
func (c *Cycle) fail(ctx context.Context, runID string, result *model.RunResult, runErr error) error {
	metrics.Runs.WithLabelValues(string(model.RunStatusFailed)).Inc()
	zap.L().Error("pipeline: cycle failed", zap.String("run_id", runID), zap.Error(runErr))
	if c.runs != nil {
		// The cycle context may be the reason for the failure.
		if err := c.runs.FailRun(context.WithoutCancel(ctx), runID, result, runErr); err != nil {
			zap.L().Warn("pipeline: failed to record failure", zap.Error(err))
		}
	}
	return runErr
}

// SourceResults summarizes batches for the run record.
func SourceResults(batches []source.Batch) []model.SourceResult {
	out := make([]model.SourceResult, len(batches))
	for i, b := range batches {
		out[i] = model.SourceResult{
			Name:       b.Source,
			Records:    len(b.Records),
			DurationMS: b.Duration.Milliseconds(),
		}
		if b.Err != nil {
			out[i].Error = b.Err.Error()
		}
	}
	return out
}
