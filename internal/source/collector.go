package source

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/venture-watch/internal/metrics"
	"github.com/sells-group/venture-watch/internal/model"
)

// Collector runs sources concurrently.
type Collector struct {
	sources       []Source
	maxConcurrent int
}

// NewCollector creates a collector running at most maxConcurrent sources at
// once.
func NewCollector(sources []Source, maxConcurrent int) *Collector {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Collector{sources: sources, maxConcurrent: maxConcurrent}
}

// Sources returns the collector's sources in order.
func (c *Collector) Sources() []Source {
	return c.sources
}

// Collect runs every source and returns one batch per source in source
// order. A failing source contributes an empty batch with Err set; the other
// sources are unaffected.
func (c *Collector) Collect(ctx context.Context, w Window) []Batch {
	batches := make([]Batch, len(c.sources))

	g := new(errgroup.Group)
	g.SetLimit(c.maxConcurrent)

	for i, src := range c.sources {
		g.Go(func() error {
			batches[i] = run(ctx, src, w)
			return nil
		})
	}
	_ = g.Wait()

	return batches
}

func run(ctx context.Context, src Source, w Window) Batch {
	log := zap.L().With(zap.String("source", src.Name()), zap.String("kind", string(src.Kind())))
	start := time.Now()

	recs, err := src.Collect(ctx, w)
	b := Batch{
		Source:   src.Name(),
		Kind:     src.Kind(),
		Duration: time.Since(start),
	}
	metrics.SourceDuration.WithLabelValues(b.Source).Observe(b.Duration.Seconds())

	if err != nil {
		metrics.SourceErrors.WithLabelValues(b.Source).Inc()
		log.Warn("source: collection failed", zap.Error(err), zap.Duration("elapsed", b.Duration))
		b.Err = err
		return b
	}

	b.Records = recs
	metrics.SourceRecords.WithLabelValues(b.Source).Add(float64(len(recs)))
	log.Info("source: collected", zap.Int("records", len(recs)), zap.Duration("elapsed", b.Duration))
	return b
}

// Records returns each batch's records in batch order, for deduplication.
func Records(batches []Batch) [][]model.Record {
	out := make([][]model.Record, len(batches))
	for i, b := range batches {
		out[i] = b.Records
	}
	return out
}

// Count returns the total number of records across batches.
func Count(batches []Batch) int {
	n := 0
	for _, b := range batches {
		n += len(b.Records)
	}
	return n
}
