package monitoring

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/venture-watch/internal/collection"
	"github.com/sells-group/venture-watch/internal/model"
	"github.com/sells-group/venture-watch/internal/store"
)

// MetricsSnapshot holds a point-in-time view of collection health.
type MetricsSnapshot struct {
	// Run metrics (within lookback window).
	RunsTotal    int        `json:"runs_total"`
	RunsComplete int        `json:"runs_complete"`
	RunsFailed   int        `json:"runs_failed"`
	RunsRunning  int        `json:"runs_running"`
	FailRate     float64    `json:"fail_rate"`
	Added        int        `json:"added"`
	Updated      int        `json:"updated"`
	LastRunAt    *time.Time `json:"last_run_at,omitempty"`
	LastStatus   string     `json:"last_status,omitempty"`

	// SourceFailures counts, per source, the finished runs in which it
	// returned an error.
	SourceFailures map[string]int `json:"source_failures,omitempty"`

	Collection CollectionStatus `json:"collection"`

	// Metadata.
	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// CollectionStatus describes the collection file.
type CollectionStatus struct {
	Path       string     `json:"path"`
	Exists     bool       `json:"exists"`
	Records    int        `json:"records"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
	AgeHours   float64    `json:"age_hours"`
	Stale      bool       `json:"stale"`
	Error      string     `json:"error,omitempty"`
}

// Collector gathers metrics from run history and the collection file.
type Collector struct {
	store      store.Store
	path       string
	staleAfter time.Duration
	now        func() time.Time
}

// NewCollector creates a collector. The collection counts as stale when it
// was last written more than staleAfter ago; zero disables the check.
func NewCollector(st store.Store, collectionPath string, staleAfter time.Duration) *Collector {
	return &Collector{
		store:      st,
		path:       collectionPath,
		staleAfter: staleAfter,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Collect gathers a snapshot over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	now := c.now()
	snap := &MetricsSnapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   now,
	}

	if c.store != nil {
		if err := c.collectRuns(ctx, snap, now.Add(-time.Duration(lookbackHours)*time.Hour)); err != nil {
			return nil, err
		}
	}
	if c.path != "" {
		snap.Collection = c.collectionStatus(now)
	}
	return snap, nil
}

func (c *Collector) collectRuns(ctx context.Context, snap *MetricsSnapshot, cutoff time.Time) error {
	runs, err := c.store.ListRuns(ctx, store.RunFilter{
		Since: cutoff,
		Limit: 10000,
	})
	if err != nil {
		return eris.Wrap(err, "monitoring: list runs")
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	if len(runs) > 0 {
		last := runs[0].CreatedAt
		snap.LastRunAt = &last
		snap.LastStatus = string(runs[0].Status)
	}

	snap.RunsTotal = len(runs)
	for _, r := range runs {
		switch r.Status {
		case model.RunStatusComplete:
			snap.RunsComplete++
		case model.RunStatusFailed:
			snap.RunsFailed++
		case model.RunStatusRunning:
			snap.RunsRunning++
		}
		if r.Result == nil {
			continue
		}
		snap.Added += r.Result.Added
		snap.Updated += r.Result.Updated
		for _, s := range r.Result.Sources {
			if s.Error == "" {
				continue
			}
			if snap.SourceFailures == nil {
				snap.SourceFailures = make(map[string]int)
			}
			snap.SourceFailures[s.Name]++
		}
	}

	finished := snap.RunsComplete + snap.RunsFailed
	if finished > 0 {
		snap.FailRate = float64(snap.RunsFailed) / float64(finished)
	}
	return nil
}

func (c *Collector) collectionStatus(now time.Time) CollectionStatus {
	st := CollectionStatus{Path: c.path}

	info, err := os.Stat(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		st.Stale = c.staleAfter > 0
		return st
	}
	if err != nil {
		st.Error = err.Error()
		return st
	}

	st.Exists = true
	mod := info.ModTime().UTC()
	st.ModifiedAt = &mod
	age := now.Sub(mod)
	st.AgeHours = age.Hours()
	st.Stale = c.staleAfter > 0 && age > c.staleAfter

	recs, err := collection.New(c.path).Load()
	if err != nil {
		st.Error = err.Error()
		return st
	}
	st.Records = len(recs)
	return st
}
