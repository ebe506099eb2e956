package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/venture-watch/internal/metrics"
	"github.com/sells-group/venture-watch/internal/model"
	"github.com/sells-group/venture-watch/internal/scrape"
	"github.com/sells-group/venture-watch/pkg/crunchbase/mocks"
)

type funcSource struct {
	name    string
	kind    Kind
	collect func(ctx context.Context, w Window) ([]model.Record, error)
}

func (f funcSource) Name() string { return f.name }
func (f funcSource) Kind() Kind   { return f.kind }
func (f funcSource) Collect(ctx context.Context, w Window) ([]model.Record, error) {
	return f.collect(ctx, w)
}

func staticSource(name string, delay time.Duration, recs ...model.Record) funcSource {
	return funcSource{name: name, kind: KindAPI, collect: func(context.Context, Window) ([]model.Record, error) {
		time.Sleep(delay)
		return recs, nil
	}}
}

func TestCollector_PreservesSourceOrder(t *testing.T) {
	a := model.Record{CompanyName: "A", URL: "u1"}
	b := model.Record{CompanyName: "B", URL: "u2"}
	failing := funcSource{name: "broken", kind: KindScraper, collect: func(context.Context, Window) ([]model.Record, error) {
		return nil, errors.New("listing blocked")
	}}
	before := testutil.ToFloat64(metrics.SourceErrors.WithLabelValues("broken"))

	c := NewCollector([]Source{
		staticSource("slow", 30*time.Millisecond, a),
		failing,
		staticSource("fast", 0, b, a),
	}, 3)

	batches := c.Collect(context.Background(), Window{DaysBack: 7, Now: testNow})
	require.Len(t, batches, 3)

	assert.Equal(t, "slow", batches[0].Source)
	assert.Equal(t, []model.Record{a}, batches[0].Records)
	assert.NoError(t, batches[0].Err)
	assert.GreaterOrEqual(t, batches[0].Duration, 30*time.Millisecond)

	assert.Equal(t, "broken", batches[1].Source)
	assert.Equal(t, KindScraper, batches[1].Kind)
	assert.Error(t, batches[1].Err)
	assert.Empty(t, batches[1].Records)

	assert.Equal(t, "fast", batches[2].Source)
	assert.Equal(t, [][]model.Record{{a}, nil, {b, a}}, Records(batches))
	assert.Equal(t, 3, Count(batches))

	assert.InDelta(t, before+1, testutil.ToFloat64(metrics.SourceErrors.WithLabelValues("broken")), 0)
}

func TestCollector_Empty(t *testing.T) {
	c := NewCollector(nil, 0)
	assert.Empty(t, c.Collect(context.Background(), Window{}))
	assert.Empty(t, c.Sources())
}

func TestBuild(t *testing.T) {
	reg := DefaultRegistry()

	srcs, err := Build(reg.Enabled(true), Deps{
		Crunchbase:    mocks.NewMockClient(t),
		Fetcher:       &fakeFetcher{},
		Chain:         scrape.NewChain(nil),
		GoogleNewsURL: "https://news.google.com",
	})
	require.NoError(t, err)

	var names []string
	for _, s := range srcs {
		names = append(names, s.Name())
	}
	// customsearch is skipped without a Google client.
	assert.Equal(t, []string{"crunchbase", "googlenews", "techcrunch", "venturebeat", "crunchbase-news"}, names)

	srcs, err = Build(reg.Enabled(true), Deps{})
	require.NoError(t, err)
	assert.Empty(t, srcs)
}

func TestBuild_InvalidSite(t *testing.T) {
	_, err := Build([]Entry{{Name: "bad", Type: TypeSite, ListingURL: "https://x.example", LinkPattern: "("}}, Deps{Chain: scrape.NewChain(nil)})
	assert.Error(t, err)
}

func TestWindow(t *testing.T) {
	w := Window{DaysBack: 7, Now: testNow}
	assert.Equal(t, testNow.AddDate(0, 0, -7), w.Since())
	assert.True(t, w.Contains(time.Time{}))
	assert.True(t, w.Contains(testNow.AddDate(0, 0, -7)))
	assert.False(t, w.Contains(testNow.AddDate(0, 0, -8)))
	assert.True(t, Window{Now: testNow}.Contains(testNow.AddDate(-1, 0, 0)))
}

func TestParseTime(t *testing.T) {
	assert.Equal(t, 2026, parseTime("Mon, 02 Mar 2026 14:00:00 GMT").Year())
	assert.Equal(t, 2, parseTime("2026-03-02T14:00:00+01:00").Day())
	assert.Equal(t, 2, parseTime("2026-03-02").Day())
	assert.True(t, parseTime("yesterday").IsZero())
}
