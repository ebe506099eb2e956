package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/venture-watch/internal/collection"
	"github.com/sells-group/venture-watch/internal/enrich"
	"github.com/sells-group/venture-watch/internal/model"
	"github.com/sells-group/venture-watch/internal/publish"
	"github.com/sells-group/venture-watch/internal/source"
	storemocks "github.com/sells-group/venture-watch/internal/store/mocks"
)

var cycleNow = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

type staticSource struct {
	name string
	recs []model.Record
	err  error
}

func (s staticSource) Name() string      { return s.name }
func (s staticSource) Kind() source.Kind { return source.KindAPI }
func (s staticSource) Collect(context.Context, source.Window) ([]model.Record, error) {
	return s.recs, s.err
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, records []model.Record) (*publish.Result, error) {
	args := m.Called(ctx, records)
	res, _ := args.Get(0).(*publish.Result)
	return res, args.Error(1)
}

type mockEnricher struct {
	mock.Mock
}

func (m *mockEnricher) EnrichCollection(ctx context.Context, coll enrich.Collection, limit int) (*enrich.Result, *collection.UpdateResult) {
	args := m.Called(ctx, coll, limit)
	res, _ := args.Get(0).(*enrich.Result)
	upd, _ := args.Get(1).(*collection.UpdateResult)
	return res, upd
}

func newStore(t *testing.T, seed string) *collection.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "startups.json")
	if seed != "" {
		require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))
	}
	return collection.New(path, collection.WithClock(func() time.Time { return cycleNow }))
}

func TestCycle_Run(t *testing.T) {
	coll := newStore(t, `[{"company_name":"Acme","url":"u1"}]`)

	collector := source.NewCollector([]source.Source{
		staticSource{name: "crunchbase", recs: []model.Record{
			{CompanyName: "Acme", URL: "u1", Industry: "AI"},
			{CompanyName: "Zed", URL: "u2"},
		}},
		staticSource{name: "techcrunch", recs: []model.Record{
			{CompanyName: "Zed", URL: "u2", Location: "Austin"},
			{CompanyName: "NoURL"},
		}},
		staticSource{name: "googlenews", err: errors.New("rss 503")},
	}, 2)

	runs := storemocks.NewMockStore(t)
	runs.On("CreateRun", mock.Anything, model.TriggerManual).
		Return(&model.Run{ID: "run-1"}, nil).Once()
	runs.On("CompleteRun", mock.Anything, "run-1", mock.MatchedBy(func(r *model.RunResult) bool {
		return r.Added == 1 && r.Updated == 1 && r.Published == 1
	})).Return(nil).Once()

	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(recs []model.Record) bool {
		return len(recs) == 1 && recs[0].CompanyName == "Zed"
	})).Return(&publish.Result{Created: 1}, nil).Once()

	cycle := New(collector, coll,
		WithRunStore(runs),
		WithPublisher(pub),
		WithClock(func() time.Time { return cycleNow }),
	)

	res, err := cycle.Run(context.Background(), model.TriggerManual)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Collected)
	assert.Equal(t, 2, res.Unique)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, 2, res.Total)
	assert.True(t, res.Persisted)
	require.Len(t, res.Sources, 3)
	assert.Equal(t, "googlenews", res.Sources[2].Name)
	assert.Equal(t, "rss 503", res.Sources[2].Error)

	stored, err := coll.Load()
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "AI", stored[0].Industry)
	assert.Equal(t, "Austin", stored[1].Location)
	assert.Equal(t, model.DateOf(cycleNow), stored[1].DiscoveryDate)
	pub.AssertExpectations(t)
}

func TestCycle_Run_NoStoreNoPublisher(t *testing.T) {
	coll := newStore(t, "")
	collector := source.NewCollector([]source.Source{
		staticSource{name: "crunchbase", recs: []model.Record{{CompanyName: "Acme", URL: "u1"}}},
	}, 1)

	res, err := New(collector, coll).Run(context.Background(), model.TriggerSchedule)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 0, res.Published)
}

func TestCycle_Run_PersistFailure(t *testing.T) {
	dir := t.TempDir()
	// A directory in place of the collection file makes the rename fail.
	path := filepath.Join(dir, "startups.json")
	require.NoError(t, os.MkdirAll(filepath.Join(path, "child"), 0o755))
	coll := collection.New(path)

	collector := source.NewCollector([]source.Source{
		staticSource{name: "crunchbase", recs: []model.Record{{CompanyName: "Acme", URL: "u1"}}},
	}, 1)

	runs := storemocks.NewMockStore(t)
	runs.On("CreateRun", mock.Anything, model.TriggerManual).Return(&model.Run{ID: "run-2"}, nil).Once()
	runs.On("FailRun", mock.Anything, "run-2", mock.MatchedBy(func(r *model.RunResult) bool {
		return !r.Persisted && r.Added == 1
	}), mock.Anything).Return(nil).Once()

	pub := &mockPublisher{}
	res, err := New(collector, coll, WithRunStore(runs), WithPublisher(pub)).Run(context.Background(), model.TriggerManual)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline: persist collection")
	assert.False(t, res.Persisted)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCycle_Run_CreateRunError(t *testing.T) {
	runs := storemocks.NewMockStore(t)
	runs.On("CreateRun", mock.Anything, model.TriggerManual).Return(nil, errors.New("db down")).Once()

	_, err := New(source.NewCollector(nil, 1), newStore(t, ""), WithRunStore(runs)).
		Run(context.Background(), model.TriggerManual)
	assert.Error(t, err)
}

func TestCycle_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	collector := source.NewCollector([]source.Source{
		staticSource{name: "crunchbase", recs: []model.Record{{CompanyName: "Acme", URL: "u1"}}},
	}, 1)

	runs := storemocks.NewMockStore(t)
	runs.On("CreateRun", mock.Anything, model.TriggerManual).
		Run(func(mock.Arguments) { cancel() }).
		Return(&model.Run{ID: "run-3"}, nil).Once()
	runs.On("FailRun", mock.Anything, "run-3", mock.Anything, mock.Anything).Return(nil).Once()

	coll := newStore(t, "")
	_, err := New(collector, coll, WithRunStore(runs)).Run(ctx, model.TriggerManual)
	require.Error(t, err)

	stored, loadErr := coll.Load()
	require.NoError(t, loadErr)
	assert.Empty(t, stored)
}

func TestCycle_Run_Enriches(t *testing.T) {
	coll := newStore(t, "")
	collector := source.NewCollector([]source.Source{
		staticSource{name: "crunchbase", recs: []model.Record{{CompanyName: "Acme", URL: "u1"}}},
	}, 1)

	enr := &mockEnricher{}
	enr.On("EnrichCollection", mock.Anything, mock.Anything, 10).
		Return(&enrich.Result{Records: []model.Record{{CompanyName: "Acme", URL: "u1", ProductFocus: "robots"}}}, nil).Once()

	res, err := New(collector, coll, WithEnricher(enr, 10)).Run(context.Background(), model.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Enriched)
	enr.AssertExpectations(t)
}

func TestCycle_Ingest(t *testing.T) {
	coll := newStore(t, `[{"company_name":"Acme","url":"u1"}]`)

	runs := storemocks.NewMockStore(t)
	runs.On("CreateRun", mock.Anything, model.TriggerReconcile).Return(&model.Run{ID: "run-4"}, nil).Once()
	runs.On("CompleteRun", mock.Anything, "run-4", mock.Anything).Return(nil).Once()

	res, err := New(source.NewCollector(nil, 1), coll, WithRunStore(runs)).Ingest(context.Background(), model.TriggerReconcile, "import.json", []model.Record{
		{CompanyName: "Acme", URL: "u1", FundingRound: model.RoundSeed},
		{CompanyName: "Acme", URL: "u1"},
		{CompanyName: "Beta", URL: "u2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Collected)
	assert.Equal(t, 2, res.Unique)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Updated)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "import.json", res.Sources[0].Name)
}

func TestCycle_Ingest_CountsUnidentifiable(t *testing.T) {
	coll := newStore(t, "")

	res, err := New(source.NewCollector(nil, 1), coll).Ingest(context.Background(), model.TriggerReconcile, "import.json", []model.Record{
		{CompanyName: "Zed", URL: "u2"},
		{CompanyName: "NoURL"},
		{URL: "u9"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Collected)
	assert.Equal(t, 1, res.Unique)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 2, res.Dropped)
	assert.Equal(t, 1, res.Total)
}

func TestSourceResults(t *testing.T) {
	out := SourceResults([]source.Batch{
		{Source: "a", Records: make([]model.Record, 2), Duration: 1500 * time.Millisecond},
		{Source: "b", Err: errors.New("timeout")},
	})
	assert.Equal(t, []model.SourceResult{
		{Name: "a", Records: 2, DurationMS: 1500},
		{Name: "b", Error: "timeout"},
	}, out)
}
