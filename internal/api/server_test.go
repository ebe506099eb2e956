package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/venture-watch/internal/model"
	"github.com/sells-group/venture-watch/internal/monitoring"
	"github.com/sells-group/venture-watch/internal/store"
)

var apiNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

type staticCollection []model.Record

func (c staticCollection) Read() []model.Record { return c }

type fakeRuns struct {
	store.Store
	runs      []model.Run
	filter    store.RunFilter
	benchmark *model.Benchmark
	err       error
}

func (f *fakeRuns) ListRuns(_ context.Context, filter store.RunFilter) ([]model.Run, error) {
	f.filter = filter
	return f.runs, f.err
}

func (f *fakeRuns) GetRun(_ context.Context, id string) (*model.Run, error) {
	for _, r := range f.runs {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, errors.New("run not found")
}

func (f *fakeRuns) LatestBenchmark(context.Context) (*model.Benchmark, error) {
	return f.benchmark, f.err
}

type fakeStatus struct {
	snap     *monitoring.MetricsSnapshot
	lookback int
}

func (f *fakeStatus) Collect(_ context.Context, lookbackHours int) (*monitoring.MetricsSnapshot, error) {
	f.lookback = lookbackHours
	return f.snap, nil
}

func day(d int) model.Date {
	return model.DateOf(time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC))
}

func fixture() staticCollection {
	return staticCollection{
		{CompanyName: "Acme AI", URL: "u1", Industry: "AI", FundingRound: model.RoundSeed, FundingAmount: model.Float(5), Location: "Austin, TX", Source: "TechCrunch", DiscoveryDate: day(9)},
		{CompanyName: "Biotica", URL: "u2", Industry: "Biotech", FundingRound: model.RoundSeriesA, FundingAmount: model.Float(20), Location: "Boston, MA", Source: "Crunchbase", DiscoveryDate: day(1)},
		{CompanyName: "Coinly", URL: "u3", Industry: "Fintech", Location: "Austin, TX", Source: "Google News", DiscoveryDate: day(8)},
	}
}

func newTestServer(opts ...Option) *httptest.Server {
	opts = append([]Option{WithClock(func() time.Time { return apiNow })}, opts...)
	return httptest.NewServer(NewServer(fixture(), opts...).Handler())
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	var body map[string]string
	resp := getJSON(t, srv.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestStartups_All(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	var body struct {
		Count    int            `json:"count"`
		Startups []model.Record `json:"startups"`
	}
	resp := getJSON(t, srv.URL+"/api/startups", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, body.Count)
	assert.Equal(t, "Acme AI", body.Startups[0].CompanyName)
}

func TestStartups_Filters(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"industry", "?industry=ai", []string{"Acme AI"}},
		{"round", "?round=Series%20A", []string{"Biotica"}},
		{"round lowercase", "?round=series%20a", []string{"Biotica"}},
		{"round crunchbase type", "?round=series_a", []string{"Biotica"}},
		{"location", "?location=austin", []string{"Acme AI", "Coinly"}},
		{"min funding", "?min_funding=10", []string{"Biotica"}},
		{"period", "?period=Last%207%20days", []string{"Acme AI", "Coinly"}},
		{"combined", "?location=austin&period=7d&industry=Fintech", []string{"Coinly"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				Startups []model.Record `json:"startups"`
			}
			getJSON(t, srv.URL+"/api/startups"+tt.query, &body)
			var names []string
			for _, r := range body.Startups {
				names = append(names, r.CompanyName)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestStartups_BadParams(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	for _, q := range []string{"?min_funding=lots", "?period=fortnight", "?min_funding=-1"} {
		var body map[string]string
		resp := getJSON(t, srv.URL+"/api/startups"+q, &body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		assert.NotEmpty(t, body["error"], q)
	}
}

func TestStartup_ByName(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	var rec model.Record
	resp := getJSON(t, srv.URL+"/api/startups/acme%20ai", &rec)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Acme AI", rec.CompanyName)

	resp = getJSON(t, srv.URL+"/api/startups/nobody", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStats(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	var body struct {
		Summary struct {
			TotalStartups  int     `json:"total_startups"`
			TotalFunding   float64 `json:"total_funding"`
			RecentStartups int     `json:"recent_startups"`
		} `json:"summary"`
		ByIndustry []struct {
			Value   string  `json:"value"`
			Funding float64 `json:"funding"`
		} `json:"by_industry"`
		Timeline []json.RawMessage `json:"timeline"`
	}
	resp := getJSON(t, srv.URL+"/api/stats", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, body.Summary.TotalStartups)
	assert.InDelta(t, 25, body.Summary.TotalFunding, 0.001)
	assert.Equal(t, 2, body.Summary.RecentStartups)
	require.NotEmpty(t, body.ByIndustry)
	assert.Equal(t, "Biotech", body.ByIndustry[0].Value)
	assert.NotEmpty(t, body.Timeline)
}

func TestFacets(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	var body struct {
		Industries   []string           `json:"industries"`
		Locations    []string           `json:"locations"`
		FundingRange map[string]float64 `json:"funding_range"`
		DateRange    map[string]string  `json:"date_range"`
	}
	getJSON(t, srv.URL+"/api/facets", &body)
	assert.Equal(t, []string{"AI", "Biotech", "Fintech"}, body.Industries)
	assert.Equal(t, []string{"Austin, TX", "Boston, MA"}, body.Locations)
	assert.InDelta(t, 5, body.FundingRange["min"], 0.001)
	assert.InDelta(t, 20, body.FundingRange["max"], 0.001)
	assert.Equal(t, "2026-03-01", body.DateRange["from"])
	assert.Equal(t, "2026-03-09", body.DateRange["to"])
}

func TestExport(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/export?industry=AI")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Acme AI")

	resp2 := getJSON(t, srv.URL+"/api/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestRuns(t *testing.T) {
	runs := &fakeRuns{runs: []model.Run{{ID: "r1", Status: model.RunStatusComplete}}}
	srv := newTestServer(WithRuns(runs))
	defer srv.Close()

	var body []model.Run
	resp := getJSON(t, srv.URL+"/api/runs?status=complete&limit=5000", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body, 1)
	assert.Equal(t, model.RunStatusComplete, runs.filter.Status)
	assert.Equal(t, maxRunLimit, runs.filter.Limit)

	var run model.Run
	resp = getJSON(t, srv.URL+"/api/runs/r1", &run)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "r1", run.ID)

	resp = getJSON(t, srv.URL+"/api/runs/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = getJSON(t, srv.URL+"/api/runs?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRuns_StoreError(t *testing.T) {
	srv := newTestServer(WithRuns(&fakeRuns{err: errors.New("db down")}))
	defer srv.Close()

	resp := getJSON(t, srv.URL+"/api/runs", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestRuns_NotConfigured(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	for _, path := range []string{"/api/runs", "/api/runs/r1", "/api/benchmarks/latest", "/api/status"} {
		resp := getJSON(t, srv.URL+path, nil)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, path)
	}
}

func TestLatestBenchmark(t *testing.T) {
	runs := &fakeRuns{}
	srv := newTestServer(WithRuns(runs))
	defer srv.Close()

	resp := getJSON(t, srv.URL+"/api/benchmarks/latest", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	runs.benchmark = &model.Benchmark{ID: "b1", UniqueToScrapers: 3}
	var b model.Benchmark
	resp = getJSON(t, srv.URL+"/api/benchmarks/latest", &b)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, b.UniqueToScrapers)
}

func TestStatus(t *testing.T) {
	status := &fakeStatus{snap: &monitoring.MetricsSnapshot{RunsTotal: 4, LookbackHours: 12}}
	srv := newTestServer(WithStatus(status, 12))
	defer srv.Close()

	var snap monitoring.MetricsSnapshot
	resp := getJSON(t, srv.URL+"/api/status", &snap)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 4, snap.RunsTotal)
	assert.Equal(t, 12, status.lookback)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	srv := newTestServer(WithCORSOrigins([]string{"https://dash.example.com"}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://dash.example.com")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "https://dash.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}
