package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(ReconciledRecords.WithLabelValues("added"))
	ReconciledRecords.WithLabelValues("added").Add(3)
	assert.InDelta(t, before+3, testutil.ToFloat64(ReconciledRecords.WithLabelValues("added")), 0)

	CollectionSize.Set(12)
	assert.InDelta(t, 12, testutil.ToFloat64(CollectionSize), 0)
}

func TestHandler(t *testing.T) {
	SourceRecords.WithLabelValues("crunchbase").Add(2)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `venture_watch_source_records_total{source="crunchbase"}`)
	assert.Contains(t, string(body), "go_goroutines")
}
