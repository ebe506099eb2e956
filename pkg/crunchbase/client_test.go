package crunchbase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/venture-watch/internal/resilience"
)

func fastRetry() Option {
	return WithRetry(resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond})
}

func TestSearchFundingRounds_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/searches/funding_rounds", r.URL.Path)
		assert.Equal(t, "cb-key", r.Header.Get("X-cb-user-key"))

		var body searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 50, body.Limit)
		require.Len(t, body.Query, 1)
		assert.Equal(t, "between", body.Query[0].OperatorID)
		assert.Equal(t, []string{"2026-03-01", "2026-03-08"}, body.Query[0].Values)
		assert.Equal(t, "desc", body.Order[0].Sort)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"count": 1,
			"entities": [{
				"uuid": "r-1",
				"properties": {
					"identifier": {"value": "Series A - Acme", "permalink": "acme-series-a"},
					"announced_on": "2026-03-05",
					"investment_type": "series_a",
					"money_raised": {"value": 12500000, "currency": "USD", "value_usd": 12500000},
					"funded_organization_identifier": {"value": "Acme", "permalink": "acme"},
					"lead_investor_identifiers": [{"value": "Sequoia Capital", "permalink": "sequoia-capital"}]
				}
			}]
		}`))
	}))
	defer srv.Close()

	c := NewClient("cb-key", WithBaseURL(srv.URL+"/"), fastRetry())
	rounds, err := c.SearchFundingRounds(context.Background(), FundingRoundQuery{
		Since: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Until: time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	require.Len(t, rounds, 1)
	r := rounds[0]
	assert.Equal(t, "r-1", r.Identifier.UUID)
	assert.Equal(t, "acme", r.Organization.Permalink)
	assert.Equal(t, "series_a", r.InvestmentType)
	require.NotNil(t, r.MoneyRaised)
	assert.InDelta(t, 12500000, r.MoneyRaised.ValueUSD, 0.1)
	require.Len(t, r.LeadInvestors, 1)
	assert.Equal(t, "Sequoia Capital", r.LeadInvestors[0].Value)
}

func TestSearchFundingRounds_RetriesTransient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"count":0,"entities":[]}`))
	}))
	defer srv.Close()

	c := NewClient("cb-key", WithBaseURL(srv.URL), fastRetry())
	rounds, err := c.SearchFundingRounds(context.Background(), FundingRoundQuery{Limit: 5})

	require.NoError(t, err)
	assert.Empty(t, rounds)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearchFundingRounds_Unauthorized(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid user key"}`))
	}))
	defer srv.Close()

	c := NewClient("bad", WithBaseURL(srv.URL), fastRetry())
	_, err := c.SearchFundingRounds(context.Background(), FundingRoundQuery{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, int32(1), calls.Load(), "client errors are not retried")
}

func TestGetOrganization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/entities/organizations/acme", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("field_ids"), "short_description")

		_, _ = w.Write([]byte(`{
			"properties": {
				"identifier": {"value": "Acme", "permalink": "acme"},
				"short_description": "Payroll for robots",
				"website_url": "https://acme.example",
				"location_identifiers": [
					{"value": "United States", "location_type": "country"},
					{"value": "San Francisco", "location_type": "city"},
					{"value": "California", "location_type": "region"}
				],
				"categories": [{"value": "FinTech"}, {"value": "Payroll"}, {"value": ""}],
				"founded_on": {"value": "2021-01-01", "precision": "year"}
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient("cb-key", WithBaseURL(srv.URL), fastRetry())
	org, err := c.GetOrganization(context.Background(), "acme")

	require.NoError(t, err)
	assert.Equal(t, "Acme", org.Name())
	assert.Equal(t, "Payroll for robots", org.ShortDescription)
	assert.Equal(t, "San Francisco, California, United States", org.Location())
	assert.Equal(t, []string{"FinTech", "Payroll"}, org.CategoryNames())
	require.NotNil(t, org.FoundedOn)
	assert.Equal(t, "year", org.FoundedOn.Precision)
}

func TestGetOrganization_EmptyPermalink(t *testing.T) {
	c := NewClient("cb-key")
	_, err := c.GetOrganization(context.Background(), "")
	assert.Error(t, err)
}

func TestOrganizationLocation_Partial(t *testing.T) {
	org := &Organization{Locations: []Identifier{{Value: "Berlin", LocationType: "city"}, {Value: "Germany", LocationType: "country"}}}
	assert.Equal(t, "Berlin, Germany", org.Location())
	assert.Empty(t, (&Organization{}).Location())
}
