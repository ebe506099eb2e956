package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/venture-watch/internal/model"
	"github.com/sells-group/venture-watch/pkg/crunchbase"
	"github.com/sells-group/venture-watch/pkg/crunchbase/mocks"
)

var testNow = time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)

func TestCrunchbase_Collect(t *testing.T) {
	client := mocks.NewMockClient(t)
	ctx := context.Background()

	client.On("SearchFundingRounds", ctx, mock.MatchedBy(func(q crunchbase.FundingRoundQuery) bool {
		return q.Limit == 25 && q.Until.Equal(testNow) && q.Since.Equal(testNow.AddDate(0, 0, -7))
	})).Return([]crunchbase.FundingRound{
		{
			Identifier:     crunchbase.Identifier{Value: "Series A - Acme"},
			AnnouncedOn:    "2026-03-02",
			InvestmentType: "series_a",
			MoneyRaised:    &crunchbase.Money{ValueUSD: 12500000},
			Organization:   crunchbase.Identifier{Value: "Acme", Permalink: "acme"},
			LeadInvestors:  []crunchbase.Identifier{{Value: "Sequoia Capital"}},
		},
		{
			AnnouncedOn:    "2026-03-03",
			InvestmentType: "pre_seed",
			Organization:   crunchbase.Identifier{Value: "Acme", Permalink: "acme"},
		},
		{Organization: crunchbase.Identifier{Value: "Ghost", Permalink: "ghost"}},
		{Organization: crunchbase.Identifier{Value: "No Permalink"}},
	}, nil).Once()

	client.On("GetOrganization", ctx, "acme").Return(&crunchbase.Organization{
		Identifier:       crunchbase.Identifier{Value: "Acme Inc"},
		ShortDescription: "Payroll for robots",
		WebsiteURL:       "https://acme.example",
		Locations:        []crunchbase.Identifier{{Value: "Austin", LocationType: "city"}, {Value: "Texas", LocationType: "region"}},
		Categories:       []crunchbase.Identifier{{Value: "FinTech"}, {Value: "Payroll"}},
		NumEmployees:     "c_00011_00050",
		FoundedOn:        &crunchbase.DateValue{Value: "2021-06-01"},
	}, nil).Once()
	client.On("GetOrganization", ctx, "ghost").Return(nil, errors.New("404")).Once()

	src := NewCrunchbase("crunchbase", "", client, 25)
	assert.Equal(t, KindAPI, src.Kind())

	recs, err := src.Collect(ctx, Window{DaysBack: 7, Now: testNow})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	r := recs[0]
	assert.Equal(t, "Acme Inc", r.CompanyName)
	assert.Equal(t, "https://www.crunchbase.com/organization/acme", r.URL)
	require.NotNil(t, r.FundingAmount)
	assert.InDelta(t, 12.5, *r.FundingAmount, 0.0001)
	assert.Equal(t, model.RoundSeriesA, r.FundingRound)
	assert.Equal(t, "FinTech", r.Industry)
	assert.Equal(t, "Austin, Texas", r.Location)
	assert.Equal(t, []string{"Sequoia Capital"}, r.Investors)
	assert.Equal(t, "Crunchbase", r.Source)
	assert.Equal(t, "2026-03-02", r.PublishedDate.String())
	assert.Equal(t, "2026-03-05", r.DiscoveryDate.String())
	assert.Equal(t, []any{"FinTech", "Payroll"}, r.Extra["categories"])
	assert.Equal(t, "2021", r.Extra["founded_year"])

	assert.Equal(t, model.RoundPreSeed, recs[1].FundingRound)
	assert.Nil(t, recs[1].FundingAmount)
}

func TestCrunchbase_SearchError(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("SearchFundingRounds", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	_, err := NewCrunchbase("crunchbase", "", client, 0).Collect(context.Background(), Window{DaysBack: 7, Now: testNow})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crunchbase search")
}
