package publish

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/venture-watch/internal/model"
	"github.com/sells-group/venture-watch/pkg/notion"
	"github.com/sells-group/venture-watch/pkg/notion/mocks"
)

const testDB = "db-startups"

func keyQuery(value string) any {
	return mock.MatchedBy(func(req *notionapi.DatabaseQueryRequest) bool {
		f, ok := req.Filter.(notionapi.PropertyFilter)
		return ok && f.Property == PropKey && f.RichText != nil && f.RichText.Equals == value
	})
}

func createFor(name string) any {
	return mock.MatchedBy(func(req *notionapi.PageCreateRequest) bool {
		return string(req.Parent.DatabaseID) == testDB &&
			notion.TextValue(notionapi.Page{Properties: req.Properties}, PropName) == name
	})
}

func TestProperties(t *testing.T) {
	r := model.Record{
		CompanyName:   "Acme",
		URL:           "https://example.com/acme",
		FundingAmount: model.Float(12.5),
		FundingRound:  model.RoundSeriesA,
		Industry:      "AI",
		Location:      "Austin, TX",
		Investors:     []string{"Sequoia", "Acme Ventures, LLC"},
		Source:        "TechCrunch",
		DiscoveryDate: model.DateOf(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)),
	}

	props := Properties(r)
	page := notionapi.Page{Properties: props}
	assert.Equal(t, "Acme", notion.TextValue(page, PropName))
	assert.Equal(t, "Acme <https://example.com/acme>", notion.TextValue(page, PropKey))
	assert.Equal(t, "Austin, TX", notion.TextValue(page, PropLocation))

	assert.Equal(t, "Series A", props[PropRound].(notionapi.SelectProperty).Select.Name)
	assert.InDelta(t, 12.5, props[PropAmount].(notionapi.NumberProperty).Number, 0.001)
	assert.Equal(t, "https://example.com/acme", props[PropURL].(notionapi.URLProperty).URL)

	inv := props[PropInvestors].(notionapi.MultiSelectProperty).MultiSelect
	require.Len(t, inv, 2)
	assert.Equal(t, "Acme Ventures LLC", inv[1].Name)

	d := props[PropDiscovered].(notionapi.DateProperty).Date
	require.NotNil(t, d.Start)
	assert.Equal(t, "2026-03-02", time.Time(*d.Start).Format("2006-01-02"))
}

func TestProperties_OmitsEmpty(t *testing.T) {
	props := Properties(model.Record{CompanyName: "Acme", URL: "u1"})
	assert.Len(t, props, 3)
	assert.Contains(t, props, PropName)
	assert.Contains(t, props, PropKey)
	assert.Contains(t, props, PropURL)
}

func TestPublish(t *testing.T) {
	client := mocks.NewMockClient(t)

	client.On("QueryDatabase", mock.Anything, testDB, keyQuery("Acme <u1>")).
		Return(&notionapi.DatabaseQueryResponse{}, nil).Once()
	client.On("QueryDatabase", mock.Anything, testDB, keyQuery("Beta <u2>")).
		Return(&notionapi.DatabaseQueryResponse{Results: []notionapi.Page{{ID: "existing"}}}, nil).Once()
	client.On("QueryDatabase", mock.Anything, testDB, keyQuery("Gamma <u3>")).
		Return(&notionapi.DatabaseQueryResponse{}, nil).Once()

	client.On("CreatePage", mock.Anything, createFor("Acme")).
		Return(&notionapi.Page{ID: "p1"}, nil).Once()
	client.On("CreatePage", mock.Anything, createFor("Gamma")).
		Return(nil, errors.New("validation_error")).Once()

	res, err := New(client, testDB, 2).Publish(context.Background(), []model.Record{
		{CompanyName: "Acme", URL: "u1"},
		{CompanyName: "Beta", URL: "u2"},
		{CompanyName: "Gamma", URL: "u3"},
		{CompanyName: "NoURL"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 1, res.Failed)
}

func TestPublish_LookupError(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("QueryDatabase", mock.Anything, testDB, mock.Anything).
		Return(nil, errors.New("rate limited")).Once()

	res, err := New(client, testDB, 0).Publish(context.Background(), []model.Record{
		{CompanyName: "Acme", URL: "u1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	client.AssertNotCalled(t, "CreatePage", mock.Anything, mock.Anything)
}

func TestPublish_Empty(t *testing.T) {
	client := mocks.NewMockClient(t)
	res, err := New(client, testDB, 1).Publish(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, &Result{}, res)
}

func TestPublish_Cancelled(t *testing.T) {
	client := mocks.NewMockClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(client, testDB, 1).Publish(ctx, []model.Record{{CompanyName: "Acme", URL: "u1"}})
	assert.Error(t, err)
}
