package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/venture-watch/pkg/google"
	"github.com/sells-group/venture-watch/pkg/google/mocks"
)

func TestCustomSearch_CollectPages(t *testing.T) {
	client := mocks.NewMockClient(t)
	ctx := context.Background()

	client.On("Search", ctx, google.SearchRequest{Query: "startup raises", DaysBack: 7, Num: 10, Start: 1}).
		Return(&google.SearchResponse{
			Items: []google.Item{
				{
					Title:   "Acme raises $12M Series A to rebuild payroll | TechCrunch",
					Link:    "https://techcrunch.com/2026/03/02/acme/",
					Snippet: "Acme, a San Francisco-based fintech startup, has raised $12.5 million.",
					PageMap: google.PageMap{MetaTags: []map[string]string{{"article:published_time": "2026-03-02T14:00:00Z"}}},
				},
				{Title: "Best laptops of 2026", Link: "https://example.com/laptops"},
			},
			Queries: google.Queries{NextPage: []google.PageInfo{{StartIndex: 11}}},
		}, nil).Once()
	client.On("Search", ctx, google.SearchRequest{Query: "startup raises", DaysBack: 7, Num: 10, Start: 11}).
		Return(&google.SearchResponse{
			Items: []google.Item{
				{Title: "Zed Robotics secures $4M in seed funding", Link: "https://venturebeat.com/ai/zed/"},
			},
		}, nil).Once()

	src := NewCustomSearch("customsearch", "", "startup raises", 20, client)
	assert.Equal(t, KindSearch, src.Kind())

	recs, err := src.Collect(ctx, Window{DaysBack: 7, Now: testNow})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "Acme", recs[0].CompanyName)
	assert.Equal(t, "https://techcrunch.com/2026/03/02/acme/", recs[0].URL)
	assert.Equal(t, "Google Search", recs[0].Source)
	assert.Equal(t, "2026-03-02", recs[0].PublishedDate.String())
	assert.Equal(t, "San Francisco", recs[0].Location)

	assert.Equal(t, "Zed Robotics", recs[1].CompanyName)
	require.NotNil(t, recs[1].FundingAmount)
	assert.InDelta(t, 4, *recs[1].FundingAmount, 0.0001)
}

func TestCustomSearch_StopsAtLimit(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Search", mock.Anything, mock.MatchedBy(func(r google.SearchRequest) bool { return r.Num == 3 })).
		Return(&google.SearchResponse{
			Items: []google.Item{
				{Title: "A raises $1M", Link: "https://x.example/a"},
				{Title: "B raises $2M", Link: "https://x.example/b"},
				{Title: "C raises $3M", Link: "https://x.example/c"},
			},
			Queries: google.Queries{NextPage: []google.PageInfo{{StartIndex: 4}}},
		}, nil).Once()

	recs, err := NewCustomSearch("cs", "", "q", 3, client).Collect(context.Background(), Window{DaysBack: 7, Now: testNow})
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestCustomSearch_Error(t *testing.T) {
	client := mocks.NewMockClient(t)
	client.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("google: http 403: quota")).Once()

	_, err := NewCustomSearch("cs", "", "q", 10, client).Collect(context.Background(), Window{DaysBack: 7, Now: testNow})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
