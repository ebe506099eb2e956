package source

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	body string
	err  error
	urls []string
}

func (f *fakeFetcher) Download(_ context.Context, rawURL string) (io.ReadCloser, error) {
	f.urls = append(f.urls, rawURL)
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.body)), nil
}

func (f *fakeFetcher) DownloadIfChanged(ctx context.Context, rawURL string, _ string) (io.ReadCloser, string, bool, error) {
	rc, err := f.Download(ctx, rawURL)
	return rc, "", true, err
}

const newsFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>startup funding - Google News</title>
<item>
  <title>Acme raises $12M Series A - TechCrunch</title>
  <link>https://news.google.com/rss/articles/acme</link>
  <pubDate>Mon, 02 Mar 2026 14:00:00 GMT</pubDate>
  <description>&lt;a href="https://news.google.com/rss/articles/acme"&gt;Acme raises $12M Series A&lt;/a&gt;&amp;nbsp;&amp;nbsp;&lt;font color="#6f6f6f"&gt;TechCrunch&lt;/font&gt;</description>
  <source url="https://techcrunch.com">TechCrunch</source>
</item>
<item>
  <title>Why seed valuations are falling - Axios</title>
  <link>https://news.google.com/rss/articles/axios</link>
  <pubDate>Tue, 03 Mar 2026 10:00:00 GMT</pubDate>
  <source url="https://axios.com">Axios</source>
</item>
<item>
  <title>Apple unveils new iPhone</title>
  <link>https://news.google.com/rss/articles/apple</link>
</item>
<item>
  <title>Old Co raises $3M seed</title>
  <link>https://news.google.com/rss/articles/old</link>
  <pubDate>Thu, 01 Jan 2026 10:00:00 GMT</pubDate>
</item>
<item>
  <title>Zed Robotics raises $4 million pre-seed</title>
  <link>https://news.google.com/rss/articles/zed</link>
</item>
</channel></rss>`

func TestGoogleNews_FeedURL(t *testing.T) {
	g := NewGoogleNews("googlenews", "", "https://news.google.com", "startup funding", 0, nil)
	u, err := url.Parse(g.FeedURL(Window{DaysBack: 7, Now: testNow}))
	require.NoError(t, err)
	assert.Equal(t, "/rss/search", u.Path)
	assert.Equal(t, "startup funding when:7d", u.Query().Get("q"))
	assert.Equal(t, "US:en", u.Query().Get("ceid"))
}

func TestGoogleNews_Collect(t *testing.T) {
	f := &fakeFetcher{body: newsFeed}
	g := NewGoogleNews("googlenews", "", "https://news.google.com", "startup funding", 0, f)

	recs, err := g.Collect(context.Background(), Window{DaysBack: 7, Now: testNow})
	require.NoError(t, err)
	require.Len(t, f.urls, 1)
	require.Len(t, recs, 2)

	acme := recs[0]
	assert.Equal(t, "Acme", acme.CompanyName)
	assert.Equal(t, "https://news.google.com/rss/articles/acme", acme.URL)
	assert.Equal(t, "Acme raises $12M Series A", acme.Title)
	assert.Equal(t, "TechCrunch", acme.Source)
	require.NotNil(t, acme.FundingAmount)
	assert.InDelta(t, 12, *acme.FundingAmount, 0.0001)
	assert.Equal(t, "2026-03-02", acme.PublishedDate.String())
	assert.Equal(t, "2026-03-05", acme.DiscoveryDate.String())

	zed := recs[1]
	assert.Equal(t, "Zed Robotics", zed.CompanyName)
	assert.Equal(t, "Google News", zed.Source)
	assert.True(t, zed.PublishedDate.IsZero())
}

func TestGoogleNews_Limit(t *testing.T) {
	f := &fakeFetcher{body: newsFeed}
	recs, err := NewGoogleNews("googlenews", "", "https://news.google.com", "q", 1, f).
		Collect(context.Background(), Window{DaysBack: 7, Now: testNow})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestGoogleNews_DownloadError(t *testing.T) {
	f := &fakeFetcher{err: errors.New("dial tcp: refused")}
	_, err := NewGoogleNews("googlenews", "", "https://news.google.com", "q", 0, f).
		Collect(context.Background(), Window{DaysBack: 7, Now: testNow})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "googlenews download")
}
