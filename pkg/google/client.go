// Package google provides a client for the Google Custom Search JSON API.
package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/venture-watch/internal/resilience"
)

const defaultBaseURL = "https://www.googleapis.com"

// maxNum is the largest page size the API accepts.
const maxNum = 10

// Client performs Google Custom Search operations.
type Client interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchRequest is one page of a Custom Search query.
type SearchRequest struct {
	Query string
	// DaysBack restricts results to the last N days when positive.
	DaysBack int
	// Num is the page size, 1-10. Zero means 10.
	Num int
	// Start is the 1-based index of the first result.
	Start int
}

// SearchResponse is the response from Custom Search.
type SearchResponse struct {
	Items             []Item            `json:"items"`
	SearchInformation SearchInformation `json:"searchInformation"`
	Queries           Queries           `json:"queries"`
}

// Item is a single search hit.
type Item struct {
	Title       string  `json:"title"`
	Link        string  `json:"link"`
	Snippet     string  `json:"snippet"`
	DisplayLink string  `json:"displayLink"`
	PageMap     PageMap `json:"pagemap"`
}

// PageMap holds structured data Google extracted from the page.
type PageMap struct {
	MetaTags []map[string]string `json:"metatags"`
}

// PublishedTime returns the article:published_time meta tag, if any.
func (i Item) PublishedTime() string {
	for _, m := range i.PageMap.MetaTags {
		if v := m["article:published_time"]; v != "" {
			return v
		}
	}
	return ""
}

// SearchInformation summarizes the result set.
type SearchInformation struct {
	TotalResults string `json:"totalResults"`
}

// Queries describes the adjacent result pages.
type Queries struct {
	NextPage []PageInfo `json:"nextPage"`
}

// PageInfo locates a result page.
type PageInfo struct {
	StartIndex int `json:"startIndex"`
}

// NextStart returns the start index of the next page, or 0 when there is none.
func (r *SearchResponse) NextStart() int {
	if len(r.Queries.NextPage) == 0 {
		return 0
	}
	return r.Queries.NextPage[0].StartIndex
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRetry overrides the retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	apiKey  string
	cseID   string
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates a Custom Search client for the search engine cseID.
func NewClient(apiKey, cseID string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		cseID:   cseID,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		retry: resilience.RetryConfig{
			MaxAttempts: 3,
			OnRetry:     resilience.RetryLogger("google", "search"),
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, sr SearchRequest) (*SearchResponse, error) {
	if strings.TrimSpace(sr.Query) == "" {
		return nil, eris.New("google: empty query")
	}
	params := url.Values{
		"key": {c.apiKey},
		"cx":  {c.cseID},
		"q":   {sr.Query},
	}
	if sr.DaysBack > 0 {
		params.Set("dateRestrict", "d"+strconv.Itoa(sr.DaysBack))
	}
	num := sr.Num
	if num <= 0 || num > maxNum {
		num = maxNum
	}
	params.Set("num", strconv.Itoa(num))
	if sr.Start > 1 {
		params.Set("start", strconv.Itoa(sr.Start))
	}
	endpoint := c.baseURL + "/customsearch/v1?" + params.Encode()

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*SearchResponse, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, eris.Wrap(err, "google: create request")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "google: send request")
		}
		defer resp.Body.Close() //nolint:errcheck

		if err := resilience.CheckResponse("google", resp); err != nil {
			return nil, err
		}

		var result SearchResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, eris.Wrap(err, "google: unmarshal response")
		}
		return &result, nil
	})
}
