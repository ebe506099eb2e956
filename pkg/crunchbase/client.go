// Package crunchbase provides a client for the Crunchbase v4 API.
package crunchbase

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/venture-watch/internal/resilience"
)

const defaultBaseURL = "https://api.crunchbase.com/api/v4"

// Client performs Crunchbase API operations.
type Client interface {
	SearchFundingRounds(ctx context.Context, q FundingRoundQuery) ([]FundingRound, error)
	GetOrganization(ctx context.Context, permalink string) (*Organization, error)
}

// FundingRoundQuery selects funding rounds announced within [Since, Until].
type FundingRoundQuery struct {
	Since time.Time
	Until time.Time
	Limit int
}

// Identifier is Crunchbase's reference to another entity.
type Identifier struct {
	UUID         string `json:"uuid"`
	Value        string `json:"value"`
	Permalink    string `json:"permalink"`
	EntityDefID  string `json:"entity_def_id"`
	LocationType string `json:"location_type,omitempty"`
}

// Money is a monetary amount with its USD conversion.
type Money struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
	ValueUSD float64 `json:"value_usd"`
}

// FundingRound is one announced round.
type FundingRound struct {
	Identifier     Identifier   `json:"identifier"`
	AnnouncedOn    string       `json:"announced_on"`
	InvestmentType string       `json:"investment_type"`
	MoneyRaised    *Money       `json:"money_raised"`
	Organization   Identifier   `json:"funded_organization_identifier"`
	LeadInvestors  []Identifier `json:"lead_investor_identifiers"`
}

// Organization holds the organization fields the collector uses.
type Organization struct {
	Identifier       Identifier   `json:"identifier"`
	ShortDescription string       `json:"short_description"`
	WebsiteURL       string       `json:"website_url"`
	Locations        []Identifier `json:"location_identifiers"`
	Categories       []Identifier `json:"categories"`
	NumEmployees     string       `json:"num_employees_enum"`
	FoundedOn        *DateValue   `json:"founded_on"`
}

// DateValue is a Crunchbase date with its precision.
type DateValue struct {
	Value     string `json:"value"`
	Precision string `json:"precision"`
}

// Name returns the organization's display name.
func (o *Organization) Name() string {
	return o.Identifier.Value
}

// Location formats the headquarters as "city, region, country", skipping
// missing parts.
func (o *Organization) Location() string {
	var city, region, country string
	for _, l := range o.Locations {
		switch l.LocationType {
		case "city":
			city = l.Value
		case "region":
			region = l.Value
		case "country":
			country = l.Value
		}
	}
	var parts []string
	for _, p := range []string{city, region, country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// CategoryNames lists the organization's category names.
func (o *Organization) CategoryNames() []string {
	var out []string
	for _, c := range o.Categories {
		if c.Value != "" {
			out = append(out, c.Value)
		}
	}
	return out
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
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates a Crunchbase API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
		retry: resilience.RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: 4 * time.Second,
			MaxBackoff:     10 * time.Second,
			OnRetry:        resilience.RetryLogger("crunchbase", "request"),
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type searchQuery struct {
	FieldID    string   `json:"field_id"`
	OperatorID string   `json:"operator_id"`
	Values     []string `json:"values"`
}

type searchOrder struct {
	FieldID string `json:"field_id"`
	Sort    string `json:"sort"`
}

type searchRequest struct {
	FieldIDs []string      `json:"field_ids"`
	Order    []searchOrder `json:"order"`
	Query    []searchQuery `json:"query"`
	Limit    int           `json:"limit"`
}

type searchResponse struct {
	Count    int `json:"count"`
	Entities []struct {
		UUID       string       `json:"uuid"`
		Properties FundingRound `json:"properties"`
	} `json:"entities"`
}

var fundingRoundFields = []string{
	"identifier",
	"announced_on",
	"investment_type",
	"money_raised",
	"funded_organization_identifier",
	"lead_investor_identifiers",
}

var organizationFields = []string{
	"identifier",
	"short_description",
	"website_url",
	"location_identifiers",
	"categories",
	"num_employees_enum",
	"founded_on",
}

func (c *httpClient) SearchFundingRounds(ctx context.Context, q FundingRoundQuery) ([]FundingRound, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	body, err := json.Marshal(searchRequest{
		FieldIDs: fundingRoundFields,
		Order:    []searchOrder{{FieldID: "announced_on", Sort: "desc"}},
		Query: []searchQuery{{
			FieldID:    "announced_on",
			OperatorID: "between",
			Values:     []string{q.Since.Format("2006-01-02"), q.Until.Format("2006-01-02")},
		}},
		Limit: limit,
	})
	if err != nil {
		return nil, eris.Wrap(err, "crunchbase: marshal search")
	}

	var resp searchResponse
	if err := c.do(ctx, http.MethodPost, "/searches/funding_rounds", nil, body, &resp); err != nil {
		return nil, eris.Wrap(err, "crunchbase: search funding rounds")
	}

	rounds := make([]FundingRound, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		r := e.Properties
		if r.Identifier.UUID == "" {
			r.Identifier.UUID = e.UUID
		}
		rounds = append(rounds, r)
	}
	return rounds, nil
}

func (c *httpClient) GetOrganization(ctx context.Context, permalink string) (*Organization, error) {
	if permalink == "" {
		return nil, eris.New("crunchbase: empty organization permalink")
	}
	params := url.Values{"field_ids": {strings.Join(organizationFields, ",")}}

	var resp struct {
		Properties Organization `json:"properties"`
	}
	path := "/entities/organizations/" + url.PathEscape(permalink)
	if err := c.do(ctx, http.MethodGet, path, params, nil, &resp); err != nil {
		return nil, eris.Wrapf(err, "crunchbase: get organization %s", permalink)
	}
	return &resp.Properties, nil
}

func (c *httpClient) do(ctx context.Context, method, path string, params url.Values, body []byte, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return resilience.Do(ctx, c.retry, func(ctx context.Context) error {
		var reqBody io.Reader
		if body != nil {
			reqBody = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
		if err != nil {
			return eris.Wrap(err, "crunchbase: create request")
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-cb-user-key", c.apiKey)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return eris.Wrap(err, "crunchbase: send request")
		}
		defer resp.Body.Close() //nolint:errcheck

		if err := resilience.CheckResponse("crunchbase", resp); err != nil {
			return err
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return eris.Wrap(err, "crunchbase: decode response")
		}
		return nil
	})
}
