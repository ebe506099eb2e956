// Package publish mirrors newly collected startups into a Notion database.
package publish

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/venture-watch/internal/model"
	"github.com/sells-group/venture-watch/pkg/notion"
)

// Database property names.
const (
	PropName       = "Name"
	PropKey        = "Key"
	PropRound      = "Funding Round"
	PropAmount     = "Amount ($M)"
	PropIndustry   = "Industry"
	PropLocation   = "Location"
	PropInvestors  = "Investors"
	PropURL        = "URL"
	PropSource     = "Source"
	PropDiscovered = "Discovered"
)

const defaultConcurrency = 3

// Result counts the outcome of a publish.
type Result struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Publisher creates one page per record in a Notion database.
type Publisher struct {
	client        notion.Client
	databaseID    string
	maxConcurrent int
}

// New creates a publisher for the database. maxConcurrent <= 0 uses a
// default.
func New(client notion.Client, databaseID string, maxConcurrent int) *Publisher {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultConcurrency
	}
	return &Publisher{client: client, databaseID: databaseID, maxConcurrent: maxConcurrent}
}

// Publish creates pages for records not already in the database, matched on
// the Key property. Per-record failures are logged and counted; only
// cancellation returns an error.
func (p *Publisher) Publish(ctx context.Context, records []model.Record) (*Result, error) {
	var created, skipped, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxConcurrent)

	for _, rec := range records {
		key, ok := rec.Key()
		if !ok {
			skipped.Add(1)
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			log := zap.L().With(zap.String("company", rec.CompanyName), zap.String("url", rec.URL))

			existing, err := notion.FindByText(gctx, p.client, p.databaseID, PropKey, key.String())
			if err != nil {
				log.Warn("publish: lookup failed", zap.Error(err))
				failed.Add(1)
				return nil
			}
			if len(existing) > 0 {
				skipped.Add(1)
				return nil
			}

			if _, err := p.client.CreatePage(gctx, &notionapi.PageCreateRequest{
				Parent: notionapi.Parent{
					Type:       notionapi.ParentTypeDatabaseID,
					DatabaseID: notionapi.DatabaseID(p.databaseID),
				},
				Properties: Properties(rec),
			}); err != nil {
				log.Warn("publish: create page failed", zap.Error(err))
				failed.Add(1)
				return nil
			}
			created.Add(1)
			return nil
		})
	}

	res := &Result{}
	err := g.Wait()
	res.Created = int(created.Load())
	res.Skipped = int(skipped.Load())
	res.Failed = int(failed.Load())

	if err != nil {
		return res, eris.Wrap(err, "publish: cancelled")
	}
	zap.L().Info("publish: complete",
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

// Properties builds the page properties for a record. Empty fields are
// omitted.
func Properties(r model.Record) notionapi.Properties {
	props := notionapi.Properties{
		PropName: notion.Title(r.CompanyName),
	}
	if key, ok := r.Key(); ok {
		props[PropKey] = notion.Text(key.String())
	}
	if r.FundingRound != "" {
		props[PropRound] = notion.Select(string(r.FundingRound))
	}
	if r.FundingAmount != nil {
		props[PropAmount] = notion.Number(*r.FundingAmount)
	}
	if r.Industry != "" {
		props[PropIndustry] = notion.Select(selectName(r.Industry))
	}
	if r.Location != "" {
		props[PropLocation] = notion.Text(r.Location)
	}
	if len(r.Investors) > 0 {
		names := make([]string, len(r.Investors))
		for i, inv := range r.Investors {
			names[i] = selectName(inv)
		}
		props[PropInvestors] = notion.MultiSelect(names)
	}
	if r.URL != "" {
		props[PropURL] = notion.URL(r.URL)
	}
	if r.Source != "" {
		props[PropSource] = notion.Select(selectName(r.Source))
	}
	if !r.DiscoveryDate.IsZero() {
		props[PropDiscovered] = notion.Date(r.DiscoveryDate.Time())
	}
	return props
}

// selectName strips commas, which Notion rejects in option names.
func selectName(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
}
