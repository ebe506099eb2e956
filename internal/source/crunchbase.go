package source

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/venture-watch/internal/model"
	"github.com/sells-group/venture-watch/pkg/crunchbase"
)

const crunchbaseOrgURL = "https://www.crunchbase.com/organization/"

// Crunchbase collects recently announced funding rounds from the Crunchbase
// API, one organization lookup per round.
type Crunchbase struct {
	name   string
	label  string
	client crunchbase.Client
	limit  int
}

// NewCrunchbase creates a Crunchbase source. A non-positive limit uses the
// API default of 50 rounds.
func NewCrunchbase(name, label string, client crunchbase.Client, limit int) *Crunchbase {
	if label == "" {
		label = "Crunchbase"
	}
	return &Crunchbase{name: name, label: label, client: client, limit: limit}
}

func (c *Crunchbase) Name() string { return c.name }
func (c *Crunchbase) Kind() Kind   { return KindAPI }

// Collect returns one record per funding round whose organization could be
// resolved. Lookup failures skip the round.
func (c *Crunchbase) Collect(ctx context.Context, w Window) ([]model.Record, error) {
	rounds, err := c.client.SearchFundingRounds(ctx, crunchbase.FundingRoundQuery{
		Since: w.Since(),
		Until: w.Now,
		Limit: c.limit,
	})
	if err != nil {
		return nil, eris.Wrap(err, "source: crunchbase search")
	}

	orgs := make(map[string]*crunchbase.Organization)
	var out []model.Record
	for _, round := range rounds {
		if err := ctx.Err(); err != nil {
			return out, eris.Wrap(err, "source: crunchbase")
		}
		permalink := round.Organization.Permalink
		if permalink == "" {
			continue
		}
		org, ok := orgs[permalink]
		if !ok {
			org, err = c.client.GetOrganization(ctx, permalink)
			if err != nil {
				zap.L().Warn("source: crunchbase organization lookup failed",
					zap.String("permalink", permalink),
					zap.Error(err),
				)
				continue
			}
			orgs[permalink] = org
		}
		out = append(out, c.record(round, org))
	}
	stamp(out, c.label, w.Now)
	return out, nil
}

func (c *Crunchbase) record(round crunchbase.FundingRound, org *crunchbase.Organization) model.Record {
	r := model.Record{
		CompanyName:  org.Name(),
		URL:          crunchbaseOrgURL + round.Organization.Permalink,
		FundingRound: model.ParseFundingRound(round.InvestmentType),
		Location:     org.Location(),
		Description:  org.ShortDescription,
		Website:      org.WebsiteURL,
		Title:        round.Identifier.Value,
	}
	if r.CompanyName == "" {
		r.CompanyName = round.Organization.Value
	}
	if round.MoneyRaised != nil && round.MoneyRaised.ValueUSD > 0 {
		r.FundingAmount = model.Float(round.MoneyRaised.ValueUSD / 1e6)
	}
	if d, err := model.ParseDate(round.AnnouncedOn); err == nil {
		r.PublishedDate = d
	}
	for _, inv := range round.LeadInvestors {
		if inv.Value != "" {
			r.Investors = append(r.Investors, inv.Value)
		}
	}

	extra := make(map[string]any)
	if cats := org.CategoryNames(); len(cats) > 0 {
		r.Industry = cats[0]
		extra["categories"] = toAny(cats)
	}
	if org.NumEmployees != "" {
		extra["company_size"] = org.NumEmployees
	}
	if org.FoundedOn != nil && len(org.FoundedOn.Value) >= 4 {
		extra["founded_year"] = org.FoundedOn.Value[:4]
	}
	if len(extra) > 0 {
		r.Extra = extra
	}
	return r
}

func toAny(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
