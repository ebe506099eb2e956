// Package query filters and summarizes a loaded startup collection.
package query

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/venture-watch/internal/model"
)

const (
	recentDays       = 7
	defaultDateRange = 90
	topN             = 5
)

// Filter narrows a collection. Zero fields do not filter.
type Filter struct {
	Industry   string
	Round      model.FundingRound
	Location   string // case-insensitive substring
	MinFunding float64
	// Since keeps records discovered or published on or after this time.
	Since time.Time
}

// Match reports whether r passes every set condition of f.
func (f Filter) Match(r model.Record) bool {
	if f.Industry != "" && !strings.EqualFold(r.Industry, f.Industry) {
		return false
	}
	if f.Round != "" && !strings.EqualFold(string(r.FundingRound), string(f.Round)) {
		return false
	}
	if f.Location != "" && !strings.Contains(strings.ToLower(r.Location), strings.ToLower(f.Location)) {
		return false
	}
	if f.MinFunding > 0 && (r.FundingAmount == nil || *r.FundingAmount < f.MinFunding) {
		return false
	}
	if !f.Since.IsZero() {
		cutoff := model.DateOf(f.Since)
		discovered := !r.DiscoveryDate.IsZero() && !r.DiscoveryDate.Before(cutoff)
		published := !r.PublishedDate.IsZero() && !r.PublishedDate.Before(cutoff)
		if !discovered && !published {
			return false
		}
	}
	return true
}

// Apply returns the records matching f, in collection order.
func (f Filter) Apply(records []model.Record) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// ParsePeriod converts a period label to a day count. Zero means all time.
// Accepted forms: "All time", "Last 7 days", "7d", "7".
func ParsePeriod(period string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(period))
	switch s {
	case "", "all", "all time":
		return 0, nil
	}
	s = strings.TrimPrefix(s, "last ")
	s = strings.TrimSuffix(s, " days")
	s = strings.TrimSuffix(s, " day")
	s = strings.TrimSuffix(s, "d")
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, eris.Errorf("query: invalid period %q", period)
	}
	return n, nil
}

// Since returns the cutoff for a period of days ending at now, or the zero
// time for all time.
func Since(now time.Time, days int) time.Time {
	if days <= 0 {
		return time.Time{}
	}
	return now.AddDate(0, 0, -days)
}

// UniqueValues lists the distinct non-empty values of a filterable field
// (industry, funding_round, location, source), sorted.
func UniqueValues(records []model.Record, field string) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		v := fieldValue(r, field)
		if v == "" {
			continue
		}
		seen[v] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func fieldValue(r model.Record, field string) string {
	switch field {
	case model.FieldIndustry:
		return r.Industry
	case model.FieldFundingRound:
		return string(r.FundingRound)
	case model.FieldLocation:
		return r.Location
	case model.FieldSource:
		return r.Source
	}
	return ""
}

// FundingRange returns the smallest and largest funding amounts, rounded
// outward to whole millions. It is 0 to 100 when no record has an amount.
func FundingRange(records []model.Record) (lo, hi float64) {
	found := false
	for _, r := range records {
		if r.FundingAmount == nil {
			continue
		}
		v := *r.FundingAmount
		if !found {
			lo, hi, found = v, v, true
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if !found {
		return 0, 100
	}
	return math.Floor(lo), math.Ceil(hi)
}

// DateRange returns the earliest and latest discovery dates. It is the 90
// days ending at now when no record has one.
func DateRange(records []model.Record, now time.Time) (from, to model.Date) {
	for _, r := range records {
		d := r.DiscoveryDate
		if d.IsZero() {
			continue
		}
		if from.IsZero() || d.Before(from) {
			from = d
		}
		if to.IsZero() || to.Before(d) {
			to = d
		}
	}
	if from.IsZero() {
		return model.DateOf(now.AddDate(0, 0, -defaultDateRange)), model.DateOf(now)
	}
	return from, to
}

// Find returns the first record whose company name equals name, ignoring
// case.
func Find(records []model.Record, name string) (model.Record, bool) {
	name = strings.TrimSpace(name)
	for _, r := range records {
		if strings.EqualFold(strings.TrimSpace(r.CompanyName), name) {
			return r, true
		}
	}
	return model.Record{}, false
}
