package query

import (
	"math"
	"sort"
	"time"

	"github.com/sells-group/venture-watch/internal/model"
)

// Count is a value and how many records carry it.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Summary holds headline metrics for a collection. Funding is in millions.
type Summary struct {
	TotalStartups  int     `json:"total_startups"`
	TotalFunding   float64 `json:"total_funding"`
	AvgFunding     float64 `json:"avg_funding"`
	RecentStartups int     `json:"recent_startups"`
	TopIndustry    string  `json:"top_industry,omitempty"`
	TopRound       string  `json:"top_round,omitempty"`
	TopIndustries  []Count `json:"top_industries"`
	TopRounds      []Count `json:"top_rounds"`
}

// Summarize computes headline metrics. The average covers records with an
// amount; recent counts records discovered in the last 7 days.
func Summarize(records []model.Record, now time.Time) Summary {
	s := Summary{
		TotalStartups: len(records),
		TopIndustries: Top(records, model.FieldIndustry, topN),
		TopRounds:     Top(records, model.FieldFundingRound, topN),
	}

	funded := 0
	cutoff := model.DateOf(now.AddDate(0, 0, -recentDays))
	for _, r := range records {
		if r.FundingAmount != nil {
			s.TotalFunding += *r.FundingAmount
			funded++
		}
		if !r.DiscoveryDate.IsZero() && !r.DiscoveryDate.Before(cutoff) {
			s.RecentStartups++
		}
	}
	if funded > 0 {
		s.AvgFunding = round2(s.TotalFunding / float64(funded))
	}
	s.TotalFunding = round2(s.TotalFunding)

	if len(s.TopIndustries) > 0 {
		s.TopIndustry = s.TopIndustries[0].Value
	}
	if len(s.TopRounds) > 0 {
		s.TopRound = s.TopRounds[0].Value
	}
	return s
}

// Top returns the n most common values of field, most common first. Ties
// break alphabetically.
func Top(records []model.Record, field string, n int) []Count {
	counts := make(map[string]int)
	for _, r := range records {
		if v := fieldValue(r, field); v != "" {
			counts[v]++
		}
	}
	out := make([]Count, 0, len(counts))
	for v, c := range counts {
		out = append(out, Count{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Group is the funding total of records sharing one field value.
type Group struct {
	Value   string  `json:"value"`
	Count   int     `json:"count"`
	Funding float64 `json:"funding"`
}

// FundingBy totals funding per value of field, largest total first. Records
// without a value are grouped under "Unknown".
func FundingBy(records []model.Record, field string) []Group {
	idx := make(map[string]int)
	var out []Group
	for _, r := range records {
		v := fieldValue(r, field)
		if v == "" {
			v = "Unknown"
		}
		i, ok := idx[v]
		if !ok {
			i = len(out)
			idx[v] = i
			out = append(out, Group{Value: v})
		}
		out[i].Count++
		out[i].Funding += r.Amount()
	}
	for i := range out {
		out[i].Funding = round2(out[i].Funding)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Funding > out[j].Funding })
	return out
}

// Point is one day of the funding timeline.
type Point struct {
	Date       model.Date `json:"date"`
	Funding    float64    `json:"funding"`
	Cumulative float64    `json:"cumulative"`
}

// Timeline sums funding per discovery date, oldest first, with a running
// total. Records without a discovery date are skipped.
func Timeline(records []model.Record) []Point {
	byDay := make(map[model.Date]float64)
	for _, r := range records {
		if r.DiscoveryDate.IsZero() {
			continue
		}
		byDay[r.DiscoveryDate] += r.Amount()
	}
	out := make([]Point, 0, len(byDay))
	for d, f := range byDay {
		out = append(out, Point{Date: d, Funding: f})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	total := 0.0
	for i := range out {
		total += out[i].Funding
		out[i].Funding = round2(out[i].Funding)
		out[i].Cumulative = round2(total)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
