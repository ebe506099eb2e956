// Package benchmark measures what the news-site scrapers add over the API and
// search sources alone.
package benchmark

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/venture-watch/internal/model"
	"github.com/sells-group/venture-watch/internal/reconcile"
	"github.com/sells-group/venture-watch/internal/source"
)

// TrackedFields are the fields whose completion is compared.
var TrackedFields = []string{
	model.FieldCompanyName,
	model.FieldFundingAmount,
	model.FieldFundingRound,
	model.FieldIndustry,
	model.FieldLocation,
	model.FieldDescription,
	model.FieldInvestors,
	model.FieldURL,
}

const (
	maxExamples = 5

	KeyCountPercent  = "count_percent"
	KeyFieldsPercent = "avg_fields_populated_percent"
	fieldKeyPrefix   = "field_completion."
)

// FieldKey returns the improvements key for a tracked field.
func FieldKey(field string) string {
	return fieldKeyPrefix + field
}

// Saver persists benchmark results.
type Saver interface {
	SaveBenchmark(ctx context.Context, b *model.Benchmark) error
}

// Runner collects twice, once without scrapers and once with every source,
// and compares the deduplicated results.
type Runner struct {
	sources       []source.Source
	maxConcurrent int
	saver         Saver
	now           func() time.Time
}

// NewRunner creates a runner. saver may be nil to skip persistence.
func NewRunner(sources []source.Source, maxConcurrent int, saver Saver) *Runner {
	return &Runner{
		sources:       sources,
		maxConcurrent: maxConcurrent,
		saver:         saver,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Run executes the benchmark over the last daysBack days.
func (r *Runner) Run(ctx context.Context, daysBack int) (*model.Benchmark, error) {
	var apiSources []source.Source
	for _, s := range r.sources {
		if s.Kind() != source.KindScraper {
			apiSources = append(apiSources, s)
		}
	}
	if len(apiSources) == len(r.sources) {
		zap.L().Warn("benchmark: no scraper sources enabled, comparison will show no difference")
	}

	w := source.Window{DaysBack: daysBack, Now: r.now()}

	apiOnly, apiElapsed := r.collect(ctx, apiSources, w)
	zap.L().Info("benchmark: api only",
		zap.Int("unique", len(apiOnly)),
		zap.Duration("elapsed", apiElapsed),
	)

	combined, allElapsed := r.collect(ctx, r.sources, w)
	zap.L().Info("benchmark: with scrapers",
		zap.Int("unique", len(combined)),
		zap.Duration("elapsed", allElapsed),
	)

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "benchmark: cancelled")
	}

	b := Compare(apiOnly, combined)
	b.ID = uuid.New().String()
	b.DaysBack = daysBack
	b.APIOnlyMS = apiElapsed.Milliseconds()
	b.WithScrapersMS = allElapsed.Milliseconds()
	b.CreatedAt = r.now()

	if r.saver != nil {
		if err := r.saver.SaveBenchmark(ctx, b); err != nil {
			return b, eris.Wrap(err, "benchmark: save")
		}
	}
	return b, nil
}

func (r *Runner) collect(ctx context.Context, sources []source.Source, w source.Window) ([]model.Record, time.Duration) {
	start := time.Now()
	batches := source.NewCollector(sources, r.maxConcurrent).Collect(ctx, w)
	return reconcile.Deduplicate(source.Records(batches)...), time.Since(start)
}

// Compare builds a benchmark from the API-only and combined record sets.
func Compare(apiOnly, combined []model.Record) *model.Benchmark {
	api := Stats(apiOnly)
	all := Stats(combined)
	unique := UniqueTo(combined, apiOnly)

	examples := unique
	if len(examples) > maxExamples {
		examples = examples[:maxExamples]
	}
	return &model.Benchmark{
		APIOnly:          api,
		WithScrapers:     all,
		Improvements:     Improvements(api, all),
		UniqueToScrapers: len(unique),
		UniqueExamples:   examples,
	}
}

// Stats summarizes records for comparison. Completion values are percents.
func Stats(records []model.Record) model.CollectionStats {
	st := model.CollectionStats{
		TotalEntries:    len(records),
		FieldCompletion: make(map[string]float64, len(TrackedFields)),
		Industries:      make(map[string]int),
		Rounds:          make(map[string]int),
	}
	for _, f := range TrackedFields {
		st.FieldCompletion[f] = 0
	}
	if len(records) == 0 {
		return st
	}

	populated := 0
	funded := 0
	for _, rec := range records {
		for _, f := range TrackedFields {
			if rec.Has(f) {
				st.FieldCompletion[f]++
				populated++
			}
		}
		if rec.Industry != "" {
			st.Industries[rec.Industry]++
		}
		if rec.FundingRound != "" {
			st.Rounds[string(rec.FundingRound)]++
		}
		if rec.FundingAmount != nil {
			funded++
			st.TotalFunding += *rec.FundingAmount
		}
	}

	n := float64(len(records))
	for f, c := range st.FieldCompletion {
		st.FieldCompletion[f] = round2(c / n * 100)
	}
	st.AvgFieldsPopulated = round2(float64(populated) / n)
	if funded > 0 {
		st.AvgFunding = round2(st.TotalFunding / float64(funded))
	}
	st.TotalFunding = round2(st.TotalFunding)
	return st
}

// Improvements compares combined against API-only stats. Count and
// fields-populated changes are relative percents; field completion changes
// are percentage-point differences. A zero baseline reports 100.
func Improvements(api, combined model.CollectionStats) map[string]float64 {
	out := make(map[string]float64, len(TrackedFields)+2)

	out[KeyCountPercent] = relative(float64(api.TotalEntries), float64(combined.TotalEntries))
	out[KeyFieldsPercent] = relative(api.AvgFieldsPopulated, combined.AvgFieldsPopulated)

	for f, rate := range combined.FieldCompletion {
		base, ok := api.FieldCompletion[f]
		switch {
		case !ok:
			out[FieldKey(f)] = rate
		case base == 0:
			out[FieldKey(f)] = 100
		default:
			out[FieldKey(f)] = round2(rate - base)
		}
	}
	return out
}

func relative(base, v float64) float64 {
	if base == 0 {
		return 100
	}
	return round2((v - base) / base * 100)
}

// UniqueTo returns the company names in combined that do not appear in
// baseline, compared case-insensitively, in combined order.
func UniqueTo(combined, baseline []model.Record) []string {
	seen := make(map[string]bool, len(baseline))
	for _, r := range baseline {
		if r.CompanyName != "" {
			seen[strings.ToLower(r.CompanyName)] = true
		}
	}
	var out []string
	for _, r := range combined {
		name := strings.ToLower(r.CompanyName)
		if r.CompanyName == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, r.CompanyName)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
