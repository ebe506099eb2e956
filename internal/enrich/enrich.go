// Package enrich asks Claude for the likely tech stack, hiring needs and
// product focus of collected startups.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/venture-watch/internal/collection"
	"github.com/sells-group/venture-watch/internal/metrics"
	"github.com/sells-group/venture-watch/internal/model"
	"github.com/sells-group/venture-watch/pkg/anthropic"
)

const (
	defaultMaxTokens     = 1024
	defaultMaxConcurrent = 3
	maxDescription       = 4000
)

const systemPrompt = `You are an expert technology analyst who specializes in identifying the technology stack and potential hiring needs of startups based on their description and industry.

Based solely on the information given, provide:
1. The likely technology stack this company uses (programming languages, frameworks, databases, cloud services)
2. Potential technical roles they might be hiring for
3. The company's main product focus

Respond with a single JSON object with these keys: "tech_stack" (list of strings), "hiring_needs" (list of strings), "product_focus" (string). Do not add commentary.`

const userPrompt = `Company: %s
Description: %s
Categories: %s`

// Analysis is the model's assessment of one company.
type Analysis struct {
	TechStack    []string `json:"tech_stack"`
	HiringNeeds  []string `json:"hiring_needs"`
	ProductFocus string   `json:"product_focus"`
}

// Empty reports whether the analysis carries nothing to merge.
func (a Analysis) Empty() bool {
	return len(a.TechStack) == 0 && len(a.HiringNeeds) == 0 && a.ProductFocus == ""
}

// Options configures an Enricher.
type Options struct {
	Model         string
	MaxTokens     int
	MaxConcurrent int
}

// Enricher runs enrichment prompts against the Anthropic API.
type Enricher struct {
	client anthropic.Client
	opts   Options
	system []anthropic.SystemBlock
}

// New creates an Enricher.
func New(client anthropic.Client, opts Options) *Enricher {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	return &Enricher{
		client: client,
		opts:   opts,
		system: anthropic.BuildCachedSystemBlocks(systemPrompt, ""),
	}
}

// Result summarizes an enrichment pass.
type Result struct {
	// Records holds the enriched copies, in input order.
	Records   []model.Record
	Attempted int
	Failed    int
	Usage     anthropic.TokenUsage
}

// NeedsEnrichment reports whether r is identifiable and has no product focus
// yet.
func NeedsEnrichment(r model.Record) bool {
	if _, ok := r.Key(); !ok {
		return false
	}
	return r.ProductFocus == ""
}

// Enrich analyzes every record that needs enrichment, at most limit of them
// when limit is positive. Per-record failures are logged and leave that
// record out of the result.
func (e *Enricher) Enrich(ctx context.Context, records []model.Record, limit int) *Result {
	var todo []model.Record
	for _, r := range records {
		if !NeedsEnrichment(r) {
			continue
		}
		todo = append(todo, r)
		if limit > 0 && len(todo) == limit {
			break
		}
	}

	res := &Result{Attempted: len(todo)}
	enriched := make([]*model.Record, len(todo))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.MaxConcurrent)

	for i, r := range todo {
		g.Go(func() error {
			a, usage, err := e.Analyze(gctx, r)

			mu.Lock()
			res.Usage = res.Usage.Add(usage)
			mu.Unlock()

			if err != nil {
				metrics.EnrichedRecords.WithLabelValues("failed").Inc()
				zap.L().Warn("enrich: analysis failed",
					zap.String("company", r.CompanyName),
					zap.Error(err),
				)
				return nil
			}
			out := Apply(r, a)
			enriched[i] = &out
			metrics.EnrichedRecords.WithLabelValues("ok").Inc()
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range enriched {
		if r == nil {
			res.Failed++
			continue
		}
		res.Records = append(res.Records, *r)
	}

	res.Usage.LogCost(e.opts.Model, "enrich")
	zap.L().Info("enrich: complete",
		zap.Int("attempted", res.Attempted),
		zap.Int("enriched", len(res.Records)),
		zap.Int("failed", res.Failed),
	)
	return res
}

// Analyze sends one record to the model and parses the reply.
func (e *Enricher) Analyze(ctx context.Context, r model.Record) (Analysis, anthropic.TokenUsage, error) {
	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     e.opts.Model,
		MaxTokens: int64(e.opts.MaxTokens),
		System:    e.system,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt(r)},
		},
	})
	if err != nil {
		return Analysis{}, anthropic.TokenUsage{}, eris.Wrapf(err, "enrich: analyze %s", r.CompanyName)
	}

	a, ok := Parse(resp.Text())
	if !ok {
		return Analysis{}, resp.Usage, eris.Errorf("enrich: no analysis in reply for %s", r.CompanyName)
	}
	return a, resp.Usage, nil
}

func prompt(r model.Record) string {
	desc := r.Description
	if desc == "" {
		desc = r.Title
	}
	return fmt.Sprintf(userPrompt, r.CompanyName, truncate(desc, maxDescription), strings.Join(categories(r), ", "))
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// categories lists the record's categories, falling back to its industry.
func categories(r model.Record) []string {
	var out []string
	if raw, ok := r.Extra["categories"].([]any); ok {
		for _, c := range raw {
			if s, ok := c.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	if len(out) == 0 && r.Industry != "" {
		out = append(out, r.Industry)
	}
	return out
}

// Apply returns a copy of r with the analysis merged in. Populated fields of
// r are kept.
func Apply(r model.Record, a Analysis) model.Record {
	out := r.Clone()
	if len(out.TechStack) == 0 {
		out.TechStack = compact(a.TechStack)
	}
	if len(out.HiringNeeds) == 0 {
		out.HiringNeeds = compact(a.HiringNeeds)
	}
	if out.ProductFocus == "" {
		out.ProductFocus = strings.TrimSpace(a.ProductFocus)
	}
	return out
}

// Parse reads the first JSON object in text. Replies that are not JSON fall
// back to section-header extraction.
func Parse(text string) (Analysis, bool) {
	var a Analysis
	if raw := cleanJSON(text); raw != "" {
		if err := json.Unmarshal([]byte(raw), &a); err == nil && !a.Empty() {
			return a, true
		}
	}
	a = parseSections(text)
	return a, !a.Empty()
}

// cleanJSON strips code fences and returns the outermost {...} span of text,
// or "" when there is none.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return strings.TrimSpace(text[start : end+1])
}

type section int

const (
	sectionNone section = iota
	sectionTech
	sectionHiring
	sectionProduct
)

// parseSections reads replies shaped as headed sections. A line naming a
// section switches to it; following lines without a colon are its content.
func parseSections(text string) Analysis {
	var a Analysis
	current := sectionNone
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "tech stack") || strings.Contains(lower, "technology stack"):
			current = sectionTech
			continue
		case strings.Contains(lower, "hiring") || strings.Contains(lower, "roles"):
			current = sectionHiring
			continue
		case strings.Contains(lower, "product") || strings.Contains(lower, "focus"):
			current = sectionProduct
			continue
		}
		if line == "" || strings.Contains(line, ":") {
			continue
		}
		line = strings.TrimSpace(strings.TrimLeft(line, "-*• "))
		switch current {
		case sectionTech:
			a.TechStack = append(a.TechStack, splitItems(line)...)
		case sectionHiring:
			a.HiringNeeds = append(a.HiringNeeds, splitItems(line)...)
		case sectionProduct:
			if a.ProductFocus != "" {
				a.ProductFocus += " "
			}
			a.ProductFocus += line
		}
	}
	return a
}

func splitItems(line string) []string {
	return compact(strings.Split(line, ","))
}

func compact(items []string) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Collection is the part of collection.Store enrichment reads and writes.
type Collection interface {
	Read() []model.Record
	Update(ctx context.Context, batch []model.Record) *collection.UpdateResult
}

// EnrichCollection enriches records of the stored collection and folds the
// enriched copies back in. The update is skipped when nothing was enriched.
func (e *Enricher) EnrichCollection(ctx context.Context, coll Collection, limit int) (*Result, *collection.UpdateResult) {
	res := e.Enrich(ctx, coll.Read(), limit)
	if len(res.Records) == 0 {
		return res, nil
	}
	return res, coll.Update(ctx, res.Records)
}
