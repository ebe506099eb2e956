package model

import (
	"regexp"
	"strconv"
	"strings"
)

// FundingRound is a canonical funding-round label. Labels that do not match
// a known round are kept verbatim.
type FundingRound string

const (
	RoundPreSeed FundingRound = "Pre-Seed"
	RoundSeed    FundingRound = "Seed"
	RoundAngel   FundingRound = "Angel"
	RoundSeriesA FundingRound = "Series A"
	RoundSeriesB FundingRound = "Series B"
	RoundSeriesC FundingRound = "Series C"
	RoundSeriesD FundingRound = "Series D"
	RoundSeriesE FundingRound = "Series E"
	RoundUnknown FundingRound = "Unknown"
)

// roundPatterns is checked in order; pre-seed must precede seed.
var roundPatterns = []struct {
	re    *regexp.Regexp
	round FundingRound
}{
	{regexp.MustCompile(`(?i)\bpre[\s_-]?seed\b`), RoundPreSeed},
	{regexp.MustCompile(`(?i)\bseed\b`), RoundSeed},
	{regexp.MustCompile(`(?i)\bangel\b`), RoundAngel},
	{regexp.MustCompile(`(?i)\bseries[\s_-]?a\b`), RoundSeriesA},
	{regexp.MustCompile(`(?i)\bseries[\s_-]?b\b`), RoundSeriesB},
	{regexp.MustCompile(`(?i)\bseries[\s_-]?c\b`), RoundSeriesC},
	{regexp.MustCompile(`(?i)\bseries[\s_-]?d\b`), RoundSeriesD},
	{regexp.MustCompile(`(?i)\bseries[\s_-]?e\b`), RoundSeriesE},
	{regexp.MustCompile(`(?i)^unknown$`), RoundUnknown},
}

// ParseFundingRound canonicalizes s. Crunchbase investment types such as
// "series_a" and "pre_seed" are recognized. Unrecognized text is returned
// trimmed but otherwise unchanged.
func ParseFundingRound(s string) FundingRound {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if r, ok := MatchFundingRound(s); ok {
		return r
	}
	return FundingRound(s)
}

// MatchFundingRound finds the first known round mentioned in text.
func MatchFundingRound(text string) (FundingRound, bool) {
	for _, p := range roundPatterns {
		if p.re.MatchString(text) {
			return p.round, true
		}
	}
	return "", false
}

var amountRe = regexp.MustCompile(`(?i)^\$?\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*(billion|bn|b|million|mm|m|thousand|k)?$`)

// ParseFundingAmount parses a textual amount into millions of USD.
// "$5M", "5 million" and "5" all yield 5; "1.2B" yields 1200; "750K" yields
// 0.75.
func ParseFundingAmount(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "USD"))
	m := amountRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToLower(m[2]) {
	case "billion", "bn", "b":
		v *= 1000
	case "thousand", "k":
		v /= 1000
	}
	return v, true
}
