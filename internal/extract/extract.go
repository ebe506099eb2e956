// Package extract pulls startup-funding facts out of news headlines and
// article text with keyword and pattern heuristics.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/venture-watch/internal/model"
)

// maxCompanyName bounds a headline-derived company name. Longer captures are
// almost always a misparsed headline.
const maxCompanyName = 80

// placeWords matches one to four capitalized words of a place name.
const placeWords = `[A-Z][A-Za-z.'-]*(?:\s+[A-Z][A-Za-z.'-]*){0,3}`

var (
	headlinePrefixes = []string{"Exclusive:", "Breaking:", "Just in:"}

	// Each verb pattern yields the company as the text before the verb. The
	// guard must also match the headline for the verb to apply.
	headlineVerbs = []struct {
		verb  *regexp.Regexp
		guard *regexp.Regexp
	}{
		{regexp.MustCompile(`(?i)\s+announces\s`), regexp.MustCompile(`(?i)funding`)},
		{regexp.MustCompile(`(?i)\s+raises\s`), nil},
		{regexp.MustCompile(`(?i)\s+secures\s`), regexp.MustCompile(`(?i)funding`)},
		{regexp.MustCompile(`(?i)\s+gets\s`), regexp.MustCompile(`(?i)funding`)},
		{regexp.MustCompile(`(?i)\s+closes\s`), regexp.MustCompile(`(?i)round|funding`)},
	}

	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:raised|raises|raising|secured|secures|closed|closes|landed|lands)\s+(?:a\s+|an\s+)?\$\s?(\d+(?:\.\d+)?)\s?(million|billion|mn|bn|m|b)\b`),
		regexp.MustCompile(`(?i)\$\s?(\d+(?:\.\d+)?)\s?(million|billion|mn|bn|m|b)\b`),
		regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s?(million|billion)\s?(?:dollars|USD)\b`),
	}

	// Text round patterns require a round noun after seed/angel so that
	// phrases like "angel investor" in passing do not decide the round.
	textRoundPatterns = []struct {
		re    *regexp.Regexp
		round model.FundingRound
	}{
		{regexp.MustCompile(`(?i)\bpre-?seed\b`), model.RoundPreSeed},
		{regexp.MustCompile(`(?i)\bseed\s?(?:round|funding|investment|capital|financing)\b`), model.RoundSeed},
		{regexp.MustCompile(`(?i)\bseries\s?a\b`), model.RoundSeriesA},
		{regexp.MustCompile(`(?i)\bseries\s?b\b`), model.RoundSeriesB},
		{regexp.MustCompile(`(?i)\bseries\s?c\b`), model.RoundSeriesC},
		{regexp.MustCompile(`(?i)\bseries\s?d\b`), model.RoundSeriesD},
		{regexp.MustCompile(`(?i)\bseries\s?e\b`), model.RoundSeriesE},
		{regexp.MustCompile(`(?i)\bangel\s?(?:round|funding|investment)\b`), model.RoundAngel},
	}

	locationRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:[Bb]ased|[Hh]eadquartered|[Ll]ocated) in\s+(` + placeWords + `(?:,\s*` + placeWords + `)?)`),
		regexp.MustCompile(`((?:[A-Z][a-z.'-]+\s){0,2}[A-Z][a-z.'-]+)-based\b`),
	}
	locationStopwords = []string{"The ", "A ", "An "}

	investorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)round was led by ([^.;]+)`),
		regexp.MustCompile(`(?i)funding was led by ([^.;]+)`),
		regexp.MustCompile(`(?i)led by ([^.;]+)`),
		regexp.MustCompile(`(?i)investors include ([^.;]+)`),
		regexp.MustCompile(`(?i)investment from ([^.;]+)`),
		regexp.MustCompile(`(?i)with participation from ([^.;]+)`),
	}
	investorSplitRe = regexp.MustCompile(`(?i)\s*(?:,|\band\b|&)\s*`)
	investorTrimRe  = regexp.MustCompile(`(?i)^(?:(?:existing|new|other)\s+investors?|investors|(?:with\s+)?participation\s+from|with)(?:\s+|$)`)

	fundingKeywordRe = regexp.MustCompile(`(?i)\b(?:rais(?:e|es|ed|ing)|funding|investment|million|billion|seed|series)\b`)
)

// FromText extracts what it can from an article's text and headline. Fields
// that cannot be determined are left empty; the caller decides whether the
// record is usable.
func FromText(text, title string) model.Record {
	var r model.Record
	r.CompanyName = CompanyFromHeadline(title)

	// The headline often carries the amount and round when the body is a
	// short snippet.
	combined := title + "\n" + text
	if amount, ok := Amount(combined); ok {
		r.FundingAmount = model.Float(amount)
	}
	r.FundingRound = Round(title, text)
	r.Industry = Industry(combined)
	r.Location = Location(text)
	r.Investors = Investors(text)
	return r
}

// LooksLikeFunding reports whether a headline reads like a funding
// announcement.
func LooksLikeFunding(title string) bool {
	return fundingKeywordRe.MatchString(title)
}

// CleanHeadline removes a trailing " - Publisher" suffix that aggregators
// append to headlines.
func CleanHeadline(title, publisher string) string {
	title = strings.TrimSpace(title)
	if publisher != "" {
		title = strings.TrimSpace(strings.TrimSuffix(title, " - "+publisher))
	}
	return title
}

// CompanyFromHeadline returns the company named before a funding verb, or
// "" when the headline does not follow a known shape.
func CompanyFromHeadline(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	for _, hv := range headlineVerbs {
		if hv.guard != nil && !hv.guard.MatchString(title) {
			continue
		}
		loc := hv.verb.FindStringIndex(title)
		if loc == nil {
			continue
		}
		name := strings.TrimSpace(title[:loc[0]])
		for _, p := range headlinePrefixes {
			if len(name) >= len(p) && strings.EqualFold(name[:len(p)], p) {
				name = strings.TrimSpace(name[len(p):])
			}
		}
		name = strings.Trim(name, `"'‘’“”,:`)
		if name == "" || len(name) > maxCompanyName {
			return ""
		}
		return name
	}
	return ""
}

// Amount finds the first dollar amount in text, in millions of USD.
func Amount(text string) (float64, bool) {
	for _, re := range amountPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		switch strings.ToLower(m[2]) {
		case "billion", "bn", "b":
			v *= 1000
		}
		return v, true
	}
	return 0, false
}

// Round returns the funding round named in the headline, falling back to the
// article text.
func Round(title, text string) model.FundingRound {
	if r, ok := model.MatchFundingRound(title); ok {
		return r
	}
	for _, p := range textRoundPatterns {
		if p.re.MatchString(text) {
			return p.round
		}
	}
	return ""
}

// Location returns the headquarters location mentioned in text.
func Location(text string) string {
	for _, re := range locationRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		loc := strings.TrimSpace(strings.TrimSuffix(m[1], "-based"))
		for _, sw := range locationStopwords {
			loc = strings.TrimPrefix(loc, sw)
		}
		loc = strings.TrimRight(loc, ".,")
		if loc != "" {
			return loc
		}
	}
	return ""
}

// Investors returns the investors named after "led by" and similar phrases.
func Investors(text string) []string {
	for _, re := range investorPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		var out []string
		for _, part := range investorSplitRe.Split(m[1], -1) {
			part = trimInvestor(part)
			if len(part) < 2 {
				continue
			}
			out = append(out, part)
			if len(out) == 10 {
				break
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func trimInvestor(s string) string {
	s = strings.TrimSpace(s)
	for {
		trimmed := strings.TrimSpace(investorTrimRe.ReplaceAllString(s, ""))
		if trimmed == s {
			return strings.TrimRight(s, ",")
		}
		s = trimmed
	}
}
