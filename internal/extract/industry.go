package extract

import (
	"regexp"
	"strings"
)

// industryKeywords is checked in order; the first industry with a keyword
// present wins.
var industryKeywords = []struct {
	name     string
	keywords []string
}{
	{"AI", []string{"artificial intelligence", "machine learning", "AI", "deep learning", "neural networks", "NLP", "computer vision", "generative"}},
	{"Fintech", []string{"fintech", "financial technology", "banking", "payments", "insurtech", "regtech", "lending"}},
	{"Healthcare", []string{"healthcare", "health tech", "healthtech", "medical", "biotech", "life sciences", "pharma", "telemedicine"}},
	{"Cybersecurity", []string{"cybersecurity", "security", "infosec", "data protection", "encryption"}},
	{"EdTech", []string{"education technology", "edtech", "learning platform", "e-learning", "online education"}},
	{"Cloud", []string{"cloud computing", "SaaS", "PaaS", "IaaS", "cloud infrastructure", "cloud services"}},
	{"E-commerce", []string{"e-commerce", "ecommerce", "online retail", "D2C", "direct-to-consumer", "retail tech"}},
	{"Mobile", []string{"mobile app", "smartphone", "iOS", "Android", "mobile platform"}},
	{"Web3", []string{"web3", "blockchain", "crypto", "NFT", "DeFi", "decentralized", "cryptocurrency"}},
	{"Enterprise", []string{"enterprise software", "B2B", "business software"}},
	{"Clean Tech", []string{"clean tech", "cleantech", "clean energy", "renewable", "climate tech", "sustainability"}},
	{"Gaming", []string{"gaming", "video games", "game development", "esports"}},
	{"Robotics", []string{"robotics", "robots", "autonomous systems", "automation"}},
}

type industryMatcher struct {
	name string
	re   *regexp.Regexp
}

var industryMatchers = func() []industryMatcher {
	out := make([]industryMatcher, 0, len(industryKeywords))
	for _, ind := range industryKeywords {
		quoted := make([]string, len(ind.keywords))
		for i, k := range ind.keywords {
			quoted[i] = regexp.QuoteMeta(k)
		}
		out = append(out, industryMatcher{
			name: ind.name,
			re:   regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
		})
	}
	return out
}()

// Industry classifies text by keyword. Keywords match on word boundaries so
// "AI" does not match inside "said".
func Industry(text string) string {
	for _, m := range industryMatchers {
		if m.re.MatchString(text) {
			return m.name
		}
	}
	return ""
}

// Industries lists every industry whose keywords appear in text, in table
// order.
func Industries(text string) []string {
	var out []string
	for _, m := range industryMatchers {
		if m.re.MatchString(text) {
			out = append(out, m.name)
		}
	}
	return out
}
