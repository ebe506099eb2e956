package scrape

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// document is the metadata pulled from an HTML page.
type document struct {
	title     string
	links     []Link
	published string
}

// parseDocument walks the HTML tree for the title, absolute links, and the
// article publish time. Links are deduplicated by URL in document order.
func parseDocument(base *url.URL, body []byte) document {
	var doc document
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return doc
	}

	seen := make(map[string]bool)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Title:
				if doc.title == "" {
					doc.title = collapse(nodeText(n))
				}
			case atom.Meta:
				prop := attr(n, "property")
				if prop == "" {
					prop = attr(n, "name")
				}
				if doc.published == "" && (prop == "article:published_time" || prop == "parsely-pub-date") {
					doc.published = strings.TrimSpace(attr(n, "content"))
				}
			case atom.Time:
				if doc.published == "" {
					doc.published = strings.TrimSpace(attr(n, "datetime"))
				}
			case atom.A:
				if link, ok := resolveLink(base, attr(n, "href")); ok && !seen[link] {
					seen[link] = true
					doc.links = append(doc.links, Link{URL: link, Text: collapse(nodeText(n))})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return doc
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func resolveLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return "", false
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	u.Fragment = ""
	return u.String(), true
}

var (
	blockTagRes = func() []*regexp.Regexp {
		var res []*regexp.Regexp
		for _, tag := range []string{"script", "style", "nav", "footer", "header", "aside", "noscript"} {
			res = append(res, regexp.MustCompile(`(?is)<`+tag+`[^>]*>.*?</`+tag+`>`))
		}
		return res
	}()
	paragraphRe = regexp.MustCompile(`(?i)</?(p|div|h[1-6]|li|br|article|section)[^>]*>`)
	tagRe       = regexp.MustCompile(`<[^>]+>`)
	spaceRe     = regexp.MustCompile(`[ \t]+`)
	newlinesRe  = regexp.MustCompile(`\s*\n\s*`)
)

// PlainText converts an HTML page to text, one line per block element.
// Script, style and navigation blocks are dropped.
func PlainText(page string) string {
	for _, re := range blockTagRes {
		page = re.ReplaceAllString(page, "")
	}
	page = paragraphRe.ReplaceAllString(page, "\n")
	page = tagRe.ReplaceAllString(page, " ")
	page = strings.ReplaceAll(html.UnescapeString(page), "\u00a0", " ")
	page = spaceRe.ReplaceAllString(page, " ")
	page = newlinesRe.ReplaceAllString(page, "\n")
	return strings.TrimSpace(page)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var markdownLinkRe = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)\s]+)\)`)

// markdownLinks extracts [text](url) links from markdown in order.
func markdownLinks(md string) []Link {
	seen := make(map[string]bool)
	var out []Link
	for _, m := range markdownLinkRe.FindAllStringSubmatch(md, -1) {
		if seen[m[2]] {
			continue
		}
		seen[m[2]] = true
		out = append(out, Link{URL: m[2], Text: collapse(m[1])})
	}
	return out
}
