package fetcher

import (
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// StreamXML decodes XML elements matching the given local name and sends them to a channel.
// The type parameter T must be a struct with appropriate xml tags.
// Both channels are closed when processing completes.
func StreamXML[T any](ctx context.Context, r io.Reader, elementName string) (<-chan T, <-chan error) {
	outCh := make(chan T, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		decoder := xml.NewDecoder(r)
		decoder.Strict = false
		decoder.Entity = xml.HTMLEntity
		decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
			enc, err := htmlindex.Get(charset)
			if err != nil {
				return nil, eris.Wrapf(err, "xml: unsupported charset %q", charset)
			}
			return enc.NewDecoder().Reader(input), nil
		}

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "xml: context cancelled")
				return
			}

			tok, err := decoder.Token()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "xml: read token")
				return
			}

			se, ok := tok.(xml.StartElement)
			if !ok || se.Name.Local != elementName {
				continue
			}

			var item T
			if err := decoder.DecodeElement(&item, &se); err != nil {
				errCh <- eris.Wrap(err, "xml: decode element")
				return
			}

			select {
			case outCh <- item:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "xml: context cancelled")
				return
			}
		}
	}()

	return outCh, errCh
}

// RSSItem is one <item> of an RSS 2.0 feed.
type RSSItem struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	PubDate     string    `xml:"pubDate"`
	Source      RSSSource `xml:"source"`
}

// RSSSource is the publisher attribution Google News attaches to each item.
type RSSSource struct {
	URL  string `xml:"url,attr"`
	Name string `xml:",chardata"`
}

// ParseRSS reads up to limit items from an RSS feed. A non-positive limit
// reads every item. Whitespace around text fields is trimmed.
func ParseRSS(ctx context.Context, r io.Reader, limit int) ([]RSSItem, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	itemCh, errCh := StreamXML[RSSItem](ctx, r, "item")

	var items []RSSItem
	for item := range itemCh {
		item.Title = strings.TrimSpace(item.Title)
		item.Link = strings.TrimSpace(item.Link)
		item.Description = strings.TrimSpace(item.Description)
		item.PubDate = strings.TrimSpace(item.PubDate)
		item.Source.Name = strings.TrimSpace(item.Source.Name)
		items = append(items, item)
		if limit > 0 && len(items) >= limit {
			cancel()
			break
		}
	}
	// Drain so the decoder goroutine can exit.
	for range itemCh {
	}
	if limit > 0 && len(items) >= limit {
		return items, nil
	}
	if err := <-errCh; err != nil {
		return items, eris.Wrap(err, "rss: parse feed")
	}
	return items, nil
}
