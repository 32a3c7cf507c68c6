package feed

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	xpp "github.com/mmcdole/goxpp"
	"golang.org/x/text/encoding/htmlindex"
)

// Parser is a tag-driven state machine over one RSS 2.0 or Atom document.
// RSS delimits articles with <item>, Atom with <entry>; both are treated
// identically. One Parser consumes one response body and is discarded, so
// there is no cross-document state to guard.
type Parser struct {
	current string
	inItem  bool

	title       strings.Builder
	link        string
	description strings.Builder
	pubDate     strings.Builder
	creator     strings.Builder
	imageURL    string
}

func NewParser() *Parser {
	return &Parser{}
}

// Run parses the document and returns the sealed items in document order.
// Malformed XML fails the whole document; a well-formed document with no
// item/entry elements yields an empty slice.
func (p *Parser) Run(data []byte) ([]Item, error) {
	pull := xpp.NewXMLPullParser(bytes.NewReader(data), false, charsetReader)

	var items []Item
	for {
		tok, err := pull.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to parse feed: %w", err)
		}

		switch tok {
		case xpp.EndDocument:
			return items, nil
		case xpp.StartTag:
			p.startElement(pull)
		case xpp.Text:
			p.characters(pull.Text)
		case xpp.EndTag:
			if item, ok := p.endElement(pull.Name); ok {
				items = append(items, item)
			}
		}
	}
}

// startElement crosses an item boundary, captures attribute-style links and
// media URLs, and records the element name for character accumulation.
func (p *Parser) startElement(pull *xpp.XMLPullParser) {
	name := elementName(pull.Name, pull.Space)
	p.current = name

	switch name {
	case "item", "entry":
		p.reset()
		p.inItem = true
	case "link":
		// Atom link-as-attribute style. An entry may carry several <link>
		// variants (self, alternate, enclosure); prefer rel="alternate",
		// otherwise keep the first seen.
		if href := pull.Attribute("href"); href != "" {
			if p.link == "" || pull.Attribute("rel") == "alternate" {
				p.link = href
			}
		}
	case "media:content", "enclosure":
		if p.imageURL == "" {
			if url := pull.Attribute("url"); url != "" {
				p.imageURL = url
			}
		}
	}
}

// characters appends a trimmed chunk into the accumulator matching the
// current element. Text may arrive in multiple chunks, so it accumulates
// rather than replaces; purely-whitespace chunks from pretty-printed XML are
// skipped.
func (p *Parser) characters(text string) {
	chunk := strings.TrimSpace(text)
	if chunk == "" {
		return
	}

	switch p.current {
	case "title":
		p.title.WriteString(chunk)
	case "link":
		p.link += chunk
	case "description", "summary":
		p.description.WriteString(chunk)
	case "pubDate", "published", "dc:date":
		p.pubDate.WriteString(chunk)
	case "dc:creator":
		p.creator.WriteString(chunk)
	}
}

// endElement seals an Item when an item/entry closes. This is the only point
// at which an item is emitted.
func (p *Parser) endElement(name string) (Item, bool) {
	p.current = ""
	if name != "item" && name != "entry" {
		return Item{}, false
	}

	if !p.inItem {
		return Item{}, false
	}
	p.inItem = false

	item := Item{
		Title:       strings.TrimSpace(p.title.String()),
		Link:        strings.TrimSpace(p.link),
		Description: strings.TrimSpace(p.description.String()),
		PubDateRaw:  strings.TrimSpace(p.pubDate.String()),
		Creator:     strings.TrimSpace(p.creator.String()),
		ImageURL:    p.imageURL,
	}
	normalize(&item)
	p.reset()
	return item, true
}

func (p *Parser) reset() {
	p.current = ""
	p.title.Reset()
	p.link = ""
	p.description.Reset()
	p.pubDate.Reset()
	p.creator.Reset()
	p.imageURL = ""
}

// normalize computes the derived fields once, at seal time.
func normalize(item *Item) {
	item.CleanTitle = StripHTML(item.Title)
	item.CleanDescription = StripHTML(item.Description)
	item.Date = ParseDate(item.PubDateRaw)
	item.DOI = ExtractDOI(*item)
	item.AbstractSections = SegmentAbstract(item.Description)
}

// elementName folds namespaced elements back into their feed-dialect
// spelling. The pull parser reports the resolved namespace in Space and the
// bare name in Name; undeclared prefixes come through as the prefix itself.
func elementName(name, space string) string {
	switch {
	case space == "dc" || strings.Contains(space, "purl.org/dc"):
		return "dc:" + name
	case space == "media" || strings.Contains(space, "search.yahoo.com/mrss"):
		return "media:" + name
	}
	return name
}

// charsetReader decodes non-UTF-8 feed bodies by their declared encoding
// label. Several journal feeds still ship ISO-8859-1 or Windows-1252.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}
