package article

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

const (
	MaxExtractedChars   = 8000
	MinSubstantialChars = 200

	Ellipsis = "..."

	noiseSelectors = "script, style, noscript, nav, header, footer, aside, iframe, form, svg, " +
		".ad, .ads, .advert, .advertisement, [class*='advert'], [id*='advert'], " +
		".sponsored, .social-share, .newsletter"
)

// contentSelectors are likely main content containers, most specific first.
//
//nolint:gochecknoglobals // Read-only lookup list.
var contentSelectors = []string{
	"article",
	"[role='main']",
	"main",
	".article-content",
	".article-body",
	".story-body",
	".post-content",
	".entry-content",
	"#content",
	".content",
}

//nolint:gochecknoglobals // Read-only lookup table.
var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "cite": true, "code": true, "em": true,
	"i": true, "mark": true, "q": true, "small": true, "span": true, "strong": true,
	"sub": true, "sup": true, "time": true, "u": true,
}

type Extractor struct {
	log *slog.Logger
}

func NewExtractor(log *slog.Logger) *Extractor {
	return &Extractor{log: log}
}

// Extract turns markup into normalized plain text capped at MaxExtractedChars.
// Short text is not an error: callers proceed with whatever was obtained.
// Markup that yields no text at all returns ErrEmptyDocument.
func (e *Extractor) Extract(markup string, pageURL string) (string, error) {
	if strings.TrimSpace(markup) == "" {
		return "", ErrEmptyDocument
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("%w: create document from reader: %w", ErrExtraction, err)
	}

	doc.Find(noiseSelectors).Remove()

	for _, selector := range contentSelectors {
		candidate := Normalize(selectionText(doc.Find(selector).First()))
		if utf8.RuneCountInString(candidate) > MinSubstantialChars {
			e.log.Debug("Content container is found",
				"selector", selector,
				"url", pageURL,
				"textLen", utf8.RuneCountInString(candidate))

			return Truncate(candidate, MaxExtractedChars), nil
		}
	}

	body := doc.Find("body").First()
	if body.Length() == 0 {
		body = doc.Selection
	}

	text := Normalize(selectionText(body))

	// Noise removal drops stories wrapped in a form or header; readability
	// reads the untouched markup.
	if utf8.RuneCountInString(text) <= MinSubstantialChars {
		if readable := readabilityText(markup, pageURL); utf8.RuneCountInString(readable) > MinSubstantialChars {
			e.log.Debug("Readability content is used",
				"url", pageURL,
				"bodyLen", utf8.RuneCountInString(text),
				"textLen", utf8.RuneCountInString(readable))

			text = readable
		}
	}

	if text == "" {
		return "", fmt.Errorf("%w: no text outside noise elements", ErrEmptyDocument)
	}

	return Truncate(text, MaxExtractedChars), nil
}

func readabilityText(markup string, pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	parsed, err := readability.FromReader(strings.NewReader(markup), u)
	if err != nil {
		return ""
	}

	return Normalize(parsed.TextContent)
}

// selectionText joins text nodes with spaces so adjacent blocks don't fuse.
func selectionText(s *goquery.Selection) string {
	var b strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if !inlineTags[n.Data] {
				b.WriteByte(' ')
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && !inlineTags[n.Data] {
			b.WriteByte(' ')
		}
	}

	for _, n := range s.Nodes {
		walk(n)
	}

	return b.String()
}

// Normalize collapses whitespace runs into single spaces and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Truncate keeps the first limit runes and marks the cut with Ellipsis.
func Truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}

	return string([]rune(text)[:limit]) + Ellipsis
}
