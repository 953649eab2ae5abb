package article

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"
)

// Summarizer runs fetch, extraction, scoring and rewriting for one link.
type Summarizer struct {
	fetcher   *Fetcher
	extractor *Extractor
	topK      int
	log       *slog.Logger
}

func NewSummarizer(fetcher *Fetcher, extractor *Extractor, log *slog.Logger) *Summarizer {
	return &Summarizer{
		fetcher:   fetcher,
		extractor: extractor,
		topK:      TopSentences,
		log:       log,
	}
}

// Summarize never returns a partial summary: either the full text or an error.
func (s *Summarizer) Summarize(ctx context.Context, rawURL string) (Summary, error) {
	doc, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return Summary{}, fmt.Errorf("fetch: %w", err)
	}

	s.log.InfoContext(ctx, "Document is fetched",
		"url", doc.SourceURL,
		"proxy", doc.Proxy,
		"degraded", doc.Degraded,
		"bodyLen", doc.Len())

	text, err := s.extractor.Extract(doc.Body, doc.SourceURL)
	if err != nil {
		return Summary{}, fmt.Errorf("extract: %w", err)
	}

	selected, err := Select(text, s.topK)
	if err != nil {
		return Summary{}, fmt.Errorf("select sentences (textLen = %d): %w", utf8.RuneCountInString(text), err)
	}

	sentences := make([]string, 0, len(selected))
	for _, sentence := range selected {
		sentences = append(sentences, sentence.Text)
	}

	summaryText, err := Simplify(sentences)
	if err != nil {
		return Summary{}, fmt.Errorf("simplify (selected = %d): %w", len(selected), err)
	}

	s.log.InfoContext(ctx, "Summary is ready",
		"url", doc.SourceURL,
		"proxy", doc.Proxy,
		"degraded", doc.Degraded,
		"textLen", utf8.RuneCountInString(text),
		"selected", len(selected))

	return Summary{
		URL:       doc.SourceURL,
		Sentences: sentences,
		Text:      summaryText,
		Source:    doc.Proxy,
		Degraded:  doc.Degraded,
	}, nil
}
