package article

import "errors"

var (
	ErrInvalidURL          = errors.New("invalid URL")
	ErrEmptyDocument       = errors.New("document is empty")
	ErrExtraction          = errors.New("extraction failed")
	ErrNoMeaningfulContent = errors.New("no meaningful content")
)

// RawDocument is the page markup retrieved for a single summarization request.
type RawDocument struct {
	SourceURL string
	// Proxy names the strategy that produced Body, or FallbackProxyName.
	Proxy string
	Body  string
	// Degraded is set when Body was synthesized because every strategy failed.
	Degraded bool
}

func (d RawDocument) Len() int {
	return len(d.Body)
}

// ScoredSentence is a sentence of the extracted text with its relevance score.
// Position is the ordinal among kept sentences and is the display order key.
type ScoredSentence struct {
	Text     string
	Score    int
	Position int
}

type Summary struct {
	URL       string
	Sentences []string
	Text      string
	Source    string
	Degraded  bool
}
