package article

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	TopSentences     = 3
	MinSentenceChars = 20

	keywordWordScore = 2

	substantialMinChars = 50
	substantialMaxChars = 200

	leadingPositionShare = 0.3
)

// financialKeywords are matched as substrings of lower-cased words.
//
//nolint:gochecknoglobals // Read-only lookup list.
var financialKeywords = []string{
	// markets
	"stock", "share", "market", "trading", "trader", "index", "nasdaq", "wallstreet",
	// metrics
	"revenue", "profit", "earning", "loss", "margin", "dividend", "valuation",
	// business
	"company", "companies", "merger", "acquisition", "ipo",
	// economy
	"economy", "economic", "inflation", "recession", "gdp", "unemployment",
	// monetary
	"interest", "rate", "federal", "bank", "bond",
	// movement
	"increase", "decrease", "growth", "decline", "surge", "plunge",
	// roles
	"invest", "ceo", "analyst",
	// reports
	"report", "quarter", "forecast",
	// scale
	"billion", "million",
	// crypto
	"crypto", "bitcoin",
}

// Split breaks text into candidate sentences and drops fragments shorter than
// MinSentenceChars. Terminal punctuation only ends a sentence when followed by
// whitespace or the end of text, so "4.5%" and "example.com" stay whole.
func Split(text string) []ScoredSentence {
	runes := []rune(text)

	var sentences []ScoredSentence
	start := 0

	flush := func(end int) {
		fragment := strings.TrimLeftFunc(strings.TrimSpace(string(runes[start:end])), isTerminalOrSpace)
		start = end

		if utf8.RuneCountInString(fragment) < MinSentenceChars {
			return
		}

		sentences = append(sentences, ScoredSentence{
			Text:     fragment,
			Position: len(sentences),
		})
	}

	for i, r := range runes {
		if !isTerminal(r) {
			continue
		}

		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}

		flush(i + 1)
	}

	if start < len(runes) {
		flush(len(runes))
	}

	return sentences
}

// ScoreSentence weighs keyword hits, length band, leading position and numerals.
func ScoreSentence(sentence string, position int, total int) int {
	score := 0

	for _, word := range strings.Fields(strings.ToLower(sentence)) {
		if containsKeyword(word) {
			score += keywordWordScore
		}
	}

	if n := utf8.RuneCountInString(sentence); n >= substantialMinChars && n <= substantialMaxChars {
		score++
	}

	if float64(position) < leadingPositionShare*float64(total) {
		score++
	}

	if strings.IndexFunc(sentence, unicode.IsDigit) >= 0 {
		score++
	}

	return score
}

// Select returns the top k sentences with a positive score in reading order.
func Select(text string, k int) ([]ScoredSentence, error) {
	sentences := Split(text)
	if len(sentences) == 0 {
		return nil, ErrNoMeaningfulContent
	}

	scored := make([]ScoredSentence, 0, len(sentences))
	for _, s := range sentences {
		s.Score = ScoreSentence(s.Text, s.Position, len(sentences))
		if s.Score > 0 {
			scored = append(scored, s)
		}
	}

	slices.SortStableFunc(scored, func(a, b ScoredSentence) int {
		return cmp.Compare(b.Score, a.Score)
	})

	selected := scored[:min(max(k, 0), len(scored))]

	slices.SortFunc(selected, func(a, b ScoredSentence) int {
		return cmp.Compare(a.Position, b.Position)
	})

	return selected, nil
}

func containsKeyword(word string) bool {
	for _, keyword := range financialKeywords {
		if strings.Contains(word, keyword) {
			return true
		}
	}

	return false
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isTerminalOrSpace(r rune) bool {
	return isTerminal(r) || unicode.IsSpace(r)
}
