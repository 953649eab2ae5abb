package bot

import (
	"strings"
	"unicode/utf8"
)

const telegramMessageMaxLength = 4096

// Taken from https://core.telegram.org/bots/api#markdownv2-style.
const mdV2SpecialChars = `\_*[]()~>#+-=|{}.!` + "`"

//nolint:gochecknoglobals // Lookup table meant to be immutable.
var mdV2Lookup = func() [256]bool {
	var m [256]bool
	for i := range len(mdV2SpecialChars) {
		m[mdV2SpecialChars[i]] = true
	}
	return m
}()

func escapeMarkdownV2(input string) string {
	return escapeBytes(input, &mdV2Lookup)
}

// escapeLinkURL escapes the characters MarkdownV2 reserves inside (...) of
// an inline link.
func escapeLinkURL(input string) string {
	var lookup [256]bool
	lookup[')'] = true
	lookup['\\'] = true

	return escapeBytes(input, &lookup)
}

func escapeBytes(input string, lookup *[256]bool) string {
	charsToEscape := 0
	for i := range len(input) {
		if lookup[input[i]] {
			charsToEscape++
		}
	}

	if charsToEscape == 0 {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + charsToEscape)

	for i := range len(input) {
		c := input[i]
		if lookup[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

// splitMessage cuts already escaped text into chunks of at most limit bytes,
// preferring line breaks and never splitting a rune or an escape pair.
func splitMessage(text string, limit int) []string {
	var chunks []string

	for len(text) > limit {
		cut := strings.LastIndexByte(text[:limit], '\n')
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut > 0 && danglingEscape(text[:cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
		} else {
			cut++
		}

		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}

	if strings.TrimSpace(text) != "" {
		chunks = append(chunks, text)
	}

	return chunks
}

// danglingEscape reports whether s ends with an odd run of backslashes.
func danglingEscape(s string) bool {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}

	return n%2 == 1
}
