package bot

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEscapeMarkdownV2(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain text", "plain text"},
		{"1. Up 5% (today)!", `1\. Up 5% \(today\)\!`},
		{`a_b*c\d`, `a\_b\*c\\d`},
		{"", ""},
	}

	for _, test := range tests {
		if got := escapeMarkdownV2(test.input); got != test.want {
			t.Fatalf("escapeMarkdownV2(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestEscapeLinkURL(t *testing.T) {
	got := escapeLinkURL(`https://example.com/a_(b)\c`)
	if want := `https://example.com/a_(b\)\\c`; got != want {
		t.Fatalf("escapeLinkURL = %q, want %q", got, want)
	}
}

func TestSplitMessagePrefersLineBreaks(t *testing.T) {
	line := strings.Repeat("x", 30) + "\n"
	text := strings.Repeat(line, 10)

	chunks := splitMessage(text, 100)

	if strings.Join(chunks, "") != text {
		t.Fatalf("chunks do not reassemble the text")
	}

	for _, chunk := range chunks {
		if len(chunk) > 100 {
			t.Fatalf("chunk is too long: %d", len(chunk))
		}
		if !strings.HasSuffix(chunk, "\n") {
			t.Fatalf("expected chunk to end at a line break: %q", chunk)
		}
	}
}

func TestSplitMessageKeepsRunesAndEscapes(t *testing.T) {
	text := strings.Repeat(`a\.ä`, 20)

	chunks := splitMessage(text, 5)

	if strings.Join(chunks, "") != text {
		t.Fatalf("chunks do not reassemble the text")
	}

	for _, chunk := range chunks {
		if len(chunk) > 5 {
			t.Fatalf("chunk is too long: %q", chunk)
		}
		if !utf8.ValidString(chunk) {
			t.Fatalf("chunk splits a rune: %q", chunk)
		}
		if danglingEscape(chunk) {
			t.Fatalf("chunk ends with a dangling escape: %q", chunk)
		}
	}
}

func TestSplitMessageDoesNotEndOnBackslash(t *testing.T) {
	text := strings.Repeat(`ab\.`, 10)

	chunks := splitMessage(text, 3)

	if strings.Join(chunks, "") != text {
		t.Fatalf("chunks do not reassemble the text")
	}

	for _, chunk := range chunks {
		if danglingEscape(chunk) {
			t.Fatalf("chunk ends with a dangling escape: %q", chunk)
		}
	}
}

func TestSplitMessageShortText(t *testing.T) {
	if chunks := splitMessage("hello", 4096); len(chunks) != 1 || chunks[0] != "hello" {
		t.Fatalf("unexpected chunks: %q", chunks)
	}

	if chunks := splitMessage("  ", 4096); len(chunks) != 0 {
		t.Fatalf("expected no chunks for blank text, got %q", chunks)
	}
}
