package article_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"finkid/internal/article"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	firstParagraph = "Apple reported quarterly earnings of $5 billion, a 20% increase over last year. " +
		"Analysts had expected a smaller gain as the company faced weaker demand in China."
	secondParagraph = "The stock rose 4.5% in after-hours trading as investors cheered the results. " +
		"The company also raised its dividend and announced a new share buyback program."
)

func TestExtractPrefersArticleContainer(t *testing.T) {
	markup := `<html><head><title>News</title><script>var x = 1;</script></head><body>
		<nav>Home | Markets | Tech</nav>
		<div class="sidebar">Unrelated sidebar text that should not appear in the summary at all.</div>
		<article>
			<h1>Apple earnings</h1>
			<p>` + firstParagraph + `</p>
			<div class="advertisement">Buy our newsletter now!</div>
			<p>` + secondParagraph + `</p>
			<script>track();</script>
		</article>
		<footer>Copyright</footer>
	</body></html>`

	text, err := article.NewExtractor(discardLogger()).Extract(markup, targetURL)
	require.NoError(t, err)

	want := article.Normalize("Apple earnings " + firstParagraph + " " + secondParagraph)
	assert.Equal(t, want, text)
}

func TestExtractFallsBackToBody(t *testing.T) {
	markup := `<html><body><div>Short body text here.</div><nav>menu</nav></body></html>`

	text, err := article.NewExtractor(discardLogger()).Extract(markup, targetURL)
	require.NoError(t, err)
	assert.Equal(t, "Short body text here.", text)
}

func TestExtractSkipsTooSmallContainer(t *testing.T) {
	markup := `<html><body><article>Tiny teaser.</article><div><p>` +
		firstParagraph + `</p></div></body></html>`

	text, err := article.NewExtractor(discardLogger()).Extract(markup, targetURL)
	require.NoError(t, err)
	assert.Contains(t, text, "Apple reported quarterly earnings")
}

func TestExtractBodyFallbackKeepsAllBodyText(t *testing.T) {
	markup := `<html><body>
		<p>` + firstParagraph + `</p>
		<p>` + secondParagraph + `</p>
		<p>Trading volume was twice the usual level for a Tuesday.</p>
		<div class="comments">Reader comment: I sold too early again.</div>
		<div class="related"><a href="/a">Related: Ten stocks to watch</a> <a href="/b">Bitcoin rallies again</a></div>
	</body></html>`

	text, err := article.NewExtractor(discardLogger()).Extract(markup, targetURL)
	require.NoError(t, err)

	want := article.Normalize(firstParagraph + " " + secondParagraph +
		" Trading volume was twice the usual level for a Tuesday." +
		" Reader comment: I sold too early again." +
		" Related: Ten stocks to watch Bitcoin rallies again")
	assert.Equal(t, want, text)
}

func TestExtractEmptyMarkup(t *testing.T) {
	for _, markup := range []string{
		"",
		"  \n\t ",
		"<html><body><script>track()</script><nav>Home</nav></body></html>",
		"<html><head><style>p { color: red; }</style></head><body><footer>  </footer></body></html>",
	} {
		text, err := article.NewExtractor(discardLogger()).Extract(markup, targetURL)
		assert.ErrorIs(t, err, article.ErrEmptyDocument, markup)
		assert.Empty(t, text, markup)
	}
}

func TestExtractKeepsInlineWordsTogether(t *testing.T) {
	markup := `<html><body><p>Sh<b>are</b>s of <a href="#">Apple</a> rose.</p><p>Next paragraph.</p></body></html>`

	text, err := article.NewExtractor(discardLogger()).Extract(markup, targetURL)
	require.NoError(t, err)
	assert.Equal(t, "Shares of Apple rose. Next paragraph.", text)
}

func TestExtractTruncatesLongText(t *testing.T) {
	body := strings.Repeat("Markets were busy today and prices moved. ", 300)
	markup := "<html><body><article>" + body + "</article></body></html>"

	text, err := article.NewExtractor(discardLogger()).Extract(markup, targetURL)
	require.NoError(t, err)

	normalized := article.Normalize(body)
	require.Greater(t, utf8.RuneCountInString(normalized), article.MaxExtractedChars)

	assert.Equal(t, article.MaxExtractedChars+utf8.RuneCountInString(article.Ellipsis), utf8.RuneCountInString(text))
	assert.True(t, strings.HasSuffix(text, article.Ellipsis))
	assert.True(t, strings.HasPrefix(normalized, strings.TrimSuffix(text, article.Ellipsis)))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{"shorter", "abc", 5, "abc"},
		{"equal", "abcde", 5, "abcde"},
		{"longer", "abcdef", 5, "abcde..."},
		{"runes", "ääääää", 3, "äää..."},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, article.Truncate(test.text, test.limit))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b c", article.Normalize("  a\n\n b\t\tc  "))
	assert.Empty(t, article.Normalize(" \n\t "))
}
