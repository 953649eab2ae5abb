package article_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finkid/internal/article"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSummarizer(t *testing.T, specs ...string) *article.Summarizer {
	t.Helper()

	log := discardLogger()

	return article.NewSummarizer(
		article.NewFetcher(newProxies(t, specs...), log),
		article.NewExtractor(log),
		log,
	)
}

func TestSummarizeArticle(t *testing.T) {
	page := `<html><body><nav>Markets Tech Opinion</nav><article><p>` +
		firstParagraph + `</p><p>` + secondParagraph + `</p></article></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	summary, err := newSummarizer(t, "raw:"+srv.URL+"/raw?url=%s").Summarize(context.Background(), targetURL)
	require.NoError(t, err)

	assert.False(t, summary.Degraded)
	assert.Equal(t, targetURL, summary.URL)
	assert.Len(t, summary.Sentences, article.TopSentences)
	assert.True(t, strings.HasPrefix(summary.Sentences[0], "Apple reported quarterly earnings"))
	assert.Contains(t, summary.Text, "1. Apple reported every three months money they earned")
	assert.Contains(t, summary.Text, "\n3. ")
}

func TestSummarizeDegradesToFallbackContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	summary, err := newSummarizer(t,
		"raw:"+srv.URL+"/1?url=%s",
		"json:"+srv.URL+"/2?url=%s",
		"raw:"+srv.URL+"/3?url=%s",
		"raw:"+srv.URL+"/4?url=%s",
	).Summarize(context.Background(), targetURL)
	require.NoError(t, err)

	assert.True(t, summary.Degraded)
	assert.Equal(t, article.FallbackProxyName, summary.Source)
	assert.NotEmpty(t, summary.Sentences)
	assert.Contains(t, summary.Text, "1. ")
}

func TestSummarizeNoMeaningfulContent(t *testing.T) {
	page := `<html><head><title>Tiny</title><style>body { font-family: sans-serif; margin: 0 auto; }</style></head>` +
		`<body>Tiny text. Short. Ok then. Bye now.</body></html>`
	require.GreaterOrEqual(t, len(page), article.MinViableContentChars)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	summary, err := newSummarizer(t, "raw:"+srv.URL+"/?url=%s").Summarize(context.Background(), targetURL)
	require.ErrorIs(t, err, article.ErrNoMeaningfulContent)
	assert.Empty(t, summary.Text)
}

func TestSummarizeInvalidURL(t *testing.T) {
	_, err := newSummarizer(t, "raw:https://proxy.invalid/?url=%s").Summarize(context.Background(), "nope")
	require.ErrorIs(t, err, article.ErrInvalidURL)
}

func TestSummarizeKeepsTextUnderCap(t *testing.T) {
	page := "<html><body><article>" + strings.Repeat(firstParagraph+" ", 100) + "</article></body></html>"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	summary, err := newSummarizer(t, "raw:"+srv.URL+"/?url=%s").Summarize(context.Background(), targetURL)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(summary.Sentences), article.TopSentences)
}
