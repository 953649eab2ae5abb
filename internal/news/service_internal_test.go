package news

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type stubSearcher struct {
	calls    int
	articles []Article
	err      error
}

func (s *stubSearcher) Search(_ context.Context, _ string, _ string) ([]Article, error) {
	s.calls++

	return s.articles, s.err
}

type stubFeeds struct {
	calls     int
	lastQuery string
	articles  []Article
	err       error
}

func (s *stubFeeds) Read(_ context.Context, query string) ([]Article, error) {
	s.calls++
	s.lastQuery = query

	return s.articles, s.err
}

func newTestService(searcher Searcher, feeds FeedReader, now time.Time) *Service {
	s := NewService(searcher, feeds, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return now }

	return s
}

func TestServiceLatestPrefersNewsAPI(t *testing.T) {
	searcher := &stubSearcher{articles: []Article{{Title: "Profit up", Description: "d", URL: "https://a"}}}
	feeds := &stubFeeds{articles: []Article{{Title: "Feed", URL: "https://b"}}}
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	headlines := newTestService(searcher, feeds, now).Latest(context.Background(), "key", "earnings")

	if headlines.Source != SourceNewsAPI {
		t.Fatalf("unexpected source: %q", headlines.Source)
	}

	if len(headlines.Items) != 1 || headlines.Items[0].Category != CategoryEarningsTea {
		t.Fatalf("unexpected items: %+v", headlines.Items)
	}

	if feeds.calls != 0 {
		t.Fatalf("feeds should not be read when NewsAPI succeeds")
	}
}

func TestServiceLatestFallsBackToFeeds(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("rate limited")}
	feeds := &stubFeeds{
		articles: []Article{{Title: "Feed", URL: "https://b"}},
		err:      errors.New("one feed is down"),
	}
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	headlines := newTestService(searcher, feeds, now).Latest(context.Background(), "key", "bitcoin")

	if headlines.Source != SourceFeeds || len(headlines.Items) != 1 {
		t.Fatalf("unexpected headlines: %+v", headlines)
	}

	if feeds.lastQuery != "bitcoin" {
		t.Fatalf("expected user query to reach feeds, got %q", feeds.lastQuery)
	}
}

func TestServiceLatestWithoutKeySkipsNewsAPI(t *testing.T) {
	searcher := &stubSearcher{articles: []Article{{Title: "x", URL: "https://a"}}}
	feeds := &stubFeeds{articles: []Article{{Title: "Feed", URL: "https://b"}}}
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	headlines := newTestService(searcher, feeds, now).Latest(context.Background(), "", "")

	if searcher.calls != 0 {
		t.Fatalf("NewsAPI should not be called without a key")
	}

	if headlines.Source != SourceFeeds {
		t.Fatalf("unexpected source: %q", headlines.Source)
	}

	if feeds.lastQuery != "" {
		t.Fatalf("rotating query should not filter feeds, got %q", feeds.lastQuery)
	}

	if headlines.Query == "" {
		t.Fatalf("expected rotating query to be chosen")
	}
}

func TestServiceLatestUsesDemoArticles(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	headlines := newTestService(&stubSearcher{}, &stubFeeds{}, now).Latest(context.Background(), "key", "")

	if headlines.Source != SourceDemo {
		t.Fatalf("unexpected source: %q", headlines.Source)
	}

	if len(headlines.Items) != len(demoArticles) {
		t.Fatalf("expected %d demo items, got %d", len(demoArticles), len(headlines.Items))
	}
}

func TestServiceLatestCachesResults(t *testing.T) {
	searcher := &stubSearcher{articles: []Article{{Title: "x", URL: "https://a"}}}
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	s := newTestService(searcher, nil, now)

	s.Latest(context.Background(), "key", "Stock Market")
	s.Latest(context.Background(), "key", "stock market")

	if searcher.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", searcher.calls)
	}

	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	s.Latest(context.Background(), "key", "stock market")

	if searcher.calls != 2 {
		t.Fatalf("expected expired entry to be refreshed, got %d calls", searcher.calls)
	}
}

func TestServiceLatestKeepsRotatedAndTypedQueriesApart(t *testing.T) {
	feeds := &stubFeeds{articles: []Article{{Title: "Feed", URL: "https://b"}}}
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	s := newTestService(nil, feeds, now)
	ctx := context.Background()

	rotated := s.Latest(ctx, "", "")
	if !rotated.Rotated || rotated.Query == "" || rotated.RequestedQuery() != "" {
		t.Fatalf("unexpected rotated headlines: %+v", rotated)
	}
	if feeds.lastQuery != "" {
		t.Fatalf("rotated query should read feeds unfiltered, got %q", feeds.lastQuery)
	}

	typed := s.Latest(ctx, "", rotated.Query)
	if typed.Rotated || typed.RequestedQuery() != rotated.Query {
		t.Fatalf("unexpected typed headlines: %+v", typed)
	}
	if feeds.calls != 2 || feeds.lastQuery != rotated.Query {
		t.Fatalf("typed query should read feeds filtered, got %d calls with %q", feeds.calls, feeds.lastQuery)
	}

	if again := s.Latest(ctx, "", ""); !again.Rotated || feeds.calls != 2 {
		t.Fatalf("expected rotated headlines from cache, got %+v after %d calls", again, feeds.calls)
	}
}

func TestServiceLatestCapsHeadlines(t *testing.T) {
	articles := make([]Article, MaxHeadlines+5)
	for i := range articles {
		articles[i] = Article{Title: "x", URL: "https://a/" + string(rune('a'+i))}
	}

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	headlines := newTestService(&stubSearcher{articles: articles}, nil, now).Latest(context.Background(), "key", "q")

	if len(headlines.Items) != MaxHeadlines {
		t.Fatalf("expected %d items, got %d", MaxHeadlines, len(headlines.Items))
	}
}

func TestHeadlinesHeading(t *testing.T) {
	if got := (Headlines{Query: "cryptocurrency bitcoin"}).Heading(); got != "Cryptocurrency Bitcoin" {
		t.Fatalf("unexpected heading: %q", got)
	}
}
