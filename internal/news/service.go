package news

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	SourceNewsAPI = "newsapi"
	SourceFeeds   = "feeds"
	SourceDemo    = "demo"

	DefaultHeadlinesTTL = 5 * time.Minute
	MaxHeadlines        = 30
)

//nolint:gochecknoglobals // Read-only query rotation and demo stories.
var (
	financialQueries = []string{
		"stock market",
		"earnings report",
		"financial markets",
		"cryptocurrency bitcoin",
		"investment banking",
		"Federal Reserve",
		"NYSE nasdaq",
		"economic news",
	}

	demoArticles = []Article{
		{
			Title: "Apple Stock Hits New All-Time High - What This Means for Your Wallet",
			Description: "Apple's stock price soared to unprecedented levels today as investors showed " +
				"confidence in the tech giant's latest quarterly earnings report.",
			URL:    "https://example.com/apple-stock",
			Source: "Financial Times",
		},
		{
			Title: "Bitcoin Rollercoaster: Crypto Market Sees Wild Swings",
			Description: "Cryptocurrency markets experienced significant volatility with Bitcoin " +
				"fluctuating between major support and resistance levels.",
			URL:    "https://example.com/bitcoin-volatility",
			Source: "Crypto Weekly",
		},
		{
			Title: "Federal Reserve Hints at Interest Rate Changes",
			Description: "The Federal Reserve's latest meeting minutes suggest potential shifts in " +
				"monetary policy that could impact borrowing costs nationwide.",
			URL:    "https://example.com/fed-rates",
			Source: "Economic Daily",
		},
		{
			Title: "Tesla Earnings Surprise Wall Street Analysts",
			Description: "Electric vehicle manufacturer Tesla reported better-than-expected quarterly " +
				"results, sending shares up in after-hours trading.",
			URL:    "https://example.com/tesla-earnings",
			Source: "Market Watch",
		},
		{
			Title: "Gold Prices Surge Amid Economic Uncertainty",
			Description: "Precious metals markets saw significant gains as investors sought safe-haven " +
				"assets during periods of market volatility.",
			URL:    "https://example.com/gold-surge",
			Source: "Commodity News",
		},
	}
)

type Searcher interface {
	Search(ctx context.Context, apiKey string, query string) ([]Article, error)
}

type FeedReader interface {
	Read(ctx context.Context, query string) ([]Article, error)
}

// Headlines is one batch of annotated articles and where it came from.
// Rotated is set when Query was picked because the caller asked for none.
type Headlines struct {
	Query   string
	Source  string
	Rotated bool
	Items   []Item
}

func (h Headlines) Heading() string {
	return cases.Title(language.English).String(h.Query)
}

// RequestedQuery is the query to pass to Latest to get this batch again.
func (h Headlines) RequestedQuery() string {
	if h.Rotated {
		return ""
	}

	return h.Query
}

type Service struct {
	searcher Searcher
	feeds    FeedReader
	cache    *headlinesCache
	ttl      time.Duration
	now      func() time.Time
	log      *slog.Logger
}

func NewService(searcher Searcher, feeds FeedReader, ttl time.Duration, log *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultHeadlinesTTL
	}

	return &Service{
		searcher: searcher,
		feeds:    feeds,
		cache:    newHeadlinesCache(headlinesCacheMaxEntries),
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

// Latest returns headlines for query, or for a rotating finance query when
// query is empty. NewsAPI is tried when apiKey is set, then the feeds, then
// the built-in demo stories, so the result is never empty.
func (s *Service) Latest(ctx context.Context, apiKey string, query string) Headlines {
	now := s.now()

	query = strings.TrimSpace(query)
	feedQuery := query
	rotated := query == ""
	if rotated {
		bucket := now.Unix() / max(int64(s.ttl/time.Second), 1)
		query, _ = Pick(uint64(bucket), financialQueries) //nolint:gosec // Unix time is positive.
	}

	apiKey = strings.TrimSpace(apiKey)
	source := SourceFeeds
	if apiKey != "" {
		source = SourceNewsAPI
	}
	cacheKey := headlinesCacheKey(source, query, rotated)

	if cached, ok := s.cache.get(cacheKey, now); ok {
		return cached
	}

	if apiKey != "" && s.searcher != nil {
		articles, err := s.searcher.Search(ctx, apiKey, query)
		if err != nil {
			s.log.WarnContext(ctx, "Failed to search news",
				"query", query,
				"error", err)
		} else if len(articles) != 0 {
			return s.store(cacheKey, Headlines{Query: query, Source: SourceNewsAPI, Rotated: rotated}, articles, now)
		}
	}

	if s.feeds != nil {
		articles, err := s.feeds.Read(ctx, feedQuery)
		if err != nil {
			s.log.WarnContext(ctx, "Failed to read some feeds",
				"query", feedQuery,
				"articles", len(articles),
				"error", err)
		}
		if len(articles) != 0 {
			return s.store(cacheKey, Headlines{Query: query, Source: SourceFeeds, Rotated: rotated}, articles, now)
		}
	}

	s.log.InfoContext(ctx, "Using demo headlines", "query", query)

	return Headlines{
		Query:   query,
		Source:  SourceDemo,
		Rotated: rotated,
		Items:   annotateAll(demoArticles),
	}
}

func (s *Service) store(key string, headlines Headlines, articles []Article, now time.Time) Headlines {
	if len(articles) > MaxHeadlines {
		articles = articles[:MaxHeadlines]
	}

	headlines.Items = annotateAll(articles)
	s.cache.set(key, headlines, now.Add(s.ttl), now)

	return headlines
}

// headlinesCacheKey keeps rotated picks apart from the same query typed by a
// user: feeds are filtered by a typed query only.
func headlinesCacheKey(source, query string, rotated bool) string {
	key := source + "|" + strings.ToLower(query)
	if rotated {
		key = source + "|\x00" + strings.ToLower(query)
	}

	return key
}

func annotateAll(articles []Article) []Item {
	items := make([]Item, 0, len(articles))
	for _, a := range articles {
		items = append(items, Annotate(a))
	}

	return items
}
