package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
)

const (
	feedsConcurrency = 4
	feedsUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

//nolint:gochecknoglobals // Default business feeds.
var DefaultFeeds = []string{
	"https://feeds.bbci.co.uk/news/business/rss.xml",
	"https://www.cnbc.com/id/100003114/device/rss/rss.html",
	"https://feeds.content.dowjones.io/public/rss/mw_topstories",
}

// FeedClient reads business RSS/Atom feeds as a keyless headline source.
type FeedClient struct {
	urls   []string
	parser *gofeed.Parser
	log    *slog.Logger
}

func NewFeedClient(urls []string, client *http.Client, log *slog.Logger) *FeedClient {
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = feedsUserAgent

	return &FeedClient{
		urls:   urls,
		parser: parser,
		log:    log,
	}
}

// Read returns items from all feeds, newest first. A non-empty query keeps
// only items mentioning one of its words. Feed errors are joined and
// returned alongside whatever the other feeds produced.
func (c *FeedClient) Read(ctx context.Context, query string) ([]Article, error) {
	perFeed := make([][]Article, len(c.urls))
	errs := make([]error, len(c.urls))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(feedsConcurrency)

	for i, feedURL := range c.urls {
		g.Go(func() error {
			parsed, err := c.parser.ParseURLWithContext(feedURL, gCtx)
			if err != nil {
				errs[i] = fmt.Errorf("parse feed (URL = %s): %w", feedURL, err)

				return nil
			}

			perFeed[i] = feedArticles(parsed)

			return nil
		})
	}

	_ = g.Wait()

	seen := make(map[string]struct{})
	var articles []Article
	for _, list := range perFeed {
		for _, a := range list {
			if _, ok := seen[a.URL]; ok {
				continue
			}
			if !matchesQuery(a, query) {
				continue
			}

			seen[a.URL] = struct{}{}
			articles = append(articles, a)
		}
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})

	return articles, errors.Join(errs...)
}

func feedArticles(feed *gofeed.Feed) []Article {
	source := strings.TrimSpace(feed.Title)

	articles := make([]Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := Article{
			Title:       strings.TrimSpace(item.Title),
			Description: plainText(item.Description),
			URL:         strings.TrimSpace(item.Link),
			Source:      source,
		}
		if a.Title == "" || a.URL == "" {
			continue
		}
		if a.Description == "" {
			a.Description = a.Title
		}

		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			a.PublishedAt = *item.UpdatedParsed
		}

		articles = append(articles, a)
	}

	return articles
}

func plainText(markup string) string {
	markup = strings.TrimSpace(markup)
	if markup == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return markup
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}

func matchesQuery(a Article, query string) bool {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return true
	}

	text := strings.ToLower(a.Title + " " + a.Description)
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}

	return false
}
