package news

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	DefaultNewsAPIBaseURL = "https://newsapi.org"

	newsAPIPageSize     = 30
	newsAPIMaxBodyBytes = 2 << 20
	removedMarker       = "[Removed]"
)

var ErrMissingAPIKey = errors.New("news API key is missing")

// NewsAPIClient searches the NewsAPI "everything" endpoint.
type NewsAPIClient struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

func NewNewsAPIClient(baseURL string, client *http.Client, log *slog.Logger) *NewsAPIClient {
	if baseURL == "" {
		baseURL = DefaultNewsAPIBaseURL
	}

	return &NewsAPIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		log:     log,
	}
}

func (c *NewsAPIClient) Search(ctx context.Context, apiKey string, query string) ([]Article, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(newsAPIPageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.ErrorContext(ctx, "Failed to close response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, newsAPIMaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON (status = %d)", resp.StatusCode)
	}

	parsed := gjson.ParseBytes(body)
	if status := parsed.Get("status").String(); resp.StatusCode != http.StatusOK || status != "ok" {
		return nil, fmt.Errorf(
			"unexpected response (status = %d, code = %s): %s",
			resp.StatusCode,
			parsed.Get("code").String(),
			parsed.Get("message").String(),
		)
	}

	return parseNewsAPIArticles(parsed.Get("articles")), nil
}

func parseNewsAPIArticles(list gjson.Result) []Article {
	var articles []Article

	list.ForEach(func(_, item gjson.Result) bool {
		a := Article{
			Title:       strings.TrimSpace(item.Get("title").String()),
			Description: strings.TrimSpace(item.Get("description").String()),
			URL:         strings.TrimSpace(item.Get("url").String()),
			Source:      strings.TrimSpace(item.Get("source.name").String()),
		}

		if a.Title == "" || a.Description == "" || a.URL == "" {
			return true
		}
		if a.Title == removedMarker || a.Description == removedMarker {
			return true
		}

		if publishedAt, err := time.Parse(time.RFC3339, item.Get("publishedAt").String()); err == nil {
			a.PublishedAt = publishedAt
		}

		articles = append(articles, a)

		return true
	})

	return articles
}
