package article

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	MinViableContentChars = 100

	FallbackProxyName = "fallback"
)

const fallbackTemplate = `Financial news from %[1]s.

This article from %[1]s talks about what is happening with money, companies and markets. ` +
	`Companies report their revenue and profit every quarter, and investors watch the stock price to see how the business is doing. ` +
	`When a company earns more money than people expected, its shares often go up. ` +
	`When the economy slows down or interest rates change, the market can go down.

- Companies and their earnings
- The stock market and investors
- The economy and interest rates`

type Fetcher struct {
	proxies []Proxy
	log     *slog.Logger
}

func NewFetcher(proxies []Proxy, log *slog.Logger) *Fetcher {
	return &Fetcher{
		proxies: proxies,
		log:     log,
	}
}

// Fetch returns the page markup from the first proxy that yields viable content.
// Only an invalid URL is an error; exhausting every proxy yields fallback content.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (RawDocument, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		return RawDocument{}, err
	}

	for _, p := range f.proxies {
		body, attemptErr := p.Attempt(ctx, target.String())
		if attemptErr != nil {
			f.log.WarnContext(ctx, "Proxy attempt failed",
				"error", attemptErr,
				"proxy", p.Name(),
				"url", target.String())

			continue
		}

		if n := utf8.RuneCountInString(strings.TrimSpace(body)); n < MinViableContentChars {
			f.log.WarnContext(ctx, "Proxy returned too little content",
				"proxy", p.Name(),
				"url", target.String(),
				"contentLen", n,
				"minContentLen", MinViableContentChars)

			continue
		}

		return RawDocument{
			SourceURL: target.String(),
			Proxy:     p.Name(),
			Body:      body,
		}, nil
	}

	f.log.WarnContext(ctx, "All proxies failed so fallback content will be used",
		"url", target.String(),
		"proxyCount", len(f.proxies))

	return RawDocument{
		SourceURL: target.String(),
		Proxy:     FallbackProxyName,
		Body:      FallbackContent(target),
		Degraded:  true,
	}, nil
}

// ValidateURL accepts absolute http(s) URLs with a host.
func ValidateURL(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("%w: URL is empty", ErrInvalidURL)
	}

	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}

	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: host is empty", ErrInvalidURL)
	}

	return u, nil
}

func FallbackContent(target *url.URL) string {
	domain := strings.TrimPrefix(strings.ToLower(target.Hostname()), "www.")

	return fmt.Sprintf(fallbackTemplate, domain)
}
