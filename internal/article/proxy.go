package article

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"
	acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

	maxResponseBytes = 5 << 20

	proxyKindRaw  = "raw"
	proxyKindJSON = "json"

	jsonEnvelopeContentsField = "contents"
)

// DefaultProxyTemplates are tried in order. %s is replaced by the query-escaped target.
//
//nolint:gochecknoglobals // Read-only defaults.
var DefaultProxyTemplates = []string{
	"raw:https://api.allorigins.win/raw?url=%s",
	"json:https://api.allorigins.win/get?url=%s",
	"raw:https://corsproxy.io/?url=%s",
	"raw:https://api.codetabs.com/v1/proxy?quest=%s",
}

// Proxy is one way of retrieving the markup of a page.
type Proxy interface {
	Name() string
	Attempt(ctx context.Context, target string) (string, error)
}

type templateProxy struct {
	kind     string
	template string
	client   *http.Client
	log      *slog.Logger
}

// NewTemplateProxy builds a proxy from a "raw:<template>" or "json:<template>" spec.
// A spec without a kind prefix is treated as raw.
func NewTemplateProxy(spec string, client *http.Client, log *slog.Logger) (Proxy, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, errors.New("proxy spec is empty")
	}

	kind := proxyKindRaw
	template := spec

	if rest, ok := strings.CutPrefix(spec, proxyKindRaw+":"); ok {
		template = rest
	} else if rest, ok := strings.CutPrefix(spec, proxyKindJSON+":"); ok {
		kind = proxyKindJSON
		template = rest
	}

	template = strings.TrimSpace(template)
	if strings.Count(template, "%s") != 1 {
		return nil, fmt.Errorf("proxy template must contain exactly one %%s (template = %s)", template)
	}

	return &templateProxy{
		kind:     kind,
		template: template,
		client:   client,
		log:      log,
	}, nil
}

// NewProxies builds proxies from specs, skipping invalid ones.
func NewProxies(specs []string, client *http.Client, log *slog.Logger) ([]Proxy, error) {
	proxies := make([]Proxy, 0, len(specs))
	var errs []error

	for _, spec := range specs {
		p, err := NewTemplateProxy(spec, client, log)
		if err != nil {
			errs = append(errs, fmt.Errorf("new template proxy: %w", err))
			continue
		}
		proxies = append(proxies, p)
	}

	return proxies, errors.Join(errs...)
}

func (p *templateProxy) Name() string {
	host := p.template
	if u, err := url.Parse(p.template); err == nil && u.Host != "" {
		host = u.Host
	}

	return p.kind + ":" + host
}

func (p *templateProxy) Attempt(ctx context.Context, target string) (string, error) {
	proxiedURL := fmt.Sprintf(p.template, url.QueryEscape(target))

	body, err := get(ctx, p.client, proxiedURL, p.log)
	if err != nil {
		return "", err
	}

	if p.kind != proxyKindJSON {
		return body, nil
	}

	if !gjson.Valid(body) {
		return "", errors.New("proxy envelope is not valid JSON")
	}

	contents := gjson.Get(body, jsonEnvelopeContentsField)
	if !contents.Exists() {
		return "", fmt.Errorf("proxy envelope has no %q field", jsonEnvelopeContentsField)
	}

	return contents.String(), nil
}

type directProxy struct {
	client *http.Client
	log    *slog.Logger
}

// NewDirectProxy fetches the target without an intermediary.
func NewDirectProxy(client *http.Client, log *slog.Logger) Proxy {
	return &directProxy{client: client, log: log}
}

func (p *directProxy) Name() string {
	return "direct"
}

func (p *directProxy) Attempt(ctx context.Context, target string) (string, error) {
	return get(ctx, p.client, target, p.log)
}

func get(ctx context.Context, client *http.Client, rawURL string, log *slog.Logger) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := client.Do(req) //nolint:gosec // User supplied article URL is the point.
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", rawURL)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	return string(body), nil
}
