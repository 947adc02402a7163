package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/avast/retry-go/v4"

	"film2trello/internal/config"
	"film2trello/internal/services"
)

// Page is one fetched and parsed document. URL is the final URL after
// redirects, which can differ from RequestedURL.
type Page struct {
	RequestedURL string
	URL          string
	Document     *goquery.Document
}

// Client is the page-fetching capability the pipeline consumes. Page returns
// a parsed document, Bytes a whole body (poster download), Body a stream for
// line-by-line sniffing. Implementations must fail on non-2xx responses.
type Client interface {
	Page(ctx context.Context, url string) (*Page, error)
	Bytes(ctx context.Context, url string) ([]byte, error)
	Body(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPClient fetches pages over HTTP with a fixed user agent and a bounded
// retry budget for transport failures. Non-2xx responses are not retried.
type HTTPClient struct {
	client    *http.Client
	userAgent string
	retryMax  int
}

var _ Client = (*HTTPClient)(nil)

// New builds an HTTPClient from scraper configuration.
func New(cfg *config.Config) *HTTPClient {
	timeout := time.Duration(cfg.Scraper.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		client:    &http.Client{Timeout: timeout},
		userAgent: cfg.Scraper.UserAgent,
		retryMax:  cfg.Scraper.RetryMax,
	}
}

// Page fetches url and parses the response into a goquery document.
func (c *HTTPClient) Page(ctx context.Context, url string) (*Page, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	document, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return &Page{
		RequestedURL: url,
		URL:          resp.Request.URL.String(),
		Document:     document,
	}, nil
}

// Bytes fetches url and returns the whole response body.
func (c *HTTPClient) Bytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return data, nil
}

// Body fetches url and returns the response body stream. The caller owns the
// close.
func (c *HTTPClient) Body(ctx context.Context, url string) (io.ReadCloser, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *HTTPClient) get(ctx context.Context, url string) (*http.Response, error) {
	var resp *http.Response
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("build request: %w", err))
			}
			req.Header.Set("User-Agent", c.userAgent)

			res, err := c.client.Do(req)
			if err != nil {
				return err
			}
			if res.StatusCode < 200 || res.StatusCode >= 300 {
				res.Body.Close()
				return retry.Unrecoverable(
					services.Wrap(services.ErrRemoteService, "",
						fmt.Errorf("GET %s returned %d", url, res.StatusCode)))
			}
			resp = res
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.retryMax)+1),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if retry.IsRecoverable(err) {
			return nil, services.Wrap(services.ErrRemoteService, "", fmt.Errorf("GET %s: %w", url, err))
		}
		return nil, err
	}
	return resp, nil
}
