package sitescore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher retrieves the target document and answers the reachability probe.
type Fetcher interface {
	Probe(ctx context.Context, url string) (statusCode int, err error)
	Fetch(ctx context.Context, url string) (body io.ReadCloser, statusCode int, err error)
}

// ClientOptions configures the outbound HTTP clients.
type ClientOptions struct {
	Timeout      time.Duration
	UserAgent    string
	AllowPrivate bool
}

// limitedReadCloser reads from a LimitReader but closes the original body.
type limitedReadCloser struct {
	io.Reader
	io.Closer
}

// HTTPClient implements Fetcher using a real HTTP client.
type HTTPClient struct {
	client    *http.Client
	userAgent string
}

const (
	maxRedirects    = 5
	maxResponseBody = 10 << 20
)

var (
	errTooManyRedirects = errors.New("too many redirects")
	errBlockedRedirect  = errors.New("redirect to non-http(s) scheme blocked")
)

// NewHTTPClient returns a Fetcher for the main document. Redirects are
// validated and capped, and private targets are refused unless
// opts.AllowPrivate is set.
func NewHTTPClient(opts ClientOptions) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout:       opts.Timeout,
			Transport:     newTransport(opts, 10),
			CheckRedirect: safeRedirectPolicy,
		},
		userAgent: opts.UserAgent,
	}
}

func newTransport(opts ClientOptions, connsPerHost int) *http.Transport {
	return &http.Transport{
		DialContext:         newDialer(opts.Timeout, opts.AllowPrivate).DialContext,
		MaxConnsPerHost:     connsPerHost,
		MaxIdleConnsPerHost: connsPerHost,
		IdleConnTimeout:     90 * time.Second,
	}
}

// safeRedirectPolicy validates redirect targets and limits the redirect chain length.
func safeRedirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("%w: stopped after %d", errTooManyRedirects, maxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: %s", errBlockedRedirect, req.URL.Scheme)
	}
	return nil
}

// Probe issues a HEAD request and reports the final status code.
func (c *HTTPClient) Probe(ctx context.Context, targetURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, targetURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()

	return resp.StatusCode, nil
}

// Fetch retrieves the page at the given URL and returns its body.
func (c *HTTPClient) Fetch(ctx context.Context, targetURL string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.client.Do(req) //nolint:bodyclose // body is returned to caller via limitedReadCloser
	if err != nil {
		return nil, 0, err
	}

	return limitBody(resp.Body), resp.StatusCode, nil
}

func limitBody(body io.ReadCloser) io.ReadCloser {
	return &limitedReadCloser{
		Reader: io.LimitReader(body, maxResponseBody),
		Closer: body,
	}
}
