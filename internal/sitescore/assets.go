package sitescore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

var (
	errUnsupportedScheme = errors.New("unsupported asset scheme")
	errAssetStatus       = errors.New("unexpected asset status")
)

// FetchResult is the concatenated content of one batch of assets.
type FetchResult struct {
	Content string
	Fetched int
	Failed  int
}

// AssetFetcher downloads external stylesheets and scripts. A failing asset
// contributes an empty body and never affects its siblings.
type AssetFetcher struct {
	client    *http.Client
	userAgent string
}

// NewAssetFetcher returns an AssetFetcher whose requests each time out after
// opts.Timeout.
func NewAssetFetcher(opts ClientOptions) *AssetFetcher {
	return newAssetFetcher(&http.Client{
		Timeout:       opts.Timeout,
		Transport:     newTransport(opts, 0),
		CheckRedirect: safeRedirectPolicy,
	}, opts.UserAgent)
}

func newAssetFetcher(client *http.Client, userAgent string) *AssetFetcher {
	return &AssetFetcher{client: client, userAgent: userAgent}
}

// FetchAll resolves every link against base and downloads them all at once.
// Bodies are joined with "\n" in link order; an empty list yields "".
func (f *AssetFetcher) FetchAll(ctx context.Context, links []string, base *url.URL) FetchResult {
	if len(links) == 0 {
		return FetchResult{}
	}

	bodies := make([]string, len(links))
	failures := make([]error, len(links))

	var wg sync.WaitGroup
	for i, link := range links {
		wg.Go(func() {
			bodies[i], failures[i] = f.fetch(ctx, link, base)
		})
	}
	wg.Wait()

	var res FetchResult
	for _, err := range failures {
		if err != nil {
			res.Failed++
		} else {
			res.Fetched++
		}
	}
	res.Content = strings.Join(bodies, "\n")
	return res
}

func (f *AssetFetcher) fetch(ctx context.Context, link string, base *url.URL) (string, error) {
	target, err := resolveLink(link, base)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	body := limitBody(resp.Body)
	defer func() { _ = body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d from %s", errAssetStatus, resp.StatusCode, target)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// resolveLink applies RFC 3986 reference resolution, so "style.css",
// "/a/b.js", "//cdn.example.com/x.css" and absolute links all work.
func resolveLink(link string, base *url.URL) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", err
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", fmt.Errorf("%w: %q", errUnsupportedScheme, resolved.Scheme)
	}
	return resolved.String(), nil
}
