package sitescore

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/casestudy/sitescore/internal/lint/csslint"
	"github.com/casestudy/sitescore/internal/lint/jslint"
	"github.com/casestudy/sitescore/internal/model"
	"github.com/casestudy/sitescore/internal/platform/errs"
	"github.com/casestudy/sitescore/internal/platform/requestid"
	"github.com/casestudy/sitescore/internal/rules"
)

// User-facing messages; the detail stays in the wrapped cause.
const (
	MsgUnreachable    = "The provided URL is not reachable."
	MsgAnalysisFailed = "Failed to analyze the live demo link."
	msgInvalidURL     = "Invalid URL format. Please ensure you entered a valid URL (e.g., https://example.com)."
	msgUnsupportedURL = "Only http and https URLs are supported."
)

// assetFetcher defines how the engine downloads a batch of external assets.
type assetFetcher interface {
	FetchAll(ctx context.Context, links []string, base *url.URL) FetchResult
}

// contentEvaluator scores the concatenated content of one asset class.
type contentEvaluator interface {
	Evaluate(ctx context.Context, content string) (model.CategoryResult, error)
}

// Engine orchestrates probing, document fetching, asset resolution and scoring.
type Engine struct {
	fetcher Fetcher
	assets  assetFetcher
	css     contentEvaluator
	js      contentEvaluator
	logger  *slog.Logger
}

// NewEngine returns an Engine wired to the given collaborators.
func NewEngine(fetcher Fetcher, assets assetFetcher, css, js contentEvaluator, logger *slog.Logger) *Engine {
	return &Engine{
		fetcher: fetcher,
		assets:  assets,
		css:     css,
		js:      js,
		logger:  logger,
	}
}

// Options configures an Engine built by NewDefaultEngine.
type Options struct {
	UserAgent       string
	DocumentTimeout time.Duration
	AssetTimeout    time.Duration
	AllowPrivate    bool
}

// NewDefaultEngine wires the HTTP clients, the built-in linters and the
// rule evaluators into an Engine.
func NewDefaultEngine(opts Options, logger *slog.Logger) *Engine {
	return NewEngine(
		NewHTTPClient(ClientOptions{Timeout: opts.DocumentTimeout, UserAgent: opts.UserAgent, AllowPrivate: opts.AllowPrivate}),
		NewAssetFetcher(ClientOptions{Timeout: opts.AssetTimeout, UserAgent: opts.UserAgent, AllowPrivate: opts.AllowPrivate}),
		rules.NewCSSEvaluator(csslint.New()),
		rules.NewJSEvaluator(jslint.New()),
		logger,
	)
}

// Analyze scores the site at targetURL. It returns either a complete result
// or an *errs.AppError, never a partial result.
func (e *Engine) Analyze(ctx context.Context, targetURL string) (*model.AnalysisResult, error) {
	base, err := ValidateURL(targetURL)
	if err != nil {
		return nil, err
	}
	logger := requestid.Logger(ctx, e.logger).With("url", targetURL)

	status, err := e.fetcher.Probe(ctx, targetURL)
	if err != nil || status != http.StatusOK {
		return nil, &errs.AppError{
			Kind:           errs.UnreachableTarget,
			UpstreamStatus: status,
			Message:        MsgUnreachable,
			Cause:          err,
		}
	}

	document, err := e.fetchDocument(ctx, targetURL)
	if err != nil {
		return nil, err
	}

	assets, err := Extract(strings.NewReader(document))
	if err != nil {
		return nil, &errs.AppError{Kind: errs.FetchFailure, Message: MsgAnalysisFailed, Cause: err}
	}

	var css, js string
	var wg sync.WaitGroup
	wg.Go(func() {
		css = e.resolve(ctx, logger, assets, Stylesheet, base)
	})
	wg.Go(func() {
		js = e.resolve(ctx, logger, assets, Script, base)
	})
	wg.Wait()

	return e.evaluate(ctx, document, css, js)
}

// ValidateURL checks that raw is an absolute http(s) URL.
func ValidateURL(raw string) (*url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, &errs.AppError{Kind: errs.InvalidInput, Message: msgInvalidURL, Cause: err}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, &errs.AppError{Kind: errs.InvalidInput, Message: msgInvalidURL}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, &errs.AppError{Kind: errs.InvalidInput, Message: msgUnsupportedURL}
	}
	return parsed, nil
}

func (e *Engine) fetchDocument(ctx context.Context, targetURL string) (string, error) {
	body, status, err := e.fetcher.Fetch(ctx, targetURL)
	if err != nil {
		return "", &errs.AppError{Kind: errs.FetchFailure, Message: MsgAnalysisFailed, Cause: err}
	}
	defer func() { _ = body.Close() }()

	if status < 200 || status > 299 {
		return "", &errs.AppError{Kind: errs.FetchFailure, UpstreamStatus: status, Message: MsgAnalysisFailed}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", &errs.AppError{Kind: errs.FetchFailure, UpstreamStatus: status, Message: MsgAnalysisFailed, Cause: err}
	}
	return string(data), nil
}

// resolve returns the inline content of kind followed by its fetched externals.
func (e *Engine) resolve(ctx context.Context, logger *slog.Logger, assets *Assets, kind AssetKind, base *url.URL) string {
	links := assets.Links(kind)
	res := e.assets.FetchAll(ctx, links, base)

	level := slog.LevelDebug
	if res.Failed > 0 {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "assets fetched",
		"kind", kind.String(),
		"links", len(links),
		"fetched", res.Fetched,
		"failed", res.Failed,
	)

	return joinContent(assets.Inline(kind), res.Content)
}

func joinContent(inline, external string) string {
	if inline == "" || external == "" {
		return inline + external
	}
	return inline + "\n" + external
}

func (e *Engine) evaluate(ctx context.Context, document, css, js string) (*model.AnalysisResult, error) {
	var htmlRes, cssRes, jsRes model.CategoryResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		htmlRes = rules.EvaluateHTML(document)
		return nil
	})
	g.Go(func() error {
		var err error
		cssRes, err = e.css.Evaluate(gctx, css)
		return err
	})
	g.Go(func() error {
		var err error
		jsRes, err = e.js.Evaluate(gctx, js)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, &errs.AppError{Kind: errs.EvaluationFailure, Message: MsgAnalysisFailed, Cause: err}
	}

	return &model.AnalysisResult{
		Scores: model.Scores{
			HTML:       htmlRes.Score,
			CSS:        cssRes.Score,
			JavaScript: jsRes.Score,
		},
		Feedback: &model.Feedback{
			HTML:       htmlRes.Feedback,
			CSS:        cssRes.Feedback,
			JavaScript: jsRes.Feedback,
		},
	}, nil
}
