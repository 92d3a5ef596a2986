package analyzer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/casestudy/sitescore/internal/model"
	"github.com/casestudy/sitescore/internal/platform/errs"
	"github.com/casestudy/sitescore/internal/platform/requestid"
)

const msgAnalysisFailed = "Failed to analyze the live demo link."

// Service orchestrates a SiteScoreProvider and logs results.
type Service struct {
	provider        SiteScoreProvider
	logger          *slog.Logger
	includeFeedback bool
}

// NewService creates a Service backed by the given provider. Feedback is
// stripped from results unless includeFeedback is set.
func NewService(provider SiteScoreProvider, logger *slog.Logger, includeFeedback bool) *Service {
	return &Service{provider: provider, logger: logger, includeFeedback: includeFeedback}
}

// Analyze delegates to the provider and logs the outcome.
func (s *Service) Analyze(ctx context.Context, targetURL string) (*model.AnalysisResult, error) {
	logger := requestid.Logger(ctx, s.logger).With("url", targetURL)

	result, err := s.provider.Analyze(ctx, targetURL)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = &errs.AppError{
				Kind:    errs.Timeout,
				Message: msgAnalysisFailed,
				Cause:   err,
			}
		}

		attrs := []any{"error", err}
		var appErr *errs.AppError
		if errors.As(err, &appErr) {
			attrs = append(attrs, "kind", appErr.Kind.String())
			if appErr.UpstreamStatus != 0 {
				attrs = append(attrs, "target_status", appErr.UpstreamStatus)
			}
		}
		logger.Error("analysis failed", attrs...)
		return nil, err
	}

	logger.Info("analysis complete",
		"html_score", result.Scores.HTML,
		"css_score", result.Scores.CSS,
		"javascript_score", result.Scores.JavaScript,
	)

	if !s.includeFeedback {
		result.Feedback = nil
	}
	return result, nil
}
