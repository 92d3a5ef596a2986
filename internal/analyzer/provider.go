package analyzer

import (
	"context"

	"github.com/casestudy/sitescore/internal/model"
)

// SiteScoreProvider defines the contract for any scoring engine.
type SiteScoreProvider interface {
	Analyze(ctx context.Context, targetURL string) (*model.AnalysisResult, error)
}
