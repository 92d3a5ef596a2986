package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/casestudy/sitescore/internal/lint"
	"github.com/casestudy/sitescore/internal/model"
)

const (
	cssPenaltyFactor = 3
	importantPenalty = 10
	largeCSSPenalty  = 10
	maxCSSLines      = 300
)

// CSSEvaluator scores stylesheet content using a CSS linter.
type CSSEvaluator struct {
	linter lint.Linter
}

// NewCSSEvaluator returns an evaluator backed by linter.
func NewCSSEvaluator(linter lint.Linter) *CSSEvaluator {
	return &CSSEvaluator{linter: linter}
}

// Evaluate deducts severity × 3 per diagnostic plus flat penalties for
// !important and oversized stylesheets.
func (e *CSSEvaluator) Evaluate(ctx context.Context, css string) (model.CategoryResult, error) {
	diags, err := e.linter.Lint(ctx, css)
	if err != nil {
		return model.CategoryResult{}, fmt.Errorf("css lint: %w", err)
	}

	t := newTally()
	for _, d := range diags {
		t.deduct(int(d.Severity)*cssPenaltyFactor, "%s: %s at line %d", severityLabel(d.Severity, true), d.Message, d.Line)
	}
	if strings.Contains(css, "!important") {
		t.deduct(importantPenalty, "Avoid !important; it makes styles hard to override.")
	}
	if n := lineCount(css); n > maxCSSLines {
		t.deduct(largeCSSPenalty, "Stylesheet has %d lines (limit %d); consider splitting it up.", n, maxCSSLines)
	}

	score, feedback := t.result()
	return model.CategoryResult{Score: score, Feedback: feedback}, nil
}
