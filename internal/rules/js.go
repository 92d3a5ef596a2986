package rules

import (
	"context"
	"fmt"
	"regexp"

	"github.com/casestudy/sitescore/internal/lint"
	"github.com/casestudy/sitescore/internal/model"
)

const (
	jsPenaltyFactor = 5
	largeJSPenalty  = 10
	consolePenalty  = 5
	maxJSLines      = 400
)

var consoleCallRe = regexp.MustCompile(`console\.(log|debug|info|warn|error|trace)\s*\(`)

// JSEvaluator scores script content using a JavaScript linter.
type JSEvaluator struct {
	linter lint.Linter
}

// NewJSEvaluator returns an evaluator backed by linter.
func NewJSEvaluator(linter lint.Linter) *JSEvaluator {
	return &JSEvaluator{linter: linter}
}

// Evaluate deducts 5 × severity per diagnostic plus flat penalties for
// oversized scripts and console logging. A linter failure is returned as an
// error rather than a default score.
func (e *JSEvaluator) Evaluate(ctx context.Context, js string) (model.CategoryResult, error) {
	diags, err := e.linter.Lint(ctx, js)
	if err != nil {
		return model.CategoryResult{}, fmt.Errorf("javascript lint: %w", err)
	}

	t := newTally()
	for _, d := range diags {
		t.deduct(jsPenaltyFactor*int(d.Severity), "%s: %s at line %d", severityLabel(d.Severity, false), d.Message, d.Line)
	}
	if n := lineCount(js); n > maxJSLines {
		t.deduct(largeJSPenalty, "Script has %d lines (limit %d); consider splitting it into modules.", n, maxJSLines)
	}
	if consoleCallRe.MatchString(js) {
		t.deduct(consolePenalty, "Remove console logging statements from production code.")
	}

	score, feedback := t.result()
	return model.CategoryResult{Score: score, Feedback: feedback}, nil
}
