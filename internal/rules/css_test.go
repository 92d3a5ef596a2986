package rules

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/casestudy/sitescore/internal/lint"
	"github.com/casestudy/sitescore/internal/lint/csslint"
)

var errEngineDown = errors.New("engine down")

// fixedLinter returns the same diagnostics for any input.
func fixedLinter(diags ...lint.Diagnostic) lint.Linter {
	return lint.LinterFunc(func(context.Context, string) ([]lint.Diagnostic, error) {
		return diags, nil
	})
}

func failingLinter(err error) lint.Linter {
	return lint.LinterFunc(func(context.Context, string) ([]lint.Diagnostic, error) {
		return nil, err
	})
}

func repeatDiag(sev lint.Severity, n int) []lint.Diagnostic {
	out := make([]lint.Diagnostic, n)
	for i := range out {
		out[i] = lint.Diagnostic{Message: "problem", Line: i + 1, Severity: sev}
	}
	return out
}

func TestCSSEvaluator_Evaluate(t *testing.T) {
	tests := []struct {
		name   string
		css    string
		diags  []lint.Diagnostic
		want   int
		nFeeds int
	}{
		{name: "clean", css: "a { color: red; }", want: 100},
		{name: "one warning", css: "a {}", diags: repeatDiag(lint.SeverityWarning, 1), want: 97, nFeeds: 1},
		{name: "one error", css: "a {", diags: repeatDiag(lint.SeverityError, 1), want: 94, nFeeds: 1},
		{name: "important", css: "a { color: red !important; }", want: 90, nFeeds: 1},
		{name: "over 300 lines", css: strings.Repeat("\n", 300), want: 90, nFeeds: 1},
		{name: "exactly 300 lines", css: strings.Repeat("\n", 299), want: 100},
		{name: "floors at zero", css: "x", diags: repeatDiag(lint.SeverityError, 40), want: 0, nFeeds: 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewCSSEvaluator(fixedLinter(tt.diags...)).Evaluate(context.Background(), tt.css)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Score != tt.want {
				t.Errorf("Score = %d, want %d", got.Score, tt.want)
			}
			if len(got.Feedback) != tt.nFeeds {
				t.Errorf("len(Feedback) = %d, want %d: %q", len(got.Feedback), tt.nFeeds, got.Feedback)
			}
		})
	}
}

func TestCSSEvaluator_FeedbackFormat(t *testing.T) {
	linter := fixedLinter(
		lint.Diagnostic{Message: "Rule is empty.", Line: 2, Severity: lint.SeverityWarning},
		lint.Diagnostic{Message: "Expected RBRACE.", Line: 5, Severity: lint.SeverityError},
	)

	got, err := NewCSSEvaluator(linter).Evaluate(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"WARNING: Rule is empty. at line 2", "ERROR: Expected RBRACE. at line 5"}
	for i := range want {
		if got.Feedback[i] != want[i] {
			t.Errorf("Feedback[%d] = %q, want %q", i, got.Feedback[i], want[i])
		}
	}
}

func TestCSSEvaluator_LinterError(t *testing.T) {
	_, err := NewCSSEvaluator(failingLinter(errEngineDown)).Evaluate(context.Background(), "a{}")
	if !errors.Is(err, errEngineDown) {
		t.Errorf("error = %v, want wrapping %v", err, errEngineDown)
	}
}

func TestCSSEvaluator_WithEngine(t *testing.T) {
	eval := NewCSSEvaluator(csslint.New())

	got, err := eval.Evaluate(context.Background(), "a { color: #12345; }")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Score != 94 {
		t.Errorf("Score = %d, want 94 (feedback %q)", got.Score, got.Feedback)
	}

	clean, err := eval.Evaluate(context.Background(), "body { margin: 0; }\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clean.Score != 100 {
		t.Errorf("clean Score = %d, want 100 (feedback %q)", clean.Score, clean.Feedback)
	}
}
