package rules

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/casestudy/sitescore/internal/lint"
	"github.com/casestudy/sitescore/internal/lint/jslint"
)

func TestJSEvaluator_SeverityWeights(t *testing.T) {
	tests := []struct {
		warnings, errors int
	}{
		{0, 0}, {1, 0}, {0, 1}, {3, 2}, {10, 5}, {0, 10}, {7, 7},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dw_%de", tt.warnings, tt.errors), func(t *testing.T) {
			diags := append(repeatDiag(lint.SeverityWarning, tt.warnings), repeatDiag(lint.SeverityError, tt.errors)...)

			got, err := NewJSEvaluator(fixedLinter(diags...)).Evaluate(context.Background(), "let a = 1;")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			want := max(0, 100-5*(tt.warnings+2*tt.errors))
			if got.Score != want {
				t.Errorf("Score = %d, want %d", got.Score, want)
			}
		})
	}
}

func TestJSEvaluator_FlatPenalties(t *testing.T) {
	tests := []struct {
		name string
		js   string
		want int
	}{
		{name: "console call", js: "console.log('hi');", want: 95},
		{name: "console call with space", js: "console.warn ('hi');", want: 95},
		{name: "console mentioned but not called", js: "const c = console;", want: 100},
		{name: "over 400 lines", js: strings.Repeat("\n", 400), want: 90},
		{name: "both", js: "console.error(1);" + strings.Repeat("\n", 400), want: 85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewJSEvaluator(fixedLinter()).Evaluate(context.Background(), tt.js)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Score != tt.want {
				t.Errorf("Score = %d, want %d (feedback %q)", got.Score, tt.want, got.Feedback)
			}
		})
	}
}

func TestJSEvaluator_FeedbackFormat(t *testing.T) {
	linter := fixedLinter(
		lint.Diagnostic{Message: "Unexpected var, use let or const instead.", Line: 1, Severity: lint.SeverityWarning},
		lint.Diagnostic{Message: "eval can be harmful.", Line: 4, Severity: lint.SeverityError},
	)

	got, err := NewJSEvaluator(linter).Evaluate(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"Warning: Unexpected var, use let or const instead. at line 1",
		"Error: eval can be harmful. at line 4",
	}
	for i := range want {
		if got.Feedback[i] != want[i] {
			t.Errorf("Feedback[%d] = %q, want %q", i, got.Feedback[i], want[i])
		}
	}
}

func TestJSEvaluator_LinterErrorIsFatal(t *testing.T) {
	got, err := NewJSEvaluator(failingLinter(errEngineDown)).Evaluate(context.Background(), "let a;")
	if !errors.Is(err, errEngineDown) {
		t.Fatalf("error = %v, want wrapping %v", err, errEngineDown)
	}
	if got.Score != 0 || got.Feedback != nil {
		t.Errorf("expected zero result on failure, got %+v", got)
	}
}

func TestJSEvaluator_WithEngine(t *testing.T) {
	eval := NewJSEvaluator(jslint.New())

	tests := []struct {
		js   string
		want int
	}{
		{js: "", want: 100},
		{js: "const a = 1;\nlet b = a === 1;", want: 100},
		{js: "var a = 1;", want: 95},
		{js: "debugger;", want: 90},
		{js: "var a = 1;\nif (a == 2) { console.log(a); }", want: 85},
		{js: "function (", want: 90},
	}

	for _, tt := range tests {
		got, err := eval.Evaluate(context.Background(), tt.js)
		if err != nil {
			t.Fatalf("Evaluate(%q) error: %v", tt.js, err)
		}
		if got.Score != tt.want {
			t.Errorf("Evaluate(%q) Score = %d, want %d (feedback %q)", tt.js, got.Score, tt.want, got.Feedback)
		}
	}

	first, _ := eval.Evaluate(context.Background(), "var x = 1;\nx == 2;")
	second, _ := eval.Evaluate(context.Background(), "var x = 1;\nx == 2;")
	if strings.Join(first.Feedback, "|") != strings.Join(second.Feedback, "|") || first.Score != second.Score {
		t.Errorf("evaluation not repeatable: %+v vs %+v", first, second)
	}
}
