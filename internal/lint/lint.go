// Package lint defines the capability shared by the CSS and JavaScript lint
// engines. Evaluators depend only on Linter so tests can inject fixed
// diagnostics instead of running a real engine.
package lint

import (
	"context"
	"fmt"
	"sort"
)

// Severity is the ordinal weight of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = 1
	SeverityError   Severity = 2
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is a single lint finding.
type Diagnostic struct {
	Rule     string
	Message  string
	Line     int
	Column   int
	Severity Severity
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d %s %s (%s)", d.Line, d.Column, d.Severity, d.Message, d.Rule)
}

// Linter reports diagnostics for a piece of source text. An error means the
// engine itself failed, not that the content has problems.
type Linter interface {
	Lint(ctx context.Context, content string) ([]Diagnostic, error)
}

// LinterFunc adapts a plain function to the Linter interface.
type LinterFunc func(ctx context.Context, content string) ([]Diagnostic, error)

// Lint calls f(ctx, content).
func (f LinterFunc) Lint(ctx context.Context, content string) ([]Diagnostic, error) {
	return f(ctx, content)
}

// SortByPosition orders diagnostics by line, then column, keeping the
// relative order of diagnostics reported at the same position.
func SortByPosition(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Line != diags[j].Line {
			return diags[i].Line < diags[j].Line
		}
		return diags[i].Column < diags[j].Column
	})
}
