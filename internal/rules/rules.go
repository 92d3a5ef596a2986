// Package rules turns page content into category scores. Every evaluator
// starts from 100 and subtracts fixed penalties per finding, never going
// below zero. The HTML rules are plain text checks; the CSS and JavaScript
// rules delegate to an injected lint.Linter.
package rules

import (
	"fmt"
	"strings"

	"github.com/casestudy/sitescore/internal/lint"
)

const maxScore = 100

// lineCount counts lines the way a split on "\n" does: "" has one line.
func lineCount(content string) int {
	return strings.Count(content, "\n") + 1
}

type tally struct {
	score    int
	feedback []string
}

func newTally() *tally {
	return &tally{score: maxScore, feedback: []string{}}
}

func (t *tally) deduct(points int, format string, args ...any) {
	t.score -= points
	t.feedback = append(t.feedback, fmt.Sprintf(format, args...))
}

func (t *tally) result() (int, []string) {
	return max(t.score, 0), t.feedback
}

// severityLabel renders a severity in the casing each category's feedback uses.
func severityLabel(sev lint.Severity, upper bool) string {
	label := "Warning"
	if sev == lint.SeverityError {
		label = "Error"
	}
	if upper {
		return strings.ToUpper(label)
	}
	return label
}
