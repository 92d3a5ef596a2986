package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/casestudy/sitescore/internal/model"
)

const (
	formatText     = "text"
	formatMarkdown = "markdown"
	formatHTML     = "html"
)

var (
	errURLRequired   = errors.New("-url is required")
	errUnknownFormat = errors.New("unknown report format")
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`,
	"[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`,
)

type category struct {
	Name     string
	Score    int
	Feedback []string
}

type report struct {
	URL        string
	Elapsed    time.Duration
	Categories []category
}

func newReport(url string, res *model.AnalysisResult, elapsed time.Duration) report {
	fb := res.Feedback
	if fb == nil {
		fb = &model.Feedback{}
	}
	return report{
		URL:     url,
		Elapsed: elapsed,
		Categories: []category{
			{Name: "HTML", Score: res.Scores.HTML, Feedback: fb.HTML},
			{Name: "CSS", Score: res.Scores.CSS, Feedback: fb.CSS},
			{Name: "JavaScript", Score: res.Scores.JavaScript, Feedback: fb.JavaScript},
		},
	}
}

func rendererFor(format string) (func(report) (string, error), error) {
	switch strings.ToLower(format) {
	case formatText:
		return renderText, nil
	case formatMarkdown, "md":
		return func(r report) (string, error) { return renderMarkdown(r), nil }, nil
	case formatHTML:
		return renderHTML, nil
	}
	return nil, fmt.Errorf("%w: %q", errUnknownFormat, format)
}

func renderText(r report) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Site score for %s\n", r.URL)
	fmt.Fprintf(&b, "===================================\n")
	for _, c := range r.Categories {
		fmt.Fprintf(&b, "%-11s %3d/100\n", c.Name, c.Score)
		for _, f := range c.Feedback {
			fmt.Fprintf(&b, "  - %s\n", f)
		}
	}
	fmt.Fprintf(&b, "\nCompleted in %s\n", r.Elapsed.Round(time.Millisecond))
	return b.String(), nil
}

// codeSpan wraps s in a Markdown code span whose backtick fence is longer
// than any backtick run inside s.
func codeSpan(s string) string {
	longest, run := 0, 0
	for _, c := range s {
		if c == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	fence := strings.Repeat("`", longest+1)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		return fence + " " + s + " " + fence
	}
	return fence + s + fence
}

func renderMarkdown(r report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Site score\n\n")
	fmt.Fprintf(&b, "Target: %s\n\n", codeSpan(r.URL))

	b.WriteString("| Category | Score |\n|---|---:|\n")
	for _, c := range r.Categories {
		fmt.Fprintf(&b, "| %s | %d |\n", c.Name, c.Score)
	}

	for _, c := range r.Categories {
		fmt.Fprintf(&b, "\n## %s\n\n", c.Name)
		if len(c.Feedback) == 0 {
			b.WriteString("No issues found.\n")
			continue
		}
		for _, f := range c.Feedback {
			fmt.Fprintf(&b, "- %s\n", markdownEscaper.Replace(f))
		}
	}

	fmt.Fprintf(&b, "\n_Completed in %s._\n", r.Elapsed.Round(time.Millisecond))
	return b.String()
}

// renderHTML converts the Markdown report with GFM tables and sanitizes the
// result, since feedback quotes content from the scored site.
func renderHTML(r report) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(renderMarkdown(r)), &body); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	safe := bluemonday.UGCPolicy().SanitizeBytes(body.Bytes())

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>Site score report</title>\n</head>\n<body>\n")
	b.Write(safe)
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}
