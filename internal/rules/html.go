package rules

import (
	"regexp"
	"strings"

	"github.com/casestudy/sitescore/internal/model"
)

const (
	semanticTagPenalty = 10
	titlePenalty       = 5
	imageAltPenalty    = 10
	deprecatedPenalty  = 15
	largeHTMLPenalty   = 5
	maxHTMLLines       = 200
)

var (
	imgWithAltRe    = regexp.MustCompile(`<img[^>]+alt="[^"]*"`)
	deprecatedTagRe = regexp.MustCompile(`<(font|center|marquee)[\s/>]`)
)

// EvaluateHTML scores a raw HTML document. Matching is textual and
// case-sensitive so identical input always produces identical output.
func EvaluateHTML(content string) model.CategoryResult {
	t := newTally()

	for _, tag := range []string{"header", "main", "footer"} {
		if !strings.Contains(content, "<"+tag+">") {
			t.deduct(semanticTagPenalty, "Missing <%s> tag for semantic structure.", tag)
		}
	}
	if !imgWithAltRe.MatchString(content) {
		t.deduct(imageAltPenalty, "Images are missing alt attributes for accessibility.")
	}
	if !strings.Contains(content, "<title>") {
		t.deduct(titlePenalty, "Missing <title> tag for page title.")
	}
	if m := deprecatedTagRe.FindStringSubmatch(content); m != nil {
		t.deduct(deprecatedPenalty, "Deprecated <%s> tag found; use CSS for presentation instead.", m[1])
	}
	if n := lineCount(content); n > maxHTMLLines {
		t.deduct(largeHTMLPenalty, "Document has %d lines (limit %d); consider splitting it up.", n, maxHTMLLines)
	}

	score, feedback := t.result()
	return model.CategoryResult{Score: score, Feedback: feedback}
}
