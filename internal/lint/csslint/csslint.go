// Package csslint is a small rule engine for stylesheets. It tokenizes with
// gorilla/css and walks the rule/declaration block structure, reporting
// diagnostics in the spirit of CSSLint's default rule set.
package csslint

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gorilla/css/scanner"

	"github.com/casestudy/sitescore/internal/lint"
)

// Rule names reported on diagnostics.
const (
	RuleParse               = "parse"
	RuleEmptyRules          = "empty-rules"
	RuleKnownProperties     = "known-properties"
	RuleDuplicateProperties = "duplicate-properties"
	RuleIDs                 = "ids"
	RuleZeroUnits           = "zero-units"
	RuleColorValues         = "color-values"
	RuleVendorPrefix        = "vendor-prefix"
)

var (
	dimensionRe = regexp.MustCompile(`^([+-]?(?:\d+\.?\d*|\.\d+))([a-zA-Z]+)$`)
	hexColorRe  = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
)

var vendorPrefixes = []string{"-webkit-", "-moz-", "-ms-", "-o-"}

// At-rules whose block contains nested rules rather than declarations.
var nestingAtRules = map[string]bool{
	"media":          true,
	"supports":       true,
	"document":       true,
	"layer":          true,
	"container":      true,
	"keyframes":      true,
	"scope":          true,
	"starting-style": true,
}

// Units that are not lengths; a zero with these units is meaningful.
var unitsAllowedOnZero = map[string]bool{
	"s": true, "ms": true, "deg": true, "rad": true, "grad": true, "turn": true,
	"hz": true, "khz": true, "dpi": true, "dpcm": true, "dppx": true, "x": true, "fr": true,
}

// Linter implements lint.Linter for CSS.
type Linter struct{}

var _ lint.Linter = (*Linter)(nil)

// New returns a CSS linter with the built-in rule set.
func New() *Linter {
	return &Linter{}
}

// Lint reports diagnostics for css. It only fails if ctx is already done.
func (l *Linter) Lint(ctx context.Context, css string) ([]lint.Diagnostic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Check(css), nil
}

// Check runs every rule over css and returns diagnostics ordered by position.
func Check(css string) []lint.Diagnostic {
	w := newWalker()
	w.run(scanner.New(css))
	lint.SortByPosition(w.diags)
	return w.diags
}

type blockKind int

const (
	ruleBlock blockKind = iota
	declBlock
)

type block struct {
	kind     blockKind
	line     int
	column   int
	decls    int
	props    map[string]bool
	prefixed map[string]*scanner.Token
}

type walker struct {
	stack []*block
	buf   []*scanner.Token
	diags []lint.Diagnostic
}

func newWalker() *walker {
	return &walker{stack: []*block{{kind: ruleBlock}}}
}

func (w *walker) top() *block {
	return w.stack[len(w.stack)-1]
}

func (w *walker) report(rule string, sev lint.Severity, tok *scanner.Token, format string, args ...any) {
	w.diags = append(w.diags, lint.Diagnostic{
		Rule:     rule,
		Message:  fmt.Sprintf(format, args...),
		Line:     tok.Line,
		Column:   tok.Column,
		Severity: sev,
	})
}

func (w *walker) run(s *scanner.Scanner) {
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			w.finish()
			return
		case scanner.TokenError:
			w.report(RuleParse, lint.SeverityError, tok, "Unable to tokenize the remaining input.")
			return
		case scanner.TokenS, scanner.TokenComment, scanner.TokenCDO, scanner.TokenCDC, scanner.TokenBOM:
			continue
		}

		if w.top().kind == ruleBlock {
			w.ruleToken(tok)
		} else {
			w.declToken(tok)
		}
	}
}

func (w *walker) ruleToken(tok *scanner.Token) {
	if tok.Type != scanner.TokenChar {
		w.buf = append(w.buf, tok)
		return
	}

	switch tok.Value {
	case "{":
		w.openBlock(tok)
	case ";":
		if len(w.buf) > 0 && w.buf[0].Type != scanner.TokenAtKeyword {
			w.report(RuleParse, lint.SeverityError, w.buf[0], "Expected LBRACE.")
		}
		w.buf = w.buf[:0]
	case "}":
		if len(w.buf) > 0 {
			w.report(RuleParse, lint.SeverityError, w.buf[0], "Expected LBRACE.")
			w.buf = w.buf[:0]
		}
		if len(w.stack) == 1 {
			w.report(RuleParse, lint.SeverityError, tok, "Unexpected token '}'.")
			return
		}
		w.stack = w.stack[:len(w.stack)-1]
	default:
		w.buf = append(w.buf, tok)
	}
}

func (w *walker) openBlock(tok *scanner.Token) {
	kind := declBlock
	if len(w.buf) > 0 && w.buf[0].Type == scanner.TokenAtKeyword {
		if nestingAtRules[atRuleName(w.buf[0].Value)] {
			kind = ruleBlock
		}
	} else {
		w.checkSelector(w.buf)
	}
	w.push(kind, tok)
	w.buf = w.buf[:0]
}

func (w *walker) push(kind blockKind, tok *scanner.Token) {
	w.stack = append(w.stack, &block{
		kind:     kind,
		line:     tok.Line,
		column:   tok.Column,
		props:    map[string]bool{},
		prefixed: map[string]*scanner.Token{},
	})
}

func (w *walker) declToken(tok *scanner.Token) {
	if tok.Type != scanner.TokenChar {
		w.buf = append(w.buf, tok)
		return
	}

	switch tok.Value {
	case ";":
		w.declaration(w.buf)
		w.buf = w.buf[:0]
	case "}":
		w.declaration(w.buf)
		w.buf = w.buf[:0]
		w.closeDeclBlock()
	case "{":
		// Nested rule inside a declaration block.
		w.checkSelector(w.buf)
		w.top().decls++
		w.push(declBlock, tok)
		w.buf = w.buf[:0]
	default:
		w.buf = append(w.buf, tok)
	}
}

func (w *walker) closeDeclBlock() {
	b := w.top()
	if b.decls == 0 {
		w.report(RuleEmptyRules, lint.SeverityWarning, &scanner.Token{Line: b.line, Column: b.column}, "Rule is empty.")
	}
	for standard, tok := range b.prefixed {
		if !b.props[standard] {
			w.report(RuleVendorPrefix, lint.SeverityWarning, tok,
				"The property %s is compatible with %s and should be included as well.", strings.ToLower(tok.Value), standard)
		}
	}
	w.stack = w.stack[:len(w.stack)-1]
}

func (w *walker) finish() {
	if w.top().kind == declBlock {
		w.declaration(w.buf)
	} else if len(w.buf) > 0 && w.buf[0].Type != scanner.TokenAtKeyword {
		w.report(RuleParse, lint.SeverityError, w.buf[0], "Expected LBRACE.")
	}
	w.buf = nil

	for len(w.stack) > 1 {
		b := w.top()
		w.report(RuleParse, lint.SeverityError, &scanner.Token{Line: b.line, Column: b.column}, "Expected RBRACE.")
		w.stack = w.stack[:len(w.stack)-1]
	}
}

func (w *walker) checkSelector(prelude []*scanner.Token) {
	for _, tok := range prelude {
		if tok.Type == scanner.TokenHash {
			w.report(RuleIDs, lint.SeverityWarning, tok, "Don't use IDs in selectors.")
			return
		}
	}
}

func (w *walker) declaration(tokens []*scanner.Token) {
	if len(tokens) == 0 {
		return
	}

	b := w.top()
	b.decls++

	tokens = joinCustomPropertyName(tokens)
	nameTok := tokens[0]
	if nameTok.Type != scanner.TokenIdent {
		w.report(RuleParse, lint.SeverityError, nameTok, "Unexpected token '%s'.", nameTok.Value)
		return
	}
	if len(tokens) < 2 || tokens[1].Type != scanner.TokenChar || tokens[1].Value != ":" {
		w.report(RuleParse, lint.SeverityError, nameTok, "Expected COLON.")
		return
	}

	name := strings.ToLower(nameTok.Value)
	value := tokens[2:]
	if len(value) == 0 {
		w.report(RuleParse, lint.SeverityError, nameTok, "Expected a value for property '%s'.", name)
		return
	}

	if strings.HasPrefix(name, "--") {
		return
	}

	if standard, ok := stripVendorPrefix(name); ok {
		if knownProperties[standard] {
			if _, seen := b.prefixed[standard]; !seen {
				b.prefixed[standard] = nameTok
			}
		}
	} else if !knownProperties[name] {
		w.report(RuleKnownProperties, lint.SeverityWarning, nameTok, "Unknown property '%s'.", name)
	}

	if b.props[name] {
		w.report(RuleDuplicateProperties, lint.SeverityWarning, nameTok, "Duplicate property '%s' found.", name)
	}
	b.props[name] = true

	w.checkValue(value)
}

func (w *walker) checkValue(value []*scanner.Token) {
	for _, tok := range value {
		switch tok.Type {
		case scanner.TokenDimension:
			if isZeroLength(tok.Value) {
				w.report(RuleZeroUnits, lint.SeverityWarning, tok, "Values of 0 shouldn't have units specified.")
			}
		case scanner.TokenHash:
			if !hexColorRe.MatchString(tok.Value) {
				w.report(RuleColorValues, lint.SeverityError, tok, "Expected a color but found '%s'.", tok.Value)
			}
		}
	}
}

// joinCustomPropertyName merges a leading "-" char token with a following
// "-name" ident, since the tokenizer does not treat "--name" as one ident.
func joinCustomPropertyName(tokens []*scanner.Token) []*scanner.Token {
	if len(tokens) < 2 {
		return tokens
	}
	dash, ident := tokens[0], tokens[1]
	if dash.Type != scanner.TokenChar || dash.Value != "-" || ident.Type != scanner.TokenIdent ||
		!strings.HasPrefix(ident.Value, "-") || ident.Line != dash.Line || ident.Column != dash.Column+1 {
		return tokens
	}
	merged := &scanner.Token{Type: scanner.TokenIdent, Value: "-" + ident.Value, Line: dash.Line, Column: dash.Column}
	return append([]*scanner.Token{merged}, tokens[2:]...)
}

func isZeroLength(dimension string) bool {
	m := dimensionRe.FindStringSubmatch(dimension)
	if m == nil {
		return false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil || n != 0 {
		return false
	}
	return !unitsAllowedOnZero[strings.ToLower(m[2])]
}

func atRuleName(keyword string) string {
	name := strings.ToLower(strings.TrimPrefix(keyword, "@"))
	if standard, ok := stripVendorPrefix(name); ok {
		return standard
	}
	return name
}

func stripVendorPrefix(name string) (string, bool) {
	for _, p := range vendorPrefixes {
		if strings.HasPrefix(name, p) {
			return strings.TrimPrefix(name, p), true
		}
	}
	return name, false
}
