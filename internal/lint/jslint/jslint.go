// Package jslint lints JavaScript with a fixed, built-in rule set. Syntax is
// validated with the tdewolff JS parser; the remaining rules run over the
// lexer's token stream so every finding carries a line and column.
package jslint

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"

	"github.com/casestudy/sitescore/internal/lint"
)

// Rule names reported on diagnostics.
const (
	RuleParse      = "parse"
	RuleNoDebugger = "no-debugger"
	RuleNoWith     = "no-with"
	RuleNoEval     = "no-eval"
	RuleEqeqeq     = "eqeqeq"
	RuleNoVar      = "no-var"
)

var errParserPanic = errors.New("jslint: parser panicked")

// Linter implements lint.Linter for JavaScript. It never reads any
// configuration from disk.
type Linter struct{}

var _ lint.Linter = (*Linter)(nil)

// New returns a JavaScript linter with the built-in rule set.
func New() *Linter {
	return &Linter{}
}

// Lint reports diagnostics for src. A syntax error yields a single parse
// diagnostic and skips the other rules. An error is returned only if ctx is
// done or the parser itself fails.
func (l *Linter) Lint(ctx context.Context, src string) (diags []lint.Diagnostic, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			diags = nil
			err = fmt.Errorf("%w: %v", errParserPanic, r)
		}
	}()

	ast, d, ok := checkSyntax(src)
	if !ok {
		return []lint.Diagnostic{d}, nil
	}
	return scanTokens(src, countStatements(ast)), nil
}

func checkSyntax(src string) (*js.AST, lint.Diagnostic, bool) {
	ast, err := js.Parse(parse.NewInputString(src), js.Options{})
	if err == nil {
		return ast, lint.Diagnostic{}, true
	}

	d := lint.Diagnostic{
		Rule:     RuleParse,
		Message:  "Parsing error: " + err.Error(),
		Line:     1,
		Column:   1,
		Severity: lint.SeverityError,
	}
	var perr *parse.Error
	if errors.As(err, &perr) {
		d.Message = "Parsing error: " + perr.Message
		d.Line, d.Column = perr.Line, perr.Column
	}
	return nil, d, false
}

// statementCounter counts the statements behind the keyword rules, so that a
// keyword the lexer cannot place (a method named "with") is only reported
// when the parser saw the statement.
type statementCounter map[string]int

func (c statementCounter) Enter(n js.INode) js.IVisitor {
	switch n := n.(type) {
	case *js.VarDecl:
		if n.TokenType == js.VarToken {
			c[RuleNoVar]++
		}
	case *js.DebuggerStmt:
		c[RuleNoDebugger]++
	case *js.WithStmt:
		c[RuleNoWith]++
	}
	return c
}

func (c statementCounter) Exit(js.INode) {}

func countStatements(ast *js.AST) statementCounter {
	c := statementCounter{}
	js.Walk(c, &ast.BlockStmt)
	return c
}

// position tracks the 1-based line and column of the next token.
type position struct {
	line, column int
}

func (p *position) advance(data []byte) {
	lines := countLineBreaks(data)
	if lines == 0 {
		p.column += len(data)
		return
	}
	p.line += lines
	p.column = len(data) - lastLineBreak(data)
}

func countLineBreaks(data []byte) int {
	n := bytes.Count(data, []byte("\n"))
	for i, c := range data {
		if c == '\r' && (i+1 == len(data) || data[i+1] != '\n') {
			n++
		}
	}
	return n
}

func lastLineBreak(data []byte) int {
	return max(bytes.LastIndexByte(data, '\n'), bytes.LastIndexByte(data, '\r'))
}

type scanner struct {
	pos   position
	diags []lint.Diagnostic

	prev, prev2 js.TokenType
	prevData    []byte

	// A keyword finding is held back one token so that keywords used as
	// object keys ("{ var: 1 }") are dropped and keywords that may be
	// method names ("{ var() {} }") are marked for reconciliation.
	pending     *lint.Diagnostic
	pendingPrev js.TokenType
	pendingWord string
	keywords    []keywordFinding
}

type keywordFinding struct {
	diag      lint.Diagnostic
	maybeName bool
}

func scanTokens(src string, statements statementCounter) []lint.Diagnostic {
	s := &scanner{pos: position{line: 1, column: 1}, prev: js.ErrorToken, prev2: js.ErrorToken}
	l := js.NewLexer(parse.NewInputString(src))

	for {
		tt, data := l.Next()
		if tt == js.ErrorToken {
			break
		}
		if (tt == js.DivToken || tt == js.DivEqToken) && regexpAllowed(s.prev) {
			tt, data = l.RegExp()
			if tt == js.ErrorToken {
				break
			}
		}

		switch tt {
		case js.WhitespaceToken, js.LineTerminatorToken, js.CommentToken, js.CommentLineTerminatorToken:
			s.pos.advance(data)
			continue
		}

		s.token(tt)
		s.pos.advance(data)
		s.prev2, s.prev, s.prevData = s.prev, tt, data
	}
	s.flush(js.ErrorToken)
	s.diags = append(s.diags, reconcile(s.keywords, statements)...)

	lint.SortByPosition(s.diags)
	return s.diags
}

func (s *scanner) token(tt js.TokenType) {
	s.flush(tt)

	afterDot := s.prev == js.DotToken || s.prev == js.OptChainToken
	switch tt {
	case js.VarToken:
		if !afterDot {
			s.hold(RuleNoVar, lint.SeverityWarning, "Unexpected var, use let or const instead.")
		}
	case js.DebuggerToken:
		if !afterDot {
			s.hold(RuleNoDebugger, lint.SeverityError, "Unexpected 'debugger' statement.")
		}
	case js.WithToken:
		if !afterDot {
			s.hold(RuleNoWith, lint.SeverityError, "Unexpected use of 'with' statement.")
		}
	case js.EqEqToken:
		s.report(RuleEqeqeq, lint.SeverityWarning, "Expected '===' and instead saw '=='.")
	case js.NotEqToken:
		s.report(RuleEqeqeq, lint.SeverityWarning, "Expected '!==' and instead saw '!='.")
	case js.OpenParenToken:
		if s.prev == js.IdentifierToken && string(s.prevData) == "eval" &&
			s.prev2 != js.DotToken && s.prev2 != js.OptChainToken {
			s.report(RuleNoEval, lint.SeverityError, "eval can be harmful.")
		}
	}
}

func (s *scanner) diagnostic(rule string, sev lint.Severity, msg string) lint.Diagnostic {
	return lint.Diagnostic{
		Rule:     rule,
		Message:  msg,
		Line:     s.pos.line,
		Column:   s.pos.column,
		Severity: sev,
	}
}

func (s *scanner) report(rule string, sev lint.Severity, msg string) {
	s.diags = append(s.diags, s.diagnostic(rule, sev, msg))
}

func (s *scanner) hold(rule string, sev lint.Severity, msg string) {
	d := s.diagnostic(rule, sev, msg)
	s.pending = &d
	s.pendingPrev, s.pendingWord = s.prev, string(s.prevData)
}

// flush records the held keyword finding unless next shows it was a property
// key. A keyword followed by "(" in member position may be a method name.
func (s *scanner) flush(next js.TokenType) {
	if s.pending == nil {
		return
	}
	if next != js.ColonToken {
		s.keywords = append(s.keywords, keywordFinding{
			diag:      *s.pending,
			maybeName: next == js.OpenParenToken && memberPosition(s.pendingPrev, s.pendingWord),
		})
	}
	s.pending = nil
}

// memberPosition reports whether a property or method name may follow the
// token prev (spelled word) inside an object literal or class body.
func memberPosition(prev js.TokenType, word string) bool {
	switch prev {
	case js.OpenBraceToken, js.CommaToken, js.SemicolonToken, js.CloseBraceToken,
		js.StaticToken, js.GetToken, js.SetToken, js.AsyncToken:
		return true
	}
	switch word {
	case "static", "get", "set", "async":
		return true
	}
	return false
}

// reconcile keeps every unambiguous keyword finding and as many possible
// method names, in source order, as the parser found extra statements.
func reconcile(findings []keywordFinding, statements statementCounter) []lint.Diagnostic {
	budget := map[string]int{}
	for rule, n := range statements {
		budget[rule] = n
	}
	for _, f := range findings {
		if !f.maybeName {
			budget[f.diag.Rule]--
		}
	}

	var out []lint.Diagnostic
	for _, f := range findings {
		switch {
		case !f.maybeName:
			out = append(out, f.diag)
		case budget[f.diag.Rule] > 0:
			budget[f.diag.Rule]--
			out = append(out, f.diag)
		}
	}
	return out
}

// regexpAllowed reports whether a '/' after prev starts a regular expression
// literal rather than a division.
func regexpAllowed(prev js.TokenType) bool {
	if js.IsNumeric(prev) {
		return false
	}
	switch prev {
	case js.IdentifierToken, js.PrivateIdentifierToken, js.StringToken, js.TemplateToken,
		js.TemplateEndToken, js.RegExpToken, js.CloseParenToken, js.CloseBracketToken,
		js.ThisToken, js.SuperToken, js.TrueToken, js.FalseToken, js.NullToken,
		js.IncrToken, js.DecrToken:
		return false
	}
	return true
}
