// Package parser implements the shared recursive-descent parser for both
// surface syntaxes (§4.1): one Parser handles SCSS (brace/semicolon
// delimited), the indented Sass syntax (newline/indentation delimited),
// and plain CSS, parameterized on internal/scanner's Syntax the same way
// the scanner is. The statement-dispatch shape (a big switch keyed on
// the lookahead token, consumeX per construct) and the Parser.Errors
// accumulator are grounded on benbjohnson/css's Parser
// (ConsumeRules/ConsumeAtRule/ConsumeQualifiedRule); the expression
// grammar (operator precedence climbing, interpolation-aware literals)
// is new, since the teacher's CSS3 grammar has no expression language.
package parser

import (
	"fmt"
	"strings"

	"github.com/gosass/sass/internal/ast"
	"github.com/gosass/sass/internal/scanner"
	"github.com/gosass/sass/internal/token"
	"github.com/gosass/sass/span"
)

// Error is a syntax error encountered while parsing (§7
// "SassFormatException — parse failure, carries a single span").
type Error struct {
	Message string
	Pos     span.Span
}

func (e *Error) Error() string { return e.Message }

// Parser holds parse state for one stylesheet.
type Parser struct {
	Errors []*Error

	s          *scanner.Scanner
	src        *span.Source
	syntax     scanner.Syntax
	parenDepth int
}

// New returns a Parser over src using the given surface syntax.
func New(src *span.Source, syntax scanner.Syntax) *Parser {
	return &Parser{s: scanner.New(src, syntax), src: src, syntax: syntax}
}

func (p *Parser) errorf(sp span.Span, format string, args ...any) {
	p.Errors = append(p.Errors, &Error{Message: fmt.Sprintf(format, args...), Pos: sp})
}

// ParseStylesheet parses an entire stylesheet (§3 "Stylesheet").
func (p *Parser) ParseStylesheet() *ast.Stylesheet {
	start := p.peekSpan()
	body := p.parseStatements(nil)
	end := p.peekSpan()
	return &ast.Stylesheet{Pos: start.To(end), Body: body, URI: p.src.URL}
}

// parseStatements parses statements until isEnd reports true for the
// current lookahead token (or EOF), used both at the stylesheet root and
// inside a block; isEnd == nil means "run to EOF".
func (p *Parser) parseStatements(isEnd func(token.Token) bool) []ast.Statement {
	var stmts []ast.Statement
	for {
		p.skipInsignificant()
		tok := p.s.Scan()
		if _, ok := tok.(token.EOF); ok {
			p.s.Unscan()
			break
		}
		if isEnd != nil && isEnd(tok) {
			p.s.Unscan()
			break
		}
		if _, ok := tok.(token.Newline); ok {
			continue
		}
		p.s.Unscan()
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// skipInsignificant consumes tokens that never start or end a
// statement: plain whitespace always, and (outside the indented syntax)
// newlines too.
func (p *Parser) skipInsignificant() {
	for {
		tok := p.s.Scan()
		switch tok.(type) {
		case token.Whitespace:
			continue
		case token.Newline:
			if p.syntax != scanner.Indented {
				continue
			}
		}
		p.s.Unscan()
		return
	}
}

func (p *Parser) peekSpan() span.Span {
	tok := p.s.Scan()
	p.s.Unscan()
	return tok.Span()
}

// parseStatement dispatches on the lookahead token (§3 "Statement
// variants").
func (p *Parser) parseStatement() ast.Statement {
	start := p.peekSpan()
	tok := p.s.Scan()
	switch t := tok.(type) {
	case token.AtKeyword:
		return p.parseAtRule(t, start)
	case token.Variable:
		p.s.Unscan()
		return p.parseVariableDecl(start)
	case token.Comment:
		lc := ast.LoudComment{Text: ast.Interpolation{Pos: start, Parts: []ast.InterpPart{{Text: t.Value}}}}
		lc.Pos = start.To(t.Span())
		return lc
	default:
		p.s.Unscan()
		return p.parseStyleRuleOrDeclaration(start)
	}
}

// parseVariableDecl parses "$name: expr [!default] [!global]" (§3).
func (p *Parser) parseVariableDecl(start span.Span) ast.Statement {
	v := p.s.Scan().(token.Variable)
	p.skipInsignificant()
	p.expectColon()
	p.skipInsignificant()
	value := p.parseExprList()
	guarded, global := false, false
	for {
		p.skipInsignificant()
		tok := p.s.Scan()
		if delim, ok := tok.(token.Delim); ok && delim.Value == '!' {
			p.skipInsignificant()
			ident := p.expectIdent()
			switch strings.ToLower(ident) {
			case "default":
				guarded = true
			case "global":
				global = true
			default:
				p.errorf(tok.Span(), "unknown flag !%s", ident)
			}
			continue
		}
		p.s.Unscan()
		break
	}
	end := p.consumeStatementEnd()
	decl := ast.VariableDecl{Name: v.Name, Value: value, Guarded: guarded, Global: global}
	decl.Pos = start.To(end)
	return decl
}

// parseStyleRuleOrDeclaration resolves the StyleRule/Declaration
// ambiguity by capturing the prelude as an interpolated string and
// inspecting it for a property-declaration-shaped colon (see looksLikeDeclaration).
func (p *Parser) parseStyleRuleOrDeclaration(start span.Span) ast.Statement {
	prelude := p.captureInterpolated(func(t token.Token) bool {
		switch t.(type) {
		case token.LBrace, token.RBrace, token.Semicolon, token.Indent, token.Dedent, token.Newline, token.EOF:
			return true
		}
		return false
	})
	term := p.s.Scan()
	hasBlock := isBlockStart(term)
	p.s.Unscan()

	if isDecl, name, valueText := looksLikeDeclaration(prelude, hasBlock); isDecl {
		var value ast.Expr
		if valueText != "" {
			value = p.parseExprFromText(valueText)
		}
		var body []ast.Statement
		if hasBlock {
			body = p.parseBody()
		} else {
			p.consumeStatementEnd()
		}
		decl := ast.Declaration{
			Name:   name,
			Value:  value,
			Body:   body,
			Custom: strings.HasPrefix(strings.TrimSpace(name.PlainText()), "--"),
		}
		decl.Pos = start.To(p.lastSpan())
		return decl
	}

	body := p.parseBody()
	sr := ast.StyleRule{Selector: prelude, Body: body}
	sr.Pos = start.To(p.lastSpan())
	return sr
}

func (p *Parser) lastSpan() span.Span {
	return p.s.Current().Span()
}

func isBlockStart(t token.Token) bool {
	switch t.(type) {
	case token.LBrace, token.Indent:
		return true
	}
	return false
}

// parseBody consumes one statement body, whichever delimiter policy this
// parser's syntax uses: "{" ... "}" for SCSS/CSS, Indent ... Dedent for
// the indented syntax. Returns nil if no body follows (a bodyless
// at-rule terminated by ';', or the indented syntax's no-further-indent
// case).
func (p *Parser) parseBody() []ast.Statement {
	p.skipInsignificant()
	tok := p.s.Scan()
	if _, ok := tok.(token.Newline); ok && p.syntax == scanner.Indented {
		// An indented block starts on the next line, after the newline.
		tok = p.s.Scan()
	}
	switch tok.(type) {
	case token.LBrace:
		stmts := p.parseStatements(func(t token.Token) bool {
			_, ok := t.(token.RBrace)
			return ok
		})
		p.expectRBrace()
		return stmts
	case token.Indent:
		stmts := p.parseStatements(func(t token.Token) bool {
			_, ok := t.(token.Dedent)
			return ok
		})
		p.consumeIf(func(t token.Token) bool { _, ok := t.(token.Dedent); return ok })
		return stmts
	default:
		p.s.Unscan()
		return nil
	}
}

// consumeStatementEnd consumes the token that properly ends a
// non-block statement: ';' for SCSS/CSS, or a newline/dedent/EOF for the
// indented syntax (where the terminator is whatever already stopped the
// capturing loop and need not be explicitly present). A closing '}' also
// ends the last statement of a block and is left for the block to consume.
func (p *Parser) consumeStatementEnd() span.Span {
	p.skipInsignificantNoNewline()
	tok := p.s.Scan()
	switch tok.(type) {
	case token.Semicolon:
		return tok.Span()
	case token.Newline, token.Dedent, token.EOF, token.RBrace:
		p.s.Unscan()
		return p.peekSpan()
	default:
		p.errorf(tok.Span(), "expected \";\"")
		p.s.Unscan()
		return p.peekSpan()
	}
}

// skipInsignificantNoNewline is like skipInsignificant but never treats
// a Newline as insignificant, used right before consumeStatementEnd so a
// pending newline in indented mode is left for the statement loop.
func (p *Parser) skipInsignificantNoNewline() {
	for {
		tok := p.s.Scan()
		if _, ok := tok.(token.Whitespace); ok {
			continue
		}
		p.s.Unscan()
		return
	}
}

func (p *Parser) expectColon() span.Span {
	tok := p.s.Scan()
	if _, ok := tok.(token.Colon); ok {
		return tok.Span()
	}
	p.errorf(tok.Span(), "expected \":\"")
	p.s.Unscan()
	return tok.Span()
}

func (p *Parser) expectRBrace() span.Span {
	tok := p.s.Scan()
	if _, ok := tok.(token.RBrace); ok {
		return tok.Span()
	}
	p.errorf(tok.Span(), "expected \"}\"")
	p.s.Unscan()
	return tok.Span()
}

func (p *Parser) expectIdent() string {
	p.skipInsignificant()
	tok := p.s.Scan()
	if id, ok := tok.(token.Ident); ok {
		return id.Value
	}
	p.errorf(tok.Span(), "expected identifier")
	p.s.Unscan()
	return ""
}

func (p *Parser) consumeIf(match func(token.Token) bool) (token.Token, bool) {
	tok := p.s.Scan()
	if match(tok) {
		return tok, true
	}
	p.s.Unscan()
	return tok, false
}

// parseExprFromText re-parses a substring of the already-scanned source
// (a declaration value, split off after the disambiguating colon) as a
// full expression, the "captured ... then re-parsed" step §4.1
// describes. Spans inside the result are relative to this sub-source
// rather than the enclosing stylesheet, a known imprecision in source
// maps for this path (see DESIGN.md).
func (p *Parser) parseExprFromText(text string) ast.Expr {
	sub := New(&span.Source{URL: p.src.URL, Text: text}, p.syntax)
	expr := sub.parseExprList()
	for _, e := range sub.Errors {
		p.Errors = append(p.Errors, e)
	}
	return expr
}
