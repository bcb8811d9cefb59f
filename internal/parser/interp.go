package parser

import (
	"strings"

	"github.com/gosass/sass/internal/ast"
	"github.com/gosass/sass/internal/token"
	"github.com/gosass/sass/span"
)

// captureInterpolated reads tokens as literal text, splicing in parsed
// expressions wherever "#{" ... "}" appears, until stop reports true for
// the lookahead token (which is left unconsumed). This is the "captured
// as a token stream with embedded expressions" step §4.1 describes for
// selectors, unknown at-rule preludes, and interpolated values.
func (p *Parser) captureInterpolated(stop func(token.Token) bool) ast.Interpolation {
	var interp ast.Interpolation
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			interp.Parts = append(interp.Parts, ast.InterpPart{Text: buf.String()})
			buf.Reset()
		}
	}
	first := true
	for {
		tok := p.s.Scan()
		if _, ok := tok.(token.EOF); ok {
			p.s.Unscan()
			break
		}
		if stop(tok) {
			p.s.Unscan()
			break
		}
		if first {
			interp.Pos = tok.Span()
			first = false
		}
		if _, ok := tok.(token.InterpolationStart); ok {
			flush()
			expr := p.parseExprList()
			endTok := p.s.Scan()
			if _, ok := endTok.(token.InterpolationEnd); !ok {
				p.errorf(endTok.Span(), "expected \"}\" to close interpolation")
				p.s.Unscan()
			}
			interp.Parts = append(interp.Parts, ast.InterpPart{Expr: expr})
			interp.Pos = interp.Pos.To(tok.Span())
			continue
		}
		buf.WriteString(tok.Span().Text())
		interp.Pos = interp.Pos.To(tok.Span())
	}
	flush()
	return interp
}

// looksLikeDeclaration resolves the ambiguity between a style rule and a
// property declaration that both share the shape "prelude { ... }" or
// "prelude ;" (§4.3 "Declaration"/"Style rule"). It looks for the first
// depth-0 colon in the prelude's plain text that is not part of "::"; if
// the prelude contains interpolation, it is treated conservatively as a
// selector (interpolated property names are rare, and the risk of
// misreading a selector containing "#{...}" as a declaration is worse).
//
// When a block follows, a colon is only decisive when it is itself
// followed by whitespace or end-of-text: "font: { ... }" (whitespace
// after ':') is a nested declaration, but "a:hover { ... }" (no space
// before the pseudo-class name) stays a selector. When no block follows
// (the prelude ends at ';' or a bare newline), any depth-0 colon is
// decisive, since a bodyless style rule is never legal.
func looksLikeDeclaration(prelude ast.Interpolation, hasBlock bool) (isDecl bool, name ast.Interpolation, valueText string) {
	if prelude.HasInterpolation() {
		return false, ast.Interpolation{}, ""
	}
	text := prelude.PlainText()
	idx := findDeclarationColon(text)
	if idx < 0 {
		return false, ast.Interpolation{}, ""
	}
	after := text[idx+1:]
	if hasBlock && after != "" && !isSpaceByte(after[0]) {
		return false, ast.Interpolation{}, ""
	}
	name = ast.Interpolation{Parts: []ast.InterpPart{{Text: strings.TrimSpace(text[:idx])}}}
	return true, name, strings.TrimSpace(after)
}

func isSpaceByte(b byte) bool { return b == ' ' || b == '\t' || b == '\n' }

// findDeclarationColon returns the byte offset of the first depth-0
// colon in text that is not doubled ("::"), or -1 if none exists.
// Depth tracks (), [], and quoted strings so colons inside attribute
// selectors or function calls never count.
func findDeclarationColon(text string) int {
	depth := 0
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 {
				if i+1 < len(text) && text[i+1] == ':' {
					i++
					continue
				}
				return i
			}
		}
	}
	return -1
}

// spanOrZero is a small convenience used where a token's span is needed
// but the token might be absent.
func spanOrZero(t token.Token) span.Span {
	if t == nil {
		return span.Span{}
	}
	return t.Span()
}
