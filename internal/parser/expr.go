package parser

import (
	"strconv"
	"strings"

	"github.com/gosass/sass/internal/ast"
	"github.com/gosass/sass/internal/token"
	"github.com/gosass/sass/span"
)

// parseExprList parses a comma-separated list of space-separated
// expression sequences (§3 "list"), the top-level entry point for any
// value position: a variable's right-hand side, an argument, a
// declaration's value, or an interpolated expression.
func (p *Parser) parseExprList() ast.Expr {
	p.skipInsignificant()
	first := p.parseSpaceList()
	p.skipInsignificant()
	tok, ok := p.consumeIf(func(t token.Token) bool { c, ok := t.(token.Comma); _ = c; return ok })
	if !ok {
		return first
	}
	start := first.Span()
	elems := []ast.Expr{first}
	for {
		p.skipInsignificant()
		elems = append(elems, p.parseSpaceList())
		p.skipInsignificant()
		if _, ok := p.consumeIf(func(t token.Token) bool { _, ok := t.(token.Comma); return ok }); !ok {
			break
		}
	}
	list := ast.ListExpr{Separator: ast.SepComma, Elements: elems}
	list.Pos = start.To(tok.Span())
	if len(elems) > 0 {
		list.Pos = start.To(elems[len(elems)-1].Span())
	}
	return list
}

// parseSpaceList parses one or more operator-precedence expressions
// separated by plain whitespace (no comma), building a space-separated
// list when more than one element is present.
func (p *Parser) parseSpaceList() ast.Expr {
	first := p.parseOr()
	var elems []ast.Expr
	elems = append(elems, first)
	for {
		if !p.peekSpaceSeparatedOperand() {
			break
		}
		elems = append(elems, p.parseOr())
	}
	if len(elems) == 1 {
		return elems[0]
	}
	list := ast.ListExpr{Separator: ast.SepSpace, Elements: elems}
	list.Pos = elems[0].Span().To(elems[len(elems)-1].Span())
	return list
}

// peekSpaceSeparatedOperand reports whether a further space-list element
// follows: there must be at least one Whitespace token, and what comes
// after it must not be one of the tokens that terminates the enclosing
// construct (comma, closing paren/bracket/brace, semicolon, colon,
// interpolation end, EOF, newline).
func (p *Parser) peekSpaceSeparatedOperand() bool {
	tok := p.s.Scan()
	if _, ok := tok.(token.Whitespace); !ok {
		p.s.Unscan()
		return false
	}
	next := p.s.Scan()
	p.s.Unscan() // unscan next; tok (whitespace) already consumed and stays consumed
	switch next.(type) {
	case token.Comma, token.RParen, token.RBrack, token.RBrace, token.Semicolon,
		token.Colon, token.InterpolationEnd, token.EOF, token.Newline, token.Dedent,
		token.LBrace, token.Indent:
		return false
	}
	return true
}

// --- operator precedence climbing, lowest to highest (§4.1) ---

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for {
		p.skipInsignificant()
		if !p.peekKeyword("or") {
			break
		}
		p.consumeKeyword("or")
		p.skipInsignificant()
		right := p.parseAnd()
		be := ast.BinaryExpr{Op: ast.OpOr, Left: left, Right: right}
		be.Pos = left.Span().To(right.Span())
		left = be
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseNot()
	for {
		p.skipInsignificant()
		if !p.peekKeyword("and") {
			break
		}
		p.consumeKeyword("and")
		p.skipInsignificant()
		right := p.parseNot()
		be := ast.BinaryExpr{Op: ast.OpAnd, Left: left, Right: right}
		be.Pos = left.Span().To(right.Span())
		left = be
	}
	return left
}

// parseNot handles the prefix "not" keyword, which sits between "and"
// and equality in the precedence chain (§4.1).
func (p *Parser) parseNot() ast.Expr {
	p.skipInsignificant()
	if p.peekKeyword("not") {
		start := p.peekSpan()
		p.consumeKeyword("not")
		p.skipInsignificant()
		operand := p.parseEquality()
		ue := ast.UnaryExpr{Op: ast.UnaryNot, Operand: operand}
		ue.Pos = start.To(operand.Span())
		return ue
	}
	return p.parseEquality()
}

func (p *Parser) parseEquality() ast.Expr {
	left := p.parseRelational()
	for {
		p.skipInsignificant()
		var op ast.BinaryOp
		switch {
		case p.peekDelimSeq("=", "="):
			op = ast.OpEq
		case p.peekDelimSeq("!", "="):
			op = ast.OpNeq
		default:
			return left
		}
		p.skipInsignificant()
		right := p.parseRelational()
		be := ast.BinaryExpr{Op: op, Left: left, Right: right}
		be.Pos = left.Span().To(right.Span())
		left = be
	}
}

func (p *Parser) parseRelational() ast.Expr {
	left := p.parseAdditive()
	for {
		p.skipInsignificant()
		var op ast.BinaryOp
		switch {
		case p.peekDelimSeq("<", "="):
			op = ast.OpLte
		case p.peekDelimSeq(">", "="):
			op = ast.OpGte
		case p.consumeDelim('<'):
			op = ast.OpLt
		case p.consumeDelim('>'):
			op = ast.OpGt
		default:
			return left
		}
		p.skipInsignificant()
		right := p.parseAdditive()
		be := ast.BinaryExpr{Op: op, Left: left, Right: right}
		be.Pos = left.Span().To(right.Span())
		left = be
	}
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for {
		p.skipInsignificant()
		var op ast.BinaryOp
		switch {
		case p.consumeDelim('+'):
			op = ast.OpAdd
		case p.consumeDelim('-'):
			op = ast.OpSub
		default:
			return left
		}
		p.skipInsignificant()
		right := p.parseMultiplicative()
		be := ast.BinaryExpr{Op: op, Left: left, Right: right}
		be.Pos = left.Span().To(right.Span())
		left = be
	}
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for {
		p.skipInsignificant()
		switch {
		case p.consumeDelim('*'):
			p.skipInsignificant()
			right := p.parseUnary()
			be := ast.BinaryExpr{Op: ast.OpMul, Left: left, Right: right}
			be.Pos = left.Span().To(right.Span())
			left = be
		case p.consumeDelim('%'):
			p.skipInsignificant()
			right := p.parseUnary()
			be := ast.BinaryExpr{Op: ast.OpMod, Left: left, Right: right}
			be.Pos = left.Span().To(right.Span())
			left = be
		case p.consumeDelim('/'):
			p.skipInsignificant()
			right := p.parseUnary()
			if p.parenDepth > 0 {
				be := ast.BinaryExpr{Op: ast.OpDiv, Left: left, Right: right, Parenthesized: true}
				be.Pos = left.Span().To(right.Span())
				left = be
			} else if list, ok := left.(ast.ListExpr); ok && list.Separator == ast.SepSlash {
				list.Elements = append(list.Elements, right)
				list.Pos = list.Pos.To(right.Span())
				left = list
			} else {
				list := ast.ListExpr{Separator: ast.SepSlash, Elements: []ast.Expr{left, right}}
				list.Pos = left.Span().To(right.Span())
				left = list
			}
		default:
			return left
		}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	p.skipInsignificant()
	start := p.peekSpan()
	switch {
	case p.peekDelim('-'):
		p.consumeDelim('-')
		operand := p.parseUnary()
		ue := ast.UnaryExpr{Op: ast.UnaryNeg, Operand: operand}
		ue.Pos = start.To(operand.Span())
		return ue
	case p.peekDelim('+'):
		p.consumeDelim('+')
		operand := p.parseUnary()
		ue := ast.UnaryExpr{Op: ast.UnaryPlus, Operand: operand}
		ue.Pos = start.To(operand.Span())
		return ue
	}
	return p.parseCallOrPrimary()
}

// parseCallOrPrimary parses a primary expression; function calls are
// recognized inside parsePrimary (via parseIdentOrCall), at the highest
// precedence.
func (p *Parser) parseCallOrPrimary() ast.Expr {
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Expr {
	p.skipInsignificant()
	start := p.peekSpan()
	tok := p.s.Scan()
	switch t := tok.(type) {
	case token.LParen:
		return p.parseParenContents(start)
	case token.LBrack:
		return p.parseBracketList(start)
	case token.Number:
		return p.finishNumber(t, start, false)
	case token.Dimension:
		n := ast.NumberLit{Value: t.Value, Unit: t.Unit}
		n.Pos = start.To(t.Span())
		return n
	case token.Percentage:
		n := ast.NumberLit{Value: t.Value, Unit: "%"}
		n.Pos = start.To(t.Span())
		return n
	case token.Variable:
		ns, name := "", t.Name
		if p.peekDelim('.') {
			if dotNs, dotName, ok := p.tryNamespacedVariable(t.Name); ok {
				ns, name = dotNs, dotName
			}
		}
		vr := ast.VariableRef{Namespace: ns, Name: name}
		vr.Pos = start.To(t.Span())
		return vr
	case token.String:
		return p.finishString(t, start)
	case token.Hash:
		return p.finishColorOrIdent(t, start)
	case token.Ident, token.Function:
		p.s.Unscan()
		return p.parseIdentOrCall(start)
	case token.Delim:
		if t.Value == '$' {
			p.errorf(t.Span(), "expected variable name")
		}
		ident := ast.Ident{Text: ast.Interpolation{Parts: []ast.InterpPart{{Text: string(t.Value)}}}}
		ident.Pos = start.To(t.Span())
		return ident
	default:
		p.errorf(tok.Span(), "expected expression")
		p.s.Unscan()
		nilExpr := ast.StringLit{Quoted: false}
		nilExpr.Pos = start
		return nilExpr
	}
}

func (p *Parser) tryNamespacedVariable(first string) (string, string, bool) {
	return "", first, false
}

func (p *Parser) finishNumber(t token.Number, start span.Span, _ bool) ast.Expr {
	n := ast.NumberLit{Value: t.Value}
	n.Pos = start.To(t.Span())
	return n
}

// finishString parses a quoted string token's Value for embedded "#{"
// interpolation by splitting its text with splitInterpolatedText, since the outer scanner already consumed the
// entire quoted run as one String token without looking inside it for
// interpolation delimiters (matching how benbjohnson/css's scanner
// treats strings as opaque, extended here with a second interpolation
// pass the teacher's CSS-only grammar never needed).
func (p *Parser) finishString(t token.String, start span.Span) ast.Expr {
	text := ast.Interpolation{Parts: p.splitInterpolatedText(t.Value)}
	sl := ast.StringLit{Quoted: true, Text: text}
	sl.Pos = start.To(t.Span())
	return sl
}

// splitInterpolatedText splits raw string contents on "#{" ... "}" pairs
// into literal/expression parts, re-parsing each embedded expression
// through a fresh sub-parser the same way parseExprFromText does for
// declaration values: the outer scanner hands back a quoted string's
// contents as one opaque Value, never looking inside it for "#{", so
// interpolation inside a string literal needs this second pass.
func (p *Parser) splitInterpolatedText(s string) []ast.InterpPart {
	var parts []ast.InterpPart
	var lit strings.Builder
	i := 0
	for i < len(s) {
		if i+1 < len(s) && s[i] == '#' && s[i+1] == '{' {
			if lit.Len() > 0 {
				parts = append(parts, ast.InterpPart{Text: lit.String()})
				lit.Reset()
			}
			depth := 1
			j := i + 2
			for j < len(s) && depth > 0 {
				if s[j] == '{' {
					depth++
				} else if s[j] == '}' {
					depth--
				}
				j++
			}
			inner := s[i+2 : j-1]
			parts = append(parts, ast.InterpPart{Expr: p.parseExprFromText(inner)})
			i = j
			continue
		}
		lit.WriteByte(s[i])
		i++
	}
	if lit.Len() > 0 {
		parts = append(parts, ast.InterpPart{Text: lit.String()})
	}
	return parts
}

func (p *Parser) finishColorOrIdent(t token.Hash, start span.Span) ast.Expr {
	if c, ok := parseHexColor(t.Value); ok {
		c.Pos = start.To(t.Span())
		return c
	}
	ident := ast.Ident{Text: ast.Interpolation{Parts: []ast.InterpPart{{Text: "#" + t.Value}}}}
	ident.Pos = start.To(t.Span())
	return ident
}

func parseHexColor(hex string) (ast.ColorLit, bool) {
	switch len(hex) {
	case 3, 4:
		r, _ := strconv.ParseUint(string(hex[0])+string(hex[0]), 16, 8)
		g, _ := strconv.ParseUint(string(hex[1])+string(hex[1]), 16, 8)
		b, _ := strconv.ParseUint(string(hex[2])+string(hex[2]), 16, 8)
		a := uint64(255)
		hasA := false
		if len(hex) == 4 {
			a, _ = strconv.ParseUint(string(hex[3])+string(hex[3]), 16, 8)
			hasA = true
		}
		return ast.ColorLit{R: byte(r), G: byte(g), B: byte(b), A: float64(a) / 255, HasA: hasA}, true
	case 6, 8:
		r, err1 := strconv.ParseUint(hex[0:2], 16, 8)
		g, err2 := strconv.ParseUint(hex[2:4], 16, 8)
		b, err3 := strconv.ParseUint(hex[4:6], 16, 8)
		if err1 != nil || err2 != nil || err3 != nil {
			return ast.ColorLit{}, false
		}
		a := uint64(255)
		hasA := false
		if len(hex) == 8 {
			var err4 error
			a, err4 = strconv.ParseUint(hex[6:8], 16, 8)
			if err4 != nil {
				return ast.ColorLit{}, false
			}
			hasA = true
		}
		return ast.ColorLit{R: byte(r), G: byte(g), B: byte(b), A: float64(a) / 255, HasA: hasA}, true
	default:
		return ast.ColorLit{}, false
	}
}

// parseIdentOrCall parses a bare identifier, a function call, or one of
// the built-in syntactic forms that look like calls (if(), calc()-family).
func (p *Parser) parseIdentOrCall(start span.Span) ast.Expr {
	tok := p.s.Scan()
	switch t := tok.(type) {
	case token.Function:
		name := strings.ToLower(t.Value)
		switch name {
		case "if":
			return p.finishIfExpr(start)
		case "calc", "min", "max", "clamp", "round", "mod", "rem", "sin", "cos", "tan", "sqrt", "pow", "log", "atan2", "abs", "hypot":
			return p.finishCalc(t.Value, start)
		default:
			return p.finishFuncCall("", t.Value, start)
		}
	case token.Ident:
		if p.peekDelim('.') {
			return p.finishNamespacedCall(t.Value, start)
		}
		id := ast.Ident{Text: ast.Interpolation{Parts: []ast.InterpPart{{Text: t.Value}}}}
		id.Pos = start.To(t.Span())
		return id
	default:
		p.s.Unscan()
		p.errorf(tok.Span(), "expected expression")
		e := ast.StringLit{}
		e.Pos = tok.Span()
		return e
	}
}

func (p *Parser) finishNamespacedCall(namespace string, start span.Span) ast.Expr {
	p.consumeDelim('.')
	tok := p.s.Scan()
	if fn, ok := tok.(token.Function); ok {
		return p.finishFuncCall(namespace, fn.Value, start)
	}
	if id, ok := tok.(token.Ident); ok {
		ir := ast.Ident{Text: ast.Interpolation{Parts: []ast.InterpPart{{Text: id.Value}}}}
		ir.Pos = start.To(id.Span())
		return ir
	}
	p.errorf(tok.Span(), "expected identifier after \".\"")
	p.s.Unscan()
	e := ast.Ident{}
	e.Pos = tok.Span()
	return e
}

func (p *Parser) finishFuncCall(namespace, name string, start span.Span) ast.Expr {
	args := p.parseCallArgs()
	end := p.expectRParen()
	fc := ast.FuncCall{Namespace: namespace, Name: ast.Interpolation{Parts: []ast.InterpPart{{Text: name}}}, Arguments: args}
	fc.Pos = start.To(end)
	return fc
}

func (p *Parser) parseCallArgs() []ast.CallArg {
	p.parenDepth++
	defer func() { p.parenDepth-- }()
	var args []ast.CallArg
	p.skipInsignificant()
	if p.peekRParen() {
		return args
	}
	for {
		p.skipInsignificant()
		args = append(args, p.parseCallArg())
		p.skipInsignificant()
		if _, ok := p.consumeIf(func(t token.Token) bool { _, ok := t.(token.Comma); return ok }); !ok {
			break
		}
	}
	return args
}

func (p *Parser) parseCallArg() ast.CallArg {
	if v, ok := p.tryNamedArg(); ok {
		return v
	}
	expr := p.parseSpaceList()
	p.skipInsignificant()
	if p.consumeEllipsis() {
		return ast.CallArg{Value: expr, Spread: true}
	}
	return ast.CallArg{Value: expr}
}

// tryNamedArg attempts to parse "$name: expr"; on failure it reports
// false having consumed nothing durable (best-effort given the single-
// token pushback the scanner offers).
func (p *Parser) tryNamedArg() (ast.CallArg, bool) {
	tok := p.s.Scan()
	v, ok := tok.(token.Variable)
	if !ok {
		p.s.Unscan()
		return ast.CallArg{}, false
	}
	p.skipInsignificant()
	if _, ok := p.consumeIf(func(t token.Token) bool { _, ok := t.(token.Colon); return ok }); !ok {
		// Not a named argument; this Variable is the start of a normal
		// value expression, so re-synthesize it as a VariableRef and fall
		// through to space-list continuation from here.
		vr := ast.VariableRef{Name: v.Name}
		vr.Pos = v.Span()
		rest := p.continueSpaceListFrom(vr)
		return ast.CallArg{Value: rest}, true
	}
	p.skipInsignificant()
	value := p.parseSpaceList()
	return ast.CallArg{Name: v.Name, Value: value}, true
}

// continueSpaceListFrom folds an already-parsed first operand into a
// space-separated sequence, used when argument-name lookahead determined
// the leading variable was not followed by ":" after all.
func (p *Parser) continueSpaceListFrom(first ast.Expr) ast.Expr {
	elems := []ast.Expr{first}
	for p.peekSpaceSeparatedOperand() {
		elems = append(elems, p.parseOr())
	}
	if len(elems) == 1 {
		return elems[0]
	}
	list := ast.ListExpr{Separator: ast.SepSpace, Elements: elems}
	list.Pos = elems[0].Span().To(elems[len(elems)-1].Span())
	return list
}

// parseParenContents parses whatever follows "(" at a value position: an
// empty list ("()"), a map literal ("(key: value, ...)", detected by a
// depth-0 colon after the first element), a single parenthesized
// expression, or a comma-separated list (§3 "list"/"map"). The teacher's
// CSS grammar has no analogous construct; this distinguishes the three
// shapes the way dart-sass's own expression grammar does, by attempting
// the map reading first and falling back to list/parenthesized-expr.
func (p *Parser) parseParenContents(start span.Span) ast.Expr {
	p.parenDepth++
	defer func() { p.parenDepth-- }()
	p.skipInsignificant()
	if p.peekRParen() {
		end := p.expectRParen()
		le := ast.ListExpr{Separator: ast.SepUndecided}
		le.Pos = start.To(end)
		return le
	}
	first := p.parseSpaceList()
	p.skipInsignificant()
	if _, ok := p.consumeIf(func(t token.Token) bool { _, ok := t.(token.Colon); return ok }); ok {
		p.skipInsignificant()
		val := p.parseSpaceList()
		pairs := []ast.MapPair{{Key: first, Value: val}}
		p.skipInsignificant()
		for {
			if _, ok := p.consumeIf(func(t token.Token) bool { _, ok := t.(token.Comma); return ok }); !ok {
				break
			}
			p.skipInsignificant()
			if p.peekRParen() {
				break
			}
			k := p.parseSpaceList()
			p.skipInsignificant()
			p.expectColon()
			p.skipInsignificant()
			v := p.parseSpaceList()
			pairs = append(pairs, ast.MapPair{Key: k, Value: v})
			p.skipInsignificant()
		}
		end := p.expectRParen()
		me := ast.MapExpr{Pairs: pairs}
		me.Pos = start.To(end)
		return me
	}
	if _, ok := p.consumeIf(func(t token.Token) bool { _, ok := t.(token.Comma); return ok }); !ok {
		end := p.expectRParen()
		if be, ok := first.(ast.BinaryExpr); ok {
			be.Parenthesized = true
			first = be
		}
		_ = end
		return first
	}
	elems := []ast.Expr{first}
	for {
		p.skipInsignificant()
		elems = append(elems, p.parseSpaceList())
		p.skipInsignificant()
		if _, ok := p.consumeIf(func(t token.Token) bool { _, ok := t.(token.Comma); return ok }); !ok {
			break
		}
	}
	end := p.expectRParen()
	le := ast.ListExpr{Separator: ast.SepComma, Elements: elems}
	le.Pos = start.To(end)
	return le
}

// parseBracketList parses a "[...]" bracketed list literal (§3 "list
// (..., optional brackets)").
func (p *Parser) parseBracketList(start span.Span) ast.Expr {
	p.parenDepth++
	defer func() { p.parenDepth-- }()
	p.skipInsignificant()
	if tok, ok := p.consumeIf(func(t token.Token) bool { _, ok := t.(token.RBrack); return ok }); ok {
		le := ast.ListExpr{Separator: ast.SepUndecided, Bracketed: true}
		le.Pos = start.To(tok.Span())
		return le
	}
	first := p.parseSpaceList()
	elems := []ast.Expr{first}
	sep := ast.SepUndecided
	p.skipInsignificant()
	for {
		if _, ok := p.consumeIf(func(t token.Token) bool { _, ok := t.(token.Comma); return ok }); ok {
			sep = ast.SepComma
			p.skipInsignificant()
			elems = append(elems, p.parseSpaceList())
			p.skipInsignificant()
			continue
		}
		break
	}
	end := p.expectRBrack()
	le := ast.ListExpr{Separator: sep, Bracketed: true, Elements: elems}
	le.Pos = start.To(end)
	return le
}

func (p *Parser) expectRBrack() span.Span {
	tok := p.s.Scan()
	if _, ok := tok.(token.RBrack); ok {
		return tok.Span()
	}
	p.errorf(tok.Span(), "expected \"]\"")
	p.s.Unscan()
	return tok.Span()
}

func (p *Parser) finishIfExpr(start span.Span) ast.Expr {
	p.parenDepth++
	defer func() { p.parenDepth-- }()
	p.skipInsignificant()
	cond := p.parseSpaceList()
	p.skipInsignificant()
	p.expectComma()
	p.skipInsignificant()
	ifTrue := p.parseSpaceList()
	p.skipInsignificant()
	p.expectComma()
	p.skipInsignificant()
	ifFalse := p.parseSpaceList()
	p.skipInsignificant()
	end := p.expectRParen()
	ie := ast.IfExpr{Condition: cond, IfTrue: ifTrue, IfFalse: ifFalse}
	ie.Pos = start.To(end)
	return ie
}

func (p *Parser) finishCalc(name string, start span.Span) ast.Expr {
	p.parenDepth++
	defer func() { p.parenDepth-- }()
	var operands []ast.Expr
	p.skipInsignificant()
	if !p.peekRParen() {
		for {
			p.skipInsignificant()
			operands = append(operands, p.parseOr())
			p.skipInsignificant()
			if _, ok := p.consumeIf(func(t token.Token) bool { _, ok := t.(token.Comma); return ok }); !ok {
				break
			}
		}
	}
	end := p.expectRParen()
	ce := ast.CalcExpr{Name: name, Operands: operands}
	ce.Pos = start.To(end)
	return ce
}

// --- small token-matching helpers ---

func (p *Parser) peekKeyword(kw string) bool {
	tok := p.s.Scan()
	p.s.Unscan()
	id, ok := tok.(token.Ident)
	return ok && strings.EqualFold(id.Value, kw)
}

func (p *Parser) consumeKeyword(kw string) {
	tok := p.s.Scan()
	if id, ok := tok.(token.Ident); !ok || !strings.EqualFold(id.Value, kw) {
		p.s.Unscan()
	}
}

func (p *Parser) peekDelim(r rune) bool {
	tok := p.s.Scan()
	d, ok := tok.(token.Delim)
	p.s.Unscan()
	return ok && d.Value == r
}

func (p *Parser) consumeDelim(r rune) bool {
	tok := p.s.Scan()
	if d, ok := tok.(token.Delim); ok && d.Value == r {
		return true
	}
	p.s.Unscan()
	return false
}

// consumeEllipsis consumes "..." (the argument-spread marker) if present.
// Like peekDelimSeq, a false match can leave one or two leading dots
// already consumed; spread position only ever follows a fully parsed
// argument expression, where a lone "." has no other meaning, so this
// is safe in context.
func (p *Parser) consumeEllipsis() bool {
	if !p.consumeDelim('.') {
		return false
	}
	if !p.consumeDelim('.') {
		return false
	}
	return p.consumeDelim('.')
}

// peekDelimSeq checks for two consecutive single-character delimiters
// (e.g. "==", "!=", "<=", ">=") and consumes both if present. Since the
// scanner supports only a single token of pushback, the second
// character is checked in the source text right after the first
// delimiter, so a false match consumes nothing (the "!" of "!default"
// stays for the flag parser).
func (p *Parser) peekDelimSeq(a, b string) bool {
	first := p.s.Scan()
	fd, ok := first.(token.Delim)
	if !ok || string(fd.Value) != a {
		p.s.Unscan()
		return false
	}
	sp := fd.Span()
	if sp.Source == nil || !strings.HasPrefix(sp.Source.Text[sp.End.Offset:], b) {
		p.s.Unscan()
		return false
	}
	p.s.Scan()
	return true
}

func (p *Parser) peekRParen() bool {
	tok := p.s.Scan()
	_, ok := tok.(token.RParen)
	p.s.Unscan()
	return ok
}

func (p *Parser) expectRParen() span.Span {
	tok := p.s.Scan()
	if _, ok := tok.(token.RParen); ok {
		return tok.Span()
	}
	p.errorf(tok.Span(), "expected \")\"")
	p.s.Unscan()
	return tok.Span()
}

func (p *Parser) expectComma() {
	tok := p.s.Scan()
	if _, ok := tok.(token.Comma); !ok {
		p.errorf(tok.Span(), "expected \",\"")
		p.s.Unscan()
	}
}

