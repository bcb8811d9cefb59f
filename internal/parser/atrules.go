package parser

import (
	"strings"

	"github.com/gosass/sass/internal/ast"
	"github.com/gosass/sass/internal/token"
	"github.com/gosass/sass/span"
)

// parseAtRule dispatches on the at-keyword's name (§3 "Statement
// variants"), the Sass-specific counterpart to benbjohnson-css's
// ConsumeAtRule: where the teacher only ever builds an opaque prelude +
// block (CSS has no at-rule grammar of its own to speak of beyond
// @media/@supports/@font-face), each control-flow and module at-rule
// here gets its own structured node because the evaluator needs to walk
// it (§4.3).
func (p *Parser) parseAtRule(t token.AtKeyword, start span.Span) ast.Statement {
	switch strings.ToLower(t.Value) {
	case "if":
		return p.parseIf(start)
	case "each":
		return p.parseEach(start)
	case "for":
		return p.parseFor(start)
	case "while":
		return p.parseWhile(start)
	case "function":
		return p.parseFunctionDecl(start)
	case "mixin":
		return p.parseMixinDecl(start)
	case "include":
		return p.parseInclude(start)
	case "content":
		return p.parseContentStmt(start)
	case "return":
		return p.parseReturn(start)
	case "at-root":
		return p.parseAtRoot(start)
	case "media":
		return p.parseMedia(start)
	case "supports":
		return p.parseSupports(start)
	case "extend":
		return p.parseExtend(start)
	case "import":
		return p.parseImport(start)
	case "use":
		return p.parseUse(start)
	case "forward":
		return p.parseForward(start)
	case "error":
		return p.parseErrorStmt(start)
	case "warn":
		return p.parseWarnStmt(start)
	case "debug":
		return p.parseDebugStmt(start)
	case "else":
		p.errorf(start, "@else is only valid immediately after an @if or @else if clause")
		return p.parseUnknownAtRule(t.Value, start)
	default:
		return p.parseUnknownAtRule(t.Value, start)
	}
}

// bodyHasDeclaration reports whether body syntactically introduces a
// binding visible to later siblings (§3 IfClause.HasDeclaration): a
// variable assignment, a function/mixin declaration, or an @import,
// which the evaluator needs to know about when deciding whether an
// @if/@else clause's scope can be discarded after it runs.
func bodyHasDeclaration(body []ast.Statement) bool {
	for _, s := range body {
		switch s.(type) {
		case ast.VariableDecl, ast.FunctionDecl, ast.MixinDecl, ast.Import:
			return true
		}
	}
	return false
}

// parseIf parses the full "@if ... @else if ... @else ..." chain as one
// statement (§3 "@if/@else if/@else clause chain").
func (p *Parser) parseIf(start span.Span) ast.Statement {
	var clauses []ast.IfClause
	cond := p.parseCondition()
	body := p.parseBody()
	clauses = append(clauses, ast.IfClause{Condition: cond, Body: body, HasDeclaration: bodyHasDeclaration(body)})
	for {
		p.skipInsignificant()
		tok := p.s.Scan()
		at, ok := tok.(token.AtKeyword)
		if !ok || !strings.EqualFold(at.Value, "else") {
			p.s.Unscan()
			break
		}
		p.skipInsignificant()
		if p.peekKeyword("if") {
			p.consumeKeyword("if")
			elseCond := p.parseCondition()
			elseBody := p.parseBody()
			clauses = append(clauses, ast.IfClause{Condition: elseCond, Body: elseBody, HasDeclaration: bodyHasDeclaration(elseBody)})
			continue
		}
		finalBody := p.parseBody()
		clauses = append(clauses, ast.IfClause{Body: finalBody, HasDeclaration: bodyHasDeclaration(finalBody)})
		break
	}
	end := p.lastSpan()
	node := ast.If{Clauses: clauses}
	node.Pos = start.To(end)
	return node
}

// parseCondition parses the boolean expression heading an @if/@else
// if/@while clause, up to (but not consuming) the block that follows.
func (p *Parser) parseCondition() ast.Expr {
	p.skipInsignificant()
	return p.parseOr()
}

// parseEach parses "@each $a [, $b] in <list> { ... }" (§3 "@each").
func (p *Parser) parseEach(start span.Span) ast.Statement {
	var vars []string
	p.skipInsignificant()
	vars = append(vars, p.expectVariable())
	p.skipInsignificant()
	for {
		if _, ok := p.consumeIf(func(t token.Token) bool { _, ok := t.(token.Comma); return ok }); !ok {
			break
		}
		p.skipInsignificant()
		vars = append(vars, p.expectVariable())
		p.skipInsignificant()
	}
	p.expectKeyword("in")
	p.skipInsignificant()
	list := p.parseExprList()
	body := p.parseBody()
	node := ast.Each{Variables: vars, List: list, Body: body}
	node.Pos = start.To(p.lastSpan())
	return node
}

// parseFor parses "@for $i from <expr> (through|to) <expr> { ... }"
// (§3 "@for"). The bound expressions are parsed at parseOr precedence
// rather than as full space/comma lists: "through"/"to" are bare
// identifiers at this grammar position, and a space-list would
// otherwise swallow them as if they were another list element.
func (p *Parser) parseFor(start span.Span) ast.Statement {
	p.skipInsignificant()
	v := p.expectVariable()
	p.skipInsignificant()
	p.expectKeyword("from")
	p.skipInsignificant()
	from := p.parseOr()
	p.skipInsignificant()
	inclusive := false
	if p.peekKeyword("through") {
		p.consumeKeyword("through")
		inclusive = true
	} else {
		p.expectKeyword("to")
	}
	p.skipInsignificant()
	to := p.parseOr()
	body := p.parseBody()
	node := ast.For{Variable: v, From: from, To: to, Inclusive: inclusive, Body: body}
	node.Pos = start.To(p.lastSpan())
	return node
}

// parseWhile parses "@while <expr> { ... }" (§3 "@while").
func (p *Parser) parseWhile(start span.Span) ast.Statement {
	cond := p.parseCondition()
	body := p.parseBody()
	node := ast.While{Condition: cond, Body: body}
	node.Pos = start.To(p.lastSpan())
	return node
}

// parseParameters parses a "(name [: default], ..., $rest...)" formal
// parameter list shared by @function and @mixin (§3 "Parameter").
func (p *Parser) parseParameters() []ast.Parameter {
	// After a "name(" Function token the "(" is already consumed.
	if _, opened := p.s.Current().(token.Function); !opened {
		p.skipInsignificant()
		tok := p.s.Scan()
		if _, ok := tok.(token.LParen); !ok {
			p.errorf(tok.Span(), "expected \"(\"")
			p.s.Unscan()
			return nil
		}
	}
	p.parenDepth++
	defer func() { p.parenDepth-- }()
	var params []ast.Parameter
	p.skipInsignificant()
	if p.peekRParen() {
		p.expectRParen()
		return params
	}
	for {
		p.skipInsignificant()
		name := p.expectVariable()
		p.skipInsignificant()
		if p.consumeEllipsis() {
			params = append(params, ast.Parameter{Name: name, Rest: true})
			break
		}
		var def ast.Expr
		if _, ok := p.consumeIf(func(t token.Token) bool { _, ok := t.(token.Colon); return ok }); ok {
			p.skipInsignificant()
			def = p.parseSpaceList()
		}
		params = append(params, ast.Parameter{Name: name, Default: def})
		p.skipInsignificant()
		if _, ok := p.consumeIf(func(t token.Token) bool { _, ok := t.(token.Comma); return ok }); !ok {
			break
		}
	}
	p.expectRParen()
	return params
}

// declName reads a @function or @mixin name; "name(" scans as one
// Function token, and then opened reports that the "(" is consumed.
func (p *Parser) declName() (name string, opened bool) {
	p.skipInsignificant()
	if fn, ok := p.consumeIf(func(t token.Token) bool { _, ok := t.(token.Function); return ok }); ok {
		return fn.(token.Function).Value, true
	}
	return p.expectIdent(), false
}

// parseFunctionDecl parses "@function name(params) { ... @return ... }"
// (§3 "@function").
func (p *Parser) parseFunctionDecl(start span.Span) ast.Statement {
	name, _ := p.declName()
	params := p.parseParameters()
	body := p.parseBody()
	node := ast.FunctionDecl{Name: name, Parameters: params, Body: body}
	node.Pos = start.To(p.lastSpan())
	return node
}

// parseMixinDecl parses "@mixin name[(params)] { ... }" (§3 "@mixin").
func (p *Parser) parseMixinDecl(start span.Span) ast.Statement {
	name, opened := p.declName()
	var params []ast.Parameter
	if opened {
		params = p.parseParameters()
	} else if p.skipInsignificant(); p.peekLParen() {
		params = p.parseParameters()
	}
	body := p.parseBody()
	node := ast.MixinDecl{Name: name, Parameters: params, HasContent: containsContent(body), Body: body}
	node.Pos = start.To(p.lastSpan())
	return node
}

func containsContent(body []ast.Statement) bool {
	for _, s := range body {
		switch v := s.(type) {
		case ast.ContentStmt:
			return true
		case ast.If:
			for _, c := range v.Clauses {
				if containsContent(c.Body) {
					return true
				}
			}
		case ast.Each:
			if containsContent(v.Body) {
				return true
			}
		case ast.For:
			if containsContent(v.Body) {
				return true
			}
		case ast.While:
			if containsContent(v.Body) {
				return true
			}
		case ast.StyleRule:
			if containsContent(v.Body) {
				return true
			}
		case ast.Media:
			if containsContent(v.Body) {
				return true
			}
		case ast.Supports:
			if containsContent(v.Body) {
				return true
			}
		case ast.AtRoot:
			if containsContent(v.Body) {
				return true
			}
		}
	}
	return false
}

// parseArguments parses a "(arg, $name: arg, ...spread)" actual argument
// list, shared by @include and @content (§3 "Argument").
func (p *Parser) parseArguments() []ast.Argument {
	p.skipInsignificant()
	tok := p.s.Scan()
	if _, ok := tok.(token.LParen); !ok {
		p.s.Unscan()
		return nil
	}
	p.parenDepth++
	defer func() { p.parenDepth-- }()
	var args []ast.Argument
	p.skipInsignificant()
	if p.peekRParen() {
		p.expectRParen()
		return args
	}
	for {
		p.skipInsignificant()
		args = append(args, p.parseArgument())
		p.skipInsignificant()
		if _, ok := p.consumeIf(func(t token.Token) bool { _, ok := t.(token.Comma); return ok }); !ok {
			break
		}
	}
	p.expectRParen()
	return args
}

func (p *Parser) parseArgument() ast.Argument {
	tok := p.s.Scan()
	if v, ok := tok.(token.Variable); ok {
		p.skipInsignificant()
		if _, ok := p.consumeIf(func(t token.Token) bool { _, ok := t.(token.Colon); return ok }); ok {
			p.skipInsignificant()
			value := p.parseSpaceList()
			return ast.Argument{Name: v.Name, Value: value}
		}
		// Not named after all: skipInsignificant already consumed any
		// whitespace irreversibly, so the Variable itself can't be
		// unscanned back onto the stream. Fold it into a VariableRef and
		// continue the space-list from there instead (same technique as
		// expr.go's tryNamedArg).
		vr := ast.VariableRef{Name: v.Name}
		vr.Pos = v.Span()
		value := p.continueSpaceListFrom(vr)
		p.skipInsignificant()
		if p.consumeEllipsis() {
			return ast.Argument{Value: value, Spread: true}
		}
		return ast.Argument{Value: value}
	}
	p.s.Unscan()
	value := p.parseSpaceList()
	p.skipInsignificant()
	if p.consumeEllipsis() {
		return ast.Argument{Value: value, Spread: true}
	}
	return ast.Argument{Value: value}
}

// parseInclude parses "@include [ns.]name[(args)] [{ content }]" (§3
// "@include").
func (p *Parser) parseInclude(start span.Span) ast.Statement {
	p.skipInsignificant()
	namespace, name := p.expectQualifiedIdent()
	var args []ast.Argument
	p.skipInsignificant()
	if p.peekLParen() {
		args = p.parseArguments()
	}
	var content *ast.ContentBlock
	p.skipInsignificant()
	if p.peekLBrace() || p.peekIndent() {
		cbBody := p.parseBody()
		content = &ast.ContentBlock{Body: cbBody}
	} else {
		p.consumeStatementEnd()
	}
	node := ast.Include{Namespace: namespace, Name: name, Arguments: args, Content: content}
	node.Pos = start.To(p.lastSpan())
	return node
}

// parseContentStmt parses "@content [(args)]" (§3 "@content").
func (p *Parser) parseContentStmt(start span.Span) ast.Statement {
	var args []ast.Argument
	p.skipInsignificant()
	if p.peekLParen() {
		args = p.parseArguments()
	}
	p.consumeStatementEnd()
	node := ast.ContentStmt{Arguments: args}
	node.Pos = start.To(p.lastSpan())
	return node
}

// parseReturn parses "@return <expr>" (§3 "@return").
func (p *Parser) parseReturn(start span.Span) ast.Statement {
	p.skipInsignificant()
	value := p.parseExprList()
	p.consumeStatementEnd()
	node := ast.Return{Value: value}
	node.Pos = start.To(p.lastSpan())
	return node
}

// parseAtRoot parses "@at-root [(with: ...|without: ...)] { ... }" (§3
// "@at-root").
func (p *Parser) parseAtRoot(start span.Span) ast.Statement {
	var query *ast.AtRootQuery
	p.skipInsignificant()
	if p.peekLParen() {
		query = p.parseAtRootQuery()
	}
	body := p.parseBody()
	node := ast.AtRoot{Query: query, Body: body}
	node.Pos = start.To(p.lastSpan())
	return node
}

func (p *Parser) parseAtRootQuery() *ast.AtRootQuery {
	p.s.Scan() // consume '('
	p.parenDepth++
	defer func() { p.parenDepth-- }()
	p.skipInsignificant()
	withKind := p.expectIdent() // "with" or "without"
	p.skipInsignificant()
	p.expectColon()
	p.skipInsignificant()
	names := map[string]bool{}
	for {
		id := p.expectIdent()
		if id != "" {
			names[strings.ToLower(id)] = true
		}
		p.skipInsignificant()
		if _, ok := p.consumeIf(func(t token.Token) bool { _, ok := t.(token.Comma); return ok }); !ok {
			break
		}
		p.skipInsignificant()
	}
	p.expectRParen()
	q := &ast.AtRootQuery{}
	if strings.EqualFold(withKind, "with") {
		q.With = names
	} else {
		q.Without = names
	}
	return q
}

// parseMedia parses "@media <query> { ... }" (§3, §4.1 "Media query
// parser"): the query is captured as an interpolated string; the
// evaluator re-parses it into a structured form once the interpolation
// is resolved, matching how §4.1 describes media queries and supports
// conditions as deferred grammars.
func (p *Parser) parseMedia(start span.Span) ast.Statement {
	query := p.captureInterpolated(func(t token.Token) bool {
		return isBlockStart(t)
	})
	body := p.parseBody()
	node := ast.Media{Query: query, Body: body}
	node.Pos = start.To(p.lastSpan())
	return node
}

// parseSupports parses "@supports <condition> { ... }" (§3, §4.1
// "Supports condition parser") into a structured and/or/not tree.
func (p *Parser) parseSupports(start span.Span) ast.Statement {
	p.skipInsignificant()
	cond := p.parseSupportsOr()
	body := p.parseBody()
	node := ast.Supports{Condition: cond, Body: body}
	node.Pos = start.To(p.lastSpan())
	return node
}

func (p *Parser) parseSupportsOr() ast.SupportsCondition {
	first := p.parseSupportsAnd()
	operands := []ast.SupportsCondition{first}
	for {
		p.skipInsignificant()
		if !p.peekKeyword("or") {
			break
		}
		p.consumeKeyword("or")
		p.skipInsignificant()
		operands = append(operands, p.parseSupportsAnd())
	}
	if len(operands) == 1 {
		return first
	}
	return ast.SupportsOr{Operands: operands}
}

func (p *Parser) parseSupportsAnd() ast.SupportsCondition {
	first := p.parseSupportsUnary()
	operands := []ast.SupportsCondition{first}
	for {
		p.skipInsignificant()
		if !p.peekKeyword("and") {
			break
		}
		p.consumeKeyword("and")
		p.skipInsignificant()
		operands = append(operands, p.parseSupportsUnary())
	}
	if len(operands) == 1 {
		return first
	}
	return ast.SupportsAnd{Operands: operands}
}

func (p *Parser) parseSupportsUnary() ast.SupportsCondition {
	p.skipInsignificant()
	if p.peekKeyword("not") {
		p.consumeKeyword("not")
		p.skipInsignificant()
		return ast.SupportsNot{Operand: p.parseSupportsUnary()}
	}
	tok := p.s.Scan()
	if _, ok := tok.(token.InterpolationStart); ok {
		expr := p.parseExprList()
		end := p.s.Scan()
		if _, ok := end.(token.InterpolationEnd); !ok {
			p.errorf(end.Span(), "expected \"}\" to close interpolation")
			p.s.Unscan()
		}
		return ast.SupportsInterpolation{Value: expr}
	}
	if _, ok := tok.(token.LParen); !ok {
		p.errorf(tok.Span(), "expected \"(\"")
		p.s.Unscan()
		return ast.SupportsAnd{}
	}
	p.parenDepth++
	defer func() { p.parenDepth-- }()
	p.skipInsignificant()
	if p.peekKeyword("not") || p.peekLParen() {
		inner := p.parseSupportsOr()
		p.expectRParen()
		return inner
	}
	name := p.captureInterpolated(func(t token.Token) bool {
		_, ok := t.(token.Colon)
		return ok
	})
	p.expectColon()
	p.skipInsignificant()
	value := p.captureInterpolated(func(t token.Token) bool {
		_, ok := t.(token.RParen)
		return ok
	})
	p.expectRParen()
	return ast.SupportsDeclaration{Name: name, Value: value}
}

// parseExtend parses "@extend <selector> [!optional]" (§3, §4.5
// "Extend").
func (p *Parser) parseExtend(start span.Span) ast.Statement {
	selector := p.captureInterpolated(func(t token.Token) bool {
		if delim, ok := t.(token.Delim); ok && delim.Value == '!' {
			return true
		}
		switch t.(type) {
		case token.Semicolon, token.Newline, token.Dedent, token.EOF:
			return true
		}
		return false
	})
	optional := false
	p.skipInsignificant()
	if delim, ok := p.s.Scan().(token.Delim); ok && delim.Value == '!' {
		flag := p.expectIdent()
		if strings.EqualFold(flag, "optional") {
			optional = true
		} else {
			p.errorf(start, "unknown flag !%s on @extend", flag)
		}
	} else {
		p.s.Unscan()
	}
	p.consumeStatementEnd()
	node := ast.Extend{Selector: selector, Optional: optional}
	node.Pos = start.To(p.lastSpan())
	return node
}

// parseImport parses "@import target1, target2, ..." (§3 "@import"): each
// comma-separated target is a quoted URL (dynamic Sass import) or a
// plain-CSS passthrough (url(...), a ".css" extension, or a protocol-
// relative/http(s) URL).
func (p *Parser) parseImport(start span.Span) ast.Statement {
	var targets []ast.ImportTarget
	for {
		p.skipInsignificant()
		targets = append(targets, p.parseImportTarget())
		p.skipInsignificant()
		if _, ok := p.consumeIf(func(t token.Token) bool { _, ok := t.(token.Comma); return ok }); !ok {
			break
		}
	}
	p.consumeStatementEnd()
	node := ast.Import{Targets: targets}
	node.Pos = start.To(p.lastSpan())
	return node
}

func (p *Parser) parseImportTarget() ast.ImportTarget {
	tok := p.s.Scan()
	var url string
	static := false
	switch t := tok.(type) {
	case token.String:
		url = t.Value
	case token.URL:
		url = t.Value
		static = true
	case token.Function:
		if strings.EqualFold(t.Value, "url") {
			inner := p.captureInterpolated(func(t token.Token) bool {
				_, ok := t.(token.RParen)
				return ok
			})
			p.expectRParen()
			url = inner.PlainText()
			static = true
		}
	default:
		p.errorf(tok.Span(), "expected a quoted import URL")
		p.s.Unscan()
	}
	if strings.HasSuffix(url, ".css") || strings.HasPrefix(url, "http://") ||
		strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "//") {
		static = true
	}
	return ast.ImportTarget{URL: url, Static: static}
}

// parseUse parses "@use <url> [as namespace|as *] [with (...)]" (§3,
// §4.2 "@use").
func (p *Parser) parseUse(start span.Span) ast.Statement {
	p.skipInsignificant()
	url := p.expectStringLiteral()
	namespace := ""
	p.skipInsignificant()
	if p.peekKeyword("as") {
		p.consumeKeyword("as")
		p.skipInsignificant()
		if p.peekDelim('*') {
			p.consumeDelim('*')
			namespace = "*"
		} else {
			namespace = p.expectIdent()
		}
		p.skipInsignificant()
	}
	var cfg *ast.Configuration
	if p.peekKeyword("with") {
		p.consumeKeyword("with")
		cfg = p.parseConfiguration()
	}
	p.consumeStatementEnd()
	node := ast.Use{URL: url, Namespace: namespace, Configuration: cfg}
	node.Pos = start.To(p.lastSpan())
	return node
}

func (p *Parser) parseConfiguration() *ast.Configuration {
	p.skipInsignificant()
	p.s.Scan() // consume '('
	p.parenDepth++
	defer func() { p.parenDepth-- }()
	vars := map[string]ast.Expr{}
	p.skipInsignificant()
	if !p.peekRParen() {
		for {
			p.skipInsignificant()
			name := p.expectVariable()
			p.skipInsignificant()
			p.expectColon()
			p.skipInsignificant()
			vars[name] = p.parseSpaceList()
			p.skipInsignificant()
			if _, ok := p.consumeIf(func(t token.Token) bool { _, ok := t.(token.Comma); return ok }); !ok {
				break
			}
		}
	}
	p.expectRParen()
	return &ast.Configuration{Variables: vars}
}

// parseForward parses "@forward <url> [as prefix-*] [show/hide names]
// [with (...)]" (§3, §4.2 "@forward").
func (p *Parser) parseForward(start span.Span) ast.Statement {
	p.skipInsignificant()
	url := p.expectStringLiteral()
	prefix := ""
	p.skipInsignificant()
	if p.peekKeyword("as") {
		p.consumeKeyword("as")
		p.skipInsignificant()
		prefix = p.expectIdent()
		p.consumeDelim('*')
		p.skipInsignificant()
	}
	var filter *ast.ForwardFilter
	if p.peekKeyword("show") || p.peekKeyword("hide") {
		show := p.peekKeyword("show")
		if show {
			p.consumeKeyword("show")
		} else {
			p.consumeKeyword("hide")
		}
		var names []string
		for {
			p.skipInsignificant()
			names = append(names, p.expectIdentOrVariable())
			p.skipInsignificant()
			if _, ok := p.consumeIf(func(t token.Token) bool { _, ok := t.(token.Comma); return ok }); !ok {
				break
			}
		}
		filter = &ast.ForwardFilter{Show: show, Names: names}
		p.skipInsignificant()
	}
	var cfg *ast.Configuration
	if p.peekKeyword("with") {
		p.consumeKeyword("with")
		cfg = p.parseConfiguration()
	}
	p.consumeStatementEnd()
	node := ast.Forward{URL: url, Prefix: prefix, Filter: filter, Configuration: cfg}
	node.Pos = start.To(p.lastSpan())
	return node
}

func (p *Parser) parseErrorStmt(start span.Span) ast.Statement {
	p.skipInsignificant()
	value := p.parseExprList()
	p.consumeStatementEnd()
	node := ast.ErrorStmt{Value: value}
	node.Pos = start.To(p.lastSpan())
	return node
}

func (p *Parser) parseWarnStmt(start span.Span) ast.Statement {
	p.skipInsignificant()
	value := p.parseExprList()
	p.consumeStatementEnd()
	node := ast.WarnStmt{Value: value}
	node.Pos = start.To(p.lastSpan())
	return node
}

func (p *Parser) parseDebugStmt(start span.Span) ast.Statement {
	p.skipInsignificant()
	value := p.parseExprList()
	p.consumeStatementEnd()
	node := ast.DebugStmt{Value: value}
	node.Pos = start.To(p.lastSpan())
	return node
}

// parseUnknownAtRule parses any at-rule this parser has no dedicated
// grammar for (e.g. "@font-face", "@page", "@keyframes", an
// embedder-defined rule), capturing its prelude as interpolated text and
// passing it through to the CSS AST mostly unevaluated (§3
// "UnknownAtRule").
func (p *Parser) parseUnknownAtRule(name string, start span.Span) ast.Statement {
	prelude := p.captureInterpolated(func(t token.Token) bool {
		switch t.(type) {
		case token.LBrace, token.Semicolon, token.Indent, token.Dedent, token.Newline, token.EOF:
			return true
		}
		return false
	})
	var body []ast.Statement
	hasBody := false
	p.skipInsignificant()
	if p.peekLBrace() || p.peekIndent() {
		body = p.parseBody()
		hasBody = true
	} else {
		p.consumeStatementEnd()
	}
	node := ast.UnknownAtRule{Name: name, Prelude: prelude, Body: body, HasBody: hasBody}
	node.Pos = start.To(p.lastSpan())
	return node
}

// --- small grammar helpers shared across at-rules ---

func (p *Parser) expectVariable() string {
	p.skipInsignificant()
	tok := p.s.Scan()
	if v, ok := tok.(token.Variable); ok {
		return v.Name
	}
	p.errorf(tok.Span(), "expected variable name")
	p.s.Unscan()
	return ""
}

func (p *Parser) expectIdentOrVariable() string {
	p.skipInsignificant()
	tok := p.s.Scan()
	switch t := tok.(type) {
	case token.Variable:
		return "$" + t.Name
	case token.Ident:
		return t.Value
	}
	p.errorf(tok.Span(), "expected identifier")
	p.s.Unscan()
	return ""
}

func (p *Parser) expectKeyword(kw string) {
	p.skipInsignificant()
	tok := p.s.Scan()
	if id, ok := tok.(token.Ident); !ok || !strings.EqualFold(id.Value, kw) {
		p.errorf(tok.Span(), "expected %q", kw)
		p.s.Unscan()
	}
}

func (p *Parser) expectQualifiedIdent() (namespace, name string) {
	name = p.expectIdent()
	if p.peekDelim('.') {
		p.consumeDelim('.')
		namespace = name
		name = p.expectIdent()
	}
	return namespace, name
}

func (p *Parser) expectStringLiteral() string {
	p.skipInsignificant()
	tok := p.s.Scan()
	if s, ok := tok.(token.String); ok {
		return s.Value
	}
	p.errorf(tok.Span(), "expected a quoted string")
	p.s.Unscan()
	return ""
}

func (p *Parser) peekLParen() bool {
	tok := p.s.Scan()
	_, ok := tok.(token.LParen)
	p.s.Unscan()
	return ok
}

func (p *Parser) peekLBrace() bool {
	tok := p.s.Scan()
	_, ok := tok.(token.LBrace)
	p.s.Unscan()
	return ok
}

func (p *Parser) peekIndent() bool {
	tok := p.s.Scan()
	_, ok := tok.(token.Indent)
	p.s.Unscan()
	return ok
}
