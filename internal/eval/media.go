package eval

import (
	"fmt"
	"strings"

	"github.com/gosass/sass/internal/ast"
	"github.com/gosass/sass/internal/extend"
	"github.com/gosass/sass/internal/selector"
	"github.com/gosass/sass/span"
)

func parseSelectorNoParent(text string) (*selector.List, error) {
	return selector.Parse(text, selector.ParseOptions{AllowParent: false})
}

func extendRecord(extender, extendee *selector.List, optional bool, mediaScope string, sp span.Span) extend.Record {
	return extend.Record{Extender: extender, Extendee: extendee, Optional: optional, MediaScope: mediaScope, Span: sp}
}

// evalMedia implements "@media query { ... }" (§3, §4.1 "Media query
// parser"): the interpolated prelude is resolved to plain text, then
// re-parsed into a structured query list so the serializer and the
// extender's media-scope check both have a stable form to work from.
//
// Nested @media (inside another @media, or inside a style rule) is
// emitted as a literal nested at-rule rather than bubbled to the
// stylesheet root the way dart-sass does; a faithful bubble-up pass
// would need to clone the enclosing selector/declaration context for
// every nesting site, which this core's evaluator does not attempt. A
// query appearing inside an already-active @media/@supports is conjoined
// with `and`, so `@media X { @media Y { ... } }` emits an inner
// `@media X and Y` rule nested inside the outer `@media X` rule.
func (e *Evaluator) evalMedia(n *ast.Media) error {
	text, err := e.evalInterpolationToString(n.Query)
	if err != nil {
		return wrapErr(err, n.Pos)
	}
	combined := text
	if e.mediaScope != "" {
		combined = e.mediaScope + " and " + text
	}
	canon := extend.CanonicalizeMediaQuery(combined)

	rule := &ast.CSSAtRule{Kind: ast.AtRuleMedia, Name: "media", Prelude: combined, Queries: parseMediaQueryList(combined), HasBody: true}
	rule.Pos = n.Pos
	e.emit(rule)

	prevScope := e.mediaScope
	e.mediaScope = canon
	children, sig, err := e.withOutput(func() (signal, error) { return e.evalStatements(n.Body) })
	e.mediaScope = prevScope
	rule.Children = children
	if err != nil {
		return err
	}
	if sig.kind != sigNone {
		return &RuntimeError{Message: "@return is only allowed within a function body"}
	}
	return nil
}

// parseMediaQueryList splits a combined media-query prelude into its
// comma-separated queries and, within each, pulls out a leading
// not/only modifier and media type, leaving feature expressions (the
// "(min-width: ...)" clauses) as opaque strings — enough structure for
// the serializer to re-emit and for query-equality comparisons, without
// a full CSS media-feature grammar this core doesn't otherwise need.
func parseMediaQueryList(text string) []ast.MediaQuery {
	var out []ast.MediaQuery
	for _, raw := range strings.Split(text, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		out = append(out, parseOneMediaQuery(raw))
	}
	return out
}

func parseOneMediaQuery(raw string) ast.MediaQuery {
	fields := strings.Fields(raw)
	q := ast.MediaQuery{}
	i := 0
	if i < len(fields) && (strings.EqualFold(fields[i], "not") || strings.EqualFold(fields[i], "only")) {
		q.Modifier = strings.ToLower(fields[i])
		i++
	}
	if i < len(fields) && !strings.HasPrefix(fields[i], "(") {
		q.Type = fields[i]
		i++
	}
	if i < len(fields) && strings.EqualFold(fields[i], "and") {
		i++
	}
	rest := strings.Join(fields[i:], " ")
	for _, feat := range splitTopLevelAnd(rest) {
		feat = strings.TrimSpace(feat)
		if feat != "" {
			q.Features = append(q.Features, feat)
		}
	}
	return q
}

// splitTopLevelAnd splits on " and " occurring outside parentheses.
func splitTopLevelAnd(s string) []string {
	var out []string
	depth := 0
	last := 0
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 && i+5 <= len(runes) && strings.EqualFold(string(runes[i:i+5]), " and ") {
			out = append(out, string(runes[last:i]))
			i += 4
			last = i + 1
		}
	}
	out = append(out, string(runes[last:]))
	return out
}

// evalSupports implements "@supports condition { ... }" (§3, §4.1
// "Supports condition parser"): Condition is already a structured
// and/or/not tree built by the parser; evalSupportsCondition only needs
// to resolve any embedded interpolation before re-rendering it for the
// CSS AST.
func (e *Evaluator) evalSupports(n *ast.Supports) error {
	cond, err := e.resolveSupportsCondition(n.Condition)
	if err != nil {
		return wrapErr(err, n.Pos)
	}
	prelude := renderSupportsCondition(cond)
	combined := prelude
	if e.mediaScope != "" {
		combined = e.mediaScope + " and " + prelude
	}

	rule := &ast.CSSAtRule{Kind: ast.AtRuleSupports, Name: "supports", Prelude: prelude, Cond: cond, HasBody: true}
	rule.Pos = n.Pos
	e.emit(rule)

	prevScope := e.mediaScope
	e.mediaScope = combined
	children, sig, err := e.withOutput(func() (signal, error) { return e.evalStatements(n.Body) })
	e.mediaScope = prevScope
	rule.Children = children
	if err != nil {
		return err
	}
	if sig.kind != sigNone {
		return &RuntimeError{Message: "@return is only allowed within a function body"}
	}
	return nil
}

// resolveSupportsCondition resolves interpolation in every leaf of cond,
// recursing through the and/or/not tree shape (§4.1).
func (e *Evaluator) resolveSupportsCondition(cond ast.SupportsCondition) (ast.SupportsCondition, error) {
	switch c := cond.(type) {
	case ast.SupportsDeclaration:
		name, err := e.evalInterpolationToString(c.Name)
		if err != nil {
			return nil, err
		}
		val, err := e.evalInterpolationToString(c.Value)
		if err != nil {
			return nil, err
		}
		return ast.SupportsDeclaration{
			Name:  ast.Interpolation{Parts: []ast.InterpPart{{Text: name}}},
			Value: ast.Interpolation{Parts: []ast.InterpPart{{Text: val}}},
		}, nil
	case ast.SupportsInterpolation:
		v, err := e.evalExpr(c.Value)
		if err != nil {
			return nil, err
		}
		text := e.toCSSString(v)
		return ast.SupportsDeclaration{Name: ast.Interpolation{Parts: []ast.InterpPart{{Text: text}}}}, nil
	case ast.SupportsNot:
		op, err := e.resolveSupportsCondition(c.Operand)
		if err != nil {
			return nil, err
		}
		return ast.SupportsNot{Operand: op}, nil
	case ast.SupportsAnd:
		ops := make([]ast.SupportsCondition, len(c.Operands))
		for i, o := range c.Operands {
			r, err := e.resolveSupportsCondition(o)
			if err != nil {
				return nil, err
			}
			ops[i] = r
		}
		return ast.SupportsAnd{Operands: ops}, nil
	case ast.SupportsOr:
		ops := make([]ast.SupportsCondition, len(c.Operands))
		for i, o := range c.Operands {
			r, err := e.resolveSupportsCondition(o)
			if err != nil {
				return nil, err
			}
			ops[i] = r
		}
		return ast.SupportsOr{Operands: ops}, nil
	default:
		return nil, fmt.Errorf("unhandled supports condition %T", c)
	}
}

func renderSupportsCondition(cond ast.SupportsCondition) string {
	switch c := cond.(type) {
	case ast.SupportsDeclaration:
		if c.Value.Parts == nil {
			return c.Name.PlainText()
		}
		return "(" + c.Name.PlainText() + ": " + c.Value.PlainText() + ")"
	case ast.SupportsNot:
		return "not (" + renderSupportsCondition(c.Operand) + ")"
	case ast.SupportsAnd:
		return joinSupports(c.Operands, " and ")
	case ast.SupportsOr:
		return joinSupports(c.Operands, " or ")
	default:
		return ""
	}
}

func joinSupports(ops []ast.SupportsCondition, sep string) string {
	parts := make([]string, len(ops))
	for i, o := range ops {
		parts[i] = "(" + renderSupportsCondition(o) + ")"
	}
	return strings.Join(parts, sep)
}

// evalUnknownAtRule implements any at-rule the parser has no dedicated
// grammar for (e.g. "@font-face", "@keyframes" frame selectors, "@page")
// (§3): its prelude is resolved through the usual interpolation path and
// passed through verbatim, its body (if any) evaluated like a style
// rule's block without introducing a new selector context.
func (e *Evaluator) evalUnknownAtRule(n *ast.UnknownAtRule) error {
	prelude, err := e.evalInterpolationToString(n.Prelude)
	if err != nil {
		return wrapErr(err, n.Pos)
	}
	rule := &ast.CSSAtRule{Kind: ast.AtRuleGeneric, Name: n.Name, Prelude: prelude, HasBody: n.HasBody}
	rule.Pos = n.Pos
	e.emit(rule)
	if !n.HasBody {
		return nil
	}
	children, sig, err := e.withOutput(func() (signal, error) { return e.evalStatements(n.Body) })
	rule.Children = children
	if err != nil {
		return err
	}
	if sig.kind != sigNone {
		return &RuntimeError{Message: "@return is only allowed within a function body"}
	}
	return nil
}

// evalAtRoot implements "@at-root [(query)] { ... }" (§3, §4.3): its
// body evaluates with the selector context and/or media scope cleared
// according to Query (nil means the default "escape everything but
// media/supports" behavior), emitting directly into whichever container
// is active once those contexts are dropped.
func (e *Evaluator) evalAtRoot(n *ast.AtRoot) error {
	prevSelectors := e.selectorStack
	prevScope := e.mediaScope

	withoutRules := n.Query == nil || n.Query.Without["rule"] || (len(n.Query.Without) == 0 && len(n.Query.With) == 0)
	withoutMedia := n.Query != nil && n.Query.Without["media"]
	keepRules := n.Query != nil && n.Query.With["rule"]
	keepMedia := n.Query != nil && n.Query.With["media"]

	if withoutRules && !keepRules {
		e.selectorStack = nil
	}
	if withoutMedia && !keepMedia {
		e.mediaScope = ""
	}

	sig, err := e.evalStatements(n.Body)
	e.selectorStack = prevSelectors
	e.mediaScope = prevScope
	if err != nil {
		return err
	}
	if sig.kind != sigNone {
		return &RuntimeError{Message: "@return is only allowed within a function body"}
	}
	return nil
}

// evalExtend implements "@extend selector [!optional]" (§3, §4.5): it
// registers an extension record against the Evaluator's shared Registry
// rather than rewriting anything immediately, since an extend may reach
// style rules emitted later in the stylesheet.
func (e *Evaluator) evalExtend(n *ast.Extend) error {
	text, err := e.evalInterpolationToString(n.Selector)
	if err != nil {
		return wrapErr(err, n.Pos)
	}
	extendee, perr := parseSelectorNoParent(text)
	if perr != nil {
		return wrapErr(perr, n.Pos)
	}
	extender := e.currentSelector()
	if extender == nil {
		return wrapErr(fmt.Errorf("@extend is only allowed within style rules"), n.Pos)
	}
	e.Extend.Add(extendRecord(extender, extendee, n.Optional, e.mediaScope, n.Pos))
	return nil
}
