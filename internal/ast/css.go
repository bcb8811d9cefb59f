package ast

import (
	"github.com/gosass/sass/internal/selector"
	"github.com/gosass/sass/span"
	"github.com/gosass/sass/value"
)

// CSSNode is the closed sum the evaluator produces and the only tree
// kind the extender and serializer ever see (§3 "CSS AST").
type CSSNode interface {
	Node
	cssNode()
}

type cssBase struct{ Pos span.Span }

func (b cssBase) Span() span.Span { return b.Pos }
func (cssBase) cssNode()          {}

// CSSRoot is the top of one compile's output tree.
type CSSRoot struct {
	cssBase
	Children []CSSNode
}

// CSSComment is a loud ("/*! ... */" or plain "/* ... */") comment kept
// in the output tree.
type CSSComment struct {
	cssBase
	Text string
}

// CSSStyleRule is a selector list plus its children (§3 "CSS AST").
// The extender mutates Selector in place as it rewrites occurrences
// (§4.5, §9 "shared children ... mutated by the extender").
type CSSStyleRule struct {
	cssBase
	Selector *selector.List
	Children []CSSNode

	// MediaScope is the canonicalized @media/@supports condition string
	// enclosing this rule at the time it was emitted, used by the
	// extender to scope extensions registered inside conditional groups
	// (§4.5 "Extensions that apply inside @media or @supports").
	MediaScope string
}

// CSSDeclaration is a property: value pair in the output tree.
type CSSDeclaration struct {
	cssBase
	Name      string
	Value     value.Value
	Important bool
}

// CSSAtRuleKind distinguishes the at-rules the evaluator gives first-class
// structured representations to from the generic fallback (§3 "CSS AST").
type CSSAtRuleKind int

const (
	AtRuleGeneric CSSAtRuleKind = iota
	AtRuleMedia
	AtRuleSupports
	AtRuleKeyframes
)

// MediaQuery is one parsed "[modifier] type [and (feature)...]" clause
// (§4.1 "Media query parser").
type MediaQuery struct {
	Modifier string // "not", "only", or ""
	Type     string // "", "screen", "print", ...
	Features []string
}

// CSSAtRule is any at-rule in the output tree; Media/Supports carry a
// parsed structured form alongside the raw prelude text so the
// serializer can re-emit either representation (§3 "CSS AST": "at-rule
// (including media with parsed query list, supports with parsed
// condition, keyframes with parsed frame selectors, and unknown)").
type CSSAtRule struct {
	cssBase
	Kind     CSSAtRuleKind
	Name     string
	Prelude  string
	Queries  []MediaQuery      // populated when Kind == AtRuleMedia
	Cond     SupportsCondition // populated when Kind == AtRuleSupports
	Children []CSSNode
	HasBody  bool
}

// CSSImport is a static (plain-CSS) "@import url(...)" passed through
// verbatim (§3 "CSS AST": "@import for static (plain-CSS) imports").
type CSSImport struct {
	cssBase
	URL   string
	Media string
}
