package ast

import "github.com/gosass/sass/span"

// Expr is the closed sum of Sass-AST expression variants (§3, "Expression
// variants").
type Expr interface {
	Node
	expr()
}

type exprBase struct{ Pos span.Span }

func (b exprBase) Span() span.Span { return b.Pos }
func (exprBase) expr()             {}

// NumberLit is a literal number with an optional unit token attached
// directly after the digits with no whitespace (§4.1 "Numeric literal
// parser").
type NumberLit struct {
	exprBase
	Value float64
	Unit  string // "" if none; a compound unit like "px" or "" for unitless
}

// InterpPart is one element of an interpolated sequence: either literal
// text or an embedded expression (§3 "string literal ... with
// interpolation", §4.1 "Interpolation").
type InterpPart struct {
	Text string // used when Expr == nil
	Expr Expr
}

// Interpolation is an alternating sequence of literal text and embedded
// expressions, used anywhere §4.1 says a construct is "first captured as
// a token stream with embedded expressions, then re-parsed" (strings,
// selectors, media queries, unknown at-rule preludes).
type Interpolation struct {
	Pos   span.Span
	Parts []InterpPart
}

func (i Interpolation) Span() span.Span { return i.Pos }

// HasInterpolation reports whether any part is a live expression rather
// than pure literal text.
func (i Interpolation) HasInterpolation() bool {
	for _, p := range i.Parts {
		if p.Expr != nil {
			return true
		}
	}
	return false
}

// PlainText returns the concatenation of literal parts, valid only when
// HasInterpolation is false.
func (i Interpolation) PlainText() string {
	var s string
	for _, p := range i.Parts {
		s += p.Text
	}
	return s
}

// StringLit is a quoted or unquoted string expression, itself built from
// an Interpolation so "#{...}" inside a string literal is supported.
type StringLit struct {
	exprBase
	Quoted bool
	Text   Interpolation
}

// Ident is a bare identifier used as a value (a keyword like "bold", or
// the callee name of a function-call-shaped expression resolved later).
type Ident struct {
	exprBase
	Text Interpolation
}

// VariableRef is "$name" or "namespace.$name" (§3).
type VariableRef struct {
	exprBase
	Namespace string
	Name      string
}

// ListSeparator is the separator token of a Sass list value (§3 "list").
type ListSeparator int

const (
	SepUndecided ListSeparator = iota
	SepComma
	SepSpace
	SepSlash
)

// ListExpr is a literal list expression (§3 "list").
type ListExpr struct {
	exprBase
	Separator ListSeparator
	Bracketed bool
	Elements  []Expr
}

// MapPair is one key/value pair of a literal map expression.
type MapPair struct {
	Key   Expr
	Value Expr
}

// MapExpr is a literal map expression (§3 "map").
type MapExpr struct {
	exprBase
	Pairs []MapPair
}

// BinaryOp is the operator of a BinaryExpr (§4.1 "Operator precedence").
type BinaryOp int

const (
	OpOr BinaryOp = iota
	OpAnd
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
)

// BinaryExpr is a binary operation parsed with Sass precedence (§3, §4.1).
type BinaryExpr struct {
	exprBase
	Op          BinaryOp
	Left, Right Expr
	// Parenthesized records whether this "/" division was written inside
	// parentheses, which matters for the slash-div deprecation (§4.1,
	// §7): a top-level "/" between two numbers outside parens builds a
	// slash-separated list instead of dividing.
	Parenthesized bool
}

// UnaryOp is the operator of a UnaryExpr.
type UnaryOp int

const (
	UnaryNot UnaryOp = iota
	UnaryNeg
	UnaryPlus
)

// UnaryExpr is a unary operation (§3, §4.1).
type UnaryExpr struct {
	exprBase
	Op      UnaryOp
	Operand Expr
}

// CallArg is one actual argument of a function call expression, sharing
// shape with ast.Argument but expressed at the expression level (§3
// "function call").
type CallArg struct {
	Name   string
	Value  Expr
	Spread bool // positional-spread (list) or keyword-spread (map)
	Rest   bool // true for keyword-rest spread (a trailing map spread)
}

// FuncCall is a function call: built-in, user @function, or a plain CSS
// function the evaluator doesn't recognize and so passes through
// verbatim (§3 "function call").
type FuncCall struct {
	exprBase
	Namespace string
	Name      Interpolation
	Arguments []CallArg
}

// IfExpr is the lazy-in-both-branches "if(cond, if-true, if-false)"
// builtin form, special-cased in the grammar because its arguments must
// not be eagerly evaluated (§3 "if() (lazy in both branches)").
type IfExpr struct {
	exprBase
	Condition, IfTrue, IfFalse Expr
}

// ColorLit is a literal color expression written as a hex literal
// ("#abc", "#aabbcc") (§3 "color").
type ColorLit struct {
	exprBase
	R, G, B uint8
	A       float64
	HasA    bool
}

// CalcExpr is a calculation expression ("calc(...)", "min(...)", ...);
// each of its Operands is either a nested CalcExpr, any other Expr
// (number, variable, function call), or a raw unparsed interpolated
// string fallback.
type CalcExpr struct {
	exprBase
	Name     string // "calc", "min", "max", "clamp", "round", etc.
	Operands []Expr
}

// SelectorExpr wraps a selector used as a value, e.g. the result of
// selector.parse() (§3 "selector expression").
type SelectorExpr struct {
	exprBase
	Text Interpolation
}
