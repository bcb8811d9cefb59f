// Package ast defines the Sass abstract syntax tree (§3 "Sass AST") and
// the reduced CSS abstract syntax tree the evaluator produces (§3 "CSS
// AST"). Both follow benbjohnson/css's ast/ast.go closed-sum shape: a
// node interface with an unexported marker method, so no type outside
// this package can join the sum. A type switch missing a case still
// compiles; the value falls into its default branch.
package ast

import "github.com/gosass/sass/span"

// Node is the root of both the Sass-AST and CSS-AST node hierarchies.
type Node interface {
	Span() span.Span
}

// Statement is a Sass-AST statement (§3, "Statement variants").
type Statement interface {
	Node
	statement()
}

// Stylesheet is the parsed root of one stylesheet (source file or
// compileString input), before module resolution links it to others.
type Stylesheet struct {
	Pos   span.Span
	Body  []Statement
	URI   string // the URL this was parsed from, "" for anonymous input
}

func (s *Stylesheet) Span() span.Span { return s.Pos }

type base struct{ Pos span.Span }

func (b base) Span() span.Span { return b.Pos }
func (base) statement()        {}

// StyleRule is a selector followed by a block of declarations and
// nested rules (§3, §4.3 "Style rule").
type StyleRule struct {
	base
	Selector Interpolation
	Body     []Statement
}

// Declaration is a "name: value" pair, optionally itself containing
// nested declarations (§4.3 "Declaration").
type Declaration struct {
	base
	Name     Interpolation
	Value    Expr // nil if the declaration only has a nested Body
	Body     []Statement
	Custom   bool // name begins with "--": value must be a verbatim string expr
}

// VariableDecl is "$name: expr [!default] [!global]" (§3).
type VariableDecl struct {
	base
	Namespace string // "" unless qualified as pkg.$name
	Name      string
	Value     Expr
	Guarded   bool // !default
	Global    bool // !global
}

// IfClause is one arm of an If statement's clause chain.
type IfClause struct {
	Condition        Expr // nil for the trailing unconditional clause
	Body             []Statement
	HasDeclaration   bool // body syntactically declares a var/func/mixin or @import
}

// If is the full "@if ... @else if ... @else ..." chain (§3 "@if/@else
// if/@else clause chain").
type If struct {
	base
	Clauses []IfClause
}

// Each iterates a list (or, with two variables, a map) (§3 "@each").
type Each struct {
	base
	Variables []string // one or two names
	List      Expr
	Body      []Statement
}

// For iterates an integer range (§3 "@for").
type For struct {
	base
	Variable  string
	From      Expr
	To        Expr
	Inclusive bool // true for "through", false for "to"
	Body      []Statement
}

// While loops while Condition is truthy (§3 "@while").
type While struct {
	base
	Condition Expr
	Body      []Statement
}

// Parameter is one formal parameter of a function or mixin.
type Parameter struct {
	Name    string
	Default Expr // nil if required
	Rest    bool // trailing "..." parameter
}

// FunctionDecl is a "@function" declaration (§3).
type FunctionDecl struct {
	base
	Name       string
	Parameters []Parameter
	Body       []Statement
}

// MixinDecl is a "@mixin" declaration (§3); HasContent records whether
// the body contains an @content statement, used to validate @include.
type MixinDecl struct {
	base
	Name       string
	Parameters []Parameter
	HasContent bool
	Body       []Statement
}

// Argument is one actual argument of an @include/function call: either
// positional (Name == ""), named, or a spread (Spread == true, in which
// case Value evaluates to a list or map spread across the remaining
// parameters).
type Argument struct {
	Name   string
	Value  Expr
	Spread bool
}

// Include is "@include name(args) { content }" (§3 "@include").
type Include struct {
	base
	Namespace string
	Name      string
	Arguments []Argument
	Content   *ContentBlock // nil if no content block was passed
}

// ContentBlock is the "{ ... }" block passed to @include, itself
// carrying its own formal parameters when used with @content's variant
// that accepts arguments.
type ContentBlock struct {
	Parameters []Parameter
	Body       []Statement
}

// ContentStmt is "@content [(args)]" inside a mixin body (§3 "@content").
type ContentStmt struct {
	base
	Arguments []Argument
}

// Return is "@return expr", valid only inside a @function body (§3).
type Return struct {
	base
	Value Expr
}

// AtRootQuery selects which ancestor kinds an @at-root escapes (§4.3).
type AtRootQuery struct {
	Without map[string]bool // e.g. {"media": true}
	With    map[string]bool
}

// AtRoot is "@at-root [(query)] { ... }" (§3).
type AtRoot struct {
	base
	Query *AtRootQuery
	Body  []Statement
}

// Media is "@media query { ... }" with an interpolated query string
// re-parsed at evaluation time (§3, §4.1 "Media query parser").
type Media struct {
	base
	Query Interpolation
	Body  []Statement
}

// Supports is "@supports condition { ... }" with a structured condition
// tree (§3, §4.1 "Supports condition parser").
type Supports struct {
	base
	Condition SupportsCondition
	Body      []Statement
}

// SupportsCondition is and/or/not tree over declaration or interpolation
// leaves (§4.1).
type SupportsCondition interface {
	supportsCondition()
}

type SupportsDeclaration struct {
	Name  Interpolation
	Value Interpolation
}

type SupportsInterpolation struct {
	Value Expr
}

type SupportsNot struct {
	Operand SupportsCondition
}

type SupportsAnd struct {
	Operands []SupportsCondition
}

type SupportsOr struct {
	Operands []SupportsCondition
}

func (SupportsDeclaration) supportsCondition()  {}
func (SupportsInterpolation) supportsCondition() {}
func (SupportsNot) supportsCondition()          {}
func (SupportsAnd) supportsCondition()          {}
func (SupportsOr) supportsCondition()           {}

// UnknownAtRule is any at-rule the parser doesn't know the grammar for
// (e.g. "@font-face", "@page", embedder-defined rules) (§3).
type UnknownAtRule struct {
	base
	Name    string
	Prelude Interpolation
	Body    []Statement // nil if the rule ended with ';'
	HasBody bool
}

// Extend is "@extend selector [!optional]" (§3, §4.5).
type Extend struct {
	base
	Selector Interpolation
	Optional bool
}

// ImportTarget is one entry of an @import list: either a dynamic Sass
// import (resolved through the module system) or a static plain-CSS
// import (passed through verbatim) (§3 "@import").
type ImportTarget struct {
	URL    string
	Static bool // true for url(...)/.css/http(s) imports left untouched
	Media  Interpolation
}

type Import struct {
	base
	Targets []ImportTarget
}

// Configuration is a "with (...)" clause on @use/@forward (§4.2).
type Configuration struct {
	Variables map[string]Expr
}

// Use is "@use url [as namespace] [with (...)]" (§3, §4.2).
type Use struct {
	base
	URL           string
	Namespace     string // "" means derive from URL, "*" means global
	Configuration *Configuration
}

// ForwardFilter is a show/hide filter on @forward (§4.2).
type ForwardFilter struct {
	Show    bool // true = allow-list (show), false = deny-list (hide)
	Names   []string
}

// Forward is "@forward url [as prefix-*] [show/hide ...] [with (...)]"
// (§3, §4.2).
type Forward struct {
	base
	URL           string
	Prefix        string
	Filter        *ForwardFilter // nil means forward everything
	Configuration *Configuration
}

// SilentComment is a Sass-syntax "//" comment, dropped from output.
type SilentComment struct {
	base
	Text string
}

// LoudComment is a CSS-syntax "/* ... */" comment, interpolated and
// passed through to the CSS AST unless the output style strips it.
type LoudComment struct {
	base
	Text Interpolation
}

// Error/Warn/Debug carry a single expression, stringified at evaluation
// time (§3 "@error"/"@warn"/"@debug").
type ErrorStmt struct {
	base
	Value Expr
}

type WarnStmt struct {
	base
	Value Expr
}

type DebugStmt struct {
	base
	Value Expr
}
