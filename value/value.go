// Package value implements the Sass runtime value model (§3 "Values"):
// a closed sum of null, boolean, number, string, color, list, map,
// function reference, calculation, and selector-as-value. It is a
// public package (not internal/) because the library's "functions"
// option (§6) lets an embedder register Go callbacks that receive and
// return these values directly, the same "round-trip" contract §9
// describes for first-class functions crossing the host boundary.
//
// There is no repo in the retrieval pack that models a unit-carrying
// numeric tower or a Sass-shaped value sum, so this package is new;
// its closed-sum-via-marker-method shape is carried over from
// benbjohnson/css's ast.Node pattern (see internal/ast) for consistency
// with the rest of the codebase rather than copied from any one file.
package value

import "github.com/gosass/sass/span"

// Value is the closed sum of every runtime value kind.
type Value interface {
	// Type names the value's kind the way Sass's own `meta.type-of`
	// built-in reports it ("number", "string", "color", "list", "map",
	// "bool", "null", "function", "calculation"), and the way
	// SassScriptException messages name a value's type.
	Type() string
	// Truthy reports whether the value is truthy in a boolean context: a
	// value is falsy iff it is `false` or `null` (§4.3, "@if chain").
	Truthy() bool
	value()
}

type base struct{}

func (base) value() {}

// Null is Sass's singular null value.
type Null struct{ base }

func (Null) Type() string   { return "null" }
func (Null) Truthy() bool   { return false }

// Singleton null/bool instances, since they carry no data.
var (
	NullValue  = Null{}
	TrueValue  = Bool(true)
	FalseValue = Bool(false)
)

// Bool is a Sass boolean.
type Bool bool

func (Bool) value()       {}
func (Bool) Type() string { return "bool" }
func (b Bool) Truthy() bool { return bool(b) }

// Quotedness distinguishes a quoted string ("foo") from an unquoted one
// (foo), which matters for serialization and for string `+` (§4.3
// "String `+` concatenates preserving the left operand's quotedness").
type Quotedness bool

const (
	Unquoted Quotedness = false
	Quoted   Quotedness = true
)

// String is a Sass string value.
type String struct {
	base
	Text   string
	Quoted Quotedness
}

func (String) Type() string  { return "string" }
func (String) Truthy() bool  { return true }

func NewString(text string, quoted bool) String {
	return String{Text: text, Quoted: Quotedness(quoted)}
}

// Spanned is implemented by a value that carries the source span that
// produced it. No value type in this package implements it, and the
// source-map builder does not consult it.
type Spanned interface {
	SourceSpan() span.Span
}
