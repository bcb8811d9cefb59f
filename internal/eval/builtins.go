// Built-in function library (§3 DOMAIN STACK / SUPPLEMENTED FEATURES):
// the `sass:math`, `sass:list`, `sass:map`, `sass:string`, `sass:meta`,
// `sass:selector`, and `sass:color` modules, plus the small set of
// legacy globally-visible names (percentage, rgba, lighten, ...) that
// remain callable without a namespace for backward compatibility.
package eval

import (
	"fmt"

	"github.com/gosass/sass/value"
)

// Args bundles a built-in call's actual arguments, both by position and
// by name, since Go built-ins (unlike user @function bodies) want
// direct access to whichever form the caller used rather than Sass's
// full parameter-binding machinery.
type Args struct {
	Positional []value.Value
	Named      map[string]value.Value
}

// Get returns the i'th positional argument, or the named argument name
// if the positional slot is empty, mirroring how Sass resolves a
// built-in's "real" formal parameter list.
func (a Args) Get(i int, name string) (value.Value, bool) {
	if i < len(a.Positional) {
		return a.Positional[i], true
	}
	if v, ok := a.Named[name]; ok {
		return v, true
	}
	return nil, false
}

// GetOr returns Get's result, or def if neither form was supplied.
func (a Args) GetOr(i int, name string, def value.Value) value.Value {
	if v, ok := a.Get(i, name); ok {
		return v
	}
	return def
}

func (a Args) Number(i int, name string) (value.Number, error) {
	v, ok := a.Get(i, name)
	if !ok {
		return value.Number{}, fmt.Errorf("missing argument $%s", name)
	}
	n, ok := v.(value.Number)
	if !ok {
		return value.Number{}, fmt.Errorf("$%s: %v is not a number", name, v)
	}
	return n, nil
}

func (a Args) OptionalNumber(i int, name string, def float64) (float64, error) {
	v, ok := a.Get(i, name)
	if !ok {
		return def, nil
	}
	n, ok := v.(value.Number)
	if !ok {
		return 0, fmt.Errorf("$%s: %v is not a number", name, v)
	}
	return n.Num, nil
}

func (a Args) String(i int, name string) (string, error) {
	v, ok := a.Get(i, name)
	if !ok {
		return "", fmt.Errorf("missing argument $%s", name)
	}
	switch s := v.(type) {
	case value.String:
		return s.Text, nil
	default:
		return "", fmt.Errorf("$%s: %v is not a string", name, v)
	}
}

func (a Args) Color(i int, name string) (value.Color, error) {
	v, ok := a.Get(i, name)
	if !ok {
		return value.Color{}, fmt.Errorf("missing argument $%s", name)
	}
	c, ok := v.(value.Color)
	if !ok {
		return value.Color{}, fmt.Errorf("$%s: %v is not a color", name, v)
	}
	return c, nil
}

func (a Args) List(i int, name string) value.List {
	v, ok := a.Get(i, name)
	if !ok {
		return value.List{}
	}
	return value.Singleton(v)
}

// BuiltinFunc is a compiler-implemented function, either globally
// visible (legacy names) or namespaced under one of the "sass:*"
// modules.
type BuiltinFunc func(e *Evaluator, args Args) (value.Value, error)

// builtins holds the small set of legacy global names still callable
// without a namespace prefix.
var builtins map[string]BuiltinFunc

// scopedBuiltins holds the "sass:*" module libraries, keyed by the
// namespace name with the "sass:" prefix stripped ("math", "list",
// "map", "string", "meta", "selector", "color").
var scopedBuiltins map[string]map[string]BuiltinFunc

func init() {
	scopedBuiltins = map[string]map[string]BuiltinFunc{
		"math":     mathBuiltins,
		"list":     listBuiltins,
		"map":      mapBuiltins,
		"string":   stringBuiltins,
		"meta":     metaBuiltins,
		"selector": selectorBuiltins,
		"color":    colorBuiltins,
	}
	builtins = legacyGlobalBuiltins()
}

func number(v float64) value.Value  { return value.Unitless(v) }
func boolean(v bool) value.Value    { return value.Bool(v) }
func str(v string) value.Value      { return value.NewString(v, true) }
func unquoted(v string) value.Value { return value.NewString(v, false) }
