package value

import "fmt"

// Separator is the separator a List value serializes its elements with
// (§3 "list (separator, bracketed flag, elements)").
type Separator int

const (
	SepUndecided Separator = iota
	SepComma
	SepSpace
	SepSlash
)

// List is a Sass list value.
type List struct {
	base
	Separator Separator
	Bracketed bool
	Elements  []Value
}

func (List) Type() string { return "list" }
func (l List) Truthy() bool { return true }

// NewList is a small convenience constructor.
func NewList(sep Separator, bracketed bool, elems ...Value) List {
	return List{Separator: sep, Bracketed: bracketed, Elements: elems}
}

// Singleton wraps v in a one-element list if it isn't already a list,
// the "every Sass value is also a one-element list" rule used pervasively
// by the `list` built-in module.
func Singleton(v Value) List {
	if l, ok := v.(List); ok {
		return l
	}
	if m, ok := v.(Map); ok {
		return m.AsList()
	}
	return List{Separator: SepUndecided, Elements: []Value{v}}
}

// MapEntry is one ordered key/value pair of a Map (§3 "map (ordered
// key-value pairs, key equality by value equality)").
type MapEntry struct {
	Key   Value
	Value Value
}

// Map is a Sass map value; order of MapEntry matters for iteration
// (@each) and for serialization under `inspect`.
type Map struct {
	base
	Entries []MapEntry
}

func (Map) Type() string  { return "map" }
func (Map) Truthy() bool  { return true }

// Get looks up key by value equality (Equal, defined in equality.go),
// returning (value, true) if present.
func (m Map) Get(key Value) (Value, bool) {
	for _, e := range m.Entries {
		if Equal(e.Key, key) {
			return e.Value, true
		}
	}
	return nil, false
}

// Set returns a new Map with key bound to val, replacing any existing
// entry for an equal key in place (preserving its position) or
// appending a new entry.
func (m Map) Set(key, val Value) Map {
	entries := append([]MapEntry(nil), m.Entries...)
	for i, e := range entries {
		if Equal(e.Key, key) {
			entries[i].Value = val
			return Map{Entries: entries}
		}
	}
	entries = append(entries, MapEntry{Key: key, Value: val})
	return Map{Entries: entries}
}

// AsList converts a map to its list-of-two-element-lists representation,
// the form `@each` iterates and `list.*` functions operate on.
func (m Map) AsList() List {
	elems := make([]Value, len(m.Entries))
	for i, e := range m.Entries {
		elems[i] = List{Separator: SepSpace, Elements: []Value{e.Key, e.Value}}
	}
	return List{Separator: SepComma, Elements: elems}
}

// Function is a first-class function value: either compiler-defined
// (Builtin != nil) or embedder-defined (Host != nil), tagged under one
// variant per §9 "First-class functions across host boundaries" so the
// evaluator treats both uniformly.
type Function struct {
	base
	Name    string
	Builtin BuiltinFunc
	Host    HostFunc
}

func (Function) Type() string  { return "function" }
func (Function) Truthy() bool  { return true }

// BuiltinFunc is the signature of a compiler-defined built-in.
type BuiltinFunc func(args []Value) (Value, error)

// HostFunc is the signature of an embedder-registered callback, per the
// "functions: map<signature, callback>" compile option (§6).
type HostFunc func(args []Value) (Value, error)

// Call invokes whichever implementation this Function wraps.
func (f Function) Call(args []Value) (Value, error) {
	if f.Builtin != nil {
		return f.Builtin(args)
	}
	if f.Host != nil {
		return f.Host(args)
	}
	return nil, fmt.Errorf("function %q has no implementation", f.Name)
}

// Calculation is an unevaluated calculation expression tree (§3
// "calculation expression (unevaluated structure)"), kept structured
// rather than collapsed to a number because CSS calc() can mix
// incompatible units (e.g. "calc(1px + 1%)") that Sass itself can't
// reduce at compile time.
type Calculation struct {
	base
	Name     string // "calc", "min", "max", "clamp", "round", "mod", "rem", "sin", ...
	Arguments []Value
}

func (Calculation) Type() string  { return "calculation" }
func (Calculation) Truthy() bool  { return true }

// Selector wraps a selector-as-value (§3 "selector-as-value"); Text is
// the selector's canonical textual form, recomputed by internal/selector
// when needed rather than stored as a typed selector.List here, which
// would make this package depend on internal/selector for no benefit
// besides marginally cheaper re-parsing.
type Selector struct {
	base
	Text string
}

func (Selector) Type() string  { return "string" } // Sass reports selector values as lists of strings
func (Selector) Truthy() bool  { return true }
