// Package eval implements the tree-walking evaluator (§4.3): it turns a
// resolved Sass AST into the reduced CSS AST, maintaining the scope
// chain, emit cursor, content-block register, and recursion guard §4.3
// names. Its lexical-frame-chain shape is grounded on
// titpetric-lessgo's `expr-lang/expr` evaluation environments (an
// environment-per-scope chain passed down through evaluation), adapted
// away from `expr-lang/expr` itself since Sass already has its own
// expression grammar (internal/parser, internal/ast) that this package
// walks directly.
package eval

import "github.com/gosass/sass/value"

// Frame is one lexical scope: a mapping of names to variables,
// functions, and mixins, the "three disjoint namespaces" §3 "Scopes"
// describes. isModuleTop marks the frame that bounds variable/function/
// mixin lookup at a module boundary (§4.3 "Variable declaration" writes
// "the top frame of the current module" for !global, and plain lookups
// never escape it).
type Frame struct {
	parent      *Frame
	isModuleTop bool

	vars   map[string]value.Value
	funcs  map[string]*FuncDef
	mixins map[string]*MixinDef
}

func newFrame(parent *Frame) *Frame {
	return &Frame{parent: parent, vars: map[string]value.Value{}, funcs: map[string]*FuncDef{}, mixins: map[string]*MixinDef{}}
}

// newModuleTop builds the root frame of a module's own scope chain.
func newModuleTop() *Frame {
	f := newFrame(nil)
	f.isModuleTop = true
	return f
}

// child opens a nested lexical scope under f (a style rule, mixin call,
// @each/@for/@while iteration, or @if clause body).
func (f *Frame) child() *Frame {
	return newFrame(f)
}

// lookupVarFrame walks from f up to (and including) the nearest
// isModuleTop frame looking for an existing binding of name, returning
// the frame that holds it or nil.
func (f *Frame) lookupVarFrame(name string) *Frame {
	for cur := f; cur != nil; cur = cur.parent {
		if _, ok := cur.vars[name]; ok {
			return cur
		}
		if cur.isModuleTop {
			return nil
		}
	}
	return nil
}

// moduleTop returns the frame bounding f's enclosing module.
func (f *Frame) moduleTop() *Frame {
	for cur := f; cur != nil; cur = cur.parent {
		if cur.isModuleTop {
			return cur
		}
	}
	return f
}

// GetVar looks up name anywhere in f's chain up to the module boundary.
func (f *Frame) GetVar(name string) (value.Value, bool) {
	frame := f.lookupVarFrame(name)
	if frame == nil {
		return nil, false
	}
	v, ok := frame.vars[name]
	return v, ok
}

// SetVar implements §4.3 "Variable declaration"'s binding-site rule:
// writes to the innermost scope that already binds name, unless global
// (writes the module-top frame) or no binding exists anywhere (writes
// the current/innermost scope).
func (f *Frame) SetVar(name string, v value.Value, global bool) {
	if global {
		f.moduleTop().vars[name] = v
		return
	}
	if frame := f.lookupVarFrame(name); frame != nil {
		frame.vars[name] = v
		return
	}
	f.vars[name] = v
}

// SetVarGuarded implements "!default": a no-op if name is already bound
// to any non-null value anywhere reachable.
func (f *Frame) SetVarGuarded(name string, v value.Value) {
	if existing, ok := f.GetVar(name); ok {
		if _, isNull := existing.(value.Null); !isNull {
			return
		}
	}
	f.SetVar(name, v, false)
}

// DeclareFunc/DeclareMixin bind a user @function/@mixin in the current
// (innermost) scope, the declaration site (§3 "Statement variants":
// "@function declaration", "@mixin declaration").
func (f *Frame) DeclareFunc(name string, d *FuncDef)   { f.funcs[name] = d }
func (f *Frame) DeclareMixin(name string, d *MixinDef) { f.mixins[name] = d }

func (f *Frame) lookupFunc(name string) (*FuncDef, bool) {
	for cur := f; cur != nil; cur = cur.parent {
		if d, ok := cur.funcs[name]; ok {
			return d, true
		}
		if cur.isModuleTop {
			return nil, false
		}
	}
	return nil, false
}

func (f *Frame) lookupMixin(name string) (*MixinDef, bool) {
	for cur := f; cur != nil; cur = cur.parent {
		if d, ok := cur.mixins[name]; ok {
			return d, true
		}
		if cur.isModuleTop {
			return nil, false
		}
	}
	return nil, false
}
