package eval

import (
	"strings"

	"github.com/gosass/sass/internal/ast"
	"github.com/gosass/sass/value"
	"github.com/google/uuid"
)

// FuncDef is a user-declared @function bound to the Frame it closes
// over, so default-argument expressions evaluate "in the callee's
// declaration scope" (§4.3 "Calling convention"); Decl is nil for a
// built-in module function registered through `@use "sass:*"`, in which
// case Native is called directly with positionally-evaluated arguments
// instead of running a user-authored body.
type FuncDef struct {
	Decl    *ast.FunctionDecl
	Closure *Frame
	Native  BuiltinFunc
}

// MixinDef is a user-declared @mixin, closed over its declaration scope
// the same way.
type MixinDef struct {
	Decl    *ast.MixinDecl
	Closure *Frame
}

// forwardEdge is one `@forward` edge installed into a Module: it
// re-exports target's public bindings, optionally prefixed and filtered
// (§4.2 "`@forward` replays exports from its target into the importing
// module's export set").
type forwardEdge struct {
	target *Module
	prefix string
	filter *ast.ForwardFilter
}

// Module is the evaluated top-level scope of one stylesheet, identified
// by its canonical URL (§3 "Scopes": "A module is a top-level frame
// associated with a canonical URL plus namespace bindings for @use and a
// re-export set for @forward"). Modules are created once per canonical
// URL per compile and memoized (§3 "Lifecycles"); a synthetic id
// (DOMAIN STACK: google/uuid) correlates a module back to a `--trace`
// call-stack span, mirroring fredcamaral-slicli's and
// jinterlante1206-AleutianLocal's use of google/uuid for per-entity
// identifiers.
type Module struct {
	URL  string
	ID   string
	Top  *Frame
	used bool

	// namespaces maps a `@use ... as ns` namespace to the module it
	// refers to; "*" is the wildcard namespace whose members are visible
	// unqualified.
	namespaces map[string]*Module
	forwards   []forwardEdge
}

func newModule(url string) *Module {
	return &Module{URL: url, ID: uuid.New().String(), Top: newModuleTop(), namespaces: map[string]*Module{}}
}

// isPrivate reports whether name is excluded from a module's public
// surface: Sass convention treats a leading "_" or "-" as private,
// visible only within the declaring module itself, never via `@use` or
// `@forward`.
func isPrivate(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, "-")
}

func applyFilter(name string, f *ast.ForwardFilter) bool {
	if f == nil {
		return true
	}
	listed := false
	for _, n := range f.Names {
		if strings.TrimPrefix(n, "$") == strings.TrimPrefix(name, "$") {
			listed = true
			break
		}
	}
	if f.Show {
		return listed
	}
	return !listed
}

// publicVar/publicFunc/publicMixin look up name among m's own top-level
// bindings and its forwarded modules' public surfaces (§4.2 "@forward
// replays exports ... optionally with a name prefix and subject to
// show/hide filters"), applied to a name already qualified by any
// `@use` namespace the caller wrote.
func (m *Module) publicVar(name string) (value.Value, bool) {
	if v, ok := m.Top.vars[name]; ok && !isPrivate(name) {
		return v, true
	}
	for _, fw := range m.forwards {
		unprefixed := strings.TrimPrefix(name, fw.prefix)
		if unprefixed == name && fw.prefix != "" {
			continue
		}
		if !applyFilter(unprefixed, fw.filter) {
			continue
		}
		if v, ok := fw.target.publicVar(unprefixed); ok {
			return v, true
		}
	}
	return nil, false
}

func (m *Module) publicFunc(name string) (*FuncDef, bool) {
	if d, ok := m.Top.funcs[name]; ok && !isPrivate(name) {
		return d, true
	}
	for _, fw := range m.forwards {
		unprefixed := strings.TrimPrefix(name, fw.prefix)
		if unprefixed == name && fw.prefix != "" {
			continue
		}
		if !applyFilter(unprefixed, fw.filter) {
			continue
		}
		if d, ok := fw.target.publicFunc(unprefixed); ok {
			return d, true
		}
	}
	return nil, false
}

func (m *Module) publicMixin(name string) (*MixinDef, bool) {
	if d, ok := m.Top.mixins[name]; ok && !isPrivate(name) {
		return d, true
	}
	for _, fw := range m.forwards {
		unprefixed := strings.TrimPrefix(name, fw.prefix)
		if unprefixed == name && fw.prefix != "" {
			continue
		}
		if !applyFilter(unprefixed, fw.filter) {
			continue
		}
		if d, ok := fw.target.publicMixin(unprefixed); ok {
			return d, true
		}
	}
	return nil, false
}
