package eval

import (
	"fmt"
	"strings"

	"github.com/gosass/sass/internal/ast"
	"github.com/gosass/sass/span"
)

// deriveNamespace implements §4.2's default `@use` namespace: the final
// path segment, with any leading "_" (partial marker) and extension
// stripped.
func deriveNamespace(url string) string {
	base := url
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimPrefix(base, "_")
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return base
}

// loadAndEvaluate loads url via the resolver (memoized parse) and, if it
// has not yet been evaluated this compile, evaluates its body into a
// fresh Module (§4.2 "each module is evaluated exactly once per
// compile"). config pre-populates the new module's top frame before the
// body runs, reusing plain variable-declaration semantics (!default
// guards naturally make a configured variable "stick" unless the module
// itself reassigns it unconditionally) so `with (...)` needs no special
// evaluation path of its own.
func (e *Evaluator) loadAndEvaluate(url string, fromImport bool, config *ast.Configuration) (*Module, error) {
	if err := e.checkCancel(); err != nil {
		return nil, err
	}
	node, err := e.Resolver.Load(url, fromImport)
	if err != nil {
		return nil, err
	}
	if m, ok := e.modules[node.URL]; ok {
		return m, nil
	}
	if e.evaluating[node.URL] {
		return nil, fmt.Errorf("module loop: %s is already being evaluated", node.URL)
	}
	if err := e.Resolver.EnterUse(node.URL); err != nil {
		return nil, err
	}
	e.evaluating[node.URL] = true
	defer func() {
		delete(e.evaluating, node.URL)
		e.Resolver.Leave(node.URL)
	}()

	m := newModule(node.URL)
	if config != nil {
		for name, expr := range config.Variables {
			v, err := e.evalExpr(expr)
			if err != nil {
				return nil, err
			}
			m.Top.vars[name] = v
		}
	}
	e.modules[node.URL] = m

	prevFrame, prevModule, prevSelectors, prevScope := e.frame, e.module, e.selectorStack, e.mediaScope
	e.frame, e.module, e.selectorStack, e.mediaScope = m.Top, m, nil, ""
	children, sig, err := e.withOutput(func() (signal, error) { return e.evalStatements(node.Stylesheet.Body) })
	e.frame, e.module, e.selectorStack, e.mediaScope = prevFrame, prevModule, prevSelectors, prevScope
	if err != nil {
		return nil, err
	}
	if sig.kind != sigNone {
		return nil, fmt.Errorf("@return is only allowed within a function body")
	}
	// A module's own top-level CSS output is spliced into the importing
	// context at the `@use`/`@forward` site (§4.2 "CSS rules the module
	// itself emits at its top level are included wherever it is first
	// used").
	for _, c := range children {
		e.emit(c)
	}
	return m, nil
}

// builtinModule builds a synthetic Module exposing one of the compiler's
// "sass:*" built-in libraries (§3 SUPPLEMENTED FEATURES), so `@use
// "sass:math" as m` and plain `math.round(...)` (the namespace-implicit
// fallback evalFuncCall also supports) both reach the same functions.
func builtinModule(name string) (*Module, bool) {
	fns, ok := scopedBuiltins[name]
	if !ok {
		return nil, false
	}
	m := newModule("sass:" + name)
	for fname, impl := range fns {
		m.Top.funcs[fname] = &FuncDef{Native: impl}
	}
	return m, true
}

func (e *Evaluator) evalUse(n *ast.Use) error {
	if strings.HasPrefix(n.URL, "sass:") {
		m, ok := builtinModule(strings.TrimPrefix(n.URL, "sass:"))
		if !ok {
			return wrapErr(fmt.Errorf("unknown built-in module %q", n.URL), n.Pos)
		}
		ns := n.Namespace
		if ns == "" {
			ns = strings.TrimPrefix(n.URL, "sass:")
		}
		e.module.namespaces[ns] = m
		return nil
	}
	m, err := e.loadAndEvaluate(n.URL, false, n.Configuration)
	if err != nil {
		return wrapErr(err, n.Pos)
	}
	ns := n.Namespace
	if ns == "" {
		ns = deriveNamespace(n.URL)
	}
	if ns == "*" {
		e.module.forwards = append(e.module.forwards, forwardEdge{target: m})
		return nil
	}
	if e.module.namespaces == nil {
		e.module.namespaces = map[string]*Module{}
	}
	e.module.namespaces[ns] = m
	return nil
}

func (e *Evaluator) evalForward(n *ast.Forward) error {
	m, err := e.loadAndEvaluate(n.URL, false, n.Configuration)
	if err != nil {
		return wrapErr(err, n.Pos)
	}
	e.module.forwards = append(e.module.forwards, forwardEdge{target: m, prefix: n.Prefix, filter: n.Filter})
	return nil
}

// evalImport implements "@import" (§3, §4.2): each static target passes
// through as a plain CSSImport node; each dynamic target's stylesheet is
// evaluated directly into the current scope (not a fresh module), the
// legacy semantics where an imported file's top-level variables,
// functions, and mixins become visible as if they had been written
// inline. Instead of the DAG cycle detection `@use`/`@forward` apply, an
// import of a stylesheet that is already being imported further up the
// active import chain is skipped.
func (e *Evaluator) evalImport(n *ast.Import) error {
	for _, t := range n.Targets {
		if t.Static {
			media, err := e.evalInterpolationToString(t.Media)
			if err != nil {
				return wrapErr(err, n.Pos)
			}
			imp := &ast.CSSImport{URL: t.URL, Media: media}
			imp.Pos = n.Pos
			e.emit(imp)
			continue
		}
		if err := e.evalDynamicImport(t.URL, n.Pos); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) evalDynamicImport(url string, sp span.Span) error {
	if err := e.checkCancel(); err != nil {
		return wrapErr(err, sp)
	}
	node, err := e.Resolver.Load(url, true)
	if err != nil {
		return wrapErr(err, sp)
	}
	for _, seen := range e.importStack {
		if seen == node.URL {
			return nil
		}
	}
	e.importStack = append(e.importStack, node.URL)
	defer func() { e.importStack = e.importStack[:len(e.importStack)-1] }()

	sig, err := e.evalStatements(node.Stylesheet.Body)
	if err != nil {
		return err
	}
	if sig.kind != sigNone {
		return wrapErr(fmt.Errorf("@return is only allowed within a function body"), sp)
	}
	return nil
}
