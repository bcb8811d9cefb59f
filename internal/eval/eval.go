package eval

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/gosass/sass/internal/ast"
	"github.com/gosass/sass/internal/extend"
	"github.com/gosass/sass/internal/resolve"
	"github.com/gosass/sass/internal/selector"
	"github.com/gosass/sass/span"
	"github.com/gosass/sass/value"
)

// Logger is the evaluator's injectable sink for `@warn`/`@debug` and
// deprecation notices (§7). Accepting an interface here, rather than
// importing the logging package, follows the teacher's own warn/warnf
// helpers generalized into something pluggable (§6 "logger option");
// the default implementation lives in package logging.
type Logger interface {
	Warn(message string, deprecation string, stack []span.Span)
	Debug(message string, sp span.Span)
}

// maxRecursion bounds mixin/function/import recursion (§4.3 "Recursion
// guard"); chosen to comfortably exceed legitimate recursive Sass
// patterns (list-building, tree walks) while still failing fast on a
// runaway self-@include.
const maxRecursion = 500

// contentFrame is one `@include ... { ... }` content block awaiting a
// matching `@content` inside the mixin body it was passed to (§4.3
// "@content"). closure is the scope at the *call site*, not the mixin's
// own scope, since content blocks close over their lexical origin.
type contentFrame struct {
	block   *ast.ContentBlock
	closure *Frame
	module  *Module
}

// signalKind distinguishes ordinary statement-list completion from a
// `@return` unwinding back to the enclosing function call (§4.3
// "Control-flow statements do not introduce their own scope ... @return
// halts evaluation of the current function body").
type signalKind int

const (
	sigNone signalKind = iota
	sigReturn
)

type signal struct {
	kind signalKind
	val  value.Value
}

// Options configures one evaluation run (§6's subset of compile options
// that affect evaluation rather than serialization).
type Options struct {
	Logger           Logger
	Functions        map[string]value.Function // embedder-registered (§6 "functions")
	QuietDeps        bool
	FatalDeprecations map[string]bool
	FutureDeprecations map[string]bool
}

// Evaluator walks a resolved Sass AST and produces a CSS AST (§4.3).
// One Evaluator instance is scoped to a single compile.
type Evaluator struct {
	Resolver *resolve.Resolver
	Extend   *extend.Registry
	opts     Options

	modules   map[string]*Module // canonical URL -> evaluated module, at-most-once (§4.2)
	evaluating map[string]bool   // @use/@import cycle guard during evaluation
	importStack []string         // @import re-entry guard (§4.2, distinct from @use's DAG)

	frame   *Frame
	module  *Module

	// output is a stack of insertion points: emit appends to the slice
	// the top frame points into, so nested style rules/at-rules build
	// their own Children while sharing the same dispatch code as the
	// stylesheet root.
	output []*[]ast.CSSNode

	selectorStack []*selector.List // current nesting chain, for "&" resolution
	mediaScope    string           // canonicalized enclosing @media/@supports condition (§4.5)

	contentStack []*contentFrame
	depth        int

	// ctx is checked at every @use/@forward/@import resolution boundary
	// (§5 "cancellation is cooperative at importer-resolution
	// boundaries"); the plain Run supplies context.Background(), which is
	// never cancelled.
	ctx context.Context
}

// checkCancel returns e.ctx.Err() (context.Canceled or
// context.DeadlineExceeded, unwrapped) if e.ctx has been cancelled, the one cooperative cancellation point §5
// describes; evaluation that never calls an importer never observes it.
func (e *Evaluator) checkCancel() error {
	if e.ctx == nil {
		return nil
	}
	select {
	case <-e.ctx.Done():
		return e.ctx.Err()
	default:
		return nil
	}
}

// New builds an Evaluator ready to run a stylesheet's statements against
// a fresh module.
func New(r *resolve.Resolver, opts Options) *Evaluator {
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	return &Evaluator{
		Resolver:   r,
		Extend:     extend.NewRegistry(),
		opts:       opts,
		modules:    map[string]*Module{},
		evaluating: map[string]bool{},
	}
}

type nopLogger struct{}

func (nopLogger) Warn(string, string, []span.Span) {}
func (nopLogger) Debug(string, span.Span)           {}

// Run evaluates sheet as the entry-point module (anonymous or URL-less
// compileString input) and returns the produced CSS AST.
func (e *Evaluator) Run(sheet *ast.Stylesheet, url string) (*ast.CSSRoot, error) {
	return e.RunContext(context.Background(), sheet, url)
}

// RunContext is Run with a cancellable context threaded through every
// importer-resolution boundary (§5).
func (e *Evaluator) RunContext(ctx context.Context, sheet *ast.Stylesheet, url string) (*ast.CSSRoot, error) {
	e.ctx = ctx
	root := &ast.CSSRoot{Children: nil}
	root.Pos = sheet.Pos
	m := newModule(url)
	e.module = m
	e.frame = m.Top
	if url != "" {
		e.modules[url] = m
	}
	out := root.Children
	e.output = []*[]ast.CSSNode{&out}
	sig, err := e.evalStatements(sheet.Body)
	root.Children = *e.output[0]
	if err != nil {
		return root, err
	}
	if sig.kind == sigReturn {
		return root, &RuntimeError{Message: "@return is only allowed within a function body", Stack: []span.Span{sheet.Pos}}
	}
	return root, nil
}

// emit appends node to the current insertion point.
func (e *Evaluator) emit(node ast.CSSNode) {
	top := e.output[len(e.output)-1]
	*top = append(*top, node)
}

// withOutput runs fn with a fresh Children slice pushed as the active
// insertion point, returning the accumulated children.
func (e *Evaluator) withOutput(fn func() (signal, error)) ([]ast.CSSNode, signal, error) {
	var children []ast.CSSNode
	e.output = append(e.output, &children)
	sig, err := fn()
	e.output = e.output[:len(e.output)-1]
	return children, sig, err
}

func (e *Evaluator) currentSelector() *selector.List {
	if len(e.selectorStack) == 0 {
		return nil
	}
	return e.selectorStack[len(e.selectorStack)-1]
}

// evalStatements runs body in the current frame (no new scope is opened
// here; callers that need one push a child Frame first), stopping early
// on a non-sigNone signal.
func (e *Evaluator) evalStatements(body []ast.Statement) (signal, error) {
	for _, st := range body {
		sig, err := e.evalStatement(st)
		if err != nil {
			return signal{}, err
		}
		if sig.kind != sigNone {
			return sig, nil
		}
	}
	return signal{}, nil
}

func (e *Evaluator) evalStatement(st ast.Statement) (signal, error) {
	// internal/parser builds statement nodes as values; the cases below
	// take pointers, so a value node is first copied behind a pointer.
	if rv := reflect.ValueOf(st); rv.Kind() == reflect.Struct {
		ptr := reflect.New(rv.Type())
		ptr.Elem().Set(rv)
		st = ptr.Interface().(ast.Statement)
	}
	switch n := st.(type) {
	case *ast.StyleRule:
		return signal{}, e.evalStyleRule(n)
	case *ast.Declaration:
		return signal{}, e.evalDeclaration(n)
	case *ast.VariableDecl:
		return signal{}, e.evalVariableDecl(n)
	case *ast.If:
		return e.evalIf(n)
	case *ast.Each:
		return e.evalEach(n)
	case *ast.For:
		return e.evalFor(n)
	case *ast.While:
		return e.evalWhile(n)
	case *ast.FunctionDecl:
		e.frame.DeclareFunc(n.Name, &FuncDef{Decl: n, Closure: e.frame})
		return signal{}, nil
	case *ast.MixinDecl:
		e.frame.DeclareMixin(n.Name, &MixinDef{Decl: n, Closure: e.frame})
		return signal{}, nil
	case *ast.Include:
		return e.evalInclude(n)
	case *ast.ContentStmt:
		return e.evalContent(n)
	case *ast.Return:
		v, err := e.evalExpr(n.Value)
		if err != nil {
			return signal{}, wrapErr(err, n.Pos)
		}
		return signal{kind: sigReturn, val: v}, nil
	case *ast.AtRoot:
		return signal{}, e.evalAtRoot(n)
	case *ast.Media:
		return signal{}, e.evalMedia(n)
	case *ast.Supports:
		return signal{}, e.evalSupports(n)
	case *ast.UnknownAtRule:
		return signal{}, e.evalUnknownAtRule(n)
	case *ast.Extend:
		return signal{}, e.evalExtend(n)
	case *ast.Import:
		return signal{}, e.evalImport(n)
	case *ast.Use:
		return signal{}, e.evalUse(n)
	case *ast.Forward:
		return signal{}, e.evalForward(n)
	case *ast.SilentComment:
		return signal{}, nil
	case *ast.LoudComment:
		text, err := e.evalInterpolationToString(n.Text)
		if err != nil {
			return signal{}, wrapErr(err, n.Pos)
		}
		cc := &ast.CSSComment{Text: text}
		cc.Pos = n.Pos
		e.emit(cc)
		return signal{}, nil
	case *ast.ErrorStmt:
		v, err := e.evalExpr(n.Value)
		if err != nil {
			return signal{}, wrapErr(err, n.Pos)
		}
		return signal{}, &UserError{Message: e.inspect(v), Stack: []span.Span{n.Pos}}
	case *ast.WarnStmt:
		v, err := e.evalExpr(n.Value)
		if err != nil {
			return signal{}, wrapErr(err, n.Pos)
		}
		e.opts.Logger.Warn(e.toCSSString(v), "", []span.Span{n.Pos})
		return signal{}, nil
	case *ast.DebugStmt:
		v, err := e.evalExpr(n.Value)
		if err != nil {
			return signal{}, wrapErr(err, n.Pos)
		}
		e.opts.Logger.Debug(e.inspect(v), n.Pos)
		return signal{}, nil
	default:
		return signal{}, fmt.Errorf("unhandled statement %T", n)
	}
}

// evalStyleRule resolves the selector against the current parent
// context, emits a CSSStyleRule, and evaluates its body in a fresh child
// frame with that rule pushed as the new selector context (§4.3 "Style
// rule").
func (e *Evaluator) evalStyleRule(n *ast.StyleRule) error {
	text, err := e.evalInterpolationToString(n.Selector)
	if err != nil {
		return wrapErr(err, n.Pos)
	}
	parent := e.currentSelector()
	parsed, perr := selector.Parse(text, selector.ParseOptions{AllowParent: true})
	if perr != nil {
		return wrapErr(perr, n.Pos)
	}
	resolved, rerr := selector.ResolveParent(parent, parsed)
	if rerr != nil {
		return wrapErr(rerr, n.Pos)
	}

	rule := &ast.CSSStyleRule{Selector: resolved, MediaScope: e.mediaScope}
	rule.Pos = n.Pos
	e.emit(rule)

	e.selectorStack = append(e.selectorStack, resolved)
	prevFrame := e.frame
	e.frame = prevFrame.child()
	children, sig, err := e.withOutput(func() (signal, error) { return e.evalStatements(n.Body) })
	e.frame = prevFrame
	e.selectorStack = e.selectorStack[:len(e.selectorStack)-1]
	// A nested style rule's selector is already resolved against this
	// one, so it is emitted after this rule as a sibling, not inside it.
	for _, c := range children {
		if _, ok := c.(*ast.CSSStyleRule); ok {
			e.emit(c)
		} else {
			rule.Children = append(rule.Children, c)
		}
	}
	if err != nil {
		return err
	}
	if sig.kind != sigNone {
		return &RuntimeError{Message: "@return is only allowed within a function body", Stack: []span.Span{n.Pos}}
	}
	return nil
}

// evalDeclaration emits a property declaration, recursing into a nested
// Body the way a style rule's children do when a declaration both has a
// value and nests further declarations under it (§4.3 "Declaration").
func (e *Evaluator) evalDeclaration(n *ast.Declaration) error {
	name, err := e.evalInterpolationToString(n.Name)
	if err != nil {
		return wrapErr(err, n.Pos)
	}
	if n.Value != nil {
		v, important, verr := e.evalDeclarationValue(n.Value, n.Custom)
		if verr != nil {
			return wrapErr(verr, n.Pos)
		}
		if !(v.Type() == "null") {
			d := &ast.CSSDeclaration{Name: name, Value: v, Important: important}
			d.Pos = n.Pos
			e.emit(d)
		}
	}
	if len(n.Body) > 0 {
		prevFrame := e.frame
		e.frame = prevFrame.child()
		sig, err := e.evalStatements(n.Body)
		e.frame = prevFrame
		if err != nil {
			return err
		}
		if sig.kind != sigNone {
			return &RuntimeError{Message: "@return is only allowed within a function body", Stack: []span.Span{n.Pos}}
		}
	}
	return nil
}

// evalDeclarationValue evaluates a declaration's value expression,
// stripping a trailing "!important" flag the parser leaves attached to
// the expression tree as a unary-looking ident (custom properties keep
// their value as a verbatim interpolated string per §4.3).
func (e *Evaluator) evalDeclarationValue(expr ast.Expr, custom bool) (value.Value, bool, error) {
	important := false
	if id, ok := lastIdentText(expr); ok && strings.EqualFold(strings.TrimSpace(id), "!important") {
		important = true
	}
	v, err := e.evalExpr(expr)
	if err != nil {
		return nil, false, err
	}
	return v, important, nil
}

// lastIdentText is a narrow helper for the "!important" suffix check;
// most declaration values are not a bare ident, in which case it simply
// reports no match.
func lastIdentText(expr ast.Expr) (string, bool) {
	if id, ok := expr.(ast.Ident); ok {
		return id.Text.PlainText(), !id.Text.HasInterpolation()
	}
	return "", false
}

func (e *Evaluator) evalVariableDecl(n *ast.VariableDecl) error {
	v, err := e.evalExpr(n.Value)
	if err != nil {
		return wrapErr(err, n.Pos)
	}
	frame := e.frame
	if n.Namespace != "" {
		mod, ok := e.module.namespaces[n.Namespace]
		if !ok {
			return wrapErr(fmt.Errorf("there is no module with namespace %q", n.Namespace), n.Pos)
		}
		frame = mod.Top
	}
	if n.Guarded {
		frame.SetVarGuarded(n.Name, v)
		return nil
	}
	frame.SetVar(n.Name, v, n.Global)
	return nil
}

func (e *Evaluator) evalIf(n *ast.If) (signal, error) {
	for _, clause := range n.Clauses {
		take := clause.Condition == nil
		if !take {
			v, err := e.evalExpr(clause.Condition)
			if err != nil {
				return signal{}, wrapErr(err, n.Pos)
			}
			take = v.Truthy()
		}
		if take {
			prevFrame := e.frame
			e.frame = prevFrame.child()
			sig, err := e.evalStatements(clause.Body)
			e.frame = prevFrame
			return sig, err
		}
	}
	return signal{}, nil
}

func (e *Evaluator) evalEach(n *ast.Each) (signal, error) {
	listVal, err := e.evalExpr(n.List)
	if err != nil {
		return signal{}, wrapErr(err, n.Pos)
	}
	var items []value.Value
	if m, ok := listVal.(value.Map); ok {
		items = value.Singleton(m.AsList()).Elements
	} else {
		items = value.Singleton(listVal).Elements
	}
	for _, item := range items {
		prevFrame := e.frame
		e.frame = prevFrame.child()
		if len(n.Variables) == 1 {
			e.frame.SetVar(n.Variables[0], item, false)
		} else {
			pair := value.Singleton(item).Elements
			var first, second value.Value = value.NullValue, value.NullValue
			if len(pair) > 0 {
				first = pair[0]
			}
			if len(pair) > 1 {
				second = pair[1]
			}
			e.frame.SetVar(n.Variables[0], first, false)
			e.frame.SetVar(n.Variables[1], second, false)
		}
		sig, err := e.evalStatements(n.Body)
		e.frame = prevFrame
		if err != nil {
			return signal{}, err
		}
		if sig.kind != sigNone {
			return sig, nil
		}
	}
	return signal{}, nil
}

func (e *Evaluator) evalFor(n *ast.For) (signal, error) {
	fromV, err := e.evalExpr(n.From)
	if err != nil {
		return signal{}, wrapErr(err, n.Pos)
	}
	toV, err := e.evalExpr(n.To)
	if err != nil {
		return signal{}, wrapErr(err, n.Pos)
	}
	fromNum, ok := fromV.(value.Number)
	if !ok {
		return signal{}, wrapErr(fmt.Errorf("%s is not a number", e.inspect(fromV)), n.Pos)
	}
	toNum, ok := toV.(value.Number)
	if !ok {
		return signal{}, wrapErr(fmt.Errorf("%s is not a number", e.inspect(toV)), n.Pos)
	}
	from, to := int(fromNum.Num), int(toNum.Num)
	step := 1
	if from > to {
		step = -1
	}
	for i := from; (step > 0 && i <= to) || (step < 0 && i >= to); i += step {
		if n.Inclusive == false && i == to {
			break
		}
		prevFrame := e.frame
		e.frame = prevFrame.child()
		e.frame.SetVar(n.Variable, value.Unitless(float64(i)), false)
		sig, err := e.evalStatements(n.Body)
		e.frame = prevFrame
		if err != nil {
			return signal{}, err
		}
		if sig.kind != sigNone {
			return sig, nil
		}
	}
	return signal{}, nil
}

func (e *Evaluator) evalWhile(n *ast.While) (signal, error) {
	for {
		v, err := e.evalExpr(n.Condition)
		if err != nil {
			return signal{}, wrapErr(err, n.Pos)
		}
		if !v.Truthy() {
			return signal{}, nil
		}
		prevFrame := e.frame
		e.frame = prevFrame.child()
		sig, err := e.evalStatements(n.Body)
		e.frame = prevFrame
		if err != nil {
			return signal{}, err
		}
		if sig.kind != sigNone {
			return sig, nil
		}
	}
}

// evalInterpolationToString evaluates every live expression part of an
// Interpolation and concatenates it with the literal parts, the shared
// "first captured as a token stream with embedded expressions" re-parse
// path (§4.1) applied to selectors, declaration names, and at-rule
// preludes alike.
func (e *Evaluator) evalInterpolationToString(interp ast.Interpolation) (string, error) {
	if !interp.HasInterpolation() {
		return interp.PlainText(), nil
	}
	var b strings.Builder
	for _, p := range interp.Parts {
		if p.Expr == nil {
			b.WriteString(p.Text)
			continue
		}
		v, err := e.evalExpr(p.Expr)
		if err != nil {
			return "", err
		}
		b.WriteString(e.toCSSString(v))
	}
	return b.String(), nil
}
