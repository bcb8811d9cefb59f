package eval

import (
	"fmt"

	"github.com/gosass/sass/internal/ast"
	"github.com/gosass/sass/value"
)

// bindArguments implements §4.3 "Calling convention": positional
// arguments fill parameters left to right, named arguments bind by
// name, a trailing "..." parameter collects the rest as a comma list
// (or, if the only remaining actual arguments were all named, as a map),
// and a spread actual argument (list, map, or arglist) expands across
// the remaining formal parameters. Defaults are evaluated lazily, in the
// callee's own closure, only for parameters nothing else bound.
func (e *Evaluator) bindArguments(params []ast.Parameter, args []ast.CallArg, closure *Frame) (*Frame, error) {
	call := closure.child()

	positional := make([]value.Value, 0, len(args))
	named := map[string]value.Value{}
	var restExtra []value.Value

	for _, a := range args {
		if a.Spread {
			v, err := e.evalExpr(a.Value)
			if err != nil {
				return nil, err
			}
			switch sv := v.(type) {
			case value.Map:
				for _, ent := range sv.Entries {
					k, ok := ent.Key.(value.String)
					if !ok {
						return nil, fmt.Errorf("variable keyword arguments must be strings")
					}
					named[k.Text] = ent.Value
				}
			default:
				for _, el := range value.Singleton(v).Elements {
					positional = append(positional, el)
				}
			}
			continue
		}
		v, err := e.evalExpr(a.Value)
		if err != nil {
			return nil, err
		}
		if a.Name != "" {
			named[a.Name] = v
		} else {
			positional = append(positional, v)
		}
	}

	pi := 0
	for _, p := range params {
		if p.Rest {
			break
		}
		if pi < len(positional) {
			call.SetVar(p.Name, positional[pi], false)
			pi++
			continue
		}
		if v, ok := named[p.Name]; ok {
			call.SetVar(p.Name, v, false)
			delete(named, p.Name)
			continue
		}
		if p.Default != nil {
			prevFrame := e.frame
			e.frame = call
			v, err := e.evalExpr(p.Default)
			e.frame = prevFrame
			if err != nil {
				return nil, err
			}
			call.SetVar(p.Name, v, false)
			continue
		}
		return nil, fmt.Errorf("missing argument $%s", p.Name)
	}

	restExtra = append(restExtra, positional[min(pi, len(positional)):]...)

	if len(params) > 0 && params[len(params)-1].Rest {
		rp := params[len(params)-1]
		if len(named) > 0 && len(restExtra) == 0 {
			var m value.Map
			for k, v := range named {
				m = m.Set(value.NewString(k, true), v)
			}
			call.SetVar(rp.Name, m, false)
		} else {
			call.SetVar(rp.Name, value.List{Separator: value.SepComma, Elements: restExtra}, false)
		}
		return call, nil
	}

	if len(restExtra) > 0 {
		return nil, fmt.Errorf("%d extra positional argument(s)", len(restExtra))
	}
	for k := range named {
		return nil, fmt.Errorf("no argument named $%s", k)
	}
	return call, nil
}

// callArgs converts the statement-level arguments of @include/@content
// into the expression-level form bindArguments takes.
func callArgs(args []ast.Argument) []ast.CallArg {
	out := make([]ast.CallArg, len(args))
	for i, a := range args {
		out[i] = ast.CallArg{Name: a.Name, Value: a.Value, Spread: a.Spread}
	}
	return out
}

// callFunction invokes a user @function: a fresh call frame closed over
// the function's declaration scope, so the body sees the variables,
// functions and mixins visible where the function was declared, while
// its own locals stay in the call frame and never become visible to the
// caller (§4.3 "Function call").
func (e *Evaluator) callFunction(fn *FuncDef, args []ast.CallArg) (value.Value, error) {
	if fn.Native != nil {
		plain, err := e.evalArgs(args)
		if err != nil {
			return nil, err
		}
		return e.callFunctionValues(fn, plain)
	}
	positional := make([]value.Value, 0, len(args))
	named := map[string]value.Value{}
	for _, arg := range args {
		if arg.Spread {
			v, err := e.evalExpr(arg.Value)
			if err != nil {
				return nil, err
			}
			switch sv := v.(type) {
			case value.Map:
				for _, ent := range sv.Entries {
					if k, ok := ent.Key.(value.String); ok {
						named[k.Text] = ent.Value
					}
				}
			default:
				positional = append(positional, value.Singleton(v).Elements...)
			}
			continue
		}
		v, err := e.evalExpr(arg.Value)
		if err != nil {
			return nil, err
		}
		if arg.Name != "" {
			named[arg.Name] = v
		} else {
			positional = append(positional, v)
		}
	}
	return e.callFunctionValues(fn, Args{Positional: positional, Named: named})
}

// callFunctionValues invokes fn with already-evaluated arguments,
// letting `meta.get-function`/`meta.call` and native built-in callers
// reuse the exact same binding and recursion-guard logic as a
// source-level call (§3 "First-class functions").
func (e *Evaluator) callFunctionValues(fn *FuncDef, args Args) (value.Value, error) {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > maxRecursion {
		return nil, fmt.Errorf("maximum call stack depth exceeded")
	}
	if fn.Native != nil {
		return fn.Native(e, args)
	}
	callFrame, err := e.bindArgumentValues(fn.Decl.Parameters, args, fn.Closure)
	if err != nil {
		return nil, err
	}
	prevFrame := e.frame
	e.frame = callFrame
	sig, err := e.evalStatements(fn.Decl.Body)
	e.frame = prevFrame
	if err != nil {
		return nil, err
	}
	if sig.kind != sigReturn {
		return nil, fmt.Errorf("function %q finished without @return", fn.Decl.Name)
	}
	return sig.val, nil
}

// bindArgumentValues implements the same binding rules as
// bindArguments over already-evaluated arguments, used by
// callFunctionValues.
func (e *Evaluator) bindArgumentValues(params []ast.Parameter, args Args, closure *Frame) (*Frame, error) {
	call := closure.child()
	positional := append([]value.Value(nil), args.Positional...)
	named := map[string]value.Value{}
	for k, v := range args.Named {
		named[k] = v
	}

	pi := 0
	for _, p := range params {
		if p.Rest {
			break
		}
		if pi < len(positional) {
			call.SetVar(p.Name, positional[pi], false)
			pi++
			continue
		}
		if v, ok := named[p.Name]; ok {
			call.SetVar(p.Name, v, false)
			delete(named, p.Name)
			continue
		}
		if p.Default != nil {
			prevFrame := e.frame
			e.frame = call
			v, err := e.evalExpr(p.Default)
			e.frame = prevFrame
			if err != nil {
				return nil, err
			}
			call.SetVar(p.Name, v, false)
			continue
		}
		return nil, fmt.Errorf("missing argument $%s", p.Name)
	}

	restExtra := append([]value.Value(nil), positional[min(pi, len(positional)):]...)
	if len(params) > 0 && params[len(params)-1].Rest {
		rp := params[len(params)-1]
		if len(named) > 0 && len(restExtra) == 0 {
			var m value.Map
			for k, v := range named {
				m = m.Set(value.NewString(k, true), v)
			}
			call.SetVar(rp.Name, m, false)
		} else {
			call.SetVar(rp.Name, value.List{Separator: value.SepComma, Elements: restExtra}, false)
		}
		return call, nil
	}

	if len(restExtra) > 0 {
		return nil, fmt.Errorf("%d extra positional argument(s)", len(restExtra))
	}
	for k := range named {
		return nil, fmt.Errorf("no argument named $%s", k)
	}
	return call, nil
}

// evalInclude implements "@include name(args) { content }" (§3, §4.3):
// the content block (if any) is pushed as a contentFrame closed over the
// *call site's* scope before the mixin body runs, so `@content` inside
// the mixin evaluates it back in the caller's lexical environment.
func (e *Evaluator) evalInclude(n *ast.Include) (signal, error) {
	mixin, err := e.lookupMixin(n.Namespace, n.Name)
	if err != nil {
		return signal{}, wrapErr(err, n.Pos)
	}
	if n.Content != nil && !mixin.Decl.HasContent {
		return signal{}, wrapErr(fmt.Errorf("mixin %q doesn't accept a content block", n.Name), n.Pos)
	}

	e.depth++
	defer func() { e.depth-- }()
	if e.depth > maxRecursion {
		return signal{}, wrapErr(fmt.Errorf("maximum call stack depth exceeded"), n.Pos)
	}

	callFrame, err := e.bindArguments(mixin.Decl.Parameters, callArgs(n.Arguments), mixin.Closure)
	if err != nil {
		return signal{}, wrapErr(err, n.Pos)
	}

	if n.Content != nil {
		e.contentStack = append(e.contentStack, &contentFrame{block: n.Content, closure: e.frame, module: e.module})
		defer func() { e.contentStack = e.contentStack[:len(e.contentStack)-1] }()
	}

	prevFrame := e.frame
	e.frame = callFrame
	sig, err := e.evalStatements(mixin.Decl.Body)
	e.frame = prevFrame
	if err != nil {
		return signal{}, err
	}
	if sig.kind == sigReturn {
		return signal{}, wrapErr(fmt.Errorf("@return is only allowed within a function body"), n.Pos)
	}
	return signal{}, nil
}

// evalContent implements "@content [(args)]" (§3, §4.3): it pops the
// top of the content stack, binds its arguments (if the call passed
// any) against the content block's own formal parameters, and evaluates
// the block's body back in the call site's closure frame, not the
// mixin's.
func (e *Evaluator) evalContent(n *ast.ContentStmt) (signal, error) {
	if len(e.contentStack) == 0 {
		return signal{}, nil
	}
	top := e.contentStack[len(e.contentStack)-1]
	e.contentStack = e.contentStack[:len(e.contentStack)-1]
	defer func() { e.contentStack = append(e.contentStack, top) }()

	callFrame, err := e.bindArguments(top.block.Parameters, callArgs(n.Arguments), top.closure)
	if err != nil {
		return signal{}, wrapErr(err, n.Pos)
	}

	prevFrame, prevModule := e.frame, e.module
	e.frame, e.module = callFrame, top.module
	sig, err := e.evalStatements(top.block.Body)
	e.frame, e.module = prevFrame, prevModule
	return sig, err
}

func (e *Evaluator) lookupMixin(namespace, name string) (*MixinDef, error) {
	if namespace != "" {
		mod, ok := e.module.namespaces[namespace]
		if !ok {
			return nil, fmt.Errorf("there is no module with namespace %q", namespace)
		}
		d, ok := mod.publicMixin(name)
		if !ok {
			return nil, fmt.Errorf("undefined mixin %s.%s", namespace, name)
		}
		return d, nil
	}
	if d, ok := e.frame.lookupMixin(name); ok {
		return d, nil
	}
	return nil, fmt.Errorf("undefined mixin %s", name)
}

func (e *Evaluator) lookupFunction(namespace string, name string) (*FuncDef, bool) {
	if namespace != "" {
		mod, ok := e.module.namespaces[namespace]
		if !ok {
			return nil, false
		}
		return mod.publicFunc(name)
	}
	return e.frame.lookupFunc(name)
}

// evalFuncCall resolves name against user @function declarations, then
// embedder-registered host functions, then the built-in library,
// falling back to a verbatim plain-CSS function call when nothing
// recognizes it (§3 "function call ... or a plain CSS function the
// evaluator doesn't recognize and so passes through verbatim").
func (e *Evaluator) evalFuncCall(n ast.FuncCall) (value.Value, error) {
	name, err := e.evalInterpolationToString(n.Name)
	if err != nil {
		return nil, err
	}

	if fn, ok := e.lookupFunction(n.Namespace, name); ok {
		v, err := e.callFunction(fn, n.Arguments)
		if err != nil {
			return nil, wrapErr(err, n.Pos)
		}
		return v, nil
	}

	if n.Namespace == "" {
		if hf, ok := e.opts.Functions[name]; ok {
			args, err := e.evalArgs(n.Arguments)
			if err != nil {
				return nil, err
			}
			v, err := hf.Call(args.Positional)
			if err != nil {
				return nil, wrapErr(err, n.Pos)
			}
			return v, nil
		}
		if bf, ok := builtins[name]; ok {
			args, err := e.evalArgs(n.Arguments)
			if err != nil {
				return nil, err
			}
			v, err := bf(e, args)
			if err != nil {
				return nil, wrapErr(err, n.Pos)
			}
			return v, nil
		}
	} else if mod, ok := scopedBuiltins[n.Namespace]; ok {
		if bf, ok := mod[name]; ok {
			args, err := e.evalArgs(n.Arguments)
			if err != nil {
				return nil, err
			}
			v, err := bf(e, args)
			if err != nil {
				return nil, wrapErr(err, n.Pos)
			}
			return v, nil
		}
	}

	// Unrecognized: re-synthesize as a literal CSS function call,
	// evaluating arguments only for their textual form.
	return e.evalPlainCSSFuncCall(n)
}

// evalArgs evaluates a call's actual arguments into an Args bundle,
// keeping positional order and named bindings both available since the
// built-in library (unlike user @function bodies) is implemented
// directly in Go and wants both forms (e.g. `color.adjust` is almost
// always called with named channel arguments).
func (e *Evaluator) evalArgs(args []ast.CallArg) (Args, error) {
	out := Args{Named: map[string]value.Value{}}
	for _, a := range args {
		if a.Spread {
			v, err := e.evalExpr(a.Value)
			if err != nil {
				return Args{}, err
			}
			if m, ok := v.(value.Map); ok {
				for _, ent := range m.Entries {
					if k, ok := ent.Key.(value.String); ok {
						out.Named[k.Text] = ent.Value
					}
				}
				continue
			}
			out.Positional = append(out.Positional, value.Singleton(v).Elements...)
			continue
		}
		v, err := e.evalExpr(a.Value)
		if err != nil {
			return Args{}, err
		}
		if a.Name != "" {
			out.Named[a.Name] = v
		} else {
			out.Positional = append(out.Positional, v)
		}
	}
	return out, nil
}

func (e *Evaluator) evalPlainCSSFuncCall(n ast.FuncCall) (value.Value, error) {
	name, err := e.evalInterpolationToString(n.Name)
	if err != nil {
		return nil, err
	}
	parts := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		v, err := e.evalExpr(a.Value)
		if err != nil {
			return nil, err
		}
		text := e.toCSSString(v)
		if a.Name != "" {
			text = "$" + a.Name + ": " + text
		}
		parts = append(parts, text)
	}
	joined := ""
	for i, p := range parts {
		if i > 0 {
			joined += ", "
		}
		joined += p
	}
	prefix := name
	if n.Namespace != "" {
		prefix = n.Namespace + "." + name
	}
	return value.NewString(prefix+"("+joined+")", false), nil
}
