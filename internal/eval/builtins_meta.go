package eval

import (
	"fmt"

	"github.com/gosass/sass/value"
)

// metaBuiltins is the `sass:meta` module (§3 SUPPLEMENTED FEATURES:
// introspection over variables, functions, and mixins).
var metaBuiltins = map[string]BuiltinFunc{
	"feature-exists": func(e *Evaluator, a Args) (value.Value, error) {
		name, err := a.String(0, "feature")
		if err != nil {
			return nil, err
		}
		switch name {
		case "global-variable-shadowing", "extend-selector-pseudoclass",
			"at-error", "units-level-3", "calc-operations":
			return boolean(true), nil
		default:
			return boolean(false), nil
		}
	},
	"global-variable-exists": func(e *Evaluator, a Args) (value.Value, error) {
		name, err := a.String(0, "name")
		if err != nil {
			return nil, err
		}
		mod := e.module
		if modName, ok := a.Get(1, "module"); ok {
			if ns, ok := modName.(value.String); ok {
				target, ok := e.module.namespaces[ns.Text]
				if !ok {
					return boolean(false), nil
				}
				mod = target
			}
		}
		_, ok := mod.Top.vars[name]
		return boolean(ok), nil
	},
	"variable-exists": func(e *Evaluator, a Args) (value.Value, error) {
		name, err := a.String(0, "name")
		if err != nil {
			return nil, err
		}
		_, ok := e.frame.GetVar(name)
		return boolean(ok), nil
	},
	"function-exists": func(e *Evaluator, a Args) (value.Value, error) {
		name, err := a.String(0, "name")
		if err != nil {
			return nil, err
		}
		if _, ok := e.frame.lookupFunc(name); ok {
			return boolean(true), nil
		}
		if _, ok := builtins[name]; ok {
			return boolean(true), nil
		}
		return boolean(false), nil
	},
	"mixin-exists": func(e *Evaluator, a Args) (value.Value, error) {
		name, err := a.String(0, "name")
		if err != nil {
			return nil, err
		}
		_, ok := e.frame.lookupMixin(name)
		return boolean(ok), nil
	},
	"content-exists": func(e *Evaluator, a Args) (value.Value, error) {
		return boolean(len(e.contentStack) > 0), nil
	},
	"module-variables": func(e *Evaluator, a Args) (value.Value, error) {
		ns, err := a.String(0, "module")
		if err != nil {
			return nil, err
		}
		mod, ok := e.module.namespaces[ns]
		if !ok {
			return nil, fmt.Errorf("there is no module with namespace %q", ns)
		}
		var entries []value.MapEntry
		for name, v := range mod.Top.vars {
			if isPrivate(name) {
				continue
			}
			entries = append(entries, value.MapEntry{Key: value.NewString(name, true), Value: v})
		}
		return value.Map{Entries: entries}, nil
	},
	"get-function": func(e *Evaluator, a Args) (value.Value, error) {
		name, err := a.String(0, "name")
		if err != nil {
			return nil, err
		}
		namespace := ""
		if nsv, ok := a.Get(2, "module"); ok {
			if ns, ok := nsv.(value.String); ok {
				namespace = ns.Text
			}
		}
		if fn, ok := e.lookupFunction(namespace, name); ok {
			return value.Function{Name: name, Builtin: func(args []value.Value) (value.Value, error) {
				return e.callFunctionValues(fn, Args{Positional: args})
			}}, nil
		}
		if namespace == "" {
			if bf, ok := builtins[name]; ok {
				return value.Function{Name: name, Builtin: func(args []value.Value) (value.Value, error) {
					return bf(e, Args{Positional: args})
				}}, nil
			}
		} else if mod, ok := scopedBuiltins[namespace]; ok {
			if bf, ok := mod[name]; ok {
				return value.Function{Name: name, Builtin: func(args []value.Value) (value.Value, error) {
					return bf(e, Args{Positional: args})
				}}, nil
			}
		}
		return nil, fmt.Errorf("function %q doesn't exist", name)
	},
	"call": func(e *Evaluator, a Args) (value.Value, error) {
		fv, ok := a.Get(0, "function")
		if !ok {
			return nil, fmt.Errorf("missing argument $function")
		}
		fn, ok := fv.(value.Function)
		if !ok {
			return nil, fmt.Errorf("$function: %v is not a function", fv)
		}
		return fn.Call(a.Positional[min(1, len(a.Positional)):])
	},
	"inspect": func(e *Evaluator, a Args) (value.Value, error) {
		v, ok := a.Get(0, "value")
		if !ok {
			return nil, fmt.Errorf("missing argument $value")
		}
		return unquoted(e.inspect(v)), nil
	},
	"type-of": func(e *Evaluator, a Args) (value.Value, error) {
		v, ok := a.Get(0, "value")
		if !ok {
			return nil, fmt.Errorf("missing argument $value")
		}
		return unquoted(v.Type()), nil
	},
}
