package eval

import (
	"fmt"

	"github.com/gosass/sass/internal/selector"
	"github.com/gosass/sass/value"
)

func selectorArg(e *Evaluator, a Args, i int, name string) (*selector.List, error) {
	v, ok := a.Get(i, name)
	if !ok {
		return nil, fmt.Errorf("missing argument $%s", name)
	}
	return e.selectorListFromValue(v)
}

func selectorResult(l *selector.List) value.Value {
	return value.Selector{Text: l.String()}
}

// selectorBuiltins is the `sass:selector` module (§4.4 "exposed to Sass
// source as the `sass:selector` built-in module").
var selectorBuiltins = map[string]BuiltinFunc{
	"nest": func(e *Evaluator, a Args) (value.Value, error) {
		if len(a.Positional) == 0 {
			return nil, fmt.Errorf("selector.nest requires at least one argument")
		}
		cur, err := e.selectorListFromValue(a.Positional[0])
		if err != nil {
			return nil, err
		}
		for _, v := range a.Positional[1:] {
			next, err := e.selectorListFromValue(v)
			if err != nil {
				return nil, err
			}
			cur, err = selector.ResolveParent(cur, next)
			if err != nil {
				return nil, err
			}
		}
		return selectorResult(cur), nil
	},
	"append": func(e *Evaluator, a Args) (value.Value, error) {
		if len(a.Positional) == 0 {
			return nil, fmt.Errorf("selector.append requires at least one argument")
		}
		cur, err := e.selectorListFromValue(a.Positional[0])
		if err != nil {
			return nil, err
		}
		for _, v := range a.Positional[1:] {
			next, err := e.selectorListFromValue(v)
			if err != nil {
				return nil, err
			}
			cur, err = appendSelector(cur, next)
			if err != nil {
				return nil, err
			}
		}
		return selectorResult(cur), nil
	},
	"is-superselector": func(e *Evaluator, a Args) (value.Value, error) {
		super, err := selectorArg(e, a, 0, "super")
		if err != nil {
			return nil, err
		}
		sub, err := selectorArg(e, a, 1, "sub")
		if err != nil {
			return nil, err
		}
		return boolean(selector.IsSuperselector(super, sub)), nil
	},
	"simple-selectors": func(e *Evaluator, a Args) (value.Value, error) {
		v, ok := a.Get(0, "selector")
		if !ok {
			return nil, fmt.Errorf("missing argument $selector")
		}
		text := e.toCSSString(v)
		compound, err := selector.Parse(text, selector.ParseOptions{AllowParent: false})
		if err != nil {
			return nil, err
		}
		if len(compound.Complex) != 1 || len(compound.Complex[0].Components) != 1 {
			return nil, fmt.Errorf("$selector: %q is not a compound selector", text)
		}
		simples := compound.Complex[0].Components[0].Compound.Simples
		elems := make([]value.Value, len(simples))
		for i, s := range simples {
			elems[i] = value.NewString(s.String(), false)
		}
		return value.List{Separator: value.SepComma, Elements: elems}, nil
	},
	"parse": func(e *Evaluator, a Args) (value.Value, error) {
		l, err := selectorArg(e, a, 0, "selector")
		if err != nil {
			return nil, err
		}
		return selectorResult(l), nil
	},
	"unify": func(e *Evaluator, a Args) (value.Value, error) {
		s1, err := selectorArg(e, a, 0, "selector1")
		if err != nil {
			return nil, err
		}
		s2, err := selectorArg(e, a, 1, "selector2")
		if err != nil {
			return nil, err
		}
		var out []selector.Complex
		for _, c1 := range s1.Complex {
			for _, c2 := range s2.Complex {
				if u, ok := selector.UnifyComplex(c1, c2); ok {
					out = append(out, u)
				}
			}
		}
		if len(out) == 0 {
			return value.NullValue, nil
		}
		return selectorResult(&selector.List{Complex: out}), nil
	},
	"replace": func(e *Evaluator, a Args) (value.Value, error) {
		target, err := selectorArg(e, a, 0, "selector")
		if err != nil {
			return nil, err
		}
		original, err := selectorArg(e, a, 1, "original")
		if err != nil {
			return nil, err
		}
		replacement, err := selectorArg(e, a, 2, "replacement")
		if err != nil {
			return nil, err
		}
		out := replaceSelector(target, original, replacement)
		return selectorResult(out), nil
	},
	"extend": func(e *Evaluator, a Args) (value.Value, error) {
		target, err := selectorArg(e, a, 0, "selector")
		if err != nil {
			return nil, err
		}
		extendee, err := selectorArg(e, a, 1, "extendee")
		if err != nil {
			return nil, err
		}
		extender, err := selectorArg(e, a, 2, "extender")
		if err != nil {
			return nil, err
		}
		out := extendSelector(target, extendee, extender)
		return selectorResult(out), nil
	},
}

// appendSelector implements selector.append's "&"-less concatenation:
// each of next's compounds is glued directly onto the end of one of
// cur's, with no combinator or descendant space between them.
func appendSelector(cur, next *selector.List) (*selector.List, error) {
	var out []selector.Complex
	for _, c1 := range cur.Complex {
		for _, c2 := range next.Complex {
			if len(c2.Components) == 0 {
				continue
			}
			last := c1.Components[len(c1.Components)-1]
			merged := selector.Compound{Simples: append(append([]selector.Simple(nil), last.Compound.Simples...), c2.Components[0].Compound.Simples...)}
			components := append(append([]selector.CompoundCombinator(nil), c1.Components[:len(c1.Components)-1]...),
				selector.CompoundCombinator{Combinator: last.Combinator, Compound: merged})
			components = append(components, c2.Components[1:]...)
			out = append(out, selector.Complex{Components: components})
		}
	}
	return &selector.List{Complex: out}, nil
}

// replaceSelector swaps every compound in target that unifies exactly
// with original for replacement's compounds, the simplified, literal
// (non-extend-engine) form of substitution selector.replace exposes.
func replaceSelector(target, original, replacement *selector.List) *selector.List {
	var out []selector.Complex
	for _, tc := range target.Complex {
		replacedAny := false
		var components []selector.CompoundCombinator
		for _, cc := range tc.Components {
			replacedHere := false
			for _, oc := range original.Complex {
				for _, occ := range oc.Components {
					if cc.Compound.String() == occ.Compound.String() {
						for _, rc := range replacement.Complex {
							for _, rcc := range rc.Components {
								components = append(components, selector.CompoundCombinator{Combinator: cc.Combinator, Compound: rcc.Compound})
							}
						}
						replacedHere, replacedAny = true, true
					}
				}
			}
			if !replacedHere {
				components = append(components, cc)
			}
		}
		_ = replacedAny
		out = append(out, selector.Complex{Components: components})
	}
	return &selector.List{Complex: out}
}

// extendSelector applies ApplyToComplex over every complex in target
// against every extendee/extender compound pairing, unioning target
// with whatever new complex selectors result (mirrors the Registry's
// own Apply loop, but scoped to a single explicit call rather than the
// whole-stylesheet @extend pass).
func extendSelector(target, extendee, extender *selector.List) *selector.List {
	out := append([]selector.Complex(nil), target.Complex...)
	for _, tc := range target.Complex {
		for _, ec := range extendee.Complex {
			if len(ec.Components) != 1 {
				continue
			}
			for _, exc := range extender.Complex {
				if results, ok := selector.ApplyToComplex(tc, ec.Components[0].Compound, exc); ok {
					out = append(out, results...)
				}
			}
		}
	}
	return &selector.List{Complex: out}
}
