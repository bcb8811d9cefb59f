package eval

import (
	"fmt"

	"github.com/gosass/sass/value"
)

// legacyGlobalBuiltins returns the small set of built-in names still
// callable without a "sass:*" namespace prefix, for backward
// compatibility with pre-module-system Sass source (§3 SUPPLEMENTED
// FEATURES, "legacy globally-visible names"). Most simply delegate to
// their namespaced sass:math/sass:color/sass:string/sass:meta
// equivalent; color-adjustment names keep their pre-`color.adjust`
// single-purpose shape (lighten/darken/saturate/...) since that is how
// they were always called unnamespaced.
func legacyGlobalBuiltins() map[string]BuiltinFunc {
	out := map[string]BuiltinFunc{}
	for _, name := range []string{
		"rgb", "rgba", "hsl", "hsla", "hwb",
		"red", "green", "blue", "alpha", "opacity",
		"hue", "saturation", "lightness", "whiteness", "blackness",
		"mix", "invert", "grayscale", "complement", "adjust-hue",
		"lighten", "darken", "saturate", "desaturate",
		"opacify", "fade-in", "transparentize", "fade-out", "ie-hex-str",
	} {
		out[name] = colorBuiltins[name]
	}
	for _, name := range []string{"percentage", "round", "ceil", "floor", "abs", "min", "max"} {
		out[name] = mathBuiltins[name]
	}
	for _, name := range []string{"quote", "unquote", "to-upper-case", "to-lower-case", "unique-id"} {
		out[name] = stringBuiltins[name]
	}
	for _, name := range []string{"type-of", "inspect", "call"} {
		out[name] = metaBuiltins[name]
	}
	out["str-length"] = func(e *Evaluator, a Args) (value.Value, error) {
		return stringBuiltins["length"](e, a)
	}
	out["str-slice"] = func(e *Evaluator, a Args) (value.Value, error) {
		return stringBuiltins["slice"](e, a)
	}
	out["str-index"] = func(e *Evaluator, a Args) (value.Value, error) {
		return stringBuiltins["index"](e, a)
	}
	out["str-insert"] = func(e *Evaluator, a Args) (value.Value, error) {
		return stringBuiltins["insert"](e, a)
	}
	out["length"] = listBuiltins["length"]
	out["nth"] = listBuiltins["nth"]
	out["set-nth"] = listBuiltins["set-nth"]
	out["join"] = listBuiltins["join"]
	out["append"] = listBuiltins["append"]
	out["zip"] = listBuiltins["zip"]
	out["index"] = listBuiltins["index"]
	out["list-separator"] = listBuiltins["separator"]
	out["map-get"] = mapBuiltins["get"]
	out["map-merge"] = mapBuiltins["merge"]
	out["map-remove"] = mapBuiltins["remove"]
	out["map-keys"] = mapBuiltins["keys"]
	out["map-values"] = mapBuiltins["values"]
	out["map-has-key"] = mapBuiltins["has-key"]

	out["unit"] = mathBuiltins["unit"]
	out["unitless"] = mathBuiltins["is-unitless"]
	out["comparable"] = mathBuiltins["compatible"]

	out["not"] = func(e *Evaluator, a Args) (value.Value, error) {
		v, ok := a.Get(0, "value")
		if !ok {
			return nil, fmt.Errorf("missing argument $value")
		}
		return boolean(!v.Truthy()), nil
	}

	// "if($condition, $if-true, $if-false)": a documented simplification
	// against dart-sass's lazy variant, since this evaluator's calling
	// convention evaluates every actual argument before any built-in
	// runs.
	out["if"] = func(e *Evaluator, a Args) (value.Value, error) {
		cond, ok := a.Get(0, "condition")
		if !ok {
			return nil, fmt.Errorf("missing argument $condition")
		}
		ifTrue, ok1 := a.Get(1, "if-true")
		ifFalse, ok2 := a.Get(2, "if-false")
		if cond.Truthy() {
			if !ok1 {
				return nil, fmt.Errorf("missing argument $if-true")
			}
			return ifTrue, nil
		}
		if !ok2 {
			return nil, fmt.Errorf("missing argument $if-false")
		}
		return ifFalse, nil
	}

	return out
}
