package eval

import (
	"fmt"
	"math"

	"github.com/gosass/sass/value"
)

// mathBuiltins is the `sass:math` module (§3 DOMAIN STACK).
var mathBuiltins = map[string]BuiltinFunc{
	"round": mathUnary(math.Round),
	"ceil":  mathUnary(math.Ceil),
	"floor": mathUnary(math.Floor),
	"abs":   mathUnary(math.Abs),
	"sqrt":  mathUnary(math.Sqrt),
	"sign":  mathUnary(signOf),
	"min":   mathVariadic(math.Min, math.Inf(1)),
	"max":   mathVariadic(math.Max, math.Inf(-1)),
	"div":   mathDiv,
	"pow": func(e *Evaluator, a Args) (value.Value, error) {
		base, err := a.Number(0, "base")
		if err != nil {
			return nil, err
		}
		exp, err := a.Number(1, "exponent")
		if err != nil {
			return nil, err
		}
		return value.Unitless(math.Pow(base.Num, exp.Num)), nil
	},
	"log": func(e *Evaluator, a Args) (value.Value, error) {
		n, err := a.Number(0, "number")
		if err != nil {
			return nil, err
		}
		if base, ok := a.Get(1, "base"); ok {
			b, ok := base.(value.Number)
			if !ok {
				return nil, fmt.Errorf("$base: %v is not a number", base)
			}
			return value.Unitless(math.Log(n.Num) / math.Log(b.Num)), nil
		}
		return value.Unitless(math.Log(n.Num)), nil
	},
	"hypot": func(e *Evaluator, a Args) (value.Value, error) {
		sum := 0.0
		for _, v := range a.Positional {
			n, ok := v.(value.Number)
			if !ok {
				return nil, fmt.Errorf("all arguments to math.hypot must be numbers")
			}
			sum += n.Num * n.Num
		}
		return value.Unitless(math.Sqrt(sum)), nil
	},
	"sin": mathTrig(math.Sin),
	"cos": mathTrig(math.Cos),
	"tan": mathTrig(math.Tan),
	"atan": func(e *Evaluator, a Args) (value.Value, error) {
		n, err := a.Number(0, "number")
		if err != nil {
			return nil, err
		}
		return value.WithUnit(math.Atan(n.Num)*180/math.Pi, "deg"), nil
	},
	"atan2": func(e *Evaluator, a Args) (value.Value, error) {
		y, err := a.Number(0, "y")
		if err != nil {
			return nil, err
		}
		x, err := a.Number(1, "x")
		if err != nil {
			return nil, err
		}
		return value.WithUnit(math.Atan2(y.Num, x.Num)*180/math.Pi, "deg"), nil
	},
	"clamp": func(e *Evaluator, a Args) (value.Value, error) {
		lo, err := a.Number(0, "min")
		if err != nil {
			return nil, err
		}
		v, err := a.Number(1, "number")
		if err != nil {
			return nil, err
		}
		hi, err := a.Number(2, "max")
		if err != nil {
			return nil, err
		}
		if v.Num < lo.Num {
			return lo, nil
		}
		if v.Num > hi.Num {
			return hi, nil
		}
		return v, nil
	},
	"percentage": func(e *Evaluator, a Args) (value.Value, error) {
		n, err := a.Number(0, "number")
		if err != nil {
			return nil, err
		}
		return value.WithUnit(n.Num*100, "%"), nil
	},
	"is-unitless": func(e *Evaluator, a Args) (value.Value, error) {
		n, err := a.Number(0, "number")
		if err != nil {
			return nil, err
		}
		return boolean(n.IsUnitless()), nil
	},
	"unit": func(e *Evaluator, a Args) (value.Value, error) {
		n, err := a.Number(0, "number")
		if err != nil {
			return nil, err
		}
		return str(n.Unit()), nil
	},
	"compatible": func(e *Evaluator, a Args) (value.Value, error) {
		n1, err := a.Number(0, "number1")
		if err != nil {
			return nil, err
		}
		n2, err := a.Number(1, "number2")
		if err != nil {
			return nil, err
		}
		return boolean(n1.IsUnitless() || n2.IsUnitless() || n1.ConvertibleWith(n2)), nil
	},
}

func signOf(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return v
	}
}

func mathUnary(fn func(float64) float64) BuiltinFunc {
	return func(e *Evaluator, a Args) (value.Value, error) {
		n, err := a.Number(0, "number")
		if err != nil {
			return nil, err
		}
		n.Num = fn(n.Num)
		return n, nil
	}
}

// mathTrig evaluates a trig function over a Number carrying an angle
// unit (deg/rad/grad/turn, normalized to radians first) or a plain
// unitless number treated as radians, matching CSS's own trig functions.
func mathTrig(fn func(float64) float64) BuiltinFunc {
	return func(e *Evaluator, a Args) (value.Value, error) {
		n, err := a.Number(0, "number")
		if err != nil {
			return nil, err
		}
		rad := n.Num
		if n.IsSimpleUnit() {
			switch n.Unit() {
			case "deg":
				rad = n.Num * math.Pi / 180
			case "grad":
				rad = n.Num * math.Pi / 200
			case "turn":
				rad = n.Num * 2 * math.Pi
			case "rad":
				rad = n.Num
			}
		}
		return value.Unitless(fn(rad)), nil
	}
}

// mathVariadic implements math.min/math.max over any number of
// like-unit Number arguments (§3 "min/max" builtins). The accumulator
// starts from the first argument; identity is not used, since an empty
// call is an arity error (checked below).
func mathVariadic(fn func(a, b float64) float64, identity float64) BuiltinFunc {
	return func(e *Evaluator, a Args) (value.Value, error) {
		if len(a.Positional) == 0 {
			return nil, fmt.Errorf("at least one argument is required")
		}
		best, ok := a.Positional[0].(value.Number)
		if !ok {
			return nil, fmt.Errorf("%v is not a number", a.Positional[0])
		}
		for _, v := range a.Positional[1:] {
			n, ok := v.(value.Number)
			if !ok {
				return nil, fmt.Errorf("%v is not a number", v)
			}
			cand := n.Num
			if !n.IsUnitless() && !best.IsUnitless() {
				if !n.ConvertibleWith(best) {
					return nil, fmt.Errorf("%s and %s have incompatible units", best.CSSText(), n.CSSText())
				}
				cand = n.ConvertedValue(best)
			}
			if fn(cand, best.Num) == cand {
				best = value.Number{Num: cand, Numerators: best.Numerators, Denominators: best.Denominators}
			}
		}
		_ = identity
		return best, nil
	}
}

func mathDiv(e *Evaluator, a Args) (value.Value, error) {
	n1, err := a.Number(0, "number1")
	if err != nil {
		return nil, err
	}
	n2, err := a.Number(1, "number2")
	if err != nil {
		return nil, err
	}
	return n1.Div(n2)
}
