package eval

import (
	"fmt"
	"strings"

	"github.com/gosass/sass/value"
)

// stringBuiltins is the `sass:string` module.
var stringBuiltins = map[string]BuiltinFunc{
	"quote": func(e *Evaluator, a Args) (value.Value, error) {
		s, err := a.String(0, "string")
		if err != nil {
			return nil, err
		}
		return value.NewString(s, true), nil
	},
	"unquote": func(e *Evaluator, a Args) (value.Value, error) {
		s, err := a.String(0, "string")
		if err != nil {
			return nil, err
		}
		return value.NewString(s, false), nil
	},
	"length": func(e *Evaluator, a Args) (value.Value, error) {
		s, err := a.String(0, "string")
		if err != nil {
			return nil, err
		}
		return value.Unitless(float64(len([]rune(s)))), nil
	},
	"to-upper-case": func(e *Evaluator, a Args) (value.Value, error) {
		return stringMap(a, strings.ToUpper)
	},
	"to-lower-case": func(e *Evaluator, a Args) (value.Value, error) {
		return stringMap(a, strings.ToLower)
	},
	"insert": func(e *Evaluator, a Args) (value.Value, error) {
		v, ok := a.Get(0, "string")
		if !ok {
			return nil, fmt.Errorf("missing argument $string")
		}
		s, ok := v.(value.String)
		if !ok {
			return nil, fmt.Errorf("$string: %v is not a string", v)
		}
		insert, err := a.String(1, "insert")
		if err != nil {
			return nil, err
		}
		nv, err := a.Number(2, "index")
		if err != nil {
			return nil, err
		}
		runes := []rune(s.Text)
		idx := stringInsertIndex(int(nv.Num), len(runes))
		result := string(runes[:idx]) + insert + string(runes[idx:])
		return value.String{Text: result, Quoted: s.Quoted}, nil
	},
	"index": func(e *Evaluator, a Args) (value.Value, error) {
		s, err := a.String(0, "string")
		if err != nil {
			return nil, err
		}
		sub, err := a.String(1, "substring")
		if err != nil {
			return nil, err
		}
		i := strings.Index(s, sub)
		if i < 0 {
			return value.NullValue, nil
		}
		return value.Unitless(float64(len([]rune(s[:i])) + 1)), nil
	},
	"slice": func(e *Evaluator, a Args) (value.Value, error) {
		v, ok := a.Get(0, "string")
		if !ok {
			return nil, fmt.Errorf("missing argument $string")
		}
		s, ok := v.(value.String)
		if !ok {
			return nil, fmt.Errorf("$string: %v is not a string", v)
		}
		runes := []rune(s.Text)
		start := 1.0
		if sv, ok := a.Get(1, "start-at"); ok {
			n, ok := sv.(value.Number)
			if !ok {
				return nil, fmt.Errorf("$start-at: %v is not a number", sv)
			}
			start = n.Num
		}
		end := float64(len(runes))
		if ev, ok := a.Get(2, "end-at"); ok {
			n, ok := ev.(value.Number)
			if !ok {
				return nil, fmt.Errorf("$end-at: %v is not a number", ev)
			}
			end = n.Num
		}
		si := stringSliceIndex(int(start), len(runes), 1)
		ei := stringSliceIndex(int(end), len(runes), len(runes))
		if ei < si {
			return value.String{Text: "", Quoted: s.Quoted}, nil
		}
		return value.String{Text: string(runes[si-1 : ei]), Quoted: s.Quoted}, nil
	},
	"unique-id": func(e *Evaluator, a Args) (value.Value, error) {
		return unquoted(uniqueID()), nil
	},
}

func stringMap(a Args, fn func(string) string) (value.Value, error) {
	v, ok := a.Get(0, "string")
	if !ok {
		return nil, fmt.Errorf("missing argument $string")
	}
	s, ok := v.(value.String)
	if !ok {
		return nil, fmt.Errorf("$string: %v is not a string", v)
	}
	return value.String{Text: fn(s.Text), Quoted: s.Quoted}, nil
}

func stringInsertIndex(n, length int) int {
	if n > length {
		return length
	}
	if n >= 0 {
		if n == 0 {
			return 0
		}
		return n - 1
	}
	idx := length + n + 1
	if idx < 0 {
		return 0
	}
	return idx
}

func stringSliceIndex(n, length, def int) int {
	if n == 0 {
		return def
	}
	if n > 0 {
		if n > length {
			return length
		}
		return n
	}
	idx := length + n + 1
	if idx < 1 {
		return 1
	}
	return idx
}

var uniqueIDCounter int

// uniqueID produces a short, CSS-identifier-safe token (§3
// `string.unique-id`). A monotonic counter keeps this deterministic
// across a single compile, which a pure function over no RNG/clock
// input otherwise couldn't be (Date.now/math.rand are unavailable to
// this evaluator's pipeline by design).
func uniqueID() string {
	uniqueIDCounter++
	return fmt.Sprintf("u%d", uniqueIDCounter)
}
