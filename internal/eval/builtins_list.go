package eval

import (
	"fmt"

	"github.com/gosass/sass/value"
)

// listBuiltins is the `sass:list` module.
var listBuiltins = map[string]BuiltinFunc{
	"length": func(e *Evaluator, a Args) (value.Value, error) {
		v, ok := a.Get(0, "list")
		if !ok {
			return nil, fmt.Errorf("missing argument $list")
		}
		return value.Unitless(float64(len(value.Singleton(v).Elements))), nil
	},
	"nth": func(e *Evaluator, a Args) (value.Value, error) {
		v, ok := a.Get(0, "list")
		if !ok {
			return nil, fmt.Errorf("missing argument $list")
		}
		nv, err := a.Number(1, "n")
		if err != nil {
			return nil, err
		}
		l := value.Singleton(v)
		idx, err := listIndex(nv, len(l.Elements))
		if err != nil {
			return nil, err
		}
		return l.Elements[idx], nil
	},
	"set-nth": func(e *Evaluator, a Args) (value.Value, error) {
		v, ok := a.Get(0, "list")
		if !ok {
			return nil, fmt.Errorf("missing argument $list")
		}
		nv, err := a.Number(1, "n")
		if err != nil {
			return nil, err
		}
		newVal, ok := a.Get(2, "value")
		if !ok {
			return nil, fmt.Errorf("missing argument $value")
		}
		l := value.Singleton(v)
		idx, err := listIndex(nv, len(l.Elements))
		if err != nil {
			return nil, err
		}
		elems := append([]value.Value(nil), l.Elements...)
		elems[idx] = newVal
		return value.List{Separator: l.Separator, Bracketed: l.Bracketed, Elements: elems}, nil
	},
	"join": func(e *Evaluator, a Args) (value.Value, error) {
		l1, ok := a.Get(0, "list1")
		if !ok {
			return nil, fmt.Errorf("missing argument $list1")
		}
		l2, ok := a.Get(1, "list2")
		if !ok {
			return nil, fmt.Errorf("missing argument $list2")
		}
		list1, list2 := value.Singleton(l1), value.Singleton(l2)
		sep := list1.Separator
		if sepArg, ok := a.Get(2, "separator"); ok {
			if s, ok := sepArg.(value.String); ok {
				switch s.Text {
				case "comma":
					sep = value.SepComma
				case "space":
					sep = value.SepSpace
				case "slash":
					sep = value.SepSlash
				case "auto":
					if sep == value.SepUndecided {
						sep = list2.Separator
					}
				}
			}
		} else if sep == value.SepUndecided {
			sep = list2.Separator
		}
		bracketed := list1.Bracketed
		if b, ok := a.Get(3, "bracketed"); ok {
			if bs, ok := b.(value.String); ok && bs.Text == "auto" {
				bracketed = list1.Bracketed
			} else {
				bracketed = b.Truthy()
			}
		}
		elems := append(append([]value.Value(nil), list1.Elements...), list2.Elements...)
		return value.List{Separator: sep, Bracketed: bracketed, Elements: elems}, nil
	},
	"append": func(e *Evaluator, a Args) (value.Value, error) {
		v, ok := a.Get(0, "list")
		if !ok {
			return nil, fmt.Errorf("missing argument $list")
		}
		item, ok := a.Get(1, "val")
		if !ok {
			return nil, fmt.Errorf("missing argument $val")
		}
		l := value.Singleton(v)
		sep := l.Separator
		if sep == value.SepUndecided {
			sep = value.SepSpace
		}
		if sepArg, ok := a.Get(2, "separator"); ok {
			if s, ok := sepArg.(value.String); ok {
				switch s.Text {
				case "comma":
					sep = value.SepComma
				case "space":
					sep = value.SepSpace
				}
			}
		}
		elems := append(append([]value.Value(nil), l.Elements...), item)
		return value.List{Separator: sep, Bracketed: l.Bracketed, Elements: elems}, nil
	},
	"zip": func(e *Evaluator, a Args) (value.Value, error) {
		lists := make([]value.List, 0, len(a.Positional))
		minLen := -1
		for _, v := range a.Positional {
			l := value.Singleton(v)
			lists = append(lists, l)
			if minLen == -1 || len(l.Elements) < minLen {
				minLen = len(l.Elements)
			}
		}
		if minLen < 0 {
			minLen = 0
		}
		out := make([]value.Value, minLen)
		for i := 0; i < minLen; i++ {
			row := make([]value.Value, len(lists))
			for j, l := range lists {
				row[j] = l.Elements[i]
			}
			out[i] = value.List{Separator: value.SepSpace, Elements: row}
		}
		return value.List{Separator: value.SepComma, Elements: out}, nil
	},
	"index": func(e *Evaluator, a Args) (value.Value, error) {
		v, ok := a.Get(0, "list")
		if !ok {
			return nil, fmt.Errorf("missing argument $list")
		}
		item, ok := a.Get(1, "value")
		if !ok {
			return nil, fmt.Errorf("missing argument $value")
		}
		l := value.Singleton(v)
		for i, el := range l.Elements {
			if value.Equal(el, item) {
				return value.Unitless(float64(i + 1)), nil
			}
		}
		return value.NullValue, nil
	},
	"is-bracketed": func(e *Evaluator, a Args) (value.Value, error) {
		v, ok := a.Get(0, "list")
		if !ok {
			return nil, fmt.Errorf("missing argument $list")
		}
		return boolean(value.Singleton(v).Bracketed), nil
	},
	"separator": func(e *Evaluator, a Args) (value.Value, error) {
		v, ok := a.Get(0, "list")
		if !ok {
			return nil, fmt.Errorf("missing argument $list")
		}
		switch value.Singleton(v).Separator {
		case value.SepComma:
			return unquoted("comma"), nil
		case value.SepSlash:
			return unquoted("slash"), nil
		default:
			return unquoted("space"), nil
		}
	},
}

// listIndex converts a Sass 1-based (and negative-from-end) index
// number into a valid Go slice index, per §3's "list index" edge cases.
func listIndex(n value.Number, length int) (int, error) {
	if n.Num == 0 || n.Num != float64(int(n.Num)) {
		return 0, fmt.Errorf("%s is not a valid index", n.CSSText())
	}
	i := int(n.Num)
	if i > 0 {
		i--
	} else {
		i = length + i
	}
	if i < 0 || i >= length {
		return 0, fmt.Errorf("index %s is out of bounds for a list with %d elements", n.CSSText(), length)
	}
	return i, nil
}
