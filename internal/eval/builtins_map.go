package eval

import (
	"fmt"

	"github.com/gosass/sass/value"
)

func asMap(v value.Value) (value.Map, error) {
	m, ok := v.(value.Map)
	if !ok {
		return value.Map{}, fmt.Errorf("%v is not a map", v)
	}
	return m, nil
}

// mapBuiltins is the `sass:map` module.
var mapBuiltins = map[string]BuiltinFunc{
	"get": func(e *Evaluator, a Args) (value.Value, error) {
		mv, ok := a.Get(0, "map")
		if !ok {
			return nil, fmt.Errorf("missing argument $map")
		}
		m, err := asMap(mv)
		if err != nil {
			return nil, err
		}
		key, ok := a.Get(1, "key")
		if !ok {
			return nil, fmt.Errorf("missing argument $key")
		}
		cur := value.Value(m)
		keys := append([]value.Value{key}, a.Positional[min(2, len(a.Positional)):]...)
		for _, k := range keys {
			mm, ok := cur.(value.Map)
			if !ok {
				return value.NullValue, nil
			}
			v, ok := mm.Get(k)
			if !ok {
				return value.NullValue, nil
			}
			cur = v
		}
		return cur, nil
	},
	"set": func(e *Evaluator, a Args) (value.Value, error) {
		mv, ok := a.Get(0, "map")
		if !ok {
			return nil, fmt.Errorf("missing argument $map")
		}
		m, err := asMap(mv)
		if err != nil {
			return nil, err
		}
		if len(a.Positional) < 3 {
			return nil, fmt.Errorf("map.set requires a key and a value")
		}
		key := a.Positional[1]
		val := a.Positional[len(a.Positional)-1]
		return m.Set(key, val), nil
	},
	"merge": func(e *Evaluator, a Args) (value.Value, error) {
		if len(a.Positional) < 2 {
			return nil, fmt.Errorf("map.merge requires at least two maps")
		}
		base, err := asMap(a.Positional[0])
		if err != nil {
			return nil, err
		}
		for _, other := range a.Positional[1:] {
			m2, err := asMap(other)
			if err != nil {
				return nil, err
			}
			for _, ent := range m2.Entries {
				base = base.Set(ent.Key, ent.Value)
			}
		}
		return base, nil
	},
	"remove": func(e *Evaluator, a Args) (value.Value, error) {
		mv, ok := a.Get(0, "map")
		if !ok {
			return nil, fmt.Errorf("missing argument $map")
		}
		m, err := asMap(mv)
		if err != nil {
			return nil, err
		}
		toRemove := a.Positional[min(1, len(a.Positional)):]
		var entries []value.MapEntry
		for _, ent := range m.Entries {
			remove := false
			for _, k := range toRemove {
				if value.Equal(ent.Key, k) {
					remove = true
					break
				}
			}
			if !remove {
				entries = append(entries, ent)
			}
		}
		return value.Map{Entries: entries}, nil
	},
	"has-key": func(e *Evaluator, a Args) (value.Value, error) {
		mv, ok := a.Get(0, "map")
		if !ok {
			return nil, fmt.Errorf("missing argument $map")
		}
		m, err := asMap(mv)
		if err != nil {
			return nil, err
		}
		key, ok := a.Get(1, "key")
		if !ok {
			return nil, fmt.Errorf("missing argument $key")
		}
		_, ok = m.Get(key)
		return boolean(ok), nil
	},
	"keys": func(e *Evaluator, a Args) (value.Value, error) {
		mv, ok := a.Get(0, "map")
		if !ok {
			return nil, fmt.Errorf("missing argument $map")
		}
		m, err := asMap(mv)
		if err != nil {
			return nil, err
		}
		keys := make([]value.Value, len(m.Entries))
		for i, ent := range m.Entries {
			keys[i] = ent.Key
		}
		return value.List{Separator: value.SepComma, Elements: keys}, nil
	},
	"values": func(e *Evaluator, a Args) (value.Value, error) {
		mv, ok := a.Get(0, "map")
		if !ok {
			return nil, fmt.Errorf("missing argument $map")
		}
		m, err := asMap(mv)
		if err != nil {
			return nil, err
		}
		vals := make([]value.Value, len(m.Entries))
		for i, ent := range m.Entries {
			vals[i] = ent.Value
		}
		return value.List{Separator: value.SepComma, Elements: vals}, nil
	},
	"deep-merge": func(e *Evaluator, a Args) (value.Value, error) {
		if len(a.Positional) < 2 {
			return nil, fmt.Errorf("map.deep-merge requires at least two maps")
		}
		base, err := asMap(a.Positional[0])
		if err != nil {
			return nil, err
		}
		for _, other := range a.Positional[1:] {
			m2, err := asMap(other)
			if err != nil {
				return nil, err
			}
			base = deepMergeMaps(base, m2)
		}
		return base, nil
	},
}

func deepMergeMaps(a, b value.Map) value.Map {
	out := a
	for _, ent := range b.Entries {
		if existing, ok := out.Get(ent.Key); ok {
			if em, ok1 := existing.(value.Map); ok1 {
				if nm, ok2 := ent.Value.(value.Map); ok2 {
					out = out.Set(ent.Key, deepMergeMaps(em, nm))
					continue
				}
			}
		}
		out = out.Set(ent.Key, ent.Value)
	}
	return out
}
