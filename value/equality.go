package value

// Equal implements Sass's cross-type value equality (§3): numbers compare
// by Number.Equal (unit-normalizing), colors by Color.Equal (canonical
// RGBA), strings compare by text regardless of quotedness, lists compare
// elementwise including separator and bracketed flag, maps compare as
// sets of entries regardless of order, and values of different kinds are
// never equal except null/null and the two booleans.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av.Equal(bv)
	case Color:
		bv, ok := b.(Color)
		return ok && av.Equal(bv)
	case String:
		bv, ok := b.(String)
		return ok && av.Text == bv.Text
	case List:
		bv, ok := b.(List)
		if !ok || av.Bracketed != bv.Bracketed || len(av.Elements) != len(bv.Elements) {
			return false
		}
		if len(av.Elements) > 1 && av.Separator != bv.Separator {
			return false
		}
		for i := range av.Elements {
			if !Equal(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case Map:
		bv, ok := b.(Map)
		if !ok || len(av.Entries) != len(bv.Entries) {
			return false
		}
		for _, e := range av.Entries {
			other, found := bv.Get(e.Key)
			if !found || !Equal(e.Value, other) {
				return false
			}
		}
		return true
	case Function:
		bv, ok := b.(Function)
		return ok && av.Name == bv.Name
	case Calculation:
		bv, ok := b.(Calculation)
		if !ok || av.Name != bv.Name || len(av.Arguments) != len(bv.Arguments) {
			return false
		}
		for i := range av.Arguments {
			if !Equal(av.Arguments[i], bv.Arguments[i]) {
				return false
			}
		}
		return true
	case Selector:
		bv, ok := b.(Selector)
		return ok && av.Text == bv.Text
	default:
		return false
	}
}
