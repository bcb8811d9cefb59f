package selector

// UnifyCompound implements §4.4 "Unify": combine two compound selectors
// into the compound matching their intersection, or report failure if no
// element could match both. Type selectors unify only when equal or one
// is universal; every other simple selector kind unifies by simple
// concatenation with de-duplication, since (outside of type and id)
// CSS's selector grammar has no general conflict between two distinct
// simple selectors of the same kind (e.g. ".a.b" is a perfectly legal,
// satisfiable compound).
func UnifyCompound(a, b Compound) (Compound, bool) {
	var out Compound
	typeSel, ok := unifyType(a, b)
	if !ok {
		return Compound{}, false
	}
	if typeSel != nil {
		out.Simples = append(out.Simples, *typeSel)
	}

	ids := map[string]bool{}
	for _, s := range a.Simples {
		if id, ok := s.(ID); ok {
			if len(ids) > 0 {
				for existing := range ids {
					if existing != id.Name {
						return Compound{}, false
					}
				}
			}
			ids[id.Name] = true
		}
	}
	for _, s := range b.Simples {
		if id, ok := s.(ID); ok {
			for existing := range ids {
				if existing != id.Name {
					return Compound{}, false
				}
			}
			ids[id.Name] = true
		}
	}

	seen := map[string]bool{}
	appendNonType := func(simples []Simple) {
		for _, s := range simples {
			switch s.(type) {
			case Type:
				continue
			}
			key := s.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			out.Simples = append(out.Simples, s)
		}
	}
	appendNonType(a.Simples)
	appendNonType(b.Simples)
	return out, true
}

// unifyType unifies the (at most one) Type simple selector from each
// side, returning nil if neither side has one.
func unifyType(a, b Compound) (*Type, bool) {
	at := findType(a)
	bt := findType(b)
	switch {
	case at == nil && bt == nil:
		return nil, true
	case at == nil:
		return bt, true
	case bt == nil:
		return at, true
	case at.IsUniversal():
		return bt, true
	case bt.IsUniversal():
		return at, true
	case at.Name == bt.Name && at.Namespace == bt.Namespace:
		return at, true
	default:
		return nil, false
	}
}

func findType(c Compound) *Type {
	for _, s := range c.Simples {
		if t, ok := s.(Type); ok {
			return &t
		}
	}
	return nil
}

// UnifyComplex unifies two complex selectors by unifying their final
// compounds (whose combinators must be equal) and placing a's earlier
// components before b's; the earlier components are neither compared
// nor interleaved.
func UnifyComplex(a, b Complex) (Complex, bool) {
	if len(a.Components) == 0 || len(b.Components) == 0 {
		return Complex{}, false
	}
	lastA := a.Components[len(a.Components)-1]
	lastB := b.Components[len(b.Components)-1]
	if lastA.Combinator != lastB.Combinator {
		return Complex{}, false
	}
	unified, ok := UnifyCompound(lastA.Compound, lastB.Compound)
	if !ok {
		return Complex{}, false
	}
	var out Complex
	out.Components = append(out.Components, a.Components[:len(a.Components)-1]...)
	out.Components = append(out.Components, b.Components[:len(b.Components)-1]...)
	out.Components = append(out.Components, CompoundCombinator{Combinator: lastA.Combinator, Compound: unified})
	return out, true
}
