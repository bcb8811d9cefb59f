package selector

// IsSuperselector implements §4.4's "Superselector test": a is a
// superselector of b iff every element matched by b is matched by a.
// This core implements the common, decidable subset of the full CSS
// selector-containment relation: a compound is a superselector-compound
// of another when every simple selector it carries is also present on
// the other side (subset test over simple selectors, with type/universal
// handled specially), and a complex selector A is a superselector of B
// when B's trailing components can be "walked back" to find, for every
// component of A in order, a matching-or-more-specific component of B
// connected by a combinator at least as strict.
func IsSuperselector(a, b *List) bool {
	for _, bc := range b.Complex {
		if !anyComplexIsSuperselector(a, bc) {
			return false
		}
	}
	return true
}

func anyComplexIsSuperselector(a *List, bc Complex) bool {
	for _, ac := range a.Complex {
		if complexIsSuperselector(ac, bc) {
			return true
		}
	}
	return false
}

// complexIsSuperselector reports whether ac is a superselector of bc.
// It walks from the rightmost (subject) compound backward: the subject
// compounds must be compound-superselectors of one another, and for
// every remaining component of ac moving left, there must be a
// component in bc (at or before the current position) whose combinator
// is compatible and whose compound is a compound-superselector.
func complexIsSuperselector(ac, bc Complex) bool {
	ai := len(ac.Components) - 1
	bi := len(bc.Components) - 1
	if ai < 0 || bi < 0 {
		return false
	}
	if !compoundIsSuperselector(ac.Components[ai].Compound, bc.Components[bi].Compound) {
		return false
	}
	ai--
	bi--
	for ai >= 0 {
		if bi < 0 {
			return false
		}
		wantComb := ac.Components[ai+1].Combinator
		found := false
		for bi >= 0 {
			comb := bc.Components[bi+1].Combinator
			if combinatorCompatible(wantComb, comb) && compoundIsSuperselector(ac.Components[ai].Compound, bc.Components[bi].Compound) {
				found = true
				bi--
				break
			}
			if wantComb == Child || wantComb == NextSibling {
				// strict combinators only match at the immediate position
				break
			}
			bi--
		}
		if !found {
			return false
		}
		ai--
	}
	return true
}

// combinatorCompatible reports whether an A-side combinator "want" can be
// satisfied by the corresponding B-side combinator "have" at the same
// position: descendant/sibling are satisfied by an equal-or-stricter
// relationship, while child/next-sibling require an exact match.
func combinatorCompatible(want, have Combinator) bool {
	if want == have {
		return true
	}
	switch want {
	case Descendant:
		return true // any combinator implies at-least descendant
	case SubsequentSibling:
		return have == NextSibling
	default:
		return false
	}
}

// compoundIsSuperselector reports whether a is a compound-superselector
// of b: every simple selector on a is satisfied by b (type selectors
// compare by equality or universal; everything else is simple-selector
// subset containment).
func compoundIsSuperselector(a, b Compound) bool {
	at := findType(a)
	if at != nil && !at.IsUniversal() {
		bt := findType(b)
		if bt == nil || bt.IsUniversal() || bt.Name != at.Name || bt.Namespace != at.Namespace {
			return false
		}
	}
	bSet := map[string]bool{}
	for _, s := range b.Simples {
		bSet[s.String()] = true
	}
	for _, s := range a.Simples {
		if _, ok := s.(Type); ok {
			continue
		}
		if !bSet[s.String()] {
			return false
		}
	}
	return true
}
