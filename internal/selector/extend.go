package selector

// Substitute replaces, within compound, every simple selector that is
// also present in extendee's single compound with the simple selectors
// of extender's trailing compound, unifying the remainder of compound
// with extender's other components. It implements the compound-level
// rewrite internal/extend drives (§4.5): "locates all selector
// occurrences that contain a superselector of extendee and rewrites them
// to a union including the extender substituted for the extendee.
// Substitution preserves specificity of the original compound."
//
// extendee must be a single compound selector (the common, and by far
// most frequent, @extend target shape); compound is one compound drawn
// from an existing style rule's selector that compoundIsSuperselector
// has already confirmed contains extendee. The returned complex
// selectors are the candidates to splice in at compound's position,
// preserving the rest of the enclosing complex selector unchanged.
func Substitute(compound Compound, extendee Compound, extender Complex) ([]Complex, bool) {
	if len(extender.Components) == 0 {
		return nil, false
	}
	remaining := remainderSimples(compound, extendee)
	last := extender.Components[len(extender.Components)-1]
	unified, ok := UnifyCompound(last.Compound, Compound{Simples: remaining})
	if !ok {
		return nil, false
	}
	out := append([]CompoundCombinator(nil), extender.Components[:len(extender.Components)-1]...)
	out = append(out, CompoundCombinator{Combinator: last.Combinator, Compound: unified})
	return []Complex{{Components: out}}, true
}

// remainderSimples returns the simple selectors of compound that are not
// part of extendee, the portion that must still hold true alongside
// whatever the extender contributes.
func remainderSimples(compound, extendee Compound) []Simple {
	extSet := map[string]bool{}
	for _, s := range extendee.Simples {
		extSet[s.String()] = true
	}
	var out []Simple
	for _, s := range compound.Simples {
		if !extSet[s.String()] {
			out = append(out, s)
		}
	}
	return out
}

// ApplyToComplex rewrites every compound of target that contains a
// superselector-match of extendee, returning target itself plus every
// substitution result appended as additional alternatives (the "union"
// §4.5 describes); it never mutates target in place, since the caller
// (internal/extend) owns the decision of which CSSStyleRule.Selector to
// assign the result to.
func ApplyToComplex(target Complex, extendee Compound, extender Complex) ([]Complex, bool) {
	var results []Complex
	matched := false
	for i, cc := range target.Components {
		single := List{Complex: []Complex{{Components: []CompoundCombinator{{Compound: cc.Compound}}}}}
		extendeeList := List{Complex: []Complex{{Components: []CompoundCombinator{{Compound: extendee}}}}}
		if !IsSuperselector(&single, &extendeeList) {
			continue
		}
		subs, ok := Substitute(cc.Compound, extendee, extender)
		if !ok {
			continue
		}
		for _, sub := range subs {
			rewritten := Complex{}
			rewritten.Components = append(rewritten.Components, target.Components[:i]...)
			rewritten.Components = append(rewritten.Components, sub.Components...)
			rewritten.Components = append(rewritten.Components, target.Components[i+1:]...)
			results = append(results, rewritten)
			matched = true
		}
	}
	return results, matched
}
