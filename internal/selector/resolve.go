package selector

// ResolveParent implements §4.4 "Resolve parent reference": given an
// enclosing context selector list and a child selector list (possibly
// containing "&"), produce the resolved selector list to emit for the
// style rule. When child has no "&" anywhere, it is nested as a plain
// descendant of every complex selector in context, the ordinary nesting
// rule; when "&" appears, each occurrence is replaced by the full
// context, unifying in place when "&" shares its compound with other
// simple selectors (e.g. "&.active" or "foo&").
func ResolveParent(context *List, child *List) (*List, error) {
	if context == nil || len(context.Complex) == 0 {
		return stripParent(child), nil
	}
	if !child.HasParent() {
		return nestDescendant(context, child), nil
	}

	var out List
	for _, cc := range child.Complex {
		resolved, err := resolveComplex(context, cc)
		if err != nil {
			return nil, err
		}
		out.Complex = append(out.Complex, resolved...)
	}
	return &out, nil
}

// stripParent is used for every selector with no enclosing context. It
// returns child unchanged: a "&" in such a selector is left in place.
func stripParent(child *List) *List {
	return child
}

// nestDescendant appends each complex selector of child as a descendant
// of each complex selector of context, the cartesian expansion ordinary
// CSS nesting performs.
func nestDescendant(context, child *List) *List {
	var out List
	for _, ctxC := range context.Complex {
		for _, childC := range child.Complex {
			merged := Complex{}
			merged.Components = append(merged.Components, ctxC.Components...)
			merged.Components = append(merged.Components, childC.Components...)
			out.Complex = append(out.Complex, merged)
		}
	}
	return &out
}

// resolveComplex substitutes every "&" occurrence in one complex
// selector with each complex selector of context, returning one output
// complex selector per context alternative (the comma-expansion of
// nested "&" references).
func resolveComplex(context *List, cc Complex) ([]Complex, error) {
	var results []Complex
	for _, ctxAlt := range context.Complex {
		components, err := substituteComponents(ctxAlt, cc.Components)
		if err != nil {
			return nil, err
		}
		results = append(results, Complex{Components: components})
	}
	return results, nil
}

func substituteComponents(ctx Complex, comps []CompoundCombinator) ([]CompoundCombinator, error) {
	var out []CompoundCombinator
	for _, cc := range comps {
		if !cc.Compound.HasParent() {
			out = append(out, cc)
			continue
		}
		replaced, err := substituteCompound(ctx, cc)
		if err != nil {
			return nil, err
		}
		out = append(out, replaced...)
	}
	return out, nil
}

// substituteCompound handles one compound selector that contains "&".
// A "&" alone in its compound (as in "& .child") splices in the full
// context sequence; a "&" sharing its compound with other simple
// selectors (e.g. "&:hover" or "foo&") instead unifies
// the context's trailing compound with the rest of the compound's simple
// selectors in place (§4.4: "If the child contains `&` at a non-leading
// position within a compound, unify the compound in-place").
func substituteCompound(ctx Complex, cc CompoundCombinator) ([]CompoundCombinator, error) {
	parentIdx := -1
	for i, s := range cc.Compound.Simples {
		if _, ok := s.(Parent); ok {
			parentIdx = i
			break
		}
	}
	if parentIdx == 0 && len(cc.Compound.Simples) >= 1 {
		if parent, ok := cc.Compound.Simples[0].(Parent); ok && parent.Suffix == "" && len(cc.Compound.Simples) == 1 {
			// Bare "&": splice the whole context sequence in unchanged.
			contextCopy := append([]CompoundCombinator(nil), ctx.Components...)
			return contextCopy, nil
		}
	}

	// "&" appears fused with other simple selectors in the same
	// compound (leading with a suffix, like "&-foo", or non-leading,
	// like "foo&"): unify the context's last compound with the
	// remaining simple selectors of this one.
	if len(ctx.Components) == 0 {
		return nil, errNoContext
	}
	last := ctx.Components[len(ctx.Components)-1]
	rest := make([]Simple, 0, len(cc.Compound.Simples))
	for i, s := range cc.Compound.Simples {
		if i == parentIdx {
			if p := s.(Parent); p.Suffix != "" {
				rest = append(rest, Class{Name: p.Suffix}) // treat as literal suffix text
			}
			continue
		}
		rest = append(rest, s)
	}
	unified, ok := UnifyCompound(last.Compound, Compound{Simples: rest})
	if !ok {
		return nil, errCannotUnify
	}
	out := append([]CompoundCombinator(nil), ctx.Components[:len(ctx.Components)-1]...)
	out = append(out, CompoundCombinator{Combinator: last.Combinator, Compound: unified})
	return out, nil
}

var (
	errNoContext   = fmtError("selector: \"&\" used with no enclosing selector")
	errCannotUnify = fmtError("selector: failed to unify \"&\" with enclosing selector")
)

type fmtError string

func (e fmtError) Error() string { return string(e) }
