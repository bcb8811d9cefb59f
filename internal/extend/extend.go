// Package extend implements the global `@extend` rewrite engine (§4.5):
// once evaluation has produced the full CSS AST, this package walks
// every style rule's selector against every registered extension,
// repeating the walk until a pass adds nothing, and unions in the
// rewritten selectors, applying internal/selector's
// Substitute/ApplyToComplex compound-level primitives rather than
// duplicating selector algebra here. It is a separate pass, not
// interleaved with evaluation, because an extend can reach a style rule
// emitted after the @extend statement that registered it (§4.5 "an
// extend may affect a style rule defined anywhere in the stylesheet,
// including textually before the @extend itself").
//
// There is no extend-style global-rewrite repo in the retrieval pack;
// this package's shape (a flat list of the tree's style rules, collected
// once, that every pass walks) is grounded on §9's own
// "arena with indices" note, built directly atop internal/selector's
// primitives rather than imitating any one example file.
package extend

import (
	"fmt"
	"strings"

	"github.com/gosass/sass/internal/ast"
	"github.com/gosass/sass/internal/selector"
	"github.com/gosass/sass/span"
)

// Record is one `@extend` statement's registration: extender is the
// selector of the style rule containing the @extend; extendee is the
// parsed target selector it should unify into. Optional marks `!optional`
// (§4.5, "A non-optional @extend whose extendee selector matches nothing
// by the end of compilation is an error; an optional one is not").
type Record struct {
	Extender   *selector.List
	Extendee   *selector.List
	Optional   bool
	MediaScope string
	Span       span.Span
}

// Registry accumulates Records during evaluation and applies them to the
// finished CSS tree in a single global pass.
type Registry struct {
	Records []Record
	matched map[int]bool
}

func NewRegistry() *Registry { return &Registry{matched: map[int]bool{}} }

// Add registers one `@extend` occurrence.
func (r *Registry) Add(rec Record) {
	r.matched[len(r.Records)] = false
	r.Records = append(r.Records, rec)
}

// Error reports an unsatisfied non-optional @extend (§4.5).
type Error struct{ Message string }

func (e *Error) Error() string { return e.Message }

// Apply rewrites every CSSStyleRule reachable from root in place,
// unioning in the selectors each registered, in-scope extension
// contributes, then validates that every non-optional extension matched
// at least one rule.
//
// A single forward pass over reg.Records is not enough to satisfy §4.5
// "Extensions compose transitively": for ".a {@extend .b}" followed by
// ".b {@extend .c}", the second record's extender is ".b"'s own
// selector, which only grows to include ".a" once the first record has
// run. If records were declared in the opposite order, the rule the
// second record touches would need revisiting after the first one
// finally contributes its own union. Looping passes to a fixpoint (each
// pass reapplies every record against the current, possibly
// already-rewritten, selectors) makes the result independent of the
// order @extend statements were declared in, rather than only composing
// correctly when the extendee happens to be declared after its
// extender.
func Apply(root *ast.CSSRoot, reg *Registry) error {
	var rules []*ast.CSSStyleRule
	collectStyleRules(root.Children, &rules)

	for {
		changed := false
		for i, rec := range reg.Records {
			for _, rule := range rules {
				if rec.MediaScope != "" && rule.MediaScope != rec.MediaScope {
					// §4.5 "Extensions registered inside @media/@supports
					// only apply to style rules in an equivalent
					// (string-equal canonicalized) conditional scope."
					continue
				}
				matched, ruleChanged := rewriteRule(rule, rec)
				if matched {
					reg.matched[i] = true
				}
				if ruleChanged {
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	for i, rec := range reg.Records {
		if !rec.Optional && !reg.matched[i] {
			return &Error{Message: fmt.Sprintf("The target selector %q was not found.\n  at %s:%s", selectorText(rec.Extendee), rec.Span.URL(), rec.Span.Start)}
		}
	}
	return nil
}

func selectorText(l *selector.List) string {
	if l == nil {
		return ""
	}
	return (*l).String()
}

func collectStyleRules(children []ast.CSSNode, out *[]*ast.CSSStyleRule) {
	for _, c := range children {
		switch n := c.(type) {
		case *ast.CSSStyleRule:
			*out = append(*out, n)
			collectStyleRules(n.Children, out)
		case *ast.CSSAtRule:
			collectStyleRules(n.Children, out)
		}
	}
}

// rewriteRule applies one extension record to rule.Selector in place. It
// returns matched (the extendee compound was found somewhere in the
// rule's selector, satisfying the record regardless of whether the
// union grew) and changed (the rewritten selector has more complexes
// than it started with, so another fixpoint pass is worth running).
//
// These two signals are deliberately not the same bit: a record can
// keep "matching" an already-fully-applied rule on every pass (the
// extendee is still right there in the selector), which must not by
// itself keep Apply's fixpoint loop spinning, or it would never
// terminate. Only actual growth of the selector's complex list drives
// another pass.
//
// The Selector field is mutated in place (*rule.Selector = ...), not
// rebound to a freshly allocated List, because Record.Extender is
// itself a pointer to the selector.List of whichever rule the @extend
// statement was declared inside (the evaluator's currentSelector() and
// that rule's Selector field are the same object). Rebinding the field
// would leave every Record.Extender that aliases it pointing at a
// stale, pre-rewrite snapshot, silently breaking transitive composition
// (§4.5) for any chain whose later link is processed after its earlier
// one. Mutating the pointee means every alias observes the rewrite
// immediately, which combined with Apply's fixpoint loop is what makes
// transitivity hold regardless of declaration order.
func rewriteRule(rule *ast.CSSStyleRule, rec Record) (matched, changed bool) {
	if rule.Selector == nil || len(rec.Extendee.Complex) == 0 {
		return false, false
	}
	// Sass requires the extendee to be expressible as a single compound
	// selector (§4.5, "extend target must be a single compound
	// selector"). Nothing upstream checks this: only the first complex
	// is used, and an extendee of more than one compound matches nothing.
	extendeeComplex := rec.Extendee.Complex[0]
	if len(extendeeComplex.Components) != 1 {
		return false, false
	}
	extendeeCompound := extendeeComplex.Components[0].Compound

	out := make([]selector.Complex, 0, len(rule.Selector.Complex))
	seen := map[string]bool{}
	addUnique := func(c selector.Complex) {
		key := c.String()
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, c)
	}

	for _, complex := range rule.Selector.Complex {
		addUnique(complex)
		for _, extender := range rec.Extender.Complex {
			rewritten, ok := selector.ApplyToComplex(complex, extendeeCompound, extender)
			if !ok {
				continue
			}
			matched = true
			for _, rc := range rewritten {
				if rc.String() == complex.String() {
					continue
				}
				addUnique(rc)
			}
		}
	}

	changed = len(out) > len(rule.Selector.Complex)
	if changed {
		*rule.Selector = selector.List{Complex: out}
	}
	return matched, changed
}

// CanonicalizeMediaQuery canonicalizes a raw @media/@supports prelude
// string into the form §4.5's media-scope equality check compares by,
// collapsing incidental whitespace differences (§4.5's Open Question
// decision: scope equality is canonicalized condition *string* equality,
// not semantic equivalence).
func CanonicalizeMediaQuery(raw string) string {
	fields := strings.Fields(raw)
	return strings.Join(fields, " ")
}
