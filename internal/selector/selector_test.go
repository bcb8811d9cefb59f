package selector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosass/sass/internal/selector"
)

func TestParseSimple(t *testing.T) {
	list, err := selector.Parse("a.btn#main:hover", selector.ParseOptions{})
	require.NoError(t, err)
	require.Len(t, list.Complex, 1)
	assert.Equal(t, "a.btn#main:hover", list.String())
}

func TestParseCombinators(t *testing.T) {
	list, err := selector.Parse(".a > .b + .c ~ .d", selector.ParseOptions{})
	require.NoError(t, err)
	require.Len(t, list.Complex, 1)
	assert.Equal(t, ".a > .b + .c ~ .d", list.String())
}

func TestParseList(t *testing.T) {
	list, err := selector.Parse(".a, .b", selector.ParseOptions{})
	require.NoError(t, err)
	assert.Len(t, list.Complex, 2)
}

func TestParseBogusLeadingCombinator(t *testing.T) {
	_, err := selector.Parse("> .a", selector.ParseOptions{})
	assert.Error(t, err)
}

func TestParseParentRejectedWhenNotAllowed(t *testing.T) {
	_, err := selector.Parse("&.active", selector.ParseOptions{AllowParent: false})
	assert.Error(t, err)
}

func TestResolveParentBareAmpersand(t *testing.T) {
	context, err := selector.Parse(".parent", selector.ParseOptions{})
	require.NoError(t, err)
	child, err := selector.Parse("&.active", selector.ParseOptions{AllowParent: true})
	require.NoError(t, err)

	resolved, err := selector.ResolveParent(context, child)
	require.NoError(t, err)
	require.Len(t, resolved.Complex, 1)
	assert.Equal(t, ".parent.active", resolved.Complex[0].String())
}

func TestResolveParentNoAmpersandNests(t *testing.T) {
	context, err := selector.Parse(".parent", selector.ParseOptions{})
	require.NoError(t, err)
	child, err := selector.Parse(".child", selector.ParseOptions{})
	require.NoError(t, err)

	resolved, err := selector.ResolveParent(context, child)
	require.NoError(t, err)
	require.Len(t, resolved.Complex, 1)
	assert.Equal(t, ".parent .child", resolved.Complex[0].String())
}

func TestUnifyCompoundTypeConflict(t *testing.T) {
	a, _ := selector.Parse("a.btn", selector.ParseOptions{})
	b, _ := selector.Parse("span.btn", selector.ParseOptions{})
	_, ok := selector.UnifyCompound(a.Complex[0].Components[0].Compound, b.Complex[0].Components[0].Compound)
	assert.False(t, ok)
}

func TestUnifyCompoundMerges(t *testing.T) {
	a, _ := selector.Parse("a.btn", selector.ParseOptions{})
	b, _ := selector.Parse(".active", selector.ParseOptions{})
	unified, ok := selector.UnifyCompound(a.Complex[0].Components[0].Compound, b.Complex[0].Components[0].Compound)
	require.True(t, ok)
	assert.Equal(t, "a.btn.active", unified.String())
}

func TestIsSuperselector(t *testing.T) {
	a, _ := selector.Parse(".a", selector.ParseOptions{})
	b, _ := selector.Parse(".a.b", selector.ParseOptions{})
	assert.True(t, selector.IsSuperselector(a, b))
	assert.False(t, selector.IsSuperselector(b, a))
}

func TestIsSuperselectorDescendant(t *testing.T) {
	a, _ := selector.Parse(".a .b", selector.ParseOptions{})
	b, _ := selector.Parse(".a .x .b", selector.ParseOptions{})
	assert.True(t, selector.IsSuperselector(a, b))
}

func TestApplyToComplexSubstitutes(t *testing.T) {
	target, _ := selector.Parse(".a .foo", selector.ParseOptions{})
	extendee, _ := selector.Parse(".foo", selector.ParseOptions{})
	extender, _ := selector.Parse(".bar", selector.ParseOptions{})

	results, matched := selector.ApplyToComplex(target.Complex[0], extendee.Complex[0].Components[0].Compound, extender.Complex[0])
	require.True(t, matched)
	require.Len(t, results, 1)
	assert.Equal(t, ".a .bar", results[0].String())
}
