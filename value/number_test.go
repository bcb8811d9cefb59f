package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberAddCommutative(t *testing.T) {
	a := WithUnit(1, "px")
	b := WithUnit(2, "in")
	ab, err := a.Add(b)
	require.NoError(t, err)
	ba, err := b.Add(a)
	require.NoError(t, err)
	assert.True(t, ab.Equal(ba), "addition not commutative: %v != %v", ab.CSSText(), ba.CSSText())
}

func TestNumberUnitConversion(t *testing.T) {
	px := WithUnit(1, "px")
	in := WithUnit(1, "in")
	sum, err := px.Add(in)
	require.NoError(t, err)
	assert.True(t, sum.Equal(WithUnit(97, "px")), "1px + 1in = %s, want 97px", sum.CSSText())
}

func TestNumberMulDivRoundTrip(t *testing.T) {
	n := Unitless(5)
	u := WithUnit(1, "px")
	mul := n.Mul(u)
	div, err := mul.Div(u)
	require.NoError(t, err)
	assert.True(t, div.Equal(n), "n * (1px) / (1px) = %v, want %v", div.CSSText(), n.CSSText())
}

func TestNumberEqualityTolerance(t *testing.T) {
	a := Unitless(0.1 + 0.2)
	b := Unitless(0.3)
	assert.True(t, a.Equal(b), "0.1+0.2 should equal 0.3 within tolerance, got %s vs %s", a.CSSText(), b.CSSText())
}

func TestNumberIncompatibleUnitsError(t *testing.T) {
	px := WithUnit(1, "px")
	s := WithUnit(1, "s")
	_, err := px.Add(s)
	assert.Error(t, err)
}

func TestNumberDivisionByZero(t *testing.T) {
	n := Unitless(1)
	zero := Unitless(0)
	_, err := n.Div(zero)
	assert.Error(t, err)
}

func TestSimpleUnit(t *testing.T) {
	n := WithUnit(1, "px")
	assert.True(t, n.IsSimpleUnit())
	assert.Equal(t, "px", n.Unit())
	u := Unitless(1)
	assert.Equal(t, "", u.Unit())
}

func TestCSSTextElidesDenominatorUnits(t *testing.T) {
	px := WithUnit(1, "px")
	s := WithUnit(1, "s")
	div, err := px.Div(s)
	require.NoError(t, err)
	assert.Equal(t, "1px", div.CSSText(), "no ^-1 notation in CSS output")
	assert.NotEqual(t, "1px", div.InspectText(), "InspectText should show denominator units")
}
