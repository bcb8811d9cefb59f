package value

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Number is a finite-precision rational held as a 64-bit double plus a
// pair of unit vectors: Numerators and Denominators are each a multiset
// of unit tokens (§3 "A number is a finite-precision rational
// represented as a 64-bit IEEE double with a pair of unit vectors").
type Number struct {
	base
	Num          float64
	Numerators   []string
	Denominators []string
}

func (Number) Type() string  { return "number" }
func (n Number) Truthy() bool { return true }

// Unitless builds a plain number with no attached unit.
func Unitless(v float64) Number { return Number{Num: v} }

// WithUnit builds a "simple-unit" number: one numerator, no denominator
// (§3, "A numeric value with one numerator and no denominator is
// 'simple-unit'").
func WithUnit(v float64, unit string) Number {
	if unit == "" {
		return Unitless(v)
	}
	return Number{Num: v, Numerators: []string{unit}}
}

// IsUnitless reports whether the number carries no units at all.
func (n Number) IsUnitless() bool {
	return len(n.Numerators) == 0 && len(n.Denominators) == 0
}

// IsSimpleUnit reports the "simple-unit" invariant from §3.
func (n Number) IsSimpleUnit() bool {
	return len(n.Numerators) == 1 && len(n.Denominators) == 0
}

// Unit returns the single numerator unit for a simple-unit number, or
// "" otherwise.
func (n Number) Unit() string {
	if n.IsSimpleUnit() {
		return n.Numerators[0]
	}
	return ""
}

// unitConversions maps each unit to its multiplier into a canonical base
// unit for its dimension (px for length, deg for angle, s for time, Hz
// for frequency, dppx for resolution), per §3 "Equality normalizes
// compatible units (e.g., 1in == 96px)".
var unitConversions = map[string]float64{
	// length, canonical: px
	"px": 1, "in": 96, "cm": 96.0 / 2.54, "mm": 96.0 / 25.4,
	"q": 96.0 / 101.6, "pt": 96.0 / 72, "pc": 16,
	// angle, canonical: deg
	"deg": 1, "grad": 0.9, "rad": 180 / math.Pi, "turn": 360,
	// time, canonical: s
	"s": 1, "ms": 0.001,
	// frequency, canonical: Hz
	"hz": 1, "khz": 1000,
	// resolution, canonical: dppx
	"dppx": 1, "dpi": 1.0 / 96, "dpcm": 2.54 / 96, "x": 1,
}

var unitDimension = map[string]string{
	"px": "length", "in": "length", "cm": "length", "mm": "length",
	"q": "length", "pt": "length", "pc": "length",
	"deg": "angle", "grad": "angle", "rad": "angle", "turn": "angle",
	"s": "time", "ms": "time",
	"hz": "frequency", "khz": "frequency",
	"dppx": "resolution", "dpi": "resolution", "dpcm": "resolution", "x": "resolution",
}

func dimensionOf(unit string) string {
	d, ok := unitDimension[strings.ToLower(unit)]
	if !ok {
		return unit // units outside the known dimensions compare literally
	}
	return d
}

func canonicalFactor(unit string) float64 {
	f, ok := unitConversions[strings.ToLower(unit)]
	if !ok {
		return 1
	}
	return f
}

// convertibleTo reports whether unit a can be converted to unit b.
func convertibleTo(a, b string) bool {
	return dimensionOf(a) == dimensionOf(b)
}

// Precision is the fixed 10 fractional decimal digits used for equality
// and serialization (§3 "Precision for equality and serialization is
// fixed at 10 fractional decimal digits").
const Precision = 10

func round10(v float64) float64 {
	scale := math.Pow(10, Precision)
	return math.Round(v*scale) / scale
}

// sameUnits reports whether two unit multisets are equal up to ordering
// (multiset equality).
func sameUnits(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	ac, bc := append([]string(nil), a...), append([]string(nil), b...)
	sort.Strings(ac)
	sort.Strings(bc)
	for i := range ac {
		if ac[i] != bc[i] {
			return false
		}
	}
	return true
}

// canonicalValue converts n's numeric value into the canonical base
// units of its numerator/denominator dimensions, for comparison against
// another number with compatible but differently-spelled units.
func (n Number) canonicalValue() float64 {
	v := n.Num
	for _, u := range n.Numerators {
		v *= canonicalFactor(u)
	}
	for _, u := range n.Denominators {
		v /= canonicalFactor(u)
	}
	return v
}

func canonicalUnits(units []string) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = dimensionOf(u)
	}
	sort.Strings(out)
	return out
}

// Equal implements §3's unit-normalizing, 10-decimal-digit equality and
// invariant 2's commutativity.
func (n Number) Equal(o Number) bool {
	if !sameUnits(canonicalUnits(n.Numerators), canonicalUnits(o.Numerators)) {
		return false
	}
	if !sameUnits(canonicalUnits(n.Denominators), canonicalUnits(o.Denominators)) {
		return false
	}
	return round10(n.canonicalValue()) == round10(o.canonicalValue())
}

// ConvertibleWith reports whether n and o can be added/subtracted
// (§4.3 "Arithmetic semantics").
func (n Number) ConvertibleWith(o Number) bool {
	if len(n.Numerators) != len(o.Numerators) || len(n.Denominators) != len(o.Denominators) {
		return false
	}
	used := make([]bool, len(o.Numerators))
	for _, u := range n.Numerators {
		found := false
		for i, ou := range o.Numerators {
			if !used[i] && convertibleTo(u, ou) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	used = make([]bool, len(o.Denominators))
	for _, u := range n.Denominators {
		found := false
		for i, ou := range o.Denominators {
			if !used[i] && convertibleTo(u, ou) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ConvertedValue returns n's numeric value expressed in o's exact unit
// spelling, assuming ConvertibleWith(n, o) already holds; exported for
// callers (e.g. the evaluator's relational operators) that need a
// like-for-like comparison without performing a full Add/Sub.
func (n Number) ConvertedValue(o Number) float64 { return n.convertTo(o) }

// convertTo returns n's numeric value expressed in o's exact unit
// spelling, assuming ConvertibleWith(n, o) already holds.
func (n Number) convertTo(o Number) float64 {
	return n.canonicalValue() / func() float64 {
		v := 1.0
		for _, u := range o.Numerators {
			v *= canonicalFactor(u)
		}
		for _, u := range o.Denominators {
			v /= canonicalFactor(u)
		}
		return v
	}()
}

// Add implements unit-converting addition (§4.3).
func (n Number) Add(o Number) (Number, error) {
	if n.IsUnitless() {
		return Number{Num: n.Num + o.Num, Numerators: o.Numerators, Denominators: o.Denominators}, nil
	}
	if o.IsUnitless() {
		return Number{Num: n.Num + o.Num, Numerators: n.Numerators, Denominators: n.Denominators}, nil
	}
	if !n.ConvertibleWith(o) {
		return Number{}, fmt.Errorf("%s and %s have incompatible units", n.CSSText(), o.CSSText())
	}
	return Number{Num: n.Num + o.convertTo(n), Numerators: n.Numerators, Denominators: n.Denominators}, nil
}

// Sub implements unit-converting subtraction.
func (n Number) Sub(o Number) (Number, error) {
	neg := o
	neg.Num = -neg.Num
	return n.Add(neg)
}

// Mul appends numerator units and cancels matching numerator/denominator
// pairs (§4.3 "Multiplication appends numerator units; division appends
// denominator units and cancels matching pairs").
func (n Number) Mul(o Number) Number {
	nums := append(append([]string(nil), n.Numerators...), o.Numerators...)
	dens := append(append([]string(nil), n.Denominators...), o.Denominators...)
	nums, dens = cancel(nums, dens)
	return Number{Num: n.Num * o.Num, Numerators: nums, Denominators: dens}
}

// Div appends o's numerators to n's denominators and vice versa, then
// cancels.
func (n Number) Div(o Number) (Number, error) {
	if o.Num == 0 {
		return Number{}, fmt.Errorf("division by zero")
	}
	nums := append(append([]string(nil), n.Numerators...), o.Denominators...)
	dens := append(append([]string(nil), n.Denominators...), o.Numerators...)
	nums, dens = cancel(nums, dens)
	return Number{Num: n.Num / o.Num, Numerators: nums, Denominators: dens}, nil
}

// cancel removes numerator/denominator pairs that name the same unit
// (compared case-insensitively). Units that are only convertible, such
// as px and in, are not cancelled, and no conversion factor is applied.
func cancel(nums, dens []string) ([]string, []string) {
	outNums := append([]string(nil), nums...)
	outDens := []string{}
	for _, d := range dens {
		idx := -1
		for i, u := range outNums {
			if strings.EqualFold(u, d) {
				idx = i
				break
			}
		}
		if idx >= 0 {
			outNums = append(outNums[:idx], outNums[idx+1:]...)
		} else {
			outDens = append(outDens, d)
		}
	}
	return outNums, outDens
}

// CSSText renders the number the way it appears in CSS output: the
// numerator/denominator distinction collapses to a single unit suffix,
// and a unit left entirely in the denominator is only ever shown under
// `inspect`, never in CSS (§4.3, "a unit left entirely in the
// denominator prints with ^-1 notation only under inspect, never in CSS
// output").
func (n Number) CSSText() string {
	return formatFloat(n.Num) + strings.Join(n.Numerators, "")
}

// InspectText renders the number including denominator units with the
// "^-1" notation used by `meta.inspect` and debug output (§4.3).
func (n Number) InspectText() string {
	s := formatFloat(n.Num) + strings.Join(n.Numerators, "*")
	for _, d := range n.Denominators {
		s += d + "^-1"
	}
	return s
}

// formatFloat renders a float with up to Precision fractional digits,
// trimming trailing zeros, matching how Sass prints numbers (e.g. "0.5"
// not "0.5000000000").
func formatFloat(v float64) string {
	v = round10(v)
	s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.10f", v), "0"), ".")
	if s == "" || s == "-0" {
		s = "0"
	}
	return s
}
