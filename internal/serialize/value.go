package serialize

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gosass/sass/value"
)

// valueText renders an already-evaluated runtime value the way it
// appears in CSS output (§4.6), the serializer's own counterpart to
// internal/eval's toCSSString — kept separate because only this package
// needs style-dependent choices (shortest color form, leading-zero
// elision) that evaluation itself never makes.
func valueText(v value.Value, style Style) string {
	switch vv := v.(type) {
	case value.Null:
		return ""
	case value.Bool:
		if vv {
			return "true"
		}
		return "false"
	case value.String:
		return vv.Text
	case value.Number:
		s := vv.CSSText()
		if style == Compressed {
			s = compressNumberText(s)
		}
		return s
	case value.Color:
		return colorText(vv, style)
	case value.List:
		return listText(vv, style)
	case value.Map:
		return listText(vv.AsList(), style)
	case value.Calculation:
		return calcText(vv, style)
	case value.Function:
		return "get-function(\"" + vv.Name + "\")"
	case value.Selector:
		return vv.Text
	default:
		return fmt.Sprintf("%v", v)
	}
}

func listText(l value.List, style Style) string {
	sep := " "
	switch l.Separator {
	case value.SepComma:
		if style == Compressed {
			sep = ","
		} else {
			sep = ", "
		}
	case value.SepSlash:
		sep = "/"
	}
	parts := make([]string, 0, len(l.Elements))
	for _, el := range l.Elements {
		if _, ok := el.(value.Null); ok {
			continue
		}
		parts = append(parts, valueText(el, style))
	}
	text := strings.Join(parts, sep)
	if l.Bracketed {
		return "[" + text + "]"
	}
	return text
}

func calcText(c value.Calculation, style Style) string {
	parts := make([]string, len(c.Arguments))
	for i, a := range c.Arguments {
		parts[i] = valueText(a, style)
	}
	if c.Name == "calc" {
		return "calc(" + strings.Join(parts, " ") + ")"
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

// compressNumberText elides a leading "0" from a CSSText rendering whose
// magnitude is in (-1, 1) (§4.6 "leading 0 elided from numbers in
// (-1,1)"). CSSText never produces a unit that itself starts with a
// digit, so a plain prefix check is sufficient without re-parsing the
// number.
func compressNumberText(s string) string {
	if strings.HasPrefix(s, "0.") {
		return s[1:]
	}
	if strings.HasPrefix(s, "-0.") {
		return "-" + s[2:]
	}
	return s
}

// colorText chooses the shortest representation consistent with style
// among named keyword, 3/6-digit hex, and rgb()/rgba() function
// notation (§4.6 "serialization chooses the shortest of name, 3-digit
// hex, 6-digit hex, rgb(...), or rgba(...) consistent with the target
// style"). A color with alpha != 1 is never rendered as an 8-digit hex
// (dart-sass doesn't emit that form either, for browser-compatibility
// reasons predating this implementation): it's always rgba(), except
// for fully-transparent black, where the "transparent" keyword is
// shorter than "rgba(0, 0, 0, 0)" in both styles.
func colorText(c value.Color, style Style) string {
	if c.A != 1 {
		if c.R == 0 && c.G == 0 && c.B == 0 && c.A == 0 {
			return "transparent"
		}
		return c.FunctionText("rgb")
	}
	candidates := []string{c.HexText(), c.FunctionText("rgb")}
	if name, ok := nameForRGB(c.R, c.G, c.B); ok {
		candidates = append(candidates, name)
	}
	return shortest(candidates)
}

func shortest(candidates []string) string {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if len(c) < len(best) {
			best = c
		}
	}
	return best
}

var (
	rgbNamesOnce sync.Once
	rgbToName    map[[3]uint8]string
)

// nameForRGB reverses value.NamedColors, preferring the alphabetically
// first keyword when more than one name maps to the same RGB triple
// (e.g. "gray"/"grey" pairs), so the choice is deterministic.
func nameForRGB(r, g, b uint8) (string, bool) {
	rgbNamesOnce.Do(func() {
		keys := make([]string, 0, len(value.NamedColors))
		for k := range value.NamedColors {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rgbToName = make(map[[3]uint8]string, len(keys))
		for _, k := range keys {
			rgb := value.NamedColors[k]
			if _, ok := rgbToName[rgb]; !ok {
				rgbToName[rgb] = k
			}
		}
	})
	name, ok := rgbToName[[3]uint8{r, g, b}]
	return name, ok
}
