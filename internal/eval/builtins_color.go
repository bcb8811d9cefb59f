package eval

import (
	"fmt"
	"strings"

	"github.com/gosass/sass/value"
)

func optNum(a Args, i int, name string, def float64) (float64, error) {
	v, ok := a.Get(i, name)
	if !ok {
		return def, nil
	}
	n, ok := v.(value.Number)
	if !ok {
		return 0, fmt.Errorf("$%s: %v is not a number", name, v)
	}
	return n.Num, nil
}

// colorBuiltins is the `sass:color` module, plus the legacy
// lighten/darken-style global names also registered unnamespaced by
// legacyGlobalBuiltins.
var colorBuiltins = map[string]BuiltinFunc{
	"rgb":  colorRGBFunc,
	"rgba": colorRGBFunc,
	"hsl":  colorHSLFunc,
	"hsla": colorHSLFunc,
	"hwb": func(e *Evaluator, a Args) (value.Value, error) {
		h, err := a.Number(0, "hue")
		if err != nil {
			return nil, err
		}
		w, err := a.Number(1, "whiteness")
		if err != nil {
			return nil, err
		}
		b, err := a.Number(2, "blackness")
		if err != nil {
			return nil, err
		}
		alpha, err := optNum(a, 3, "alpha", 1)
		if err != nil {
			return nil, err
		}
		return value.HWB(h.Num, w.Num, b.Num, alpha), nil
	},
	"red": func(e *Evaluator, a Args) (value.Value, error) {
		c, err := a.Color(0, "color")
		if err != nil {
			return nil, err
		}
		return value.Unitless(float64(c.R)), nil
	},
	"green": func(e *Evaluator, a Args) (value.Value, error) {
		c, err := a.Color(0, "color")
		if err != nil {
			return nil, err
		}
		return value.Unitless(float64(c.G)), nil
	},
	"blue": func(e *Evaluator, a Args) (value.Value, error) {
		c, err := a.Color(0, "color")
		if err != nil {
			return nil, err
		}
		return value.Unitless(float64(c.B)), nil
	},
	"alpha": func(e *Evaluator, a Args) (value.Value, error) {
		c, err := a.Color(0, "color")
		if err != nil {
			return nil, err
		}
		return value.Unitless(c.A), nil
	},
	"opacity": func(e *Evaluator, a Args) (value.Value, error) {
		c, err := a.Color(0, "color")
		if err != nil {
			return nil, err
		}
		return value.Unitless(c.A), nil
	},
	"hue": func(e *Evaluator, a Args) (value.Value, error) {
		c, err := a.Color(0, "color")
		if err != nil {
			return nil, err
		}
		h, _, _ := c.ToHSL()
		return value.WithUnit(h, "deg"), nil
	},
	"saturation": func(e *Evaluator, a Args) (value.Value, error) {
		c, err := a.Color(0, "color")
		if err != nil {
			return nil, err
		}
		_, s, _ := c.ToHSL()
		return value.WithUnit(s, "%"), nil
	},
	"lightness": func(e *Evaluator, a Args) (value.Value, error) {
		c, err := a.Color(0, "color")
		if err != nil {
			return nil, err
		}
		_, _, l := c.ToHSL()
		return value.WithUnit(l, "%"), nil
	},
	"whiteness": func(e *Evaluator, a Args) (value.Value, error) {
		c, err := a.Color(0, "color")
		if err != nil {
			return nil, err
		}
		_, w, _ := c.ToHWB()
		return value.WithUnit(w, "%"), nil
	},
	"blackness": func(e *Evaluator, a Args) (value.Value, error) {
		c, err := a.Color(0, "color")
		if err != nil {
			return nil, err
		}
		_, _, b := c.ToHWB()
		return value.WithUnit(b, "%"), nil
	},
	"ie-hex-str": func(e *Evaluator, a Args) (value.Value, error) {
		c, err := a.Color(0, "color")
		if err != nil {
			return nil, err
		}
		return unquoted(strings.ToUpper(fmt.Sprintf("#%02x%02x%02x%02x", byte(c.A*255+0.5), c.R, c.G, c.B))), nil
	},
	"invert": func(e *Evaluator, a Args) (value.Value, error) {
		c, err := a.Color(0, "color")
		if err != nil {
			return nil, err
		}
		weight, err := optNum(a, 1, "weight", 100)
		if err != nil {
			return nil, err
		}
		inverted := value.RGB(255-c.R, 255-c.G, 255-c.B, c.A)
		return mixColors(inverted, c, weight), nil
	},
	"grayscale": func(e *Evaluator, a Args) (value.Value, error) {
		c, err := a.Color(0, "color")
		if err != nil {
			return nil, err
		}
		h, _, l := c.ToHSL()
		return value.HSL(h, 0, l, c.A), nil
	},
	"complement": func(e *Evaluator, a Args) (value.Value, error) {
		c, err := a.Color(0, "color")
		if err != nil {
			return nil, err
		}
		h, s, l := c.ToHSL()
		return value.HSL(h+180, s, l, c.A), nil
	},
	"mix": func(e *Evaluator, a Args) (value.Value, error) {
		c1, err := a.Color(0, "color1")
		if err != nil {
			return nil, err
		}
		c2, err := a.Color(1, "color2")
		if err != nil {
			return nil, err
		}
		weight, err := optNum(a, 2, "weight", 50)
		if err != nil {
			return nil, err
		}
		return mixColors(c1, c2, weight), nil
	},
	"adjust":  colorAdjust,
	"scale":   colorScale,
	"change":  colorChange,
	"adjust-hue": func(e *Evaluator, a Args) (value.Value, error) {
		c, err := a.Color(0, "color")
		if err != nil {
			return nil, err
		}
		deg, err := a.Number(1, "degrees")
		if err != nil {
			return nil, err
		}
		h, s, l := c.ToHSL()
		return value.HSL(h+deg.Num, s, l, c.A), nil
	},
	"lighten": func(e *Evaluator, a Args) (value.Value, error) { return hslShift(a, "lightness", 1) },
	"darken":  func(e *Evaluator, a Args) (value.Value, error) { return hslShift(a, "lightness", -1) },
	"saturate": func(e *Evaluator, a Args) (value.Value, error) { return hslShift(a, "saturation", 1) },
	"desaturate": func(e *Evaluator, a Args) (value.Value, error) { return hslShift(a, "saturation", -1) },
	"opacify":  func(e *Evaluator, a Args) (value.Value, error) { return alphaShift(a, 1) },
	"fade-in":  func(e *Evaluator, a Args) (value.Value, error) { return alphaShift(a, 1) },
	"transparentize": func(e *Evaluator, a Args) (value.Value, error) { return alphaShift(a, -1) },
	"fade-out":       func(e *Evaluator, a Args) (value.Value, error) { return alphaShift(a, -1) },
}

func colorRGBFunc(e *Evaluator, a Args) (value.Value, error) {
	r, err := a.Number(0, "red")
	if err != nil {
		return nil, err
	}
	g, err := a.Number(1, "green")
	if err != nil {
		return nil, err
	}
	b, err := a.Number(2, "blue")
	if err != nil {
		return nil, err
	}
	alpha, err := optNum(a, 3, "alpha", 1)
	if err != nil {
		return nil, err
	}
	return value.RGB(channelByte(r), channelByte(g), channelByte(b), alpha), nil
}

func channelByte(n value.Number) uint8 {
	v := n.Num
	if n.Unit() == "%" {
		v = v * 255 / 100
	}
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v + 0.5)
}

func colorHSLFunc(e *Evaluator, a Args) (value.Value, error) {
	h, err := a.Number(0, "hue")
	if err != nil {
		return nil, err
	}
	s, err := a.Number(1, "saturation")
	if err != nil {
		return nil, err
	}
	l, err := a.Number(2, "lightness")
	if err != nil {
		return nil, err
	}
	alpha, err := optNum(a, 3, "alpha", 1)
	if err != nil {
		return nil, err
	}
	return value.HSL(h.Num, s.Num, l.Num, alpha), nil
}

// mixColors implements the classic alpha-weighted RGB mix (§3
// "color.mix"/legacy `mix()`), the same algorithm dart-sass and Less
// both use: weight scales by the relative alpha of each color before
// a straight per-channel average.
func mixColors(c1, c2 value.Color, weightPct float64) value.Color {
	w := weightPct / 100
	a1, a2 := c1.A, c2.A
	normalized := w*2 - 1
	alphaDelta := a1 - a2
	combined := normalized
	if normalized*alphaDelta != -1 {
		combined = (normalized + alphaDelta) / (1 + normalized*alphaDelta)
	}
	w1 := (combined + 1) / 2
	w2 := 1 - w1
	mix := func(c1, c2 uint8) uint8 {
		return clampByteVal(float64(c1)*w1 + float64(c2)*w2)
	}
	alpha := a1*w + a2*(1-w)
	return value.RGB(mix(c1.R, c2.R), mix(c1.G, c2.G), mix(c1.B, c2.B), alpha)
}

func clampByteVal(v float64) uint8 {
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v + 0.5)
}

// colorAdjust implements `color.adjust`: each named channel argument is
// added to the color's current value in whichever space (RGB or HSL)
// that channel belongs to.
func colorAdjust(e *Evaluator, a Args) (value.Value, error) {
	c, err := a.Color(0, "color")
	if err != nil {
		return nil, err
	}
	r, g, b := int(c.R), int(c.G), int(c.B)
	alpha := c.A
	h, s, l := c.ToHSL()
	touchedHSL := false
	if v, ok := a.Named["red"]; ok {
		r += int(mustNum(v))
	}
	if v, ok := a.Named["green"]; ok {
		g += int(mustNum(v))
	}
	if v, ok := a.Named["blue"]; ok {
		b += int(mustNum(v))
	}
	if v, ok := a.Named["hue"]; ok {
		h += mustNum(v)
		touchedHSL = true
	}
	if v, ok := a.Named["saturation"]; ok {
		s += mustNum(v)
		touchedHSL = true
	}
	if v, ok := a.Named["lightness"]; ok {
		l += mustNum(v)
		touchedHSL = true
	}
	if v, ok := a.Named["alpha"]; ok {
		alpha += mustNum(v)
	}
	if touchedHSL {
		return value.HSL(h, s, l, alpha), nil
	}
	return value.RGB(uint8(clampInt(r, 0, 255)), uint8(clampInt(g, 0, 255)), uint8(clampInt(b, 0, 255)), clampAlphaVal(alpha)), nil
}

func clampAlphaVal(a float64) float64 {
	if a < 0 {
		return 0
	}
	if a > 1 {
		return 1
	}
	return a
}

func mustNum(v value.Value) float64 {
	if n, ok := v.(value.Number); ok {
		return n.Num
	}
	return 0
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// colorScale implements `color.scale`: each named channel scales
// proportionally toward its maximum (positive percentage) or minimum
// (negative), rather than adjust's flat addition.
func colorScale(e *Evaluator, a Args) (value.Value, error) {
	c, err := a.Color(0, "color")
	if err != nil {
		return nil, err
	}
	scale := func(cur, max float64, pct float64) float64 {
		if pct >= 0 {
			return cur + (max-cur)*pct/100
		}
		return cur + cur*pct/100
	}
	r, g, b := float64(c.R), float64(c.G), float64(c.B)
	alpha := c.A
	h, s, l := c.ToHSL()
	touchedHSL := false
	if v, ok := a.Named["red"]; ok {
		r = scale(r, 255, mustNum(v))
	}
	if v, ok := a.Named["green"]; ok {
		g = scale(g, 255, mustNum(v))
	}
	if v, ok := a.Named["blue"]; ok {
		b = scale(b, 255, mustNum(v))
	}
	if v, ok := a.Named["saturation"]; ok {
		s = scale(s, 100, mustNum(v))
		touchedHSL = true
	}
	if v, ok := a.Named["lightness"]; ok {
		l = scale(l, 100, mustNum(v))
		touchedHSL = true
	}
	if v, ok := a.Named["alpha"]; ok {
		alpha = scale(alpha, 1, mustNum(v))
	}
	if touchedHSL {
		out := value.HSL(h, s, l, alpha)
		return out, nil
	}
	return value.RGB(clampByteVal(r), clampByteVal(g), clampByteVal(b), clampAlphaVal(alpha)), nil
}

// colorChange implements `color.change`: each named channel is replaced
// outright rather than added to or scaled.
func colorChange(e *Evaluator, a Args) (value.Value, error) {
	c, err := a.Color(0, "color")
	if err != nil {
		return nil, err
	}
	r, g, b := c.R, c.G, c.B
	alpha := c.A
	h, s, l := c.ToHSL()
	touchedHSL := false
	if v, ok := a.Named["red"]; ok {
		r = clampByteVal(mustNum(v))
	}
	if v, ok := a.Named["green"]; ok {
		g = clampByteVal(mustNum(v))
	}
	if v, ok := a.Named["blue"]; ok {
		b = clampByteVal(mustNum(v))
	}
	if v, ok := a.Named["hue"]; ok {
		h = mustNum(v)
		touchedHSL = true
	}
	if v, ok := a.Named["saturation"]; ok {
		s = mustNum(v)
		touchedHSL = true
	}
	if v, ok := a.Named["lightness"]; ok {
		l = mustNum(v)
		touchedHSL = true
	}
	if v, ok := a.Named["alpha"]; ok {
		alpha = mustNum(v)
	}
	if touchedHSL {
		return value.HSL(h, s, l, alpha), nil
	}
	return value.RGB(r, g, b, clampAlphaVal(alpha)), nil
}

func hslShift(a Args, channel string, sign float64) (value.Value, error) {
	c, err := a.Color(0, "color")
	if err != nil {
		return nil, err
	}
	amount, err := a.Number(1, "amount")
	if err != nil {
		return nil, err
	}
	h, s, l := c.ToHSL()
	switch channel {
	case "lightness":
		l += sign * amount.Num
	case "saturation":
		s += sign * amount.Num
	}
	return value.HSL(h, s, l, c.A), nil
}

func alphaShift(a Args, sign float64) (value.Value, error) {
	c, err := a.Color(0, "color")
	if err != nil {
		return nil, err
	}
	amount, err := a.Number(1, "amount")
	if err != nil {
		return nil, err
	}
	return c.WithAlpha(c.A + sign*amount.Num), nil
}
