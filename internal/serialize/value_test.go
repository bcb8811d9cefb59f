package serialize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gosass/sass/value"
)

func TestColorTextPrefersNamedKeyword(t *testing.T) {
	red := value.Color{R: 255, G: 0, B: 0, A: 1}
	assert.Equal(t, "red", colorText(red, Expanded))
}

func TestColorTextAlphaNeverHex(t *testing.T) {
	c := value.Color{R: 10, G: 20, B: 30, A: 0.7}
	assert.Equal(t, "rgba(10, 20, 30, 0.7)", colorText(c, Expanded))
}

func TestColorTextTransparentKeyword(t *testing.T) {
	c := value.Color{R: 0, G: 0, B: 0, A: 0}
	assert.Equal(t, "transparent", colorText(c, Expanded))
}

func TestColorTextFallsBackToHexWhenNoName(t *testing.T) {
	c := value.Color{R: 18, G: 52, B: 86, A: 1}
	got := colorText(c, Expanded)
	assert.Equal(t, "#123456", got)
}

func TestCompressNumberTextElidesLeadingZero(t *testing.T) {
	assert.Equal(t, ".5px", compressNumberText("0.5px"))
	assert.Equal(t, "-.5px", compressNumberText("-0.5px"))
	assert.Equal(t, "12px", compressNumberText("12px"))
}

func TestNameForRGBDeterministicOnDuplicates(t *testing.T) {
	name, ok := nameForRGB(128, 128, 128)
	assert.True(t, ok)
	assert.Equal(t, "gray", name) // alphabetically first of gray/grey
}

func TestListTextCommaSeparatorCompressed(t *testing.T) {
	l := value.List{
		Elements:  []value.Value{value.String{Text: "a"}, value.String{Text: "b"}},
		Separator: value.SepComma,
	}
	assert.Equal(t, "a, b", listText(l, Expanded))
	assert.Equal(t, "a,b", listText(l, Compressed))
}
