package sass_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosass/sass"
)

func compileExpanded(t *testing.T, source string) string {
	t.Helper()
	res, err := sass.CompileString(source, sass.Options{})
	require.NoError(t, err)
	return res.CSS
}

func TestCompileStringArithmetic(t *testing.T) {
	css := compileExpanded(t, "a {b: 1 + 2}")
	assert.Equal(t, "a {\n  b: 3;\n}", css)
}

func TestCompileStringVariablesAndNesting(t *testing.T) {
	css := compileExpanded(t, "$x: 10px;\na {\n  .b { width: $x * 2; }\n}")
	assert.Equal(t, "a .b {\n  width: 20px;\n}", css)
}

func TestCompileStringColorNameShortest(t *testing.T) {
	css := compileExpanded(t, "a {b: #f00}")
	assert.Equal(t, "a {\n  b: red;\n}", css)
}

func TestCompileStringAlphaColorNeverHex(t *testing.T) {
	css := compileExpanded(t, "$x: 0.7;\na {b: rgba(10, 20, 30, $x)}")
	assert.Equal(t, "a {\n  b: rgba(10, 20, 30, 0.7);\n}", css)
}

func TestCompileStringCompressedStyle(t *testing.T) {
	res, err := sass.CompileString("a {b: #f00}", sass.Options{Style: sass.Compressed})
	require.NoError(t, err)
	assert.Equal(t, "a{b:red}", strings.TrimSpace(res.CSS))
}

func TestCompileStringCompressedLeadingZeroElision(t *testing.T) {
	res, err := sass.CompileString("a {b: 0.5px}", sass.Options{Style: sass.Compressed})
	require.NoError(t, err)
	assert.Equal(t, "a{b:.5px}", strings.TrimSpace(res.CSS))
}

func TestCompileStringEmptyRuleElided(t *testing.T) {
	css := compileExpanded(t, "a {\n  @if false { b: 1; }\n}\nc { d: 1; }")
	assert.NotContains(t, css, "a {")
	assert.Contains(t, css, "c {\n  d: 1;\n}")
}

func TestCompileStringExtend(t *testing.T) {
	css := compileExpanded(t, ".a { @extend .b; color: red; }\n.b { border: 1px; }")
	assert.Contains(t, css, ".b, .a {\n  border: 1px;\n}")
}

func TestCompileStringExtendTransitive(t *testing.T) {
	css := compileExpanded(t, ".a { @extend .b; }\n.b { @extend .c; }\n.c { color: c; }")
	assert.Equal(t, ".c, .b, .a {\n  color: c;\n}", css)
}

func TestCompileStringPlaceholderNeverEmittedAlone(t *testing.T) {
	css := compileExpanded(t, "%p { x: y; }")
	assert.Equal(t, "", css)
}

func TestCompileStringPlaceholderExtended(t *testing.T) {
	css := compileExpanded(t, "%p { x: y; }\na { @extend %p; }")
	assert.Equal(t, "a {\n  x: y;\n}", css)
}

func TestCompileStringMixinAndContent(t *testing.T) {
	css := compileExpanded(t, "@mixin wrap { a { @content; } }\n@include wrap { color: blue; }")
	assert.Equal(t, "a {\n  color: blue;\n}", css)
}

func TestCompileStringLoadedURLsEmptyForAnonymousSource(t *testing.T) {
	res, err := sass.CompileString("a { b: 1; }", sass.Options{})
	require.NoError(t, err)
	assert.Empty(t, res.LoadedURLs)
}

func TestCompileStringSourceMapProducesMappings(t *testing.T) {
	res, err := sass.CompileString("a {b: 1 + 2}", sass.Options{SourceMap: true, URL: "input.scss"})
	require.NoError(t, err)
	require.NotNil(t, res.SourceMap)
	assert.Equal(t, 3, res.SourceMap.Version)
	assert.NotEmpty(t, res.SourceMap.Mappings)
}

func TestCompileStringUndefinedVariableIsError(t *testing.T) {
	_, err := sass.CompileString("a { b: $nope; }", sass.Options{})
	assert.Error(t, err)
}

func TestCompileStringUserFunction(t *testing.T) {
	css := compileExpanded(t, "@function double($x) { @return $x * 2; }\na { b: double(3); }")
	assert.Equal(t, "a {\n  b: 6;\n}", css)
}

func TestCompileStringEachLoop(t *testing.T) {
	css := compileExpanded(t, "@each $name in a, b {\n  .#{$name} { color: red; }\n}")
	assert.Contains(t, css, ".a {\n  color: red;\n}")
	assert.Contains(t, css, ".b {\n  color: red;\n}")
}

func TestCompileStringIfElse(t *testing.T) {
	css := compileExpanded(t, "$x: 5;\na {\n  @if $x > 10 { b: big; } @else { b: small; }\n}")
	assert.Equal(t, "a {\n  b: small;\n}", css)
}

func TestCompileStringSassMathModule(t *testing.T) {
	css := compileExpanded(t, "@use \"sass:math\";\na { b: math.round(4.6); }")
	assert.Equal(t, "a {\n  b: 5;\n}", css)
}
