package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosass/sass/internal/ast"
	"github.com/gosass/sass/internal/scanner"
	"github.com/gosass/sass/span"
)

func parse(t *testing.T, text string, syntax scanner.Syntax) *ast.Stylesheet {
	t.Helper()
	p := New(&span.Source{Text: text}, syntax)
	sheet := p.ParseStylesheet()
	require.Empty(t, p.Errors, "unexpected parse errors: %v", p.Errors)
	return sheet
}

func TestParseSCSSStyleRuleWithDeclaration(t *testing.T) {
	sheet := parse(t, "a { b: c; }", scanner.SCSS)
	require.Len(t, sheet.Body, 1)
	rule, ok := sheet.Body[0].(ast.StyleRule)
	require.True(t, ok, "expected ast.StyleRule, got %T", sheet.Body[0])
	require.Len(t, rule.Body, 1)
	decl, ok := rule.Body[0].(ast.Declaration)
	require.True(t, ok, "expected ast.Declaration, got %T", rule.Body[0])
	assert.False(t, decl.Custom)
}

func TestParseIndentedSyntaxNesting(t *testing.T) {
	sheet := parse(t, "a\n  b: c\n", scanner.Indented)
	require.Len(t, sheet.Body, 1)
	rule, ok := sheet.Body[0].(ast.StyleRule)
	require.True(t, ok, "expected ast.StyleRule, got %T", sheet.Body[0])
	require.Len(t, rule.Body, 1)
}

func TestParseCustomPropertyMarksCustomFlag(t *testing.T) {
	sheet := parse(t, "a { --foo: bar; }", scanner.SCSS)
	rule := sheet.Body[0].(ast.StyleRule)
	decl := rule.Body[0].(ast.Declaration)
	assert.True(t, decl.Custom)
}

func TestParseVariableDeclarationFlags(t *testing.T) {
	sheet := parse(t, "$x: 1 !default;", scanner.SCSS)
	decl, ok := sheet.Body[0].(ast.VariableDecl)
	require.True(t, ok, "expected ast.VariableDecl, got %T", sheet.Body[0])
	assert.Equal(t, "x", decl.Name)
	assert.True(t, decl.Guarded)
}

func TestParseIfElseChain(t *testing.T) {
	sheet := parse(t, "@if $x { a: 1; } @else if $y { a: 2; } @else { a: 3; }", scanner.SCSS)
	require.Len(t, sheet.Body, 1)
	ifRule, ok := sheet.Body[0].(ast.If)
	require.True(t, ok, "expected ast.If, got %T", sheet.Body[0])
	require.Len(t, ifRule.Clauses, 3)
	assert.NotNil(t, ifRule.Clauses[0].Condition)
	assert.NotNil(t, ifRule.Clauses[1].Condition)
	assert.Nil(t, ifRule.Clauses[2].Condition, "trailing @else has no condition")
}
