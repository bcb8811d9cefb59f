package serialize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gosass/sass/span"
)

func TestAppendVLQRoundTripsKnownValues(t *testing.T) {
	cases := map[int]string{
		0:  "A",
		1:  "C",
		-1: "D",
		16: "gB",
	}
	for n, want := range cases {
		got := string(appendVLQ(nil, n))
		assert.Equal(t, want, got, "n=%d", n)
	}
}

func TestSourceMapBuilderSkipsDuplicateMappings(t *testing.T) {
	src := &span.Source{URL: "a.scss", Text: "a{b:1}"}
	sp := span.Span{Source: src, Start: span.Location{Line: 0, Column: 0}}

	b := newSourceMapBuilder()
	b.add(0, 0, sp)
	b.add(0, 0, sp)
	assert.Len(t, b.mappings, 1)
}

func TestSourceMapBuilderBuildIncludesSource(t *testing.T) {
	src := &span.Source{URL: "a.scss", Text: "a{b:1}"}
	sp := span.Span{Source: src, Start: span.Location{Line: 2, Column: 4}}

	b := newSourceMapBuilder()
	b.add(1, 3, sp)
	sm := b.build()

	assert.Equal(t, 3, sm.Version)
	assert.Equal(t, []string{"a.scss"}, sm.Sources)
	assert.NotEmpty(t, sm.Mappings)
}

func TestSourceMapBuilderEmbedSources(t *testing.T) {
	src := &span.Source{URL: "a.scss", Text: "a{b:1}"}
	sp := span.Span{Source: src, Start: span.Location{Line: 0, Column: 0}}

	b := newSourceMapBuilder()
	b.add(0, 0, sp)
	sm := b.build()
	b.embedSources(sm)

	assert.Equal(t, []string{"a{b:1}"}, sm.SourcesContent)
}
