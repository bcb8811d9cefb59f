package serialize

import (
	"sort"

	"github.com/gosass/sass/span"
)

// SourceMapV3 is the standard source-map v3 payload (§4.6 "Maps are
// emitted in the standard source-map v3 format").
type SourceMapV3 struct {
	Version        int      `json:"version"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

type mapping struct {
	genLine, genCol             int
	source                      int
	srcLine, srcCol             int
}

// sourceMapBuilder accumulates one mapping per emitted token, recording
// only the first span observed at a given generated line/column and
// skipping duplicates (§4.6 "preserving the first span observed at any
// target line/column and skipping duplicate mappings").
type sourceMapBuilder struct {
	sources     []string
	sourceIndex map[string]int
	content     map[string]string
	mappings    []mapping
	seen        map[[2]int]bool
}

func newSourceMapBuilder() *sourceMapBuilder {
	return &sourceMapBuilder{
		sourceIndex: map[string]int{},
		content:     map[string]string{},
		seen:        map[[2]int]bool{},
	}
}

func (b *sourceMapBuilder) add(genLine, genCol int, sp span.Span) {
	if sp.Source == nil {
		return
	}
	key := [2]int{genLine, genCol}
	if b.seen[key] {
		return
	}
	b.seen[key] = true
	idx := b.sourceIdx(sp)
	b.mappings = append(b.mappings, mapping{
		genLine: genLine, genCol: genCol,
		source: idx, srcLine: sp.Start.Line, srcCol: sp.Start.Column,
	})
}

func (b *sourceMapBuilder) sourceIdx(sp span.Span) int {
	url := sp.URL()
	if url == "" {
		url = "stdin"
	}
	if i, ok := b.sourceIndex[url]; ok {
		return i
	}
	i := len(b.sources)
	b.sources = append(b.sources, url)
	b.sourceIndex[url] = i
	if sp.Source != nil {
		b.content[url] = sp.Source.Text
	}
	return i
}

// build renders the accumulated mappings into a SourceMapV3 without any
// source text; Serialize calls embedSources on the result afterwards when
// Options.SourceMapIncludeSources is set.
func (b *sourceMapBuilder) build() *SourceMapV3 {
	sorted := append([]mapping(nil), b.mappings...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].genLine != sorted[j].genLine {
			return sorted[i].genLine < sorted[j].genLine
		}
		return sorted[i].genCol < sorted[j].genCol
	})

	var out []byte
	prevGenCol, prevSource, prevSrcLine, prevSrcCol := 0, 0, 0, 0
	curLine := 0
	firstOnLine := true
	for _, m := range sorted {
		for curLine < m.genLine {
			out = append(out, ';')
			curLine++
			prevGenCol = 0
			firstOnLine = true
		}
		if !firstOnLine {
			out = append(out, ',')
		}
		firstOnLine = false
		out = appendVLQ(out, m.genCol-prevGenCol)
		out = appendVLQ(out, m.source-prevSource)
		out = appendVLQ(out, m.srcLine-prevSrcLine)
		out = appendVLQ(out, m.srcCol-prevSrcCol)
		prevGenCol, prevSource, prevSrcLine, prevSrcCol = m.genCol, m.source, m.srcLine, m.srcCol
	}

	return &SourceMapV3{
		Version:  3,
		Sources:  append([]string(nil), b.sources...),
		Names:    []string{},
		Mappings: string(out),
	}
}

// embedSources embeds each source's literal text into sm.SourcesContent,
// in the same order as sm.Sources.
func (b *sourceMapBuilder) embedSources(sm *SourceMapV3) {
	sm.SourcesContent = make([]string, len(sm.Sources))
	for i, url := range sm.Sources {
		sm.SourcesContent[i] = b.content[url]
	}
}

const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// appendVLQ appends n's base64-VLQ (variable-length quantity) encoding
// to out, the standard source-map v3 integer encoding: the sign occupies
// the low bit, five bits per digit, a continuation bit in the sixth.
func appendVLQ(out []byte, n int) []byte {
	v := n << 1
	if n < 0 {
		v = (-n << 1) | 1
	}
	for {
		digit := v & 0x1f
		v >>= 5
		if v > 0 {
			digit |= 0x20
		}
		out = append(out, base64Chars[digit])
		if v == 0 {
			break
		}
	}
	return out
}
