// Package span defines the source-location types threaded through every
// stage of the compiler: the scanner stamps spans onto tokens, the parser
// copies them onto AST nodes, and diagnostics and source maps read them
// back out.
package span

import "fmt"

// Source is a named unit of input text: a stylesheet loaded through an
// Importer, or the top-level entry passed to compileString.
type Source struct {
	// URL is the canonical URL of this source, or "" for anonymous
	// compileString input with no url option.
	URL string
	// Text is the full source text, used to derive line/column on demand
	// and to slice out the literal text a Span covers.
	Text string
}

// Location is a zero-based byte offset plus its derived line and column.
type Location struct {
	Offset int
	Line   int // zero-based
	Column int // zero-based, in runes from the start of the line
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line+1, l.Column+1)
}

// Span is a half-open byte range [Start,End) within Source.
type Span struct {
	Source *Source
	Start  Location
	End    Location
}

// Text returns the literal source text covered by the span.
func (s Span) Text() string {
	if s.Source == nil {
		return ""
	}
	return s.Source.Text[s.Start.Offset:s.End.Offset]
}

// URL returns the canonical URL of the span's source, or "" if anonymous.
func (s Span) URL() string {
	if s.Source == nil {
		return ""
	}
	return s.Source.URL
}

// To returns a new span starting at s and ending at the end of other.
// Used to merge the span of a first and last child into a parent node's
// span (e.g. a whole style rule from its selector to its closing brace).
func (s Span) To(other Span) Span {
	return Span{Source: s.Source, Start: s.Start, End: other.End}
}

// PointAt builds a zero-width span wrapping a single location, used for
// diagnostics that reference a position rather than a range.
func PointAt(src *Source, loc Location) Span {
	return Span{Source: src, Start: loc, End: loc}
}

// NewTracker builds a Tracker for incrementally computing Locations while
// scanning src.Text rune by rune.
func NewTracker(src *Source) *Tracker {
	return &Tracker{src: src}
}

// Tracker advances a Location over a rune stream, tracking line/column.
type Tracker struct {
	src    *Source
	offset int
	line   int
	column int
}

// Advance records that ch was just consumed at the tracker's current
// location, then moves the location past it. It returns the location of
// ch itself (before the advance).
func (t *Tracker) Advance(ch rune) Location {
	loc := t.Location()
	t.offset += runeLen(ch)
	if ch == '\n' {
		t.line++
		t.column = 0
	} else if ch >= 0 {
		t.column++
	}
	return loc
}

// Location returns the tracker's current position without consuming
// anything.
func (t *Tracker) Location() Location {
	return Location{Offset: t.offset, Line: t.line, Column: t.column}
}

func runeLen(ch rune) int {
	switch {
	case ch < 0:
		return 0
	case ch < 0x80:
		return 1
	case ch < 0x800:
		return 2
	case ch < 0x10000:
		return 3
	default:
		return 4
	}
}
