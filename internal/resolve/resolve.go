// Package resolve implements the module resolver (§4.2): canonicalizing
// and loading `@use`/`@forward`/`@import` targets through an injected
// chain of importers, parsing each into a Sass AST exactly once per
// canonical URL, and reporting `@use`/`@forward` cycles as diagnostic
// errors. It does not evaluate anything — internal/eval owns the
// at-most-once *execution* invariant (§4.2 "each module is evaluated
// exactly once per compile"); this package only owns at-most-once
// *parsing*, memoizing by canonical URL the same way.
//
// There is no module-graph-with-importer-chain repo anywhere in the
// retrieval pack; the DAG-with-memoization shape here is grounded on
// fredcamaral-slicli's plugin registry
// (internal/adapters/secondary/plugin), which resolves plugins by a
// canonical name into a single cached instance the same way this
// resolver resolves a URL into a single cached *Node, generalized from
// "plugin name -> plugin instance" to "canonical URL -> parsed module".
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/gosass/sass/internal/ast"
	"github.com/gosass/sass/internal/parser"
	"github.com/gosass/sass/internal/scanner"
	"github.com/gosass/sass/span"
)

// LoadResult is what an Importer.Load call returns for a canonical URL
// (§6 "Importer interface").
type LoadResult struct {
	Contents     string
	Syntax       scanner.Syntax
	SourceMapURL string
}

// Importer is the two-phase importer interface (§6): Canonicalize turns
// a written URL into a stable identity (two imports resolving to the
// same canonical URL are the same module, per the GLOSSARY), and Load
// fetches the contents once canonicalization has settled. fromImport
// distinguishes a `@import` (which may use `.import.scss` variants, §6
// "File formats") from `@use`/`@forward`.
type Importer interface {
	Canonicalize(url string, fromImport bool) (canonicalURL string, ok bool)
	Load(canonicalURL string) (LoadResult, bool)
}

// LegacyImporter is the single-phase importer shape (§6 "Legacy
// single-phase importer"): Find either returns stylesheet content
// directly or a filesystem path to re-dispatch as a filesystem URL.
type LegacyImporter interface {
	Find(url, previousURL string) (content string, path string, ok bool)
}

// legacyAdapter wraps a LegacyImporter behind the two-phase Importer
// interface so the resolver never needs two code paths.
type legacyAdapter struct {
	legacy      LegacyImporter
	previousURL string
	pathLoader  Importer // used to re-dispatch a returned filesystem path
}

func (a *legacyAdapter) Canonicalize(url string, fromImport bool) (string, bool) {
	content, path, ok := a.legacy.Find(url, a.previousURL)
	if !ok {
		return "", false
	}
	if path != "" {
		if a.pathLoader != nil {
			return a.pathLoader.Canonicalize(path, fromImport)
		}
		return "file://" + path, true
	}
	// Content returned directly: synthesize a stable canonical URL from
	// the written url itself, since there is no filesystem identity to
	// defer to.
	return "legacy:" + url, content != "" || true
}

func (a *legacyAdapter) Load(canonicalURL string) (LoadResult, bool) {
	content, _, ok := a.legacy.Find(strings.TrimPrefix(canonicalURL, "legacy:"), a.previousURL)
	if !ok {
		return LoadResult{}, false
	}
	return LoadResult{Contents: content, Syntax: SyntaxForURL(canonicalURL)}, true
}

// WrapLegacy adapts a LegacyImporter (optionally re-dispatching returned
// paths through pathLoader, typically the filesystem importer) into the
// Importer interface.
func WrapLegacy(l LegacyImporter, previousURL string, pathLoader Importer) Importer {
	return &legacyAdapter{legacy: l, previousURL: previousURL, pathLoader: pathLoader}
}

// SyntaxForURL infers a syntax from a URL's extension (§6 "syntax ∈
// {scss, indented, css}"), defaulting to SCSS when the extension is
// absent or unrecognized.
func SyntaxForURL(url string) scanner.Syntax {
	switch {
	case strings.HasSuffix(url, ".sass"):
		return scanner.Indented
	case strings.HasSuffix(url, ".css"):
		return scanner.CSS
	default:
		return scanner.SCSS
	}
}

// Node is one parsed stylesheet in the module graph: its canonical URL,
// parsed Sass AST, and the edges its `@use`/`@forward`/`@import`
// statements introduce (§4.2 "directed acyclic module graph"). ID is a
// synthetic compile-scoped identifier, not part of any cache key — two
// Load calls for the same URL return the same *Node and thus the same
// ID, it exists purely so `--trace` diagnostics can correlate a
// call-stack span back to the module it was evaluated in.
type Node struct {
	ID         uuid.UUID
	URL        string
	Syntax     scanner.Syntax
	Stylesheet *ast.Stylesheet
}

// Error reports a module-resolution failure: an unresolvable URL or a
// `@use`/`@forward` cycle (§4.2 "cycles in @use/@forward are diagnostic
// errors").
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// Resolver owns the importer chain and the at-most-once parse cache for
// one compile (§5 "Module caches are per-compile and owned by the
// compile context").
type Resolver struct {
	Importers []Importer

	parsed  map[string]*Node
	parsing map[string]bool // @use/@forward cycle guard
}

// New returns a Resolver over the given ordered importer chain (§4.2
// "canonicalization of the referenced URL via the first importer that
// returns a canonical URL").
func New(importers []Importer) *Resolver {
	return &Resolver{Importers: importers, parsed: map[string]*Node{}, parsing: map[string]bool{}}
}

// Canonicalize runs url through the importer chain, returning the first
// hit.
func (r *Resolver) Canonicalize(url string, fromImport bool) (string, Importer, bool) {
	for _, imp := range r.Importers {
		if canon, ok := imp.Canonicalize(url, fromImport); ok {
			return canon, imp, true
		}
	}
	return "", nil, false
}

// EnterUse marks canonicalURL as currently being resolved, for `@use`/
// `@forward` cycle detection; the caller must call Leave when resolution
// of that URL (including its own edges) completes.
func (r *Resolver) EnterUse(canonicalURL string) error {
	if r.parsing[canonicalURL] {
		return &Error{Message: fmt.Sprintf("module loop: %s is already being resolved", canonicalURL)}
	}
	r.parsing[canonicalURL] = true
	return nil
}

// Leave clears the in-progress marker set by EnterUse.
func (r *Resolver) Leave(canonicalURL string) {
	delete(r.parsing, canonicalURL)
}

// LoadEntry parses anonymous entry text (compileString input, §6) without
// going through the importer chain, since it has no URL to canonicalize
// against.
func (r *Resolver) LoadEntry(text, url string, syntax scanner.Syntax) (*Node, error) {
	src := &span.Source{URL: url, Text: text}
	p := parser.New(src, syntax)
	sheet := p.ParseStylesheet()
	if len(p.Errors) > 0 {
		return nil, &Error{Message: p.Errors[0].Message}
	}
	node := &Node{ID: uuid.New(), URL: url, Syntax: syntax, Stylesheet: sheet}
	if url != "" {
		r.parsed[url] = node
	}
	return node, nil
}

// Load canonicalizes and parses url (memoized by canonical URL, §4.2
// "each module is evaluated exactly once per compile; subsequent
// references reuse its export table" — parsing shares the same
// at-most-once discipline).
func (r *Resolver) Load(url string, fromImport bool) (*Node, error) {
	canon, imp, ok := r.Canonicalize(url, fromImport)
	if !ok {
		return nil, &Error{Message: fmt.Sprintf("can't find stylesheet to import: %q", url)}
	}
	if node, ok := r.parsed[canon]; ok {
		return node, nil
	}
	res, ok := imp.Load(canon)
	if !ok {
		return nil, &Error{Message: fmt.Sprintf("importer accepted %q but failed to load it", canon)}
	}
	syntax := res.Syntax
	src := &span.Source{URL: canon, Text: res.Contents}
	p := parser.New(src, syntax)
	sheet := p.ParseStylesheet()
	if len(p.Errors) > 0 {
		return nil, &Error{Message: fmt.Sprintf("%s: %s", canon, p.Errors[0].Message)}
	}
	node := &Node{ID: uuid.New(), URL: canon, Syntax: syntax, Stylesheet: sheet}
	r.parsed[canon] = node
	return node, nil
}

// NodeID returns the synthetic id stamped on the parsed Node for
// canonicalURL, for `--trace` diagnostics (SPEC_FULL.md DOMAIN STACK).
func (r *Resolver) NodeID(canonicalURL string) (uuid.UUID, bool) {
	n, ok := r.parsed[canonicalURL]
	if !ok {
		return uuid.UUID{}, false
	}
	return n.ID, true
}

// LoadedURLs returns every canonical URL this Resolver has parsed this
// compile, sorted for deterministic output (§6 "{css, loadedUrls,
// sourceMap?}").
func (r *Resolver) LoadedURLs() []string {
	urls := make([]string, 0, len(r.parsed))
	for u := range r.parsed {
		if u == "" {
			continue
		}
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}
