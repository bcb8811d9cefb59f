// Package sass is the library entry point (§6 "Library entry points"):
// it wires the module resolver, evaluator, extender, and serializer into
// the two documented shapes, CompileString and Compile, and exposes the
// Importer/Options surface an embedder configures them with. Everything
// under internal/ is plumbing; this file is the only place that is
// allowed to see all four pipeline stages at once (§2 "Pipeline").
package sass

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosass/sass/internal/ast"
	"github.com/gosass/sass/internal/eval"
	"github.com/gosass/sass/internal/extend"
	"github.com/gosass/sass/internal/resolve"
	"github.com/gosass/sass/internal/scanner"
	"github.com/gosass/sass/internal/serialize"
	"github.com/gosass/sass/logging"
	"github.com/gosass/sass/value"
)

// Syntax selects the surface grammar a source is parsed with (§6
// "syntax ∈ {scss, indented, css}").
type Syntax int

const (
	SCSS Syntax = iota
	Indented
	CSS
)

func (s Syntax) internal() scanner.Syntax {
	switch s {
	case Indented:
		return scanner.Indented
	case CSS:
		return scanner.CSS
	default:
		return scanner.SCSS
	}
}

// OutputStyle selects expanded or compressed CSS rendering (§6 "style ∈
// {expanded, compressed}").
type OutputStyle int

const (
	Expanded OutputStyle = iota
	Compressed
)

func (o OutputStyle) internal() serialize.Style {
	if o == Compressed {
		return serialize.Compressed
	}
	return serialize.Expanded
}

// Importer, LoadResult, and LegacyImporter are the injected collaborator
// shapes (§6 "Importer interface"); re-exported from internal/resolve so
// embedders never need to import an internal package to implement one.
type Importer = resolve.Importer
type LoadResult = resolve.LoadResult
type LegacyImporter = resolve.LegacyImporter

// Logger is the injected warning/debug sink (§1 scope "logging transport
// ... is emitted through an injected sink").
type Logger = eval.Logger

// Options configures one compile (§6 "Recognized options").
type Options struct {
	Syntax Syntax
	URL    string
	Style  OutputStyle

	// Charset mirrors serialize.Options.Charset: nil means enabled.
	Charset *bool

	SourceMap               bool
	SourceMapIncludeSources bool
	// SourceMapURL, if set, is appended as a sourceMappingURL comment.
	SourceMapURL string

	// Importers is the ordered chain consulted for every @use/@forward/
	// @import target (§6). compileString callers that need no imports at
	// all may leave this nil.
	Importers []Importer

	// Functions lets an embedder register first-class Go callbacks
	// reachable from Sass as ordinary function calls (§6 "functions:
	// map<signature, callback>").
	Functions map[string]value.Function

	Logger    Logger
	QuietDeps bool
	Verbose   bool

	FatalDeprecations  map[string]bool
	FutureDeprecations map[string]bool
}

// Result is what one compile produces (§6 "{css, loadedUrls,
// sourceMap?}").
type Result struct {
	CSS        string
	LoadedURLs []string
	SourceMap  *serialize.SourceMapV3

	// ModuleIDs maps each entry of LoadedURLs to the synthetic
	// compile-scoped id the resolver stamped on it, for `--trace`
	// diagnostics (SPEC_FULL.md DOMAIN STACK "google/uuid").
	ModuleIDs map[string]uuid.UUID
}

// CompileString compiles source text under the given options (§6
// "compileString(source, options)"). url, if set via Options.URL, is the
// entry's canonical identity for diagnostics and source maps; leaving it
// empty matches §7's "anonymous compileString input" case.
func CompileString(source string, opts Options) (Result, error) {
	return compile(context.Background(), source, opts)
}

// CompileStringContext is CompileString's cancellable counterpart (§5
// "a separate asynchronous entry point permits importers to return
// futures/promises ... cancellation is cooperative at
// importer-resolution boundaries"): ctx is checked whenever the
// evaluator is about to resolve a @use/@forward/@import target.
func CompileStringContext(ctx context.Context, source string, opts Options) (Result, error) {
	return compile(ctx, source, opts)
}

// Compile reads path through opts.Importers (§6 "compile(path,
// options)"). The core itself performs no filesystem I/O (§1 scope); at
// least one importer capable of resolving path — typically
// importer.NewFilesystem from package importer — must be present in
// opts.Importers, or resolution fails the same way an unresolvable
// @use would.
func Compile(path string, opts Options) (Result, error) {
	return CompileContext(context.Background(), path, opts)
}

// CompileContext is Compile's cancellable counterpart.
func CompileContext(ctx context.Context, path string, opts Options) (Result, error) {
	r := resolve.New(opts.Importers)
	node, err := r.Load(path, false)
	if err != nil {
		return Result{}, err
	}
	return runCompile(ctx, r, node.Stylesheet, node.URL, opts)
}

func compile(ctx context.Context, source string, opts Options) (Result, error) {
	r := resolve.New(opts.Importers)
	syntax := opts.Syntax.internal()
	if opts.Syntax == SCSS && opts.URL != "" {
		syntax = resolve.SyntaxForURL(opts.URL)
	}
	node, err := r.LoadEntry(source, opts.URL, syntax)
	if err != nil {
		return Result{}, err
	}
	return runCompile(ctx, r, node.Stylesheet, opts.URL, opts)
}

func runCompile(ctx context.Context, r *resolve.Resolver, sheet *ast.Stylesheet, url string, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard
	}

	fns := map[string]value.Function{}
	for name, fn := range opts.Functions {
		fns[name] = fn
	}

	ev := eval.New(r, eval.Options{
		Logger:             logger,
		Functions:          fns,
		QuietDeps:          opts.QuietDeps,
		FatalDeprecations:  opts.FatalDeprecations,
		FutureDeprecations: opts.FutureDeprecations,
	})

	root, err := ev.RunContext(ctx, sheet, url)
	if err != nil {
		return Result{}, err
	}

	if err := extend.Apply(root, ev.Extend); err != nil {
		return Result{}, err
	}

	var charset *bool
	if opts.Charset != nil {
		charset = opts.Charset
	}
	res := serialize.Serialize(root, serialize.Options{
		Style:                   opts.Style.internal(),
		Charset:                 charset,
		SourceMap:               opts.SourceMap,
		SourceMapIncludeSources: opts.SourceMapIncludeSources,
		SourceMapURL:            opts.SourceMapURL,
	})

	loadedURLs := r.LoadedURLs()
	moduleIDs := make(map[string]uuid.UUID, len(loadedURLs))
	for _, u := range loadedURLs {
		if id, ok := r.NodeID(u); ok {
			moduleIDs[u] = id
		}
	}

	return Result{CSS: res.CSS, LoadedURLs: loadedURLs, SourceMap: res.SourceMap, ModuleIDs: moduleIDs}, nil
}

// SyntaxForPath infers a Syntax the way §6's file-format lookup does,
// from a path's extension; exported for driver code (cmd/sass) that
// needs the same inference outside a compile call.
func SyntaxForPath(path string) Syntax {
	switch resolve.SyntaxForURL(path) {
	case scanner.Indented:
		return Indented
	case scanner.CSS:
		return CSS
	default:
		return SCSS
	}
}

