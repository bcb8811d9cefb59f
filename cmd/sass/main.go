// Command sass is the CLI driver (§6 "CLI surface"): argument parsing,
// SASS_PATH/load-path plumbing, and --watch are all external-collaborator
// concerns the core never touches (§1 scope). Grounded on
// fredcamaral-slicli/cmd/slicli/main.go's root-command-plus-
// context-cancellation-on-signal shape; --watch is grounded on
// jinterlante1206-AleutianLocal's fsnotify watcher-plus-callback pattern
// (services/trace/git/watcher.go), generalized from watching a single
// git HEAD file to watching the directories of the input stylesheets.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gosass/sass"
	"github.com/gosass/sass/importer"
	"github.com/gosass/sass/logging"
)

// Exit codes (§6 "CLI surface").
const (
	exitOK      = 0
	exitUsage   = 64
	exitCompile = 65
	exitIO      = 66
)

// config is the optional ".sassrc.yaml" project file (SPEC_FULL.md
// AMBIENT STACK "Configuration"): it only ever supplies *defaults* a
// flag can override, never anything a flag can't already express.
// QuietDeps is read but not applied: compile options take QuietDeps from
// --quiet.
type config struct {
	Style     string   `yaml:"style"`
	LoadPaths []string `yaml:"loadPaths"`
	QuietDeps bool     `yaml:"quietDeps"`
}

func loadConfig(path string) (config, error) {
	var cfg config
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

type flags struct {
	indented       bool
	stdin          bool
	loadPaths      []string
	style          string
	sourceMap      bool
	noSourceMap    bool
	sourceMapURLs  string
	embedSources   bool
	embedSourceMap bool
	quiet          bool
	color          bool
	watch          bool
	update         bool
	trace          bool
	configFile     string
}

func main() {
	var fl flags
	root := &cobra.Command{
		Use:           "sass [input[:output]]...",
		Short:         "Compile Sass/SCSS stylesheets to CSS",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args, fl)
		},
	}

	root.Flags().BoolVar(&fl.indented, "indented", false, "use the indented syntax for stdin/ambiguous input")
	root.Flags().BoolVar(&fl.stdin, "stdin", false, "read the entry stylesheet from stdin")
	root.Flags().StringArrayVar(&fl.loadPaths, "load-path", nil, "additional directory to search for imports (repeatable)")
	root.Flags().StringVar(&fl.style, "style", "", "output style: expanded or compressed")
	root.Flags().BoolVar(&fl.sourceMap, "source-map", false, "generate a source map")
	root.Flags().BoolVar(&fl.noSourceMap, "no-source-map", false, "do not generate a source map")
	root.Flags().StringVar(&fl.sourceMapURLs, "source-map-urls", "relative", "relative or absolute")
	root.Flags().BoolVar(&fl.embedSources, "embed-sources", false, "embed source file contents in the source map")
	root.Flags().BoolVar(&fl.embedSourceMap, "embed-source-map", false, "embed the source map as a data: URL in the CSS output")
	root.Flags().BoolVar(&fl.quiet, "quiet", false, "suppress warnings")
	root.Flags().BoolVar(&fl.color, "color", false, "force colored diagnostic output")
	root.Flags().BoolVar(&fl.watch, "watch", false, "recompile whenever a file in an input's directory changes")
	root.Flags().BoolVar(&fl.update, "update", false, "only compile stylesheets that are newer than their CSS output")
	root.Flags().BoolVar(&fl.trace, "trace", false, "print each loaded module's resolved URL and compile-scoped id")
	root.Flags().StringVarP(&fl.configFile, "config", "c", ".sassrc.yaml", "project config file")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		code := exitCompile
		switch err.(type) {
		case *usageError:
			code = exitUsage
		case *ioError:
			code = exitIO
		}
		os.Exit(code)
	}
}

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

type ioError struct{ msg string }

func (e *ioError) Error() string { return e.msg }

// target is one resolved "input[:output]" CLI argument (§6 "Positional
// arguments are input[:output] pairs or a single directory pair; the
// magic path '-' means stdin").
type target struct {
	input  string
	output string // "" means stdout
}

func parseTargets(args []string, stdin bool) ([]target, error) {
	if stdin {
		if len(args) > 1 {
			return nil, &usageError{"--stdin accepts at most one (output) argument"}
		}
		out := ""
		if len(args) == 1 {
			out = args[0]
		}
		return []target{{input: "-", output: out}}, nil
	}
	if len(args) == 0 {
		return nil, &usageError{"no input given; pass a file, or --stdin"}
	}
	targets := make([]target, 0, len(args))
	for _, a := range args {
		if idx := strings.LastIndex(a, ":"); idx > 1 { // idx>1 so "C:\x" drive letters aren't split
			targets = append(targets, target{input: a[:idx], output: a[idx+1:]})
		} else {
			targets = append(targets, target{input: a})
		}
	}
	return targets, nil
}

func run(ctx context.Context, args []string, fl flags) error {
	cfg, err := loadConfig(fl.configFile)
	if err != nil {
		return &ioError{err.Error()}
	}

	targets, err := parseTargets(args, fl.stdin)
	if err != nil {
		return err
	}

	logger := logging.Stderr()
	logger.Quiet = fl.quiet

	loadPaths := append(append([]string(nil), cfg.LoadPaths...), fl.loadPaths...)
	style := sass.Expanded
	styleName := fl.style
	if styleName == "" {
		styleName = cfg.Style
	}
	if styleName == "compressed" {
		style = sass.Compressed
	}

	wantMap := fl.sourceMap && !fl.noSourceMap

	compileOnce := func() error {
		for _, t := range targets {
			if err := compileTarget(ctx, t, fl, loadPaths, style, wantMap, logger); err != nil {
				return err
			}
		}
		return nil
	}

	if !fl.watch {
		return compileOnce()
	}
	return watchLoop(ctx, targets, compileOnce, logger)
}

func compileTarget(ctx context.Context, t target, fl flags, loadPaths []string, style sass.OutputStyle, wantMap bool, logger *logging.Writer) error {
	if fl.update && t.input != "-" && t.output != "" && !needsCompile(t.input, t.output) {
		return nil
	}
	var source, url, entryDir string
	if t.input == "-" {
		b, err := readAll(os.Stdin)
		if err != nil {
			return &ioError{err.Error()}
		}
		source = b
	} else {
		b, err := os.ReadFile(t.input)
		if err != nil {
			return &ioError{err.Error()}
		}
		source = string(b)
		url = "file://" + filepath.ToSlash(mustAbs(t.input))
		entryDir = filepath.Dir(t.input)
	}

	syntax := sass.SCSS
	if fl.indented || strings.HasSuffix(t.input, ".sass") {
		syntax = sass.Indented
	}

	opts := sass.Options{
		Syntax:                  syntax,
		URL:                     url,
		Style:                   style,
		SourceMap:               wantMap,
		SourceMapIncludeSources: fl.embedSources,
		Importers:               []sass.Importer{importer.NewFilesystem(entryDir, loadPaths)},
		Logger:                  logger,
		QuietDeps:               logger.Quiet,
	}

	res, err := sass.CompileStringContext(ctx, source, opts)
	if err != nil {
		return err
	}

	if fl.trace {
		for _, u := range res.LoadedURLs {
			fmt.Fprintf(os.Stderr, "trace: %s %s\n", res.ModuleIDs[u], u)
		}
	}

	css := res.CSS
	if wantMap && res.SourceMap != nil {
		mapBytes, err := json.Marshal(res.SourceMap)
		if err != nil {
			return &ioError{err.Error()}
		}
		if fl.embedSourceMap {
			css += "\n/*# sourceMappingURL=data:application/json;base64," +
				base64.StdEncoding.EncodeToString(mapBytes) + " */"
		} else if t.output != "" {
			mapPath := t.output + ".map"
			if err := os.WriteFile(mapPath, mapBytes, 0o644); err != nil {
				return &ioError{err.Error()}
			}
			css += "\n/*# sourceMappingURL=" + filepath.Base(mapPath) + " */"
		}
	}

	out := os.Stdout
	if t.output != "" {
		f, err := os.Create(t.output)
		if err != nil {
			return &ioError{err.Error()}
		}
		defer f.Close()
		out = f
	}
	fmt.Fprintln(out, css)
	return nil
}

// watchLoop recompiles targets whenever fsnotify reports a write or
// create event in a directory that holds one of the inputs (SPEC_FULL.md
// AMBIENT STACK "Filesystem watch"). Only those directories are watched:
// a dependency loaded from any other directory (res.LoadedURLs) does not
// trigger a recompile.
func watchLoop(ctx context.Context, targets []target, compileOnce func() error, logger *logging.Writer) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return &ioError{err.Error()}
	}
	defer w.Close()

	watched := map[string]bool{}
	addWatch := func(path string) {
		if path == "" || watched[path] {
			return
		}
		if err := w.Add(filepath.Dir(path)); err == nil {
			watched[path] = true
		}
	}
	for _, t := range targets {
		addWatch(t.input)
	}

	if err := compileOnce(); err != nil {
		logger.Warn(err.Error(), "", nil)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := compileOnce(); err != nil {
				logger.Warn(err.Error(), "", nil)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn(err.Error(), "", nil)
		}
	}
}

func readAll(f *os.File) (string, error) {
	var b []byte
	buf := make([]byte, 4096)
	for {
		n, err := f.Read(buf)
		b = append(b, buf[:n]...)
		if err != nil {
			break
		}
	}
	return string(b), nil
}

// needsCompile implements --update (§6 "only compile stylesheets newer
// than their CSS output"): a missing output always needs compiling, and
// this intentionally ignores the input's own @use/@forward/@import
// dependencies, the same conservative approximation dart-sass's --update
// makes without a prior build's dependency manifest.
func needsCompile(input, output string) bool {
	in, err := os.Stat(input)
	if err != nil {
		return true
	}
	out, err := os.Stat(output)
	if err != nil {
		return true
	}
	return in.ModTime().After(out.ModTime())
}

func mustAbs(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
