// Package logging provides the injectable warning/debug sink the
// evaluator writes `@warn`/`@debug`/deprecation notices to (§1 scope:
// "logging transport ... is emitted through an injected sink"; §6
// "logger" option).
//
// Grounded on benbjohnson-css's css.go warn/warnf helpers (an
// os.Stderr-only `func warnf(format string, args ...interface{})`),
// generalized here into an interface plus one io.Writer-backed default
// implementation, since the teacher's hardwired stderr write is exactly
// what §1's scope note says the core must not do itself.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gosass/sass/span"
)

// Logger is the sink interface the evaluator depends on (mirrored as
// eval.Logger to avoid an import cycle; the two are structurally
// identical and Go's interface satisfaction doesn't care which name a
// caller spells).
type Logger interface {
	Warn(message string, deprecation string, stack []span.Span)
	Debug(message string, sp span.Span)
}

// Writer is the default Logger: every message goes to Out, deprecation
// warnings are de-duplicated per (id, message) pair so a warning
// triggered inside a loop doesn't flood the terminal, and Debug is
// silenced entirely unless Verbose is set (§6 "verbose: bool").
type Writer struct {
	Out     io.Writer
	Verbose bool
	Quiet   bool // suppresses everything but fatal errors

	mu   sync.Mutex
	seen map[string]bool
}

// New returns a Writer over w.
func New(w io.Writer) *Writer {
	return &Writer{Out: w, seen: map[string]bool{}}
}

// Stderr is a ready-to-use Writer over os.Stderr, the CLI's default
// (§6, "cmd/sass" in SPEC_FULL.md's AMBIENT STACK).
func Stderr() *Writer { return New(os.Stderr) }

func (l *Writer) Warn(message, deprecation string, stack []span.Span) {
	if l.Quiet {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if deprecation != "" {
		key := deprecation + "\x00" + message
		if l.seen[key] {
			return
		}
		l.seen[key] = true
	}
	prefix := "Warning"
	if deprecation != "" {
		prefix = fmt.Sprintf("Deprecation Warning [%s]", deprecation)
	}
	fmt.Fprintf(l.Out, "%s: %s\n", prefix, message)
	for _, sp := range stack {
		fmt.Fprintf(l.Out, "    %s %s\n", sp.URL(), sp.Start)
	}
}

func (l *Writer) Debug(message string, sp span.Span) {
	if l.Quiet || !l.Verbose {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.Out, "%s %s DEBUG: %s\n", sp.URL(), sp.Start, message)
}

// discard silently drops every message, the default when an embedder
// supplies no logger at all.
type discard struct{}

func (discard) Warn(string, string, []span.Span) {}
func (discard) Debug(string, span.Span)           {}

// Discard is a Logger that drops everything.
var Discard Logger = discard{}
