package eval

import (
	"fmt"
	"strings"

	"github.com/gosass/sass/span"
)

// RuntimeError is §7's SassRuntimeException: a semantic failure carrying
// a stack of spans, the current call chain, appended to as the error
// unwinds through nested statement/expression evaluation.
type RuntimeError struct {
	Message string
	Stack   []span.Span
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, sp := range e.Stack {
		fmt.Fprintf(&b, "\n  at %s:%s", sp.URL(), sp.Start)
	}
	return b.String()
}

// wrapErr converts any error crossing a node boundary into a
// RuntimeError carrying sp, or appends sp to an existing RuntimeError
// (§7 "SassScriptException ... converted to a SassRuntimeException with
// a span when they cross a node boundary"; "the evaluator appends the
// current node span to the exception's call stack as it unwinds").
func wrapErr(err error, sp span.Span) error {
	if err == nil {
		return nil
	}
	if re, ok := err.(*RuntimeError); ok {
		re.Stack = append(re.Stack, sp)
		return re
	}
	return &RuntimeError{Message: err.Error(), Stack: []span.Span{sp}}
}

// UserError is raised by `@error` (§4.3 "@error. Halts compilation with
// a user-facing error whose message is the stringification of its
// expression").
type UserError struct {
	Message string
	Stack   []span.Span
}

func (e *UserError) Error() string { return "Error: " + e.Message }

// FatalDeprecationError is raised when a deprecation identifier in the
// fatal set fires (§7 "a fatal deprecation raises an error with the same
// message when the deprecation identifier is in the fatal set").
type FatalDeprecationError struct {
	ID      string
	Message string
}

func (e *FatalDeprecationError) Error() string { return e.Message }
