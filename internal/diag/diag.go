// Package diag implements the compiler's error reporting: a single Error
// type carrying the failing node and an optional pass name, and an
// ErrorList that accumulates every error found during one compilation
// instead of aborting at the first one, the way mtail's codegen.ErrorList
// does for its bytecode compiler.
package diag

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind classifies an Error for callers that want to react differently to,
// say, a verifier failure versus a lowering-pass internal error.
type Kind int

const (
	KindVerifier Kind = iota
	KindPass
	KindEmit
)

func (k Kind) String() string {
	switch k {
	case KindVerifier:
		return "verifier"
	case KindPass:
		return "pass"
	case KindEmit:
		return "emit"
	default:
		return "error"
	}
}

// Error is one compiler diagnostic. Node is the arena node id the error was
// raised against, kept as a string (via fmt.Stringer) rather than an
// *ir.Node field so this package never imports ir.
type Error struct {
	Kind Kind
	Pass string
	Node string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", e.Kind)
	if e.Pass != "" {
		fmt.Fprintf(&b, " %s:", e.Pass)
	}
	if e.Node != "" {
		fmt.Fprintf(&b, " %s:", e.Node)
	}
	fmt.Fprintf(&b, " %s", e.Err)
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps cause with context, the way pkg/errors.Wrap does throughout
// mtail's codegen, except it preserves Kind/Pass/Node as structured fields
// instead of only a formatted string.
func New(kind Kind, pass, node string, cause error) *Error {
	return &Error{Kind: kind, Pass: pass, Node: node, Err: errors.WithStack(cause)}
}

func Errorf(kind Kind, pass, node, format string, args ...interface{}) *Error {
	return New(kind, pass, node, fmt.Errorf(format, args...))
}

// List accumulates Errors across an entire pass run or verification sweep,
// mirroring mtail's codegen.ErrorList: callers keep walking the module after
// a failure so one run reports everything wrong with it, not just the first
// mistake.
type List []*Error

func (l *List) Add(kind Kind, pass, node string, cause error) {
	*l = append(*l, New(kind, pass, node, cause))
}

func (l *List) Addf(kind Kind, pass, node, format string, args ...interface{}) {
	*l = append(*l, Errorf(kind, pass, node, format, args...))
}

func (l List) Error() string {
	parts := make([]string, len(l))
	for i, e := range l {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "\n")
}

// AsError returns l as an error, or nil if l is empty; callers return
// errs.AsError() from a function that collects into a List so a
// no-errors run still satisfies a plain `error` return type with nil.
func (l List) AsError() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
