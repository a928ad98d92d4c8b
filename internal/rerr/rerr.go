// Package rerr defines the error taxonomy shared across evalrus: heap
// exhaustion, container bounds/hashing failures, and the three
// source-position-carrying stages (lexer, parser, eval).
package rerr

import "fmt"

// Kind identifies which part of the taxonomy an error belongs to, so
// callers can branch with errors.As and the Error's Kind field rather
// than string matching.
type Kind int

const (
	OOM Kind = iota
	BoundsError
	KeyError
	UnhashableError
	LexerError
	ParseError
	EvalError
)

func (k Kind) String() string {
	switch k {
	case OOM:
		return "out of memory"
	case BoundsError:
		return "bounds error"
	case KeyError:
		return "key error"
	case UnhashableError:
		return "unhashable key"
	case LexerError:
		return "lexer error"
	case ParseError:
		return "parse error"
	case EvalError:
		return "eval error"
	default:
		return "unknown error"
	}
}

// SourcePos is a 1-based line, 0-based column source location, carried
// by LexerError and ParseError so the REPL can print a caret under the
// offending column.
type SourcePos struct {
	Line int
	Col  int
}

func (p SourcePos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Error is the concrete type behind every error evalrus returns. It
// carries an optional SourcePos (present for LexerError/ParseError,
// usually absent otherwise) alongside a Kind and a message.
type Error struct {
	Kind   Kind
	Pos    *SourcePos
	Reason string
}

func (e *Error) Error() string {
	if e.Pos != nil {
		return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Reason, e.Pos)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

func NewAt(kind Kind, pos SourcePos, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: &pos, Reason: fmt.Sprintf(format, args...)}
}

func Oom(format string, args ...any) *Error          { return New(OOM, format, args...) }
func Bounds(format string, args ...any) *Error        { return New(BoundsError, format, args...) }
func KeyErr(format string, args ...any) *Error        { return New(KeyError, format, args...) }
func Unhashable(format string, args ...any) *Error    { return New(UnhashableError, format, args...) }
func Lexer(pos SourcePos, format string, args ...any) *Error {
	return NewAt(LexerError, pos, format, args...)
}
func Parse(pos SourcePos, format string, args ...any) *Error {
	return NewAt(ParseError, pos, format, args...)
}
func Eval(format string, args ...any) *Error { return New(EvalError, format, args...) }

// Is reports whether target is an *Error of the same Kind, so
// errors.Is(err, &rerr.Error{Kind: rerr.OOM}) matches any OOM error
// (Kind itself isn't an error and can't be passed to errors.Is).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}
