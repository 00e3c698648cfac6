// Package errors defines the closed set of diagnostics Prism programs
// can raise, from lexing through evaluation, and formats them with
// caret-pointing source context.
package errors

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/prism-lang/prism/internal/token"
	"github.com/prism-lang/prism/internal/value"
)

// Kind identifies which diagnostic a PrismError represents.
type Kind int

const (
	Lexical Kind = iota
	Parse
	UndefinedVariable
	UndefinedField
	ArityError
	TypeMismatch
	IndexOutOfBounds
	DivisionByZero
	InvalidConfidence
	InvalidContextNesting
	ModuleNotFound
	ModuleAlreadyExists
	ExportNotFound
	VerificationFailed
	MatchExhaustion
	UserError
	HostCallFailed
)

var kindNames = map[Kind]string{
	Lexical:               "LexicalError",
	Parse:                 "ParseError",
	UndefinedVariable:     "UndefinedVariable",
	UndefinedField:        "UndefinedField",
	ArityError:            "ArityError",
	TypeMismatch:          "TypeMismatch",
	IndexOutOfBounds:      "IndexOutOfBounds",
	DivisionByZero:        "DivisionByZero",
	InvalidConfidence:     "InvalidConfidence",
	InvalidContextNesting: "InvalidContextNesting",
	ModuleNotFound:        "ModuleNotFound",
	ModuleAlreadyExists:   "ModuleAlreadyExists",
	ExportNotFound:        "ExportNotFound",
	VerificationFailed:    "VerificationFailed",
	MatchExhaustion:       "MatchExhaustion",
	UserError:             "UserError",
	HostCallFailed:        "HostCallFailed",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UnknownError"
}

// PrismError is the single error type every stage of the pipeline
// raises. HostCallFailed carries a CorrelationID so a failing host
// invocation can be traced back through logs.
type PrismError struct {
	Kind          Kind
	Message       string
	Pos           token.Position
	CorrelationID string
	// Value carries the thrown payload for UserError, so `try / catch`
	// can bind it to the catch variable instead of re-parsing Message.
	Value value.Value
}

func (e *PrismError) Error() string {
	if e.CorrelationID != "" {
		return fmt.Sprintf("%s: %s at %s (correlation %s)", e.Kind, e.Message, e.Pos, e.CorrelationID)
	}
	return fmt.Sprintf("%s: %s at %s", e.Kind, e.Message, e.Pos)
}

// New constructs a PrismError of the given kind at pos.
func New(kind Kind, pos token.Position, format string, args ...any) *PrismError {
	return &PrismError{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// NewUserError constructs a UserError carrying the thrown Value so a
// `try / catch` block can bind it to its catch variable unchanged.
func NewUserError(pos token.Position, v value.Value) *PrismError {
	return &PrismError{Kind: UserError, Message: v.String(), Pos: pos, Value: v}
}

// NewHostCallFailed constructs a HostCallFailed error stamped with a
// fresh correlation ID, for logs to tie back to the originating call.
func NewHostCallFailed(pos token.Position, format string, args ...any) *PrismError {
	return &PrismError{
		Kind:          HostCallFailed,
		Message:       fmt.Sprintf(format, args...),
		Pos:           pos,
		CorrelationID: uuid.NewString(),
	}
}

// Format renders the error with a line of source context and a caret
// pointing at the offending column, in the teacher's diagnostic style.
func (e *PrismError) Format(source string) string {
	lines := strings.Split(source, "\n")
	if e.Pos.Line < 1 || e.Pos.Line > len(lines) {
		return e.Error()
	}
	line := lines[e.Pos.Line-1]
	col := e.Pos.Column
	if col < 1 {
		col = 1
	}
	caret := strings.Repeat(" ", col-1) + "^"
	return fmt.Sprintf("%s\n  %4d | %s\n       | %s", e.Error(), e.Pos.Line, line, caret)
}

// FormatErrors joins multiple errors' Format output, separated by a
// blank line, to report an entire batch at once.
func FormatErrors(errs []*PrismError, source string) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Format(source)
	}
	return strings.Join(parts, "\n\n")
}

// Is reports whether err is a *PrismError of the given kind, for use
// with errors.Is-style call sites that only care about the kind.
func Is(err error, kind Kind) bool {
	pe, ok := err.(*PrismError)
	return ok && pe.Kind == kind
}
