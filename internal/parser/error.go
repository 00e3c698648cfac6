package parser

import (
	"fmt"

	prismerrors "github.com/prism-lang/prism/internal/errors"
	"github.com/prism-lang/prism/internal/token"
)

// ParserError is a single accumulated syntax error. The parser keeps
// going after recording one, recovering at the next statement
// boundary, so a single pass can report every syntax problem in a
// file instead of stopping at the first. Kind classifies the error
// per the closed error taxonomy (spec.md §7); it defaults to Parse
// but a handful of syntactically-valid-but-semantically-rejected
// literals (e.g. a confidence value outside [0,1]) carry their own,
// more specific kind instead.
type ParserError struct {
	Message string
	Pos     token.Position
	Kind    prismerrors.Kind
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("%s: %s at %s", e.Kind, e.Message, e.Pos)
}

func newError(pos token.Position, format string, args ...any) *ParserError {
	return &ParserError{Message: fmt.Sprintf(format, args...), Pos: pos, Kind: prismerrors.Parse}
}

func newErrorKind(kind prismerrors.Kind, pos token.Position, format string, args ...any) *ParserError {
	return &ParserError{Message: fmt.Sprintf(format, args...), Pos: pos, Kind: kind}
}
