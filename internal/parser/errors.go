// Package parser provides the recursive descent parser and type checker
// for transformation-language expressions.
package parser

import (
	"fmt"
	"strings"

	"github.com/kolkov/casexpr/internal/token"
)

// ParseError is a diagnostic produced while parsing. It implements the
// error interface and includes source position information. Notes carry
// secondary lines attached to the main message, such as the operand type
// that failed a coercion.
type ParseError struct {
	Pos     token.Position
	Message string
	Notes   []string
}

// Error returns a formatted error message with position information.
func (e *ParseError) Error() string {
	var sb strings.Builder
	if e.Pos.IsValid() {
		fmt.Fprintf(&sb, "%s: %s", e.Pos, e.Message)
	} else {
		sb.WriteString(e.Message)
	}
	for _, n := range e.Notes {
		sb.WriteString("\n\tnote: ")
		sb.WriteString(n)
	}
	return sb.String()
}

// ErrorList is a list of parse diagnostics.
type ErrorList []*ParseError

// Error returns a combined error message for all errors.
func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more errors)", el[0].Error(), len(el)-1)
	}
}

// Add appends an error to the list.
func (el *ErrorList) Add(pos token.Position, msg string) {
	*el = append(*el, &ParseError{Pos: pos, Message: msg})
}

// Err returns an error if there are any errors, nil otherwise.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

// errorf creates a ParseError at the given position with a formatted
// message.
func errorf(pos token.Position, format string, args ...any) *ParseError {
	return &ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}
