package casexpr

import (
	"fmt"
	"strings"
)

// ParseError represents a syntax or type error in expression source.
type ParseError struct {
	Line    int      // 1-based line number
	Column  int      // 1-based column number
	Message string   // Error description
	Notes   []string // Secondary lines, such as observed operand types
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&sb, "parse error at %d:%d: %s", e.Line, e.Column, e.Message)
	} else {
		fmt.Fprintf(&sb, "parse error: %s", e.Message)
	}
	for _, n := range e.Notes {
		sb.WriteString("\n\tnote: ")
		sb.WriteString(n)
	}
	return sb.String()
}
