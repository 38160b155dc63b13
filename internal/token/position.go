package token

import "fmt"

// Position locates a byte in the expression text. Expressions arrive as
// part of a command line, so there is no file name; the host prefixes its
// own context when it reports a diagnostic.
type Position struct {
	// Line number, 1-based. Multi-line expressions occur when a command
	// continues across lines.
	Line int
	// Column is the 1-based byte offset on the line.
	Column int
	// Offset is the byte offset from the start of the expression, 0-based.
	Offset int
}

// String renders the position as "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid reports whether the position was actually set; the zero value
// means unknown.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Before reports whether p precedes other in the source.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

// After reports whether p follows other in the source.
func (p Position) After(other Position) bool {
	if p.Line != other.Line {
		return p.Line > other.Line
	}
	return p.Column > other.Column
}

// Span is the source range of a token or expression node, Start inclusive
// to End exclusive. Runtime warnings carry spans so the evaluator can
// point at the operand that misbehaved.
type Span struct {
	Start Position
	End   Position
}

// String renders the span compactly, collapsing the line number when the
// span stays on one line.
func (s Span) String() string {
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%s-%d", s.Start.String(), s.End.Column)
	}
	return fmt.Sprintf("%s-%s", s.Start.String(), s.End.String())
}
