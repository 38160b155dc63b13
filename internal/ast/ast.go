// Package ast defines the typed expression tree the parser builds and the
// optimizer rewrites. One node type covers both atoms (leaf payloads) and
// composites (an operation code over child nodes); the operation code
// decides which fields are meaningful.
package ast

import (
	"fmt"
	"strings"

	"github.com/kolkov/casexpr/internal/data"
	"github.com/kolkov/casexpr/internal/format"
	"github.com/kolkov/casexpr/internal/ops"
	"github.com/kolkov/casexpr/internal/token"
)

// Node is an expression tree node.
type Node struct {
	// Op is an atom kind for leaves or an operation code for composites.
	Op ops.Code

	// Args holds composite children, in operand order.
	Args []*Node

	// MinValid is the resolved minimum-valid-argument count for functions
	// with the MinValid flag; zero otherwise.
	MinValid int

	// Atom payloads; which one is live depends on Op.
	Num    float64       // Number, Boolean, Integer, PosInt
	Str    []byte        // String
	Var    *data.Variable // NumVarRef, StrVarRef
	Vector *data.Vector   // VectorRef
	Format format.Spec    // Format, NiFormat, NoFormat

	span    token.Span
	hasSpan bool
}

// NewNumber creates a numeric constant atom. SYSMIS is represented by the
// data.SysMis sentinel.
func NewNumber(v float64) *Node {
	return &Node{Op: ops.Number, Num: v}
}

// NewBoolean creates a boolean constant atom: 0, 1 or SYSMIS.
func NewBoolean(v float64) *Node {
	return &Node{Op: ops.Boolean, Num: v}
}

// NewString creates a string constant atom.
func NewString(s []byte) *Node {
	return &Node{Op: ops.String, Str: s}
}

// NewVariable creates a variable reference atom of the kind matching the
// variable's type.
func NewVariable(v *data.Variable) *Node {
	if v.IsNumeric() {
		return &Node{Op: ops.NumVarRef, Var: v}
	}
	return &Node{Op: ops.StrVarRef, Var: v}
}

// NewVector creates a vector reference atom.
func NewVector(v *data.Vector) *Node {
	return &Node{Op: ops.VectorRef, Vector: v}
}

// NewFormat creates a format atom. Coercion may later retype it in place
// to NiFormat or NoFormat.
func NewFormat(spec format.Spec) *Node {
	return &Node{Op: ops.Format, Format: spec}
}

// NewInteger creates an integer constant atom.
func NewInteger(v int) *Node {
	return &Node{Op: ops.Integer, Num: float64(v)}
}

// NewPosInt creates a positive integer constant atom.
func NewPosInt(v int) *Node {
	return &Node{Op: ops.PosInt, Num: float64(v)}
}

// Composite creates a composite node for op over the given children.
func Composite(op ops.Code, args ...*Node) *Node {
	return &Node{Op: op, Args: args}
}

// IsConstant reports whether the node is a constant atom (a number,
// boolean or string leaf).
func (n *Node) IsConstant() bool {
	switch n.Op {
	case ops.Number, ops.Boolean, ops.String, ops.Integer, ops.PosInt:
		return true
	}
	return false
}

// IsSysmisConst reports whether the node is a numeric or boolean constant
// holding SYSMIS.
func (n *Node) IsSysmisConst() bool {
	return (n.Op == ops.Number || n.Op == ops.Boolean) && n.Num == data.SysMis
}

// IsNumberConst reports whether the node is a numeric or boolean constant
// equal to v.
func (n *Node) IsNumberConst(v float64) bool {
	return (n.Op == ops.Number || n.Op == ops.Boolean) && n.Num == v
}

// Type returns the atom kind the node produces: the operation's result
// type for composites, the atom kind itself for leaves.
func (n *Node) Type() ops.Code {
	if n.Op.IsAtom() {
		return n.Op
	}
	return n.Op.Def().Returns
}

// SetSpan attributes a source range to the node.
func (n *Node) SetSpan(s token.Span) {
	n.span = s
	n.hasSpan = true
}

// Span returns the node's source range. A node without its own range
// reports the union of its children's ranges, so rewritten nodes inherit
// the location of what they replaced.
func (n *Node) Span() token.Span {
	if n.hasSpan {
		return n.span
	}
	var s token.Span
	for _, a := range n.Args {
		as := a.Span()
		if !as.Start.IsValid() {
			continue
		}
		if !s.Start.IsValid() || as.Start.Before(s.Start) {
			s.Start = as.Start
		}
		if as.End.After(s.End) {
			s.End = as.End
		}
	}
	return s
}

// String renders the tree in a compact prefix form, for tests and debug
// output.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	switch n.Op {
	case ops.Number, ops.Boolean:
		if n.Num == data.SysMis {
			sb.WriteString("sysmis")
			return
		}
		fmt.Fprintf(sb, "%v", n.Num)
	case ops.Integer, ops.PosInt:
		fmt.Fprintf(sb, "%d", int(n.Num))
	case ops.String:
		fmt.Fprintf(sb, "%q", n.Str)
	case ops.NumVarRef, ops.StrVarRef:
		sb.WriteString(n.Var.Name)
	case ops.VectorRef:
		sb.WriteString(n.Vector.Name)
	case ops.Format, ops.NiFormat, ops.NoFormat:
		sb.WriteString(n.Format.String())
	default:
		sb.WriteString("(")
		sb.WriteString(n.Op.String())
		if n.MinValid > 0 {
			fmt.Fprintf(sb, ".%d", n.MinValid)
		}
		for _, a := range n.Args {
			sb.WriteString(" ")
			a.write(sb)
		}
		sb.WriteString(")")
	}
}
