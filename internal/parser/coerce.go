package parser

import (
	"math"

	"github.com/kolkov/casexpr/internal/ast"
	"github.com/kolkov/casexpr/internal/data"
	"github.com/kolkov/casexpr/internal/ops"
)

// coercible reports whether a node can occupy a position requiring the
// given atom kind. It mirrors coerce exactly, so overload resolution and
// conversion can never disagree. Format validity is not checked here;
// coerce reports the detailed reason when a format fails.
func coercible(n *ast.Node, to ops.Code) bool {
	from := n.Type()
	if from == to {
		return true
	}
	switch to {
	case ops.Number:
		return from == ops.Boolean
	case ops.Boolean:
		return from == ops.Number
	case ops.NumVarRef:
		return n.Op == ops.NumVar
	case ops.StrVarRef:
		return n.Op == ops.StrVar
	case ops.VarRef:
		return n.Op == ops.NumVar || n.Op == ops.StrVar
	case ops.Integer:
		_, ok := integerConst(n, math.MinInt32, math.MaxInt32)
		return ok
	case ops.PosInt:
		_, ok := integerConst(n, 1, data.MaxString)
		return ok
	case ops.NiFormat, ops.NoFormat:
		return n.Op == ops.Format
	}
	return false
}

// coerce converts n to the required atom kind, inserting conversion nodes
// where the language permits. what names the position for diagnostics,
// such as "argument 2 of SUM". Coercing a node already of the required
// kind returns it unchanged.
func (p *Parser) coerce(n *ast.Node, to ops.Code, what string) *ast.Node {
	from := n.Type()
	switch to {
	case ops.Number:
		if from == ops.Number {
			return n
		}
		if from == ops.Boolean {
			return ast.Composite(ops.BooleanToNum, n)
		}

	case ops.Boolean:
		if from == ops.Boolean {
			return n
		}
		if from == ops.Number {
			// Validated at runtime: values other than 0, 1 and SYSMIS
			// warn and yield SYSMIS, attributed to this operand.
			return ast.Composite(ops.OperandToBoolean, n)
		}

	case ops.String:
		if from == ops.String {
			return n
		}

	case ops.NumVarRef, ops.StrVarRef, ops.VarRef:
		if n.Op == ops.NumVar && to != ops.StrVarRef {
			return n.Args[0]
		}
		if n.Op == ops.StrVar && to != ops.NumVarRef {
			return n.Args[0]
		}

	case ops.VectorRef:
		if n.Op == ops.VectorRef {
			return n
		}

	case ops.Integer:
		if v, ok := integerConst(n, math.MinInt32, math.MaxInt32); ok {
			m := ast.NewInteger(v)
			m.SetSpan(n.Span())
			return m
		}

	case ops.PosInt:
		if v, ok := integerConst(n, 1, data.MaxString); ok {
			m := ast.NewPosInt(v)
			m.SetSpan(n.Span())
			return m
		}

	case ops.NiFormat, ops.NoFormat:
		if n.Op == ops.Format {
			return p.coerceFormat(n, to, what)
		}
	}

	e := p.addErrorf(n.Span().Start, "%s must be a %s", what, ops.AtomName(to))
	e.Notes = append(e.Notes, "found a "+ops.AtomName(from))
	return p.bad()
}

// coerceFormat retypes a format atom in place after validating it for the
// required direction.
func (p *Parser) coerceFormat(n *ast.Node, to ops.Code, what string) *ast.Node {
	e := p.formatProblem(n, to)
	if e != "" {
		err := p.addErrorf(n.Span().Start, "%s is not usable as %s", what, ops.AtomName(to))
		err.Notes = append(err.Notes, e)
		return p.bad()
	}
	n.Op = to
	return n
}

// formatProblem returns a note describing why the format atom cannot
// serve the required kind, or "" when it can.
func (p *Parser) formatProblem(n *ast.Node, to ops.Code) string {
	spec := n.Format
	if !spec.IsNumeric() {
		return "format " + spec.String() + " is a string format"
	}
	if to == ops.NiFormat && !spec.ValidInput() {
		return "format " + spec.String() + " is not a valid input format"
	}
	if to == ops.NoFormat && !spec.ValidOutput() {
		return "format " + spec.String() + " is not a valid output format"
	}
	return ""
}

// formatNotes appends format-validity notes to a resolution error when
// the offending argument is a format.
func (p *Parser) formatNotes(e *ParseError, n *ast.Node, want ops.Code) {
	if n.Op != ops.Format {
		return
	}
	if want != ops.NiFormat && want != ops.NoFormat {
		return
	}
	if note := p.formatProblem(n, want); note != "" {
		e.Notes = append(e.Notes, note)
	}
}

// integerConst extracts an integral numeric constant within [lo, hi].
func integerConst(n *ast.Node, lo, hi int) (int, bool) {
	if n.Op != ops.Number {
		return 0, false
	}
	v := n.Num
	if v != math.Trunc(v) || v < float64(lo) || v > float64(hi) {
		return 0, false
	}
	return int(v), true
}
