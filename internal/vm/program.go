// Package vm implements the compiled form of an expression and its
// evaluator: a flat postfix instruction stream over constant pools and
// side tables, executed with a numeric stack, a string stack and a
// per-evaluation byte arena.
package vm

import (
	"fmt"
	"strings"

	"github.com/kolkov/casexpr/internal/data"
	"github.com/kolkov/casexpr/internal/format"
	"github.com/kolkov/casexpr/internal/ops"
	"github.com/kolkov/casexpr/internal/token"
)

// Instr is one slot of the instruction stream: an operation code or an
// inline payload (pool index, operand count, minimum-valid count, literal
// integer, or location index).
type Instr int32

// Program is a compiled expression.
type Program struct {
	// Code is the postfix instruction stream. Each operation is followed
	// by its payloads: pool indexes for aux operands in signature order,
	// then the array operand count, the minimum-valid count, and the
	// location index, each only when the operation calls for it.
	Code []Instr

	// Constant pools and side tables.
	Nums    []float64
	Strs    [][]byte
	Vars    []*data.Variable
	Vectors []*data.Vector
	Formats []format.Spec
	Locs    []token.Span

	// ReturnType is ops.Number, ops.Boolean or ops.String.
	ReturnType ops.Code

	// Stack sizes computed at flatten time.
	NumDepth int
	StrDepth int

	// MaxLag is the deepest LAG distance, zero when none.
	MaxLag int

	// Source is the expression text, kept for diagnostics.
	Source string
}

// payloadCount returns how many inline payload slots follow the operation
// in the instruction stream.
func payloadCount(c ops.Code) int {
	def := c.Def()
	n := 0
	for _, a := range def.Args {
		if ops.IsAuxArg(a) {
			n++
		}
	}
	if def.Flags&ops.ArrayOperand != 0 {
		n++
	}
	if def.Flags&ops.MinValid != 0 {
		n++
	}
	if def.Flags&ops.ExprNode != 0 {
		n++
	}
	return n
}

// Disassemble returns a human-readable dump of the program: pools first,
// then the instruction stream with payloads decoded.
func (p *Program) Disassemble() string {
	var sb strings.Builder

	if len(p.Nums) > 0 {
		sb.WriteString("=== Numbers ===\n")
		for i, n := range p.Nums {
			if n == data.SysMis {
				fmt.Fprintf(&sb, "  [%d] SYSMIS\n", i)
			} else {
				fmt.Fprintf(&sb, "  [%d] %v\n", i, n)
			}
		}
		sb.WriteString("\n")
	}
	if len(p.Strs) > 0 {
		sb.WriteString("=== Strings ===\n")
		for i, s := range p.Strs {
			fmt.Fprintf(&sb, "  [%d] %q\n", i, s)
		}
		sb.WriteString("\n")
	}
	if len(p.Vars) > 0 {
		sb.WriteString("=== Variables ===\n")
		for i, v := range p.Vars {
			fmt.Fprintf(&sb, "  [%d] %s\n", i, v.Name)
		}
		sb.WriteString("\n")
	}
	if len(p.Vectors) > 0 {
		sb.WriteString("=== Vectors ===\n")
		for i, v := range p.Vectors {
			fmt.Fprintf(&sb, "  [%d] %s\n", i, v.Name)
		}
		sb.WriteString("\n")
	}
	if len(p.Formats) > 0 {
		sb.WriteString("=== Formats ===\n")
		for i, f := range p.Formats {
			fmt.Fprintf(&sb, "  [%d] %s\n", i, f)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("=== Code ===\n")
	for i := 0; i < len(p.Code); i++ {
		op := ops.Code(p.Code[i])
		fmt.Fprintf(&sb, "  %04d: %s", i, opLabel(op))
		switch op {
		case ops.Number, ops.Boolean:
			i++
			idx := int(p.Code[i])
			if p.Nums[idx] == data.SysMis {
				fmt.Fprintf(&sb, " [%d] = SYSMIS", idx)
			} else {
				fmt.Fprintf(&sb, " [%d] = %v", idx, p.Nums[idx])
			}
		case ops.String:
			i++
			idx := int(p.Code[i])
			fmt.Fprintf(&sb, " [%d] = %q", idx, p.Strs[idx])
		default:
			def := op.Def()
			for _, a := range def.Args {
				if !ops.IsAuxArg(a) {
					continue
				}
				i++
				idx := int(p.Code[i])
				switch a {
				case ops.NumVarRef, ops.StrVarRef, ops.VarRef:
					fmt.Fprintf(&sb, " var[%d]=%s", idx, p.Vars[idx].Name)
				case ops.VectorRef:
					fmt.Fprintf(&sb, " vec[%d]=%s", idx, p.Vectors[idx].Name)
				case ops.Format, ops.NiFormat, ops.NoFormat:
					fmt.Fprintf(&sb, " fmt[%d]=%s", idx, p.Formats[idx])
				case ops.Integer, ops.PosInt:
					fmt.Fprintf(&sb, " int=%d", idx)
				default:
					fmt.Fprintf(&sb, " [%d]", idx)
				}
			}
			if def.Flags&ops.ArrayOperand != 0 {
				i++
				fmt.Fprintf(&sb, " n=%d", p.Code[i])
			}
			if def.Flags&ops.MinValid != 0 {
				i++
				fmt.Fprintf(&sb, " min=%d", p.Code[i])
			}
			if def.Flags&ops.ExprNode != 0 {
				i++
				fmt.Fprintf(&sb, " loc=%s", p.Locs[p.Code[i]])
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// opLabel names an instruction for disassembly. Operators share their
// source spelling between numeric and string variants, so the string
// variants are suffixed.
func opLabel(c ops.Code) string {
	switch c {
	case ops.Number:
		return "number"
	case ops.Boolean:
		return "boolean"
	case ops.String:
		return "string"
	case ops.EqStr, ops.NeStr, ops.LtStr, ops.LeStr, ops.GtStr, ops.GeStr:
		return c.String() + " (string)"
	}
	return c.String()
}
