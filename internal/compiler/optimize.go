package compiler

import (
	"github.com/kolkov/casexpr/internal/ast"
	"github.com/kolkov/casexpr/internal/data"
	"github.com/kolkov/casexpr/internal/ops"
	"github.com/kolkov/casexpr/internal/vm"
)

// Optimize rewrites the tree bottom-up: SYSMIS absorption, constant
// folding, then algebraic identities. Folding executes the operation on
// the vm, so optimized and unoptimized evaluation agree; warnings the
// folded code raises are returned so they can surface at compile time.
// The pass is idempotent and never introduces new errors.
func Optimize(root *ast.Node, ctx *vm.Context) (*ast.Node, []vm.Warning) {
	o := &optimizer{ctx: ctx}
	out := o.node(root)
	return out, o.warnings
}

type optimizer struct {
	ctx      *vm.Context
	warnings []vm.Warning
}

func (o *optimizer) node(n *ast.Node) *ast.Node {
	if n.Op.IsAtom() {
		return n
	}
	for i, arg := range n.Args {
		n.Args[i] = o.node(arg)
	}

	def := n.Op.Def()
	if def.Flags&(ops.NonOptimizable|ops.Unimplemented) != 0 {
		return n
	}

	// A SYSMIS operand forces a SYSMIS result unless the operation
	// absorbs missing values. Only numeric and boolean results can carry
	// the sentinel.
	if def.Flags&ops.AbsorbMiss == 0 && n.Op != ops.BooleanToNum {
		ret := def.Returns
		if ret == ops.Number || ret == ops.Boolean {
			for i, arg := range n.Args {
				if ops.IsAuxArg(def.ArgKind(i)) {
					continue
				}
				if arg.IsSysmisConst() {
					return o.replace(n, constNode(ret, data.SysMis, nil))
				}
			}
		}
	}

	if foldable(n) {
		return o.fold(n)
	}

	return o.identity(n)
}

// foldable reports whether every operand of n is a constant atom.
func foldable(n *ast.Node) bool {
	if len(n.Args) == 0 && n.Op.Def().Returns == 0 {
		return false
	}
	for _, arg := range n.Args {
		if !arg.IsConstant() {
			switch arg.Op {
			case ops.Format, ops.NiFormat, ops.NoFormat:
				// Formats are compile-time values.
				continue
			}
			return false
		}
	}
	return true
}

// fold evaluates n as a one-operation program and replaces it with the
// resulting constant.
func (o *optimizer) fold(n *ast.Node) *ast.Node {
	ret := n.Type()
	prog := Flatten(n, ret, "")
	machine := vm.New(prog, o.ctx)
	var folded *ast.Node
	if ret == ops.String {
		s := machine.EvalStr(nil, 0)
		out := make([]byte, len(s))
		copy(out, s)
		folded = ast.NewString(out)
	} else {
		folded = constNode(ret, machine.EvalNum(nil, 0), nil)
	}
	o.warnings = append(o.warnings, machine.TakeWarnings()...)
	return o.replace(n, folded)
}

// identity applies the algebraic rewrites. The zero rewrites for
// multiplication, division and MOD treat a missing co-operand as zero,
// matching the source system rather than the unoptimized evaluator.
func (o *optimizer) identity(n *ast.Node) *ast.Node {
	a := n.Args
	switch n.Op {
	case ops.Add:
		if a[1].IsNumberConst(0) {
			return o.replace(n, a[0])
		}
		if a[0].IsNumberConst(0) {
			return o.replace(n, a[1])
		}
	case ops.Sub:
		if a[1].IsNumberConst(0) {
			return o.replace(n, a[0])
		}
		if a[0].IsNumberConst(0) {
			return o.replace(n, ast.Composite(ops.Neg, a[1]))
		}
	case ops.Mul:
		if a[1].IsNumberConst(1) {
			return o.replace(n, a[0])
		}
		if a[0].IsNumberConst(1) {
			return o.replace(n, a[1])
		}
		// A zero factor wins even over a missing operand.
		if a[0].IsNumberConst(0) || a[1].IsNumberConst(0) {
			return o.replace(n, ast.NewNumber(0))
		}
	case ops.Div:
		if a[1].IsNumberConst(1) {
			return o.replace(n, a[0])
		}
		if a[0].IsNumberConst(0) {
			return o.replace(n, ast.NewNumber(0))
		}
	case ops.FnMod:
		if a[0].IsNumberConst(0) {
			return o.replace(n, ast.NewNumber(0))
		}
	case ops.Pow:
		if a[1].IsNumberConst(1) {
			return o.replace(n, a[0])
		}
		if a[1].IsNumberConst(2) {
			return o.replace(n, ast.Composite(ops.Square, a[0]))
		}
	case ops.And:
		// AND with constant false is false even when the other operand
		// is missing.
		if a[0].IsNumberConst(0) || a[1].IsNumberConst(0) {
			return o.replace(n, ast.NewBoolean(0))
		}
		if a[0].IsNumberConst(1) {
			return o.replace(n, a[1])
		}
		if a[1].IsNumberConst(1) {
			return o.replace(n, a[0])
		}
	case ops.Or:
		if a[0].IsNumberConst(1) || a[1].IsNumberConst(1) {
			return o.replace(n, ast.NewBoolean(1))
		}
		if a[0].IsNumberConst(0) {
			return o.replace(n, a[1])
		}
		if a[1].IsNumberConst(0) {
			return o.replace(n, a[0])
		}
	}
	return n
}

// replace substitutes repl for orig, inheriting the original location so
// later diagnostics still point at the source the user wrote.
func (o *optimizer) replace(orig, repl *ast.Node) *ast.Node {
	if s := orig.Span(); s.Start.IsValid() {
		repl.SetSpan(s)
	}
	return repl
}

func constNode(ret ops.Code, v float64, _ []byte) *ast.Node {
	if ret == ops.Boolean {
		return ast.NewBoolean(v)
	}
	return ast.NewNumber(v)
}
