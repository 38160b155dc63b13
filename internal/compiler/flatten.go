// Package compiler turns optimized expression trees into flat postfix
// programs for the vm, and implements the tree optimizer. Folding runs the
// vm itself on one-operation programs, so the optimizer and the evaluator
// cannot disagree about an operation's semantics.
package compiler

import (
	"github.com/kolkov/casexpr/internal/ast"
	"github.com/kolkov/casexpr/internal/data"
	"github.com/kolkov/casexpr/internal/format"
	"github.com/kolkov/casexpr/internal/ops"
	"github.com/kolkov/casexpr/internal/token"
	"github.com/kolkov/casexpr/internal/vm"
)

// Flatten compiles the tree to a postfix program returning retType, which
// must be ops.Number, ops.Boolean or ops.String.
func Flatten(root *ast.Node, retType ops.Code, source string) *vm.Program {
	f := &flattener{
		prog: &vm.Program{
			ReturnType: retType,
			Source:     source,
		},
		numIndex: make(map[float64]int),
		strIndex: make(map[string]int),
		varIndex: make(map[*data.Variable]int),
		vecIndex: make(map[*data.Vector]int),
		fmtIndex: make(map[format.Spec]int),
		locIndex: make(map[token.Span]int),
	}
	f.emit(root)
	if retType == ops.String {
		f.op(ops.ReturnString)
	} else {
		f.op(ops.ReturnNumber)
	}
	f.prog.NumDepth, f.prog.StrDepth = maxDepths(root)
	return f.prog
}

type flattener struct {
	prog     *vm.Program
	numIndex map[float64]int
	strIndex map[string]int
	varIndex map[*data.Variable]int
	vecIndex map[*data.Vector]int
	fmtIndex map[format.Spec]int
	locIndex map[token.Span]int
}

func (f *flattener) op(c ops.Code) {
	f.prog.Code = append(f.prog.Code, vm.Instr(c))
}

func (f *flattener) payload(v int) {
	f.prog.Code = append(f.prog.Code, vm.Instr(v))
}

// emit generates code for a node in post order: pushed operands first,
// then the operation, then its inline payloads.
func (f *flattener) emit(n *ast.Node) {
	switch n.Op {
	case ops.Number:
		f.op(ops.Number)
		f.payload(f.numIdx(n.Num))
		return
	case ops.Boolean:
		f.op(ops.Boolean)
		f.payload(f.numIdx(n.Num))
		return
	case ops.String:
		f.op(ops.String)
		f.payload(f.strIdx(n.Str))
		return
	case ops.BooleanToNum:
		// A boolean already is its numeric value.
		f.emit(n.Args[0])
		return
	}

	def := n.Op.Def()
	for i, arg := range n.Args {
		if !ops.IsAuxArg(def.ArgKind(i)) {
			f.emit(arg)
		}
	}
	f.op(n.Op)
	for i, arg := range n.Args {
		switch def.ArgKind(i) {
		case ops.NumVarRef, ops.StrVarRef, ops.VarRef:
			f.payload(f.varIdx(arg.Var))
		case ops.VectorRef:
			f.payload(f.vecIdx(arg.Vector))
		case ops.Format, ops.NiFormat, ops.NoFormat:
			f.payload(f.fmtIdx(arg.Format))
		case ops.Integer, ops.PosInt:
			f.payload(int(arg.Num))
		}
	}
	if def.Flags&ops.ArrayOperand != 0 {
		f.payload(len(n.Args) - def.FixedArgs())
	}
	if def.Flags&ops.MinValid != 0 {
		f.payload(n.MinValid)
	}
	if def.Flags&ops.ExprNode != 0 {
		f.payload(f.locIdx(n.Span()))
	}
	f.noteLag(n)
}

// noteLag records the deepest LAG distance seen.
func (f *flattener) noteLag(n *ast.Node) {
	var lag int
	switch n.Op {
	case ops.FnLagNum1, ops.FnLagStr1:
		lag = 1
	case ops.FnLagNumN, ops.FnLagStrN:
		lag = int(n.Args[1].Num)
	default:
		return
	}
	if lag > f.prog.MaxLag {
		f.prog.MaxLag = lag
	}
}

func (f *flattener) numIdx(v float64) int {
	if i, ok := f.numIndex[v]; ok {
		return i
	}
	i := len(f.prog.Nums)
	f.prog.Nums = append(f.prog.Nums, v)
	f.numIndex[v] = i
	return i
}

func (f *flattener) strIdx(s []byte) int {
	if i, ok := f.strIndex[string(s)]; ok {
		return i
	}
	i := len(f.prog.Strs)
	f.prog.Strs = append(f.prog.Strs, s)
	f.strIndex[string(s)] = i
	return i
}

func (f *flattener) varIdx(v *data.Variable) int {
	if i, ok := f.varIndex[v]; ok {
		return i
	}
	i := len(f.prog.Vars)
	f.prog.Vars = append(f.prog.Vars, v)
	f.varIndex[v] = i
	return i
}

func (f *flattener) vecIdx(v *data.Vector) int {
	if i, ok := f.vecIndex[v]; ok {
		return i
	}
	i := len(f.prog.Vectors)
	f.prog.Vectors = append(f.prog.Vectors, v)
	f.vecIndex[v] = i
	return i
}

func (f *flattener) fmtIdx(s format.Spec) int {
	if i, ok := f.fmtIndex[s]; ok {
		return i
	}
	i := len(f.prog.Formats)
	f.prog.Formats = append(f.prog.Formats, s)
	f.fmtIndex[s] = i
	return i
}

func (f *flattener) locIdx(s token.Span) int {
	if i, ok := f.locIndex[s]; ok {
		return i
	}
	i := len(f.prog.Locs)
	f.prog.Locs = append(f.prog.Locs, s)
	f.locIndex[s] = i
	return i
}

// maxDepths computes the numeric and string stack sizes the tree needs.
func maxDepths(n *ast.Node) (numMax, strMax int) {
	numMax, strMax, _, _ = depths(n)
	return numMax, strMax
}

// depths returns the peak and final stack occupancy of evaluating n.
func depths(n *ast.Node) (numMax, strMax, numOut, strOut int) {
	switch n.Op {
	case ops.Number, ops.Boolean:
		return 1, 0, 1, 0
	case ops.String:
		return 0, 1, 0, 1
	case ops.BooleanToNum:
		return depths(n.Args[0])
	}
	if n.Op.IsAtom() {
		return 0, 0, 0, 0 // aux payload, never pushed
	}
	def := n.Op.Def()
	var curNum, curStr int
	for i, arg := range n.Args {
		if ops.IsAuxArg(def.ArgKind(i)) {
			continue
		}
		cn, cs, on, os := depths(arg)
		if curNum+cn > numMax {
			numMax = curNum + cn
		}
		if curStr+cs > strMax {
			strMax = curStr + cs
		}
		curNum += on
		curStr += os
	}
	switch def.Returns {
	case ops.String:
		strOut = 1
		if strOut > strMax {
			strMax = strOut
		}
	default:
		numOut = 1
		if numOut > numMax {
			numMax = numOut
		}
	}
	return numMax, strMax, numOut, strOut
}
