// Package ops defines the static operation catalog: every atom kind,
// composite operation and function the expression language knows, with
// its signature, result type and behavior flags. The parser resolves
// names against the catalog, the optimizer consults the flags, and the
// evaluator dispatches on the codes.
package ops

// Code identifies an atom kind, composite operation or function. The three
// ranges are delimited by sentinels so that range membership is a compare.
type Code uint16

const (
	atomFirst Code = iota

	Number
	Boolean
	String
	NumVarRef
	StrVarRef
	VarRef // either kind, signature use only
	VectorRef
	Format
	NiFormat
	NoFormat
	Integer
	PosInt
	ExprNodeRef
	NumVecElem

	atomLast

	compositeFirst

	Neg
	Add
	Sub
	Mul
	Div
	Pow
	Square

	Not
	And
	Or

	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	EqStr
	NeStr
	LtStr
	LeStr
	GtStr
	GeStr

	BooleanToNum
	OperandToBoolean
	ExprToBoolean

	NumVar
	StrVar
	VecElemNum
	VecElemStr

	SysCaseNum
	SysDate
	SysDate11
	SysJDate
	SysTime
	SysLength
	SysWidth

	ReturnNumber
	ReturnString

	compositeLast

	funcFirst

	FnAbs
	FnArcos
	FnArsin
	FnArtan
	FnCos
	FnSin
	FnTan
	FnExp
	FnLg10
	FnLn
	FnLngamma
	FnSqrt
	FnRnd
	FnTrunc
	FnMod
	FnMod10

	FnSum
	FnMean
	FnSD
	FnVariance
	FnCfvar
	FnMaxNum
	FnMaxStr
	FnMinNum
	FnMinStr

	FnAnyNum
	FnAnyStr
	FnRangeNum
	FnRangeStr

	FnMissing
	FnSysmis
	FnValue
	FnNmiss
	FnNvalid

	FnConcat
	FnIndex
	FnRindex
	FnLength
	FnLower
	FnUpcase
	FnLpad2
	FnLpad3
	FnRpad2
	FnRpad3
	FnLtrim1
	FnLtrim2
	FnRtrim1
	FnRtrim2
	FnSubstr2
	FnSubstr3
	FnReplace
	FnNumber
	FnString

	FnDateDMY
	FnDateMDY
	FnDateQYR
	FnDateYRDAY
	FnYrmoda
	FnDatediff
	FnTimeDays
	FnTimeHMS
	FnCtimeDays
	FnCtimeHours
	FnCtimeMinutes
	FnCtimeSeconds
	FnXdateDate
	FnXdateHour
	FnXdateJday
	FnXdateMday
	FnXdateMinute
	FnXdateMonth
	FnXdateQuarter
	FnXdateSecond
	FnXdateTday
	FnXdateTime
	FnXdateWeek
	FnXdateWkday
	FnXdateYear

	FnUniform
	FnNormal

	FnLagNum1
	FnLagNumN
	FnLagStr1
	FnLagStrN

	FnValueLabel

	FnRematch
	FnResub

	funcLast
)

// IsAtom reports whether the code is an atom kind.
func (c Code) IsAtom() bool {
	return c > atomFirst && c < atomLast
}

// IsComposite reports whether the code is a composite operation.
func (c Code) IsComposite() bool {
	return c > compositeFirst && c < compositeLast
}

// IsFunction reports whether the code is a function.
func (c Code) IsFunction() bool {
	return c > funcFirst && c < funcLast
}

// IsAuxArg reports whether an operand of the given atom kind travels as an
// inline payload in the flattened form rather than through the stacks.
func IsAuxArg(a Code) bool {
	switch a {
	case NumVarRef, StrVarRef, VarRef, VectorRef,
		Format, NiFormat, NoFormat, Integer, PosInt, ExprNodeRef:
		return true
	}
	return false
}

// Flags describe operation behavior.
type Flags uint16

const (
	// AbsorbMiss: the operation accepts missing operands instead of having
	// the evaluator propagate SYSMIS before dispatch.
	AbsorbMiss Flags = 1 << iota
	// ArrayOperand: the operation takes a trailing variable-length operand
	// list.
	ArrayOperand
	// MinValid: the function supports a .N minimum-valid-argument suffix.
	MinValid
	// NonOptimizable: the optimizer must not fold this operation.
	NonOptimizable
	// Unimplemented: parsing the operation reports an error.
	Unimplemented
	// Extension: non-standard operation; warned about in strict mode.
	Extension
	// PermOnly: unavailable after temporary transformations.
	PermOnly
	// NoAbbrev: the name must be spelled out in full.
	NoAbbrev
	// ExprNode: the flattened form carries the source location of the node
	// so the evaluator can attribute runtime warnings.
	ExprNode
)

// Operation describes one catalog entry.
type Operation struct {
	// Name as written in source. Empty for operations without a surface
	// spelling (coercions, returns).
	Name string

	// Returns is the atom kind of the result.
	Returns Code

	// Args lists the operand atom kinds. With ArrayOperand, the final
	// ArrayGran entries describe the repeating group.
	Args []Code

	Flags Flags

	// ArrayMin is the minimum number of repeating groups; ArrayGran is the
	// group size. Both zero without ArrayOperand.
	ArrayMin  int
	ArrayGran int
}

// FixedArgs returns the number of leading non-repeating operands.
func (op *Operation) FixedArgs() int {
	return len(op.Args) - op.ArrayGran
}

// ArgKind returns the atom kind of operand i, repeating the trailing
// group for array operands.
func (op *Operation) ArgKind(i int) Code {
	fixed := op.FixedArgs()
	if i < fixed {
		return op.Args[i]
	}
	return op.Args[fixed+(i-fixed)%op.ArrayGran]
}

// AcceptsArity reports whether the operation can take n operands.
func (op *Operation) AcceptsArity(n int) bool {
	if op.Flags&ArrayOperand == 0 {
		return n == len(op.Args)
	}
	fixed := op.FixedArgs()
	extra := n - fixed
	return extra >= op.ArrayMin*op.ArrayGran && extra%op.ArrayGran == 0
}

// String returns the source spelling of the operation. Operations without
// a surface spelling use a bracketed internal name.
func (c Code) String() string {
	if int(c) >= len(defs) {
		return "<invalid>"
	}
	return defs[c].Name
}

// Def returns the catalog entry for a composite or function code.
func (c Code) Def() *Operation {
	return &defs[c]
}

// AtomName returns the diagnostic name of an atom kind, the way it appears
// in type-mismatch messages.
func AtomName(c Code) string {
	switch c {
	case Number:
		return "number"
	case Boolean:
		return "boolean"
	case String:
		return "string"
	case NumVarRef:
		return "numeric variable"
	case StrVarRef:
		return "string variable"
	case VarRef:
		return "variable"
	case VectorRef:
		return "vector"
	case Format:
		return "format"
	case NiFormat:
		return "numeric input format"
	case NoFormat:
		return "numeric output format"
	case Integer:
		return "integer constant"
	case PosInt:
		return "positive integer constant"
	case NumVecElem:
		return "numeric vector element"
	}
	return "expression"
}
