package ops

// defs is the catalog, indexed by Code. Atoms carry only a name; composite
// and function entries carry full signatures.
var defs = [funcLast + 1]Operation{
	Number:      {Name: "number"},
	Boolean:     {Name: "boolean"},
	String:      {Name: "string"},
	NumVarRef:   {Name: "num-var"},
	StrVarRef:   {Name: "str-var"},
	VarRef:      {Name: "var"},
	VectorRef:   {Name: "vector"},
	Format:      {Name: "format"},
	NiFormat:    {Name: "ni-format"},
	NoFormat:    {Name: "no-format"},
	Integer:     {Name: "integer"},
	PosInt:      {Name: "pos-int"},
	ExprNodeRef: {Name: "expr-node"},
	NumVecElem:  {Name: "num-vec-elem"},

	// Arithmetic
	Neg:    {Name: "[negate]", Returns: Number, Args: []Code{Number}},
	Add:    {Name: "+", Returns: Number, Args: []Code{Number, Number}},
	Sub:    {Name: "-", Returns: Number, Args: []Code{Number, Number}},
	Mul:    {Name: "*", Returns: Number, Args: []Code{Number, Number}},
	Div:    {Name: "/", Returns: Number, Args: []Code{Number, Number}},
	Pow:    {Name: "**", Returns: Number, Args: []Code{Number, Number}},
	Square: {Name: "[square]", Returns: Number, Args: []Code{Number}},

	// Logical, three-valued
	Not: {Name: "NOT", Returns: Boolean, Args: []Code{Boolean}},
	And: {Name: "AND", Returns: Boolean, Args: []Code{Boolean, Boolean}, Flags: AbsorbMiss},
	Or:  {Name: "OR", Returns: Boolean, Args: []Code{Boolean, Boolean}, Flags: AbsorbMiss},

	// Relational
	Eq:    {Name: "=", Returns: Boolean, Args: []Code{Number, Number}},
	Ne:    {Name: "<>", Returns: Boolean, Args: []Code{Number, Number}},
	Lt:    {Name: "<", Returns: Boolean, Args: []Code{Number, Number}},
	Le:    {Name: "<=", Returns: Boolean, Args: []Code{Number, Number}},
	Gt:    {Name: ">", Returns: Boolean, Args: []Code{Number, Number}},
	Ge:    {Name: ">=", Returns: Boolean, Args: []Code{Number, Number}},
	EqStr: {Name: "=", Returns: Boolean, Args: []Code{String, String}},
	NeStr: {Name: "<>", Returns: Boolean, Args: []Code{String, String}},
	LtStr: {Name: "<", Returns: Boolean, Args: []Code{String, String}},
	LeStr: {Name: "<=", Returns: Boolean, Args: []Code{String, String}},
	GtStr: {Name: ">", Returns: Boolean, Args: []Code{String, String}},
	GeStr: {Name: ">=", Returns: Boolean, Args: []Code{String, String}},

	// Coercions. BooleanToNum never reaches the flattened form; the other
	// two validate at runtime and warn with the node location.
	BooleanToNum:     {Name: "[bool-to-num]", Returns: Number, Args: []Code{Boolean}},
	OperandToBoolean: {Name: "[operand-to-bool]", Returns: Boolean, Args: []Code{Number}, Flags: ExprNode},
	ExprToBoolean:    {Name: "[expr-to-bool]", Returns: Boolean, Args: []Code{Number}, Flags: ExprNode},

	// Variable and vector access
	NumVar:     {Name: "[num-var-value]", Returns: Number, Args: []Code{NumVarRef}},
	StrVar:     {Name: "[str-var-value]", Returns: String, Args: []Code{StrVarRef}},
	VecElemNum: {Name: "[vec-elem-num]", Returns: Number, Args: []Code{VectorRef, Number}, Flags: ExprNode},
	VecElemStr: {Name: "[vec-elem-str]", Returns: String, Args: []Code{VectorRef, Number}, Flags: ExprNode},

	// System variables
	SysCaseNum: {Name: "$CASENUM", Returns: Number, Flags: NonOptimizable | NoAbbrev},
	SysDate:    {Name: "$DATE", Returns: String, Flags: NoAbbrev},
	SysDate11:  {Name: "$DATE11", Returns: String, Flags: NoAbbrev},
	SysJDate:   {Name: "$JDATE", Returns: Number, Flags: NoAbbrev},
	SysTime:    {Name: "$TIME", Returns: Number, Flags: NoAbbrev},
	SysLength:  {Name: "$LENGTH", Returns: Number, Flags: NoAbbrev},
	SysWidth:   {Name: "$WIDTH", Returns: Number, Flags: NoAbbrev},

	ReturnNumber: {Name: "[return-num]", Args: []Code{Number}},
	ReturnString: {Name: "[return-str]", Args: []Code{String}},

	// Mathematics
	FnAbs:     {Name: "ABS", Returns: Number, Args: []Code{Number}},
	FnArcos:   {Name: "ARCOS", Returns: Number, Args: []Code{Number}, Flags: ExprNode},
	FnArsin:   {Name: "ARSIN", Returns: Number, Args: []Code{Number}, Flags: ExprNode},
	FnArtan:   {Name: "ARTAN", Returns: Number, Args: []Code{Number}},
	FnCos:     {Name: "COS", Returns: Number, Args: []Code{Number}},
	FnSin:     {Name: "SIN", Returns: Number, Args: []Code{Number}},
	FnTan:     {Name: "TAN", Returns: Number, Args: []Code{Number}},
	FnExp:     {Name: "EXP", Returns: Number, Args: []Code{Number}},
	FnLg10:    {Name: "LG10", Returns: Number, Args: []Code{Number}, Flags: ExprNode},
	FnLn:      {Name: "LN", Returns: Number, Args: []Code{Number}, Flags: ExprNode},
	FnLngamma: {Name: "LNGAMMA", Returns: Number, Args: []Code{Number}, Flags: ExprNode},
	FnSqrt:    {Name: "SQRT", Returns: Number, Args: []Code{Number}, Flags: ExprNode},
	FnRnd:     {Name: "RND", Returns: Number, Args: []Code{Number}},
	FnTrunc:   {Name: "TRUNC", Returns: Number, Args: []Code{Number}},
	FnMod:     {Name: "MOD", Returns: Number, Args: []Code{Number, Number}},
	FnMod10:   {Name: "MOD10", Returns: Number, Args: []Code{Number}},

	// Statistical, over a trailing numeric array
	FnSum:      {Name: "SUM", Returns: Number, Args: []Code{Number}, Flags: AbsorbMiss | ArrayOperand | MinValid, ArrayMin: 1, ArrayGran: 1},
	FnMean:     {Name: "MEAN", Returns: Number, Args: []Code{Number}, Flags: AbsorbMiss | ArrayOperand | MinValid, ArrayMin: 1, ArrayGran: 1},
	FnSD:       {Name: "SD", Returns: Number, Args: []Code{Number}, Flags: AbsorbMiss | ArrayOperand | MinValid, ArrayMin: 2, ArrayGran: 1},
	FnVariance: {Name: "VARIANCE", Returns: Number, Args: []Code{Number}, Flags: AbsorbMiss | ArrayOperand | MinValid, ArrayMin: 2, ArrayGran: 1},
	FnCfvar:    {Name: "CFVAR", Returns: Number, Args: []Code{Number}, Flags: AbsorbMiss | ArrayOperand | MinValid, ArrayMin: 2, ArrayGran: 1},
	FnMaxNum:   {Name: "MAX", Returns: Number, Args: []Code{Number}, Flags: AbsorbMiss | ArrayOperand | MinValid, ArrayMin: 1, ArrayGran: 1},
	FnMaxStr:   {Name: "MAX", Returns: String, Args: []Code{String}, Flags: ArrayOperand, ArrayMin: 1, ArrayGran: 1},
	FnMinNum:   {Name: "MIN", Returns: Number, Args: []Code{Number}, Flags: AbsorbMiss | ArrayOperand | MinValid, ArrayMin: 1, ArrayGran: 1},
	FnMinStr:   {Name: "MIN", Returns: String, Args: []Code{String}, Flags: ArrayOperand, ArrayMin: 1, ArrayGran: 1},

	// Membership
	FnAnyNum:   {Name: "ANY", Returns: Boolean, Args: []Code{Number, Number}, Flags: AbsorbMiss | ArrayOperand, ArrayMin: 1, ArrayGran: 1},
	FnAnyStr:   {Name: "ANY", Returns: Boolean, Args: []Code{String, String}, Flags: ArrayOperand, ArrayMin: 1, ArrayGran: 1},
	FnRangeNum: {Name: "RANGE", Returns: Boolean, Args: []Code{Number, Number, Number}, Flags: AbsorbMiss | ArrayOperand, ArrayMin: 1, ArrayGran: 2},
	FnRangeStr: {Name: "RANGE", Returns: Boolean, Args: []Code{String, String, String}, Flags: ArrayOperand, ArrayMin: 1, ArrayGran: 2},

	// Missing-value inspection
	FnMissing: {Name: "MISSING", Returns: Boolean, Args: []Code{VarRef}},
	FnSysmis:  {Name: "SYSMIS", Returns: Boolean, Args: []Code{Number}, Flags: AbsorbMiss},
	FnValue:   {Name: "VALUE", Returns: Number, Args: []Code{NumVarRef}, Flags: NoAbbrev},
	FnNmiss:   {Name: "NMISS", Returns: Number, Args: []Code{Number}, Flags: AbsorbMiss | ArrayOperand, ArrayMin: 1, ArrayGran: 1},
	FnNvalid:  {Name: "NVALID", Returns: Number, Args: []Code{Number}, Flags: AbsorbMiss | ArrayOperand, ArrayMin: 1, ArrayGran: 1},

	// Strings
	FnConcat:  {Name: "CONCAT", Returns: String, Args: []Code{String}, Flags: ArrayOperand, ArrayMin: 1, ArrayGran: 1},
	FnIndex:   {Name: "INDEX", Returns: Number, Args: []Code{String, String}},
	FnRindex:  {Name: "RINDEX", Returns: Number, Args: []Code{String, String}},
	FnLength:  {Name: "LENGTH", Returns: Number, Args: []Code{String}},
	FnLower:   {Name: "LOWER", Returns: String, Args: []Code{String}},
	FnUpcase:  {Name: "UPCASE", Returns: String, Args: []Code{String}},
	FnLpad2:   {Name: "LPAD", Returns: String, Args: []Code{String, PosInt}},
	FnLpad3:   {Name: "LPAD", Returns: String, Args: []Code{String, PosInt, String}, Flags: ExprNode},
	FnRpad2:   {Name: "RPAD", Returns: String, Args: []Code{String, PosInt}},
	FnRpad3:   {Name: "RPAD", Returns: String, Args: []Code{String, PosInt, String}, Flags: ExprNode},
	FnLtrim1:  {Name: "LTRIM", Returns: String, Args: []Code{String}},
	FnLtrim2:  {Name: "LTRIM", Returns: String, Args: []Code{String, String}, Flags: ExprNode},
	FnRtrim1:  {Name: "RTRIM", Returns: String, Args: []Code{String}},
	FnRtrim2:  {Name: "RTRIM", Returns: String, Args: []Code{String, String}, Flags: ExprNode},
	FnSubstr2: {Name: "SUBSTR", Returns: String, Args: []Code{String, Number}},
	FnSubstr3: {Name: "SUBSTR", Returns: String, Args: []Code{String, Number, Number}},
	FnReplace: {Name: "REPLACE", Returns: String, Args: []Code{String, String, String}},
	FnNumber:  {Name: "NUMBER", Returns: Number, Args: []Code{String, NiFormat}, Flags: ExprNode},
	FnString:  {Name: "STRING", Returns: String, Args: []Code{Number, NoFormat}, Flags: ExprNode},

	// Dates and times. Date values are seconds from the calendar epoch;
	// YRMODA alone returns days.
	FnDateDMY:       {Name: "DATE.DMY", Returns: Number, Args: []Code{Number, Number, Number}, Flags: ExprNode},
	FnDateMDY:       {Name: "DATE.MDY", Returns: Number, Args: []Code{Number, Number, Number}, Flags: ExprNode},
	FnDateQYR:       {Name: "DATE.QYR", Returns: Number, Args: []Code{Number, Number}, Flags: ExprNode},
	FnDateYRDAY:     {Name: "DATE.YRDAY", Returns: Number, Args: []Code{Number, Number}, Flags: ExprNode},
	FnYrmoda:        {Name: "YRMODA", Returns: Number, Args: []Code{Number, Number, Number}, Flags: ExprNode},
	FnDatediff:      {Name: "DATEDIFF", Returns: Number, Args: []Code{Number, Number, String}, Flags: ExprNode},
	FnTimeDays:      {Name: "TIME.DAYS", Returns: Number, Args: []Code{Number}},
	FnTimeHMS:       {Name: "TIME.HMS", Returns: Number, Args: []Code{Number, Number, Number}, Flags: ExprNode},
	FnCtimeDays:     {Name: "CTIME.DAYS", Returns: Number, Args: []Code{Number}},
	FnCtimeHours:    {Name: "CTIME.HOURS", Returns: Number, Args: []Code{Number}},
	FnCtimeMinutes:  {Name: "CTIME.MINUTES", Returns: Number, Args: []Code{Number}},
	FnCtimeSeconds:  {Name: "CTIME.SECONDS", Returns: Number, Args: []Code{Number}},
	FnXdateDate:     {Name: "XDATE.DATE", Returns: Number, Args: []Code{Number}},
	FnXdateHour:     {Name: "XDATE.HOUR", Returns: Number, Args: []Code{Number}},
	FnXdateJday:     {Name: "XDATE.JDAY", Returns: Number, Args: []Code{Number}},
	FnXdateMday:     {Name: "XDATE.MDAY", Returns: Number, Args: []Code{Number}},
	FnXdateMinute:   {Name: "XDATE.MINUTE", Returns: Number, Args: []Code{Number}},
	FnXdateMonth:    {Name: "XDATE.MONTH", Returns: Number, Args: []Code{Number}},
	FnXdateQuarter:  {Name: "XDATE.QUARTER", Returns: Number, Args: []Code{Number}},
	FnXdateSecond:   {Name: "XDATE.SECOND", Returns: Number, Args: []Code{Number}},
	FnXdateTday:     {Name: "XDATE.TDAY", Returns: Number, Args: []Code{Number}},
	FnXdateTime:     {Name: "XDATE.TIME", Returns: Number, Args: []Code{Number}},
	FnXdateWeek:     {Name: "XDATE.WEEK", Returns: Number, Args: []Code{Number}},
	FnXdateWkday:    {Name: "XDATE.WKDAY", Returns: Number, Args: []Code{Number}},
	FnXdateYear:     {Name: "XDATE.YEAR", Returns: Number, Args: []Code{Number}},

	// Random draws
	FnUniform: {Name: "UNIFORM", Returns: Number, Args: []Code{Number}, Flags: NonOptimizable},
	FnNormal:  {Name: "NORMAL", Returns: Number, Args: []Code{Number}, Flags: NonOptimizable},

	// Case history
	FnLagNum1: {Name: "LAG", Returns: Number, Args: []Code{NumVarRef}, Flags: NonOptimizable | PermOnly},
	FnLagNumN: {Name: "LAG", Returns: Number, Args: []Code{NumVarRef, PosInt}, Flags: NonOptimizable | PermOnly},
	FnLagStr1: {Name: "LAG", Returns: String, Args: []Code{StrVarRef}, Flags: NonOptimizable | PermOnly},
	FnLagStrN: {Name: "LAG", Returns: String, Args: []Code{StrVarRef, PosInt}, Flags: NonOptimizable | PermOnly},

	FnValueLabel: {Name: "VALUELABEL", Returns: String, Args: []Code{VarRef}, Flags: Unimplemented},

	// Extensions
	FnRematch: {Name: "REMATCH", Returns: Boolean, Args: []Code{String, String}, Flags: Extension | ExprNode},
	FnResub:   {Name: "RESUB", Returns: String, Args: []Code{String, String, String}, Flags: Extension | ExprNode},
}
