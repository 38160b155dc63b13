package parser

import (
	"strings"
	"testing"

	"github.com/kolkov/casexpr/internal/ast"
	"github.com/kolkov/casexpr/internal/data"
	"github.com/kolkov/casexpr/internal/ops"
)

func parseTree(t *testing.T, src string, dict *data.Dictionary) *ast.Node {
	t.Helper()
	root, _, err := Parse(src, dict, 0, Options{})
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return root
}

func parseErr(t *testing.T, src string, dict *data.Dictionary) string {
	t.Helper()
	_, _, err := Parse(src, dict, 0, Options{})
	if err == nil {
		t.Fatalf("Parse(%q) succeeded, want error", src)
	}
	return err.Error()
}

func testDict(t *testing.T) *data.Dictionary {
	t.Helper()
	d := data.NewDictionary()
	for _, name := range []string{"a", "b", "c"} {
		if _, err := d.CreateVariable(name, 0); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := d.CreateVariable("s", 8); err != nil {
		t.Fatal(err)
	}
	a, _ := d.LookupVariable("a")
	b, _ := d.LookupVariable("b")
	if _, err := d.CreateVector("v", []*data.Variable{a, b}); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(+ 1 (* 2 3))"},
		{"(1 + 2) * 3", "(* (+ 1 2) 3)"},
		{"1 - 2 - 3", "(- (- 1 2) 3)"},
		{"6 / 3 / 2", "(/ (/ 6 3) 2)"},
		{"1 + 2 ** 3", "(+ 1 (** 2 3))"},
		{"2 ** 3 ** 2", "(** (** 2 3) 2)"},
		{"-2 ** 2", "([negate] (** 2 2))"},
		{"- 2 ** 2", "([negate] (** 2 2))"},
		{"(-2) ** 2", "(** -2 2)"},
		{"2 ** -3", "(** 2 -3)"},
		{"1.5", "1.5"},
		{"-1.5", "-1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			root := parseTree(t, tt.src, nil)
			if got := root.String(); got != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.src, got, tt.want)
			}
		})
	}
}

func TestBooleanCoercion(t *testing.T) {
	// Numeric operands of AND/OR/NOT get a runtime-checked coercion.
	root := parseTree(t, "1 AND 0", nil)
	want := "(AND ([operand-to-bool] 1) ([operand-to-bool] 0))"
	if got := root.String(); got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	// A comparison is already boolean; no coercion node appears.
	root = parseTree(t, "1 < 2 OR 3 > 4", nil)
	want = "(OR (< 1 2) (> 3 4))"
	if got := root.String(); got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	root = parseTree(t, "NOT 1 = 2", nil)
	want = "(NOT (= 1 2))"
	if got := root.String(); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestChainedRelational(t *testing.T) {
	root, warns, err := Parse("1 < 2 < 3", nil, 0, Options{})
	if err != nil {
		t.Fatal(err)
	}
	// Left-to-right: the boolean result of 1<2 feeds the next comparison
	// as a number.
	want := "(< ([bool-to-num] (< 1 2)) 3)"
	if got := root.String(); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	if len(warns) != 1 || !strings.Contains(warns[0].Message, "AND") {
		t.Errorf("want one warning suggesting AND, got %v", warns)
	}
}

func TestPowChainWarning(t *testing.T) {
	_, warns, err := Parse("2 ** 3 ** 2", nil, 0, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(warns) != 1 || !strings.Contains(warns[0].Message, "parentheses") {
		t.Errorf("want one warning suggesting parentheses, got %v", warns)
	}
}

func TestStringComparison(t *testing.T) {
	root := parseTree(t, "'abc' = 'abd'", nil)
	if root.Op != ops.EqStr {
		t.Errorf("op = %v, want EqStr", root.Op)
	}
	d := testDict(t)
	root = parseTree(t, "s > 'm'", d)
	if root.Op != ops.GtStr {
		t.Errorf("op = %v, want GtStr", root.Op)
	}
}

func TestStringNumberMismatch(t *testing.T) {
	msg := parseErr(t, `"abc" + "def"`, nil)
	if !strings.Contains(msg, "both operands of + must be numeric") {
		t.Errorf("unexpected message: %s", msg)
	}
	msg = parseErr(t, "'abc' + 1", nil)
	if !strings.Contains(msg, "left operand is a string") {
		t.Errorf("unexpected message: %s", msg)
	}
	// Mixed comparison: string left selects the string variant, which the
	// numeric right side cannot satisfy.
	msg = parseErr(t, "'abc' = 1", nil)
	if !strings.Contains(msg, "must be strings") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestVariables(t *testing.T) {
	d := testDict(t)
	root := parseTree(t, "a + b", d)
	if root.Op != ops.Add {
		t.Fatalf("op = %v", root.Op)
	}
	if root.Args[0].Op != ops.NumVar || root.Args[1].Op != ops.NumVar {
		t.Errorf("operands should be numeric variable reads: %s", root)
	}

	root = parseTree(t, "s", d)
	if root.Op != ops.StrVar {
		t.Errorf("op = %v, want StrVar", root.Op)
	}
}

func TestUnknownIdentifier(t *testing.T) {
	msg := parseErr(t, "nosuch + 1", testDict(t))
	if !strings.Contains(msg, "nosuch") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestSystemConstants(t *testing.T) {
	root := parseTree(t, "$SYSMIS", nil)
	if !root.IsSysmisConst() {
		t.Errorf("$SYSMIS = %s", root)
	}
	root = parseTree(t, "$TRUE", nil)
	if root.Op != ops.Boolean || root.Num != 1 {
		t.Errorf("$TRUE = %s", root)
	}
	root = parseTree(t, "$false", nil)
	if root.Op != ops.Boolean || root.Num != 0 {
		t.Errorf("$false = %s", root)
	}
	root = parseTree(t, "$CASENUM", nil)
	if root.Op != ops.SysCaseNum {
		t.Errorf("$CASENUM op = %v", root.Op)
	}
	if msg := parseErr(t, "$NOPE", nil); !strings.Contains(msg, "system variable") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestFunctionCall(t *testing.T) {
	root := parseTree(t, "TRUNC(3.7)", nil)
	if root.Op != ops.FnTrunc || len(root.Args) != 1 {
		t.Fatalf("TRUNC parse = %s", root)
	}

	root = parseTree(t, "SUM(1, 2, 3)", nil)
	if root.Op != ops.FnSum || len(root.Args) != 3 {
		t.Fatalf("SUM parse = %s", root)
	}

	// Abbreviation resolves to the same function.
	root = parseTree(t, "TRU(3.7)", nil)
	if root.Op != ops.FnTrunc {
		t.Errorf("TRU op = %v, want FnTrunc", root.Op)
	}
}

func TestFunctionOverloads(t *testing.T) {
	d := testDict(t)
	root := parseTree(t, "MAX(a, b)", d)
	if root.Op != ops.FnMaxNum {
		t.Errorf("numeric MAX op = %v", root.Op)
	}
	root = parseTree(t, "MAX(s, 'zzz')", d)
	if root.Op != ops.FnMaxStr {
		t.Errorf("string MAX op = %v", root.Op)
	}
	root = parseTree(t, "LAG(a)", d)
	if root.Op != ops.FnLagNum1 {
		t.Errorf("LAG op = %v", root.Op)
	}
	root = parseTree(t, "LAG(s, 2)", d)
	if root.Op != ops.FnLagStrN {
		t.Errorf("LAG/2 op = %v", root.Op)
	}
}

func TestMinValidSuffix(t *testing.T) {
	root := parseTree(t, "MEAN.2(1, 2, 3)", nil)
	if root.Op != ops.FnMean || root.MinValid != 2 {
		t.Errorf("MEAN.2 = op %v minValid %d", root.Op, root.MinValid)
	}

	if msg := parseErr(t, "MEAN.4(1, 2, 3)", nil); !strings.Contains(msg, "minimum valid count") {
		t.Errorf("unexpected message: %s", msg)
	}
	if msg := parseErr(t, "TRUNC.2(3.7)", nil); !strings.Contains(msg, "minimum valid") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestToExpansion(t *testing.T) {
	d := testDict(t)
	root := parseTree(t, "SUM(a TO c)", d)
	if root.Op != ops.FnSum || len(root.Args) != 3 {
		t.Fatalf("SUM(a TO c) = %s", root)
	}
	for i, arg := range root.Args {
		if arg.Op != ops.NumVar {
			t.Errorf("arg %d op = %v, want NumVar", i, arg.Op)
		}
	}

	if msg := parseErr(t, "SUM(c TO a)", d); !strings.Contains(msg, "precedes") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestVectorElement(t *testing.T) {
	d := testDict(t)
	root := parseTree(t, "v(2)", d)
	if root.Op != ops.VecElemNum {
		t.Fatalf("v(2) op = %v", root.Op)
	}
	if len(root.Args) != 2 || root.Args[0].Op != ops.VectorRef {
		t.Errorf("v(2) = %s", root)
	}

	if msg := parseErr(t, "v('x')", d); !strings.Contains(msg, "index") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestResolutionErrors(t *testing.T) {
	tests := []struct {
		src  string
		frag string
	}{
		{"NOSUCHFN(1)", "no function or vector"},
		{"TRUNC(1, 2)", "does not match"},
		{"SUM()", "does not match"},
		{"MISSING(1)", "type mismatch"},
		{"LPAD('x', 0)", "type mismatch"},
		{"VALUELABEL(1)", "type mismatch"}, // literal is not a variable
	}
	d := testDict(t)
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			msg := parseErr(t, tt.src, d)
			if !strings.Contains(msg, tt.frag) {
				t.Errorf("Parse(%q) error %q, want fragment %q", tt.src, msg, tt.frag)
			}
		})
	}
}

func TestUnimplemented(t *testing.T) {
	d := testDict(t)
	msg := parseErr(t, "VALUELABEL(a)", d)
	if !strings.Contains(msg, "not available") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestPermOnlyWarning(t *testing.T) {
	d := testDict(t)
	_, warns, err := Parse("LAG(a)", d, 0, Options{TemporaryActive: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(warns) != 1 || !strings.Contains(warns[0].Message, "TEMPORARY") {
		t.Errorf("want TEMPORARY warning, got %v", warns)
	}
	if _, warns, _ = Parse("LAG(a)", d, 0, Options{}); len(warns) != 0 {
		t.Errorf("unexpected warnings: %v", warns)
	}
}

func TestExtensionWarning(t *testing.T) {
	_, warns, err := Parse("REMATCH('abc', 'a.c')", nil, 0, Options{Strict: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(warns) != 1 || !strings.Contains(warns[0].Message, "extension") {
		t.Errorf("want extension warning, got %v", warns)
	}
	if _, warns, _ = Parse("REMATCH('abc', 'a.c')", nil, 0, Options{}); len(warns) != 0 {
		t.Errorf("unexpected warnings: %v", warns)
	}
}

func TestFormatArguments(t *testing.T) {
	root := parseTree(t, "NUMBER('1234', F4.2)", nil)
	if root.Op != ops.FnNumber {
		t.Fatalf("op = %v", root.Op)
	}
	if root.Args[1].Op != ops.NiFormat {
		t.Errorf("format arg retyped to %v, want NiFormat", root.Args[1].Op)
	}

	// WKDAY is output-only, so it cannot serve as an input format.
	msg := parseErr(t, "NUMBER('MONDAY', WKDAY9)", nil)
	if !strings.Contains(msg, "input format") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestTargetCoercion(t *testing.T) {
	// Boolean target wraps a numeric root.
	root, _, err := Parse("1 + 1", nil, ops.Boolean, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if root.Op != ops.ExprToBoolean {
		t.Errorf("op = %v, want ExprToBoolean", root.Op)
	}

	// A boolean root satisfies a numeric target via the no-op coercion.
	root, _, err = Parse("1 < 2", nil, ops.Number, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if root.Op != ops.BooleanToNum {
		t.Errorf("op = %v, want BooleanToNum", root.Op)
	}

	if _, _, err := Parse("'abc'", nil, ops.Number, Options{}); err == nil {
		t.Error("string root accepted for numeric target")
	}
	if _, _, err := Parse("1 + 1", nil, ops.String, Options{}); err == nil {
		t.Error("numeric root accepted for string target")
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []string{
		"1 +",
		"(1 + 2",
		"1 2",
		"* 3",
		"SUM(1, 2",
		"'abc",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			if _, _, err := Parse(src, nil, 0, Options{}); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", src)
			}
		})
	}
}

func TestTrailingPeriod(t *testing.T) {
	root := parseTree(t, "1 + 2.", nil)
	if root.Op != ops.Add {
		t.Errorf("op = %v", root.Op)
	}
}

func TestErrorPositions(t *testing.T) {
	_, _, err := Parse("1 + 'x'", nil, 0, Options{})
	el, ok := err.(ErrorList)
	if !ok || len(el) == 0 {
		t.Fatalf("err = %v", err)
	}
	if el[0].Pos.Line != 1 || el[0].Pos.Column != 3 {
		t.Errorf("error at %d:%d, want 1:3", el[0].Pos.Line, el[0].Pos.Column)
	}
}
