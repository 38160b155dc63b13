package compiler

import (
	"strings"
	"testing"

	"github.com/kolkov/casexpr/internal/ast"
	"github.com/kolkov/casexpr/internal/data"
	"github.com/kolkov/casexpr/internal/ops"
	"github.com/kolkov/casexpr/internal/parser"
	"github.com/kolkov/casexpr/internal/vm"
)

func testContext() *vm.Context {
	return &vm.Context{Epoch: 1930, FuzzBits: 6, MaxWarnings: 100}
}

func parse(t *testing.T, src string, dict *data.Dictionary) *ast.Node {
	t.Helper()
	root, _, err := parser.Parse(src, dict, 0, parser.Options{})
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return root
}

func optimize(t *testing.T, src string, dict *data.Dictionary) (*ast.Node, []vm.Warning) {
	t.Helper()
	return Optimize(parse(t, src, dict), testContext())
}

func dictWithX(t *testing.T) *data.Dictionary {
	t.Helper()
	d := data.NewDictionary()
	if _, err := d.CreateVariable("x", 0); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestConstantFolding(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"1 + 2 * 3", 7},
		{"2 ** 10", 1024},
		{"(1 + 2) / 3", 1},
		{"TRUNC(3.7)", 3},
		{"MOD(10, 3)", 1},
		{"MAX(1, 5, 3)", 5},
		{"-(2 + 3)", -5},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			root, warns := optimize(t, tt.src, nil)
			if len(warns) != 0 {
				t.Errorf("unexpected warnings: %v", warns)
			}
			if root.Op != ops.Number || root.Num != tt.want {
				t.Errorf("optimized to %s, want constant %v", root, tt.want)
			}
		})
	}
}

func TestFoldBoolean(t *testing.T) {
	root, _ := optimize(t, "1 < 2", nil)
	if root.Op != ops.Boolean || root.Num != 1 {
		t.Errorf("1 < 2 optimized to %s", root)
	}
	root, _ = optimize(t, "'ab' = 'ac'", nil)
	if root.Op != ops.Boolean || root.Num != 0 {
		t.Errorf("'ab' = 'ac' optimized to %s", root)
	}
}

func TestFoldString(t *testing.T) {
	root, _ := optimize(t, "CONCAT('ab', 'cd')", nil)
	if root.Op != ops.String || string(root.Str) != "abcd" {
		t.Errorf("CONCAT folded to %s", root)
	}
}

func TestSysmisAbsorption(t *testing.T) {
	// A SYSMIS operand makes the result SYSMIS without evaluating.
	for _, src := range []string{
		"$SYSMIS + 5",
		"2 * $SYSMIS",
		"$SYSMIS < 1",
		"TRUNC($SYSMIS)",
	} {
		t.Run(src, func(t *testing.T) {
			root, _ := optimize(t, src, nil)
			if !root.IsSysmisConst() {
				t.Errorf("optimized to %s, want sysmis", root)
			}
		})
	}

	// Statistical functions absorb missing arguments instead.
	root, _ := optimize(t, "SUM(1, $SYSMIS, 2)", nil)
	if root.Op != ops.Number || root.Num != 3 {
		t.Errorf("SUM over missing folded to %s, want 3", root)
	}
}

func TestIdentities(t *testing.T) {
	d := dictWithX(t)
	tests := []struct {
		src  string
		op   ops.Code
		tree string
	}{
		{"x + 0", ops.NumVar, "([num-var-value] x)"},
		{"0 + x", ops.NumVar, "([num-var-value] x)"},
		{"x - 0", ops.NumVar, "([num-var-value] x)"},
		{"0 - x", ops.Neg, "([negate] ([num-var-value] x))"},
		{"x * 1", ops.NumVar, "([num-var-value] x)"},
		{"1 * x", ops.NumVar, "([num-var-value] x)"},
		{"x / 1", ops.NumVar, "([num-var-value] x)"},
		{"x ** 1", ops.NumVar, "([num-var-value] x)"},
		{"x ** 2", ops.Square, "([square] ([num-var-value] x))"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			root, _ := optimize(t, tt.src, d)
			if root.Op != tt.op {
				t.Fatalf("optimized op = %v, want %v", root.Op, tt.op)
			}
			if got := root.String(); got != tt.tree {
				t.Errorf("optimized to %s, want %s", got, tt.tree)
			}
		})
	}
}

func TestZeroIdentities(t *testing.T) {
	d := dictWithX(t)
	for _, src := range []string{
		"x * 0",
		"0 * x",
		"0 / x",
		"MOD(0, x)",
	} {
		t.Run(src, func(t *testing.T) {
			root, _ := optimize(t, src, d)
			if root.Op != ops.Number || root.Num != 0 {
				t.Errorf("optimized to %s, want constant 0", root)
			}
		})
	}
	// The divisor side has no zero rewrite.
	root, _ := optimize(t, "x / 0", d)
	if root.Op != ops.Div {
		t.Errorf("x / 0 optimized to %s, want a division", root)
	}
}

func TestBooleanIdentities(t *testing.T) {
	d := dictWithX(t)

	// AND with constant false is false even if the variable is missing.
	root, _ := optimize(t, "x > 0 AND $FALSE", d)
	if root.Op != ops.Boolean || root.Num != 0 {
		t.Errorf("AND false optimized to %s", root)
	}
	root, _ = optimize(t, "x > 0 OR $TRUE", d)
	if root.Op != ops.Boolean || root.Num != 1 {
		t.Errorf("OR true optimized to %s", root)
	}

	// The neutral operand drops out.
	root, _ = optimize(t, "$TRUE AND x > 0", d)
	if root.Op != ops.Gt {
		t.Errorf("true AND p optimized to %s", root)
	}
	root, _ = optimize(t, "$FALSE OR x > 0", d)
	if root.Op != ops.Gt {
		t.Errorf("false OR p optimized to %s", root)
	}
}

func TestNonOptimizable(t *testing.T) {
	root, _ := optimize(t, "UNIFORM(10)", nil)
	if root.Op != ops.FnUniform {
		t.Errorf("UNIFORM folded away: %s", root)
	}
	root, _ = optimize(t, "$CASENUM", nil)
	if root.Op != ops.SysCaseNum {
		t.Errorf("$CASENUM folded away: %s", root)
	}
	// Operations over a non-optimizable subtree still simplify around it.
	root, _ = optimize(t, "$CASENUM + 0", nil)
	if root.Op != ops.SysCaseNum {
		t.Errorf("$CASENUM + 0 optimized to %s", root)
	}
}

func TestFoldWarnings(t *testing.T) {
	root, warns := optimize(t, "SQRT(-1)", nil)
	if !root.IsSysmisConst() {
		t.Errorf("SQRT(-1) folded to %s, want sysmis", root)
	}
	if len(warns) != 1 || !strings.Contains(warns[0].Message, "SQRT") {
		t.Errorf("warnings = %v, want one mentioning SQRT", warns)
	}
}

func TestFlattenSimple(t *testing.T) {
	prog := Flatten(parse(t, "1 + 2", nil), ops.Number, "1 + 2")
	if prog.ReturnType != ops.Number {
		t.Errorf("return type = %v", prog.ReturnType)
	}
	if prog.NumDepth != 2 || prog.StrDepth != 0 {
		t.Errorf("stack depths = %d, %d; want 2, 0", prog.NumDepth, prog.StrDepth)
	}
	// number idx, number idx, add, return
	want := []vm.Instr{
		vm.Instr(ops.Number), 0,
		vm.Instr(ops.Number), 1,
		vm.Instr(ops.Add),
		vm.Instr(ops.ReturnNumber),
	}
	if len(prog.Code) != len(want) {
		t.Fatalf("code = %v, want %v", prog.Code, want)
	}
	for i, ins := range want {
		if prog.Code[i] != ins {
			t.Fatalf("code = %v, want %v", prog.Code, want)
		}
	}
	if len(prog.Nums) != 2 || prog.Nums[0] != 1 || prog.Nums[1] != 2 {
		t.Errorf("number pool = %v", prog.Nums)
	}
}

func TestFlattenPoolsDeduplicate(t *testing.T) {
	prog := Flatten(parse(t, "1 + 1 + 1", nil), ops.Number, "")
	if len(prog.Nums) != 1 {
		t.Errorf("number pool = %v, want one entry", prog.Nums)
	}
}

func TestFlattenMinValid(t *testing.T) {
	prog := Flatten(parse(t, "SUM.2(1, 2, 3)", nil), ops.Number, "")
	dis := prog.Disassemble()
	if !strings.Contains(dis, "n=3") || !strings.Contains(dis, "min=2") {
		t.Errorf("disassembly missing array payloads:\n%s", dis)
	}
}

func TestFlattenElidesBoolToNum(t *testing.T) {
	prog := Flatten(parse(t, "(1 < 2) + 1", nil), ops.Number, "")
	if strings.Contains(prog.Disassemble(), "bool-to-num") {
		t.Errorf("bool-to-num emitted:\n%s", prog.Disassemble())
	}
}

func TestFlattenLocations(t *testing.T) {
	src := "SQRT(4)"
	prog := Flatten(parse(t, src, nil), ops.Number, src)
	if len(prog.Locs) == 0 {
		t.Fatal("no locations recorded for a checked operation")
	}
	if prog.Source != src {
		t.Errorf("source = %q", prog.Source)
	}
}

func TestFlattenMaxLag(t *testing.T) {
	d := dictWithX(t)
	prog := Flatten(parse(t, "LAG(x, 3) + LAG(x)", d), ops.Number, "")
	if prog.MaxLag != 3 {
		t.Errorf("MaxLag = %d, want 3", prog.MaxLag)
	}
	prog = Flatten(parse(t, "x + 1", d), ops.Number, "")
	if prog.MaxLag != 0 {
		t.Errorf("MaxLag = %d, want 0", prog.MaxLag)
	}
}

func TestFlattenStringDepth(t *testing.T) {
	prog := Flatten(parse(t, "CONCAT('a', 'b', 'c')", nil), ops.String, "")
	if prog.ReturnType != ops.String {
		t.Errorf("return type = %v", prog.ReturnType)
	}
	if prog.StrDepth != 3 {
		t.Errorf("string depth = %d, want 3", prog.StrDepth)
	}
}
