package casexpr

import (
	"errors"
	"strings"
	"testing"
)

func TestParseAndEvaluate(t *testing.T) {
	e, err := Parse("1 + 2 * 3", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if e.Type() != Number {
		t.Errorf("type = %v, want number", e.Type())
	}
	if got := e.EvaluateNum(nil, 1); got != 7 {
		t.Errorf("1 + 2 * 3 = %v", got)
	}

	e, err = Parse("$SYSMIS + 5", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := e.EvaluateNum(nil, 1); got != SysMis {
		t.Errorf("$SYSMIS + 5 = %v, want SysMis", got)
	}
}

func TestParseError(t *testing.T) {
	_, err := Parse(`"abc" + "def"`, nil, nil)
	if err == nil {
		t.Fatal("string addition accepted")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %T, want *ParseError", err)
	}
	if !strings.Contains(pe.Message, "both operands of + must be numeric") {
		t.Errorf("message = %q", pe.Message)
	}
	if pe.Line != 1 || pe.Column == 0 {
		t.Errorf("position = %d:%d", pe.Line, pe.Column)
	}
	if !strings.Contains(err.Error(), "note:") {
		t.Errorf("rendered error lacks notes: %s", err)
	}
}

func TestVariablesAndCases(t *testing.T) {
	dict := NewDictionary()
	a, err := dict.CreateVariable("a", 0)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := dict.CreateVariable("b", 0)
	c, _ := dict.CreateVariable("c", 0)

	e, err := Parse("a + b * c", dict, nil)
	if err != nil {
		t.Fatal(err)
	}
	cs := dict.NewCase()
	cs.SetNum(a, 1)
	cs.SetNum(b, 2)
	cs.SetNum(c, 3)
	if got := e.EvaluateNum(cs, 1); got != 7 {
		t.Errorf("a + b * c = %v", got)
	}

	// A missing operand poisons the result.
	cs.SetNum(b, SysMis)
	if got := e.EvaluateNum(cs, 2); got != SysMis {
		t.Errorf("with missing b = %v, want SysMis", got)
	}
}

func TestChainedComparisonWarns(t *testing.T) {
	dict := NewDictionary()
	a, _ := dict.CreateVariable("a", 0)
	b, _ := dict.CreateVariable("b", 0)
	c, _ := dict.CreateVariable("c", 0)

	e, err := Parse("a < b < c", dict, nil)
	if err != nil {
		t.Fatal(err)
	}
	warns := e.Warnings()
	if len(warns) != 1 || !strings.Contains(warns[0], "AND") {
		t.Errorf("warnings = %v", warns)
	}

	// (1 < 2) is 1, and 1 < 0.5 is false.
	cs := dict.NewCase()
	cs.SetNum(a, 1)
	cs.SetNum(b, 2)
	cs.SetNum(c, 0.5)
	if got := e.EvaluateNum(cs, 1); got != 0 {
		t.Errorf("a < b < c = %v, want 0", got)
	}
}

func TestParseBool(t *testing.T) {
	e, err := ParseBool("1 < 2", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if e.Type() != Boolean {
		t.Errorf("type = %v", e.Type())
	}
	if got := e.EvaluateNum(nil, 1); got != 1 {
		t.Errorf("1 < 2 = %v", got)
	}

	// A numeric root is accepted and range-checked at evaluation time.
	dict := NewDictionary()
	x, _ := dict.CreateVariable("x", 0)
	e, err = ParseBool("x", dict, nil)
	if err != nil {
		t.Fatal(err)
	}
	cs := dict.NewCase()
	cs.SetNum(x, 1)
	if got := e.EvaluateNum(cs, 1); got != 1 {
		t.Errorf("boolean x = %v", got)
	}
	cs.SetNum(x, 7)
	if got := e.EvaluateNum(cs, 2); got != SysMis {
		t.Errorf("out-of-range boolean = %v, want SysMis", got)
	}
	warns := e.Warnings()
	if len(warns) != 1 || !strings.Contains(warns[0], "boolean") {
		t.Errorf("warnings = %v", warns)
	}

	if _, err := ParseBool("'yes'", nil, nil); err == nil {
		t.Error("string accepted as boolean")
	}
}

func TestParseNum(t *testing.T) {
	// Boolean roots pass; string roots do not.
	if _, err := ParseNum("1 < 2", nil, nil); err != nil {
		t.Errorf("boolean rejected: %v", err)
	}
	if _, err := ParseNum("'abc'", nil, nil); err == nil {
		t.Error("string accepted as numeric")
	}
}

func TestParseString(t *testing.T) {
	e, err := ParseString("CONCAT('ab', 'cd')", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if e.Type() != String {
		t.Errorf("type = %v", e.Type())
	}
	if got := e.EvaluateString(nil, 1); got != "abcd" {
		t.Errorf("CONCAT = %q", got)
	}

	// EvaluateStr pads the caller's buffer to the variable width.
	out := make([]byte, 6)
	e.EvaluateStr(nil, 1, out)
	if string(out) != "abcd  " {
		t.Errorf("padded result = %q", out)
	}
	short := make([]byte, 2)
	e.EvaluateStr(nil, 1, short)
	if string(short) != "ab" {
		t.Errorf("truncated result = %q", short)
	}

	if _, err := ParseString("1 + 2", nil, nil); err == nil {
		t.Error("numeric accepted as string")
	}
}

func TestParseNewVariable(t *testing.T) {
	if _, err := ParseNewVariable("1 + 2", nil, "total", nil); err != nil {
		t.Errorf("numeric rejected: %v", err)
	}
	if _, err := ParseNewVariable("1 < 2", nil, "flag", nil); err != nil {
		t.Errorf("boolean rejected: %v", err)
	}

	_, err := ParseNewVariable("CONCAT('a', 'b')", nil, "label", nil)
	if err == nil {
		t.Fatal("string accepted for a new variable")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %T", err)
	}
	if !strings.Contains(pe.Notes[0], "STRING command") {
		t.Errorf("notes = %v", pe.Notes)
	}
}

func TestIncompleteExpression(t *testing.T) {
	// A bare format name parses as an atom but cannot be evaluated.
	_, err := Parse("F8.2", nil, nil)
	if err == nil {
		t.Fatal("bare format accepted")
	}
	if !strings.Contains(err.Error(), "not a complete expression") {
		t.Errorf("error = %v", err)
	}
}

func TestCompileWarningsDrain(t *testing.T) {
	// Folding SQRT(-1) raises the warning at compile time.
	e, err := Parse("SQRT(-1)", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	warns := e.Warnings()
	if len(warns) != 1 || !strings.Contains(warns[0], "SQRT") {
		t.Errorf("warnings = %v", warns)
	}
	if len(e.Warnings()) != 0 {
		t.Error("warnings reported twice")
	}
	if got := e.EvaluateNum(nil, 1); got != SysMis {
		t.Errorf("SQRT(-1) = %v", got)
	}
	// The fold replaced the call; evaluation raises nothing new.
	if len(e.Warnings()) != 0 {
		t.Error("optimized constant still warns at runtime")
	}
}

func TestNoOptimize(t *testing.T) {
	cfg := &Config{NoOptimize: true}
	e, err := Parse("SQRT(-1)", nil, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(e.Warnings()) != 0 {
		t.Error("unexpected compile warnings without optimization")
	}
	if got := e.EvaluateNum(nil, 1); got != SysMis {
		t.Errorf("SQRT(-1) = %v", got)
	}
	if warns := e.Warnings(); len(warns) != 1 {
		t.Errorf("runtime warnings = %v", warns)
	}
}

func TestSeededUniform(t *testing.T) {
	cfg := &Config{Settings: &Settings{Seed: 42}}
	e1, err := Parse("UNIFORM(100)", nil, cfg)
	if err != nil {
		t.Fatal(err)
	}
	e2, _ := Parse("UNIFORM(100)", nil, cfg)
	a := e1.EvaluateNum(nil, 1)
	b := e2.EvaluateNum(nil, 1)
	if a != b {
		t.Errorf("same seed gave %v and %v", a, b)
	}
	if a < 0 || a >= 100 {
		t.Errorf("UNIFORM(100) = %v", a)
	}
}

func TestMaxLag(t *testing.T) {
	dict := NewDictionary()
	x, _ := dict.CreateVariable("x", 0)

	lagged := map[int]float64{1: 10, 3: 30}
	cfg := &Config{
		LagNum: func(v *Variable, n int) float64 {
			if v != x {
				t.Errorf("lag asked for %s", v.Name)
			}
			return lagged[n]
		},
	}
	e, err := Parse("LAG(x, 3) + LAG(x)", dict, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if e.MaxLag() != 3 {
		t.Errorf("MaxLag = %d, want 3", e.MaxLag())
	}
	if got := e.EvaluateNum(dict.NewCase(), 4); got != 40 {
		t.Errorf("lag sum = %v, want 40", got)
	}
}

func TestTemporaryActiveWarning(t *testing.T) {
	dict := NewDictionary()
	dict.CreateVariable("x", 0)

	e, err := Parse("LAG(x)", dict, &Config{TemporaryActive: true})
	if err != nil {
		t.Fatal(err)
	}
	warns := e.Warnings()
	if len(warns) != 1 || !strings.Contains(warns[0], "TEMPORARY") {
		t.Errorf("warnings = %v", warns)
	}
}

func TestSourceAndDisassemble(t *testing.T) {
	e, err := Parse("1 + 2", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if e.Source() != "1 + 2" {
		t.Errorf("source = %q", e.Source())
	}
	if dis := e.Disassemble(); !strings.Contains(dis, "=== Code ===") {
		t.Errorf("disassembly = %q", dis)
	}
}
