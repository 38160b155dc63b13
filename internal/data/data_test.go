package data

import (
	"bytes"
	"testing"
)

func TestCreateVariable(t *testing.T) {
	d := NewDictionary()
	num, err := d.CreateVariable("x", 0)
	if err != nil {
		t.Fatal(err)
	}
	if !num.IsNumeric() {
		t.Error("width-0 variable should be numeric")
	}
	str, err := d.CreateVariable("s", 8)
	if err != nil {
		t.Fatal(err)
	}
	if str.IsNumeric() {
		t.Error("width-8 variable should be string")
	}

	if _, err := d.CreateVariable("X", 0); err == nil {
		t.Error("duplicate name (case-insensitive) accepted")
	}
	if _, err := d.CreateVariable("", 0); err == nil {
		t.Error("empty name accepted")
	}
	if _, err := d.CreateVariable("bad", -1); err == nil {
		t.Error("negative width accepted")
	}
	if _, err := d.CreateVariable("big", MaxString+1); err == nil {
		t.Error("oversize width accepted")
	}
}

func TestLookupCaseInsensitive(t *testing.T) {
	d := NewDictionary()
	v, _ := d.CreateVariable("Age", 0)
	for _, name := range []string{"age", "AGE", "Age"} {
		got, ok := d.LookupVariable(name)
		if !ok || got != v {
			t.Errorf("LookupVariable(%q) failed", name)
		}
	}
	if _, ok := d.LookupVariable("weight"); ok {
		t.Error("lookup of unknown variable succeeded")
	}
}

func TestVariableRange(t *testing.T) {
	d := NewDictionary()
	a, _ := d.CreateVariable("a", 0)
	b, _ := d.CreateVariable("b", 0)
	c, _ := d.CreateVariable("c", 0)

	vars, err := d.VariableRange(a, c)
	if err != nil {
		t.Fatal(err)
	}
	if len(vars) != 3 || vars[0] != a || vars[1] != b || vars[2] != c {
		t.Errorf("VariableRange(a, c) = %v", names(vars))
	}

	vars, err = d.VariableRange(b, b)
	if err != nil || len(vars) != 1 || vars[0] != b {
		t.Errorf("VariableRange(b, b) = %v, %v", names(vars), err)
	}

	if _, err := d.VariableRange(c, a); err == nil {
		t.Error("reversed range accepted")
	}
}

func names(vars []*Variable) []string {
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = v.Name
	}
	return out
}

func TestVectors(t *testing.T) {
	d := NewDictionary()
	a, _ := d.CreateVariable("a", 0)
	b, _ := d.CreateVariable("b", 0)
	s, _ := d.CreateVariable("s", 8)

	vec, err := d.CreateVector("v", []*Variable{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if !vec.IsNumeric() || vec.Len() != 2 {
		t.Errorf("vector: numeric=%v len=%d", vec.IsNumeric(), vec.Len())
	}
	got, ok := d.LookupVector("V")
	if !ok || got != vec {
		t.Error("case-insensitive vector lookup failed")
	}

	if _, err := d.CreateVector("w", []*Variable{a, s}); err == nil {
		t.Error("mixed-type vector accepted")
	}
	if _, err := d.CreateVector("v", []*Variable{a}); err == nil {
		t.Error("duplicate vector name accepted")
	}
	if _, err := d.CreateVector("empty", nil); err == nil {
		t.Error("empty vector accepted")
	}
}

func TestCaseValues(t *testing.T) {
	d := NewDictionary()
	x, _ := d.CreateVariable("x", 0)
	y, _ := d.CreateVariable("y", 0)
	s, _ := d.CreateVariable("s", 5)

	c := d.NewCase()
	if c.Num(x) != SysMis || c.Num(y) != SysMis {
		t.Error("numeric values should start as SysMis")
	}
	if !bytes.Equal(c.Str(s), []byte("     ")) {
		t.Errorf("string value should start blank, got %q", c.Str(s))
	}

	c.SetNum(x, 42)
	if c.Num(x) != 42 || c.Num(y) != SysMis {
		t.Error("SetNum affected the wrong slot")
	}

	c.SetStr(s, []byte("ab"))
	if !bytes.Equal(c.Str(s), []byte("ab   ")) {
		t.Errorf("short store should blank-pad, got %q", c.Str(s))
	}
	c.SetStr(s, []byte("abcdefgh"))
	if !bytes.Equal(c.Str(s), []byte("abcde")) {
		t.Errorf("long store should truncate, got %q", c.Str(s))
	}
}

func TestUserMissing(t *testing.T) {
	v := &Variable{Name: "x", Missing: []float64{9, 99}}
	if !v.IsUserMissing(9) || !v.IsUserMissing(99) {
		t.Error("declared values should be user-missing")
	}
	if v.IsUserMissing(8) {
		t.Error("8 should not be user-missing")
	}
	if v.IsUserMissing(SysMis) {
		t.Error("SysMis is system-missing, not user-missing")
	}

	r := &Variable{Name: "y", MissingRanges: []MissingRange{{Lo: 90, Hi: 99}}}
	if !r.IsUserMissing(95) || !r.IsUserMissing(90) || !r.IsUserMissing(99) {
		t.Error("range endpoints and interior should be user-missing")
	}
	if r.IsUserMissing(89.9) || r.IsUserMissing(100) {
		t.Error("values outside the range should not be user-missing")
	}
}
