// Package data implements the host-side data model the expression engine
// binds to: a dictionary of named variables and vectors, and cases holding
// one value per variable.
//
// Numeric values are float64 with the system-missing sentinel SysMis.
// String values are fixed-width byte slices, blank-padded to the declared
// variable width, and are never missing.
package data

import (
	"fmt"
	"math"
	"strings"
)

// SysMis is the system-missing value.
const SysMis = -math.MaxFloat64

// MaxString is the longest string value the engine produces or stores.
const MaxString = 32767

// MissingRange is an inclusive numeric range declared user-missing.
type MissingRange struct {
	Lo, Hi float64
}

// Variable is a dictionary entry: a numeric variable (Width == 0) or a
// string variable of fixed Width bytes.
type Variable struct {
	Name  string
	Width int // 0 for numeric, 1..MaxString for string

	// User-missing declarations, numeric variables only.
	Missing       []float64
	MissingRanges []MissingRange

	slot int // index into the per-kind case slice
}

// IsNumeric returns true for numeric variables.
func (v *Variable) IsNumeric() bool {
	return v.Width == 0
}

// IsUserMissing reports whether x is one of the variable's declared
// user-missing values. SysMis is system-missing, not user-missing.
func (v *Variable) IsUserMissing(x float64) bool {
	if x == SysMis {
		return false
	}
	for _, m := range v.Missing {
		if x == m {
			return true
		}
	}
	for _, r := range v.MissingRanges {
		if x >= r.Lo && x <= r.Hi {
			return true
		}
	}
	return false
}

// Vector is a named ordered group of same-type variables.
type Vector struct {
	Name string
	Vars []*Variable
}

// IsNumeric returns true if the vector's elements are numeric.
func (v *Vector) IsNumeric() bool {
	return len(v.Vars) == 0 || v.Vars[0].IsNumeric()
}

// Len returns the number of elements.
func (v *Vector) Len() int {
	return len(v.Vars)
}

// Dictionary is the set of variables and vectors an expression may
// reference. Names are case-insensitive.
type Dictionary struct {
	vars     []*Variable
	byName   map[string]*Variable
	vectors  map[string]*Vector
	numSlots int
	strSlots int
}

// NewDictionary creates an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{
		byName:  make(map[string]*Variable),
		vectors: make(map[string]*Vector),
	}
}

// CreateVariable adds a variable with the given name and width (0 for
// numeric). It fails on duplicate or empty names.
func (d *Dictionary) CreateVariable(name string, width int) (*Variable, error) {
	if name == "" {
		return nil, fmt.Errorf("variable name must not be empty")
	}
	if width < 0 || width > MaxString {
		return nil, fmt.Errorf("invalid width %d for variable %s", width, name)
	}
	key := strings.ToUpper(name)
	if _, ok := d.byName[key]; ok {
		return nil, fmt.Errorf("duplicate variable name %s", name)
	}
	v := &Variable{Name: name, Width: width}
	if width == 0 {
		v.slot = d.numSlots
		d.numSlots++
	} else {
		v.slot = d.strSlots
		d.strSlots++
	}
	d.vars = append(d.vars, v)
	d.byName[key] = v
	return v, nil
}

// LookupVariable finds a variable by name, case-insensitively.
func (d *Dictionary) LookupVariable(name string) (*Variable, bool) {
	v, ok := d.byName[strings.ToUpper(name)]
	return v, ok
}

// Variables returns the variables in dictionary order.
func (d *Dictionary) Variables() []*Variable {
	return d.vars
}

// VariableRange returns the variables from first to last inclusive, in
// dictionary order, for TO expansion. Fails when last precedes first.
func (d *Dictionary) VariableRange(first, last *Variable) ([]*Variable, error) {
	i := d.indexOf(first)
	j := d.indexOf(last)
	if i < 0 || j < 0 {
		return nil, fmt.Errorf("variable not in dictionary")
	}
	if j < i {
		return nil, fmt.Errorf("%s precedes %s in the dictionary", last.Name, first.Name)
	}
	return d.vars[i : j+1], nil
}

func (d *Dictionary) indexOf(v *Variable) int {
	for i, dv := range d.vars {
		if dv == v {
			return i
		}
	}
	return -1
}

// CreateVector adds a vector over the given variables. All elements must
// share a type.
func (d *Dictionary) CreateVector(name string, vars []*Variable) (*Vector, error) {
	if name == "" {
		return nil, fmt.Errorf("vector name must not be empty")
	}
	if len(vars) == 0 {
		return nil, fmt.Errorf("vector %s has no elements", name)
	}
	key := strings.ToUpper(name)
	if _, ok := d.vectors[key]; ok {
		return nil, fmt.Errorf("duplicate vector name %s", name)
	}
	numeric := vars[0].IsNumeric()
	for _, v := range vars[1:] {
		if v.IsNumeric() != numeric {
			return nil, fmt.Errorf("vector %s mixes numeric and string variables", name)
		}
	}
	vec := &Vector{Name: name, Vars: vars}
	d.vectors[key] = vec
	return vec, nil
}

// LookupVector finds a vector by name, case-insensitively.
func (d *Dictionary) LookupVector(name string) (*Vector, bool) {
	v, ok := d.vectors[strings.ToUpper(name)]
	return v, ok
}

// Case holds one value per dictionary variable. Numeric values start as
// SysMis, string values as all blanks.
type Case struct {
	nums []float64
	strs [][]byte
}

// NewCase creates a case shaped for the dictionary's current variables.
func (d *Dictionary) NewCase() *Case {
	c := &Case{
		nums: make([]float64, d.numSlots),
		strs: make([][]byte, d.strSlots),
	}
	for i := range c.nums {
		c.nums[i] = SysMis
	}
	for _, v := range d.vars {
		if !v.IsNumeric() {
			c.strs[v.slot] = blanks(v.Width)
		}
	}
	return c
}

// Num returns the numeric value of v in the case.
func (c *Case) Num(v *Variable) float64 {
	return c.nums[v.slot]
}

// SetNum stores a numeric value for v.
func (c *Case) SetNum(v *Variable, x float64) {
	c.nums[v.slot] = x
}

// Str returns the string value of v, exactly v.Width bytes. The slice is
// owned by the case; callers must not hold it across case mutation.
func (c *Case) Str(v *Variable) []byte {
	return c.strs[v.slot]
}

// SetStr stores a string value for v, truncating or blank-padding to the
// declared width.
func (c *Case) SetStr(v *Variable, s []byte) {
	buf := c.strs[v.slot]
	n := copy(buf, s)
	for i := n; i < len(buf); i++ {
		buf[i] = ' '
	}
}

func blanks(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return b
}
