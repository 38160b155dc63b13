// Package format implements print and input format descriptors such as
// F8.2, DOLLAR12.2, A8 and DATE11: parsing, validity rules, and numeric
// rendering for the formats the expression functions use.
package format

import (
	"fmt"
	"strconv"
	"strings"
)

// Type identifies a format type.
type Type uint8

const (
	F Type = iota
	Comma
	Dot
	Dollar
	Pct
	E
	N
	A
	AHex
	Date
	ADate
	EDate
	SDate
	JDate
	QYr
	MoYr
	WkYr
	DateTime
	Time
	DTime
	WkDay
	Month
	numTypes
)

var typeNames = [numTypes]string{
	F:        "F",
	Comma:    "COMMA",
	Dot:      "DOT",
	Dollar:   "DOLLAR",
	Pct:      "PCT",
	E:        "E",
	N:        "N",
	A:        "A",
	AHex:     "AHEX",
	Date:     "DATE",
	ADate:    "ADATE",
	EDate:    "EDATE",
	SDate:    "SDATE",
	JDate:    "JDATE",
	QYr:      "QYR",
	MoYr:     "MOYR",
	WkYr:     "WKYR",
	DateTime: "DATETIME",
	Time:     "TIME",
	DTime:    "DTIME",
	WkDay:    "WKDAY",
	Month:    "MONTH",
}

// String returns the canonical format type name.
func (t Type) String() string {
	if t < numTypes {
		return typeNames[t]
	}
	return "<invalid>"
}

// limits describes the width and decimal constraints of a format type.
type limits struct {
	minW, maxW int
	maxD       int
	input      bool // usable as an input format
}

var typeLimits = [numTypes]limits{
	F:        {1, 40, 16, true},
	Comma:    {1, 40, 16, true},
	Dot:      {1, 40, 16, true},
	Dollar:   {2, 40, 16, true},
	Pct:      {2, 40, 16, true},
	E:        {6, 40, 16, true},
	N:        {1, 40, 16, true},
	A:        {1, 32767, 0, true},
	AHex:     {2, 65534, 0, true},
	Date:     {9, 40, 0, true},
	ADate:    {8, 40, 0, true},
	EDate:    {8, 40, 0, true},
	SDate:    {8, 40, 0, true},
	JDate:    {5, 40, 0, true},
	QYr:      {6, 40, 0, true},
	MoYr:     {6, 40, 0, true},
	WkYr:     {8, 40, 0, true},
	DateTime: {17, 40, 16, true},
	Time:     {5, 40, 16, true},
	DTime:    {8, 40, 16, true},
	WkDay:    {2, 40, 0, false},
	Month:    {3, 40, 0, false},
}

// Spec is a parsed format descriptor: type, width, decimals.
type Spec struct {
	Type Type
	W    int
	D    int
}

// String renders the descriptor the way it is written in source, e.g. "F8.2".
func (s Spec) String() string {
	if s.D > 0 {
		return fmt.Sprintf("%s%d.%d", s.Type, s.W, s.D)
	}
	return fmt.Sprintf("%s%d", s.Type, s.W)
}

// IsString returns true for string format types.
func (s Spec) IsString() bool {
	return s.Type == A || s.Type == AHex
}

// IsNumeric returns true for numeric format types.
func (s Spec) IsNumeric() bool {
	return !s.IsString()
}

// ValidInput reports whether the descriptor is a valid input format.
func (s Spec) ValidInput() bool {
	return s.valid() && typeLimits[s.Type].input
}

// ValidOutput reports whether the descriptor is a valid output format.
func (s Spec) ValidOutput() bool {
	return s.valid()
}

func (s Spec) valid() bool {
	if s.Type >= numTypes {
		return false
	}
	lim := typeLimits[s.Type]
	if s.W < lim.minW || s.W > lim.maxW {
		return false
	}
	if s.D < 0 || s.D > lim.maxD {
		return false
	}
	// Decimals must leave room for the digits and the point.
	if s.D > 0 && s.D > s.W-2 {
		return false
	}
	return true
}

// Parse parses a format descriptor written as TYPE, TYPEw or TYPEw.d,
// case-insensitively. It validates syntax only; use ValidInput/ValidOutput
// for the semantic checks.
func Parse(text string) (Spec, error) {
	up := strings.ToUpper(strings.TrimSpace(text))
	i := 0
	for i < len(up) && (up[i] < '0' || up[i] > '9') {
		i++
	}
	name := up[:i]
	if name == "" {
		return Spec{}, fmt.Errorf("format %q has no type name", text)
	}
	typ, ok := typeByName(name)
	if !ok {
		return Spec{}, fmt.Errorf("unknown format type %q", name)
	}
	spec := Spec{Type: typ, W: typeLimits[typ].minW}
	rest := up[i:]
	if rest == "" {
		return spec, nil
	}
	wText, dText, hasD := strings.Cut(rest, ".")
	w, err := strconv.Atoi(wText)
	if err != nil {
		return Spec{}, fmt.Errorf("format %q has invalid width", text)
	}
	spec.W = w
	if hasD {
		d, err := strconv.Atoi(dText)
		if err != nil {
			return Spec{}, fmt.Errorf("format %q has invalid decimal count", text)
		}
		spec.D = d
	}
	return spec, nil
}

func typeByName(name string) (Type, bool) {
	for t := Type(0); t < numTypes; t++ {
		if typeNames[t] == name {
			return t, true
		}
	}
	return 0, false
}
