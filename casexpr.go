package casexpr

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/kolkov/casexpr/internal/compiler"
	"github.com/kolkov/casexpr/internal/data"
	"github.com/kolkov/casexpr/internal/ops"
	"github.com/kolkov/casexpr/internal/parser"
	"github.com/kolkov/casexpr/internal/vm"
)

// Version is the casexpr version string.
const Version = "0.1.0"

// SysMis is the system-missing value. It is the most negative finite
// float64 and propagates through almost every numeric operation.
const SysMis = data.SysMis

// MaxString is the longest string value an expression can produce.
const MaxString = data.MaxString

// Dictionary describes the variables and vectors an expression may
// reference.
type Dictionary = data.Dictionary

// Variable is one dictionary entry: numeric (width 0) or string.
type Variable = data.Variable

// Vector is a named ordered list of same-type variables.
type Vector = data.Vector

// Case holds one row of values, laid out per the dictionary.
type Case = data.Case

// MissingRange is an inclusive range of user-missing numeric values.
type MissingRange = data.MissingRange

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return data.NewDictionary()
}

// Type is the result type of a compiled expression.
type Type int

const (
	Number Type = iota
	String
	Boolean
)

func (t Type) String() string {
	switch t {
	case String:
		return "string"
	case Boolean:
		return "boolean"
	}
	return "number"
}

// Expression is a compiled expression, ready for repeated evaluation
// against cases. It is not safe for concurrent use; compile one
// Expression per goroutine.
type Expression struct {
	prog    *vm.Program
	machine *vm.VM

	compileWarnings []string
}

// Parse compiles an expression of any result type. The dictionary may be
// nil when the expression references no variables, and config may be nil
// for defaults.
//
// Example:
//
//	e, err := casexpr.Parse("TRUNC(1 + 2.5)", nil, nil)
//	v := e.EvaluateNum(nil, 1) // 3
func Parse(src string, dict *Dictionary, config *Config) (*Expression, error) {
	return compile(src, dict, 0, config)
}

// ParseNum is like Parse but requires a numeric result. A boolean
// expression is accepted; its values are already 0, 1 or SysMis.
func ParseNum(src string, dict *Dictionary, config *Config) (*Expression, error) {
	return compile(src, dict, ops.Number, config)
}

// ParseBool is like Parse but requires a boolean result. A numeric root
// is accepted and checked at evaluation time: values other than 0, 1 and
// SysMis raise a warning and yield SysMis.
func ParseBool(src string, dict *Dictionary, config *Config) (*Expression, error) {
	return compile(src, dict, ops.Boolean, config)
}

// ParseString is like Parse but requires a string result.
func ParseString(src string, dict *Dictionary, config *Config) (*Expression, error) {
	return compile(src, dict, ops.String, config)
}

// ParseNewVariable compiles the expression that will populate a new
// variable named varName. String-valued expressions are rejected, since
// the variable must be declared as a string before it can be computed.
func ParseNewVariable(src string, dict *Dictionary, varName string, config *Config) (*Expression, error) {
	e, err := compile(src, dict, 0, config)
	if err != nil {
		return nil, err
	}
	if e.Type() == String {
		return nil, &ParseError{
			Line:    1,
			Column:  1,
			Message: fmt.Sprintf("the expression computed for %s evaluates to a string", varName),
			Notes:   []string{fmt.Sprintf("declare %s with the STRING command before computing it", varName)},
		}
	}
	return e, nil
}

func compile(src string, dict *data.Dictionary, target ops.Code, config *Config) (*Expression, error) {
	if config == nil {
		config = &Config{}
	}
	var settings Settings
	if config.Settings != nil {
		settings = *config.Settings
	}
	settings.applyDefaults()

	root, parseWarns, err := parser.Parse(src, dict, target, parser.Options{
		TemporaryActive: config.TemporaryActive,
		Strict:          settings.Strict,
	})
	if err != nil {
		return nil, convertParseErr(err)
	}

	ctx := &vm.Context{
		Epoch:       settings.Epoch,
		FuzzBits:    settings.FuzzBits,
		ViewLength:  settings.ViewLength,
		ViewWidth:   settings.ViewWidth,
		MaxWarnings: settings.MaxWarnings,
		Rand:        config.Rand,
		Now:         config.Now,
		LagNum:      config.LagNum,
		LagStr:      config.LagStr,
	}
	if ctx.Rand == nil {
		seed := settings.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		ctx.Rand = rand.New(rand.NewSource(seed))
	}

	e := &Expression{}
	for _, w := range parseWarns {
		e.compileWarnings = append(e.compileWarnings, w.Error())
	}
	if !config.NoOptimize {
		var foldWarns []vm.Warning
		root, foldWarns = compiler.Optimize(root, ctx)
		for _, w := range foldWarns {
			e.compileWarnings = append(e.compileWarnings, w.String())
		}
	}

	retType := root.Type()
	switch retType {
	case ops.Number, ops.Boolean, ops.String:
	default:
		// A bare format or variable reference atom cannot be evaluated.
		return nil, &ParseError{
			Line:    1,
			Column:  1,
			Message: fmt.Sprintf("a %s is not a complete expression", ops.AtomName(retType)),
		}
	}

	e.prog = compiler.Flatten(root, retType, src)
	e.machine = vm.New(e.prog, ctx)
	return e, nil
}

// Type returns the expression's result type.
func (e *Expression) Type() Type {
	switch e.prog.ReturnType {
	case ops.Boolean:
		return Boolean
	case ops.String:
		return String
	}
	return Number
}

// EvaluateNum evaluates a numeric or boolean expression against a case.
// caseNum is the 1-based case number reported by $CASENUM. The case may
// be nil when the expression reads no variables.
func (e *Expression) EvaluateNum(c *Case, caseNum float64) float64 {
	return e.machine.EvalNum(c, caseNum)
}

// EvaluateStr evaluates a string expression into out, right-padding with
// spaces. Typically out is sized to the width of the target variable;
// longer results are truncated.
func (e *Expression) EvaluateStr(c *Case, caseNum float64, out []byte) {
	s := e.machine.EvalStr(c, caseNum)
	n := copy(out, s)
	for i := n; i < len(out); i++ {
		out[i] = ' '
	}
}

// EvaluateString evaluates a string expression and returns the result
// unpadded. The result is copied and remains valid after the next
// evaluation.
func (e *Expression) EvaluateString(c *Case, caseNum float64) string {
	return string(e.machine.EvalStr(c, caseNum))
}

// Warnings drains accumulated diagnostics: compile-time warnings on the
// first call, then any warnings later evaluations raised. Each runtime
// warning is reported at most once per source location per evaluation.
func (e *Expression) Warnings() []string {
	out := e.compileWarnings
	e.compileWarnings = nil
	for _, w := range e.machine.TakeWarnings() {
		out = append(out, w.String())
	}
	return out
}

// MaxLag returns the greatest LAG distance the expression uses, or zero.
// The host must retain that many previous cases and serve them through
// Config.LagNum and Config.LagStr.
func (e *Expression) MaxLag() int {
	return e.prog.MaxLag
}

// Source returns the expression source text.
func (e *Expression) Source() string {
	return e.prog.Source
}

// Disassemble returns a multi-line dump of the compiled postfix program,
// for debugging.
func (e *Expression) Disassemble() string {
	return e.prog.Disassemble()
}

func convertParseErr(err error) error {
	if el, ok := err.(parser.ErrorList); ok && len(el) > 0 {
		pe := el[0]
		msg := pe.Message
		if len(el) > 1 {
			msg = fmt.Sprintf("%s (and %d more errors)", msg, len(el)-1)
		}
		return &ParseError{
			Line:    pe.Pos.Line,
			Column:  pe.Pos.Column,
			Message: msg,
			Notes:   pe.Notes,
		}
	}
	return &ParseError{Message: err.Error()}
}
