// Package casexpr compiles and evaluates transformation-language
// expressions of the kind statistical packages apply to each case of a
// data file: numeric and string arithmetic over dictionary variables,
// with a system-missing sentinel that propagates through computation and
// a three-valued boolean logic on top of it.
//
// # Quick start
//
// Expressions without variables need no dictionary:
//
//	e, err := casexpr.Parse("TRUNC(3.7) + 1", nil, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v := e.EvaluateNum(nil, 1) // 4
//
// With a dictionary and a case:
//
//	dict := casexpr.NewDictionary()
//	age, _ := dict.CreateVariable("age", 0)
//	e, _ := casexpr.ParseBool("age >= 18 AND NOT MISSING(age)", dict, nil)
//
//	c := dict.NewCase()
//	c.SetNum(age, 42)
//	v := e.EvaluateNum(c, 1) // 1
//
// # Missing values
//
// SysMis marks a missing numeric value. Arithmetic on SysMis yields
// SysMis; comparisons too. AND and OR follow the three-valued truth
// table, so for example "0 AND missing" is still false. Statistical
// functions skip missing arguments and accept a minimum-valid suffix:
// MEAN.2(a, b, c) is missing unless at least two arguments are valid.
//
// # Compilation
//
// Parse builds a typed tree, folds constant subexpressions and flattens
// the result into a postfix program evaluated on two value stacks. The
// same Expression can be evaluated against any number of cases;
// per-evaluation scratch memory is reused.
//
// # Error handling
//
// Compile-time problems are returned as [ParseError]. Runtime problems
// never stop evaluation: the operation yields SysMis (or an empty
// string) and records a warning retrievable with
// [Expression.Warnings].
package casexpr
