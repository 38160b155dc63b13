// casexpr - transformation-language expression evaluator
//
// Compiles one expression against an ad-hoc dictionary built from the
// command line, evaluates it on a single case and prints the result, or
// dumps the compiled postfix program. Arguments are parsed manually so
// variable bindings like "-v x=1.5" stay simple and order-sensitive.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kolkov/casexpr"
	"github.com/kolkov/casexpr/internal/format"
	"github.com/mattn/go-isatty"
	"github.com/xyproto/env/v2"
)

// version is set by GoReleaser at build time via -ldflags.
// For development builds, it will be "dev".
var version = "dev"

const (
	shortUsage = "usage: casexpr [options] 'expr'"
	longUsage  = `Dictionary:
  -v name=value       define a variable and its value for the evaluated case
                      (multiple allowed). A value that parses as a number, or
                      "sysmis", defines a numeric variable; anything else, or
                      a 'quoted' value, defines a string variable.
  -vec name=v1,v2,... define a vector over already-defined variables of one
                      type (multiple allowed)

Parsing:
  --bool              require a boolean expression
  --string            require a string expression
  --no-opt            disable constant folding and simplification
  --strict            warn about nonstandard extension functions

Output:
  --postfix           print the compiled postfix program instead of evaluating
  --format SPEC       render a numeric result with an output format, e.g.
                      F8.2 or DATE11

Settings:
  --settings FILE     load YAML evaluation settings
                      (default: $CASEXPR_SETTINGS if set)
  --seed N            seed for UNIFORM and NORMAL

Other:
  -h, --help          show this help message
  --version           show casexpr version and exit
`
)

func main() {
	var varDefs []string
	var vecDefs []string
	target := ""
	postfix := false
	noOpt := false
	strict := false
	outFormat := ""
	settingsPath := env.Str("CASEXPR_SETTINGS", "")
	var seed int64

	var i int
	for i = 1; i < len(os.Args); i++ {
		arg := os.Args[i]
		if arg == "--" {
			i++
			break
		}
		if !strings.HasPrefix(arg, "-") {
			break
		}

		switch arg {
		case "-v":
			varDefs = append(varDefs, nextArg(&i, arg))
		case "-vec":
			vecDefs = append(vecDefs, nextArg(&i, arg))
		case "--bool":
			target = "bool"
		case "--string":
			target = "string"
		case "--postfix":
			postfix = true
		case "--no-opt":
			noOpt = true
		case "--strict":
			strict = true
		case "--format":
			outFormat = nextArg(&i, arg)
		case "--settings":
			settingsPath = nextArg(&i, arg)
		case "--seed":
			n, err := strconv.ParseInt(nextArg(&i, arg), 10, 64)
			if err != nil {
				errorExitf("invalid seed: %s", os.Args[i])
			}
			seed = n
		case "-h", "--help":
			fmt.Printf("casexpr %s - expression evaluator\n\n%s\n\n%s", version, shortUsage, longUsage)
			os.Exit(0)
		case "--version":
			fmt.Printf("casexpr version %s\n", version)
			os.Exit(0)
		default:
			switch {
			case strings.HasPrefix(arg, "-v") && strings.Contains(arg, "="):
				varDefs = append(varDefs, arg[2:])
			default:
				errorExitf("flag provided but not defined: %s", arg)
			}
		}
	}

	args := os.Args[i:]
	if len(args) != 1 {
		errorExitf(shortUsage)
	}
	src := args[0]

	settings := &casexpr.Settings{}
	if settingsPath != "" {
		s, err := casexpr.LoadSettings(settingsPath)
		if err != nil {
			errorExitf("%v", err)
		}
		settings = s
	}
	if seed != 0 {
		settings.Seed = seed
	}
	if strict {
		settings.Strict = true
	}

	dict, c := buildDictionary(varDefs, vecDefs)

	config := &casexpr.Config{
		Settings:   settings,
		NoOptimize: noOpt,
	}

	var e *casexpr.Expression
	var err error
	switch target {
	case "bool":
		e, err = casexpr.ParseBool(src, dict, config)
	case "string":
		e, err = casexpr.ParseString(src, dict, config)
	default:
		e, err = casexpr.Parse(src, dict, config)
	}
	if err != nil {
		errorExitf("%v", err)
	}

	if postfix {
		fmt.Println(e.Disassemble())
		printWarnings(e)
		return
	}

	var result string
	switch e.Type() {
	case casexpr.Boolean:
		switch v := e.EvaluateNum(c, 1); v {
		case casexpr.SysMis:
			result = "sysmis"
		case 0:
			result = "false"
		default:
			result = "true"
		}
	case casexpr.String:
		result = fmt.Sprintf("%q", e.EvaluateString(c, 1))
	default:
		v := e.EvaluateNum(c, 1)
		result = renderNum(v, outFormat)
	}

	fmt.Printf("%s => %s\n", src, result)
	printWarnings(e)
}

// renderNum formats a numeric result, through an output format when one
// was requested.
func renderNum(v float64, outFormat string) string {
	if v == casexpr.SysMis {
		return "sysmis"
	}
	if outFormat == "" {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	spec, err := format.Parse(outFormat)
	if err != nil {
		errorExitf("invalid output format %s: %v", outFormat, err)
	}
	if !spec.ValidOutput() || spec.IsString() {
		errorExitf("%s is not a numeric output format", outFormat)
	}
	return strings.TrimSpace(format.Render(spec, v, false))
}

// buildDictionary creates the dictionary and the single case described
// by -v and -vec bindings.
func buildDictionary(varDefs, vecDefs []string) (*casexpr.Dictionary, *casexpr.Case) {
	if len(varDefs) == 0 && len(vecDefs) == 0 {
		return nil, nil
	}
	dict := casexpr.NewDictionary()

	type binding struct {
		v     *casexpr.Variable
		num   float64
		str   string
		isStr bool
	}
	var bindings []binding

	for _, def := range varDefs {
		name, value, ok := strings.Cut(def, "=")
		if !ok {
			errorExitf("invalid variable binding: %s (expected name=value)", def)
		}
		str, isStr := parseValue(value)
		width := 0
		if isStr {
			width = len(str)
			if width == 0 {
				width = 1
			}
		}
		v, err := dict.CreateVariable(name, width)
		if err != nil {
			errorExitf("%v", err)
		}
		b := binding{v: v, str: str, isStr: isStr}
		if !isStr {
			if strings.EqualFold(value, "sysmis") {
				b.num = casexpr.SysMis
			} else {
				b.num, _ = strconv.ParseFloat(value, 64)
			}
		}
		bindings = append(bindings, b)
	}

	for _, def := range vecDefs {
		name, list, ok := strings.Cut(def, "=")
		if !ok {
			errorExitf("invalid vector binding: %s (expected name=v1,v2,...)", def)
		}
		var vars []*casexpr.Variable
		for _, vn := range strings.Split(list, ",") {
			v, found := dict.LookupVariable(strings.TrimSpace(vn))
			if !found {
				errorExitf("vector %s refers to undefined variable %s", name, vn)
			}
			vars = append(vars, v)
		}
		if _, err := dict.CreateVector(name, vars); err != nil {
			errorExitf("%v", err)
		}
	}

	c := dict.NewCase()
	for _, b := range bindings {
		if b.isStr {
			c.SetStr(b.v, []byte(b.str))
		} else {
			c.SetNum(b.v, b.num)
		}
	}
	return dict, c
}

// parseValue decides whether a binding value is a string. Quoted values
// are strings with the quotes stripped; unquoted values are numeric when
// they parse as a number or spell sysmis.
func parseValue(value string) (str string, isStr bool) {
	if len(value) >= 2 {
		if q := value[0]; (q == '\'' || q == '"') && value[len(value)-1] == q {
			return value[1 : len(value)-1], true
		}
	}
	if strings.EqualFold(value, "sysmis") {
		return "", false
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return "", false
	}
	return value, true
}

func printWarnings(e *casexpr.Expression) {
	for _, w := range e.Warnings() {
		fmt.Fprintf(os.Stderr, "%swarning:%s %s\n", colorYellow(), colorReset(), w)
	}
}

func nextArg(i *int, flag string) string {
	if *i+1 >= len(os.Args) {
		errorExitf("flag needs an argument: %s", flag)
	}
	*i++
	return os.Args[*i]
}

// errorExitf prints a formatted error message and exits with code 1.
func errorExitf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%serror:%s %s\n", colorRed(), colorReset(), fmt.Sprintf(format, args...))
	os.Exit(1)
}

func useColor() bool {
	if env.Has("NO_COLOR") || env.Has("CASEXPR_NO_COLOR") {
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

func colorRed() string {
	if useColor() {
		return "\x1b[31m"
	}
	return ""
}

func colorYellow() string {
	if useColor() {
		return "\x1b[33m"
	}
	return ""
}

func colorReset() string {
	if useColor() {
		return "\x1b[0m"
	}
	return ""
}
