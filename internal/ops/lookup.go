package ops

import "strings"

// sysVars maps system variable spellings to composite codes. $TRUE, $FALSE
// and $SYSMIS are handled by the parser directly as constants.
var sysVars = map[string]Code{
	"$CASENUM": SysCaseNum,
	"$DATE":    SysDate,
	"$DATE11":  SysDate11,
	"$JDATE":   SysJDate,
	"$TIME":    SysTime,
	"$LENGTH":  SysLength,
	"$WIDTH":   SysWidth,
}

// LookupSysVar resolves a system variable name, case-insensitively.
func LookupSysVar(name string) (Code, bool) {
	c, ok := sysVars[strings.ToUpper(name)]
	return c, ok
}

// Lookup returns the function codes whose name matches the given spelling.
// An exact match shadows abbreviation matches; several codes can share one
// name (overloads resolved later by argument types).
func Lookup(name string) []Code {
	up := strings.ToUpper(name)
	var exact, abbrev []Code
	for c := funcFirst + 1; c < funcLast; c++ {
		def := &defs[c]
		if def.Name == up {
			exact = append(exact, c)
			continue
		}
		if def.Flags&NoAbbrev == 0 && matchAbbrev(def.Name, up) {
			abbrev = append(abbrev, c)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return abbrev
}

// matchAbbrev reports whether given abbreviates canonical: the two must
// have the same number of period-separated segments, and each given
// segment must be a prefix, at least three characters long, of the
// corresponding canonical segment.
func matchAbbrev(canonical, given string) bool {
	cs := strings.Split(canonical, ".")
	gs := strings.Split(given, ".")
	if len(cs) != len(gs) {
		return false
	}
	for i, g := range gs {
		if len(g) < 3 && len(g) < len(cs[i]) {
			return false
		}
		if !strings.HasPrefix(cs[i], g) {
			return false
		}
	}
	return true
}
