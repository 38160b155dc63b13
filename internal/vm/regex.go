package vm

import (
	"github.com/coregx/coregex"
)

// compiledRegex caches one pattern compilation, including a failed one so
// a bad pattern is compiled (and warned about) only once.
type compiledRegex struct {
	re  *coregex.Regexp
	err error
}

// compileRegex returns the compiled pattern or nil after warning about a
// bad one. Compilations cache on the VM for the program's lifetime.
func (m *VM) compileRegex(pattern string, loc Instr) *coregex.Regexp {
	if m.regexps == nil {
		m.regexps = make(map[string]*compiledRegex)
	}
	cr, ok := m.regexps[pattern]
	if !ok {
		re, err := coregex.Compile(pattern)
		cr = &compiledRegex{re: re, err: err}
		m.regexps[pattern] = cr
	}
	if cr.err != nil {
		m.warnAt(loc, "invalid regular expression %q: %v", pattern, cr.err)
		return nil
	}
	return cr.re
}
