package vm

import (
	"bytes"
	"math"

	"github.com/kolkov/casexpr/internal/data"
	"github.com/kolkov/casexpr/internal/format"
	"github.com/kolkov/casexpr/internal/ops"
)

// function dispatches a function-range opcode. Payloads are consumed in
// the order the flattener emits them: aux operands, array count,
// minimum-valid count, location.
func (m *VM) function(op ops.Code, c *data.Case) {
	switch op {
	// ----- mathematics -----
	case ops.FnAbs:
		m.pushNum(num1(m.popNum(), math.Abs))
	case ops.FnArtan:
		m.pushNum(num1(m.popNum(), math.Atan))
	case ops.FnCos:
		m.pushNum(num1(m.popNum(), math.Cos))
	case ops.FnSin:
		m.pushNum(num1(m.popNum(), math.Sin))
	case ops.FnTan:
		m.pushNum(num1(m.popNum(), math.Tan))
	case ops.FnExp:
		m.pushNum(num1(m.popNum(), math.Exp))
	case ops.FnRnd:
		m.pushNum(num1(m.popNum(), math.Round))
	case ops.FnTrunc:
		x := m.popNum()
		if x == data.SysMis {
			m.pushNum(data.SysMis)
		} else {
			m.pushNum(truncFuzzed(x, m.ctx.FuzzBits))
		}
	case ops.FnMod10:
		m.pushNum(num1(m.popNum(), func(x float64) float64 { return math.Mod(x, 10) }))

	case ops.FnArcos:
		loc := m.fetch()
		m.pushNum(m.domain1(loc, m.popNum(), math.Acos, "argument of ARCOS outside [-1,1]", inUnit))
	case ops.FnArsin:
		loc := m.fetch()
		m.pushNum(m.domain1(loc, m.popNum(), math.Asin, "argument of ARSIN outside [-1,1]", inUnit))
	case ops.FnLg10:
		loc := m.fetch()
		m.pushNum(m.domain1(loc, m.popNum(), math.Log10, "argument of LG10 must be positive", positive))
	case ops.FnLn:
		loc := m.fetch()
		m.pushNum(m.domain1(loc, m.popNum(), math.Log, "argument of LN must be positive", positive))
	case ops.FnLngamma:
		loc := m.fetch()
		m.pushNum(m.domain1(loc, m.popNum(), lgamma, "argument of LNGAMMA must be positive", positive))
	case ops.FnSqrt:
		loc := m.fetch()
		m.pushNum(m.domain1(loc, m.popNum(), math.Sqrt, "argument of SQRT must not be negative", nonNegative))

	case ops.FnMod:
		b, a := m.popNum(), m.popNum()
		switch {
		case a == data.SysMis || b == data.SysMis:
			m.pushNum(data.SysMis)
		case b == 0:
			if a == 0 {
				m.pushNum(0)
			} else {
				m.pushNum(data.SysMis)
			}
		default:
			m.pushNum(finite(math.Mod(a, b)))
		}

	// ----- statistical -----
	case ops.FnSum, ops.FnMean, ops.FnSD, ops.FnVariance, ops.FnCfvar,
		ops.FnMaxNum, ops.FnMinNum:
		n := int(m.fetch())
		minValid := int(m.fetch())
		m.pushNum(statistic(op, m.popNums(n), minValid))

	case ops.FnMaxStr, ops.FnMinStr:
		n := int(m.fetch())
		args := m.popStrs(n)
		best := args[0]
		for _, s := range args[1:] {
			cmp := comparePadded(s, best)
			if op == ops.FnMaxStr && cmp > 0 || op == ops.FnMinStr && cmp < 0 {
				best = s
			}
		}
		m.pushStr(best)

	// ----- membership -----
	case ops.FnAnyNum:
		n := int(m.fetch())
		args := m.popNums(n)
		x := m.numStack[len(m.numStack)-1]
		m.numStack = m.numStack[:len(m.numStack)-1]
		m.pushNum(anyNum(x, args))
	case ops.FnAnyStr:
		n := int(m.fetch())
		args := m.popStrs(n)
		x := m.strStack[len(m.strStack)-1]
		m.strStack = m.strStack[:len(m.strStack)-1]
		found := false
		for _, s := range args {
			if comparePadded(x, s) == 0 {
				found = true
				break
			}
		}
		m.pushBool(found)
	case ops.FnRangeNum:
		n := int(m.fetch())
		args := m.popNums(n)
		x := m.numStack[len(m.numStack)-1]
		m.numStack = m.numStack[:len(m.numStack)-1]
		m.pushNum(rangeNum(x, args))
	case ops.FnRangeStr:
		n := int(m.fetch())
		args := m.popStrs(n)
		x := m.strStack[len(m.strStack)-1]
		m.strStack = m.strStack[:len(m.strStack)-1]
		in := false
		for i := 0; i+1 < len(args); i += 2 {
			if comparePadded(x, args[i]) >= 0 && comparePadded(x, args[i+1]) <= 0 {
				in = true
				break
			}
		}
		m.pushBool(in)

	// ----- missing values -----
	case ops.FnMissing:
		v := m.prog.Vars[m.fetch()]
		if v.IsNumeric() {
			x := c.Num(v)
			m.pushBool(x == data.SysMis || v.IsUserMissing(x))
		} else {
			m.pushBool(false)
		}
	case ops.FnSysmis:
		m.pushBool(m.popNum() == data.SysMis)
	case ops.FnValue:
		v := m.prog.Vars[m.fetch()]
		m.pushNum(c.Num(v))
	case ops.FnNmiss, ops.FnNvalid:
		n := int(m.fetch())
		args := m.popNums(n)
		miss := 0
		for _, x := range args {
			if x == data.SysMis {
				miss++
			}
		}
		if op == ops.FnNmiss {
			m.pushNum(float64(miss))
		} else {
			m.pushNum(float64(n - miss))
		}

	// ----- strings -----
	case ops.FnConcat:
		n := int(m.fetch())
		args := m.popStrs(n)
		total := 0
		for _, s := range args {
			total += len(s)
		}
		if total > data.MaxString {
			total = data.MaxString
		}
		out := m.arena.alloc(total)
		i := 0
		for _, s := range args {
			i += copy(out[i:], s)
		}
		m.pushStr(out)
	case ops.FnIndex:
		needle, hay := m.popStr(), m.popStr()
		if len(needle) == 0 {
			m.pushNum(0)
		} else {
			m.pushNum(float64(bytes.Index(hay, needle) + 1))
		}
	case ops.FnRindex:
		needle, hay := m.popStr(), m.popStr()
		if len(needle) == 0 {
			m.pushNum(0)
		} else {
			m.pushNum(float64(bytes.LastIndex(hay, needle) + 1))
		}
	case ops.FnLength:
		m.pushNum(float64(len(m.popStr())))
	case ops.FnLower:
		s := m.popStr()
		out := m.arena.dup(s)
		for i, ch := range out {
			if ch >= 'A' && ch <= 'Z' {
				out[i] = ch + ('a' - 'A')
			}
		}
		m.pushStr(out)
	case ops.FnUpcase:
		s := m.popStr()
		out := m.arena.dup(s)
		for i, ch := range out {
			if ch >= 'a' && ch <= 'z' {
				out[i] = ch - ('a' - 'A')
			}
		}
		m.pushStr(out)

	case ops.FnLpad2, ops.FnRpad2:
		n := int(m.fetch())
		s := m.popStr()
		m.pushStr(m.padded(s, n, ' ', op == ops.FnLpad2))
	case ops.FnLpad3, ops.FnRpad3:
		n := int(m.fetch())
		loc := m.fetch()
		padStr := m.popStr()
		s := m.popStr()
		if len(padStr) != 1 {
			m.warnAt(loc, "padding string must be exactly one byte, not %d", len(padStr))
			m.pushStr(nil)
			break
		}
		m.pushStr(m.padded(s, n, padStr[0], op == ops.FnLpad3))

	case ops.FnLtrim1:
		m.pushStr(trim(m.popStr(), ' ', true))
	case ops.FnRtrim1:
		m.pushStr(trim(m.popStr(), ' ', false))
	case ops.FnLtrim2, ops.FnRtrim2:
		loc := m.fetch()
		cut := m.popStr()
		s := m.popStr()
		if len(cut) != 1 {
			m.warnAt(loc, "trim string must be exactly one byte, not %d", len(cut))
			m.pushStr(nil)
			break
		}
		m.pushStr(trim(s, cut[0], op == ops.FnLtrim2))

	case ops.FnSubstr2:
		start := m.popNum()
		s := m.popStr()
		m.pushStr(substr(s, start, float64(len(s))))
	case ops.FnSubstr3:
		count := m.popNum()
		start := m.popNum()
		s := m.popStr()
		m.pushStr(substr(s, start, count))

	case ops.FnReplace:
		repl := m.popStr()
		needle := m.popStr()
		hay := m.popStr()
		if len(needle) == 0 {
			m.pushStr(hay)
			break
		}
		out := bytes.ReplaceAll(hay, needle, repl)
		if len(out) > data.MaxString {
			out = out[:data.MaxString]
		}
		m.pushStr(out)

	case ops.FnNumber:
		spec := m.prog.Formats[m.fetch()]
		loc := m.fetch()
		s := m.popStr()
		v, missing, ok := format.ParseNum(spec, string(s), m.ctx.Epoch)
		switch {
		case !ok:
			m.warnAt(loc, "%q cannot be read with format %s", s, spec)
			m.pushNum(data.SysMis)
		case missing:
			m.pushNum(data.SysMis)
		default:
			m.pushNum(v)
		}
	case ops.FnString:
		spec := m.prog.Formats[m.fetch()]
		loc := m.fetch()
		x := m.popNum()
		text := format.Render(spec, x, x == data.SysMis)
		if len(text) == spec.W && text == overflowText(spec.W) && x != data.SysMis {
			m.warnAt(loc, "value %v does not fit in format %s", x, spec)
		}
		m.pushStr(m.arena.dup([]byte(text)))

	// ----- random draws -----
	case ops.FnUniform:
		x := m.popNum()
		if x == data.SysMis || m.ctx.Rand == nil {
			m.pushNum(data.SysMis)
		} else {
			m.pushNum(m.ctx.Rand.Float64() * x)
		}
	case ops.FnNormal:
		x := m.popNum()
		if x == data.SysMis || m.ctx.Rand == nil {
			m.pushNum(data.SysMis)
		} else {
			m.pushNum(m.ctx.Rand.NormFloat64() * x)
		}

	// ----- case history -----
	case ops.FnLagNum1, ops.FnLagNumN:
		v := m.prog.Vars[m.fetch()]
		n := 1
		if op == ops.FnLagNumN {
			n = int(m.fetch())
		}
		if m.ctx.LagNum == nil {
			m.pushNum(data.SysMis)
			break
		}
		x := m.ctx.LagNum(v, n)
		if v.IsUserMissing(x) {
			x = data.SysMis
		}
		m.pushNum(x)
	case ops.FnLagStr1, ops.FnLagStrN:
		v := m.prog.Vars[m.fetch()]
		n := 1
		if op == ops.FnLagStrN {
			n = int(m.fetch())
		}
		if m.ctx.LagStr == nil {
			m.pushStr(m.blankValue(v.Width))
			break
		}
		m.pushStr(m.ctx.LagStr(v, n))

	// ----- extensions -----
	case ops.FnRematch:
		loc := m.fetch()
		pat := m.popStr()
		s := m.popStr()
		re := m.compileRegex(string(pat), loc)
		if re == nil {
			m.pushNum(data.SysMis)
			break
		}
		m.pushBool(re.MatchString(string(s)))
	case ops.FnResub:
		loc := m.fetch()
		repl := m.popStr()
		pat := m.popStr()
		s := m.popStr()
		re := m.compileRegex(string(pat), loc)
		if re == nil {
			m.pushStr(nil)
			break
		}
		out := re.ReplaceAllString(string(s), string(repl))
		if len(out) > data.MaxString {
			out = out[:data.MaxString]
		}
		m.pushStr(m.arena.dup([]byte(out)))

	default:
		m.date(op, c)
	}
}

// num1 applies f with SYSMIS propagation and finite clamping.
func num1(x float64, f func(float64) float64) float64 {
	if x == data.SysMis {
		return data.SysMis
	}
	return finite(f(x))
}

// domain1 applies f when check passes, otherwise warns and yields SYSMIS.
func (m *VM) domain1(loc Instr, x float64, f func(float64) float64, msg string, check func(float64) bool) float64 {
	if x == data.SysMis {
		return data.SysMis
	}
	if !check(x) {
		m.warnAt(loc, "%s", msg)
		return data.SysMis
	}
	return finite(f(x))
}

func inUnit(x float64) bool      { return x >= -1 && x <= 1 }
func positive(x float64) bool    { return x > 0 }
func nonNegative(x float64) bool { return x >= 0 }

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}

// truncFuzzed truncates toward zero, first snapping values within the fuzz
// distance of the next integer.
func truncFuzzed(x float64, fuzzBits int) float64 {
	if fuzzBits > 0 {
		fuzz := math.Ldexp(1, -fuzzBits)
		r := math.Round(x)
		if math.Abs(x-r) < fuzz {
			return r
		}
	}
	return math.Trunc(x)
}

// statistic computes one of the trailing-array statistics over args,
// honoring the minimum-valid count.
func statistic(op ops.Code, args []float64, minValid int) float64 {
	var sum float64
	valid := 0
	for _, x := range args {
		if x != data.SysMis {
			sum += x
			valid++
		}
	}
	if valid < minValid || valid == 0 {
		return data.SysMis
	}
	mean := sum / float64(valid)
	switch op {
	case ops.FnSum:
		return sum
	case ops.FnMean:
		return mean
	case ops.FnMaxNum, ops.FnMinNum:
		best := data.SysMis
		for _, x := range args {
			if x == data.SysMis {
				continue
			}
			if best == data.SysMis ||
				op == ops.FnMaxNum && x > best ||
				op == ops.FnMinNum && x < best {
				best = x
			}
		}
		return best
	}
	// SD, VARIANCE and CFVAR need at least two valid values.
	if valid < 2 {
		return data.SysMis
	}
	var ss float64
	for _, x := range args {
		if x != data.SysMis {
			d := x - mean
			ss += d * d
		}
	}
	variance := ss / float64(valid-1)
	switch op {
	case ops.FnVariance:
		return variance
	case ops.FnSD:
		return math.Sqrt(variance)
	case ops.FnCfvar:
		if mean == 0 {
			return data.SysMis
		}
		return finite(math.Sqrt(variance) / mean)
	}
	return data.SysMis
}

// anyNum implements ANY: missing x gives SYSMIS; a hit gives true; a miss
// with any missing comparand gives SYSMIS.
func anyNum(x float64, args []float64) float64 {
	if x == data.SysMis {
		return data.SysMis
	}
	sawMissing := false
	for _, a := range args {
		if a == data.SysMis {
			sawMissing = true
			continue
		}
		if a == x {
			return 1
		}
	}
	if sawMissing {
		return data.SysMis
	}
	return 0
}

// rangeNum implements RANGE over (lo, hi) pairs with the same missing
// rules as ANY.
func rangeNum(x float64, args []float64) float64 {
	if x == data.SysMis {
		return data.SysMis
	}
	sawMissing := false
	for i := 0; i+1 < len(args); i += 2 {
		lo, hi := args[i], args[i+1]
		if lo == data.SysMis || hi == data.SysMis {
			sawMissing = true
			continue
		}
		if x >= lo && x <= hi {
			return 1
		}
	}
	if sawMissing {
		return data.SysMis
	}
	return 0
}

// padded pads s to n bytes on the left or right, in the arena. Strings
// already at least n bytes long pass through.
func (m *VM) padded(s []byte, n int, pad byte, left bool) []byte {
	if len(s) >= n {
		return s
	}
	out := m.arena.alloc(n)
	fill := n - len(s)
	if left {
		for i := 0; i < fill; i++ {
			out[i] = pad
		}
		copy(out[fill:], s)
	} else {
		copy(out, s)
		for i := len(s); i < n; i++ {
			out[i] = pad
		}
	}
	return out
}

// trim removes leading or trailing cut bytes. The result aliases s.
func trim(s []byte, cut byte, left bool) []byte {
	if left {
		for len(s) > 0 && s[0] == cut {
			s = s[1:]
		}
	} else {
		for len(s) > 0 && s[len(s)-1] == cut {
			s = s[:len(s)-1]
		}
	}
	return s
}

// substr extracts count bytes of s starting at the 1-based start position.
// Positions truncate toward zero; anything out of range yields the empty
// string, and SYSMIS arguments do too.
func substr(s []byte, start, count float64) []byte {
	if start == data.SysMis || count == data.SysMis {
		return nil
	}
	i := int(math.Trunc(start))
	n := int(math.Trunc(count))
	if i < 1 || i > len(s) || n <= 0 {
		return nil
	}
	end := i - 1 + n
	if end > len(s) {
		end = len(s)
	}
	return s[i-1 : end]
}

// blankValue returns width blanks from the arena.
func (m *VM) blankValue(width int) []byte {
	out := m.arena.alloc(width)
	for i := range out {
		out[i] = ' '
	}
	return out
}

func overflowText(w int) string {
	b := make([]byte, w)
	for i := range b {
		b[i] = '*'
	}
	return string(b)
}
