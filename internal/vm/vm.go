package vm

import (
	"fmt"
	"math"

	"github.com/kolkov/casexpr/internal/calendar"
	"github.com/kolkov/casexpr/internal/data"
	"github.com/kolkov/casexpr/internal/ops"
)

// VM executes one compiled expression. It owns the stacks, the string
// arena and the warning buffer, and is reused across evaluations; it is
// not safe for concurrent use.
type VM struct {
	prog *Program
	ctx  *Context

	ip       int
	numStack []float64
	strStack [][]byte
	arena    arena

	warnings   []Warning
	warnedLocs []bool

	regexps map[string]*compiledRegex
}

// New creates a VM for the program. ctx must not be nil.
func New(prog *Program, ctx *Context) *VM {
	return &VM{
		prog:       prog,
		ctx:        ctx,
		numStack:   make([]float64, 0, prog.NumDepth),
		strStack:   make([][]byte, 0, prog.StrDepth),
		warnedLocs: make([]bool, len(prog.Locs)),
	}
}

// EvalNum evaluates a numeric or boolean program against the case.
// caseNum backs $CASENUM. The case may be nil for constant programs.
func (m *VM) EvalNum(c *data.Case, caseNum float64) float64 {
	m.run(c, caseNum)
	return m.numStack[0]
}

// EvalStr evaluates a string program against the case. The returned slice
// is valid until the next evaluation on this VM.
func (m *VM) EvalStr(c *data.Case, caseNum float64) []byte {
	m.run(c, caseNum)
	return m.strStack[0]
}

// TakeWarnings returns the warnings raised by evaluations since the last
// call and clears the buffer.
func (m *VM) TakeWarnings() []Warning {
	w := m.warnings
	m.warnings = nil
	return w
}

func (m *VM) run(c *data.Case, caseNum float64) {
	m.numStack = m.numStack[:0]
	m.strStack = m.strStack[:0]
	m.arena.reset()
	for i := range m.warnedLocs {
		m.warnedLocs[i] = false
	}

	m.ip = 0
	code := m.prog.Code
	for m.ip < len(code) {
		op := ops.Code(m.fetch())
		switch op {
		// ----- constants -----
		case ops.Number, ops.Boolean:
			m.pushNum(m.prog.Nums[m.fetch()])
		case ops.String:
			m.pushStr(m.prog.Strs[m.fetch()])

		// ----- arithmetic -----
		case ops.Neg:
			x := m.popNum()
			if x == data.SysMis {
				m.pushNum(data.SysMis)
			} else {
				m.pushNum(-x)
			}
		case ops.Add:
			b, a := m.popNum(), m.popNum()
			m.pushNum(num2(a, b, a+b))
		case ops.Sub:
			b, a := m.popNum(), m.popNum()
			m.pushNum(num2(a, b, a-b))
		case ops.Mul:
			b, a := m.popNum(), m.popNum()
			m.pushNum(num2(a, b, a*b))
		case ops.Div:
			b, a := m.popNum(), m.popNum()
			if a == data.SysMis || b == data.SysMis || b == 0 {
				m.pushNum(data.SysMis)
			} else {
				m.pushNum(finite(a / b))
			}
		case ops.Pow:
			b, a := m.popNum(), m.popNum()
			m.pushNum(num2(a, b, math.Pow(a, b)))
		case ops.Square:
			x := m.popNum()
			if x == data.SysMis {
				m.pushNum(data.SysMis)
			} else {
				m.pushNum(finite(x * x))
			}

		// ----- logical -----
		case ops.Not:
			x := m.popNum()
			if x == data.SysMis {
				m.pushNum(data.SysMis)
			} else {
				m.pushNum(1 - x)
			}
		case ops.And:
			b, a := m.popNum(), m.popNum()
			switch {
			case a == 0 || b == 0:
				m.pushNum(0)
			case a == data.SysMis || b == data.SysMis:
				m.pushNum(data.SysMis)
			default:
				m.pushNum(1)
			}
		case ops.Or:
			b, a := m.popNum(), m.popNum()
			switch {
			case a == 1 || b == 1:
				m.pushNum(1)
			case a == data.SysMis || b == data.SysMis:
				m.pushNum(data.SysMis)
			default:
				m.pushNum(0)
			}

		// ----- relational -----
		case ops.Eq:
			b, a := m.popNum(), m.popNum()
			m.pushNum(rel(a, b, a == b))
		case ops.Ne:
			b, a := m.popNum(), m.popNum()
			m.pushNum(rel(a, b, a != b))
		case ops.Lt:
			b, a := m.popNum(), m.popNum()
			m.pushNum(rel(a, b, a < b))
		case ops.Le:
			b, a := m.popNum(), m.popNum()
			m.pushNum(rel(a, b, a <= b))
		case ops.Gt:
			b, a := m.popNum(), m.popNum()
			m.pushNum(rel(a, b, a > b))
		case ops.Ge:
			b, a := m.popNum(), m.popNum()
			m.pushNum(rel(a, b, a >= b))
		case ops.EqStr:
			b, a := m.popStr(), m.popStr()
			m.pushBool(comparePadded(a, b) == 0)
		case ops.NeStr:
			b, a := m.popStr(), m.popStr()
			m.pushBool(comparePadded(a, b) != 0)
		case ops.LtStr:
			b, a := m.popStr(), m.popStr()
			m.pushBool(comparePadded(a, b) < 0)
		case ops.LeStr:
			b, a := m.popStr(), m.popStr()
			m.pushBool(comparePadded(a, b) <= 0)
		case ops.GtStr:
			b, a := m.popStr(), m.popStr()
			m.pushBool(comparePadded(a, b) > 0)
		case ops.GeStr:
			b, a := m.popStr(), m.popStr()
			m.pushBool(comparePadded(a, b) >= 0)

		// ----- coercions -----
		case ops.BooleanToNum:
			// Identity at runtime; normally elided by the flattener.
		case ops.OperandToBoolean, ops.ExprToBoolean:
			loc := m.fetch()
			x := m.popNum()
			if x == data.SysMis || x == 0 || x == 1 {
				m.pushNum(x)
			} else {
				m.warnAt(loc, "value %v used where a boolean (0, 1 or SYSMIS) is required", x)
				m.pushNum(data.SysMis)
			}

		// ----- variable and vector access -----
		case ops.NumVar:
			v := m.prog.Vars[m.fetch()]
			x := c.Num(v)
			if v.IsUserMissing(x) {
				x = data.SysMis
			}
			m.pushNum(x)
		case ops.StrVar:
			v := m.prog.Vars[m.fetch()]
			m.pushStr(c.Str(v))
		case ops.VecElemNum, ops.VecElemStr:
			vec := m.prog.Vectors[m.fetch()]
			loc := m.fetch()
			idx := m.popNum()
			v, ok := m.vectorElem(vec, idx, loc)
			if op == ops.VecElemNum {
				if !ok {
					m.pushNum(data.SysMis)
					break
				}
				x := c.Num(v)
				if v.IsUserMissing(x) {
					x = data.SysMis
				}
				m.pushNum(x)
			} else {
				if !ok {
					m.pushStr(nil)
					break
				}
				m.pushStr(c.Str(v))
			}

		// ----- system variables -----
		case ops.SysCaseNum:
			m.pushNum(caseNum)
		case ops.SysDate, ops.SysDate11:
			m.pushStr(m.sysDate(op == ops.SysDate11))
		case ops.SysJDate:
			m.pushNum(m.todayOffset())
		case ops.SysTime:
			now := m.ctx.now()
			secs := float64(now.Hour()*3600 + now.Minute()*60 + now.Second())
			m.pushNum(m.todayOffset()*calendar.DaySeconds + secs)
		case ops.SysLength:
			m.pushNum(float64(m.ctx.ViewLength))
		case ops.SysWidth:
			m.pushNum(float64(m.ctx.ViewWidth))

		case ops.ReturnNumber, ops.ReturnString:
			return

		default:
			m.function(op, c)
		}
	}
}

// fetch reads the next instruction slot.
func (m *VM) fetch() Instr {
	v := m.prog.Code[m.ip]
	m.ip++
	return v
}

// ----- stack operations -----

func (m *VM) pushNum(x float64) {
	m.numStack = append(m.numStack, x)
}

func (m *VM) popNum() float64 {
	n := len(m.numStack) - 1
	x := m.numStack[n]
	m.numStack = m.numStack[:n]
	return x
}

// popNums pops n values, returning them in push order. The slice aliases
// the stack and is only valid until the next push.
func (m *VM) popNums(n int) []float64 {
	i := len(m.numStack) - n
	s := m.numStack[i:]
	m.numStack = m.numStack[:i]
	return s
}

func (m *VM) pushBool(b bool) {
	if b {
		m.pushNum(1)
	} else {
		m.pushNum(0)
	}
}

func (m *VM) pushStr(s []byte) {
	m.strStack = append(m.strStack, s)
}

func (m *VM) popStr() []byte {
	n := len(m.strStack) - 1
	s := m.strStack[n]
	m.strStack = m.strStack[:n]
	return s
}

// popStrs pops n strings, returning them in push order. The slice aliases
// the stack and is only valid until the next push.
func (m *VM) popStrs(n int) [][]byte {
	i := len(m.strStack) - n
	s := m.strStack[i:]
	m.strStack = m.strStack[:i]
	return s
}

// ----- helpers -----

// warnAt buffers a warning for the location, once per site per evaluation.
func (m *VM) warnAt(loc Instr, format string, args ...any) {
	if m.warnedLocs[loc] {
		return
	}
	m.warnedLocs[loc] = true
	if m.ctx.MaxWarnings > 0 && len(m.warnings) >= m.ctx.MaxWarnings {
		return
	}
	m.warnings = append(m.warnings, Warning{
		Span:    m.prog.Locs[loc],
		Message: fmt.Sprintf(format, args...),
	})
}

// vectorElem resolves a vector index, warning on missing or out-of-range
// values.
func (m *VM) vectorElem(vec *data.Vector, idx float64, loc Instr) (*data.Variable, bool) {
	if idx == data.SysMis {
		m.warnAt(loc, "SYSMIS is not a valid index for vector %s", vec.Name)
		return nil, false
	}
	i := int(math.Trunc(idx))
	if i < 1 || i > vec.Len() {
		m.warnAt(loc, "index %v is outside vector %s with %d elements",
			idx, vec.Name, vec.Len())
		return nil, false
	}
	return vec.Vars[i-1], true
}

func (m *VM) sysDate(long bool) []byte {
	now := m.ctx.now()
	d, mth, y := now.Day(), int(now.Month()), now.Year()
	var text string
	if long {
		text = fmt.Sprintf("%02d-%s-%04d", d, calendar.MonthNames[mth], y)
	} else {
		text = fmt.Sprintf("%02d-%s-%02d", d, calendar.MonthNames[mth], y%100)
	}
	return m.arena.dup([]byte(text))
}

func (m *VM) todayOffset() float64 {
	now := m.ctx.now()
	days, _ := calendar.GregorianToOffset(now.Year(), int(now.Month()), now.Day())
	return days
}

// num2 propagates SYSMIS through a binary numeric result.
func num2(a, b, r float64) float64 {
	if a == data.SysMis || b == data.SysMis {
		return data.SysMis
	}
	return finite(r)
}

// rel propagates SYSMIS through a numeric comparison.
func rel(a, b float64, r bool) float64 {
	if a == data.SysMis || b == data.SysMis {
		return data.SysMis
	}
	if r {
		return 1
	}
	return 0
}

// finite maps NaN and infinities to SYSMIS so the numeric domain stays
// closed.
func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return data.SysMis
	}
	return x
}

// comparePadded compares two strings as if blank-padded to equal length.
func comparePadded(a, b []byte) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ca, cb := byte(' '), byte(' ')
		if i < len(a) {
			ca = a[i]
		}
		if i < len(b) {
			cb = b[i]
		}
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
	}
	return 0
}
