package vm

import (
	"math"
	"strings"

	"github.com/kolkov/casexpr/internal/calendar"
	"github.com/kolkov/casexpr/internal/data"
	"github.com/kolkov/casexpr/internal/ops"
)

// date dispatches the date and time opcodes. This is the tail of the
// function dispatch chain, so an unknown opcode here is a compiler bug.
func (m *VM) date(op ops.Code, c *data.Case) {
	switch op {
	case ops.FnDateDMY:
		loc := m.fetch()
		y, mth, d := m.popNum(), m.popNum(), m.popNum()
		m.pushNum(m.makeDate(loc, y, mth, d) * calendar.DaySeconds)
	case ops.FnDateMDY:
		loc := m.fetch()
		y, d, mth := m.popNum(), m.popNum(), m.popNum()
		m.pushNum(m.makeDate(loc, y, mth, d) * calendar.DaySeconds)
	case ops.FnDateQYR:
		loc := m.fetch()
		y, q := m.popNum(), m.popNum()
		if q != data.SysMis && (q < 1 || q > 4) {
			m.warnAt(loc, "quarter %v is not between 1 and 4", q)
			m.pushNum(data.SysMis)
			return
		}
		var mth float64 = data.SysMis
		if q != data.SysMis {
			mth = (math.Trunc(q)-1)*3 + 1
		}
		m.pushNum(m.makeDate(loc, y, mth, 1) * calendar.DaySeconds)
	case ops.FnDateYRDAY:
		loc := m.fetch()
		yday, y := m.popNum(), m.popNum()
		if y == data.SysMis || yday == data.SysMis {
			m.pushNum(data.SysMis)
			return
		}
		yy, ok := calendar.ApplyEpoch(int(math.Trunc(y)), m.ctx.Epoch)
		if !ok {
			m.warnAt(loc, "year %v is not a valid year", y)
			m.pushNum(data.SysMis)
			return
		}
		days, ok := calendar.YearDayToOffset(yy, int(math.Trunc(yday)))
		if !ok {
			m.warnAt(loc, "day %v is not a valid day of year %d", yday, yy)
			m.pushNum(data.SysMis)
			return
		}
		m.pushNum(days * calendar.DaySeconds)

	case ops.FnYrmoda:
		loc := m.fetch()
		d, mth, y := m.popNum(), m.popNum(), m.popNum()
		if d == data.SysMis || mth == data.SysMis || y == data.SysMis {
			m.pushNum(data.SysMis)
			return
		}
		yi := int(math.Trunc(y))
		// YRMODA's historical convention: years 0-99 mean 1900-1999.
		if yi >= 0 && yi <= 99 {
			yi += 1900
		}
		mi := int(math.Trunc(mth))
		di := int(math.Trunc(d))
		if mi < 1 || mi > 12 {
			m.warnAt(loc, "month %v is not between 1 and 12", mth)
			m.pushNum(data.SysMis)
			return
		}
		if di < 0 || di > 31 {
			m.warnAt(loc, "day %v is not between 0 and 31", d)
			m.pushNum(data.SysMis)
			return
		}
		// Day 0 names the last day of the preceding month.
		base, ok := calendar.GregorianToOffset(yi, mi, 1)
		if !ok {
			m.warnAt(loc, "%v-%v-%v is not a valid date", y, mth, d)
			m.pushNum(data.SysMis)
			return
		}
		m.pushNum(base + float64(di) - 1)

	case ops.FnDatediff:
		loc := m.fetch()
		unit := m.popStr()
		d1, d2 := m.popNum(), m.popNum()
		if d1 == data.SysMis || d2 == data.SysMis {
			m.pushNum(data.SysMis)
			return
		}
		m.pushNum(m.datediff(loc, d2, d1, unit))

	case ops.FnTimeDays:
		m.pushNum(num1(m.popNum(), func(x float64) float64 { return x * calendar.DaySeconds }))
	case ops.FnTimeHMS:
		loc := m.fetch()
		s, min, h := m.popNum(), m.popNum(), m.popNum()
		if s == data.SysMis || min == data.SysMis || h == data.SysMis {
			m.pushNum(data.SysMis)
			return
		}
		if (h < 0 || min < 0 || s < 0) && (h > 0 || min > 0 || s > 0) {
			m.warnAt(loc, "TIME.HMS arguments mix positive and negative values")
		}
		m.pushNum(finite(h*3600 + min*60 + s))

	case ops.FnCtimeDays:
		m.pushNum(num1(m.popNum(), func(x float64) float64 { return x / calendar.DaySeconds }))
	case ops.FnCtimeHours:
		m.pushNum(num1(m.popNum(), func(x float64) float64 { return x / 3600 }))
	case ops.FnCtimeMinutes:
		m.pushNum(num1(m.popNum(), func(x float64) float64 { return x / 60 }))
	case ops.FnCtimeSeconds:
		m.pushNum(num1(m.popNum(), func(x float64) float64 { return x }))

	case ops.FnXdateDate:
		m.pushNum(num1(m.popNum(), func(x float64) float64 {
			return math.Floor(x/calendar.DaySeconds) * calendar.DaySeconds
		}))
	case ops.FnXdateTime:
		m.pushNum(num1(m.popNum(), func(x float64) float64 {
			return x - math.Floor(x/calendar.DaySeconds)*calendar.DaySeconds
		}))
	case ops.FnXdateHour:
		m.pushNum(num1(m.popNum(), func(x float64) float64 {
			return math.Trunc(dayRemainder(x) / 3600)
		}))
	case ops.FnXdateMinute:
		m.pushNum(num1(m.popNum(), func(x float64) float64 {
			return math.Trunc(math.Mod(dayRemainder(x), 3600) / 60)
		}))
	case ops.FnXdateSecond:
		m.pushNum(num1(m.popNum(), func(x float64) float64 {
			return math.Mod(dayRemainder(x), 60)
		}))
	case ops.FnXdateTday:
		m.pushNum(num1(m.popNum(), func(x float64) float64 {
			return math.Trunc(x / calendar.DaySeconds)
		}))

	case ops.FnXdateYear, ops.FnXdateMonth, ops.FnXdateMday, ops.FnXdateQuarter,
		ops.FnXdateJday, ops.FnXdateWeek, ops.FnXdateWkday:
		x := m.popNum()
		if x == data.SysMis {
			m.pushNum(data.SysMis)
			return
		}
		days := int(math.Floor(x / calendar.DaySeconds))
		if days < 1 {
			m.pushNum(data.SysMis)
			return
		}
		y, mth, d := calendar.OffsetToGregorian(days)
		switch op {
		case ops.FnXdateYear:
			m.pushNum(float64(y))
		case ops.FnXdateMonth:
			m.pushNum(float64(mth))
		case ops.FnXdateMday:
			m.pushNum(float64(d))
		case ops.FnXdateQuarter:
			m.pushNum(float64((mth-1)/3 + 1))
		case ops.FnXdateJday:
			m.pushNum(float64(calendar.DayOfYear(days)))
		case ops.FnXdateWeek:
			m.pushNum(float64((calendar.DayOfYear(days)-1)/7 + 1))
		case ops.FnXdateWkday:
			m.pushNum(float64(calendar.Weekday(days)))
		}

	default:
		panic("vm: unknown opcode " + op.String())
	}
}

// makeDate builds a day offset from day, month and year expression values,
// applying the two-digit-year epoch. SYSMIS propagates; invalid dates warn.
func (m *VM) makeDate(loc Instr, y, mth, d float64) float64 {
	if y == data.SysMis || mth == data.SysMis || d == data.SysMis {
		return data.SysMis
	}
	yy, ok := calendar.ApplyEpoch(int(math.Trunc(y)), m.ctx.Epoch)
	if !ok {
		m.warnAt(loc, "year %v is not a valid year", y)
		return data.SysMis
	}
	days, ok := calendar.GregorianToOffset(yy, int(math.Trunc(mth)), int(math.Trunc(d)))
	if !ok {
		m.warnAt(loc, "%v-%v-%v is not a valid date", yy, mth, d)
		return data.SysMis
	}
	return days
}

// datediff returns the truncated count of whole units from d1 to d2.
func (m *VM) datediff(loc Instr, d2, d1 float64, unit []byte) float64 {
	u := strings.ToLower(strings.TrimSpace(string(unit)))
	neg := false
	if d2 < d1 {
		d1, d2 = d2, d1
		neg = true
	}
	var r float64
	switch u {
	case "seconds":
		r = math.Trunc(d2 - d1)
	case "minutes":
		r = math.Trunc((d2 - d1) / 60)
	case "hours":
		r = math.Trunc((d2 - d1) / 3600)
	case "days":
		r = math.Trunc((d2 - d1) / calendar.DaySeconds)
	case "weeks":
		r = math.Trunc((d2 - d1) / (7 * calendar.DaySeconds))
	case "months", "quarters", "years":
		months := wholeMonths(d1, d2)
		switch u {
		case "months":
			r = float64(months)
		case "quarters":
			r = float64(months / 3)
		case "years":
			r = float64(months / 12)
		}
	default:
		m.warnAt(loc, "%q is not a valid unit for DATEDIFF", unit)
		return data.SysMis
	}
	if neg {
		r = -r
	}
	return r
}

// wholeMonths counts complete calendar months from the earlier date d1 to
// the later date d2, both in seconds.
func wholeMonths(d1, d2 float64) int {
	days1 := int(math.Floor(d1 / calendar.DaySeconds))
	days2 := int(math.Floor(d2 / calendar.DaySeconds))
	if days1 < 1 || days2 < 1 {
		return 0
	}
	y1, m1, dd1 := calendar.OffsetToGregorian(days1)
	y2, m2, dd2 := calendar.OffsetToGregorian(days2)
	months := (y2-y1)*12 + m2 - m1
	if dd2 < dd1 {
		months--
	}
	if months < 0 {
		months = 0
	}
	return months
}

func dayRemainder(x float64) float64 {
	return x - math.Floor(x/calendar.DaySeconds)*calendar.DaySeconds
}
