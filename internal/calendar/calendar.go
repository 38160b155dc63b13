// Package calendar implements Gregorian date arithmetic for the date and
// time functions. Dates are counted in days from the calendar epoch, the
// day before 15 Oct 1582, so that 15 Oct 1582 is day 1. Date values at the
// expression level are that offset times 86400 seconds.
package calendar

// DaySeconds is the number of seconds in a day.
const DaySeconds = 86400.0

// epochDays is daysFromCivil(1582, 10, 14), the zero point of the offset.
var epochDays = daysFromCivil(1582, 10, 14)

var monthDays = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// MonthNames holds upper-case English month names, 1-based.
var MonthNames = [13]string{"",
	"JAN", "FEB", "MAR", "APR", "MAY", "JUN",
	"JUL", "AUG", "SEP", "OCT", "NOV", "DEC",
}

// IsLeap reports whether year y is a Gregorian leap year.
func IsLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(y, m int) int {
	if m == 2 && IsLeap(y) {
		return 29
	}
	return monthDays[m]
}

// GregorianToOffset converts a calendar date to a day offset. Dates before
// 15 Oct 1582 are rejected, as are invalid months and days.
func GregorianToOffset(y, m, d int) (float64, bool) {
	if m < 1 || m > 12 || d < 1 || d > DaysInMonth(y, m) {
		return 0, false
	}
	days := daysFromCivil(y, m, d) - epochDays
	if days < 1 {
		return 0, false
	}
	return float64(days), true
}

// OffsetToGregorian converts a day offset back to a calendar date.
func OffsetToGregorian(offset int) (y, m, d int) {
	return civilFromDays(offset + epochDays)
}

// YearDayToOffset converts a year and 1-based day-of-year to a day offset.
func YearDayToOffset(y, yday int) (float64, bool) {
	max := 365
	if IsLeap(y) {
		max = 366
	}
	if yday < 1 || yday > max {
		return 0, false
	}
	days := daysFromCivil(y, 1, 1) - epochDays + yday - 1
	if days < 1 {
		return 0, false
	}
	return float64(days), true
}

// DayOfYear returns the 1-based ordinal day within the year of the offset.
func DayOfYear(offset int) int {
	y, _, _ := OffsetToGregorian(offset)
	first := daysFromCivil(y, 1, 1) - epochDays
	return offset - first + 1
}

// Weekday returns the day of the week of the offset, 1 = Sunday.
func Weekday(offset int) int {
	days := offset + epochDays // days since 1970-01-01, Thursday
	return mod(days+4, 7) + 1
}

// ApplyEpoch resolves a two-digit year against the epoch: the result is the
// year in [epoch, epoch+99] whose final two digits match. Years of three or
// more digits pass through, and negative years are rejected.
func ApplyEpoch(y, epoch int) (int, bool) {
	if y < 0 {
		return 0, false
	}
	if y >= 100 {
		return y, true
	}
	century := epoch - mod(epoch, 100)
	full := century + y
	if full < epoch {
		full += 100
	}
	return full, true
}

// daysFromCivil returns days since 1970-01-01 for a proleptic Gregorian
// date. Standard civil-from-days arithmetic.
func daysFromCivil(y, m, d int) int {
	if m <= 2 {
		y--
	}
	era := floorDiv(y, 400)
	yoe := y - era*400
	var doy int
	if m > 2 {
		doy = (153*(m-3)+2)/5 + d - 1
	} else {
		doy = (153*(m+9)+2)/5 + d - 1
	}
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// civilFromDays is the inverse of daysFromCivil.
func civilFromDays(z int) (y, m, d int) {
	z += 719468
	era := floorDiv(z, 146097)
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y = yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d = doy - (153*mp+2)/5 + 1
	if mp < 10 {
		m = mp + 3
	} else {
		m = mp - 9
	}
	if m <= 2 {
		y++
	}
	return y, m, d
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func mod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}
