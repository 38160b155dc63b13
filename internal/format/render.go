package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kolkov/casexpr/internal/calendar"
)

// Render formats a numeric value according to the descriptor, producing
// exactly s.W bytes. A missing value renders as a right-justified period.
// Values that cannot fit even with zero decimals render as asterisks.
func Render(s Spec, v float64, missing bool) string {
	if missing {
		return pad(".", s.W)
	}
	switch s.Type {
	case F:
		return renderF(s, v, "", "")
	case Comma:
		return renderGrouped(s, v, "", ",", ".")
	case Dot:
		return renderGrouped(s, v, "", ".", ",")
	case Dollar:
		return renderGrouped(s, v, "$", ",", ".")
	case Pct:
		return renderF(s, v, "", "%")
	case E:
		return renderE(s, v)
	case N:
		return renderN(s, v)
	case Date:
		return renderDate(s, v, dayMonthYear)
	case ADate:
		return renderDate(s, v, monthDayYear)
	case EDate:
		return renderDate(s, v, europeanDate)
	case SDate:
		return renderDate(s, v, sortableDate)
	case JDate:
		return renderDate(s, v, julianDate)
	case QYr:
		return renderDate(s, v, quarterYear)
	case MoYr:
		return renderDate(s, v, monthYear)
	case WkYr:
		return renderDate(s, v, weekYear)
	case DateTime:
		return renderDateTime(s, v)
	case Time:
		return renderTime(s, v, false)
	case DTime:
		return renderTime(s, v, true)
	case WkDay:
		return renderWkDay(s, v)
	case Month:
		return renderMonth(s, v)
	}
	return overflow(s.W)
}

// renderF right-justifies a plain decimal rendering, dropping decimals one
// at a time when the value does not fit.
func renderF(s Spec, v float64, prefix, suffix string) string {
	for d := s.D; d >= 0; d-- {
		text := prefix + strconv.FormatFloat(v, 'f', d, 64) + suffix
		if len(text) <= s.W {
			return pad(text, s.W)
		}
	}
	return overflow(s.W)
}

// renderGrouped is renderF with thousands grouping.
func renderGrouped(s Spec, v float64, prefix, group, point string) string {
	neg := math.Signbit(v)
	for d := s.D; d >= 0; d-- {
		base := strconv.FormatFloat(math.Abs(v), 'f', d, 64)
		intPart, frac, _ := strings.Cut(base, ".")
		text := prefix + groupDigits(intPart, group)
		if frac != "" {
			text += point + frac
		}
		if neg {
			text = "-" + text
		}
		if len(text) <= s.W {
			return pad(text, s.W)
		}
	}
	return overflow(s.W)
}

func groupDigits(digits, sep string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var sb strings.Builder
	lead := n % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < n; i += 3 {
		if sb.Len() > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}

// renderE produces scientific notation with a three-digit exponent.
func renderE(s Spec, v float64) string {
	for d := s.D; d >= 0; d-- {
		text := strconv.FormatFloat(v, 'E', d, 64)
		// Widen exponent to three digits: 1.5E+07 -> 1.5E+007.
		if i := strings.IndexByte(text, 'E'); i >= 0 {
			exp := text[i+2:]
			for len(exp) < 3 {
				exp = "0" + exp
			}
			text = text[:i+2] + exp
		}
		if len(text) <= s.W {
			return pad(text, s.W)
		}
	}
	return overflow(s.W)
}

// renderN produces an unsigned zero-filled integer rendering.
func renderN(s Spec, v float64) string {
	r := math.Round(v)
	if r < 0 {
		return overflow(s.W)
	}
	text := strconv.FormatFloat(r, 'f', 0, 64)
	if len(text) > s.W {
		return overflow(s.W)
	}
	return strings.Repeat("0", s.W-len(text)) + text
}

type dateLayout uint8

const (
	dayMonthYear dateLayout = iota
	monthDayYear
	europeanDate
	sortableDate
	julianDate
	quarterYear
	monthYear
	weekYear
)

// renderDate renders a date value (seconds) in one of the calendar layouts.
// Width decides between two- and four-digit years where the layout allows.
func renderDate(s Spec, v float64, layout dateLayout) string {
	days := int(math.Floor(v / calendar.DaySeconds))
	if days < 1 {
		return overflow(s.W)
	}
	y, m, d := calendar.OffsetToGregorian(days)
	yy := y % 100
	var text string
	switch layout {
	case dayMonthYear:
		if s.W >= 11 {
			text = fmt.Sprintf("%02d-%s-%04d", d, calendar.MonthNames[m], y)
		} else {
			text = fmt.Sprintf("%02d-%s-%02d", d, calendar.MonthNames[m], yy)
		}
	case monthDayYear:
		if s.W >= 10 {
			text = fmt.Sprintf("%02d/%02d/%04d", m, d, y)
		} else {
			text = fmt.Sprintf("%02d/%02d/%02d", m, d, yy)
		}
	case europeanDate:
		if s.W >= 10 {
			text = fmt.Sprintf("%02d.%02d.%04d", d, m, y)
		} else {
			text = fmt.Sprintf("%02d.%02d.%02d", d, m, yy)
		}
	case sortableDate:
		if s.W >= 10 {
			text = fmt.Sprintf("%04d/%02d/%02d", y, m, d)
		} else {
			text = fmt.Sprintf("%02d/%02d/%02d", yy, m, d)
		}
	case julianDate:
		yday := calendar.DayOfYear(days)
		if s.W >= 7 {
			text = fmt.Sprintf("%04d%03d", y, yday)
		} else {
			text = fmt.Sprintf("%02d%03d", yy, yday)
		}
	case quarterYear:
		q := (m-1)/3 + 1
		if s.W >= 8 {
			text = fmt.Sprintf("%d Q %04d", q, y)
		} else {
			text = fmt.Sprintf("%d Q %02d", q, yy)
		}
	case monthYear:
		if s.W >= 8 {
			text = fmt.Sprintf("%s %04d", calendar.MonthNames[m], y)
		} else {
			text = fmt.Sprintf("%s %02d", calendar.MonthNames[m], yy)
		}
	case weekYear:
		wk := (calendar.DayOfYear(days)-1)/7 + 1
		if s.W >= 10 {
			text = fmt.Sprintf("%2d WK %04d", wk, y)
		} else {
			text = fmt.Sprintf("%2d WK %02d", wk, yy)
		}
	}
	if len(text) > s.W {
		return overflow(s.W)
	}
	return pad(text, s.W)
}

// renderDateTime renders seconds as "dd-MMM-yyyy hh:mm" with optional
// seconds when the width allows.
func renderDateTime(s Spec, v float64) string {
	days := int(math.Floor(v / calendar.DaySeconds))
	if days < 1 {
		return overflow(s.W)
	}
	y, m, d := calendar.OffsetToGregorian(days)
	rem := v - float64(days)*calendar.DaySeconds
	hh := int(rem) / 3600
	mm := int(rem) % 3600 / 60
	ss := rem - float64(hh*3600+mm*60)
	text := fmt.Sprintf("%02d-%s-%04d %02d:%02d", d, calendar.MonthNames[m], y, hh, mm)
	if s.W >= len(text)+3 {
		text += fmt.Sprintf(":%02.0f", math.Floor(ss))
	}
	if len(text) > s.W {
		return overflow(s.W)
	}
	return pad(text, s.W)
}

// renderTime renders an interval in seconds as hh:mm[:ss], or dd hh:mm[:ss]
// when withDays is set.
func renderTime(s Spec, v float64, withDays bool) string {
	neg := v < 0
	v = math.Abs(v)
	var text string
	if withDays {
		days := int(v / calendar.DaySeconds)
		rem := v - float64(days)*calendar.DaySeconds
		hh := int(rem) / 3600
		mm := int(rem) % 3600 / 60
		text = fmt.Sprintf("%d %02d:%02d", days, hh, mm)
		if s.W >= len(text)+3 {
			text += fmt.Sprintf(":%02.0f", math.Floor(rem-float64(hh*3600+mm*60)))
		}
	} else {
		hh := int(v / 3600)
		mm := int(v) % 3600 / 60
		text = fmt.Sprintf("%d:%02d", hh, mm)
		if s.W >= len(text)+3 {
			text += fmt.Sprintf(":%02.0f", math.Floor(v-float64(hh*3600+mm*60)))
		}
	}
	if neg {
		text = "-" + text
	}
	if len(text) > s.W {
		return overflow(s.W)
	}
	return pad(text, s.W)
}

var weekdayNames = [8]string{"",
	"SUNDAY", "MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY",
}

var monthFullNames = [13]string{"",
	"JANUARY", "FEBRUARY", "MARCH", "APRIL", "MAY", "JUNE",
	"JULY", "AUGUST", "SEPTEMBER", "OCTOBER", "NOVEMBER", "DECEMBER",
}

// renderWkDay renders a weekday number 1..7 as a (possibly truncated) name.
func renderWkDay(s Spec, v float64) string {
	n := int(math.Trunc(v))
	if n < 1 || n > 7 {
		return overflow(s.W)
	}
	return padRightTrunc(weekdayNames[n], s.W)
}

// renderMonth renders a month number 1..12 as a (possibly truncated) name.
func renderMonth(s Spec, v float64) string {
	n := int(math.Trunc(v))
	if n < 1 || n > 12 {
		return overflow(s.W)
	}
	return padRightTrunc(monthFullNames[n], s.W)
}

// ParseNum parses text according to an input format, returning false when
// the text does not conform. Empty or all-blank input is missing, reported
// as (0, true, true). Two-digit years in date inputs resolve against epoch.
func ParseNum(s Spec, text string, epoch int) (v float64, missing, ok bool) {
	t := strings.TrimSpace(text)
	if t == "" {
		return 0, true, true
	}
	if t == "." {
		return 0, true, true
	}
	switch s.Type {
	case F, E, N:
		v, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false, false
		}
		if s.Type == F && s.D > 0 && !strings.ContainsAny(t, ".eE") {
			// Implied decimal places.
			v /= math.Pow(10, float64(s.D))
		}
		return v, false, true
	case Comma:
		return parseGrouped(s, t, "", ",", ".")
	case Dot:
		return parseGrouped(s, t, "", ".", ",")
	case Dollar:
		return parseGrouped(s, t, "$", ",", ".")
	case Pct:
		t = strings.TrimSuffix(t, "%")
		v, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false, false
		}
		return v, false, true
	case Date, EDate:
		return parseCalendarDate(t, epoch, dayMonthYear)
	case ADate:
		return parseCalendarDate(t, epoch, monthDayYear)
	case SDate:
		return parseCalendarDate(t, epoch, sortableDate)
	case JDate:
		return parseJulianDate(t, epoch)
	case QYr:
		return parseQuarterYear(t, epoch)
	case MoYr:
		return parseMonthYear(t, epoch)
	case WkYr:
		return parseWeekYear(t, epoch)
	case DateTime:
		return parseDateTime(t, epoch)
	case Time:
		return parseElapsed(t, false)
	case DTime:
		return parseElapsed(t, true)
	}
	return 0, false, false
}

// parseCalendarDate reads a three-field date in the field order of the
// layout. Fields separate on dash, slash, period, comma or blanks; the
// month may be a number or an English name of at least three letters.
func parseCalendarDate(t string, epoch int, layout dateLayout) (float64, bool, bool) {
	f := dateInputFields(t)
	if len(f) != 3 {
		return 0, false, false
	}
	var dText, mText, yText string
	switch layout {
	case dayMonthYear:
		dText, mText, yText = f[0], f[1], f[2]
	case monthDayYear:
		mText, dText, yText = f[0], f[1], f[2]
	case sortableDate:
		yText, mText, dText = f[0], f[1], f[2]
	default:
		return 0, false, false
	}
	d, okD := parseDigits(dText)
	m, okM := parseMonthField(mText)
	y, okY := parseYearField(yText, epoch)
	if !okD || !okM || !okY {
		return 0, false, false
	}
	days, ok := calendar.GregorianToOffset(y, m, d)
	if !ok {
		return 0, false, false
	}
	return days * calendar.DaySeconds, false, true
}

// parseJulianDate reads yyddd or yyyyddd.
func parseJulianDate(t string, epoch int) (float64, bool, bool) {
	if len(t) != 5 && len(t) != 7 {
		return 0, false, false
	}
	cut := len(t) - 3
	y, okY := parseYearField(t[:cut], epoch)
	yday, okD := parseDigits(t[cut:])
	if !okY || !okD {
		return 0, false, false
	}
	days, ok := calendar.YearDayToOffset(y, yday)
	if !ok {
		return 0, false, false
	}
	return days * calendar.DaySeconds, false, true
}

// parseQuarterYear reads "q Q yyyy"; the result is the first day of the
// quarter.
func parseQuarterYear(t string, epoch int) (float64, bool, bool) {
	up := strings.ToUpper(t)
	i := strings.IndexByte(up, 'Q')
	if i < 0 {
		return 0, false, false
	}
	q, okQ := parseDigits(strings.TrimSpace(up[:i]))
	y, okY := parseYearField(strings.TrimSpace(up[i+1:]), epoch)
	if !okQ || !okY || q < 1 || q > 4 {
		return 0, false, false
	}
	days, ok := calendar.GregorianToOffset(y, (q-1)*3+1, 1)
	if !ok {
		return 0, false, false
	}
	return days * calendar.DaySeconds, false, true
}

// parseMonthYear reads "MMM yyyy" or "mm/yyyy"; the result is the first day
// of the month.
func parseMonthYear(t string, epoch int) (float64, bool, bool) {
	f := dateInputFields(t)
	if len(f) != 2 {
		return 0, false, false
	}
	m, okM := parseMonthField(f[0])
	y, okY := parseYearField(f[1], epoch)
	if !okM || !okY {
		return 0, false, false
	}
	days, ok := calendar.GregorianToOffset(y, m, 1)
	if !ok {
		return 0, false, false
	}
	return days * calendar.DaySeconds, false, true
}

// parseWeekYear reads "ww WK yyyy"; the result is the first day of the week,
// weeks counted in blocks of seven days from 1 January.
func parseWeekYear(t string, epoch int) (float64, bool, bool) {
	up := strings.ToUpper(t)
	i := strings.Index(up, "WK")
	if i < 0 {
		return 0, false, false
	}
	wk, okW := parseDigits(strings.TrimSpace(up[:i]))
	y, okY := parseYearField(strings.TrimSpace(up[i+2:]), epoch)
	if !okW || !okY || wk < 1 || wk > 53 {
		return 0, false, false
	}
	days, ok := calendar.YearDayToOffset(y, (wk-1)*7+1)
	if !ok {
		return 0, false, false
	}
	return days * calendar.DaySeconds, false, true
}

// parseDateTime reads a day-month-year date followed by a clock time.
func parseDateTime(t string, epoch int) (float64, bool, bool) {
	f := strings.Fields(t)
	if len(f) < 2 || !strings.Contains(f[len(f)-1], ":") {
		return 0, false, false
	}
	dv, _, ok := parseCalendarDate(strings.Join(f[:len(f)-1], " "), epoch, dayMonthYear)
	if !ok {
		return 0, false, false
	}
	tv, ok := parseClock(f[len(f)-1])
	if !ok {
		return 0, false, false
	}
	return dv + tv, false, true
}

// parseElapsed reads an optionally signed interval, hh:mm[:ss] or, with
// withDays, "dd hh:mm[:ss]".
func parseElapsed(t string, withDays bool) (float64, bool, bool) {
	neg := strings.HasPrefix(t, "-")
	if neg {
		t = strings.TrimSpace(t[1:])
	}
	var days int
	if withDays {
		f := strings.Fields(t)
		if len(f) != 2 {
			return 0, false, false
		}
		d, ok := parseDigits(f[0])
		if !ok {
			return 0, false, false
		}
		days = d
		t = f[1]
	}
	sec, ok := parseClock(t)
	if !ok {
		return 0, false, false
	}
	v := float64(days)*calendar.DaySeconds + sec
	if neg {
		v = -v
	}
	return v, false, true
}

// parseClock reads h:mm[:ss[.frac]] with no sign.
func parseClock(t string) (float64, bool) {
	parts := strings.Split(t, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	h, okH := parseDigits(parts[0])
	m, okM := parseDigits(parts[1])
	if !okH || !okM || m > 59 {
		return 0, false
	}
	sec := float64(h*3600 + m*60)
	if len(parts) == 3 {
		s, err := strconv.ParseFloat(parts[2], 64)
		if err != nil || s < 0 || s >= 60 {
			return 0, false
		}
		sec += s
	}
	return sec, true
}

// dateInputFields splits date input on the accepted separators.
func dateInputFields(t string) []string {
	return strings.FieldsFunc(t, func(r rune) bool {
		switch r {
		case '-', '/', '.', ',', ' ', '\t':
			return true
		}
		return false
	})
}

// parseMonthField accepts a month number or an English month name; names of
// three or more letters match by prefix.
func parseMonthField(t string) (int, bool) {
	if n, ok := parseDigits(t); ok {
		if n >= 1 && n <= 12 {
			return n, true
		}
		return 0, false
	}
	up := strings.ToUpper(t)
	if len(up) < 3 {
		return 0, false
	}
	for m := 1; m <= 12; m++ {
		if strings.HasPrefix(monthFullNames[m], up) {
			return m, true
		}
	}
	return 0, false
}

func parseYearField(t string, epoch int) (int, bool) {
	y, ok := parseDigits(t)
	if !ok {
		return 0, false
	}
	return calendar.ApplyEpoch(y, epoch)
}

// parseDigits reads an unsigned decimal integer, rejecting any other byte.
func parseDigits(t string) (int, bool) {
	if t == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(t); i++ {
		c := t[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func parseGrouped(s Spec, t, prefix, group, point string) (float64, bool, bool) {
	t = strings.TrimPrefix(t, prefix)
	neg := false
	if strings.HasPrefix(t, "-") {
		neg = true
		t = t[1:]
		t = strings.TrimPrefix(t, prefix)
	}
	t = strings.ReplaceAll(t, group, "")
	if point != "." {
		t = strings.ReplaceAll(t, point, ".")
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, false, false
	}
	if neg {
		v = -v
	}
	return v, false, true
}

// pad right-justifies text in a field of width w.
func pad(text string, w int) string {
	if len(text) >= w {
		return text
	}
	return strings.Repeat(" ", w-len(text)) + text
}

// padRightTrunc left-justifies text, truncating or blank-padding to width w.
func padRightTrunc(text string, w int) string {
	if len(text) >= w {
		return text[:w]
	}
	return text + strings.Repeat(" ", w-len(text))
}

func overflow(w int) string {
	return strings.Repeat("*", w)
}
