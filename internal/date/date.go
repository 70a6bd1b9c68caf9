package date

import (
	"strconv"
	"strings"
	"time"
)

// DefaultYearPivot splits two-digit years: below the pivot resolves to the
// 2000s, at or above it to the 1900s.
const DefaultYearPivot = 69

var weekdays = map[string]time.Weekday{
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
	"sun": time.Sunday, "sunday": time.Sunday,
}

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// Resolve turns a textual date expression into a concrete date relative to
// ref. Supported forms: today/tod, tomorrow/tom, yesterday, weekday names
// ("friday" is always the next future Friday, "next friday" the one after),
// "+N"/"Nd" day offsets, "jan 15" style month-day (rolls to next year once
// passed), and M/D, M/D/YY, M/D/YYYY.
func Resolve(ref time.Time, expr string) (time.Time, error) {
	return ResolveWithPivot(ref, expr, DefaultYearPivot)
}

func ResolveWithPivot(ref time.Time, expr string, pivot int) (time.Time, error) {
	ref = midnight(ref)
	s := strings.ToLower(strings.Join(strings.Fields(expr), " "))

	switch s {
	case "today", "tod":
		return ref, nil
	case "tomorrow", "tom":
		return ref.AddDate(0, 0, 1), nil
	case "yesterday":
		return ref.AddDate(0, 0, -1), nil
	}

	if rest, ok := strings.CutPrefix(s, "next "); ok {
		if wd, ok := weekdays[rest]; ok {
			return nextWeekday(ref, wd, true), nil
		}
	}
	if wd, ok := weekdays[s]; ok {
		return nextWeekday(ref, wd, false), nil
	}

	if t, ok, err := monthDay(ref, s); ok {
		return wrap(expr, t, err)
	}
	if days, ok := relativeDays(s); ok {
		return ref.AddDate(0, 0, days), nil
	}
	if t, ok, err := slashDate(ref, s, pivot); ok {
		return wrap(expr, t, err)
	}

	return time.Time{}, &ResolutionError{Expr: expr, Err: ErrUnrecognizedFormat}
}

func wrap(expr string, t time.Time, err error) (time.Time, error) {
	if err != nil {
		return time.Time{}, &ResolutionError{Expr: expr, Err: err}
	}
	return t, nil
}

// nextWeekday finds the occurrence strictly after ref. Asking for today's
// weekday lands a full week out, and skipWeek pushes one week further.
func nextWeekday(ref time.Time, wd time.Weekday, skipWeek bool) time.Time {
	days := int(wd - ref.Weekday())
	if days <= 0 {
		days += 7
	}
	if skipWeek {
		days += 7
	}
	return ref.AddDate(0, 0, days)
}

func monthDay(ref time.Time, s string) (time.Time, bool, error) {
	name, dayStr, found := strings.Cut(s, " ")
	if !found {
		return time.Time{}, false, nil
	}
	month, ok := months[name]
	if !ok {
		return time.Time{}, false, nil
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return time.Time{}, true, ErrUnrecognizedFormat
	}
	t, err := rollForward(ref, month, day)
	return t, true, err
}

// rollForward places month/day in ref's year, or the year after when the
// date already passed.
func rollForward(ref time.Time, month time.Month, day int) (time.Time, error) {
	year := ref.Year()
	if !validDay(year, month, day) {
		return time.Time{}, ErrInvalidCalendarDate
	}
	t := makeDate(ref, year, month, day)
	if t.Before(ref) {
		year++
		if !validDay(year, month, day) {
			return time.Time{}, ErrInvalidCalendarDate
		}
		t = makeDate(ref, year, month, day)
	}
	return t, nil
}

func relativeDays(s string) (int, bool) {
	num, ok := strings.CutPrefix(s, "+")
	if !ok {
		num, ok = strings.CutSuffix(s, "d")
	}
	if !ok {
		return 0, false
	}
	days, err := strconv.Atoi(num)
	if err != nil || days < 0 {
		return 0, false
	}
	return days, true
}

func slashDate(ref time.Time, s string, pivot int) (time.Time, bool, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 && len(parts) != 3 {
		return time.Time{}, false, nil
	}
	month, err1 := strconv.Atoi(parts[0])
	day, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return time.Time{}, false, nil
	}
	if month < 1 || month > 12 {
		return time.Time{}, true, ErrInvalidCalendarDate
	}

	if len(parts) == 2 {
		t, err := rollForward(ref, time.Month(month), day)
		return t, true, err
	}

	year, ok := parseYear(parts[2], pivot)
	if !ok {
		return time.Time{}, true, ErrUnrecognizedFormat
	}
	if !validDay(year, time.Month(month), day) {
		return time.Time{}, true, ErrInvalidCalendarDate
	}
	return makeDate(ref, year, time.Month(month), day), true, nil
}

// parseYear accepts exactly two or four digits. Two-digit years pivot:
// below pivot means 2000s, otherwise 1900s.
func parseYear(s string, pivot int) (int, bool) {
	if len(s) != 2 && len(s) != 4 {
		return 0, false
	}
	year, err := strconv.Atoi(s)
	if err != nil || year < 0 {
		return 0, false
	}
	if len(s) == 2 {
		if year < pivot {
			return 2000 + year, true
		}
		return 1900 + year, true
	}
	return year, true
}

func validDay(year int, month time.Month, day int) bool {
	return day >= 1 && day <= daysIn(year, month)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func makeDate(ref time.Time, year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, ref.Location())
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
