package dateutil

import (
	"regexp"
	"strconv"
	"time"
)

// Layout is the wire format used by the calendar oracle and the cache file.
const Layout = "2006-01-02"

var datePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

// daysInMonth is indexed by month number; index 0 is unused.
var daysInMonth = [...]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// Current formats t as YYYY-MM-DD in the local time zone.
func Current(t time.Time) string {
	return t.Local().Format(Layout)
}

// Valid reports whether s is a YYYY-MM-DD string naming a real calendar
// date. February is widened to 29 days on leap years.
func Valid(s string) bool {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	if month < 1 || month > 12 {
		return false
	}
	max := daysInMonth[month]
	if month == 2 && isLeapYear(year) {
		max = 29
	}
	return day >= 1 && day <= max
}

func isLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}
