package scheduling

import (
	"regexp"
	"time"
)

var yearMonthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

func YearMonth(t time.Time) string {
	return t.UTC().Format("2006-01")
}

func ValidYearMonth(value string) bool {
	return yearMonthPattern.MatchString(value)
}

// MonthsTouched lists every calendar month between from and to, both inclusive, as YYYY-MM.
func MonthsTouched(from, to time.Time) []string {
	first := time.Date(from.UTC().Year(), from.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(to.UTC().Year(), to.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)

	months := make([]string, 0)
	for cursor := first; !cursor.After(last); cursor = cursor.AddDate(0, 1, 0) {
		months = append(months, YearMonth(cursor))
	}
	return months
}
