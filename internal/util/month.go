package util

import (
	"fmt"
	"time"
)

// MonthLabel formats t's calendar month as "YYYY-MM"
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// SameCalendarMonth returns true if t falls in the same year and month as ref,
// evaluated in ref's location
func SameCalendarMonth(t, ref time.Time) bool {
	t = t.In(ref.Location())
	return t.Year() == ref.Year() && t.Month() == ref.Month()
}

// FormatDayMonthYear formats a date as DD/MM/YYYY
func FormatDayMonthYear(t time.Time) string {
	return t.Format("02/01/2006")
}
