package util

import (
	"testing"
	"time"
)

func TestMonthLabel(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), "2026-01"},
		{time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC), "2025-12"},
		{time.Date(999, 7, 1, 0, 0, 0, 0, time.UTC), "0999-07"},
	}

	for _, tt := range tests {
		if got := MonthLabel(tt.in); got != tt.want {
			t.Errorf("MonthLabel(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSameCalendarMonth(t *testing.T) {
	ist := time.FixedZone("IST", 5*60*60+30*60)
	ref := time.Date(2026, 4, 1, 1, 0, 0, 0, ist)

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"same instant", ref, true},
		{"earlier same month", time.Date(2026, 4, 1, 0, 0, 0, 0, ist), true},
		{"previous month", time.Date(2026, 3, 31, 23, 0, 0, 0, ist), false},
		{"same month previous year", time.Date(2025, 4, 15, 0, 0, 0, 0, ist), false},
		// 2026-03-31 20:00 UTC is 2026-04-01 01:30 in IST
		{"utc timestamp evaluated in ref zone", time.Date(2026, 3, 31, 20, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameCalendarMonth(tt.t, ref); got != tt.want {
				t.Errorf("SameCalendarMonth() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatDayMonthYear(t *testing.T) {
	got := FormatDayMonthYear(time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC))
	if got != "07/02/2026" {
		t.Errorf("FormatDayMonthYear() = %q, want 07/02/2026", got)
	}
}
