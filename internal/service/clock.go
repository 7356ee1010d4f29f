package service

import "time"

// Clock returns the current time in the pool's reporting time zone
type Clock func() time.Time

// NewClock returns a Clock that reads the wall clock in loc
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return func() time.Time {
		return time.Now().In(loc)
	}
}

// FixedClock always returns t
func FixedClock(t time.Time) Clock {
	return func() time.Time {
		return t
	}
}
