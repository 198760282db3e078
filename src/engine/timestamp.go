package engine

import (
	"fmt"
	"regexp"
)

// Timestamp is the canonical YYYY-MM-DDTHH:MM:SS date-time carried by
// documents as a plain string. Arithmetic works at second granularity.
type Timestamp struct {
	Year, Month, Day     int
	Hour, Minute, Second int
}

var timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`)

// ParseTimestamp accepts only the 19-character canonical form and requires
// the encoded date to be valid.
func ParseTimestamp(s string) (*Timestamp, error) {
	if !timestampPattern.MatchString(s) {
		return nil, fmt.Errorf("%w: %q", ErrTimestampFormat, s)
	}

	t := &Timestamp{}
	if _, err := fmt.Sscanf(s, "%04d-%02d-%02dT%02d:%02d:%02d",
		&t.Year, &t.Month, &t.Day, &t.Hour, &t.Minute, &t.Second); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrTimestampFormat, s, err)
	}

	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q is not a valid date", ErrTimestampFormat, s)
	}
	return t, nil
}

// IsLeapYear follows the Gregorian rule.
func IsLeapYear(y int) bool {
	return (y%4 == 0 && y%100 != 0) || y%400 == 0
}

var monthDays = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInMonth returns the number of days in month m of year y.
func DaysInMonth(m, y int) int {
	if m == 2 && IsLeapYear(y) {
		return 29
	}
	return monthDays[m]
}

// AddSeconds shifts the timestamp by n seconds in either direction,
// normalizing through minutes, hours, days, months and years. The year is
// unbounded.
func (t *Timestamp) AddSeconds(n int) {
	total := t.Hour*3600 + t.Minute*60 + t.Second + n
	days := total / 86400
	rem := total % 86400
	if rem < 0 {
		rem += 86400
		days--
	}
	t.Hour = rem / 3600
	t.Minute = (rem % 3600) / 60
	t.Second = rem % 60

	t.Day += days

	// Carry forward across month and year boundaries.
	for {
		dim := DaysInMonth(t.Month, t.Year)
		if t.Day <= dim {
			break
		}
		t.Day -= dim
		t.Month++
		if t.Month > 12 {
			t.Month = 1
			t.Year++
		}
	}
	// Borrow backward for negative deltas.
	for t.Day < 1 {
		t.Month--
		if t.Month < 1 {
			t.Month = 12
			t.Year--
		}
		t.Day += DaysInMonth(t.Month, t.Year)
	}
}

// String renders the zero-padded canonical form.
func (t *Timestamp) String() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d",
		t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second)
}

// Valid checks the field ranges, including the month-aware day bound.
func (t *Timestamp) Valid() bool {
	if t.Month < 1 || t.Month > 12 {
		return false
	}
	if t.Day < 1 || t.Day > DaysInMonth(t.Month, t.Year) {
		return false
	}
	if t.Hour < 0 || t.Hour > 23 {
		return false
	}
	if t.Minute < 0 || t.Minute > 59 {
		return false
	}
	return t.Second >= 0 && t.Second <= 59
}

// IsValidTimestamp reports whether s parses as a canonical timestamp.
func IsValidTimestamp(s string) bool {
	_, err := ParseTimestamp(s)
	return err == nil
}
