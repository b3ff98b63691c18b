package model

import "time"

// DateLayout is the wire and storage format of a Date
const DateLayout = "2006-01-02"

// Date is a calendar date (YYYY-MM-DD) in the player's local time zone.
// The zero value is the empty string and is not Valid.
type Date string

// DateOf returns the calendar date of t in t's location
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// DateIn returns the calendar date of t in loc
func DateIn(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return DateOf(t.In(loc))
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", ErrInvalidDate
	}
	return Date(s), nil
}

// Valid reports whether d is a well-formed calendar date
func (d Date) Valid() bool {
	_, err := time.Parse(DateLayout, string(d))
	return err == nil
}

// Start returns midnight of d in loc
func (d Date) Start(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, string(d), loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// AddDays returns the date n days after d (n may be negative).
// An invalid date is returned unchanged.
func (d Date) AddDays(n int) Date {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return d
	}
	return DateOf(t.AddDate(0, 0, n))
}

// Before reports whether d is strictly earlier than other
func (d Date) Before(other Date) bool {
	return d < other
}

func (d Date) String() string {
	return string(d)
}
