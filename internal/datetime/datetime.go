// Package datetime normalizes the date and timestamp spellings found in
// EDGAR submission headers.
package datetime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Granularity selects which layouts Parse tries.
type Granularity uint8

const (
	DateOnly Granularity = iota
	DateTime
)

// Layouts are tried in order; the first successful parse wins.
var (
	dateLayouts = []string{
		"20060102",
		"2006-01-02",
		"01/02/2006",
		"1/2/2006",
		"2006/01/02",
	}
	dateTimeLayouts = []string{
		"20060102:150405",
		"20060102150405",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"20060102 150405",
	}
)

// DateParseError reports a value that matched none of the known layouts.
type DateParseError struct {
	Field string // header tag, when known
	Raw   string
}

func (e *DateParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: unrecognized date %q", e.Field, e.Raw)
	}
	return fmt.Sprintf("unrecognized date %q", e.Raw)
}

// ErrInvalidFlag is returned by ParseFlag for anything but Y or N.
var ErrInvalidFlag = errors.New("invalid flag")

// Date is a calendar date with no time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// String returns the ISO 8601 form, YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDate parses a calendar date.
func ParseDate(raw string) (Date, error) {
	t, err := Parse(raw, DateOnly)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// ParseDateTime parses a timestamp. Date-only values parse as midnight.
// EDGAR prints wall-clock Eastern time without a zone; the result carries
// the printed wall clock in UTC.
func ParseDateTime(raw string) (time.Time, error) {
	return Parse(raw, DateTime)
}

// Parse tries every layout of the given granularity.
func Parse(raw string, g Granularity) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s != "" {
		if g == DateTime {
			for _, layout := range dateTimeLayouts {
				if t, err := time.Parse(layout, s); err == nil {
					return t, nil
				}
			}
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, &DateParseError{Raw: raw}
}

// MonthDay is a recurring calendar day such as a fiscal year end.
type MonthDay struct {
	Month time.Month
	Day   int
}

// String returns MM-DD.
func (md MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", int(md.Month), md.Day)
}

func (md MonthDay) MarshalText() ([]byte, error) {
	return []byte(md.String()), nil
}

// ParseMonthDay parses the MMDD form used for fiscal year ends.
func ParseMonthDay(raw string) (MonthDay, error) {
	s := strings.TrimSpace(raw)
	if len(s) != 4 {
		return MonthDay{}, &DateParseError{Raw: raw}
	}
	m, err1 := strconv.Atoi(s[:2])
	d, err2 := strconv.Atoi(s[2:])
	if err1 != nil || err2 != nil || m < 1 || m > 12 || d < 1 || d > daysIn(time.Month(m)) {
		return MonthDay{}, &DateParseError{Raw: raw}
	}
	return MonthDay{Month: time.Month(m), Day: d}, nil
}

// daysIn allows February 29 since the year is unknown.
func daysIn(m time.Month) int {
	return time.Date(2000, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseFlag parses the Y/N booleans of the header.
func ParseFlag(raw string) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "Y", "YES", "1", "TRUE":
		return true, nil
	case "N", "NO", "0", "FALSE":
		return false, nil
	}
	return false, fmt.Errorf("%w %q: expected Y or N", ErrInvalidFlag, raw)
}
