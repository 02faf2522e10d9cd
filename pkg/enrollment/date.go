package enrollment

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/agentstation/enrollsync/pkg/constants"
	"github.com/agentstation/enrollsync/pkg/errors"
)

// Date is a nullable calendar date. The zero value is the null date, which
// sorts before every real date. Dates are comparable with ==.
type Date struct {
	d     civil.Date
	valid bool
}

// NewDate returns the date y-m-d.
func NewDate(year int, month time.Month, day int) Date {
	return Date{d: civil.Date{Year: year, Month: month, Day: day}, valid: true}
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date{d: civil.DateOf(t), valid: true}
}

var dateLayouts = []string{
	constants.DateFormatISO,
	constants.DateFormatCompact,
	constants.DateFormatUS,
}

// ParseDate parses YYYY-MM-DD, YYYYMMDD or MM/DD/YYYY. An empty (or
// all-space) string is the null date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	for _, layout := range dateLayouts {
		if len(layout) != len(s) {
			continue
		}
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, errors.NewParseError("date", "", "unrecognized date "+s, nil)
}

// MustParseDate is ParseDate for literals; it panics on error.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Valid reports whether d is a real date.
func (d Date) Valid() bool {
	return d.valid
}

// Civil returns the underlying civil date.
func (d Date) Civil() civil.Date {
	return d.d
}

// Before reports whether d is before o. Null is before every real date.
func (d Date) Before(o Date) bool {
	switch {
	case !d.valid:
		return o.valid
	case !o.valid:
		return false
	}
	return d.d.Before(o.d)
}

// After reports whether d is after o.
func (d Date) After(o Date) bool {
	return o.Before(d)
}

// Max returns the later of d and o.
func (d Date) Max(o Date) Date {
	if d.Before(o) {
		return o
	}
	return d
}

// DaysSince returns d − o in days. Both dates must be valid.
func (d Date) DaysSince(o Date) int {
	return d.d.DaysSince(o.d)
}

// AddDays returns d shifted by n days. The null date stays null.
func (d Date) AddDays(n int) Date {
	if !d.valid {
		return d
	}
	return Date{d: d.d.AddDays(n), valid: true}
}

// Format formats d with a time layout; the null date formats as "".
func (d Date) Format(layout string) string {
	if !d.valid {
		return ""
	}
	return d.d.In(time.UTC).Format(layout)
}

// String returns YYYY-MM-DD, or "" for the null date.
func (d Date) String() string {
	return d.Format(constants.DateFormatISO)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
