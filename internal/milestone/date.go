package milestone

import (
	"fmt"
	"time"

	"github.com/illarion/billcycle/internal/errs"
)

// DateLayout is the fixed-width MM/DD/YYYY layout used for input and payloads.
const DateLayout = "01/02/2006"

// CalendarDate is a year, month and day with no time-of-day or zone.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the CalendarDate for the given components, normalising
// overflowing values the way time.Date does.
func NewDate(year int, month time.Month, day int) CalendarDate {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime returns the calendar date of t in t's location.
func FromTime(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// MaxYear is the last year a four-digit MM/DD/YYYY date can carry.
const MaxYear = 9999

// ParseDate parses an MM/DD/YYYY start date, rejecting impossible dates such
// as 02/30/2025 and starts whose last milestone would fall after MaxYear.
func ParseDate(s string) (CalendarDate, error) {
	d, err := parseDate(s)
	if err != nil {
		return CalendarDate{}, errs.Format("date", "%q is not a valid MM/DD/YYYY date", s)
	}
	if last := d.AddDays(maxOffset()); last.Year > MaxYear {
		return CalendarDate{}, errs.Format("date", "%q is too late: milestones would run past 12/31/%d", s, MaxYear)
	}
	return d, nil
}

func parseDate(s string) (CalendarDate, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return CalendarDate{}, err
	}
	return FromTime(t), nil
}

// Time returns midnight UTC of the date.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days after d.
func (d CalendarDate) AddDays(n int) CalendarDate {
	return NewDate(d.Year, d.Month, d.Day+n)
}

func (d CalendarDate) String() string {
	return fmt.Sprintf("%02d/%02d/%04d", int(d.Month), d.Day, d.Year)
}

// Key returns the YYYY-MM-DD form, which sorts chronologically as bytes.
func (d CalendarDate) Key() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler.
func (d CalendarDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *CalendarDate) UnmarshalText(text []byte) error {
	parsed, err := parseDate(string(text))
	if err != nil {
		return errs.Format("date", "%q is not a valid MM/DD/YYYY date", text)
	}
	*d = parsed
	return nil
}
