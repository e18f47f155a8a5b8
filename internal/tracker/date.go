package tracker

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for history keys and start dates.
const DateLayout = "2006-01-02"

// Date is a calendar date in YYYY-MM-DD form. Valid dates compare
// chronologically when compared as strings.
type Date string

// ParseDate validates s and returns it as a Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", &ValidationError{Field: "date", Reason: fmt.Sprintf("invalid date %q (want YYYY-MM-DD)", s)}
	}
	return Date(s), nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Time returns midnight UTC of the date. Invalid dates yield the zero time.
func (d Date) Time() time.Time {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Valid reports whether d is a well-formed calendar date.
func (d Date) Valid() bool {
	_, err := time.Parse(DateLayout, string(d))
	return err == nil
}

// Weekday returns the Gregorian weekday of d.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) String() string { return string(d) }

// WeekdayNames are the recurrence day labels, indexed by time.Weekday.
var WeekdayNames = [7]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}

var weekdayAliases = map[string]time.Weekday{
	"dom": time.Sunday, "seg": time.Monday, "ter": time.Tuesday, "qua": time.Wednesday,
	"qui": time.Thursday, "sex": time.Friday, "sáb": time.Saturday, "sab": time.Saturday,

	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,

	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
}

// WeekdayName returns the label used in recurrence day lists for wd.
func WeekdayName(wd time.Weekday) string {
	return WeekdayNames[int(wd)%7]
}

// ParseWeekday resolves a day label (Portuguese or English, any case) to its
// canonical recurrence label.
func ParseWeekday(s string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	wd, ok := weekdayAliases[key]
	if !ok {
		return "", &ValidationError{Field: "recurrence_days", Reason: fmt.Sprintf("unknown weekday %q", s)}
	}
	return WeekdayNames[wd], nil
}

// NormalizeWeekdays canonicalises, de-duplicates, and orders a list of day
// labels Sunday first.
func NormalizeWeekdays(days []string) ([]string, error) {
	var seen [7]bool
	for _, d := range days {
		if strings.TrimSpace(d) == "" {
			continue
		}
		name, err := ParseWeekday(d)
		if err != nil {
			return nil, err
		}
		seen[weekdayAliases[strings.ToLower(name)]] = true
	}
	out := make([]string, 0, len(days))
	for i, ok := range seen {
		if ok {
			out = append(out, WeekdayNames[i])
		}
	}
	return out, nil
}
