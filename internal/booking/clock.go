package booking

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidClock     = errors.New("invalid clock time, want HH:MM")
	ErrInvalidDate      = errors.New("invalid date, want YYYY-MM-DD")
	ErrInvalidTimeRange = errors.New("invalid time range")
	ErrSlotDuration     = errors.New("slot duration must be positive")
)

const (
	clockLayout = "15:04"
	dateLayout  = "2006-01-02"
)

// ParseClock parses "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, ErrInvalidClock
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate validates a "YYYY-MM-DD" date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// SpanMinutes returns the wall-clock length of [start, end) in minutes.
// Fails when the range is inverted or empty.
func SpanMinutes(start, end string) (int, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	if e <= s {
		return 0, ErrInvalidTimeRange
	}
	return e - s, nil
}

// At combines a date and a clock time into an instant in loc.
func At(date, clock string, loc *time.Location) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), m/60, m%60, 0, 0, loc), nil
}

// IsPast reports whether date+clock is strictly before now, comparing the
// date strings first so the check stays timezone-normalized.
func IsPast(date, clock string, now time.Time) bool {
	today := now.Format(dateLayout)
	if date < today {
		return true
	}
	if date > today {
		return false
	}
	return clock < now.Format(clockLayout)
}

// ClockRange is a [Start, End) window within one day, both "HH:MM".
type ClockRange struct {
	Start string
	End   string
}

// SplitWindow splits [start, end) into consecutive slots of slotMinutes.
// A tail shorter than slotMinutes is dropped.
func SplitWindow(start, end string, slotMinutes int) ([]ClockRange, error) {
	if slotMinutes <= 0 {
		return nil, ErrSlotDuration
	}
	s, err := ParseClock(start)
	if err != nil {
		return nil, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return nil, err
	}
	if e <= s {
		return nil, ErrInvalidTimeRange
	}

	var slots []ClockRange
	for cur := s; cur+slotMinutes <= e; cur += slotMinutes {
		slots = append(slots, ClockRange{
			Start: FormatClock(cur),
			End:   FormatClock(cur + slotMinutes),
		})
	}
	return slots, nil
}
