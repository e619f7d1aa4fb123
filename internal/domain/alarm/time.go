package alarm

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	hoursPerDay    = 24
	minutesPerHour = 60
	minutesPerDay  = hoursPerDay * minutesPerHour

	meridiemAM = "AM"
	meridiemPM = "PM"
)

// TimeOfDay is a wall-clock minute without a date. The zero value is midnight.
type TimeOfDay struct {
	// hour is stored in 24h form, 0..23.
	hour int
	// minute is 0..59.
	minute int
}

// NewTimeOfDay builds a TimeOfDay from 24h components.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour >= hoursPerDay {
		return TimeOfDay{}, fmt.Errorf("%w: hour %d out of range [0,23]", ErrInvalidTime, hour)
	}

	if minute < 0 || minute >= minutesPerHour {
		return TimeOfDay{}, fmt.Errorf("%w: minute %d out of range [0,59]", ErrInvalidTime, minute)
	}

	return TimeOfDay{hour: hour, minute: minute}, nil
}

// NewTimeOfDay12 builds a TimeOfDay from 12h components, e.g. (7, 5, "PM").
func NewTimeOfDay12(hour, minute int, meridiem string) (TimeOfDay, error) {
	if hour < 1 || hour > 12 {
		return TimeOfDay{}, fmt.Errorf("%w: hour %d out of range [1,12]", ErrInvalidTime, hour)
	}

	switch strings.ToUpper(meridiem) {
	case meridiemAM:
		if hour == 12 {
			hour = 0
		}
	case meridiemPM:
		if hour != 12 {
			hour += 12
		}
	default:
		return TimeOfDay{}, fmt.Errorf("%w: unknown meridiem %q", ErrInvalidTime, meridiem)
	}

	return NewTimeOfDay(hour, minute)
}

// TimeOfDayOf returns the wall-clock minute of t in t's location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{hour: t.Hour(), minute: t.Minute()}
}

// ParseTimeOfDay parses "7:05 PM", "07:05 pm" or the 24h form "19:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	fields := strings.Fields(s)

	switch len(fields) {
	case 1:
		hour, minute, err := splitClock(fields[0])
		if err != nil {
			return TimeOfDay{}, err
		}

		return NewTimeOfDay(hour, minute)
	case 2:
		hour, minute, err := splitClock(fields[0])
		if err != nil {
			return TimeOfDay{}, err
		}

		return NewTimeOfDay12(hour, minute, fields[1])
	default:
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
}

// splitClock splits "HH:MM" into numbers, accepting one or two digits per field.
func splitClock(s string) (int, int, error) {
	hourText, minuteText, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidTime, s)
	}

	hour, err := parseClockField(hourText)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: hour %q", ErrInvalidTime, hourText)
	}

	minute, err := parseClockField(minuteText)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: minute %q", ErrInvalidTime, minuteText)
	}

	return hour, minute, nil
}

func parseClockField(s string) (int, error) {
	if s == "" || len(s) > 2 {
		return 0, strconv.ErrSyntax
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}

	return strconv.Atoi(s)
}

// Hour returns the hour in 24h form.
func (t TimeOfDay) Hour() int { return t.hour }

// Minute returns the minute.
func (t TimeOfDay) Minute() int { return t.minute }

// Matches reports whether now falls inside this minute of the day.
func (t TimeOfDay) Matches(now time.Time) bool {
	return now.Hour() == t.hour && now.Minute() == t.minute
}

// AddMinutes shifts the time by n minutes, wrapping around midnight.
func (t TimeOfDay) AddMinutes(n int) TimeOfDay {
	total := ((t.hour*minutesPerHour+t.minute+n)%minutesPerDay + minutesPerDay) % minutesPerDay

	return TimeOfDay{hour: total / minutesPerHour, minute: total % minutesPerHour}
}

// String renders the time as "07:05 PM".
func (t TimeOfDay) String() string {
	hour, meridiem := t.hour, meridiemAM

	if hour >= 12 {
		meridiem = meridiemPM
	}

	hour %= 12
	if hour == 0 {
		hour = 12
	}

	return fmt.Sprintf("%02d:%02d %s", hour, t.minute, meridiem)
}

// MarshalText implements encoding.TextMarshaler.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}
