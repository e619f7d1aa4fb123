package alarm

import "errors"

var (
	// ErrInvalidTime is returned when a time-of-day input is not a real clock time.
	ErrInvalidTime = errors.New("invalid time of day")
	// ErrInvalidSnooze is returned when a snooze offset is not a positive number of minutes.
	ErrInvalidSnooze = errors.New("snooze minutes must be positive")
	// ErrNotFound is returned when no entry matches the requested ID.
	ErrNotFound = errors.New("alarm not found")
	// ErrPersistence is returned when the alarm store cannot be written.
	ErrPersistence = errors.New("alarm store unwritable")
	// ErrPlayback is returned when a tone cannot be played.
	ErrPlayback = errors.New("tone playback failed")
)
