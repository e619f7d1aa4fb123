package alarm

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one persisted alarm definition. It recurs daily until disabled.
type Entry struct {
	// ID identifies the entry for toggle and snooze requests.
	ID string `json:"id"`
	// Time is the wall-clock minute the alarm fires at.
	Time TimeOfDay `json:"time"`
	// Tone names the audio resource to play.
	Tone string `json:"tone"`
	// Active marks the entry as eligible to fire.
	Active bool `json:"active"`
}

// NewEntry creates an active entry with a fresh ID.
func NewEntry(at TimeOfDay, tone string) Entry {
	return Entry{
		ID:     uuid.NewString(),
		Time:   at,
		Tone:   tone,
		Active: true,
	}
}

// CloneEntries returns a copy of the slice so callers cannot alias internal state.
func CloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return []Entry{}
	}

	cloned := make([]Entry, len(entries))
	copy(cloned, entries)

	return cloned
}

// EventKind distinguishes notices published by the engine.
type EventKind string

const (
	// EventFired is published when an active entry reaches its minute and is disabled.
	EventFired EventKind = "fired"
	// EventPlaybackFailed is published when the tone of a fired entry could not be played.
	EventPlaybackFailed EventKind = "playback_failed"
)

// Event is a notice delivered to subscribers.
type Event struct {
	// Kind tells fired alarms from playback failures.
	Kind EventKind
	// Entry is the entry state right after it fired.
	Entry Entry
	// At is the poll time that produced the event.
	At time.Time
	// Err carries the playback error for EventPlaybackFailed.
	Err error
}

// Subscription is a stream of events.
//
// If the holder can't keep up with the channel, the publisher drops the
// subscription and closes the channel; the holder has to subscribe again.
type Subscription interface {
	C() <-chan Event
	Close() error
}
