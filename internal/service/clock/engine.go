package clock

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/repository/store"
	"github.com/oshokin/alarm-clock/internal/service/tone"
)

// DefaultPollInterval is used by Run when no positive interval is given.
const DefaultPollInterval = 30 * time.Second

// Engine detects due alarms and applies user changes to the alarm store.
type Engine struct {
	// repo persists the full entry sequence.
	repo store.Repository
	// player rings fired alarms; nil disables playback.
	player tone.Player
	// now returns the current wall-clock time.
	now func() time.Time
	// defaultTone is used when an alarm is added without one.
	defaultTone string

	// mu serialises every load-modify-save of entries.
	mu sync.Mutex
	// entries is the in-memory copy of the persisted sequence.
	entries []domain.Entry
	// dirty marks a deactivation that could not be persisted yet.
	dirty bool

	// hub fans events out to subscribers.
	hub *hub
	// ringing tracks in-flight playback goroutines.
	ringing sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now, for tests and for snooze arithmetic.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithPlayer sets the tone player used for fired alarms.
func WithPlayer(player tone.Player) Option {
	return func(e *Engine) {
		e.player = player
	}
}

// WithDefaultTone sets the tone used when AddAlarm gets an empty one.
func WithDefaultTone(name string) Option {
	return func(e *Engine) {
		e.defaultTone = name
	}
}

var errRepositoryRequired = errors.New("alarm repository must be provided")

// New creates an engine and loads the current entries from the repository.
func New(ctx context.Context, repo store.Repository, opts ...Option) (*Engine, error) {
	if repo == nil {
		return nil, errRepositoryRequired
	}

	e := &Engine{
		repo: repo,
		now:  time.Now,
		hub:  newHub(),
	}

	for _, opt := range opts {
		opt(e)
	}

	entries, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load alarms: %w", err)
	}

	e.entries = domain.CloneEntries(entries)

	logger.DebugKV(ctx, "Alarms loaded", "count", len(e.entries))

	return e, nil
}

// AddAlarm parses timeSpec ("7:30 AM" or "19:30") and appends an active entry.
func (e *Engine) AddAlarm(ctx context.Context, timeSpec, toneName string) (domain.Entry, error) {
	at, err := domain.ParseTimeOfDay(timeSpec)
	if err != nil {
		return domain.Entry{}, err
	}

	return e.AddAlarmAt(ctx, at, toneName)
}

// AddAlarmAt appends an active entry for an already validated time.
func (e *Engine) AddAlarmAt(ctx context.Context, at domain.TimeOfDay, toneName string) (domain.Entry, error) {
	if toneName == "" {
		toneName = e.defaultTone
	}

	entry := domain.NewEntry(at, toneName)

	err := e.mutate(ctx, func(entries []domain.Entry) ([]domain.Entry, error) {
		return append(entries, entry), nil
	})
	if err != nil {
		return domain.Entry{}, err
	}

	logger.InfoKV(ctx, "Alarm added", "alarm_id", entry.ID, "time", entry.Time.String(), "tone", entry.Tone)

	return entry, nil
}

// ToggleAlarm flips the active flag of the entry with the given ID.
func (e *Engine) ToggleAlarm(ctx context.Context, id string) (domain.Entry, error) {
	var toggled domain.Entry

	err := e.mutate(ctx, func(entries []domain.Entry) ([]domain.Entry, error) {
		i := indexOf(entries, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}

		entries[i].Active = !entries[i].Active
		toggled = entries[i]

		return entries, nil
	})
	if err != nil {
		return domain.Entry{}, err
	}

	logger.InfoKV(ctx, "Alarm toggled", "alarm_id", toggled.ID, "active", toggled.Active)

	return toggled, nil
}

// Snooze adds a new entry minutes after now with the tone of the given entry.
// The original entry is left as it is.
func (e *Engine) Snooze(ctx context.Context, id string, minutes int) (domain.Entry, error) {
	if minutes <= 0 {
		return domain.Entry{}, fmt.Errorf("%w: %d", domain.ErrInvalidSnooze, minutes)
	}

	var snoozed domain.Entry

	err := e.mutate(ctx, func(entries []domain.Entry) ([]domain.Entry, error) {
		i := indexOf(entries, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}

		at := domain.TimeOfDayOf(e.now()).AddMinutes(minutes)
		snoozed = domain.NewEntry(at, entries[i].Tone)

		return append(entries, snoozed), nil
	})
	if err != nil {
		return domain.Entry{}, err
	}

	logger.InfoKV(ctx, "Alarm snoozed", "alarm_id", id, "snooze_id", snoozed.ID, "time", snoozed.Time.String())

	return snoozed, nil
}

// Alarms returns a copy of the current entry sequence.
func (e *Engine) Alarms() []domain.Entry {
	e.mu.Lock()
	defer e.mu.Unlock()

	return domain.CloneEntries(e.entries)
}

// PollOnce fires every active entry whose minute matches now.
//
// Fired entries are disabled in memory before the store is written, so a
// second call for the same minute never fires them again. If the write
// fails the alarm still rings; the engine stays dirty and the next poll
// retries the write.
func (e *Engine) PollOnce(ctx context.Context, now time.Time) ([]domain.Event, error) {
	e.mu.Lock()

	next := domain.CloneEntries(e.entries)

	var fired []domain.Entry

	for i := range next {
		if next[i].Active && next[i].Time.Matches(now) {
			next[i].Active = false
			fired = append(fired, next[i])
		}
	}

	if len(fired) == 0 && !e.dirty {
		e.mu.Unlock()

		return nil, nil
	}

	e.entries = next
	saveErr := e.repo.Save(ctx, next)
	e.dirty = saveErr != nil

	e.mu.Unlock()

	events := make([]domain.Event, 0, len(fired))

	for _, entry := range fired {
		event := domain.Event{
			Kind:  domain.EventFired,
			Entry: entry,
			At:    now,
		}

		logger.InfoKV(ctx, "Alarm fired", "alarm_id", entry.ID, "time", entry.Time.String(), "tone", entry.Tone)

		e.hub.publish(event)
		e.ring(ctx, event)

		events = append(events, event)
	}

	if saveErr != nil {
		return events, fmt.Errorf("persist fired alarms: %w", saveErr)
	}

	return events, nil
}

// Subscribe returns a stream of fire and playback events until ctx ends or
// the subscription is closed.
//
//nolint:ireturn // Subscribers only need the channel and Close.
func (e *Engine) Subscribe(ctx context.Context) domain.Subscription {
	return e.hub.subscribe(ctx)
}

// Run polls immediately and then on every tick until ctx is cancelled.
// A failed poll is logged and the loop continues. On cancellation Run makes
// one more attempt to persist fired alarms, then returns once all playback
// started by the loop has finished.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	ctx = logger.WithName(ctx, "alarm-engine")

	if interval <= 0 {
		interval = DefaultPollInterval
	}

	logger.InfoKV(ctx, "Polling alarms", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, waiting for playback")
			e.flush(context.WithoutCancel(ctx))
			e.Wait()

			return nil
		case <-ticker.C:
			e.poll(ctx)
		}
	}
}

// Wait blocks until every playback goroutine has returned.
func (e *Engine) Wait() {
	e.ringing.Wait()
}

// poll runs one cycle and logs its failure.
func (e *Engine) poll(ctx context.Context) {
	if _, err := e.PollOnce(ctx, e.now()); err != nil {
		logger.ErrorKV(ctx, "Poll cycle failed", "error", err)
	}
}

// flush writes a deactivation the last poll could not persist.
func (e *Engine) flush(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.dirty {
		return
	}

	if err := e.repo.Save(ctx, e.entries); err != nil {
		logger.ErrorKV(ctx, "Fired alarms are not persisted", "error", err)

		return
	}

	e.dirty = false
}

// ring plays the tone of a fired entry on its own goroutine.
func (e *Engine) ring(ctx context.Context, event domain.Event) {
	if e.player == nil {
		return
	}

	e.ringing.Go(func() {
		if err := e.player.Play(ctx, event.Entry.Tone); err != nil {
			logger.WarnKV(ctx, "Tone playback failed", "alarm_id", event.Entry.ID, "tone", event.Entry.Tone, "error", err)

			e.hub.publish(domain.Event{
				Kind:  domain.EventPlaybackFailed,
				Entry: event.Entry,
				At:    event.At,
				Err:   err,
			})
		}
	})
}

// mutate applies change to a copy of the entries and commits it only after
// the store accepted the new sequence.
func (e *Engine) mutate(ctx context.Context, change func([]domain.Entry) ([]domain.Entry, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := change(domain.CloneEntries(e.entries))
	if err != nil {
		return err
	}

	if err = e.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("persist alarms: %w", err)
	}

	e.entries = next
	e.dirty = false

	return nil
}

func indexOf(entries []domain.Entry, id string) int {
	return slices.IndexFunc(entries, func(entry domain.Entry) bool {
		return entry.ID == id
	})
}
