package integration

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/service/common"
	"github.com/oshokin/alarm-clock/internal/service/server"
)

const pollInterval = 100 * time.Millisecond

var errStopWatching = errors.New("stop watching")

// reservePort returns a free loopback address for the test server.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return addr
}

// startDaemon runs the alarm clock daemon with a temporary config and store
// and returns a connected client. Everything is torn down by t.Cleanup.
func startDaemon(t *testing.T, driver, statePath string) *common.Client {
	t.Helper()

	addr := reservePort(t)
	cfgPath := filepath.Join(t.TempDir(), config.DefaultConfigFilename)

	require.NoError(t, config.Save(cfgPath, &config.Config{
		ServerAddress: addr,
		StoreDriver:   driver,
		PollInterval:  pollInterval,
		Timeout:       3 * time.Second,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- server.Run(ctx, &server.Options{
			ConfigPath: cfgPath,
			StateFile:  statePath,
			Silent:     true,
		})
	}()

	c, err := common.Dial(ctx, addr, common.WithCallTimeout(time.Second))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()

		cancel()
		require.NoError(t, <-done)
	})

	// Wait until the daemon answers.
	require.Eventually(t, func() bool {
		_, listErr := c.ListAlarms(ctx)

		return listErr == nil
	}, 5*time.Second, 20*time.Millisecond)

	return c
}

// awayFromMinuteEnd blocks while the wall clock is close to a minute boundary
// so that a "now" alarm is still due when the daemon polls.
func awayFromMinuteEnd(t *testing.T) {
	t.Helper()

	if now := time.Now(); now.Second() >= 55 {
		time.Sleep(time.Until(now.Truncate(time.Minute).Add(time.Minute)) + 100*time.Millisecond)
	}
}

// TestGRPC_ManageAlarms exercises add, list, toggle and snooze against the
// real daemon and checks the JSON store on disk.
func TestGRPC_ManageAlarms(t *testing.T) {
	t.Parallel()

	statePath := filepath.Join(t.TempDir(), config.DefaultStateFilename)
	c := startDaemon(t, config.DriverJSON, statePath)
	ctx := context.Background()

	// Pick a time that cannot be due while the test runs.
	at := domain.TimeOfDayOf(time.Now()).AddMinutes(12 * 60)

	added, err := c.AddAlarm(ctx, at.String(), "tone2.mp3")
	require.NoError(t, err)
	require.NotEmpty(t, added.ID)
	require.Equal(t, at.String(), added.Time)
	require.Equal(t, "tone2.mp3", added.Tone)
	require.True(t, added.Active)

	defaulted, err := c.AddAlarm(ctx, "23:59", "")
	require.NoError(t, err)
	require.Equal(t, config.DefaultTone, defaulted.Tone)

	_, err = c.AddAlarm(ctx, "25:00", "")
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	toggled, err := c.ToggleAlarm(ctx, added.ID)
	require.NoError(t, err)
	require.False(t, toggled.Active)

	_, err = c.ToggleAlarm(ctx, "missing")
	require.Equal(t, codes.NotFound, status.Code(err))

	snoozed, err := c.SnoozeAlarm(ctx, added.ID, 0)
	require.NoError(t, err)
	require.Equal(t, "tone2.mp3", snoozed.Tone)
	require.True(t, snoozed.Active)

	entries, err := c.ListAlarms(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, []string{added.ID, defaulted.ID, snoozed.ID},
		[]string{entries[0].ID, entries[1].ID, entries[2].ID})

	// Every change is already on disk.
	data, err := os.ReadFile(statePath)
	require.NoError(t, err)
	require.Contains(t, string(data), added.ID)
	require.Contains(t, string(data), snoozed.ID)
}

// TestGRPC_AlarmFiresOnce adds an alarm for the current minute and expects
// exactly one fired event, after which the alarm is inactive in the store.
func TestGRPC_AlarmFiresOnce(t *testing.T) {
	t.Parallel()

	statePath := filepath.Join(t.TempDir(), config.DefaultDatabaseFilename)
	c := startDaemon(t, config.DriverSQLite, statePath)

	watchCtx, stopWatch := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopWatch()

	events := make(chan api.EventView, 8)
	watchDone := make(chan error, 1)

	go func() {
		watchDone <- c.WatchEvents(watchCtx, func(event api.EventView) error {
			events <- event

			return nil
		})
	}()

	// Give the stream time to subscribe before the alarm becomes due.
	time.Sleep(200 * time.Millisecond)
	awayFromMinuteEnd(t)

	added, err := c.AddAlarm(context.Background(), domain.TimeOfDayOf(time.Now()).String(), "")
	require.NoError(t, err)

	select {
	case event := <-events:
		require.Equal(t, string(domain.EventFired), event.Kind)
		require.Equal(t, added.ID, event.Entry.ID)
		require.False(t, event.Entry.Active)
	case <-watchCtx.Done():
		require.FailNow(t, "alarm did not fire")
	}

	// Several more polls inside the same minute must not fire it again.
	time.Sleep(5 * pollInterval)

	select {
	case event := <-events:
		assert.Failf(t, "unexpected event", "%+v", event)
	default:
	}

	entries, err := c.ListAlarms(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.False(t, entries[0].Active)

	stopWatch()
	require.NoError(t, <-watchDone)
}

// TestGRPC_WatchHandlerError stops watching when the handler fails.
func TestGRPC_WatchHandlerError(t *testing.T) {
	t.Parallel()

	c := startDaemon(t, config.DriverJSON, filepath.Join(t.TempDir(), config.DefaultStateFilename))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	watchDone := make(chan error, 1)

	go func() {
		watchDone <- c.WatchEvents(ctx, func(api.EventView) error {
			return errStopWatching
		})
	}()

	time.Sleep(200 * time.Millisecond)
	awayFromMinuteEnd(t)

	_, err := c.AddAlarm(ctx, domain.TimeOfDayOf(time.Now()).String(), "")
	require.NoError(t, err)

	select {
	case err = <-watchDone:
		require.ErrorIs(t, err, errStopWatching)
	case <-ctx.Done():
		require.FailNow(t, "watch did not return")
	}
}
