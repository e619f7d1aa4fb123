package client

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/common"
)

// Options configures how the CLI reaches the daemon.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides server address from config when specified.
	ServerAddress string

	// Out receives the command output.
	Out io.Writer
}

// session bundles a connected client with the loaded settings.
type session struct {
	client   *common.Client
	settings *config.Config
	out      io.Writer
}

// connect loads settings and dials the daemon.
func connect(ctx context.Context, opts *Options) (*session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	// Use server address from options if provided, otherwise use config.
	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	clientOptions := []common.Option{common.WithCallTimeout(cfg.Timeout)}

	// The actor only feeds the daemon's audit log, so detection failures are not fatal.
	if actor, actorErr := common.DetectActor(); actorErr == nil {
		clientOptions = append(clientOptions, common.WithActor(actor))
	} else {
		logger.WarnKV(ctx, "Unable to detect actor", "error", actorErr)
	}

	client, err := common.Dial(ctx, serverAddress, clientOptions...)
	if err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Connected to alarm clock", "server_address", serverAddress)

	return &session{
		client:   client,
		settings: cfg,
		out:      opts.Out,
	}, nil
}

// close releases the connection.
func (s *session) close() {
	_ = s.client.Close()
}

// Add registers a new alarm and prints it.
func Add(ctx context.Context, opts *Options, timeSpec, toneName string) error {
	s, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	defer s.close()

	entry, err := s.client.AddAlarm(ctx, timeSpec, toneName)
	if err != nil {
		return err
	}

	return printEntries(s.out, []api.EntryView{entry})
}

// List prints every alarm known to the daemon.
func List(ctx context.Context, opts *Options) error {
	s, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	defer s.close()

	entries, err := s.client.ListAlarms(ctx)
	if err != nil {
		return err
	}

	return printEntries(s.out, entries)
}

// Toggle flips an alarm on or off and prints its new state.
func Toggle(ctx context.Context, opts *Options, id string) error {
	s, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	defer s.close()

	entry, err := s.client.ToggleAlarm(ctx, id)
	if err != nil {
		return err
	}

	return printEntries(s.out, []api.EntryView{entry})
}

// Snooze creates a snoozed alarm; zero minutes uses the configured default.
func Snooze(ctx context.Context, opts *Options, id string, minutes int) error {
	s, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	defer s.close()

	if minutes == 0 {
		minutes = s.settings.SnoozeMinutes
	}

	entry, err := s.client.SnoozeAlarm(ctx, id, minutes)
	if err != nil {
		return err
	}

	return printEntries(s.out, []api.EntryView{entry})
}

// Watch prints fire and playback events until ctx is cancelled.
func Watch(ctx context.Context, opts *Options) error {
	s, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	defer s.close()

	return s.client.WatchEvents(ctx, func(event api.EventView) error {
		return printEvent(s.out, event)
	})
}

// printEntries renders entries as an aligned table.
func printEntries(out io.Writer, entries []api.EntryView) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(w, "ID\tTIME\tTONE\tACTIVE"); err != nil {
		return err
	}

	for _, entry := range entries {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", entry.ID, entry.Time, entry.Tone, entry.Active); err != nil {
			return err
		}
	}

	return w.Flush()
}

// printEvent renders one event line.
func printEvent(out io.Writer, event api.EventView) error {
	line := fmt.Sprintf("%s %s %s %s (%s)",
		event.At.Local().Format(time.DateTime), event.Kind, event.Entry.ID, event.Entry.Time, event.Entry.Tone)

	if event.Error != "" {
		line += ": " + event.Error
	}

	_, err := fmt.Fprintln(out, line)

	return err
}
