//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	"github.com/oshokin/alarm-clock/internal/config"
)

// Client wraps a gRPC connection to the alarm clock daemon.
type Client struct {
	// conn is the underlying gRPC connection to the daemon.
	conn *grpc.ClientConn

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// actor is attached to every call as metadata when set.
	actor *Actor
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for unary calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor attaches the requesting actor to every call.
func WithActor(actor *Actor) Option {
	return func(c *Client) {
		c.actor = actor
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errIDRequired is returned when an alarm ID is missing.
	errIDRequired = errors.New("alarm id must be provided")
)

// Dial creates a gRPC client for the alarm clock daemon.
// Note: this uses insecure transport credentials; the daemon is meant to
// listen on loopback.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial alarm daemon: %w", err)
	}

	client := &Client{
		conn:        conn,
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// AddAlarm registers a new alarm; an empty tone selects the daemon default.
func (c *Client) AddAlarm(ctx context.Context, timeSpec, toneName string) (api.EntryView, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp := new(structpb.Struct)
	if err := c.conn.Invoke(callCtx, api.AddAlarmMethod, api.NewAddRequest(timeSpec, toneName), resp); err != nil {
		return api.EntryView{}, fmt.Errorf("add alarm: %w", err)
	}

	return api.FromProtoEntry(resp)
}

// ToggleAlarm flips an alarm on or off.
func (c *Client) ToggleAlarm(ctx context.Context, id string) (api.EntryView, error) {
	if id == "" {
		return api.EntryView{}, errIDRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp := new(structpb.Struct)
	if err := c.conn.Invoke(callCtx, api.ToggleAlarmMethod, wrapperspb.String(id), resp); err != nil {
		return api.EntryView{}, fmt.Errorf("toggle alarm: %w", err)
	}

	return api.FromProtoEntry(resp)
}

// SnoozeAlarm creates a snoozed alarm minutes from now.
func (c *Client) SnoozeAlarm(ctx context.Context, id string, minutes int) (api.EntryView, error) {
	if id == "" {
		return api.EntryView{}, errIDRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp := new(structpb.Struct)
	if err := c.conn.Invoke(callCtx, api.SnoozeAlarmMethod, api.NewSnoozeRequest(id, minutes), resp); err != nil {
		return api.EntryView{}, fmt.Errorf("snooze alarm: %w", err)
	}

	return api.FromProtoEntry(resp)
}

// ListAlarms returns every alarm in store order.
func (c *Client) ListAlarms(ctx context.Context) ([]api.EntryView, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp := new(structpb.ListValue)
	if err := c.conn.Invoke(callCtx, api.ListAlarmsMethod, new(emptypb.Empty), resp); err != nil {
		return nil, fmt.Errorf("list alarms: %w", err)
	}

	return api.FromProtoEntries(resp)
}

// WatchEvents calls handle for every event until ctx ends or the stream breaks.
// It has no call timeout; cancel ctx to stop watching.
func (c *Client) WatchEvents(ctx context.Context, handle func(api.EventView) error) error {
	ctx = c.withActor(ctx)

	stream, err := c.conn.NewStream(ctx, api.WatchEventsStreamDesc, api.WatchEventsMethod)
	if err != nil {
		return fmt.Errorf("watch events: %w", err)
	}

	if err = stream.SendMsg(new(emptypb.Empty)); err != nil {
		return fmt.Errorf("watch events: %w", err)
	}

	if err = stream.CloseSend(); err != nil {
		return fmt.Errorf("watch events: %w", err)
	}

	for {
		msg := new(structpb.Struct)

		if err = stream.RecvMsg(msg); err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("receive event: %w", err)
		}

		event, err := api.FromProtoEvent(msg)
		if err != nil {
			return fmt.Errorf("decode event: %w", err)
		}

		if err = handle(event); err != nil {
			return err
		}
	}
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = c.withActor(ctx)

	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

// withActor attaches the actor as outgoing metadata.
func (c *Client) withActor(ctx context.Context) context.Context {
	if c.actor == nil {
		return ctx
	}

	return metadata.AppendToOutgoingContext(
		ctx,
		api.ActorHostnameKey, c.actor.Hostname,
		api.ActorUsernameKey, c.actor.Username,
	)
}
