package alarm

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// Metadata keys carrying the requesting actor.
const (
	ActorHostnameKey = "x-actor-hostname"
	ActorUsernameKey = "x-actor-username"
)

// Service abstracts the engine operations the transport layer depends on.
type Service interface {
	AddAlarm(ctx context.Context, timeSpec, tone string) (domain.Entry, error)
	ToggleAlarm(ctx context.Context, id string) (domain.Entry, error)
	Snooze(ctx context.Context, id string, minutes int) (domain.Entry, error)
	Alarms() []domain.Entry
	Subscribe(ctx context.Context) domain.Subscription
}

// Server implements the AlarmClockService gRPC API.
type Server struct {
	// service provides the engine operations.
	service Service
	// defaultSnooze is used when a snooze request carries no minutes.
	defaultSnooze int
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service, defaultSnooze int) *Server {
	return &Server{
		service:       service,
		defaultSnooze: defaultSnooze,
	}
}

// AddAlarm validates and stores a new alarm.
func (s *Server) AddAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	timeSpec, err := stringField(req, fieldTime)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	// Tone is optional; the engine falls back to its default.
	toneName := req.GetFields()[fieldTone].GetStringValue()

	entry, err := s.service.AddAlarm(withActor(ctx), timeSpec, toneName)
	if err != nil {
		return nil, toStatus(err)
	}

	return ToProtoEntry(entry), nil
}

// ToggleAlarm flips the active flag of an alarm.
func (s *Server) ToggleAlarm(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "alarm id is required")
	}

	entry, err := s.service.ToggleAlarm(withActor(ctx), req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	return ToProtoEntry(entry), nil
}

// SnoozeAlarm creates a snoozed copy of an alarm.
func (s *Server) SnoozeAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	id, err := stringField(req, fieldID)
	if err != nil || id == "" {
		return nil, status.Error(codes.InvalidArgument, "alarm id is required")
	}

	minutes := s.defaultSnooze

	if _, ok := req.GetFields()[fieldMinutes]; ok {
		if minutes, err = intField(req, fieldMinutes); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
	}

	entry, err := s.service.Snooze(withActor(ctx), id, minutes)
	if err != nil {
		return nil, toStatus(err)
	}

	return ToProtoEntry(entry), nil
}

// ListAlarms returns every alarm in store order.
func (s *Server) ListAlarms(_ context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	return ToProtoEntries(s.service.Alarms()), nil
}

// WatchEvents streams fire and playback events until the client goes away.
func (s *Server) WatchEvents(_ *emptypb.Empty, stream grpc.ServerStream) error {
	ctx := withActor(stream.Context())

	sub := s.service.Subscribe(ctx)

	defer func() {
		_ = sub.Close()
	}()

	logger.Info(ctx, "Event watcher connected")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-sub.C():
			if !ok {
				return status.Error(codes.ResourceExhausted, "event stream fell behind")
			}

			if err := stream.SendMsg(ToProtoEvent(event)); err != nil {
				return err
			}
		}
	}
}

// toStatus maps domain errors to gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidTime), errors.Is(err, domain.ErrInvalidSnooze):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrPersistence):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// withActor scopes the context logger with the actor from request metadata.
func withActor(ctx context.Context) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx
	}

	hostname := first(md.Get(ActorHostnameKey))
	username := first(md.Get(ActorUsernameKey))

	if hostname == "" && username == "" {
		return ctx
	}

	return logger.WithKV(ctx, "actor_hostname", hostname, "actor_username", username)
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}

	return values[0]
}
