package alarm

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "alarmclock.v1.AlarmClockService"

// Full method names used by clients.
const (
	AddAlarmMethod    = "/" + ServiceName + "/AddAlarm"
	ToggleAlarmMethod = "/" + ServiceName + "/ToggleAlarm"
	SnoozeAlarmMethod = "/" + ServiceName + "/SnoozeAlarm"
	ListAlarmsMethod  = "/" + ServiceName + "/ListAlarms"
	WatchEventsMethod = "/" + ServiceName + "/WatchEvents"
)

// AlarmClockServer is the server API of the alarm clock service.
type AlarmClockServer interface {
	AddAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ToggleAlarm(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	SnoozeAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListAlarms(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error)
	WatchEvents(req *emptypb.Empty, stream grpc.ServerStream) error
}

// ServiceDesc describes the alarm clock service for grpc.Server.RegisterService.
//
//nolint:gochecknoglobals // Registered once, read-only afterwards.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AlarmClockServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AddAlarm", Handler: unaryHandler(AddAlarmMethod, AlarmClockServer.AddAlarm)},
		{MethodName: "ToggleAlarm", Handler: unaryHandler(ToggleAlarmMethod, AlarmClockServer.ToggleAlarm)},
		{MethodName: "SnoozeAlarm", Handler: unaryHandler(SnoozeAlarmMethod, AlarmClockServer.SnoozeAlarm)},
		{MethodName: "ListAlarms", Handler: unaryHandler(ListAlarmsMethod, AlarmClockServer.ListAlarms)},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchEvents",
			Handler:       watchEventsHandler,
			ServerStreams: true,
		},
	},
	Metadata: "alarmclock/v1/alarm_clock.proto",
}

// WatchEventsStreamDesc is the stream descriptor clients pass to NewStream.
//
//nolint:gochecknoglobals // Read-only view into ServiceDesc.
var WatchEventsStreamDesc = &ServiceDesc.Streams[0]

// RegisterAlarmClockServer registers srv on the gRPC server.
func RegisterAlarmClockServer(registrar grpc.ServiceRegistrar, srv AlarmClockServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

// unaryHandler adapts a typed server method to grpc.MethodHandler.
func unaryHandler[Req, Resp any](
	fullMethod string,
	call func(AlarmClockServer, context.Context, *Req) (*Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(AlarmClockServer)

		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(*Req)

			return call(server, ctx, typed)
		}

		return interceptor(ctx, in, info, handler)
	}
}

// watchEventsHandler reads the single request and hands the stream to the server.
func watchEventsHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	server, _ := srv.(AlarmClockServer)

	return server.WatchEvents(in, stream)
}
