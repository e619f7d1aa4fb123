// Package alarm implements the gRPC transport for the alarm clock engine.
//
// The service is registered from a hand-written grpc.ServiceDesc and its
// messages are protobuf well-known types (Struct, ListValue, StringValue,
// Empty), so no generated code is needed on either side. The package also
// holds the conversions between domain entries/events and those messages.
package alarm
