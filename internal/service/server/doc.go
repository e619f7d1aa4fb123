// Package server runs the alarm clock daemon: it loads settings, opens the
// alarm store, starts the polling engine and serves the gRPC API until the
// context is cancelled.
package server
