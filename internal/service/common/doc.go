// Package common holds helpers shared by the CLI commands.
//
// It provides a gRPC client wrapper for the alarm clock daemon with call
// timeouts, and a helper that detects the current system actor
// (hostname/username) for the daemon's audit log.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
