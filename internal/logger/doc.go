// Package logger wraps zap with a global sugared logger and context helpers.
//
// Output goes to stderr so command output on stdout stays machine readable.
// The daemon, the engine and the transport take the logger from the context
// (WithName, WithKV), so every line carries the component name and, for
// RPCs, the requesting actor. The level is one shared atomic value changed
// with SetLevel.
package logger
