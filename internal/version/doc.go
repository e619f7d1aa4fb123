// Package version holds the alarm-clock build metadata.
//
// Version, Commit and BuildTime are set with -ldflags "-X" at release time
// and keep their development defaults otherwise.
package version
