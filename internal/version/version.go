package version

import "fmt"

// Name is the program name shown in version output.
const Name = "alarm-clock"

var (
	// Version is the semantic version of the build, set with -ldflags "-X".
	Version = "0.3.0-dev"
	// Commit is the short git SHA of the build (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp (or "unknown").
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns the program name, version, commit and build time on one line.
func Full() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", Name, Version, Commit, BuildTime)
}
