// Package client implements the CLI commands that talk to a running alarm
// clock daemon: add, list, toggle, snooze and watch.
package client
