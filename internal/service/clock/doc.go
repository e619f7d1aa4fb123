// Package clock implements the alarm clock engine.
//
// The Engine owns the ordered alarm sequence, serialises every
// load-modify-save through one mutex, and runs the polling loop that fires
// due alarms. Each fired alarm is published to subscribers and rung on its
// own goroutine so a slow player never delays the next poll.
package clock
