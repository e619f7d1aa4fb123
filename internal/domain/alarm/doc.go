// Package alarm contains core domain types for the alarm clock.
//
// It defines TimeOfDay (a date-less wall-clock minute), Entry (one persisted
// alarm definition), Event (a fire or playback notice) and the sentinel
// errors shared by the store, the engine and the transport.
package alarm
