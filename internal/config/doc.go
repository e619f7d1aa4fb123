// Package config defines the alarm clock settings and provides helpers to
// load, validate and save them in YAML format.
//
// Validate fills in defaults for every optional field, so a nearly empty
// file is enough to run the daemon.
package config
