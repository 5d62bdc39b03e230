// Package monitoring carries the shared diagnostic logger for the variance
// stage and its storage layer.
package monitoring

import "log"

// Logf is the package-level diagnostic logger, defaulting to log.Printf.
// Callers can swap it via SetLogger; tests typically mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. A nil argument installs a no-op
// logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
