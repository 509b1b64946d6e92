// Package tracklog provides the tracking engine's diagnostic logging
// hook: a single swappable package-level function, so tests can silence
// or capture it without a logging framework dependency.
package tracklog

import "log"

// Logf is the package-level diagnostic logger. It defaults to
// log.Printf but may be replaced by SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op
// logger, the usual choice for tests that don't want log noise.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
