// Package monitoring carries the library's diagnostic logging hooks.
// Animations can take minutes on long chains, so the renderer reports
// thinning decisions and stage progress through here; embedding
// applications redirect or mute the stream without touching the
// rendering code.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf
// and may be replaced with SetLogger.
var Logf func(format string, v ...any) = log.Printf

// Debugf logs chatty per-frame diagnostics. It is a no-op until
// SetDebug(true).
var Debugf func(format string, v ...any) = func(string, ...any) {}

var debugEnabled bool

// SetLogger replaces the package logger. Passing nil installs a no-op
// logger, silencing Debugf as well.
func SetLogger(f func(format string, v ...any)) {
	if f == nil {
		Logf = func(string, ...any) {}
	} else {
		Logf = f
	}
	SetDebug(debugEnabled)
}

// SetDebug routes Debugf through the current logger when enabled.
func SetDebug(enabled bool) {
	debugEnabled = enabled
	if enabled {
		Debugf = func(format string, v ...any) { Logf("debug: "+format, v...) }
	} else {
		Debugf = func(string, ...any) {}
	}
}
