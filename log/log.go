// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log defines unearth's logger interface. By default it writes
// leveled lines to stderr through the standard library logger, but the
// embedding application can swap in its own implementation.
package log

import (
	"log"
	"os"
)

// Logger is unearth's logging interface. The collector and the finder
// log suppressed per-source failures at Warn, and the HTTP session logs
// retries at Debug; nothing in the finder logs above Warn on its own
// behalf.
type Logger interface {
	Errorf(format string, args ...any)
	Warnf(format string, args ...any)
	Infof(format string, args ...any)
	Debugf(format string, args ...any)
}

var logger Logger = &DefaultLogger{}

// SetLogger replaces the package-level logger with a caller-supplied one.
func SetLogger(l Logger) { logger = l }

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...any) { logger.Errorf(format, args...) }

// Warnf logs a formatted message at warning level.
func Warnf(format string, args ...any) { logger.Warnf(format, args...) }

// Infof logs a formatted message at info level.
func Infof(format string, args ...any) { logger.Infof(format, args...) }

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...any) { logger.Debugf(format, args...) }

// DefaultLogger writes level-tagged lines to stderr. Warn and Debug
// lines are dropped unless Verbose is set.
type DefaultLogger struct {
	Verbose bool
}

var stderr = log.New(os.Stderr, "", log.LstdFlags)

// Errorf implements Logger.
func (DefaultLogger) Errorf(format string, args ...any) {
	stderr.Printf("ERROR: "+format, args...)
}

// Warnf implements Logger.
func (l *DefaultLogger) Warnf(format string, args ...any) {
	if l.Verbose {
		stderr.Printf("WARN: "+format, args...)
	}
}

// Infof implements Logger.
func (DefaultLogger) Infof(format string, args ...any) {
	stderr.Printf("INFO: "+format, args...)
}

// Debugf implements Logger.
func (l *DefaultLogger) Debugf(format string, args ...any) {
	if l.Verbose {
		stderr.Printf("DEBUG: "+format, args...)
	}
}
