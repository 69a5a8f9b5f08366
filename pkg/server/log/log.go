/* Copyright 2025 Leafmark Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package log provides a structured logger for the server
package log

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// log levels
const (
	LevelDebug = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[int]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
}

var mu sync.Mutex
var minLevel = LevelInfo

// SetLevel sets the minimum level that gets logged
func SetLevel(level int) {
	mu.Lock()
	defer mu.Unlock()

	minLevel = level
}

// Fields is a map of arbitrary values attached to a log line
type Fields map[string]interface{}

// Entry is a log line under construction
type Entry struct {
	fields Fields
}

// WithFields returns an entry carrying the given fields
func WithFields(fields Fields) *Entry {
	return &Entry{fields: fields}
}

func (e *Entry) write(level int, msg string) {
	mu.Lock()
	defer mu.Unlock()

	if level < minLevel {
		return
	}

	line := map[string]interface{}{
		"level":     levelNames[level],
		"msg":       msg,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range e.fields {
		line[k] = v
	}

	b, err := json.Marshal(line)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshalling log line: %v\n", err)
		return
	}

	fmt.Fprintln(os.Stdout, string(b))
}

// Debug logs a debug message
func (e *Entry) Debug(msg string) {
	e.write(LevelDebug, msg)
}

// Info logs an info message
func (e *Entry) Info(msg string) {
	e.write(LevelInfo, msg)
}

// Warn logs a warning message
func (e *Entry) Warn(msg string) {
	e.write(LevelWarn, msg)
}

// Error logs an error message
func (e *Entry) Error(msg string) {
	e.write(LevelError, msg)
}

// ErrorWrap logs an error with the underlying error attached
func ErrorWrap(err error, msg string) {
	WithFields(Fields{"error": err.Error()}).Error(msg)
}

// Info logs an info message without fields
func Info(msg string) {
	WithFields(nil).Info(msg)
}

// Error logs an error message without fields
func Error(msg string) {
	WithFields(nil).Error(msg)
}
