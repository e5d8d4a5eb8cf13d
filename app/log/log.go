// Copyright 2026 resgov.io
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package log implements the daemon's leveled logging on top of the
// standard library logger. Records below the active level are dropped.
package log

import (
	"fmt"
	"log"
	"os"
)

// Supported logs severity levels.
const (
	ERROR = iota
	WARNING
	INFO
	DEBUG
)

var levelPrefix = map[int]string{
	ERROR:   "[ERROR] ",
	WARNING: "[WARNING] ",
	INFO:    "[INFO] ",
	DEBUG:   "[DEBUG] ",
}

var level = INFO

const logFileMode = 0600

func logf(msgLevel int, msg string, args ...any) {
	if level < msgLevel {
		return
	}

	log.Printf(levelPrefix[msgLevel]+msg, args...)
}

// Debugf logs message with DEBUG severity.
func Debugf(msg string, args ...any) {
	logf(DEBUG, msg, args...)
}

// Infof logs message with INFO severity.
func Infof(msg string, args ...any) {
	logf(INFO, msg, args...)
}

// Warnf logs message with WARNING severity.
func Warnf(msg string, args ...any) {
	logf(WARNING, msg, args...)
}

// Errorf logs message with ERROR severity.
func Errorf(msg string, args ...any) {
	logf(ERROR, msg, args...)
}

// SetLevel sets current log level.
func SetLevel(newLevel int) {
	level = newLevel
}

// ParseLevel maps a level name to its numeric value. Unknown names map
// to INFO.
func ParseLevel(name string) int {
	switch name {
	case "DEBUG":
		return DEBUG
	case "WARNING":
		return WARNING
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// OpenFile redirects all logging to the file at the given path. The file
// is created if missing and always appended to.
func OpenFile(path string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFileMode)
	if err != nil {
		return fmt.Errorf("error opening log file %s: %w", path, err)
	}

	log.SetOutput(file)

	return nil
}
