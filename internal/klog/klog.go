// Copyright 2015 Google Inc. All Rights Reserved.
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

// Package klog is the kernel's minimal logging sink. It exists so that
// packages deep in the VFS core can log without taking a compile-time
// dependency on any particular logging library; the CLI decides where
// the bytes go.
package klog

import (
	"io"
	"log"
	"os"
	"sync"
)

var (
	mu      sync.Mutex
	logger  = log.New(io.Discard, "vfscore: ", log.LstdFlags)
	debugOn bool
)

// SetDebug wires the logger to stderr (true) or discards it (false). Called
// once at startup from cmd/vfscored based on the --debug flag.
func SetDebug(on bool) {
	mu.Lock()
	defer mu.Unlock()

	debugOn = on
	if on {
		logger = log.New(os.Stderr, "vfscore: ", log.LstdFlags|log.Lmicroseconds)
	} else {
		logger = log.New(io.Discard, "vfscore: ", log.LstdFlags)
	}
}

// Debugf logs a debug-level message. Silent unless SetDebug(true) was called.
func Debugf(format string, args ...interface{}) {
	mu.Lock()
	l := logger
	mu.Unlock()
	l.Printf("[debug] "+format, args...)
}

// Warnf logs a warning. Like Debugf, it is visible only after
// SetDebug(true) and discarded otherwise, matching the teacher's
// flag-gated debug-only logging model.
func Warnf(format string, args ...interface{}) {
	mu.Lock()
	l := logger
	mu.Unlock()
	l.Printf("[warn] "+format, args...)
}

// Errorf logs an error unconditionally to stderr, independent of the debug
// flag, since operational errors should never be silently dropped.
func Errorf(format string, args ...interface{}) {
	mu.Lock()
	on := debugOn
	mu.Unlock()
	if on {
		logger.Printf("[error] "+format, args...)
		return
	}
	log.New(os.Stderr, "vfscore: ", log.LstdFlags).Printf("[error] "+format, args...)
}
