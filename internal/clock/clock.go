// Copyright 2025 Google LLC
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

// Package clock provides the time source vfscore's time-driven
// components depend on: internal/testfs's node timestamps, and
// internal/vfs.Cache's dirty-dentry write-back sweep, which schedules
// itself entirely off Clock.After so tests can drive it with
// SimulatedClock instead of sleeping. It is kept distinct from, but
// interface-compatible with, timeutil.Clock (Now()) so that production
// code can hand a *RealClock anywhere a timeutil.Clock is expected.
package clock

import "time"

// Clock is the time source vfscore's time-dependent components depend on.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// RealClock is the production Clock, backed by the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time                         { return time.Now() }
func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

var _ Clock = RealClock{}
