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

package vfs

import (
	"time"

	"github.com/kvfs/vfscore/internal/clock"
)

// StartWriteback launches a background goroutine that wakes every
// interval via clk.After and sweeps the cache's dirty dentries back to
// their filesystems (spec.md C3). Production callers pass
// clock.RealClock{}; tests pass a *clock.SimulatedClock and drive the
// sweep deterministically with AdvanceTime, without a real sleep.
//
// The returned stop func halts the goroutine; callers must invoke it
// (e.g. via defer) to avoid leaking it.
func (c *Cache) StartWriteback(clk clock.Clock, interval time.Duration) (stop func()) {
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-clk.After(interval):
				c.sweepDirty()
			}
		}
	}()

	return func() { close(done) }
}
