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

package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvfs/vfscore/internal/clock"
)

func TestSimulatedClockNowReflectsSetTime(t *testing.T) {
	start := time.Unix(1000, 0)
	sc := clock.NewSimulatedClock(start)
	assert.Equal(t, start, sc.Now())

	later := start.Add(time.Hour)
	sc.SetTime(later)
	assert.Equal(t, later, sc.Now())
}

func TestSimulatedClockAfterFiresOnceTargetReached(t *testing.T) {
	sc := clock.NewSimulatedClock(time.Unix(0, 0))
	ch := sc.After(10 * time.Second)

	select {
	case <-ch:
		t.Fatal("After fired before its target time")
	default:
	}

	sc.AdvanceTime(5 * time.Second)
	select {
	case <-ch:
		t.Fatal("After fired early")
	default:
	}

	sc.AdvanceTime(5 * time.Second)
	select {
	case got := <-ch:
		assert.Equal(t, time.Unix(10, 0), got)
	default:
		t.Fatal("After did not fire once its target time was reached")
	}
}

func TestSimulatedClockAfterNonPositiveDurationFiresImmediately(t *testing.T) {
	sc := clock.NewSimulatedClock(time.Unix(0, 0))
	ch := sc.After(0)

	select {
	case got := <-ch:
		assert.Equal(t, time.Unix(0, 0), got)
	default:
		t.Fatal("After(0) should fire immediately")
	}
}

func TestRealClockSatisfiesInterface(t *testing.T) {
	var c clock.Clock = clock.RealClock{}
	require.NotZero(t, c.Now())
}
