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

package vfs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvfs/vfscore/internal/clock"
	"github.com/kvfs/vfscore/internal/vfs"
)

func TestStartWritebackFlushesDirtyDentryOnTick(t *testing.T) {
	v, drv := newTestVFS()
	drv.addChild(vfs.RootInode, "f", 400, vfs.ModeUserW)

	d, err := v.Cache().Get(0, 400, drv)
	require.NoError(t, err)
	defer v.Put(d)
	d.SetFlag(vfs.DentryDirty)

	sc := clock.NewSimulatedClock(time.Unix(0, 0))
	stop := v.Cache().StartWriteback(sc, time.Second)
	defer stop()

	assert.Eventually(t, func() bool {
		sc.AdvanceTime(time.Second)
		return len(drv.written) > 0
	}, time.Second, time.Millisecond)

	assert.Contains(t, drv.written, 400)
	assert.False(t, d.TestFlag(vfs.DentryDirty))
}

func TestStartWritebackStopHaltsFurtherSweeps(t *testing.T) {
	v, drv := newTestVFS()
	drv.addChild(vfs.RootInode, "f", 401, vfs.ModeUserW)

	d, err := v.Cache().Get(0, 401, drv)
	require.NoError(t, err)
	defer v.Put(d)

	sc := clock.NewSimulatedClock(time.Unix(0, 0))
	stop := v.Cache().StartWriteback(sc, time.Second)
	stop()

	d.SetFlag(vfs.DentryDirty)
	sc.AdvanceTime(time.Second)
	time.Sleep(10 * time.Millisecond)

	assert.NotContains(t, drv.written, 401)
}
