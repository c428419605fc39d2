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

package testfs_test

import (
	"context"
	"testing"

	"github.com/jacobsa/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvfs/vfscore/internal/kernel"
	"github.com/kvfs/vfscore/internal/simvm"
	"github.com/kvfs/vfscore/internal/testfs"
	"github.com/kvfs/vfscore/internal/vfs"
)

func newHarness(t *testing.T) *vfs.VFS {
	t.Helper()

	v := vfs.New(simvm.New())
	mem := testfs.New(timeutil.RealClock(), v.Cache())

	require.NoError(t, v.OnNewDriver(kernel.Driver{
		Name: "testfs", Type: kernel.DriverFileSystem, Ops: mem,
	}))
	require.NoError(t, v.OnNewDevice(kernel.Device{
		ID: 0, Type: kernel.DeviceStorage, IsVirtual: true,
	}))
	return v
}

func TestMkdirCreateResolveRoundTrip(t *testing.T) {
	ctx := context.Background()
	v := newHarness(t)

	root, err := v.RootDentry()
	require.NoError(t, err)
	defer v.Put(root)

	require.NoError(t, v.Mkdir(root, "dir", vfs.ModeUserR|vfs.ModeUserW|vfs.ModeUserX, 0, 0))

	dir, err := v.Resolve(ctx, nil, "/dir")
	require.NoError(t, err)
	defer v.Put(dir)
	assert.True(t, dir.IsDir())

	file, err := v.Create(dir, "hello.txt", vfs.ModeUserR|vfs.ModeUserW, 0, 0)
	require.NoError(t, err)
	defer v.Put(file)

	fd, err := v.Open(file, vfs.OWronly, nil)
	require.NoError(t, err)
	n, err := v.Write(fd, []byte("hi there"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	require.NoError(t, v.Close(fd))

	resolved, err := v.Resolve(ctx, nil, "/dir/hello.txt")
	require.NoError(t, err)
	defer v.Put(resolved)

	rfd, err := v.Open(resolved, vfs.ORdonly, nil)
	require.NoError(t, err)
	buf := make([]byte, 64)
	n, err = v.Read(rfd, buf)
	require.NoError(t, err)
	assert.Equal(t, "hi there", string(buf[:n]))
	require.NoError(t, v.Close(rfd))
}

func TestGetdentsListsAllEntries(t *testing.T) {
	v := newHarness(t)

	root, err := v.RootDentry()
	require.NoError(t, err)
	defer v.Put(root)

	names := []string{"a", "b", "c", "d", "e"}
	for _, name := range names {
		_, err := v.Create(root, name, vfs.ModeUserR|vfs.ModeUserW, 0, 0)
		require.NoError(t, err)
	}

	dirFd, err := v.Open(root, vfs.ODirectory, nil)
	require.NoError(t, err)
	defer v.Close(dirFd)

	seen := map[string]bool{}
	for {
		ents, err := v.Getdents(dirFd, 2)
		require.NoError(t, err)
		if len(ents) == 0 {
			break
		}
		for _, e := range ents {
			seen[e.Name] = true
		}
	}

	for _, name := range names {
		assert.True(t, seen[name], "expected %q to be listed", name)
	}
}

func TestUnlinkDefersDestructionUntilLastReference(t *testing.T) {
	v := newHarness(t)

	root, err := v.RootDentry()
	require.NoError(t, err)
	defer v.Put(root)

	file, err := v.Create(root, "f", vfs.ModeUserR|vfs.ModeUserW, 0, 0)
	require.NoError(t, err)

	extra := v.Duplicate(file)
	require.Equal(t, 2, v.Cache().RefCount(file))

	require.NoError(t, v.Unlink(file))

	// Dropping the first reference must not evict the dentry while
	// `extra` still holds one: the resolved file should still open and
	// read cleanly through it.
	require.NoError(t, v.Put(file))

	fd, err := v.Open(extra, vfs.ORdonly, nil)
	require.NoError(t, err)
	_, err = v.Fstat(fd)
	assert.NoError(t, err)
	require.NoError(t, v.Close(fd))

	require.NoError(t, v.Put(extra))
}

func TestResolveDotDotThroughTestfsYieldsSameDentry(t *testing.T) {
	ctx := context.Background()
	v := newHarness(t)

	root, err := v.RootDentry()
	require.NoError(t, err)
	defer v.Put(root)

	require.NoError(t, v.Mkdir(root, "a", vfs.ModeUserR|vfs.ModeUserW|vfs.ModeUserX, 0, 0))
	a, err := v.Resolve(ctx, nil, "/a")
	require.NoError(t, err)
	defer v.Put(a)

	_, err = v.Create(a, "b", vfs.ModeUserR|vfs.ModeUserW, 0, 0)
	require.NoError(t, err)

	direct, err := v.Resolve(ctx, nil, "/a/b")
	require.NoError(t, err)
	defer v.Put(direct)

	viaDotDot, err := v.Resolve(ctx, nil, "/a/../a/b")
	require.NoError(t, err)
	defer v.Put(viaDotDot)

	assert.Equal(t, direct.Ino, viaDotDot.Ino)
	assert.Equal(t, direct.DevID, viaDotDot.DevID)
}

func TestMountUmountRoundTrip(t *testing.T) {
	ctx := context.Background()
	v := newHarness(t)

	root, err := v.RootDentry()
	require.NoError(t, err)
	defer v.Put(root)

	require.NoError(t, v.Mkdir(root, "mnt", vfs.ModeUserR|vfs.ModeUserW|vfs.ModeUserX, 0, 0))
	mountpoint, err := v.Resolve(ctx, nil, "/mnt")
	require.NoError(t, err)
	defer v.Put(mountpoint)

	mem2 := testfs.New(timeutil.RealClock(), v.Cache())
	require.NoError(t, v.OnNewDriver(kernel.Driver{Name: "testfs2", Type: kernel.DriverFileSystem, Ops: mem2}))

	require.NoError(t, v.Mount(ctx, mountpoint, kernel.Device{ID: 1, Type: kernel.DeviceStorage, IsVirtual: true}, 1))

	resolved, err := v.Resolve(ctx, nil, "/mnt")
	require.NoError(t, err)
	assert.Equal(t, 1, resolved.DevID)
	require.NoError(t, v.Put(resolved))

	require.NoError(t, v.Umount(ctx, resolved))
}
