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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvfs/vfscore/internal/vfs"
)

func TestRootDentryRefcountConservation(t *testing.T) {
	v, _ := newTestVFS()

	root, err := v.RootDentry()
	require.NoError(t, err)
	base := v.Cache().RefCount(root)

	extra := v.Duplicate(root)
	assert.Equal(t, base+1, v.Cache().RefCount(extra))

	require.NoError(t, v.Put(extra))
	assert.Equal(t, base, v.Cache().RefCount(root))

	require.NoError(t, v.Put(root))
}

func TestCacheGetMissLoadsInodeViaReadInode(t *testing.T) {
	v, drv := newTestVFS()
	drv.addChild(vfs.RootInode, "f", 100, vfs.ModeUserR)

	d, err := v.Cache().Get(0, 100, drv)
	require.NoError(t, err)
	assert.Equal(t, vfs.ModeUserR, d.Inode.Mode)

	// A second Get for the same key is a cache hit: it must not call
	// ReadInode again, so the returned dentry is the identical pointer.
	d2, err := v.Cache().Get(0, 100, drv)
	require.NoError(t, err)
	assert.Same(t, d, d2)

	require.NoError(t, v.Put(d))
	require.NoError(t, v.Put(d2))
}

func TestPutInvokesWriteInodeWhenDirty(t *testing.T) {
	v, drv := newTestVFS()
	drv.addChild(vfs.RootInode, "f", 101, vfs.ModeUserW)

	d, err := v.Cache().Get(0, 101, drv)
	require.NoError(t, err)
	d.SetFlag(vfs.DentryDirty)

	require.NoError(t, v.Put(d))
	assert.Contains(t, drv.written, 101)
	assert.Empty(t, drv.freed)
}

func TestPutInvokesFreeInodeWhenMarkedForDeletion(t *testing.T) {
	v, drv := newTestVFS()
	drv.addChild(vfs.RootInode, "f", 102, vfs.ModeUserW)

	d, err := v.Cache().Get(0, 102, drv)
	require.NoError(t, err)
	d.SetFlag(vfs.DentryInodeToBeDeleted)

	require.NoError(t, v.Put(d))
	assert.Contains(t, drv.freed, 102)
	assert.False(t, v.Cache().Contains(0, 102))
}

func TestPutDoesNotEvictWhileStillReferenced(t *testing.T) {
	v, drv := newTestVFS()
	drv.addChild(vfs.RootInode, "f", 103, vfs.ModeUserW)

	d, err := v.Cache().Get(0, 103, drv)
	require.NoError(t, err)
	extra := v.Duplicate(d)

	require.NoError(t, v.Put(d))
	assert.True(t, v.Cache().Contains(0, 103))

	require.NoError(t, v.Put(extra))
	assert.False(t, v.Cache().Contains(0, 103))
}

func TestResolveWalksNestedDirectories(t *testing.T) {
	ctx := context.Background()
	v, drv := newTestVFS()

	drv.addChild(vfs.RootInode, "sub", 200, vfs.ModeDir|vfs.ModeUserX|vfs.ModeUserR)
	drv.addChild(200, "file", 201, vfs.ModeUserR)

	got, err := v.Resolve(ctx, nil, "/sub/file")
	require.NoError(t, err)
	defer v.Put(got)
	assert.Equal(t, 201, got.Ino)
}

func TestResolveRelativeToStart(t *testing.T) {
	ctx := context.Background()
	v, drv := newTestVFS()

	drv.addChild(vfs.RootInode, "sub", 210, vfs.ModeDir|vfs.ModeUserX|vfs.ModeUserR)
	drv.addChild(210, "file", 211, vfs.ModeUserR)

	sub, err := v.Resolve(ctx, nil, "/sub")
	require.NoError(t, err)
	defer v.Put(sub)

	got, err := v.Resolve(ctx, sub, "file")
	require.NoError(t, err)
	defer v.Put(got)
	assert.Equal(t, 211, got.Ino)
}

func TestResolveDotDotYieldsSameDentryAsDirectPath(t *testing.T) {
	ctx := context.Background()
	v, drv := newTestVFS()

	drv.addChild(vfs.RootInode, "a", 212, vfs.ModeDir|vfs.ModeUserX|vfs.ModeUserR)
	drv.addChild(212, "b", 213, vfs.ModeUserR)

	direct, err := v.Resolve(ctx, nil, "/a/b")
	require.NoError(t, err)
	defer v.Put(direct)

	viaDotDot, err := v.Resolve(ctx, nil, "/a/../a/b")
	require.NoError(t, err)
	defer v.Put(viaDotDot)

	assert.Equal(t, direct.Ino, viaDotDot.Ino)
	assert.Equal(t, direct.DevID, viaDotDot.DevID)
}

func TestResolveMissingComponentIsNotExist(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVFS()

	_, err := v.Resolve(ctx, nil, "/nope")
	assert.Equal(t, vfs.ErrNotExist, err)
}

func TestResolveThroughNonDirectoryIsNotDir(t *testing.T) {
	ctx := context.Background()
	v, drv := newTestVFS()

	drv.addChild(vfs.RootInode, "leaf", 220, vfs.ModeUserR)

	_, err := v.Resolve(ctx, nil, "/leaf/anything")
	assert.Equal(t, vfs.ErrNotDir, err)
}

func TestResolveEmptyPathWithNilStartIsFault(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVFS()

	_, err := v.Resolve(ctx, nil, "")
	assert.Equal(t, vfs.ErrFault, err)
}

func TestPermChecksOwnerGroupOtherAndSuperUser(t *testing.T) {
	v, drv := newTestVFS()
	drv.addChild(vfs.RootInode, "owned", 230, vfs.ModeUserR|vfs.ModeGroupR)
	drv.inodes[230].UID = 7
	drv.inodes[230].GID = 9

	d, err := v.Cache().Get(0, 230, drv)
	require.NoError(t, err)
	defer v.Put(d)

	owner := &vfs.Caller{UID: 7, GID: 9}
	assert.NoError(t, vfs.PermToRead(d, owner))

	groupMate := &vfs.Caller{UID: 1, GID: 9}
	assert.NoError(t, vfs.PermToRead(d, groupMate))

	stranger := &vfs.Caller{UID: 1, GID: 1}
	assert.Equal(t, vfs.ErrPerm, vfs.PermToRead(d, stranger))

	assert.NoError(t, vfs.PermToRead(d, &vfs.Caller{UID: 1, GID: 1, SuperUser: true}))
	assert.NoError(t, vfs.PermToRead(d, nil))
}

func TestOpenRefusesPrivateDentry(t *testing.T) {
	v, drv := newTestVFS()
	drv.addChild(vfs.RootInode, "secret", 240, vfs.ModeUserR)

	d, err := v.Cache().Get(0, 240, drv)
	require.NoError(t, err)
	defer v.Put(d)
	d.SetFlag(vfs.DentryPrivate)

	_, err = v.Open(d, vfs.ORdonly, nil)
	assert.Equal(t, vfs.ErrPerm, err)
}

func TestOpenDirectoryWithoutODirectoryIsDir(t *testing.T) {
	v, drv := newTestVFS()
	drv.addChild(vfs.RootInode, "dir", 241, vfs.ModeDir|vfs.ModeUserR|vfs.ModeUserX)

	d, err := v.Cache().Get(0, 241, drv)
	require.NoError(t, err)
	defer v.Put(d)

	_, err = v.Open(d, vfs.ORdonly, nil)
	assert.Equal(t, vfs.ErrIsDir, err)
}

func TestMkdirRejectsNonDirectoryTarget(t *testing.T) {
	v, drv := newTestVFS()
	drv.addChild(vfs.RootInode, "f", 250, vfs.ModeUserW)

	d, err := v.Cache().Get(0, 250, drv)
	require.NoError(t, err)
	defer v.Put(d)

	err = v.Mkdir(d, "child", vfs.ModeUserR, 0, 0)
	assert.Equal(t, vfs.ErrNotDir, err)
}

func TestAbsolutePathOfRootIsSlash(t *testing.T) {
	v, _ := newTestVFS()

	root, err := v.RootDentry()
	require.NoError(t, err)
	defer v.Put(root)

	p, err := v.AbsolutePath(root)
	require.NoError(t, err)
	assert.Equal(t, "/", p)
}

func TestAbsolutePathReconstructsNestedPath(t *testing.T) {
	ctx := context.Background()
	v, drv := newTestVFS()
	drv.addChild(vfs.RootInode, "sub", 300, vfs.ModeDir|vfs.ModeUserX|vfs.ModeUserR)
	drv.addChild(300, "file", 301, vfs.ModeUserR)

	d, err := v.Resolve(ctx, nil, "/sub/file")
	require.NoError(t, err)
	defer v.Put(d)

	p, err := v.AbsolutePath(d)
	require.NoError(t, err)
	assert.Equal(t, "/sub/file", p)
}

func TestAbsolutePathIntoOverflowsOnShortBuffer(t *testing.T) {
	v, _ := newTestVFS()

	root, err := v.RootDentry()
	require.NoError(t, err)
	defer v.Put(root)

	_, err = v.AbsolutePathInto(root, make([]byte, 0))
	assert.Equal(t, vfs.ErrOverflow, err)
}

func TestRmdirRefusesWhenStillReferencedElsewhere(t *testing.T) {
	v, drv := newTestVFS()
	drv.addChild(vfs.RootInode, "dir", 260, vfs.ModeDir|vfs.ModeUserR|vfs.ModeUserX)

	d, err := v.Cache().Get(0, 260, drv)
	require.NoError(t, err)
	defer v.Put(d)
	extra := v.Duplicate(d)
	defer v.Put(extra)

	err = v.Rmdir(d)
	assert.Equal(t, vfs.ErrBusy, err)
}
