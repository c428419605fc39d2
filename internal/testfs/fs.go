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

// Package testfs is an in-memory filesystem driver used to exercise the
// VFS core (internal/vfs) end to end, the same role memFS plays for a
// jacobsa/fuse mount: a reference implementation of a filesystem driver
// that a harness can recognize, mount, and drive through every
// operation without a real storage device behind it.
package testfs

import (
	"fmt"
	"time"

	"github.com/jacobsa/syncutil"
	"github.com/jacobsa/timeutil"

	"github.com/kvfs/vfscore/internal/kernel"
	"github.com/kvfs/vfscore/internal/vfs"
)

// deviceState is the filesystem-private state PrepareFS installs for
// one device (spec.md §3's "fs_data").
type deviceState struct {
	nodes   map[int]*node
	nextIno int
}

// FS is a vfs.FSOps implementation backed entirely by in-memory nodes.
// It is deliberately device-agnostic above deviceState so a single FS
// value can back several mounted devices at once, mirroring how a real
// driver is registered once and recognized against many devices.
type FS struct {
	// mu is an InvariantMutex for the same reason the teacher's memFS
	// uses one: debug builds panic immediately on a broken bookkeeping
	// invariant instead of corrupting silently.
	mu syncutil.InvariantMutex

	clock timeutil.Clock

	// cache lets Lookup/Create/Mkdir return dentries with correct
	// cache-tracked reference counts instead of ones FS fabricates
	// outside the cache's bookkeeping.
	cache *vfs.Cache

	devices map[int]*deviceState // GUARDED_BY(mu)
}

// New returns an empty testfs driver. cache is the VFS's dentry cache:
// testfs needs it to mint dentries for Lookup/Create/Mkdir results that
// the cache, not the driver, owns the refcount bookkeeping for.
func New(clock timeutil.Clock, cache *vfs.Cache) *FS {
	fs := &FS{
		clock:   clock,
		cache:   cache,
		devices: make(map[int]*deviceState),
	}
	fs.mu = syncutil.NewInvariantMutex(fs.checkInvariants)
	return fs
}

func (fs *FS) checkInvariants() {
	for devID, st := range fs.devices {
		if _, ok := st.nodes[vfs.RootInode]; !ok {
			panic(fmt.Sprintf("testfs: device %d has no root inode", devID))
		}
		for ino, n := range st.nodes {
			if n.isDir() && n.children == nil {
				panic(fmt.Sprintf("testfs: device %d inode %d is a directory with nil children", devID, ino))
			}
		}
	}
}

////////////////////////////////////////////////////////////////////////
// Required FSOps
////////////////////////////////////////////////////////////////////////

// Recognize always succeeds: testfs has no on-disk superblock to probe,
// so it accepts whatever device it is handed. A harness only registers
// it against devices it already knows are meant for it.
func (fs *FS) Recognize(dev kernel.Device) error {
	return nil
}

// PrepareFS creates the root inode (2) for a newly bound device,
// matching spec.md's "every storage device's inode 2 is its root".
func (fs *FS) PrepareFS(devID int) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.devices[devID]; ok {
		return nil
	}
	root := newDirNode(vfs.ModeUserR|vfs.ModeUserW|vfs.ModeUserX|
		vfs.ModeGroupR|vfs.ModeGroupX|vfs.ModeOtherR|vfs.ModeOtherX, 0, 0)
	fs.devices[devID] = &deviceState{
		nodes:   map[int]*node{vfs.RootInode: root},
		nextIno: vfs.RootInode + 1,
	}
	return nil
}

func (fs *FS) GetFSData(devID int) interface{} {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.devices[devID]
}

func (fs *FS) ReadInode(devID, ino int) (*vfs.Inode, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := fs.nodeLocked(devID, ino)
	if err != nil {
		return nil, err
	}
	return &vfs.Inode{
		Mode:       n.mode,
		UID:        n.uid,
		GID:        n.gid,
		Size:       int64(len(n.data)),
		LinksCount: n.linksCount,
		FSData:     ino,
	}, nil
}

// WriteInode flushes the mode, ownership and link-count fields an
// operation may have changed back onto the backing node. Size is not
// written: testfs's Read/Write/Truncate mutate node.data directly.
func (fs *FS) WriteInode(devID int, ino int, in *vfs.Inode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := fs.nodeLocked(devID, ino)
	if err != nil {
		return err
	}
	n.mode = in.Mode
	n.uid = in.UID
	n.gid = in.GID
	n.linksCount = in.LinksCount
	return nil
}

func (fs *FS) FreeInode(devID int, ino int, in *vfs.Inode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	st, ok := fs.devices[devID]
	if !ok {
		return vfs.ErrNotExist
	}
	delete(st.nodes, ino)
	return nil
}

func (fs *FS) nodeLocked(devID, ino int) (*node, error) {
	st, ok := fs.devices[devID]
	if !ok {
		return nil, vfs.ErrNotExist
	}
	n, ok := st.nodes[ino]
	if !ok {
		return nil, vfs.ErrNotExist
	}
	return n, nil
}

func (fs *FS) now() time.Time {
	if fs.clock != nil {
		return fs.clock.Now()
	}
	return time.Time{}
}
