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

package vfs

import "sync"

// DentryFlag is a bitmask of the per-dentry flags spec.md §3 defines.
type DentryFlag int

const (
	// DentryPrivate marks a dentry that open() must always refuse.
	DentryPrivate DentryFlag = 1 << iota

	// DentryMountpoint marks a directory with another filesystem
	// overlaid on top of it.
	DentryMountpoint

	// DentryMounted marks the root of a filesystem mounted elsewhere.
	DentryMounted

	// DentryInodeToBeDeleted defers FreeInode until the last reference
	// to this dentry drops.
	DentryInodeToBeDeleted

	// DentryDirty marks an inode modified and pending write-back.
	DentryDirty
)

// key is the dentry cache's lookup key: (device id, inode index).
// RootInode is the contract every filesystem driver honors: the root
// dentry of any device is always inode 2 (spec.md §3).
const RootInode = 2

type key struct {
	devID int
	ino   int
}

// Dentry is the central cached object binding a name to a
// (device, inode) identity (spec.md §3). Every live Dentry is reachable
// from exactly one Cache and is uniquely keyed within it.
type Dentry struct {
	// Identity. Immutable for the lifetime of the dentry.
	DevID int
	Ino   int

	// lock guards everything below except count, which the cache
	// manipulates directly under its own lock per the documented
	// acquisition order (cache lock before dentry lock).
	lock sync.Mutex

	// count is the reference count. GUARDED_BY the cache lock, not
	// Dentry.lock: refcount transitions that cross zero are a cache-wide
	// concern (spec.md §5).
	count int

	// Inode is loaded lazily via the owning filesystem's ReadInode.
	// GUARDED_BY(lock)
	Inode *Inode

	// Filename and Parent form the tree and are mutable: a path
	// resolution may relocate a cached dentry under a different parent
	// (spec.md §4.1). GUARDED_BY(lock)
	Filename string
	Parent   *Dentry

	// flags holds the DentryFlag bitmask. GUARDED_BY(lock)
	flags DentryFlag

	// Mount linkage. GUARDED_BY(lock)
	MountedDentry *Dentry // set on the MOUNTPOINT side
	Mountpoint    *Dentry // set on the MOUNTED side

	// Ops is the owning filesystem's vtable, cached here for fast
	// dispatch (spec.md §3).
	Ops FSOps
}

// Lock acquires the dentry's own lock, guarding Filename, Parent, flags
// and the mount-linkage fields.
func (d *Dentry) Lock() { d.lock.Lock() }

// Unlock releases the dentry's own lock.
func (d *Dentry) Unlock() { d.lock.Unlock() }

// TestFlag reports whether every bit in want is set. Takes the dentry
// lock.
func (d *Dentry) TestFlag(want DentryFlag) bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.flags&want == want
}

// testFlagLocked is TestFlag for callers already holding d.lock.
func (d *Dentry) testFlagLocked(want DentryFlag) bool {
	return d.flags&want == want
}

// SetFlag sets the given flags. Takes the dentry lock.
func (d *Dentry) SetFlag(f DentryFlag) {
	d.lock.Lock()
	d.flags |= f
	d.lock.Unlock()
}

// ClearFlag clears the given flags. Takes the dentry lock.
func (d *Dentry) ClearFlag(f DentryFlag) {
	d.lock.Lock()
	d.flags &^= f
	d.lock.Unlock()
}

// IsDir reports whether the dentry's inode carries the directory type
// bit. Requires the inode to already be loaded.
func (d *Dentry) IsDir() bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.Inode != nil && d.Inode.Mode.IsDir()
}

func (d *Dentry) key() key { return key{devID: d.DevID, ino: d.Ino} }
