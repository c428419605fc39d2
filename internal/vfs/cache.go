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

import (
	"fmt"

	"github.com/jacobsa/syncutil"

	"github.com/kvfs/vfscore/internal/klog"
)

// Cache is the dentry cache (spec.md C3 / §4.1): a single hash keyed on
// (dev id, inode index), reference-counted, with deferred inode
// destruction and write-back. Acquisition order is cache lock before
// dentry lock, never the reverse (spec.md §5); Cache never calls into a
// Dentry method that reacquires mu.
type Cache struct {
	// mu is an InvariantMutex so every release re-validates the cache's
	// structural invariants in debug builds, the same discipline the
	// teacher's fileSystem.mu applies to its inode table.
	mu syncutil.InvariantMutex

	// entries is the hash table proper. GUARDED_BY(mu)
	entries map[key]*Dentry

	// root is the never-evicted root dentry (spec.md invariant 4).
	// GUARDED_BY(mu)
	root *Dentry
}

// NewCache returns an empty dentry cache.
func NewCache() *Cache {
	c := &Cache{entries: make(map[key]*Dentry)}
	c.mu = syncutil.NewInvariantMutex(c.checkInvariants)
	return c
}

////////////////////////////////////////////////////////////////////////
// Invariants
////////////////////////////////////////////////////////////////////////

func (c *Cache) checkInvariants() {
	for k, d := range c.entries {
		// INVARIANT: for every cached dentry, d.count >= 1.
		if d.count < 1 {
			panic(fmt.Sprintf("dentry (%d,%d) has non-positive refcount %d", k.devID, k.ino, d.count))
		}
		// INVARIANT: the map key matches the dentry's own identity.
		if d.key() != k {
			panic(fmt.Sprintf("dentry stored under key %v but identifies as %v", k, d.key()))
		}
		// INVARIANT: MOUNTPOINT <=> MountedDentry set, MOUNTED, and its
		// Mountpoint points back here.
		d.lock.Lock()
		isMP := d.testFlagLocked(DentryMountpoint)
		md := d.MountedDentry
		d.lock.Unlock()
		if isMP {
			if md == nil {
				panic(fmt.Sprintf("dentry (%d,%d) is a mountpoint with no mounted dentry", k.devID, k.ino))
			}
			md.lock.Lock()
			mdMounted := md.testFlagLocked(DentryMounted)
			mdBack := md.Mountpoint
			md.lock.Unlock()
			if !mdMounted || mdBack != d {
				panic(fmt.Sprintf("dentry (%d,%d) mount pairing broken", k.devID, k.ino))
			}
		}
	}

	// INVARIANT: the root dentry, if present, is never evictable from
	// outside (callers of Put never drop its last reference because
	// boot-time code holds a permanent extra reference).
	if c.root != nil {
		if _, ok := c.entries[c.root.key()]; !ok {
			panic("root dentry missing from cache")
		}
	}
}

////////////////////////////////////////////////////////////////////////
// Public interface
////////////////////////////////////////////////////////////////////////

// SetRoot installs d as the never-evicted root dentry. Called exactly
// once, when the first storage device is bound (spec.md §3).
func (c *Cache) SetRoot(d *Dentry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.root = d
}

// Get returns a fresh strong reference to the dentry identified by
// (devID, ino), loading its inode via ops.ReadInode on a miss. ops is
// only consulted on a cache miss; a hit reuses the cached Ops pointer.
func (c *Cache) Get(devID, ino int, ops FSOps) (*Dentry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key{devID: devID, ino: ino}
	if d, ok := c.entries[k]; ok {
		d.count++
		return d, nil
	}

	in, err := ops.ReadInode(devID, ino)
	if err != nil {
		return nil, err
	}

	d := &Dentry{
		DevID: devID,
		Ino:   ino,
		Inode: in,
		Ops:   ops,
		count: 1,
	}
	c.entries[k] = d
	klog.Debugf("cache: loaded dentry (%d,%d)", devID, ino)
	return d, nil
}

// Duplicate increments d's refcount and returns d, for the common case
// of handing out another strong reference to an already-held dentry.
func (c *Cache) Duplicate(d *Dentry) *Dentry {
	c.mu.Lock()
	defer c.mu.Unlock()
	d.count++
	return d
}

// Put drops one reference to d. On reaching zero: if
// DentryInodeToBeDeleted, calls FreeInode; otherwise, if DentryDirty,
// calls WriteInode; then evicts d from the cache (unless d is the
// pinned root).
func (c *Cache) Put(d *Dentry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.putLocked(d)
}

// putLocked is Put for callers already holding c.mu (used by
// PutAllDentriesOfDev, which must not recurse into c.mu).
func (c *Cache) putLocked(d *Dentry) error {
	d.count--
	if d.count > 0 {
		return nil
	}
	if d.count < 0 {
		panic(fmt.Sprintf("dentry (%d,%d) refcount went negative", d.DevID, d.Ino))
	}

	d.lock.Lock()
	toDelete := d.testFlagLocked(DentryInodeToBeDeleted)
	dirty := d.testFlagLocked(DentryDirty)
	in := d.Inode
	ops := d.Ops
	d.lock.Unlock()

	var err error
	if toDelete {
		if e := ops.FreeInode(d.DevID, d.Ino, in); e != nil {
			klog.Warnf("cache: FreeInode(%d,%d): %v", d.DevID, d.Ino, e)
			err = e
		}
	} else if dirty {
		if e := ops.WriteInode(d.DevID, d.Ino, in); e != nil {
			klog.Warnf("cache: WriteInode(%d,%d): %v", d.DevID, d.Ino, e)
			err = e
		}
	}

	if c.root == d {
		// The root is never actually evicted; its lifetime invariant
		// (spec.md invariant 4) is maintained by boot-time code holding
		// a permanent extra reference that never reaches Put.
		d.count = 1
		return err
	}

	delete(c.entries, d.key())
	klog.Debugf("cache: evicted dentry (%d,%d)", d.DevID, d.Ino)

	// d.Parent (set by Resolve's stitching, resolve.go) is an owned
	// reference, not a bare pointer: releasing d must release it too, or
	// the parent's refcount never reaches zero and it pins its own
	// parent all the way to the root. c.mu is already held, so this
	// recurses into putLocked directly rather than through Put.
	d.lock.Lock()
	parent := d.Parent
	d.Parent = nil
	d.lock.Unlock()
	if parent != nil {
		if e := c.putLocked(parent); e != nil && err == nil {
			err = e
		}
	}

	return err
}

// PutAllDentriesOfDev forces cleanup of every cached dentry belonging to
// devID, used at device ejection (spec.md §4.2). Dentries still
// referenced elsewhere are only decremented, not force-destroyed: this
// matches the C original's dentry_put_all_dentries_of_dev, which simply
// releases the ejecting caller's own bookkeeping reference on each.
func (c *Cache) PutAllDentriesOfDev(devID int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var victims []*Dentry
	for k, d := range c.entries {
		if k.devID == devID {
			victims = append(victims, d)
		}
	}
	for _, d := range victims {
		_ = c.putLocked(d)
	}
}

// RefCount returns d's current reference count, for tests asserting the
// "open/close conserves refcounts" law.
func (c *Cache) RefCount(d *Dentry) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return d.count
}

// Contains reports whether (devID, ino) is currently cached.
func (c *Cache) Contains(devID, ino int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key{devID: devID, ino: ino}]
	return ok
}

// sweepDirty flushes every currently-cached, DentryDirty dentry through
// its filesystem's WriteInode and clears the flag on success, without
// waiting for the dentry's last reference to drop. It is the periodic
// half of write-back (spec.md C3); Put's on-evict WriteInode call above
// is the other half, for dentries that go dirty and are then closed
// before the next sweep. Driven by StartWriteback.
func (c *Cache) sweepDirty() {
	c.mu.Lock()
	var dirty []*Dentry
	for _, d := range c.entries {
		d.lock.Lock()
		isDirty := d.testFlagLocked(DentryDirty)
		d.lock.Unlock()
		if isDirty {
			dirty = append(dirty, d)
		}
	}
	c.mu.Unlock()

	for _, d := range dirty {
		d.lock.Lock()
		in := d.Inode
		ops := d.Ops
		d.lock.Unlock()

		if err := ops.WriteInode(d.DevID, d.Ino, in); err != nil {
			klog.Warnf("cache: write-back sweep: WriteInode(%d,%d): %v", d.DevID, d.Ino, err)
			continue
		}
		d.ClearFlag(DentryDirty)
		klog.Debugf("cache: write-back sweep flushed dentry (%d,%d)", d.DevID, d.Ino)
	}
}
