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
	"sync"

	"github.com/kvfs/vfscore/internal/kernel"
	"github.com/kvfs/vfscore/internal/vfs"
)

// fakeVM is a no-op vfs.VirtualMemory used by tests that don't exercise
// mmap directly but still need to construct a *vfs.VFS.
type fakeVM struct {
	mu    sync.Mutex
	zones map[*vfs.MemZone]bool
}

func newFakeVM() *fakeVM {
	return &fakeVM{zones: make(map[*vfs.MemZone]bool)}
}

func (f *fakeVM) CopyToUser(dst, src []byte)              { copy(dst, src) }
func (f *fakeVM) WritePhysicalPage(uintptr, []byte) error { return nil }
func (f *fakeVM) PageStart(vaddr uintptr) uintptr          { return vaddr &^ uintptr(4095) }
func (f *fakeVM) PageSize() int                            { return 4096 }
func (f *fakeVM) FlushTLBEntry(uintptr)                    {}
func (f *fakeVM) NewRandomZone(proc interface{}, size int) (*vfs.MemZone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	z := &vfs.MemZone{Start: 0x1000, Len: size}
	f.zones[z] = true
	return z, nil
}
func (f *fakeVM) FreeZone(proc interface{}, zone *vfs.MemZone) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.zones, zone)
}

var _ vfs.VirtualMemory = (*fakeVM)(nil)

// memDriver is a tiny hand-rolled FSOps used for tests that need more
// direct control over inode lifecycle than internal/testfs.FS gives
// them: it records every WriteInode/FreeInode call so tests can assert
// on them directly, and its Lookup walks a plain children map that
// tests populate by hand via addChild, rather than through Create or
// Mkdir (which memDriver deliberately doesn't implement).
type memDriver struct {
	mu       sync.Mutex
	cache    *vfs.Cache
	inodes   map[int]*vfs.Inode
	children map[int]map[string]int
	nextIno  int
	freed    []int
	written  []int
}

func newMemDriver() *memDriver {
	d := &memDriver{
		inodes:   make(map[int]*vfs.Inode),
		children: make(map[int]map[string]int),
		nextIno:  vfs.RootInode + 1,
	}
	d.inodes[vfs.RootInode] = &vfs.Inode{Mode: vfs.ModeDir | 0755}
	d.children[vfs.RootInode] = make(map[string]int)
	return d
}

func (d *memDriver) Recognize(dev kernel.Device) error { return nil }

func (d *memDriver) ReadInode(devID, ino int) (*vfs.Inode, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	in, ok := d.inodes[ino]
	if !ok {
		return nil, vfs.ErrNotExist
	}
	cp := *in
	return &cp, nil
}

func (d *memDriver) WriteInode(devID int, ino int, in *vfs.Inode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.written = append(d.written, ino)
	cp := *in
	d.inodes[ino] = &cp
	return nil
}

func (d *memDriver) FreeInode(devID int, ino int, in *vfs.Inode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.freed = append(d.freed, ino)
	delete(d.inodes, ino)
	delete(d.children, ino)
	return nil
}

func (d *memDriver) GetFSData(devID int) interface{} { return d }

// Lookup walks the children map built by addChild, minting a
// cache-tracked dentry the same way internal/testfs.FS.Lookup does.
func (d *memDriver) Lookup(dir *vfs.Dentry, name string) (*vfs.Dentry, error) {
	if name == ".." {
		dir.Lock()
		parent := dir.Parent
		dir.Unlock()
		if parent == nil {
			return d.cache.Get(dir.DevID, vfs.RootInode, d)
		}
		return d.cache.Get(parent.DevID, parent.Ino, d)
	}

	d.mu.Lock()
	kids, ok := d.children[dir.Ino]
	if !ok {
		d.mu.Unlock()
		return nil, vfs.ErrNotDir
	}
	ino, ok := kids[name]
	d.mu.Unlock()
	if !ok {
		return nil, vfs.ErrNotExist
	}
	return d.cache.Get(dir.DevID, ino, d)
}

// addChild registers a new inode under parentIno named name, for tests
// that need a small directory tree without going through Create/Mkdir.
func (d *memDriver) addChild(parentIno int, name string, ino int, mode vfs.Mode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inodes[ino] = &vfs.Inode{Mode: mode}
	if mode.IsDir() {
		d.children[ino] = make(map[string]int)
	}
	d.children[parentIno][name] = ino
}

var (
	_ vfs.FSOps    = (*memDriver)(nil)
	_ vfs.Lookuper = (*memDriver)(nil)
)

// newTestVFS wires a VFS around a single virtual root device backed by
// memDriver, returning the VFS and the driver so tests can inspect its
// write/free history and populate its directory tree.
func newTestVFS() (*vfs.VFS, *memDriver) {
	v := vfs.New(newFakeVM())
	drv := newMemDriver()
	drv.cache = v.Cache()
	_ = v.OnNewDriver(kernel.Driver{Name: "mem", Type: kernel.DriverFileSystem, Ops: drv})
	_ = v.OnNewDevice(kernel.Device{ID: 0, Type: kernel.DeviceStorage, IsVirtual: true})
	return v, drv
}
