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

	"github.com/kvfs/vfscore/internal/kernel"
	"github.com/kvfs/vfscore/internal/klog"
)

// VFS is the assembled indirection plane (spec.md §2): device table
// (C1), filesystem registry (C2), dentry cache (C3) and the virtual
// memory collaborator the mmap path (C9) depends on. It implements
// kernel.Subscriber so a kernel.Bus can drive it directly from
// NEW_DEVICE/NEW_DRIVER notifications (C10).
type VFS struct {
	cache    *Cache
	devices  *DeviceTable
	registry *Registry
	vmm      VirtualMemory
	metrics  *metricSet
}

// New assembles an empty VFS around the given virtual-memory
// collaborator (spec.md §6's vmm contract, used only by the mmap path).
func New(vmm VirtualMemory) *VFS {
	return &VFS{
		cache:    NewCache(),
		devices:  NewDeviceTable(),
		registry: NewRegistry(),
		vmm:      vmm,
		metrics:  newMetricSet(),
	}
}

var _ kernel.Subscriber = (*VFS)(nil)

// Cache exposes the dentry cache backing v, so a filesystem driver
// constructed alongside a VFS (e.g. internal/testfs) can mint
// correctly refcounted dentries from its own Lookup/Create/Mkdir
// without reaching into VFS internals.
func (v *VFS) Cache() *Cache {
	return v.cache
}

////////////////////////////////////////////////////////////////////////
// Event intake (C10)
////////////////////////////////////////////////////////////////////////

// OnNewDevice handles a NEW_DEVICE notification: non-storage devices
// are ignored (spec.md §3, "The VFS only cares about type == storage");
// a virtual device is registered without recognition, exactly like the
// original's is_virtual short-circuit (SPEC_FULL.md §4); a physical
// device is scanned against the registry in insertion order.
func (v *VFS) OnNewDevice(dev kernel.Device) error {
	if dev.Type != kernel.DeviceStorage {
		return nil
	}

	if dev.IsVirtual {
		return v.devices.Bind(dev, -1)
	}

	idx, ops, err := v.registry.Recognize(dev)
	if err != nil {
		return err
	}
	if err := v.devices.Bind(dev, idx); err != nil {
		return err
	}
	if p, ok := ops.(FSPreparer); ok {
		if err := p.PrepareFS(dev.ID); err != nil {
			return err
		}
	}

	v.maybeInstallRoot(dev.ID, ops)
	return nil
}

// OnNewDriver handles a NEW_DRIVER notification by appending it to the
// filesystem registry (C2).
func (v *VFS) OnNewDriver(drv kernel.Driver) error {
	_, err := v.registry.AddFS(drv)
	return err
}

// maybeInstallRoot installs the root dentry the first time a root
// device becomes available, per spec.md §3 ("the first storage device
// ever added becomes the root device; its inode index 2 is the root
// dentry").
func (v *VFS) maybeInstallRoot(devID int, ops FSOps) {
	rootID, ok := v.devices.RootDevID()
	if !ok || rootID != devID {
		return
	}
	if v.cache.Contains(devID, RootInode) {
		return
	}
	root, err := v.cache.Get(devID, RootInode, ops)
	if err != nil {
		klog.Errorf("vfs: failed to load root dentry on device %d: %v", devID, err)
		return
	}
	v.cache.SetRoot(root)
}

// AddDeviceWithFS binds dev to an explicit filesystem index, bypassing
// recognition (spec.md §4.2, used by Mount). Unlike OnNewDevice it does
// not filter on device type: mount() always knows exactly which
// filesystem it wants.
func (v *VFS) AddDeviceWithFS(dev kernel.Device, fsIdx int) (FSOps, error) {
	ops, err := v.registry.Ops(fsIdx)
	if err != nil {
		return nil, err
	}
	if err := v.devices.Bind(dev, fsIdx); err != nil {
		return nil, err
	}
	if p, ok := ops.(FSPreparer); ok {
		if err := p.PrepareFS(dev.ID); err != nil {
			return nil, err
		}
	}
	v.maybeInstallRoot(dev.ID, ops)
	return ops, nil
}

// EjectDevice handles device removal: invokes the filesystem's
// EjectDevice hook if present, then drops one reference to every cached
// dentry of devID. The slot itself is not reclaimed (SPEC_FULL.md §5.1).
func (v *VFS) EjectDevice(devID int) error {
	_, fsIdx, bound := v.devices.Lookup(devID)
	if bound {
		if ops, err := v.registry.Ops(fsIdx); err == nil {
			if e, ok := ops.(FSEjecter); ok {
				if err := e.EjectDevice(devID); err != nil {
					klog.Warnf("vfs: EjectDevice(%d): %v", devID, err)
				}
			}
		}
	}
	v.cache.PutAllDentriesOfDev(devID)
	v.devices.Eject(devID)
	return nil
}

// opsFor resolves the FSOps bound to devID, the step every operation
// that doesn't already have a live Dentry performs before it can do
// anything else.
func (v *VFS) opsFor(devID int) (FSOps, error) {
	_, fsIdx, bound := v.devices.Lookup(devID)
	if !bound {
		return nil, fmt.Errorf("vfs: no filesystem bound to device %d", devID)
	}
	return v.registry.Ops(fsIdx)
}

// RootDentry returns a fresh reference to the root dentry (dev, inode 2
// of the root device), used by Resolve when anchoring an absolute path.
func (v *VFS) RootDentry() (*Dentry, error) {
	rootID, ok := v.devices.RootDevID()
	if !ok {
		return nil, ErrNotExist
	}
	ops, err := v.opsFor(rootID)
	if err != nil {
		return nil, err
	}
	return v.cache.Get(rootID, RootInode, ops)
}

// Put releases one reference to d, the VFS-wide analogue of
// dentry_put, exposed so callers that resolved a Dentry via Resolve or
// Lookup can release it without reaching into the cache package.
func (v *VFS) Put(d *Dentry) error {
	return v.cache.Put(d)
}

// Duplicate increments d's refcount and returns d.
func (v *VFS) Duplicate(d *Dentry) *Dentry {
	return v.cache.Duplicate(d)
}
