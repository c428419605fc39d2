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
	"sync"

	"github.com/kvfs/vfscore/internal/kernel"
)

// deviceSlot is one entry of the fixed-capacity device table (spec.md
// C1): a bound device, the index of the filesystem claiming it in the
// Registry, and a per-device lock guarding filesystem-private state
// during concurrent reads/writes. Device-slot locks are leaves in the
// lock order (spec.md §5) and may be taken under any other lock.
type deviceSlot struct {
	lock   sync.Mutex
	device kernel.Device
	fsIdx  int
	bound  bool
}

// DeviceTable is the VFS's fixed-size array mapping device id to bound
// filesystem index, per spec.md §3 ("VFS device slot"). RootDevID's
// boolean result is false while no root device has been bound yet.
type DeviceTable struct {
	mu      sync.Mutex
	slots   [kernel.MaxDevices]deviceSlot
	rootSet bool
	rootID  int
}

// NewDeviceTable returns an empty device table.
func NewDeviceTable() *DeviceTable {
	return &DeviceTable{}
}

// Bind records dev at its own id with the given filesystem index,
// becoming the root device if none has been set yet (spec.md §4.2:
// "The first storage device ever bound becomes the root").
func (t *DeviceTable) Bind(dev kernel.Device, fsIdx int) error {
	if dev.ID < 0 || dev.ID >= kernel.MaxDevices {
		return ErrNoSpace
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	slot := &t.slots[dev.ID]
	slot.lock.Lock()
	slot.device = dev
	slot.fsIdx = fsIdx
	slot.bound = true
	slot.lock.Unlock()

	if !t.rootSet {
		t.rootSet = true
		t.rootID = dev.ID
	}
	return nil
}

// Lookup returns the device and filesystem index bound at devID.
func (t *DeviceTable) Lookup(devID int) (kernel.Device, int, bool) {
	if devID < 0 || devID >= kernel.MaxDevices {
		return kernel.Device{}, 0, false
	}
	slot := &t.slots[devID]
	slot.lock.Lock()
	defer slot.lock.Unlock()
	return slot.device, slot.fsIdx, slot.bound
}

// Eject marks devID's slot unbound. The slot keeps its device record
// and filesystem index and goes on no free list (SPEC_FULL.md §5.1); a
// later Bind with the same devID overwrites it.
func (t *DeviceTable) Eject(devID int) {
	if devID < 0 || devID >= kernel.MaxDevices {
		return
	}
	slot := &t.slots[devID]
	slot.lock.Lock()
	slot.bound = false
	slot.lock.Unlock()
}

// RootDevID returns the id of the first storage device ever bound.
func (t *DeviceTable) RootDevID() (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rootID, t.rootSet
}
