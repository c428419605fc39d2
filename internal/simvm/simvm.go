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

// Package simvm is a minimal vfs.VirtualMemory stand-in backed by plain
// Go byte slices, letting the demo harness exercise the mmap path
// (internal/vfs's C9) without a real address-space manager. spec.md §1
// puts the VM manager itself out of scope; this package exists only so
// vfscored has something to hand the VFS's vmm slot.
package simvm

import (
	"sync"

	"github.com/kvfs/vfscore/internal/vfs"
)

const pageSize = 4096

// zoneBacking is the byte storage behind one simulated mapping.
type zoneBacking struct {
	start uintptr
	bytes []byte
}

// VM is a process-wide simulated address space: one growing arena of
// pages, handed out sequentially. It has no notion of per-process
// isolation, which is adequate for a single-process demo harness.
type VM struct {
	mu       sync.Mutex
	nextAddr uintptr
	zones    map[uintptr]*zoneBacking
}

// New returns an empty simulated address space starting at a
// non-trivial base address, so zone addresses don't look like raw
// slice indices when printed.
func New() *VM {
	return &VM{
		nextAddr: 0x10000000,
		zones:    make(map[uintptr]*zoneBacking),
	}
}

var _ vfs.VirtualMemory = (*VM)(nil)

func (vm *VM) CopyToUser(dst, src []byte) {
	copy(dst, src)
}

func (vm *VM) WritePhysicalPage(vaddr uintptr, data []byte) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	for addr, z := range vm.zones {
		if vaddr < addr || vaddr >= addr+uintptr(len(z.bytes)) {
			continue
		}
		off := vaddr - addr
		copy(z.bytes[off:], data)
		return nil
	}
	return nil
}

func (vm *VM) PageStart(vaddr uintptr) uintptr {
	return vaddr &^ uintptr(pageSize-1)
}

func (vm *VM) PageSize() int {
	return pageSize
}

func (vm *VM) FlushTLBEntry(vaddr uintptr) {}

func (vm *VM) NewRandomZone(proc interface{}, size int) (*vfs.MemZone, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	pages := (size + pageSize - 1) / pageSize
	length := pages * pageSize
	start := vm.nextAddr
	vm.nextAddr += uintptr(length) + pageSize // leave a guard page

	vm.zones[start] = &zoneBacking{start: start, bytes: make([]byte, length)}
	return &vfs.MemZone{Start: start, Len: length}, nil
}

func (vm *VM) FreeZone(proc interface{}, zone *vfs.MemZone) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	delete(vm.zones, zone.Start)
}
