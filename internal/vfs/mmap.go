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

// VirtualMemory is the small contract the VM layer exposes to the VFS
// (spec.md §6): user-copy, TLB flush, page-size arithmetic and zone
// allocation. vfscore never implements this itself — the real
// implementation lives in the VM manager, out of scope per spec.md §1.
type VirtualMemory interface {
	// CopyToUser copies src into the user-visible buffer dst, the
	// primitive Fstat's default path uses to deliver a stat struct.
	CopyToUser(dst, src []byte)

	// WritePhysicalPage writes data into the physical page already
	// mapped at vaddr, the primitive the page-fault hook uses to
	// populate a freshly-faulted-in page.
	WritePhysicalPage(vaddr uintptr, data []byte) error

	// PageStart rounds vaddr down to its containing page boundary.
	PageStart(vaddr uintptr) uintptr

	// PageSize returns VMM_PAGE_SIZE.
	PageSize() int

	// FlushTLBEntry invalidates the TLB entry for vaddr.
	FlushTLBEntry(vaddr uintptr)

	// NewRandomZone allocates a new private zone of the given size at an
	// unspecified free region of proc's address space.
	NewRandomZone(proc interface{}, size int) (*MemZone, error)

	// FreeZone releases a zone previously returned by NewRandomZone.
	FreeZone(proc interface{}, zone *MemZone)
}

// MemZoneType distinguishes how a zone's pages are populated. Named
// Type (not Flags) per SPEC_FULL.md §5.3's resolution of the original's
// flags/type field ambiguity: Munmap checks the field mmap actually
// writes.
type MemZoneType int

const (
	ZoneTypeAnonymous MemZoneType = iota
	ZoneTypeMappedFilePrivate
	ZoneTypeMappedFileShared
)

// MemZone is the VM layer's zone record, with the fields VFS installs
// for a private file mapping (spec.md §3).
type MemZone struct {
	Start  uintptr
	Len    int
	Offset int64
	Type   MemZoneType
	File   *Dentry
	Ops    *VMOps
}

// VMOps is the three-callback contract the VM layer invokes from the
// page-fault handler. Only LoadPageContent is populated by the VFS;
// private file mappings have no swap behavior of their own.
type VMOps struct {
	LoadPageContent func(zone *MemZone, vaddr uintptr) error
	SwapPageMode    func(zone *MemZone, vaddr uintptr) error
	RestoreSwapped  func(zone *MemZone, vaddr uintptr) error
}

// useStdMmap reports whether a filesystem's Mmap hook returned spec.md's
// "sentinel 'use standard mmap' value", meaning "I have no custom
// mapping behavior, fall back to the VFS default." The sentinel is a
// nil zone with a nil error.
func useStdMmap(zone *MemZone, err error) bool {
	return zone == nil && err == nil
}

// Mmap maps fd's dentry into the calling process's address space
// (spec.md C9 / §4.8). Only MAP_PRIVATE is implemented; MAP_SHARED file
// mapping returns ErrNoExec, matching the original's "currently
// unimplemented" status.
func (v *VFS) Mmap(fd *FileDescriptor, proc interface{}, params MmapParams) (*MemZone, error) {
	fd.Lock()
	defer fd.Unlock()

	if m, ok := fd.Dentry.Ops.(Mmaper); ok {
		zone, err := m.Mmap(fd.Dentry, params)
		if !useStdMmap(zone, err) {
			return zone, err
		}
	}

	if params.Flags&MapShared != 0 {
		return nil, ErrNoExec
	}
	if params.Flags&MapPrivate == 0 {
		return nil, ErrFault
	}

	zone, err := v.vmm.NewRandomZone(proc, params.Size)
	if err != nil {
		return nil, err
	}
	zone.Type = ZoneTypeMappedFilePrivate
	zone.File = v.cache.Duplicate(fd.Dentry)
	zone.Offset = params.Offset
	zone.Ops = &VMOps{LoadPageContent: v.loadPageContent}
	return zone, nil
}

// Munmap releases a mapping's dentry reference, flushes its pages from
// the TLB and frees the zone in the VM layer (spec.md §4.8). Rejects
// zones that are not file-mapped.
func (v *VFS) Munmap(proc interface{}, zone *MemZone) error {
	if zone.Type != ZoneTypeMappedFilePrivate && zone.Type != ZoneTypeMappedFileShared {
		return ErrFault
	}

	_ = v.cache.Put(zone.File)

	pageSize := uintptr(v.vmm.PageSize())
	for vaddr := zone.Start; vaddr < zone.Start+uintptr(zone.Len); vaddr += pageSize {
		v.vmm.FlushTLBEntry(vaddr)
	}
	v.vmm.FreeZone(proc, zone)
	return nil
}

// loadPageContent is the page-fault hook installed on every private
// file zone (spec.md §4.8's "Page-fault contract"). It reads exactly
// one page from zone.File at the offset corresponding to vaddr's page.
// Partial reads — the file is shorter than a page — leave the tail of
// the page whatever the underlying Read left it; callers needing a
// zero-extended page must do so themselves.
func (v *VFS) loadPageContent(zone *MemZone, vaddr uintptr) error {
	offset := zone.Offset + int64(v.vmm.PageStart(vaddr)-zone.Start)

	zone.File.lock.Lock()
	defer zone.File.lock.Unlock()

	r, ok := zone.File.Ops.(Reader)
	if !ok {
		return nil
	}

	buf := make([]byte, v.vmm.PageSize())
	n, err := r.Read(zone.File, buf, offset)
	if err != nil {
		return err
	}
	return v.vmm.WritePhysicalPage(v.vmm.PageStart(vaddr), buf[:n])
}
