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

import "github.com/kvfs/vfscore/internal/kernel"

// FSOps is the required capability set every filesystem driver must
// implement (spec.md §3, "required"). The VFS registry refuses to add a
// driver whose Ops value does not satisfy this interface.
type FSOps interface {
	// Recognize reports whether dev is formatted for this filesystem. It
	// is skipped for devices bound explicitly (mount, or a virtual
	// device) per spec.md §4.2.
	Recognize(dev kernel.Device) error

	// ReadInode loads inode ino from dev on a dentry cache miss.
	ReadInode(devID, ino int) (*Inode, error)

	// WriteInode flushes a dirty inode back to dev.
	WriteInode(devID int, ino int, in *Inode) error

	// FreeInode releases an inode whose link count reached zero and
	// whose last dentry reference has dropped.
	FreeInode(devID int, ino int, in *Inode) error

	// GetFSData returns the filesystem-private state associated with
	// dev, installed by PrepareFS if the driver implements it.
	GetFSData(devID int) interface{}
}

// The remaining interfaces are optional per-dentry extensions (spec.md
// §3, "optional"). The VFS type-asserts an FSOps value against each of
// these at the point of use and falls back to the documented default
// when the assertion fails, exactly as spec.md requires ("Any optional
// absence yields the VFS default").

// FSPreparer initializes per-device filesystem-private state right
// after a device is bound, explicitly or via recognition.
type FSPreparer interface {
	PrepareFS(devID int) error
}

// FSEjecter is invoked at ejection, before the cache drops one
// reference to each of the device's cached dentries.
type FSEjecter interface {
	EjectDevice(devID int) error
}

// Lookuper resolves one path component under dir. Responsible for the
// ordinary (non-mounted) ".." case; the VFS itself special-cases "."
// and the mounted ".." case before ever calling this (spec.md §4.1).
type Lookuper interface {
	Lookup(dir *Dentry, name string) (*Dentry, error)
}

// Opener lets a filesystem (e.g. a device filesystem routing opens to
// device-specific handlers) claim an open before the VFS default path
// runs. Returning ErrNoExec defers back to the VFS default.
type Opener interface {
	Open(file *Dentry, fd *FileDescriptor, flags OpenFlags) error
}

// Reader services fd reads at a byte offset.
type Reader interface {
	Read(d *Dentry, buf []byte, offset int64) (int, error)
}

// Writer services fd writes at a byte offset.
type Writer interface {
	Write(d *Dentry, buf []byte, offset int64) (int, error)
}

// CanReader reports whether a read at offset can proceed without
// blocking. Absence means "always ready" (spec.md §4.5's
// blocking-unaware default).
type CanReader interface {
	CanRead(d *Dentry, offset int64) bool
}

// CanWriter reports whether a write at offset can proceed without
// blocking.
type CanWriter interface {
	CanWrite(d *Dentry, offset int64) bool
}

// Truncater resizes a file, invoked by Write when O_TRUNC is set.
type Truncater interface {
	Truncate(d *Dentry, size int64) error
}

// Creater makes a new file entry under dir, invoked after the VFS has
// confirmed no prior entry of the same name exists.
type Creater interface {
	Create(dir *Dentry, name string, mode Mode, uid, gid uint32) (*Dentry, error)
}

// Unlinker removes a non-directory entry's link.
type Unlinker interface {
	Unlink(d *Dentry) error
}

// Mkdirer creates a new directory entry under dir.
type Mkdirer interface {
	Mkdir(dir *Dentry, name string, mode Mode, uid, gid uint32) error
}

// Rmdirer removes an empty directory entry.
type Rmdirer interface {
	Rmdir(d *Dentry) error
}

// Getdentser lists a directory's entries starting at *offset, writing
// at most n entries and advancing *offset past what it consumed.
type Getdentser interface {
	Getdents(dir *Dentry, offset *int64, n int) ([]Dirent, error)
}

// FStater produces a custom Stat, bypassing the VFS default assembly.
type FStater interface {
	FStat(d *Dentry) (Stat, error)
}

// IOctler services device-specific control requests.
type IOctler interface {
	IOctl(d *Dentry, cmd int, arg uintptr) (int, error)
}

// Mmaper lets a filesystem service mmap itself. Returning a nil zone
// with a nil error defers to the VFS's standard private-mapping path.
type Mmaper interface {
	Mmap(d *Dentry, params MmapParams) (*MemZone, error)
}
