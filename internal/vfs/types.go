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

// Package vfs is the indirection plane between process-visible file
// operations and the concrete filesystem drivers bound to storage
// devices: the dentry cache, the path resolver, mount topology,
// permission checks, file-descriptor state and the mmap page-fault
// path described in spec.md.
package vfs

import "os"

// Mode mirrors the type bits and rwx triplets spec.md §3 describes for
// an inode's mode field.
type Mode os.FileMode

const (
	ModeDir  Mode = Mode(os.ModeDir)
	ModeSock Mode = Mode(os.ModeSocket)

	// Classic owner/group/other rwx bits, lowest nine bits of Mode.
	ModeUserR  Mode = 0400
	ModeUserW  Mode = 0200
	ModeUserX  Mode = 0100
	ModeGroupR Mode = 0040
	ModeGroupW Mode = 0020
	ModeGroupX Mode = 0010
	ModeOtherR Mode = 0004
	ModeOtherW Mode = 0002
	ModeOtherX Mode = 0001
)

// IsDir reports whether m carries the directory type bit.
func (m Mode) IsDir() bool { return m&ModeDir != 0 }

// OpenFlags mirrors the open(2) flags spec.md §6 names.
type OpenFlags int

const (
	ORdonly OpenFlags = 1 << iota
	OWronly
	OExec
	ODirectory
	OTrunc
	OCreat
)

// Has reports whether every bit in want is set in f.
func (f OpenFlags) Has(want OpenFlags) bool { return f&want == want }

// MmapFlags mirrors the mmap(2) flags spec.md §6 names.
type MmapFlags int

const (
	MapShared MmapFlags = 1 << iota
	MapPrivate
)

// Stat is the classic owner/size/type tuple returned by Fstat.
type Stat struct {
	Dev  int
	Ino  int
	Mode Mode
	Size int64
}

// Dirent is one entry produced by Getdents.
type Dirent struct {
	Name string
	Ino  int
	Mode Mode
}

// MmapParams describes a requested mapping, the Go analogue of
// spec.md's mmap_params_t.
type MmapParams struct {
	Size   int
	Offset int64
	Flags  MmapFlags
}

// Caller identifies the thread issuing an operation for the permission
// engine (C7). A nil *Caller means an in-kernel call, which always
// bypasses permission checks (spec.md §4.9).
type Caller struct {
	UID       uint32
	GID       uint32
	SuperUser bool
}
