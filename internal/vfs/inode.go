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

// Inode is the in-memory mirror of a filesystem's on-disk metadata
// record (spec.md §3). The VFS never manufactures one; it is produced by
// a filesystem's ReadInode and written back through WriteInode.
type Inode struct {
	Mode       Mode
	UID        uint32
	GID        uint32
	Size       int64
	LinksCount uint32

	// FSData is opaque, filesystem-private state (spec.md's
	// "filesystem-private opaque data"), filled in by the filesystem's
	// own ReadInode; the VFS never sets or reads it.
	FSData interface{}
}
