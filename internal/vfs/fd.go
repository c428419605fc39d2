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

// FDType distinguishes a file-backed descriptor from a socket-backed
// one (spec.md §3). vfscore does not implement sockets itself — that
// lives in the socket layer out of scope per spec.md §1 — but the fd
// object carries the type tag so Close can route correctly. The other
// operations do not check the tag: on a socket-backed fd, whose Ops is
// nil, Read and Write return 0 bytes and no error.
type FDType int

const (
	FDTypeFile FDType = iota
	FDTypeSocket
)

// SocketEndpoint is the minimal contract the fd object needs from the
// out-of-scope socket layer: something closeable.
type SocketEndpoint interface {
	Close() error
}

// FileDescriptor is the per-open kernel-private object spec.md §3
// describes: a dentry or socket reference, a byte offset, open flags, a
// snapshotted operations vtable, and its own lock.
type FileDescriptor struct {
	lock sync.Mutex

	Type FDType

	// GUARDED_BY(lock)
	Dentry *Dentry
	Sock   SocketEndpoint
	Offset int64
	Flags  OpenFlags
	Ops    FSOps
}

// Lock acquires the fd's own lock, guarding Offset, Ops and the
// Dentry/Sock assignment (spec.md §5).
func (f *FileDescriptor) Lock() { f.lock.Lock() }

// Unlock releases the fd's own lock.
func (f *FileDescriptor) Unlock() { f.lock.Unlock() }
