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

import "errors"

// Sentinel errors returned by every public operation in this package.
// These mirror the classic POSIX error set the kernel's syscall layer
// expects back from the VFS (spec.md §6, §7).
var (
	ErrFault    = errors.New("vfs: bad address")
	ErrPerm     = errors.New("vfs: operation not permitted")
	ErrAccess   = errors.New("vfs: permission denied")
	ErrIsDir    = errors.New("vfs: is a directory")
	ErrNotDir   = errors.New("vfs: not a directory")
	ErrNotExist = errors.New("vfs: no such file or directory")
	ErrExist    = errors.New("vfs: file exists")
	ErrBusy     = errors.New("vfs: device or resource busy")
	ErrBadFD    = errors.New("vfs: bad file descriptor")
	ErrNotSocket = errors.New("vfs: socket operation on non-socket")
	ErrNoExec   = errors.New("vfs: exec format error")
	ErrAgain    = errors.New("vfs: resource temporarily unavailable")
	ErrOverflow = errors.New("vfs: value too large")
	ErrNoSpace  = errors.New("vfs: no space left on device table")
)
