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

import "strings"

// isRoot reports whether d is the root dentry: the root device's inode
// 2 (spec.md §3's root-inode contract).
func (v *VFS) isRoot(d *Dentry) bool {
	rootID, ok := v.devices.RootDevID()
	return ok && d.DevID == rootID && d.Ino == RootInode
}

// AbsolutePath computes d's canonical '/'-rooted string by walking
// toward the root via Parent (spec.md C11 / §4.10). Returns ErrAgain if
// the walk terminates at a non-root dentry (a detached subtree).
func (v *VFS) AbsolutePath(d *Dentry) (string, error) {
	if v.isRoot(d) {
		return "/", nil
	}

	var parts []string
	cur := d
	for !v.isRoot(cur) {
		cur.lock.Lock()
		name := cur.Filename
		parent := cur.Parent
		cur.lock.Unlock()
		if parent == nil {
			return "", ErrAgain
		}
		parts = append(parts, name)
		cur = parent
	}

	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(parts[i])
	}
	return b.String(), nil
}

// AbsolutePathInto is AbsolutePath for a caller-supplied fixed-size
// buffer, the direct analogue of the original vfs_get_absolute_path's
// buffer-length contract: ErrOverflow if buf is too short, otherwise
// the string and a terminating NUL byte are copied in and the number of
// bytes written, NUL included, is returned.
func (v *VFS) AbsolutePathInto(d *Dentry, buf []byte) (int, error) {
	s, err := v.AbsolutePath(d)
	if err != nil {
		return 0, err
	}
	if len(s)+1 > len(buf) {
		return 0, ErrOverflow
	}
	n := copy(buf, s)
	buf[n] = 0
	return n + 1, nil
}
