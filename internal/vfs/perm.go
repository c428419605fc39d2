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

// permCheck is the shared shape of PermToRead/PermToWrite/PermToExecute:
// classic owner/group/other rwx resolution with super-user bypass
// (spec.md §4.9).
//
// Note the deliberately asymmetric "other" clause: it requires BOTH uid
// and gid to differ from the inode's owner before the other-bits apply.
// A user who shares the inode's group but whose group bit happens to be
// clear is therefore denied rather than falling through to the other
// bits — this diverges from modern POSIX fallthrough semantics, and
// spec.md §9 asks implementers to decide intentionally rather than
// silently "fix" it. vfscore keeps the classic-kernel behavior.
func permCheck(d *Dentry, caller *Caller, userBit, groupBit, otherBit Mode) error {
	if caller == nil || caller.SuperUser {
		return nil
	}

	d.lock.Lock()
	in := d.Inode
	d.lock.Unlock()
	if in == nil {
		return ErrPerm
	}

	switch {
	case caller.UID == in.UID && in.Mode&userBit != 0:
		return nil
	case caller.GID == in.GID && in.Mode&groupBit != 0:
		return nil
	case caller.UID != in.UID && caller.GID != in.GID && in.Mode&otherBit != 0:
		return nil
	default:
		return ErrPerm
	}
}

// PermToRead checks read permission on d for caller.
func PermToRead(d *Dentry, caller *Caller) error {
	return permCheck(d, caller, ModeUserR, ModeGroupR, ModeOtherR)
}

// PermToWrite checks write permission on d for caller.
func PermToWrite(d *Dentry, caller *Caller) error {
	return permCheck(d, caller, ModeUserW, ModeGroupW, ModeOtherW)
}

// PermToExecute checks execute permission on d for caller.
func PermToExecute(d *Dentry, caller *Caller) error {
	return permCheck(d, caller, ModeUserX, ModeGroupX, ModeOtherX)
}
