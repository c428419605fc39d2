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
	"context"
	"strings"
)

// Lookup resolves a single path component under dir (spec.md C5 step
// 5 / §4.1's "mount stitching"). "." short-circuits to a duplicated
// reference to dir without ever calling into the filesystem. ".." on a
// MOUNTED dentry does not ask the filesystem either, since the
// filesystem below a mount has no notion of what lies above it: it
// returns dir's own Parent link, which Resolve sets to the directory
// holding the mountpoint when it steps across the mount. The
// Mountpoint link is not consulted, and a MOUNTED dentry whose Parent
// is still unset yields dir itself.
func (v *VFS) Lookup(dir *Dentry, name string) (*Dentry, error) {
	if !dir.IsDir() {
		return nil, ErrNotDir
	}

	if name == "." {
		return v.cache.Duplicate(dir), nil
	}

	if name == ".." && dir.TestFlag(DentryMounted) {
		dir.Lock()
		parent := dir.Parent
		dir.Unlock()
		if parent == nil {
			return v.cache.Duplicate(dir), nil
		}
		return v.cache.Duplicate(parent), nil
	}

	l, ok := dir.Ops.(Lookuper)
	if !ok {
		return nil, ErrNoExec
	}
	return l.Lookup(dir, name)
}

// followMountpoints walks the MOUNTPOINT chain starting at d, returning
// the final dentry (which may be d itself) and whether any hop was
// taken. Used by Resolve after each component lookup.
func (v *VFS) followMountpoints(d *Dentry) (*Dentry, bool) {
	crossed := false
	cur := d
	for cur.TestFlag(DentryMountpoint) {
		cur.lock.Lock()
		next := cur.MountedDentry
		cur.lock.Unlock()
		if next == nil {
			break
		}
		cur = next
		crossed = true
	}
	return cur, crossed
}

// Resolve walks path, optionally starting from start, and returns a
// fresh strong reference to the final dentry (spec.md C5 / §4.3).
//
// start == nil or an absolute path anchors at the root dentry; a
// relative path begins at a duplicated reference to start. Errors:
// ErrFault on a nil path, ErrNotExist on a missing component,
// ErrNotDir when traversing through a non-directory.
func (v *VFS) Resolve(ctx context.Context, start *Dentry, path string) (*Dentry, error) {
	ctx, span := tracer.Start(ctx, "vfs.Resolve")
	defer span.End()

	if path == "" && start == nil {
		return nil, ErrFault
	}

	var cur *Dentry
	var err error
	if start == nil || strings.HasPrefix(path, "/") {
		cur, err = v.RootDentry()
		if err != nil {
			return nil, err
		}
		path = strings.TrimLeft(path, "/")
	} else {
		cur = v.cache.Duplicate(start)
	}

	for path != "" {
		path = strings.TrimLeft(path, "/")
		if path == "" {
			break
		}

		i := strings.IndexByte(path, '/')
		var name string
		if i < 0 {
			name, path = path, ""
		} else {
			name, path = path[:i], path[i+1:]
		}
		if name == "" {
			break
		}

		parent := cur
		child, lookupErr := v.Lookup(parent, name)
		if lookupErr != nil {
			_ = v.cache.Put(parent)
			if lookupErr == ErrNoExec {
				return nil, ErrNotExist
			}
			return nil, lookupErr
		}

		lookuped := child
		final, crossed := v.followMountpoints(child)
		if crossed {
			_ = v.cache.Put(lookuped)
			final = v.cache.Duplicate(final)
		}
		child = final

		parent.lock.Lock()
		grandparent := parent.Parent
		parent.lock.Unlock()

		if child != parent && grandparent != child {
			child.lock.Lock()
			oldParent := child.Parent
			child.Filename = name
			child.Parent = parent
			child.lock.Unlock()
			// The child now owns a reference to its new parent so the
			// tree stays reachable for absolute-path reconstruction
			// even after this loop iteration releases its own working
			// reference to parent below.
			v.cache.Duplicate(parent)
			if oldParent != nil {
				_ = v.cache.Put(oldParent)
			}
		}
		_ = v.cache.Put(parent)
		cur = child
	}

	result := v.cache.Duplicate(cur)
	_ = v.cache.Put(cur)
	return result, nil
}
