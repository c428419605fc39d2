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

package testfs

import (
	"sort"

	"github.com/kvfs/vfscore/internal/klog"
	"github.com/kvfs/vfscore/internal/vfs"
)

var (
	_ vfs.Lookuper   = (*FS)(nil)
	_ vfs.Reader     = (*FS)(nil)
	_ vfs.Writer     = (*FS)(nil)
	_ vfs.Truncater  = (*FS)(nil)
	_ vfs.Creater    = (*FS)(nil)
	_ vfs.Unlinker   = (*FS)(nil)
	_ vfs.Mkdirer    = (*FS)(nil)
	_ vfs.Rmdirer    = (*FS)(nil)
	_ vfs.Getdentser = (*FS)(nil)
)

// Lookup resolves name under dir by consulting dir's child map and
// minting a cache-tracked dentry for the result, the same two-step
// every real driver follows: find the child's inode number, then ask
// the cache for (or to load) that inode.
func (fs *FS) Lookup(dir *vfs.Dentry, name string) (*vfs.Dentry, error) {
	// Ordinary ".." is resolved via the VFS-maintained Dentry.Parent
	// link, not dir's own child map: testfs never stores a ".." entry
	// (it has no reason to — the tree shape lives in Dentry.Parent),
	// so a plain child-map lookup would always miss here.
	if name == ".." {
		return fs.cache.Get(dir.DevID, parentIno(dir), fs)
	}

	fs.mu.Lock()
	n, err := fs.nodeLocked(dir.DevID, dir.Ino)
	if err != nil {
		fs.mu.Unlock()
		return nil, err
	}
	if !n.isDir() {
		fs.mu.Unlock()
		return nil, vfs.ErrNotDir
	}
	childIno, ok := n.children[name]
	fs.mu.Unlock()
	if !ok {
		return nil, vfs.ErrNotExist
	}

	return fs.cache.Get(dir.DevID, childIno, fs)
}

// Read copies up to len(buf) bytes starting at offset out of the
// node's in-memory byte slice.
func (fs *FS) Read(d *vfs.Dentry, buf []byte, offset int64) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := fs.nodeLocked(d.DevID, d.Ino)
	if err != nil {
		return 0, err
	}
	if offset >= int64(len(n.data)) {
		return 0, nil
	}
	return copy(buf, n.data[offset:]), nil
}

// Write extends the node's backing slice as needed and copies buf in
// at offset.
func (fs *FS) Write(d *vfs.Dentry, buf []byte, offset int64) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := fs.nodeLocked(d.DevID, d.Ino)
	if err != nil {
		return 0, err
	}
	end := offset + int64(len(buf))
	if end > int64(len(n.data)) {
		grown := make([]byte, end)
		copy(grown, n.data)
		n.data = grown
	}
	return copy(n.data[offset:end], buf), nil
}

// Truncate grows or shrinks the node's backing slice to size.
func (fs *FS) Truncate(d *vfs.Dentry, size int64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := fs.nodeLocked(d.DevID, d.Ino)
	if err != nil {
		return err
	}
	if size <= int64(len(n.data)) {
		n.data = n.data[:size]
		return nil
	}
	grown := make([]byte, size)
	copy(grown, n.data)
	n.data = grown
	return nil
}

// Create allocates a new file inode under dir and links name to it.
func (fs *FS) Create(dir *vfs.Dentry, name string, mode vfs.Mode, uid, gid uint32) (*vfs.Dentry, error) {
	fs.mu.Lock()
	st, ok := fs.devices[dir.DevID]
	if !ok {
		fs.mu.Unlock()
		return nil, vfs.ErrNotExist
	}
	parent, err := fs.nodeLocked(dir.DevID, dir.Ino)
	if err != nil {
		fs.mu.Unlock()
		return nil, err
	}
	if !parent.isDir() {
		fs.mu.Unlock()
		return nil, vfs.ErrNotDir
	}

	ino := st.nextIno
	st.nextIno++
	st.nodes[ino] = newFileNode(mode, uid, gid)
	parent.children[name] = ino
	fs.mu.Unlock()

	klog.Debugf("testfs: created file inode %d under dev %d at %s", ino, dir.DevID, fs.now())
	d, err := fs.cache.Get(dir.DevID, ino, fs)
	if err != nil {
		return nil, err
	}
	// Record the new entry's name and parent on its dentry, as Resolve
	// does, so Unlink can find it in the parent's child map. The parent
	// link is an owned reference.
	parentRef := fs.cache.Duplicate(dir)
	d.Lock()
	d.Filename = name
	d.Parent = parentRef
	d.Unlock()
	return d, nil
}

// Unlink drops name from its parent's child map and decrements the
// target's link count, leaving actual inode destruction to FreeInode
// once the dentry cache's last reference drops (spec.md §4.6).
func (fs *FS) Unlink(file *vfs.Dentry) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := fs.nodeLocked(file.DevID, file.Ino)
	if err != nil {
		return err
	}
	if n.linksCount > 0 {
		n.linksCount--
	}

	parent, err := fs.nodeLocked(file.DevID, parentIno(file))
	if err == nil {
		delete(parent.children, filename(file))
	}
	return nil
}

// Mkdir allocates a new directory inode under dir and links name to
// it.
func (fs *FS) Mkdir(dir *vfs.Dentry, name string, mode vfs.Mode, uid, gid uint32) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	st, ok := fs.devices[dir.DevID]
	if !ok {
		return vfs.ErrNotExist
	}
	parent, err := fs.nodeLocked(dir.DevID, dir.Ino)
	if err != nil {
		return err
	}
	if !parent.isDir() {
		return vfs.ErrNotDir
	}
	if _, exists := parent.children[name]; exists {
		return vfs.ErrExist
	}

	ino := st.nextIno
	st.nextIno++
	st.nodes[ino] = newDirNode(mode, uid, gid)
	parent.children[name] = ino
	klog.Debugf("testfs: created directory inode %d under dev %d at %s", ino, dir.DevID, fs.now())
	return nil
}

// Rmdir removes an empty directory entry from its parent's child map.
func (fs *FS) Rmdir(dir *vfs.Dentry) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := fs.nodeLocked(dir.DevID, dir.Ino)
	if err != nil {
		return err
	}
	if len(n.children) > 0 {
		return vfs.ErrBusy
	}

	parent, err := fs.nodeLocked(dir.DevID, parentIno(dir))
	if err == nil {
		delete(parent.children, filename(dir))
	}
	return nil
}

// Getdents lists dir's children starting at *offset, treating offset
// as a simple entry index rather than a byte cursor: adequate for an
// in-memory directory where entries carry no serialized size.
func (fs *FS) Getdents(dir *vfs.Dentry, offset *int64, n int) ([]vfs.Dirent, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	dn, err := fs.nodeLocked(dir.DevID, dir.Ino)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(dn.children))
	for name := range dn.children {
		names = append(names, name)
	}
	sort.Strings(names)

	start := int(*offset)
	if start >= len(names) {
		return nil, nil
	}
	end := start + n
	if end > len(names) {
		end = len(names)
	}

	ents := make([]vfs.Dirent, 0, end-start)
	for _, name := range names[start:end] {
		ino := dn.children[name]
		child := dn
		if ino != dir.Ino {
			child = fs.devices[dir.DevID].nodes[ino]
		}
		ents = append(ents, vfs.Dirent{Name: name, Ino: ino, Mode: child.mode})
	}
	*offset = int64(end)
	return ents, nil
}

// parentIno finds d's parent inode number via the VFS-maintained
// Dentry.Parent link rather than testfs's own state, since testfs never
// stores ".." pointers itself.
func parentIno(d *vfs.Dentry) int {
	d.Lock()
	defer d.Unlock()
	if d.Parent == nil {
		return vfs.RootInode
	}
	return d.Parent.Ino
}

// filename reads d's current name under its own lock.
func filename(d *vfs.Dentry) string {
	d.Lock()
	defer d.Unlock()
	return d.Filename
}
