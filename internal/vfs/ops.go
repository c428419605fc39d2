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

// Open validates file against the requested flags and produces fd
// (spec.md C8 / §4.4). caller == nil means an in-kernel call and
// bypasses permission checks.
func (v *VFS) Open(file *Dentry, flags OpenFlags, caller *Caller) (*FileDescriptor, error) {
	v.metrics.opsTotal.WithLabelValues("open").Inc()

	if file.TestFlag(DentryPrivate) {
		return nil, ErrPerm
	}

	isDir := file.IsDir()
	if isDir && !flags.Has(ODirectory) {
		return nil, ErrIsDir
	}

	if flags.Has(OExec) {
		if err := PermToExecute(file, caller); err != nil {
			return nil, ErrAccess
		}
	}
	if flags.Has(OWronly) {
		if err := PermToWrite(file, caller); err != nil {
			return nil, ErrAccess
		}
		if isDir {
			return nil, ErrIsDir
		}
	}
	if flags.Has(ORdonly) {
		if err := PermToRead(file, caller); err != nil {
			return nil, ErrAccess
		}
	}

	fd := &FileDescriptor{}
	if o, ok := file.Ops.(Opener); ok {
		if err := o.Open(file, fd, flags); err != ErrNoExec {
			return fd, err
		}
	}

	fd.Type = FDTypeFile
	fd.Dentry = v.cache.Duplicate(file)
	fd.Offset = 0
	fd.Flags = flags
	fd.Ops = file.Ops
	return fd, nil
}

// Close releases fd's reference and clears its fields (spec.md §4.4).
func (v *VFS) Close(fd *FileDescriptor) error {
	v.metrics.opsTotal.WithLabelValues("close").Inc()

	fd.Lock()
	defer fd.Unlock()

	var err error
	switch fd.Type {
	case FDTypeFile:
		if fd.Dentry != nil {
			err = v.cache.Put(fd.Dentry)
		}
	case FDTypeSocket:
		if fd.Sock != nil {
			err = fd.Sock.Close()
		}
	}
	fd.Dentry = nil
	fd.Sock = nil
	fd.Ops = nil
	fd.Offset = 0
	return err
}

// Read services fd's Reader under the fd lock, advancing Offset by the
// number of bytes returned (spec.md §4.5). Returns 0 if the filesystem
// provides no Read method.
func (v *VFS) Read(fd *FileDescriptor, buf []byte) (int, error) {
	v.metrics.opsTotal.WithLabelValues("read").Inc()

	fd.Lock()
	defer fd.Unlock()

	r, ok := fd.Ops.(Reader)
	if !ok {
		return 0, nil
	}

	n, err := r.Read(fd.Dentry, buf, fd.Offset)
	if n > 0 {
		fd.Offset += int64(n)
	}
	return n, err
}

// Write services fd's Writer under the fd lock, advancing Offset and
// truncating if O_TRUNC is set (spec.md §4.5).
func (v *VFS) Write(fd *FileDescriptor, buf []byte) (int, error) {
	v.metrics.opsTotal.WithLabelValues("write").Inc()

	fd.Lock()
	defer fd.Unlock()

	w, ok := fd.Ops.(Writer)
	if !ok {
		return 0, nil
	}

	n, err := w.Write(fd.Dentry, buf, fd.Offset)
	if n > 0 {
		fd.Offset += int64(n)
		fd.Dentry.SetFlag(DentryDirty)
	}

	if fd.Flags.Has(OTrunc) {
		if t, ok := fd.Ops.(Truncater); ok {
			_ = t.Truncate(fd.Dentry, fd.Offset)
		}
	}

	return n, err
}

// CanRead reports whether a read on fd can currently proceed without
// blocking.
func (v *VFS) CanRead(fd *FileDescriptor) bool {
	fd.Lock()
	defer fd.Unlock()
	if c, ok := fd.Ops.(CanReader); ok {
		return c.CanRead(fd.Dentry, fd.Offset)
	}
	return true
}

// CanWrite reports whether a write on fd can currently proceed without
// blocking.
func (v *VFS) CanWrite(fd *FileDescriptor) bool {
	fd.Lock()
	defer fd.Unlock()
	if c, ok := fd.Ops.(CanWriter); ok {
		return c.CanWrite(fd.Dentry, fd.Offset)
	}
	return true
}

// Create makes name under dir with mode/uid/gid, refusing if an entry
// of the same name already resolves (spec.md §4.6).
func (v *VFS) Create(dir *Dentry, name string, mode Mode, uid, gid uint32) (*Dentry, error) {
	v.metrics.opsTotal.WithLabelValues("create").Inc()

	if existing, err := v.Lookup(dir, name); err == nil {
		_ = v.cache.Put(existing)
		return nil, ErrExist
	}

	c, ok := dir.Ops.(Creater)
	if !ok {
		return nil, ErrNoExec
	}
	return c.Create(dir, name, mode, uid, gid)
}

// Unlink removes a non-directory entry, deferring inode destruction
// until the last reference drops if this was the last link (spec.md
// §4.6).
func (v *VFS) Unlink(file *Dentry) error {
	v.metrics.opsTotal.WithLabelValues("unlink").Inc()

	if file.IsDir() {
		return ErrPerm
	}

	file.lock.Lock()
	links := uint32(0)
	if file.Inode != nil {
		links = file.Inode.LinksCount
	}
	file.lock.Unlock()
	if links == 1 {
		file.SetFlag(DentryInodeToBeDeleted)
	}

	u, ok := file.Ops.(Unlinker)
	if !ok {
		return ErrNoExec
	}
	return u.Unlink(file)
}

// Mkdir creates a directory entry under dir (spec.md §4.6).
func (v *VFS) Mkdir(dir *Dentry, name string, mode Mode, uid, gid uint32) error {
	v.metrics.opsTotal.WithLabelValues("mkdir").Inc()

	if !dir.IsDir() {
		return ErrNotDir
	}
	m, ok := dir.Ops.(Mkdirer)
	if !ok {
		return ErrNoExec
	}
	return m.Mkdir(dir, name, mode|ModeDir, uid, gid)
}

// Rmdir removes an empty directory entry, refusing mountpoints,
// mounted roots, and anything still referenced elsewhere (spec.md
// §4.6: "busy").
func (v *VFS) Rmdir(dir *Dentry) error {
	v.metrics.opsTotal.WithLabelValues("rmdir").Inc()

	if !dir.IsDir() {
		return ErrNotDir
	}
	if dir.TestFlag(DentryMountpoint) || dir.TestFlag(DentryMounted) {
		return ErrBusy
	}
	if v.cache.RefCount(dir) != 1 {
		return ErrBusy
	}

	r, ok := dir.Ops.(Rmdirer)
	if !ok {
		return ErrNoExec
	}
	if err := r.Rmdir(dir); err != nil {
		return err
	}
	dir.SetFlag(DentryInodeToBeDeleted)
	return nil
}

// Getdents lists directory entries through dirFd under the fd lock
// (spec.md §4.6).
func (v *VFS) Getdents(dirFd *FileDescriptor, n int) ([]Dirent, error) {
	v.metrics.opsTotal.WithLabelValues("getdents").Inc()

	if !dirFd.Dentry.IsDir() {
		return nil, ErrNotDir
	}

	dirFd.Lock()
	defer dirFd.Unlock()

	g, ok := dirFd.Ops.(Getdentser)
	if !ok {
		return nil, nil
	}
	ents, err := g.Getdents(dirFd.Dentry, &dirFd.Offset, n)
	return ents, err
}

// Fstat assembles a Stat for fd, using the filesystem's custom FStat if
// provided, or the default (dev, ino, mode, size) tuple otherwise
// (spec.md §4.6).
func (v *VFS) Fstat(fd *FileDescriptor) (Stat, error) {
	v.metrics.opsTotal.WithLabelValues("fstat").Inc()

	fd.Lock()
	defer fd.Unlock()

	if s, ok := fd.Ops.(FStater); ok {
		return s.FStat(fd.Dentry)
	}

	fd.Dentry.lock.Lock()
	defer fd.Dentry.lock.Unlock()
	st := Stat{
		Dev: fd.Dentry.DevID,
		Ino: fd.Dentry.Ino,
	}
	if fd.Dentry.Inode != nil {
		st.Mode = fd.Dentry.Inode.Mode
		st.Size = fd.Dentry.Inode.Size
	}
	return st, nil
}

// FstatToUser is Fstat followed by a copy of the resulting struct into
// a user-space buffer via the VM layer's copy primitive, matching the
// original's "assemble kstat, then vmm_copy_to_user(stat, &kstat, ...)"
// two-step (spec.md §4.6). userBuf must be at least statEncodedSize
// bytes.
func (v *VFS) FstatToUser(fd *FileDescriptor, userBuf []byte) error {
	st, err := v.Fstat(fd)
	if err != nil {
		return err
	}
	if len(userBuf) < statEncodedSize {
		return ErrOverflow
	}
	v.vmm.CopyToUser(userBuf, encodeStat(st))
	return nil
}
