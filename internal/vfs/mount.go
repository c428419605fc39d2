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

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kvfs/vfscore/internal/kernel"
	"github.com/kvfs/vfscore/internal/klog"
)

// Mount binds dev+fsIdx at mountpoint, overlaying the new filesystem's
// root dentry (spec.md C6 / §4.7). mountpoint must not already be a
// mountpoint and must be a directory.
//
// Ownership: both sides of the pair receive one extra pinning
// reference (spec.md invariant 3) that is only released by Umount.
func (v *VFS) Mount(ctx context.Context, mountpoint *Dentry, dev kernel.Device, fsIdx int) error {
	_, span := tracer.Start(ctx, "vfs.Mount")
	defer span.End()

	// Concurrent mounts are otherwise indistinguishable in a trace or a
	// log line: the device/driver model supports many simultaneous
	// mounts, unlike a single-bucket filesystem, so each gets its own
	// session identifier.
	sessionID := uuid.New()
	span.SetAttributes(attribute.String("vfs.mount_session", sessionID.String()))
	klog.Debugf("vfs: mount session %s: device %d onto dentry (%d,%d)", sessionID, dev.ID, mountpoint.DevID, mountpoint.Ino)

	if mountpoint.TestFlag(DentryMountpoint) {
		return ErrBusy
	}
	if !mountpoint.IsDir() {
		return ErrNotDir
	}

	if _, err := v.AddDeviceWithFS(dev, fsIdx); err != nil {
		return err
	}

	ops, err := v.registry.Ops(fsIdx)
	if err != nil {
		return err
	}

	mounted, err := v.cache.Get(dev.ID, RootInode, ops)
	if err != nil {
		return err
	}

	pinnedMountpoint := v.cache.Duplicate(mountpoint)
	pinnedMountpoint.SetFlag(DentryMountpoint)
	mounted.SetFlag(DentryMounted)

	pinnedMountpoint.lock.Lock()
	pinnedMountpoint.MountedDentry = mounted
	pinnedMountpoint.lock.Unlock()

	mounted.lock.Lock()
	mounted.Mountpoint = pinnedMountpoint
	mounted.lock.Unlock()

	return nil
}

// Umount reverses a Mount, verifying both sides still carry their
// flags, clearing them, dropping both pinning references, and
// iteratively climbing a chain of stacked mounts (SPEC_FULL.md §5.2
// resolves the original's fragile post-unlock recursion into
// iteration).
func (v *VFS) Umount(ctx context.Context, mountedDentry *Dentry) error {
	_, span := tracer.Start(ctx, "vfs.Umount")
	defer span.End()

	cur := mountedDentry
	for {
		if !cur.TestFlag(DentryMounted) {
			return ErrPerm
		}

		cur.lock.Lock()
		mountpoint := cur.Mountpoint
		cur.lock.Unlock()
		if mountpoint == nil || !mountpoint.TestFlag(DentryMountpoint) {
			return ErrPerm
		}

		cur.ClearFlag(DentryMounted)
		mountpoint.ClearFlag(DentryMountpoint)

		cur.lock.Lock()
		cur.Mountpoint = nil
		cur.lock.Unlock()

		mountpoint.lock.Lock()
		mountpoint.MountedDentry = nil
		mountpoint.lock.Unlock()

		_ = v.cache.Put(cur)
		_ = v.cache.Put(mountpoint)

		if !mountpoint.TestFlag(DentryMounted) {
			return nil
		}
		cur = mountpoint
	}
}
