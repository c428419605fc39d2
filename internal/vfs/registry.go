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
	"fmt"
	"sync"

	"github.com/kvfs/vfscore/internal/kernel"
)

// maxRegisteredFS caps the registry's growable sequence (spec.md §4.2:
// "capacity 8").
const maxRegisteredFS = 8

type fsDescriptor struct {
	name string
	ops  FSOps
}

// Registry is the growable sequence of filesystem descriptors spec.md
// calls C2. Entries are appended under fsLock and never removed while
// in use, so reads after publication are stable without further
// synchronization (spec.md §5).
type Registry struct {
	fsLock sync.Mutex
	fses   []fsDescriptor
}

// NewRegistry returns an empty filesystem registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// AddFS translates drv's capability set into a concrete FSOps vtable
// and appends it, mirroring vfs_add_fs's translation of a raw
// function-pointer table into fs_ops_t. Returns the new entry's index,
// used later by mount() to bind a device explicitly.
func (r *Registry) AddFS(drv kernel.Driver) (int, error) {
	if drv.Type != kernel.DriverFileSystem {
		return -1, fmt.Errorf("vfs: driver %q is not a filesystem driver", drv.Name)
	}

	ops, ok := drv.Ops.(FSOps)
	if !ok {
		return -1, fmt.Errorf("vfs: driver %q does not implement the required FSOps capability set", drv.Name)
	}

	r.fsLock.Lock()
	defer r.fsLock.Unlock()

	if len(r.fses) >= maxRegisteredFS {
		return -1, ErrNoSpace
	}

	r.fses = append(r.fses, fsDescriptor{name: drv.Name, ops: ops})
	return len(r.fses) - 1, nil
}

// Recognize scans the registry in insertion order and returns the index
// and ops of the first filesystem whose Recognize accepts dev. Returns
// ErrNotExist if none claims it (spec.md §4.2).
func (r *Registry) Recognize(dev kernel.Device) (int, FSOps, error) {
	r.fsLock.Lock()
	fses := make([]fsDescriptor, len(r.fses))
	copy(fses, r.fses)
	r.fsLock.Unlock()

	for i, fd := range fses {
		if err := fd.ops.Recognize(dev); err == nil {
			return i, fd.ops, nil
		}
	}
	return -1, nil, ErrNotExist
}

// Ops returns the FSOps registered at idx.
func (r *Registry) Ops(idx int) (FSOps, error) {
	r.fsLock.Lock()
	defer r.fsLock.Unlock()
	if idx < 0 || idx >= len(r.fses) {
		return nil, fmt.Errorf("vfs: no filesystem registered at index %d", idx)
	}
	return r.fses[idx].ops, nil
}
