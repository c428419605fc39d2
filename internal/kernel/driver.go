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

package kernel

// DriverType distinguishes filesystem drivers, the only kind the VFS
// subscribes to, from every other driver class the manager tracks.
type DriverType int

const (
	DriverOther DriverType = iota
	DriverFileSystem
)

// Driver is the descriptor the device manager hands to the VFS on a
// NEW_DRIVER notification. Ops carries the driver's capability set; the
// VFS is responsible for asserting it against its own FSOps contract
// (internal/vfs.FSOps) when it translates this into a registry entry,
// mirroring vfs_add_fs's translation of a raw function-pointer table
// into a concrete fs_ops_t.
type Driver struct {
	Name string
	Type DriverType
	Ops  interface{}
}
