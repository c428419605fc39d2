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

// Package kernel models the device manager's side of the VFS contract:
// devices, filesystem drivers and the notification bus that announces
// them. The device table (C1) and the filesystem registry (C2) live in
// internal/vfs, which consumes this package rather than talking to a
// real device manager.
package kernel

// DeviceType distinguishes storage devices, which the VFS cares about,
// from every other device class the manager tracks.
type DeviceType int

const (
	DeviceOther DeviceType = iota
	DeviceStorage
)

// Device is the opaque handle the device manager hands to the VFS on a
// NEW_DEVICE notification. The VFS never looks inside it beyond ID, Type
// and IsVirtual.
type Device struct {
	ID        int
	Type      DeviceType
	IsVirtual bool
}

// MaxDevices bounds the fixed-capacity device table (spec.md C1). The
// table is indexed directly by device id, so only ids in
// [0, MaxDevices) can be bound. Ejecting a device only marks its slot
// unbound (see DESIGN.md's Open Question decision); there is no free
// list, and a later Bind with the same id overwrites the slot.
const MaxDevices = 64
