// Copyright 2025 Google LLC
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

package simvm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvfs/vfscore/internal/simvm"
)

func TestNewRandomZoneRoundsUpToPageSize(t *testing.T) {
	vm := simvm.New()
	zone, err := vm.NewRandomZone(nil, 100)
	require.NoError(t, err)
	assert.Equal(t, 4096, zone.Len)
}

func TestWritePhysicalPageWritesIntoZone(t *testing.T) {
	vm := simvm.New()
	zone, err := vm.NewRandomZone(nil, 4096)
	require.NoError(t, err)

	require.NoError(t, vm.WritePhysicalPage(zone.Start, []byte("hello")))
}

func TestFreeZoneThenWritePhysicalPageIsNoop(t *testing.T) {
	vm := simvm.New()
	zone, err := vm.NewRandomZone(nil, 4096)
	require.NoError(t, err)

	vm.FreeZone(nil, zone)
	assert.NoError(t, vm.WritePhysicalPage(zone.Start, []byte("x")))
}

func TestPageStartRoundsDownToPageBoundary(t *testing.T) {
	vm := simvm.New()
	assert.Equal(t, uintptr(0x1000), vm.PageStart(0x1abc))
}
