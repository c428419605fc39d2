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

package kernel_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvfs/vfscore/internal/kernel"
)

// recordingSubscriber records every notification it receives and can be
// told to fail one of them, for exercising Bus's fan-out and
// first-error-wins semantics.
type recordingSubscriber struct {
	mu       sync.Mutex
	devices  []kernel.Device
	drivers  []kernel.Driver
	failWith error
}

func (r *recordingSubscriber) OnNewDevice(dev kernel.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices = append(r.devices, dev)
	return r.failWith
}

func (r *recordingSubscriber) OnNewDriver(drv kernel.Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers = append(r.drivers, drv)
	return r.failWith
}

func TestBusFansDeviceOutToEverySubscriber(t *testing.T) {
	bus := kernel.NewBus()
	a, b := &recordingSubscriber{}, &recordingSubscriber{}
	bus.Subscribe(a)
	bus.Subscribe(b)

	dev := kernel.Device{ID: 1, Type: kernel.DeviceStorage}
	require.NoError(t, bus.PublishDevice(context.Background(), dev))

	assert.Equal(t, []kernel.Device{dev}, a.devices)
	assert.Equal(t, []kernel.Device{dev}, b.devices)
}

func TestBusFansDriverOutToEverySubscriber(t *testing.T) {
	bus := kernel.NewBus()
	a, b := &recordingSubscriber{}, &recordingSubscriber{}
	bus.Subscribe(a)
	bus.Subscribe(b)

	drv := kernel.Driver{Name: "x", Type: kernel.DriverFileSystem}
	require.NoError(t, bus.PublishDriver(context.Background(), drv))

	assert.Equal(t, []kernel.Driver{drv}, a.drivers)
	assert.Equal(t, []kernel.Driver{drv}, b.drivers)
}

func TestBusPublishDeviceReturnsSubscriberError(t *testing.T) {
	bus := kernel.NewBus()
	wantErr := errors.New("boom")
	bad := &recordingSubscriber{failWith: wantErr}
	bus.Subscribe(bad)
	bus.Subscribe(&recordingSubscriber{})

	err := bus.PublishDevice(context.Background(), kernel.Device{ID: 2})
	assert.Equal(t, wantErr, err)
}

func TestBusSubscribeIsNotRetroactive(t *testing.T) {
	bus := kernel.NewBus()
	require.NoError(t, bus.PublishDevice(context.Background(), kernel.Device{ID: 3}))

	late := &recordingSubscriber{}
	bus.Subscribe(late)
	assert.Empty(t, late.devices)
}
