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

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Subscriber receives the two notifications the device manager emits that
// the VFS cares about (spec.md §6, C10). Implementations must not block
// indefinitely; the bus calls every subscriber on its own goroutine and
// Publish waits for all of them to return.
type Subscriber interface {
	OnNewDevice(dev Device) error
	OnNewDriver(drv Driver) error
}

// Bus is the upstream device manager's notification channel, standing in
// for the real kernel's devman_register_driver/recieve_notification
// machinery. The VFS is the only subscriber in practice, but the bus
// supports many, matching the manager's broadcast-to-all-interested-
// drivers model (spec.md §6's "mask-subscribed to storage devices and
// filesystem drivers").
type Bus struct {
	mu   sync.Mutex
	subs []Subscriber
}

// NewBus returns an empty notification bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers s to receive future NewDevice/NewDriver events. Not
// retroactive: events published before Subscribe was called are not
// replayed.
func (b *Bus) Subscribe(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, s)
}

// snapshot returns the current subscriber list under lock, so dispatch
// itself can run lock-free.
func (b *Bus) snapshot() []Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Subscriber, len(b.subs))
	copy(out, b.subs)
	return out
}

// PublishDevice fans NEW_DEVICE out to every subscriber concurrently and
// returns the first error encountered, if any.
func (b *Bus) PublishDevice(ctx context.Context, dev Device) error {
	subs := b.snapshot()
	g, _ := errgroup.WithContext(ctx)
	for _, s := range subs {
		s := s
		g.Go(func() error { return s.OnNewDevice(dev) })
	}
	return g.Wait()
}

// PublishDriver fans NEW_DRIVER out to every subscriber concurrently and
// returns the first error encountered, if any.
func (b *Bus) PublishDriver(ctx context.Context, drv Driver) error {
	subs := b.snapshot()
	g, _ := errgroup.WithContext(ctx)
	for _, s := range subs {
		s := s
		g.Go(func() error { return s.OnNewDriver(drv) })
	}
	return g.Wait()
}
