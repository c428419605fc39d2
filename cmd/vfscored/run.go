// Copyright 2024 Google Inc. All Rights Reserved.
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

package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	stdouttrace "go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kvfs/vfscore/cfg"
	"github.com/kvfs/vfscore/internal/clock"
	"github.com/kvfs/vfscore/internal/kernel"
	"github.com/kvfs/vfscore/internal/klog"
	"github.com/kvfs/vfscore/internal/simvm"
	"github.com/kvfs/vfscore/internal/testfs"
	"github.com/kvfs/vfscore/internal/vfs"
)

const rootDeviceID = 0

// run boots the bus, the in-memory filesystem, and the VFS itself, then
// drives the interactive shell until EOF.
func run(ctx context.Context, c cfg.Config) error {
	klog.SetDebug(c.Debug)

	if c.Tracing.Enabled {
		shutdown, err := installTracing()
		if err != nil {
			return fmt.Errorf("installing tracing: %w", err)
		}
		defer shutdown()
	}

	if c.Metrics.Enabled {
		go serveMetrics(c.Metrics.Addr)
	}

	bus := kernel.NewBus()
	v := vfs.New(simvm.New())
	bus.Subscribe(v)

	if c.Writeback.Enabled {
		interval := time.Duration(c.Writeback.IntervalSeconds) * time.Second
		stop := v.Cache().StartWriteback(clock.RealClock{}, interval)
		defer stop()
	}

	mem := testfs.New(clock.RealClock{}, v.Cache())

	if err := bus.PublishDriver(ctx, kernel.Driver{
		Name: "testfs",
		Type: kernel.DriverFileSystem,
		Ops:  mem,
	}); err != nil {
		return fmt.Errorf("publishing testfs driver: %w", err)
	}

	devices := c.Devices
	if len(devices) == 0 {
		devices = []cfg.DeviceConfig{{ID: rootDeviceID, IsVirtual: true, Root: true, FSName: "testfs"}}
	}
	for _, dc := range devices {
		klog.Debugf("vfscored: publishing device %d (fs=%s, virtual=%v)", dc.ID, dc.FSName, dc.IsVirtual)
		if err := bus.PublishDevice(ctx, kernel.Device{
			ID:        dc.ID,
			Type:      kernel.DeviceStorage,
			IsVirtual: dc.IsVirtual,
		}); err != nil {
			return fmt.Errorf("publishing device %d: %w", dc.ID, err)
		}
	}

	fmt.Fprintln(os.Stdout, "vfscored ready. Commands: ls, mkdir, cat, write, stat, quit")
	return repl(ctx, v, bufio.NewScanner(os.Stdin))
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		klog.Errorf("metrics server: %v", err)
	}
}

// installTracing points the global tracer provider at a stdout exporter
// so Resolve/Mount/Umount spans (internal/vfs/trace.go) are visible
// without standing up a real collector.
func installTracing() (func(), error) {
	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	return func() { _ = tp.Shutdown(context.Background()) }, nil
}
