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

import "github.com/prometheus/client_golang/prometheus"

// metricSet is the public operation surface's Prometheus instrumentation
// (SPEC_FULL.md §3: per-operation counters), mirroring the pack's
// internal/monitor Prometheus exporter usage. Registered lazily against
// the default registry the first time a VFS is constructed so that
// tests creating many VFS instances don't panic on duplicate
// registration.
type metricSet struct {
	opsTotal *prometheus.CounterVec
}

var defaultMetricSet *metricSet

func newMetricSet() *metricSet {
	if defaultMetricSet != nil {
		return defaultMetricSet
	}

	ms := &metricSet{
		opsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vfscore",
				Name:      "operations_total",
				Help:      "Count of public VFS operations, by name.",
			},
			[]string{"op"},
		),
	}

	if err := prometheus.Register(ms.opsTotal); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			ms.opsTotal = are.ExistingCollector.(*prometheus.CounterVec)
		}
	}

	defaultMetricSet = ms
	return ms
}
