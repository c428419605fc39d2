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

import "go.opentelemetry.io/otel"

// tracer instruments the two operations most likely to span device I/O
// and therefore most worth seeing in a trace: path resolution (which
// may cross several filesystems' lookup calls) and mount/umount (which
// mutates shared mount topology). Grounded on the pack's OTel exporter
// usage (internal/monitor/otelexporters_test.go).
var tracer = otel.Tracer("github.com/kvfs/vfscore/internal/vfs")
