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

// Command vfscored is a demo harness that boots a vfscore VFS around an
// in-memory filesystem driver and serves a line-oriented shell over the
// public operation surface, the same role the teacher's gcsfuse binary
// plays for a real GCS-backed mount, scaled down to a device the
// harness invents itself instead of mounting a real bucket.
package main

func main() {
	Execute()
}
