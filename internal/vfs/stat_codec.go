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

import "encoding/binary"

// statEncodedSize is the wire size of an encoded Stat: four int64
// fields (dev, ino, mode, size).
const statEncodedSize = 4 * 8

// encodeStat serializes st the way FstatToUser hands it to the VM
// layer's user-copy primitive.
func encodeStat(st Stat) []byte {
	buf := make([]byte, statEncodedSize)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(st.Dev))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(st.Ino))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(st.Mode))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(st.Size))
	return buf
}
