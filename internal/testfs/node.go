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

package testfs

import "github.com/kvfs/vfscore/internal/vfs"

// node is one file or directory's backing store, indexed by inode
// number in FS.nodes. Unlike a real block-device filesystem a node
// holds its bytes directly; this is adequate for exercising the VFS
// core's algorithms without a storage layer, which spec.md's Non-goals
// explicitly exclude.
type node struct {
	mode       vfs.Mode
	uid, gid   uint32
	linksCount uint32
	data       []byte

	// children is nil for a non-directory node.
	children map[string]int
}

func (n *node) isDir() bool {
	return n.mode.IsDir()
}

func newDirNode(mode vfs.Mode, uid, gid uint32) *node {
	return &node{
		mode:       mode | vfs.ModeDir,
		uid:        uid,
		gid:        gid,
		linksCount: 1,
		children:   make(map[string]int),
	}
}

func newFileNode(mode vfs.Mode, uid, gid uint32) *node {
	return &node{
		mode:       mode,
		uid:        uid,
		gid:        gid,
		linksCount: 1,
	}
}
