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
	"os"
	"path"
	"strings"

	"github.com/kvfs/vfscore/internal/vfs"
)

// repl reads one command per line from in until EOF, dispatching each
// to the corresponding VFS operation. Errors are reported to stdout and
// never stop the loop, mirroring a real shell's behavior on a failed
// command.
func repl(ctx context.Context, v *vfs.VFS, in *bufio.Scanner) error {
	for {
		fmt.Print("vfscore> ")
		if !in.Scan() {
			return in.Err()
		}
		fields := strings.Fields(in.Text())
		if len(fields) == 0 {
			continue
		}

		cmd, args := fields[0], fields[1:]
		if cmd == "quit" || cmd == "exit" {
			return nil
		}

		if err := dispatch(ctx, v, cmd, args); err != nil {
			fmt.Fprintf(os.Stdout, "error: %v\n", err)
		}
	}
}

func dispatch(ctx context.Context, v *vfs.VFS, cmd string, args []string) error {
	switch cmd {
	case "ls":
		return cmdLs(ctx, v, arg(args, 0, "/"))
	case "mkdir":
		return cmdMkdir(ctx, v, arg(args, 0, ""))
	case "cat":
		return cmdCat(ctx, v, arg(args, 0, ""))
	case "write":
		return cmdWrite(ctx, v, arg(args, 0, ""), strings.Join(args[minInt(1, len(args)):], " "))
	case "stat":
		return cmdStat(ctx, v, arg(args, 0, ""))
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func arg(args []string, i int, def string) string {
	if i < len(args) {
		return args[i]
	}
	return def
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func cmdLs(ctx context.Context, v *vfs.VFS, p string) error {
	dir, err := v.Resolve(ctx, nil, p)
	if err != nil {
		return err
	}
	defer v.Put(dir)

	fd, err := v.Open(dir, vfs.ODirectory, nil)
	if err != nil {
		return err
	}
	defer v.Close(fd)

	var offset int64
	for {
		ents, err := v.Getdents(fd, 32)
		if err != nil {
			return err
		}
		if len(ents) == 0 {
			break
		}
		for _, e := range ents {
			fmt.Println(e.Name)
		}
		offset += int64(len(ents))
	}
	return nil
}

func cmdMkdir(ctx context.Context, v *vfs.VFS, p string) error {
	parentPath, name := path.Split(strings.TrimSuffix(p, "/"))
	parent, err := v.Resolve(ctx, nil, parentPath)
	if err != nil {
		return err
	}
	defer v.Put(parent)
	return v.Mkdir(parent, name, vfs.ModeUserR|vfs.ModeUserW|vfs.ModeUserX, 0, 0)
}

func cmdCat(ctx context.Context, v *vfs.VFS, p string) error {
	file, err := v.Resolve(ctx, nil, p)
	if err != nil {
		return err
	}
	defer v.Put(file)

	fd, err := v.Open(file, vfs.ORdonly, nil)
	if err != nil {
		return err
	}
	defer v.Close(fd)

	buf := make([]byte, 4096)
	for {
		n, err := v.Read(fd, buf)
		if n > 0 {
			os.Stdout.Write(buf[:n])
		}
		if err != nil || n == 0 {
			break
		}
	}
	fmt.Println()
	return nil
}

func cmdWrite(ctx context.Context, v *vfs.VFS, p string, text string) error {
	file, err := v.Resolve(ctx, nil, p)
	if err != nil {
		parentPath, name := path.Split(p)
		parent, perr := v.Resolve(ctx, nil, parentPath)
		if perr != nil {
			return perr
		}
		defer v.Put(parent)
		file, err = v.Create(parent, name, vfs.ModeUserR|vfs.ModeUserW, 0, 0)
		if err != nil {
			return err
		}
	}
	defer v.Put(file)

	fd, err := v.Open(file, vfs.OWronly, nil)
	if err != nil {
		return err
	}
	defer v.Close(fd)

	_, err = v.Write(fd, []byte(text))
	return err
}

func cmdStat(ctx context.Context, v *vfs.VFS, p string) error {
	file, err := v.Resolve(ctx, nil, p)
	if err != nil {
		return err
	}
	defer v.Put(file)

	fd, err := v.Open(file, vfs.ORdonly|vfs.ODirectory, nil)
	if err != nil {
		return err
	}
	defer v.Close(fd)

	st, err := v.Fstat(fd)
	if err != nil {
		return err
	}
	fmt.Printf("dev=%d ino=%d mode=%o size=%d\n", st.Dev, st.Ino, st.Mode, st.Size)
	return nil
}
