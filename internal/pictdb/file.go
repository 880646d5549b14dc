/* SPDX-License-Identifier: Apache-2.0
 *
 * Copyright 2023 Damian Peckett <damian@peckett>.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package pictdb

import (
	"io"
	"os"
)

// Mode selects how a database file is opened.
type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
)

// fileHandle is the positioned-I/O wrapper around the underlying OS file,
// playing the same role the teacher's bare *os.File plus offsetReader/
// offsetWriter pair play in qcow2.go/util.go, generalized to the handful
// of whole-file operations spec.md S4.2 asks for (append, rename, remove
// in addition to positioned read/write).
type fileHandle struct {
	f    *os.File
	path string
}

func openFile(path string, mode Mode) (*fileHandle, error) {
	var f *os.File
	var err error

	if mode == ReadOnly {
		f, err = os.OpenFile(path, os.O_RDONLY, 0o444)
	} else {
		f, err = os.OpenFile(path, os.O_RDWR, 0o644)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return nil, newErr("open", KindFileNotFound, err)
		}
		return nil, newErr("open", KindIO, err)
	}

	return &fileHandle{f: f, path: path}, nil
}

func createFile(path string) (*fileHandle, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, newErr("create", KindIO, err)
	}
	return &fileHandle{f: f, path: path}, nil
}

func (fh *fileHandle) close() error {
	if fh == nil || fh.f == nil {
		return nil
	}
	err := fh.f.Close()
	fh.f = nil
	if err != nil {
		return newErr("close", KindIO, err)
	}
	return nil
}

func (fh *fileHandle) readAt(offset int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(io.NewSectionReader(fh.f, offset, int64(n)), buf); err != nil {
		return nil, newErr("read_at", KindIO, err)
	}
	return buf, nil
}

func (fh *fileHandle) writeAt(offset int64, b []byte) error {
	if _, err := fh.f.WriteAt(b, offset); err != nil {
		return newErr("write_at", KindIO, err)
	}
	return nil
}

// append seeks to the current end of file, writes b, and returns the
// pre-write offset -- matching spec.md S4.2's append contract exactly.
func (fh *fileHandle) append(b []byte) (int64, error) {
	offset, err := fh.f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, newErr("append", KindIO, err)
	}
	if _, err := fh.f.Write(b); err != nil {
		return 0, newErr("append", KindIO, err)
	}
	return offset, nil
}

func (fh *fileHandle) size() (int64, error) {
	info, err := fh.f.Stat()
	if err != nil {
		return 0, newErr("size", KindIO, err)
	}
	return info.Size(), nil
}

func removeFile(path string) error {
	if err := os.Remove(path); err != nil {
		return newErr("remove", KindIO, err)
	}
	return nil
}

func renameFile(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return newErr("rename", KindIO, err)
	}
	return nil
}
