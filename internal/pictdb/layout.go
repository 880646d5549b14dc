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
	"bytes"
	"encoding/binary"
	"fmt"
	"unsafe"
)

// CatName is the fixed database identifier stamped into every header
// created by Create.
const CatName = "EPFL PictDB binary"

const (
	maxDBName = 31
	maxPicID  = 127

	// DefaultMaxFiles is the row capacity DefaultConfig and the CLI's
	// create flags use. Create does not fill in unset Config fields: a
	// zero MaxFiles is rejected with InvalidArgument.
	DefaultMaxFiles = 10
	// MaxMaxFiles is the hard upper bound on max_files.
	MaxMaxFiles = 100000

	// DefaultThumbX/Y and DefaultSmallX/Y are the bounding boxes
	// DefaultConfig and the CLI's create flags use. Create keeps zero
	// resolutions in a Config as zero; it does not substitute these.
	DefaultThumbX = 64
	DefaultThumbY = 64
	DefaultSmallX = 256
	DefaultSmallY = 256

	maxThumb = 128
	maxSmall = 512
)

// Validity marks whether a row is occupied.
type Validity uint16

const (
	Empty    Validity = 0
	NonEmpty Validity = 1
)

// Variant identifies one of the three stored resolutions of an image.
// Tagged rather than a bare int everywhere except the persistence
// boundary, per the dispatch note in spec.md's design notes.
type Variant int

const (
	Thumb Variant = iota
	Small
	Orig
	numVariants = 3
)

func (v Variant) String() string {
	switch v {
	case Thumb:
		return "thumb"
	case Small:
		return "small"
	case Orig:
		return "orig"
	default:
		return "unknown"
	}
}

// header is the fixed-size, on-disk database header. Field widths are
// declared explicitly and encoded with encoding/binary over the plain
// struct, as the teacher does (see readHeader/writeHeader in the
// teacher's header.go): fields are written little-endian, packed with no
// padding between them, whatever the platform's byte order. The slot
// sizes HeaderBytes and RowBytes come from unsafe.Sizeof and so include
// the platform's alignment padding (an encoded row is zero-filled at its
// end up to RowBytes); the row stride, and with it the on-disk layout,
// therefore depends on the architecture's alignment rules.
type header struct {
	DBName     [maxDBName + 1]byte
	DBVersion  uint32
	NumFiles   uint32
	MaxFiles   uint32
	ResResized [4]uint16 // {thumbX, thumbY, smallX, smallY}
	Unused32   uint32
	Unused64   uint64
}

// row is the fixed-size, on-disk metadata row. One instance is allocated
// per max_files slot, written and read positionally.
type row struct {
	PictID   [maxPicID + 1]byte
	SHA      [32]byte
	ResOrig  [2]uint32 // {x, y}
	Size     [numVariants]uint32
	Offset   [numVariants]uint64
	IsValid  Validity
	Unused16 uint16
}

// HeaderBytes and RowBytes are the exact, positionally significant byte
// sizes used to compute row/blob offsets (spec.md S4.1).
var (
	HeaderBytes = int64(unsafe.Sizeof(header{}))
	RowBytes    = int64(unsafe.Sizeof(row{}))
)

func blobRegionStart(maxFiles uint32) int64 {
	return HeaderBytes + int64(maxFiles)*RowBytes
}

func encodeHeader(h *header) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		return nil, fmt.Errorf("failed to encode header: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeHeader(b []byte) (*header, error) {
	var h header
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("failed to decode header: %w", err)
	}
	return &h, nil
}

func encodeRow(r *row) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, r); err != nil {
		return nil, fmt.Errorf("failed to encode row: %w", err)
	}
	// Zero-fill up to the full RowBytes slot so the metadata table spans
	// exactly max_files*RowBytes and blobs start at blobRegionStart.
	buf.Write(make([]byte, RowBytes-int64(buf.Len())))
	return buf.Bytes(), nil
}

func decodeRow(b []byte) (*row, error) {
	var r row
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &r); err != nil {
		return nil, fmt.Errorf("failed to decode row: %w", err)
	}
	return &r, nil
}

func newHeader(cfg Config) header {
	var h header
	copy(h.DBName[:], CatName)
	h.MaxFiles = cfg.MaxFiles
	h.ResResized = [4]uint16{cfg.ThumbX, cfg.ThumbY, cfg.SmallX, cfg.SmallY}
	return h
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

func setCString(dst []byte, s string) {
	n := copy(dst, s)
	if n < len(dst) {
		dst[n] = 0
	} else {
		dst[len(dst)-1] = 0
	}
}
