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

// Package pictdb implements a single-file image database engine: a fixed
// -size header and metadata table followed by an append-only blob region,
// storing JPEG images keyed by caller-supplied identifier with
// content-addressed deduplication and lazily materialized resize
// variants.
//
// The package is single-threaded and non-reentrant per open database
// (spec.md S5): callers that need concurrent access must serialize calls
// externally, e.g. with a mutex around the *DB in an HTTP handler.
package pictdb

import (
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// Config describes the parameters fixed at database creation time.
type Config struct {
	MaxFiles uint32
	ThumbX   uint16
	ThumbY   uint16
	SmallX   uint16
	SmallY   uint16

	// Registerer optionally registers this database's metrics. If nil,
	// metrics are still tracked in-process but never exported.
	Registerer prometheus.Registerer
}

// DefaultConfig returns the defaults the original pictDBM CLI used when
// flags were omitted (spec.md's supplemented feature 1).
func DefaultConfig() Config {
	return Config{
		MaxFiles: DefaultMaxFiles,
		ThumbX:   DefaultThumbX,
		ThumbY:   DefaultThumbY,
		SmallX:   DefaultSmallX,
		SmallY:   DefaultSmallY,
	}
}

func (cfg Config) validate() error {
	if cfg.MaxFiles < 1 || cfg.MaxFiles > MaxMaxFiles {
		return newErr("create", KindInvalidArgument, nil)
	}
	if cfg.ThumbX > maxThumb || cfg.ThumbY > maxThumb {
		return newErr("create", KindInvalidArgument, nil)
	}
	if cfg.SmallX > maxSmall || cfg.SmallY > maxSmall {
		return newErr("create", KindInvalidArgument, nil)
	}
	if cfg.SmallX < cfg.ThumbX || cfg.SmallY < cfg.ThumbY {
		return newErr("create", KindInvalidArgument, nil)
	}
	return nil
}

// DB is an open picture database: the positioned file handle plus the
// in-memory mirror of its header and metadata table (spec.md S3).
type DB struct {
	file    *fileHandle
	table   *table
	images  ImageProvider
	metrics *metrics
	path    string
}

func validateFilename(path string) error {
	name := filepath.Base(path)
	// NAME_MAX on Linux is 255; restored from the original's
	// TEST_FILENAME macro (spec.md's supplemented feature 4).
	if len(name) > 255 {
		return newErr("validate_filename", KindInvalidFilename, nil)
	}
	return nil
}

// Create builds a new database at path, truncating any prior file
// there, with the given config and image provider (spec.md S4.7).
func Create(path string, cfg Config, images ImageProvider) (*DB, error) {
	if err := validateFilename(path); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	h := newHeader(cfg)

	rows := make([]row, cfg.MaxFiles)
	for i := range rows {
		rows[i].IsValid = Empty
	}

	fh, err := createFile(path)
	if err != nil {
		return nil, err
	}

	db := &DB{
		file:    fh,
		table:   newTable(h, rows),
		images:  images,
		metrics: newMetrics(cfg.Registerer, cString(h.DBName[:])),
		path:    path,
	}

	if err := db.writeHeader(); err != nil {
		_ = db.Close()
		return nil, err
	}
	for i := range rows {
		if err := db.writeRow(i); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return db, nil
}

// Open opens an existing database file, reading its header and metadata
// table into memory (spec.md S4.7).
func Open(path string, mode Mode, images ImageProvider) (*DB, error) {
	if err := validateFilename(path); err != nil {
		return nil, err
	}

	fh, err := openFile(path, mode)
	if err != nil {
		return nil, err
	}

	hdrBytes, err := fh.readAt(0, int(HeaderBytes))
	if err != nil {
		_ = fh.close()
		return nil, err
	}
	h, err := decodeHeader(hdrBytes)
	if err != nil {
		_ = fh.close()
		return nil, newErr("open", KindIO, err)
	}

	if h.NumFiles > MaxMaxFiles {
		_ = fh.close()
		return nil, newErr("open", KindTooManyFiles, nil)
	}
	if h.MaxFiles < 1 || h.MaxFiles > MaxMaxFiles {
		_ = fh.close()
		return nil, newErr("open", KindTooManyFiles, nil)
	}

	rows := make([]row, h.MaxFiles)
	for i := range rows {
		rowBytes, err := fh.readAt(HeaderBytes+int64(i)*RowBytes, int(RowBytes))
		if err != nil {
			_ = fh.close()
			return nil, err
		}
		r, err := decodeRow(rowBytes)
		if err != nil {
			_ = fh.close()
			return nil, newErr("open", KindIO, err)
		}
		rows[i] = *r
	}

	return &DB{
		file:    fh,
		table:   newTable(*h, rows),
		images:  images,
		metrics: newMetrics(nil, cString(h.DBName[:])),
		path:    path,
	}, nil
}

// Close releases the file handle. Idempotent (spec.md S4.7).
func (db *DB) Close() error {
	if db == nil || db.file == nil {
		return nil
	}
	err := db.file.close()
	db.file = nil
	return err
}

func (db *DB) writeHeader() error {
	b, err := encodeHeader(&db.table.hdr)
	if err != nil {
		return newErr("write_header", KindIO, err)
	}
	return db.file.writeAt(0, b)
}

func (db *DB) writeRow(index int) error {
	b, err := encodeRow(&db.table.rows[index])
	if err != nil {
		return newErr("write_row", KindIO, err)
	}
	return db.file.writeAt(HeaderBytes+int64(index)*RowBytes, b)
}

// Insert adds blob to the database under id (spec.md S4.7). If the bytes
// already exist under a different id (same content digest), the new row
// aliases the existing blob offset rather than writing a second copy.
func (db *DB) Insert(id string, blob []byte) error {
	if len(id) == 0 || len(id) > maxPicID {
		return newErr("insert", KindInvalidPictID, nil)
	}
	if db.table.hdr.NumFiles >= db.table.hdr.MaxFiles {
		return newErr("insert", KindFullDatabase, nil)
	}

	index := db.table.findEmptySlot()
	if index < 0 {
		return newErr("insert", KindFullDatabase, nil)
	}

	r := &db.table.rows[index]
	*r = row{}
	setCString(r.PictID[:], id)
	r.SHA = digest(blob)
	r.Size[Orig] = uint32(len(blob))

	if err := dedupInsert(db.table, index); err != nil {
		return err
	}

	if r.Offset[Orig] == 0 {
		width, height, err := db.images.DecodeDimensions(blob)
		if err != nil {
			return newErr("insert", KindImageDecode, err)
		}

		offset, err := db.file.append(blob)
		if err != nil {
			return err
		}

		r.Size[Thumb] = 0
		r.Size[Small] = 0
		r.Offset[Orig] = uint64(offset)
		r.Offset[Thumb] = 0
		r.Offset[Small] = 0
		r.ResOrig[0] = width
		r.ResOrig[1] = height
	} else {
		db.metrics.dedupHits.Inc()
	}

	r.IsValid = NonEmpty
	db.table.hdr.DBVersion++
	db.table.hdr.NumFiles++
	db.table.invalidateID(id)

	if err := db.writeHeader(); err != nil {
		return err
	}
	if err := db.writeRow(index); err != nil {
		return err
	}

	db.metrics.inserts.Inc()

	return nil
}

// Read resolves id, lazily materializing variant v if needed, and
// returns its blob bytes (spec.md S4.7).
func (db *DB) Read(id string, v Variant) ([]byte, error) {
	index := db.table.findByID(id)
	if index < 0 {
		return nil, newErr("read", KindFileNotFound, nil)
	}

	if v != Thumb && v != Small && v != Orig {
		return nil, newErr("read", KindInvalidResolution, nil)
	}

	if err := db.ensureVariant(index, v); err != nil {
		return nil, err
	}

	r := &db.table.rows[index]
	blob, err := db.file.readAt(int64(r.Offset[v]), int(r.Size[v]))
	if err != nil {
		return nil, err
	}

	db.metrics.reads.Inc()

	return blob, nil
}

// Delete tombstones id: the row is marked EMPTY but blob bytes remain in
// place until a garbage_collect pass (spec.md S4.7).
func (db *DB) Delete(id string) error {
	index := db.table.findByID(id)
	if index < 0 {
		return newErr("delete", KindFileNotFound, nil)
	}

	db.table.rows[index].IsValid = Empty
	if err := db.writeRow(index); err != nil {
		return err
	}

	db.table.hdr.DBVersion++
	db.table.hdr.NumFiles--
	db.table.invalidateID(id)

	if err := db.writeHeader(); err != nil {
		return err
	}

	db.metrics.deletes.Inc()

	return nil
}

// NumFiles, Version and MaxFiles expose header fields read-only, for
// callers (CLI/HTTP/tests) that want to report database state without
// reaching into package internals.
func (db *DB) NumFiles() uint32 { return db.table.hdr.NumFiles }
func (db *DB) Version() uint32  { return db.table.hdr.DBVersion }
func (db *DB) MaxFiles() uint32 { return db.table.hdr.MaxFiles }
func (db *DB) Name() string     { return cString(db.table.hdr.DBName[:]) }
