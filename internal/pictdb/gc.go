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

// GarbageCollect compacts db by rewriting its contents (minus tombstoned
// rows) into tmpPath, then atomically-as-possible replacing db's backing
// file with the result (spec.md S4.7).
//
// Open Question 4 (spec.md S9) is resolved as directed: this uses
// remove(src); rename(tmp, src), not an atomic rename-only replace. A
// crash between those two calls loses the database; that is a known,
// documented limitation carried over unchanged from the original.
//
// db's in-memory state is not refreshed after a successful call -- like
// the original pictDBM CLI, the caller is expected to Close db and Open
// its path again if it intends to keep using the database.
func GarbageCollect(db *DB, tmpPath string) error {
	srcPath := db.path

	tmp, err := Create(tmpPath, Config{
		MaxFiles:   db.table.hdr.MaxFiles,
		ThumbX:     db.table.hdr.ResResized[0],
		ThumbY:     db.table.hdr.ResResized[1],
		SmallX:     db.table.hdr.ResResized[2],
		SmallY:     db.table.hdr.ResResized[3],
		Registerer: nil,
	}, db.images)
	if err != nil {
		return err
	}

	for index := range db.table.rows {
		src := &db.table.rows[index]
		if src.IsValid != NonEmpty {
			continue
		}

		id := cString(src.PictID[:])

		orig, err := db.file.readAt(int64(src.Offset[Orig]), int(src.Size[Orig]))
		if err != nil {
			_ = tmp.Close()
			return err
		}

		if err := tmp.Insert(id, orig); err != nil {
			_ = tmp.Close()
			return err
		}

		newIndex := tmp.table.findByID(id)

		if src.Size[Small] != 0 {
			if err := tmp.ensureVariant(newIndex, Small); err != nil {
				_ = tmp.Close()
				return err
			}
		}
		if src.Size[Thumb] != 0 {
			if err := tmp.ensureVariant(newIndex, Thumb); err != nil {
				_ = tmp.Close()
				return err
			}
		}
	}

	srcSize, err := db.file.size()
	if err != nil {
		_ = tmp.Close()
		return err
	}
	tmpSize, err := tmp.file.size()
	if err != nil {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := removeFile(srcPath); err != nil {
		return err
	}
	if err := renameFile(tmpPath, srcPath); err != nil {
		return err
	}

	db.metrics.gcRuns.Inc()
	if srcSize > tmpSize {
		db.metrics.gcBytesSaved.Add(float64(srcSize - tmpSize))
	}

	return nil
}
