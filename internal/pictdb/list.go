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

import "fmt"

// emptyDatabaseSentinel is returned by both listing modes when the
// database has no NON_EMPTY rows (spec.md S4.8).
const emptyDatabaseSentinel = "<< empty database >>"

// Listing is the structured listing document: the original pictDBM's
// JSON front-end (pictDB_server.c) emitted {"Pictures": [...]}; this
// restores that exact shape (spec.md's supplemented feature 3).
type Listing struct {
	Pictures []string `json:"Pictures"`
}

// ListText produces the human-readable dump: header then each NON_EMPTY
// row, formatted exactly as the original db_utils.c's print_header/
// print_metadata did (spec.md's supplemented feature 2).
func (db *DB) ListText() string {
	if db.table.hdr.NumFiles == 0 {
		return emptyDatabaseSentinel
	}

	out := fmt.Sprintf("*****************************************\n"+
		"**********DATABASE HEADER START**********\n"+
		"DB NAME: %31s\n"+
		"VERSION: %d\n"+
		"IMAGE COUNT: %d\t\tMAX IMAGES: %d\n"+
		"THUMBNAIL: %d x %d\tSMALL: %d x %d\n"+
		"***********DATABASE HEADER END***********\n"+
		"*****************************************\n",
		db.Name(), db.table.hdr.DBVersion, db.table.hdr.NumFiles, db.table.hdr.MaxFiles,
		db.table.hdr.ResResized[0], db.table.hdr.ResResized[1],
		db.table.hdr.ResResized[2], db.table.hdr.ResResized[3])

	for i := range db.table.rows {
		r := &db.table.rows[i]
		if r.IsValid != NonEmpty {
			continue
		}

		out += fmt.Sprintf("PICTURE ID: %s\n"+
			"SHA: %x\n"+
			"VALID: %d\n"+
			"OFFSET ORIG. : %d\t\tSIZE ORIG. : %d\n"+
			"OFFSET THUMB.: %d\t\tSIZE THUMB.: %d\n"+
			"OFFSET SMALL : %d\t\tSIZE SMALL : %d\n"+
			"ORIGINAL: %d x %d\n"+
			"*****************************************\n",
			cString(r.PictID[:]), r.SHA,
			r.IsValid,
			r.Offset[Orig], r.Size[Orig],
			r.Offset[Thumb], r.Size[Thumb],
			r.Offset[Small], r.Size[Small],
			r.ResOrig[0], r.ResOrig[1])
	}

	return out
}

// ListStructured produces the structured document: the array of
// pict_id strings for every NON_EMPTY row (spec.md S4.8).
func (db *DB) ListStructured() Listing {
	if db.table.hdr.NumFiles == 0 {
		return Listing{Pictures: []string{emptyDatabaseSentinel}}
	}

	l := Listing{Pictures: make([]string, 0, db.table.hdr.NumFiles)}
	for i := range db.table.rows {
		r := &db.table.rows[i]
		if r.IsValid == NonEmpty {
			l.Pictures = append(l.Pictures, cString(r.PictID[:]))
		}
	}
	return l
}
