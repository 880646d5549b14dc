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

// ensureVariant is the lazy variant builder (spec.md S4.6). For Orig it
// is trivially a success. For Thumb/Small it materializes the variant on
// first access and back-propagates it to every row sharing the same
// content digest.
//
// Open Question 3 (spec.md S9) is resolved by returning a plain error
// here rather than reusing Variant as a dual-purpose success/error code.
func (db *DB) ensureVariant(index int, v Variant) error {
	if v == Orig {
		return nil
	}

	group := db.table.findDuplicatesBySHA(index)

	// Back-propagate: a sibling may have materialized the variant
	// earlier while this row did not yet reflect it.
	if len(group) > 1 {
		sibling := &db.table.rows[group[1]]
		self := &db.table.rows[index]
		if self.Size[v] != sibling.Size[v] {
			self.Size[v] = sibling.Size[v]
			self.Offset[v] = sibling.Offset[v]
		}
	}

	if db.table.rows[index].Size[v] != 0 {
		return nil
	}

	r := &db.table.rows[index]

	orig, err := db.file.readAt(int64(r.Offset[Orig]), int(r.Size[Orig]))
	if err != nil {
		return newErr("ensure_variant", KindIO, err)
	}

	var targetX, targetY uint16
	switch v {
	case Thumb:
		targetX, targetY = db.table.hdr.ResResized[0], db.table.hdr.ResResized[1]
	case Small:
		targetX, targetY = db.table.hdr.ResResized[2], db.table.hdr.ResResized[3]
	}

	resized, err := db.images.ResizeToFit(orig, r.ResOrig[0], r.ResOrig[1], uint32(targetX), uint32(targetY))
	if err != nil {
		return newErr("ensure_variant", KindImageDecode, err)
	}

	newOffset, err := db.file.append(resized)
	if err != nil {
		return newErr("ensure_variant", KindIO, err)
	}
	newSize := uint32(len(resized))

	for _, j := range group {
		db.table.rows[j].Size[v] = newSize
		db.table.rows[j].Offset[v] = uint64(newOffset)
		if err := db.writeRow(j); err != nil {
			return err
		}
	}

	db.metrics.variantsBuilt.WithLabelValues(v.String()).Inc()

	return nil
}
