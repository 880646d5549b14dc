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

// dedupInsert is the deduplication resolver invoked by insert once the
// candidate row at index has its PictID, SHA and Size[Orig] populated but
// before any blob write (spec.md S4.5).
//
// Open Question 1 (spec.md S9) is resolved as directed: a name conflict
// short-circuits immediately, the scan does not continue, and no SHA
// match is applied after it.
func dedupInsert(t *table, index int) error {
	candidate := &t.rows[index]
	id := cString(candidate.PictID[:])
	sha := candidate.SHA
	candidate.Offset[Orig] = 0

	for i := range t.rows {
		if i == index || t.rows[i].IsValid != NonEmpty {
			continue
		}

		other := &t.rows[i]
		if cString(other.PictID[:]) == id {
			return newErr("insert", KindDuplicateID, nil)
		}

		if other.SHA == sha {
			// Ascending-index scan order means the last match wins,
			// which is the documented tie-break (spec.md S4.5).
			candidate.Size[Thumb] = other.Size[Thumb]
			candidate.Size[Small] = other.Size[Small]
			candidate.Offset[Orig] = other.Offset[Orig]
			candidate.Offset[Thumb] = other.Offset[Thumb]
			candidate.Offset[Small] = other.Offset[Small]
			candidate.ResOrig[0] = other.ResOrig[0]
			candidate.ResOrig[1] = other.ResOrig[1]
		}
	}

	return nil
}
