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
	"encoding/hex"
	"fmt"

	"github.com/goburrow/cache"
)

// maxCachedIDs bounds how many pict_id -> row-index lookups the table
// keeps memoized. Mirrors the teacher's maxCachedTables bound over
// qcow2 L1/L2 tables, sized for pictdb's identifier lookups instead.
const maxCachedIDs = 4096

// table is the in-memory mirror of the on-disk header plus the
// contiguous max_files row array (spec.md S4.4). The dirty set and its
// markDirty/clearDirty helpers are not used by the operations: Insert,
// Delete and the variant builder mutate rows in place and persist each
// changed row directly with DB.writeRow.
type table struct {
	hdr   header
	rows  []row
	dirty map[int]bool

	idCache cache.LoadingCache
}

func newTable(h header, rows []row) *table {
	t := &table{hdr: h, rows: rows, dirty: make(map[int]bool)}
	t.idCache = cache.NewLoadingCache(t.loadIDIndex, cache.WithMaximumSize(maxCachedIDs))
	return t
}

func (t *table) loadIDIndex(key cache.Key) (cache.Value, error) {
	id := key.(string)
	for i := range t.rows {
		if t.rows[i].IsValid == NonEmpty && cString(t.rows[i].PictID[:]) == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("not found")
}

// findByID returns the row index for id, or -1 if no NON_EMPTY row holds
// it. Backed by a bounded cache invalidated on every insert/delete of id.
func (t *table) findByID(id string) int {
	v, err := t.idCache.Get(id)
	if err != nil {
		return -1
	}
	idx := v.(int)
	// The cache can go stale if id was deleted and re-inserted at a
	// different slot without an explicit invalidate somewhere upstream;
	// double check before trusting it.
	if idx < 0 || idx >= len(t.rows) || t.rows[idx].IsValid != NonEmpty || cString(t.rows[idx].PictID[:]) != id {
		t.idCache.Invalidate(id)
		v, err = t.idCache.Get(id)
		if err != nil {
			return -1
		}
		idx = v.(int)
	}
	return idx
}

func (t *table) invalidateID(id string) {
	t.idCache.Invalidate(id)
}

// findEmptySlot returns the lowest-index EMPTY row, or -1 if the table is
// full.
func (t *table) findEmptySlot() int {
	for i := range t.rows {
		if t.rows[i].IsValid == Empty {
			return i
		}
	}
	return -1
}

// findDuplicatesBySHA returns every NON_EMPTY row index sharing index's
// SHA, always beginning with index itself (spec.md S4.4).
func (t *table) findDuplicatesBySHA(index int) []int {
	group := []int{index}
	sha := t.rows[index].SHA
	for i := range t.rows {
		if i == index {
			continue
		}
		if t.rows[i].IsValid == NonEmpty && t.rows[i].SHA == sha {
			group = append(group, i)
		}
	}
	return group
}

func (t *table) markDirty(index int) {
	t.dirty[index] = true
}

func (t *table) clearDirty() {
	t.dirty = make(map[int]bool)
}

func shaHex(sha [32]byte) string {
	return hex.EncodeToString(sha[:])
}
