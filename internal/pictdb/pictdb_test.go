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

package pictdb_test

import (
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"

	"github.com/epfl-sysproj/pictdb/internal/pictdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeImages is a deterministic stand-in for the real JPEG codec, so
// these tests don't depend on actual image bytes: the first 8 bytes of
// a "JPEG" are a width/height header, the rest is opaque payload.
type fakeImages struct{ resizeCalls int }

func fakeJPEG(w, h uint32, payload string) []byte {
	b := make([]byte, 8+len(payload))
	binary.BigEndian.PutUint32(b[0:4], w)
	binary.BigEndian.PutUint32(b[4:8], h)
	copy(b[8:], payload)
	return b
}

func (f *fakeImages) DecodeDimensions(b []byte) (uint32, uint32, error) {
	if len(b) < 8 {
		return 0, 0, errors.New("short buffer")
	}
	return binary.BigEndian.Uint32(b[0:4]), binary.BigEndian.Uint32(b[4:8]), nil
}

func (f *fakeImages) ResizeToFit(b []byte, origW, origH, targetW, targetH uint32) ([]byte, error) {
	f.resizeCalls++
	return fakeJPEG(targetW, targetH, "resized"), nil
}

func newTestDB(t *testing.T, cfg pictdb.Config) (*pictdb.DB, *fakeImages) {
	t.Helper()
	images := &fakeImages{}
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := pictdb.Create(path, cfg, images)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, images
}

func testConfig() pictdb.Config {
	return pictdb.Config{MaxFiles: 10, ThumbX: 64, ThumbY: 64, SmallX: 256, SmallY: 256}
}

func TestCreateThenOpenRoundTrip(t *testing.T) {
	images := &fakeImages{}
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := pictdb.Create(path, testConfig(), images)
	require.NoError(t, err)
	assert.Equal(t, pictdb.CatName, db.Name())
	assert.Equal(t, uint32(0), db.NumFiles())
	assert.Equal(t, uint32(0), db.Version())
	require.NoError(t, db.Close())

	reopened, err := pictdb.Open(path, pictdb.ReadWrite, images)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, pictdb.CatName, reopened.Name())
	assert.Equal(t, uint32(0), reopened.NumFiles())
	assert.Equal(t, uint32(10), reopened.MaxFiles())
}

func TestInsertAndReadOriginal(t *testing.T) {
	db, _ := newTestDB(t, testConfig())

	blob := fakeJPEG(800, 600, "papillon")
	require.NoError(t, db.Insert("pic1", blob))
	assert.Equal(t, uint32(1), db.NumFiles())
	assert.Equal(t, uint32(1), db.Version())

	got, err := db.Read("pic1", pictdb.Orig)
	require.NoError(t, err)
	assert.Equal(t, blob, got)
}

func TestInsertDeleteThenReadNotFound(t *testing.T) {
	db, _ := newTestDB(t, testConfig())

	blob := fakeJPEG(800, 600, "papillon")
	require.NoError(t, db.Insert("pic1", blob))
	require.NoError(t, db.Delete("pic1"))

	_, err := db.Read("pic1", pictdb.Orig)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pictdb.ErrFileNotFound))
}

func TestDuplicateIDRejected(t *testing.T) {
	db, _ := newTestDB(t, testConfig())

	blob := fakeJPEG(800, 600, "papillon")
	require.NoError(t, db.Insert("pic1", blob))

	err := db.Insert("pic1", blob)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pictdb.ErrDuplicateID))
	assert.Equal(t, uint32(1), db.NumFiles())
}

func TestContentDedupSharesOffset(t *testing.T) {
	db, images := newTestDB(t, testConfig())

	blob := fakeJPEG(800, 600, "papillon")
	require.NoError(t, db.Insert("pic1", blob))
	_, err := db.Read("pic1", pictdb.Thumb)
	require.NoError(t, err)
	require.Equal(t, 1, images.resizeCalls)

	require.NoError(t, db.Insert("pic2", blob))
	assert.Equal(t, uint32(2), db.NumFiles())

	thumb1, err := db.Read("pic1", pictdb.Thumb)
	require.NoError(t, err)
	thumb2, err := db.Read("pic2", pictdb.Thumb)
	require.NoError(t, err)

	// Back-propagation means pic2's thumb is visible without a second
	// resize call.
	assert.Equal(t, thumb1, thumb2)
	assert.Equal(t, 1, images.resizeCalls)
}

func TestReadVariantIsIdempotent(t *testing.T) {
	db, images := newTestDB(t, testConfig())

	blob := fakeJPEG(800, 600, "papillon")
	require.NoError(t, db.Insert("pic1", blob))

	first, err := db.Read("pic1", pictdb.Thumb)
	require.NoError(t, err)
	assert.Equal(t, 1, images.resizeCalls)

	second, err := db.Read("pic1", pictdb.Thumb)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, images.resizeCalls, "second read must not re-append a variant")
}

func TestDeleteThenReadSiblingStillWorks(t *testing.T) {
	db, _ := newTestDB(t, testConfig())

	blob := fakeJPEG(800, 600, "papillon")
	require.NoError(t, db.Insert("pic1", blob))
	require.NoError(t, db.Insert("pic2", blob))

	require.NoError(t, db.Delete("pic1"))
	assert.Equal(t, uint32(1), db.NumFiles())

	got, err := db.Read("pic2", pictdb.Orig)
	require.NoError(t, err)
	assert.Equal(t, blob, got)
}

func TestFullDatabaseRejectsInsert(t *testing.T) {
	db, _ := newTestDB(t, pictdb.Config{MaxFiles: 2, ThumbX: 64, ThumbY: 64, SmallX: 256, SmallY: 256})

	require.NoError(t, db.Insert("a", fakeJPEG(10, 10, "a")))
	require.NoError(t, db.Insert("b", fakeJPEG(10, 10, "b")))

	err := db.Insert("c", fakeJPEG(10, 10, "c"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, pictdb.ErrFullDatabase))
	assert.Equal(t, uint32(2), db.NumFiles())
}

func TestGarbageCollectPreservesReadsAndVariants(t *testing.T) {
	images := &fakeImages{}
	path := filepath.Join(t.TempDir(), "test.db")
	tmpPath := filepath.Join(t.TempDir(), "test.db.tmp")

	db, err := pictdb.Create(path, testConfig(), images)
	require.NoError(t, err)

	blobA := fakeJPEG(800, 600, "alpha")
	blobB := fakeJPEG(400, 300, "beta")
	require.NoError(t, db.Insert("alpha", blobA))
	require.NoError(t, db.Insert("beta", blobB))

	_, err = db.Read("beta", pictdb.Thumb)
	require.NoError(t, err)

	require.NoError(t, db.Delete("alpha"))

	require.NoError(t, pictdb.GarbageCollect(db, tmpPath))
	require.NoError(t, db.Close())

	reopened, err := pictdb.Open(path, pictdb.ReadWrite, images)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, uint32(1), reopened.NumFiles())

	_, err = reopened.Read("alpha", pictdb.Orig)
	assert.True(t, errors.Is(err, pictdb.ErrFileNotFound))

	gotBeta, err := reopened.Read("beta", pictdb.Orig)
	require.NoError(t, err)
	assert.Equal(t, blobB, gotBeta)

	gotThumb, err := reopened.Read("beta", pictdb.Thumb)
	require.NoError(t, err)
	assert.NotEmpty(t, gotThumb)
}

func TestListTextAndStructured(t *testing.T) {
	db, _ := newTestDB(t, testConfig())

	empty := db.ListText()
	assert.Contains(t, empty, "empty database")

	require.NoError(t, db.Insert("pic1", fakeJPEG(10, 10, "x")))

	listing := db.ListStructured()
	assert.Equal(t, []string{"pic1"}, listing.Pictures)

	text := db.ListText()
	assert.Contains(t, text, "pic1")
	assert.Contains(t, text, pictdb.CatName)
}

func TestParseVariant(t *testing.T) {
	cases := map[string]pictdb.Variant{
		"thumb":     pictdb.Thumb,
		"thumbnail": pictdb.Thumb,
		"small":     pictdb.Small,
		"orig":      pictdb.Orig,
		"original":  pictdb.Orig,
	}
	for token, want := range cases {
		got, err := pictdb.ParseVariant(token)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := pictdb.ParseVariant("bogus")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pictdb.ErrInvalidArgument))
}
