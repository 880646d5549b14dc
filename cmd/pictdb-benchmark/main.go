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

// Command pictdb-benchmark load-tests internal/pictdb, in the same
// spirit as the teacher's cmd/qcow2-benchmark: synthesize random
// payloads with a fast PRNG and drive a queue of concurrent callers
// against a single database.
//
// Because the core is single-threaded and non-reentrant (spec.md S5),
// every operation here is serialized through a single mutex around the
// shared *pictdb.DB rather than relied upon to be safe on its own --
// this tool exists to measure throughput under that externally
// serialized model, not to test concurrent access to the core itself.
package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/silverisntgold/randshiro"

	"github.com/epfl-sysproj/pictdb/internal/imageproc"
	"github.com/epfl-sysproj/pictdb/internal/pictdb"
)

const (
	totalPictures = 500 // Total number of pictures to insert/read.
	queueDepth    = 20  // Concurrent users or operations.
)

type operation struct {
	id   string
	blob []byte
}

func main() {
	rng := randshiro.New128pp()

	tempDir, err := os.MkdirTemp("", "pictdb-benchmark")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "bench.db")
	db, err := pictdb.Create(dbPath, pictdb.Config{
		MaxFiles: totalPictures,
		ThumbX:   64, ThumbY: 64,
		SmallX: 256, SmallY: 256,
	}, imageproc.Provider{})
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ops := make(chan operation, queueDepth)
	var mu sync.Mutex
	var wg sync.WaitGroup

	start := time.Now()

	for w := 0; w < queueDepth; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for op := range ops {
				mu.Lock()
				if err := db.Insert(op.id, op.blob); err != nil {
					mu.Unlock()
					log.Printf("insert %s: %v", op.id, err)
					continue
				}
				if _, err := db.Read(op.id, pictdb.Thumb); err != nil {
					mu.Unlock()
					log.Printf("read %s: %v", op.id, err)
					continue
				}
				mu.Unlock()
			}
		}()
	}

	for i := 0; i < totalPictures; i++ {
		id := fmt.Sprintf("pic-%06d", i)
		ops <- operation{id: id, blob: randomJPEG(rng)}
	}
	close(ops)

	wg.Wait()

	elapsed := time.Since(start)
	fmt.Printf("inserted+read %d pictures in %s (%.1f ops/s)\n",
		totalPictures, elapsed, float64(totalPictures)/elapsed.Seconds())
}

func randomJPEG(rng *randshiro.Gen) []byte {
	const w, h = 64, 64
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	packed := rng.Uint64()
	r, g, b := uint8(packed), uint8(packed>>8), uint8(packed>>16)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		log.Fatal(err)
	}
	return buf.Bytes()
}
