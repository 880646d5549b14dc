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

package imageproc_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/epfl-sysproj/pictdb/internal/imageproc"
	"github.com/stretchr/testify/require"
)

func solidJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestDecodeDimensions(t *testing.T) {
	p := imageproc.Provider{}
	b := solidJPEG(t, 800, 600)

	w, h, err := p.DecodeDimensions(b)
	require.NoError(t, err)
	require.Equal(t, uint32(800), w)
	require.Equal(t, uint32(600), h)
}

func TestResizeToFitPreservesAspectRatio(t *testing.T) {
	p := imageproc.Provider{}
	b := solidJPEG(t, 800, 600)

	resized, err := p.ResizeToFit(b, 800, 600, 64, 64)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(resized))
	require.NoError(t, err)

	// 800x600 fit into 64x64 bounding box with ratio min(64/800, 64/600)
	// = 0.08 -> 64x48.
	require.Equal(t, 64, cfg.Width)
	require.Equal(t, 48, cfg.Height)
}
