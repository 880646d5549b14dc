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

// Package imageproc is the concrete image provider spec.md S1 models as
// an opaque external collaborator: it decodes JPEG dimensions and
// resizes JPEG buffers to fit a bounding box, using the standard
// library's image/jpeg codec plus golang.org/x/image/draw for high
// quality scaling.
package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

// Provider implements pictdb.ImageProvider.
type Provider struct {
	// Quality is the JPEG encoding quality used for resized variants.
	// Defaults to 85 when zero.
	Quality int
}

func (p Provider) quality() int {
	if p.Quality <= 0 {
		return 85
	}
	return p.Quality
}

// DecodeDimensions decodes just enough of the JPEG to report its pixel
// dimensions.
func (p Provider) DecodeDimensions(b []byte) (width, height uint32, err error) {
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode jpeg dimensions: %w", err)
	}
	return uint32(cfg.Width), uint32(cfg.Height), nil
}

// ResizeToFit decodes b, scales it to fit within targetW x targetH
// (preserving aspect ratio, per spec.md S4.6's min-ratio rule) using a
// Catmull-Rom resampler, and re-encodes the result as JPEG.
func (p Provider) ResizeToFit(b []byte, origW, origH, targetW, targetH uint32) ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to decode jpeg: %w", err)
	}

	newW, newH := scaledDimensions(origW, origH, targetW, targetH)

	dst := image.NewRGBA(image.Rect(0, 0, int(newW), int(newH)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: p.quality()}); err != nil {
		return nil, fmt.Errorf("failed to encode resized jpeg: %w", err)
	}

	return buf.Bytes(), nil
}

// scaledDimensions applies spec.md S4.6's scale rule:
// r = min(target_x/orig_x, target_y/orig_y).
func scaledDimensions(origW, origH, targetW, targetH uint32) (uint32, uint32) {
	if origW == 0 || origH == 0 {
		return targetW, targetH
	}

	hRatio := float64(targetW) / float64(origW)
	vRatio := float64(targetH) / float64(origH)

	ratio := hRatio
	if vRatio < ratio {
		ratio = vRatio
	}

	newW := uint32(float64(origW) * ratio)
	newH := uint32(float64(origH) * ratio)
	if newW == 0 {
		newW = 1
	}
	if newH == 0 {
		newH = 1
	}

	return newW, newH
}
