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

// ImageProvider is the opaque image-processing collaborator spec.md S1
// models as external to the core: decode a JPEG's pixel dimensions, and
// resize a JPEG buffer to fit within a bounding box. The core never
// imports an image codec directly; internal/imageproc supplies the
// concrete implementation.
type ImageProvider interface {
	// DecodeDimensions returns the pixel width and height of the JPEG
	// buffer in b.
	DecodeDimensions(b []byte) (width, height uint32, err error)

	// ResizeToFit scales the JPEG buffer in b to fit within
	// targetW x targetH (preserving aspect ratio, per spec.md S4.6's
	// r = min(target_x/orig_x, target_y/orig_y), so an image smaller than
	// the box is enlarged) and returns a new JPEG buffer.
	ResizeToFit(b []byte, origW, origH, targetW, targetH uint32) ([]byte, error)
}
