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

// ParseVariant maps the resolution query tokens from spec.md S6 to a
// Variant: {"thumb","thumbnail"} -> Thumb, {"small"} -> Small,
// {"orig","original"} -> Orig. Any other token is InvalidArgument.
func ParseVariant(token string) (Variant, error) {
	switch token {
	case "thumb", "thumbnail":
		return Thumb, nil
	case "small":
		return Small, nil
	case "orig", "original":
		return Orig, nil
	default:
		return 0, newErr("parse_variant", KindInvalidArgument, nil)
	}
}
