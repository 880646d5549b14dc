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

// Kind is the error taxonomy from spec.md S7. Every core operation either
// succeeds or returns exactly one Kind, wrapped in an *Error.
type Kind int

const (
	KindNone Kind = iota
	KindIO
	KindOutOfMemory
	KindInvalidArgument
	KindInvalidFilename
	KindInvalidPictID
	KindInvalidResolution
	KindInvalidCommand
	KindFileNotFound
	KindFullDatabase
	KindDuplicateID
	KindTooManyFiles
	KindImageDecode
	KindNotEnoughArguments
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io error"
	case KindOutOfMemory:
		return "out of memory"
	case KindInvalidArgument:
		return "invalid argument"
	case KindInvalidFilename:
		return "invalid filename"
	case KindInvalidPictID:
		return "invalid picture id"
	case KindInvalidResolution:
		return "invalid resolution"
	case KindInvalidCommand:
		return "invalid command"
	case KindFileNotFound:
		return "file not found"
	case KindFullDatabase:
		return "database is full"
	case KindDuplicateID:
		return "duplicate id"
	case KindTooManyFiles:
		return "too many files"
	case KindImageDecode:
		return "image decode error"
	case KindNotEnoughArguments:
		return "not enough arguments"
	default:
		return "unknown error"
	}
}

// Error wraps a taxonomy Kind plus an optional underlying cause. Core
// operations never return a bare error; callers that need to map a
// failure to an exit code or HTTP status switch on Kind via As.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pictdb: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("pictdb: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newErr(op string, kind Kind, cause error) *Error {
	return &Error{Op: op, Kind: kind, Err: cause}
}

// Sentinel *Error values for errors.Is comparisons against a Kind alone.
var (
	ErrIO                 = &Error{Kind: KindIO}
	ErrOutOfMemory        = &Error{Kind: KindOutOfMemory}
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument}
	ErrInvalidFilename    = &Error{Kind: KindInvalidFilename}
	ErrInvalidPictID      = &Error{Kind: KindInvalidPictID}
	ErrInvalidResolution  = &Error{Kind: KindInvalidResolution}
	ErrInvalidCommand     = &Error{Kind: KindInvalidCommand}
	ErrFileNotFound       = &Error{Kind: KindFileNotFound}
	ErrFullDatabase       = &Error{Kind: KindFullDatabase}
	ErrDuplicateID        = &Error{Kind: KindDuplicateID}
	ErrTooManyFiles       = &Error{Kind: KindTooManyFiles}
	ErrImageDecode        = &Error{Kind: KindImageDecode}
	ErrNotEnoughArguments = &Error{Kind: KindNotEnoughArguments}
)
