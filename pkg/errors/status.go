/*
 * Copyright 2026 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package errors provides status-coded errors for the conditions that the
// engine reports as errors rather than result statuses.
package errors

import "fmt"

// StatusCode classifies an error. Values follow the gRPC code numbering so
// that they can be carried over an API unchanged.
type StatusCode int

const (
	// ErrCodeInvalidArgument is for out-of-range positions, undecodable
	// payloads and other caller mistakes.
	ErrCodeInvalidArgument StatusCode = 3

	// ErrCodeNotFound is for unknown revisions and nodes.
	ErrCodeNotFound StatusCode = 5

	// ErrCodeInternal is for broken invariants found in Debug mode.
	ErrCodeInternal StatusCode = 13
)

var statusNames = map[StatusCode]string{
	ErrCodeInvalidArgument: "invalid_argument",
	ErrCodeNotFound:        "not_found",
	ErrCodeInternal:        "internal",
}

// String returns the snake case name of the code.
func (c StatusCode) String() string {
	if name, ok := statusNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code_%d", int(c))
}

// IsClientError reports whether the code blames the caller.
func (c StatusCode) IsClientError() bool {
	return c == ErrCodeInvalidArgument || c == ErrCodeNotFound
}
