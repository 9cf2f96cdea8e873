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

// Package converter provides the converter for converting the document tree
// to records, bytes and vice versa.
package converter

import "github.com/yorkie-team/redline/pkg/errors"

var (
	// ErrInvalidRecord is returned when a record cannot be converted into a
	// tree.
	ErrInvalidRecord = errors.InvalidArgument("invalid record").WithCode("ErrInvalidRecord")
)
