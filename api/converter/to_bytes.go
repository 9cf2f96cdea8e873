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

package converter

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/yorkie-team/redline/pkg/document/tree"
)

// TreeToBytes converts the given tree to BSON bytes. Timestamps are kept
// with millisecond precision.
func TreeToBytes(t *tree.Tree) ([]byte, error) {
	return ToBytes(ToRecord(t))
}

// ToBytes converts the given record to BSON bytes.
func ToBytes(record *Record) ([]byte, error) {
	bytes, err := bson.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return bytes, nil
}

// ToJSON converts the given record to JSON bytes.
func ToJSON(record *Record) ([]byte, error) {
	bytes, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal record to json: %w", err)
	}
	return bytes, nil
}
