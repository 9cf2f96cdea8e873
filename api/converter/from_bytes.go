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

// BytesToTree creates a tree from the given BSON bytes.
func BytesToTree(bytes []byte) (*tree.Tree, error) {
	record, err := FromBytes(bytes)
	if err != nil {
		return nil, err
	}

	node, err := FromRecord(record)
	if err != nil {
		return nil, err
	}
	return tree.NewTreeFromJSON(node)
}

// FromBytes converts the given BSON bytes to a record.
func FromBytes(bytes []byte) (*Record, error) {
	record := &Record{}
	if err := bson.Unmarshal(bytes, record); err != nil {
		return nil, fmt.Errorf("unmarshal record: %v: %w", err, ErrInvalidRecord)
	}
	return record, nil
}

// FromJSON converts the given JSON bytes to a record.
func FromJSON(bytes []byte) (*Record, error) {
	record := &Record{}
	if err := json.Unmarshal(bytes, record); err != nil {
		return nil, fmt.Errorf("unmarshal record from json: %v: %w", err, ErrInvalidRecord)
	}
	return record, nil
}
