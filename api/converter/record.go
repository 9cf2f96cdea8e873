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
	"fmt"
	gotime "time"

	"github.com/yorkie-team/redline/pkg/document/tree"
	"github.com/yorkie-team/redline/pkg/revision"
)

// Record is the persisted form of a node of the tree. Spans carry their
// revision, author and timestamp, elements carry their attributes and
// children.
type Record struct {
	Type       string            `bson:"type" json:"type"`
	Text       string            `bson:"text,omitempty" json:"text,omitempty"`
	RevisionID string            `bson:"revision_id,omitempty" json:"revision_id,omitempty"`
	Author     *revision.Author  `bson:"author,omitempty" json:"author,omitempty"`
	Timestamp  *gotime.Time      `bson:"timestamp,omitempty" json:"timestamp,omitempty"`
	Marks      []string          `bson:"marks,omitempty" json:"marks,omitempty"`
	Attrs      map[string]string `bson:"attrs,omitempty" json:"attrs,omitempty"`
	Children   []*Record         `bson:"children,omitempty" json:"children,omitempty"`
}

// ToRecord converts the given tree to a record.
func ToRecord(t *tree.Tree) *Record {
	return toRecord(t.Root())
}

func toRecord(node *tree.TreeNode) *Record {
	if node.IsText() {
		record := &Record{
			Type:  node.Type(),
			Text:  node.Value,
			Marks: node.Marks,
		}
		if node.Span != nil {
			author := node.Span.Author
			timestamp := node.Span.Timestamp
			record.RevisionID = node.Span.RevisionID.String()
			record.Author = &author
			record.Timestamp = &timestamp
		}
		return record
	}

	record := &Record{
		Type:  node.Type(),
		Attrs: node.Attrs,
	}
	for _, child := range node.Children() {
		record.Children = append(record.Children, toRecord(child))
	}
	return record
}

// FromRecord converts the given record to the nodes of a tree.
func FromRecord(record *Record) (*tree.JSONTreeNode, error) {
	if record == nil {
		return nil, fmt.Errorf("nil record: %w", ErrInvalidRecord)
	}

	node := &tree.JSONTreeNode{
		Type:       record.Type,
		Attributes: record.Attrs,
		Value:      record.Text,
		Marks:      record.Marks,
	}

	if tree.IsSpanType(record.Type) {
		span, err := fromSpan(record)
		if err != nil {
			return nil, err
		}
		node.Span = span
	}

	for _, child := range record.Children {
		childNode, err := FromRecord(child)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, *childNode)
	}

	return node, nil
}

func fromSpan(record *Record) (*tree.Span, error) {
	if record.RevisionID == "" {
		return nil, fmt.Errorf("%s without revision: %w", record.Type, ErrInvalidRecord)
	}
	if record.Author == nil {
		return nil, fmt.Errorf("%s %s without author: %w", record.Type, record.RevisionID, ErrInvalidRecord)
	}
	if err := record.Author.Validate(); err != nil {
		return nil, fmt.Errorf("%s %s: %v: %w", record.Type, record.RevisionID, err, ErrInvalidRecord)
	}

	span := &tree.Span{
		RevisionID: revision.ID(record.RevisionID),
		Author:     *record.Author,
	}
	if record.Timestamp != nil {
		span.Timestamp = *record.Timestamp
	}
	return span, nil
}
